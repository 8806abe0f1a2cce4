// SPDX-License-Identifier: Unlicense OR MIT

package window

import (
	"log/slog"

	"gioui.org/dispatch/io/dispatch"
	"gioui.org/dispatch/io/event"
	"gioui.org/dispatch/task"
	"gioui.org/dispatch/unit"
)

// Dispatcher dispatches the events of a platform window to the tree
// of windows under its root window.
//
// Mouse events following a press go to the window that received the
// press, and every event goes to the capture window while there is
// one. Pointer moves can be held back and coalesced while the host is
// busy; see HoldPointerMoves. Touch events are forwarded to the gesture
// recognizer of the environment and the gestures it detects are
// dispatched to the consumer of the touch sequence.
type Dispatcher struct {
	env       *Env
	root      *Window
	host      Host
	metric    unit.Metric
	logger    *slog.Logger
	processor *dispatch.Processor
	source    *dispatch.Source
	targeter  *Targeter

	mousePressedHandler *Window
	// pressedButtons are the buttons whose press set
	// mousePressedHandler.
	pressedButtons    event.Flags
	mouseMovedHandler *Window
	// hoverEvent is the move whose initial target is yet to be
	// entered.
	hoverEvent *event.Event
	// frames tracks the dispatches in flight, innermost last.
	frames []frame

	moveHoldCount       int
	heldMoveEvent       *event.Event
	heldRepostableEvent *event.Event
	// heldInFlight is the held or reposted event being
	// dispatched.
	heldInFlight *event.Event
	// redirected is the event re-sourced from another root.
	redirected          *event.Event
	synthesizeMouseMove bool
	heldFactory         task.Factory
	repostFactory       task.Factory
	synthFactory        task.Factory

	nativeCapture bool
	cancelling    bool
	inShutdown    bool
}

type frame struct {
	// target is cleared when the target is hidden, detached or
	// destroyed during the dispatch.
	target *Window
	// ignored marks touch events rejected by the recognizer.
	ignored bool
}

var (
	_ dispatch.ProcessorDelegate = (*Dispatcher)(nil)
	_ Observer                   = (*Dispatcher)(nil)
)

// NewDispatcher returns a Dispatcher with a new root window.
func NewDispatcher(env *Env, options ...Option) *Dispatcher {
	cnf := Config{Name: "root"}
	for _, o := range options {
		o(&cnf)
	}
	d := &Dispatcher{
		env:    env,
		host:   cnf.Host,
		metric: cnf.Metric,
		logger: env.logger.With("root", cnf.Name),
	}
	d.root = NewWindow(cnf.Name, cnf.Bounds)
	d.root.dispatcher = d
	d.targeter = &Targeter{d: d}
	d.root.targeter = d.targeter
	d.root.AddObserver(d)
	d.processor = dispatch.NewProcessor(d)
	d.source = dispatch.NewSource(d.processor)
	env.capture.AddDelegate(d.root, d)
	env.recognizer.AddHelper(d)
	env.addDispatcher(d)
	return d
}

// Root returns the root window.
func (d *Dispatcher) Root() *Window {
	return d.root
}

// Env returns the environment of d.
func (d *Dispatcher) Env() *Env {
	return d.env
}

// Source returns the event source of d. Platform events are sent
// through it, in platform pixels relative to the root window.
func (d *Dispatcher) Source() *dispatch.Source {
	return d.source
}

// SendEvent sends a platform event through the source of d.
func (d *Dispatcher) SendEvent(e *event.Event) dispatch.Details {
	return d.source.SendEvent(e)
}

// Metric returns the conversion from platform pixels to dp.
func (d *Dispatcher) Metric() unit.Metric {
	return d.metric
}

// MousePressedHandler returns the window receiving mouse events until
// the button that was pressed on it is released.
func (d *Dispatcher) MousePressedHandler() *Window {
	return d.mousePressedHandler
}

// MouseMovedHandler returns the window under the mouse.
func (d *Dispatcher) MouseMovedHandler() *Window {
	return d.mouseMovedHandler
}

// HasNativeCapture reports whether d holds the platform pointer grab.
func (d *Dispatcher) HasNativeCapture() bool {
	return d.nativeCapture
}

// Closed reports whether d was closed.
func (d *Dispatcher) Closed() bool {
	return d.inShutdown
}

// Close releases capture, drops held events, revokes pending tasks and
// destroys the root window. Dispatches in flight report
// DispatcherDestroyed.
func (d *Dispatcher) Close() {
	if d.inShutdown {
		return
	}
	d.inShutdown = true
	d.logger.Debug("closing dispatcher")
	d.heldFactory.Invalidate()
	d.repostFactory.Invalidate()
	d.synthFactory.Invalidate()
	d.heldMoveEvent, d.heldRepostableEvent = nil, nil
	d.moveHoldCount = 0
	d.synthesizeMouseMove = false
	d.mousePressedHandler, d.mouseMovedHandler = nil, nil
	if c := d.captureWindow(); c != nil {
		d.env.capture.ReleaseCapture(c)
	}
	d.env.capture.RemoveDelegate(d.root)
	d.env.recognizer.RemoveHelper(d)
	d.env.removeDispatcher(d)
	d.processor.Destroy()
	d.root.RemoveObserver(d)
	d.root.Destroy()
}

// RootForEvent implements dispatch.ProcessorDelegate.
func (d *Dispatcher) RootForEvent(e *event.Event) dispatch.Target {
	return d.root
}

// OnEventProcessingStarted converts platform events to dp, holds
// pointer moves and redirects events to the capture window of another
// root.
func (d *Dispatcher) OnEventProcessingStarted(e *event.Event) {
	if e.IsLocated() {
		// Held and redirected events are already in dp.
		if !e.IsSynthesized() && e != d.heldInFlight && e != d.redirected {
			e.Position = d.metric.Transform().Invert().Transform(e.Position)
		}
		e.RootPosition = e.Position
	}
	if e != d.heldInFlight {
		holdable := isHoldable(e)
		if holdable && d.moveHoldCount > 0 {
			held := *e
			held.Reset()
			d.heldMoveEvent = &held
			d.logger.Debug("pointer move held", "event", e)
			e.SetHandled()
			return
		}
		if holdable {
			// Superseded.
			d.heldMoveEvent = nil
		}
		if d.moveHoldCount == 0 {
			if details := d.dispatchHeldEvents(); details.DispatcherDestroyed {
				return
			}
		}
	}
	d.updateEnv(e)
	if e.Kind == event.Move {
		d.hoverEvent = e
	}
	if d.redirectToCaptureRoot(e) {
		e.SetHandled()
	}
}

// OnEventProcessingFinished ends cancel mode.
func (d *Dispatcher) OnEventProcessingFinished(e *event.Event) {
	if d.hoverEvent == e {
		d.hoverEvent = nil
	}
	if e.Kind != event.Cancel {
		return
	}
	d.mousePressedHandler, d.pressedButtons = nil, 0
	d.env.buttons = 0
	if c := d.captureWindow(); c != nil {
		// The capture window already saw the cancel.
		d.cancelling = true
		d.env.capture.ReleaseCapture(c)
		d.cancelling = false
	}
}

// PreDispatchEvent implements dispatch.Delegate.
func (d *Dispatcher) PreDispatchEvent(t dispatch.Target, e *event.Event) dispatch.Details {
	w, ok := t.(*Window)
	if !ok || w.Root() != d.root {
		panic("window: dispatch to a target outside the root")
	}
	d.frames = append(d.frames, frame{target: w})
	switch {
	case e.IsMouse():
		return d.preDispatchMouseEvent(w, e)
	case e.IsTouch():
		d.preDispatchTouchEvent(w, e)
	}
	return dispatch.Details{}
}

// PostDispatchEvent implements dispatch.Delegate.
func (d *Dispatcher) PostDispatchEvent(t dispatch.Target, e *event.Event) dispatch.Details {
	n := len(d.frames)
	if n == 0 {
		panic("internal error: unbalanced dispatch frames")
	}
	f := d.frames[n-1]
	d.frames = d.frames[:n-1]
	details := dispatch.Details{TargetDestroyed: t == nil || f.target == nil}
	if e.IsTouch() && !details.TargetDestroyed && !f.ignored {
		gestures := d.env.recognizer.AckTouchEvent(e.PointerID, f.target, e.Handled())
		gd := d.processGestures(f.target, gestures)
		if gd.DispatcherDestroyed {
			return gd
		}
		details.TargetDestroyed = details.TargetDestroyed || gd.TargetDestroyed
	}
	return details
}

// CanDispatchToTarget implements dispatch.Delegate.
func (d *Dispatcher) CanDispatchToTarget(t dispatch.Target) bool {
	n := len(d.frames)
	if n == 0 {
		return false
	}
	w := d.frames[n-1].target
	return w != nil && dispatch.Target(w) == t && !w.destroyed
}

func (d *Dispatcher) preDispatchMouseEvent(w *Window, e *event.Event) dispatch.Details {
	switch e.Kind {
	case event.Exit:
		// Enter and exit events synthesized for hover.
		if e.IsSynthesized() {
			break
		}
		details := d.dispatchMouseEnterOrExit(w, e, event.Exit)
		if details.DispatcherDestroyed {
			e.SetHandled()
			return details
		}
		d.mouseMovedHandler = nil
	case event.Move:
		if e != d.hoverEvent {
			break
		}
		d.hoverEvent = nil
		if w == d.mouseMovedHandler {
			break
		}
		old := d.mouseMovedHandler
		details := d.dispatchMouseEnterOrExit(w, e, event.Exit)
		// The details of the exit concern the old handler, not w.
		targetDetails := dispatch.Details{
			DispatcherDestroyed: details.DispatcherDestroyed,
			TargetDestroyed:     !d.alive(w),
		}
		if details.DispatcherDestroyed {
			e.SetHandled()
			return targetDetails
		}
		if d.mouseMovedHandler != old {
			// A nested dispatch already updated the handler.
			e.SetHandled()
			return targetDetails
		}
		if details.TargetDestroyed || targetDetails.TargetDestroyed {
			d.mouseMovedHandler = nil
			e.SetHandled()
			return targetDetails
		}
		d.mouseMovedHandler = w
		details = d.dispatchMouseEnterOrExit(w, e, event.Enter)
		if details.ShouldStopPropagation() {
			e.SetHandled()
			return details
		}
	case event.Press:
		if d.mousePressedHandler == nil && d.captureWindow() == nil {
			d.mousePressedHandler = w
			d.pressedButtons = e.ChangedButtons
		}
	case event.Release:
		if e.ChangedButtons == 0 || e.ChangedButtons&d.pressedButtons != 0 {
			d.mousePressedHandler, d.pressedButtons = nil, 0
		}
	}
	return dispatch.Details{}
}

// dispatchMouseEnterOrExit dispatches an Enter or Exit event to the
// mouse moved handler. The position of e is in the space of target, or
// of the root if target is nil.
func (d *Dispatcher) dispatchMouseEnterOrExit(target *Window, e *event.Event, kind event.Kind) dispatch.Details {
	h := d.mouseMovedHandler
	if h == nil || !d.alive(h) {
		return dispatch.Details{}
	}
	if target == nil {
		target = d.root
	}
	ev := &event.Event{
		Kind:         kind,
		Position:     e.Position,
		RootPosition: e.RootPosition,
		Flags:        e.Flags | event.Synthesized,
		Time:         e.Time,
		PointerID:    e.PointerID,
	}
	dispatch.ConvertEvent(target, h, ev)
	return d.processor.DispatchEvent(h, ev)
}

// updateEnv records the mouse and touch state of platform events.
func (d *Dispatcher) updateEnv(e *event.Event) {
	env := d.env
	switch {
	case e.IsMouse() && !e.IsSynthesized():
		if e.Kind != event.Enter && e.Kind != event.Exit {
			env.mouse = d.root.toScreen().Transform(e.RootPosition)
			env.hasMouse = true
		}
		switch e.Kind {
		case event.Press:
			env.buttons = (e.Flags | e.ChangedButtons) & event.Buttons
		case event.Release:
			env.buttons = e.Flags & event.Buttons &^ e.ChangedButtons
		}
	case e.Kind == event.TouchPress:
		env.touchIDs[e.PointerID] = struct{}{}
	case e.Kind == event.TouchRelease, e.Kind == event.TouchCancel:
		delete(env.touchIDs, e.PointerID)
	}
}

// redirectToCaptureRoot dispatches a located event through the
// dispatcher of the capture window when that window is in another
// root, and reports whether it did.
func (d *Dispatcher) redirectToCaptureRoot(e *event.Event) bool {
	if !e.IsLocated() || e.Kind == event.Gesture {
		return false
	}
	c, ok := d.env.capture.CaptureTarget().(*Window)
	if !ok || c.Root() == d.root {
		return false
	}
	other := c.Dispatcher()
	if other == nil || other.inShutdown {
		d.logger.Warn("capture window has no dispatcher", "capture", c, "event", e)
		return false
	}
	re := *e
	re.Reset()
	re.Position = ConvertPoint(d.root, other.root, e.Position)
	re.RootPosition = re.Position
	d.logger.Debug("redirecting event to capture root", "event", e, "root", other.root)
	prev := other.redirected
	other.redirected = &re
	other.processor.OnEventFromSource(&re)
	other.redirected = prev
	return true
}

// ownWindow returns t if it is a window of the tree of d.
func (d *Dispatcher) ownWindow(t dispatch.Target) *Window {
	if w, ok := t.(*Window); ok && w.Root() == d.root {
		return w
	}
	return nil
}

// captureWindow returns the capture window if it is in the tree of d.
func (d *Dispatcher) captureWindow() *Window {
	return d.ownWindow(d.env.capture.CaptureTarget())
}

func (d *Dispatcher) alive(w *Window) bool {
	return w != nil && !w.destroyed && w.Root() == d.root
}

// isHoldable reports whether e may be held by HoldPointerMoves.
func isHoldable(e *event.Event) bool {
	switch e.Kind {
	case event.TouchMove, event.Drag:
		return true
	case event.Move:
		return !e.IsSynthesized()
	}
	return false
}
