// SPDX-License-Identifier: Unlicense OR MIT

package window

import (
	"gioui.org/dispatch/f32"
	"gioui.org/dispatch/io/dispatch"
	"gioui.org/dispatch/io/event"
)

// HoldPointerMoves holds back pointer moves until a matching call to
// ReleasePointerMoves. While held, only the latest move is kept.
// Holds nest.
func (d *Dispatcher) HoldPointerMoves() {
	if d.moveHoldCount == 0 {
		// Revoke a flush posted by the last release.
		d.heldFactory.Invalidate()
	}
	d.moveHoldCount++
}

// ReleasePointerMoves ends a hold started by HoldPointerMoves. The
// final release posts a task dispatching the held move, if any.
// Releasing more often than holding has no effect.
func (d *Dispatcher) ReleasePointerMoves() {
	if d.moveHoldCount == 0 {
		d.logger.Debug("pointer moves released without a hold")
		return
	}
	d.moveHoldCount--
	if d.moveHoldCount > 0 || d.inShutdown {
		return
	}
	if d.heldMoveEvent == nil && d.heldRepostableEvent == nil {
		return
	}
	d.env.tasks.Post(d.heldFactory.Bind(func() {
		d.dispatchHeldEvents()
	}))
}

// MoveHoldCount returns the number of unreleased holds.
func (d *Dispatcher) MoveHoldCount() int {
	return d.moveHoldCount
}

// HeldMoveEvent returns a copy of the held pointer move, if any.
func (d *Dispatcher) HeldMoveEvent() (event.Event, bool) {
	if d.heldMoveEvent == nil {
		return event.Event{}, false
	}
	return *d.heldMoveEvent, true
}

// RepostEvent posts a task dispatching the press e again, as if it
// came from the platform. It is used to pass the press that closed a
// menu to the window under it. Only the latest reposted press is kept.
func (d *Dispatcher) RepostEvent(e *event.Event) {
	if e.Kind != event.Press && e.Kind != event.TouchPress {
		panic("window: only press events can be reposted")
	}
	if d.inShutdown {
		return
	}
	ev := *e
	ev.Reset()
	ev.Position = e.RootPosition
	d.heldRepostableEvent = &ev
	d.env.tasks.Post(d.repostFactory.Bind(func() {
		d.dispatchHeldEvents()
	}))
}

// dispatchHeldEvents dispatches the reposted press, then the held move
// if no hold is active.
func (d *Dispatcher) dispatchHeldEvents() dispatch.Details {
	if d.heldRepostableEvent == nil && d.heldMoveEvent == nil {
		return dispatch.Details{}
	}
	if d.heldInFlight != nil {
		return dispatch.Details{}
	}
	var details dispatch.Details
	if ev := d.heldRepostableEvent; ev != nil {
		d.heldRepostableEvent = nil
		details = d.dispatchHeld(ev)
		if details.DispatcherDestroyed {
			return details
		}
	}
	if ev := d.heldMoveEvent; ev != nil && d.moveHoldCount == 0 {
		d.heldMoveEvent = nil
		// A pending synthesized move supersedes a held mouse move.
		if ev.IsTouch() || !d.synthesizeMouseMove {
			d.logger.Debug("dispatching held move", "event", ev)
			details = d.dispatchHeld(ev)
		}
	}
	return details
}

// dispatchHeld dispatches a held event. Its location is already in
// dp and in the space of the root.
func (d *Dispatcher) dispatchHeld(ev *event.Event) dispatch.Details {
	d.heldInFlight = ev
	details := d.processor.OnEventFromSource(ev)
	d.heldInFlight = nil
	return details
}

// PostSynthesizeMouseMove posts a task dispatching a synthesized move
// at the last mouse location, to update the window under the mouse
// after the tree changed. At most one such task is pending.
func (d *Dispatcher) PostSynthesizeMouseMove() {
	if d.synthesizeMouseMove || d.inShutdown {
		return
	}
	d.synthesizeMouseMove = true
	d.env.tasks.Post(d.synthFactory.Bind(func() {
		d.synthesizeMouseMoveEvent()
	}))
}

// SynthesizeMousePending reports whether a synthesized move is
// pending.
func (d *Dispatcher) SynthesizeMousePending() bool {
	return d.synthesizeMouseMove
}

func (d *Dispatcher) synthesizeMouseMoveEvent() dispatch.Details {
	if !d.synthesizeMouseMove || d.inShutdown {
		return dispatch.Details{}
	}
	d.synthesizeMouseMove = false
	// A move with a button down would be a drag, whose target is
	// not the window under the mouse.
	if d.env.IsMouseButtonDown() || !d.env.hasMouse {
		return dispatch.Details{}
	}
	p := d.lastMouseLocationInRoot()
	if !p.In(d.root.localBounds()) {
		return dispatch.Details{}
	}
	d.logger.Debug("synthesizing mouse move", "position", p)
	return d.processor.OnEventFromSource(&event.Event{
		Kind:     event.Move,
		Position: p,
		Flags:    event.Synthesized,
	})
}

func (d *Dispatcher) lastMouseLocationInRoot() f32.Point {
	return d.root.toScreen().Invert().Transform(d.env.mouse)
}

// synthesizeMouseMoveAfterChangeToWindow posts a synthesized move if
// w contains the mouse.
func (d *Dispatcher) synthesizeMouseMoveAfterChangeToWindow(w *Window) {
	if !d.env.hasMouse || !w.IsVisible() || w.Root() != d.root {
		return
	}
	if w.ContainsPointInRoot(d.lastMouseLocationInRoot()) {
		d.PostSynthesizeMouseMove()
	}
}
