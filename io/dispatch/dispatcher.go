// SPDX-License-Identifier: Unlicense OR MIT

package dispatch

import "gioui.org/dispatch/io/event"

// Details reports what happened to the dispatcher and the target
// during a dispatch step.
type Details struct {
	// DispatcherDestroyed is set if the dispatcher was destroyed.
	// The caller must return without touching dispatcher state.
	DispatcherDestroyed bool
	// TargetDestroyed is set if the target was destroyed or can no
	// longer receive events. The dispatcher remains usable.
	TargetDestroyed bool
}

// Delegate is implemented by concrete dispatchers to take part in
// dispatching an event to a target.
type Delegate interface {
	// CanDispatchToTarget reports whether events may still be
	// dispatched to t. It turns false when t is destroyed or
	// otherwise detached during the dispatch.
	CanDispatchToTarget(t Target) bool
	// PreDispatchEvent runs before any handler sees e. It may mark
	// e handled to suppress the dispatch.
	PreDispatchEvent(t Target, e *event.Event) Details
	// PostDispatchEvent runs after the handlers. t is nil if the
	// target was destroyed during the dispatch.
	PostDispatchEvent(t Target, e *event.Event) Details
}

// Dispatcher dispatches events to individual targets on behalf of a
// Delegate.
type Dispatcher struct {
	delegate  Delegate
	destroyed bool
	// depth counts the dispatches in flight.
	depth int
}

// ShouldStopPropagation reports whether the event must not be
// offered to other targets.
func (d Details) ShouldStopPropagation() bool {
	return d.DispatcherDestroyed || d.TargetDestroyed
}

// NewDispatcher returns a Dispatcher for d.
func NewDispatcher(d Delegate) *Dispatcher {
	if d == nil {
		panic("dispatch: nil delegate")
	}
	return &Dispatcher{delegate: d}
}

// Destroy marks the dispatcher destroyed. Dispatches in flight stop
// invoking handlers and report DispatcherDestroyed; later dispatches
// do nothing.
func (d *Dispatcher) Destroy() {
	d.destroyed = true
}

// Destroyed reports whether Destroy was called.
func (d *Dispatcher) Destroyed() bool {
	return d.destroyed
}

// Dispatching reports whether a dispatch is in flight.
func (d *Dispatcher) Dispatching() bool {
	return d.depth > 0
}

// DispatchEvent dispatches e to t, bracketed by the delegate's
// PreDispatchEvent and PostDispatchEvent hooks.
func (d *Dispatcher) DispatchEvent(t Target, e *event.Event) Details {
	if t == nil {
		panic("dispatch: nil target")
	}
	if d.destroyed {
		return Details{DispatcherDestroyed: true}
	}
	e.Phase = event.PreDispatch
	details := d.delegate.PreDispatchEvent(t, e)
	if d.destroyed {
		return Details{DispatcherDestroyed: true}
	}
	if !e.Handled() && !details.ShouldStopPropagation() {
		details = d.dispatchToTarget(t, e)
		if details.DispatcherDestroyed {
			return details
		}
	}
	targetDestroyed := details.TargetDestroyed
	post := t
	if targetDestroyed {
		post = nil
	}
	details = d.delegate.PostDispatchEvent(post, e)
	if d.destroyed {
		return Details{DispatcherDestroyed: true}
	}
	details.TargetDestroyed = details.TargetDestroyed || targetDestroyed
	e.Phase = event.PostDispatch
	return details
}

func (d *Dispatcher) dispatchToTarget(t Target, e *event.Event) Details {
	d.depth++
	d.process(t, e)
	d.depth--
	if d.destroyed {
		return Details{DispatcherDestroyed: true}
	}
	return Details{TargetDestroyed: !d.delegate.CanDispatchToTarget(t)}
}

// process runs the handler chain of t.
func (d *Dispatcher) process(t Target, e *event.Event) {
	if !t.CanAcceptEvent(e) || !d.delegate.CanDispatchToTarget(t) {
		return
	}
	e.Target = t
	e.Phase = event.PreTarget
	d.dispatchToHandlers(t, preTargetHandlers(t), e)
	if !d.canContinue(t, e) {
		return
	}
	if h := t.EventHandlers(); h != nil && h.target != nil {
		e.Phase = event.AtTarget
		h.target.HandleEvent(e)
		if !d.canContinue(t, e) {
			return
		}
	}
	e.Phase = event.PostTarget
	d.dispatchToHandlers(t, postTargetHandlers(t), e)
}

func (d *Dispatcher) dispatchToHandlers(t Target, list []entry, e *event.Event) {
	for _, en := range list {
		if !d.canContinue(t, e) {
			return
		}
		// Skip handlers removed by earlier handlers.
		if !en.registered() {
			continue
		}
		en.handler.HandleEvent(e)
	}
}

func (d *Dispatcher) canContinue(t Target, e *event.Event) bool {
	return !d.destroyed && !e.Stopped() && d.delegate.CanDispatchToTarget(t)
}
