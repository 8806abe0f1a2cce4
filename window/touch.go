// SPDX-License-Identifier: Unlicense OR MIT

package window

import (
	"gioui.org/dispatch/gesture"
	"gioui.org/dispatch/io/dispatch"
	"gioui.org/dispatch/io/event"
)

var _ gesture.Helper = (*Dispatcher)(nil)

func (d *Dispatcher) preDispatchTouchEvent(w *Window, e *event.Event) {
	if !d.env.recognizer.ProcessTouchEventPreDispatch(e, w) {
		d.logger.Debug("touch event ignored", "event", e)
		e.StopPropagation()
		d.frames[len(d.frames)-1].ignored = true
	}
}

// processGestures dispatches the gestures of a touch dispatched to
// consumer.
func (d *Dispatcher) processGestures(consumer *Window, gestures []*event.Event) dispatch.Details {
	var details dispatch.Details
	for _, g := range gestures {
		if !d.CanDispatchToConsumer(consumer) {
			d.logger.Debug("gesture dropped", "event", g, "consumer", consumer)
			continue
		}
		details = d.dispatchGesture(consumer, g)
		if details.ShouldStopPropagation() {
			break
		}
	}
	return details
}

func (d *Dispatcher) dispatchGesture(consumer *Window, g *event.Event) dispatch.Details {
	g.RootPosition = g.Position
	dispatch.ConvertEvent(d.root, consumer, g)
	return d.processor.DispatchFrom(d.targeter, consumer, g)
}

// OwnsConsumer implements gesture.Helper.
func (d *Dispatcher) OwnsConsumer(consumer dispatch.Target) bool {
	w := d.ownWindow(consumer)
	return w != nil && !d.inShutdown && !w.destroyed
}

// CanDispatchToConsumer implements gesture.Helper. Gestures are only
// dispatched to live windows of the tree of d that enable them.
func (d *Dispatcher) CanDispatchToConsumer(consumer dispatch.Target) bool {
	return d.OwnsConsumer(consumer) && d.ownWindow(consumer).GesturesEnabled()
}

// DispatchGestureEvent implements gesture.Helper. The position of e is
// in the space of the root.
func (d *Dispatcher) DispatchGestureEvent(consumer dispatch.Target, e *event.Event) {
	if !d.CanDispatchToConsumer(consumer) {
		return
	}
	d.dispatchGesture(d.ownWindow(consumer), e)
}

// DispatchSyntheticTouchEvent implements gesture.Helper. The position
// of e is in the space of the root.
func (d *Dispatcher) DispatchSyntheticTouchEvent(e *event.Event) {
	if d.inShutdown {
		return
	}
	e.Flags |= event.Synthesized
	d.processor.OnEventFromSource(e)
}
