// SPDX-License-Identifier: Unlicense OR MIT

package window

import (
	"gioui.org/dispatch/capture"
	"gioui.org/dispatch/io/dispatch"
	"gioui.org/dispatch/io/event"
)

var _ capture.Delegate = (*Dispatcher)(nil)

// UpdateCapture implements capture.Delegate. A window of the tree of d
// losing capture receives a Cancel event.
func (d *Dispatcher) UpdateCapture(old, new dispatch.Target) {
	if d.inShutdown {
		return
	}
	if ow := d.ownWindow(old); d.alive(ow) && !d.cancelling {
		details := d.processor.DispatchEvent(ow, &event.Event{Kind: event.Cancel, Flags: event.Synthesized})
		if details.DispatcherDestroyed {
			return
		}
	}
	if nw := d.ownWindow(new); nw != nil {
		// Route the following mouse events to the capture window.
		if d.mouseMovedHandler != nil || d.env.IsMouseButtonDown() {
			d.mouseMovedHandler = nw
		}
	} else if new == nil {
		d.PostSynthesizeMouseMove()
	}
	d.mousePressedHandler, d.pressedButtons = nil, 0
}

// OnOtherRootGotCapture implements capture.Delegate. The window under
// the mouse receives an Exit event.
func (d *Dispatcher) OnOtherRootGotCapture() {
	if d.inShutdown {
		return
	}
	if d.mouseMovedHandler != nil {
		p := d.lastMouseLocationInRoot()
		ev := &event.Event{Kind: event.Exit, Position: p, RootPosition: p}
		if details := d.dispatchMouseEnterOrExit(nil, ev, event.Exit); details.DispatcherDestroyed {
			return
		}
	}
	d.mouseMovedHandler = nil
	d.mousePressedHandler, d.pressedButtons = nil, 0
}

// SetNativeCapture implements capture.Delegate.
func (d *Dispatcher) SetNativeCapture() {
	d.nativeCapture = true
	if d.host != nil {
		d.host.SetCapture()
	}
}

// ReleaseNativeCapture implements capture.Delegate.
func (d *Dispatcher) ReleaseNativeCapture() {
	d.nativeCapture = false
	if d.host != nil {
		d.host.ReleaseCapture()
	}
}

// DispatchCancelModeEvent dispatches a Cancel event to the capture
// window, or the mouse pressed handler, or the root. Afterwards the
// mouse pressed handler is cleared and capture released.
func (d *Dispatcher) DispatchCancelModeEvent() dispatch.Details {
	return d.processor.OnEventFromSource(&event.Event{Kind: event.Cancel, Flags: event.Synthesized})
}
