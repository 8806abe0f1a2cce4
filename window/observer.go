// SPDX-License-Identifier: Unlicense OR MIT

package window

import (
	"gioui.org/dispatch/f32"
)

type hiddenReason uint8

const (
	windowHidden hiddenReason = iota
	windowDestroyed
	// windowMoving is a window moving to another root.
	windowMoving
)

// OnWindowDestroying implements Observer. Destroying the root closes
// d.
func (d *Dispatcher) OnWindowDestroying(w *Window) {
	if w == d.root {
		d.Close()
		return
	}
	d.synthesizeMouseMoveAfterChangeToWindow(w)
	d.onWindowHidden(w, windowDestroyed)
}

// OnWindowDestroyed implements Observer.
func (d *Dispatcher) OnWindowDestroyed(w *Window) {
	d.env.recognizer.CleanupStateForConsumer(w)
}

// OnWindowVisibilityChanging implements Observer.
func (d *Dispatcher) OnWindowVisibilityChanging(w *Window, visible bool) {
	if !visible {
		d.synthesizeMouseMoveAfterChangeToWindow(w)
	}
}

// OnWindowVisibilityChanged implements Observer.
func (d *Dispatcher) OnWindowVisibilityChanged(w *Window, visible bool) {
	if visible {
		d.synthesizeMouseMoveAfterChangeToWindow(w)
		return
	}
	d.onWindowHidden(w, windowHidden)
}

// OnWindowBoundsChanged implements Observer. A synthesized move is
// posted if the window moved under or away from the mouse.
func (d *Dispatcher) OnWindowBoundsChanged(w *Window, old, new f32.Rectangle) {
	p := w.parent
	if p == nil || !d.env.hasMouse || !w.IsVisible() {
		return
	}
	m := d.lastMouseLocationInRoot()
	if m.In(d.rectInRoot(p, old)) != m.In(d.rectInRoot(p, new)) {
		d.PostSynthesizeMouseMove()
	}
}

// OnWindowAddedToRootWindow implements Observer.
func (d *Dispatcher) OnWindowAddedToRootWindow(w *Window) {
	d.synthesizeMouseMoveAfterChangeToWindow(w)
}

// OnWindowRemovingFromRootWindow implements Observer.
func (d *Dispatcher) OnWindowRemovingFromRootWindow(w *Window, newRoot *Window) {
	d.synthesizeMouseMoveAfterChangeToWindow(w)
	reason := windowHidden
	if newRoot != nil {
		reason = windowMoving
	}
	d.onWindowHidden(w, reason)
}

// onWindowHidden stops dispatching to w and its descendants.
func (d *Dispatcher) onWindowHidden(w *Window, reason hiddenReason) {
	if w.Contains(d.mousePressedHandler) {
		d.mousePressedHandler, d.pressedButtons = nil, 0
	}
	if w.Contains(d.mouseMovedHandler) {
		d.mouseMovedHandler = nil
	}
	for i := range d.frames {
		if w.Contains(d.frames[i].target) {
			d.frames[i].target = nil
		}
	}
	if reason == windowMoving || w == d.root {
		return
	}
	// Releasing capture may destroy the capture window.
	if c := d.captureWindow(); c != nil && w.Contains(c) {
		d.env.capture.ReleaseCapture(c)
	}
}

func (d *Dispatcher) rectInRoot(parent *Window, r f32.Rectangle) f32.Rectangle {
	a := ConvertPoint(parent, d.root, r.Min)
	b := ConvertPoint(parent, d.root, r.Max)
	return f32.Rectangle{Min: a, Max: b}.Canon()
}
