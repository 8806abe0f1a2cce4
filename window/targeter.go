// SPDX-License-Identifier: Unlicense OR MIT

package window

import (
	"gioui.org/dispatch/io/dispatch"
	"gioui.org/dispatch/io/event"
)

// Targeter is the targeter of root windows. Before hit-testing, it
// redirects mouse events to the window that received the press, any
// event to the capture window, and touch events to the consumer of
// their touch sequence or of a nearby touch. Touch events do not
// bubble; other events bubble to the nearest accepting ancestor.
type Targeter struct {
	d    *Dispatcher
	tree dispatch.TreeTargeter
}

var _ dispatch.Targeter = (*Targeter)(nil)

func (t *Targeter) FindTargetForEvent(root dispatch.Target, e *event.Event) dispatch.Target {
	rw, ok := root.(*Window)
	if !ok || rw != t.d.root {
		panic("window: targeter used outside its root")
	}
	if !e.IsLocated() {
		if w := t.findNonLocated(rw, e); w != nil {
			return w
		}
		return nil
	}
	if w := t.findInRoot(rw, e); w != nil {
		dispatch.ConvertEvent(rw, w, e)
		return w
	}
	if w := t.tree.FindTargetForLocatedEvent(rw, e); w != nil {
		return w
	}
	return nil
}

func (t *Targeter) FindNextBestTarget(prev dispatch.Target, e *event.Event) dispatch.Target {
	if e.IsTouch() {
		return nil
	}
	return t.tree.FindNextBestTarget(prev, e)
}

// findInRoot returns the window a located event is redirected to, or
// nil to hit-test. The position of e is in the space of the root.
func (t *Targeter) findInRoot(root *Window, e *event.Event) *Window {
	d := t.d
	if (e.IsMouse() || e.Kind == event.Scroll) && d.mousePressedHandler != nil {
		return d.mousePressedHandler
	}
	if c := d.captureWindow(); c != nil {
		return c
	}
	if e.IsTouch() {
		rec := d.env.recognizer
		if c := d.ownWindow(rec.TouchLockedTarget(e)); c != nil {
			return c
		}
		if e.Kind == event.TouchPress {
			if c := d.ownWindow(rec.TargetForLocation(e.Position)); c != nil {
				return c
			}
		}
		// Touches starting outside the root go to the root.
		if !e.Position.In(root.localBounds()) {
			return root
		}
	}
	return nil
}

// findNonLocated targets events without a location, such as Cancel.
func (t *Targeter) findNonLocated(root *Window, e *event.Event) *Window {
	if c := t.d.captureWindow(); c != nil {
		return c
	}
	if h := t.d.mousePressedHandler; h != nil {
		return h
	}
	if root.CanAcceptEvent(e) {
		return root
	}
	return nil
}
