// SPDX-License-Identifier: Unlicense OR MIT

package gesture

import (
	"testing"

	"gioui.org/dispatch/f32"
	"gioui.org/dispatch/io/dispatch"
	"gioui.org/dispatch/io/event"
)

type consumer struct{ name string }

type helper struct {
	d       *Detector
	accepts dispatch.Target
	// noGestures refuses gestures while still owning accepts.
	noGestures bool
	gestures   []event.GestureType
	touches    []event.Kind
}

func (c *consumer) ParentTarget() dispatch.Target      { return nil }
func (c *consumer) ChildIterator() dispatch.Iterator   { return nil }
func (c *consumer) CanAcceptEvent(e *event.Event) bool { return true }
func (c *consumer) EventTargeter() dispatch.Targeter   { return nil }
func (c *consumer) EventHandlers() *dispatch.Handlers  { return nil }
func (h *helper) OwnsConsumer(c dispatch.Target) bool  { return c == h.accepts }

func (h *helper) CanDispatchToConsumer(c dispatch.Target) bool {
	return c == h.accepts && !h.noGestures
}

func (h *helper) DispatchGestureEvent(c dispatch.Target, e *event.Event) {
	h.gestures = append(h.gestures, e.Gesture)
}

// DispatchSyntheticTouchEvent runs the touch through the detector the
// way a dispatcher would.
func (h *helper) DispatchSyntheticTouchEvent(e *event.Event) {
	h.touches = append(h.touches, e.Kind)
	target := h.d.TouchLockedTarget(e)
	if !h.d.ProcessTouchEventPreDispatch(e, target) {
		return
	}
	for _, g := range h.d.AckTouchEvent(e.PointerID, target, false) {
		if h.CanDispatchToConsumer(target) {
			h.DispatchGestureEvent(target, g)
		}
	}
}

func touchEvent(k event.Kind, id int, x, y float32) *event.Event {
	p := f32.Pt(x, y)
	return &event.Event{Kind: k, PointerID: id, Position: p, RootPosition: p}
}

// feed processes events for target and returns the gestures produced.
func feed(d *Detector, target dispatch.Target, consumed bool, events ...*event.Event) []*event.Event {
	var gestures []*event.Event
	for _, e := range events {
		if !d.ProcessTouchEventPreDispatch(e, target) {
			continue
		}
		gestures = append(gestures, d.AckTouchEvent(e.PointerID, target, consumed)...)
	}
	return gestures
}

func types(gestures []*event.Event) []event.GestureType {
	var t []event.GestureType
	for _, g := range gestures {
		t = append(t, g.Gesture)
	}
	return t
}

func equalTypes(a, b []event.GestureType) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func TestDetectorGestures(t *testing.T) {
	for _, tc := range []struct {
		label  string
		events []*event.Event
		want   []event.GestureType
	}{
		{
			label: "tap",
			events: []*event.Event{
				touchEvent(event.TouchPress, 1, 10, 10),
				touchEvent(event.TouchMove, 1, 11, 11),
				touchEvent(event.TouchRelease, 1, 11, 11),
			},
			want: []event.GestureType{event.GestureTapDown, event.GestureTap},
		},
		{
			label: "scroll",
			events: []*event.Event{
				touchEvent(event.TouchPress, 1, 10, 10),
				touchEvent(event.TouchMove, 1, 10, 20),
				touchEvent(event.TouchMove, 1, 10, 25),
				touchEvent(event.TouchRelease, 1, 10, 25),
			},
			want: []event.GestureType{
				event.GestureTapDown,
				event.GestureTapCancel,
				event.GestureScrollBegin,
				event.GestureScrollUpdate,
				event.GestureScrollUpdate,
				event.GestureScrollEnd,
			},
		},
		{
			label: "cancel",
			events: []*event.Event{
				touchEvent(event.TouchPress, 1, 10, 10),
				touchEvent(event.TouchCancel, 1, 10, 10),
			},
			want: []event.GestureType{event.GestureTapDown, event.GestureTapCancel},
		},
		{
			label: "orphan move",
			events: []*event.Event{
				touchEvent(event.TouchMove, 1, 10, 10),
				touchEvent(event.TouchRelease, 1, 10, 10),
			},
		},
	} {
		t.Run(tc.label, func(t *testing.T) {
			d := NewDetector(Config{}, nil)
			got := types(feed(d, &consumer{}, false, tc.events...))
			if !equalTypes(got, tc.want) {
				t.Errorf("got gestures %v, want %v", got, tc.want)
			}
			if n := d.ActiveTouches(); n != 0 {
				t.Errorf("%d touches left active", n)
			}
		})
	}
}

func TestDetectorScrollDistance(t *testing.T) {
	d := NewDetector(Config{}, nil)
	c := &consumer{}
	feed(d, c, false, touchEvent(event.TouchPress, 1, 10, 10))
	got := feed(d, c, false, touchEvent(event.TouchMove, 1, 10, 20))
	if len(got) != 3 {
		t.Fatalf("got %d gestures, want 3", len(got))
	}
	if s := got[2].Scroll; s != f32.Pt(0, 10) {
		t.Errorf("scroll = %v, want (0,10)", s)
	}
	got = feed(d, c, false, touchEvent(event.TouchMove, 1, 15, 22))
	if s := got[0].Scroll; s != f32.Pt(5, 2) {
		t.Errorf("scroll = %v, want (5,2)", s)
	}
}

func TestDetectorConsumedPress(t *testing.T) {
	d := NewDetector(Config{}, nil)
	got := feed(d, &consumer{}, true,
		touchEvent(event.TouchPress, 1, 10, 10),
		touchEvent(event.TouchMove, 1, 40, 40),
		touchEvent(event.TouchRelease, 1, 40, 40),
	)
	if len(got) != 0 {
		t.Errorf("consumed touch produced gestures %v", types(got))
	}
}

func TestDetectorDoublePress(t *testing.T) {
	d := NewDetector(Config{}, nil)
	c := &consumer{}
	if !d.ProcessTouchEventPreDispatch(touchEvent(event.TouchPress, 1, 0, 0), c) {
		t.Fatal("first press rejected")
	}
	if d.ProcessTouchEventPreDispatch(touchEvent(event.TouchPress, 1, 0, 0), c) {
		t.Error("second press of an active pointer accepted")
	}
}

func TestDetectorTargeting(t *testing.T) {
	d := NewDetector(Config{Radius: 10}, nil)
	a, b := &consumer{name: "a"}, &consumer{name: "b"}
	feed(d, a, false, touchEvent(event.TouchPress, 1, 10, 10))
	feed(d, b, false, touchEvent(event.TouchPress, 2, 50, 50))

	if got := d.TouchLockedTarget(touchEvent(event.TouchMove, 2, 0, 0)); got != dispatch.Target(b) {
		t.Errorf("touch lock = %v, want b", got)
	}
	if got := d.TouchLockedTarget(touchEvent(event.TouchPress, 3, 0, 0)); got != nil {
		t.Errorf("press locked to %v", got)
	}
	if got := d.TargetForLocation(f32.Pt(15, 15)); got != dispatch.Target(a) {
		t.Errorf("proximity target = %v, want a", got)
	}
	if got := d.TargetForLocation(f32.Pt(30, 30)); got != nil {
		t.Errorf("proximity target = %v, want nil", got)
	}

	d.TransferEventsTo(a, b)
	if got := d.TouchLockedTarget(touchEvent(event.TouchMove, 1, 0, 0)); got != dispatch.Target(b) {
		t.Errorf("after transfer touch lock = %v, want b", got)
	}
	if !d.CleanupStateForConsumer(b) {
		t.Error("no state cleaned up for b")
	}
	if n := d.ActiveTouches(); n != 0 {
		t.Errorf("%d touches left after cleanup", n)
	}
}

func TestDetectorCancelActiveTouches(t *testing.T) {
	d := NewDetector(Config{}, nil)
	a, b := &consumer{name: "a"}, &consumer{name: "b"}
	ha := &helper{d: d, accepts: a}
	d.AddHelper(ha)
	feed(d, a, false, touchEvent(event.TouchPress, 1, 10, 10))
	feed(d, b, false, touchEvent(event.TouchPress, 2, 50, 50))

	d.CancelActiveTouchesExcept(b)
	want := []event.GestureType{event.GestureTapCancel}
	if !equalTypes(ha.gestures, want) {
		t.Errorf("got gestures %v, want %v", ha.gestures, want)
	}
	if n := d.ActiveTouches(); n != 1 {
		t.Errorf("%d touches active, want 1", n)
	}
	// Touches without a helper are dropped.
	d.CancelActiveTouchesExcept(nil)
	if n := d.ActiveTouches(); n != 0 {
		t.Errorf("%d touches active, want 0", n)
	}
	d.RemoveHelper(ha)
	if len(d.helpers) != 0 {
		t.Error("helper not removed")
	}
}

func TestDetectorCancelTouchesWithoutGestures(t *testing.T) {
	d := NewDetector(Config{}, nil)
	a := &consumer{name: "a"}
	ha := &helper{d: d, accepts: a, noGestures: true}
	d.AddHelper(ha)
	feed(d, a, false, touchEvent(event.TouchPress, 1, 10, 10))

	d.CancelActiveTouchesExcept(nil)
	if len(ha.touches) != 1 || ha.touches[0] != event.TouchCancel {
		t.Errorf("got synthetic touches %v, want [TouchCancel]", ha.touches)
	}
	if len(ha.gestures) != 0 {
		t.Errorf("got gestures %v for a consumer without gestures", ha.gestures)
	}
	if n := d.ActiveTouches(); n != 0 {
		t.Errorf("%d touches active, want 0", n)
	}
}
