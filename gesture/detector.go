// SPDX-License-Identifier: Unlicense OR MIT

package gesture

import (
	"fmt"
	"log/slog"

	"golang.org/x/exp/maps"
	"golang.org/x/exp/slices"

	"gioui.org/dispatch/f32"
	"gioui.org/dispatch/internal/log"
	"gioui.org/dispatch/io/dispatch"
	"gioui.org/dispatch/io/event"
)

// Detector is a Recognizer for tap and scroll gestures. A touch point
// that goes down produces GestureTapDown. If it travels farther than
// the slop it produces GestureTapCancel followed by a scroll, otherwise
// its release produces GestureTap.
type Detector struct {
	cfg     Config
	logger  *slog.Logger
	helpers []Helper
	touches map[int]*touch
}

// TouchState is the state of a touch point tracked by a Detector.
type TouchState uint8

type touch struct {
	id       int
	consumer dispatch.Target
	state    TouchState
	start    f32.Point
	last     f32.Point
	// pending is the last event recorded before its dispatch.
	pending event.Event
	acked   bool
}

const (
	// StateDown is a touch point that may still become a tap.
	StateDown TouchState = iota
	// StateScrolling is a touch point that moved past the slop.
	StateScrolling
	// StateIgnored is a touch point whose press a target consumed.
	// It produces no gestures.
	StateIgnored
)

var _ Recognizer = (*Detector)(nil)

// NewDetector returns a Detector configured by cfg. Zero fields of cfg
// are taken from DefaultConfig.
func NewDetector(cfg Config, l *slog.Logger) *Detector {
	if cfg.Slop == 0 {
		cfg.Slop = DefaultConfig.Slop
	}
	if cfg.Radius == 0 {
		cfg.Radius = DefaultConfig.Radius
	}
	return &Detector{
		cfg:     cfg,
		logger:  log.OrNop(l),
		touches: make(map[int]*touch),
	}
}

// ActiveTouches returns the number of touch points being tracked.
func (d *Detector) ActiveTouches() int {
	return len(d.touches)
}

func (d *Detector) AddHelper(h Helper) {
	if !slices.Contains(d.helpers, h) {
		d.helpers = append(d.helpers, h)
	}
}

func (d *Detector) RemoveHelper(h Helper) {
	if i := slices.Index(d.helpers, h); i != -1 {
		d.helpers = slices.Delete(d.helpers, i, i+1)
	}
}

func (d *Detector) ProcessTouchEventPreDispatch(e *event.Event, consumer dispatch.Target) bool {
	t, ok := d.touches[e.PointerID]
	switch e.Kind {
	case event.TouchPress:
		if ok {
			d.logger.Debug("touch press for active pointer", "pointer", e.PointerID)
			return false
		}
		t = &touch{id: e.PointerID, consumer: consumer, start: e.RootPosition, last: e.RootPosition}
		d.touches[e.PointerID] = t
	case event.TouchMove, event.TouchRelease, event.TouchCancel:
		if !ok {
			return false
		}
	default:
		return false
	}
	t.pending = *e
	t.acked = false
	return true
}

func (d *Detector) AckTouchEvent(pointer int, consumer dispatch.Target, consumed bool) []*event.Event {
	t, ok := d.touches[pointer]
	if !ok || t.acked {
		return nil
	}
	t.acked = true
	e := t.pending
	var gestures []*event.Event
	emit := func(g event.GestureType, scroll f32.Point) {
		gestures = append(gestures, &event.Event{
			Kind:         event.Gesture,
			Gesture:      g,
			Position:     e.RootPosition,
			RootPosition: e.RootPosition,
			Flags:        e.Flags &^ event.Buttons,
			Time:         e.Time,
			PointerID:    pointer,
			Scroll:       scroll,
		})
	}
	switch e.Kind {
	case event.TouchPress:
		if consumed {
			t.state = StateIgnored
			break
		}
		emit(event.GestureTapDown, f32.Point{})
	case event.TouchMove:
		switch t.state {
		case StateDown:
			if !d.beyondSlop(t.start, e.RootPosition) {
				break
			}
			t.state = StateScrolling
			emit(event.GestureTapCancel, f32.Point{})
			emit(event.GestureScrollBegin, f32.Point{})
			emit(event.GestureScrollUpdate, e.RootPosition.Sub(t.last))
			t.last = e.RootPosition
		case StateScrolling:
			emit(event.GestureScrollUpdate, e.RootPosition.Sub(t.last))
			t.last = e.RootPosition
		}
	case event.TouchRelease, event.TouchCancel:
		delete(d.touches, pointer)
		switch t.state {
		case StateDown:
			if e.Kind == event.TouchRelease {
				emit(event.GestureTap, f32.Point{})
			} else {
				emit(event.GestureTapCancel, f32.Point{})
			}
		case StateScrolling:
			emit(event.GestureScrollEnd, f32.Point{})
		}
	}
	return gestures
}

func (d *Detector) beyondSlop(a, b f32.Point) bool {
	slop := float32(d.cfg.Slop)
	v := b.Sub(a)
	return v.X*v.X+v.Y*v.Y > slop*slop
}

func (d *Detector) TouchLockedTarget(e *event.Event) dispatch.Target {
	if e.Kind == event.TouchPress {
		return nil
	}
	if t, ok := d.touches[e.PointerID]; ok {
		return t.consumer
	}
	return nil
}

func (d *Detector) TargetForLocation(p f32.Point) dispatch.Target {
	var (
		best dispatch.Target
		dist float32
	)
	r := float32(d.cfg.Radius)
	for _, id := range d.ids() {
		t := d.touches[id]
		v := t.last.Sub(p)
		dd := v.X*v.X + v.Y*v.Y
		if dd > r*r {
			continue
		}
		if best == nil || dd < dist {
			best, dist = t.consumer, dd
		}
	}
	return best
}

func (d *Detector) CleanupStateForConsumer(consumer dispatch.Target) bool {
	found := false
	for id, t := range d.touches {
		if t.consumer == consumer {
			delete(d.touches, id)
			found = true
		}
	}
	return found
}

func (d *Detector) TransferEventsTo(current, new dispatch.Target) {
	for _, t := range d.touches {
		if t.consumer == current {
			t.consumer = new
		}
	}
}

func (d *Detector) CancelActiveTouchesExcept(except dispatch.Target) {
	for _, id := range d.ids() {
		t, ok := d.touches[id]
		if !ok || (except != nil && t.consumer == except) {
			continue
		}
		h := d.helperFor(t.consumer)
		if h == nil {
			d.logger.Debug("no helper for touch consumer", "pointer", id)
			delete(d.touches, id)
			continue
		}
		h.DispatchSyntheticTouchEvent(&event.Event{
			Kind:         event.TouchCancel,
			Position:     t.last,
			RootPosition: t.last,
			Flags:        event.Synthesized,
			Time:         t.pending.Time,
			PointerID:    id,
		})
		// The helper may have been unable to dispatch.
		delete(d.touches, id)
	}
}

// ids returns the active pointer ids in increasing order.
func (d *Detector) ids() []int {
	ids := maps.Keys(d.touches)
	slices.Sort(ids)
	return ids
}

func (d *Detector) helperFor(consumer dispatch.Target) Helper {
	for _, h := range d.helpers {
		if h.OwnsConsumer(consumer) {
			return h
		}
	}
	return nil
}

func (s TouchState) String() string {
	switch s {
	case StateDown:
		return "Down"
	case StateScrolling:
		return "Scrolling"
	case StateIgnored:
		return "Ignored"
	default:
		panic(fmt.Sprintf("unknown TouchState %d", s))
	}
}
