// SPDX-License-Identifier: Unlicense OR MIT

// Package event contains the event type routed through a dispatch tree
// and the handler interface that receives it.
package event

import (
	"fmt"
	"strings"
	"time"

	"gioui.org/dispatch/f32"
)

// Tag is the stable identifier for an event target. Dispatchers
// record the target of an event as a Tag.
type Tag interface{}

// Event is an input event. Apart from the handled and stopped bits it
// is treated as a value; dispatchers copy it when they need to keep it
// beyond a single dispatch.
type Event struct {
	Kind Kind
	// Position is the location of the event in the coordinate
	// space of the current target. It is rewritten every time the
	// event is converted to another target.
	Position f32.Point
	// RootPosition is the location in the coordinate space of
	// the root target.
	RootPosition f32.Point
	// Flags is the set of pressed buttons, active modifiers and
	// event attributes.
	Flags Flags
	// ChangedButtons is the set of buttons that changed state for
	// Press and Release events.
	ChangedButtons Flags
	// Time is when the event was received. The
	// timestamp is relative to an undefined base.
	Time time.Duration
	// PointerID identifies the pointer or touch point and can be used
	// to track a particular pointer from press to release or cancel.
	PointerID int
	// Scroll is the scroll amount of Wheel, Scroll and scroll
	// gesture events.
	Scroll f32.Point
	// Gesture is the gesture type of Gesture events.
	Gesture GestureType

	// Target is the target currently receiving the event.
	Target Tag
	// Phase is the dispatch phase of the event.
	Phase Phase

	handled bool
	stopped bool
}

// Handler receives events.
type Handler interface {
	HandleEvent(e *Event)
}

// Kind of an Event.
type Kind uint32

// Flags is a set of buttons, modifiers and event attributes.
type Flags uint16

// Phase tracks the progress of an event through a dispatch.
type Phase uint8

// GestureType is the type of a Gesture event.
type GestureType uint8

const (
	// A Cancel event is delivered when in-progress interactions
	// must be aborted, for example after losing focus or capture.
	Cancel Kind = 1 << iota
	// Press of a pointer button.
	Press
	// Release of a pointer button.
	Release
	// Move of a pointer with no buttons pressed.
	Move
	// Drag of a pointer with buttons pressed.
	Drag
	// Pointer enters a target.
	Enter
	// Pointer exits a target.
	Exit
	// Wheel rotation of a mouse wheel.
	Wheel
	// Scroll from a touchpad or similar device.
	Scroll
	// TouchPress starts a touch point.
	TouchPress
	// TouchMove moves a touch point.
	TouchMove
	// TouchRelease ends a touch point.
	TouchRelease
	// TouchCancel aborts a touch point.
	TouchCancel
	// Gesture is a gesture synthesized from touch events.
	Gesture
)

const (
	// Mouse kinds.
	MouseKinds = Press | Release | Move | Drag | Enter | Exit | Wheel
	// Touch kinds.
	TouchKinds = TouchPress | TouchMove | TouchRelease | TouchCancel
	// Located kinds carry a position.
	LocatedKinds = MouseKinds | Scroll | TouchKinds | Gesture
)

const (
	// ButtonPrimary is the primary button, usually the left button for a
	// right-handed user.
	ButtonPrimary Flags = 1 << iota
	// ButtonSecondary is the secondary button, usually the right button for a
	// right-handed user.
	ButtonSecondary
	// ButtonTertiary is the tertiary button, usually the middle button.
	ButtonTertiary
	// ModShift is the shift modifier.
	ModShift
	// ModCtrl is the control modifier.
	ModCtrl
	// ModAlt is the alt modifier.
	ModAlt
	// ModSuper is the logo or command modifier.
	ModSuper
	// Synthesized marks events generated by the dispatcher rather
	// than a platform source.
	Synthesized
)

// Buttons is the set of all button flags.
const Buttons = ButtonPrimary | ButtonSecondary | ButtonTertiary

const (
	// PreDispatch is the phase before the dispatcher hooks ran.
	PreDispatch Phase = iota
	// PreTarget is the phase of handlers registered on the target
	// and its ancestors to see events before the target.
	PreTarget
	// AtTarget is the phase of the target's own handler.
	AtTarget
	// PostTarget is the phase of handlers registered to see events
	// after the target.
	PostTarget
	// PostDispatch is the phase after the dispatch completed.
	PostDispatch
)

const (
	// GestureTapDown is reported when a touch point goes down.
	GestureTapDown GestureType = iota + 1
	// GestureTap is reported for a completed tap.
	GestureTap
	// GestureTapCancel is reported when a touch point that went down
	// will not result in a tap.
	GestureTapCancel
	// GestureScrollBegin is reported when a touch point moved farther
	// than the touch slop.
	GestureScrollBegin
	// GestureScrollUpdate carries the scroll distance since the last
	// update in Event.Scroll.
	GestureScrollUpdate
	// GestureScrollEnd ends a scroll.
	GestureScrollEnd
)

// SetHandled marks the event as handled. A handled event is not
// offered to further targets.
func (e *Event) SetHandled() {
	e.handled = true
}

// Handled reports whether a handler marked the event handled.
func (e *Event) Handled() bool {
	return e.handled
}

// StopPropagation stops the event from reaching more handlers. It
// does not mark the event handled.
func (e *Event) StopPropagation() {
	e.stopped = true
}

// Stopped reports whether StopPropagation was called.
func (e *Event) Stopped() bool {
	return e.stopped
}

// Reset clears the handled and stopped bits and the dispatch state of
// the event, for dispatching a copy of it again.
func (e *Event) Reset() {
	e.handled = false
	e.stopped = false
	e.Target = nil
	e.Phase = PreDispatch
}

// IsLocated reports whether e carries a location.
func (e *Event) IsLocated() bool {
	return e.Kind&LocatedKinds != 0
}

// IsMouse reports whether e is a mouse event.
func (e *Event) IsMouse() bool {
	return e.Kind&MouseKinds != 0
}

// IsTouch reports whether e is a touch event.
func (e *Event) IsTouch() bool {
	return e.Kind&TouchKinds != 0
}

// IsSynthesized reports whether e was generated by a dispatcher.
func (e *Event) IsSynthesized() bool {
	return e.Flags&Synthesized != 0
}

func (e *Event) String() string {
	s := fmt.Sprintf("%v@%v", e.Kind, e.Position)
	if e.Kind == Gesture {
		s += "(" + e.Gesture.String() + ")"
	}
	return s
}

func (t Kind) String() string {
	if t == 0 {
		return "None"
	}
	var buf strings.Builder
	for tt := Kind(1); tt > 0 && tt <= Gesture; tt <<= 1 {
		if t&tt > 0 {
			if buf.Len() > 0 {
				buf.WriteByte('|')
			}
			buf.WriteString((t & tt).string())
		}
	}
	return buf.String()
}

func (t Kind) string() string {
	switch t {
	case Cancel:
		return "Cancel"
	case Press:
		return "Press"
	case Release:
		return "Release"
	case Move:
		return "Move"
	case Drag:
		return "Drag"
	case Enter:
		return "Enter"
	case Exit:
		return "Exit"
	case Wheel:
		return "Wheel"
	case Scroll:
		return "Scroll"
	case TouchPress:
		return "TouchPress"
	case TouchMove:
		return "TouchMove"
	case TouchRelease:
		return "TouchRelease"
	case TouchCancel:
		return "TouchCancel"
	case Gesture:
		return "Gesture"
	default:
		panic("unknown Kind")
	}
}

// Contain reports whether the set f contains
// all of the flags in f2.
func (f Flags) Contain(f2 Flags) bool {
	return f&f2 == f2
}

func (f Flags) String() string {
	var strs []string
	names := []struct {
		f    Flags
		name string
	}{
		{ButtonPrimary, "ButtonPrimary"},
		{ButtonSecondary, "ButtonSecondary"},
		{ButtonTertiary, "ButtonTertiary"},
		{ModShift, "Shift"},
		{ModCtrl, "Ctrl"},
		{ModAlt, "Alt"},
		{ModSuper, "Super"},
		{Synthesized, "Synthesized"},
	}
	for _, n := range names {
		if f.Contain(n.f) {
			strs = append(strs, n.name)
		}
	}
	return strings.Join(strs, "|")
}

func (p Phase) String() string {
	switch p {
	case PreDispatch:
		return "PreDispatch"
	case PreTarget:
		return "PreTarget"
	case AtTarget:
		return "AtTarget"
	case PostTarget:
		return "PostTarget"
	case PostDispatch:
		return "PostDispatch"
	default:
		panic("unknown Phase")
	}
}

func (g GestureType) String() string {
	switch g {
	case 0:
		return "None"
	case GestureTapDown:
		return "TapDown"
	case GestureTap:
		return "Tap"
	case GestureTapCancel:
		return "TapCancel"
	case GestureScrollBegin:
		return "ScrollBegin"
	case GestureScrollUpdate:
		return "ScrollUpdate"
	case GestureScrollEnd:
		return "ScrollEnd"
	default:
		panic("unknown GestureType")
	}
}
