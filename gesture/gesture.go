// SPDX-License-Identifier: Unlicense OR MIT

/*
Package gesture connects dispatchers to gesture recognizers.

A dispatcher forwards every touch event to its Recognizer before
dispatching it, and acknowledges the event afterwards with whether a
target consumed it. The recognizer answers the acknowledgement with
the gesture events it detected, which the dispatcher delivers to the
consumer of the touch sequence.

Detector is a small Recognizer detecting taps and scrolls.
*/
package gesture

import (
	"gioui.org/dispatch/f32"
	"gioui.org/dispatch/io/dispatch"
	"gioui.org/dispatch/io/event"
	"gioui.org/dispatch/unit"
)

// Helper is implemented by dispatchers to deliver the output of a
// Recognizer.
type Helper interface {
	// OwnsConsumer reports whether consumer is a live target
	// of the helper. Synthetic touch events for the touches of
	// consumer are dispatched through its owner.
	OwnsConsumer(consumer dispatch.Target) bool
	// CanDispatchToConsumer reports whether the helper is able to
	// deliver gestures to consumer.
	CanDispatchToConsumer(consumer dispatch.Target) bool
	// DispatchGestureEvent delivers a gesture to consumer.
	DispatchGestureEvent(consumer dispatch.Target, e *event.Event)
	// DispatchSyntheticTouchEvent dispatches a touch event
	// synthesized by the recognizer, such as a TouchCancel.
	DispatchSyntheticTouchEvent(e *event.Event)
}

// Recognizer turns touch sequences into gesture events.
type Recognizer interface {
	// ProcessTouchEventPreDispatch records e before it is
	// dispatched to consumer. It returns false if e is not part of
	// a valid touch sequence and must not be dispatched.
	ProcessTouchEventPreDispatch(e *event.Event, consumer dispatch.Target) bool
	// AckTouchEvent acknowledges the last touch event of pointer
	// after its dispatch and returns the gestures it completed.
	// Gesture positions are in the coordinate space of the root.
	AckTouchEvent(pointer int, consumer dispatch.Target, consumed bool) []*event.Event
	// TouchLockedTarget returns the consumer of the touch sequence
	// e belongs to, or nil for the first event of a sequence.
	TouchLockedTarget(e *event.Event) dispatch.Target
	// TargetForLocation returns the consumer of an active touch
	// near p, in root coordinates, or nil.
	TargetForLocation(p f32.Point) dispatch.Target
	// CleanupStateForConsumer forgets the touches of consumer and
	// reports whether there were any.
	CleanupStateForConsumer(consumer dispatch.Target) bool
	// TransferEventsTo makes new the consumer of the touches of
	// current.
	TransferEventsTo(current, new dispatch.Target)
	// CancelActiveTouchesExcept cancels every active touch not
	// consumed by except, which may be nil.
	CancelActiveTouchesExcept(except dispatch.Target)
	AddHelper(h Helper)
	RemoveHelper(h Helper)
}

// Config holds the thresholds of a Detector, in the coordinate space
// of the root.
type Config struct {
	// Slop is the distance a touch point must travel before its
	// tap turns into a scroll.
	Slop unit.Dp
	// Radius is the distance within which a new touch point is
	// targeted at the consumer of an active touch.
	Radius unit.Dp
}

// DefaultConfig is the Config used by NewDetector for zero fields.
var DefaultConfig = Config{
	Slop:   3,
	Radius: 15,
}
