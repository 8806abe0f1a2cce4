// SPDX-License-Identifier: Unlicense OR MIT

package dispatch

import "gioui.org/dispatch/io/event"

// ProcessorDelegate is implemented by concrete dispatchers driven by a
// Processor.
type ProcessorDelegate interface {
	Delegate
	// RootForEvent returns the root of the tree e is routed
	// through. It must not return nil.
	RootForEvent(e *event.Event) Target
	// OnEventProcessingStarted runs before e is targeted, for
	// example to convert its location into the space of the root.
	// It may mark e handled to suppress targeting.
	OnEventProcessingStarted(e *event.Event)
	// OnEventProcessingFinished runs after e was processed, unless
	// the dispatcher was destroyed.
	OnEventProcessingFinished(e *event.Event)
}

// Processor routes events from a source through a tree of targets.
type Processor struct {
	Dispatcher
	delegate ProcessorDelegate
}

// NewProcessor returns a Processor for d.
func NewProcessor(d ProcessorDelegate) *Processor {
	if d == nil {
		panic("dispatch: nil delegate")
	}
	p := &Processor{delegate: d}
	p.Dispatcher.delegate = d
	return p
}

// OnEventFromSource routes e to its initial target and then to the
// next best targets until e is handled.
func (p *Processor) OnEventFromSource(e *event.Event) Details {
	if p.destroyed {
		return Details{DispatcherDestroyed: true}
	}
	root := p.delegate.RootForEvent(e)
	if root == nil {
		panic("dispatch: nil root target")
	}
	targeter := root.EventTargeter()
	if targeter == nil {
		panic("dispatch: root target has no targeter")
	}
	p.delegate.OnEventProcessingStarted(e)
	if p.destroyed {
		return Details{DispatcherDestroyed: true}
	}
	var details Details
	if !e.Handled() {
		target := targeter.FindTargetForEvent(root, e)
		if p.destroyed {
			return Details{DispatcherDestroyed: true}
		}
		details = p.DispatchFrom(targeter, target, e)
		if details.DispatcherDestroyed {
			return details
		}
	}
	p.delegate.OnEventProcessingFinished(e)
	if p.destroyed {
		return Details{DispatcherDestroyed: true}
	}
	return details
}

// DispatchFrom dispatches e to target and, while e is not handled, to
// the next best targets found by targeter. Targets that reject e are
// skipped.
func (p *Processor) DispatchFrom(targeter Targeter, target Target, e *event.Event) Details {
	var details Details
	for target != nil {
		if target.CanAcceptEvent(e) {
			details = p.DispatchEvent(target, e)
			if details.ShouldStopPropagation() || e.Handled() || e.Stopped() {
				return details
			}
		}
		target = targeter.FindNextBestTarget(target, e)
	}
	return details
}
