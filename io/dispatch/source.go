// SPDX-License-Identifier: Unlicense OR MIT

package dispatch

import (
	"golang.org/x/exp/slices"

	"gioui.org/dispatch/io/event"
)

// Sink receives events from a Source. Processor is a Sink.
type Sink interface {
	OnEventFromSource(e *event.Event) Details
}

// RewriteStatus is the outcome of a Rewriter.
type RewriteStatus uint8

// Rewriter inspects events before they reach the sink, and may
// replace or discard them.
type Rewriter interface {
	// RewriteEvent returns the status and, for Rewritten, the
	// replacement event.
	RewriteEvent(e *event.Event) (RewriteStatus, *event.Event)
}

// Source delivers events from a platform to a Sink through a chain of
// Rewriters.
type Source struct {
	sink      Sink
	rewriters []Rewriter
}

const (
	// Continue passes the event on unchanged.
	Continue RewriteStatus = iota
	// Rewritten replaces the event.
	Rewritten
	// Discard drops the event.
	Discard
)

// NewSource returns a Source delivering to sink.
func NewSource(sink Sink) *Source {
	return &Source{sink: sink}
}

// AddRewriter appends r to the rewriter chain.
func (s *Source) AddRewriter(r Rewriter) {
	if !slices.Contains(s.rewriters, r) {
		s.rewriters = append(s.rewriters, r)
	}
}

// RemoveRewriter removes r from the rewriter chain.
func (s *Source) RemoveRewriter(r Rewriter) {
	if i := slices.Index(s.rewriters, r); i != -1 {
		s.rewriters = slices.Delete(s.rewriters, i, i+1)
	}
}

// SendEvent passes e through the rewriters and delivers the result to
// the sink. Discarded events yield zero Details.
func (s *Source) SendEvent(e *event.Event) Details {
	for _, r := range slices.Clone(s.rewriters) {
		status, out := r.RewriteEvent(e)
		switch status {
		case Discard:
			return Details{}
		case Rewritten:
			if out == nil {
				panic("dispatch: rewriter returned a nil event")
			}
			e = out
		}
	}
	return s.sink.OnEventFromSource(e)
}
