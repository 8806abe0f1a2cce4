// SPDX-License-Identifier: Unlicense OR MIT

package dispatch

import (
	"golang.org/x/exp/slices"

	"gioui.org/dispatch/io/event"
)

// Target is a node of a dispatch tree.
type Target interface {
	// ParentTarget returns the parent of the target, or nil for
	// the root. The parent is a back reference; the target never
	// owns it.
	ParentTarget() Target
	// ChildIterator returns an iterator over the children that
	// may receive events, topmost first, or nil for leaves.
	ChildIterator() Iterator
	// CanAcceptEvent reports whether the target is willing to
	// receive e.
	CanAcceptEvent(e *event.Event) bool
	// EventTargeter returns the Targeter for the subtree rooted at
	// the target, or nil to use the targeter of an ancestor.
	EventTargeter() Targeter
	// EventHandlers returns the handlers registered on the target,
	// or nil.
	EventHandlers() *Handlers
}

// Iterator iterates over targets. Next returns nil when exhausted.
type Iterator interface {
	Next() Target
}

// Converter is implemented by targets that can convert the location
// of an event from their coordinate space to the space of another
// target of the same tree.
type Converter interface {
	ConvertEventToTarget(dst Target, e *event.Event)
}

// HitTester is implemented by targets that decide whether their
// subtree should be searched for the target of a located event. The
// position of e is in the coordinate space of the target.
type HitTester interface {
	HitTest(e *event.Event) bool
}

// Handlers is the set of handlers registered on a target. The zero
// value is empty and ready to use. Handlers must be comparable, for
// example pointers.
type Handlers struct {
	pre    []event.Handler
	post   []event.Handler
	target event.Handler
}

type topmost[T Target] struct {
	targets []T
	i       int
}

// Topmost returns an Iterator over targets from the last to the first,
// that is, in reverse stacking order.
func Topmost[T Target](targets []T) Iterator {
	return &topmost[T]{targets: targets, i: len(targets)}
}

func (it *topmost[T]) Next() Target {
	if it.i == 0 {
		return nil
	}
	it.i--
	return it.targets[it.i]
}

// AddPreTargetHandler adds a handler that sees events dispatched to
// the target and its descendants before the target does.
func (h *Handlers) AddPreTargetHandler(eh event.Handler) {
	if !slices.Contains(h.pre, eh) {
		h.pre = append(h.pre, eh)
	}
}

// RemovePreTargetHandler removes a handler added by AddPreTargetHandler.
func (h *Handlers) RemovePreTargetHandler(eh event.Handler) {
	if i := slices.Index(h.pre, eh); i != -1 {
		h.pre = slices.Delete(h.pre, i, i+1)
	}
}

// AddPostTargetHandler adds a handler that sees events dispatched to
// the target and its descendants after the target did.
func (h *Handlers) AddPostTargetHandler(eh event.Handler) {
	if !slices.Contains(h.post, eh) {
		h.post = append(h.post, eh)
	}
}

// RemovePostTargetHandler removes a handler added by AddPostTargetHandler.
func (h *Handlers) RemovePostTargetHandler(eh event.Handler) {
	if i := slices.Index(h.post, eh); i != -1 {
		h.post = slices.Delete(h.post, i, i+1)
	}
}

// SetTargetHandler sets the handler of the target itself and returns
// the previous one.
func (h *Handlers) SetTargetHandler(eh event.Handler) event.Handler {
	old := h.target
	h.target = eh
	return old
}

// TargetHandler returns the handler of the target itself.
func (h *Handlers) TargetHandler() event.Handler {
	return h.target
}

// entry is a handler scheduled for a dispatch.
type entry struct {
	owner   *Handlers
	handler event.Handler
	post    bool
}

// registered reports whether the handler is still registered with its
// owner.
func (en entry) registered() bool {
	if en.post {
		return slices.Contains(en.owner.post, en.handler)
	}
	return slices.Contains(en.owner.pre, en.handler)
}

// preTargetHandlers returns the pre-target handlers of t and its
// ancestors, outermost first.
func preTargetHandlers(t Target) []entry {
	var chain []Target
	for ; t != nil; t = t.ParentTarget() {
		chain = append(chain, t)
	}
	var list []entry
	for i := len(chain) - 1; i >= 0; i-- {
		h := chain[i].EventHandlers()
		if h == nil {
			continue
		}
		for _, eh := range h.pre {
			list = append(list, entry{owner: h, handler: eh})
		}
	}
	return list
}

// postTargetHandlers returns the post-target handlers of t and its
// ancestors, innermost first.
func postTargetHandlers(t Target) []entry {
	var list []entry
	for ; t != nil; t = t.ParentTarget() {
		h := t.EventHandlers()
		if h == nil {
			continue
		}
		for _, eh := range h.post {
			list = append(list, entry{owner: h, handler: eh, post: true})
		}
	}
	return list
}

// ConvertEvent converts the location of e from the coordinate space of
// src to the space of dst, if src is a Converter.
func ConvertEvent(src, dst Target, e *event.Event) {
	if src == dst || !e.IsLocated() {
		return
	}
	if c, ok := src.(Converter); ok {
		c.ConvertEventToTarget(dst, e)
	}
}
