// SPDX-License-Identifier: Unlicense OR MIT

/*
Package task implements the deferred work of a dispatcher.

Dispatchers never re-enter dispatch from inside a handler's side
effects. Work such as synthesizing a pointer move after the tree
changed, or flushing coalesced moves, is posted to a Queue and run by
the host event loop once the triggering dispatch has returned.

Posted callbacks are usually bound to a Token from a Factory, so that
revoking the factory turns every pending callback into a no-op.
*/
package task

// Queue is a first-in first-out queue of deferred callbacks. The
// zero value is an empty queue. A Queue is not safe for concurrent use;
// it belongs to the goroutine running the event loop.
type Queue struct {
	pending []*Handle
}

// Handle refers to a posted callback.
type Handle struct {
	fn        func()
	cancelled bool
	done      bool
}

// Factory hands out Tokens that are revoked together. It plays the role
// of a weak reference to the object posting callbacks: once the object
// is gone, Invalidate makes every outstanding Token invalid.
type Factory struct {
	gen uint64
}

// Token is a revocable reference handed out by a Factory.
type Token struct {
	f   *Factory
	gen uint64
}

// Post appends fn to the queue. Callbacks run in the order they were
// posted.
func (q *Queue) Post(fn func()) *Handle {
	h := &Handle{fn: fn}
	q.pending = append(q.pending, h)
	return h
}

// Len returns the number of callbacks waiting to run.
func (q *Queue) Len() int {
	n := 0
	for _, h := range q.pending {
		if !h.cancelled {
			n++
		}
	}
	return n
}

// RunPending runs the callbacks posted before the call and returns
// the number of callbacks run. Callbacks posted while running are left
// for the next call.
func (q *Queue) RunPending() int {
	batch := q.pending
	q.pending = nil
	n := 0
	for _, h := range batch {
		if h.run() {
			n++
		}
	}
	return n
}

// RunUntilIdle runs callbacks until the queue is empty and returns the
// number of callbacks run.
func (q *Queue) RunUntilIdle() int {
	n := 0
	for len(q.pending) > 0 {
		n += q.RunPending()
	}
	return n
}

// Clear cancels every pending callback.
func (q *Queue) Clear() {
	for _, h := range q.pending {
		h.Cancel()
	}
	q.pending = nil
}

// Cancel prevents the callback from running. Cancelling a callback
// that already ran has no effect.
func (h *Handle) Cancel() {
	h.cancelled = true
}

// Pending reports whether the callback is still waiting to run.
func (h *Handle) Pending() bool {
	return !h.cancelled && !h.done
}

func (h *Handle) run() bool {
	if h.cancelled || h.done {
		return false
	}
	h.done = true
	h.fn()
	return true
}

// Token returns a Token valid until the next call to Invalidate.
func (f *Factory) Token() Token {
	return Token{f: f, gen: f.gen}
}

// Invalidate revokes every Token handed out so far.
func (f *Factory) Invalidate() {
	f.gen++
}

// Bind returns a function that calls fn only while the Token current at
// the time of the call to Bind is valid.
func (f *Factory) Bind(fn func()) func() {
	t := f.Token()
	return func() {
		if t.Valid() {
			fn()
		}
	}
}

// Valid reports whether the factory has not been invalidated since t
// was handed out. The zero Token is never valid.
func (t Token) Valid() bool {
	return t.f != nil && t.f.gen == t.gen
}
