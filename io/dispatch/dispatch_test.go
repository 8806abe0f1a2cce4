// SPDX-License-Identifier: Unlicense OR MIT

package dispatch

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gioui.org/dispatch/f32"
	"gioui.org/dispatch/io/event"
)

type node struct {
	name      string
	parent    *node
	children  []*node
	bounds    f32.Rectangle
	reject    bool
	destroyed bool
	targeter  Targeter
	handlers  Handlers
}

type recorder struct {
	name string
	log  *[]string
	fn   func(e *event.Event)
}

type countingTargeter struct {
	TreeTargeter
	nextBest int
}

type testDelegate struct {
	root     *node
	proc     *Processor
	pre      int
	post     int
	finished int
	posted   []Target
}

func newNode(name string, parent *node, r f32.Rectangle) *node {
	n := &node{name: name, parent: parent, bounds: r}
	if parent != nil {
		parent.children = append(parent.children, n)
	}
	return n
}

func (n *node) ParentTarget() Target {
	if n.parent == nil {
		return nil
	}
	return n.parent
}

func (n *node) ChildIterator() Iterator {
	if len(n.children) == 0 {
		return nil
	}
	return Topmost(n.children)
}

func (n *node) CanAcceptEvent(e *event.Event) bool { return !n.reject && !n.destroyed }
func (n *node) EventTargeter() Targeter            { return n.targeter }
func (n *node) EventHandlers() *Handlers           { return &n.handlers }

func (n *node) HitTest(e *event.Event) bool {
	return e.Position.In(f32.Rectangle{Max: n.bounds.Size()})
}

func (n *node) origin() f32.Point {
	var o f32.Point
	for ; n != nil; n = n.parent {
		o = o.Add(n.bounds.Min)
	}
	return o
}

func (n *node) ConvertEventToTarget(dst Target, e *event.Event) {
	e.Position = e.Position.Add(n.origin()).Sub(dst.(*node).origin())
}

func (n *node) String() string { return n.name }

func (r *recorder) HandleEvent(e *event.Event) {
	*r.log = append(*r.log, r.name)
	if r.fn != nil {
		r.fn(e)
	}
}

func (c *countingTargeter) FindNextBestTarget(prev Target, e *event.Event) Target {
	c.nextBest++
	return c.TreeTargeter.FindNextBestTarget(prev, e)
}

func (d *testDelegate) CanDispatchToTarget(t Target) bool { return !t.(*node).destroyed }

func (d *testDelegate) PreDispatchEvent(t Target, e *event.Event) Details {
	d.pre++
	return Details{}
}

func (d *testDelegate) PostDispatchEvent(t Target, e *event.Event) Details {
	d.post++
	d.posted = append(d.posted, t)
	return Details{}
}

func (d *testDelegate) RootForEvent(e *event.Event) Target {
	if d.root == nil {
		return nil
	}
	return d.root
}

func (d *testDelegate) OnEventProcessingStarted(e *event.Event) { e.RootPosition = e.Position }

func (d *testDelegate) OnEventProcessingFinished(e *event.Event) { d.finished++ }

// newTestTree returns a root with child a containing b, and c stacked
// above a.
func newTestTree() (d *testDelegate, root, a, b, c *node, ct *countingTargeter) {
	ct = new(countingTargeter)
	root = newNode("root", nil, f32.Rect(0, 0, 100, 100))
	root.targeter = ct
	a = newNode("a", root, f32.Rect(10, 10, 60, 60))
	b = newNode("b", a, f32.Rect(5, 5, 25, 25))
	c = newNode("c", root, f32.Rect(50, 50, 90, 90))
	d = &testDelegate{root: root}
	d.proc = NewProcessor(d)
	return
}

func handle(n *node, log *[]string, fn func(e *event.Event)) {
	n.handlers.SetTargetHandler(&recorder{name: n.name, log: log, fn: fn})
}

func TestTreeTargeterHitTest(t *testing.T) {
	_, root, _, b, c, ct := newTestTree()
	e := &event.Event{Kind: event.Press, Position: f32.Pt(20, 20)}
	got := ct.FindTargetForEvent(root, e)
	assert.Equal(t, Target(b), got)
	assert.Equal(t, f32.Pt(5, 5), e.Position)

	e = &event.Event{Kind: event.Press, Position: f32.Pt(55, 55)}
	assert.Equal(t, Target(c), ct.FindTargetForEvent(root, e), "topmost child must win")
	assert.Equal(t, f32.Pt(5, 5), e.Position)

	e = &event.Event{Kind: event.Press, Position: f32.Pt(95, 5)}
	assert.Equal(t, Target(root), ct.FindTargetForEvent(root, e))
	assert.Equal(t, f32.Pt(95, 5), e.Position)
}

func TestTreeTargeterNonLocated(t *testing.T) {
	_, root, _, _, _, ct := newTestTree()
	e := &event.Event{Kind: event.Cancel}
	assert.Equal(t, Target(root), ct.FindTargetForEvent(root, e))
	root.reject = true
	assert.Nil(t, ct.FindTargetForEvent(root, e))
}

func TestSubtreeTargeter(t *testing.T) {
	_, root, a, b, _, ct := newTestTree()
	// a's subtree never targets its children.
	a.targeter = leafTargeter{}
	e := &event.Event{Kind: event.Press, Position: f32.Pt(20, 20)}
	got := ct.FindTargetForEvent(root, e)
	assert.Equal(t, Target(a), got)
	assert.NotEqual(t, Target(b), got)
}

type leafTargeter struct{ TreeTargeter }

func (leafTargeter) FindTargetForEvent(root Target, e *event.Event) Target {
	return root
}

func TestHandlerOrder(t *testing.T) {
	d, root, a, b, _, _ := newTestTree()
	var log []string
	root.handlers.AddPreTargetHandler(&recorder{name: "root-pre", log: &log})
	a.handlers.AddPreTargetHandler(&recorder{name: "a-pre", log: &log})
	b.handlers.AddPostTargetHandler(&recorder{name: "b-post", log: &log})
	root.handlers.AddPostTargetHandler(&recorder{name: "root-post", log: &log})
	handle(b, &log, nil)

	e := &event.Event{Kind: event.Press, Position: f32.Pt(20, 20)}
	details := d.proc.OnEventFromSource(e)
	assert.Equal(t, Details{}, details)
	// Unhandled: bubbles to a and root which have no target handlers
	// but run the pre and post handlers again.
	want := []string{"root-pre", "a-pre", "b", "b-post", "root-post"}
	require.GreaterOrEqual(t, len(log), len(want))
	assert.Equal(t, want, log[:len(want)])
	assert.Equal(t, 1, d.finished)
}

func TestRejectingTargetIsSkipped(t *testing.T) {
	d, _, a, b, _, _ := newTestTree()
	var log []string
	handle(a, &log, nil)
	handle(b, &log, nil)
	b.reject = true
	// The hit test skips b; a receives the event.
	d.proc.OnEventFromSource(&event.Event{Kind: event.Press, Position: f32.Pt(20, 20)})
	assert.Equal(t, []string{"a", "root"}, log)

	// A targeter returning a rejecting target directly.
	log = nil
	d.root.targeter = &fixedTargeter{target: b}
	d.proc.OnEventFromSource(&event.Event{Kind: event.Press, Position: f32.Pt(20, 20)})
	assert.NotContains(t, log, "b")
	assert.Contains(t, log, "a")
}

type fixedTargeter struct {
	TreeTargeter
	target Target
}

func (f *fixedTargeter) FindTargetForEvent(root Target, e *event.Event) Target {
	return f.target
}

func TestHandledStopsBubbling(t *testing.T) {
	d, root, a, b, _, ct := newTestTree()
	var log []string
	handle(b, &log, func(e *event.Event) { e.SetHandled() })
	handle(a, &log, nil)
	handle(root, &log, nil)
	e := &event.Event{Kind: event.Press, Position: f32.Pt(20, 20)}
	d.proc.OnEventFromSource(e)
	assert.True(t, e.Handled())
	assert.Equal(t, []string{"b"}, log)
	assert.Zero(t, ct.nextBest, "FindNextBestTarget called after the event was handled")
}

func TestUnhandledBubbles(t *testing.T) {
	d, root, a, b, _, ct := newTestTree()
	var log []string
	var positions []f32.Point
	rec := func(e *event.Event) { positions = append(positions, e.Position) }
	handle(b, &log, rec)
	handle(a, &log, rec)
	handle(root, &log, rec)
	d.proc.OnEventFromSource(&event.Event{Kind: event.Press, Position: f32.Pt(20, 20)})
	assert.Equal(t, []string{"b", "a", "root"}, log)
	assert.Equal(t, []f32.Point{f32.Pt(5, 5), f32.Pt(10, 10), f32.Pt(20, 20)}, positions)
	assert.Equal(t, 3, ct.nextBest)
}

func TestStopPropagation(t *testing.T) {
	d, root, a, b, _, ct := newTestTree()
	var log []string
	b.handlers.AddPreTargetHandler(&recorder{name: "b-pre", log: &log, fn: func(e *event.Event) { e.StopPropagation() }})
	handle(b, &log, nil)
	handle(a, &log, nil)
	handle(root, &log, nil)
	e := &event.Event{Kind: event.Press, Position: f32.Pt(20, 20)}
	d.proc.OnEventFromSource(e)
	assert.Equal(t, []string{"b-pre"}, log)
	assert.False(t, e.Handled(), "StopPropagation must not mark the event handled")
	assert.Zero(t, ct.nextBest)
}

func TestTargetDestroyedDuringDispatch(t *testing.T) {
	d, root, a, b, _, ct := newTestTree()
	var log []string
	b.handlers.AddPostTargetHandler(&recorder{name: "b-post", log: &log})
	handle(b, &log, func(e *event.Event) { b.destroyed = true })
	handle(a, &log, nil)
	handle(root, &log, nil)
	details := d.proc.OnEventFromSource(&event.Event{Kind: event.Press, Position: f32.Pt(20, 20)})
	assert.True(t, details.TargetDestroyed)
	assert.False(t, details.DispatcherDestroyed)
	assert.Equal(t, []string{"b"}, log)
	assert.Zero(t, ct.nextBest)
	require.Len(t, d.posted, 1)
	assert.Nil(t, d.posted[0], "PostDispatchEvent must receive a nil target")

	// The dispatcher keeps working.
	log = nil
	details = d.proc.OnEventFromSource(&event.Event{Kind: event.Press, Position: f32.Pt(15, 40)})
	assert.Equal(t, Details{}, details)
	assert.Equal(t, []string{"a", "root"}, log)
}

func TestDispatcherDestroyedDuringDispatch(t *testing.T) {
	d, root, a, b, _, ct := newTestTree()
	var log []string
	b.handlers.AddPostTargetHandler(&recorder{name: "b-post", log: &log})
	handle(b, &log, func(e *event.Event) { d.proc.Destroy() })
	handle(a, &log, nil)
	handle(root, &log, nil)
	details := d.proc.OnEventFromSource(&event.Event{Kind: event.Press, Position: f32.Pt(20, 20)})
	assert.True(t, details.DispatcherDestroyed)
	assert.True(t, details.ShouldStopPropagation())
	assert.Equal(t, []string{"b"}, log)
	assert.Zero(t, ct.nextBest)
	assert.Zero(t, d.post, "PostDispatchEvent ran on a destroyed dispatcher")
	assert.Zero(t, d.finished)

	details = d.proc.OnEventFromSource(&event.Event{Kind: event.Press, Position: f32.Pt(20, 20)})
	assert.True(t, details.DispatcherDestroyed)
	assert.Equal(t, 1, d.pre)
}

func TestHandlerRemovedDuringDispatch(t *testing.T) {
	d, root, _, b, _, _ := newTestTree()
	var log []string
	second := &recorder{name: "second", log: &log}
	first := &recorder{name: "first", log: &log, fn: func(e *event.Event) {
		root.handlers.RemovePreTargetHandler(second)
	}}
	root.handlers.AddPreTargetHandler(first)
	root.handlers.AddPreTargetHandler(second)
	handle(b, &log, func(e *event.Event) { e.SetHandled() })
	d.proc.OnEventFromSource(&event.Event{Kind: event.Press, Position: f32.Pt(20, 20)})
	assert.Equal(t, []string{"first", "b"}, log)
}

func TestNoTarget(t *testing.T) {
	d, root, _, _, _, _ := newTestTree()
	root.reject = true
	details := d.proc.OnEventFromSource(&event.Event{Kind: event.Press, Position: f32.Pt(95, 95)})
	assert.Equal(t, Details{}, details)
	assert.Zero(t, d.pre)
	assert.Equal(t, 1, d.finished)
}

func TestInvariantViolationsPanic(t *testing.T) {
	d, root, _, _, _, _ := newTestTree()
	root.targeter = nil
	assert.PanicsWithValue(t, "dispatch: root target has no targeter", func() {
		d.proc.OnEventFromSource(&event.Event{Kind: event.Press})
	})
	d.root = nil
	assert.PanicsWithValue(t, "dispatch: nil root target", func() {
		d.proc.OnEventFromSource(&event.Event{Kind: event.Press})
	})
	assert.Panics(t, func() { NewProcessor(nil) })
}

func TestHandlersDeduplicate(t *testing.T) {
	var h Handlers
	var log []string
	r := &recorder{name: "r", log: &log}
	h.AddPreTargetHandler(r)
	h.AddPreTargetHandler(r)
	assert.Len(t, h.pre, 1)
	h.RemovePreTargetHandler(r)
	assert.Empty(t, h.pre)
	h.AddPostTargetHandler(r)
	h.RemovePostTargetHandler(r)
	assert.Empty(t, h.post)
	assert.Nil(t, h.SetTargetHandler(r))
	assert.Equal(t, event.Handler(r), h.TargetHandler())
}
