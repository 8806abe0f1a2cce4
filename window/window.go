// SPDX-License-Identifier: Unlicense OR MIT

package window

import (
	"fmt"

	"golang.org/x/exp/slices"

	"gioui.org/dispatch/capture"
	"gioui.org/dispatch/f32"
	"gioui.org/dispatch/io/dispatch"
	"gioui.org/dispatch/io/event"
)

// Window is a node of a window tree. The root of a tree belongs to a
// Dispatcher; other windows are attached to it with AddChild.
//
// A window has bounds in the coordinate space of its parent and an
// optional transform applied before the offset of its bounds. Windows
// are visible when created.
type Window struct {
	name      string
	parent    *Window
	children  []*Window
	bounds    f32.Rectangle
	transform f32.Affine2D
	hidden    bool
	// noGestures disables gesture events.
	noGestures bool
	destroying bool
	destroyed  bool
	targeter   dispatch.Targeter
	handlers   dispatch.Handlers
	observers  []Observer
	// dispatcher is set for roots.
	dispatcher *Dispatcher
}

// Observer is notified of changes to a window and its descendants.
type Observer interface {
	// OnWindowDestroying is called before w and its descendants
	// are destroyed.
	OnWindowDestroying(w *Window)
	// OnWindowDestroyed is called after w was destroyed and
	// detached from its parent.
	OnWindowDestroyed(w *Window)
	// OnWindowVisibilityChanging is called before w is shown or
	// hidden.
	OnWindowVisibilityChanging(w *Window, visible bool)
	// OnWindowVisibilityChanged is called after w was shown or
	// hidden.
	OnWindowVisibilityChanged(w *Window, visible bool)
	// OnWindowBoundsChanged is called after the bounds of w
	// changed.
	OnWindowBoundsChanged(w *Window, old, new f32.Rectangle)
	// OnWindowAddedToRootWindow is called after w was attached
	// to a tree.
	OnWindowAddedToRootWindow(w *Window)
	// OnWindowRemovingFromRootWindow is called before w is
	// detached from its tree. newRoot is the root w moves to, or
	// nil.
	OnWindowRemovingFromRootWindow(w *Window, newRoot *Window)
}

var (
	_ dispatch.Target    = (*Window)(nil)
	_ dispatch.Converter = (*Window)(nil)
	_ dispatch.HitTester = (*Window)(nil)
)

// NewWindow returns a detached window with the given bounds.
func NewWindow(name string, bounds f32.Rectangle) *Window {
	return &Window{name: name, bounds: bounds}
}

func (w *Window) Name() string {
	return w.name
}

func (w *Window) String() string {
	return w.name
}

// Parent returns the parent of w, or nil.
func (w *Window) Parent() *Window {
	return w.parent
}

// Children returns the children of w, bottommost first.
func (w *Window) Children() []*Window {
	return slices.Clone(w.children)
}

// Root returns the root of the tree containing w.
func (w *Window) Root() *Window {
	for w.parent != nil {
		w = w.parent
	}
	return w
}

// Dispatcher returns the dispatcher of the tree containing w, or nil.
func (w *Window) Dispatcher() *Dispatcher {
	return w.Root().dispatcher
}

// Contains reports whether other is w or a descendant of w.
func (w *Window) Contains(other *Window) bool {
	for ; other != nil; other = other.parent {
		if other == w {
			return true
		}
	}
	return false
}

// AddChild attaches c on top of the children of w, detaching it from
// its current parent first.
func (w *Window) AddChild(c *Window) {
	if c == nil || c.Contains(w) {
		panic(fmt.Sprintf("window: invalid child %v of %v", c, w))
	}
	if c.destroyed || w.destroyed {
		panic("window: destroyed window")
	}
	if c.parent != nil {
		c.parent.removeChild(c, w.Root())
	}
	c.parent = w
	w.children = append(w.children, c)
	c.notify(func(o Observer) { o.OnWindowAddedToRootWindow(c) })
}

// RemoveChild detaches c from w.
func (w *Window) RemoveChild(c *Window) {
	w.removeChild(c, nil)
}

func (w *Window) removeChild(c *Window, newRoot *Window) {
	i := slices.Index(w.children, c)
	if i == -1 {
		return
	}
	c.notify(func(o Observer) { o.OnWindowRemovingFromRootWindow(c, newRoot) })
	// Observers may have detached c already.
	if i = slices.Index(w.children, c); i != -1 {
		w.children = slices.Delete(w.children, i, i+1)
		c.parent = nil
	}
}

// StackAtTop moves c above its siblings.
func (w *Window) StackAtTop(c *Window) {
	if i := slices.Index(w.children, c); i != -1 {
		w.children = append(slices.Delete(w.children, i, i+1), c)
	}
}

// Bounds returns the bounds of w in the coordinate space of its
// parent.
func (w *Window) Bounds() f32.Rectangle {
	return w.bounds
}

// SetBounds changes the bounds of w.
func (w *Window) SetBounds(r f32.Rectangle) {
	old := w.bounds
	if old == r {
		return
	}
	w.bounds = r
	w.notify(func(o Observer) { o.OnWindowBoundsChanged(w, old, r) })
}

// SetTransform sets the transform from the coordinate space of w to
// the space of its bounds.
func (w *Window) SetTransform(t f32.Affine2D) {
	w.transform = t
}

// Transform returns the transform set by SetTransform.
func (w *Window) Transform() f32.Affine2D {
	return w.transform
}

// Show makes w visible.
func (w *Window) Show() {
	w.setVisible(true)
}

// Hide makes w invisible. Hidden windows and their descendants receive
// no events.
func (w *Window) Hide() {
	w.setVisible(false)
}

func (w *Window) setVisible(visible bool) {
	if w.hidden == !visible {
		return
	}
	w.notify(func(o Observer) { o.OnWindowVisibilityChanging(w, visible) })
	if w.destroyed {
		return
	}
	w.hidden = !visible
	w.notify(func(o Observer) { o.OnWindowVisibilityChanged(w, visible) })
}

// IsVisible reports whether w and all its ancestors are visible.
func (w *Window) IsVisible() bool {
	for ; w != nil; w = w.parent {
		if w.hidden {
			return false
		}
	}
	return true
}

// SetGesturesEnabled enables or disables gesture events for w.
func (w *Window) SetGesturesEnabled(enable bool) {
	w.noGestures = !enable
}

// GesturesEnabled reports whether w receives gesture events.
func (w *Window) GesturesEnabled() bool {
	return !w.noGestures
}

// Destroy destroys w and its descendants and detaches w from its
// parent. Destroying the root of a Dispatcher closes the dispatcher.
func (w *Window) Destroy() {
	if w.destroying || w.destroyed {
		return
	}
	w.destroying = true
	w.notify(func(o Observer) { o.OnWindowDestroying(w) })
	for len(w.children) > 0 {
		c := w.children[len(w.children)-1]
		c.Destroy()
		// A child that was not detached by its destruction.
		if i := slices.Index(w.children, c); i != -1 {
			w.children = slices.Delete(w.children, i, i+1)
		}
	}
	observers := w.observerChain()
	if p := w.parent; p != nil {
		if i := slices.Index(p.children, w); i != -1 {
			p.children = slices.Delete(p.children, i, i+1)
		}
		w.parent = nil
	}
	w.destroyed = true
	for _, o := range observers {
		o.OnWindowDestroyed(w)
	}
	w.observers = nil
}

// IsDestroyed reports whether w was destroyed.
func (w *Window) IsDestroyed() bool {
	return w.destroyed
}

// Handlers returns the event handlers of w.
func (w *Window) Handlers() *dispatch.Handlers {
	return &w.handlers
}

// SetHandler sets the handler of w for events targeted at it.
func (w *Window) SetHandler(h event.Handler) {
	w.handlers.SetTargetHandler(h)
}

// SetEventTargeter sets the targeter of the subtree rooted at w. The
// targeter of a root is owned by its Dispatcher.
func (w *Window) SetEventTargeter(t dispatch.Targeter) {
	if w.dispatcher != nil {
		panic("window: the targeter of a root window is fixed")
	}
	w.targeter = t
}

// AddObserver adds an observer of w and its descendants.
func (w *Window) AddObserver(o Observer) {
	if !slices.Contains(w.observers, o) {
		w.observers = append(w.observers, o)
	}
}

// RemoveObserver removes an observer added by AddObserver.
func (w *Window) RemoveObserver(o Observer) {
	if i := slices.Index(w.observers, o); i != -1 {
		w.observers = slices.Delete(w.observers, i, i+1)
	}
}

// SetCapture makes w the capture target of its environment.
func (w *Window) SetCapture() error {
	d := w.Dispatcher()
	if d == nil || w.destroyed {
		return fmt.Errorf("window %v: %w", w, capture.ErrNoRoot)
	}
	return d.env.capture.SetCapture(w)
}

// ReleaseCapture releases capture if w holds it.
func (w *Window) ReleaseCapture() {
	if d := w.Dispatcher(); d != nil {
		d.env.capture.ReleaseCapture(w)
	}
}

// HasCapture reports whether w holds capture.
func (w *Window) HasCapture() bool {
	d := w.Dispatcher()
	return d != nil && d.env.capture.HasCapture(w)
}

// ParentTarget implements dispatch.Target.
func (w *Window) ParentTarget() dispatch.Target {
	if w.parent == nil {
		return nil
	}
	return w.parent
}

// ChildIterator implements dispatch.Target.
func (w *Window) ChildIterator() dispatch.Iterator {
	if len(w.children) == 0 {
		return nil
	}
	return dispatch.Topmost(w.children)
}

// CanAcceptEvent implements dispatch.Target.
func (w *Window) CanAcceptEvent(e *event.Event) bool {
	if w.destroyed || !w.IsVisible() {
		return false
	}
	return e.Kind != event.Gesture || !w.noGestures
}

// EventTargeter implements dispatch.Target.
func (w *Window) EventTargeter() dispatch.Targeter {
	return w.targeter
}

// EventHandlers implements dispatch.Target.
func (w *Window) EventHandlers() *dispatch.Handlers {
	return &w.handlers
}

// HitTest implements dispatch.HitTester.
func (w *Window) HitTest(e *event.Event) bool {
	return !w.hidden && e.Position.In(w.localBounds())
}

// ConvertEventToTarget implements dispatch.Converter.
func (w *Window) ConvertEventToTarget(dst dispatch.Target, e *event.Event) {
	if d, ok := dst.(*Window); ok {
		e.Position = ConvertPoint(w, d, e.Position)
	}
}

// ContainsPointInRoot reports whether p, in the coordinate space of
// the root, is inside w.
func (w *Window) ContainsPointInRoot(p f32.Point) bool {
	return ConvertPoint(w.Root(), w, p).In(w.localBounds())
}

// ConvertPoint converts p from the coordinate space of src to the
// space of dst. The windows may belong to different trees.
func ConvertPoint(src, dst *Window, p f32.Point) f32.Point {
	if src == dst {
		return p
	}
	return dst.toScreen().Invert().Transform(src.toScreen().Transform(p))
}

func (w *Window) localBounds() f32.Rectangle {
	return f32.Rectangle{Max: w.bounds.Size()}
}

// toParent returns the transform from the space of w to the space of
// its parent, or to screen coordinates for roots.
func (w *Window) toParent() f32.Affine2D {
	return f32.Affine2D{}.Offset(w.bounds.Min).Mul(w.transform)
}

func (w *Window) toScreen() f32.Affine2D {
	var m f32.Affine2D
	for ; w != nil; w = w.parent {
		m = w.toParent().Mul(m)
	}
	return m
}

// observerChain returns the observers of w and its ancestors.
func (w *Window) observerChain() []Observer {
	var list []Observer
	for ; w != nil; w = w.parent {
		list = append(list, w.observers...)
	}
	return list
}

func (w *Window) notify(fn func(o Observer)) {
	for _, o := range w.observerChain() {
		fn(o)
	}
}
