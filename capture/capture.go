// SPDX-License-Identifier: Unlicense OR MIT

/*
Package capture tracks the target that receives all pointer events
regardless of their location.

A Controller holds at most one capture target across every root it
knows about. Each root registers a Delegate, usually its dispatcher,
that is told about capture changes and owns the platform grab for
its root.
*/
package capture

import (
	"errors"
	"fmt"
	"log/slog"

	"golang.org/x/exp/slices"

	"gioui.org/dispatch/internal/log"
	"gioui.org/dispatch/io/dispatch"
)

// Delegate is notified of capture changes affecting a root.
type Delegate interface {
	// UpdateCapture is called once for every capture change, with
	// the previous and the new capture target. Either may be nil,
	// and either may belong to another root.
	UpdateCapture(old, new dispatch.Target)
	// OnOtherRootGotCapture is called when a target in another
	// root took capture.
	OnOtherRootGotCapture()
	// SetNativeCapture acquires the platform grab for the root.
	SetNativeCapture()
	// ReleaseNativeCapture releases the platform grab.
	ReleaseNativeCapture()
}

// Observer is notified after the capture target changed.
type Observer interface {
	OnCaptureChanged(lost, gained dispatch.Target)
}

// Transferer moves in-progress touch and gesture state from one target
// to another. The gesture recognizer implements it.
type Transferer interface {
	TransferEventsTo(current, new dispatch.Target)
	CancelActiveTouchesExcept(except dispatch.Target)
}

// Controller manages the capture target for a set of roots.
type Controller struct {
	logger    *slog.Logger
	transfer  Transferer
	delegates []binding
	observers []Observer

	target dispatch.Target
	// root is the root of target.
	root dispatch.Target
}

type binding struct {
	root     dispatch.Target
	delegate Delegate
}

// ErrNoRoot is returned by SetCapture for targets whose root has no
// registered Delegate.
var ErrNoRoot = errors.New("capture: target is not in a registered root")

// NewController returns a Controller logging to l. A nil l discards
// log output.
func NewController(l *slog.Logger) *Controller {
	return &Controller{logger: log.OrNop(l)}
}

// Root returns the root of the tree containing t.
func Root(t dispatch.Target) dispatch.Target {
	if t == nil {
		return nil
	}
	for p := t.ParentTarget(); p != nil; p = p.ParentTarget() {
		t = p
	}
	return t
}

// SetTransferer sets the recognizer that receives touch state when
// capture moves from one target to another. Touches of other targets
// are cancelled when a target takes capture.
func (c *Controller) SetTransferer(t Transferer) {
	c.transfer = t
}

// AddDelegate registers d for root, replacing any previous delegate.
func (c *Controller) AddDelegate(root dispatch.Target, d Delegate) {
	if root == nil || d == nil {
		panic("capture: nil root or delegate")
	}
	if i := c.index(root); i != -1 {
		c.delegates[i].delegate = d
		return
	}
	c.delegates = append(c.delegates, binding{root: root, delegate: d})
}

// RemoveDelegate unregisters the delegate of root. Capture held by a
// target in root is dropped without notifying anyone.
func (c *Controller) RemoveDelegate(root dispatch.Target) {
	i := c.index(root)
	if i == -1 {
		return
	}
	c.delegates = slices.Delete(c.delegates, i, i+1)
	if c.root == root {
		c.logger.Debug("capture dropped with its root", "target", c.target)
		c.target, c.root = nil, nil
	}
}

// AddObserver adds o to the observers of capture changes.
func (c *Controller) AddObserver(o Observer) {
	if !slices.Contains(c.observers, o) {
		c.observers = append(c.observers, o)
	}
}

// RemoveObserver removes an observer added by AddObserver.
func (c *Controller) RemoveObserver(o Observer) {
	if i := slices.Index(c.observers, o); i != -1 {
		c.observers = slices.Delete(c.observers, i, i+1)
	}
}

// CaptureTarget returns the capture target, or nil.
func (c *Controller) CaptureTarget() dispatch.Target {
	return c.target
}

// HasCapture reports whether t is the capture target.
func (c *Controller) HasCapture(t dispatch.Target) bool {
	return t != nil && c.target == t
}

// SetCapture makes t the capture target. A nil t releases capture.
func (c *Controller) SetCapture(t dispatch.Target) error {
	if t == c.target {
		return nil
	}
	var root dispatch.Target
	if t != nil {
		root = Root(t)
		if c.index(root) == -1 {
			return fmt.Errorf("set capture to %v: %w", t, ErrNoRoot)
		}
	}
	old, oldRoot := c.target, c.root
	oldDelegate := c.delegateFor(oldRoot)
	if t != nil && c.transfer != nil {
		if old != nil {
			c.transfer.TransferEventsTo(old, t)
		} else {
			c.transfer.CancelActiveTouchesExcept(t)
		}
	}
	c.target, c.root = t, root
	newDelegate := c.delegateFor(root)
	c.logger.Debug("capture changed", "old", old, "new", t)

	// Delegates may change capture again from their callbacks.
	delegates := slices.Clone(c.delegates)
	for _, b := range delegates {
		b.delegate.UpdateCapture(old, t)
	}
	if newDelegate != oldDelegate {
		if oldDelegate != nil {
			oldDelegate.ReleaseNativeCapture()
		}
		if newDelegate != nil {
			newDelegate.SetNativeCapture()
			for _, b := range delegates {
				if b.delegate != newDelegate {
					b.delegate.OnOtherRootGotCapture()
				}
			}
		}
	}
	for _, o := range slices.Clone(c.observers) {
		o.OnCaptureChanged(old, t)
	}
	return nil
}

// ReleaseCapture releases capture if t is the capture target.
func (c *Controller) ReleaseCapture(t dispatch.Target) {
	if t == nil || c.target != t {
		return
	}
	// Releasing never fails.
	_ = c.SetCapture(nil)
}

func (c *Controller) index(root dispatch.Target) int {
	for i, b := range c.delegates {
		if b.root == root {
			return i
		}
	}
	return -1
}

func (c *Controller) delegateFor(root dispatch.Target) Delegate {
	if root == nil {
		return nil
	}
	if i := c.index(root); i != -1 {
		return c.delegates[i].delegate
	}
	return nil
}
