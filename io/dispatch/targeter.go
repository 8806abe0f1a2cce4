// SPDX-License-Identifier: Unlicense OR MIT

package dispatch

import "gioui.org/dispatch/io/event"

// Targeter finds the targets of events in a subtree.
type Targeter interface {
	// FindTargetForEvent returns the initial target for e among
	// root and its descendants, or nil. A located event is
	// converted to the coordinate space of the returned target.
	FindTargetForEvent(root Target, e *event.Event) Target
	// FindNextBestTarget returns the target to try after prev did
	// not handle e, or nil. The result is always an ancestor of prev.
	FindNextBestTarget(prev Target, e *event.Event) Target
}

// TreeTargeter is the default Targeter. Located events are targeted at
// the topmost descendant that contains their position; other events at
// the root. Unhandled events bubble to the nearest ancestor that
// accepts them.
type TreeTargeter struct{}

var _ Targeter = TreeTargeter{}

func (t TreeTargeter) FindTargetForEvent(root Target, e *event.Event) Target {
	if !e.IsLocated() {
		if root.CanAcceptEvent(e) {
			return root
		}
		return nil
	}
	return t.FindTargetForLocatedEvent(root, e)
}

// FindTargetForLocatedEvent searches the subtree of root for the
// target of e, whose position must be in the coordinate space of root.
// Subtrees with their own Targeter are searched by that Targeter.
func (t TreeTargeter) FindTargetForLocatedEvent(root Target, e *event.Event) Target {
	if it := root.ChildIterator(); it != nil {
		for child := it.Next(); child != nil; child = it.Next() {
			pos := e.Position
			ConvertEvent(root, child, e)
			if !SubtreeShouldBeExploredForEvent(child, e) {
				e.Position = pos
				continue
			}
			var found Target
			if ct := child.EventTargeter(); ct != nil {
				found = ct.FindTargetForEvent(child, e)
			} else {
				found = t.FindTargetForLocatedEvent(child, e)
			}
			if found != nil {
				return found
			}
			e.Position = pos
		}
	}
	if root.CanAcceptEvent(e) {
		return root
	}
	return nil
}

func (TreeTargeter) FindNextBestTarget(prev Target, e *event.Event) Target {
	cur := prev
	for p := prev.ParentTarget(); p != nil; p = p.ParentTarget() {
		ConvertEvent(cur, p, e)
		cur = p
		if p.CanAcceptEvent(e) {
			return p
		}
	}
	return nil
}

// SubtreeShouldBeExploredForEvent reports whether the subtree of t may
// contain the target of e.
func SubtreeShouldBeExploredForEvent(t Target, e *event.Event) bool {
	if h, ok := t.(HitTester); ok {
		return h.HitTest(e)
	}
	return true
}
