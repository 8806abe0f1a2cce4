// SPDX-License-Identifier: Unlicense OR MIT

/*
Package dispatch implements the generic routing of events through a
tree of targets.

A Processor receives events from a platform source, asks the root's
Targeter for the initial target and dispatches the event to it. If the
event is not handled, the Targeter is asked for the next best target,
usually an ancestor, until the event is handled or no candidate
remains.

Dispatching to a single target runs the pre-target handlers of the
target and its ancestors, the target's own handler, and its post-target
handlers, bracketed by the PreDispatchEvent and PostDispatchEvent
hooks of the concrete dispatcher (the Delegate).

Handlers may destroy the target being dispatched to, or the dispatcher
itself. Every dispatch step reports such destruction in its Details,
and callers must check them before touching any dispatcher state.
*/
package dispatch
