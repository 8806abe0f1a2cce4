// SPDX-License-Identifier: Unlicense OR MIT

package window

import (
	"log/slog"

	"golang.org/x/exp/slices"

	"gioui.org/dispatch/capture"
	"gioui.org/dispatch/f32"
	"gioui.org/dispatch/gesture"
	"gioui.org/dispatch/internal/log"
	"gioui.org/dispatch/io/event"
	"gioui.org/dispatch/task"
)

// Env is the state shared by the dispatchers of an application: the
// task queue run by the event loop, capture, the gesture recognizer
// and the mouse state.
type Env struct {
	logger     *slog.Logger
	tasks      *task.Queue
	capture    *capture.Controller
	recognizer gesture.Recognizer

	dispatchers []*Dispatcher
	// buttons is the set of mouse buttons held down.
	buttons event.Flags
	// mouse is the last mouse location in screen coordinates.
	mouse    f32.Point
	hasMouse bool
	touchIDs map[int]struct{}
}

// EnvOption configures an Env.
type EnvOption func(*envConfig)

type envConfig struct {
	logger     *slog.Logger
	recognizer gesture.Recognizer
	tasks      *task.Queue
}

// EnvLogger sets the logger of the environment and its dispatchers.
func EnvLogger(l *slog.Logger) EnvOption {
	return func(cnf *envConfig) {
		cnf.logger = l
	}
}

// EnvRecognizer replaces the default gesture.Detector.
func EnvRecognizer(r gesture.Recognizer) EnvOption {
	return func(cnf *envConfig) {
		cnf.recognizer = r
	}
}

// EnvTasks sets the queue deferred work is posted to.
func EnvTasks(q *task.Queue) EnvOption {
	return func(cnf *envConfig) {
		cnf.tasks = q
	}
}

// NewEnv returns a new environment.
func NewEnv(options ...EnvOption) *Env {
	var cnf envConfig
	for _, o := range options {
		o(&cnf)
	}
	l := log.OrNop(cnf.logger)
	if cnf.tasks == nil {
		cnf.tasks = new(task.Queue)
	}
	if cnf.recognizer == nil {
		cnf.recognizer = gesture.NewDetector(gesture.DefaultConfig, l)
	}
	env := &Env{
		logger:     l,
		tasks:      cnf.tasks,
		capture:    capture.NewController(l),
		recognizer: cnf.recognizer,
		touchIDs:   make(map[int]struct{}),
	}
	env.capture.SetTransferer(env.recognizer)
	return env
}

// Tasks returns the queue of deferred work. The host event loop
// must run it after every event.
func (env *Env) Tasks() *task.Queue {
	return env.tasks
}

// Capture returns the capture controller.
func (env *Env) Capture() *capture.Controller {
	return env.capture
}

// Recognizer returns the gesture recognizer.
func (env *Env) Recognizer() gesture.Recognizer {
	return env.recognizer
}

// Logger returns the logger of the environment.
func (env *Env) Logger() *slog.Logger {
	return env.logger
}

// MouseButtons returns the mouse buttons held down.
func (env *Env) MouseButtons() event.Flags {
	return env.buttons
}

// IsMouseButtonDown reports whether any mouse button is held down.
func (env *Env) IsMouseButtonDown() bool {
	return env.buttons != 0
}

// IsTouchDown reports whether any touch point is down.
func (env *Env) IsTouchDown() bool {
	return len(env.touchIDs) > 0
}

// LastMouseLocation returns the location of the last mouse event
// from a platform, in screen coordinates.
func (env *Env) LastMouseLocation() f32.Point {
	return env.mouse
}

// Dispatchers returns the open dispatchers.
func (env *Env) Dispatchers() []*Dispatcher {
	return slices.Clone(env.dispatchers)
}

// Close closes every dispatcher and cancels pending tasks.
func (env *Env) Close() {
	for _, d := range env.Dispatchers() {
		d.Close()
	}
	env.tasks.Clear()
}

func (env *Env) addDispatcher(d *Dispatcher) {
	env.dispatchers = append(env.dispatchers, d)
}

func (env *Env) removeDispatcher(d *Dispatcher) {
	if i := slices.Index(env.dispatchers, d); i != -1 {
		env.dispatchers = slices.Delete(env.dispatchers, i, i+1)
	}
}
