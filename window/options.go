// SPDX-License-Identifier: Unlicense OR MIT

package window

import (
	"gioui.org/dispatch/f32"
	"gioui.org/dispatch/unit"
)

// Config describes a Dispatcher and its root window.
type Config struct {
	// Name of the root window.
	Name string
	// Bounds of the root window in screen coordinates, in dp.
	Bounds f32.Rectangle
	// Metric converts the pixels of platform events to dp.
	Metric unit.Metric
	// Host is the platform window, or nil.
	Host Host
}

// Option configures a Dispatcher.
type Option func(cnf *Config)

// Host is the platform window behind a Dispatcher.
type Host interface {
	// SetCapture grabs the platform pointer.
	SetCapture()
	// ReleaseCapture releases the platform pointer grab.
	ReleaseCapture()
}

// Name sets the name of the root window.
func Name(n string) Option {
	return func(cnf *Config) {
		cnf.Name = n
	}
}

// Bounds sets the bounds of the root window in screen coordinates.
func Bounds(r f32.Rectangle) Option {
	return func(cnf *Config) {
		cnf.Bounds = r
	}
}

// Scale sets the number of platform pixels per dp.
func Scale(pxPerDp float32) Option {
	return func(cnf *Config) {
		cnf.Metric = unit.Metric{PxPerDp: pxPerDp}
	}
}

// NativeHost sets the platform window.
func NativeHost(h Host) Option {
	return func(cnf *Config) {
		cnf.Host = h
	}
}
