// SPDX-License-Identifier: Unlicense OR MIT

/*
Package unit implements device independent units.

Device independent pixel, or dp, is the unit of event locations once
they enter a dispatch tree. Host windows deliver locations in pixels,
or px, whose size vary between platforms and displays; a Metric
converts between the two.
*/
package unit

import (
	"fmt"
	"math"

	"gioui.org/dispatch/f32"
)

// Metric converts device independent pixels to device-dependent
// pixels, px. The zero value represents a 1-to-1 scale.
type Metric struct {
	// PxPerDp is the device-dependent pixels per dp.
	PxPerDp float32
}

// Dp represents device independent pixels. 1 dp will
// have the same apparent size across platforms and
// display resolutions.
type Dp float32

// Dp converts v to rounded pixels.
func (c Metric) Dp(v Dp) int {
	return int(math.Round(float64(nonZero(c.PxPerDp)) * float64(v)))
}

// PxToDp converts v px to dp.
func (c Metric) PxToDp(v int) Dp {
	return Dp(float32(v) / nonZero(c.PxPerDp))
}

// Scale returns the number of pixels per dp. It is never zero.
func (c Metric) Scale() float32 {
	return nonZero(c.PxPerDp)
}

// Transform returns the transformation from dp to px.
func (c Metric) Transform() f32.Affine2D {
	s := c.Scale()
	return f32.Affine2D{}.Scale(f32.Point{}, f32.Pt(s, s))
}

func (v Dp) String() string {
	return fmt.Sprintf("%gdp", float32(v))
}

func nonZero(v float32) float32 {
	if v == 0. {
		return 1
	}
	return v
}
