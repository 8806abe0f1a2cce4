// SPDX-License-Identifier: Unlicense OR MIT

package unit_test

import (
	"testing"

	"gioui.org/dispatch/f32"
	"gioui.org/dispatch/unit"
)

func TestMetric_PxToDp(t *testing.T) {
	m := unit.Metric{
		PxPerDp: 2,
	}

	{
		exp := unit.Dp(5)
		got := m.PxToDp(m.Dp(5))
		if got != exp {
			t.Errorf("PxToDp conversion mismatch %v != %v", exp, got)
		}
	}

	{
		exp := 10
		got := m.Dp(5)
		if got != exp {
			t.Errorf("Dp conversion mismatch %v != %v", exp, got)
		}
	}
}

func TestMetric_ZeroValue(t *testing.T) {
	var m unit.Metric
	if s := m.Scale(); s != 1 {
		t.Errorf("zero Metric scale = %v, want 1", s)
	}
	if p := m.Transform().Transform(f32.Pt(3, 4)); p != f32.Pt(3, 4) {
		t.Errorf("zero Metric transform moved point to %v", p)
	}
}

func TestMetric_Transform(t *testing.T) {
	m := unit.Metric{PxPerDp: 2}
	px := m.Transform().Transform(f32.Pt(10, 20))
	if px != f32.Pt(20, 40) {
		t.Errorf("dp to px = %v, want {20 40}", px)
	}
	dp := m.Transform().Invert().Transform(px)
	if dp != f32.Pt(10, 20) {
		t.Errorf("px to dp = %v, want {10 20}", dp)
	}
}
