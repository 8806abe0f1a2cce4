// SPDX-License-Identifier: Unlicense OR MIT

package f32

import (
	"fmt"

	"golang.org/x/image/math/f32"
)

// Affine2D represents an affine 2D transformation. The zero value of Affine2D
// represents the identity transform.
type Affine2D struct {
	// The matrix
	//
	//	[sx, hx, ox]
	//	[hy, sy, oy]
	//	[ 0,  0,  1]
	//
	// is stored in row major order with the identity subtracted from
	// the diagonal, so that m[0] = sx-1 and m[4] = sy-1.
	m f32.Aff3
}

// NewAffine2D creates a new Affine2D transform from the matrix elements
// in row major order. The rows are: [sx, hx, ox], [hy, sy, oy], [0, 0, 1].
func NewAffine2D(sx, hx, ox, hy, sy, oy float32) Affine2D {
	return Affine2D{m: f32.Aff3{sx - 1, hx, ox, hy, sy - 1, oy}}
}

// Offset the transformation.
func (a Affine2D) Offset(offset Point) Affine2D {
	a.m[2] += offset.X
	a.m[5] += offset.Y
	return a
}

// Scale the transformation around the given origin.
func (a Affine2D) Scale(origin, factor Point) Affine2D {
	if origin == (Point{}) {
		return a.scale(factor)
	}
	a = a.Offset(origin.Mul(-1))
	a = a.scale(factor)
	return a.Offset(origin)
}

// Mul returns A*B.
func (A Affine2D) Mul(B Affine2D) Affine2D {
	a, b := A.m, B.m
	return Affine2D{m: f32.Aff3{
		(a[0]+1)*(b[0]+1) + a[1]*b[3] - 1,
		(a[0]+1)*b[1] + a[1]*(b[4]+1),
		(a[0]+1)*b[2] + a[1]*b[5] + a[2],
		a[3]*(b[0]+1) + (a[4]+1)*b[3],
		a[3]*b[1] + (a[4]+1)*(b[4]+1) - 1,
		a[3]*b[2] + (a[4]+1)*b[5] + a[5],
	}}
}

// Invert the transformation. Note that if the matrix is close to singular
// numerical errors may become large or infinity.
func (a Affine2D) Invert() Affine2D {
	m := a.m
	if m[0] == 0 && m[1] == 0 && m[3] == 0 && m[4] == 0 {
		// Pure translation.
		return Affine2D{m: f32.Aff3{0, 0, -m[2], 0, 0, -m[5]}}
	}
	sx, hx, ox, hy, sy, oy := a.Elems()
	det := sx*sy - hx*hy
	isx, isy := sy/det, sx/det
	ihx, ihy := -hx/det, -hy/det
	return NewAffine2D(
		isx, ihx, -isx*ox-ihx*oy,
		ihy, isy, -ihy*ox-isy*oy,
	)
}

// Transform p by returning a*p.
func (a Affine2D) Transform(p Point) Point {
	m := a.m
	return Point{
		X: p.X*(m[0]+1) + p.Y*m[1] + m[2],
		Y: p.X*m[3] + p.Y*(m[4]+1) + m[5],
	}
}

// Elems returns the matrix elements of the transform in row-major order. The
// rows are: [sx, hx, ox], [hy, sy, oy], [0, 0, 1].
func (a Affine2D) Elems() (sx, hx, ox, hy, sy, oy float32) {
	m := a.m
	return m[0] + 1, m[1], m[2], m[3], m[4] + 1, m[5]
}

// Aff3 returns the transform in the matrix layout of package
// golang.org/x/image/math/f32.
func (a Affine2D) Aff3() f32.Aff3 {
	sx, hx, ox, hy, sy, oy := a.Elems()
	return f32.Aff3{sx, hx, ox, hy, sy, oy}
}

func (a Affine2D) scale(factor Point) Affine2D {
	m := a.m
	return Affine2D{m: f32.Aff3{
		(m[0]+1)*factor.X - 1, m[1] * factor.X, m[2] * factor.X,
		m[3] * factor.Y, (m[4]+1)*factor.Y - 1, m[5] * factor.Y,
	}}
}

func (a Affine2D) String() string {
	sx, hx, ox, hy, sy, oy := a.Elems()
	return fmt.Sprintf("[[%f %f %f] [%f %f %f]]", sx, hx, ox, hy, sy, oy)
}
