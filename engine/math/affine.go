package math

import (
	m "math"

	"golang.org/x/image/math/f64"
)

// Affine is a 2D affine transform laid out like f64.Aff3:
//
//	x' = a[0]*x + a[1]*y + a[2]
//	y' = a[3]*x + a[4]*y + a[5]
type Affine f64.Aff3

func IdentityAffine() Affine {
	return Affine{1, 0, 0, 0, 1, 0}
}

func TranslationAffine(x, y float64) Affine {
	return Affine{1, 0, x, 0, 1, y}
}

func ScaleAffine(sx, sy float64) Affine {
	return Affine{sx, 0, 0, 0, sy, 0}
}

// RotationAffine rotates by the given angle in radians. Positive angles turn
// clockwise on a y-down surface.
func RotationAffine(radians float64) Affine {
	s, c := m.Sincos(radians)
	return Affine{c, -s, 0, s, c, 0}
}

// Mul returns a*b, the transform that applies b first and then a.
func (a Affine) Mul(b Affine) Affine {
	return Affine{
		a[0]*b[0] + a[1]*b[3],
		a[0]*b[1] + a[1]*b[4],
		a[0]*b[2] + a[1]*b[5] + a[2],
		a[3]*b[0] + a[4]*b[3],
		a[3]*b[1] + a[4]*b[4],
		a[3]*b[2] + a[4]*b[5] + a[5],
	}
}

func (a Affine) Translate(x, y float64) Affine {
	return a.Mul(TranslationAffine(x, y))
}

func (a Affine) Scale(sx, sy float64) Affine {
	return a.Mul(ScaleAffine(sx, sy))
}

func (a Affine) Rotate(radians float64) Affine {
	return a.Mul(RotationAffine(radians))
}

func (a Affine) Det() float64 {
	return a[0]*a[4] - a[1]*a[3]
}

// Invert returns the inverse transform. ok is false for singular transforms.
func (a Affine) Invert() (inv Affine, ok bool) {
	det := a.Det()
	if det == 0 || m.IsNaN(det) || m.IsInf(det, 0) {
		return Affine{}, false
	}
	id := 1 / det
	inv = Affine{
		a[4] * id,
		-a[1] * id,
		(a[1]*a[5] - a[4]*a[2]) * id,
		-a[3] * id,
		a[0] * id,
		(a[3]*a[2] - a[0]*a[5]) * id,
	}
	return inv, true
}

// Apply transforms a point.
func (a Affine) Apply(x, y float64) (float64, float64) {
	return a[0]*x + a[1]*y + a[2], a[3]*x + a[4]*y + a[5]
}

func (a Affine) ApplyVec2(v Vec2) Vec2 {
	x, y := a.Apply(float64(v.X), float64(v.Y))
	return Vec2{float32(x), float32(y)}
}

// IsAxisAligned reports whether the transform only scales and translates.
func (a Affine) IsAxisAligned() bool {
	return a[1] == 0 && a[3] == 0
}

// Aff3 returns the transform in the representation used by x/image/draw.
func (a Affine) Aff3() f64.Aff3 {
	return f64.Aff3(a)
}
