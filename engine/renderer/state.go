package renderer

import (
	"fmt"

	"github.com/spaghettifunk/bacon/engine/core"
	"github.com/spaghettifunk/bacon/engine/math"
)

// TransformStack holds the current 2D transform. The bottom element is the
// identity and can't be popped.
type TransformStack struct {
	stack []math.Affine
}

func NewTransformStack() *TransformStack {
	ts := &TransformStack{stack: make([]math.Affine, 1, 16)}
	ts.stack[0] = math.IdentityAffine()
	return ts
}

func (ts *TransformStack) Top() math.Affine {
	return ts.stack[len(ts.stack)-1]
}

func (ts *TransformStack) Depth() int {
	return len(ts.stack)
}

// Push saves a copy of the current transform.
func (ts *TransformStack) Push() {
	ts.stack = append(ts.stack, ts.Top())
}

// Pop restores the transform saved by the matching Push.
func (ts *TransformStack) Pop() error {
	if len(ts.stack) <= 1 {
		return fmt.Errorf("pop transform: %w", core.ErrStackUnderflow)
	}
	ts.stack = ts.stack[:len(ts.stack)-1]
	return nil
}

func (ts *TransformStack) Translate(x, y float32) {
	ts.stack[len(ts.stack)-1] = ts.Top().Translate(float64(x), float64(y))
}

func (ts *TransformStack) Scale(sx, sy float32) {
	ts.stack[len(ts.stack)-1] = ts.Top().Scale(float64(sx), float64(sy))
}

func (ts *TransformStack) Rotate(radians float32) {
	ts.stack[len(ts.stack)-1] = ts.Top().Rotate(float64(radians))
}

// Set replaces the current transform with the 2D part of a column-major 4x4
// matrix.
func (ts *TransformStack) Set(matrix math.Mat4) {
	ts.stack[len(ts.stack)-1] = matrix.Affine()
}

func (ts *TransformStack) Reset() {
	ts.stack = ts.stack[:1]
	ts.stack[0] = math.IdentityAffine()
}

// ColorStack holds the current drawing colour, opaque white at the bottom.
type ColorStack struct {
	stack []math.Color
}

func NewColorStack() *ColorStack {
	return &ColorStack{stack: append(make([]math.Color, 0, 16), math.White)}
}

func (cs *ColorStack) Top() math.Color {
	return cs.stack[len(cs.stack)-1]
}

func (cs *ColorStack) Depth() int {
	return len(cs.stack)
}

func (cs *ColorStack) Push() {
	cs.stack = append(cs.stack, cs.Top())
}

func (cs *ColorStack) Pop() error {
	if len(cs.stack) <= 1 {
		return fmt.Errorf("pop color: %w", core.ErrStackUnderflow)
	}
	cs.stack = cs.stack[:len(cs.stack)-1]
	return nil
}

func (cs *ColorStack) Set(c math.Color) {
	cs.stack[len(cs.stack)-1] = c
}

func (cs *ColorStack) Multiply(c math.Color) {
	cs.stack[len(cs.stack)-1] = cs.Top().Mul(c)
}

func (cs *ColorStack) Reset() {
	cs.stack = cs.stack[:1]
	cs.stack[0] = math.White
}
