package renderer

import (
	"fmt"

	"github.com/spaghettifunk/bacon/engine/math"
)

// BlendFactor selects the weight applied to the source or destination colour.
type BlendFactor int32

const (
	BLEND_ZERO BlendFactor = iota
	BLEND_ONE
	BLEND_SRC_COLOR
	BLEND_ONE_MINUS_SRC_COLOR
	BLEND_DST_COLOR
	BLEND_ONE_MINUS_DST_COLOR
	BLEND_SRC_ALPHA
	BLEND_ONE_MINUS_SRC_ALPHA
	BLEND_DST_ALPHA
	BLEND_ONE_MINUS_DST_ALPHA
	blendFactorCount
)

var blendFactorNames = [...]string{
	"zero", "one", "src_color", "one_minus_src_color", "dst_color",
	"one_minus_dst_color", "src_alpha", "one_minus_src_alpha", "dst_alpha",
	"one_minus_dst_alpha",
}

func (f BlendFactor) IsValid() bool {
	return f >= BLEND_ZERO && f < blendFactorCount
}

func (f BlendFactor) String() string {
	if !f.IsValid() {
		return fmt.Sprintf("BlendFactor(%d)", int32(f))
	}
	return blendFactorNames[f]
}

// BlendMode combines source and destination as
// result = src*Src + dst*Dst, per channel, saturated to [0, 1].
type BlendMode struct {
	Src BlendFactor
	Dst BlendFactor
}

var DefaultBlendMode = BlendMode{Src: BLEND_SRC_ALPHA, Dst: BLEND_ONE_MINUS_SRC_ALPHA}

func (b BlendMode) String() string {
	return b.Src.String() + ", " + b.Dst.String()
}

func blendWeight(f BlendFactor, src, dst math.Color) math.Color {
	switch f {
	case BLEND_ZERO:
		return math.Color{}
	case BLEND_ONE:
		return math.Color{R: 1, G: 1, B: 1, A: 1}
	case BLEND_SRC_COLOR:
		return src
	case BLEND_ONE_MINUS_SRC_COLOR:
		return math.Color{R: 1 - src.R, G: 1 - src.G, B: 1 - src.B, A: 1 - src.A}
	case BLEND_DST_COLOR:
		return dst
	case BLEND_ONE_MINUS_DST_COLOR:
		return math.Color{R: 1 - dst.R, G: 1 - dst.G, B: 1 - dst.B, A: 1 - dst.A}
	case BLEND_SRC_ALPHA:
		return math.Color{R: src.A, G: src.A, B: src.A, A: src.A}
	case BLEND_ONE_MINUS_SRC_ALPHA:
		a := 1 - src.A
		return math.Color{R: a, G: a, B: a, A: a}
	case BLEND_DST_ALPHA:
		return math.Color{R: dst.A, G: dst.A, B: dst.A, A: dst.A}
	case BLEND_ONE_MINUS_DST_ALPHA:
		a := 1 - dst.A
		return math.Color{R: a, G: a, B: a, A: a}
	}
	return math.Color{}
}

// Apply blends src over dst. Both inputs are clamped first, like a fixed
// point render target would store them.
func (b BlendMode) Apply(src, dst math.Color) math.Color {
	src = src.Clamped()
	sw := blendWeight(b.Src, src, dst)
	dw := blendWeight(b.Dst, src, dst)
	return math.Color{
		R: src.R*sw.R + dst.R*dw.R,
		G: src.G*sw.G + dst.G*dw.G,
		B: src.B*sw.B + dst.B*dw.B,
		A: src.A*sw.A + dst.A*dw.A,
	}.Clamped()
}
