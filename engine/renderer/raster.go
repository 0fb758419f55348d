package renderer

import (
	"image"
	m "math"

	"github.com/spaghettifunk/bacon/engine/math"
)

func pixelAt(img *image.NRGBA, x, y int) math.Color {
	i := img.PixOffset(x, y)
	p := img.Pix[i : i+4 : i+4]
	return math.ColorFromRGBA8(p[0], p[1], p[2], p[3])
}

func setPixel(img *image.NRGBA, x, y int, c math.Color) {
	i := img.PixOffset(x, y)
	p := img.Pix[i : i+4 : i+4]
	p[0] = math.ToByte(c.R)
	p[1] = math.ToByte(c.G)
	p[2] = math.ToByte(c.B)
	p[3] = math.ToByte(c.A)
}

func blendPixel(img *image.NRGBA, x, y int, src math.Color, mode BlendMode) {
	setPixel(img, x, y, mode.Apply(src, pixelAt(img, x, y)))
}

// fill overwrites every pixel of the image, ignoring blending and clipping.
func fill(img *image.NRGBA, c math.Color) {
	b := c.RGBA8()
	pix := img.Pix
	for y := img.Rect.Min.Y; y < img.Rect.Max.Y; y++ {
		row := pix[img.PixOffset(img.Rect.Min.X, y):img.PixOffset(img.Rect.Max.X, y)]
		for i := 0; i < len(row); i += 4 {
			row[i], row[i+1], row[i+2], row[i+3] = b[0], b[1], b[2], b[3]
		}
	}
}

// sampleBilinear reads src at the continuous coordinate (u, v), where pixel
// centres sit at half-integers. Taps are clamped to bounds.
func sampleBilinear(src *image.NRGBA, bounds image.Rectangle, u, v float64) math.Color {
	x := u - 0.5
	y := v - 0.5
	x0 := int(m.Floor(x))
	y0 := int(m.Floor(y))
	fx := float32(x - float64(x0))
	fy := float32(y - float64(y0))

	cx0 := math.Clamp(x0, bounds.Min.X, bounds.Max.X-1)
	cx1 := math.Clamp(x0+1, bounds.Min.X, bounds.Max.X-1)
	cy0 := math.Clamp(y0, bounds.Min.Y, bounds.Max.Y-1)
	cy1 := math.Clamp(y0+1, bounds.Min.Y, bounds.Max.Y-1)

	c00 := pixelAt(src, cx0, cy0)
	c10 := pixelAt(src, cx1, cy0)
	c01 := pixelAt(src, cx0, cy1)
	c11 := pixelAt(src, cx1, cy1)

	lerp := func(a, b math.Color, t float32) math.Color {
		return math.Color{
			R: math.Lerp(a.R, b.R, t),
			G: math.Lerp(a.G, b.G, t),
			B: math.Lerp(a.B, b.B, t),
			A: math.Lerp(a.A, b.A, t),
		}
	}
	return lerp(lerp(c00, c10, fx), lerp(c01, c11, fx), fy)
}

// sourceBounds is the integer pixel area covered by r, limited to the image.
func sourceBounds(img *image.NRGBA, r math.Rect) image.Rectangle {
	b := image.Rect(
		int(m.Floor(float64(r.X))), int(m.Floor(float64(r.Y))),
		int(m.Ceil(float64(r.Right()))), int(m.Ceil(float64(r.Bottom()))),
	)
	return b.Intersect(img.Rect)
}

// deviceBounds returns the pixel area touched by r after the transform.
func deviceBounds(xf math.Affine, r math.Rect) image.Rectangle {
	corners := [4]math.Vec2{
		{X: r.X, Y: r.Y}, {X: r.Right(), Y: r.Y},
		{X: r.X, Y: r.Bottom()}, {X: r.Right(), Y: r.Bottom()},
	}
	minX, minY := m.Inf(1), m.Inf(1)
	maxX, maxY := m.Inf(-1), m.Inf(-1)
	for _, c := range corners {
		x, y := xf.Apply(float64(c.X), float64(c.Y))
		minX, maxX = m.Min(minX, x), m.Max(maxX, x)
		minY, maxY = m.Min(minY, y), m.Max(maxY, y)
	}
	return image.Rect(int(m.Floor(minX)), int(m.Floor(minY)), int(m.Ceil(maxX)), int(m.Ceil(maxY)))
}

// drawQuad maps the src region of img onto the dst rectangle in local space,
// transforms it to device space with xf and blends it into target within clip.
// It returns the number of pixels written.
func drawQuad(target *image.NRGBA, clip image.Rectangle, img *image.NRGBA, src, dst math.Rect, xf math.Affine, tint math.Color, mode BlendMode) int {
	if dst.Empty() || src.Empty() {
		return 0
	}
	sb := sourceBounds(img, src)
	if sb.Empty() {
		return 0
	}
	inv, ok := xf.Invert()
	if !ok {
		return 0
	}
	area := deviceBounds(xf, dst).Intersect(clip).Intersect(target.Rect)

	sx := float64(src.W) / float64(dst.W)
	sy := float64(src.H) / float64(dst.H)
	written := 0
	for py := area.Min.Y; py < area.Max.Y; py++ {
		for px := area.Min.X; px < area.Max.X; px++ {
			lx, ly := inv.Apply(float64(px)+0.5, float64(py)+0.5)
			if lx < float64(dst.X) || lx >= float64(dst.Right()) || ly < float64(dst.Y) || ly >= float64(dst.Bottom()) {
				continue
			}
			u := float64(src.X) + (lx-float64(dst.X))*sx
			v := float64(src.Y) + (ly-float64(dst.Y))*sy
			c := sampleBilinear(img, sb, u, v).Mul(tint)
			blendPixel(target, px, py, c, mode)
			written++
		}
	}
	return written
}

// drawLine plots a one pixel wide DDA line between two device points.
func drawLine(target *image.NRGBA, clip image.Rectangle, x0, y0, x1, y1 float64, c math.Color, mode BlendMode) int {
	area := clip.Intersect(target.Rect)
	x0, y0, x1, y1, ok := clipSegment(area, x0, y0, x1, y1)
	if !ok {
		return 0
	}
	dx := x1 - x0
	dy := y1 - y0
	steps := int(m.Ceil(m.Max(m.Abs(dx), m.Abs(dy))))
	written := 0
	plot := func(x, y float64) {
		p := image.Pt(int(m.Floor(x)), int(m.Floor(y)))
		if p.In(area) {
			blendPixel(target, p.X, p.Y, c, mode)
			written++
		}
	}
	if steps == 0 {
		plot(x0, y0)
		return written
	}
	xi := dx / float64(steps)
	yi := dy / float64(steps)
	for i := 0; i <= steps; i++ {
		plot(x0+xi*float64(i), y0+yi*float64(i))
	}
	return written
}

// clipSegment trims a segment to r with Liang-Barsky so the number of DDA
// steps is bounded by the visible part of the line.
func clipSegment(r image.Rectangle, x0, y0, x1, y1 float64) (float64, float64, float64, float64, bool) {
	if r.Empty() {
		return 0, 0, 0, 0, false
	}
	for _, v := range [4]float64{x0, y0, x1, y1} {
		if m.IsNaN(v) || m.IsInf(v, 0) {
			return 0, 0, 0, 0, false
		}
	}
	dx := x1 - x0
	dy := y1 - y0
	edges := [4][2]float64{
		{-dx, x0 - float64(r.Min.X)},
		{dx, float64(r.Max.X) - x0},
		{-dy, y0 - float64(r.Min.Y)},
		{dy, float64(r.Max.Y) - y0},
	}
	t0, t1 := 0.0, 1.0
	for _, e := range edges {
		p, q := e[0], e[1]
		if p == 0 {
			if q < 0 {
				return 0, 0, 0, 0, false
			}
			continue
		}
		t := q / p
		if p < 0 {
			if t > t1 {
				return 0, 0, 0, 0, false
			}
			t0 = m.Max(t0, t)
		} else {
			if t < t0 {
				return 0, 0, 0, 0, false
			}
			t1 = m.Min(t1, t)
		}
	}
	return x0 + t0*dx, y0 + t0*dy, x0 + t1*dx, y0 + t1*dy, true
}
