package math

// Color is a straight-alpha RGBA colour. Components are not clamped, values
// outside [0, 1] are saturated when written to a surface.
type Color struct {
	R, G, B, A float32
}

var (
	White       = Color{1, 1, 1, 1}
	Black       = Color{0, 0, 0, 1}
	Transparent = Color{}
)

func NewColor(r, g, b, a float32) Color {
	return Color{R: r, G: g, B: b, A: a}
}

// Mul multiplies the colours component-wise.
func (c Color) Mul(o Color) Color {
	return Color{c.R * o.R, c.G * o.G, c.B * o.B, c.A * o.A}
}

// Clamped saturates every component to [0, 1].
func (c Color) Clamped() Color {
	return Color{Clamp(c.R, 0, 1), Clamp(c.G, 0, 1), Clamp(c.B, 0, 1), Clamp(c.A, 0, 1)}
}

// RGBA8 returns the saturated colour as 8-bit channel values.
func (c Color) RGBA8() [4]uint8 {
	cc := c.Clamped()
	return [4]uint8{ToByte(cc.R), ToByte(cc.G), ToByte(cc.B), ToByte(cc.A)}
}

// ColorFromRGBA8 converts 8-bit channels to normalized floats.
func ColorFromRGBA8(r, g, b, a uint8) Color {
	return Color{float32(r) / 255, float32(g) / 255, float32(b) / 255, float32(a) / 255}
}
