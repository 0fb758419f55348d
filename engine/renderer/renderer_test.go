package renderer

import (
	"errors"
	"fmt"
	"image"
	"testing"

	"github.com/spaghettifunk/bacon/engine/containers"
	"github.com/spaghettifunk/bacon/engine/core"
	"github.com/spaghettifunk/bacon/engine/math"
)

type testImages struct {
	surfaces map[containers.Handle]*image.NRGBA
}

func (ti *testImages) ImageSurface(h containers.Handle) (*image.NRGBA, error) {
	if img, ok := ti.surfaces[h]; ok {
		return img, nil
	}
	return nil, fmt.Errorf("image %v: %w", h, core.ErrInvalidHandle)
}

type testBackend struct {
	presented int
	last      *image.NRGBA
}

func (tb *testBackend) Resized(width, height uint32) error { return nil }

func (tb *testBackend) Present(frame *image.NRGBA) error {
	tb.presented++
	tb.last = frame
	return nil
}

func solid(w, h int, c [4]uint8) *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for i := 0; i < len(img.Pix); i += 4 {
		copy(img.Pix[i:i+4], c[:])
	}
	return img
}

func rgbaAt(img *image.NRGBA, x, y int) [4]uint8 {
	i := img.PixOffset(x, y)
	return [4]uint8{img.Pix[i], img.Pix[i+1], img.Pix[i+2], img.Pix[i+3]}
}

func newTestRenderer(t *testing.T, w, h uint32) (*Renderer, *testImages, *testBackend) {
	t.Helper()
	images := &testImages{surfaces: map[containers.Handle]*image.NRGBA{}}
	backend := &testBackend{}
	r, err := New(backend, images, w, h)
	if err != nil {
		t.Fatalf("New() failed: %v", err)
	}
	r.BeginFrame()
	return r, images, backend
}

func TestTransformStackRoundTrip(t *testing.T) {
	ts := NewTransformStack()
	ts.Translate(3, 4)
	before := ts.Top()

	for i := 0; i < 5; i++ {
		ts.Push()
		ts.Rotate(0.5)
		ts.Scale(2, 2)
	}
	for i := 0; i < 5; i++ {
		if err := ts.Pop(); err != nil {
			t.Fatalf("Pop() %d failed: %v", i, err)
		}
	}
	if ts.Top() != before {
		t.Errorf("Top() = %v, want %v", ts.Top(), before)
	}
}

func TestStackUnderflow(t *testing.T) {
	tests := []struct {
		name   string
		pushes int
		pops   int
	}{
		{"pop bottom", 0, 1},
		{"one extra pop", 3, 4},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			ts := NewTransformStack()
			cs := NewColorStack()
			for i := 0; i < tc.pushes; i++ {
				ts.Push()
				cs.Push()
			}
			var terr, cerr error
			for i := 0; i < tc.pops; i++ {
				terr = ts.Pop()
				cerr = cs.Pop()
			}
			if !errors.Is(terr, core.ErrStackUnderflow) {
				t.Errorf("transform Pop() error = %v, want ErrStackUnderflow", terr)
			}
			if !errors.Is(cerr, core.ErrStackUnderflow) {
				t.Errorf("color Pop() error = %v, want ErrStackUnderflow", cerr)
			}
			if ts.Depth() != 1 || cs.Depth() != 1 {
				t.Errorf("bottom element lost: depths %d, %d", ts.Depth(), cs.Depth())
			}
		})
	}
}

func TestColorStack(t *testing.T) {
	cs := NewColorStack()
	if cs.Top() != math.White {
		t.Fatalf("bottom color = %v, want white", cs.Top())
	}
	cs.Push()
	cs.Set(math.NewColor(0.5, 2, 1, 1))
	cs.Multiply(math.NewColor(0.5, 0.5, 0, 1))
	if got := cs.Top(); got != math.NewColor(0.25, 1, 0, 1) {
		t.Errorf("Top() = %v", got)
	}
	_ = cs.Pop()
	if cs.Top() != math.White {
		t.Errorf("Pop() did not restore white, got %v", cs.Top())
	}
}

func TestBlendFactors(t *testing.T) {
	src := math.NewColor(1, 0, 0, 0.5)
	dst := math.NewColor(0, 0, 1, 1)
	tests := []struct {
		mode BlendMode
		want math.Color
	}{
		{BlendMode{BLEND_ONE, BLEND_ZERO}, src},
		{BlendMode{BLEND_ZERO, BLEND_ONE}, dst},
		{DefaultBlendMode, math.NewColor(0.5, 0, 0.5, 0.75)},
		{BlendMode{BLEND_ONE, BLEND_ONE}, math.NewColor(1, 0, 1, 1)},
		{BlendMode{BLEND_DST_COLOR, BLEND_ZERO}, math.NewColor(0, 0, 0, 0.5)},
	}
	for _, tc := range tests {
		t.Run(tc.mode.String(), func(t *testing.T) {
			if got := tc.mode.Apply(src, dst); got != tc.want {
				t.Errorf("Apply() = %v, want %v", got, tc.want)
			}
		})
	}
}

func TestBlendFactorNames(t *testing.T) {
	if BLEND_ONE_MINUS_DST_ALPHA != 9 || BLEND_ONE_MINUS_DST_ALPHA.String() != "one_minus_dst_alpha" {
		t.Error("blend factor enumeration changed")
	}
	if BlendFactor(10).IsValid() {
		t.Error("BlendFactor(10) reported valid")
	}
}

func TestDrawImageCopiesWithOneZero(t *testing.T) {
	r, images, _ := newTestRenderer(t, 8, 8)
	src := image.NewNRGBA(image.Rect(0, 0, 2, 2))
	copy(src.Pix, []uint8{
		255, 0, 0, 255, 0, 255, 0, 128,
		0, 0, 255, 0, 10, 20, 30, 40,
	})
	images.surfaces[1] = src

	if err := r.Clear(math.NewColor(1, 1, 1, 1)); err != nil {
		t.Fatal(err)
	}
	if err := r.SetBlending(BLEND_ONE, BLEND_ZERO); err != nil {
		t.Fatal(err)
	}
	if err := r.DrawImage(1, 3, 4, 2, 2); err != nil {
		t.Fatalf("DrawImage() failed: %v", err)
	}

	win := r.WindowSurface()
	for y := 0; y < 2; y++ {
		for x := 0; x < 2; x++ {
			if got, want := rgbaAt(win, 3+x, 4+y), rgbaAt(src, x, y); got != want {
				t.Errorf("pixel (%d,%d) = %v, want %v", x, y, got, want)
			}
		}
	}
	if got := rgbaAt(win, 2, 4); got != [4]uint8{255, 255, 255, 255} {
		t.Errorf("pixel outside the quad changed: %v", got)
	}
}

func TestDrawImageZeroOneKeepsDestination(t *testing.T) {
	r, images, _ := newTestRenderer(t, 4, 4)
	images.surfaces[1] = solid(4, 4, [4]uint8{255, 0, 0, 255})
	_ = r.Clear(math.NewColor(0, 0, 1, 1))
	_ = r.SetBlending(BLEND_ZERO, BLEND_ONE)
	if err := r.DrawImage(1, 0, 0, 4, 4); err != nil {
		t.Fatal(err)
	}
	if got := rgbaAt(r.WindowSurface(), 1, 1); got != [4]uint8{0, 0, 255, 255} {
		t.Errorf("pixel = %v, want destination unchanged", got)
	}
}

func TestDrawImageUsesTransformAndColor(t *testing.T) {
	r, images, _ := newTestRenderer(t, 16, 16)
	images.surfaces[1] = solid(1, 1, [4]uint8{255, 255, 255, 255})
	_ = r.Clear(math.Black)

	r.Transforms().Translate(4, 4)
	r.Transforms().Scale(2, 2)
	r.Colors().Set(math.NewColor(0, 1, 0, 1))
	if err := r.DrawImage(1, 0, 0, 1, 1); err != nil {
		t.Fatal(err)
	}
	win := r.WindowSurface()
	for _, p := range []image.Point{{4, 4}, {5, 5}} {
		if got := rgbaAt(win, p.X, p.Y); got != [4]uint8{0, 255, 0, 255} {
			t.Errorf("pixel %v = %v, want green", p, got)
		}
	}
	if got := rgbaAt(win, 6, 6); got != [4]uint8{0, 0, 0, 255} {
		t.Errorf("pixel (6,6) = %v, want black", got)
	}
}

func TestDrawInvalidHandles(t *testing.T) {
	r, images, _ := newTestRenderer(t, 4, 4)
	images.surfaces[1] = solid(2, 2, [4]uint8{1, 2, 3, 4})

	if err := r.DrawImage(2, 0, 0, 1, 1); !errors.Is(err, core.ErrInvalidHandle) {
		t.Errorf("DrawImage(unknown) error = %v, want ErrInvalidHandle", err)
	}
	if err := r.SetFrameBuffer(7); !errors.Is(err, core.ErrInvalidHandle) {
		t.Errorf("SetFrameBuffer(unknown) error = %v, want ErrInvalidHandle", err)
	}
	if err := r.SetFrameBuffer(1); err != nil {
		t.Fatal(err)
	}
	if err := r.DrawImage(1, 0, 0, 1, 1); !errors.Is(err, core.ErrInvalidArgument) {
		t.Errorf("drawing the frame buffer into itself: error = %v, want ErrInvalidArgument", err)
	}
	delete(images.surfaces, 1)
	if err := r.DrawLine(0, 0, 1, 1); !errors.Is(err, core.ErrInvalidHandle) {
		t.Errorf("DrawLine into destroyed frame buffer: error = %v, want ErrInvalidHandle", err)
	}
}

func TestRenderToTextureThenComposite(t *testing.T) {
	r, images, backend := newTestRenderer(t, 4, 4)
	images.surfaces[1] = image.NewNRGBA(image.Rect(0, 0, 2, 2))
	images.surfaces[2] = solid(1, 1, [4]uint8{255, 0, 0, 255})

	_ = r.SetFrameBuffer(1)
	_ = r.Clear(math.Transparent)
	if err := r.DrawImage(2, 0, 0, 2, 2); err != nil {
		t.Fatal(err)
	}
	_ = r.SetFrameBuffer(0)
	_ = r.Clear(math.Black)
	if err := r.DrawImage(1, 2, 2, 2, 2); err != nil {
		t.Fatal(err)
	}
	stats, err := r.EndFrame()
	if err != nil {
		t.Fatal(err)
	}
	if stats.DrawCalls != 2 {
		t.Errorf("DrawCalls = %d, want 2", stats.DrawCalls)
	}
	if backend.presented != 1 {
		t.Fatalf("presented %d frames, want 1", backend.presented)
	}
	if got := rgbaAt(backend.last, 3, 3); got != [4]uint8{255, 0, 0, 255} {
		t.Errorf("composited pixel = %v, want red", got)
	}
	if got := rgbaAt(backend.last, 0, 0); got != [4]uint8{0, 0, 0, 255} {
		t.Errorf("background pixel = %v, want black", got)
	}
}

func TestDrawLine(t *testing.T) {
	r, _, _ := newTestRenderer(t, 8, 8)
	_ = r.Clear(math.Black)
	_ = r.SetBlending(BLEND_ONE, BLEND_ZERO)
	if err := r.DrawLine(0.5, 2.5, 5.5, 2.5); err != nil {
		t.Fatal(err)
	}
	win := r.WindowSurface()
	for x := 0; x <= 5; x++ {
		if got := rgbaAt(win, x, 2); got != [4]uint8{255, 255, 255, 255} {
			t.Errorf("pixel (%d,2) = %v, want white", x, got)
		}
	}
	if got := rgbaAt(win, 6, 2); got != [4]uint8{0, 0, 0, 255} {
		t.Errorf("pixel past the end = %v", got)
	}
}

func TestDrawLineClipsToTarget(t *testing.T) {
	tests := []struct {
		name           string
		x0, y0, x1, y1 float32
		want           int
	}{
		{"far endpoint", 0.5, 0.5, 2e9, 0.5, 8},
		{"both endpoints outside", -1e9, 3.5, 1e9, 3.5, 8},
		{"diagonal from far away", -4e9, -4e9, 4e9, 4e9, 8},
		{"entirely off target", 20, -5, 2e9, -5, 0},
		{"past the right edge", 8, 0, 8, 7, 0},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			r, _, _ := newTestRenderer(t, 8, 8)
			_ = r.Clear(math.Black)
			_ = r.SetBlending(BLEND_ONE, BLEND_ZERO)
			if err := r.DrawLine(tc.x0, tc.y0, tc.x1, tc.y1); err != nil {
				t.Fatal(err)
			}
			win := r.WindowSurface()
			got := 0
			for y := 0; y < 8; y++ {
				for x := 0; x < 8; x++ {
					if rgbaAt(win, x, y) != [4]uint8{0, 0, 0, 255} {
						got++
					}
				}
			}
			if got != tc.want {
				t.Errorf("DrawLine(%v, %v, %v, %v) lit %d pixels, want %d", tc.x0, tc.y0, tc.x1, tc.y1, got, tc.want)
			}
		})
	}
}

func TestViewportClipsAndOffsets(t *testing.T) {
	r, images, _ := newTestRenderer(t, 8, 8)
	images.surfaces[1] = solid(4, 4, [4]uint8{255, 255, 255, 255})
	_ = r.Clear(math.Black)
	if err := r.SetViewport(2, 2, 2, 2); err != nil {
		t.Fatal(err)
	}
	if err := r.DrawImage(1, 0, 0, 4, 4); err != nil {
		t.Fatal(err)
	}
	win := r.WindowSurface()
	count := 0
	for y := 0; y < 8; y++ {
		for x := 0; x < 8; x++ {
			if rgbaAt(win, x, y)[0] == 255 {
				count++
				if x < 2 || x >= 4 || y < 2 || y >= 4 {
					t.Errorf("pixel (%d,%d) drawn outside the viewport", x, y)
				}
			}
		}
	}
	if count != 4 {
		t.Errorf("%d pixels drawn, want 4", count)
	}
}

func TestBeginFrameResetsState(t *testing.T) {
	r, images, _ := newTestRenderer(t, 4, 4)
	images.surfaces[1] = solid(1, 1, [4]uint8{})
	r.Transforms().Push()
	r.Transforms().Translate(1, 1)
	r.Colors().Push()
	_ = r.SetFrameBuffer(1)
	_ = r.SetBlending(BLEND_ONE, BLEND_ONE)
	r.SetShader(3)

	r.BeginFrame()
	if r.Transforms().Depth() != 1 || r.Colors().Depth() != 1 {
		t.Error("stacks not reset")
	}
	if r.FrameBuffer() != 0 || r.Shader() != 0 || r.Blending() != DefaultBlendMode {
		t.Error("frame state not reset")
	}
	if r.Viewport() != r.WindowSurface().Rect {
		t.Errorf("viewport = %v", r.Viewport())
	}
}
