package renderer

import (
	"fmt"
	"image"

	"github.com/spaghettifunk/bacon/engine/containers"
	"github.com/spaghettifunk/bacon/engine/core"
	"github.com/spaghettifunk/bacon/engine/math"
)

// FrameStats counts the work done during one frame.
type FrameStats struct {
	DrawCalls     uint32
	Lines         uint32
	PixelsWritten uint64
}

// Renderer is an immediate mode software rasterizer. Every call executes
// against the current frame buffer before returning, so submission order is
// preserved across render-to-texture and composite passes.
type Renderer struct {
	backend RendererBackend
	images  ImageSource

	window      *image.NRGBA
	frameBuffer containers.Handle
	viewport    image.Rectangle
	shader      containers.Handle
	blend       BlendMode

	transforms *TransformStack
	colors     *ColorStack

	stats        FrameStats
	inFrame      bool
	shaderWarned bool
}

func New(backend RendererBackend, images ImageSource, width, height uint32) (*Renderer, error) {
	if width == 0 || height == 0 {
		return nil, fmt.Errorf("window surface %dx%d: %w", width, height, core.ErrInvalidArgument)
	}
	r := &Renderer{
		backend:    backend,
		images:     images,
		window:     image.NewNRGBA(image.Rect(0, 0, int(width), int(height))),
		blend:      DefaultBlendMode,
		transforms: NewTransformStack(),
		colors:     NewColorStack(),
	}
	r.viewport = r.window.Rect
	core.LogInfo("Renderer initialized with a %dx%d window surface.", width, height)
	return r, nil
}

func (r *Renderer) Shutdown() error {
	r.window = nil
	r.frameBuffer = 0
	return nil
}

// OnResize reallocates the window surface. The old contents are dropped.
func (r *Renderer) OnResize(width, height uint32) error {
	if width == 0 || height == 0 {
		return fmt.Errorf("resize to %dx%d: %w", width, height, core.ErrInvalidArgument)
	}
	r.window = image.NewNRGBA(image.Rect(0, 0, int(width), int(height)))
	if r.frameBuffer == 0 {
		r.viewport = r.window.Rect
	}
	if r.backend != nil {
		return r.backend.Resized(width, height)
	}
	return nil
}

func (r *Renderer) WindowSurface() *image.NRGBA {
	return r.window
}

// BeginFrame restores the per-frame state: identity transform, white colour,
// window target, full viewport, default blending and shader.
func (r *Renderer) BeginFrame() {
	r.transforms.Reset()
	r.colors.Reset()
	r.frameBuffer = 0
	r.viewport = r.window.Rect
	r.blend = DefaultBlendMode
	r.shader = 0
	r.stats = FrameStats{}
	r.inFrame = true
}

// EndFrame hands the window surface to the backend.
func (r *Renderer) EndFrame() (FrameStats, error) {
	r.inFrame = false
	if r.backend == nil {
		return r.stats, nil
	}
	return r.stats, r.backend.Present(r.window)
}

func (r *Renderer) Stats() FrameStats {
	return r.stats
}

func (r *Renderer) target() (*image.NRGBA, error) {
	if r.frameBuffer == 0 {
		return r.window, nil
	}
	img, err := r.images.ImageSurface(r.frameBuffer)
	if err != nil {
		return nil, fmt.Errorf("frame buffer %d: %w", r.frameBuffer, err)
	}
	return img, nil
}

// SetFrameBuffer redirects drawing to an image, or back to the window when
// handle is 0. The viewport is reset to cover the new target.
func (r *Renderer) SetFrameBuffer(handle containers.Handle) error {
	if handle == 0 {
		r.frameBuffer = 0
		r.viewport = r.window.Rect
		return nil
	}
	img, err := r.images.ImageSurface(handle)
	if err != nil {
		return fmt.Errorf("set frame buffer: %w", err)
	}
	r.frameBuffer = handle
	r.viewport = img.Rect
	return nil
}

func (r *Renderer) FrameBuffer() containers.Handle {
	return r.frameBuffer
}

// SetViewport moves the drawing origin to (x, y) and clips output to the
// w x h rectangle.
func (r *Renderer) SetViewport(x, y, w, h int) error {
	if w < 0 || h < 0 {
		return fmt.Errorf("viewport %dx%d: %w", w, h, core.ErrInvalidArgument)
	}
	r.viewport = image.Rect(x, y, x+w, y+h)
	return nil
}

func (r *Renderer) Viewport() image.Rectangle {
	return r.viewport
}

// SetShader selects a shader for subsequent draws, 0 restores the default.
// The rasterizer is fixed-function, custom shaders are tracked but not run.
func (r *Renderer) SetShader(handle containers.Handle) {
	if handle != 0 && !r.shaderWarned {
		core.LogWarn("custom shaders are not executed by the software renderer")
		r.shaderWarned = true
	}
	r.shader = handle
}

func (r *Renderer) Shader() containers.Handle {
	return r.shader
}

func (r *Renderer) SetBlending(src, dst BlendFactor) error {
	if !src.IsValid() || !dst.IsValid() {
		return fmt.Errorf("blending (%v, %v): %w", src, dst, core.ErrInvalidArgument)
	}
	r.blend = BlendMode{Src: src, Dst: dst}
	return nil
}

func (r *Renderer) Blending() BlendMode {
	return r.blend
}

func (r *Renderer) Transforms() *TransformStack {
	return r.transforms
}

func (r *Renderer) Colors() *ColorStack {
	return r.colors
}

// Clear fills the entire frame buffer with a colour.
func (r *Renderer) Clear(c math.Color) error {
	target, err := r.target()
	if err != nil {
		return err
	}
	fill(target, c)
	return nil
}

// deviceTransform maps local coordinates to target pixels.
func (r *Renderer) deviceTransform() math.Affine {
	return math.TranslationAffine(float64(r.viewport.Min.X), float64(r.viewport.Min.Y)).Mul(r.transforms.Top())
}

// DrawImage draws the whole image scaled into the rectangle (x, y, w, h).
func (r *Renderer) DrawImage(handle containers.Handle, x, y, w, h float32) error {
	img, err := r.images.ImageSurface(handle)
	if err != nil {
		return fmt.Errorf("draw image: %w", err)
	}
	src := math.Rect{W: float32(img.Rect.Dx()), H: float32(img.Rect.Dy())}
	return r.drawRegion(handle, img, math.NewRect(x, y, w, h), src)
}

// DrawImageRegion draws the src rectangle of an image, in pixels, into dst.
func (r *Renderer) DrawImageRegion(handle containers.Handle, dst, src math.Rect) error {
	img, err := r.images.ImageSurface(handle)
	if err != nil {
		return fmt.Errorf("draw image region: %w", err)
	}
	return r.drawRegion(handle, img, dst, src)
}

func (r *Renderer) drawRegion(handle containers.Handle, img *image.NRGBA, dst, src math.Rect) error {
	if handle == r.frameBuffer {
		return fmt.Errorf("image %d is the current frame buffer: %w", handle, core.ErrInvalidArgument)
	}
	target, err := r.target()
	if err != nil {
		return err
	}
	r.stats.DrawCalls++
	r.stats.PixelsWritten += uint64(drawQuad(target, r.viewport, img, src, dst, r.deviceTransform(), r.colors.Top(), r.blend))
	return nil
}

// DrawLine draws a single pixel wide line in the current colour.
func (r *Renderer) DrawLine(x0, y0, x1, y1 float32) error {
	target, err := r.target()
	if err != nil {
		return err
	}
	xf := r.deviceTransform()
	ax, ay := xf.Apply(float64(x0), float64(y0))
	bx, by := xf.Apply(float64(x1), float64(y1))
	r.stats.Lines++
	r.stats.PixelsWritten += uint64(drawLine(target, r.viewport, ax, ay, bx, by, r.colors.Top(), r.blend))
	return nil
}
