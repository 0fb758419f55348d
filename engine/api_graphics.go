package engine

import (
	"fmt"

	"github.com/spaghettifunk/bacon/engine/containers"
	"github.com/spaghettifunk/bacon/engine/core"
	"github.com/spaghettifunk/bacon/engine/math"
	"github.com/spaghettifunk/bacon/engine/renderer"
	"github.com/spaghettifunk/bacon/engine/systems"
)

// images

func (e *Engine) CreateImage(width, height int) (containers.Handle, error) {
	if err := e.ready(); err != nil {
		return containers.InvalidHandle, err
	}
	return e.systemManager.ImageSystem.CreateImage(width, height)
}

func (e *Engine) LoadImage(path string, flags systems.ImageFlags) (containers.Handle, error) {
	if err := e.ready(); err != nil {
		return containers.InvalidHandle, err
	}
	return e.systemManager.ImageSystem.LoadImage(path, flags)
}

// UnloadImage destroys an image. If it is the current frame buffer the
// window becomes the target again.
func (e *Engine) UnloadImage(image containers.Handle) error {
	if err := e.ready(); err != nil {
		return err
	}
	return e.systemManager.ImageSystem.UnloadImage(image)
}

func (e *Engine) GetImageSize(image containers.Handle) (int, int, error) {
	if err := e.ready(); err != nil {
		return 0, 0, err
	}
	return e.systemManager.ImageSystem.ImageSize(image)
}

// shaders

func (e *Engine) CreateShader(vertexSource, fragmentSource string) (containers.Handle, error) {
	if err := e.ready(); err != nil {
		return containers.InvalidHandle, err
	}
	return e.systemManager.ShaderSystem.CreateShader("", vertexSource, fragmentSource)
}

func (e *Engine) LoadShader(vertexPath, fragmentPath string) (containers.Handle, error) {
	if err := e.ready(); err != nil {
		return containers.InvalidHandle, err
	}
	return e.systemManager.ShaderSystem.LoadShader(vertexPath, fragmentPath)
}

func (e *Engine) DestroyShader(shader containers.Handle) error {
	if err := e.ready(); err != nil {
		return err
	}
	if err := e.systemManager.ShaderSystem.DestroyShader(shader); err != nil {
		return err
	}
	if e.renderer.Shader() == shader {
		e.renderer.SetShader(containers.InvalidHandle)
	}
	return nil
}

// SetShader selects a shader for subsequent draws; 0 restores the default.
func (e *Engine) SetShader(shader containers.Handle) error {
	if err := e.ready(); err != nil {
		return err
	}
	if shader != containers.InvalidHandle && !e.systemManager.ShaderSystem.Valid(shader) {
		return fmt.Errorf("set shader %v: %w", shader, core.ErrInvalidHandle)
	}
	e.renderer.SetShader(shader)
	return nil
}

// transform stack

func (e *Engine) PushTransform() {
	if e.ready() != nil {
		return
	}
	e.renderer.Transforms().Push()
}

func (e *Engine) PopTransform() error {
	if err := e.ready(); err != nil {
		return err
	}
	return e.renderer.Transforms().Pop()
}

func (e *Engine) Translate(x, y float32) {
	if e.ready() != nil {
		return
	}
	e.renderer.Transforms().Translate(x, y)
}

func (e *Engine) Scale(sx, sy float32) {
	if e.ready() != nil {
		return
	}
	e.renderer.Transforms().Scale(sx, sy)
}

func (e *Engine) Rotate(radians float32) {
	if e.ready() != nil {
		return
	}
	e.renderer.Transforms().Rotate(radians)
}

// SetTransform replaces the top of the transform stack with a column-major
// 4x4 matrix. Only its 2D affine part is used.
func (e *Engine) SetTransform(matrix [16]float32) {
	if e.ready() != nil {
		return
	}
	e.renderer.Transforms().Set(math.Mat4{Data: matrix})
}

// color stack

func (e *Engine) PushColor() {
	if e.ready() != nil {
		return
	}
	e.renderer.Colors().Push()
}

func (e *Engine) PopColor() error {
	if err := e.ready(); err != nil {
		return err
	}
	return e.renderer.Colors().Pop()
}

func (e *Engine) SetColor(r, g, b, a float32) {
	if e.ready() != nil {
		return
	}
	e.renderer.Colors().Set(math.NewColor(r, g, b, a))
}

func (e *Engine) MultiplyColor(r, g, b, a float32) {
	if e.ready() != nil {
		return
	}
	e.renderer.Colors().Multiply(math.NewColor(r, g, b, a))
}

// drawing

func (e *Engine) Clear(r, g, b, a float32) error {
	if err := e.ready(); err != nil {
		return err
	}
	return e.renderer.Clear(math.NewColor(r, g, b, a))
}

// SetFrameBuffer redirects drawing into image, or back to the window for 0.
func (e *Engine) SetFrameBuffer(image containers.Handle) error {
	if err := e.ready(); err != nil {
		return err
	}
	return e.renderer.SetFrameBuffer(image)
}

func (e *Engine) SetViewport(x, y, width, height int) error {
	if err := e.ready(); err != nil {
		return err
	}
	return e.renderer.SetViewport(x, y, width, height)
}

func (e *Engine) SetBlending(src, dst renderer.BlendFactor) error {
	if err := e.ready(); err != nil {
		return err
	}
	return e.renderer.SetBlending(src, dst)
}

// DrawImage draws the whole image into the rectangle at (x, y) of size
// width x height, in the current transform.
func (e *Engine) DrawImage(image containers.Handle, x, y, width, height float32) error {
	if err := e.ready(); err != nil {
		return err
	}
	return e.renderer.DrawImage(image, x, y, width, height)
}

// DrawImageRegion draws the src pixels of image into dst.
func (e *Engine) DrawImageRegion(image containers.Handle, dst, src math.Rect) error {
	if err := e.ready(); err != nil {
		return err
	}
	return e.renderer.DrawImageRegion(image, dst, src)
}

func (e *Engine) DrawLine(x1, y1, x2, y2 float32) error {
	if err := e.ready(); err != nil {
		return err
	}
	return e.renderer.DrawLine(x1, y1, x2, y2)
}
