package desktop

import (
	"fmt"
	"image"

	"github.com/go-gl/gl/v2.1/gl"
	"github.com/spaghettifunk/bacon/engine/core"
)

// presenter uploads the frame buffer into a texture and draws it as one
// screen-filling quad with the fixed-function pipeline.
type presenter struct {
	texture uint32
	texW    int
	texH    int
}

func (p *presenter) init() error {
	if err := gl.Init(); err != nil {
		return fmt.Errorf("failed to initialize OpenGL: %v: %w", err, core.ErrUnsupportedPlatform)
	}
	core.LogInfo("OpenGL: %s", gl.GoStr(gl.GetString(gl.VERSION)))

	gl.GenTextures(1, &p.texture)
	gl.BindTexture(gl.TEXTURE_2D, p.texture)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_MIN_FILTER, gl.NEAREST)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_MAG_FILTER, gl.NEAREST)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_WRAP_S, gl.CLAMP_TO_EDGE)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_WRAP_T, gl.CLAMP_TO_EDGE)
	gl.PixelStorei(gl.UNPACK_ALIGNMENT, 1)
	gl.Disable(gl.BLEND)
	return nil
}

func (p *presenter) destroy() {
	if p.texture != 0 {
		gl.DeleteTextures(1, &p.texture)
		p.texture = 0
	}
}

func (p *presenter) draw(frame *image.NRGBA, fbw, fbh int) {
	w, h := frame.Rect.Dx(), frame.Rect.Dy()
	gl.Viewport(0, 0, int32(fbw), int32(fbh))
	gl.ClearColor(0, 0, 0, 1)
	gl.Clear(gl.COLOR_BUFFER_BIT)
	if w == 0 || h == 0 {
		return
	}

	gl.BindTexture(gl.TEXTURE_2D, p.texture)
	gl.PixelStorei(gl.UNPACK_ROW_LENGTH, int32(frame.Stride/4))
	if w != p.texW || h != p.texH {
		gl.TexImage2D(gl.TEXTURE_2D, 0, gl.RGBA, int32(w), int32(h), 0, gl.RGBA, gl.UNSIGNED_BYTE, gl.Ptr(frame.Pix))
		p.texW, p.texH = w, h
	} else {
		gl.TexSubImage2D(gl.TEXTURE_2D, 0, 0, 0, int32(w), int32(h), gl.RGBA, gl.UNSIGNED_BYTE, gl.Ptr(frame.Pix))
	}

	gl.MatrixMode(gl.PROJECTION)
	gl.LoadIdentity()
	// y down, matching the frame buffer
	gl.Ortho(0, 1, 1, 0, -1, 1)
	gl.MatrixMode(gl.MODELVIEW)
	gl.LoadIdentity()

	gl.Enable(gl.TEXTURE_2D)
	gl.Color4f(1, 1, 1, 1)
	gl.Begin(gl.QUADS)
	gl.TexCoord2f(0, 0)
	gl.Vertex2f(0, 0)
	gl.TexCoord2f(1, 0)
	gl.Vertex2f(1, 0)
	gl.TexCoord2f(1, 1)
	gl.Vertex2f(1, 1)
	gl.TexCoord2f(0, 1)
	gl.Vertex2f(0, 1)
	gl.End()
	gl.Disable(gl.TEXTURE_2D)
}
