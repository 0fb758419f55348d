package renderer

import (
	"image"

	"github.com/spaghettifunk/bacon/engine/containers"
)

// RendererBackend receives finished frames. The platform layer implements it:
// the GLFW window uploads the frame to a texture, the headless platform keeps
// the last frame around for inspection.
type RendererBackend interface {
	Resized(width, height uint32) error
	Present(frame *image.NRGBA) error
}

// ImageSource resolves image handles to their pixel surfaces.
type ImageSource interface {
	ImageSurface(handle containers.Handle) (*image.NRGBA, error)
}
