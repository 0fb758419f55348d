package loaders

import "fmt"

type ResourceType int

const (
	ResourceTypeNone ResourceType = iota
	ResourceTypeImage
	ResourceTypeFont
	ResourceTypeBitmapFont
	ResourceTypeSound
	ResourceTypeShader
)

func (rt ResourceType) String() string {
	switch rt {
	case ResourceTypeImage:
		return "image"
	case ResourceTypeFont:
		return "font"
	case ResourceTypeBitmapFont:
		return "bitmap_font"
	case ResourceTypeSound:
		return "sound"
	case ResourceTypeShader:
		return "shader"
	case ResourceTypeNone:
		return "none"
	}
	return fmt.Sprintf("ResourceType(%d)", int(rt))
}

// Resource is the decoded content of one asset file.
type Resource struct {
	Name     string
	FullPath string
	DataSize uint64
	// One of *image.NRGBA, *opentype.Font, *BitmapFont, *PCM or *ShaderSource.
	Data interface{}
}
