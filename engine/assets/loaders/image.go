package loaders

import (
	"fmt"
	"image"
	"io"
	"os"

	// image formats
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"

	"golang.org/x/image/draw"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"
)

type ImageLoader struct{}

type ImageParams struct {
	PremultiplyAlpha bool
}

func (il *ImageLoader) Load(path string, params interface{}) (*Resource, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	img, err := DecodeImage(file)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	if p, ok := params.(*ImageParams); ok && p.PremultiplyAlpha {
		PremultiplyAlpha(img)
	}
	return &Resource{
		Name:     "image",
		FullPath: path,
		DataSize: uint64(len(img.Pix)),
		Data:     img,
	}, nil
}

func (il *ImageLoader) Unload(resource *Resource) error {
	resource.Data = nil
	resource.DataSize = 0
	return nil
}

// DecodeImage decodes any registered format into a tightly packed NRGBA
// image with its origin at (0, 0).
func DecodeImage(r io.Reader) (*image.NRGBA, error) {
	src, _, err := image.Decode(r)
	if err != nil {
		return nil, err
	}
	b := src.Bounds()
	if n, ok := src.(*image.NRGBA); ok && b.Min == (image.Point{}) && n.Stride == 4*b.Dx() {
		return n, nil
	}
	dst := image.NewNRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	draw.Draw(dst, dst.Rect, src, b.Min, draw.Src)
	return dst, nil
}

// PremultiplyAlpha multiplies the colour channels by alpha in place.
func PremultiplyAlpha(img *image.NRGBA) {
	pix := img.Pix
	for i := 0; i+3 < len(pix); i += 4 {
		a := uint32(pix[i+3])
		pix[i] = uint8((uint32(pix[i])*a + 127) / 255)
		pix[i+1] = uint8((uint32(pix[i+1])*a + 127) / 255)
		pix[i+2] = uint8((uint32(pix[i+2])*a + 127) / 255)
	}
}
