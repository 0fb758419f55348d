package loaders

import (
	"fmt"
	"image"
	"os"
	"path/filepath"

	"github.com/fzipp/bmfont"
	"golang.org/x/image/draw"
)

// BitmapGlyph is one character of a bitmap font, already cut out of its
// page.
type BitmapGlyph struct {
	Codepoint rune
	Image     *image.NRGBA
	XOffset   int
	YOffset   int
	XAdvance  int
}

// BitmapFont is an AngelCode .fnt font with its glyphs resolved.
type BitmapFont struct {
	Face       string
	Size       int
	LineHeight int
	Base       int
	Glyphs     map[rune]*BitmapGlyph
	Kernings   map[[2]rune]int
}

type BitmapFontLoader struct{}

func (fl *BitmapFontLoader) Load(path string, params interface{}) (*Resource, error) {
	if _, err := os.Stat(path); err != nil {
		return nil, err
	}
	bf, err := importFNTFile(path)
	if err != nil {
		return nil, err
	}
	return &Resource{
		Name:     bf.Face,
		FullPath: path,
		DataSize: uint64(len(bf.Glyphs)),
		Data:     bf,
	}, nil
}

func (fl *BitmapFontLoader) Unload(resource *Resource) error {
	if bf, ok := resource.Data.(*BitmapFont); ok {
		bf.Glyphs = nil
		bf.Kernings = nil
	}
	resource.Data = nil
	resource.DataSize = 0
	return nil
}

func importFNTFile(fnt_file_name string) (*BitmapFont, error) {
	font, err := bmfont.Load(fnt_file_name)
	if err != nil {
		return nil, err
	}
	d := font.Descriptor

	out_data := &BitmapFont{
		Face:       d.Info.Face,
		Size:       int(d.Info.Size),
		LineHeight: int(d.Common.LineHeight),
		Base:       int(d.Common.Base),
		Glyphs:     make(map[rune]*BitmapGlyph, len(d.Chars)),
		Kernings:   make(map[[2]rune]int, len(d.Kerning)),
	}

	// Page images are resolved relative to the descriptor.
	dir := filepath.Dir(fnt_file_name)
	pages := make(map[int]*image.NRGBA, len(d.Pages))
	for _, p := range d.Pages {
		img, err := loadPage(filepath.Join(dir, p.File))
		if err != nil {
			return nil, fmt.Errorf("bitmap font page %d: %w", p.ID, err)
		}
		pages[int(p.ID)] = img
	}

	for _, g := range d.Chars {
		page, ok := pages[int(g.Page)]
		if !ok {
			return nil, fmt.Errorf("glyph %d references missing page %d", g.ID, g.Page)
		}
		r := image.Rect(int(g.X), int(g.Y), int(g.X)+int(g.Width), int(g.Y)+int(g.Height))
		out_data.Glyphs[rune(g.ID)] = &BitmapGlyph{
			Codepoint: rune(g.ID),
			Image:     crop(page, r),
			XOffset:   int(g.XOffset),
			YOffset:   int(g.YOffset),
			XAdvance:  int(g.XAdvance),
		}
	}

	for p, k := range d.Kerning {
		out_data.Kernings[[2]rune{rune(p.First), rune(p.Second)}] = int(k.Amount)
	}

	return out_data, nil
}

func loadPage(path string) (*image.NRGBA, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return DecodeImage(f)
}

// crop copies r out of src. An empty or out of bounds rectangle yields nil.
func crop(src *image.NRGBA, r image.Rectangle) *image.NRGBA {
	r = r.Intersect(src.Rect)
	if r.Empty() {
		return nil
	}
	dst := image.NewNRGBA(image.Rect(0, 0, r.Dx(), r.Dy()))
	draw.Draw(dst, dst.Rect, src, r.Min, draw.Src)
	return dst
}
