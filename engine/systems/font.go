package systems

import (
	"fmt"
	"image"
	"path/filepath"
	"strings"

	"github.com/spaghettifunk/bacon/engine/assets"
	"github.com/spaghettifunk/bacon/engine/assets/loaders"
	"github.com/spaghettifunk/bacon/engine/containers"
	"github.com/spaghettifunk/bacon/engine/core"
	"golang.org/x/image/draw"
	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/gomono"
	"golang.org/x/image/font/opentype"
	"golang.org/x/image/math/fixed"
)

// Outline fonts are rasterized at this resolution.
const FONT_DPI = 96

type FontFlags int32

const (
	FONT_FLAG_LIGHT_HINTING FontFlags = 1 << 0
)

type FontType int

const (
	FONT_TYPE_OUTLINE FontType = iota
	FONT_TYPE_BITMAP
)

type faceKey struct {
	size  float32
	flags FontFlags
}

type Font struct {
	Name     string
	Path     string
	FontType FontType
	outline  *opentype.Font
	bitmap   *loaders.BitmapFont
	faces    map[faceKey]font.Face
}

// Glyph is a rendered character. Image is 0 when the glyph has no pixels,
// e.g. a space. Otherwise the caller owns the image and unloads it.
type Glyph struct {
	Image   containers.Handle
	OffsetX float32
	OffsetY float32
	Advance float32
}

type FontSystemConfig struct {
	MaxFontCount int
}

type FontSystem struct {
	Config      *FontSystemConfig
	fonts       *containers.HandleArray[Font]
	defaultFont containers.Handle
	// sub systems
	imageSystem  *ImageSystem
	assetManager *assets.AssetManager
}

func NewFontSystem(config *FontSystemConfig, is *ImageSystem, am *assets.AssetManager) (*FontSystem, error) {
	if config.MaxFontCount <= 0 {
		return nil, fmt.Errorf("func NewFontSystem - config.MaxFontCount must be > 0")
	}
	return &FontSystem{
		Config:       config,
		fonts:        containers.NewHandleArray[Font](16),
		imageSystem:  is,
		assetManager: am,
	}, nil
}

func (fs *FontSystem) Shutdown() error {
	for _, h := range fs.fonts.Handles() {
		if err := fs.UnloadFont(h); err != nil {
			return err
		}
	}
	return nil
}

func (fs *FontSystem) alloc(f Font) (containers.Handle, error) {
	if fs.fonts.Len() >= fs.Config.MaxFontCount {
		return containers.InvalidHandle, fmt.Errorf("font limit of %d reached: %w", fs.Config.MaxFontCount, core.ErrResourceCreation)
	}
	f.faces = make(map[faceKey]font.Face)
	h, err := fs.fonts.Alloc(f)
	if err != nil {
		return containers.InvalidHandle, fmt.Errorf("%v: %w", err, core.ErrResourceCreation)
	}
	return h, nil
}

// LoadFont loads a TrueType/OpenType font, or an AngelCode bitmap font when
// the file ends in .fnt.
func (fs *FontSystem) LoadFont(path string) (containers.Handle, error) {
	if strings.EqualFold(filepath.Ext(path), ".fnt") {
		res, err := fs.assetManager.LoadAsset(path, loaders.ResourceTypeBitmapFont, nil)
		if err != nil {
			return containers.InvalidHandle, fmt.Errorf("load font %s: %v: %w", path, err, core.ErrResourceCreation)
		}
		return fs.alloc(Font{Name: res.Name, Path: res.FullPath, FontType: FONT_TYPE_BITMAP, bitmap: res.Data.(*loaders.BitmapFont)})
	}
	res, err := fs.assetManager.LoadAsset(path, loaders.ResourceTypeFont, nil)
	if err != nil {
		return containers.InvalidHandle, fmt.Errorf("load font %s: %v: %w", path, err, core.ErrResourceCreation)
	}
	h, err := fs.alloc(Font{Name: res.Name, Path: res.FullPath, FontType: FONT_TYPE_OUTLINE, outline: res.Data.(*opentype.Font)})
	if err == nil {
		core.LogDebug("loaded font %s (%s) as %v", path, res.Name, h)
	}
	return h, err
}

// DefaultFont returns the built-in monospace font, loading it on first use.
func (fs *FontSystem) DefaultFont() (containers.Handle, error) {
	if fs.fonts.Valid(fs.defaultFont) {
		return fs.defaultFont, nil
	}
	f, name, err := loaders.ParseFont(gomono.TTF)
	if err != nil {
		return containers.InvalidHandle, fmt.Errorf("default font: %v: %w", err, core.ErrResourceCreation)
	}
	h, err := fs.alloc(Font{Name: name, FontType: FONT_TYPE_OUTLINE, outline: f})
	if err != nil {
		return h, err
	}
	fs.defaultFont = h
	return h, nil
}

func (fs *FontSystem) UnloadFont(h containers.Handle) error {
	f, err := fs.fonts.Free(h)
	if err != nil {
		return fmt.Errorf("unload font %v: %w", h, err)
	}
	for _, face := range f.faces {
		face.Close()
	}
	if h == fs.defaultFont {
		fs.defaultFont = containers.InvalidHandle
	}
	return nil
}

func (fs *FontSystem) get(h containers.Handle) (*Font, error) {
	f, err := fs.fonts.Get(h)
	if err != nil {
		return nil, fmt.Errorf("font %v: %w", h, err)
	}
	return f, nil
}

func (fs *FontSystem) face(f *Font, size float32, flags FontFlags) (font.Face, error) {
	key := faceKey{size: size, flags: flags & FONT_FLAG_LIGHT_HINTING}
	if face, ok := f.faces[key]; ok {
		return face, nil
	}
	hinting := font.HintingFull
	if key.flags&FONT_FLAG_LIGHT_HINTING != 0 {
		hinting = font.HintingVertical
	}
	face, err := opentype.NewFace(f.outline, &opentype.FaceOptions{
		Size:    float64(size),
		DPI:     FONT_DPI,
		Hinting: hinting,
	})
	if err != nil {
		return nil, fmt.Errorf("font %s at %v: %v: %w", f.Name, size, err, core.ErrResourceCreation)
	}
	f.faces[key] = face
	return face, nil
}

// Metrics returns the ascent (above the baseline, positive) and descent
// (below the baseline, zero or negative) in pixels. Bitmap fonts ignore size.
func (fs *FontSystem) Metrics(h containers.Handle, size float32) (ascent, descent float32, err error) {
	if size <= 0 {
		return 0, 0, fmt.Errorf("font size %v: %w", size, core.ErrInvalidArgument)
	}
	f, err := fs.get(h)
	if err != nil {
		return 0, 0, err
	}
	if f.FontType == FONT_TYPE_BITMAP {
		return float32(f.bitmap.Base), float32(f.bitmap.Base - f.bitmap.LineHeight), nil
	}
	face, err := fs.face(f, size, 0)
	if err != nil {
		return 0, 0, err
	}
	m := face.Metrics()
	return float32(m.Ascent.Round()), float32(-m.Descent.Round()), nil
}

// Glyph renders one character. OffsetX/OffsetY place the image's top-left
// corner relative to the pen position on the baseline, y up.
func (fs *FontSystem) Glyph(h containers.Handle, size float32, codepoint rune, flags FontFlags) (Glyph, error) {
	if size <= 0 {
		return Glyph{}, fmt.Errorf("font size %v: %w", size, core.ErrInvalidArgument)
	}
	f, err := fs.get(h)
	if err != nil {
		return Glyph{}, err
	}
	if f.FontType == FONT_TYPE_BITMAP {
		return fs.bitmapGlyph(f, codepoint)
	}

	face, err := fs.face(f, size, flags)
	if err != nil {
		return Glyph{}, err
	}
	dr, mask, maskp, advance, ok := face.Glyph(fixed.Point26_6{}, codepoint)
	if !ok {
		return Glyph{}, nil
	}
	g := Glyph{
		OffsetX: float32(dr.Min.X),
		OffsetY: float32(-dr.Min.Y),
		Advance: float32(advance.Round()),
	}
	if dr.Empty() {
		return g, nil
	}
	surface := image.NewNRGBA(image.Rect(0, 0, dr.Dx(), dr.Dy()))
	draw.DrawMask(surface, surface.Rect, image.White, image.Point{}, mask, maskp, draw.Src)
	g.Image, err = fs.imageSystem.AdoptImage(fmt.Sprintf("glyph-%s-%v-%U", f.Name, size, codepoint), surface)
	return g, err
}

func (fs *FontSystem) bitmapGlyph(f *Font, codepoint rune) (Glyph, error) {
	bg, ok := f.bitmap.Glyphs[codepoint]
	if !ok {
		return Glyph{}, nil
	}
	g := Glyph{
		OffsetX: float32(bg.XOffset),
		OffsetY: float32(f.bitmap.Base - bg.YOffset),
		Advance: float32(bg.XAdvance),
	}
	if bg.Image == nil {
		return g, nil
	}
	// Callers own glyph images, so hand out a copy.
	surface := image.NewNRGBA(bg.Image.Rect)
	copy(surface.Pix, bg.Image.Pix)
	var err error
	g.Image, err = fs.imageSystem.AdoptImage(fmt.Sprintf("glyph-%s-%U", f.Name, codepoint), surface)
	return g, err
}

// Kerning returns the horizontal adjustment between two characters.
func (fs *FontSystem) Kerning(h containers.Handle, size float32, a, b rune) (float32, error) {
	if size <= 0 {
		return 0, fmt.Errorf("font size %v: %w", size, core.ErrInvalidArgument)
	}
	f, err := fs.get(h)
	if err != nil {
		return 0, err
	}
	if f.FontType == FONT_TYPE_BITMAP {
		return float32(f.bitmap.Kernings[[2]rune{a, b}]), nil
	}
	face, err := fs.face(f, size, 0)
	if err != nil {
		return 0, err
	}
	return float32(face.Kern(a, b).Round()), nil
}
