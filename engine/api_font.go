package engine

import (
	"github.com/spaghettifunk/bacon/engine/containers"
	"github.com/spaghettifunk/bacon/engine/core"
	"github.com/spaghettifunk/bacon/engine/systems"
)

// LoadFont loads an outline (.ttf, .otf) or bitmap (.fnt) font.
func (e *Engine) LoadFont(path string) (containers.Handle, error) {
	if err := e.ready(); err != nil {
		return containers.InvalidHandle, err
	}
	return e.systemManager.FontSystem.LoadFont(path)
}

// GetDefaultFont returns the built-in monospace font.
func (e *Engine) GetDefaultFont() (containers.Handle, error) {
	if err := e.ready(); err != nil {
		return containers.InvalidHandle, err
	}
	return e.systemManager.FontSystem.DefaultFont()
}

func (e *Engine) UnloadFont(font containers.Handle) error {
	if err := e.ready(); err != nil {
		return err
	}
	if err := e.systemManager.FontSystem.UnloadFont(font); err != nil {
		return err
	}
	e.dropGlyphs(font)
	return nil
}

// GetFontMetrics returns ascent and descent in pixels; descent is <= 0.
func (e *Engine) GetFontMetrics(font containers.Handle, size float32) (ascent, descent float32, err error) {
	if err := e.ready(); err != nil {
		return 0, 0, err
	}
	return e.systemManager.FontSystem.Metrics(font, size)
}

// GetGlyph renders one character into a new image owned by the caller.
// Glyph.Image is 0 for characters without pixels.
func (e *Engine) GetGlyph(font containers.Handle, size float32, codepoint rune, flags systems.FontFlags) (systems.Glyph, error) {
	if err := e.ready(); err != nil {
		return systems.Glyph{}, err
	}
	return e.systemManager.FontSystem.Glyph(font, size, codepoint, flags)
}

func (e *Engine) cachedGlyph(font containers.Handle, size float32, codepoint rune) (systems.Glyph, error) {
	key := glyphKey{font: font, size: size, codepoint: codepoint}
	if g, ok := e.glyphs[key]; ok {
		return g, nil
	}
	g, err := e.systemManager.FontSystem.Glyph(font, size, codepoint, 0)
	if err != nil {
		return g, err
	}
	e.glyphs[key] = g
	return g, nil
}

func (e *Engine) dropGlyphs(font containers.Handle) {
	for key, g := range e.glyphs {
		if key.font != font {
			continue
		}
		if g.Image != containers.InvalidHandle {
			if err := e.systemManager.ImageSystem.UnloadImage(g.Image); err != nil {
				core.LogDebug("glyph image %v already gone: %s", g.Image, err)
			}
		}
		delete(e.glyphs, key)
	}
}

// DrawString draws text with its baseline at y, starting at x, in the current
// transform and colour. It returns the pen position after the last glyph.
func (e *Engine) DrawString(font containers.Handle, size float32, x, y float32, text string) (float32, error) {
	if err := e.ready(); err != nil {
		return x, err
	}
	pen := x
	var prev rune
	for i, r := range text {
		if i > 0 {
			k, err := e.systemManager.FontSystem.Kerning(font, size, prev, r)
			if err != nil {
				return pen, err
			}
			pen += k
		}
		g, err := e.cachedGlyph(font, size, r)
		if err != nil {
			return pen, err
		}
		if g.Image != containers.InvalidHandle {
			w, h, err := e.systemManager.ImageSystem.ImageSize(g.Image)
			if err != nil {
				return pen, err
			}
			if err := e.renderer.DrawImage(g.Image, pen+g.OffsetX, y-g.OffsetY, float32(w), float32(h)); err != nil {
				return pen, err
			}
		}
		pen += g.Advance
		prev = r
	}
	return pen, nil
}
