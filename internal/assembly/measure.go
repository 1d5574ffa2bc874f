package assembly

import (
	"fmt"
	"os"
	"sync"

	"github.com/golang/freetype/truetype"
	"golang.org/x/image/font"
	"golang.org/x/image/math/fixed"
)

// WidthMeasurer reports the rendered advance width of a string at a given
// point size. Right-aligned placement needs the width before drawing.
type WidthMeasurer interface {
	Width(text string, size float64) (float64, error)
}

// FontMeasurer measures text against a TrueType font file, the same font the
// renderer draws inserted values with. Faces are cached per point size.
type FontMeasurer struct {
	font *truetype.Font

	mu    sync.Mutex
	faces map[float64]font.Face
}

// NewFontMeasurer parses the font file once and returns a measurer for it.
func NewFontMeasurer(fontPath string) (*FontMeasurer, error) {
	fontBytes, err := os.ReadFile(fontPath)
	if err != nil {
		return nil, fmt.Errorf("could not read font file %s: %w", fontPath, err)
	}
	parsedFont, err := truetype.Parse(fontBytes)
	if err != nil {
		return nil, fmt.Errorf("could not parse font file %s: %w", fontPath, err)
	}
	return &FontMeasurer{
		font:  parsedFont,
		faces: make(map[float64]font.Face),
	}, nil
}

// Width returns the advance width of text at the given point size, in points.
// At 72 DPI one pixel equals one point, so the 26.6 fixed-point advance maps
// directly to PDF units.
func (m *FontMeasurer) Width(text string, size float64) (float64, error) {
	if size <= 0 {
		return 0, fmt.Errorf("font size must be positive, got %g", size)
	}
	face := m.face(size)
	adv := font.MeasureString(face, text)
	return fixedToPoints(adv), nil
}

func (m *FontMeasurer) face(size float64) font.Face {
	m.mu.Lock()
	defer m.mu.Unlock()
	if f, ok := m.faces[size]; ok {
		return f
	}
	f := truetype.NewFace(m.font, &truetype.Options{
		Size:    size,
		DPI:     72,
		Hinting: font.HintingNone,
	})
	m.faces[size] = f
	return f
}

func fixedToPoints(v fixed.Int26_6) float64 {
	return float64(v) / 64.0
}
