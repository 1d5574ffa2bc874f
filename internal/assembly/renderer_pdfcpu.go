package assembly

import (
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strings"

	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/types"
)

// PDFRenderer applies a plan to a template by stamping one watermark slice
// per page: background boxes that blank the marker regions first, then the
// replacement text runs. Stamps within one slice are applied in order, which
// carries the engine's clear-before-text guarantee down to the page content.
type PDFRenderer struct {
	fontName string
	measurer WidthMeasurer
	conf     *model.Configuration
}

// NewPDFRenderer installs the CJK user font into pdfcpu's font registry and
// returns a renderer drawing with it.
func NewPDFRenderer(fontPath string, measurer WidthMeasurer) (*PDFRenderer, error) {
	if _, err := os.Stat(fontPath); err != nil {
		return nil, fmt.Errorf("could not access font file %s: %w", fontPath, err)
	}
	if err := api.InstallFonts([]string{fontPath}); err != nil {
		return nil, fmt.Errorf("could not install font %s: %w", fontPath, err)
	}

	conf := model.NewDefaultConfiguration()
	conf.ValidationMode = model.ValidationRelaxed

	base := filepath.Base(fontPath)
	return &PDFRenderer{
		fontName: strings.TrimSuffix(base, filepath.Ext(base)),
		measurer: measurer,
		conf:     conf,
	}, nil
}

// Render stamps the plan onto the template and returns the assembled PDF.
// The plan must be applied to a pristine template: re-rendering an already
// assembled document would duplicate the inserted text.
func (r *PDFRenderer) Render(template []byte, plan *Plan) ([]byte, error) {
	if err := plan.Validate(); err != nil {
		return nil, fmt.Errorf("invalid stamp plan: %w", err)
	}

	tempDir, err := os.MkdirTemp("", "doc-assembly-*")
	if err != nil {
		return nil, fmt.Errorf("failed to create temp dir: %w", err)
	}
	defer os.RemoveAll(tempDir)

	inPath := filepath.Join(tempDir, "template.pdf")
	outPath := filepath.Join(tempDir, "assembled.pdf")
	if err := os.WriteFile(inPath, template, 0o600); err != nil {
		return nil, fmt.Errorf("failed to write template to temp file: %w", err)
	}

	dims, err := api.PageDimsFile(inPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read page dimensions: %w", err)
	}

	stamps := make(map[int][]*model.Watermark)
	for _, pageIdx := range plan.Pages() {
		if pageIdx >= len(dims) {
			return nil, fmt.Errorf("plan references page %d but template has %d pages", pageIdx, len(dims))
		}
		pageH := dims[pageIdx].Height
		pp := plan.Page(pageIdx)

		var wms []*model.Watermark
		for _, c := range pp.Clears {
			wm, err := r.clearStamp(c, pageH)
			if err != nil {
				return nil, fmt.Errorf("page %d: %w", pageIdx, err)
			}
			wms = append(wms, wm)
		}
		for _, t := range pp.Texts {
			wm, err := r.textStamp(t, pageH)
			if err != nil {
				return nil, fmt.Errorf("page %d: %w", pageIdx, err)
			}
			wms = append(wms, wm)
		}
		// pdfcpu page selection is 1-based.
		stamps[pageIdx+1] = wms
	}

	if err := api.AddWatermarksSliceMapFile(inPath, outPath, stamps, r.conf); err != nil {
		return nil, fmt.Errorf("failed to stamp template: %w", err)
	}

	out, err := os.ReadFile(outPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read assembled document: %w", err)
	}
	return out, nil
}

// clearStamp covers a marker region with its background color. The stamp is
// a single space whose background box is widened to the region via margins.
func (r *PDFRenderer) clearStamp(c ClearOp, pageH float64) (*model.Watermark, error) {
	boxH := c.Region.Height()
	spaceW, err := r.measurer.Width(" ", boxH)
	if err != nil {
		return nil, fmt.Errorf("could not measure clear stamp: %w", err)
	}
	padRight := int(math.Ceil(math.Max(0, c.Region.Width()-spaceW)))
	fill := hexColor(c.Fill)

	desc := fmt.Sprintf(
		"fontname:%s, points:%d, scalefactor:1 abs, position:bl, offset:%.2f %.2f, fillcolor:%s, backgroundcolor:%s, margins:0 %d 0 0, rotation:0, opacity:1",
		r.fontName,
		int(math.Round(boxH)),
		c.Region.X0,
		FlipY(c.Region.Y1, pageH),
		fill,
		fill,
		padRight,
	)
	wm, err := api.TextWatermark(" ", desc, true, false, types.POINTS)
	if err != nil {
		return nil, fmt.Errorf("could not build clear stamp: %w", err)
	}
	return wm, nil
}

// textStamp draws replacement text with its baseline at the insertion point.
func (r *PDFRenderer) textStamp(t TextOp, pageH float64) (*model.Watermark, error) {
	desc := fmt.Sprintf(
		"fontname:%s, points:%d, scalefactor:1 abs, position:bl, offset:%.2f %.2f, fillcolor:#000000, rotation:0, opacity:1",
		r.fontName,
		int(math.Round(t.FontSize)),
		t.At.X,
		FlipY(t.At.Y, pageH),
	)
	wm, err := api.TextWatermark(t.Text, desc, true, false, types.POINTS)
	if err != nil {
		return nil, fmt.Errorf("could not build text stamp for %q: %w", t.Text, err)
	}
	return wm, nil
}

func hexColor(c Color) string {
	to255 := func(v float64) int {
		n := int(math.Round(v * 255))
		if n < 0 {
			n = 0
		}
		if n > 255 {
			n = 255
		}
		return n
	}
	return fmt.Sprintf("#%02x%02x%02x", to255(c.R), to255(c.G), to255(c.B))
}
