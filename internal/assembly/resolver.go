package assembly

import (
	"bytes"
	"fmt"
	"sort"
	"strings"

	"github.com/ledongthuc/pdf"
)

// PlaceholderMatch is one located marker region on a page. Transient: it
// lives for a single redaction pass and is discarded after insertion.
type PlaceholderMatch struct {
	Region Rect
	Text   string
}

// Fractions of the font size used to approximate a run's vertical extent
// around its baseline.
const (
	runAscentRatio  = 0.8
	runDescentRatio = 0.2
)

// textRun is a horizontal sequence of same-style glyph fragments merged into
// one logical string with a bounding extent.
type textRun struct {
	text     string
	font     string
	fontSize float64
	x0, x1   float64
	baseline float64
}

// Resolver locates placeholder markers inside rendered template pages.
type Resolver struct{}

// FindOnPage returns the bounding rect, in top-left page coordinates, of
// every run on the page whose trimmed text equals marker and whose style
// matches the signature. No match yields an empty slice, not an error.
func (Resolver) FindOnPage(page pdf.Page, marker string, style StyleSignature) ([]PlaceholderMatch, error) {
	height, err := pageHeight(page)
	if err != nil {
		return nil, err
	}
	content := page.Content()
	return matchRuns(content.Text, marker, style, height), nil
}

// OpenTemplate opens template bytes for placeholder resolution.
func OpenTemplate(data []byte) (*pdf.Reader, error) {
	r, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, fmt.Errorf("could not open template for text layout: %w", err)
	}
	return r, nil
}

// matchRuns merges raw glyph fragments into runs and filters them by exact
// trimmed text and style signature. Exposed to tests through constructed
// fragment slices.
func matchRuns(texts []pdf.Text, marker string, style StyleSignature, pageHeight float64) []PlaceholderMatch {
	var matches []PlaceholderMatch
	for _, run := range groupRuns(texts) {
		if strings.TrimSpace(run.text) != marker {
			continue
		}
		if !style.Matches(run.font, run.fontSize) {
			continue
		}
		matches = append(matches, PlaceholderMatch{
			Region: Rect{
				X0: run.x0,
				Y0: pageHeight - (run.baseline + run.fontSize*runAscentRatio),
				X1: run.x1,
				Y1: pageHeight - (run.baseline - run.fontSize*runDescentRatio),
			},
			Text: strings.TrimSpace(run.text),
		})
	}
	return matches
}

// groupRuns sorts fragments into reading order and merges neighbours that
// share a baseline, font and size into single runs. PDF content streams
// frequently emit placeholders one glyph at a time.
func groupRuns(texts []pdf.Text) []textRun {
	if len(texts) == 0 {
		return nil
	}

	const (
		baselineTolerance = 0.5
		// Fragments further apart than this are separate runs even on one
		// baseline (covers inter-word gaps in genuine document text).
		maxFragmentGap = 2.0
	)

	sorted := make([]pdf.Text, len(texts))
	copy(sorted, texts)
	sort.SliceStable(sorted, func(i, j int) bool {
		if d := sorted[i].Y - sorted[j].Y; d > baselineTolerance || d < -baselineTolerance {
			return sorted[i].Y > sorted[j].Y // top of page first
		}
		return sorted[i].X < sorted[j].X
	})

	var runs []textRun
	var cur *textRun
	for _, t := range sorted {
		sameRun := cur != nil &&
			cur.font == t.Font &&
			abs(cur.fontSize-t.FontSize) < 0.01 &&
			abs(cur.baseline-t.Y) <= baselineTolerance &&
			t.X-cur.x1 <= maxFragmentGap &&
			t.X >= cur.x0
		if sameRun {
			cur.text += t.S
			if end := t.X + t.W; end > cur.x1 {
				cur.x1 = end
			}
			continue
		}
		runs = append(runs, textRun{})
		cur = &runs[len(runs)-1]
		*cur = textRun{
			text:     t.S,
			font:     t.Font,
			fontSize: t.FontSize,
			x0:       t.X,
			x1:       t.X + t.W,
			baseline: t.Y,
		}
	}
	return runs
}

// pageHeight resolves the page MediaBox height, following Parent links for
// inherited boxes.
func pageHeight(page pdf.Page) (float64, error) {
	v := page.V
	for !v.IsNull() {
		mb := v.Key("MediaBox")
		if !mb.IsNull() && mb.Len() == 4 {
			return mb.Index(3).Float64() - mb.Index(1).Float64(), nil
		}
		v = v.Key("Parent")
	}
	return 0, fmt.Errorf("page has no MediaBox")
}

func abs(v float64) float64 {
	if v < 0 {
		return -v
	}
	return v
}
