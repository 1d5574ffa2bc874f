package assembly

import (
	"fmt"
	"sort"
)

// ClearOp blanks a marker region with the page's background color.
type ClearOp struct {
	Region Rect
	Fill   Color
}

// TextOp draws replacement text with its baseline anchored at At.
type TextOp struct {
	At       Point
	Text     string
	FontSize float64
}

// PagePlan is the ordered visual transformation of a single page. The
// renderer must emit every clear before any text: adjacent or overlapping
// marker regions would otherwise let a later clear erase an already-drawn
// value.
type PagePlan struct {
	Clears []ClearOp
	Texts  []TextOp
}

// Plan maps page index to that page's transformation. A plan is applied to a
// template exactly once; re-applying it would duplicate the inserted text.
type Plan struct {
	pages map[int]*PagePlan
	fill  Color
}

// NewPlan creates an empty plan whose clear operations use the given
// background fill.
func NewPlan(fill Color) *Plan {
	return &Plan{pages: make(map[int]*PagePlan), fill: fill}
}

func (p *Plan) page(idx int) *PagePlan {
	pp, ok := p.pages[idx]
	if !ok {
		pp = &PagePlan{}
		p.pages[idx] = pp
	}
	return pp
}

// AddClear registers a region blanking without an accompanying insertion.
func (p *Plan) AddClear(pageIndex int, region Rect) {
	pp := p.page(pageIndex)
	pp.Clears = append(pp.Clears, ClearOp{Region: region, Fill: p.fill})
}

// AddText registers a text insertion at an absolute point.
func (p *Plan) AddText(pageIndex int, at Point, text string, fontSize float64) {
	pp := p.page(pageIndex)
	pp.Texts = append(pp.Texts, TextOp{At: at, Text: text, FontSize: fontSize})
}

// Pages returns the page indices carrying operations, in ascending order.
func (p *Plan) Pages() []int {
	idxs := make([]int, 0, len(p.pages))
	for i := range p.pages {
		idxs = append(idxs, i)
	}
	sort.Ints(idxs)
	return idxs
}

// Page returns the plan for one page, or nil.
func (p *Plan) Page(idx int) *PagePlan {
	return p.pages[idx]
}

// Empty reports whether the plan carries no operations at all.
func (p *Plan) Empty() bool {
	for _, pp := range p.pages {
		if len(pp.Clears) > 0 || len(pp.Texts) > 0 {
			return false
		}
	}
	return true
}

// Renderer applies a plan to template bytes and returns the assembled
// document. Implementations must honor the clear-before-text ordering of
// each PagePlan.
type Renderer interface {
	Render(template []byte, plan *Plan) ([]byte, error)
}

// Validate checks a plan for obvious authoring mistakes before rendering.
func (p *Plan) Validate() error {
	for idx, pp := range p.pages {
		if idx < 0 {
			return fmt.Errorf("plan references negative page index %d", idx)
		}
		for _, c := range pp.Clears {
			if c.Region.Width() <= 0 || c.Region.Height() <= 0 {
				return fmt.Errorf("page %d: degenerate clear region %+v", idx, c.Region)
			}
		}
		for _, t := range pp.Texts {
			if t.Text == "" {
				return fmt.Errorf("page %d: empty insertion text", idx)
			}
			if t.FontSize <= 0 {
				return fmt.Errorf("page %d: non-positive font size %g", idx, t.FontSize)
			}
		}
	}
	return nil
}
