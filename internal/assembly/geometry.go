package assembly

// Template coordinates are hand-measured in a top-left origin system
// (x grows right, y grows down), the same system the templates were
// annotated in. PDF user space has a bottom-left origin, so the renderer
// flips y against the page height at stamp time.

// Point is a position on a page in top-left coordinates.
type Point struct {
	X float64
	Y float64
}

// Rect is an axis-aligned region on a page in top-left coordinates.
// (X0, Y0) is the upper-left corner, (X1, Y1) the lower-right.
type Rect struct {
	X0 float64
	Y0 float64
	X1 float64
	Y1 float64
}

func (r Rect) Width() float64  { return r.X1 - r.X0 }
func (r Rect) Height() float64 { return r.Y1 - r.Y0 }

// Contains reports whether p lies inside r (inclusive of edges).
func (r Rect) Contains(p Point) bool {
	return p.X >= r.X0 && p.X <= r.X1 && p.Y >= r.Y0 && p.Y <= r.Y1
}

// Intersects reports whether r and o overlap.
func (r Rect) Intersects(o Rect) bool {
	return r.X0 < o.X1 && o.X0 < r.X1 && r.Y0 < o.Y1 && o.Y0 < r.Y1
}

// FlipY converts a top-left y coordinate to PDF user space for a page of the
// given height.
func FlipY(y, pageHeight float64) float64 {
	return pageHeight - y
}
