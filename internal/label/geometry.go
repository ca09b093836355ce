package label

import "fmt"

// Point is a location on a page in PDF points, measured from the top-left
// corner the way text-layout tools report word positions.
type Point struct {
	X float64
	Y float64
}

// BBox is an axis-aligned rectangle anchored at its top-left corner.
type BBox struct {
	Left   float64
	Top    float64
	Width  float64
	Height float64
}

// Right returns the x coordinate of the right edge.
func (b BBox) Right() float64 { return b.Left + b.Width }

// Bottom returns the y coordinate of the bottom edge.
func (b BBox) Bottom() float64 { return b.Top + b.Height }

// Contains reports whether p lies inside b. Edges count as inside.
func (b BBox) Contains(p Point) bool {
	return b.Left <= p.X && p.X <= b.Right() &&
		b.Top <= p.Y && p.Y <= b.Bottom()
}

// Overlaps reports whether b and o share any point, edges included.
func (b BBox) Overlaps(o BBox) bool {
	return b.Left <= o.Right() && o.Left <= b.Right() &&
		b.Top <= o.Bottom() && o.Top <= b.Bottom()
}

func (b BBox) String() string {
	return fmt.Sprintf("(%g,%g %gx%g)", b.Left, b.Top, b.Width, b.Height)
}
