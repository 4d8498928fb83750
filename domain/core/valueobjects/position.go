package valueobjects

import "math"

// Position is a point in canvas space. Node positions are logical (unscaled,
// unpanned) coordinates; pointer positions arrive in screen coordinates.
type Position struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// NewPosition creates a position
func NewPosition(x, y float64) Position {
	return Position{X: x, Y: y}
}

// Add returns p translated by other
func (p Position) Add(other Position) Position {
	return Position{X: p.X + other.X, Y: p.Y + other.Y}
}

// Sub returns the vector from other to p
func (p Position) Sub(other Position) Position {
	return Position{X: p.X - other.X, Y: p.Y - other.Y}
}

// Scale multiplies both coordinates by f
func (p Position) Scale(f float64) Position {
	return Position{X: p.X * f, Y: p.Y * f}
}

// Distance returns the euclidean distance to other
func (p Position) Distance(other Position) float64 {
	return math.Hypot(p.X-other.X, p.Y-other.Y)
}

// Equals checks if two positions are equal
func (p Position) Equals(other Position) bool {
	return p.X == other.X && p.Y == other.Y
}

// Snap rounds both coordinates to the nearest multiple of grid.
// A non-positive grid leaves the position unchanged.
func (p Position) Snap(grid float64) Position {
	if grid <= 0 {
		return p
	}
	return Position{
		X: math.Round(p.X/grid) * grid,
		Y: math.Round(p.Y/grid) * grid,
	}
}

// Rect is an axis-aligned rectangle in logical space
type Rect struct {
	Min Position `json:"min"`
	Max Position `json:"max"`
}

// NewRect creates a rectangle from its top-left corner and size
func NewRect(topLeft Position, width, height float64) Rect {
	return Rect{Min: topLeft, Max: Position{X: topLeft.X + width, Y: topLeft.Y + height}}
}

// Contains reports whether p lies inside the rectangle (edges inclusive)
func (r Rect) Contains(p Position) bool {
	return p.X >= r.Min.X && p.X <= r.Max.X && p.Y >= r.Min.Y && p.Y <= r.Max.Y
}

// Width returns the rectangle width
func (r Rect) Width() float64 {
	return r.Max.X - r.Min.X
}

// Height returns the rectangle height
func (r Rect) Height() float64 {
	return r.Max.Y - r.Min.Y
}
