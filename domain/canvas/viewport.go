package canvas

import (
	"fmt"
	"math"

	"workflowbuilder/domain/config"
	"workflowbuilder/domain/core/valueobjects"
)

// Viewport is the pan/zoom transform applied to the whole node layer:
// screen = logical*zoom + pan.
type Viewport struct {
	Zoom float64               `json:"zoom"`
	Pan  valueobjects.Position `json:"pan"`
}

// DefaultViewport is 100% zoom with no pan
func DefaultViewport() Viewport {
	return Viewport{Zoom: 1}
}

// ToScreen maps a logical point to screen space
func (v Viewport) ToScreen(logical valueobjects.Position) valueobjects.Position {
	return logical.Scale(v.Zoom).Add(v.Pan)
}

// ToLogical maps a screen point to logical space
func (v Viewport) ToLogical(screen valueobjects.Position) valueobjects.Position {
	return screen.Sub(v.Pan).Scale(1 / v.Zoom)
}

// ScaleBy multiplies zoom by factor, clamped. The pan is left unchanged.
func (v Viewport) ScaleBy(factor float64, cfg *config.DomainConfig) Viewport {
	v.Zoom = cfg.ClampZoom(v.Zoom * factor)
	return v
}

// ScaleAt multiplies zoom by factor, clamped, keeping the logical point
// under the screen anchor fixed.
func (v Viewport) ScaleAt(factor float64, anchor valueobjects.Position, cfg *config.DomainConfig) Viewport {
	fixed := v.ToLogical(anchor)
	v.Zoom = cfg.ClampZoom(v.Zoom * factor)
	v.Pan = anchor.Sub(fixed.Scale(v.Zoom))
	return v
}

// Percent returns the zoom as a whole percentage
func (v Viewport) Percent() int {
	return int(math.Round(v.Zoom * 100))
}

// Label is the toolbar zoom label, e.g. "120%"
func (v Viewport) Label() string {
	return fmt.Sprintf("%d%%", v.Percent())
}

// Transform is the SVG/CSS transform for the node layer
func (v Viewport) Transform() string {
	return fmt.Sprintf("translate(%s %s) scale(%s)", num(v.Pan.X), num(v.Pan.Y), num(v.Zoom))
}
