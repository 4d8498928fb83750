package canvas

import (
	"fmt"
	"math"
	"strconv"

	"workflowbuilder/domain/config"
	"workflowbuilder/domain/core/valueobjects"
)

// Layout holds the fixed node geometry. All values are logical units.
type Layout struct {
	NodeWidth        float64
	NodeHeight       float64
	HandleRadius     float64
	DeleteButtonSize float64
	HitStrokeWidth   float64
	CurveOffset      float64
	PathSamples      int
}

// LayoutFrom reads the geometry constants from the domain config
func LayoutFrom(cfg *config.DomainConfig) Layout {
	return Layout{
		NodeWidth:        cfg.NodeWidth,
		NodeHeight:       cfg.NodeHeight,
		HandleRadius:     cfg.HandleRadius,
		DeleteButtonSize: cfg.DeleteButtonSize,
		HitStrokeWidth:   cfg.HitStrokeWidth,
		CurveOffset:      cfg.CurveOffset,
		PathSamples:      cfg.PathSamples,
	}
}

// Bounds is the node body rectangle
func (l Layout) Bounds(pos valueobjects.Position) valueobjects.Rect {
	return valueobjects.NewRect(pos, l.NodeWidth, l.NodeHeight)
}

// OutputPoint is the right-center of a node
func (l Layout) OutputPoint(pos valueobjects.Position) valueobjects.Position {
	return valueobjects.NewPosition(pos.X+l.NodeWidth, pos.Y+l.NodeHeight/2)
}

// InputPoint is the left-center of a node
func (l Layout) InputPoint(pos valueobjects.Position) valueobjects.Position {
	return valueobjects.NewPosition(pos.X, pos.Y+l.NodeHeight/2)
}

// DeleteRect is the delete affordance in the node's top-right corner
func (l Layout) DeleteRect(pos valueobjects.Position) valueobjects.Rect {
	return valueobjects.NewRect(
		valueobjects.NewPosition(pos.X+l.NodeWidth-l.DeleteButtonSize, pos.Y),
		l.DeleteButtonSize, l.DeleteButtonSize,
	)
}

// OnOutput reports whether p is within the output handle's hit radius
func (l Layout) OnOutput(pos, p valueobjects.Position) bool {
	return l.OutputPoint(pos).Distance(p) <= l.HandleRadius
}

// OnInput reports whether p is within the input handle's hit radius
func (l Layout) OnInput(pos, p valueobjects.Position) bool {
	return l.InputPoint(pos).Distance(p) <= l.HandleRadius
}

// Bezier is a cubic curve in logical space
type Bezier struct {
	Start valueobjects.Position `json:"start"`
	C1    valueobjects.Position `json:"c1"`
	C2    valueobjects.Position `json:"c2"`
	End   valueobjects.Position `json:"end"`
}

// ConnectionPath routes from the source's right-center to the target's
// left-center. When the target sits left of the source the route is
// mirrored: source left-center to target right-center.
func (l Layout) ConnectionPath(source, target valueobjects.Position) Bezier {
	if target.X < source.X {
		start := l.InputPoint(source)
		end := l.OutputPoint(target)
		return Bezier{
			Start: start,
			C1:    valueobjects.NewPosition(start.X-l.CurveOffset, start.Y),
			C2:    valueobjects.NewPosition(end.X+l.CurveOffset, end.Y),
			End:   end,
		}
	}
	return l.curve(l.OutputPoint(source), l.InputPoint(target))
}

// GhostPath follows the pointer from a source node's output handle
func (l Layout) GhostPath(source, pointer valueobjects.Position) Bezier {
	return l.curve(l.OutputPoint(source), pointer)
}

func (l Layout) curve(start, end valueobjects.Position) Bezier {
	return Bezier{
		Start: start,
		C1:    valueobjects.NewPosition(start.X+l.CurveOffset, start.Y),
		C2:    valueobjects.NewPosition(end.X-l.CurveOffset, end.Y),
		End:   end,
	}
}

// Point evaluates the curve at t in [0,1]
func (b Bezier) Point(t float64) valueobjects.Position {
	u := 1 - t
	w0 := u * u * u
	w1 := 3 * u * u * t
	w2 := 3 * u * t * t
	w3 := t * t * t
	return valueobjects.NewPosition(
		w0*b.Start.X+w1*b.C1.X+w2*b.C2.X+w3*b.End.X,
		w0*b.Start.Y+w1*b.C1.Y+w2*b.C2.Y+w3*b.End.Y,
	)
}

// SVG returns the path "d" attribute
func (b Bezier) SVG() string {
	return fmt.Sprintf("M %s %s C %s %s, %s %s, %s %s",
		num(b.Start.X), num(b.Start.Y),
		num(b.C1.X), num(b.C1.Y),
		num(b.C2.X), num(b.C2.Y),
		num(b.End.X), num(b.End.Y))
}

// Distance approximates the shortest distance from p to the curve using a
// polyline of the given number of segments.
func (b Bezier) Distance(p valueobjects.Position, samples int) float64 {
	if samples < 1 {
		samples = 1
	}
	best := math.Inf(1)
	prev := b.Start
	for i := 1; i <= samples; i++ {
		next := b.Point(float64(i) / float64(samples))
		if d := segmentDistance(p, prev, next); d < best {
			best = d
		}
		prev = next
	}
	return best
}

// HitStroke reports whether p falls on the wide invisible stroke around the curve
func (l Layout) HitStroke(b Bezier, p valueobjects.Position) bool {
	return b.Distance(p, l.PathSamples) <= l.HitStrokeWidth/2
}

func segmentDistance(p, a, b valueobjects.Position) float64 {
	ab := b.Sub(a)
	lenSq := ab.X*ab.X + ab.Y*ab.Y
	if lenSq == 0 {
		return p.Distance(a)
	}
	ap := p.Sub(a)
	t := (ap.X*ab.X + ap.Y*ab.Y) / lenSq
	t = math.Max(0, math.Min(1, t))
	return p.Distance(a.Add(ab.Scale(t)))
}

func num(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}
