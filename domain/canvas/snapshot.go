package canvas

import (
	"workflowbuilder/domain/core/entities"
	"workflowbuilder/domain/core/valueobjects"
)

// NodeView is a node with its rendered geometry
type NodeView struct {
	entities.NodeSnapshot
	Bounds     valueobjects.Rect     `json:"bounds"`
	Input      valueobjects.Position `json:"input"`
	Output     valueobjects.Position `json:"output"`
	DeleteRect valueobjects.Rect     `json:"deleteRect"`
	Selected   bool                  `json:"selected"`
}

// ConnectionView is a connection with its curve
type ConnectionView struct {
	entities.Connection
	Path  string `json:"path"`
	Curve Bezier `json:"curve"`
}

// GhostView is the in-progress connection following the pointer
type GhostView struct {
	Source valueobjects.NodeID `json:"source"`
	Path   string              `json:"path"`
}

// Snapshot is everything a client needs to draw the canvas. Geometry is in
// logical space; apply Transform to the whole layer.
type Snapshot struct {
	WorkflowID   string           `json:"workflowId"`
	Name         string           `json:"name"`
	Version      int              `json:"version"`
	Mode         Mode             `json:"mode"`
	Viewport     Viewport         `json:"viewport"`
	ZoomLabel    string           `json:"zoomLabel"`
	Transform    string           `json:"transform"`
	ShowGrid     bool             `json:"showGrid"`
	GridSize     float64          `json:"gridSize"`
	SelectedNode string           `json:"selectedNode,omitempty"`
	Gesture      string           `json:"gesture,omitempty"`
	Nodes        []NodeView       `json:"nodes"`
	Connections  []ConnectionView `json:"connections"`
	Ghost        *GhostView       `json:"ghost,omitempty"`
}

// Snapshot renders the current state
func (c *Canvas) Snapshot() Snapshot {
	s := Snapshot{
		WorkflowID:   c.wf.ID().String(),
		Name:         c.wf.Name(),
		Version:      c.wf.Version(),
		Mode:         c.mode,
		Viewport:     c.viewport,
		ZoomLabel:    c.viewport.Label(),
		Transform:    c.viewport.Transform(),
		ShowGrid:     c.showGrid,
		GridSize:     c.cfg.GridSize,
		SelectedNode: c.selected.String(),
		Gesture:      c.Gesture(),
		Nodes:        []NodeView{},
		Connections:  []ConnectionView{},
	}
	for _, n := range c.wf.Nodes() {
		pos := n.Position()
		s.Nodes = append(s.Nodes, NodeView{
			NodeSnapshot: n.Snapshot(),
			Bounds:       c.layout.Bounds(pos),
			Input:        c.layout.InputPoint(pos),
			Output:       c.layout.OutputPoint(pos),
			DeleteRect:   c.layout.DeleteRect(pos),
			Selected:     n.ID().Equals(c.selected),
		})
	}

	for _, conn := range c.wf.Connections() {
		curve, ok := c.pathOf(conn)
		if !ok {
			continue
		}
		s.Connections = append(s.Connections, ConnectionView{
			Connection: conn,
			Path:       curve.SVG(),
			Curve:      curve,
		})
	}

	if g, ok := c.gesture.(*connectGesture); ok {
		if src, found := c.wf.Node(g.source); found {
			s.Ghost = &GhostView{
				Source: g.source,
				Path:   c.layout.GhostPath(src.Position(), g.pointer).SVG(),
			}
		}
	}
	return s
}
