package canvas

import (
	"workflowbuilder/domain/core/valueobjects"
)

// gesture is the state of one pointer-down to pointer-up sequence. A fresh
// value is created at pointer-down and owns every delta it needs, so no
// gesture ever reads state left behind by an earlier one.
type gesture interface {
	name() string
	move(c *Canvas, screen valueobjects.Position)
	// up finishes the gesture; the canvas clears its slot afterwards
	up(c *Canvas, screen valueobjects.Position)
}

// dragGesture moves one node, keeping the grab point under the pointer
type dragGesture struct {
	nodeID valueobjects.NodeID
	offset valueobjects.Position
}

func (g *dragGesture) name() string { return "drag" }

func (g *dragGesture) move(c *Canvas, screen valueobjects.Position) {
	logical := c.viewport.ToLogical(screen)
	c.wf.MoveNode(g.nodeID, logical.Sub(g.offset))
}

func (g *dragGesture) up(c *Canvas, screen valueobjects.Position) {
	g.move(c, screen)
}

// panGesture shifts the viewport by the screen delta since pointer-down
type panGesture struct {
	startScreen valueobjects.Position
	startPan    valueobjects.Position
}

func (g *panGesture) name() string { return "pan" }

func (g *panGesture) move(c *Canvas, screen valueobjects.Position) {
	c.viewport.Pan = g.startPan.Add(screen.Sub(g.startScreen))
}

func (g *panGesture) up(c *Canvas, screen valueobjects.Position) {
	g.move(c, screen)
}

// connectGesture draws a ghost curve from a node's output handle to the
// pointer and commits a connection when released over another node's input.
type connectGesture struct {
	source  valueobjects.NodeID
	pointer valueobjects.Position // logical
}

func (g *connectGesture) name() string { return "connect" }

func (g *connectGesture) move(c *Canvas, screen valueobjects.Position) {
	g.pointer = c.viewport.ToLogical(screen)
}

func (g *connectGesture) up(c *Canvas, screen valueobjects.Position) {
	g.move(c, screen)
	target, ok := c.inputAt(g.pointer, g.source)
	if !ok {
		return
	}
	c.wf.AddConnection(g.source, target, c.cfg.OutputHandle, c.cfg.InputHandle)
}
