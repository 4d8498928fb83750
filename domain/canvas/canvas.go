// Package canvas is the interaction engine of the workflow editor. It owns
// the live graph, the viewport and the selection, turns pointer gestures and
// intents into graph mutations, and reports what happened upward.
//
// A Canvas is not safe for concurrent use; callers serialise access.
package canvas

import (
	"strings"

	"workflowbuilder/domain/bridge"
	"workflowbuilder/domain/config"
	"workflowbuilder/domain/core/aggregates"
	"workflowbuilder/domain/core/entities"
	"workflowbuilder/domain/core/valueobjects"
	"workflowbuilder/domain/events"
	"workflowbuilder/domain/palette"
)

// Mode is the toolbar interaction mode
type Mode string

const (
	ModeSelect  Mode = "select"
	ModeConnect Mode = "connect"
	ModePan     Mode = "pan"
)

// ParseMode validates a mode name
func ParseMode(s string) (Mode, bool) {
	switch m := Mode(strings.ToLower(strings.TrimSpace(s))); m {
	case ModeSelect, ModeConnect, ModePan:
		return m, true
	}
	return "", false
}

// Callbacks are the upward notifications to the hosting page
type Callbacks struct {
	// OnSelectNode receives nil when the selection is cleared
	OnSelectNode func(node *entities.NodeSnapshot)
	OnUpdateNode func(id valueobjects.NodeID, data entities.NodeData)
	OnDeleteNode func(id valueobjects.NodeID)
}

// Notifier receives an advisory notice for every graph mutation
type Notifier interface {
	Notify(event events.DomainEvent)
}

// NotifierFunc adapts a function to Notifier
type NotifierFunc func(events.DomainEvent)

// Notify calls f(event)
func (f NotifierFunc) Notify(event events.DomainEvent) { f(event) }

// Catalog resolves dropped payloads to node titles
type Catalog interface {
	ResolveTitle(p palette.DragPayload) (string, bool)
}

// Option configures a Canvas
type Option func(*Canvas)

// WithCatalog restricts drops to the catalog's node types
func WithCatalog(cat Catalog) Option {
	return func(c *Canvas) { c.catalog = cat }
}

// WithNotifier sets the mutation observer
func WithNotifier(n Notifier) Option {
	return func(c *Canvas) { c.notifier = n }
}

// WithCallbacks sets the upward callbacks
func WithCallbacks(cb Callbacks) Option {
	return func(c *Canvas) { c.callbacks = cb }
}

// Canvas is the single writer of one workflow graph
type Canvas struct {
	wf       *aggregates.Workflow
	cfg      *config.DomainConfig
	layout   Layout
	viewport Viewport
	mode     Mode
	showGrid bool
	selected valueobjects.NodeID
	gesture  gesture

	catalog     Catalog
	notifier    Notifier
	callbacks   Callbacks
	unsubscribe func()
}

// New creates a canvas over wf. A nil workflow starts an empty one.
func New(wf *aggregates.Workflow, cfg *config.DomainConfig, opts ...Option) *Canvas {
	if cfg == nil {
		cfg = config.DefaultDomainConfig()
	}
	if wf == nil {
		wf = aggregates.NewWorkflow("", cfg)
	}
	c := &Canvas{
		wf:       wf,
		cfg:      cfg,
		layout:   LayoutFrom(cfg),
		viewport: DefaultViewport(),
		mode:     ModeSelect,
		showGrid: cfg.ShowGrid,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Workflow returns the graph being edited
func (c *Canvas) Workflow() *aggregates.Workflow {
	return c.wf
}

// Layout returns the node geometry
func (c *Canvas) Layout() Layout {
	return c.layout
}

// Mode returns the current interaction mode
func (c *Canvas) Mode() Mode {
	return c.mode
}

// Viewport returns the current pan/zoom transform
func (c *Canvas) Viewport() Viewport {
	return c.viewport
}

// ShowGrid reports whether the background grid is visible
func (c *Canvas) ShowGrid() bool {
	return c.showGrid
}

// GestureActive reports whether a pointer gesture is in progress
func (c *Canvas) GestureActive() bool {
	return c.gesture != nil
}

// Gesture names the active gesture, or "" when idle
func (c *Canvas) Gesture() string {
	if c.gesture == nil {
		return ""
	}
	return c.gesture.name()
}

// Selected returns the active node id, if any
func (c *Canvas) Selected() (valueobjects.NodeID, bool) {
	return c.selected, !c.selected.IsZero()
}

// SelectedNode returns the active node, if any
func (c *Canvas) SelectedNode() (*entities.Node, bool) {
	if c.selected.IsZero() {
		return nil, false
	}
	return c.wf.Node(c.selected)
}

// Mount starts listening for template signals on bus. Mounting again
// replaces the previous subscription.
func (c *Canvas) Mount(bus *bridge.Bus) {
	c.Unmount()
	c.unsubscribe = bus.Subscribe(func(e bridge.TemplateEvent) {
		// an invalid template leaves the graph as it was
		_ = c.ApplyTemplate(e.Template)
	})
}

// Unmount stops listening for template signals
func (c *Canvas) Unmount() {
	if c.unsubscribe != nil {
		c.unsubscribe()
		c.unsubscribe = nil
	}
}

// SetMode switches the interaction mode. It is refused while a gesture is active.
func (c *Canvas) SetMode(m Mode) bool {
	parsed, ok := ParseMode(string(m))
	if !ok || c.gesture != nil {
		return false
	}
	c.mode = parsed
	return true
}

// ToggleGrid flips grid visibility and returns the new state
func (c *Canvas) ToggleGrid() bool {
	c.showGrid = !c.showGrid
	return c.showGrid
}

// ZoomIn applies one toolbar zoom step
func (c *Canvas) ZoomIn() float64 {
	c.viewport = c.viewport.ScaleBy(c.cfg.ZoomStep, c.cfg)
	return c.viewport.Zoom
}

// ZoomOut reverses one toolbar zoom step
func (c *Canvas) ZoomOut() float64 {
	c.viewport = c.viewport.ScaleBy(1/c.cfg.ZoomStep, c.cfg)
	return c.viewport.Zoom
}

// Wheel zooms one tick around the pointer. Without the modifier key the
// wheel does not zoom and nothing changes.
func (c *Canvas) Wheel(deltaY float64, modifier bool, screen valueobjects.Position) bool {
	if !modifier || deltaY == 0 {
		return false
	}
	factor := c.cfg.WheelZoomStep
	if deltaY > 0 {
		factor = 1 / factor
	}
	c.viewport = c.viewport.ScaleAt(factor, screen, c.cfg)
	return true
}

// ResetView restores 100% zoom and no pan
func (c *Canvas) ResetView() {
	c.viewport = DefaultViewport()
}

// Drop places a palette item at a screen point. Unknown or missing types
// are ignored and nil is returned.
func (c *Canvas) Drop(p palette.DragPayload, screen valueobjects.Position) *entities.Node {
	kind := p.Kind()
	if kind.IsZero() {
		return nil
	}

	title := strings.TrimSpace(p.Title)
	if c.catalog != nil {
		resolved, ok := c.catalog.ResolveTitle(p)
		if !ok {
			return nil
		}
		title = resolved
	} else if title == "" {
		title = kind.String()
	}

	pos := c.viewport.ToLogical(screen).Snap(c.cfg.GridSize)
	node, err := c.wf.AddNode(kind, pos, entities.NodeData{Title: title})
	if err != nil {
		return nil
	}
	c.flush()
	return node
}

// Select makes id the active node. Unknown ids are ignored.
func (c *Canvas) Select(id valueobjects.NodeID) bool {
	node, ok := c.wf.Node(id)
	if !ok {
		return false
	}
	if c.selected.Equals(id) {
		return true
	}
	c.selected = id
	if c.callbacks.OnSelectNode != nil {
		snap := node.Snapshot()
		c.callbacks.OnSelectNode(&snap)
	}
	return true
}

// ClearSelection drops the active node
func (c *Canvas) ClearSelection() {
	if c.selected.IsZero() {
		return
	}
	c.selected = valueobjects.NodeID{}
	if c.callbacks.OnSelectNode != nil {
		c.callbacks.OnSelectNode(nil)
	}
}

// MoveNode sets a node's position directly
func (c *Canvas) MoveNode(id valueobjects.NodeID, pos valueobjects.Position) bool {
	ok := c.wf.MoveNode(id, pos)
	c.flush()
	return ok
}

// UpdateNodeData merges a patch into one node's data
func (c *Canvas) UpdateNodeData(id valueobjects.NodeID, patch entities.DataPatch) bool {
	if !c.wf.UpdateNodeData(id, patch) {
		return false
	}
	if c.callbacks.OnUpdateNode != nil {
		node, _ := c.wf.Node(id)
		c.callbacks.OnUpdateNode(id, node.Data())
	}
	c.flush()
	return true
}

// DeleteNode removes a node with its connections. Deleting twice is harmless.
func (c *Canvas) DeleteNode(id valueobjects.NodeID) bool {
	if !c.wf.DeleteNode(id) {
		return false
	}
	switch g := c.gesture.(type) {
	case *dragGesture:
		if g.nodeID.Equals(id) {
			c.gesture = nil
		}
	case *connectGesture:
		if g.source.Equals(id) {
			c.gesture = nil
		}
	}
	if c.selected.Equals(id) {
		c.ClearSelection()
	}
	if c.callbacks.OnDeleteNode != nil {
		c.callbacks.OnDeleteNode(id)
	}
	c.flush()
	return true
}

// Connect links two nodes. Self-loops, duplicates and missing endpoints return nil.
func (c *Canvas) Connect(source, target valueobjects.NodeID) *entities.Connection {
	conn := c.wf.AddConnection(source, target, c.cfg.OutputHandle, c.cfg.InputHandle)
	c.flush()
	return conn
}

// DeleteConnection removes a connection
func (c *Canvas) DeleteConnection(id valueobjects.ConnectionID) bool {
	ok := c.wf.DeleteConnection(id)
	c.flush()
	return ok
}

// ApplyTemplate replaces the whole graph. On error nothing changes.
func (c *Canvas) ApplyTemplate(t aggregates.Template) error {
	if err := c.wf.ReplaceGraph(t); err != nil {
		return err
	}
	c.gesture = nil
	c.ClearSelection()
	c.flush()
	return nil
}

// Rename changes the workflow name
func (c *Canvas) Rename(name string) error {
	if err := c.wf.Rename(name); err != nil {
		return err
	}
	c.flush()
	return nil
}

// PointerDown starts a gesture according to the current mode. It is ignored
// while another gesture is active.
func (c *Canvas) PointerDown(screen valueobjects.Position) bool {
	if c.gesture != nil {
		return false
	}
	logical := c.viewport.ToLogical(screen)

	switch c.mode {
	case ModePan:
		c.gesture = &panGesture{startScreen: screen, startPan: c.viewport.Pan}
		return true

	case ModeConnect:
		nodes := c.wf.Nodes()
		for i := len(nodes) - 1; i >= 0; i-- {
			if c.layout.OnOutput(nodes[i].Position(), logical) {
				c.gesture = &connectGesture{source: nodes[i].ID(), pointer: logical}
				return true
			}
		}
		return false

	default:
		return c.selectDown(logical)
	}
}

// PointerMove advances the active gesture
func (c *Canvas) PointerMove(screen valueobjects.Position) bool {
	if c.gesture == nil {
		return false
	}
	c.gesture.move(c, screen)
	return true
}

// PointerUp finishes the active gesture
func (c *Canvas) PointerUp(screen valueobjects.Position) bool {
	g := c.gesture
	if g == nil {
		return false
	}
	g.up(c, screen)
	c.gesture = nil
	c.flush()
	return true
}

// selectDown hit-tests topmost first: delete affordance, node body, then
// connection strokes. A miss clears the selection.
func (c *Canvas) selectDown(logical valueobjects.Position) bool {
	nodes := c.wf.Nodes()
	for i := len(nodes) - 1; i >= 0; i-- {
		n := nodes[i]
		if c.layout.DeleteRect(n.Position()).Contains(logical) {
			return c.DeleteNode(n.ID())
		}
		if c.layout.Bounds(n.Position()).Contains(logical) {
			c.Select(n.ID())
			c.gesture = &dragGesture{nodeID: n.ID(), offset: logical.Sub(n.Position())}
			return true
		}
	}

	conns := c.wf.Connections()
	for i := len(conns) - 1; i >= 0; i-- {
		if path, ok := c.pathOf(conns[i]); ok && c.layout.HitStroke(path, logical) {
			return c.DeleteConnection(conns[i].ID)
		}
	}

	c.ClearSelection()
	return false
}

// inputAt finds a node other than exclude whose input handle is under p
func (c *Canvas) inputAt(p valueobjects.Position, exclude valueobjects.NodeID) (valueobjects.NodeID, bool) {
	nodes := c.wf.Nodes()
	for i := len(nodes) - 1; i >= 0; i-- {
		n := nodes[i]
		if n.ID().Equals(exclude) {
			continue
		}
		if c.layout.OnInput(n.Position(), p) {
			return n.ID(), true
		}
	}
	return valueobjects.NodeID{}, false
}

func (c *Canvas) pathOf(conn entities.Connection) (Bezier, bool) {
	src, ok := c.wf.Node(conn.Source)
	if !ok {
		return Bezier{}, false
	}
	dst, ok := c.wf.Node(conn.Target)
	if !ok {
		return Bezier{}, false
	}
	return c.layout.ConnectionPath(src.Position(), dst.Position()), true
}

// flush forwards pending workflow events to the notifier. During a drag the
// moves stay pending so the whole drag is reported once at pointer-up.
func (c *Canvas) flush() {
	if _, dragging := c.gesture.(*dragGesture); dragging {
		return
	}
	for _, e := range c.wf.PullEvents() {
		if c.notifier != nil {
			c.notifier.Notify(e)
		}
	}
}
