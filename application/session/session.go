// Package session holds one live editor: its canvas, template bridge and
// inspector, and the lock that makes the canvas its only writer.
package session

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"workflowbuilder/application/ports"
	"workflowbuilder/domain/bridge"
	"workflowbuilder/domain/canvas"
	"workflowbuilder/domain/config"
	"workflowbuilder/domain/core/aggregates"
	"workflowbuilder/domain/core/entities"
	"workflowbuilder/domain/core/valueobjects"
	"workflowbuilder/domain/events"
	"workflowbuilder/domain/inspector"
	"workflowbuilder/domain/palette"
	pkgerrors "workflowbuilder/pkg/errors"
)

// Deps are the shared collaborators every session is built from
type Deps struct {
	Config  *config.DomainConfig
	Catalog *palette.Catalog
	Table   *inspector.Table
	Sinks   []ports.NotificationSink
	Metrics ports.Metrics
	Logger  *zap.Logger
}

// Session is one open editor
type Session struct {
	id        string
	createdAt time.Time
	lastSeen  atomic.Int64

	mu     sync.Mutex
	closed bool

	canvas  *canvas.Canvas
	bus     *bridge.Bus
	panel   *inspector.Panel
	tester  *inspector.Tester
	catalog *palette.Catalog
	out     *fanout
}

// New opens a session with an empty workflow called name
func New(name string, d Deps) *Session {
	if d.Config == nil {
		d.Config = config.DefaultDomainConfig()
	}
	if d.Catalog == nil {
		d.Catalog = palette.Default()
	}
	if d.Table == nil {
		d.Table = inspector.DefaultTable()
	}
	if d.Metrics == nil {
		d.Metrics = ports.NopMetrics{}
	}
	if d.Logger == nil {
		d.Logger = zap.NewNop()
	}

	now := time.Now()
	s := &Session{
		id:        uuid.New().String(),
		createdAt: now,
		bus:       bridge.NewBus(),
		catalog:   d.Catalog,
	}
	s.lastSeen.Store(now.UnixNano())
	s.out = &fanout{
		sessionID: s.id,
		sinks:     d.Sinks,
		metrics:   d.Metrics,
		logger:    d.Logger.With(zap.String("session_id", s.id)),
	}

	s.canvas = canvas.New(aggregates.NewWorkflow(name, d.Config), d.Config,
		canvas.WithCatalog(d.Catalog),
		canvas.WithNotifier(s.out),
		canvas.WithCallbacks(s.callbacks()),
	)
	s.canvas.Mount(s.bus)
	s.tester = inspector.NewTester(d.Config.TestRunDelay, s.out)
	s.panel = inspector.NewPanel(d.Table, s.canvas, s.tester, d.Config.SecretMask)
	return s
}

func (s *Session) callbacks() canvas.Callbacks {
	return canvas.Callbacks{
		OnSelectNode: func(node *entities.NodeSnapshot) {
			var payload interface{}
			if node != nil {
				payload = node
			}
			s.out.send(ports.Notification{Kind: ports.KindSelect, Payload: payload})
		},
		OnUpdateNode: func(id valueobjects.NodeID, data entities.NodeData) {
			s.out.send(ports.Notification{
				Kind:    ports.KindUpdate,
				Payload: map[string]interface{}{"id": id, "data": data},
			})
		},
		OnDeleteNode: func(id valueobjects.NodeID) {
			s.out.send(ports.Notification{Kind: ports.KindDelete, Payload: id})
		},
	}
}

// ID returns the session identifier
func (s *Session) ID() string { return s.id }

// CreatedAt returns when the session was opened
func (s *Session) CreatedAt() time.Time { return s.createdAt }

// LastSeen returns the time of the last intent
func (s *Session) LastSeen() time.Time { return time.Unix(0, s.lastSeen.Load()) }

// Expired reports whether the session has been idle longer than ttl
func (s *Session) Expired(now time.Time, ttl time.Duration) bool {
	return now.Sub(s.LastSeen()) > ttl
}

// Editor is what an intent may touch while it holds the session lock
type Editor struct {
	Canvas  *canvas.Canvas
	Bus     *bridge.Bus
	Panel   *inspector.Panel
	Catalog *palette.Catalog
}

// Do runs fn with exclusive access to the editor
func (s *Session) Do(fn func(e Editor) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return pkgerrors.NewNotFoundError("session").WithDetail("sessionId", s.id)
	}
	s.lastSeen.Store(time.Now().UnixNano())
	return fn(Editor{Canvas: s.canvas, Bus: s.bus, Panel: s.panel, Catalog: s.catalog})
}

// Close tears the session down. Closing twice is harmless.
func (s *Session) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	s.closed = true
	s.canvas.Unmount()
	s.tester.Stop()
	s.out.send(ports.Notification{Kind: ports.KindClosed})
}

// Summary is the listing form of a session
type Summary struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Nodes       int       `json:"nodes"`
	Connections int       `json:"connections"`
	CreatedAt   time.Time `json:"createdAt"`
	LastSeen    time.Time `json:"lastSeen"`
}

// Summarize reads the listing form under the lock
func (s *Session) Summarize() (Summary, error) {
	var out Summary
	err := s.Do(func(e Editor) error {
		wf := e.Canvas.Workflow()
		out = Summary{
			ID:          s.id,
			Name:        wf.Name(),
			Nodes:       wf.NodeCount(),
			Connections: wf.ConnectionCount(),
			CreatedAt:   s.createdAt,
			LastSeen:    s.LastSeen(),
		}
		return nil
	})
	return out, err
}

// fanout delivers session notifications to every sink. It is used both
// under the session lock and from test-run timers.
type fanout struct {
	sessionID string
	sinks     []ports.NotificationSink
	metrics   ports.Metrics
	logger    *zap.Logger
}

func (f *fanout) Notify(e events.DomainEvent) {
	f.send(ports.ToastFrom(f.sessionID, e))
}

func (f *fanout) send(n ports.Notification) {
	n.SessionID = f.sessionID
	if n.Timestamp.IsZero() {
		n.Timestamp = time.Now()
	}
	f.metrics.IncNotification(n.Kind)
	for _, sink := range f.sinks {
		if err := sink.Deliver(context.Background(), n); err != nil {
			f.logger.Warn("Notification not delivered",
				zap.String("kind", string(n.Kind)),
				zap.String("type", n.Type),
				zap.Error(err),
			)
		}
	}
}

// Repository stores open sessions
type Repository interface {
	Save(ctx context.Context, s *Session) error
	Get(ctx context.Context, id string) (*Session, error)
	Delete(ctx context.Context, id string) error
	List(ctx context.Context) ([]*Session, error)
	Count(ctx context.Context) (int, error)
}
