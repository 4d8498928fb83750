package ports

import (
	"context"
	"time"

	"workflowbuilder/domain/events"
)

// NotificationKind tells clients how to present a notification
type NotificationKind string

const (
	// KindToast is an advisory notice for a graph mutation or test run
	KindToast NotificationKind = "toast"
	// KindSelect reports a selection change; Payload is the node or nil
	KindSelect NotificationKind = "select"
	// KindUpdate reports saved node data; Payload is {"id", "data"}
	KindUpdate NotificationKind = "update"
	// KindDelete reports a deleted node; Payload is its id
	KindDelete NotificationKind = "delete"
	// KindClosed tells clients the session is gone
	KindClosed NotificationKind = "closed"
)

// Notification is one message pushed out of an editor session
type Notification struct {
	SessionID   string             `json:"sessionId"`
	Kind        NotificationKind   `json:"kind"`
	Type        string             `json:"type,omitempty"`
	Title       string             `json:"title,omitempty"`
	Description string             `json:"description,omitempty"`
	Payload     interface{}        `json:"payload,omitempty"`
	Timestamp   time.Time          `json:"timestamp"`
	Event       events.DomainEvent `json:"-"`
}

// ToastFrom wraps a domain event
func ToastFrom(sessionID string, e events.DomainEvent) Notification {
	return Notification{
		SessionID:   sessionID,
		Kind:        KindToast,
		Type:        e.GetEventType(),
		Title:       e.GetTitle(),
		Description: e.GetDescription(),
		Payload:     e,
		Timestamp:   e.GetTimestamp(),
		Event:       e,
	}
}

// NotificationSink receives session notifications. Deliver is called while
// the session is locked and must not block.
type NotificationSink interface {
	Deliver(ctx context.Context, n Notification) error
}

// NotificationSinkFunc adapts a function to NotificationSink
type NotificationSinkFunc func(ctx context.Context, n Notification) error

// Deliver calls f(ctx, n)
func (f NotificationSinkFunc) Deliver(ctx context.Context, n Notification) error { return f(ctx, n) }

// Metrics records service telemetry
type Metrics interface {
	ObserveCommand(name string, d time.Duration, err error)
	ObserveQuery(name string, d time.Duration, err error)
	SetActiveSessions(n int)
	IncNotification(kind NotificationKind)
}

// NopMetrics discards everything
type NopMetrics struct{}

func (NopMetrics) ObserveCommand(string, time.Duration, error) {}
func (NopMetrics) ObserveQuery(string, time.Duration, error)   {}
func (NopMetrics) SetActiveSessions(int)                       {}
func (NopMetrics) IncNotification(NotificationKind)            {}
