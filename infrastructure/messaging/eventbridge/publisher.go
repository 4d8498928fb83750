package eventbridge

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"workflowbuilder/application/ports"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/eventbridge"
	"github.com/aws/aws-sdk-go-v2/service/eventbridge/types"
	"github.com/sony/gobreaker"
	"go.uber.org/zap"
)

// EventBridge limits PutEvents to 10 entries per call
const batchSize = 10

// API is the subset of the EventBridge client the publisher calls
type API interface {
	PutEvents(ctx context.Context, params *eventbridge.PutEventsInput, optFns ...func(*eventbridge.Options)) (*eventbridge.PutEventsOutput, error)
}

// Options tunes the publisher
type Options struct {
	EventBusName  string
	Source        string
	QueueSize     int
	FlushInterval time.Duration
}

// Publisher forwards session domain events to EventBridge. Deliver only
// queues; a background worker batches and sends. Failures open a circuit
// breaker so a dead bus does not stall the editor.
type Publisher struct {
	client  API
	opts    Options
	logger  *zap.Logger
	breaker *gobreaker.CircuitBreaker
	queue   chan ports.Notification

	mu      sync.Mutex
	dropped int
}

// NewPublisher creates a publisher
func NewPublisher(client API, opts Options, logger *zap.Logger) *Publisher {
	if opts.QueueSize <= 0 {
		opts.QueueSize = 256
	}
	if opts.FlushInterval <= 0 {
		opts.FlushInterval = time.Second
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	p := &Publisher{
		client: client,
		opts:   opts,
		logger: logger,
		queue:  make(chan ports.Notification, opts.QueueSize),
	}
	p.breaker = gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        "eventbridge",
		MaxRequests: 1,
		Interval:    30 * time.Second,
		Timeout:     30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 3
		},
		OnStateChange: func(name string, from gobreaker.State, to gobreaker.State) {
			logger.Warn("Circuit breaker state changed",
				zap.String("breaker", name),
				zap.String("from", from.String()),
				zap.String("to", to.String()),
			)
		},
	})
	return p
}

// Deliver queues a notification. Notifications without a domain event
// (selection, update, close) stay local and are skipped.
func (p *Publisher) Deliver(_ context.Context, n ports.Notification) error {
	if n.Event == nil {
		return nil
	}
	select {
	case p.queue <- n:
		return nil
	default:
		p.mu.Lock()
		p.dropped++
		p.mu.Unlock()
		return fmt.Errorf("event queue full, dropped %s", n.Type)
	}
}

// Dropped reports how many notifications were refused because the queue was full
func (p *Publisher) Dropped() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.dropped
}

// Run sends queued events until ctx is done, then flushes what is left
func (p *Publisher) Run(ctx context.Context) error {
	ticker := time.NewTicker(p.opts.FlushInterval)
	defer ticker.Stop()

	pending := make([]ports.Notification, 0, batchSize)
	flush := func(ctx context.Context) {
		if len(pending) == 0 {
			return
		}
		if err := p.PublishBatch(ctx, pending); err != nil {
			p.logger.Error("Failed to publish events", zap.Int("count", len(pending)), zap.Error(err))
		}
		pending = pending[:0]
	}

	for {
		select {
		case n := <-p.queue:
			pending = append(pending, n)
			if len(pending) == batchSize {
				flush(ctx)
			}
		case <-ticker.C:
			flush(ctx)
		case <-ctx.Done():
			drainCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		drain:
			for {
				select {
				case n := <-p.queue:
					pending = append(pending, n)
					if len(pending) == batchSize {
						flush(drainCtx)
					}
				default:
					break drain
				}
			}
			flush(drainCtx)
			cancel()
			return nil
		}
	}
}

// PublishBatch sends notifications in chunks of at most ten entries
func (p *Publisher) PublishBatch(ctx context.Context, notes []ports.Notification) error {
	for i := 0; i < len(notes); i += batchSize {
		end := i + batchSize
		if end > len(notes) {
			end = len(notes)
		}
		batch := notes[i:end]
		_, err := p.breaker.Execute(func() (interface{}, error) {
			return nil, p.publishBatch(ctx, batch)
		})
		if err != nil {
			return err
		}
	}
	return nil
}

func (p *Publisher) publishBatch(ctx context.Context, notes []ports.Notification) error {
	entries := make([]types.PutEventsRequestEntry, 0, len(notes))
	sent := make([]ports.Notification, 0, len(notes))
	for _, n := range notes {
		detail, err := json.Marshal(map[string]interface{}{
			"sessionId":   n.SessionID,
			"title":       n.Title,
			"description": n.Description,
			"event":       n.Event,
		})
		if err != nil {
			p.logger.Error("Failed to marshal event", zap.String("eventType", n.Type), zap.Error(err))
			continue
		}
		entries = append(entries, types.PutEventsRequestEntry{
			EventBusName: aws.String(p.opts.EventBusName),
			Source:       aws.String(p.opts.Source),
			DetailType:   aws.String(n.Type),
			Detail:       aws.String(string(detail)),
			Time:         aws.Time(n.Timestamp),
			Resources:    []string{fmt.Sprintf("workflow/%s", n.Event.GetAggregateID())},
		})
		sent = append(sent, n)
	}
	if len(entries) == 0 {
		return nil
	}

	out, err := p.client.PutEvents(ctx, &eventbridge.PutEventsInput{Entries: entries})
	if err != nil {
		return fmt.Errorf("failed to publish events to EventBridge: %w", err)
	}
	if out.FailedEntryCount > 0 {
		for i, entry := range out.Entries {
			if entry.ErrorCode != nil && i < len(sent) {
				p.logger.Error("Failed to publish event",
					zap.String("eventType", sent[i].Type),
					zap.String("errorCode", aws.ToString(entry.ErrorCode)),
					zap.String("errorMessage", aws.ToString(entry.ErrorMessage)),
				)
			}
		}
		return fmt.Errorf("%d events failed to publish", out.FailedEntryCount)
	}

	p.logger.Debug("Events published to EventBridge",
		zap.Int("count", len(entries)),
		zap.String("eventBus", p.opts.EventBusName),
	)
	return nil
}
