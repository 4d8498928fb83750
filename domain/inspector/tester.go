package inspector

import (
	"sync"
	"time"

	"workflowbuilder/domain/core/entities"
	"workflowbuilder/domain/events"
)

// Notifier receives the test-run notices
type Notifier interface {
	Notify(event events.DomainEvent)
}

// Tester simulates running a single node. Nothing is executed: a start
// notice goes out at once and a completion notice after the delay.
// Completion is delivered from a timer goroutine, so the notifier must be
// safe for concurrent use.
type Tester struct {
	delay    time.Duration
	notifier Notifier
	now      func() time.Time

	mu     sync.Mutex
	timers map[string]*time.Timer
}

// NewTester creates a tester with the given completion delay
func NewTester(delay time.Duration, notifier Notifier) *Tester {
	return &Tester{
		delay:    delay,
		notifier: notifier,
		now:      time.Now,
		timers:   make(map[string]*time.Timer),
	}
}

// Run starts a simulated run. It returns false if the node is already running.
func (t *Tester) Run(workflowID string, node entities.NodeSnapshot) bool {
	key := node.ID.String()

	t.mu.Lock()
	if _, running := t.timers[key]; running {
		t.mu.Unlock()
		return false
	}
	t.timers[key] = time.AfterFunc(t.delay, func() {
		t.mu.Lock()
		_, still := t.timers[key]
		delete(t.timers, key)
		t.mu.Unlock()
		if still {
			t.notify(events.NewNodeTestCompleted(workflowID, node.ID, node.Data.Title, t.now()))
		}
	})
	t.mu.Unlock()

	t.notify(events.NewNodeTestStarted(workflowID, node.ID, node.Data.Title, t.now()))
	return true
}

// Running reports whether a run for nodeID is in flight
func (t *Tester) Running(nodeID string) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	_, ok := t.timers[nodeID]
	return ok
}

// Stop cancels every pending completion
func (t *Tester) Stop() {
	t.mu.Lock()
	defer t.mu.Unlock()
	for key, timer := range t.timers {
		timer.Stop()
		delete(t.timers, key)
	}
}

func (t *Tester) notify(e events.DomainEvent) {
	if t.notifier != nil {
		t.notifier.Notify(e)
	}
}
