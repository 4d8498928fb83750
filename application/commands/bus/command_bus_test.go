package bus

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"workflowbuilder/application/ports"
)

type pingCommand struct{ valid bool }

func (c pingCommand) Validate() error {
	if !c.valid {
		return errors.New("invalid ping")
	}
	return nil
}

type recordingMetrics struct {
	ports.NopMetrics
	names []string
	errs  []error
}

func (m *recordingMetrics) ObserveCommand(name string, _ time.Duration, err error) {
	m.names = append(m.names, name)
	m.errs = append(m.errs, err)
}

func TestCommandBus_Send(t *testing.T) {
	metrics := &recordingMetrics{}
	b := NewCommandBus(LoggingMiddleware(zap.NewNop()), MetricsMiddleware(metrics))

	calls := 0
	require.NoError(t, b.Register(pingCommand{}, CommandHandlerFunc(func(ctx context.Context, cmd Command) (interface{}, error) {
		calls++
		return "pong", nil
	})))

	out, err := b.Send(context.Background(), pingCommand{valid: true})
	require.NoError(t, err)
	assert.Equal(t, "pong", out)
	assert.Equal(t, 1, calls)
	assert.Equal(t, []string{"pingCommand"}, metrics.names)

	_, err = b.Send(context.Background(), pingCommand{})
	assert.EqualError(t, err, "invalid ping")
	assert.Equal(t, 1, calls, "invalid commands never reach the handler")
}

func TestCommandBus_RegisterTwice(t *testing.T) {
	b := NewCommandBus()
	h := CommandHandlerFunc(func(context.Context, Command) (interface{}, error) { return nil, nil })
	require.NoError(t, b.Register(pingCommand{}, h))
	assert.Error(t, b.Register(pingCommand{}, h))
}

func TestCommandBus_UnknownCommand(t *testing.T) {
	_, err := NewCommandBus().Send(context.Background(), pingCommand{valid: true})
	assert.ErrorIs(t, err, ErrHandlerNotFound)
}
