package metrics

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/cloudwatch"
	"github.com/aws/aws-sdk-go-v2/service/cloudwatch/types"
	"go.uber.org/zap"

	"workflowbuilder/application/ports"
)

// PutMetricData accepts at most 1000 datums per call
const maxDatums = 1000

// CloudWatchAPI is the subset of the CloudWatch client the flusher calls
type CloudWatchAPI interface {
	PutMetricData(ctx context.Context, params *cloudwatch.PutMetricDataInput, optFns ...func(*cloudwatch.Options)) (*cloudwatch.PutMetricDataOutput, error)
}

type opKey struct {
	metric string
	name   string
	status string
}

type opStats struct {
	count int
	total time.Duration
}

// CloudWatch aggregates observations in memory and ships them on Flush.
// Sending one PutMetricData per command would put an AWS round trip on
// every pointer move.
type CloudWatch struct {
	client    CloudWatchAPI
	namespace string
	logger    *zap.Logger
	now       func() time.Time

	mu            sync.Mutex
	ops           map[opKey]*opStats
	notifications map[ports.NotificationKind]int
	sessions      int
	sessionsSet   bool
}

var _ ports.Metrics = (*CloudWatch)(nil)

// NewCloudWatch creates a flusher
func NewCloudWatch(client CloudWatchAPI, namespace string, logger *zap.Logger) *CloudWatch {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CloudWatch{
		client:        client,
		namespace:     namespace,
		logger:        logger,
		now:           time.Now,
		ops:           make(map[opKey]*opStats),
		notifications: make(map[ports.NotificationKind]int),
	}
}

func (c *CloudWatch) observe(metric, name string, d time.Duration, err error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	key := opKey{metric: metric, name: name, status: status(err)}
	s, ok := c.ops[key]
	if !ok {
		s = &opStats{}
		c.ops[key] = s
	}
	s.count++
	s.total += d
}

func (c *CloudWatch) ObserveCommand(name string, d time.Duration, err error) {
	c.observe("Command", name, d, err)
}

func (c *CloudWatch) ObserveQuery(name string, d time.Duration, err error) {
	c.observe("Query", name, d, err)
}

func (c *CloudWatch) SetActiveSessions(n int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.sessions = n
	c.sessionsSet = true
}

func (c *CloudWatch) IncNotification(kind ports.NotificationKind) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.notifications[kind]++
}

// drain swaps out the accumulated state and turns it into datums
func (c *CloudWatch) drain() []types.MetricDatum {
	c.mu.Lock()
	ops := c.ops
	notes := c.notifications
	sessions, sessionsSet := c.sessions, c.sessionsSet
	c.ops = make(map[opKey]*opStats)
	c.notifications = make(map[ports.NotificationKind]int)
	c.sessionsSet = false
	c.mu.Unlock()

	ts := aws.Time(c.now())
	keys := make([]opKey, 0, len(ops))
	for k := range ops {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		if keys[i].metric != keys[j].metric {
			return keys[i].metric < keys[j].metric
		}
		if keys[i].name != keys[j].name {
			return keys[i].name < keys[j].name
		}
		return keys[i].status < keys[j].status
	})

	data := make([]types.MetricDatum, 0, 2*len(keys)+len(notes)+1)
	for _, k := range keys {
		s := ops[k]
		dims := []types.Dimension{
			{Name: aws.String(k.metric + "Name"), Value: aws.String(k.name)},
			{Name: aws.String("Status"), Value: aws.String(k.status)},
		}
		data = append(data,
			types.MetricDatum{
				MetricName: aws.String(k.metric + "Count"),
				Dimensions: dims,
				Value:      aws.Float64(float64(s.count)),
				Unit:       types.StandardUnitCount,
				Timestamp:  ts,
			},
			types.MetricDatum{
				MetricName: aws.String(k.metric + "Latency"),
				Dimensions: dims,
				Value:      aws.Float64(float64(s.total.Microseconds()) / 1000 / float64(s.count)),
				Unit:       types.StandardUnitMilliseconds,
				Timestamp:  ts,
			},
		)
	}
	for kind, n := range notes {
		data = append(data, types.MetricDatum{
			MetricName: aws.String("Notifications"),
			Dimensions: []types.Dimension{{Name: aws.String("Kind"), Value: aws.String(string(kind))}},
			Value:      aws.Float64(float64(n)),
			Unit:       types.StandardUnitCount,
			Timestamp:  ts,
		})
	}
	if sessionsSet {
		data = append(data, types.MetricDatum{
			MetricName: aws.String("ActiveSessions"),
			Value:      aws.Float64(float64(sessions)),
			Unit:       types.StandardUnitCount,
			Timestamp:  ts,
		})
	}
	return data
}

// Flush ships everything observed since the last flush
func (c *CloudWatch) Flush(ctx context.Context) error {
	data := c.drain()
	for i := 0; i < len(data); i += maxDatums {
		end := i + maxDatums
		if end > len(data) {
			end = len(data)
		}
		_, err := c.client.PutMetricData(ctx, &cloudwatch.PutMetricDataInput{
			Namespace:  aws.String(c.namespace),
			MetricData: data[i:end],
		})
		if err != nil {
			return err
		}
	}
	return nil
}

// Run flushes every period until ctx is done, then flushes once more
func (c *CloudWatch) Run(ctx context.Context, period time.Duration) error {
	ticker := time.NewTicker(period)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			if err := c.Flush(ctx); err != nil {
				c.logger.Warn("Failed to send metrics", zap.Error(err))
			}
		case <-ctx.Done():
			flushCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			if err := c.Flush(flushCtx); err != nil {
				c.logger.Warn("Failed to send final metrics", zap.Error(err))
			}
			cancel()
			return nil
		}
	}
}
