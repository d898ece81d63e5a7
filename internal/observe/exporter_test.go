package observe

import (
	"context"
	"testing"
	"time"

	prom "github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	dto "github.com/prometheus/client_model/go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/hotpath/internal/pattern"
	"github.com/roach88/hotpath/internal/sched"
)

func TestExporterObserveTask(t *testing.T) {
	reg := prom.NewRegistry()
	exporter, err := NewExporter("hotpath", reg, ExporterOptions{})
	require.NoError(t, err)

	exporter.ObserveTask(pattern.Sequence, 3, true)
	exporter.ObserveTask(pattern.Sequence, 5, true)
	exporter.ObserveTask(pattern.GeneralizedAndJoin, 40, false)

	met := testutil.ToFloat64(exporter.hotPathMetTotal.WithLabelValues("sequence"))
	assert.Equal(t, 2.0, met)

	miss := testutil.ToFloat64(exporter.hotPathMissTotal.WithLabelValues("generalized_and_join"))
	assert.Equal(t, 1.0, miss)

	count, err := histogramSampleCount(exporter.taskTicks.WithLabelValues("sequence"))
	require.NoError(t, err)
	assert.EqualValues(t, 2, count)
}

func TestExporterAlreadyRegisteredReuse(t *testing.T) {
	reg := prom.NewRegistry()
	first, err := NewExporter("hotpath", reg, ExporterOptions{})
	require.NoError(t, err)
	second, err := NewExporter("hotpath", reg, ExporterOptions{})
	require.NoError(t, err)

	first.ObserveTask(pattern.Sequence, 1, true)
	second.ObserveTask(pattern.Sequence, 1, true)

	got := testutil.ToFloat64(first.hotPathMetTotal.WithLabelValues("sequence"))
	assert.Equal(t, 2.0, got, "registering twice should share collectors")
}

func TestSnapshotPollerExportsCounters(t *testing.T) {
	reg := prom.NewRegistry()
	poller, err := NewSnapshotPoller("hotpath", reg, 5*time.Millisecond)
	require.NoError(t, err)

	provider := staticProvider{s: sched.MetricsSnapshot{
		TasksSpawned:   12,
		TasksCompleted: 10,
		TasksStolen:    4,
	}}
	poller.AddExecutor("primary", provider)

	poller.Start(context.Background())
	defer poller.Stop()

	// Start performs an immediate collection before the first tick.
	assert.Eventually(t, func() bool {
		return testutil.ToFloat64(poller.tasksSpawned.WithLabelValues("primary")) == 12
	}, time.Second, time.Millisecond)

	assert.Equal(t, 10.0, testutil.ToFloat64(poller.tasksCompleted.WithLabelValues("primary")))
	assert.Equal(t, 4.0, testutil.ToFloat64(poller.tasksStolen.WithLabelValues("primary")))
}

func TestSnapshotPollerStopIdempotent(t *testing.T) {
	reg := prom.NewRegistry()
	poller, err := NewSnapshotPoller("hotpath", reg, time.Millisecond)
	require.NoError(t, err)

	poller.Start(context.Background())
	poller.Start(context.Background())
	poller.Stop()
	poller.Stop()
}

type staticProvider struct {
	s sched.MetricsSnapshot
}

func (p staticProvider) Snapshot() sched.MetricsSnapshot { return p.s }

func histogramSampleCount(observer prom.Observer) (uint64, error) {
	collector, ok := observer.(prom.Collector)
	if !ok {
		return 0, nil
	}

	metricCh := make(chan prom.Metric, 1)
	collector.Collect(metricCh)
	close(metricCh)
	for metric := range metricCh {
		msg := &dto.Metric{}
		if err := metric.Write(msg); err != nil {
			return 0, err
		}
		if msg.Histogram != nil {
			return msg.Histogram.GetSampleCount(), nil
		}
	}
	return 0, nil
}
