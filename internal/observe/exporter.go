// Package observe adapts executor metrics to Prometheus collectors.
//
// Export happens outside the measured window: the per-task observer runs
// on the worker after tick measurement completes, and the snapshot poller
// reads counters on its own goroutine. Nothing in this package touches the
// dispatch hot path.
package observe

import (
	"errors"
	"fmt"

	prom "github.com/prometheus/client_golang/prometheus"

	"github.com/roach88/hotpath/internal/pattern"
	"github.com/roach88/hotpath/internal/sched"
)

// ExporterOptions controls collector configuration.
type ExporterOptions struct {
	// TickBuckets are the histogram buckets for per-task tick counts.
	// Defaults to powers of two around the hot-path budget.
	TickBuckets []float64
}

// defaultTickBuckets brackets the 8-tick hot-path budget: the interesting
// question is which side of the budget a task lands on, and by how much.
var defaultTickBuckets = []float64{1, 2, 4, 8, 16, 32, 64, 128, 256, 1024, 4096}

// Exporter implements sched.Observer over Prometheus collectors.
type Exporter struct {
	taskTicks        *prom.HistogramVec
	hotPathMetTotal  *prom.CounterVec
	hotPathMissTotal *prom.CounterVec
}

var _ sched.Observer = (*Exporter)(nil)

// NewExporter creates and registers the per-task collectors.
func NewExporter(namespace string, reg prom.Registerer, opts ExporterOptions) (*Exporter, error) {
	if namespace == "" {
		namespace = "hotpath"
	}
	if reg == nil {
		reg = prom.DefaultRegisterer
	}
	buckets := opts.TickBuckets
	if len(buckets) == 0 {
		buckets = defaultTickBuckets
	}

	ticksVec := prom.NewHistogramVec(prom.HistogramOpts{
		Namespace: namespace,
		Name:      "task_ticks",
		Help:      "Hardware ticks consumed per task invocation.",
		Buckets:   buckets,
	}, []string{"pattern"})
	metVec := prom.NewCounterVec(prom.CounterOpts{
		Namespace: namespace,
		Name:      "hot_path_met_total",
		Help:      "Tasks that completed within the hot-path tick budget.",
	}, []string{"pattern"})
	missVec := prom.NewCounterVec(prom.CounterOpts{
		Namespace: namespace,
		Name:      "hot_path_miss_total",
		Help:      "Tasks that exceeded the hot-path tick budget.",
	}, []string{"pattern"})

	var err error
	if ticksVec, err = registerCollector(reg, ticksVec); err != nil {
		return nil, err
	}
	if metVec, err = registerCollector(reg, metVec); err != nil {
		return nil, err
	}
	if missVec, err = registerCollector(reg, missVec); err != nil {
		return nil, err
	}

	return &Exporter{
		taskTicks:        ticksVec,
		hotPathMetTotal:  metVec,
		hotPathMissTotal: missVec,
	}, nil
}

// ObserveTask records one completed task invocation.
func (e *Exporter) ObserveTask(p pattern.ID, ticks uint64, metBudget bool) {
	if e == nil {
		return
	}
	label := p.String()
	e.taskTicks.WithLabelValues(label).Observe(float64(ticks))
	if metBudget {
		e.hotPathMetTotal.WithLabelValues(label).Inc()
	} else {
		e.hotPathMissTotal.WithLabelValues(label).Inc()
	}
}

func registerCollector[T prom.Collector](reg prom.Registerer, collector T) (T, error) {
	err := reg.Register(collector)
	if err == nil {
		return collector, nil
	}

	var alreadyRegisteredErr prom.AlreadyRegisteredError
	if errors.As(err, &alreadyRegisteredErr) {
		existing, ok := alreadyRegisteredErr.ExistingCollector.(T)
		if !ok {
			return collector, fmt.Errorf("collector type mismatch for %T", collector)
		}
		return existing, nil
	}

	return collector, err
}
