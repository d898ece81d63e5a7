package observe

import (
	"context"
	"sync"
	"time"

	prom "github.com/prometheus/client_golang/prometheus"

	"github.com/roach88/hotpath/internal/sched"
)

// SnapshotProvider yields point-in-time executor counters.
// *sched.Metrics satisfies it.
type SnapshotProvider interface {
	Snapshot() sched.MetricsSnapshot
}

// SnapshotPoller periodically exports executor counter snapshots into
// Prometheus gauges. One poller can watch several executors, keyed by
// name.
type SnapshotPoller struct {
	interval time.Duration

	providersMu sync.RWMutex
	providers   map[string]SnapshotProvider

	tasksSpawned     *prom.GaugeVec
	tasksCompleted   *prom.GaugeVec
	tasksFailed      *prom.GaugeVec
	tasksStolen      *prom.GaugeVec
	budgetViolations *prom.GaugeVec
	resultsDropped   *prom.GaugeVec
	idleWorkers      *prom.GaugeVec

	stateMu sync.Mutex
	running bool
	cancel  context.CancelFunc
	done    chan struct{}
}

// NewSnapshotPoller creates a poller and registers its collectors.
func NewSnapshotPoller(namespace string, reg prom.Registerer, interval time.Duration) (*SnapshotPoller, error) {
	if namespace == "" {
		namespace = "hotpath"
	}
	if reg == nil {
		reg = prom.DefaultRegisterer
	}
	if interval <= 0 {
		interval = time.Second
	}

	labels := []string{"executor"}
	gauge := func(name, help string) *prom.GaugeVec {
		return prom.NewGaugeVec(prom.GaugeOpts{
			Namespace: namespace,
			Name:      name,
			Help:      help,
		}, labels)
	}

	p := &SnapshotPoller{
		interval:         interval,
		providers:        make(map[string]SnapshotProvider),
		tasksSpawned:     gauge("tasks_spawned", "Tasks spawned since startup."),
		tasksCompleted:   gauge("tasks_completed", "Tasks completed since startup."),
		tasksFailed:      gauge("tasks_failed", "Tasks failed since startup."),
		tasksStolen:      gauge("tasks_stolen", "Tasks claimed via work stealing."),
		budgetViolations: gauge("budget_violations", "Tasks that exceeded their pattern tick budget."),
		resultsDropped:   gauge("results_dropped", "Results dropped on a full results channel."),
		idleWorkers:      gauge("idle_workers", "Workers currently parked."),
	}

	var err error
	for _, vec := range []**prom.GaugeVec{
		&p.tasksSpawned, &p.tasksCompleted, &p.tasksFailed, &p.tasksStolen,
		&p.budgetViolations, &p.resultsDropped, &p.idleWorkers,
	} {
		if *vec, err = registerCollector(reg, *vec); err != nil {
			return nil, err
		}
	}
	return p, nil
}

// AddExecutor adds or replaces a snapshot provider by name.
func (p *SnapshotPoller) AddExecutor(name string, provider SnapshotProvider) {
	if p == nil || provider == nil {
		return
	}
	if name == "" {
		name = "default"
	}
	p.providersMu.Lock()
	p.providers[name] = provider
	p.providersMu.Unlock()
}

// Start begins periodic polling; repeated calls are no-ops.
func (p *SnapshotPoller) Start(ctx context.Context) {
	if p == nil {
		return
	}

	p.stateMu.Lock()
	if p.running {
		p.stateMu.Unlock()
		return
	}
	pollCtx, cancel := context.WithCancel(ctx)
	p.cancel = cancel
	p.done = make(chan struct{})
	p.running = true
	p.stateMu.Unlock()

	go p.loop(pollCtx)
}

// Stop stops periodic polling; repeated calls are safe.
func (p *SnapshotPoller) Stop() {
	if p == nil {
		return
	}

	p.stateMu.Lock()
	if !p.running {
		p.stateMu.Unlock()
		return
	}
	cancel := p.cancel
	done := p.done
	p.stateMu.Unlock()

	if cancel != nil {
		cancel()
	}
	if done != nil {
		<-done
	}

	p.stateMu.Lock()
	p.running = false
	p.cancel = nil
	p.done = nil
	p.stateMu.Unlock()
}

func (p *SnapshotPoller) loop(ctx context.Context) {
	defer close(p.done)

	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	p.collectOnce()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			p.collectOnce()
		}
	}
}

func (p *SnapshotPoller) collectOnce() {
	p.providersMu.RLock()
	defer p.providersMu.RUnlock()

	for name, provider := range p.providers {
		s := provider.Snapshot()
		p.tasksSpawned.WithLabelValues(name).Set(float64(s.TasksSpawned))
		p.tasksCompleted.WithLabelValues(name).Set(float64(s.TasksCompleted))
		p.tasksFailed.WithLabelValues(name).Set(float64(s.TasksFailed))
		p.tasksStolen.WithLabelValues(name).Set(float64(s.TasksStolen))
		p.budgetViolations.WithLabelValues(name).Set(float64(s.BudgetViolations))
		p.resultsDropped.WithLabelValues(name).Set(float64(s.ResultsDropped))
		p.idleWorkers.WithLabelValues(name).Set(float64(s.IdleWorkers))
	}
}
