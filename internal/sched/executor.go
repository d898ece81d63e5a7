package sched

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math/rand"
	"runtime"
	"sync"
	"sync/atomic"
	"time"

	"github.com/roach88/hotpath/internal/clock"
	"github.com/roach88/hotpath/internal/guard"
	"github.com/roach88/hotpath/internal/kernel"
	"github.com/roach88/hotpath/internal/pattern"
	"github.com/roach88/hotpath/internal/tick"
)

var (
	// ErrShutdown is returned by Spawn after Shutdown has begun.
	ErrShutdown = errors.New("executor is shut down")
	// ErrStarted is returned by operations only valid before Start.
	ErrStarted = errors.New("executor already started")
	// ErrNilTask is returned when a nil task is spawned.
	ErrNilTask = errors.New("nil task")
)

// Defaults for executor tuning knobs. Fixed at startup; never mutated in
// the hot path.
const (
	DefaultMaxStealAttempts = 4
	DefaultParkTimeout      = time.Millisecond
	DefaultInjectorBatch    = 16
	DefaultResultBuffer     = 1024

	// MaxWorkers bounds worker count so core ids fit a uint8.
	MaxWorkers = 256
)

// Result is a completed task's record, stamped for deterministic ordering.
type Result = clock.Event[kernel.HookExecutionResult]

// Option configures an Executor at construction.
type Option func(*Executor)

// WithWorkers sets the worker count. Default: host parallelism.
func WithWorkers(n int) Option {
	return func(e *Executor) {
		if n > 0 {
			e.workerCount = n
		}
	}
}

// WithMaxStealAttempts bounds steal attempts per idle cycle before parking.
func WithMaxStealAttempts(n int) Option {
	return func(e *Executor) {
		if n > 0 {
			e.maxStealAttempts = n
		}
	}
}

// WithParkTimeout sets the bounded park duration of an idle worker.
func WithParkTimeout(d time.Duration) Option {
	return func(e *Executor) {
		if d > 0 {
			e.parkTimeout = d
		}
	}
}

// WithInjectorBatch sets how many injector tasks a worker takes at once.
// Batch size 1 makes a single-worker executor process the injector in
// strict FIFO order, which the deterministic harness relies on.
func WithInjectorBatch(n int) Option {
	return func(e *Executor) {
		if n > 0 {
			e.injectorBatch = n
		}
	}
}

// WithHotPathBudget overrides the hot-path tick budget, for testing.
func WithHotPathBudget(budget uint64) Option {
	return func(e *Executor) {
		if budget > 0 {
			e.hotPathBudget = budget
		}
	}
}

// WithResultBuffer sets the result channel capacity. When the consumer
// falls behind, results are dropped and counted, never blocked on.
func WithResultBuffer(n int) Option {
	return func(e *Executor) {
		if n > 0 {
			e.resultBuffer = n
		}
	}
}

// WithIDGenerator substitutes the task id generator.
func WithIDGenerator(g IDGenerator) Option {
	return func(e *Executor) {
		if g != nil {
			e.ids = g
		}
	}
}

// WithObserver attaches a per-task observer (e.g. Prometheus export).
func WithObserver(o Observer) Option {
	return func(e *Executor) {
		e.observer = o
	}
}

// WithTableHandle shares a dispatch-table handle with the executor.
// Reconfiguration swaps the handle's pointer; workers pick up the new
// table on their next task.
func WithTableHandle(h *pattern.Handle) Option {
	return func(e *Executor) {
		if h != nil {
			e.tables = h
		}
	}
}

// WithClock shares a logical clock, letting several executors (or a replay
// driver) stamp results from one causal domain.
func WithClock(c *clock.LogicalClock) Option {
	return func(e *Executor) {
		if c != nil {
			e.lclock = c
		}
	}
}

// Executor distributes tasks across workers with randomized work stealing.
//
// Lifecycle: New -> (optional SpawnAt seeding) -> Start -> Spawn/Wait ->
// Shutdown. Spawn is safe from any goroutine; Start and Shutdown are
// serialized internally and idempotent where documented.
type Executor struct {
	workerCount      int
	maxStealAttempts int
	parkTimeout      time.Duration
	injectorBatch    int
	hotPathBudget    uint64
	resultBuffer     int

	workers  []*worker
	injector *injector
	tables   *pattern.Handle
	lclock   *clock.LogicalClock
	ids      IDGenerator
	observer Observer
	metrics  Metrics

	results  chan Result
	stopCh   chan struct{}
	shutdown atomic.Bool

	mu       sync.Mutex
	started  bool
	stopped  bool
	wg       sync.WaitGroup
	inflight sync.WaitGroup
}

type worker struct {
	id    uint8
	deque *deque
	rng   *rand.Rand
}

// New creates an executor. Workers do not run until Start.
func New(opts ...Option) *Executor {
	e := &Executor{
		workerCount:      runtime.GOMAXPROCS(0),
		maxStealAttempts: DefaultMaxStealAttempts,
		parkTimeout:      DefaultParkTimeout,
		injectorBatch:    DefaultInjectorBatch,
		hotPathBudget:    pattern.HotPathTickBudget,
		resultBuffer:     DefaultResultBuffer,
		injector:         newInjector(),
		ids:              UUIDv7Generator{},
		stopCh:           make(chan struct{}),
	}
	for _, opt := range opts {
		opt(e)
	}

	if e.workerCount > MaxWorkers {
		e.workerCount = MaxWorkers
	}
	if e.tables == nil {
		e.tables = pattern.NewHandle(pattern.NewDispatchTable())
	}
	if e.lclock == nil {
		e.lclock = clock.New()
	}
	e.results = make(chan Result, e.resultBuffer)

	e.workers = make([]*worker, e.workerCount)
	for i := range e.workers {
		e.workers[i] = &worker{
			id:    uint8(i),
			deque: newDeque(),
			rng:   rand.New(rand.NewSource(time.Now().UnixNano() + int64(i)*7919)),
		}
	}
	return e
}

// Start launches the worker goroutines.
func (e *Executor) Start() error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.started {
		return ErrStarted
	}
	e.started = true

	for _, w := range e.workers {
		e.wg.Add(1)
		go e.runWorker(w)
	}
	slog.Info("executor started",
		"workers", e.workerCount,
		"tick_source", tick.SourceName(),
		"hot_path_budget", e.hotPathBudget)
	return nil
}

// Spawn submits a task through the global injector. It does not wake a
// specific parked worker; an idle worker picks the task up within one park
// timeout. An empty task id is filled from the id generator.
func (e *Executor) Spawn(t *Task) error {
	if t == nil {
		return ErrNilTask
	}
	if e.shutdown.Load() {
		return ErrShutdown
	}
	if t.ID == "" {
		t.ID = e.ids.Generate()
	}

	e.inflight.Add(1)
	if !e.injector.push(t) {
		e.inflight.Done()
		return ErrShutdown
	}
	e.metrics.tasksSpawned.Add(1)
	return nil
}

// SpawnAt seeds a task directly into one worker's local deque. Only valid
// before Start: the deque bottom is owner-only once workers run. Used by
// imbalance tests and replay drivers that reproduce a recorded placement.
func (e *Executor) SpawnAt(workerID int, t *Task) error {
	if t == nil {
		return ErrNilTask
	}
	if workerID < 0 || workerID >= len(e.workers) {
		return fmt.Errorf("worker %d out of range [0,%d)", workerID, len(e.workers))
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	if e.started {
		return ErrStarted
	}
	if t.ID == "" {
		t.ID = e.ids.Generate()
	}
	e.inflight.Add(1)
	e.workers[workerID].deque.pushBottom(t)
	e.metrics.tasksSpawned.Add(1)
	return nil
}

// Wait blocks until every spawned task has completed or ctx is done.
// Tasks spawned concurrently with Wait may or may not be covered.
func (e *Executor) Wait(ctx context.Context) error {
	done := make(chan struct{})
	go func() {
		e.inflight.Wait()
		close(done)
	}()
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Results returns the stream of completed-task events. The channel closes
// after Shutdown. Consumers needing the deterministic global order collect
// events and sort them by (timestamp, core id); arrival order on this
// channel is not it.
func (e *Executor) Results() <-chan Result {
	return e.results
}

// Metrics returns the executor's counters.
func (e *Executor) Metrics() *Metrics {
	return &e.metrics
}

// Clock returns the logical clock stamping this executor's results.
func (e *Executor) Clock() *clock.LogicalClock {
	return e.lclock
}

// Shutdown sets the cooperative stop flag, wakes parked workers, joins all
// worker goroutines, and closes the results channel. Tasks still queued
// when the flag is observed are not executed. Idempotent.
func (e *Executor) Shutdown() {
	e.mu.Lock()
	if !e.started || e.stopped {
		e.mu.Unlock()
		return
	}
	e.stopped = true
	e.mu.Unlock()

	e.shutdown.Store(true)
	close(e.stopCh)
	e.injector.close()
	e.wg.Wait()
	close(e.results)

	s := e.metrics.Snapshot()
	slog.Info("executor stopped",
		"spawned", s.TasksSpawned,
		"completed", s.TasksCompleted,
		"stolen", s.TasksStolen,
		"budget_violations", s.BudgetViolations)
}

// runWorker is the per-worker cooperative loop. The shutdown flag is
// polled once per iteration; an in-flight task is never preempted.
func (e *Executor) runWorker(w *worker) {
	defer e.wg.Done()

	for {
		if e.shutdown.Load() {
			return
		}

		if t, ok := w.deque.popBottom(); ok {
			e.execute(w, t)
			continue
		}

		if batch := e.injector.drainUpTo(e.injectorBatch); len(batch) > 0 {
			for _, t := range batch {
				w.deque.pushBottom(t)
			}
			continue
		}

		if t, ok := e.stealFromPeer(w); ok {
			e.execute(w, t)
			continue
		}

		e.park()
	}
}

// stealFromPeer picks victims uniformly at random among peers (never
// self), bounded by maxStealAttempts per idle cycle.
func (e *Executor) stealFromPeer(w *worker) (*Task, bool) {
	n := len(e.workers)
	if n < 2 {
		return nil, false
	}

	for attempt := 0; attempt < e.maxStealAttempts; attempt++ {
		idx := w.rng.Intn(n - 1)
		if idx >= int(w.id) {
			idx++
		}
		if t, ok := e.workers[idx].deque.steal(); ok {
			e.metrics.tasksStolen.Add(1)
			return t, true
		}
	}
	return nil, false
}

func (e *Executor) park() {
	e.metrics.idleWorkers.Add(1)
	timer := time.NewTimer(e.parkTimeout)
	select {
	case <-timer.C:
	case <-e.stopCh:
		timer.Stop()
	}
	e.metrics.idleWorkers.Add(-1)
}

// execute runs one task, publishes its stamped result, and releases the
// inflight count. Called with exclusive ownership of t.
func (e *Executor) execute(w *worker, t *Task) {
	res := e.invoke(t)

	if res.Outcome == kernel.OutcomeFailed {
		e.metrics.tasksFailed.Add(1)
	}
	e.metrics.tasksCompleted.Add(1)

	if e.observer != nil {
		e.observer.ObserveTask(t.Pattern, res.TicksUsed, res.MetHotPathConstraint)
	}

	ev := Result{
		Timestamp: e.lclock.Tick(),
		CoreID:    w.id,
		Payload:   res,
	}
	select {
	case e.results <- ev:
	default:
		e.metrics.resultsDropped.Add(1)
	}

	e.inflight.Done()
}

// invoke performs the guarded, measured pattern invocation. A panic in the
// handler is confined here: the worker survives and the task reports
// OutcomeFailed with a TASK_PANICKED error.
func (e *Executor) invoke(t *Task) (res kernel.HookExecutionResult) {
	res.TaskID = t.ID
	started := time.Now()
	counter := tick.Start()

	stamp := func() {
		res.TicksUsed = counter.Elapsed()
		res.ExecutionTime = time.Since(started)
		res.MetHotPathConstraint = res.TicksUsed <= e.hotPathBudget
	}

	defer func() {
		if r := recover(); r != nil {
			res.Value = nil
			res.Outcome = kernel.OutcomeFailed
			res.Err = kernel.NewTaskPanicError(t.ID, r)
			stamp()
			slog.Error("task panicked",
				"task", t.ID,
				"pattern", t.Pattern.String(),
				"panic", fmt.Sprint(r))
		}
	}()

	entry := e.tables.Load().Get(t.Pattern)
	if entry == nil || t.Pattern.Reserved() {
		res.Outcome = kernel.OutcomeUnknownPattern
		res.Err = kernel.NewUnknownPatternError(t.ID, uint8(t.Pattern))
		stamp()
		return res
	}

	if t.Guard != nil && !guard.Evaluate(t.Guard, t.Context) {
		res.Outcome = kernel.OutcomeGuardRejected
		stamp()
		return res
	}

	if t.Handler != nil {
		value, err := t.Handler(t.Context)
		if err != nil {
			res.Outcome = kernel.OutcomeFailed
			res.Err = err
		} else {
			res.Outcome = kernel.OutcomeCompleted
			res.Value = value
		}
	} else {
		res.Outcome = kernel.OutcomeCompleted
	}
	stamp()

	// Budget violations are soft: counted and logged, never escalated
	// here. A caller wanting fail-fast semantics checks the result's
	// ticks against the pattern budget itself.
	if err := tick.CheckBudget(counter, uint64(entry.TickBudget)); err != nil {
		e.metrics.budgetViolations.Add(1)
		slog.Debug("tick budget exceeded",
			"task", t.ID,
			"pattern", t.Pattern.String(),
			"budget", entry.TickBudget,
			"err", err)
	}
	return res
}
