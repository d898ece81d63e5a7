package tick

import (
	"sort"

	"github.com/roach88/hotpath/internal/kernel"
)

// BenchmarkResult aggregates per-iteration tick samples for one operation.
//
// Aggregate statistics exist because the hot-path budget is a property of
// the distribution, not of one lucky sample: an operation meets the budget
// when its tail percentiles do.
type BenchmarkResult struct {
	Operation  string
	Source     string // counter backend the samples came from
	Iterations int
	Min        uint64
	Max        uint64
	Avg        uint64
	P50        uint64
	P95        uint64
	P99        uint64
}

// MeetsBudget reports whether the p99 sample fits the budget.
func (r BenchmarkResult) MeetsBudget(budget uint64) bool {
	return r.P99 <= budget
}

// maxWarmupIterations caps warmup so short benchmark runs stay short.
const maxWarmupIterations = 100

// Benchmark measures f over iterations runs and aggregates the samples.
//
// A warmup of iterations/10 runs (capped at 100) precedes measurement so
// that cold caches and branch predictors do not pollute the distribution.
// Returns an INVALID_MEASUREMENT kernel error for a nil operation or a
// non-positive iteration count.
func Benchmark(name string, iterations int, f func()) (BenchmarkResult, error) {
	if f == nil {
		return BenchmarkResult{}, &kernel.KernelError{
			Code:    kernel.ErrCodeInvalidMeasurement,
			Message: "benchmark operation is nil",
		}
	}
	if iterations <= 0 {
		return BenchmarkResult{}, &kernel.KernelError{
			Code:    kernel.ErrCodeInvalidMeasurement,
			Message: "benchmark iterations must be positive",
		}
	}

	warmup := iterations / 10
	if warmup > maxWarmupIterations {
		warmup = maxWarmupIterations
	}
	for i := 0; i < warmup; i++ {
		f()
	}

	samples := make([]uint64, iterations)
	for i := 0; i < iterations; i++ {
		samples[i] = MeasureFunc(f)
	}

	return aggregate(name, samples), nil
}

func aggregate(name string, samples []uint64) BenchmarkResult {
	sorted := make([]uint64, len(samples))
	copy(sorted, samples)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i] < sorted[j] })

	var sum uint64
	for _, s := range sorted {
		sum += s
	}

	n := len(sorted)
	return BenchmarkResult{
		Operation:  name,
		Source:     sourceName,
		Iterations: n,
		Min:        sorted[0],
		Max:        sorted[n-1],
		Avg:        sum / uint64(n),
		P50:        percentile(sorted, 50),
		P95:        percentile(sorted, 95),
		P99:        percentile(sorted, 99),
	}
}

// percentile returns the nearest-rank percentile of sorted samples.
func percentile(sorted []uint64, q int) uint64 {
	if len(sorted) == 0 {
		return 0
	}
	idx := (q*len(sorted) + 99) / 100
	if idx < 1 {
		idx = 1
	}
	if idx > len(sorted) {
		idx = len(sorted)
	}
	return sorted[idx-1]
}
