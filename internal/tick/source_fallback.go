//go:build !amd64 && !arm64

package tick

import "time"

// sourceName identifies the selected backend in bench reports.
const sourceName = "monotonic"

// monotonicBase anchors the fallback counter. time.Since uses the runtime
// monotonic clock, so the counter never observes wall-clock adjustments.
var monotonicBase = time.Now()

func readTicks() uint64 {
	return uint64(time.Since(monotonicBase).Nanoseconds())
}
