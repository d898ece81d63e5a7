package tick

// rdtsc reads the processor timestamp counter. Implemented in
// tick_amd64.s.
//
//go:noescape
func rdtsc() uint64

// sourceName identifies the selected backend in bench reports.
const sourceName = "rdtsc"

func readTicks() uint64 {
	return rdtsc()
}
