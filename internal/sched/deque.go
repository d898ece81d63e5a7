package sched

import "sync/atomic"

// deque is a Chase-Lev work-stealing deque of tasks.
//
// The owner worker calls pushBottom and popBottom; any other worker calls
// steal. Owner operations are contention-free except when one element
// remains, where owner and thieves race on a single CAS over top. The
// buffer grows geometrically; stale thieves reading a superseded buffer are
// harmless because growth preserves logical indices and the CAS on top
// admits exactly one claimant per index.
//
// Invariant: top <= bottom + 1. Elements live at logical indices
// [top, bottom).
type deque struct {
	top    atomic.Int64
	bottom atomic.Int64
	buf    atomic.Pointer[dequeBuffer]
}

type dequeBuffer struct {
	mask  int64 // len(items)-1; length is a power of two
	items []atomic.Pointer[Task]
}

const initialDequeCapacity = 64

func newDeque() *deque {
	d := &deque{}
	d.buf.Store(newDequeBuffer(initialDequeCapacity))
	return d
}

func newDequeBuffer(capacity int64) *dequeBuffer {
	return &dequeBuffer{
		mask:  capacity - 1,
		items: make([]atomic.Pointer[Task], capacity),
	}
}

func (b *dequeBuffer) load(i int64) *Task {
	return b.items[i&b.mask].Load()
}

func (b *dequeBuffer) store(i int64, t *Task) {
	b.items[i&b.mask].Store(t)
}

// grow returns a buffer of twice the capacity holding [top, bottom).
func (b *dequeBuffer) grow(top, bottom int64) *dequeBuffer {
	next := newDequeBuffer((b.mask + 1) * 2)
	for i := top; i < bottom; i++ {
		next.store(i, b.load(i))
	}
	return next
}

// pushBottom appends a task. Owner only.
func (d *deque) pushBottom(t *Task) {
	b := d.bottom.Load()
	top := d.top.Load()
	buf := d.buf.Load()

	if b-top >= buf.mask {
		buf = buf.grow(top, b)
		d.buf.Store(buf)
	}
	buf.store(b, t)
	d.bottom.Store(b + 1)
}

// popBottom removes the most recently pushed task (LIFO). Owner only.
func (d *deque) popBottom() (*Task, bool) {
	b := d.bottom.Load() - 1
	buf := d.buf.Load()
	d.bottom.Store(b)

	top := d.top.Load()
	if top > b {
		// Empty: restore the canonical empty state.
		d.bottom.Store(top)
		return nil, false
	}

	t := buf.load(b)
	if b > top {
		return t, true
	}

	// Last element: race the thieves for it.
	won := d.top.CompareAndSwap(top, top+1)
	d.bottom.Store(top + 1)
	if !won {
		return nil, false
	}
	return t, true
}

// steal removes the oldest task (FIFO end). Safe from any goroutine.
// A false return means empty or a lost race; callers retry or move on.
func (d *deque) steal() (*Task, bool) {
	top := d.top.Load()
	b := d.bottom.Load()
	if top >= b {
		return nil, false
	}

	buf := d.buf.Load()
	t := buf.load(top)
	if !d.top.CompareAndSwap(top, top+1) {
		return nil, false
	}
	return t, true
}

// size approximates the element count; exact only when quiescent.
func (d *deque) size() int64 {
	n := d.bottom.Load() - d.top.Load()
	if n < 0 {
		return 0
	}
	return n
}
