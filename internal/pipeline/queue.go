package pipeline

import (
	"sync/atomic"
)

// ParamUpdate is one parameter change travelling to the audio thread.
type ParamUpdate struct {
	ID    int
	Value float64
}

// ParamQueue is a bounded single-producer, single-consumer queue.
// One goroutine may call Push while another calls Pop or Drain; neither
// side blocks or allocates.
//
// Capacity is a power of 2 so positions wrap with a mask instead of a
// modulo.
type ParamQueue struct {
	data []ParamUpdate
	mask uint32

	// readPos is written only by the consumer, writePos only by the
	// producer. Both increase monotonically and wrap at 2^32.
	readPos  atomic.Uint32
	writePos atomic.Uint32
}

// NewParamQueue creates a queue holding at least capacity updates.
// Capacity is rounded up to the nearest power of 2.
func NewParamQueue(capacity int) *ParamQueue {
	cap2 := minQueueCapacity
	for cap2 < capacity {
		cap2 <<= 1
	}

	return &ParamQueue{
		data: make([]ParamUpdate, cap2),
		mask: uint32(cap2 - 1),
	}
}

// Push enqueues u. It returns false without blocking when the queue is
// full.
func (q *ParamQueue) Push(u ParamUpdate) bool {
	w := q.writePos.Load()
	if w-q.readPos.Load() >= uint32(len(q.data)) {
		return false
	}
	q.data[w&q.mask] = u
	q.writePos.Store(w + 1)
	return true
}

// Pop dequeues the oldest update.
func (q *ParamQueue) Pop() (ParamUpdate, bool) {
	r := q.readPos.Load()
	if r == q.writePos.Load() {
		return ParamUpdate{}, false
	}
	u := q.data[r&q.mask]
	q.readPos.Store(r + 1)
	return u, true
}

// Drain pops every queued update in order and passes it to fn. Updates
// pushed while draining are left for the next call. It returns the number
// of updates handled.
func (q *ParamQueue) Drain(fn func(ParamUpdate)) int {
	r := q.readPos.Load()
	w := q.writePos.Load()
	n := int(w - r)
	for ; r != w; r++ {
		fn(q.data[r&q.mask])
	}
	q.readPos.Store(r)
	return n
}

// Len returns the number of queued updates.
func (q *ParamQueue) Len() int {
	return int(q.writePos.Load() - q.readPos.Load())
}

// Capacity returns the queue capacity.
func (q *ParamQueue) Capacity() int {
	return len(q.data)
}
