package queue

import (
	"sync"

	"NetPulse/internal/model"
)

// FIFO is a mutex-guarded pending queue of readings. With a capacity of 0 it grows without
// bound; otherwise pushing onto a full queue evicts the oldest reading.
type FIFO struct {
	mu       sync.Mutex
	items    []model.Reading
	capacity int
}

// New creates a FIFO. capacity <= 0 means unbounded.
func New(capacity int) *FIFO {
	if capacity < 0 {
		capacity = 0
	}
	return &FIFO{capacity: capacity}
}

// Push appends a reading at the tail.
func (q *FIFO) Push(reading model.Reading) bool {
	q.mu.Lock()
	defer q.mu.Unlock()

	evicted := false
	if q.capacity > 0 && len(q.items) >= q.capacity {
		q.items[0] = model.Reading{}
		q.items = q.items[1:]
		evicted = true
	}
	q.items = append(q.items, reading)
	return evicted
}

// PushFront puts a reading back at the head. On a full queue the tail is evicted so the
// requeued reading keeps its place.
func (q *FIFO) PushFront(reading model.Reading) bool {
	q.mu.Lock()
	defer q.mu.Unlock()

	evicted := false
	if q.capacity > 0 && len(q.items) >= q.capacity {
		q.items = q.items[:len(q.items)-1]
		evicted = true
	}
	q.items = append([]model.Reading{reading}, q.items...)
	return evicted
}

// Pop removes and returns the head reading.
func (q *FIFO) Pop() (model.Reading, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()

	if len(q.items) == 0 {
		return model.Reading{}, false
	}
	r := q.items[0]
	q.items[0] = model.Reading{}
	q.items = q.items[1:]
	if len(q.items) == 0 {
		q.items = nil
	}
	return r, true
}

// Len returns the number of pending readings.
func (q *FIFO) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.items)
}

// Capacity returns the configured bound, 0 when unbounded.
func (q *FIFO) Capacity() int {
	return q.capacity
}
