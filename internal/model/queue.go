package model

// Queue is the pending FIFO between the sampler and the dispatcher.
// It must be safe for concurrent use.
type Queue interface {
	// Push appends a reading. It reports whether the oldest reading was evicted to make room.
	Push(reading Reading) (evicted bool)

	// PushFront puts a reading back at the head, used when a publish is to be retried.
	PushFront(reading Reading) (evicted bool)

	// Pop removes the head reading, if any.
	Pop() (Reading, bool)

	Len() int

	// Capacity returns the bound of the queue, 0 when unbounded.
	Capacity() int
}
