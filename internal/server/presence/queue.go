package presence

import "sync"

// Queue is a bounded Outbox drained by a single writer. Events arriving
// while the buffer is full are dropped.
type Queue struct {
	mu     sync.Mutex
	ch     chan Event
	closed bool
}

func NewQueue(size int) *Queue {
	if size < 1 {
		size = 1
	}
	return &Queue{ch: make(chan Event, size)}
}

func (q *Queue) Deliver(e Event) bool {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.closed {
		return false
	}
	select {
	case q.ch <- e:
		return true
	default:
		return false
	}
}

// Events is closed by Close once the writer should stop.
func (q *Queue) Events() <-chan Event {
	return q.ch
}

func (q *Queue) Close() {
	q.mu.Lock()
	defer q.mu.Unlock()

	if !q.closed {
		q.closed = true
		close(q.ch)
	}
}
