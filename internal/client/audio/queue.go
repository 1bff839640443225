package audio

import (
	"context"
	"sync"

	"github.com/gammazero/deque"
)

type queued struct {
	frame Frame
	end   bool
}

// Queue is an unbounded FIFO of frames shared by one producer and one
// consumer. Terminate appends an end marker; frames pushed before it are
// still delivered, frames pushed after it are dropped.
type Queue struct {
	mu         sync.Mutex
	items      deque.Deque[queued]
	terminated bool
	drained    bool
	ready      chan struct{}
}

func NewQueue() *Queue {
	return &Queue{ready: make(chan struct{}, 1)}
}

// Push never blocks. It reports false when the queue was already terminated.
func (q *Queue) Push(f Frame) bool {
	q.mu.Lock()
	if q.terminated {
		q.mu.Unlock()
		return false
	}
	q.items.PushBack(queued{frame: f})
	q.mu.Unlock()
	q.signal()
	return true
}

// Terminate enqueues the end marker. Calling it more than once is a no-op.
func (q *Queue) Terminate() {
	q.mu.Lock()
	if q.terminated {
		q.mu.Unlock()
		return
	}
	q.terminated = true
	q.items.PushBack(queued{end: true})
	q.mu.Unlock()
	q.signal()
}

// Pop blocks until a frame is available. ok is false once the end marker has
// been reached; err is set only when ctx is done first.
func (q *Queue) Pop(ctx context.Context) (f Frame, ok bool, err error) {
	for {
		q.mu.Lock()
		if q.drained {
			q.mu.Unlock()
			return nil, false, nil
		}
		if q.items.Len() > 0 {
			it := q.items.PopFront()
			if it.end {
				q.drained = true
			}
			more := q.items.Len() > 0
			q.mu.Unlock()
			if more {
				q.signal()
			}
			if it.end {
				return nil, false, nil
			}
			return it.frame, true, nil
		}
		q.mu.Unlock()

		select {
		case <-q.ready:
		case <-ctx.Done():
			return nil, false, ctx.Err()
		}
	}
}

// Len counts queued frames, excluding the end marker.
func (q *Queue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	n := q.items.Len()
	if q.terminated && !q.drained {
		n--
	}
	return n
}

func (q *Queue) signal() {
	select {
	case q.ready <- struct{}{}:
	default:
	}
}
