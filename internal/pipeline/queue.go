package pipeline

import "sync"

// WorkItem is one uploaded video waiting for processing. Ownership moves
// from the enqueuing upload handler to the worker that dequeues it.
type WorkItem struct {
	VideoID  int64
	FilePath string
}

// Queue is an unbounded FIFO work queue. Enqueue never blocks, so an
// uploading client is never held back by pipeline throughput. Dequeue
// blocks while the queue is empty and returns false once the queue is
// closed and drained.
type Queue struct {
	mu     sync.Mutex
	cond   *sync.Cond
	items  []WorkItem
	closed bool
}

func NewQueue() *Queue {
	q := &Queue{}
	q.cond = sync.NewCond(&q.mu)
	return q
}

// Enqueue appends an item. Items enqueued after Close are dropped.
func (q *Queue) Enqueue(item WorkItem) {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.closed {
		return
	}
	q.items = append(q.items, item)
	q.cond.Signal()
}

// Dequeue removes the oldest item, blocking while the queue is empty.
// The second return value is false when the queue is closed and empty.
func (q *Queue) Dequeue() (WorkItem, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()

	for len(q.items) == 0 && !q.closed {
		q.cond.Wait()
	}
	if len(q.items) == 0 {
		return WorkItem{}, false
	}

	item := q.items[0]
	q.items = q.items[1:]
	return item, true
}

// Close stops accepting new items and releases blocked consumers once the
// remaining items are drained.
func (q *Queue) Close() {
	q.mu.Lock()
	defer q.mu.Unlock()

	q.closed = true
	q.cond.Broadcast()
}

// Len reports the current queue depth.
func (q *Queue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.items)
}
