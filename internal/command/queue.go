package command

import (
	"container/heap"
	"context"
	"sync"
	"time"

	"github.com/odilia-app/odilia-core/internal/metrics"
)

// Queue is the bounded, strictly-FIFO command channel (spec.md §5: depth
// 128). A full queue blocks the producer deliberately — command
// producers (event handlers) must never be allowed to get ahead of the
// dispatcher, since dispatch order is load-bearing for cache consistency
// (spec.md §4.3).
type Queue struct {
	ch    chan Command
	depth *depthTracker
}

// NewQueue builds a Queue with the given channel capacity.
func NewQueue(capacity int) *Queue {
	return &Queue{
		ch:    make(chan Command, capacity),
		depth: newDepthTracker(),
	}
}

// Enqueue appends cmd, blocking if the queue is full (spec.md §5
// backpressure). It returns early if ctx is canceled.
func (q *Queue) Enqueue(ctx context.Context, cmd Command) error {
	select {
	case q.ch <- cmd:
		q.depth.push(time.Now())
		metrics.Global().RecordQueueDepth(len(q.ch))
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// EnqueueAll enqueues cmds in order; a handler dispatch producing several
// commands must not let them interleave with another dispatch's commands
// (spec.md §5 "commands produced by an event are enqueued after all
// commands produced by prior events").
func (q *Queue) EnqueueAll(ctx context.Context, cmds []Command) error {
	for _, cmd := range cmds {
		if err := q.Enqueue(ctx, cmd); err != nil {
			return err
		}
	}
	return nil
}

// Dequeue blocks until a command is available or ctx is canceled.
func (q *Queue) Dequeue(ctx context.Context) (Command, bool) {
	select {
	case cmd, ok := <-q.ch:
		if ok {
			q.depth.pop()
			metrics.Global().RecordQueueDepth(len(q.ch))
		}
		return cmd, ok
	case <-ctx.Done():
		return Command{}, false
	}
}

// Close stops accepting new commands; Dequeue drains what remains and
// then reports ok=false.
func (q *Queue) Close() {
	close(q.ch)
}

// OldestPendingAge reports how long the longest-waiting enqueued command
// has been sitting in the queue, used to surface backpressure in metrics
// without affecting dispatch order (spec.md §5's channel is a plain FIFO
// channel; this is bookkeeping only).
func (q *Queue) OldestPendingAge() time.Duration {
	return q.depth.oldestAge()
}

// depthTracker is a min-heap of enqueue timestamps used only to answer
// OldestPendingAge cheaply; it never reorders delivery, which remains
// governed exclusively by the channel.
type depthTracker struct {
	mu    sync.Mutex
	times timeHeap
}

func newDepthTracker() *depthTracker {
	return &depthTracker{}
}

func (d *depthTracker) push(t time.Time) {
	d.mu.Lock()
	defer d.mu.Unlock()
	heap.Push(&d.times, t)
}

func (d *depthTracker) pop() {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.times.Len() > 0 {
		heap.Pop(&d.times)
	}
}

func (d *depthTracker) oldestAge() time.Duration {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.times.Len() == 0 {
		return 0
	}
	return time.Since(d.times[0])
}

type timeHeap []time.Time

func (h timeHeap) Len() int            { return len(h) }
func (h timeHeap) Less(i, j int) bool  { return h[i].Before(h[j]) }
func (h timeHeap) Swap(i, j int)       { h[i], h[j] = h[j], h[i] }
func (h *timeHeap) Push(x any)         { *h = append(*h, x.(time.Time)) }
func (h *timeHeap) Pop() any {
	old := *h
	n := len(old)
	item := old[n-1]
	*h = old[:n-1]
	return item
}
