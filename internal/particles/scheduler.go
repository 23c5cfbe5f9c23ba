package particles

import (
	"sync"
	"time"
)

// FrameID identifies one pending frame request. Zero is never issued.
type FrameID uint64

// Scheduler runs a callback before the next repaint.
type Scheduler interface {
	RequestFrame(cb func()) FrameID
	CancelFrame(id FrameID)
}

// FrameQueue is a Scheduler driven by the host: callbacks wait until Flush.
// Callbacks requested while a flush is running are held for the next flush.
type FrameQueue struct {
	mu      sync.Mutex
	nextID  FrameID
	order   []FrameID
	pending map[FrameID]func()
}

// NewFrameQueue returns an empty queue.
func NewFrameQueue() *FrameQueue {
	return &FrameQueue{pending: make(map[FrameID]func())}
}

// RequestFrame queues cb for the next Flush.
func (q *FrameQueue) RequestFrame(cb func()) FrameID {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.nextID++
	id := q.nextID
	q.pending[id] = cb
	q.order = append(q.order, id)
	return id
}

// CancelFrame drops a queued callback. Unknown or already-run ids are ignored.
func (q *FrameQueue) CancelFrame(id FrameID) {
	q.mu.Lock()
	delete(q.pending, id)
	q.mu.Unlock()
}

// Pending returns the number of queued callbacks.
func (q *FrameQueue) Pending() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.pending)
}

// Flush runs every callback queued before the call, in request order, and
// returns how many ran.
func (q *FrameQueue) Flush() int {
	q.mu.Lock()
	order := q.order
	q.order = nil
	q.mu.Unlock()

	ran := 0
	for _, id := range order {
		q.mu.Lock()
		cb, ok := q.pending[id]
		delete(q.pending, id)
		q.mu.Unlock()
		if !ok {
			continue
		}
		cb()
		ran++
	}
	return ran
}

// TickerScheduler fires queued callbacks serially from its own goroutine at
// a fixed interval. Close stops the goroutine.
type TickerScheduler struct {
	queue *FrameQueue
	stop  chan struct{}
	done  chan struct{}
	once  sync.Once
}

// NewTickerScheduler starts a scheduler firing every interval.
func NewTickerScheduler(interval time.Duration) *TickerScheduler {
	if interval <= 0 {
		interval = time.Second / 60
	}
	ts := &TickerScheduler{
		queue: NewFrameQueue(),
		stop:  make(chan struct{}),
		done:  make(chan struct{}),
	}
	go ts.run(interval)
	return ts
}

func (ts *TickerScheduler) run(interval time.Duration) {
	defer close(ts.done)
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ts.stop:
			return
		case <-ticker.C:
			ts.queue.Flush()
		}
	}
}

// RequestFrame queues cb for the next tick.
func (ts *TickerScheduler) RequestFrame(cb func()) FrameID {
	return ts.queue.RequestFrame(cb)
}

// CancelFrame drops a queued callback.
func (ts *TickerScheduler) CancelFrame(id FrameID) {
	ts.queue.CancelFrame(id)
}

// Close stops the ticker goroutine and waits for it to exit. Safe to call
// more than once.
func (ts *TickerScheduler) Close() {
	ts.once.Do(func() { close(ts.stop) })
	<-ts.done
}
