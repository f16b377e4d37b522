// Package feedback delivers command outcomes back to the user audibly.
//
// Delivery is fire-and-forget: sinks must never block the dispatcher, so
// the queued sink hands items to a backend from a single worker goroutine
// and drops new items when the queue is full.
package feedback

import (
	"log/slog"
	"sync"
)

// Sink receives command outcomes.
type Sink interface {
	// Notify plays the success or failure tone for a finished command.
	Notify(success bool)
	// Speak voices a result message.
	Speak(message string)
	// Close delivers pending feedback and releases audio resources.
	Close() error
}

// Backend renders one feedback item synchronously.
type Backend interface {
	PlayTone(success bool) error
	Say(message string) error
	Close() error
}

const queueSize = 16

type item struct {
	speak   bool
	success bool
	message string
}

// Queued is a Sink that forwards items to a Backend from a worker
// goroutine. Pending items are delivered before Close returns.
type Queued struct {
	backend Backend
	log     *slog.Logger

	mu     sync.Mutex
	closed bool

	items chan item
	wg    sync.WaitGroup
}

var _ Sink = (*Queued)(nil)

// NewQueued starts the delivery worker for the given backend.
func NewQueued(backend Backend, log *slog.Logger) *Queued {
	if log == nil {
		log = slog.Default()
	}
	q := &Queued{
		backend: backend,
		log:     log.With("component", "feedback"),
		items:   make(chan item, queueSize),
	}
	q.wg.Add(1)
	go q.worker()
	return q
}

func (q *Queued) worker() {
	defer q.wg.Done()
	for it := range q.items {
		var err error
		if it.speak {
			err = q.backend.Say(it.message)
		} else {
			err = q.backend.PlayTone(it.success)
		}
		if err != nil {
			q.log.Warn("feedback delivery failed", "error", err)
		}
	}
}

// Notify queues the outcome tone.
func (q *Queued) Notify(success bool) {
	q.enqueue(item{success: success})
}

// Speak queues a spoken message. Empty messages are ignored.
func (q *Queued) Speak(message string) {
	if message == "" {
		return
	}
	q.enqueue(item{speak: true, message: message})
}

func (q *Queued) enqueue(it item) {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.closed {
		return
	}
	select {
	case q.items <- it:
	default:
		q.log.Warn("feedback queue full, dropping item")
	}
}

// Close stops accepting items, waits for pending deliveries, and closes
// the backend.
func (q *Queued) Close() error {
	q.mu.Lock()
	if q.closed {
		q.mu.Unlock()
		return nil
	}
	q.closed = true
	close(q.items)
	q.mu.Unlock()

	q.wg.Wait()
	return q.backend.Close()
}

// Noop discards all feedback; used when audible feedback is disabled.
type Noop struct{}

var _ Sink = Noop{}

func (Noop) Notify(bool)  {}
func (Noop) Speak(string) {}
func (Noop) Close() error { return nil }
