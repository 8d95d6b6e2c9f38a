package notify

import (
	"context"
	"log/slog"
	"sync"

	"github.com/Skotchmaster/bookcart/internal/cart"
)

// Publisher is a sink that may block on the network and can fail.
type Publisher interface {
	Publish(ctx context.Context, n cart.Notification) error
}

// Async queues notifications and hands them to a Publisher from a single
// worker goroutine, so Notify never waits on delivery. When the queue is full
// the notification is dropped and logged.
type Async struct {
	pub   Publisher
	log   *slog.Logger
	queue chan cart.Notification

	closeOnce sync.Once
	mu        sync.RWMutex
	closed    bool
	done      chan struct{}
}

func NewAsync(pub Publisher, size int, log *slog.Logger) *Async {
	if size <= 0 {
		size = 64
	}
	if log == nil {
		log = slog.Default()
	}
	a := &Async{
		pub:   pub,
		log:   log,
		queue: make(chan cart.Notification, size),
		done:  make(chan struct{}),
	}
	go a.run()
	return a
}

func (a *Async) run() {
	defer close(a.done)
	for n := range a.queue {
		if err := a.pub.Publish(context.Background(), n); err != nil {
			a.log.Error("notify_publish_error", "kind", n.Kind, "item_id", n.ItemID, "error", err)
		}
	}
}

func (a *Async) Notify(_ context.Context, n cart.Notification) {
	a.mu.RLock()
	defer a.mu.RUnlock()
	if a.closed {
		return
	}
	select {
	case a.queue <- n:
	default:
		a.log.Warn("notify_queue_full", "kind", n.Kind, "item_id", n.ItemID)
	}
}

// Close stops accepting notifications and waits for the queue to drain or ctx
// to expire.
func (a *Async) Close(ctx context.Context) error {
	a.closeOnce.Do(func() {
		a.mu.Lock()
		a.closed = true
		close(a.queue)
		a.mu.Unlock()
	})
	select {
	case <-a.done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
