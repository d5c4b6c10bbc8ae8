package notify

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"
)

// sendTimeout bounds a single delivery attempt.
const sendTimeout = 10 * time.Second

// Dispatcher delivers messages on background workers. Enqueue never blocks the
// caller, and delivery failures are logged, never returned.
type Dispatcher struct {
	notifier Notifier
	log      *zap.Logger
	queue    chan Message
	wg       sync.WaitGroup

	mu     sync.RWMutex
	closed bool
}

// NewDispatcher starts workers goroutines draining a queue of queueSize messages.
func NewDispatcher(notifier Notifier, log *zap.Logger, workers, queueSize int) *Dispatcher {
	if workers <= 0 {
		workers = 1
	}
	if queueSize <= 0 {
		queueSize = 1
	}

	d := &Dispatcher{
		notifier: notifier,
		log:      log,
		queue:    make(chan Message, queueSize),
	}
	for i := 0; i < workers; i++ {
		d.wg.Add(1)
		go d.run()
	}
	return d
}

// Enqueue schedules msg for delivery. When the queue is full or the dispatcher
// is closed the message is dropped and logged.
func (d *Dispatcher) Enqueue(msg Message) {
	d.mu.RLock()
	defer d.mu.RUnlock()

	if d.closed {
		d.log.Warn("notification dropped: dispatcher closed",
			zap.String("to", msg.To), zap.String("subject", msg.Subject))
		return
	}

	select {
	case d.queue <- msg:
	default:
		d.log.Warn("notification dropped: queue full",
			zap.String("to", msg.To), zap.String("subject", msg.Subject))
	}
}

func (d *Dispatcher) run() {
	defer d.wg.Done()
	for msg := range d.queue {
		d.deliver(msg)
	}
}

func (d *Dispatcher) deliver(msg Message) {
	defer func() {
		if r := recover(); r != nil {
			d.log.Error("notification panicked", zap.Any("panic", r), zap.String("to", msg.To))
		}
	}()

	ctx, cancel := context.WithTimeout(context.Background(), sendTimeout)
	defer cancel()

	if err := d.notifier.Send(ctx, msg); err != nil {
		d.log.Error("notification failed",
			zap.String("to", msg.To),
			zap.String("subject", msg.Subject),
			zap.Error(err),
		)
		return
	}
	d.log.Debug("notification sent", zap.String("to", msg.To), zap.String("subject", msg.Subject))
}

// Close stops accepting messages and waits for queued ones until ctx is done.
func (d *Dispatcher) Close(ctx context.Context) error {
	d.mu.Lock()
	if !d.closed {
		d.closed = true
		close(d.queue)
	}
	d.mu.Unlock()

	done := make(chan struct{})
	go func() {
		d.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
