package notify

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/dmitrijs2005/bookapi/internal/logging"
)

const (
	DefaultQueueSize       = 64
	DefaultDeliveryTimeout = 30 * time.Second
)

var (
	ErrQueueFull = errors.New("notification queue is full")
	ErrClosed    = errors.New("notifier is closed")
)

// AsyncNotifier hands notices to a single background worker so the caller
// returns without waiting on delivery. The queue is bounded; a notice that
// does not fit is dropped and reported to the caller.
type AsyncNotifier struct {
	next    Notifier
	logger  logging.Logger
	timeout time.Duration

	mu     sync.RWMutex
	closed bool
	queue  chan ResetNotice
	done   chan struct{}
}

// NewAsyncNotifier starts the delivery worker. Close must be called to stop it.
func NewAsyncNotifier(next Notifier, logger logging.Logger, queueSize int, timeout time.Duration) *AsyncNotifier {
	if queueSize <= 0 {
		queueSize = DefaultQueueSize
	}
	if timeout <= 0 {
		timeout = DefaultDeliveryTimeout
	}
	a := &AsyncNotifier{
		next:    next,
		logger:  logger,
		timeout: timeout,
		queue:   make(chan ResetNotice, queueSize),
		done:    make(chan struct{}),
	}
	go a.worker()
	return a
}

// NotifyPasswordReset enqueues n and returns immediately. ctx is not
// carried into delivery since it normally ends with the request.
func (a *AsyncNotifier) NotifyPasswordReset(ctx context.Context, n ResetNotice) error {
	a.mu.RLock()
	defer a.mu.RUnlock()

	if a.closed {
		return ErrClosed
	}

	select {
	case a.queue <- n:
		return nil
	default:
		return ErrQueueFull
	}
}

func (a *AsyncNotifier) worker() {
	defer close(a.done)
	for n := range a.queue {
		a.deliver(n)
	}
}

func (a *AsyncNotifier) deliver(n ResetNotice) {
	ctx, cancel := context.WithTimeout(context.Background(), a.timeout)
	defer cancel()

	if err := a.next.NotifyPasswordReset(ctx, n); err != nil {
		logging.LogError(ctx, a.logger, "reset notice delivery failed", err)
	}
}

// Close stops accepting notices and waits until the queued ones have been
// delivered. It is safe to call more than once.
func (a *AsyncNotifier) Close() error {
	a.mu.Lock()
	if !a.closed {
		a.closed = true
		close(a.queue)
	}
	a.mu.Unlock()

	<-a.done
	return nil
}
