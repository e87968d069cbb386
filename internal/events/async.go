package events

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"
)

// Errors returned by AsyncEmitter.
var (
	ErrEmitterClosed = errors.New("event emitter is closed")
	ErrQueueFull     = errors.New("event queue is full")
)

// AsyncConfig holds configuration options for AsyncEmitter.
type AsyncConfig struct {
	// QueueSize is the number of events buffered before EmitEvent fails
	// with ErrQueueFull. Defaults to 256.
	QueueSize int

	// WorkerCount is the number of goroutines delivering events.
	// Defaults to 1.
	WorkerCount int

	// HandlerTimeout bounds each delivery. Defaults to 5s.
	HandlerTimeout time.Duration
}

// DefaultAsyncConfig returns an AsyncConfig with reasonable defaults.
func DefaultAsyncConfig() AsyncConfig {
	return AsyncConfig{
		QueueSize:      256,
		WorkerCount:    1,
		HandlerTimeout: 5 * time.Second,
	}
}

// AsyncEmitter queues events and delivers them to next from a pool of
// workers, so a slow broker never holds up the request that produced the
// event. Delivery errors are logged.
type AsyncEmitter struct {
	next    EventEmitter
	cfg     AsyncConfig
	queue   chan *Event
	logger  *slog.Logger
	wg      sync.WaitGroup
	mu      sync.RWMutex
	closed  bool
	started bool
}

// NewAsyncEmitter creates an AsyncEmitter in front of next. Call Start
// before emitting and Close on shutdown.
func NewAsyncEmitter(next EventEmitter, cfg AsyncConfig, logger *slog.Logger) *AsyncEmitter {
	if next == nil {
		// ALLOW-PANIC: a nil downstream emitter is a wiring bug
		panic("next emitter cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}
	defaults := DefaultAsyncConfig()
	if cfg.QueueSize <= 0 {
		cfg.QueueSize = defaults.QueueSize
	}
	if cfg.WorkerCount <= 0 {
		cfg.WorkerCount = defaults.WorkerCount
	}
	if cfg.HandlerTimeout <= 0 {
		cfg.HandlerTimeout = defaults.HandlerTimeout
	}

	return &AsyncEmitter{
		next:   next,
		cfg:    cfg,
		queue:  make(chan *Event, cfg.QueueSize),
		logger: logger.With("component", "async_event_emitter"),
	}
}

var _ EventEmitter = (*AsyncEmitter)(nil)

// Start launches the workers. It is a no-op when already started.
func (e *AsyncEmitter) Start() {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.started || e.closed {
		return
	}
	e.started = true

	for i := 0; i < e.cfg.WorkerCount; i++ {
		e.wg.Add(1)
		go e.worker(i)
	}
	e.logger.Info("event workers started", "worker_count", e.cfg.WorkerCount)
}

func (e *AsyncEmitter) worker(id int) {
	defer e.wg.Done()
	for event := range e.queue {
		e.deliver(id, event)
	}
}

func (e *AsyncEmitter) deliver(workerID int, event *Event) {
	defer func() {
		if r := recover(); r != nil {
			e.logger.Error("event handler panicked",
				"worker_id", workerID,
				"event_id", event.ID,
				"panic", fmt.Sprint(r))
		}
	}()

	ctx, cancel := context.WithTimeout(context.Background(), e.cfg.HandlerTimeout)
	defer cancel()

	if err := e.next.EmitEvent(ctx, event); err != nil {
		e.logger.Error("failed to deliver event",
			"worker_id", workerID,
			"event_id", event.ID,
			"event_type", event.Type,
			"error", err)
	}
}

// EmitEvent enqueues event without blocking. The context only scopes the
// call; delivery runs with its own timeout.
func (e *AsyncEmitter) EmitEvent(_ context.Context, event *Event) error {
	e.mu.RLock()
	defer e.mu.RUnlock()
	if e.closed {
		return ErrEmitterClosed
	}

	select {
	case e.queue <- event:
		return nil
	default:
		return fmt.Errorf("%w: capacity %d reached", ErrQueueFull, cap(e.queue))
	}
}

// Close stops accepting events and waits for queued ones to be delivered,
// or for ctx to end.
func (e *AsyncEmitter) Close(ctx context.Context) error {
	e.mu.Lock()
	if e.closed {
		e.mu.Unlock()
		return nil
	}
	e.closed = true
	close(e.queue)
	started := e.started
	e.mu.Unlock()

	if !started {
		return nil
	}

	done := make(chan struct{})
	go func() {
		e.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		e.logger.Info("event workers stopped")
		return nil
	case <-ctx.Done():
		return fmt.Errorf("event workers did not drain: %w", ctx.Err())
	}
}
