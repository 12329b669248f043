package services

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"
)

// Notifier stores one notification and swallows its own failures.
type Notifier interface {
	Notify(ctx context.Context, ev Event)
}

const notifyTimeout = 5 * time.Second

type queuedEvent struct {
	ctx context.Context
	ev  Event
}

// AsyncEmitter hands events to a fixed pool of workers so that storing a notification
// never delays the response of the action that caused it. When the queue is full, or
// after Close, events are stored inline instead of being dropped.
type AsyncEmitter struct {
	sink   Notifier
	events chan queuedEvent
	log    *zap.Logger

	mu     sync.RWMutex
	closed bool
	wg     sync.WaitGroup
}

func NewAsyncEmitter(sink Notifier, workers, queueSize int, log *zap.Logger) *AsyncEmitter {
	if workers < 1 {
		workers = 1
	}
	e := &AsyncEmitter{
		sink:   sink,
		events: make(chan queuedEvent, queueSize),
		log:    log,
	}
	e.wg.Add(workers)
	for i := 0; i < workers; i++ {
		go e.run()
	}
	return e
}

func (e *AsyncEmitter) run() {
	defer e.wg.Done()
	for q := range e.events {
		e.deliver(q.ctx, q.ev)
	}
}

func (e *AsyncEmitter) deliver(ctx context.Context, ev Event) {
	ctx, cancel := context.WithTimeout(ctx, notifyTimeout)
	defer cancel()
	e.sink.Notify(ctx, ev)
}

// Emit queues ev. The request context is detached so a finished request does not
// cancel the pending insert.
func (e *AsyncEmitter) Emit(ctx context.Context, ev Event) {
	ctx = context.WithoutCancel(ctx)

	e.mu.RLock()
	defer e.mu.RUnlock()
	if e.closed {
		e.deliver(ctx, ev)
		return
	}
	select {
	case e.events <- queuedEvent{ctx: ctx, ev: ev}:
	default:
		e.log.Warn("notification queue full, storing inline", zap.String("notification_type", string(ev.Type)))
		e.deliver(ctx, ev)
	}
}

// Close stops accepting queued work and waits for the workers to drain the queue.
func (e *AsyncEmitter) Close() {
	e.mu.Lock()
	if !e.closed {
		e.closed = true
		close(e.events)
	}
	e.mu.Unlock()
	e.wg.Wait()
}
