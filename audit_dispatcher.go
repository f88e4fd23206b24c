package goCareer

import (
	"context"
	"sync"
	"sync/atomic"
)

// auditDispatcher decouples event producers from the sink. A nil dispatcher is
// a valid, disabled dispatcher.
//
// Every event passed to Emit is either handed to the sink or counted in Dropped.
type auditDispatcher struct {
	cfg     AuditConfig
	sink    AuditSink
	queue   chan AuditEvent
	closing chan struct{} // wakes emitters blocked on a full queue
	stopped chan struct{} // tells the worker to drain and exit
	worker  sync.WaitGroup

	// emitters hold a read lock while they may still enqueue; Close takes the
	// write lock before stopping the worker.
	mu      sync.RWMutex
	closed  bool
	once    sync.Once
	dropped atomic.Uint64
}

func newAuditDispatcher(cfg AuditConfig, sink AuditSink) *auditDispatcher {
	if !cfg.Enabled {
		return nil
	}
	if sink == nil {
		sink = NoOpSink{}
	}

	d := &auditDispatcher{
		cfg:     cfg,
		sink:    sink,
		queue:   make(chan AuditEvent, max(cfg.BufferSize, 1)),
		closing: make(chan struct{}),
		stopped: make(chan struct{}),
	}
	d.worker.Add(1)
	go d.deliver()
	return d
}

func (d *auditDispatcher) deliver() {
	defer d.worker.Done()

	ctx := context.Background()
	for {
		select {
		case event := <-d.queue:
			d.sink.Emit(ctx, event)
		case <-d.stopped:
			for len(d.queue) > 0 {
				d.sink.Emit(ctx, <-d.queue)
			}
			return
		}
	}
}

// Emit queues event. Free buffer space always accepts the event, even when ctx is
// already done. On a full buffer the event is dropped with DropIfFull or a done
// ctx; otherwise Emit waits for room, for ctx or for Close. Events emitted after
// Close are dropped.
func (d *auditDispatcher) Emit(ctx context.Context, event AuditEvent) {
	if d == nil {
		return
	}

	d.mu.RLock()
	defer d.mu.RUnlock()
	if d.closed {
		d.dropped.Add(1)
		return
	}

	select {
	case d.queue <- event:
		return
	default:
	}

	if ctx == nil {
		ctx = context.Background()
	}
	if d.cfg.DropIfFull || ctx.Err() != nil {
		d.dropped.Add(1)
		return
	}

	select {
	case d.queue <- event:
	case <-ctx.Done():
		d.dropped.Add(1)
	case <-d.closing:
		d.dropped.Add(1)
	}
}

// Close stops accepting events and flushes the buffer to the sink.
func (d *auditDispatcher) Close() {
	if d == nil {
		return
	}
	d.once.Do(func() {
		close(d.closing)
		d.mu.Lock()
		d.closed = true
		d.mu.Unlock()
		close(d.stopped)
		d.worker.Wait()
	})
}

// Dropped returns the number of events that never reached the sink.
func (d *auditDispatcher) Dropped() uint64 {
	if d == nil {
		return 0
	}
	return d.dropped.Load()
}
