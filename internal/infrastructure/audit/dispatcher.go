// Package audit delivers authorization audit events off the request path.
package audit

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/nexerp/edge-access/internal/api/metrics"
	"github.com/nexerp/edge-access/internal/core/domain"
	"github.com/nexerp/edge-access/internal/core/ports"
)

const (
	defaultWorkers = 2
	defaultBuffer  = 1024
	writeTimeout   = 5 * time.Second
)

type namedWriter struct {
	name string
	w    ports.AuditWriter
}

// Dispatcher is a ports.AuditSink backed by a buffered channel and a fixed
// pool of workers. Record never blocks: when the buffer is full the event is
// dropped and counted.
type Dispatcher struct {
	events  chan domain.AuditEvent
	workers int
	service string
	writers []namedWriter
	log     zerolog.Logger
	wg      sync.WaitGroup
}

// NewDispatcher creates a Dispatcher. Non-positive workers or buffer fall
// back to the defaults. service is stamped on events that carry none.
func NewDispatcher(workers, buffer int, service string, log zerolog.Logger) *Dispatcher {
	if workers <= 0 {
		workers = defaultWorkers
	}
	if buffer <= 0 {
		buffer = defaultBuffer
	}
	return &Dispatcher{
		events:  make(chan domain.AuditEvent, buffer),
		workers: workers,
		service: service,
		log:     log,
	}
}

// AddWriter registers a writer. Must be called before Start.
func (d *Dispatcher) AddWriter(name string, w ports.AuditWriter) {
	d.writers = append(d.writers, namedWriter{name: name, w: w})
}

// Start launches the workers. When ctx is cancelled they drain what is
// already buffered and exit.
func (d *Dispatcher) Start(ctx context.Context) {
	for i := 0; i < d.workers; i++ {
		d.wg.Add(1)
		go d.runWorker(ctx, i)
	}
}

// Wait blocks until every worker has exited.
func (d *Dispatcher) Wait() {
	d.wg.Wait()
}

// Record enqueues ev without blocking.
func (d *Dispatcher) Record(_ context.Context, ev domain.AuditEvent) {
	if ev.Service == "" {
		ev.Service = d.service
	}
	select {
	case d.events <- ev:
	default:
		metrics.AuditEventsDroppedTotal.Inc()
		d.log.Warn().
			Str("kind", string(ev.Kind)).
			Str("user_id", ev.UserID).
			Msg("audit queue full, event dropped")
	}
}

func (d *Dispatcher) runWorker(ctx context.Context, id int) {
	defer d.wg.Done()
	for {
		select {
		case <-ctx.Done():
			d.drain(id)
			return
		case ev := <-d.events:
			d.deliver(id, ev)
		}
	}
}

func (d *Dispatcher) drain(id int) {
	for {
		select {
		case ev := <-d.events:
			d.deliver(id, ev)
		default:
			return
		}
	}
}

// deliver fans ev out to every writer. A failing writer is logged and does
// not stop the others.
func (d *Dispatcher) deliver(id int, ev domain.AuditEvent) {
	for _, nw := range d.writers {
		ctx, cancel := context.WithTimeout(context.Background(), writeTimeout)
		err := nw.w.Write(ctx, ev)
		cancel()
		if err != nil {
			metrics.AuditWriteErrorsTotal.WithLabelValues(nw.name).Inc()
			d.log.Error().Err(err).
				Str("writer", nw.name).
				Str("event_id", ev.ID).
				Int("worker_id", id).
				Msg("audit write failed")
		}
	}
}
