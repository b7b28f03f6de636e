package queue

import (
	"context"
	"hash/fnv"

	"github.com/rs/zerolog"

	"github.com/identium/auth-system/internal/api/metrics"
	"github.com/identium/auth-system/internal/core/domain"
	"github.com/identium/auth-system/internal/core/ports"
)

const (
	defaultWorkers = 4
	channelBuffer  = 256
)

// Dispatcher fans security events out to a fixed set of workers, sharded
// by user id so each user's audit trail is written in order. Handlers
// enqueue and move on; recording happens off the request path.
type Dispatcher struct {
	workers []chan domain.UserEvent
	service ports.EventService
	log     zerolog.Logger
}

// NewDispatcher creates a Dispatcher with numWorkers sharded workers.
// If numWorkers <= 0, defaultWorkers is used.
func NewDispatcher(numWorkers int, service ports.EventService, log zerolog.Logger) *Dispatcher {
	if numWorkers <= 0 {
		numWorkers = defaultWorkers
	}
	d := &Dispatcher{
		workers: make([]chan domain.UserEvent, numWorkers),
		service: service,
		log:     log,
	}
	for i := range d.workers {
		d.workers[i] = make(chan domain.UserEvent, channelBuffer)
	}
	return d
}

// Start launches all worker goroutines. Workers stop when ctx is cancelled.
func (d *Dispatcher) Start(ctx context.Context) {
	for i, ch := range d.workers {
		go d.runWorker(ctx, i, ch)
	}
}

// Enqueue hands an event to the worker responsible for its user. When the
// worker's buffer is full the event is dropped with a warning: the audit
// trail is best-effort and must never stall a login.
func (d *Dispatcher) Enqueue(event domain.UserEvent) {
	metrics.SecurityEventsTotal.WithLabelValues(string(event.Type)).Inc()

	select {
	case d.workers[d.shardIndex(event.UserID)] <- event:
	default:
		metrics.EventsDroppedTotal.Inc()
		d.log.Warn().Str("type", string(event.Type)).Str("user_id", event.UserID).Msg("event queue full, dropping")
	}
}

// shardIndex maps a user id deterministically to a worker index.
func (d *Dispatcher) shardIndex(userID string) int {
	h := fnv.New32a()
	_, _ = h.Write([]byte(userID))
	return int(h.Sum32()) % len(d.workers)
}

func (d *Dispatcher) runWorker(ctx context.Context, id int, ch <-chan domain.UserEvent) {
	for {
		select {
		case <-ctx.Done():
			return
		case event, ok := <-ch:
			if !ok {
				return
			}
			if err := d.service.Record(ctx, event); err != nil {
				d.log.Error().Err(err).
					Str("type", string(event.Type)).
					Str("user_id", event.UserID).
					Int("worker_id", id).
					Msg("event recording failed")
			}
		}
	}
}
