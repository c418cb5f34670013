package relay

import (
	"context"
	"hash/fnv"

	"github.com/rs/zerolog"

	"github.com/adboard/ad-directory/internal/api/metrics"
	"github.com/adboard/ad-directory/internal/core/domain"
)

const (
	defaultWorkers = 4
	channelBuffer  = 64
)

// DedupChecker abstracts the idempotency store (Redis).
type DedupChecker interface {
	IsDuplicate(ctx context.Context, payload []byte) (bool, error)
	Mark(ctx context.Context, payload []byte) error
}

// message pairs a decoded event with its raw payload (the dedup identity) and
// the routing key it arrived under.
type message struct {
	routingKey string
	payload    []byte
	event      domain.RelayEvent
}

// Dispatcher routes relayed events to a fixed set of workers using consistent
// hashing on the routing key, preserving per-source ordering into the buffer.
type Dispatcher struct {
	workers []chan message
	buffer  *Buffer
	dedup   DedupChecker
	log     zerolog.Logger
}

// NewDispatcher creates a Dispatcher with numWorkers sharded workers.
// If numWorkers <= 0, defaultWorkers is used.
func NewDispatcher(numWorkers int, buffer *Buffer, dedup DedupChecker, log zerolog.Logger) *Dispatcher {
	if numWorkers <= 0 {
		numWorkers = defaultWorkers
	}
	d := &Dispatcher{
		workers: make([]chan message, numWorkers),
		buffer:  buffer,
		dedup:   dedup,
		log:     log,
	}
	for i := range d.workers {
		d.workers[i] = make(chan message, channelBuffer)
	}
	return d
}

// Start launches all worker goroutines. Workers stop when ctx is cancelled.
func (d *Dispatcher) Start(ctx context.Context) {
	for i, ch := range d.workers {
		go d.runWorker(ctx, i, ch)
	}
}

// Enqueue sends an event to the worker responsible for its routing key.
// The call is non-blocking up to channelBuffer capacity.
func (d *Dispatcher) Enqueue(routingKey string, payload []byte, event domain.RelayEvent) {
	d.workers[d.shardIndex(routingKey)] <- message{routingKey: routingKey, payload: payload, event: event}
}

// shardIndex maps a routing key deterministically to a worker index.
func (d *Dispatcher) shardIndex(routingKey string) int {
	h := fnv.New32a()
	_, _ = h.Write([]byte(routingKey))
	return int(h.Sum32()) % len(d.workers)
}

func (d *Dispatcher) runWorker(ctx context.Context, id int, ch <-chan message) {
	for {
		select {
		case <-ctx.Done():
			return
		case msg, ok := <-ch:
			if !ok {
				return
			}
			d.process(ctx, id, msg)
		}
	}
}

func (d *Dispatcher) process(ctx context.Context, workerID int, msg message) {
	isDup, err := d.dedup.IsDuplicate(ctx, msg.payload)
	if err != nil {
		d.log.Warn().Err(err).Int("worker_id", workerID).Msg("dedup check failed, relaying anyway")
	} else if isDup {
		metrics.RelayEventsTotal.WithLabelValues("duplicate").Inc()
		return
	}

	if markErr := d.dedup.Mark(ctx, msg.payload); markErr != nil {
		d.log.Warn().Err(markErr).Int("worker_id", workerID).Msg("failed to set dedup key")
	}

	d.buffer.Append(msg.event)
	metrics.RelayEventsTotal.WithLabelValues("relayed").Inc()
	metrics.RelayBufferSize.Set(float64(d.buffer.Len()))
}
