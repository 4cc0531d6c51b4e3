package queue

import (
	"context"
	"hash/fnv"
	"strconv"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/hska/buch-catalog/internal/api/metrics"
	"github.com/hska/buch-catalog/internal/core/domain"
	"github.com/hska/buch-catalog/internal/core/ports"
)

const (
	defaultWorkers = 4
	channelBuffer  = 256
	processTimeout = 15 * time.Second
)

// Dispatcher routes creation events to a fixed set of workers using
// consistent hashing on the buch id. Enqueue never blocks: when the target
// worker is full the event is dropped and logged.
type Dispatcher struct {
	workers []chan domain.BuchCreated
	service ports.NotificationService
	log     zerolog.Logger
	wg      sync.WaitGroup
}

// NewDispatcher creates a Dispatcher with numWorkers sharded workers.
// If numWorkers <= 0, defaultWorkers is used.
func NewDispatcher(numWorkers int, service ports.NotificationService, log zerolog.Logger) *Dispatcher {
	if numWorkers <= 0 {
		numWorkers = defaultWorkers
	}
	d := &Dispatcher{
		workers: make([]chan domain.BuchCreated, numWorkers),
		service: service,
		log:     log,
	}
	for i := range d.workers {
		d.workers[i] = make(chan domain.BuchCreated, channelBuffer)
	}
	return d
}

// Start launches all worker goroutines. Workers stop when ctx is cancelled.
func (d *Dispatcher) Start(ctx context.Context) {
	for i, ch := range d.workers {
		d.wg.Add(1)
		go d.runWorker(ctx, i, ch)
	}
}

// Wait blocks until every worker has returned.
func (d *Dispatcher) Wait() {
	d.wg.Wait()
}

// Enqueue hands event to the worker responsible for its id.
func (d *Dispatcher) Enqueue(event domain.BuchCreated) {
	idx := d.shardIndex(event.ID)
	select {
	case d.workers[idx] <- event:
		metrics.NotificationQueueDepth.WithLabelValues(strconv.Itoa(idx)).Inc()
	default:
		metrics.NotificationsTotal.WithLabelValues("dropped").Inc()
		d.log.Warn().Str("buch_id", event.ID).Int("worker_id", idx).Msg("notification queue full, event dropped")
	}
}

// shardIndex maps a buch id deterministically to a worker index.
func (d *Dispatcher) shardIndex(id string) int {
	h := fnv.New32a()
	_, _ = h.Write([]byte(id))
	return int(h.Sum32() % uint32(len(d.workers)))
}

func (d *Dispatcher) runWorker(ctx context.Context, id int, ch <-chan domain.BuchCreated) {
	defer d.wg.Done()
	depth := metrics.NotificationQueueDepth.WithLabelValues(strconv.Itoa(id))

	for {
		select {
		case <-ctx.Done():
			return
		case event, ok := <-ch:
			if !ok {
				return
			}
			depth.Dec()
			d.process(ctx, id, event)
		}
	}
}

func (d *Dispatcher) process(ctx context.Context, workerID int, event domain.BuchCreated) {
	ctx, cancel := context.WithTimeout(ctx, processTimeout)
	defer cancel()

	start := time.Now()
	defer func() { metrics.NotificationDuration.Observe(time.Since(start).Seconds()) }()

	if err := d.service.Process(ctx, event); err != nil {
		metrics.NotificationsTotal.WithLabelValues("failed").Inc()
		d.log.Error().Err(err).
			Str("buch_id", event.ID).
			Int("worker_id", workerID).
			Msg("notification failed")
		return
	}
	metrics.NotificationsTotal.WithLabelValues("sent").Inc()
}
