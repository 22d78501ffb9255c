package queue

import (
	"context"
	"errors"
	"fmt"
	"hash/fnv"
	"strconv"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/MahathirML/CareNeighbour/internal/api/metrics"
	"github.com/MahathirML/CareNeighbour/internal/core/ports"
)

const (
	defaultWorkers     = 8
	channelBuffer      = 256
	statusEnqueueLimit = 2 * time.Second
)

// Dispatcher routes provider signals to a fixed set of workers using
// consistent hashing on the provider id, guaranteeing per-provider ordering.
type Dispatcher struct {
	workers []chan ports.ProviderSignal
	service ports.ProviderService
	log     zerolog.Logger

	// statusWait bounds how long a status signal waits for queue room.
	statusWait time.Duration
	stopped    chan struct{}
	stopOnce   sync.Once
}

// NewDispatcher creates a Dispatcher with numWorkers sharded workers.
// If numWorkers <= 0, defaultWorkers is used.
func NewDispatcher(numWorkers int, service ports.ProviderService, log zerolog.Logger) *Dispatcher {
	return newDispatcher(numWorkers, channelBuffer, service, log)
}

func newDispatcher(numWorkers, buffer int, service ports.ProviderService, log zerolog.Logger) *Dispatcher {
	if numWorkers <= 0 {
		numWorkers = defaultWorkers
	}
	d := &Dispatcher{
		workers:    make([]chan ports.ProviderSignal, numWorkers),
		service:    service,
		log:        log.With().Str("component", "dispatcher").Logger(),
		statusWait: statusEnqueueLimit,
		stopped:    make(chan struct{}),
	}
	for i := range d.workers {
		d.workers[i] = make(chan ports.ProviderSignal, buffer)
	}
	return d
}

// Start launches all worker goroutines. Workers stop when ctx is cancelled.
func (d *Dispatcher) Start(ctx context.Context) {
	for i, ch := range d.workers {
		go d.runWorker(ctx, i, ch)
	}
	go func() {
		<-ctx.Done()
		d.stop()
	}()
}

func (d *Dispatcher) stop() {
	d.stopOnce.Do(func() { close(d.stopped) })
}

// Enqueue hands a signal to the worker responsible for its provider.
// Status signals wait a bounded time for room in the queue; location signals
// are dropped when the queue is full since a newer position will follow.
// Nothing is accepted once the dispatcher has stopped.
func (d *Dispatcher) Enqueue(sig ports.ProviderSignal) bool {
	idx := d.shardIndex(sig.ProviderID)
	ch := d.workers[idx]

	select {
	case <-d.stopped:
		return d.drop(sig, "dispatcher stopped")
	default:
	}

	if sig.Kind == ports.SignalLocation {
		select {
		case ch <- sig:
		default:
			return d.drop(sig, "queue full")
		}
	} else {
		timer := time.NewTimer(d.statusWait)
		defer timer.Stop()
		select {
		case ch <- sig:
		case <-d.stopped:
			return d.drop(sig, "dispatcher stopped")
		case <-timer.C:
			return d.drop(sig, "queue full")
		}
	}

	metrics.DispatcherQueueDepth.WithLabelValues(strconv.Itoa(idx)).Set(float64(len(ch)))
	return true
}

func (d *Dispatcher) drop(sig ports.ProviderSignal, reason string) bool {
	metrics.ProviderSignalsTotal.WithLabelValues(string(sig.Kind), "dropped").Inc()
	d.log.Debug().Int64("provider_id", sig.ProviderID).Str("kind", string(sig.Kind)).Msgf("signal dropped: %s", reason)
	return false
}

// shardIndex maps a provider id deterministically to a worker index.
func (d *Dispatcher) shardIndex(providerID int64) int {
	h := fnv.New32a()
	_, _ = h.Write([]byte(strconv.FormatInt(providerID, 10)))
	return int(h.Sum32() % uint32(len(d.workers)))
}

func (d *Dispatcher) runWorker(ctx context.Context, id int, ch <-chan ports.ProviderSignal) {
	workerID := strconv.Itoa(id)
	for {
		select {
		case <-ctx.Done():
			return
		case sig, ok := <-ch:
			if !ok {
				return
			}
			metrics.DispatcherQueueDepth.WithLabelValues(workerID).Set(float64(len(ch)))

			start := time.Now()
			err := d.process(ctx, sig)
			metrics.SignalProcessingDuration.WithLabelValues(string(sig.Kind)).Observe(time.Since(start).Seconds())

			if err != nil {
				metrics.ProviderSignalsTotal.WithLabelValues(string(sig.Kind), "failed").Inc()
				d.log.Warn().Err(err).
					Int64("provider_id", sig.ProviderID).
					Str("kind", string(sig.Kind)).
					Int("worker_id", id).
					Msg("provider signal failed")
				continue
			}
			metrics.ProviderSignalsTotal.WithLabelValues(string(sig.Kind), "processed").Inc()
		}
	}
}

func (d *Dispatcher) process(ctx context.Context, sig ports.ProviderSignal) error {
	switch sig.Kind {
	case ports.SignalLocation:
		if sig.Location == nil {
			return errors.New("location signal without coordinates")
		}
		return d.service.ReportLocation(ctx, sig.ProviderID, *sig.Location, sig.RequestID)
	case ports.SignalStatus:
		_, err := d.service.SetOnline(ctx, sig.ProviderID, sig.IsOnline, sig.Location)
		return err
	default:
		return fmt.Errorf("unknown signal kind %q", sig.Kind)
	}
}
