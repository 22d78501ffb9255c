package queue

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/MahathirML/CareNeighbour/internal/core/domain"
	"github.com/MahathirML/CareNeighbour/internal/core/ports"
)

// ---------------------------------------------------------------------------
// Stub
// ---------------------------------------------------------------------------

type stubProviderService struct {
	mu    sync.Mutex
	calls []ports.ProviderSignal
}

func (s *stubProviderService) record(sig ports.ProviderSignal) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls = append(s.calls, sig)
}

func (s *stubProviderService) SetOnline(_ context.Context, id int64, online bool, loc *domain.Coordinates) (*domain.ProviderStatus, error) {
	s.record(ports.ProviderSignal{Kind: ports.SignalStatus, ProviderID: id, IsOnline: online, Location: loc})
	return &domain.ProviderStatus{UserID: id, IsOnline: online}, nil
}

func (s *stubProviderService) ReportLocation(_ context.Context, id int64, loc domain.Coordinates, requestID *int64) error {
	s.record(ports.ProviderSignal{Kind: ports.SignalLocation, ProviderID: id, Location: &loc, RequestID: requestID})
	return nil
}

func (s *stubProviderService) ListAvailable(context.Context, *domain.Coordinates) ([]ports.AvailableProvider, error) {
	return nil, nil
}

func (s *stubProviderService) snapshot() []ports.ProviderSignal {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]ports.ProviderSignal(nil), s.calls...)
}

func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatalf("condition not met before deadline")
}

// ---------------------------------------------------------------------------
// Tests
// ---------------------------------------------------------------------------

func TestDispatcher_PreservesPerProviderOrder(t *testing.T) {
	svc := &stubProviderService{}
	d := NewDispatcher(4, svc, zerolog.Nop())
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	d.Start(ctx)

	const n = 50
	for i := 0; i < n; i++ {
		d.Enqueue(ports.ProviderSignal{
			Kind:       ports.SignalLocation,
			ProviderID: 7,
			Location:   &domain.Coordinates{Lat: float64(i), Lon: 0},
		})
	}

	waitFor(t, func() bool { return len(svc.snapshot()) == n })
	for i, sig := range svc.snapshot() {
		if sig.Location.Lat != float64(i) {
			t.Fatalf("signal %d out of order: lat %f", i, sig.Location.Lat)
		}
	}
}

func TestDispatcher_RoutesByKind(t *testing.T) {
	svc := &stubProviderService{}
	d := NewDispatcher(2, svc, zerolog.Nop())
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	d.Start(ctx)

	d.Enqueue(ports.ProviderSignal{Kind: ports.SignalStatus, ProviderID: 1, IsOnline: true})
	d.Enqueue(ports.ProviderSignal{Kind: ports.SignalLocation, ProviderID: 1, Location: &domain.Coordinates{Lat: 1, Lon: 2}})

	waitFor(t, func() bool { return len(svc.snapshot()) == 2 })
	calls := svc.snapshot()
	if calls[0].Kind != ports.SignalStatus || !calls[0].IsOnline {
		t.Fatalf("expected status first, got %+v", calls[0])
	}
	if calls[1].Kind != ports.SignalLocation || calls[1].Location.Lon != 2 {
		t.Fatalf("expected location second, got %+v", calls[1])
	}
}

func TestDispatcher_DropsLocationWhenFull(t *testing.T) {
	svc := &stubProviderService{}
	d := newDispatcher(1, 1, svc, zerolog.Nop())
	// Not started: the single slot fills and stays full.

	loc := &domain.Coordinates{Lat: 1, Lon: 1}
	if !d.Enqueue(ports.ProviderSignal{Kind: ports.SignalLocation, ProviderID: 1, Location: loc}) {
		t.Fatalf("first signal should be queued")
	}
	if d.Enqueue(ports.ProviderSignal{Kind: ports.SignalLocation, ProviderID: 1, Location: loc}) {
		t.Fatalf("second signal should be dropped")
	}
}

func TestDispatcher_ShardIndexIsStable(t *testing.T) {
	d := NewDispatcher(8, &stubProviderService{}, zerolog.Nop())
	for id := int64(0); id < 100; id++ {
		a, b := d.shardIndex(id), d.shardIndex(id)
		if a != b || a < 0 || a >= 8 {
			t.Fatalf("unstable or out-of-range shard for %d: %d/%d", id, a, b)
		}
	}
}

func TestDispatcher_StatusEnqueueReturnsAfterStop(t *testing.T) {
	d := newDispatcher(1, 1, &stubProviderService{}, zerolog.Nop())
	ctx, cancel := context.WithCancel(context.Background())
	d.Start(ctx)
	cancel()
	waitFor(t, func() bool {
		select {
		case <-d.stopped:
			return true
		default:
			return false
		}
	})

	done := make(chan bool, 2)
	go func() {
		for i := 0; i < 2; i++ {
			done <- d.Enqueue(ports.ProviderSignal{Kind: ports.SignalStatus, ProviderID: 1, IsOnline: true})
		}
	}()
	for i := 0; i < 2; i++ {
		select {
		case ok := <-done:
			if ok {
				t.Fatalf("signal %d accepted by a stopped dispatcher", i)
			}
		case <-time.After(time.Second):
			t.Fatalf("enqueue %d blocked after stop", i)
		}
	}
}

func TestDispatcher_StatusEnqueueGivesUpWhenQueueStaysFull(t *testing.T) {
	d := newDispatcher(1, 1, &stubProviderService{}, zerolog.Nop())
	d.statusWait = 20 * time.Millisecond
	// Not started: nothing drains the single slot.

	if !d.Enqueue(ports.ProviderSignal{Kind: ports.SignalStatus, ProviderID: 1, IsOnline: true}) {
		t.Fatalf("first signal should be queued")
	}

	start := time.Now()
	if d.Enqueue(ports.ProviderSignal{Kind: ports.SignalStatus, ProviderID: 1, IsOnline: false}) {
		t.Fatalf("second signal should be rejected")
	}
	if elapsed := time.Since(start); elapsed > time.Second {
		t.Fatalf("enqueue waited %s", elapsed)
	}
}
