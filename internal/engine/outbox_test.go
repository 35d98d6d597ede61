package engine

import (
	"context"
	"sync"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/sandeepkv93/checkin/internal/model"
	"github.com/sandeepkv93/checkin/internal/scheduler"
)

// gatedStore blocks its first CancelAll until released, so later intents
// pile up behind it.
type gatedStore struct {
	*fakeStore
	gate chan struct{}
	once sync.Once
}

func (g *gatedStore) CancelAll(ctx context.Context) error {
	g.once.Do(func() { <-g.gate })
	return g.fakeStore.CancelAll(ctx)
}

func TestOutboxLastBatchWins(t *testing.T) {
	store := &gatedStore{fakeStore: newFakeStore(), gate: make(chan struct{})}
	clock := &fakeClock{now: epoch}
	e, err := New(Options{Store: store, Clock: clock, Interval: time.Minute})
	if err != nil {
		t.Fatalf("new engine: %v", err)
	}
	defer e.Close()

	e.StartSession()
	time.Sleep(20 * time.Millisecond)
	for sec := 1; sec <= 10; sec++ {
		clock.Set(sec)
		e.UpdateInterval(time.Duration(sec) * time.Minute)
	}
	clock.Set(700)
	e.ScheduleNags()
	close(store.gate)

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := e.Flush(ctx); err != nil {
		t.Fatalf("flush: %v", err)
	}
	expectRange(t, fireSeconds(store.events()), 701, 760)
}

func TestOutboxCapacityIsDegradedNotFatal(t *testing.T) {
	store := scheduler.NewStore(10, 1)
	clock := &fakeClock{now: time.Now().UTC()}
	e, err := New(Options{Store: store, Clock: clock, Interval: time.Hour, Logger: zap.NewNop()})
	if err != nil {
		t.Fatalf("new engine: %v", err)
	}
	defer e.Close()

	if _, err := e.StartSession(); err != nil {
		t.Fatalf("start: %v", err)
	}
	if err := e.Flush(t.Context()); err != nil {
		t.Fatalf("flush: %v", err)
	}
	snap := store.Snapshot()
	if len(snap) != 10 {
		t.Fatalf("expected store filled to its limit, got %d", len(snap))
	}
	if snap[0].Event.Kind != model.ReminderKindPrimary {
		t.Fatalf("primary must be kept, got %+v", snap[0].Event)
	}
	if store.Rejected() != 51 {
		t.Fatalf("expected 51 rejected, got %d", store.Rejected())
	}
}

func TestFlushAfterCloseReturns(t *testing.T) {
	e, err := New(Options{Store: newFakeStore()})
	if err != nil {
		t.Fatalf("new engine: %v", err)
	}
	e.Close()
	e.Close()
	if err := e.Flush(t.Context()); err != nil {
		t.Fatalf("flush after close: %v", err)
	}
}
