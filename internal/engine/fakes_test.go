package engine

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/sandeepkv93/checkin/internal/model"
)

var epoch = time.Date(2026, 2, 9, 9, 0, 0, 0, time.UTC)

func at(sec int) time.Time {
	return epoch.Add(time.Duration(sec) * time.Second)
}

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Set(sec int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = at(sec)
}

type fakeStore struct {
	mu      sync.Mutex
	pending map[string]model.Notification
	failIf  func(model.Notification) error
	cancels int
}

func newFakeStore() *fakeStore {
	return &fakeStore{pending: make(map[string]model.Notification)}
}

func (s *fakeStore) CancelAll(context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.pending = make(map[string]model.Notification)
	s.cancels++
	return nil
}

func (s *fakeStore) Enqueue(_ context.Context, n model.Notification) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failIf != nil {
		if err := s.failIf(n); err != nil {
			return err
		}
	}
	s.pending[n.Event.ID] = n
	return nil
}

func (s *fakeStore) Pending(context.Context) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.pending), nil
}

func (s *fakeStore) events() []model.ReminderEvent {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]model.ReminderEvent, 0, len(s.pending))
	for _, n := range s.pending {
		out = append(out, n.Event)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].FireAt.Before(out[j].FireAt) })
	return out
}

type surfaceCall struct {
	op   string
	next time.Time
}

type fakeSurface struct {
	mu    sync.Mutex
	calls []surfaceCall
	live  bool
	next  time.Time
	seq   int
}

func (f *fakeSurface) Start(_ context.Context, next time.Time) (SurfaceHandle, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.seq++
	f.calls = append(f.calls, surfaceCall{op: "start", next: next})
	f.live, f.next = true, next
	return SurfaceHandle(fmt.Sprintf("h-%d", f.seq)), nil
}

func (f *fakeSurface) Update(_ context.Context, _ SurfaceHandle, next time.Time) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, surfaceCall{op: "update", next: next})
	f.next = next
	return nil
}

func (f *fakeSurface) End(context.Context, SurfaceHandle) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, surfaceCall{op: "end"})
	f.live, f.next = false, time.Time{}
	return nil
}

func (f *fakeSurface) snapshot() (bool, time.Time, []surfaceCall) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.live, f.next, append([]surfaceCall(nil), f.calls...)
}

type fakeActivity struct {
	mu   sync.Mutex
	last map[string]time.Time
}

func (a *fakeActivity) record(sessionID string, when time.Time) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.last == nil {
		a.last = make(map[string]time.Time)
	}
	a.last[sessionID] = when
}

func (a *fakeActivity) HasActivitySince(_ context.Context, sessionID string, since time.Time) (bool, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	ts, ok := a.last[sessionID]
	return ok && ts.After(since), nil
}

type harness struct {
	engine   *Engine
	clock    *fakeClock
	store    *fakeStore
	surface  *fakeSurface
	activity *fakeActivity
}

func newHarness(t *testing.T, interval time.Duration) *harness {
	t.Helper()
	h := &harness{
		clock:    &fakeClock{now: epoch},
		store:    newFakeStore(),
		surface:  &fakeSurface{},
		activity: &fakeActivity{},
	}
	e, err := New(Options{
		Store:    h.store,
		Surface:  h.surface,
		Activity: h.activity,
		Clock:    h.clock,
		Interval: interval,
	})
	if err != nil {
		t.Fatalf("new engine: %v", err)
	}
	t.Cleanup(e.Close)
	h.engine = e
	return h
}

func (h *harness) flush(t *testing.T) {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := h.engine.Flush(ctx); err != nil {
		t.Fatalf("flush: %v", err)
	}
}

func fireSeconds(events []model.ReminderEvent) []int {
	out := make([]int, 0, len(events))
	for _, ev := range events {
		out = append(out, int(ev.FireAt.Sub(epoch)/time.Second))
	}
	return out
}

func expectRange(t *testing.T, got []int, from, to int) {
	t.Helper()
	if len(got) != to-from+1 {
		t.Fatalf("expected %d events in [%d,%d], got %d: %v", to-from+1, from, to, len(got), got)
	}
	for i, sec := range got {
		if sec != from+i {
			t.Fatalf("event %d fires at t=%d, want t=%d", i, sec, from+i)
		}
	}
}
