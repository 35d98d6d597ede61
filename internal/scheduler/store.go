// Package scheduler is the local pending-notification store: a bounded,
// time-ordered queue that delivers notifications on a channel when they
// come due.
package scheduler

import (
	"container/heap"
	"context"
	"errors"
	"sort"
	"sync"
	"sync/atomic"
	"time"

	"github.com/sandeepkv93/checkin/internal/model"
)

// DefaultPendingLimit mirrors the platform ceiling on pending notifications.
const DefaultPendingLimit = 64

var (
	ErrInvalidTriggerTime = errors.New("scheduler: invalid trigger time")
	ErrCapacityExceeded   = errors.New("scheduler: pending notification limit reached")
	ErrStopped            = errors.New("scheduler: store stopped")
)

type queueItem struct {
	n model.Notification
}

type priorityQueue []queueItem

func (pq priorityQueue) Len() int { return len(pq) }

func (pq priorityQueue) Less(i, j int) bool {
	return pq[i].n.Event.FireAt.Before(pq[j].n.Event.FireAt)
}

func (pq priorityQueue) Swap(i, j int) {
	pq[i], pq[j] = pq[j], pq[i]
}

func (pq *priorityQueue) Push(x any) {
	*pq = append(*pq, x.(queueItem))
}

func (pq *priorityQueue) Pop() any {
	old := *pq
	n := len(old)
	item := old[n-1]
	*pq = old[0 : n-1]
	return item
}

type Store struct {
	mu       sync.Mutex
	queue    priorityQueue
	limit    int
	out      chan model.Notification
	wakeup   chan struct{}
	stopCh   chan struct{}
	doneCh   chan struct{}
	started  bool
	stopped  bool
	dropped  uint64
	rejected uint64
}

// NewStore creates a store holding at most limit pending notifications and
// buffering bufferSize delivered ones for a slow consumer.
func NewStore(limit, bufferSize int) *Store {
	if limit <= 0 {
		limit = DefaultPendingLimit
	}
	if bufferSize <= 0 {
		bufferSize = 1
	}
	return &Store{
		queue:  make(priorityQueue, 0, limit),
		limit:  limit,
		out:    make(chan model.Notification, bufferSize),
		wakeup: make(chan struct{}, 1),
		stopCh: make(chan struct{}),
		doneCh: make(chan struct{}),
	}
}

// C delivers notifications as they come due. It is closed by Stop.
func (s *Store) C() <-chan model.Notification {
	return s.out
}

func (s *Store) Start() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.started {
		return
	}
	s.started = true
	heap.Init(&s.queue)
	go s.loop()
}

func (s *Store) Stop() {
	s.mu.Lock()
	if !s.started || s.stopped {
		s.stopped = true
		s.mu.Unlock()
		return
	}
	s.stopped = true
	close(s.stopCh)
	s.mu.Unlock()
	<-s.doneCh
}

func (s *Store) Enqueue(_ context.Context, n model.Notification) error {
	if n.Event.FireAt.IsZero() {
		return ErrInvalidTriggerTime
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.stopped {
		return ErrStopped
	}
	if len(s.queue) >= s.limit {
		atomic.AddUint64(&s.rejected, 1)
		return ErrCapacityExceeded
	}

	heap.Push(&s.queue, queueItem{n: n})
	s.signalWakeup()
	return nil
}

func (s *Store) CancelAll(_ context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.queue = s.queue[:0]
	s.signalWakeup()
	return nil
}

func (s *Store) Pending(_ context.Context) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.queue), nil
}

// Snapshot returns the pending notifications ordered by fire time.
func (s *Store) Snapshot() []model.Notification {
	s.mu.Lock()
	out := make([]model.Notification, 0, len(s.queue))
	for _, item := range s.queue {
		out = append(out, item.n)
	}
	s.mu.Unlock()
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Event.FireAt.Before(out[j].Event.FireAt)
	})
	return out
}

// Dropped counts due notifications discarded because the consumer was slow.
func (s *Store) Dropped() uint64 {
	return atomic.LoadUint64(&s.dropped)
}

// Rejected counts enqueues refused by the pending limit.
func (s *Store) Rejected() uint64 {
	return atomic.LoadUint64(&s.rejected)
}

func (s *Store) loop() {
	defer close(s.doneCh)
	defer close(s.out)

	var timer *time.Timer
	for {
		next, hasNext := s.peek()
		if !hasNext {
			select {
			case <-s.wakeup:
				continue
			case <-s.stopCh:
				return
			}
		}

		wait := time.Until(next.Event.FireAt)
		if wait < 0 {
			wait = 0
		}
		timer = resetTimer(timer, wait)

		select {
		case <-timer.C:
			due := s.popDue(time.Now().UTC())
			for _, n := range due {
				select {
				case s.out <- n:
				default:
					atomic.AddUint64(&s.dropped, 1)
				}
			}
		case <-s.wakeup:
			continue
		case <-s.stopCh:
			if timer != nil {
				stopTimer(timer)
			}
			return
		}
	}
}

func (s *Store) signalWakeup() {
	select {
	case s.wakeup <- struct{}{}:
	default:
	}
}

func (s *Store) peek() (model.Notification, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.queue) == 0 {
		return model.Notification{}, false
	}
	return s.queue[0].n, true
}

func (s *Store) popDue(now time.Time) []model.Notification {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]model.Notification, 0)
	for len(s.queue) > 0 {
		next := s.queue[0].n
		if next.Event.FireAt.After(now) {
			break
		}
		item := heap.Pop(&s.queue).(queueItem)
		out = append(out, item.n)
	}
	return out
}

func resetTimer(timer *time.Timer, d time.Duration) *time.Timer {
	if timer == nil {
		return time.NewTimer(d)
	}
	stopTimer(timer)
	timer.Reset(d)
	return timer
}

func stopTimer(timer *time.Timer) {
	if timer == nil {
		return
	}
	if !timer.Stop() {
		select {
		case <-timer.C:
		default:
		}
	}
}
