package engine

import (
	"context"
	"errors"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/sandeepkv93/checkin/internal/model"
	"github.com/sandeepkv93/checkin/internal/scheduler"
)

type intentKind int

const (
	intentCancel intentKind = iota
	intentReplace
	intentSurface
	intentFlush
)

type surfaceTarget struct {
	active bool
	next   time.Time
}

type intent struct {
	kind    intentKind
	batch   []model.Notification
	surface surfaceTarget
	done    chan struct{}
}

func (in intent) touchesStore() bool {
	return in.kind == intentCancel || in.kind == intentReplace
}

// outbox applies engine intents to the store and surface on its own
// goroutine. A newer store intent supersedes every unapplied store intent,
// and likewise for the surface, so the last issued batch always wins.
type outbox struct {
	store   NotificationStore
	display CountdownSurface
	log     *zap.Logger

	mu      sync.Mutex
	pending []intent
	closed  bool
	wakeup  chan struct{}
	doneCh  chan struct{}

	handle    SurfaceHandle
	hasHandle bool
}

func newOutbox(store NotificationStore, display CountdownSurface, log *zap.Logger) *outbox {
	return &outbox{
		store:   store,
		display: display,
		log:     log,
		wakeup:  make(chan struct{}, 1),
		doneCh:  make(chan struct{}),
	}
}

func (o *outbox) start() {
	go o.loop()
}

func (o *outbox) cancelAll() {
	o.push(intent{kind: intentCancel})
}

func (o *outbox) replace(batch []model.Notification) {
	o.push(intent{kind: intentReplace, batch: batch})
}

func (o *outbox) surface(target surfaceTarget) {
	o.push(intent{kind: intentSurface, surface: target})
}

func (o *outbox) flush(ctx context.Context) error {
	done := make(chan struct{})
	if !o.push(intent{kind: intentFlush, done: done}) {
		return nil
	}
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (o *outbox) close() {
	o.mu.Lock()
	if o.closed {
		o.mu.Unlock()
		<-o.doneCh
		return
	}
	o.closed = true
	o.mu.Unlock()
	o.signal()
	<-o.doneCh
}

func (o *outbox) push(in intent) bool {
	o.mu.Lock()
	if o.closed {
		o.mu.Unlock()
		o.log.Debug("outbox closed, intent dropped", zap.Int("kind", int(in.kind)))
		return false
	}
	kept := o.pending[:0]
	for _, prev := range o.pending {
		if in.touchesStore() && prev.touchesStore() {
			continue
		}
		if in.kind == intentSurface && prev.kind == intentSurface {
			continue
		}
		kept = append(kept, prev)
	}
	o.pending = append(kept, in)
	o.mu.Unlock()
	o.signal()
	return true
}

func (o *outbox) signal() {
	select {
	case o.wakeup <- struct{}{}:
	default:
	}
}

func (o *outbox) loop() {
	defer close(o.doneCh)
	for {
		o.mu.Lock()
		batch := o.pending
		o.pending = nil
		closed := o.closed
		o.mu.Unlock()

		for _, in := range batch {
			o.apply(in)
		}
		if closed {
			o.mu.Lock()
			rest := o.pending
			o.pending = nil
			o.mu.Unlock()
			for _, in := range rest {
				o.apply(in)
			}
			return
		}
		if len(batch) > 0 {
			continue
		}
		<-o.wakeup
	}
}

func (o *outbox) apply(in intent) {
	ctx := context.Background()
	switch in.kind {
	case intentCancel:
		if err := o.store.CancelAll(ctx); err != nil {
			o.log.Warn("cancel pending notifications", zap.Error(err))
		}
	case intentReplace:
		if err := o.store.CancelAll(ctx); err != nil {
			o.log.Warn("cancel pending notifications", zap.Error(err))
		}
		dropped := 0
		for _, n := range in.batch {
			err := o.store.Enqueue(ctx, n)
			switch {
			case err == nil:
			case errors.Is(err, scheduler.ErrCapacityExceeded):
				dropped++
			default:
				o.log.Warn("enqueue notification",
					zap.String("session_id", n.Event.SessionID),
					zap.String("reminder_id", n.Event.ID),
					zap.Error(err),
				)
			}
		}
		if dropped > 0 {
			o.log.Debug("pending limit reached, excess reminders dropped", zap.Int("dropped", dropped))
		}
	case intentSurface:
		o.applySurface(ctx, in.surface)
	case intentFlush:
		close(in.done)
	}
}

func (o *outbox) applySurface(ctx context.Context, target surfaceTarget) {
	if !target.active {
		if !o.hasHandle {
			return
		}
		if err := o.display.End(ctx, o.handle); err != nil {
			o.log.Warn("end countdown surface", zap.Error(err))
		}
		o.handle, o.hasHandle = "", false
		return
	}
	if !o.hasHandle {
		h, err := o.display.Start(ctx, target.next)
		if err != nil {
			o.log.Warn("start countdown surface", zap.Error(err))
			return
		}
		o.handle, o.hasHandle = h, true
		return
	}
	if err := o.display.Update(ctx, o.handle, target.next); err != nil {
		o.log.Warn("update countdown surface", zap.Error(err))
	}
}
