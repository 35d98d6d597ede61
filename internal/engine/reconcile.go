package engine

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/sandeepkv93/checkin/internal/model"
)

type AlarmReason string

const (
	AlarmDelivered AlarmReason = "delivered"
	AlarmOverdue   AlarmReason = "overdue"
)

// Alarm asks the UI to present the check-in prompt.
type Alarm struct {
	SessionID string
	Reason    AlarmReason
	Event     model.ReminderEvent
	At        time.Time
}

// Subscribe returns a channel of alarms and a function that ends the
// subscription. Alarms are dropped for a subscriber that is not reading.
func (e *Engine) Subscribe() (<-chan Alarm, func()) {
	ch := make(chan Alarm, 8)
	e.subMu.Lock()
	id := e.nextID
	e.nextID++
	e.subs[id] = ch
	e.subMu.Unlock()

	var once bool
	return ch, func() {
		e.subMu.Lock()
		defer e.subMu.Unlock()
		if once {
			return
		}
		once = true
		delete(e.subs, id)
		close(ch)
	}
}

func (e *Engine) publish(a Alarm) {
	e.subMu.Lock()
	defer e.subMu.Unlock()
	for _, ch := range e.subs {
		select {
		case ch <- a:
		default:
			e.log.Debug("alarm subscriber slow, alarm dropped", zap.String("session_id", a.SessionID))
		}
	}
}

// HandleDelivered is called when the platform delivers a reminder while the
// process is in the foreground. It reports whether an alarm was raised.
func (e *Engine) HandleDelivered(ctx context.Context, n model.Notification) bool {
	st := e.Snapshot()
	if !st.IsRunning || n.Event.SessionID != st.SessionID {
		e.log.Debug("stale reminder ignored", zap.String("reminder_id", n.Event.ID))
		return false
	}
	if !n.Event.FireAt.After(st.PlannedAt) {
		e.log.Debug("superseded reminder ignored",
			zap.String("session_id", st.SessionID),
			zap.String("reminder_id", n.Event.ID),
		)
		return false
	}
	if st.InputPresented {
		return false
	}
	if e.answeredSince(ctx, st) {
		return false
	}
	e.publish(Alarm{SessionID: st.SessionID, Reason: AlarmDelivered, Event: n.Event, At: e.clock.Now()})
	return true
}

type ReconcileResult struct {
	Overdue   bool
	Answered  bool
	Prompt    bool
	Escalated bool
}

// Reconcile is run on resume and periodically while in the foreground. When
// the deadline has passed it either restarts the interval (the user already
// answered) or raises an alarm, scheduling a nag burst if nothing is left
// pending.
func (e *Engine) Reconcile(ctx context.Context) (ReconcileResult, error) {
	st := e.Snapshot()
	now := e.clock.Now()
	if !st.Overdue(now) {
		return ReconcileResult{}, nil
	}
	res := ReconcileResult{Overdue: true}

	if e.answeredSince(ctx, st) {
		res.Answered = true
		e.mu.Lock()
		defer e.mu.Unlock()
		if e.state.IsRunning && e.state.SessionID == st.SessionID {
			e.scheduleCheckInAndNagsLocked()
		}
		return res, nil
	}
	if st.InputPresented {
		return res, nil
	}

	res.Prompt = true
	e.publish(Alarm{SessionID: st.SessionID, Reason: AlarmOverdue, At: now})

	if err := e.out.flush(ctx); err != nil {
		return res, err
	}
	pending, err := e.store.Pending(ctx)
	if err != nil {
		return res, err
	}
	if pending > 0 {
		return res, nil
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	if e.state.IsRunning && e.state.SessionID == st.SessionID && !e.state.InputPresented {
		e.scheduleNagsLocked()
		res.Escalated = true
	}
	return res, nil
}

// Flush waits until every intent issued so far has reached the store and
// surface.
func (e *Engine) Flush(ctx context.Context) error {
	return e.out.flush(ctx)
}

// Close applies outstanding intents and stops the outbound worker.
func (e *Engine) Close() {
	e.out.close()
}

func (e *Engine) answeredSince(ctx context.Context, st State) bool {
	if e.activity == nil || st.Anchor.IsZero() {
		return false
	}
	ok, err := e.activity.HasActivitySince(ctx, st.SessionID, st.Anchor)
	if err != nil {
		e.log.Warn("check activity log", zap.String("session_id", st.SessionID), zap.Error(err))
		return false
	}
	return ok
}
