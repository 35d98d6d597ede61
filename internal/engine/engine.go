// Package engine owns the check-in timeline: which reminders are pending,
// when the next check-in is due, and what the countdown surface shows.
package engine

import (
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/sandeepkv93/checkin/internal/model"
	"github.com/sandeepkv93/checkin/internal/planner"
)

// State is a copy of the engine's observable state. SessionID and
// NextCheckIn are set exactly when IsRunning is true.
type State struct {
	IsRunning      bool
	SessionID      string
	Interval       time.Duration
	NextCheckIn    time.Time
	InputPresented bool
	Mode           planner.Mode
	// Anchor is when the current interval began.
	Anchor time.Time
	// PlannedAt is when the pending batch was planned. Every event of that
	// batch fires strictly after it.
	PlannedAt time.Time
}

func (s State) Remaining(now time.Time) time.Duration {
	if !s.IsRunning {
		return 0
	}
	if d := s.NextCheckIn.Sub(now); d > 0 {
		return d
	}
	return 0
}

func (s State) Overdue(now time.Time) bool {
	return s.IsRunning && now.After(s.NextCheckIn)
}

type Options struct {
	Store    NotificationStore
	Surface  CountdownSurface
	Activity ActivityLog
	Clock    planner.Clock
	Planner  *planner.Planner
	Logger   *zap.Logger
	NewID    func() string
	Interval time.Duration
	Sound    string
}

type Engine struct {
	mu       sync.Mutex
	state    State
	clock    planner.Clock
	planner  *planner.Planner
	store    NotificationStore
	activity ActivityLog
	log      *zap.Logger
	newID    func() string
	sound    string
	out      *outbox

	subMu  sync.Mutex
	subs   map[int]chan Alarm
	nextID int
}

func New(opts Options) (*Engine, error) {
	if opts.Store == nil {
		return nil, fmt.Errorf("engine: notification store is required")
	}
	if opts.Surface == nil {
		opts.Surface = noopSurface{}
	}
	if opts.Clock == nil {
		opts.Clock = planner.SystemClock{}
	}
	if opts.Planner == nil {
		opts.Planner = planner.New()
	}
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	if opts.NewID == nil {
		opts.NewID = uuid.NewString
	}
	if opts.Interval == 0 {
		opts.Interval = model.DefaultInterval
	}
	if opts.Interval < 0 {
		return nil, fmt.Errorf("%w: %s", ErrInvalidInterval, opts.Interval)
	}

	e := &Engine{
		state:    State{Interval: opts.Interval},
		clock:    opts.Clock,
		planner:  opts.Planner,
		store:    opts.Store,
		activity: opts.Activity,
		log:      opts.Logger,
		newID:    opts.NewID,
		sound:    opts.Sound,
		subs:     make(map[int]chan Alarm),
	}
	e.out = newOutbox(opts.Store, opts.Surface, opts.Logger)
	e.out.start()
	return e, nil
}

func (e *Engine) Snapshot() State {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.state
}

// StartSession begins a new session and its first interval. Starting while a
// session is active is rejected; stop the current session first.
func (e *Engine) StartSession() (string, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.state.IsRunning {
		return "", fmt.Errorf("%w: %s", ErrSessionActive, e.state.SessionID)
	}
	id := e.newID()
	e.state.IsRunning = true
	e.state.SessionID = id
	e.log.Info("session started", zap.String("session_id", id), zap.Duration("interval", e.state.Interval))
	e.scheduleCheckInAndNagsLocked()
	return id, nil
}

// StopSession returns the engine to idle. It is a no-op when already idle.
func (e *Engine) StopSession() {
	e.mu.Lock()
	defer e.mu.Unlock()
	if !e.state.IsRunning {
		return
	}
	e.log.Info("session stopped", zap.String("session_id", e.state.SessionID))
	e.state = State{Interval: e.state.Interval}
	e.out.cancelAll()
	e.syncSurfaceLocked()
}

// UpdateInterval stores the new interval and, while a session runs, restarts
// the countdown from now in regular mode.
func (e *Engine) UpdateInterval(d time.Duration) error {
	if d <= 0 {
		return fmt.Errorf("%w: %s", ErrInvalidInterval, d)
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	e.state.Interval = d
	if e.state.IsRunning {
		e.scheduleCheckInAndNagsLocked()
	}
	return nil
}

// SetSound changes the sound used by subsequently planned notifications.
func (e *Engine) SetSound(sound string) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.sound = sound
}

// ScheduleCheckInAndNags enters a fresh regular interval anchored at now.
func (e *Engine) ScheduleCheckInAndNags() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if !e.state.IsRunning {
		return ErrNotRunning
	}
	e.scheduleCheckInAndNagsLocked()
	return nil
}

// ScheduleNags escalates immediately: the pending set becomes a nag burst
// starting one spacing from now.
func (e *Engine) ScheduleNags() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if !e.state.IsRunning {
		return ErrNotRunning
	}
	e.scheduleNagsLocked()
	return nil
}

// ClearPendingNotifications cancels every pending reminder without touching
// the engine state.
func (e *Engine) ClearPendingNotifications() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.out.cancelAll()
}

// SetInputPresented records whether the check-in prompt is on screen.
// Presenting it silences queued reminders.
func (e *Engine) SetInputPresented(presented bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.state.InputPresented = presented
	if presented && e.state.IsRunning {
		e.out.cancelAll()
	}
}

// SyncSurface pushes the current deadline to the countdown surface.
func (e *Engine) SyncSurface() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.syncSurfaceLocked()
}

func (e *Engine) scheduleCheckInAndNagsLocked() {
	now := e.clock.Now()
	events, err := e.planner.Plan(e.state.SessionID, now, e.state.Interval, planner.ModeRegular)
	if err != nil {
		e.log.Error("plan regular interval", zap.String("session_id", e.state.SessionID), zap.Error(err))
		return
	}
	e.state.Anchor = now
	e.state.PlannedAt = now
	e.state.NextCheckIn = planner.ComputeDeadline(now, e.state.Interval)
	e.state.Mode = planner.ModeRegular
	e.out.replace(e.notifications(events))
	e.syncSurfaceLocked()
	e.log.Debug("regular interval scheduled",
		zap.String("session_id", e.state.SessionID),
		zap.Time("next_check_in", e.state.NextCheckIn),
		zap.Int("events", len(events)),
	)
}

func (e *Engine) scheduleNagsLocked() {
	now := e.clock.Now()
	events, err := e.planner.Plan(e.state.SessionID, now, e.state.Interval, planner.ModeNagBurst)
	if err != nil {
		e.log.Error("plan nag burst", zap.String("session_id", e.state.SessionID), zap.Error(err))
		return
	}
	spacing := e.planner.NagSpacing
	if spacing <= 0 {
		spacing = planner.DefaultNagSpacing
	}
	e.state.PlannedAt = now
	e.state.NextCheckIn = now.Add(spacing)
	e.state.Mode = planner.ModeNagBurst
	e.out.replace(e.notifications(events))
	e.syncSurfaceLocked()
	e.log.Info("nag burst scheduled",
		zap.String("session_id", e.state.SessionID),
		zap.Time("next_check_in", e.state.NextCheckIn),
		zap.Int("events", len(events)),
	)
}

func (e *Engine) syncSurfaceLocked() {
	e.out.surface(surfaceTarget{active: e.state.IsRunning, next: e.state.NextCheckIn})
}

func (e *Engine) notifications(events []model.ReminderEvent) []model.Notification {
	out := make([]model.Notification, 0, len(events))
	for _, ev := range events {
		out = append(out, model.NewCheckInNotification(ev, e.sound))
	}
	return out
}
