package checkin

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/sandeepkv93/checkin/internal/engine"
	"github.com/sandeepkv93/checkin/internal/model"
)

// Handler turns user actions on the dashboard and the check-in prompt into
// engine transitions and journal writes.
type Handler struct {
	journal *Journal
	engine  *engine.Engine
	log     *zap.Logger

	mu       sync.Mutex
	settings model.Settings
}

func NewHandler(journal *Journal, eng *engine.Engine, log *zap.Logger) (*Handler, error) {
	if journal == nil {
		return nil, errors.New("checkin: journal is required")
	}
	if eng == nil {
		return nil, errors.New("checkin: engine is required")
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Handler{journal: journal, engine: eng, log: log, settings: model.DefaultSettings()}, nil
}

func (h *Handler) Journal() *Journal {
	return h.journal
}

func (h *Handler) Engine() *engine.Engine {
	return h.engine
}

// Launch closes sessions orphaned by a previous run and applies the saved
// settings to the engine.
func (h *Handler) Launch(ctx context.Context) (model.Settings, error) {
	closed, err := h.journal.CloseStale(ctx)
	if err != nil {
		return model.Settings{}, fmt.Errorf("close stale sessions: %w", err)
	}
	if closed > 0 {
		h.log.Info("closed stale sessions", zap.Int64("count", closed))
	}

	settings, err := h.journal.LoadSettings(ctx)
	if err != nil {
		return model.Settings{}, fmt.Errorf("load settings: %w", err)
	}
	if err := h.apply(settings); err != nil {
		return model.Settings{}, err
	}
	return settings, nil
}

func (h *Handler) Settings() model.Settings {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.settings
}

// UpdateSettings validates, persists and applies settings. A changed
// interval restarts a running countdown.
func (h *Handler) UpdateSettings(ctx context.Context, s model.Settings) error {
	if err := h.journal.SaveSettings(ctx, s); err != nil {
		return err
	}
	return h.apply(s)
}

func (h *Handler) SetInterval(ctx context.Context, interval time.Duration) error {
	s := h.Settings()
	s.Interval = interval
	return h.UpdateSettings(ctx, s)
}

func (h *Handler) apply(s model.Settings) error {
	h.mu.Lock()
	h.settings = s
	h.mu.Unlock()

	h.engine.SetSound(s.NotificationSound)
	if s.Interval == h.engine.Snapshot().Interval {
		return nil
	}
	return h.engine.UpdateInterval(s.Interval)
}

// Start begins a session in the engine and the journal. The journal session
// starts at the engine's anchor so that nothing it records counts as an
// answer to the first interval.
func (h *Handler) Start(ctx context.Context) (model.Session, error) {
	id, err := h.engine.StartSession()
	if err != nil {
		return model.Session{}, err
	}
	session, err := h.journal.OpenSession(ctx, id, h.engine.Snapshot().Anchor)
	if err != nil {
		h.engine.StopSession()
		return model.Session{}, err
	}
	return session, nil
}

// Stop ends the running session. It is a no-op when idle.
func (h *Handler) Stop(ctx context.Context) error {
	st := h.engine.Snapshot()
	if !st.IsRunning {
		return nil
	}
	h.engine.StopSession()
	if _, err := h.journal.CloseSession(ctx, st.SessionID); err != nil {
		return err
	}
	return nil
}

// BeginResponse is called when the check-in prompt appears. Queued reminders
// are silenced while the user types.
func (h *Handler) BeginResponse() {
	h.engine.SetInputPresented(true)
}

// Submit records the activity and starts the next interval.
func (h *Handler) Submit(ctx context.Context, text string) (model.Activity, error) {
	activity, err := h.record(ctx, text)
	if err != nil {
		return model.Activity{}, err
	}
	h.engine.SetInputPresented(false)
	if err := h.engine.ScheduleCheckInAndNags(); err != nil {
		return activity, err
	}
	return activity, nil
}

// SubmitAndStop records the activity and ends the session.
func (h *Handler) SubmitAndStop(ctx context.Context, text string) (model.Activity, error) {
	activity, err := h.record(ctx, text)
	if err != nil {
		return model.Activity{}, err
	}
	h.engine.SetInputPresented(false)
	return activity, h.Stop(ctx)
}

// Dismiss is called when the prompt is left without submitting. The check-in
// is still owed, so reminders escalate to a nag burst.
func (h *Handler) Dismiss() error {
	h.engine.SetInputPresented(false)
	if !h.engine.Snapshot().IsRunning {
		return nil
	}
	return h.engine.ScheduleNags()
}

// Resume reconciles the engine after the dashboard regains focus or on its
// periodic tick.
func (h *Handler) Resume(ctx context.Context) (engine.ReconcileResult, error) {
	return h.engine.Reconcile(ctx)
}

func (h *Handler) record(ctx context.Context, text string) (model.Activity, error) {
	st := h.engine.Snapshot()
	if !st.IsRunning {
		return model.Activity{}, ErrNoActiveSession
	}
	return h.journal.Record(ctx, st.SessionID, text)
}
