// Package checkin connects the scheduling engine to the persisted record of
// sessions, activities and settings.
package checkin

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/sandeepkv93/checkin/internal/model"
	"github.com/sandeepkv93/checkin/internal/planner"
	"github.com/sandeepkv93/checkin/internal/storage"
)

var ErrNoActiveSession = errors.New("checkin: no active session")

// Journal is the persistence half of check-in handling. It needs no engine
// and is shared by the dashboard and the one-shot CLI commands.
type Journal struct {
	repo  storage.Repository
	clock planner.Clock
	newID func() string
	loc   *time.Location
}

type JournalOptions struct {
	Repo     storage.Repository
	Clock    planner.Clock
	NewID    func() string
	Location *time.Location
}

func NewJournal(opts JournalOptions) (*Journal, error) {
	if opts.Repo == nil {
		return nil, errors.New("checkin: repository is required")
	}
	if opts.Clock == nil {
		opts.Clock = planner.SystemClock{}
	}
	if opts.NewID == nil {
		opts.NewID = uuid.NewString
	}
	if opts.Location == nil {
		opts.Location = time.Local
	}
	return &Journal{repo: opts.Repo, clock: opts.Clock, newID: opts.NewID, loc: opts.Location}, nil
}

func (j *Journal) Location() *time.Location {
	return j.loc
}

// CloseStale ends sessions left active by a process that did not exit
// cleanly. Nothing is scheduled across restarts, so they cannot resume.
func (j *Journal) CloseStale(ctx context.Context) (int64, error) {
	return j.repo.CloseActiveSessions(ctx, j.clock.Now())
}

// OpenSession persists a new active session starting at start. The first
// session of a calendar day also records a "Started Tracking" activity
// stamped at start, so it never counts as an answer to the first interval.
// A zero start means now.
func (j *Journal) OpenSession(ctx context.Context, id string, start time.Time) (model.Session, error) {
	now := start
	if now.IsZero() {
		now = j.clock.Now()
	}
	session := model.NewSession(id, now)
	if err := session.Validate(); err != nil {
		return model.Session{}, err
	}

	first, err := j.firstOfDay(ctx, now)
	if err != nil {
		return model.Session{}, err
	}
	if err := j.repo.CreateSession(ctx, storage.SessionFromModel(session)); err != nil {
		return model.Session{}, fmt.Errorf("create session: %w", err)
	}
	if first {
		if _, err := j.recordAt(ctx, session.ID, model.StartedTrackingText, now); err != nil {
			return model.Session{}, err
		}
	}
	return session, nil
}

func (j *Journal) CloseSession(ctx context.Context, id string) (model.Session, error) {
	row, err := j.repo.GetSession(ctx, id)
	if err != nil {
		return model.Session{}, fmt.Errorf("get session %s: %w", id, err)
	}
	session := row.Model()
	session.Stop(j.clock.Now())
	if err := j.repo.UpdateSession(ctx, storage.SessionFromModel(session)); err != nil {
		return model.Session{}, fmt.Errorf("update session %s: %w", id, err)
	}
	return session, nil
}

// ActiveSession returns the most recently started active session.
func (j *Journal) ActiveSession(ctx context.Context) (model.Session, error) {
	active := true
	rows, err := j.repo.ListSessions(ctx, storage.SessionListFilter{Active: &active, Limit: 1})
	if err != nil {
		return model.Session{}, err
	}
	if len(rows) == 0 {
		return model.Session{}, ErrNoActiveSession
	}
	return rows[0].Model(), nil
}

func (j *Journal) Sessions(ctx context.Context, limit int) ([]model.Session, error) {
	rows, err := j.repo.ListSessions(ctx, storage.SessionListFilter{Limit: limit})
	if err != nil {
		return nil, err
	}
	out := make([]model.Session, 0, len(rows))
	for _, row := range rows {
		out = append(out, row.Model())
	}
	return out, nil
}

// Record stores a trimmed activity for the session. Blank text is rejected.
func (j *Journal) Record(ctx context.Context, sessionID, text string) (model.Activity, error) {
	return j.recordAt(ctx, sessionID, text, j.clock.Now())
}

func (j *Journal) recordAt(ctx context.Context, sessionID, text string, at time.Time) (model.Activity, error) {
	activity, err := model.NewActivity(j.newID(), sessionID, text, at)
	if err != nil {
		return model.Activity{}, err
	}
	if err := j.repo.CreateActivity(ctx, storage.ActivityFromModel(activity)); err != nil {
		return model.Activity{}, fmt.Errorf("create activity: %w", err)
	}
	return activity, nil
}

// HasActivitySince lets the engine see check-ins recorded through the
// journal.
func (j *Journal) HasActivitySince(ctx context.Context, sessionID string, since time.Time) (bool, error) {
	return j.repo.HasActivitySince(ctx, sessionID, since)
}

type DayOverview struct {
	Date       time.Time
	Activities []model.Activity
	Span       time.Duration
}

// Day returns the activities recorded on the calendar day containing day.
func (j *Journal) Day(ctx context.Context, day time.Time) (DayOverview, error) {
	from, to := j.dayBounds(day)
	rows, err := j.repo.ListActivities(ctx, storage.ActivityListFilter{From: &from, To: &to})
	if err != nil {
		return DayOverview{}, err
	}
	items := make([]model.Activity, 0, len(rows))
	for _, row := range rows {
		items = append(items, row.Model())
	}
	items = model.ActivitiesOn(items, day, j.loc)
	return DayOverview{Date: from, Activities: items, Span: model.TrackedSpan(items)}, nil
}

// LoadSettings returns the saved settings, or the defaults before the first
// save.
func (j *Journal) LoadSettings(ctx context.Context) (model.Settings, error) {
	row, err := j.repo.GetSettings(ctx)
	if errors.Is(err, storage.ErrNotFound) {
		return model.DefaultSettings(), nil
	}
	if err != nil {
		return model.Settings{}, err
	}
	return row.Model(), nil
}

func (j *Journal) SaveSettings(ctx context.Context, s model.Settings) error {
	if err := s.Validate(); err != nil {
		return err
	}
	return j.repo.SaveSettings(ctx, storage.SettingsFromModel(s, j.clock.Now()))
}

// SeedSettings saves s only when nothing has been saved yet. It reports
// whether s was written.
func (j *Journal) SeedSettings(ctx context.Context, s model.Settings) (bool, error) {
	_, err := j.repo.GetSettings(ctx)
	if err == nil {
		return false, nil
	}
	if !errors.Is(err, storage.ErrNotFound) {
		return false, err
	}
	if err := j.SaveSettings(ctx, s); err != nil {
		return false, err
	}
	return true, nil
}

func (j *Journal) firstOfDay(ctx context.Context, now time.Time) (bool, error) {
	from, to := j.dayBounds(now)
	rows, err := j.repo.ListActivities(ctx, storage.ActivityListFilter{From: &from, To: &to, Limit: 1})
	if err != nil {
		return false, err
	}
	return len(rows) == 0, nil
}

func (j *Journal) dayBounds(day time.Time) (time.Time, time.Time) {
	local := day.In(j.loc)
	from := time.Date(local.Year(), local.Month(), local.Day(), 0, 0, 0, 0, j.loc)
	return from, from.AddDate(0, 0, 1)
}
