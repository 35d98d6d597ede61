package storage

import (
	"context"
	"database/sql"
	"errors"
	"path/filepath"
	"testing"
	"time"
)

func setupRepo(t *testing.T) *SQLiteRepository {
	t.Helper()
	dbPath := filepath.Join(t.TempDir(), "checkin-test.db")
	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	if err := MigrateUp(db); err != nil {
		t.Fatalf("migrate up: %v", err)
	}

	repo, err := NewSQLiteRepository(db)
	if err != nil {
		t.Fatalf("new repo: %v", err)
	}
	return repo
}

func parseRFC3339(t *testing.T, value string) time.Time {
	t.Helper()
	out, err := time.Parse(time.RFC3339, value)
	if err != nil {
		t.Fatalf("parse time: %v", err)
	}
	return out
}

func TestSessionCRUDAndList(t *testing.T) {
	repo := setupRepo(t)
	ctx := context.Background()
	start := parseRFC3339(t, "2026-02-09T09:00:00Z")

	session := Session{ID: "session-1", StartTime: start, IsActive: true}
	if err := repo.CreateSession(ctx, session); err != nil {
		t.Fatalf("create session: %v", err)
	}

	got, err := repo.GetSession(ctx, session.ID)
	if err != nil {
		t.Fatalf("get session: %v", err)
	}
	if !got.IsActive || got.EndTime != nil || !got.StartTime.Equal(start) {
		t.Fatalf("unexpected session get result: %#v", got)
	}

	end := start.Add(90 * time.Minute)
	session.EndTime = &end
	session.IsActive = false
	if err := repo.UpdateSession(ctx, session); err != nil {
		t.Fatalf("update session: %v", err)
	}

	active := true
	actives, err := repo.ListSessions(ctx, SessionListFilter{Active: &active})
	if err != nil {
		t.Fatalf("list active: %v", err)
	}
	if len(actives) != 0 {
		t.Fatalf("expected no active sessions, got %#v", actives)
	}

	all, err := repo.ListSessions(ctx, SessionListFilter{})
	if err != nil {
		t.Fatalf("list all: %v", err)
	}
	if len(all) != 1 || all[0].EndTime == nil || !all[0].EndTime.Equal(end) {
		t.Fatalf("unexpected session list: %#v", all)
	}

	if err := repo.UpdateSession(ctx, Session{ID: "missing", StartTime: start}); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound on missing update, got %v", err)
	}
	if _, err := repo.GetSession(ctx, "missing"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound on missing get, got %v", err)
	}
}

func TestListSessionsNewestFirstWithPagination(t *testing.T) {
	repo := setupRepo(t)
	ctx := context.Background()
	base := parseRFC3339(t, "2026-02-09T08:00:00Z")

	for i, id := range []string{"s-a", "s-b", "s-c"} {
		if err := repo.CreateSession(ctx, Session{ID: id, StartTime: base.Add(time.Duration(i) * time.Hour)}); err != nil {
			t.Fatalf("create %s: %v", id, err)
		}
	}

	page, err := repo.ListSessions(ctx, SessionListFilter{Limit: 2})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(page) != 2 || page[0].ID != "s-c" || page[1].ID != "s-b" {
		t.Fatalf("unexpected first page: %#v", page)
	}

	rest, err := repo.ListSessions(ctx, SessionListFilter{Offset: 2})
	if err != nil {
		t.Fatalf("list offset: %v", err)
	}
	if len(rest) != 1 || rest[0].ID != "s-a" {
		t.Fatalf("unexpected offset page: %#v", rest)
	}
}

func TestCloseActiveSessions(t *testing.T) {
	repo := setupRepo(t)
	ctx := context.Background()
	start := parseRFC3339(t, "2026-02-09T08:00:00Z")
	closedAt := parseRFC3339(t, "2026-02-09T18:00:00Z")

	for _, id := range []string{"stale-1", "stale-2"} {
		if err := repo.CreateSession(ctx, Session{ID: id, StartTime: start, IsActive: true}); err != nil {
			t.Fatalf("create %s: %v", id, err)
		}
	}
	done := start.Add(time.Hour)
	if err := repo.CreateSession(ctx, Session{ID: "done", StartTime: start, EndTime: &done}); err != nil {
		t.Fatalf("create done: %v", err)
	}

	n, err := repo.CloseActiveSessions(ctx, closedAt)
	if err != nil {
		t.Fatalf("close active: %v", err)
	}
	if n != 2 {
		t.Fatalf("expected 2 closed sessions, got %d", n)
	}

	got, err := repo.GetSession(ctx, "stale-1")
	if err != nil {
		t.Fatalf("get stale-1: %v", err)
	}
	if got.IsActive || got.EndTime == nil || !got.EndTime.Equal(closedAt) {
		t.Fatalf("stale session not closed: %#v", got)
	}

	untouched, err := repo.GetSession(ctx, "done")
	if err != nil {
		t.Fatalf("get done: %v", err)
	}
	if untouched.EndTime == nil || !untouched.EndTime.Equal(done) {
		t.Fatalf("finished session end time changed: %#v", untouched)
	}
}

func TestActivityCRUDAndRangeList(t *testing.T) {
	repo := setupRepo(t)
	ctx := context.Background()
	start := parseRFC3339(t, "2026-02-09T09:00:00Z")

	if err := repo.CreateSession(ctx, Session{ID: "session-1", StartTime: start, IsActive: true}); err != nil {
		t.Fatalf("create session: %v", err)
	}

	items := []Activity{
		{ID: "a-1", SessionID: "session-1", Timestamp: start.Add(15 * time.Minute), Text: "Wrote tests"},
		{ID: "a-2", SessionID: "session-1", Timestamp: start.Add(30 * time.Minute), Text: "Reviewed PR"},
		{ID: "a-3", SessionID: "session-1", Timestamp: start.Add(25 * time.Hour), Text: "Next day"},
	}
	for _, item := range items {
		if err := repo.CreateActivity(ctx, item); err != nil {
			t.Fatalf("create %s: %v", item.ID, err)
		}
	}

	from := start.Truncate(24 * time.Hour)
	to := from.Add(24 * time.Hour)
	day, err := repo.ListActivities(ctx, ActivityListFilter{From: &from, To: &to})
	if err != nil {
		t.Fatalf("list day: %v", err)
	}
	if len(day) != 2 || day[0].ID != "a-1" || day[1].ID != "a-2" {
		t.Fatalf("unexpected day list: %#v", day)
	}

	item := items[0]
	item.Text = "Wrote more tests"
	if err := repo.UpdateActivity(ctx, item); err != nil {
		t.Fatalf("update activity: %v", err)
	}
	got, err := repo.GetActivity(ctx, item.ID)
	if err != nil {
		t.Fatalf("get activity: %v", err)
	}
	if got.Text != "Wrote more tests" {
		t.Fatalf("unexpected activity text: %q", got.Text)
	}

	if err := repo.DeleteActivity(ctx, "a-2"); err != nil {
		t.Fatalf("delete activity: %v", err)
	}
	if err := repo.DeleteActivity(ctx, "a-2"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound on second delete, got %v", err)
	}
}

func TestActivityRequiresExistingSession(t *testing.T) {
	repo := setupRepo(t)
	err := repo.CreateActivity(context.Background(), Activity{
		ID:        "orphan",
		SessionID: "nope",
		Timestamp: parseRFC3339(t, "2026-02-09T09:00:00Z"),
		Text:      "orphan",
	})
	if err == nil {
		t.Fatal("expected foreign key failure for unknown session")
	}
}

func TestHasActivitySince(t *testing.T) {
	repo := setupRepo(t)
	ctx := context.Background()
	start := parseRFC3339(t, "2026-02-09T09:00:00Z")

	if err := repo.CreateSession(ctx, Session{ID: "session-1", StartTime: start, IsActive: true}); err != nil {
		t.Fatalf("create session: %v", err)
	}
	if err := repo.CreateActivity(ctx, Activity{ID: "a-1", SessionID: "session-1", Timestamp: start.Add(10 * time.Minute).Add(500 * time.Millisecond), Text: "x"}); err != nil {
		t.Fatalf("create activity: %v", err)
	}

	cases := []struct {
		name  string
		since time.Time
		want  bool
	}{
		{name: "before", since: start, want: true},
		{name: "sub-second before", since: start.Add(10 * time.Minute), want: true},
		{name: "exact", since: start.Add(10 * time.Minute).Add(500 * time.Millisecond), want: false},
		{name: "after", since: start.Add(11 * time.Minute), want: false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := repo.HasActivitySince(ctx, "session-1", tc.since)
			if err != nil {
				t.Fatalf("has activity: %v", err)
			}
			if got != tc.want {
				t.Fatalf("HasActivitySince(%s) = %v, want %v", tc.since, got, tc.want)
			}
		})
	}

	other, err := repo.HasActivitySince(ctx, "session-2", start)
	if err != nil {
		t.Fatalf("has activity other: %v", err)
	}
	if other {
		t.Fatal("activity leaked across sessions")
	}
}

func TestSettingsUpsert(t *testing.T) {
	repo := setupRepo(t)
	ctx := context.Background()

	if _, err := repo.GetSettings(ctx); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound before first save, got %v", err)
	}

	now := parseRFC3339(t, "2026-02-09T09:00:00Z")
	in := Settings{UserName: "Sam", IntervalSeconds: 900, NotificationSound: "chime", UpdatedAt: now}
	if err := repo.SaveSettings(ctx, in); err != nil {
		t.Fatalf("save settings: %v", err)
	}

	in.IntervalSeconds = 300
	in.OnboardingComplete = true
	in.UpdatedAt = now.Add(time.Minute)
	if err := repo.SaveSettings(ctx, in); err != nil {
		t.Fatalf("resave settings: %v", err)
	}

	got, err := repo.GetSettings(ctx)
	if err != nil {
		t.Fatalf("get settings: %v", err)
	}
	if got.IntervalSeconds != 300 || !got.OnboardingComplete || got.UserName != "Sam" || got.NotificationSound != "chime" {
		t.Fatalf("unexpected settings: %#v", got)
	}
	if !got.UpdatedAt.Equal(now.Add(time.Minute)) {
		t.Fatalf("unexpected updated_at: %s", got.UpdatedAt)
	}
	if got.Model().Interval != 5*time.Minute {
		t.Fatalf("unexpected model interval: %s", got.Model().Interval)
	}
}

func TestSettingsRejectNonPositiveInterval(t *testing.T) {
	repo := setupRepo(t)
	err := repo.SaveSettings(context.Background(), Settings{IntervalSeconds: 0, NotificationSound: "default", UpdatedAt: time.Now()})
	if err == nil {
		t.Fatal("expected check constraint failure for zero interval")
	}
}
