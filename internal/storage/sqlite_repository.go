package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "github.com/mattn/go-sqlite3"
)

// Fixed-width so stored timestamps compare correctly as text.
const sqliteTimeLayout = "2006-01-02T15:04:05.000000000Z07:00"

const settingsRowID = 1

type SQLiteRepository struct {
	db *sql.DB
}

func NewSQLiteRepository(db *sql.DB) (*SQLiteRepository, error) {
	if db == nil {
		return nil, errors.New("storage: nil db")
	}
	// The foreign_keys pragma is per connection.
	db.SetMaxOpenConns(1)
	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		return nil, fmt.Errorf("enable foreign keys: %w", err)
	}
	return &SQLiteRepository{db: db}, nil
}

// OpenSQLite opens the database at path, creating its directory, and
// applies migrations.
func OpenSQLite(path string) (*SQLiteRepository, error) {
	if dir := filepath.Dir(path); dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create db dir: %w", err)
		}
	}
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	if err := MigrateUp(db); err != nil {
		_ = db.Close()
		return nil, err
	}
	repo, err := NewSQLiteRepository(db)
	if err != nil {
		_ = db.Close()
		return nil, err
	}
	return repo, nil
}

func (r *SQLiteRepository) Close() error {
	return r.db.Close()
}

func (r *SQLiteRepository) CreateSession(ctx context.Context, in Session) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO sessions (id, start_time, end_time, is_active)
		VALUES (?, ?, ?, ?)`,
		in.ID, mustTime(in.StartTime), nullTime(in.EndTime), boolInt(in.IsActive),
	)
	return err
}

func (r *SQLiteRepository) GetSession(ctx context.Context, id string) (Session, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT id, start_time, end_time, is_active
		FROM sessions WHERE id = ?`, id)
	item, err := scanSession(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Session{}, ErrNotFound
		}
		return Session{}, err
	}
	return item, nil
}

func (r *SQLiteRepository) UpdateSession(ctx context.Context, in Session) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE sessions
		SET start_time = ?, end_time = ?, is_active = ?
		WHERE id = ?`,
		mustTime(in.StartTime), nullTime(in.EndTime), boolInt(in.IsActive), in.ID,
	)
	if err != nil {
		return err
	}
	return checkRowsAffected(res)
}

func (r *SQLiteRepository) ListSessions(ctx context.Context, filter SessionListFilter) ([]Session, error) {
	query := `SELECT id, start_time, end_time, is_active FROM sessions`
	args := make([]any, 0, 3)
	if filter.Active != nil {
		query += ` WHERE is_active = ?`
		args = append(args, boolInt(*filter.Active))
	}
	query += ` ORDER BY start_time DESC`
	query += applyPagination(&args, filter.Limit, filter.Offset)

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]Session, 0)
	for rows.Next() {
		item, scanErr := scanSession(rows)
		if scanErr != nil {
			return nil, scanErr
		}
		out = append(out, item)
	}
	return out, rows.Err()
}

// CloseActiveSessions stops every session still marked active, returning
// how many were closed.
func (r *SQLiteRepository) CloseActiveSessions(ctx context.Context, at time.Time) (int64, error) {
	res, err := r.db.ExecContext(ctx, `
		UPDATE sessions SET end_time = ?, is_active = 0
		WHERE is_active = 1`, mustTime(at))
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

func (r *SQLiteRepository) CreateActivity(ctx context.Context, in Activity) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO activities (id, session_id, timestamp, text)
		VALUES (?, ?, ?, ?)`,
		in.ID, in.SessionID, mustTime(in.Timestamp), in.Text,
	)
	return err
}

func (r *SQLiteRepository) GetActivity(ctx context.Context, id string) (Activity, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT id, session_id, timestamp, text
		FROM activities WHERE id = ?`, id)
	item, err := scanActivity(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Activity{}, ErrNotFound
		}
		return Activity{}, err
	}
	return item, nil
}

func (r *SQLiteRepository) UpdateActivity(ctx context.Context, in Activity) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE activities SET timestamp = ?, text = ?
		WHERE id = ?`,
		mustTime(in.Timestamp), in.Text, in.ID,
	)
	if err != nil {
		return err
	}
	return checkRowsAffected(res)
}

func (r *SQLiteRepository) DeleteActivity(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM activities WHERE id = ?`, id)
	if err != nil {
		return err
	}
	return checkRowsAffected(res)
}

func (r *SQLiteRepository) ListActivities(ctx context.Context, filter ActivityListFilter) ([]Activity, error) {
	query := `SELECT id, session_id, timestamp, text FROM activities`
	clauses := make([]string, 0, 3)
	args := make([]any, 0, 5)
	if filter.SessionID != "" {
		clauses = append(clauses, "session_id = ?")
		args = append(args, filter.SessionID)
	}
	if filter.From != nil {
		clauses = append(clauses, "timestamp >= ?")
		args = append(args, mustTime(*filter.From))
	}
	if filter.To != nil {
		clauses = append(clauses, "timestamp < ?")
		args = append(args, mustTime(*filter.To))
	}
	if len(clauses) > 0 {
		query += " WHERE " + strings.Join(clauses, " AND ")
	}
	query += ` ORDER BY timestamp ASC`
	query += applyPagination(&args, filter.Limit, filter.Offset)

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]Activity, 0)
	for rows.Next() {
		item, scanErr := scanActivity(rows)
		if scanErr != nil {
			return nil, scanErr
		}
		out = append(out, item)
	}
	return out, rows.Err()
}

func (r *SQLiteRepository) HasActivitySince(ctx context.Context, sessionID string, since time.Time) (bool, error) {
	var found int
	err := r.db.QueryRowContext(ctx, `
		SELECT EXISTS (
			SELECT 1 FROM activities WHERE session_id = ? AND timestamp > ?
		)`, sessionID, mustTime(since)).Scan(&found)
	if err != nil {
		return false, err
	}
	return found == 1, nil
}

// GetSettings returns ErrNotFound until settings have been saved once.
func (r *SQLiteRepository) GetSettings(ctx context.Context) (Settings, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT user_name, interval_seconds, notification_sound, onboarding_complete, updated_at
		FROM settings WHERE id = ?`, settingsRowID)
	var out Settings
	var onboarded int
	var updated string
	if err := row.Scan(&out.UserName, &out.IntervalSeconds, &out.NotificationSound, &onboarded, &updated); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Settings{}, ErrNotFound
		}
		return Settings{}, err
	}
	updatedAt, err := parseRequiredTime(updated)
	if err != nil {
		return Settings{}, err
	}
	out.OnboardingComplete = onboarded == 1
	out.UpdatedAt = updatedAt
	return out, nil
}

func (r *SQLiteRepository) SaveSettings(ctx context.Context, in Settings) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO settings (id, user_name, interval_seconds, notification_sound, onboarding_complete, updated_at)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			user_name = excluded.user_name,
			interval_seconds = excluded.interval_seconds,
			notification_sound = excluded.notification_sound,
			onboarding_complete = excluded.onboarding_complete,
			updated_at = excluded.updated_at`,
		settingsRowID, in.UserName, in.IntervalSeconds, in.NotificationSound, boolInt(in.OnboardingComplete), mustTime(in.UpdatedAt),
	)
	return err
}

func nullTime(v *time.Time) any {
	if v == nil {
		return nil
	}
	return v.UTC().Format(sqliteTimeLayout)
}

func mustTime(v time.Time) string {
	return v.UTC().Format(sqliteTimeLayout)
}

func parseNullableTime(v sql.NullString) (*time.Time, error) {
	if !v.Valid || v.String == "" {
		return nil, nil
	}
	tm, err := time.Parse(sqliteTimeLayout, v.String)
	if err != nil {
		return nil, err
	}
	return &tm, nil
}

func parseRequiredTime(v string) (time.Time, error) {
	return time.Parse(sqliteTimeLayout, v)
}

func boolInt(v bool) int {
	if v {
		return 1
	}
	return 0
}

func applyPagination(args *[]any, limit, offset int) string {
	sql := ""
	if limit > 0 {
		sql += " LIMIT ?"
		*args = append(*args, limit)
	}
	if offset > 0 {
		if limit <= 0 {
			sql += " LIMIT -1"
		}
		sql += " OFFSET ?"
		*args = append(*args, offset)
	}
	return sql
}

type scanner interface {
	Scan(dest ...any) error
}

func scanSession(s scanner) (Session, error) {
	var out Session
	var start string
	var end sql.NullString
	var active int
	if err := s.Scan(&out.ID, &start, &end, &active); err != nil {
		return Session{}, err
	}
	startAt, err := parseRequiredTime(start)
	if err != nil {
		return Session{}, err
	}
	endAt, err := parseNullableTime(end)
	if err != nil {
		return Session{}, err
	}
	out.StartTime = startAt
	out.EndTime = endAt
	out.IsActive = active == 1
	return out, nil
}

func scanActivity(s scanner) (Activity, error) {
	var out Activity
	var ts string
	if err := s.Scan(&out.ID, &out.SessionID, &ts, &out.Text); err != nil {
		return Activity{}, err
	}
	at, err := parseRequiredTime(ts)
	if err != nil {
		return Activity{}, err
	}
	out.Timestamp = at
	return out, nil
}

func checkRowsAffected(res sql.Result) error {
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}
