package storage

import (
	"context"
	"errors"
	"time"
)

var ErrNotFound = errors.New("storage: not found")

type Repository interface {
	CreateSession(ctx context.Context, in Session) error
	GetSession(ctx context.Context, id string) (Session, error)
	UpdateSession(ctx context.Context, in Session) error
	ListSessions(ctx context.Context, filter SessionListFilter) ([]Session, error)
	CloseActiveSessions(ctx context.Context, at time.Time) (int64, error)

	CreateActivity(ctx context.Context, in Activity) error
	GetActivity(ctx context.Context, id string) (Activity, error)
	UpdateActivity(ctx context.Context, in Activity) error
	DeleteActivity(ctx context.Context, id string) error
	ListActivities(ctx context.Context, filter ActivityListFilter) ([]Activity, error)
	HasActivitySince(ctx context.Context, sessionID string, since time.Time) (bool, error)

	GetSettings(ctx context.Context) (Settings, error)
	SaveSettings(ctx context.Context, in Settings) error
}
