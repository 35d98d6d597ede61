package engine

import (
	"context"
	"time"

	"github.com/sandeepkv93/checkin/internal/model"
)

// NotificationStore is the pending-notification queue the engine owns. The
// engine only ever clears it and repopulates it, so implementations need not
// care about ordering between batches.
type NotificationStore interface {
	CancelAll(ctx context.Context) error
	Enqueue(ctx context.Context, n model.Notification) error
	Pending(ctx context.Context) (int, error)
}

type SurfaceHandle string

// CountdownSurface is a glanceable display mirroring the next check-in.
type CountdownSurface interface {
	Start(ctx context.Context, next time.Time) (SurfaceHandle, error)
	Update(ctx context.Context, h SurfaceHandle, next time.Time) error
	End(ctx context.Context, h SurfaceHandle) error
}

// ActivityLog answers whether the user already checked in. Only records
// strictly after since count.
type ActivityLog interface {
	HasActivitySince(ctx context.Context, sessionID string, since time.Time) (bool, error)
}

type noopSurface struct{}

func (noopSurface) Start(context.Context, time.Time) (SurfaceHandle, error) { return "noop", nil }
func (noopSurface) Update(context.Context, SurfaceHandle, time.Time) error  { return nil }
func (noopSurface) End(context.Context, SurfaceHandle) error                { return nil }
