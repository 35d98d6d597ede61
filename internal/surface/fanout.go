package surface

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/sandeepkv93/checkin/internal/engine"
)

// Fanout drives several surfaces as one. A member that fails to start is
// started again on each Update until it succeeds.
type Fanout struct {
	mu      sync.Mutex
	members []engine.CountdownSurface
	handles map[engine.SurfaceHandle][]memberHandle
}

type memberHandle struct {
	idx    int
	handle engine.SurfaceHandle
}

func NewFanout(members ...engine.CountdownSurface) *Fanout {
	return &Fanout{members: members, handles: make(map[engine.SurfaceHandle][]memberHandle)}
}

func (f *Fanout) Start(ctx context.Context, next time.Time) (engine.SurfaceHandle, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	started := make([]memberHandle, 0, len(f.members))
	var errs []error
	for i, m := range f.members {
		h, err := m.Start(ctx, next)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		started = append(started, memberHandle{idx: i, handle: h})
	}
	if len(started) == 0 && len(errs) > 0 {
		return "", errors.Join(errs...)
	}
	h := engine.SurfaceHandle(uuid.NewString())
	f.handles[h] = started
	return h, nil
}

func (f *Fanout) Update(ctx context.Context, h engine.SurfaceHandle, next time.Time) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	members, ok := f.handles[h]
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownHandle, h)
	}
	var errs []error
	present := make(map[int]bool, len(members))
	for _, mh := range members {
		present[mh.idx] = true
		if err := f.members[mh.idx].Update(ctx, mh.handle, next); err != nil {
			errs = append(errs, err)
		}
	}
	for i, m := range f.members {
		if present[i] {
			continue
		}
		mh, err := m.Start(ctx, next)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		members = append(members, memberHandle{idx: i, handle: mh})
	}
	f.handles[h] = members
	return errors.Join(errs...)
}

func (f *Fanout) End(ctx context.Context, h engine.SurfaceHandle) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	members, ok := f.handles[h]
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownHandle, h)
	}
	delete(f.handles, h)
	var errs []error
	for _, mh := range members {
		if err := f.members[mh.idx].End(ctx, mh.handle); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
