// Package surface implements countdown displays that mirror the engine's
// next check-in.
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

var ErrUnknownHandle = errors.New("surface: unknown handle")

// Pinned keeps the countdown in memory for an in-process view to render.
type Pinned struct {
	mu     sync.RWMutex
	handle engine.SurfaceHandle
	next   time.Time
	live   bool
}

func NewPinned() *Pinned {
	return &Pinned{}
}

func (p *Pinned) Start(_ context.Context, next time.Time) (engine.SurfaceHandle, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.handle = engine.SurfaceHandle(uuid.NewString())
	p.next = next
	p.live = true
	return p.handle, nil
}

func (p *Pinned) Update(_ context.Context, h engine.SurfaceHandle, next time.Time) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if !p.live || h != p.handle {
		return fmt.Errorf("%w: %s", ErrUnknownHandle, h)
	}
	p.next = next
	return nil
}

func (p *Pinned) End(_ context.Context, h engine.SurfaceHandle) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if !p.live || h != p.handle {
		return fmt.Errorf("%w: %s", ErrUnknownHandle, h)
	}
	p.live = false
	p.handle = ""
	p.next = time.Time{}
	return nil
}

// View reports the displayed deadline and whether the surface exists.
func (p *Pinned) View() (time.Time, bool) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.next, p.live
}
