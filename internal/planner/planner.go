// Package planner computes the set of reminder events that should be pending
// for a check-in deadline.
package planner

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/sandeepkv93/checkin/internal/model"
)

const (
	DefaultNagCount   = 60
	DefaultNagSpacing = time.Second
)

type Mode string

const (
	// ModeRegular enters a fresh interval: one primary event followed by
	// a burst of nags.
	ModeRegular Mode = "regular"
	// ModeNagBurst escalates immediately: nags only, starting one spacing
	// after the anchor.
	ModeNagBurst Mode = "nag_burst"
)

func (m Mode) IsValid() bool {
	return m == ModeRegular || m == ModeNagBurst
}

type Planner struct {
	NagCount   int
	NagSpacing time.Duration
	NewID      func() string
}

func New() *Planner {
	return &Planner{
		NagCount:   DefaultNagCount,
		NagSpacing: DefaultNagSpacing,
		NewID:      uuid.NewString,
	}
}

// Plan returns the ordered events for base. In ModeRegular the primary fires
// at base+interval and nag i at base+interval+i*spacing. In ModeNagBurst
// interval is ignored and nag i fires at base+i*spacing.
func (p *Planner) Plan(sessionID string, base time.Time, interval time.Duration, mode Mode) ([]model.ReminderEvent, error) {
	if !mode.IsValid() {
		return nil, fmt.Errorf("planner: unknown mode %q", mode)
	}
	if mode == ModeRegular && interval <= 0 {
		return nil, fmt.Errorf("planner: interval must be positive, got %s", interval)
	}
	count := p.NagCount
	if count < 0 {
		count = 0
	}
	spacing := p.NagSpacing
	if spacing <= 0 {
		spacing = DefaultNagSpacing
	}
	newID := p.NewID
	if newID == nil {
		newID = uuid.NewString
	}

	out := make([]model.ReminderEvent, 0, count+1)
	anchor := base
	if mode == ModeRegular {
		anchor = ComputeDeadline(base, interval)
		out = append(out, model.ReminderEvent{
			ID:        newID(),
			SessionID: sessionID,
			FireAt:    anchor,
			Kind:      model.ReminderKindPrimary,
		})
	}
	for i := 1; i <= count; i++ {
		out = append(out, model.ReminderEvent{
			ID:        newID(),
			SessionID: sessionID,
			FireAt:    anchor.Add(time.Duration(i) * spacing),
			Kind:      model.ReminderKindNag,
			Sequence:  i,
		})
	}
	return out, nil
}

// FirstFire is the earliest fire time of a plan, the instant a countdown
// should show.
func FirstFire(events []model.ReminderEvent) (time.Time, bool) {
	if len(events) == 0 {
		return time.Time{}, false
	}
	first := events[0].FireAt
	for _, ev := range events[1:] {
		if ev.FireAt.Before(first) {
			first = ev.FireAt
		}
	}
	return first, true
}
