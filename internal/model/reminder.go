package model

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

var ErrInvalidReminderKind = errors.New("model: invalid reminder kind")

type ReminderKind string

const (
	ReminderKindPrimary ReminderKind = "Primary"
	ReminderKindNag     ReminderKind = "Nag"
)

func (k ReminderKind) IsValid() bool {
	switch k {
	case ReminderKindPrimary, ReminderKindNag:
		return true
	default:
		return false
	}
}

// ReminderEvent is one pending check-in notification. Events are never
// updated in place: every replan produces a fresh set with fresh IDs.
type ReminderEvent struct {
	ID        string
	SessionID string
	FireAt    time.Time
	Kind      ReminderKind
	// Sequence is 1-based for nags and 0 for the primary event.
	Sequence int
}

func (r ReminderEvent) IsNag() bool {
	return r.Kind == ReminderKindNag
}

func (r ReminderEvent) Validate() error {
	if strings.TrimSpace(r.ID) == "" {
		return errors.New("model: reminder id is required")
	}
	if strings.TrimSpace(r.SessionID) == "" {
		return errors.New("model: reminder session_id is required")
	}
	if r.FireAt.IsZero() {
		return errors.New("model: reminder fire_at is required")
	}
	if !r.Kind.IsValid() {
		return fmt.Errorf("%w: %q", ErrInvalidReminderKind, r.Kind)
	}
	if r.Kind == ReminderKindNag && r.Sequence < 1 {
		return errors.New("model: nag reminder sequence must be positive")
	}
	if r.Kind == ReminderKindPrimary && r.Sequence != 0 {
		return errors.New("model: primary reminder sequence must be zero")
	}
	return nil
}

const (
	NotificationCategory = "checkin-alarm"
	NotificationThread   = "checkin"
)

// Notification is what a pending-notification store is asked to deliver.
type Notification struct {
	Event    ReminderEvent
	Title    string
	Body     string
	Category string
	Thread   string
	Sound    string
}

func NewCheckInNotification(ev ReminderEvent, sound string) Notification {
	title := "Check-in!"
	body := "Time to log your activity! What did you accomplish?"
	if ev.IsNag() {
		title = "Check-in overdue!"
		body = fmt.Sprintf("You missed a check-in. Log your activity now (reminder %d).", ev.Sequence)
	}
	if strings.TrimSpace(sound) == "" {
		sound = "default"
	}
	return Notification{
		Event:    ev,
		Title:    title,
		Body:     body,
		Category: NotificationCategory,
		Thread:   NotificationThread,
		Sound:    sound,
	}
}
