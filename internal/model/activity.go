package model

import (
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"
)

var ErrEmptyActivity = errors.New("model: activity text is required")

// StartedTrackingText is recorded for the first session of a calendar day.
const StartedTrackingText = "Started Tracking"

type Activity struct {
	ID        string
	SessionID string
	Timestamp time.Time
	Text      string
}

func NewActivity(id, sessionID, text string, at time.Time) (Activity, error) {
	a := Activity{ID: id, SessionID: sessionID, Timestamp: at, Text: strings.TrimSpace(text)}
	if err := a.Validate(); err != nil {
		return Activity{}, err
	}
	return a, nil
}

func (a Activity) Validate() error {
	if strings.TrimSpace(a.ID) == "" {
		return errors.New("model: activity id is required")
	}
	if strings.TrimSpace(a.SessionID) == "" {
		return errors.New("model: activity session_id is required")
	}
	if strings.TrimSpace(a.Text) == "" {
		return ErrEmptyActivity
	}
	if a.Timestamp.IsZero() {
		return errors.New("model: activity timestamp is required")
	}
	return nil
}

// SameDay reports whether a and b fall on the same calendar day in loc.
func SameDay(a, b time.Time, loc *time.Location) bool {
	if loc == nil {
		loc = time.Local
	}
	ay, am, ad := a.In(loc).Date()
	by, bm, bd := b.In(loc).Date()
	return ay == by && am == bm && ad == bd
}

// ActivitiesOn returns the activities of the given day sorted by timestamp.
func ActivitiesOn(items []Activity, day time.Time, loc *time.Location) []Activity {
	out := make([]Activity, 0, len(items))
	for _, a := range items {
		if SameDay(a.Timestamp, day, loc) {
			out = append(out, a)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Timestamp.Before(out[j].Timestamp)
	})
	return out
}

// TrackedSpan is the time between the first and last activity of a sorted day.
func TrackedSpan(day []Activity) time.Duration {
	if len(day) < 2 {
		return 0
	}
	return day[len(day)-1].Timestamp.Sub(day[0].Timestamp)
}

func FormatSpan(d time.Duration) string {
	if d < 0 {
		d = 0
	}
	h := int(d / time.Hour)
	m := int((d % time.Hour) / time.Minute)
	if h == 0 {
		return fmt.Sprintf("%dm", m)
	}
	return fmt.Sprintf("%dh %dm", h, m)
}
