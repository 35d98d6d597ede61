package model

import (
	"errors"
	"strings"
	"time"
)

type Session struct {
	ID        string
	StartTime time.Time
	EndTime   *time.Time
	IsActive  bool
}

func NewSession(id string, start time.Time) Session {
	return Session{ID: id, StartTime: start, IsActive: true}
}

// Stop marks the session finished. Stopping twice keeps the first end time.
func (s *Session) Stop(at time.Time) {
	if !s.IsActive {
		return
	}
	end := at
	s.EndTime = &end
	s.IsActive = false
}

func (s Session) Duration(now time.Time) time.Duration {
	end := now
	if s.EndTime != nil {
		end = *s.EndTime
	}
	if end.Before(s.StartTime) {
		return 0
	}
	return end.Sub(s.StartTime)
}

func (s Session) Validate() error {
	if strings.TrimSpace(s.ID) == "" {
		return errors.New("model: session id is required")
	}
	if s.StartTime.IsZero() {
		return errors.New("model: session start_time is required")
	}
	if s.IsActive && s.EndTime != nil {
		return errors.New("model: end_time must be nil while session is active")
	}
	if !s.IsActive && s.EndTime == nil {
		return errors.New("model: end_time is required when session is stopped")
	}
	if s.EndTime != nil && s.EndTime.Before(s.StartTime) {
		return errors.New("model: end_time must not precede start_time")
	}
	return nil
}
