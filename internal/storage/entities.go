package storage

import (
	"time"

	"github.com/sandeepkv93/checkin/internal/model"
)

type Session struct {
	ID        string
	StartTime time.Time
	EndTime   *time.Time
	IsActive  bool
}

type Activity struct {
	ID        string
	SessionID string
	Timestamp time.Time
	Text      string
}

type Settings struct {
	UserName           string
	IntervalSeconds    int
	NotificationSound  string
	OnboardingComplete bool
	UpdatedAt          time.Time
}

type SessionListFilter struct {
	Active *bool
	Limit  int
	Offset int
}

type ActivityListFilter struct {
	SessionID string
	From      *time.Time
	To        *time.Time
	Limit     int
	Offset    int
}

func SessionFromModel(s model.Session) Session {
	return Session{ID: s.ID, StartTime: s.StartTime, EndTime: s.EndTime, IsActive: s.IsActive}
}

func (s Session) Model() model.Session {
	return model.Session{ID: s.ID, StartTime: s.StartTime, EndTime: s.EndTime, IsActive: s.IsActive}
}

func ActivityFromModel(a model.Activity) Activity {
	return Activity{ID: a.ID, SessionID: a.SessionID, Timestamp: a.Timestamp, Text: a.Text}
}

func (a Activity) Model() model.Activity {
	return model.Activity{ID: a.ID, SessionID: a.SessionID, Timestamp: a.Timestamp, Text: a.Text}
}

func SettingsFromModel(s model.Settings, now time.Time) Settings {
	return Settings{
		UserName:           s.UserName,
		IntervalSeconds:    int(s.Interval / time.Second),
		NotificationSound:  s.NotificationSound,
		OnboardingComplete: s.OnboardingComplete,
		UpdatedAt:          now,
	}
}

func (s Settings) Model() model.Settings {
	return model.Settings{
		UserName:           s.UserName,
		Interval:           time.Duration(s.IntervalSeconds) * time.Second,
		NotificationSound:  s.NotificationSound,
		OnboardingComplete: s.OnboardingComplete,
	}
}
