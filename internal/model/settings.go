package model

import (
	"errors"
	"fmt"
	"time"
)

var ErrInvalidInterval = errors.New("model: interval must be positive")

const DefaultInterval = 15 * time.Minute

// SoundOptions are the notification sounds the settings form offers.
var SoundOptions = []string{"default", "gentle", "chime", "bell"}

type Settings struct {
	UserName           string
	Interval           time.Duration
	NotificationSound  string
	OnboardingComplete bool
}

func DefaultSettings() Settings {
	return Settings{
		Interval:          DefaultInterval,
		NotificationSound: "default",
	}
}

func (s Settings) Validate() error {
	if s.Interval <= 0 {
		return fmt.Errorf("%w: %s", ErrInvalidInterval, s.Interval)
	}
	if s.Interval%time.Second != 0 {
		return fmt.Errorf("%w: %s is not a whole number of seconds", ErrInvalidInterval, s.Interval)
	}
	if !validSound(s.NotificationSound) {
		return fmt.Errorf("model: unknown notification sound %q", s.NotificationSound)
	}
	return nil
}

func (s Settings) DisplayName() string {
	if s.UserName == "" {
		return "Friend"
	}
	return s.UserName
}

func validSound(name string) bool {
	for _, opt := range SoundOptions {
		if opt == name {
			return true
		}
	}
	return false
}

// FormatInterval renders an interval the way the dashboard describes it.
func FormatInterval(d time.Duration) string {
	secs := int(d / time.Second)
	if secs < 60 {
		return fmt.Sprintf("%d seconds", secs)
	}
	return fmt.Sprintf("%d minutes", secs/60)
}

// FormatBlock renders an interval as a compact history label.
func FormatBlock(d time.Duration) string {
	secs := int(d / time.Second)
	if secs < 60 {
		return fmt.Sprintf("%ds block", secs)
	}
	return fmt.Sprintf("%dm block", secs/60)
}

// FormatCountdown renders remaining time as MM:SS, clamped at zero.
func FormatCountdown(remaining time.Duration) string {
	secs := int(remaining / time.Second)
	if secs < 0 {
		secs = 0
	}
	return fmt.Sprintf("%02d:%02d", secs/60, secs%60)
}
