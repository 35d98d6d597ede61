package planner

import "time"

// Clock abstracts time so deadline math stays deterministic in tests.
type Clock interface {
	Now() time.Time
}

type SystemClock struct{}

func (SystemClock) Now() time.Time {
	return time.Now().UTC()
}

// ComputeDeadline returns the next check-in instant for an interval
// starting at now.
func ComputeDeadline(now time.Time, interval time.Duration) time.Time {
	return now.Add(interval)
}
