package engine

import "errors"

var (
	ErrInvalidInterval = errors.New("engine: invalid interval")
	ErrSessionActive   = errors.New("engine: session already active")
	ErrNotRunning      = errors.New("engine: no active session")
)
