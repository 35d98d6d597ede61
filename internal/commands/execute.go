package commands

import "fmt"

type Result struct {
	Message string
}

type Handlers struct {
	Start    func() (Result, error)
	Stop     func() (Result, error)
	Interval func(IntervalArgs) (Result, error)
	Nag      func() (Result, error)
	Show     func(ShowArgs) (Result, error)
	Log      func(LogArgs) (Result, error)
}

func Execute(cmd Command, handlers Handlers) (Result, error) {
	switch cmd.Type {
	case TypeStart:
		if handlers.Start == nil {
			return Result{}, missing(cmd.Type)
		}
		return handlers.Start()
	case TypeStop:
		if handlers.Stop == nil {
			return Result{}, missing(cmd.Type)
		}
		return handlers.Stop()
	case TypeInterval:
		if handlers.Interval == nil {
			return Result{}, missing(cmd.Type)
		}
		return handlers.Interval(*cmd.Interval)
	case TypeNag:
		if handlers.Nag == nil {
			return Result{}, missing(cmd.Type)
		}
		return handlers.Nag()
	case TypeShow:
		if handlers.Show == nil {
			return Result{}, missing(cmd.Type)
		}
		return handlers.Show(*cmd.Show)
	case TypeLog:
		if handlers.Log == nil {
			return Result{}, missing(cmd.Type)
		}
		return handlers.Log(*cmd.Log)
	default:
		return Result{}, &CommandError{Code: ErrCodeUnknownCommand, Message: fmt.Sprintf("unknown command type: %s", cmd.Type)}
	}
}

func missing(t Type) error {
	return &CommandError{Code: ErrCodeHandlerMissing, Message: fmt.Sprintf("%s handler not configured", t)}
}
