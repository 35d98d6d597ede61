package commands

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

type Type string

const (
	TypeStart    Type = "start"
	TypeStop     Type = "stop"
	TypeInterval Type = "interval"
	TypeNag      Type = "nag"
	TypeShow     Type = "show"
	TypeLog      Type = "log"
)

type ErrorCode string

const (
	ErrCodeEmptyInput      ErrorCode = "empty_input"
	ErrCodeUnknownCommand  ErrorCode = "unknown_command"
	ErrCodeInvalidArgument ErrorCode = "invalid_argument"
	ErrCodeHandlerMissing  ErrorCode = "handler_missing"
)

type CommandError struct {
	Code    ErrorCode
	Message string
}

func (e *CommandError) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

type IntervalArgs struct {
	Interval time.Duration
}

type ShowSubject string

const (
	ShowToday     ShowSubject = "today"
	ShowYesterday ShowSubject = "yesterday"
	ShowDate      ShowSubject = "date"
)

type ShowArgs struct {
	Subject ShowSubject
	// Date is set when Subject is ShowDate.
	Date time.Time
}

// Day resolves the requested calendar day relative to now.
func (a ShowArgs) Day(now time.Time, loc *time.Location) time.Time {
	local := now.In(loc)
	switch a.Subject {
	case ShowYesterday:
		return local.AddDate(0, 0, -1)
	case ShowDate:
		return time.Date(a.Date.Year(), a.Date.Month(), a.Date.Day(), 12, 0, 0, 0, loc)
	default:
		return local
	}
}

type LogArgs struct {
	Text string
}

type Command struct {
	Type     Type
	Raw      string
	Interval *IntervalArgs
	Show     *ShowArgs
	Log      *LogArgs
}

func Parse(input string) (Command, error) {
	raw := strings.TrimSpace(input)
	if raw == "" {
		return Command{}, &CommandError{Code: ErrCodeEmptyInput, Message: "command is empty"}
	}
	if strings.HasPrefix(raw, "/") {
		raw = strings.TrimSpace(strings.TrimPrefix(raw, "/"))
	}
	if raw == "" {
		return Command{}, &CommandError{Code: ErrCodeEmptyInput, Message: "command is empty"}
	}

	parts := strings.Fields(raw)
	head := strings.ToLower(parts[0])
	args := parts[1:]

	switch Type(head) {
	case TypeStart, TypeStop, TypeNag:
		if len(args) > 0 {
			return Command{}, &CommandError{Code: ErrCodeInvalidArgument, Message: fmt.Sprintf("%s takes no arguments", head)}
		}
		return Command{Type: Type(head), Raw: input}, nil
	case TypeInterval:
		return parseInterval(input, args)
	case TypeShow:
		return parseShow(input, args)
	case TypeLog:
		return parseLog(input, args)
	default:
		return Command{}, &CommandError{Code: ErrCodeUnknownCommand, Message: fmt.Sprintf("unsupported command: %s", head)}
	}
}

func parseInterval(raw string, args []string) (Command, error) {
	if len(args) != 1 {
		return Command{}, &CommandError{Code: ErrCodeInvalidArgument, Message: "interval requires one duration, e.g. 15m or 90s"}
	}
	d, err := ParseInterval(args[0])
	if err != nil {
		return Command{}, &CommandError{Code: ErrCodeInvalidArgument, Message: err.Error()}
	}
	return Command{Type: TypeInterval, Raw: raw, Interval: &IntervalArgs{Interval: d}}, nil
}

// ParseInterval accepts Go durations ("90s", "1h30m") or bare minutes ("15").
// The result is a positive whole number of seconds.
func ParseInterval(s string) (time.Duration, error) {
	s = strings.TrimSpace(s)
	var d time.Duration
	if mins, err := strconv.Atoi(s); err == nil {
		d = time.Duration(mins) * time.Minute
	} else {
		parsed, perr := time.ParseDuration(s)
		if perr != nil {
			return 0, fmt.Errorf("invalid interval %q", s)
		}
		d = parsed
	}
	if d <= 0 {
		return 0, fmt.Errorf("interval must be positive, got %s", s)
	}
	if d%time.Second != 0 {
		return 0, fmt.Errorf("interval must be whole seconds, got %s", s)
	}
	return d, nil
}

func parseShow(raw string, args []string) (Command, error) {
	if len(args) != 1 {
		return Command{}, &CommandError{Code: ErrCodeInvalidArgument, Message: "show requires today, yesterday or YYYY-MM-DD"}
	}
	subject := strings.ToLower(args[0])
	switch ShowSubject(subject) {
	case ShowToday, ShowYesterday:
		return Command{Type: TypeShow, Raw: raw, Show: &ShowArgs{Subject: ShowSubject(subject)}}, nil
	}
	date, err := time.Parse("2006-01-02", subject)
	if err != nil {
		return Command{}, &CommandError{Code: ErrCodeInvalidArgument, Message: fmt.Sprintf("invalid date %q, want YYYY-MM-DD", args[0])}
	}
	return Command{Type: TypeShow, Raw: raw, Show: &ShowArgs{Subject: ShowDate, Date: date}}, nil
}

func parseLog(raw string, args []string) (Command, error) {
	text := strings.TrimSpace(strings.Join(args, " "))
	if text == "" {
		return Command{}, &CommandError{Code: ErrCodeInvalidArgument, Message: "log requires what you worked on"}
	}
	return Command{Type: TypeLog, Raw: raw, Log: &LogArgs{Text: text}}, nil
}
