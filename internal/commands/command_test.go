package commands

import (
	"errors"
	"testing"
	"time"
)

func TestParseSupportedCommands(t *testing.T) {
	cases := []struct {
		in       string
		typeWant Type
	}{
		{"/start", TypeStart},
		{"stop", TypeStop},
		{"/interval 30m", TypeInterval},
		{"NAG", TypeNag},
		{"show today", TypeShow},
		{"/log reviewed the migration", TypeLog},
	}

	for _, tc := range cases {
		cmd, err := Parse(tc.in)
		if err != nil {
			t.Fatalf("parse %q failed: %v", tc.in, err)
		}
		if cmd.Type != tc.typeWant {
			t.Fatalf("parse %q type = %s, want %s", tc.in, cmd.Type, tc.typeWant)
		}
	}
}

func TestParseUnknownCommand(t *testing.T) {
	_, err := Parse("/unknown do x")
	if err == nil {
		t.Fatal("expected error")
	}
	var ce *CommandError
	if !errors.As(err, &ce) || ce.Code != ErrCodeUnknownCommand {
		t.Fatalf("expected unknown command error, got %v", err)
	}
}

func TestParseEmpty(t *testing.T) {
	for _, in := range []string{"", "   ", "/", " / "} {
		_, err := Parse(in)
		var ce *CommandError
		if !errors.As(err, &ce) || ce.Code != ErrCodeEmptyInput {
			t.Fatalf("parse %q: expected empty input error, got %v", in, err)
		}
	}
}

func TestParseInvalidArguments(t *testing.T) {
	for _, in := range []string{
		"start now",
		"interval",
		"interval 0",
		"interval -5m",
		"interval 1500ms",
		"interval soon",
		"show",
		"show 09/02/2026",
		"log   ",
	} {
		_, err := Parse(in)
		var ce *CommandError
		if !errors.As(err, &ce) || ce.Code != ErrCodeInvalidArgument {
			t.Fatalf("parse %q: expected invalid argument error, got %v", in, err)
		}
	}
}

func TestParseInterval(t *testing.T) {
	cases := map[string]time.Duration{
		"15":    15 * time.Minute,
		"90s":   90 * time.Second,
		"1h30m": 90 * time.Minute,
	}
	for in, want := range cases {
		got, err := ParseInterval(in)
		if err != nil {
			t.Fatalf("ParseInterval(%q): %v", in, err)
		}
		if got != want {
			t.Fatalf("ParseInterval(%q) = %s, want %s", in, got, want)
		}
	}
}

func TestShowDayResolution(t *testing.T) {
	now := time.Date(2026, 2, 9, 0, 30, 0, 0, time.UTC)

	cmd, err := Parse("show yesterday")
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if got := cmd.Show.Day(now, time.UTC); got.Day() != 8 {
		t.Fatalf("yesterday resolved to %s", got)
	}

	cmd, err = Parse("show 2026-01-31")
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	got := cmd.Show.Day(now, time.UTC)
	if got.Year() != 2026 || got.Month() != time.January || got.Day() != 31 {
		t.Fatalf("explicit date resolved to %s", got)
	}
}

func TestExecuteDispatch(t *testing.T) {
	cmd, err := Parse("/log write docs")
	if err != nil {
		t.Fatalf("parse failed: %v", err)
	}

	called := false
	res, err := Execute(cmd, Handlers{
		Log: func(a LogArgs) (Result, error) {
			called = true
			if a.Text != "write docs" {
				t.Fatalf("unexpected text: %q", a.Text)
			}
			return Result{Message: "ok"}, nil
		},
	})
	if err != nil {
		t.Fatalf("execute failed: %v", err)
	}
	if !called || res.Message != "ok" {
		t.Fatalf("dispatch failed, called=%v res=%+v", called, res)
	}
}

func TestExecuteMissingHandler(t *testing.T) {
	cmd, err := Parse("show today")
	if err != nil {
		t.Fatalf("parse failed: %v", err)
	}
	_, err = Execute(cmd, Handlers{})
	if err == nil {
		t.Fatal("expected error")
	}
	var ce *CommandError
	if !errors.As(err, &ce) || ce.Code != ErrCodeHandlerMissing {
		t.Fatalf("expected missing handler error, got %v", err)
	}
}
