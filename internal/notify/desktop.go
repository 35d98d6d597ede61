// Package notify delivers due check-in reminders to the desktop and back to
// the engine.
package notify

import (
	"fmt"
	"os/exec"
	"runtime"
	"strings"

	"github.com/sandeepkv93/checkin/internal/model"
)

type Desktop interface {
	Send(model.Notification) error
}

type NoopDesktop struct{}

func (NoopDesktop) Send(model.Notification) error { return nil }

// ExecDesktop shells out to notify-send on Linux and osascript on macOS.
// Other platforms are silently skipped.
type ExecDesktop struct {
	GOOS string
	Run  func(name string, args ...string) error
}

func NewExecDesktop() ExecDesktop {
	return ExecDesktop{GOOS: runtime.GOOS, Run: runCommand}
}

func (d ExecDesktop) Send(n model.Notification) error {
	name, args, ok := command(d.GOOS, n)
	if !ok {
		return nil
	}
	run := d.Run
	if run == nil {
		run = runCommand
	}
	if err := run(name, args...); err != nil {
		return fmt.Errorf("notify: %s: %w", name, err)
	}
	return nil
}

func command(goos string, n model.Notification) (string, []string, bool) {
	switch goos {
	case "linux":
		urgency := "normal"
		if n.Event.IsNag() {
			urgency = "critical"
		}
		return "notify-send", []string{
			"--app-name=checkin",
			"--category=" + n.Category,
			"--urgency=" + urgency,
			n.Title,
			n.Body,
		}, true
	case "darwin":
		script := fmt.Sprintf(`display notification "%s" with title "%s"`, escapeAppleScript(n.Body), escapeAppleScript(n.Title))
		if n.Sound != "" && n.Sound != "default" {
			script += fmt.Sprintf(` sound name "%s"`, escapeAppleScript(n.Sound))
		}
		return "osascript", []string{"-e", script}, true
	default:
		return "", nil, false
	}
}

func runCommand(name string, args ...string) error {
	return exec.Command(name, args...).Run()
}

func escapeAppleScript(s string) string {
	s = strings.ReplaceAll(s, `\`, `\\`)
	return strings.ReplaceAll(s, `"`, `\"`)
}
