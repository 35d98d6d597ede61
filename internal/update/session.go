package update

import (
	"errors"
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/sandeepkv93/checkin/internal/engine"
	"github.com/sandeepkv93/checkin/internal/model"
)

func (m Model) running() bool {
	return m.handler != nil && m.handler.Engine().Snapshot().IsRunning
}

func (m Model) settings() model.Settings {
	if m.handler == nil {
		return model.DefaultSettings()
	}
	return m.handler.Settings()
}

func (m *Model) startSession() {
	if m.handler == nil {
		return
	}
	session, err := m.handler.Start(m.ctx)
	if err != nil {
		if errors.Is(err, engine.ErrSessionActive) {
			m.Status = StatusBar{Text: "a session is already running"}
			return
		}
		m.fail(err)
		return
	}
	m.Status = StatusBar{Text: fmt.Sprintf("session started, next check-in in %s", model.FormatInterval(m.settings().Interval))}
	m.refreshToday(session.StartTime)
}

func (m *Model) stopSession() {
	if m.handler == nil {
		return
	}
	if !m.running() {
		m.Status = StatusBar{Text: "no session running"}
		return
	}
	if err := m.handler.Stop(m.ctx); err != nil {
		m.fail(err)
		return
	}
	m.Status = StatusBar{Text: "session stopped"}
}

// reconcile runs on every tick. An overdue check-in with nothing answered
// opens the prompt.
func (m *Model) reconcile() {
	if m.handler == nil || !m.running() {
		return
	}
	res, err := m.handler.Resume(m.ctx)
	if err != nil {
		m.fail(err)
		return
	}
	if res.Answered {
		m.Status = StatusBar{Text: "check-in already logged, next interval started"}
		return
	}
	if res.Prompt && !m.Prompt.Active {
		m.openPrompt(engine.AlarmOverdue)
	}
}

func (m *Model) openPrompt(reason engine.AlarmReason) {
	if m.handler == nil {
		return
	}
	m.Prompt = PromptState{Active: true, Reason: reason}
	m.Palette = CommandPaletteState{}
	m.commandInput.Blur()
	m.editor.Reset()
	m.editor.Focus()
	m.handler.BeginResponse()
	m.Status = StatusBar{Text: "check-in time!"}
}

func (m *Model) closePrompt() {
	m.Prompt = PromptState{}
	m.editor.Reset()
	m.editor.Blur()
}

func (m Model) handlePromptKey(msg tea.KeyMsg) (Model, tea.Cmd) {
	var cmd tea.Cmd
	switch msg.String() {
	case "ctrl+s":
		m.submit(false)
	case "ctrl+x":
		m.submit(true)
	case "esc":
		draft := strings.TrimSpace(m.editor.Value())
		if err := m.handler.Dismiss(); err != nil {
			m.fail(err)
		}
		m.closePrompt()
		if draft != "" {
			m.Status = StatusBar{Text: "check-in postponed, draft discarded; reminders will keep coming"}
		} else {
			m.Status = StatusBar{Text: "check-in postponed; reminders will keep coming"}
		}
	default:
		if msg.Type == tea.KeyRunes {
			m.editor.InsertString(string(msg.Runes))
			return m, nil
		}
		m.editor, cmd = m.editor.Update(msg)
	}
	return m, cmd
}

func (m *Model) submit(stop bool) {
	text := m.editor.Value()
	if strings.TrimSpace(text) == "" {
		m.Prompt.Err = "describe what you worked on"
		return
	}

	var (
		activity model.Activity
		err      error
	)
	if stop {
		activity, err = m.handler.SubmitAndStop(m.ctx, text)
	} else {
		activity, err = m.handler.Submit(m.ctx, text)
	}
	if err != nil {
		if errors.Is(err, model.ErrEmptyActivity) {
			m.Prompt.Err = "describe what you worked on"
			return
		}
		m.Prompt.Err = err.Error()
		m.LastError = err
		return
	}

	m.closePrompt()
	if stop {
		m.Status = StatusBar{Text: "activity saved, session stopped"}
	} else {
		m.Status = StatusBar{Text: "activity saved, keep going!"}
	}
	m.refreshToday(activity.Timestamp)
}

func (m *Model) fail(err error) {
	m.LastError = err
	m.Status = StatusBar{Text: err.Error(), IsError: true}
}
