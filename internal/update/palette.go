package update

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/sandeepkv93/checkin/internal/commands"
	"github.com/sandeepkv93/checkin/internal/model"
)

func (m Model) handlePaletteKey(msg tea.KeyMsg) (Model, tea.Cmd) {
	var cmd tea.Cmd
	switch msg.String() {
	case "esc":
		m.Palette.Active = false
		m.Palette.Input = ""
		m.commandInput.SetValue("")
		m.commandInput.Blur()
		m.Status = StatusBar{Text: "command palette closed"}
	case "enter":
		m.Palette.Input = m.commandInput.Value()
		m = m.executePaletteCommand()
	default:
		if msg.Type == tea.KeyRunes {
			m.commandInput.SetValue(m.commandInput.Value() + string(msg.Runes))
			m.Palette.Input = m.commandInput.Value()
			return m, nil
		}
		m.commandInput, cmd = m.commandInput.Update(msg)
		m.Palette.Input = m.commandInput.Value()
	}
	return m, cmd
}

func (m Model) executePaletteCommand() Model {
	raw := strings.TrimSpace(m.Palette.Input)
	cmd, err := commands.Parse(raw)
	if err != nil {
		m.Status = StatusBar{Text: err.Error(), IsError: true}
		m.Palette.Active = false
		m.Palette.Input = ""
		m.commandInput.SetValue("")
		return m
	}
	if m.handler == nil {
		m.Status = StatusBar{Text: "no session handler configured", IsError: true}
		m.Palette = CommandPaletteState{}
		return m
	}

	res, err := commands.Execute(cmd, commands.Handlers{
		Start: func() (commands.Result, error) {
			session, err := m.handler.Start(m.ctx)
			if err != nil {
				return commands.Result{}, err
			}
			m.refreshToday(session.StartTime)
			return commands.Result{Message: "session started"}, nil
		},
		Stop: func() (commands.Result, error) {
			if !m.running() {
				return commands.Result{Message: "no session running"}, nil
			}
			if err := m.handler.Stop(m.ctx); err != nil {
				return commands.Result{}, err
			}
			return commands.Result{Message: "session stopped"}, nil
		},
		Interval: func(a commands.IntervalArgs) (commands.Result, error) {
			if err := m.handler.SetInterval(m.ctx, a.Interval); err != nil {
				return commands.Result{}, err
			}
			return commands.Result{Message: fmt.Sprintf("interval set to %s", model.FormatInterval(a.Interval))}, nil
		},
		Nag: func() (commands.Result, error) {
			if err := m.handler.Engine().ScheduleNags(); err != nil {
				return commands.Result{}, err
			}
			return commands.Result{Message: "nag burst scheduled"}, nil
		},
		Show: func(s commands.ShowArgs) (commands.Result, error) {
			day := s.Day(m.clock.Now(), m.handler.Journal().Location())
			m.Screen = ScreenHistory
			m.loadHistory(day)
			return commands.Result{Message: fmt.Sprintf("showing %s", day.Format("2006-01-02"))}, nil
		},
		Log: func(l commands.LogArgs) (commands.Result, error) {
			activity, err := m.handler.Submit(m.ctx, l.Text)
			if err != nil {
				return commands.Result{}, err
			}
			m.refreshToday(activity.Timestamp)
			return commands.Result{Message: "activity saved, keep going!"}, nil
		},
	})
	m.Palette.Active = false
	m.Palette.Input = ""
	m.commandInput.SetValue("")
	m.commandInput.Blur()

	if err != nil {
		m.LastError = err
		m.Status = StatusBar{Text: err.Error(), IsError: true}
		return m
	}
	m.Status = StatusBar{Text: res.Message}
	return m
}
