package update

import (
	"fmt"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/sandeepkv93/checkin/internal/engine"
	"github.com/sandeepkv93/checkin/internal/model"
	"github.com/sandeepkv93/checkin/internal/planner"
	"github.com/sandeepkv93/checkin/internal/views"
)

func (m Model) Init() tea.Cmd {
	return tea.Batch(tickCmd(), waitForAlarmCmd(m.alarms))
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch typed := msg.(type) {
	case tea.KeyMsg:
		if typed.String() == "ctrl+c" {
			m.Quitting = true
			return m, tea.Quit
		}
		if m.Prompt.Active {
			return m.handlePromptKey(typed)
		}
		if m.Palette.Active {
			return m.handlePaletteKey(typed)
		}

		switch typed.String() {
		case "/":
			m.Palette.Active = true
			m.Palette.Input = ""
			m.commandInput.Focus()
			m.commandInput.SetValue("")
			m.Status = StatusBar{Text: "command palette active"}
			return m, nil
		case m.Keys.Dashboard:
			m.Screen = ScreenDashboard
			return m, nil
		case m.Keys.History:
			m.Screen = ScreenHistory
			m.loadHistory(m.History.Day)
			return m, nil
		case m.Keys.Start:
			m.startSession()
			return m, nil
		case m.Keys.Stop:
			m.stopSession()
			return m, nil
		case m.Keys.CheckIn:
			if m.running() {
				m.openPrompt(engine.AlarmDelivered)
			}
			return m, nil
		case m.Keys.Help:
			m.HelpVisible = !m.HelpVisible
			return m, nil
		case m.Keys.Quit:
			m.Quitting = true
			return m, tea.Quit
		}
		if m.Screen == ScreenHistory {
			return m.handleHistoryKey(typed), nil
		}
	case TickMsg:
		m.reconcile()
		return m, tickCmd()
	case AlarmMsg:
		if !m.Prompt.Active {
			m.openPrompt(typed.Alarm.Reason)
		}
		return m, waitForAlarmCmd(m.alarms)
	case SetStatusMsg:
		m.Status = StatusBar{Text: typed.Text, IsError: typed.IsError}
		return m, nil
	case AppErrorMsg:
		m.LastError = typed.Err
		if typed.Err != nil {
			m.Status = StatusBar{Text: typed.Err.Error(), IsError: true}
		}
		return m, nil
	}
	return m, nil
}

func (m Model) View() string {
	status := ""
	if m.Status.Text != "" {
		if m.Status.IsError {
			status = fmt.Sprintf("status: error: %s", m.Status.Text)
		} else {
			status = fmt.Sprintf("status: %s", m.Status.Text)
		}
	}

	var right string
	switch m.Screen {
	case ScreenHistory:
		right = m.historyView.View()
	default:
		right = m.renderTodaySummary()
	}
	if palette := views.RenderCommandPalette(m.Palette.Active, m.commandInput.Value()); palette != "" {
		right = palette + "\n\n" + right
	}
	if m.HelpVisible {
		right += "\n\n" + m.renderHelpView()
	}

	return views.RenderApp(views.AppData{
		Header:     fmt.Sprintf("checkin | %s | view: %s", m.settings().DisplayName(), m.Screen),
		LeftPane:   m.renderDashboard(),
		RightPane:  right,
		StatusLine: status,
		Prompt:     m.renderPrompt(),
		Footer: fmt.Sprintf("keys: %s start | %s stop | %s check in | %s history | %s dashboard | / cmd | %s help | %s quit",
			m.Keys.Start, m.Keys.Stop, m.Keys.CheckIn, m.Keys.History, m.Keys.Dashboard, m.Keys.Help, m.Keys.Quit),
	})
}

func (m Model) renderDashboard() string {
	s := m.settings()
	data := views.DashboardPanelData{
		UserName:     s.DisplayName(),
		IntervalText: model.FormatInterval(s.Interval),
	}
	if m.handler == nil {
		return views.RenderDashboardPanel(data)
	}
	st := m.handler.Engine().Snapshot()
	if !st.IsRunning {
		return views.RenderDashboardPanel(data)
	}

	now := m.clock.Now()
	deadline := st.NextCheckIn
	if m.countdown != nil {
		if shown, ok := m.countdown.View(); ok {
			deadline = shown
		}
	}
	remaining := deadline.Sub(now)
	data.Running = true
	data.SessionID = st.SessionID
	data.Countdown = model.FormatCountdown(remaining)
	data.Overdue = st.Overdue(now)
	data.NagBurst = st.Mode == planner.ModeNagBurst
	data.IntervalText = model.FormatInterval(st.Interval)
	data.ProgressView = m.countdownBar.ViewAs(elapsedFraction(remaining, st.Interval))
	return views.RenderDashboardPanel(data)
}

func (m Model) renderTodaySummary() string {
	if m.History.Rendered == "" {
		return "today:\n(press h to load the day overview)"
	}
	return m.History.Rendered
}

func (m Model) renderPrompt() string {
	s := m.settings()
	return views.RenderCheckInPrompt(views.PromptPanelData{
		Active:     m.Prompt.Active,
		Overdue:    m.Prompt.Reason == engine.AlarmOverdue,
		BlockText:  model.FormatInterval(s.Interval),
		EditorView: m.editor.View(),
		ErrorText:  m.Prompt.Err,
	})
}

func tickCmd() tea.Cmd {
	return tea.Tick(time.Second, func(at time.Time) tea.Msg { return TickMsg{At: at} })
}

func waitForAlarmCmd(ch <-chan engine.Alarm) tea.Cmd {
	if ch == nil {
		return nil
	}
	return func() tea.Msg {
		a, ok := <-ch
		if !ok {
			return nil
		}
		return AlarmMsg{Alarm: a}
	}
}

func elapsedFraction(remaining, interval time.Duration) float64 {
	if interval <= 0 {
		return 0
	}
	if remaining <= 0 {
		return 1
	}
	f := 1 - float64(remaining)/float64(interval)
	if f < 0 {
		return 0
	}
	return f
}
