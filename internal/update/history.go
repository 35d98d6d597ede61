package update

import (
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/sandeepkv93/checkin/internal/model"
	"github.com/sandeepkv93/checkin/internal/views"
)

func (m Model) handleHistoryKey(msg tea.KeyMsg) Model {
	switch msg.String() {
	case "left", "p":
		m.loadHistory(m.History.Day.AddDate(0, 0, -1))
	case "right", "n":
		m.loadHistory(m.History.Day.AddDate(0, 0, 1))
	case "t":
		m.loadHistory(m.clock.Now())
	case "j", "down":
		m.historyView.LineDown(1)
	case "k", "up":
		m.historyView.LineUp(1)
	}
	return m
}

func (m *Model) loadHistory(day time.Time) {
	m.History.Day = day
	if m.handler == nil {
		return
	}
	journal := m.handler.Journal()
	overview, err := journal.Day(m.ctx, day)
	if err != nil {
		m.fail(err)
		return
	}
	m.History.Overview = overview
	data := views.NewDayOverviewData(overview.Date, overview.Activities, overview.Span, m.settings().Interval, journal.Location())
	m.History.Rendered = views.RenderMarkdown(views.DayOverviewMarkdown(data))
	m.historyView.SetContent(m.History.Rendered)
	m.historyView.GotoTop()
}

// refreshToday reloads the overview when it shows the day of at.
func (m *Model) refreshToday(at time.Time) {
	if m.History.Rendered == "" && m.Screen != ScreenHistory {
		m.loadHistory(at)
		return
	}
	loc := time.Local
	if m.handler != nil {
		loc = m.handler.Journal().Location()
	}
	if model.SameDay(m.History.Day, at, loc) {
		m.loadHistory(m.History.Day)
	}
}
