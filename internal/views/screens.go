package views

import (
	"fmt"
	"strings"
	"time"

	"github.com/sandeepkv93/checkin/internal/model"
)

type DashboardPanelData struct {
	UserName     string
	Running      bool
	SessionID    string
	Countdown    string
	Overdue      bool
	NagBurst     bool
	IntervalText string
	ProgressView string
	StartedAt    string
}

type PromptPanelData struct {
	Active     bool
	Overdue    bool
	BlockText  string
	EditorView string
	ErrorText  string
}

type DayRowData struct {
	Time  string
	Text  string
	Block string
}

type DayOverviewData struct {
	Date string
	Span string
	Rows []DayRowData
}

// NewDayOverviewData lays out one day of activities in loc. Every row is
// labelled with the block of the current interval.
func NewDayOverviewData(date time.Time, activities []model.Activity, span, interval time.Duration, loc *time.Location) DayOverviewData {
	if loc == nil {
		loc = time.Local
	}
	rows := make([]DayRowData, 0, len(activities))
	block := model.FormatBlock(interval)
	for _, a := range activities {
		rows = append(rows, DayRowData{
			Time:  a.Timestamp.In(loc).Format("15:04"),
			Text:  a.Text,
			Block: block,
		})
	}
	return DayOverviewData{
		Date: date.In(loc).Format("Monday, Jan 2 2006"),
		Span: model.FormatSpan(span),
		Rows: rows,
	}
}

type HelpPanelData struct {
	Screen   string
	Bindings []string
	HelpView string
}

func RenderDashboardPanel(data DashboardPanelData) string {
	var b strings.Builder
	b.WriteString(fmt.Sprintf("hello, %s\n", data.UserName))
	b.WriteString(fmt.Sprintf("interval: %s\n", data.IntervalText))
	if !data.Running {
		b.WriteString("\nsession: idle\n")
		b.WriteString("actions: [s]start [h]history")
		return b.String()
	}
	b.WriteString(fmt.Sprintf("\nsession: %s\n", shortID(data.SessionID)))
	if data.StartedAt != "" {
		b.WriteString(fmt.Sprintf("started: %s\n", data.StartedAt))
	}
	label := "next check-in"
	switch {
	case data.NagBurst:
		label = "nagging"
	case data.Overdue:
		label = "overdue"
	}
	b.WriteString(fmt.Sprintf("%s: %s\n", label, data.Countdown))
	if data.ProgressView != "" {
		b.WriteString(data.ProgressView + "\n")
	}
	b.WriteString("actions: [c]check in [x]stop [h]history")
	return b.String()
}

func RenderCheckInPrompt(data PromptPanelData) string {
	if !data.Active {
		return ""
	}
	var b strings.Builder
	b.WriteString("check-in time!\n")
	if data.Overdue {
		b.WriteString("you missed a check-in. ")
	}
	b.WriteString(fmt.Sprintf("what did you accomplish in the last %s?\n\n", data.BlockText))
	b.WriteString(data.EditorView + "\n")
	if data.ErrorText != "" {
		b.WriteString("error: " + data.ErrorText + "\n")
	}
	b.WriteString("keys: [ctrl+s]keep going [ctrl+x]save & stop [esc]later")
	return b.String()
}

// DayOverviewMarkdown renders a day's activities as markdown for glamour.
func DayOverviewMarkdown(data DayOverviewData) string {
	var b strings.Builder
	b.WriteString(fmt.Sprintf("# %s\n\n", data.Date))
	if len(data.Rows) == 0 {
		b.WriteString("_No activities logged._\n")
		return b.String()
	}
	b.WriteString(fmt.Sprintf("**Tracked:** %s across %d entries\n\n", data.Span, len(data.Rows)))
	b.WriteString("| Time | Activity | Block |\n")
	b.WriteString("|------|----------|-------|\n")
	for _, row := range data.Rows {
		b.WriteString(fmt.Sprintf("| %s | %s | %s |\n", row.Time, escapeCell(row.Text), row.Block))
	}
	return b.String()
}

func RenderCommandPalette(active bool, input string) string {
	if !active {
		return ""
	}
	return fmt.Sprintf("command: /%s", input)
}

func RenderHelpPanel(data HelpPanelData) string {
	return fmt.Sprintf("help:\n%s:\n%s\n%s",
		strings.ToLower(data.Screen),
		strings.Join(data.Bindings, "\n"),
		data.HelpView,
	)
}

func shortID(id string) string {
	if len(id) <= 8 {
		return id
	}
	return id[:8]
}

func escapeCell(s string) string {
	s = strings.ReplaceAll(s, "\n", " ")
	return strings.ReplaceAll(s, "|", `\|`)
}
