package update

import (
	"context"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"

	"github.com/sandeepkv93/checkin/internal/checkin"
	"github.com/sandeepkv93/checkin/internal/engine"
	"github.com/sandeepkv93/checkin/internal/planner"
)

type Screen string

const (
	ScreenDashboard Screen = "Dashboard"
	ScreenHistory   Screen = "History"
)

type StatusBar struct {
	Text    string
	IsError bool
}

type GlobalKeyMap struct {
	Dashboard string
	History   string
	Start     string
	Stop      string
	CheckIn   string
	Help      string
	Quit      string
}

type PromptState struct {
	Active bool
	Reason engine.AlarmReason
	Err    string
}

type CommandPaletteState struct {
	Active bool
	Input  string
}

type HistoryState struct {
	Day      time.Time
	Overview checkin.DayOverview
	Rendered string
}

// Countdown is the in-app view of the countdown surface.
type Countdown interface {
	View() (time.Time, bool)
}

type Deps struct {
	Handler   *checkin.Handler
	Countdown Countdown
	Clock     planner.Clock
	Alarms    <-chan engine.Alarm
	Context   context.Context
}

type Model struct {
	Screen      Screen
	Prompt      PromptState
	Palette     CommandPaletteState
	History     HistoryState
	HelpVisible bool
	Status      StatusBar
	Keys        GlobalKeyMap
	Quitting    bool
	LastError   error

	handler   *checkin.Handler
	countdown Countdown
	clock     planner.Clock
	alarms    <-chan engine.Alarm
	ctx       context.Context

	editor       textarea.Model
	commandInput textinput.Model
	countdownBar progress.Model
	helpModel    help.Model
	historyView  viewport.Model
}

type TickMsg struct {
	At time.Time
}

type AlarmMsg struct {
	Alarm engine.Alarm
}

type SetStatusMsg struct {
	Text    string
	IsError bool
}

type AppErrorMsg struct {
	Err error
}

func NewModel(deps Deps) Model {
	if deps.Clock == nil {
		deps.Clock = planner.SystemClock{}
	}
	if deps.Context == nil {
		deps.Context = context.Background()
	}
	m := Model{
		Screen: ScreenDashboard,
		Keys: GlobalKeyMap{
			Dashboard: "1",
			History:   "h",
			Start:     "s",
			Stop:      "x",
			CheckIn:   "c",
			Help:      "?",
			Quit:      "q",
		},
		handler:   deps.Handler,
		countdown: deps.Countdown,
		clock:     deps.Clock,
		alarms:    deps.Alarms,
		ctx:       deps.Context,
	}
	m.History.Day = m.clock.Now()
	m.initBubbleComponents()
	return m
}

func (m *Model) initBubbleComponents() {
	m.editor = textarea.New()
	m.editor.Placeholder = "Describe what you worked on..."
	m.editor.SetWidth(66)
	m.editor.SetHeight(4)
	m.editor.CharLimit = 1024
	m.editor.ShowLineNumbers = false

	m.commandInput = textinput.New()
	m.commandInput.Prompt = "/"
	m.commandInput.CharLimit = 256
	m.commandInput.Width = 48

	m.countdownBar = progress.New(progress.WithDefaultGradient(), progress.WithWidth(34), progress.WithoutPercentage())
	m.helpModel = help.New()
	m.historyView = viewport.New(70, 16)
}
