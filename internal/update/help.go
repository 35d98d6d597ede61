package update

import (
	"fmt"

	"github.com/charmbracelet/bubbles/key"

	"github.com/sandeepkv93/checkin/internal/views"
)

type KeyBinding struct {
	Key    string
	Action string
}

type helpKeyMap struct {
	short []key.Binding
	full  [][]key.Binding
}

func (k helpKeyMap) ShortHelp() []key.Binding  { return k.short }
func (k helpKeyMap) FullHelp() [][]key.Binding { return k.full }

func (m Model) renderHelpView() string {
	bindings := m.helpBindings()
	var plain []string
	for _, kb := range m.screenBindings() {
		plain = append(plain, fmt.Sprintf("- %s: %s", kb.Key, kb.Action))
	}
	return views.RenderHelpPanel(views.HelpPanelData{
		Screen:   string(m.Screen),
		Bindings: plain,
		HelpView: m.helpModel.View(helpKeyMap{
			short: bindings,
			full:  [][]key.Binding{bindings},
		}),
	})
}

func (m Model) globalBindings() []KeyBinding {
	return []KeyBinding{
		{Key: m.Keys.Start, Action: "start session"},
		{Key: m.Keys.Stop, Action: "stop session"},
		{Key: m.Keys.CheckIn, Action: "check in now"},
		{Key: m.Keys.History, Action: "day overview"},
		{Key: m.Keys.Dashboard, Action: "dashboard"},
		{Key: "/", Action: "open command palette"},
		{Key: m.Keys.Help, Action: "toggle help panel"},
		{Key: m.Keys.Quit, Action: "quit app"},
	}
}

func (m Model) screenBindings() []KeyBinding {
	if m.Prompt.Active {
		return []KeyBinding{
			{Key: "ctrl+s", Action: "save and keep going"},
			{Key: "ctrl+x", Action: "save and stop session"},
			{Key: "esc", Action: "answer later (reminders continue)"},
		}
	}
	switch m.Screen {
	case ScreenHistory:
		return []KeyBinding{
			{Key: "left/right", Action: "previous/next day"},
			{Key: "t", Action: "jump to today"},
			{Key: "j/k", Action: "scroll"},
		}
	default:
		return []KeyBinding{
			{Key: "/interval 30m", Action: "change the check-in interval"},
			{Key: "/show yesterday", Action: "open a past day"},
		}
	}
}

func (m Model) helpBindings() []key.Binding {
	out := make([]key.Binding, 0, len(m.globalBindings())+len(m.screenBindings()))
	for _, kb := range m.globalBindings() {
		out = append(out, key.NewBinding(key.WithKeys(kb.Key), key.WithHelp(kb.Key, kb.Action)))
	}
	for _, kb := range m.screenBindings() {
		out = append(out, key.NewBinding(key.WithKeys(kb.Key), key.WithHelp(kb.Key, kb.Action)))
	}
	return out
}
