package update

import (
	"fmt"

	"github.com/charmbracelet/bubbles/key"

	"github.com/sandeepkv93/nagd/internal/views"
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

func (m Model) renderHelpIfVisible() string {
	if !m.HelpVisible {
		return ""
	}
	return m.renderHelpView()
}

func (m Model) renderHelpView() string {
	bindings := m.helpBindings()
	var plain []string
	for _, kb := range m.viewBindings() {
		plain = append(plain, fmt.Sprintf("- %s: %s", kb.Key, kb.Action))
	}
	return views.RenderHelpPanel(views.HelpPanelData{
		CurrentView: string(m.CurrentView),
		Bindings:    plain,
		HelpView: m.helpModel.View(helpKeyMap{
			short: bindings,
			full:  [][]key.Binding{bindings},
		}),
	})
}

func (m Model) globalBindings() []KeyBinding {
	return []KeyBinding{
		{Key: m.Keys.Todo, Action: "switch to Todo"},
		{Key: m.Keys.Done, Action: "switch to Done"},
		{Key: m.Keys.Settings, Action: "switch to Settings"},
		{Key: m.Keys.Add, Action: "new task"},
		{Key: "c", Action: "clear reminders"},
		{Key: "/", Action: "open command palette"},
		{Key: m.Keys.Help, Action: "toggle help panel"},
		{Key: m.Keys.Quit, Action: "quit app"},
	}
}

func (m Model) viewBindings() []KeyBinding {
	if m.Compose.Active {
		return []KeyBinding{
			{Key: "enter", Action: "save task"},
			{Key: "up/down", Action: "intensity +/-5"},
			{Key: "esc", Action: "cancel"},
		}
	}
	switch m.CurrentView {
	case ViewTodo:
		return []KeyBinding{
			{Key: "j/k", Action: "move selection"},
			{Key: "enter/x", Action: "mark done"},
			{Key: "d", Action: "delete task"},
		}
	case ViewDone:
		return []KeyBinding{
			{Key: "j/k", Action: "move selection"},
			{Key: "enter/u", Action: "restore to todo"},
			{Key: "d", Action: "delete task"},
		}
	case ViewSettings:
		return []KeyBinding{
			{Key: "t", Action: "cycle theme"},
			{Key: "o", Action: "toggle quotes"},
			{Key: "r", Action: "refresh quote"},
		}
	default:
		return []KeyBinding{{Key: "-", Action: "no contextual bindings"}}
	}
}

func (m Model) helpBindings() []key.Binding {
	out := make([]key.Binding, 0, len(m.globalBindings())+len(m.viewBindings()))
	for _, kb := range m.globalBindings() {
		out = append(out, key.NewBinding(key.WithKeys(kb.Key), key.WithHelp(kb.Key, kb.Action)))
	}
	for _, kb := range m.viewBindings() {
		out = append(out, key.NewBinding(key.WithKeys(kb.Key), key.WithHelp(kb.Key, kb.Action)))
	}
	return out
}
