package update

import (
	"context"
	"fmt"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/sandeepkv93/nagd/internal/views"
)

func (m Model) Init() tea.Cmd {
	cmds := []tea.Cmd{m.foregroundCmd(), m.loadCmd()}
	if m.tray != nil {
		cmds = append(cmds, waitForTrayCmd(m.tray.Changed()))
	}
	return tea.Batch(cmds...)
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch typed := msg.(type) {
	case tea.KeyMsg:
		if typed.String() == "ctrl+c" {
			m.Quitting = true
			return m, tea.Quit
		}
		if m.Palette.Active {
			if typed.String() == m.Keys.Help {
				m.HelpVisible = !m.HelpVisible
				return m, nil
			}
			return m.handlePaletteKey(typed)
		}
		if m.Compose.Active {
			return m.handleComposeKey(typed)
		}
		return m.handleKey(typed)
	case spinner.TickMsg:
		if m.Refreshing {
			var cmd tea.Cmd
			m.refreshSpinner, cmd = m.refreshSpinner.Update(typed)
			return m, cmd
		}
	case SwitchViewMsg:
		if isKnownView(typed.View) {
			m.CurrentView = typed.View
		}
		return m, nil
	case SetStatusMsg:
		m.Status = StatusBar{Text: typed.Text, IsError: typed.IsError}
		return m, nil
	case ClearStatusMsg:
		m.Status = StatusBar{}
		return m, nil
	case DataLoadedMsg:
		if typed.Err != nil {
			m.LastError = typed.Err
			m.Status = StatusBar{Text: typed.Err.Error(), IsError: true}
			return m, nil
		}
		m.Todo = typed.Todo
		m.Done = typed.Done
		m.Settings = typed.Settings
		m.clampCursors()
		m.syncQuoteView()
		return m, nil
	case ActionResultMsg:
		if typed.Err != nil {
			m.LastError = typed.Err
			m.Status = StatusBar{Text: typed.Err.Error(), IsError: true}
		} else if typed.Text != "" {
			m.Status = StatusBar{Text: typed.Text}
		}
		return m, m.loadCmd()
	case QuoteRefreshedMsg:
		m.Refreshing = false
		if typed.Updated {
			m.Status = StatusBar{Text: "quote refreshed"}
		} else {
			m.Status = StatusBar{Text: "quote unchanged"}
		}
		return m, m.loadCmd()
	case TrayChangedMsg:
		if m.tray == nil {
			return m, nil
		}
		m.Reminders = m.tray.Snapshot()
		return m, waitForTrayCmd(m.tray.Changed())
	}

	return m, nil
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "/":
		m.Palette.Active = true
		m.Palette.Input = ""
		m.commandInput.SetValue("")
		m.commandInput.Focus()
		m.Status = StatusBar{Text: "command palette active"}
		return m, nil
	case m.Keys.Todo:
		m.CurrentView = ViewTodo
		return m, nil
	case m.Keys.Done:
		m.CurrentView = ViewDone
		return m, nil
	case m.Keys.Settings:
		m.CurrentView = ViewSettings
		return m, nil
	case m.Keys.Add:
		m.CurrentView = ViewTodo
		return m.openCompose(), nil
	case m.Keys.Help:
		m.HelpVisible = !m.HelpVisible
		return m, nil
	case m.Keys.Quit:
		m.Quitting = true
		return m, tea.Quit
	case "c":
		return m.clearReminders(), nil
	case "j", "down":
		m.moveCursor(1)
		return m, nil
	case "k", "up":
		m.moveCursor(-1)
		return m, nil
	}

	switch m.CurrentView {
	case ViewTodo:
		return m.handleTodoKey(msg)
	case ViewDone:
		return m.handleDoneKey(msg)
	case ViewSettings:
		return m.handleSettingsKey(msg)
	}
	return m, nil
}

func (m Model) handleTodoKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	task, ok := m.selectedTask()
	if !ok {
		return m, nil
	}
	switch msg.String() {
	case "enter", "x":
		return m, m.markDoneCmd(task.ID)
	case "d":
		return m, m.deleteTaskCmd(task.ID)
	}
	return m, nil
}

func (m Model) handleDoneKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	task, ok := m.selectedTask()
	if !ok {
		return m, nil
	}
	switch msg.String() {
	case "enter", "u":
		return m, m.markTodoCmd(task.ID)
	case "d":
		return m, m.deleteTaskCmd(task.ID)
	}
	return m, nil
}

func (m Model) handleSettingsKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "t":
		return m, m.setThemeCmd(m.Settings.Theme.Next())
	case "o":
		return m, m.setQuotesCmd(!m.Settings.QuotesEnabled)
	case "r":
		return m.startRefresh()
	}
	return m, nil
}

func (m Model) startRefresh() (Model, tea.Cmd) {
	if m.Refreshing {
		return m, nil
	}
	cmd := m.refreshQuoteCmd()
	if cmd == nil {
		return m, nil
	}
	m.Refreshing = true
	return m, tea.Batch(cmd, m.refreshSpinner.Tick)
}

func (m Model) clearReminders() Model {
	if m.tray == nil || len(m.Reminders) == 0 {
		return m
	}
	for _, p := range m.Reminders {
		_ = m.tray.CancelReminder(context.Background(), p.Reminder.TaskID)
	}
	m.Reminders = m.tray.Snapshot()
	m.Status = StatusBar{Text: "reminders cleared"}
	return m
}

func (m Model) View() string {
	theme := views.ThemeFor(m.Settings.Theme, m.darkBackground)

	status := ""
	if m.Status.Text != "" {
		if m.Status.IsError {
			status = fmt.Sprintf("status: error: %s", m.Status.Text)
		} else {
			status = fmt.Sprintf("status: %s", m.Status.Text)
		}
	}

	leftPane := ""
	switch m.CurrentView {
	case ViewTodo:
		leftPane = m.renderTaskView(theme, ViewTodo)
	case ViewDone:
		leftPane = m.renderTaskView(theme, ViewDone)
	case ViewSettings:
		leftPane = m.renderSettingsView()
	}
	rightPane := joinNonEmpty(m.renderComposeIfActive(), m.renderCommandPalette(), m.renderHelpIfVisible())

	return views.RenderApp(theme, views.AppData{
		Header:       fmt.Sprintf("nagd | view: %s | todo: %d | done: %d", m.CurrentView, len(m.Todo), len(m.Done)),
		LeftPane:     leftPane,
		RightPane:    rightPane,
		StatusLine:   status,
		StatusError:  m.Status.IsError,
		Notification: m.renderReminderPanel(),
		Footer: fmt.Sprintf("keys: %s todo | %s done | %s settings | %s add | / cmd | %s help | %s quit",
			m.Keys.Todo, m.Keys.Done, m.Keys.Settings, m.Keys.Add, m.Keys.Help, m.Keys.Quit),
	})
}
