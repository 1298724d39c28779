package update

import (
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/sandeepkv93/nagd/internal/commands"
)

func (m Model) handlePaletteKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		m = m.closePalette()
		m.Status = StatusBar{Text: "command palette closed"}
		return m, nil
	case "enter":
		m.Palette.Input = m.commandInput.Value()
		return m.executePaletteCommand()
	}
	var cmd tea.Cmd
	m.commandInput, cmd = m.commandInput.Update(msg)
	m.Palette.Input = m.commandInput.Value()
	return m, cmd
}

func (m Model) closePalette() Model {
	m.Palette.Active = false
	m.Palette.Input = ""
	m.commandInput.SetValue("")
	m.commandInput.Blur()
	return m
}

func (m Model) executePaletteCommand() (Model, tea.Cmd) {
	raw := strings.TrimSpace(m.Palette.Input)
	m = m.closePalette()

	parsed, err := commands.Parse(raw)
	if err != nil {
		m.Status = StatusBar{Text: err.Error(), IsError: true}
		return m, nil
	}

	var next tea.Cmd
	res, err := commands.Execute(parsed, commands.Handlers{
		Add: func(a commands.AddArgs) (commands.Result, error) {
			next = m.addTaskCmd(a.Text, a.Intensity)
			return commands.Result{Message: "adding task"}, nil
		},
		Done: func(a commands.TaskArgs) (commands.Result, error) {
			next = m.markDoneCmd(a.ID)
			return commands.Result{Message: "completing task"}, nil
		},
		Todo: func(a commands.TaskArgs) (commands.Result, error) {
			next = m.markTodoCmd(a.ID)
			return commands.Result{Message: "restoring task"}, nil
		},
		Delete: func(a commands.TaskArgs) (commands.Result, error) {
			next = m.deleteTaskCmd(a.ID)
			return commands.Result{Message: "deleting task"}, nil
		},
		Quotes: func(a commands.QuotesArgs) (commands.Result, error) {
			next = m.setQuotesCmd(a.Enabled)
			return commands.Result{Message: "updating quotes"}, nil
		},
		Theme: func(a commands.ThemeArgs) (commands.Result, error) {
			mode := a.Mode
			if mode == "" {
				mode = m.Settings.Theme.Next()
			}
			next = m.setThemeCmd(mode)
			return commands.Result{Message: "switching theme"}, nil
		},
		Refresh: func() (commands.Result, error) {
			return commands.Result{Message: "refreshing quote"}, nil
		},
	})
	if err != nil {
		m.Status = StatusBar{Text: err.Error(), IsError: true}
		return m, nil
	}
	m.Status = StatusBar{Text: res.Message}
	if parsed.Type == commands.TypeRefresh {
		return m.startRefresh()
	}
	return m, next
}
