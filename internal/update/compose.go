package update

import (
	tea "github.com/charmbracelet/bubbletea"

	"github.com/sandeepkv93/nagd/internal/model"
)

const intensityStep = 5

func (m Model) openCompose() Model {
	m.Compose = ComposeState{Active: true, Intensity: model.DefaultIntensity}
	m.taskInput.SetValue("")
	m.taskInput.Focus()
	m.Status = StatusBar{Text: "new task"}
	return m
}

func (m Model) closeCompose() Model {
	m.Compose.Active = false
	m.Compose.Err = ""
	m.taskInput.Blur()
	m.taskInput.SetValue("")
	return m
}

func (m Model) handleComposeKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		m = m.closeCompose()
		m.Status = StatusBar{Text: "new task cancelled"}
		return m, nil
	case "up", "ctrl+k":
		m.Compose.Intensity = model.ClampIntensity(m.Compose.Intensity + intensityStep)
		return m, nil
	case "down", "ctrl+j":
		m.Compose.Intensity = model.ClampIntensity(m.Compose.Intensity - intensityStep)
		return m, nil
	case "enter":
		text, err := model.NormalizeText(m.taskInput.Value())
		if err != nil {
			m.Compose.Err = "task text is required"
			return m, nil
		}
		intensity := m.Compose.Intensity
		m = m.closeCompose()
		return m, m.addTaskCmd(text, intensity)
	}

	var cmd tea.Cmd
	m.taskInput, cmd = m.taskInput.Update(msg)
	m.Compose.Err = ""
	return m, cmd
}
