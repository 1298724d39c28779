package update

import (
	"strings"

	"github.com/sandeepkv93/nagd/internal/views"
)

func (m Model) renderTaskView(theme views.Theme, v View) string {
	data := views.TaskPanelData{}
	switch v {
	case ViewTodo:
		data.Title = "todo"
		data.Actions = "[a]add [enter]done [d]delete"
		data.Empty = "(nothing to nag about, press a to add a task)"
	case ViewDone:
		data.Title = "done"
		data.Actions = "[enter]restore [d]delete"
		data.Empty = "(nothing finished yet)"
	}
	if sel, ok := m.selectedTask(); ok && m.CurrentView == v {
		data.SelectedID = sel.ID
	}
	for _, t := range m.tasksFor(v) {
		data.Items = append(data.Items, views.TaskItemData{
			ID:        t.ID,
			Text:      t.Text,
			Intensity: t.Intensity,
		})
	}
	return views.RenderTaskPanel(theme, data)
}

func (m Model) renderSettingsView() string {
	data := views.SettingsPanelData{
		Theme:         string(m.Settings.Theme),
		QuotesEnabled: m.Settings.QuotesEnabled,
		Refreshing:    m.Refreshing,
		SpinnerView:   m.refreshSpinner.View(),
	}
	if m.Settings.Quote != nil {
		data.QuoteView = m.quoteViewport.View()
	}
	if m.loop != nil {
		data.LoopStatus = m.loop.Describe()
	}
	return views.RenderSettingsPanel(data)
}

func (m Model) renderComposeIfActive() string {
	if !m.Compose.Active {
		return ""
	}
	return views.RenderComposePanel(views.ComposePanelData{
		InputView: m.taskInput.View(),
		Intensity: m.Compose.Intensity,
		DialView:  m.intensityDial.ViewAs(float64(m.Compose.Intensity) / 100),
		ErrorText: m.Compose.Err,
	})
}

func (m Model) renderCommandPalette() string {
	return views.RenderCommandPalette(m.Palette.Active, m.Palette.Input)
}

func (m Model) renderReminderPanel() string {
	data := make([]views.ReminderData, 0, len(m.Reminders))
	for _, p := range m.Reminders {
		data = append(data, views.ReminderData{
			TaskID:  p.Reminder.TaskID,
			Body:    p.Reminder.Body(),
			Posted:  p.PostedAt.Local().Format("15:04"),
			Repeats: p.Repeats,
		})
	}
	return views.RenderReminderPanel(data)
}

func (m *Model) syncQuoteView() {
	q := m.Settings.Quote
	if q == nil {
		m.quoteViewport.SetContent("")
		return
	}
	theme := views.ThemeFor(m.Settings.Theme, m.darkBackground)
	md := "> " + q.Text + "\n>\n> *" + q.Reference + "*"
	m.quoteViewport.SetContent(views.RenderMarkdown(md, theme.GlamourStyle()))
}

func joinNonEmpty(parts ...string) string {
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if strings.TrimSpace(p) != "" {
			out = append(out, p)
		}
	}
	return strings.Join(out, "\n\n")
}
