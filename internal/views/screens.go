package views

import (
	"fmt"
	"strings"
)

type TaskItemData struct {
	ID        int64
	Text      string
	Intensity int
}

type TaskPanelData struct {
	Title      string
	Actions    string
	Items      []TaskItemData
	SelectedID int64
	Empty      string
}

type ComposePanelData struct {
	InputView string
	Intensity int
	DialView  string
	ErrorText string
}

type SettingsPanelData struct {
	Theme         string
	QuotesEnabled bool
	QuoteView     string
	Refreshing    bool
	SpinnerView   string
	LoopStatus    string
}

type ReminderData struct {
	TaskID  int64
	Body    string
	Posted  string
	Repeats int
}

type HelpPanelData struct {
	CurrentView string
	Bindings    []string
	HelpView    string
}

func RenderTaskPanel(theme Theme, data TaskPanelData) string {
	var b strings.Builder
	b.WriteString(data.Title + ":\n")
	if data.Actions != "" {
		b.WriteString(theme.Muted.Render("actions: "+data.Actions) + "\n")
	}
	if len(data.Items) == 0 {
		empty := data.Empty
		if empty == "" {
			empty = "(none)"
		}
		b.WriteString(theme.Muted.Render(empty))
		return b.String()
	}
	for _, item := range data.Items {
		line := fmt.Sprintf("#%-4d %s %s", item.ID, IntensityBadge(item.Intensity), item.Text)
		if item.ID == data.SelectedID {
			b.WriteString(theme.Selected.Render("> "+line) + "\n")
			continue
		}
		b.WriteString("  " + line + "\n")
	}
	return strings.TrimSuffix(b.String(), "\n")
}

// IntensityBadge buckets a 0..100 intensity into a coarse label.
func IntensityBadge(intensity int) string {
	switch {
	case intensity >= 75:
		return "[LOUD]"
	case intensity >= 40:
		return "[FIRM]"
	default:
		return "[SOFT]"
	}
}

func RenderComposePanel(data ComposePanelData) string {
	var b strings.Builder
	b.WriteString("new task:\n")
	b.WriteString(data.InputView + "\n")
	b.WriteString(fmt.Sprintf("intensity: %3d %s\n", data.Intensity, data.DialView))
	b.WriteString("keys: [enter]save [left/right]intensity -/+5 [esc]cancel")
	if data.ErrorText != "" {
		b.WriteString("\nerror: " + data.ErrorText)
	}
	return b.String()
}

func RenderSettingsPanel(data SettingsPanelData) string {
	var b strings.Builder
	b.WriteString("settings:\n")
	b.WriteString(fmt.Sprintf("theme: %s\n", data.Theme))
	quotes := "off"
	if data.QuotesEnabled {
		quotes = "on"
	}
	b.WriteString(fmt.Sprintf("motivational quotes: %s\n", quotes))
	if data.LoopStatus != "" {
		b.WriteString(fmt.Sprintf("reminder loop: %s\n", data.LoopStatus))
	}
	b.WriteString("actions: [t]theme [o]quotes on/off [r]refresh quote\n")
	if data.Refreshing {
		b.WriteString(data.SpinnerView + " fetching quote\n")
	}
	if data.QuotesEnabled {
		if strings.TrimSpace(data.QuoteView) == "" {
			b.WriteString("\n(no quote cached yet)")
		} else {
			b.WriteString("\n" + data.QuoteView)
		}
	}
	return strings.TrimSuffix(b.String(), "\n")
}

func RenderReminderPanel(reminders []ReminderData) string {
	if len(reminders) == 0 {
		return ""
	}
	var b strings.Builder
	b.WriteString("reminders ([c] to clear):\n")
	for _, r := range reminders {
		b.WriteString(fmt.Sprintf("#%d @%s", r.TaskID, r.Posted))
		if r.Repeats > 0 {
			b.WriteString(fmt.Sprintf(" (x%d)", r.Repeats+1))
		}
		b.WriteString("\n" + r.Body + "\n")
	}
	return strings.TrimSuffix(b.String(), "\n")
}

func RenderCommandPalette(active bool, input string) string {
	if !active {
		return ""
	}
	return fmt.Sprintf("command: /%s", input)
}

func RenderHelpPanel(data HelpPanelData) string {
	return fmt.Sprintf("help:\n%s view:\n%s\n%s",
		strings.ToLower(data.CurrentView),
		strings.Join(data.Bindings, "\n"),
		data.HelpView,
	)
}
