package model

import (
	"errors"
	"fmt"
	"strings"
)

const fallbackQuoteReference = "Bible"

// Quote is a short motivational line attached to reminders when quotes are
// enabled in settings.
type Quote struct {
	Text      string
	Reference string
}

// NewQuote returns nil when text is blank.
func NewQuote(text, reference string) *Quote {
	text = strings.TrimSpace(text)
	reference = strings.TrimSpace(reference)
	if text == "" {
		return nil
	}
	if reference == "" {
		reference = fallbackQuoteReference
	}
	return &Quote{Text: text, Reference: reference}
}

func (q Quote) String() string {
	return fmt.Sprintf("“%s” (%s)", q.Text, q.Reference)
}

// Reminder is one "show reminder" request for a task. Repeats for the same
// TaskID replace the previous one instead of stacking.
type Reminder struct {
	TaskID int64
	Text   string
	Quote  *Quote
}

func NewReminder(task Task, quote *Quote) Reminder {
	return Reminder{TaskID: task.ID, Text: task.Text, Quote: quote}
}

func (r Reminder) Title() string {
	return "Task Reminder"
}

func (r Reminder) Body() string {
	base := fmt.Sprintf("🚨 %s - Get it done already! 💥", r.Text)
	if r.Quote == nil {
		return base
	}
	return base + "\n" + r.Quote.String()
}

func (r Reminder) Validate() error {
	if r.TaskID <= 0 {
		return errors.New("model: reminder task_id is required")
	}
	if strings.TrimSpace(r.Text) == "" {
		return errors.New("model: reminder text is required")
	}
	return nil
}
