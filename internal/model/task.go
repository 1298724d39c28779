package model

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

var (
	ErrInvalidIntensity = errors.New("model: invalid task intensity")
	ErrBlankText        = errors.New("model: task text is required")
)

const (
	MinIntensity     = 0
	MaxIntensity     = 100
	DefaultIntensity = 40
)

// Task is a to-do item. Intensity is the 0-100 dial for how often the
// reminder loop nags about it.
type Task struct {
	ID        int64
	Text      string
	Intensity int
	Done      bool
	CreatedAt time.Time
}

func (t Task) Active() bool {
	return !t.Done
}

func ClampIntensity(v int) int {
	if v < MinIntensity {
		return MinIntensity
	}
	if v > MaxIntensity {
		return MaxIntensity
	}
	return v
}

// NormalizeText trims the text and rejects blank input.
func NormalizeText(text string) (string, error) {
	trimmed := strings.TrimSpace(text)
	if trimmed == "" {
		return "", ErrBlankText
	}
	return trimmed, nil
}

func (t Task) Validate() error {
	if t.ID <= 0 {
		return errors.New("model: task id is required")
	}
	if strings.TrimSpace(t.Text) == "" {
		return ErrBlankText
	}
	if t.Intensity < MinIntensity || t.Intensity > MaxIntensity {
		return fmt.Errorf("%w: %d", ErrInvalidIntensity, t.Intensity)
	}
	if t.CreatedAt.IsZero() {
		return errors.New("model: task created_at is required")
	}
	return nil
}

func ActiveIDs(tasks []Task) map[int64]bool {
	out := make(map[int64]bool, len(tasks))
	for _, t := range tasks {
		if t.Active() {
			out[t.ID] = true
		}
	}
	return out
}
