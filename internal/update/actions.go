package update

import (
	"context"
	"errors"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/sandeepkv93/nagd/internal/model"
)

var errNoActions = errors.New("no application actions configured")

func (m Model) withTimeout(fn func(ctx context.Context) tea.Msg) tea.Cmd {
	timeout := m.timeout
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()
		return fn(ctx)
	}
}

func (m Model) loadCmd() tea.Cmd {
	a := m.actions
	if a == nil {
		return nil
	}
	return m.withTimeout(func(ctx context.Context) tea.Msg {
		todo, err := a.Tasks(ctx, false)
		if err != nil {
			return DataLoadedMsg{Err: fmt.Errorf("load tasks: %w", err)}
		}
		done, err := a.Tasks(ctx, true)
		if err != nil {
			return DataLoadedMsg{Err: fmt.Errorf("load done tasks: %w", err)}
		}
		settings, err := a.Settings(ctx)
		if err != nil {
			return DataLoadedMsg{Err: fmt.Errorf("load settings: %w", err)}
		}
		return DataLoadedMsg{Todo: todo, Done: done, Settings: settings}
	})
}

func (m Model) actionCmd(fn func(ctx context.Context, a Actions) (string, error)) tea.Cmd {
	a := m.actions
	return m.withTimeout(func(ctx context.Context) tea.Msg {
		if a == nil {
			return ActionResultMsg{Err: errNoActions}
		}
		text, err := fn(ctx, a)
		return ActionResultMsg{Text: text, Err: err}
	})
}

func (m Model) foregroundCmd() tea.Cmd {
	if m.actions == nil {
		return nil
	}
	return m.actionCmd(func(ctx context.Context, a Actions) (string, error) {
		if err := a.Foreground(ctx); err != nil {
			return "", err
		}
		return "reminders scheduled", nil
	})
}

func (m Model) addTaskCmd(text string, intensity int) tea.Cmd {
	return m.actionCmd(func(ctx context.Context, a Actions) (string, error) {
		t, err := a.AddTask(ctx, text, intensity)
		if err != nil && t.ID == 0 {
			return "", err
		}
		return fmt.Sprintf("added #%d %s (intensity %d)", t.ID, t.Text, t.Intensity), err
	})
}

func (m Model) markDoneCmd(id int64) tea.Cmd {
	return m.actionCmd(func(ctx context.Context, a Actions) (string, error) {
		return fmt.Sprintf("marked #%d done", id), a.MarkDone(ctx, id)
	})
}

func (m Model) markTodoCmd(id int64) tea.Cmd {
	return m.actionCmd(func(ctx context.Context, a Actions) (string, error) {
		return fmt.Sprintf("restored #%d to todo", id), a.MarkTodo(ctx, id)
	})
}

func (m Model) deleteTaskCmd(id int64) tea.Cmd {
	return m.actionCmd(func(ctx context.Context, a Actions) (string, error) {
		return fmt.Sprintf("deleted #%d", id), a.DeleteTask(ctx, id)
	})
}

func (m Model) setThemeCmd(mode model.ThemeMode) tea.Cmd {
	return m.actionCmd(func(ctx context.Context, a Actions) (string, error) {
		return fmt.Sprintf("theme: %s", mode), a.SetThemeMode(ctx, mode)
	})
}

func (m Model) setQuotesCmd(enabled bool) tea.Cmd {
	return m.actionCmd(func(ctx context.Context, a Actions) (string, error) {
		state := "off"
		if enabled {
			state = "on"
		}
		return "quotes " + state, a.SetQuotesEnabled(ctx, enabled)
	})
}

func (m Model) refreshQuoteCmd() tea.Cmd {
	a := m.actions
	if a == nil {
		return nil
	}
	return m.withTimeout(func(ctx context.Context) tea.Msg {
		return QuoteRefreshedMsg{Updated: a.RefreshQuote(ctx)}
	})
}

func waitForTrayCmd(ch <-chan struct{}) tea.Cmd {
	if ch == nil {
		return nil
	}
	return func() tea.Msg {
		if _, ok := <-ch; !ok {
			return nil
		}
		return TrayChangedMsg{}
	}
}
