package commands

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/sandeepkv93/nagd/internal/model"
)

type Type string

const (
	TypeAdd     Type = "add"
	TypeDone    Type = "done"
	TypeTodo    Type = "todo"
	TypeDelete  Type = "delete"
	TypeQuotes  Type = "quotes"
	TypeTheme   Type = "theme"
	TypeRefresh Type = "refresh"
)

type ErrorCode string

const (
	ErrCodeEmptyInput      ErrorCode = "empty_input"
	ErrCodeUnknownCommand  ErrorCode = "unknown_command"
	ErrCodeInvalidArgument ErrorCode = "invalid_argument"
	ErrCodeHandlerMissing  ErrorCode = "handler_missing"
)

type CommandError struct {
	Code    ErrorCode
	Message string
}

func (e *CommandError) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

type AddArgs struct {
	Text      string
	Intensity int
}

// TaskArgs targets one task by id.
type TaskArgs struct {
	ID int64
}

type QuotesArgs struct {
	Enabled bool
}

type ThemeArgs struct {
	// Mode is empty when the command asks to cycle to the next mode.
	Mode model.ThemeMode
}

type Command struct {
	Type   Type
	Raw    string
	Add    *AddArgs
	Task   *TaskArgs
	Quotes *QuotesArgs
	Theme  *ThemeArgs
}

func Parse(input string) (Command, error) {
	raw := strings.TrimSpace(input)
	if raw == "" {
		return Command{}, &CommandError{Code: ErrCodeEmptyInput, Message: "command is empty"}
	}
	if strings.HasPrefix(raw, "/") {
		raw = strings.TrimSpace(strings.TrimPrefix(raw, "/"))
	}
	if raw == "" {
		return Command{}, &CommandError{Code: ErrCodeEmptyInput, Message: "command is empty"}
	}

	parts := strings.Fields(raw)
	head := strings.ToLower(parts[0])
	args := parts[1:]

	switch Type(head) {
	case TypeAdd:
		return parseAdd(input, args)
	case TypeDone, TypeTodo, TypeDelete:
		return parseTask(input, Type(head), args)
	case TypeQuotes:
		return parseQuotes(input, args)
	case TypeTheme:
		return parseTheme(input, args)
	case TypeRefresh:
		return Command{Type: TypeRefresh, Raw: input}, nil
	default:
		return Command{}, &CommandError{Code: ErrCodeUnknownCommand, Message: fmt.Sprintf("unsupported command: %s", head)}
	}
}

// parseAdd accepts "add [intensity] text". A leading integer is the
// intensity; otherwise the default applies.
func parseAdd(raw string, args []string) (Command, error) {
	intensity := model.DefaultIntensity
	if len(args) > 1 {
		if n, err := strconv.Atoi(args[0]); err == nil {
			if n < model.MinIntensity || n > model.MaxIntensity {
				return Command{}, &CommandError{Code: ErrCodeInvalidArgument, Message: fmt.Sprintf("intensity must be between %d and %d", model.MinIntensity, model.MaxIntensity)}
			}
			intensity = n
			args = args[1:]
		}
	}
	text := strings.TrimSpace(strings.Join(args, " "))
	if text == "" {
		return Command{}, &CommandError{Code: ErrCodeInvalidArgument, Message: "add requires task text"}
	}
	return Command{Type: TypeAdd, Raw: raw, Add: &AddArgs{Text: text, Intensity: intensity}}, nil
}

func parseTask(raw string, typ Type, args []string) (Command, error) {
	if len(args) != 1 {
		return Command{}, &CommandError{Code: ErrCodeInvalidArgument, Message: fmt.Sprintf("%s requires a task id", typ)}
	}
	id, err := strconv.ParseInt(strings.TrimPrefix(args[0], "#"), 10, 64)
	if err != nil || id <= 0 {
		return Command{}, &CommandError{Code: ErrCodeInvalidArgument, Message: fmt.Sprintf("invalid task id: %s", args[0])}
	}
	return Command{Type: typ, Raw: raw, Task: &TaskArgs{ID: id}}, nil
}

func parseQuotes(raw string, args []string) (Command, error) {
	if len(args) != 1 {
		return Command{}, &CommandError{Code: ErrCodeInvalidArgument, Message: "quotes requires on or off"}
	}
	switch strings.ToLower(args[0]) {
	case "on", "true", "yes":
		return Command{Type: TypeQuotes, Raw: raw, Quotes: &QuotesArgs{Enabled: true}}, nil
	case "off", "false", "no":
		return Command{Type: TypeQuotes, Raw: raw, Quotes: &QuotesArgs{Enabled: false}}, nil
	default:
		return Command{}, &CommandError{Code: ErrCodeInvalidArgument, Message: fmt.Sprintf("quotes expects on or off, got %s", args[0])}
	}
}

func parseTheme(raw string, args []string) (Command, error) {
	if len(args) == 0 || strings.EqualFold(args[0], "next") {
		return Command{Type: TypeTheme, Raw: raw, Theme: &ThemeArgs{}}, nil
	}
	mode := model.ThemeMode(strings.ToLower(args[0]))
	if !mode.IsValid() {
		return Command{}, &CommandError{Code: ErrCodeInvalidArgument, Message: fmt.Sprintf("unknown theme: %s", args[0])}
	}
	return Command{Type: TypeTheme, Raw: raw, Theme: &ThemeArgs{Mode: mode}}, nil
}
