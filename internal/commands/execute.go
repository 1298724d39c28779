package commands

import "fmt"

type Result struct {
	Message string
}

type Handlers struct {
	Add     func(AddArgs) (Result, error)
	Done    func(TaskArgs) (Result, error)
	Todo    func(TaskArgs) (Result, error)
	Delete  func(TaskArgs) (Result, error)
	Quotes  func(QuotesArgs) (Result, error)
	Theme   func(ThemeArgs) (Result, error)
	Refresh func() (Result, error)
}

func missing(t Type) error {
	return &CommandError{Code: ErrCodeHandlerMissing, Message: fmt.Sprintf("%s handler not configured", t)}
}

func Execute(cmd Command, handlers Handlers) (Result, error) {
	switch cmd.Type {
	case TypeAdd:
		if handlers.Add == nil {
			return Result{}, missing(cmd.Type)
		}
		return handlers.Add(*cmd.Add)
	case TypeDone, TypeTodo, TypeDelete:
		h := map[Type]func(TaskArgs) (Result, error){
			TypeDone:   handlers.Done,
			TypeTodo:   handlers.Todo,
			TypeDelete: handlers.Delete,
		}[cmd.Type]
		if h == nil {
			return Result{}, missing(cmd.Type)
		}
		return h(*cmd.Task)
	case TypeQuotes:
		if handlers.Quotes == nil {
			return Result{}, missing(cmd.Type)
		}
		return handlers.Quotes(*cmd.Quotes)
	case TypeTheme:
		if handlers.Theme == nil {
			return Result{}, missing(cmd.Type)
		}
		return handlers.Theme(*cmd.Theme)
	case TypeRefresh:
		if handlers.Refresh == nil {
			return Result{}, missing(cmd.Type)
		}
		return handlers.Refresh()
	default:
		return Result{}, &CommandError{Code: ErrCodeUnknownCommand, Message: fmt.Sprintf("unknown command type: %s", cmd.Type)}
	}
}
