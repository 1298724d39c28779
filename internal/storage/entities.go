package storage

import "github.com/sandeepkv93/nagd/internal/model"

type TaskListFilter struct {
	Done   *bool
	Limit  int
	Offset int
}

func TodoFilter() TaskListFilter {
	done := false
	return TaskListFilter{Done: &done}
}

func DoneFilter() TaskListFilter {
	done := true
	return TaskListFilter{Done: &done}
}

// CachedQuote is the quote persisted in settings together with the local
// calendar day (days since the Unix epoch) it was fetched on.
type CachedQuote struct {
	Text      string
	Reference string
	EpochDay  int64
}

func (q CachedQuote) Quote() *model.Quote {
	return model.NewQuote(q.Text, q.Reference)
}
