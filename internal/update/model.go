package update

import (
	"context"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	"github.com/charmbracelet/lipgloss"

	"github.com/sandeepkv93/nagd/internal/model"
	"github.com/sandeepkv93/nagd/internal/notify"
	"github.com/sandeepkv93/nagd/internal/reminder"
)

type View string

const (
	ViewTodo     View = "Todo"
	ViewDone     View = "Done"
	ViewSettings View = "Settings"
)

type StatusBar struct {
	Text    string
	IsError bool
}

type GlobalKeyMap struct {
	Todo     string
	Done     string
	Settings string
	Add      string
	Help     string
	Quit     string
}

// Actions is what the TUI needs from the application layer.
type Actions interface {
	Foreground(ctx context.Context) error
	AddTask(ctx context.Context, text string, intensity int) (model.Task, error)
	MarkDone(ctx context.Context, id int64) error
	MarkTodo(ctx context.Context, id int64) error
	DeleteTask(ctx context.Context, id int64) error
	Tasks(ctx context.Context, done bool) ([]model.Task, error)
	Settings(ctx context.Context) (reminder.Settings, error)
	SetThemeMode(ctx context.Context, mode model.ThemeMode) error
	SetQuotesEnabled(ctx context.Context, enabled bool) error
	RefreshQuote(ctx context.Context) bool
}

// LoopStatus describes the reminder loop for the settings screen.
type LoopStatus interface {
	Describe() string
}

type Options struct {
	Actions        Actions
	Tray           *notify.Tray
	Loop           LoopStatus
	DarkBackground func() bool
	Timeout        time.Duration
}

type CommandPaletteState struct {
	Active bool
	Input  string
}

type ComposeState struct {
	Active    bool
	Intensity int
	Err       string
}

type Model struct {
	CurrentView View
	Todo        []model.Task
	Done        []model.Task
	Settings    reminder.Settings
	Reminders   []notify.Posted
	Palette     CommandPaletteState
	Compose     ComposeState
	HelpVisible bool
	Refreshing  bool
	Status      StatusBar
	Keys        GlobalKeyMap
	Quitting    bool
	LastError   error

	cursor         map[View]int
	actions        Actions
	tray           *notify.Tray
	loop           LoopStatus
	darkBackground func() bool
	timeout        time.Duration

	taskInput      textinput.Model
	commandInput   textinput.Model
	intensityDial  progress.Model
	refreshSpinner spinner.Model
	helpModel      help.Model
	quoteViewport  viewport.Model
}

type SwitchViewMsg struct {
	View View
}

type SetStatusMsg struct {
	Text    string
	IsError bool
}

type ClearStatusMsg struct{}

// DataLoadedMsg carries a fresh snapshot of tasks and settings.
type DataLoadedMsg struct {
	Todo     []model.Task
	Done     []model.Task
	Settings reminder.Settings
	Err      error
}

// ActionResultMsg reports the outcome of a mutation. Successful mutations
// trigger a reload.
type ActionResultMsg struct {
	Text string
	Err  error
}

type QuoteRefreshedMsg struct {
	Updated bool
}

type TrayChangedMsg struct{}

func NewModel(opts Options) Model {
	if opts.Timeout <= 0 {
		opts.Timeout = 10 * time.Second
	}
	if opts.DarkBackground == nil {
		opts.DarkBackground = lipgloss.HasDarkBackground
	}
	m := Model{
		CurrentView: ViewTodo,
		Settings:    reminder.Settings{Theme: model.ThemeSystem},
		Compose:     ComposeState{Intensity: model.DefaultIntensity},
		Keys: GlobalKeyMap{
			Todo:     "1",
			Done:     "2",
			Settings: "3",
			Add:      "a",
			Help:     "?",
			Quit:     "q",
		},
		cursor:         make(map[View]int),
		actions:        opts.Actions,
		tray:           opts.Tray,
		loop:           opts.Loop,
		darkBackground: opts.DarkBackground,
		timeout:        opts.Timeout,
	}
	m.initBubbleComponents()
	return m
}

func (m *Model) initBubbleComponents() {
	m.taskInput = textinput.New()
	m.taskInput.Prompt = "task> "
	m.taskInput.Placeholder = "what needs doing?"
	m.taskInput.CharLimit = 256
	m.taskInput.Width = 42

	m.commandInput = textinput.New()
	m.commandInput.Prompt = "/"
	m.commandInput.CharLimit = 256
	m.commandInput.Width = 48

	m.intensityDial = progress.New(progress.WithDefaultGradient(), progress.WithWidth(30), progress.WithoutPercentage())

	m.refreshSpinner = spinner.New()
	m.refreshSpinner.Spinner = spinner.Dot

	m.helpModel = help.New()
	m.quoteViewport = viewport.New(54, 6)
}

func isKnownView(v View) bool {
	switch v {
	case ViewTodo, ViewDone, ViewSettings:
		return true
	default:
		return false
	}
}

// tasksFor returns the list shown on view, or nil for non-list views.
func (m Model) tasksFor(v View) []model.Task {
	switch v {
	case ViewTodo:
		return m.Todo
	case ViewDone:
		return m.Done
	default:
		return nil
	}
}

func (m Model) selectedTask() (model.Task, bool) {
	tasks := m.tasksFor(m.CurrentView)
	if len(tasks) == 0 {
		return model.Task{}, false
	}
	i := m.cursor[m.CurrentView]
	if i < 0 || i >= len(tasks) {
		return model.Task{}, false
	}
	return tasks[i], true
}

func (m *Model) moveCursor(delta int) {
	n := len(m.tasksFor(m.CurrentView))
	if n == 0 {
		m.cursor[m.CurrentView] = 0
		return
	}
	i := m.cursor[m.CurrentView] + delta
	if i < 0 {
		i = 0
	}
	if i >= n {
		i = n - 1
	}
	m.cursor[m.CurrentView] = i
}

func (m *Model) clampCursors() {
	for _, v := range []View{ViewTodo, ViewDone} {
		n := len(m.tasksFor(v))
		if m.cursor[v] >= n {
			m.cursor[v] = max(n-1, 0)
		}
	}
}
