package timer

import (
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/progress"
	btimer "github.com/charmbracelet/bubbles/timer"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"

	"github.com/finlite/taskfocus/internal/bus"
	"github.com/finlite/taskfocus/internal/config"
)

const (
	padding  = 2
	maxWidth = 80
)

type keymap struct {
	togglePlay key.Binding
	reset      key.Binding
	stop       key.Binding
	duration   key.Binding
	quit       key.Binding
}

var defaultKeymap = keymap{
	togglePlay: key.NewBinding(
		key.WithKeys("p"),
		key.WithHelp("p", "pause/resume"),
	),
	reset: key.NewBinding(
		key.WithKeys("r"),
		key.WithHelp("r", "restart"),
	),
	stop: key.NewBinding(
		key.WithKeys("s"),
		key.WithHelp("s", "stop session"),
	),
	duration: key.NewBinding(
		key.WithKeys("d"),
		key.WithHelp("d", "set duration"),
	),
	quit: key.NewBinding(
		key.WithKeys("q", "ctrl+c"),
		key.WithHelp("q", "quit"),
	),
}

type styles struct {
	base      lipgloss.Style
	main      lipgloss.Style
	secondary lipgloss.Style
	hint      lipgloss.Style
}

func newStyles(cfg *config.Config) styles {
	main := lipgloss.Color("#DB2763")
	if cfg.DarkTheme {
		main = lipgloss.Color("#F25D94")
	}

	return styles{
		base:      lipgloss.NewStyle().Padding(1, padding),
		main:      lipgloss.NewStyle().Foreground(main).Bold(true),
		secondary: lipgloss.NewStyle().Faint(true),
		hint:      lipgloss.NewStyle().Faint(true).Italic(true),
	}
}

type busEventMsg bus.Event

// Model is the full-screen countdown surface. The machine owns the
// session; the model only renders the snapshot and forwards control
// keys, so a control action from another surface shows up here on the
// next bus event.
type Model struct {
	machine      *Machine
	clock        btimer.Model
	progress     progress.Model
	help         help.Model
	keymap       keymap
	styles       styles
	durationForm *huh.Form
	minutesInput string
	events       <-chan bus.Event
	unsubscribe  func()
	width        int
	quitting     bool
}

// NewModel builds the countdown surface for a session already started on
// the machine. The session label comes from the snapshot, so a session
// started by a sibling process renders the same way.
func NewModel(m *Machine, cfg *config.Config) *Model {
	events, unsubscribe := m.bus.Subscribe()

	return &Model{
		machine:     m,
		clock:       btimer.NewWithInterval(m.Remaining(time.Now()), time.Second),
		progress:    progress.New(progress.WithDefaultGradient()),
		help:        help.New(),
		keymap:      defaultKeymap,
		styles:      newStyles(cfg),
		events:      events,
		unsubscribe: unsubscribe,
	}
}

func (m *Model) Init() tea.Cmd {
	return tea.Batch(m.clock.Init(), m.waitForEvent())
}

func (m *Model) waitForEvent() tea.Cmd {
	return func() tea.Msg {
		ev, ok := <-m.events
		if !ok {
			return nil
		}

		return busEventMsg(ev)
	}
}

// syncClock re-derives the display countdown from the snapshot.
func (m *Model) syncClock() {
	m.clock.Timeout = m.machine.Remaining(time.Now())
}
