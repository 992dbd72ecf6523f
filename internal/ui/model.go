// Package ui is a terminal player for quick time events. The Bubble Tea loop
// owns the world clock: every frame advances it and every key press is routed
// through the dispatcher on the same goroutine.
package ui

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/progress"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/okian/qte/internal/domain/model"
	"github.com/okian/qte/internal/domain/qte"
	"github.com/okian/qte/pkg/logger"
)

const (
	defaultFrameInterval = 16 * time.Millisecond
	maxBarWidth          = 60
	minBarWidth          = 10
)

// Option configures a Model.
type Option func(*Model)

// WithScript replaces the default prompt loop.
func WithScript(defs []model.Definition) Option {
	return func(m *Model) { m.script = defs }
}

// WithFrameInterval sets how often the world clock advances.
func WithFrameInterval(d time.Duration) Option {
	return func(m *Model) {
		if d > 0 {
			m.interval = d
		}
	}
}

// WithLogger overrides the logger handed to the dispatcher.
func WithLogger(l logger.Logger) Option {
	return func(m *Model) {
		if l != nil {
			m.log = l
		}
	}
}

// Model is the root Bubble Tea model.
type Model struct {
	game *game
	keys keyMap
	help help.Model
	bar  progress.Model

	script    []model.Definition
	interval  time.Duration
	log       logger.Logger
	last      time.Time
	showDebug bool
	width     int
	quitting  bool
}

// New creates a player over policy and mapper.
func New(policy qte.Policy, mapper qte.InputMapper, opts ...Option) Model {
	m := Model{
		keys:      defaultKeys(),
		help:      help.New(),
		bar:       progress.New(progress.WithGradient("#5A56E0", "#EE6FF8"), progress.WithoutPercentage()),
		interval:  defaultFrameInterval,
		showDebug: policy.ShowDebugInfo,
	}
	for _, opt := range opts {
		opt(&m)
	}
	if m.log == nil {
		m.log = logger.Named("player")
	}
	m.game = newGame(policy, mapper, m.script, m.log)
	return m
}

// Init starts the frame clock.
func (m Model) Init() tea.Cmd {
	return frame(m.interval)
}

// Update handles messages and returns the updated model and any commands.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	ctx := context.Background()
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.bar.Width = max(min(msg.Width-4, maxBarWidth), minBarWidth)
		return m, nil

	case frameMsg:
		now := time.Time(msg)
		var dt time.Duration
		if !m.last.IsZero() {
			dt = now.Sub(m.last)
		}
		m.last = now
		m.game.advance(ctx, dt)
		return m, frame(m.interval)

	case tea.KeyMsg:
		return m.handleKeyMsg(ctx, msg)
	}
	return m, nil
}

func (m Model) handleKeyMsg(ctx context.Context, msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Quit):
		m.game.stop(ctx)
		m.quitting = true
		return m, tea.Quit
	case key.Matches(msg, m.keys.Pause):
		m.game.togglePause()
		return m, nil
	case key.Matches(msg, m.keys.Debug):
		m.showDebug = !m.showDebug
		return m, nil
	}
	m.game.press(ctx, keyFromMsg(msg))
	return m, nil
}

// keyFromMsg names keys the way bindings and definitions spell them.
func keyFromMsg(msg tea.KeyMsg) model.Key {
	s := msg.String()
	if s == " " {
		s = "space"
	}
	return model.NormalizeKey(s)
}

// Score returns the current tally.
func (m Model) Score() Score { return m.game.score }

// History returns the most recent results, newest first.
func (m Model) History() []Result { return append([]Result(nil), m.game.history...) }

// View renders the player.
func (m Model) View() string {
	if m.quitting {
		return ""
	}
	var b strings.Builder

	s := m.game.score
	b.WriteString(titleStyle.Render("QTE"))
	b.WriteString(mutedStyle.Render(fmt.Sprintf("  hits %d  perfect %d  wrong %d  timeouts %d  streak %d (best %d)",
		s.Hits, s.Perfect, s.Wrong, s.Timeouts, s.Streak, s.Best)))
	b.WriteString("\n\n")

	b.WriteString(m.promptView())
	b.WriteString("\n\n")

	for _, r := range m.game.history {
		b.WriteString(resultLine(r))
		b.WriteString("\n")
	}
	if m.game.err != nil {
		b.WriteString(failureStyle.Render("error: " + m.game.err.Error()))
		b.WriteString("\n")
	}
	b.WriteString("\n")
	b.WriteString(m.help.View(m.keys))
	return b.String()
}

func (m Model) promptView() string {
	i := m.game.current
	if m.game.paused {
		return promptStyle.Render("paused")
	}
	if !i.IsActive() {
		return promptStyle.Render(mutedStyle.Render("get ready..."))
	}
	def := i.Definition()
	ratio := def.Settings.Normalized(i.Elapsed())

	header := fmt.Sprintf("%s  press %s", def.DisplayID(), targetStyle.Render(m.targetLabel(def.Input)))
	window := mutedStyle.Render(fmt.Sprintf("perfect %.0f%%-%.0f%%",
		def.Settings.PerfectRangeMin*100, def.Settings.PerfectRangeMax*100))
	if i.IsTimingPerfect() {
		window = perfectStyle.Render("NOW!")
	}
	lines := []string{header, m.bar.ViewAs(ratio), window}
	if m.showDebug {
		lines = append(lines, debugStyle.Render(i.DebugLine()))
	}
	return promptStyle.Render(lipgloss.JoinVertical(lipgloss.Left, lines...))
}

func (m Model) targetLabel(in model.InputSpec) string {
	if !in.UsesAction() {
		return strings.ToUpper(string(in.TargetKey))
	}
	var keys []model.Key
	if m.game.mapper != nil {
		keys = m.game.mapper.ResolveActionToKeys(in.TargetAction)
	}
	names := make([]string, 0, len(keys))
	for _, k := range keys {
		names = append(names, strings.ToUpper(string(k)))
	}
	return fmt.Sprintf("%s [%s]", strings.ToUpper(string(in.TargetAction)), strings.Join(names, "/"))
}

func resultLine(r Result) string {
	out := r.Outcome
	switch {
	case out.Success && out.Perfect:
		return perfectStyle.Render(fmt.Sprintf("PERFECT  %s in %.2fs", r.Identifier, out.CompletionTime.Seconds()))
	case out.Success:
		return successStyle.Render(fmt.Sprintf("success  %s in %.2fs", r.Identifier, out.CompletionTime.Seconds()))
	default:
		return failureStyle.Render(fmt.Sprintf("failed   %s (%s)", r.Identifier, out.Reason()))
	}
}
