// Package tui renders the interactive mixer. The bubbletea run loop is
// single threaded; every read of session state happens through the sessions'
// own cached getters, so the model itself carries no audio state.
package tui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/progress"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/deskmix/deskmix/internal/session"
)

// SessionsChangedMsg asks the mixer to repaint; session state is read fresh
// at render time.
type SessionsChangedMsg struct{}

// tickMsg drives the peak meter polling timer.
type tickMsg time.Time

// Options tunes the mixer.
type Options struct {
	VolumeStep   float32
	PeakInterval time.Duration
}

var (
	titleStyle    = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("205")).Padding(0, 1)
	selectedStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("229"))
	dimStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
	mutedStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("196"))
	stateStyles   = map[session.State]lipgloss.Style{
		session.StateActive:   lipgloss.NewStyle().Foreground(lipgloss.Color("42")),
		session.StateInactive: lipgloss.NewStyle().Foreground(lipgloss.Color("245")),
		session.StateExpired:  lipgloss.NewStyle().Foreground(lipgloss.Color("196")),
		session.StateMoved:    lipgloss.NewStyle().Foreground(lipgloss.Color("214")),
	}
)

// Model is the bubbletea model for the mixer.
type Model struct {
	sessions []*session.Session
	opts     Options

	cursor  int
	volume  progress.Model
	peak    progress.Model
	width   int
	lastErr error
}

// New creates a mixer model over sessions.
func New(sessions []*session.Session, opts Options) Model {
	if opts.VolumeStep <= 0 {
		opts.VolumeStep = 0.05
	}
	if opts.PeakInterval <= 0 {
		opts.PeakInterval = 50 * time.Millisecond
	}
	vol := progress.New(progress.WithDefaultGradient())
	vol.ShowPercentage = false
	vol.Width = 24
	peak := progress.New(progress.WithSolidFill("63"))
	peak.ShowPercentage = false
	peak.Width = 24
	return Model{
		sessions: sessions,
		opts:     opts,
		volume:   vol,
		peak:     peak,
	}
}

// Init implements tea.Model.
func (m Model) Init() tea.Cmd {
	return m.tick()
}

func (m Model) tick() tea.Cmd {
	return tea.Tick(m.opts.PeakInterval, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

// Update implements tea.Model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		return m, nil

	case SessionsChangedMsg:
		return m, nil

	case tickMsg:
		for _, s := range m.sessions {
			if err := s.UpdatePeakValueBackground(); err != nil {
				m.lastErr = err
			}
		}
		return m, m.tick()

	case tea.KeyMsg:
		return m.handleKey(msg)
	}
	return m, nil
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q", "ctrl+c":
		return m, tea.Quit

	case "up", "k":
		if m.cursor > 0 {
			m.cursor--
		}
	case "down", "j":
		if m.cursor < len(m.sessions)-1 {
			m.cursor++
		}

	case "left", "-":
		if s := m.selected(); s != nil {
			m.lastErr = s.SetVolume(s.Volume() - m.opts.VolumeStep)
		}
	case "right", "+", "=":
		if s := m.selected(); s != nil {
			m.lastErr = s.SetVolume(s.Volume() + m.opts.VolumeStep)
		}

	case "m":
		if s := m.selected(); s != nil {
			m.lastErr = s.SetMute(!s.Muted())
		}
	case "h":
		if s := m.selected(); s != nil {
			s.Hide()
		}
	case "u":
		if s := m.selected(); s != nil {
			s.Unhide()
		}
	case "r":
		if s := m.selected(); s != nil {
			s.RefreshDisplayName()
		}
	}
	return m, nil
}

func (m Model) selected() *session.Session {
	if m.cursor < 0 || m.cursor >= len(m.sessions) {
		return nil
	}
	return m.sessions[m.cursor]
}

// View implements tea.Model.
func (m Model) View() string {
	var b strings.Builder
	b.WriteString(titleStyle.Render("deskmix"))
	b.WriteString("\n\n")

	for i, s := range m.sessions {
		cursor := "  "
		nameStyle := lipgloss.NewStyle()
		if i == m.cursor {
			cursor = "> "
			nameStyle = selectedStyle
		}

		state := s.State()
		name := nameStyle.Render(fmt.Sprintf("%-22s", truncate(s.DisplayName(), 22)))
		badge := stateStyles[state].Render(fmt.Sprintf("%-8s", state))

		volCol := m.volume.ViewAs(float64(s.Volume()))
		if s.Muted() {
			volCol = mutedStyle.Render("muted " + strings.Repeat("─", 18))
		}
		peakCol := m.peak.ViewAs(float64(s.PeakValue()))

		b.WriteString(fmt.Sprintf("%s%s %s  %s %3d%%  %s\n",
			cursor, name, badge, volCol, int(s.Volume()*100+0.5), peakCol))
	}

	b.WriteString("\n")
	b.WriteString(dimStyle.Render("↑/↓ select · ←/→ volume · m mute · h hide · u unhide · r refresh · q quit"))
	if m.lastErr != nil {
		b.WriteString("\n")
		b.WriteString(mutedStyle.Render("error: " + m.lastErr.Error()))
	}
	b.WriteString("\n")
	return b.String()
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n-1] + "…"
}
