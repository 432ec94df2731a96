package cli

import (
	"fmt"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/deskmix/deskmix/internal/session"
	"github.com/deskmix/deskmix/internal/tui"
)

// MixCmd launches the interactive terminal mixer.
type MixCmd struct{}

// Run executes the mix command.
func (c *MixCmd) Run(globals *Globals) error {
	if !globals.StyledOutput() {
		return outputErrorCommon(globals, "NO_TTY", "the mixer needs an interactive terminal")
	}

	h, err := newHost(globals)
	if err != nil {
		return outputErrorCommon(globals, "HOST_FAILED", err.Error())
	}
	defer h.Close()

	peakInterval, err := time.ParseDuration(globals.Config.Mixer.PeakPollInterval)
	if err != nil {
		peakInterval = 50 * time.Millisecond
	}

	model := tui.New(h.sessions, tui.Options{
		VolumeStep:   float32(globals.Config.Mixer.VolumeStep),
		PeakInterval: peakInterval,
	})
	p := tea.NewProgram(model, tea.WithAltScreen())

	// Session notifications already run on the dispatcher goroutine; the
	// forward into bubbletea is just a repaint hint.
	for _, s := range h.sessions {
		s.Watch(func(session.Property) {
			p.Send(tui.SessionsChangedMsg{})
		})
	}

	globals.Debug("starting mixer with %d sessions", len(h.sessions))
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("mixer terminated: %w", err)
	}
	return nil
}
