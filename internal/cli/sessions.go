package cli

import (
	"encoding/json"
	"fmt"

	"github.com/olekukonko/tablewriter"

	"github.com/deskmix/deskmix/internal/session"
)

// SessionsCmd prints a one-shot snapshot of every audio session.
type SessionsCmd struct{}

// sessionRow is the json shape of one session in `deskmix sessions`.
type sessionRow struct {
	PID         int     `json:"pid"`
	SessionID   string  `json:"session_id"`
	Name        string  `json:"name"`
	State       string  `json:"state"`
	Volume      float32 `json:"volume"`
	Muted       bool    `json:"muted"`
	Grouping    string  `json:"grouping,omitempty"`
	SystemSound bool    `json:"system_sounds,omitempty"`
}

// Run executes the sessions command.
func (c *SessionsCmd) Run(globals *Globals) error {
	h, err := newHost(globals)
	if err != nil {
		return outputErrorCommon(globals, "HOST_FAILED", err.Error())
	}
	defer h.Close()

	rows := make([]sessionRow, 0, len(h.sessions))
	for _, s := range h.sessions {
		rows = append(rows, snapshotRow(s))
	}

	if globals.Format == "json" {
		enc := json.NewEncoder(globals.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(rows)
	}

	table := tablewriter.NewWriter(globals.Stdout)
	table.Header("PID", "Name", "State", "Volume", "Muted", "Grouping")
	for _, r := range rows {
		muted := ""
		if r.Muted {
			muted = "yes"
		}
		table.Append([]string{
			fmt.Sprintf("%d", r.PID),
			r.Name,
			r.State,
			fmt.Sprintf("%d%%", int(r.Volume*100+0.5)),
			muted,
			r.Grouping,
		})
	}
	return table.Render()
}

func snapshotRow(s *session.Session) sessionRow {
	return sessionRow{
		PID:         s.ProcessID(),
		SessionID:   s.ID(),
		Name:        s.DisplayName(),
		State:       s.State().String(),
		Volume:      s.Volume(),
		Muted:       s.Muted(),
		Grouping:    s.GroupingParam(),
		SystemSound: s.IsSystemSounds(),
	}
}
