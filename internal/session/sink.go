package session

import "github.com/deskmix/deskmix/internal/native"

// Session implements native.SessionListener. Callbacks arrive on whatever
// thread the subsystem picked; each one finishes its cache mutation under
// the lock before the change notification hops to the UI context.
var _ native.SessionListener = (*Session)(nil)

// OnVolumeChanged refreshes the cached volume and mute flag.
func (s *Session) OnVolumeChanged(volume float32, muted bool) {
	s.mu.Lock()
	s.volume = volume
	s.muted = muted
	s.mu.Unlock()
	s.notify(PropVolume, PropMuted)
}

// OnGroupingParamChanged refreshes the cached grouping key.
func (s *Session) OnGroupingParamChanged(grouping string) {
	s.mu.Lock()
	s.grouping = grouping
	s.mu.Unlock()
	s.notify(PropGrouping)
}

// OnStateChanged runs the state machine transition for the new raw state.
func (s *Session) OnStateChanged(state native.SessionState) {
	s.applyRawState(state)
}

// OnDisplayNameChanged re-extracts the raw name from the session.
func (s *Session) OnDisplayNameChanged(string) {
	if err := s.refreshRawName(); err != nil {
		s.logger.Debugw("display name refresh failed", "pid", s.pid, "error", err)
	}
	s.notify(PropRawName, PropDisplayName)
}

// OnChannelVolumeChanged is deliberately inert; deskmix mirrors the master
// volume only.
func (s *Session) OnChannelVolumeChanged(int) {}

// OnIconPathChanged is deliberately inert; the icon comes from the app
// metadata snapshot.
func (s *Session) OnIconPathChanged(string) {}

// OnSessionDisconnected expires the session.
func (s *Session) OnSessionDisconnected(reason native.DisconnectReason) {
	s.logger.Debugw("session disconnected", "pid", s.pid, "reason", int(reason))
	s.Disconnect()
}
