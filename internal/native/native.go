// Package native defines the contracts deskmix consumes from the OS audio
// subsystem. The real bindings live behind these interfaces; everything above
// this package is platform independent.
package native

import "errors"

// SessionState is the raw activity state the audio subsystem reports for a
// single session, before any overlay logic is applied.
type SessionState int

const (
	StateActive SessionState = iota
	StateInactive
	StateExpired
)

func (s SessionState) String() string {
	switch s {
	case StateActive:
		return "active"
	case StateInactive:
		return "inactive"
	case StateExpired:
		return "expired"
	default:
		return "unknown"
	}
}

// DisconnectReason describes why the subsystem tore a session down. The
// mirror treats every reason the same; it is carried for logging only.
type DisconnectReason int

const (
	DisconnectDeviceRemoved DisconnectReason = iota
	DisconnectServerShutdown
	DisconnectFormatChanged
	DisconnectSessionLogoff
	DisconnectSessionDisconnected
	DisconnectExclusiveModeOverride
)

// ErrDeviceInvalidated is returned by native calls when the audio endpoint
// backing the session has disappeared mid-operation. Callers treat it as an
// expected no-op; a disconnect notification follows shortly.
var ErrDeviceInvalidated = errors.New("native: audio device invalidated")

// SessionControl is the per-session control surface exposed by the audio
// subsystem. All getters perform a live native read; the session mirror
// caches their results and refreshes the cache from listener callbacks.
type SessionControl interface {
	ProcessID() (int, error)
	SessionID() (string, error)
	IsSystemSounds() bool

	Volume() (float32, error)
	SetVolume(v float32) error
	Mute() (bool, error)
	SetMute(m bool) error

	State() (SessionState, error)
	GroupingParam() (string, error)
	DisplayName() (string, error)
	PeakValue() (float32, error)

	RegisterListener(l SessionListener) error
	UnregisterListener(l SessionListener) error
}

// SessionListener is the callback surface a session mirror registers with the
// native session. Callbacks arrive on whatever thread the subsystem chooses,
// potentially concurrently with calls into SessionControl.
type SessionListener interface {
	OnVolumeChanged(volume float32, muted bool)
	OnGroupingParamChanged(grouping string)
	OnStateChanged(state SessionState)
	OnDisplayNameChanged(name string)
	OnChannelVolumeChanged(channelCount int)
	OnIconPathChanged(iconPath string)
	OnSessionDisconnected(reason DisconnectReason)
}
