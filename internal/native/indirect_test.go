package native

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type table map[string]string

func (t table) Load(ref string) (string, error) {
	v, ok := t[ref]
	if !ok {
		return "", errors.New("missing entry")
	}
	return v, nil
}

func TestIsIndirectString(t *testing.T) {
	assert.True(t, IsIndirectString(`@%SystemRoot%\System32\AudioSrv.dll,-203`))
	assert.False(t, IsIndirectString("Spotify"))
	assert.False(t, IsIndirectString(""))
}

func TestResolveDisplayName(t *testing.T) {
	tbl := table{"@ref,-1": "System Sounds"}

	got, err := ResolveDisplayName("@ref,-1", tbl)
	require.NoError(t, err)
	assert.Equal(t, "System Sounds", got)

	// Literal names pass through untouched.
	got, err = ResolveDisplayName("Spotify", tbl)
	require.NoError(t, err)
	assert.Equal(t, "Spotify", got)

	// Without a string table the reference is returned as-is.
	got, err = ResolveDisplayName("@ref,-1", nil)
	require.NoError(t, err)
	assert.Equal(t, "@ref,-1", got)

	_, err = ResolveDisplayName("@unknown", tbl)
	assert.Error(t, err)
}

func TestFakeInvalidation(t *testing.T) {
	f := NewFakeSessionControl(100, "s")
	require.NoError(t, f.SetVolume(0.5))

	f.Invalidate()
	assert.ErrorIs(t, f.SetVolume(0.2), ErrDeviceInvalidated)
	_, err := f.PeakValue()
	assert.ErrorIs(t, err, ErrDeviceInvalidated)
}
