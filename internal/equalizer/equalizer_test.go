package equalizer

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tactusaudio/tactus/internal/backend"
)

func TestNew_QueriesBandLayoutOnce(t *testing.T) {
	b := backend.NewMock()
	m := New(b, nil)

	freqs := m.BandFrequencies()

	require.Len(t, freqs, b.BandCount())
	assert.InDelta(t, 60.0, freqs[0], 1e-9)
	assert.InDelta(t, 16000.0, freqs[len(freqs)-1], 1e-9)
}

func TestRange(t *testing.T) {
	m := New(backend.NewMock(), nil)

	minDb, maxDb := m.Range()

	assert.InDelta(t, -20.0, minDb, 1e-9)
	assert.InDelta(t, 20.0, maxDb, 1e-9)
}

// All-zero gains must leave the engine's band defaults untouched while the
// preamp is still applied.
func TestApplyValues_AllZeroSkipsBands(t *testing.T) {
	b := backend.NewMock()
	m := New(b, nil)

	err := m.ApplyValues(make([]float64, b.BandCount()), 6.5)

	require.NoError(t, err)
	require.Equal(t, 1, b.LiveEqualizers())
	assert.InDelta(t, 6.5, m.PreampDb(), 1e-9)

	// The live handle has the preamp but saw no per-band writes.
	sess, err := b.NewSession("file:///a.flac")
	require.NoError(t, err)
	m.Attach(sess.(*backend.MockSession))
	eq := sess.(*backend.MockSession).Equalizer().(*backend.MockEqualizer)
	assert.InDelta(t, 6.5, eq.Preamp(), 1e-9)
	assert.Zero(t, eq.BandGainCalls())
}

func TestApplyValues_NonZeroSetsEachBand(t *testing.T) {
	b := backend.NewMock()
	m := New(b, nil)
	gains := make([]float64, b.BandCount())
	gains[0] = 3
	gains[4] = -4.5

	err := m.ApplyValues(gains, 0)

	require.NoError(t, err)
	assert.Equal(t, gains, m.BandGainsDb())

	sess, err := b.NewSession("file:///a.flac")
	require.NoError(t, err)
	m.Attach(sess.(*backend.MockSession))
	eq := sess.(*backend.MockSession).Equalizer().(*backend.MockEqualizer)
	assert.Equal(t, b.BandCount(), eq.BandGainCalls())
	assert.InDelta(t, 3.0, eq.BandGain(0), 1e-9)
	assert.InDelta(t, -4.5, eq.BandGain(4), 1e-9)
}

func TestApplyValues_WrongLengthFails(t *testing.T) {
	m := New(backend.NewMock(), nil)

	err := m.ApplyValues([]float64{1, 2, 3}, 0)

	assert.Error(t, err)
}

// Re-applying must release the previous handle so the engine never holds
// more than one live equalizer per manager.
func TestApplyValues_ReleasesPreviousHandle(t *testing.T) {
	b := backend.NewMock()
	m := New(b, nil)
	gains := make([]float64, b.BandCount())

	require.NoError(t, m.ApplyValues(gains, 1))
	require.NoError(t, m.ApplyValues(gains, 2))
	require.NoError(t, m.ApplyValues(gains, 3))

	assert.Equal(t, 1, b.LiveEqualizers())
	assert.InDelta(t, 3.0, m.PreampDb(), 1e-9)
}

func TestApplyValues_AttachesToActiveSession(t *testing.T) {
	b := backend.NewMock()
	m := New(b, nil)
	sess, err := b.NewSession("file:///a.flac")
	require.NoError(t, err)
	ms := sess.(*backend.MockSession)
	m.Attach(ms)

	gains := make([]float64, b.BandCount())
	gains[2] = 5
	require.NoError(t, m.ApplyValues(gains, 0))

	require.NotNil(t, ms.Equalizer())
	assert.InDelta(t, 5.0, ms.Equalizer().BandGain(2), 1e-9)
}

func TestPresets_ReadsValuesAndReleasesTemporaries(t *testing.T) {
	b := backend.NewMock()
	m := New(b, nil)

	presets := m.Presets()

	require.Len(t, presets, b.PresetCount())
	assert.Equal(t, "Flat", presets[0].Name)
	assert.InDelta(t, 12.0, presets[0].PreampDb, 1e-9)
	assert.Equal(t, "Rock", presets[1].Name)
	assert.InDelta(t, 8.0, presets[1].BandGainsDb[0], 1e-9)

	// Temporary handles must not leak.
	assert.Zero(t, b.LiveEqualizers())
}

// The handle outlives sessions and is reattached to each new one.
func TestHandle_SurvivesSessionRecreate(t *testing.T) {
	b := backend.NewMock()
	m := New(b, nil)
	gains := make([]float64, b.BandCount())
	gains[0] = 2
	require.NoError(t, m.ApplyValues(gains, 0))

	first, err := b.NewSession("file:///a.flac")
	require.NoError(t, err)
	m.Attach(first.(*backend.MockSession))
	require.NotNil(t, first.(*backend.MockSession).Equalizer())

	m.Detach()

	second, err := b.NewSession("file:///b.flac")
	require.NoError(t, err)
	m.Attach(second.(*backend.MockSession))

	got := second.(*backend.MockSession).Equalizer()
	require.NotNil(t, got)
	assert.Same(t, first.(*backend.MockSession).Equalizer(), got)
	assert.Equal(t, 1, b.LiveEqualizers())
}

func TestClose_ReleasesHandle(t *testing.T) {
	b := backend.NewMock()
	m := New(b, nil)
	require.NoError(t, m.ApplyValues(make([]float64, b.BandCount()), 0))
	require.Equal(t, 1, b.LiveEqualizers())

	m.Close()

	assert.Zero(t, b.LiveEqualizers())
	m.Close() // idempotent
}
