// Package equalizer owns the native equalizer handle and the per-band gain
// state. The handle is independent of any playback session: it outlives
// sessions and is reattached to each new one by the playback controller.
package equalizer

import (
	"fmt"
	"log/slog"

	"github.com/tactusaudio/tactus/internal/backend"
)

// Application-level gains use the engine's native range directly. The
// engine owner controls this constant; no rescaling happens anywhere.
const (
	GainMinDb = -20.0
	GainMaxDb = 20.0
)

// Preset is a read-only equalizer preset enumerated from the engine.
type Preset struct {
	Name        string
	PreampDb    float64
	BandGainsDb []float64
}

// Manager holds the equalizer state for the process. All methods must be
// called on the control goroutine.
type Manager struct {
	backend backend.Backend

	bands  []float64
	gains  []float64
	preamp float64

	handle  backend.Equalizer
	session backend.Session
	log     *slog.Logger
}

// New creates a manager. Band frequencies are queried once; they are fixed
// for the engine's lifetime.
func New(b backend.Backend, log *slog.Logger) *Manager {
	if log == nil {
		log = slog.Default()
	}
	count := b.BandCount()
	bands := make([]float64, count)
	for i := range bands {
		bands[i] = b.BandFrequency(i)
	}
	return &Manager{
		backend: b,
		bands:   bands,
		gains:   make([]float64, count),
		log:     log,
	}
}

// BandFrequencies returns the engine's band layout in Hz.
func (m *Manager) BandFrequencies() []float64 {
	return append([]float64(nil), m.bands...)
}

// Range returns the (min, max) gain range in dB.
func (m *Manager) Range() (minDb, maxDb float64) {
	return GainMinDb, GainMaxDb
}

// PreampDb returns the current preamp value.
func (m *Manager) PreampDb() float64 {
	return m.preamp
}

// BandGainsDb returns a copy of the current per-band gains.
func (m *Manager) BandGainsDb() []float64 {
	return append([]float64(nil), m.gains...)
}

// ApplyValues replaces the native equalizer with a fresh one carrying the
// given gains and preamp. The previous handle is always released first, and
// the new one always starts flat: there is no application-wide preamp
// concept, so starting flat avoids double-applying prior tuning. When every
// gain is zero the engine's own band defaults are left untouched; only the
// preamp is set. If a session is attached, the new handle is attached to it.
func (m *Manager) ApplyValues(gains []float64, preampDb float64) error {
	if len(gains) != len(m.bands) {
		return fmt.Errorf("equalizer: got %d gains, engine has %d bands", len(gains), len(m.bands))
	}

	if m.handle != nil {
		m.handle.Release()
		m.handle = nil
	}

	eq := m.backend.NewFlatEqualizer()
	eq.SetPreamp(preampDb)
	if anyNonZero(gains) {
		for i, db := range gains {
			eq.SetBandGain(i, db)
		}
	}

	m.handle = eq
	m.preamp = preampDb
	copy(m.gains, gains)

	if m.session != nil {
		if err := m.session.SetEqualizer(eq); err != nil {
			return fmt.Errorf("equalizer: attach: %w", err)
		}
	}
	return nil
}

// Presets enumerates the engine's presets. Each preset is read through a
// temporary native handle that is released before returning.
func (m *Manager) Presets() []Preset {
	count := m.backend.PresetCount()
	presets := make([]Preset, 0, count)
	for i := 0; i < count; i++ {
		eq := m.backend.NewPresetEqualizer(i)
		gains := make([]float64, len(m.bands))
		for band := range gains {
			gains[band] = eq.BandGain(band)
		}
		preset := Preset{
			Name:        m.backend.PresetName(i),
			PreampDb:    eq.Preamp(),
			BandGainsDb: gains,
		}
		eq.Release()
		presets = append(presets, preset)
	}
	return presets
}

// Attach binds the manager to a session and, if an equalizer handle exists,
// attaches it. Called by the playback controller on session creation.
func (m *Manager) Attach(s backend.Session) {
	m.session = s
	if m.handle == nil {
		return
	}
	if err := s.SetEqualizer(m.handle); err != nil {
		m.log.Warn("equalizer attach failed", "error", err)
	}
}

// Detach drops the session reference. The handle is kept for the next
// session.
func (m *Manager) Detach() {
	m.session = nil
}

// Close releases the native handle, if any.
func (m *Manager) Close() {
	if m.handle != nil {
		m.handle.Release()
		m.handle = nil
	}
}

func anyNonZero(values []float64) bool {
	for _, v := range values {
		if v != 0 {
			return true
		}
	}
	return false
}
