// Package backend defines the capability set consumed from the native media
// engine. The playback controller is written against these interfaces; the
// libVLC binding in internal/vlc implements them, and Mock stands in for
// tests.
package backend

// State mirrors the native player state set.
type State int

const (
	StateIdle State = iota
	StateOpening
	StateBuffering
	StatePlaying
	StatePaused
	StateStopped
	StateEnded
	StateError
)

// String returns the state name for debugging.
func (s State) String() string {
	switch s {
	case StateIdle:
		return "Idle"
	case StateOpening:
		return "Opening"
	case StateBuffering:
		return "Buffering"
	case StatePlaying:
		return "Playing"
	case StatePaused:
		return "Paused"
	case StateStopped:
		return "Stopped"
	case StateEnded:
		return "Ended"
	case StateError:
		return "Error"
	default:
		return "Unknown"
	}
}

// IsActive returns true if the native transport is playing or paused.
func (s State) IsActive() bool {
	return s == StatePlaying || s == StatePaused
}

// Backend is the native media engine.
type Backend interface {
	// NewSession creates a native player bound to a single media URI.
	NewSession(uri string) (Session, error)

	// CanPlayURI reports whether the engine supports the URI's scheme.
	CanPlayURI(uri string) bool

	// Equalizer primitives. Band layout and preset list are fixed for the
	// engine's lifetime.
	BandCount() int
	BandFrequency(index int) float64
	PresetCount() int
	PresetName(index int) string
	NewFlatEqualizer() Equalizer
	NewPresetEqualizer(index int) Equalizer

	Close() error
}

// Session is one live native player. It is exclusively owned by the playback
// controller; all methods except the registered event callbacks must be
// called from the control goroutine.
type Session interface {
	Play() error
	SetPause(paused bool)
	Stop()

	// Release destroys the native player and frees its resources. The
	// session must not be used afterwards.
	Release()

	State() State
	Position() float64 // fraction of the media length in [0,1]
	SetPosition(fraction float64)
	Length() int64 // media length in milliseconds
	Seekable() bool
	CanPause() bool

	SetVolume(volume int) // native range 0..100
	Volume() int
	SetMute(muted bool)
	Muted() bool

	// SetEqualizer attaches an equalizer to the session. The session only
	// references the handle; ownership stays with the caller.
	SetEqualizer(eq Equalizer) error

	// OnPlaying and OnEndReached register event callbacks. Callbacks are
	// delivered on engine-owned notifier goroutines and must not touch
	// shared state directly.
	OnPlaying(fn func())
	OnEndReached(fn func())
}

// Equalizer is a native equalizer handle. It is independent of any session
// and must be released explicitly.
type Equalizer interface {
	SetPreamp(db float64)
	Preamp() float64
	SetBandGain(index int, db float64)
	BandGain(index int) float64
	Release()
}
