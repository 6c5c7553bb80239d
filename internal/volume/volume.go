// Package volume tracks the user's volume and mute preferences and pushes
// them to the native session. The normalized level survives session
// destroy/recreate: it is a preference, not session state.
package volume

import (
	"log/slog"
	"math"

	"github.com/tactusaudio/tactus/internal/backend"
)

// Controller converts the normalized [0,1] level to the engine's 0..100
// range, scaled by the current track's replaygain factor. All methods must
// be called on the control goroutine.
type Controller struct {
	level     float64
	muted     bool
	trackGain float64

	session backend.Session
	log     *slog.Logger
}

// New creates a controller at full volume with identity replaygain.
func New(log *slog.Logger) *Controller {
	if log == nil {
		log = slog.Default()
	}
	return &Controller{level: 1, trackGain: 1, log: log}
}

// SetVolume stores the normalized level and, if a session is attached,
// pushes the converted native volume to the engine.
func (c *Controller) SetVolume(level float64) {
	c.level = clamp01(level)
	if c.session != nil {
		c.session.SetVolume(c.native())
	}
}

// Volume returns the stored normalized level regardless of session
// presence.
func (c *Controller) Volume() float64 {
	return c.level
}

// SetMute stores the mute preference and pushes it if a session is
// attached.
func (c *Controller) SetMute(muted bool) {
	c.muted = muted
	if c.session != nil {
		c.session.SetMute(muted)
	}
}

// Muted reports the engine's mute state. Without a session there is nothing
// to silence, so it reports false even if a mute preference is stored.
func (c *Controller) Muted() bool {
	if c.session == nil {
		return false
	}
	return c.session.Muted()
}

// SetTrackGain sets the replaygain scale factor for the current track.
// Values <= 0 reset to identity.
func (c *Controller) SetTrackGain(gain float64) {
	if gain <= 0 {
		gain = 1
	}
	c.trackGain = gain
}

// Attach binds the controller to a new session without pushing anything.
// The playback controller calls Apply once the transport is actually
// playing; pushing earlier stalls some engines.
func (c *Controller) Attach(s backend.Session) {
	c.session = s
}

// Detach drops the session reference. Stored preferences are kept.
func (c *Controller) Detach() {
	c.session = nil
}

// Apply pushes the stored volume and mute preferences to the attached
// session.
func (c *Controller) Apply() {
	if c.session == nil {
		return
	}
	native := c.native()
	c.log.Debug("applying volume", "level", c.level, "gain", c.trackGain, "native", native, "muted", c.muted)
	c.session.SetVolume(native)
	c.session.SetMute(c.muted)
}

// native converts the normalized level to the engine's 0..100 range with
// replaygain applied.
func (c *Controller) native() int {
	v := int(math.Round(c.level * c.trackGain * 100))
	if v < 0 {
		return 0
	}
	if v > 100 {
		return 100
	}
	return v
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
