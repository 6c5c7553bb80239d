// Package playback drives the native media engine: it owns the playback
// session, the pause/seek/stop state machine, and the handlers for the
// engine's asynchronous events.
//
// Two execution contexts exist. Everything here mutates state on the
// control goroutine (the runloop owner); the engine's notifier goroutines
// only ever touch the controller through the runloop bridge. Callers
// outside the control goroutine must go through runloop.Invoke themselves.
package playback

import (
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/tactusaudio/tactus/internal/backend"
	"github.com/tactusaudio/tactus/internal/equalizer"
	"github.com/tactusaudio/tactus/internal/runloop"
	"github.com/tactusaudio/tactus/internal/volume"
)

// ErrUnsupportedProperty is returned when a property name is not
// recognized. Asking for an unknown property is a programming error, so it
// fails loudly instead of returning a zero value.
var ErrUnsupportedProperty = errors.New("playback: unsupported property")

// DefaultEventTimeout bounds how long an engine notifier goroutine waits
// for the control goroutine to handle an event.
const DefaultEventTimeout = 500 * time.Millisecond

// NoSeek is the seek position meaning "start from the beginning".
const NoSeek int64 = -1

// Options configures a Controller.
type Options struct {
	// EventTimeout overrides DefaultEventTimeout. Mostly for tests.
	EventTimeout time.Duration

	Logger *slog.Logger
}

// Controller reconciles user intent (play/pause/seek/stop) with the
// engine's asynchronous events. At most one native session exists at a
// time, and the controller owns it exclusively.
type Controller struct {
	loop    *runloop.Loop
	backend backend.Backend
	source  Source
	volume  *volume.Controller
	eq      *equalizer.Manager

	session backend.Session
	song    Song
	state   State

	// paused is the tracked user intent, not the engine state. It starts
	// true: with no session we are paused by definition.
	paused bool

	// pendingSeekMs is an absolute position to apply once the engine
	// signals it is playing; engines cannot seek before that. NoSeek when
	// none is pending.
	pendingSeekMs int64

	listeners    []Listener
	eventTimeout time.Duration
	log          *slog.Logger
}

// New creates a controller. The volume controller and equalizer manager are
// attached to every session the controller creates.
func New(loop *runloop.Loop, b backend.Backend, source Source, vol *volume.Controller, eq *equalizer.Manager, opts Options) *Controller {
	timeout := opts.EventTimeout
	if timeout <= 0 {
		timeout = DefaultEventTimeout
	}
	log := opts.Logger
	if log == nil {
		log = slog.Default()
	}
	return &Controller{
		loop:          loop,
		backend:       b,
		source:        source,
		volume:        vol,
		eq:            eq,
		state:         StateIdle,
		paused:        true,
		pendingSeekMs: NoSeek,
		eventTimeout:  timeout,
		log:           log,
	}
}

// AddListener registers a notification listener.
func (c *Controller) AddListener(l Listener) {
	c.listeners = append(c.listeners, l)
}

// State returns the current playback state.
func (c *Controller) State() State { return c.state }

// Paused returns the tracked pause flag.
func (c *Controller) Paused() bool { return c.paused }

// CurrentSong returns the selected song, or nil. It reads as nil from
// inside a SongEnded callback.
func (c *Controller) CurrentSong() Song { return c.song }

// CanPlayURI reports whether the engine supports the URI.
func (c *Controller) CanPlayURI(uri string) bool {
	return c.backend.CanPlayURI(uri)
}

// Seekable reports whether seeking is currently meaningful.
func (c *Controller) Seekable() bool {
	return c.song != nil
}

// PositionMs returns the playback position in milliseconds, or 0 when the
// transport is in neither Playing nor Paused.
func (c *Controller) PositionMs() int64 {
	if c.session == nil || !c.session.State().IsActive() {
		return 0
	}
	return int64(c.session.Position() * float64(c.session.Length()))
}

// Play starts playing song, seeking to seekMs once the transport is ready
// (NoSeek to start from the beginning). Any existing session is destroyed
// first: the engine proved unreliable when player objects were reused, so
// the policy is always destroy-and-recreate.
func (c *Controller) Play(song Song, seekMs int64) error {
	if song == nil {
		return errors.New("playback: no song")
	}

	if c.session != nil {
		c.discardSession()
	}

	c.log.Debug("starting song", "uri", song.URI(), "seek_ms", seekMs)

	sess, err := c.backend.NewSession(song.URI())
	if err != nil {
		return fmt.Errorf("playback: create session: %w", err)
	}

	c.session = sess
	c.song = song
	c.state = StateStarting
	c.pendingSeekMs = seekMs

	// The seek (and the pause reapply) happen on the engine's "playing"
	// event; nothing can be applied before the transport reports ready.
	sess.OnPlaying(c.onPlayingAsync)
	sess.OnEndReached(c.onEndReachedAsync)

	c.eq.Attach(sess)
	c.volume.SetTrackGain(song.ReplayGain())
	c.volume.Attach(sess)

	if err := sess.Play(); err != nil {
		c.discardSession()
		c.state = StateIdle
		return fmt.Errorf("playback: play: %w", err)
	}
	return nil
}

// Pause sets the tracked pause flag. With no session, or when the engine
// cannot pause the current media, the flag is forced true: there is nothing
// to un-pause. Paused/Unpaused fire only on an actual transition, but the
// flag is always re-applied to the engine so that whatever a notification
// handler did, engine and tracked state end up consistent.
func (c *Controller) Pause(paused bool) {
	if c.session == nil || !c.session.CanPause() {
		paused = true
	}

	prev := c.paused
	c.paused = paused

	if c.paused != prev {
		if c.paused {
			c.emitPaused()
		} else {
			c.emitUnpaused()
		}
	}

	// A listener may have flipped the flag again; push whatever is
	// tracked now.
	if c.session != nil {
		c.session.SetPause(c.paused)
		switch {
		case c.state == StatePlaying && c.paused:
			c.state = StatePaused
		case c.state == StatePaused && !c.paused:
			c.state = StatePlaying
		}
	} else {
		// No session: paused by definition.
		c.paused = true
	}
}

// Seek moves playback to positionMs. While the transport is playing or
// paused the position is applied directly. While it is still starting the
// transport is restarted with the seek deferred to the "playing" handler;
// the restart blip is a known cost of the engine's seek-while-ready-only
// rule. With no session at all, a selected song is (re)played from the
// requested position.
func (c *Controller) Seek(positionMs int64) {
	switch {
	case c.session != nil:
		st := c.session.State()
		if st == backend.StatePlaying || st == backend.StatePaused {
			c.applySeek(positionMs)
			return
		}
		c.session.Stop()
		c.pendingSeekMs = positionMs
		c.state = StateStarting
		if err := c.session.Play(); err != nil {
			c.log.Warn("restart for seek failed", "error", err)
		}
	case c.song != nil:
		if err := c.Play(c.song, positionMs); err != nil {
			c.log.Warn("play for seek failed", "error", err)
		}
	}
}

func (c *Controller) applySeek(positionMs int64) {
	length := c.session.Length()
	if length > 0 {
		c.session.SetPosition(float64(positionMs) / float64(length))
	}
	c.emitSeeked(c.song, positionMs)
}

// Stop ends playback. The native player is released, not stopped: release
// forces the engine to run its cleanup deterministically. When the
// transport is in neither Playing nor Paused the release is skipped, there
// is nothing worth the engine churn. The selected song is kept so a later
// Seek or Play can resume it.
func (c *Controller) Stop() {
	if c.session == nil {
		c.Pause(true)
		return
	}
	c.state = StateStopping
	c.discardSession()
	c.state = StateIdle
	c.Pause(true)
}

// Destroy tears the controller down: the session is released if present and
// the runloop is aborted, releasing any notifier goroutine still blocked in
// the bridge.
func (c *Controller) Destroy() {
	if c.session != nil {
		c.session.Release()
		c.session = nil
		c.volume.Detach()
		c.eq.Detach()
	}
	c.state = StateIdle
	c.loop.Abort()
}

// discardSession releases the native player if the transport is active and
// drops every reference to it.
func (c *Controller) discardSession() {
	if c.session.State().IsActive() {
		c.session.Release()
	}
	c.session = nil
	c.volume.Detach()
	c.eq.Detach()
}

// endSong runs the end-of-song sequence: the current song is cleared before
// listeners hear about it, so a listener reacting to SongEnded cannot
// re-enter end-of-song handling for the same item. Then the source's next
// item is played, or the controller goes idle.
func (c *Controller) endSong(stopped bool) {
	song := c.song
	c.song = nil
	c.state = StateIdle

	if song != nil {
		c.emitSongEnded(song, stopped)
	}

	next := c.source.Current()
	if next == nil {
		c.log.Debug("source exhausted")
		return
	}
	if err := c.Play(next, NoSeek); err != nil {
		c.log.Warn("next song failed", "uri", next.URI(), "error", err)
	}
}

// onPlayingAsync runs on an engine notifier goroutine. A Timeout or Aborted
// result is dropped: the bridged closure may still run later, and retrying
// would risk handling the same native event twice.
func (c *Controller) onPlayingAsync() {
	err := c.loop.Call(runloop.PriorityHigh, c.eventTimeout, c.onPlayingSync)
	if err != nil {
		c.log.Warn("dropping playing event", "error", err)
	}
}

// onEndReachedAsync runs on an engine notifier goroutine.
func (c *Controller) onEndReachedAsync() {
	err := c.loop.Call(runloop.PriorityHigh, c.eventTimeout, c.onEndReachedSync)
	if err != nil {
		c.log.Warn("dropping end-reached event", "error", err)
	}
}

// onPlayingSync handles the engine's "playing" event on the control
// goroutine.
func (c *Controller) onPlayingSync() {
	if c.session == nil {
		// Stale event from a session discarded after the notification
		// was queued.
		return
	}

	// The user may have requested pause while the transport was still
	// starting; re-apply it before anything else is heard.
	if c.paused {
		c.Pause(true)
	}

	// Safe to push volume now that the transport is running; doing it at
	// session creation stalls some engines.
	c.volume.Apply()

	if c.paused {
		c.state = StatePaused
	} else {
		c.state = StatePlaying
	}

	c.emitSongStarted(c.song)

	if c.pendingSeekMs != NoSeek && c.session.Seekable() {
		pos := c.pendingSeekMs
		length := c.session.Length()
		if length > 0 {
			c.session.SetPosition(float64(pos) / float64(length))
		}
		c.emitSeeked(c.song, pos)
		c.pendingSeekMs = NoSeek
	}
}

// onEndReachedSync handles the engine's "end reached" event on the control
// goroutine. The session is always discarded rather than reused for the
// next song; see Play.
func (c *Controller) onEndReachedSync() {
	if c.session == nil {
		return
	}

	c.state = StateStopping
	c.discardSession()

	c.source.NextEnded()
	c.endSong(false)
}

// Property returns a named property value. Unknown names fail loudly with
// ErrUnsupportedProperty.
func (c *Controller) Property(name string) (any, error) {
	switch name {
	case "volume":
		return c.volume.Volume(), nil
	case "mute":
		return c.volume.Muted(), nil
	case "seekable":
		return c.Seekable(), nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedProperty, name)
	}
}

// SetProperty sets a named property value.
func (c *Controller) SetProperty(name string, value any) error {
	switch name {
	case "volume":
		v, ok := value.(float64)
		if !ok {
			return fmt.Errorf("playback: volume wants float64, got %T", value)
		}
		c.volume.SetVolume(v)
		return nil
	case "mute":
		v, ok := value.(bool)
		if !ok {
			return fmt.Errorf("playback: mute wants bool, got %T", value)
		}
		c.volume.SetMute(v)
		return nil
	default:
		return fmt.Errorf("%w: %q", ErrUnsupportedProperty, name)
	}
}

// Volume returns the normalized volume preference.
func (c *Controller) Volume() float64 { return c.volume.Volume() }

// SetVolume sets the normalized volume preference.
func (c *Controller) SetVolume(v float64) { c.volume.SetVolume(v) }

// Muted reports the engine mute state.
func (c *Controller) Muted() bool { return c.volume.Muted() }

// SetMute sets the mute preference.
func (c *Controller) SetMute(muted bool) { c.volume.SetMute(muted) }
