//go:build !windows

package vlc

import (
	"sync"

	"github.com/ebitengine/purego"

	"github.com/tactusaudio/tactus/internal/backend"
)

// Event callbacks arrive on libVLC's threads with a user-data pointer we
// chose at attach time. Passing Go pointers through C is off the table, so
// sessions register themselves in a table keyed by a numeric id, and the id
// travels as the user data. The two C trampolines are created once:
// purego callbacks are a finite resource.
var (
	registryMu sync.RWMutex
	registry   = map[uintptr]*session{}
	nextID     uintptr

	trampolineOnce       sync.Once
	playingTrampoline    uintptr
	endReachedTrampoline uintptr
)

func trampolines() (playing, endReached uintptr) {
	trampolineOnce.Do(func() {
		playingTrampoline = purego.NewCallback(func(event, userData uintptr) {
			if s := lookup(userData); s != nil {
				s.fire(&s.playingFn)
			}
		})
		endReachedTrampoline = purego.NewCallback(func(event, userData uintptr) {
			if s := lookup(userData); s != nil {
				s.fire(&s.endFn)
			}
		})
	})
	return playingTrampoline, endReachedTrampoline
}

func lookup(id uintptr) *session {
	registryMu.RLock()
	defer registryMu.RUnlock()
	return registry[id]
}

type session struct {
	lib *lib
	mp  uintptr
	id  uintptr

	mu        sync.Mutex
	playingFn func()
	endFn     func()
}

func newSession(l *lib, mp uintptr) *session {
	s := &session{lib: l, mp: mp}

	registryMu.Lock()
	nextID++
	s.id = nextID
	registry[s.id] = s
	registryMu.Unlock()

	playing, endReached := trampolines()
	em := l.playerEventManager(mp)
	l.eventAttach(em, eventMediaPlayerPlaying, playing, s.id)
	l.eventAttach(em, eventMediaPlayerEndReached, endReached, s.id)
	return s
}

// fire runs a registered callback on the calling (libVLC notifier) thread.
func (s *session) fire(slot *func()) {
	s.mu.Lock()
	fn := *slot
	s.mu.Unlock()
	if fn != nil {
		fn()
	}
}

func (s *session) Play() error {
	if rc := s.lib.playerPlay(s.mp); rc != 0 {
		return errPlayFailed
	}
	return nil
}

func (s *session) SetPause(paused bool) {
	s.lib.playerSetPause(s.mp, boolToInt32(paused))
}

func (s *session) Stop() {
	s.lib.playerStop(s.mp)
}

// Release detaches the event callbacks and destroys the native player.
// libVLC runs its internal cleanup on release, which is why the controller
// prefers this over a native stop.
func (s *session) Release() {
	playing, endReached := trampolines()
	em := s.lib.playerEventManager(s.mp)
	s.lib.eventDetach(em, eventMediaPlayerPlaying, playing, s.id)
	s.lib.eventDetach(em, eventMediaPlayerEndReached, endReached, s.id)

	registryMu.Lock()
	delete(registry, s.id)
	registryMu.Unlock()

	s.lib.playerRelease(s.mp)
	s.mp = 0
}

// libvlc_state_t mapping.
func (s *session) State() backend.State {
	switch s.lib.playerGetState(s.mp) {
	case 0:
		return backend.StateIdle
	case 1:
		return backend.StateOpening
	case 2:
		return backend.StateBuffering
	case 3:
		return backend.StatePlaying
	case 4:
		return backend.StatePaused
	case 5:
		return backend.StateStopped
	case 6:
		return backend.StateEnded
	default:
		return backend.StateError
	}
}

func (s *session) Position() float64 {
	return float64(s.lib.playerGetPosition(s.mp))
}

func (s *session) SetPosition(fraction float64) {
	s.lib.playerSetPosition(s.mp, float32(fraction))
}

func (s *session) Length() int64 {
	return s.lib.playerGetLength(s.mp)
}

func (s *session) Seekable() bool {
	return s.lib.playerIsSeekable(s.mp) != 0
}

func (s *session) CanPause() bool {
	return s.lib.playerCanPause(s.mp) != 0
}

func (s *session) SetVolume(volume int) {
	s.lib.audioSetVolume(s.mp, int32(volume))
}

func (s *session) Volume() int {
	return int(s.lib.audioGetVolume(s.mp))
}

func (s *session) SetMute(muted bool) {
	s.lib.audioSetMute(s.mp, boolToInt32(muted))
}

// Muted maps libVLC's tristate (-1 unknown, 0 unmuted, 1 muted) to a
// boolean; unknown counts as unmuted.
func (s *session) Muted() bool {
	return s.lib.audioGetMute(s.mp) > 0
}

func (s *session) SetEqualizer(eq backend.Equalizer) error {
	native, ok := eq.(*Equalizer)
	if !ok {
		return errForeignEqualizer
	}
	if rc := s.lib.playerSetEqualizer(s.mp, native.handle); rc != 0 {
		return errEqualizerRejected
	}
	return nil
}

func (s *session) OnPlaying(fn func()) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.playingFn = fn
}

func (s *session) OnEndReached(fn func()) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.endFn = fn
}

func boolToInt32(b bool) int32 {
	if b {
		return 1
	}
	return 0
}

// Verify session implements the contract at compile time.
var _ backend.Session = (*session)(nil)
