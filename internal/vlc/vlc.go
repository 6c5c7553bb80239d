//go:build !windows

// Package vlc drives libVLC through a runtime binding. The library is
// loaded with purego, so the module builds and tests without libVLC
// installed; only Open requires it.
//
// libVLC decodes, demuxes and outputs audio on threads it owns and reports
// progress through event callbacks delivered on those threads. This package
// exposes that surface as the backend capability set; serializing the
// callbacks onto the control goroutine is the playback controller's job.
package vlc

import (
	"fmt"
	"strings"

	"github.com/ebitengine/purego"

	"github.com/tactusaudio/tactus/internal/backend"
)

// Options configures the library lookup.
type Options struct {
	// LibraryPath overrides the default libVLC search names.
	LibraryPath string
}

// lib holds the registered libVLC entry points.
type lib struct {
	handle uintptr

	newInstance func(int32, uintptr) uintptr
	release     func(uintptr)

	mediaNewLocation func(uintptr, string) uintptr
	mediaNewPath     func(uintptr, string) uintptr
	mediaRelease     func(uintptr)

	playerNewFromMedia func(uintptr) uintptr
	playerRelease      func(uintptr)
	playerPlay         func(uintptr) int32
	playerSetPause     func(uintptr, int32)
	playerStop         func(uintptr)
	playerSetPosition  func(uintptr, float32)
	playerGetPosition  func(uintptr) float32
	playerGetLength    func(uintptr) int64
	playerGetState     func(uintptr) int32
	playerIsSeekable   func(uintptr) int32
	playerCanPause     func(uintptr) int32
	playerEventManager func(uintptr) uintptr
	playerSetEqualizer func(uintptr, uintptr) int32

	audioSetVolume func(uintptr, int32) int32
	audioGetVolume func(uintptr) int32
	audioSetMute   func(uintptr, int32)
	audioGetMute   func(uintptr) int32

	eventAttach func(uintptr, int32, uintptr, uintptr) int32
	eventDetach func(uintptr, int32, uintptr, uintptr)

	eqBandCount     func() uint32
	eqBandFrequency func(uint32) float32
	eqPresetCount   func() uint32
	eqPresetName    func(uint32) string
	eqNew           func() uintptr
	eqNewFromPreset func(uint32) uintptr
	eqRelease       func(uintptr)
	eqSetPreamp     func(uintptr, float32) int32
	eqGetPreamp     func(uintptr) float32
	eqSetAmp        func(uintptr, float32, uint32) int32
	eqGetAmp        func(uintptr, uint32) float32
}

// libvlc_event_e values for the events the controller consumes.
const (
	eventMediaPlayerPlaying    int32 = 260
	eventMediaPlayerEndReached int32 = 265
)

func defaultLibraryNames() []string {
	return []string{
		"libvlc.so.5",
		"libvlc.so",
		"libvlc.dylib",
		"/Applications/VLC.app/Contents/MacOS/lib/libvlc.dylib",
	}
}

func loadLibrary(opts Options) (*lib, error) {
	names := defaultLibraryNames()
	if opts.LibraryPath != "" {
		names = []string{opts.LibraryPath}
	}

	var handle uintptr
	var lastErr error
	for _, name := range names {
		h, err := purego.Dlopen(name, purego.RTLD_NOW|purego.RTLD_GLOBAL)
		if err == nil {
			handle = h
			break
		}
		lastErr = err
	}
	if handle == 0 {
		return nil, fmt.Errorf("vlc: load libvlc: %w", lastErr)
	}

	l := &lib{handle: handle}
	for _, sym := range []struct {
		fptr any
		name string
	}{
		{&l.newInstance, "libvlc_new"},
		{&l.release, "libvlc_release"},
		{&l.mediaNewLocation, "libvlc_media_new_location"},
		{&l.mediaNewPath, "libvlc_media_new_path"},
		{&l.mediaRelease, "libvlc_media_release"},
		{&l.playerNewFromMedia, "libvlc_media_player_new_from_media"},
		{&l.playerRelease, "libvlc_media_player_release"},
		{&l.playerPlay, "libvlc_media_player_play"},
		{&l.playerSetPause, "libvlc_media_player_set_pause"},
		{&l.playerStop, "libvlc_media_player_stop"},
		{&l.playerSetPosition, "libvlc_media_player_set_position"},
		{&l.playerGetPosition, "libvlc_media_player_get_position"},
		{&l.playerGetLength, "libvlc_media_player_get_length"},
		{&l.playerGetState, "libvlc_media_player_get_state"},
		{&l.playerIsSeekable, "libvlc_media_player_is_seekable"},
		{&l.playerCanPause, "libvlc_media_player_can_pause"},
		{&l.playerEventManager, "libvlc_media_player_event_manager"},
		{&l.playerSetEqualizer, "libvlc_media_player_set_equalizer"},
		{&l.audioSetVolume, "libvlc_audio_set_volume"},
		{&l.audioGetVolume, "libvlc_audio_get_volume"},
		{&l.audioSetMute, "libvlc_audio_set_mute"},
		{&l.audioGetMute, "libvlc_audio_get_mute"},
		{&l.eventAttach, "libvlc_event_attach"},
		{&l.eventDetach, "libvlc_event_detach"},
		{&l.eqBandCount, "libvlc_audio_equalizer_get_band_count"},
		{&l.eqBandFrequency, "libvlc_audio_equalizer_get_band_frequency"},
		{&l.eqPresetCount, "libvlc_audio_equalizer_get_preset_count"},
		{&l.eqPresetName, "libvlc_audio_equalizer_get_preset_name"},
		{&l.eqNew, "libvlc_audio_equalizer_new"},
		{&l.eqNewFromPreset, "libvlc_audio_equalizer_new_from_preset"},
		{&l.eqRelease, "libvlc_audio_equalizer_release"},
		{&l.eqSetPreamp, "libvlc_audio_equalizer_set_preamp"},
		{&l.eqGetPreamp, "libvlc_audio_equalizer_get_preamp"},
		{&l.eqSetAmp, "libvlc_audio_equalizer_set_amp_at_index"},
		{&l.eqGetAmp, "libvlc_audio_equalizer_get_amp_at_index"},
	} {
		purego.RegisterLibFunc(sym.fptr, handle, sym.name)
	}
	return l, nil
}

// Backend is the libVLC engine.
type Backend struct {
	lib      *lib
	instance uintptr
}

// Open loads libVLC and creates an engine instance.
func Open(opts Options) (*Backend, error) {
	l, err := loadLibrary(opts)
	if err != nil {
		return nil, err
	}
	inst := l.newInstance(0, 0)
	if inst == 0 {
		return nil, fmt.Errorf("vlc: libvlc_new failed")
	}
	return &Backend{lib: l, instance: inst}, nil
}

// NewSession creates a native media player bound to uri.
func (b *Backend) NewSession(uri string) (backend.Session, error) {
	var media uintptr
	if strings.Contains(uri, "://") {
		media = b.lib.mediaNewLocation(b.instance, uri)
	} else {
		media = b.lib.mediaNewPath(b.instance, uri)
	}
	if media == 0 {
		return nil, fmt.Errorf("vlc: cannot open media %q", uri)
	}

	mp := b.lib.playerNewFromMedia(media)
	// The player holds its own reference.
	b.lib.mediaRelease(media)
	if mp == 0 {
		return nil, fmt.Errorf("vlc: cannot create player for %q", uri)
	}

	s := newSession(b.lib, mp)
	return s, nil
}

// CanPlayURI reports whether the URI scheme is one libVLC handles. Plain
// paths count as file URIs.
func (b *Backend) CanPlayURI(uri string) bool {
	if i := strings.Index(uri, "://"); i >= 0 {
		switch strings.ToLower(uri[:i]) {
		case "file", "http", "https":
			return true
		default:
			return false
		}
	}
	return uri != ""
}

func (b *Backend) BandCount() int {
	return int(b.lib.eqBandCount())
}

func (b *Backend) BandFrequency(index int) float64 {
	return float64(b.lib.eqBandFrequency(uint32(index)))
}

func (b *Backend) PresetCount() int {
	return int(b.lib.eqPresetCount())
}

// PresetName returns the preset name, prefixed so users can tell engine
// presets from their own.
func (b *Backend) PresetName(index int) string {
	return "VLC: " + b.lib.eqPresetName(uint32(index))
}

func (b *Backend) NewFlatEqualizer() backend.Equalizer {
	return &Equalizer{lib: b.lib, handle: b.lib.eqNew()}
}

func (b *Backend) NewPresetEqualizer(index int) backend.Equalizer {
	return &Equalizer{lib: b.lib, handle: b.lib.eqNewFromPreset(uint32(index))}
}

// Close releases the engine instance.
func (b *Backend) Close() error {
	if b.instance != 0 {
		b.lib.release(b.instance)
		b.instance = 0
	}
	return nil
}

// Verify Backend implements the capability set at compile time.
var _ backend.Backend = (*Backend)(nil)
