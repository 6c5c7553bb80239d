//go:build !windows

package vlc

import "errors"

var (
	errPlayFailed        = errors.New("vlc: play failed")
	errForeignEqualizer  = errors.New("vlc: equalizer was not created by this backend")
	errEqualizerRejected = errors.New("vlc: player rejected equalizer")
)

// Equalizer is a native libVLC equalizer handle. It is independent of any
// media player and must be released explicitly.
type Equalizer struct {
	lib    *lib
	handle uintptr
}

func (e *Equalizer) SetPreamp(db float64) {
	e.lib.eqSetPreamp(e.handle, float32(db))
}

func (e *Equalizer) Preamp() float64 {
	return float64(e.lib.eqGetPreamp(e.handle))
}

func (e *Equalizer) SetBandGain(index int, db float64) {
	e.lib.eqSetAmp(e.handle, float32(db), uint32(index))
}

func (e *Equalizer) BandGain(index int) float64 {
	return float64(e.lib.eqGetAmp(e.handle, uint32(index)))
}

func (e *Equalizer) Release() {
	if e.handle == 0 {
		return
	}
	e.lib.eqRelease(e.handle)
	e.handle = 0
}
