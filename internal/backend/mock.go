package backend

import (
	"strings"
	"sync"
)

// MockPreset describes one equalizer preset exposed by the mock engine.
type MockPreset struct {
	Name   string
	Preamp float64
	Gains  []float64
}

// Mock is a test double for the native engine.
type Mock struct {
	mu sync.Mutex

	bands   []float64
	presets []MockPreset

	sessions      []*MockSession
	newSessionErr error
	liveEq        int
}

// NewMock creates a mock engine with the usual ten-band layout and a couple
// of presets.
func NewMock() *Mock {
	return &Mock{
		bands: []float64{60, 170, 310, 600, 1000, 3000, 6000, 12000, 14000, 16000},
		presets: []MockPreset{
			{Name: "Flat", Preamp: 12, Gains: make([]float64, 10)},
			{Name: "Rock", Preamp: 10, Gains: []float64{8, 4.8, -5.6, -8, -3.2, 4, 8.8, 11.2, 11.2, 11.2}},
		},
	}
}

func (m *Mock) NewSession(uri string) (Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.newSessionErr != nil {
		return nil, m.newSessionErr
	}
	s := &MockSession{uri: uri, length: 1000, canPause: true, seekable: true, volume: 100}
	m.sessions = append(m.sessions, s)
	return s, nil
}

func (m *Mock) CanPlayURI(uri string) bool {
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

func (m *Mock) BandCount() int { return len(m.bands) }

func (m *Mock) BandFrequency(index int) float64 {
	if index < 0 || index >= len(m.bands) {
		return 0
	}
	return m.bands[index]
}

func (m *Mock) PresetCount() int { return len(m.presets) }

func (m *Mock) PresetName(index int) string {
	if index < 0 || index >= len(m.presets) {
		return ""
	}
	return m.presets[index].Name
}

func (m *Mock) NewFlatEqualizer() Equalizer {
	return m.newEqualizer(make([]float64, len(m.bands)), 0)
}

func (m *Mock) NewPresetEqualizer(index int) Equalizer {
	p := m.presets[index]
	gains := make([]float64, len(p.Gains))
	copy(gains, p.Gains)
	return m.newEqualizer(gains, p.Preamp)
}

func (m *Mock) newEqualizer(gains []float64, preamp float64) *MockEqualizer {
	m.mu.Lock()
	m.liveEq++
	m.mu.Unlock()
	return &MockEqualizer{owner: m, gains: gains, preamp: preamp}
}

func (m *Mock) Close() error { return nil }

// Test helpers

// SetNewSessionError makes subsequent NewSession calls fail.
func (m *Mock) SetNewSessionError(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.newSessionErr = err
}

// Sessions returns every session created so far, in creation order.
func (m *Mock) Sessions() []*MockSession {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]*MockSession(nil), m.sessions...)
}

// LastSession returns the most recently created session, or nil.
func (m *Mock) LastSession() *MockSession {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.sessions) == 0 {
		return nil
	}
	return m.sessions[len(m.sessions)-1]
}

// LiveEqualizers returns the number of equalizer handles created but not yet
// released.
func (m *Mock) LiveEqualizers() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.liveEq
}

// MockSession is a scripted native player.
type MockSession struct {
	mu sync.Mutex

	uri      string
	state    State
	length   int64
	seekable bool
	canPause bool

	position     float64
	positions    []float64
	volume       int
	volumes      []int
	muted        bool
	pauseCalls   []bool
	playCalls    int
	stopCalls    int
	releaseCalls int
	equalizer    Equalizer

	playingFn func()
	endFn     func()
}

func (s *MockSession) Play() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.playCalls++
	s.state = StateOpening
	return nil
}

func (s *MockSession) SetPause(paused bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.pauseCalls = append(s.pauseCalls, paused)
	switch {
	case paused && s.state == StatePlaying:
		s.state = StatePaused
	case !paused && s.state == StatePaused:
		s.state = StatePlaying
	}
}

func (s *MockSession) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.stopCalls++
	s.state = StateStopped
}

func (s *MockSession) Release() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.releaseCalls++
	s.state = StateIdle
}

func (s *MockSession) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

func (s *MockSession) Position() float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.position
}

func (s *MockSession) SetPosition(fraction float64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.position = fraction
	s.positions = append(s.positions, fraction)
}

func (s *MockSession) Length() int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.length
}

func (s *MockSession) Seekable() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.seekable
}

func (s *MockSession) CanPause() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.canPause
}

func (s *MockSession) SetVolume(volume int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.volume = volume
	s.volumes = append(s.volumes, volume)
}

func (s *MockSession) Volume() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.volume
}

func (s *MockSession) SetMute(muted bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.muted = muted
}

func (s *MockSession) Muted() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.muted
}

func (s *MockSession) SetEqualizer(eq Equalizer) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.equalizer = eq
	return nil
}

func (s *MockSession) OnPlaying(fn func()) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.playingFn = fn
}

func (s *MockSession) OnEndReached(fn func()) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.endFn = fn
}

// Test helpers

// FirePlaying delivers the "playing" event on the calling goroutine, which
// plays the role of a backend notifier thread. The native state flips to
// Playing first, as the real engine does before notifying.
func (s *MockSession) FirePlaying() {
	s.mu.Lock()
	s.state = StatePlaying
	fn := s.playingFn
	s.mu.Unlock()
	if fn != nil {
		fn()
	}
}

// FireEndReached delivers the "end reached" event on the calling goroutine.
func (s *MockSession) FireEndReached() {
	s.mu.Lock()
	s.state = StateEnded
	fn := s.endFn
	s.mu.Unlock()
	if fn != nil {
		fn()
	}
}

func (s *MockSession) URI() string {
	return s.uri
}

func (s *MockSession) SetState(state State) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state = state
}

func (s *MockSession) SetLength(ms int64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.length = ms
}

func (s *MockSession) SetSeekable(seekable bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.seekable = seekable
}

func (s *MockSession) SetCanPause(canPause bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.canPause = canPause
}

func (s *MockSession) SetCurrentPosition(fraction float64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.position = fraction
}

func (s *MockSession) PauseCalls() []bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]bool(nil), s.pauseCalls...)
}

func (s *MockSession) PositionCalls() []float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]float64(nil), s.positions...)
}

func (s *MockSession) VolumeCalls() []int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]int(nil), s.volumes...)
}

func (s *MockSession) PlayCalls() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.playCalls
}

func (s *MockSession) StopCalls() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.stopCalls
}

func (s *MockSession) ReleaseCalls() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.releaseCalls
}

func (s *MockSession) Equalizer() Equalizer {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.equalizer
}

// MockEqualizer is a native equalizer handle test double.
type MockEqualizer struct {
	mu sync.Mutex

	owner    *Mock
	preamp   float64
	gains    []float64
	bandSets int
	released bool
}

func (e *MockEqualizer) SetPreamp(db float64) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.preamp = db
}

func (e *MockEqualizer) Preamp() float64 {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.preamp
}

func (e *MockEqualizer) SetBandGain(index int, db float64) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if index >= 0 && index < len(e.gains) {
		e.gains[index] = db
	}
	e.bandSets++
}

func (e *MockEqualizer) BandGain(index int) float64 {
	e.mu.Lock()
	defer e.mu.Unlock()
	if index < 0 || index >= len(e.gains) {
		return 0
	}
	return e.gains[index]
}

func (e *MockEqualizer) Release() {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.released {
		return
	}
	e.released = true
	e.owner.mu.Lock()
	e.owner.liveEq--
	e.owner.mu.Unlock()
}

// Test helpers

func (e *MockEqualizer) Released() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.released
}

// BandGainCalls returns how many times SetBandGain was invoked.
func (e *MockEqualizer) BandGainCalls() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.bandSets
}

// Gains returns a copy of the current band gains.
func (e *MockEqualizer) Gains() []float64 {
	e.mu.Lock()
	defer e.mu.Unlock()
	return append([]float64(nil), e.gains...)
}

// Verify the doubles implement the contracts at compile time.
var (
	_ Backend   = (*Mock)(nil)
	_ Session   = (*MockSession)(nil)
	_ Equalizer = (*MockEqualizer)(nil)
)
