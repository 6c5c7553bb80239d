package playback

// State represents the controller's playback state machine.
//
// Valid transitions:
//   - Idle     → Starting (via Play; also via Seek when a song is selected)
//   - Starting → Playing  (native "playing" event, pause flag clear)
//   - Starting → Paused   (native "playing" event, pause flag set)
//   - Playing  ↔ Paused   (via Pause)
//   - any      → Stopping → Idle (via Stop, end-reached, Destroy)
//
// Paused is a flag layered onto the running transport, not a distinct
// native state: the engine keeps playing-but-paused, and this layer tracks
// it as Paused. Idle is reachable again after every song; it is not
// process-terminal.
type State int

const (
	StateIdle State = iota
	StateStarting
	StatePlaying
	StatePaused
	StateStopping
)

// String returns the state name for debugging.
func (s State) String() string {
	switch s {
	case StateIdle:
		return "Idle"
	case StateStarting:
		return "Starting"
	case StatePlaying:
		return "Playing"
	case StatePaused:
		return "Paused"
	case StateStopping:
		return "Stopping"
	default:
		return "Unknown"
	}
}

// HasSession reports whether this state implies a live native session.
func (s State) HasSession() bool {
	return s == StateStarting || s == StatePlaying || s == StatePaused
}
