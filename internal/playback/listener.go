package playback

// Listener receives playback notifications. Callbacks are invoked
// synchronously on the control goroutine, so they may query the controller
// freely but must not block.
type Listener interface {
	// Paused and Unpaused fire only on an actual pause-flag transition,
	// never on redundant repeated calls.
	Paused()
	Unpaused()

	// SongStarted fires once the native transport reports it is playing.
	SongStarted(song Song)

	// SongEnded fires when a song finishes or is stopped. The controller's
	// current song is already cleared when this fires, so a listener that
	// reacts by ending the song again cannot loop.
	SongEnded(song Song, stopped bool)

	// Seeked fires after a seek has been applied to the transport.
	Seeked(song Song, positionMs int64)
}

func (c *Controller) emitPaused() {
	for _, l := range c.listeners {
		l.Paused()
	}
}

func (c *Controller) emitUnpaused() {
	for _, l := range c.listeners {
		l.Unpaused()
	}
}

func (c *Controller) emitSongStarted(song Song) {
	for _, l := range c.listeners {
		l.SongStarted(song)
	}
}

func (c *Controller) emitSongEnded(song Song, stopped bool) {
	for _, l := range c.listeners {
		l.SongEnded(song, stopped)
	}
}

func (c *Controller) emitSeeked(song Song, positionMs int64) {
	for _, l := range c.listeners {
		l.Seeked(song, positionMs)
	}
}
