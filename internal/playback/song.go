package playback

// Song is one playable item. Implementations come from the library/source
// collaborators; the controller only needs the URI and the replaygain scale
// factor carried by the song's metadata.
type Song interface {
	// URI returns the media location handed to the native engine.
	URI() string

	// ReplayGain returns the linear volume scale factor for this song.
	// Implementations without replaygain metadata return 1.
	ReplayGain() float64
}

// Source supplies songs in order. Ordering policy (shuffle, repeat, queues)
// is entirely the source's concern.
type Source interface {
	// Current returns the song the source considers current, or nil when
	// exhausted.
	Current() Song

	// NextEnded tells the source the current item finished playing so it
	// can advance.
	NextEnded()
}
