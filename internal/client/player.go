package client

// Player is the local playback surface the reconciler disciplines.
// Implementations wrap whatever actually makes sound (an HTML audio
// element behind a bridge, a native decoder, a test fake); the
// reconciler only ever talks to this interface.
type Player interface {
	// Load switches the player to the track at the given library index,
	// resetting its position. Bounds-checking the index against the
	// real library is the implementation's concern.
	Load(trackIndex int)

	// Position returns the current local playback offset in seconds.
	Position() float64

	// Seek moves local playback to the given offset in seconds.
	Seek(position float64)

	// Play starts playback. Platforms may refuse an unattended start
	// (autoplay policy); that surfaces as an error and is recoverable,
	// not fatal.
	Play() error

	Pause()

	// Playing reports whether the player is currently advancing.
	Playing() bool

	// Buffered reports whether enough data is loaded to seek smoothly.
	Buffered() bool
}
