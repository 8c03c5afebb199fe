// Package audiodevice abstracts the actual audio output sink behind a small
// interface, so the audio writer doesn't need to know whether it's talking
// to a real sound card or a test double.
package audiodevice

import "time"

// Device is the audio output sink the audio writer pushes PCM frames into.
type Device interface {
	// Configure prepares the device for the given format. It must be called
	// before Write.
	Configure(sampleRate, channels int) error
	// Write enqueues interleaved int16 samples for playback and returns how
	// many were accepted. A short write means the device's internal buffer
	// is full; the caller decides whether that counts as an underrun.
	Write(samples []int16) (int, error)
	// Drop discards any buffered/queued audio and resets the device's read
	// and write pointers, mirroring ALSA's snd_pcm_drop. It's used to throw
	// away pre-fill silence before the real writers start.
	Drop() error
	// Prepare starts the underlying hardware stream.
	Prepare() error
	// Delay estimates how much queued audio has not yet reached the
	// speaker, used for the audio writer's buffer-delay diagnostic.
	Delay() (time.Duration, error)
	// Close stops the stream and releases hardware resources.
	Close() error
}
