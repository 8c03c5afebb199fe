// Package audiosrc implements the two playable audio sources: WAV files
// memory-mapped and decoded into memory once at open time, and MP3 files
// decoded on a background goroutine into a ring buffer.
package audiosrc

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"
)

// ErrFinished is returned by ReadFrames once every frame has been
// delivered.
var ErrFinished = errors.New("audiosrc: stream finished")

// Format identifies which concrete stream implementation backs a Stream.
type Format int

const (
	FormatWav Format = iota
	FormatMp3
)

func (f Format) String() string {
	switch f {
	case FormatWav:
		return "wav"
	case FormatMp3:
		return "mp3"
	default:
		return "unknown"
	}
}

// Stream is the common interface both audio sources satisfy. The audio
// writer pulls frames from it without caring whether they came from a
// direct-mapped file or a decoder goroutine.
type Stream interface {
	// Format reports which variant this stream is.
	Format() Format
	// SampleRate is the stream's native sample rate in Hz.
	SampleRate() int
	// Channels is the interleaved channel count (2 for stereo).
	Channels() int
	// ReadFrames copies up to len(buf)/Channels() frames into buf and
	// returns the number of frames copied. It returns ErrFinished once the
	// stream is exhausted and no more frames will ever become available.
	ReadFrames(buf []int16) (int, error)
	// AvailableFrames reports how many frames are ready to read right now
	// without blocking.
	AvailableFrames() int
	// Close releases any resources (mmap, decoder goroutine, file handle).
	Close() error
}

// Starter is implemented by streams that need to begin background work
// (the MP3 decoder goroutine) before ReadFrames can be relied on to keep
// up with real-time playback.
type Starter interface {
	// Start blocks until the pre-roll buffer contract is satisfied, or the
	// stream finishes/errors before reaching it.
	Start() error
}

// FrameCounter is implemented by streams whose total remaining frame count
// is known exactly, as opposed to a ring-buffer-backed stream whose
// AvailableFrames only reflects what the decoder has queued so far. The
// audio writer uses it to stop before playing a residual partial cycle
// instead of draining one sub-write at a time.
type FrameCounter interface {
	// RemainingFrames is how many frames are left in the source, exactly.
	RemainingFrames() int
}

// Open opens an audio file, choosing the WAV or MP3 implementation from
// the file extension.
func Open(path string) (Stream, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".wav":
		return OpenWav(path)
	case ".mp3":
		return OpenMp3(path)
	default:
		return nil, fmt.Errorf("audiosrc: unrecognized extension for %s", path)
	}
}

// StartIfNeeded calls Start on s if it implements Starter, otherwise
// returns nil immediately. WAV streams need no pre-roll since ReadFrames
// never blocks.
func StartIfNeeded(s Stream) error {
	if starter, ok := s.(Starter); ok {
		return starter.Start()
	}
	return nil
}
