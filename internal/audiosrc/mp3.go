package audiosrc

import (
	"context"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"sync/atomic"
	"time"

	gomp3 "github.com/hajimehoshi/go-mp3"

	"github.com/ledsync/ledsync/internal/ring"
)

// mp3Channels is fixed: go-mp3 always decodes to 16-bit signed stereo PCM.
const mp3Channels = 2

// preRollMs is how much decoded audio must be queued before Start returns,
// matching the reference decoder's MIN_BUFFER_MS contract.
const preRollMs = 100

// decodeChunkMs is how much audio the decoder goroutine decodes per
// iteration before attempting to push it into the ring buffer.
const decodeChunkMs = 100

// Mp3Stream decodes an MP3 file on a background goroutine into a ring
// buffer, from which ReadFrames serves the audio writer.
type Mp3Stream struct {
	file       *os.File
	decoder    *gomp3.Decoder
	buf        *ring.Buffer
	sampleRate int

	finished atomic.Bool
	failed   atomic.Bool
	lastErr  atomic.Value // error

	cancel context.CancelFunc
	done   chan struct{}
}

// OpenMp3 opens path and prepares (but does not yet start) a decode
// goroutine.
func OpenMp3(path string) (*Mp3Stream, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("audiosrc: open %s: %w", path, err)
	}

	dec, err := gomp3.NewDecoder(f)
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("audiosrc: decode %s: %w", path, err)
	}

	return &Mp3Stream{
		file:       f,
		decoder:    dec,
		buf:        ring.New(ring.DefaultCapacity),
		sampleRate: dec.SampleRate(),
		done:       make(chan struct{}),
	}, nil
}

func (s *Mp3Stream) Format() Format  { return FormatMp3 }
func (s *Mp3Stream) SampleRate() int { return s.sampleRate }
func (s *Mp3Stream) Channels() int   { return mp3Channels }

// AvailableFrames reports queued, not-yet-read frames.
func (s *Mp3Stream) AvailableFrames() int {
	return s.buf.Available() / mp3Channels
}

// Start launches the decode goroutine and blocks until either the pre-roll
// buffer is full or the stream finishes/fails before reaching it.
func (s *Mp3Stream) Start() error {
	ctx, cancel := context.WithCancel(context.Background())
	s.cancel = cancel
	go s.decodeLoop(ctx)

	minFrames := (s.sampleRate * preRollMs) / 1000
	const pollInterval = time.Millisecond
	for {
		if s.AvailableFrames() >= minFrames {
			return nil
		}
		if s.finished.Load() {
			return nil
		}
		if s.failed.Load() {
			if err, ok := s.lastErr.Load().(error); ok {
				return err
			}
			return errors.New("audiosrc: mp3 decode failed")
		}
		time.Sleep(pollInterval)
	}
}

// decodeLoop decodes fixed-size chunks from the mp3 bitstream and pushes
// them into the ring buffer, blocking on WriteContext when the buffer is
// full. It mirrors the reference's mp3_decoder_thread loop shape.
func (s *Mp3Stream) decodeLoop(ctx context.Context) {
	defer close(s.done)

	decodeSamples := (s.sampleRate / 10) * mp3Channels
	if decodeSamples <= 0 {
		decodeSamples = 4096
	}
	raw := make([]byte, decodeSamples*2)
	samples := make([]int16, decodeSamples)

	for {
		n, err := io.ReadFull(s.decoder, raw)
		if n > 0 {
			frameSamples := n / 2
			for i := 0; i < frameSamples; i++ {
				samples[i] = int16(binary.LittleEndian.Uint16(raw[i*2 : i*2+2]))
			}
			if _, writeErr := s.buf.WriteContext(ctx, samples[:frameSamples]); writeErr != nil {
				return
			}
		}

		if err != nil {
			if err == io.EOF || err == io.ErrUnexpectedEOF {
				s.finished.Store(true)
			} else {
				s.lastErr.Store(fmt.Errorf("audiosrc: mp3 read: %w", err))
				s.failed.Store(true)
			}
			return
		}
	}
}

// ReadFrames serves frames out of the ring buffer the decode goroutine
// fills.
func (s *Mp3Stream) ReadFrames(buf []int16) (int, error) {
	n := s.buf.Read(buf)
	frames := n / mp3Channels
	if frames == 0 && (s.finished.Load() || s.failed.Load()) && s.buf.Available() == 0 {
		if s.failed.Load() {
			if err, ok := s.lastErr.Load().(error); ok {
				return 0, err
			}
		}
		return 0, ErrFinished
	}
	return frames, nil
}

// closeJoinTimeout bounds how long Close waits for the decode goroutine to
// notice cancellation and exit, so a stuck decoder can never hang shutdown
// indefinitely.
const closeJoinTimeout = 2 * time.Second

// Close stops the decoder goroutine and releases the file handle. If the
// goroutine doesn't exit within closeJoinTimeout, Close logs a warning and
// proceeds with cleanup anyway rather than blocking forever.
func (s *Mp3Stream) Close() error {
	if s.cancel != nil {
		s.cancel()
		select {
		case <-s.done:
		case <-time.After(closeJoinTimeout):
			slog.Warn("mp3 decoder goroutine did not exit before timeout, proceeding with cleanup")
		}
	}
	return s.file.Close()
}
