// Package audiowriter implements the 30ms periodic writer that feeds
// decoded PCM frames to the audio device in three 10ms sub-writes per wake.
package audiowriter

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/ledsync/ledsync/internal/audiodevice"
	"github.com/ledsync/ledsync/internal/audiosrc"
	"github.com/ledsync/ledsync/internal/timing"
)

// Period is the audio writer's fixed wake-up interval.
const Period = 30 * time.Millisecond

// subWritesPerCycle is how many sub-writes each 30ms wake is split into.
const subWritesPerCycle = 3

// bufferDelaySampleEvery caps how often the buffer-delay diagnostic queries
// the device, since it's informational rather than load-bearing.
const bufferDelaySampleEvery = 100

// maxCycles bounds a single run the same way the reference implementation's
// fixed-size statistics arrays do: this must stay in lockstep with the
// stats package's ring capacity.
const maxCycles = 60000

// underrunLogBurst and underrunLogEvery rate-limit underrun logging the way
// the reference implementation does: log the first several, then only
// every Nth one, so a long run of underruns doesn't flood the log.
const (
	underrunLogBurst = 10
	underrunLogEvery = 50
)

// Sink receives one record per 30ms cycle, plus an occasional buffer-delay
// sample. underrun reports a short/failed device write; stall reports the
// source running dry before it was finished.
type Sink interface {
	RecordAudioCycle(cycle int, wakeInterval time.Duration, runtime time.Duration, jitter time.Duration, underrun, stall bool)
	RecordBufferDelay(cycle int, delay time.Duration)
}

// NopSink discards every record.
type NopSink struct{}

func (NopSink) RecordAudioCycle(int, time.Duration, time.Duration, time.Duration, bool, bool) {}
func (NopSink) RecordBufferDelay(int, time.Duration)                                          {}

// Writer pulls frames from a Stream and pushes them to a Device on a fixed
// schedule.
type Writer struct {
	stream audiosrc.Stream
	device audiodevice.Device
	sink   Sink

	underrunCount int
}

// New creates a writer. sink may be nil.
func New(stream audiosrc.Stream, device audiodevice.Device, sink Sink) *Writer {
	if sink == nil {
		sink = NopSink{}
	}
	return &Writer{stream: stream, device: device, sink: sink}
}

// UnderrunCount returns how many sub-writes across the whole run the device
// accepted only in part or rejected with an error.
func (w *Writer) UnderrunCount() int {
	return w.underrunCount
}

// Run feeds the device until the stream is exhausted, ctx is canceled, or
// the run hits maxCycles. Sub-write deadlines never catch up on a late
// wake: each cycle's deadline is always the previous deadline plus Period.
func (w *Writer) Run(ctx context.Context) error {
	sampleRate := w.stream.SampleRate()
	channels := w.stream.Channels()
	if sampleRate <= 0 || channels <= 0 {
		return fmt.Errorf("audiowriter: invalid stream format (rate=%d channels=%d)", sampleRate, channels)
	}

	subFrames := sampleRate / 100 // 10ms worth of frames at this stream's actual rate
	if subFrames <= 0 {
		subFrames = 1
	}
	buf := make([]int16, subFrames*channels)

	sched := timing.NewScheduler(Period)
	start := time.Now()
	sched.Start(start)

	var prevWake time.Time

	for cycle := 0; cycle < maxCycles; cycle++ {
		// WAV termination: stop before a residual partial cycle rather than
		// draining it one sub-write at a time. Streams without an exact
		// remaining-frame count (MP3's ring-backed decode) fall through to
		// per-sub-write ErrFinished detection below instead.
		if fc, ok := w.stream.(audiosrc.FrameCounter); ok {
			if fc.RemainingFrames() < subFrames*subWritesPerCycle {
				return nil
			}
		}

		deadline := sched.NextDeadline()
		if !timing.WaitUntil(ctx, deadline) {
			return ctx.Err()
		}

		wake := time.Now()
		jitter := sched.Advance(wake)
		if jitter < 0 {
			slog.Warn("audio writer missed deadline", "cycle", cycle, "late_by", -jitter)
		}

		var wakeInterval time.Duration
		if !prevWake.IsZero() {
			wakeInterval = wake.Sub(prevWake)
		}
		prevWake = wake

		var cycleRuntime time.Duration
		underrun := false
		stall := false
		finished := false

		for i := 0; i < subWritesPerCycle; i++ {
			subStart := time.Now()
			n, err := w.stream.ReadFrames(buf)
			if err != nil && errors.Is(err, audiosrc.ErrFinished) {
				finished = n == 0
			} else if err != nil {
				return fmt.Errorf("audiowriter: read frames: %w", err)
			}

			if n < subFrames && !finished {
				stall = true
			}

			if n > 0 {
				samples := buf[:n*channels]
				written, werr := w.device.Write(samples)
				if werr != nil || written < len(samples) {
					underrun = true
					w.underrunCount++
					if w.underrunCount <= underrunLogBurst || w.underrunCount%underrunLogEvery == 0 {
						slog.Warn("audio device underrun", "cycle", cycle, "count", w.underrunCount, "error", werr)
					}
					if perr := w.device.Prepare(); perr != nil {
						slog.Warn("audio device re-prepare after underrun failed", "error", perr)
					}
				}
			}

			cycleRuntime += time.Since(subStart)
			if finished {
				break
			}
		}

		w.sink.RecordAudioCycle(cycle, wakeInterval, cycleRuntime, jitter, underrun, stall)

		if cycle%bufferDelaySampleEvery == 0 {
			if delay, err := w.device.Delay(); err == nil {
				w.sink.RecordBufferDelay(cycle, delay)
			}
		}

		if finished {
			return nil
		}
	}

	return nil
}
