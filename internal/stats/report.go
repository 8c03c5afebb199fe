package stats

import (
	"fmt"
	"io"
	"sort"
	"time"

	"github.com/ledsync/ledsync/internal/audiosrc"
)

// Summary gives the usual spread statistics for a set of durations.
type Summary struct {
	Min  time.Duration
	Max  time.Duration
	Mean time.Duration
	P99  time.Duration
}

// Verdict classifies a summary against a threshold.
type Verdict string

const (
	VerdictOK   Verdict = "OK"
	VerdictWarn Verdict = "WARN"
	VerdictFail Verdict = "FAIL"
)

// Thresholds for classifying jitter. Jitter is deadline-minus-wake, so a
// more negative value means a later wake-up relative to the deadline.
const (
	audioJitterWarn = -2 * time.Millisecond
	audioJitterFail = -8 * time.Millisecond
	ledJitterWarn   = -1 * time.Millisecond
	ledJitterFail   = -4 * time.Millisecond
)

func summarize(samples []time.Duration) Summary {
	if len(samples) == 0 {
		return Summary{}
	}
	sorted := make([]time.Duration, len(samples))
	copy(sorted, samples)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i] < sorted[j] })

	var sum time.Duration
	for _, d := range sorted {
		sum += d
	}

	p99Index := (len(sorted)*99)/100
	if p99Index >= len(sorted) {
		p99Index = len(sorted) - 1
	}

	return Summary{
		Min:  sorted[0],
		Max:  sorted[len(sorted)-1],
		Mean: sum / time.Duration(len(sorted)),
		P99:  sorted[p99Index],
	}
}

func verdictFor(worst time.Duration, warn, fail time.Duration) Verdict {
	switch {
	case worst <= fail:
		return VerdictFail
	case worst <= warn:
		return VerdictWarn
	default:
		return VerdictOK
	}
}

// Report is a rendered summary of one playback run.
type Report struct {
	Format       audiosrc.Format
	SampleRate   int
	Channels     int
	PatternCount int
	Elapsed      time.Duration

	AudioJitter       Summary
	AudioRuntime      Summary
	AudioWakeInterval Summary
	LEDJitter         Summary
	LEDWriteTime      Summary
	LEDWakeInterval   Summary
	BufferDelay       Summary

	UnderrunCount int
	StallCount    int

	AudioVerdict Verdict
	LEDVerdict   Verdict
}

// Build computes a Report from a recorder's collected samples.
func Build(r *Recorder, format audiosrc.Format, sampleRate, channels, patternCount int, elapsed time.Duration) Report {
	r.audioMu.Lock()
	audioJitters := make([]time.Duration, len(r.audioSamples))
	audioRuntimes := make([]time.Duration, len(r.audioSamples))
	audioWakeIntervals := make([]time.Duration, len(r.audioSamples))
	for i, s := range r.audioSamples {
		audioJitters[i] = s.jitter
		audioRuntimes[i] = s.runtime
		audioWakeIntervals[i] = s.wakeInterval
	}
	underruns := r.underruns
	stalls := r.stalls
	r.audioMu.Unlock()

	r.ledMu.Lock()
	ledWriteTimes := make([]time.Duration, len(r.ledSamples))
	ledJitters := make([]time.Duration, len(r.ledSamples))
	// ledSample.time is cumulative elapsed time since start (matching the
	// reference's time_us log column); the wake-interval stat the report
	// needs is the delta between consecutive ticks, derived here rather
	// than changing what the LED writer records per tick.
	ledWakeIntervals := make([]time.Duration, 0, len(r.ledSamples))
	var prevLEDTime time.Duration
	for i, s := range r.ledSamples {
		ledWriteTimes[i] = s.writeTime
		ledJitters[i] = s.jitter
		if i > 0 {
			ledWakeIntervals = append(ledWakeIntervals, s.time-prevLEDTime)
		}
		prevLEDTime = s.time
	}
	r.ledMu.Unlock()

	r.bufferDelaysMu.Lock()
	bufferDelays := make([]time.Duration, len(r.bufferDelays))
	for i, s := range r.bufferDelays {
		bufferDelays[i] = s.Delay
	}
	r.bufferDelaysMu.Unlock()

	audioJitterSummary := summarize(audioJitters)
	ledJitterSummary := summarize(ledJitters)

	rep := Report{
		Format:            format,
		SampleRate:        sampleRate,
		Channels:          channels,
		PatternCount:      patternCount,
		Elapsed:           elapsed,
		AudioJitter:       audioJitterSummary,
		AudioRuntime:      summarize(audioRuntimes),
		AudioWakeInterval: summarize(audioWakeIntervals),
		LEDJitter:         ledJitterSummary,
		LEDWriteTime:      summarize(ledWriteTimes),
		LEDWakeInterval:   summarize(ledWakeIntervals),
		BufferDelay:       summarize(bufferDelays),
		UnderrunCount:     underruns,
		StallCount:        stalls,
		AudioVerdict:      verdictFor(audioJitterSummary.Min, audioJitterWarn, audioJitterFail),
		LEDVerdict:        verdictFor(ledJitterSummary.Min, ledJitterWarn, ledJitterFail),
	}
	return rep
}

// Render writes the human-readable textual report to w.
func (rep Report) Render(w io.Writer) error {
	_, err := fmt.Fprintf(w, `=== Playback report ===
Format:         %s
Sample rate:    %d Hz
Channels:       %d
Patterns:       %d
Elapsed:        %s
Underruns:      %d
Stalls:         %d

Audio cycle jitter  [%s]  min=%s max=%s mean=%s p99=%s
Audio sub-write time              min=%s max=%s mean=%s p99=%s
Audio wake interval                min=%s max=%s mean=%s p99=%s
LED tick jitter     [%s]  min=%s max=%s mean=%s p99=%s
LED write time                    min=%s max=%s mean=%s p99=%s
LED wake interval                  min=%s max=%s mean=%s p99=%s
Device buffer depth                min=%s max=%s mean=%s p99=%s
`,
		rep.Format, rep.SampleRate, rep.Channels, rep.PatternCount, rep.Elapsed, rep.UnderrunCount, rep.StallCount,
		rep.AudioVerdict, rep.AudioJitter.Min, rep.AudioJitter.Max, rep.AudioJitter.Mean, rep.AudioJitter.P99,
		rep.AudioRuntime.Min, rep.AudioRuntime.Max, rep.AudioRuntime.Mean, rep.AudioRuntime.P99,
		rep.AudioWakeInterval.Min, rep.AudioWakeInterval.Max, rep.AudioWakeInterval.Mean, rep.AudioWakeInterval.P99,
		rep.LEDVerdict, rep.LEDJitter.Min, rep.LEDJitter.Max, rep.LEDJitter.Mean, rep.LEDJitter.P99,
		rep.LEDWriteTime.Min, rep.LEDWriteTime.Max, rep.LEDWriteTime.Mean, rep.LEDWriteTime.P99,
		rep.LEDWakeInterval.Min, rep.LEDWakeInterval.Max, rep.LEDWakeInterval.Mean, rep.LEDWakeInterval.P99,
		rep.BufferDelay.Min, rep.BufferDelay.Max, rep.BufferDelay.Mean, rep.BufferDelay.P99,
	)
	return err
}
