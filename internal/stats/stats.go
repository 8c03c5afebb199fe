// Package stats records per-cycle timing samples from the audio and LED
// writers and renders them into a human-readable run report plus raw CSV.
package stats

import (
	"sync"
	"time"
)

// Capacity bounds how many samples each ring holds, mirroring the
// reference implementation's fixed-size statistics arrays (MAX_RUNS). A
// run longer than this stops recording new samples but keeps playing;
// audiowriter independently caps its own cycle count at the same bound,
// while ledwriter runs until its pattern table is exhausted.
const Capacity = 60000

// audioSample is one audio writer cycle. wakeInterval is the true delta
// between this wake and the previous one (zero for the first cycle),
// matching the reference's wake_us; it is distinct from the LED writer's
// cumulative-since-start "time" sample below.
type audioSample struct {
	wakeInterval time.Duration
	runtime      time.Duration
	jitter       time.Duration
}

// ledSample is one LED writer tick.
type ledSample struct {
	time      time.Duration
	writeTime time.Duration
	jitter    time.Duration
}

// Recorder collects statistics from both writer goroutines. It is safe for
// the audio writer and LED writer to each call their half of the interface
// concurrently; the two never touch the same fields.
type Recorder struct {
	audioMu      sync.Mutex
	audioSamples []audioSample
	underruns    int
	stalls       int

	ledMu      sync.Mutex
	ledSamples []ledSample

	bufferDelaysMu sync.Mutex
	bufferDelays   []BufferDelaySample
}

// BufferDelaySample is one of the audio writer's every-100-cycle device
// delay diagnostics.
type BufferDelaySample struct {
	Cycle int
	Delay time.Duration
}

// NewRecorder creates an empty recorder.
func NewRecorder() *Recorder {
	return &Recorder{}
}

// RecordAudioCycle implements audiowriter.Sink. underrun is a short/failed
// device write; stall is the decode source running dry before finishing.
func (r *Recorder) RecordAudioCycle(cycle int, wakeInterval, runtime, jitter time.Duration, underrun, stall bool) {
	r.audioMu.Lock()
	defer r.audioMu.Unlock()
	if len(r.audioSamples) >= Capacity {
		return
	}
	r.audioSamples = append(r.audioSamples, audioSample{wakeInterval: wakeInterval, runtime: runtime, jitter: jitter})
	if underrun {
		r.underruns++
	}
	if stall {
		r.stalls++
	}
}

// RecordBufferDelay implements audiowriter.Sink.
func (r *Recorder) RecordBufferDelay(cycle int, delay time.Duration) {
	r.bufferDelaysMu.Lock()
	defer r.bufferDelaysMu.Unlock()
	r.bufferDelays = append(r.bufferDelays, BufferDelaySample{Cycle: cycle, Delay: delay})
}

// RecordLEDTick implements ledwriter.Sink.
func (r *Recorder) RecordLEDTick(tick int, wake, writeTime, jitter time.Duration) {
	r.ledMu.Lock()
	defer r.ledMu.Unlock()
	if len(r.ledSamples) >= Capacity {
		return
	}
	r.ledSamples = append(r.ledSamples, ledSample{time: wake, writeTime: writeTime, jitter: jitter})
}

// UnderrunCount returns how many audio cycles had a short or failed device
// write.
func (r *Recorder) UnderrunCount() int {
	r.audioMu.Lock()
	defer r.audioMu.Unlock()
	return r.underruns
}

// StallCount returns how many audio cycles had the decode source deliver
// fewer frames than requested without being finished.
func (r *Recorder) StallCount() int {
	r.audioMu.Lock()
	defer r.audioMu.Unlock()
	return r.stalls
}

// AudioCycleCount returns how many audio cycles were recorded.
func (r *Recorder) AudioCycleCount() int {
	r.audioMu.Lock()
	defer r.audioMu.Unlock()
	return len(r.audioSamples)
}

// LEDTickCount returns how many LED ticks were recorded.
func (r *Recorder) LEDTickCount() int {
	r.ledMu.Lock()
	defer r.ledMu.Unlock()
	return len(r.ledSamples)
}
