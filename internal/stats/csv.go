package stats

import (
	"encoding/csv"
	"fmt"
	"io"
)

// WriteAudioCSV renders the raw per-cycle audio samples as
// "index,runtime_us,wake_interval_us,jitter_us", matching the reference
// implementation's save_runtime_log column layout.
func (r *Recorder) WriteAudioCSV(w io.Writer) error {
	r.audioMu.Lock()
	samples := make([]audioSample, len(r.audioSamples))
	copy(samples, r.audioSamples)
	r.audioMu.Unlock()

	cw := csv.NewWriter(w)
	if err := cw.Write([]string{"index", "runtime_us", "wake_interval_us", "jitter_us"}); err != nil {
		return err
	}
	for i, s := range samples {
		record := []string{
			fmt.Sprintf("%d", i),
			fmt.Sprintf("%d", s.runtime.Microseconds()),
			fmt.Sprintf("%d", s.wakeInterval.Microseconds()),
			fmt.Sprintf("%d", s.jitter.Microseconds()),
		}
		if err := cw.Write(record); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// WriteLEDCSV renders the raw per-tick LED samples as
// "tick,time_us,write_time_us", matching led_thread_fn's log format.
func (r *Recorder) WriteLEDCSV(w io.Writer) error {
	r.ledMu.Lock()
	samples := make([]ledSample, len(r.ledSamples))
	copy(samples, r.ledSamples)
	r.ledMu.Unlock()

	cw := csv.NewWriter(w)
	if err := cw.Write([]string{"tick", "time_us", "write_time_us"}); err != nil {
		return err
	}
	for i, s := range samples {
		record := []string{
			fmt.Sprintf("%d", i),
			fmt.Sprintf("%d", s.time.Microseconds()),
			fmt.Sprintf("%d", s.writeTime.Microseconds()),
		}
		if err := cw.Write(record); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}
