// Package orchestrator binds the decoder, audio writer, and LED writer to
// one shared wall clock for a single song's playback, owning all
// per-playback state explicitly so nothing leaks between songs.
package orchestrator

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"sync"
	"syscall"
	"time"

	"github.com/ledsync/ledsync/internal/audiodevice"
	"github.com/ledsync/ledsync/internal/audiosrc"
	"github.com/ledsync/ledsync/internal/audiowriter"
	"github.com/ledsync/ledsync/internal/config"
	"github.com/ledsync/ledsync/internal/gpio"
	"github.com/ledsync/ledsync/internal/ledwriter"
	"github.com/ledsync/ledsync/internal/pattern"
	"github.com/ledsync/ledsync/internal/songsource"
	"github.com/ledsync/ledsync/internal/stats"
)

// prerollPeriods is how many audio-writer periods of silence are pushed to
// the device to flush audio left over from a previous song. Play drops the
// silence again right afterwards, so none of it is queued when the writers
// start.
const prerollPeriods = 4

// streamCloseTimeout bounds how long Play waits for a song's audio stream
// to release its resources during teardown. This is independent of
// audiosrc's own internal decoder-goroutine timeout: it protects the
// orchestrator from a Close call that itself hangs (a wedged file handle,
// for instance), not just a wedged decoder goroutine.
const streamCloseTimeout = 3 * time.Second

// Session owns every piece of state that must be reset between songs:
// the pattern table, the shadow register, and the stats recorder. None of
// these are package-level globals, so running two sessions back to back
// (or even concurrently, against distinct GPIO writers) never bleeds state
// from one song into the next.
type Session struct {
	cfg    *config.Config
	device audiodevice.Device
	gpioW  gpio.RegisterWriter

	table    *pattern.Table
	shadow   *gpio.ShadowRegister
	recorder *stats.Recorder
}

// NewSession creates a session bound to a device and GPIO register writer.
// Both may be hardware-backed or stub implementations; Session doesn't care
// which, by design.
func NewSession(cfg *config.Config, device audiodevice.Device, gpioWriter gpio.RegisterWriter) *Session {
	return &Session{cfg: cfg, device: device, gpioW: gpioWriter}
}

// Result is what a completed (or aborted) playback run produced.
type Result struct {
	Report         stats.Report
	LEDWriterErr   error
	AudioWriterErr error
}

// Play runs one song end to end: locate its files, load the pattern, open
// and pre-roll the audio stream, configure the device, pre-fill silence,
// reset per-song state, run both writers concurrently, then tear everything
// down and build the run report. Play returns once both writers have
// stopped, whether because the pattern/stream ran out or ctx was canceled.
func (s *Session) Play(ctx context.Context, baseName string) (Result, error) {
	audioPath, patternPath, err := songsource.Locate(s.cfg.MusicDir, baseName)
	if err != nil {
		return Result{}, fmt.Errorf("orchestrator: locate %q: %w", baseName, err)
	}

	table, err := pattern.Load(patternPath)
	if err != nil {
		return Result{}, fmt.Errorf("orchestrator: load pattern: %w", err)
	}

	stream, err := audiosrc.Open(audioPath)
	if err != nil {
		return Result{}, fmt.Errorf("orchestrator: open audio: %w", err)
	}
	defer s.closeStream(stream)

	if err := audiosrc.StartIfNeeded(stream); err != nil {
		return Result{}, fmt.Errorf("orchestrator: pre-roll: %w", err)
	}

	sampleRate, channels := stream.SampleRate(), stream.Channels()
	if err := s.device.Configure(sampleRate, channels); err != nil {
		return Result{}, fmt.Errorf("orchestrator: configure device: %w", err)
	}

	s.preFillSilence(sampleRate, channels)

	// Drop-and-prepare: discard the pre-fill silence and reset the
	// device's pointers before the writers touch it, so it starts this
	// song's playback from a clean buffer rather than playing the flush
	// silence first.
	if err := s.device.Drop(); err != nil {
		return Result{}, fmt.Errorf("orchestrator: drop device: %w", err)
	}
	if err := s.device.Prepare(); err != nil {
		return Result{}, fmt.Errorf("orchestrator: prepare device: %w", err)
	}

	// Reset every piece of per-song state before the writers touch it, so
	// a previous song's leftover shadow state or stats samples can never
	// bleed into this run.
	s.table = table
	s.shadow = gpio.NewShadowRegister(s.gpioW, s.cfg.Pins)
	s.shadow.ClearAll()
	s.recorder = stats.NewRecorder()

	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	led := ledwriter.New(s.table, s.shadow, s.recorder)
	audio := audiowriter.New(stream, s.device, s.recorder)

	var wg sync.WaitGroup
	var ledErr, audioErr error

	start := time.Now()
	wg.Add(1)
	go func() {
		defer wg.Done()
		ledErr = led.Run(runCtx)
	}()
	wg.Add(1)
	go func() {
		defer wg.Done()
		audioErr = audio.Run(runCtx)
	}()
	wg.Wait()
	elapsed := time.Since(start)

	if err := led.Close(); err != nil {
		slog.Warn("orchestrator: clearing LEDs on teardown failed", "error", err)
	}

	report := stats.Build(s.recorder, stream.Format(), sampleRate, channels, s.table.Len(), elapsed)
	if err := s.writeLog(report); err != nil {
		slog.Warn("orchestrator: writing run log failed", "error", err)
	}

	return Result{Report: report, LEDWriterErr: ledErr, AudioWriterErr: audioErr}, nil
}

// preFillSilence pushes prerollPeriods audio-writer periods worth of silent
// frames to the device, flushing whatever a previous song left behind
// before Play drops and re-prepares it.
func (s *Session) preFillSilence(sampleRate, channels int) {
	framesPerPeriod := sampleRate * int(audiowriter.Period/time.Millisecond) / 1000
	silence := make([]int16, framesPerPeriod*channels*prerollPeriods)
	if _, err := s.device.Write(silence); err != nil {
		slog.Warn("orchestrator: pre-fill silence failed", "error", err)
	}
}

// closeStream bounds how long Play waits for the audio stream to release
// its resources, logging and moving on rather than hanging shutdown if
// Close itself wedges.
func (s *Session) closeStream(stream audiosrc.Stream) {
	done := make(chan error, 1)
	go func() { done <- stream.Close() }()

	select {
	case err := <-done:
		if err != nil {
			slog.Warn("orchestrator: closing audio stream failed", "error", err)
		}
	case <-time.After(streamCloseTimeout):
		slog.Warn("orchestrator: audio stream did not close before timeout, abandoning it")
	}
}

// writeLog writes the textual report and raw per-cycle CSVs to cfg.LogPath,
// if one is configured. An empty LogPath means reports only ever reach
// whatever the caller does with the returned Report.
func (s *Session) writeLog(report stats.Report) error {
	if s.cfg.LogPath == "" {
		return nil
	}
	if err := os.MkdirAll(s.cfg.LogPath, 0o755); err != nil {
		return fmt.Errorf("orchestrator: create log dir: %w", err)
	}

	reportPath := filepath.Join(s.cfg.LogPath, "report.txt")
	f, err := os.Create(reportPath)
	if err != nil {
		return fmt.Errorf("orchestrator: create report: %w", err)
	}
	defer f.Close()
	if err := report.Render(f); err != nil {
		return fmt.Errorf("orchestrator: render report: %w", err)
	}

	audioCSV, err := os.Create(filepath.Join(s.cfg.LogPath, "audio.csv"))
	if err != nil {
		return fmt.Errorf("orchestrator: create audio csv: %w", err)
	}
	defer audioCSV.Close()
	if err := s.recorder.WriteAudioCSV(audioCSV); err != nil {
		return fmt.Errorf("orchestrator: write audio csv: %w", err)
	}

	ledCSV, err := os.Create(filepath.Join(s.cfg.LogPath, "led.csv"))
	if err != nil {
		return fmt.Errorf("orchestrator: create led csv: %w", err)
	}
	defer ledCSV.Close()
	if err := s.recorder.WriteLEDCSV(ledCSV); err != nil {
		return fmt.Errorf("orchestrator: write led csv: %w", err)
	}

	return nil
}

// SignalContext derives a context from parent that is canceled when the
// process receives SIGINT or SIGTERM, mirroring the reference
// implementation's top-level signal.Notify(SIGINT, SIGTERM) shutdown hook.
// The returned stop function must be called to release the signal
// subscription once it's no longer needed.
func SignalContext(parent context.Context) (ctx context.Context, stop func()) {
	return signal.NotifyContext(parent, syscall.SIGINT, syscall.SIGTERM)
}
