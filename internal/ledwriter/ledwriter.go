// Package ledwriter drives the GPIO LED pins from a pattern table on a
// fixed 10ms tick, the highest-priority of the sequencer's three periodic
// activities.
package ledwriter

import (
	"context"
	"time"

	"github.com/ledsync/ledsync/internal/gpio"
	"github.com/ledsync/ledsync/internal/pattern"
	"github.com/ledsync/ledsync/internal/timing"
)

// Period is the LED writer's fixed wake-up interval.
const Period = 10 * time.Millisecond

// spinWindow is how far ahead of a deadline the writer switches from
// sleeping to busy-waiting, trading CPU for tighter timing on the tightest
// of the three periodic activities.
const spinWindow = 1500 * time.Microsecond

// Sink receives one record per tick for later reporting.
type Sink interface {
	RecordLEDTick(tick int, wake time.Duration, writeTime time.Duration, jitter time.Duration)
}

// NopSink discards every record.
type NopSink struct{}

func (NopSink) RecordLEDTick(int, time.Duration, time.Duration, time.Duration) {}

// Writer steps through a pattern table, applying each step's mask to the
// shadow register for exactly as many 10ms ticks as the step's duration
// requires.
type Writer struct {
	table  *pattern.Table
	shadow *gpio.ShadowRegister
	sink   Sink
}

// New creates a writer for table, driving pins through shadow. sink may be
// nil, in which case ticks are not recorded.
func New(table *pattern.Table, shadow *gpio.ShadowRegister, sink Sink) *Writer {
	if sink == nil {
		sink = NopSink{}
	}
	return &Writer{table: table, shadow: shadow, sink: sink}
}

// Run advances through the pattern table tick by tick until either the
// table is exhausted or ctx is canceled. It never returns an error from a
// missed deadline: late wake-ups are logged as negative jitter via sink but
// the cycle still runs, matching the sequencer's no-catch-up contract.
func (w *Writer) Run(ctx context.Context) error {
	if w.table.Len() == 0 {
		return nil
	}

	sched := timing.NewScheduler(Period)
	start := time.Now()
	sched.Start(start)

	tick := 0
	stepIndex := 0
	ticksRemaining := 0

	for stepIndex < w.table.Len() {
		deadline := sched.NextDeadline()
		if !timing.BusyWaitUntil(ctx, deadline, spinWindow) {
			return ctx.Err()
		}

		wakeTime := time.Now()
		_ = sched.Advance(wakeTime)

		var writeTime time.Duration
		if ticksRemaining == 0 {
			step := w.table.Step(stepIndex)

			writeStart := time.Now()
			w.shadow.Apply(step.Mask)
			writeTime = time.Since(writeStart)

			ticksRemaining = int(step.Duration / Period)
			if ticksRemaining == 0 {
				ticksRemaining = 1
			}
		}

		w.sink.RecordLEDTick(tick, wakeTime.Sub(start), writeTime, deadline.Sub(wakeTime))

		ticksRemaining--
		tick++
		if ticksRemaining == 0 {
			stepIndex++
		}
	}

	return nil
}

// Close drives every managed pin low. Callers should always invoke this on
// shutdown, whether Run finished a pattern or was canceled mid-way.
func (w *Writer) Close() error {
	w.shadow.ClearAll()
	return nil
}
