package stats

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ledsync/ledsync/internal/audiosrc"
)

func TestRecorder_CountsCyclesUnderrunsAndStalls(t *testing.T) {
	r := NewRecorder()
	for i := 0; i < 5; i++ {
		r.RecordAudioCycle(i, 30*time.Millisecond, time.Millisecond, time.Millisecond, i == 2, i == 3)
	}
	assert.Equal(t, 5, r.AudioCycleCount())
	assert.Equal(t, 1, r.UnderrunCount())
	assert.Equal(t, 1, r.StallCount())
}

func TestRecorder_LEDTickCount(t *testing.T) {
	r := NewRecorder()
	for i := 0; i < 3; i++ {
		r.RecordLEDTick(i, 10*time.Millisecond, time.Microsecond, time.Microsecond)
	}
	assert.Equal(t, 3, r.LEDTickCount())
}

func TestSummarize_ComputesMinMaxMean(t *testing.T) {
	samples := []time.Duration{
		1 * time.Millisecond,
		2 * time.Millisecond,
		3 * time.Millisecond,
		4 * time.Millisecond,
	}
	s := summarize(samples)
	assert.Equal(t, 1*time.Millisecond, s.Min)
	assert.Equal(t, 4*time.Millisecond, s.Max)
	assert.Equal(t, 2500*time.Microsecond, s.Mean)
}

func TestSummarize_EmptyIsZeroValue(t *testing.T) {
	assert.Equal(t, Summary{}, summarize(nil))
}

func TestVerdictFor(t *testing.T) {
	assert.Equal(t, VerdictOK, verdictFor(-500*time.Microsecond, -2*time.Millisecond, -8*time.Millisecond))
	assert.Equal(t, VerdictWarn, verdictFor(-3*time.Millisecond, -2*time.Millisecond, -8*time.Millisecond))
	assert.Equal(t, VerdictFail, verdictFor(-9*time.Millisecond, -2*time.Millisecond, -8*time.Millisecond))
}

func TestBuild_AndRender(t *testing.T) {
	r := NewRecorder()
	r.RecordAudioCycle(0, 0, 500*time.Microsecond, time.Millisecond, false, false)
	r.RecordAudioCycle(1, 30*time.Millisecond, 600*time.Microsecond, -1*time.Millisecond, true, true)
	r.RecordBufferDelay(0, 5*time.Millisecond)
	r.RecordLEDTick(0, 10*time.Millisecond, 50*time.Microsecond, time.Millisecond)
	r.RecordLEDTick(1, 20*time.Millisecond, 60*time.Microsecond, time.Millisecond)

	rep := Build(r, audiosrc.FormatWav, 48000, 2, 12, 2*time.Second)
	assert.Equal(t, 1, rep.UnderrunCount)
	assert.Equal(t, 1, rep.StallCount)
	assert.Equal(t, 48000, rep.SampleRate)
	assert.Equal(t, 30*time.Millisecond, rep.AudioWakeInterval.Max)
	assert.Equal(t, 10*time.Millisecond, rep.LEDWakeInterval.Min)
	assert.Equal(t, 5*time.Millisecond, rep.BufferDelay.Max)

	var buf bytes.Buffer
	require.NoError(t, rep.Render(&buf))
	assert.True(t, strings.Contains(buf.String(), "Playback report"))
	assert.True(t, strings.Contains(buf.String(), "Sample rate:    48000 Hz"))
	assert.True(t, strings.Contains(buf.String(), "Stalls:         1"))
}

func TestWriteAudioCSV(t *testing.T) {
	r := NewRecorder()
	r.RecordAudioCycle(0, 30*time.Millisecond, time.Millisecond, -2*time.Millisecond, false, false)

	var buf bytes.Buffer
	require.NoError(t, r.WriteAudioCSV(&buf))

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 2)
	assert.Equal(t, "index,runtime_us,wake_interval_us,jitter_us", lines[0])
	assert.Equal(t, "0,1000,30000,-2000", lines[1])
}

func TestWriteLEDCSV(t *testing.T) {
	r := NewRecorder()
	r.RecordLEDTick(0, 10*time.Millisecond, 25*time.Microsecond, 0)

	var buf bytes.Buffer
	require.NoError(t, r.WriteLEDCSV(&buf))

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 2)
	assert.Equal(t, "tick,time_us,write_time_us", lines[0])
	assert.Equal(t, "0,10000,25", lines[1])
}
