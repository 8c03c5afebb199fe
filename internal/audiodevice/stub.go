package audiodevice

import (
	"sync/atomic"
	"time"

	"github.com/ledsync/ledsync/internal/ring"
)

// StubDevice is the default Device implementation: an in-memory sink
// suitable for hosts with no sound card and for tests. It queues into a
// ring buffer the way a real device would, so overflow/underrun behavior
// can be exercised without hardware.
type StubDevice struct {
	sampleRate int
	channels   int
	buf        *ring.Buffer
	drained    atomic.Uint64 // total samples ever removed, for test inspection
}

// NewStub creates an unconfigured stub device.
func NewStub() *StubDevice {
	return &StubDevice{}
}

func (d *StubDevice) Configure(sampleRate, channels int) error {
	d.sampleRate = sampleRate
	d.channels = channels
	d.buf = ring.New(sampleRate * channels) // ~1s of headroom
	return nil
}

func (d *StubDevice) Write(samples []int16) (int, error) {
	return d.buf.Write(samples), nil
}

// Drop discards every sample currently queued in the stub's ring buffer,
// simulating a real device's snd_pcm_drop.
func (d *StubDevice) Drop() error {
	if d.buf != nil {
		d.buf.Reset()
	}
	return nil
}

func (d *StubDevice) Prepare() error {
	return nil
}

// Delay reports the queued-but-undrained backlog as playback time. Nothing
// drains the stub's buffer on its own; tests that care about Delay drain it
// explicitly via Drain.
func (d *StubDevice) Delay() (time.Duration, error) {
	if d.sampleRate == 0 || d.channels == 0 {
		return 0, nil
	}
	frames := d.buf.Available() / d.channels
	return time.Duration(frames) * time.Second / time.Duration(d.sampleRate), nil
}

func (d *StubDevice) Close() error {
	return nil
}

// Drain removes up to len(dst) samples from the stub's internal buffer,
// simulating hardware consumption in tests.
func (d *StubDevice) Drain(dst []int16) int {
	n := d.buf.Read(dst)
	d.drained.Add(uint64(n))
	return n
}

// Drained returns the cumulative number of samples removed via Drain.
func (d *StubDevice) Drained() uint64 {
	return d.drained.Load()
}
