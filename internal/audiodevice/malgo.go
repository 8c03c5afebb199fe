//go:build malgo

package audiodevice

import (
	"fmt"
	"time"

	"github.com/gen2brain/malgo"

	"github.com/ledsync/ledsync/internal/ring"
)

// MalgoDevice drives a persistent malgo playback device fed by a lock-free
// ring buffer, the same architecture as a voice assistant's TTS player:
// Write enqueues samples from the audio writer goroutine, and the malgo
// callback goroutine drains them independently, so neither side blocks the
// other's real-time deadline.
type MalgoDevice struct {
	ctx    *malgo.AllocatedContext
	device *malgo.Device
	buf    *ring.Buffer

	sampleRate int
	channels   int
}

// NewMalgo creates an unconfigured malgo-backed device.
func NewMalgo() (*MalgoDevice, error) {
	ctx, err := malgo.InitContext(nil, malgo.ContextConfig{}, nil)
	if err != nil {
		return nil, fmt.Errorf("audiodevice: malgo init context: %w", err)
	}
	return &MalgoDevice{ctx: ctx}, nil
}

func (d *MalgoDevice) Configure(sampleRate, channels int) error {
	d.sampleRate = sampleRate
	d.channels = channels
	d.buf = ring.New(ring.DefaultCapacity)

	cfg := malgo.DefaultDeviceConfig(malgo.Playback)
	cfg.Playback.Format = malgo.FormatS16
	cfg.Playback.Channels = uint32(channels)
	cfg.SampleRate = uint32(sampleRate)
	cfg.PeriodSizeInMilliseconds = 10

	onSendFrames := func(output, _ []byte, frameCount uint32) {
		needed := int(frameCount) * channels
		scratch := make([]int16, needed)
		n := d.buf.Read(scratch)

		for i := 0; i < n; i++ {
			output[i*2] = byte(scratch[i])
			output[i*2+1] = byte(scratch[i] >> 8)
		}
		// Any frames beyond n were never set by Read and remain zero in
		// output, i.e. silence, matching an underrun with a soft landing
		// rather than repeating stale samples.
	}

	device, err := malgo.InitDevice(d.ctx.Context, cfg, malgo.DeviceCallbacks{Data: onSendFrames})
	if err != nil {
		return fmt.Errorf("audiodevice: malgo init device: %w", err)
	}
	d.device = device
	return nil
}

func (d *MalgoDevice) Write(samples []int16) (int, error) {
	return d.buf.Write(samples), nil
}

// Drop stops the device if it's running and discards every sample queued
// in the ring buffer, mirroring ALSA's snd_pcm_drop + snd_pcm_prepare
// pointer reset. It's safe to call before the device has ever started.
func (d *MalgoDevice) Drop() error {
	if d.device != nil {
		_ = d.device.Stop()
	}
	if d.buf != nil {
		d.buf.Reset()
	}
	return nil
}

func (d *MalgoDevice) Prepare() error {
	if err := d.device.Start(); err != nil {
		return fmt.Errorf("audiodevice: malgo start: %w", err)
	}
	return nil
}

func (d *MalgoDevice) Delay() (time.Duration, error) {
	frames := d.buf.Available() / d.channels
	return time.Duration(frames) * time.Second / time.Duration(d.sampleRate), nil
}

func (d *MalgoDevice) Close() error {
	if d.device != nil {
		d.device.Stop()
		d.device.Uninit()
		d.device = nil
	}
	if d.ctx != nil {
		_ = d.ctx.Uninit()
		d.ctx.Free()
		d.ctx = nil
	}
	return nil
}
