package audiodevice

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStubDevice_WriteAndDrain(t *testing.T) {
	d := NewStub()
	require.NoError(t, d.Configure(48000, 2))

	n, err := d.Write([]int16{1, 2, 3, 4})
	require.NoError(t, err)
	assert.Equal(t, 4, n)

	out := make([]int16, 4)
	assert.Equal(t, 4, d.Drain(out))
	assert.Equal(t, []int16{1, 2, 3, 4}, out)
	assert.EqualValues(t, 4, d.Drained())
}

func TestStubDevice_DelayReflectsQueuedFrames(t *testing.T) {
	d := NewStub()
	require.NoError(t, d.Configure(1000, 2)) // 1000 Hz for easy math

	d.Write([]int16{1, 2, 3, 4}) // 2 frames queued

	delay, err := d.Delay()
	require.NoError(t, err)
	assert.Equal(t, 2*time.Millisecond, delay)
}

func TestStubDevice_DelayZeroBeforeConfigure(t *testing.T) {
	d := NewStub()
	delay, err := d.Delay()
	require.NoError(t, err)
	assert.Equal(t, time.Duration(0), delay)
}

func TestStubDevice_PrepareAndCloseAreNoops(t *testing.T) {
	d := NewStub()
	require.NoError(t, d.Configure(48000, 2))
	assert.NoError(t, d.Prepare())
	assert.NoError(t, d.Close())
}

func TestStubDevice_DropDiscardsQueuedSamples(t *testing.T) {
	d := NewStub()
	require.NoError(t, d.Configure(1000, 2))

	d.Write([]int16{1, 2, 3, 4})
	delay, err := d.Delay()
	require.NoError(t, err)
	assert.NotZero(t, delay)

	require.NoError(t, d.Drop())
	delay, err = d.Delay()
	require.NoError(t, err)
	assert.Zero(t, delay)
}

func TestStubDevice_DropBeforeConfigureIsNoop(t *testing.T) {
	d := NewStub()
	assert.NoError(t, d.Drop())
}
