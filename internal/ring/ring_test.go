package ring

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuffer_FIFOOrder(t *testing.T) {
	b := New(16)
	in := []int16{1, 2, 3, 4, 5}
	n := b.Write(in)
	require.Equal(t, 5, n)

	out := make([]int16, 5)
	n = b.Read(out)
	require.Equal(t, 5, n)
	assert.Equal(t, in, out)
}

func TestBuffer_NeverReportsMoreFreeThanCapacityMinusOne(t *testing.T) {
	b := New(4)
	assert.Equal(t, 4, b.Free())
	assert.Equal(t, 0, b.Available())

	n := b.Write([]int16{1, 2, 3, 4, 5, 6})
	// Only `capacity` samples fit even though the backing slice has a spare slot.
	assert.Equal(t, 4, n)
	assert.Equal(t, 0, b.Free())
	assert.Equal(t, 4, b.Available())
}

func TestBuffer_WrapAroundPreservesOrder(t *testing.T) {
	b := New(4)

	n := b.Write([]int16{1, 2, 3})
	require.Equal(t, 3, n)

	out := make([]int16, 2)
	require.Equal(t, 2, b.Read(out))
	assert.Equal(t, []int16{1, 2}, out)

	// Head is now at 3, tail at 2; this write must wrap across the
	// physical end of the backing slice.
	n = b.Write([]int16{4, 5, 6})
	require.Equal(t, 3, n)

	out = make([]int16, 4)
	require.Equal(t, 4, b.Read(out))
	assert.Equal(t, []int16{3, 4, 5, 6}, out)
}

func TestBuffer_ReadFromEmptyReturnsZero(t *testing.T) {
	b := New(8)
	out := make([]int16, 4)
	assert.Equal(t, 0, b.Read(out))
}

func TestBuffer_Reset(t *testing.T) {
	b := New(8)
	b.Write([]int16{1, 2, 3})
	require.Equal(t, 3, b.Available())

	b.Reset()
	assert.Equal(t, 0, b.Available())
	assert.Equal(t, 8, b.Free())
}

func TestBuffer_WriteContextBlocksUntilConsumerDrains(t *testing.T) {
	b := New(4)
	require.Equal(t, 4, b.Write([]int16{1, 2, 3, 4}))

	ctx := context.Background()
	done := make(chan struct{})
	go func() {
		n, err := b.WriteContext(ctx, []int16{5, 6})
		assert.NoError(t, err)
		assert.Equal(t, 2, n)
		close(done)
	}()

	select {
	case <-done:
		t.Fatal("WriteContext returned before the buffer had room")
	case <-time.After(20 * time.Millisecond):
	}

	out := make([]int16, 2)
	b.Read(out)

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("WriteContext did not unblock after consumer drained")
	}
}

func TestBuffer_WriteContextCanceled(t *testing.T) {
	b := New(2)
	require.Equal(t, 2, b.Write([]int16{1, 2}))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	n, err := b.WriteContext(ctx, []int16{3, 4})
	assert.Equal(t, 0, n)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestBuffer_SingleProducerConsumerConcurrentStress(t *testing.T) {
	b := New(64)
	const total = 10000

	ctx := context.Background()
	errCh := make(chan error, 1)
	go func() {
		samples := make([]int16, total)
		for i := range samples {
			samples[i] = int16(i)
		}
		_, err := b.WriteContext(ctx, samples)
		errCh <- err
	}()

	got := make([]int16, 0, total)
	buf := make([]int16, 7)
	for len(got) < total {
		n := b.Read(buf)
		got = append(got, buf[:n]...)
	}

	require.NoError(t, <-errCh)
	require.Len(t, got, total)
	for i, v := range got {
		assert.Equal(t, int16(i), v)
	}
}
