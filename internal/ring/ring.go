// Package ring implements the single-producer single-consumer sample ring
// buffer that decouples the decoder from the audio writer.
package ring

import (
	"context"
	"sync/atomic"
	"time"
)

// DefaultCapacity holds roughly 3 seconds of 48kHz stereo audio
// (48000 * 2 * 3), enough to absorb decoder stalls without starving the
// audio writer.
const DefaultCapacity = 288000

// pollInterval is how often WriteContext rechecks for free space while
// blocked. The buffer is lock-free and has no wake channel, so a blocked
// writer polls rather than waiting on a condition variable.
const pollInterval = time.Millisecond

// Buffer is a lock-free SPSC ring buffer of interleaved int16 PCM samples.
// Exactly one producer goroutine may call Write/WriteContext and exactly one
// consumer goroutine may call Read; both may call Available/Free/Reset
// concurrently with each other.
//
// The backing slice is one sample longer than the buffer's usable capacity,
// so at any moment at least one physical slot is unused (which slot moves
// as the cursors advance). head and tail are free-running counters, taken
// modulo the backing length only to index it, so head==tail means "empty"
// and head-tail==capacity means "full" without a separate flag.
type Buffer struct {
	samples  []int16
	capacity uint64

	head atomic.Uint64 // next slot the producer will write (write cursor)
	tail atomic.Uint64 // next slot the consumer will read (read cursor)
}

// New creates a buffer holding up to capacity samples.
func New(capacity int) *Buffer {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	return &Buffer{
		samples:  make([]int16, capacity+1),
		capacity: uint64(capacity),
	}
}

// Capacity returns the usable capacity in samples.
func (b *Buffer) Capacity() int {
	return int(b.capacity)
}

// Available returns the number of samples queued for the consumer.
func (b *Buffer) Available() int {
	head := b.head.Load()
	tail := b.tail.Load()
	return int(head - tail)
}

// Free returns the number of samples the producer can write before the
// buffer is full.
func (b *Buffer) Free() int {
	return int(b.capacity) - b.Available()
}

// Reset drops all queued samples, moving the read cursor to the write
// cursor. Used when a new song is loaded and any leftover samples from the
// previous one must not bleed into playback.
func (b *Buffer) Reset() {
	b.tail.Store(b.head.Load())
}

// Write copies as many samples as currently fit and returns the count
// written. It never blocks.
func (b *Buffer) Write(samples []int16) int {
	head := b.head.Load()
	tail := b.tail.Load() // acquire: establishes happens-before with the consumer's prior reads

	free := int(b.capacity) - int(head-tail)
	n := len(samples)
	if n > free {
		n = free
	}
	if n == 0 {
		return 0
	}

	physical := uint64(len(b.samples))
	start := head % physical
	first := uint64(n)
	if start+first > physical {
		first = physical - start
	}
	copy(b.samples[start:start+first], samples[:first])
	if first < uint64(n) {
		copy(b.samples[0:uint64(n)-first], samples[first:n])
	}

	b.head.Store(head + uint64(n)) // release: publishes the samples just copied
	return n
}

// WriteContext blocks until all of samples have been written or ctx is
// canceled, writing in whatever chunks currently fit. It returns the number
// of samples actually written, which is less than len(samples) only if ctx
// was canceled first.
func (b *Buffer) WriteContext(ctx context.Context, samples []int16) (int, error) {
	written := 0
	for written < len(samples) {
		n := b.Write(samples[written:])
		written += n
		if written == len(samples) {
			return written, nil
		}
		if err := ctx.Err(); err != nil {
			return written, err
		}
		select {
		case <-ctx.Done():
			return written, ctx.Err()
		case <-time.After(pollInterval):
		}
	}
	return written, nil
}

// Read copies up to len(dst) queued samples into dst and returns the count
// read. It never blocks; a return of 0 means the buffer was empty.
func (b *Buffer) Read(dst []int16) int {
	head := b.head.Load() // acquire: see the producer's most recent writes
	tail := b.tail.Load()

	available := int(head - tail)
	n := len(dst)
	if n > available {
		n = available
	}
	if n == 0 {
		return 0
	}

	physical := uint64(len(b.samples))
	start := tail % physical
	first := uint64(n)
	if start+first > physical {
		first = physical - start
	}
	copy(dst[:first], b.samples[start:start+first])
	if first < uint64(n) {
		copy(dst[first:n], b.samples[0:uint64(n)-first])
	}

	b.tail.Store(tail + uint64(n)) // release: frees the slots just consumed
	return n
}
