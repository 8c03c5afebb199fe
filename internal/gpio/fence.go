package gpio

import "sync/atomic"

// fenceWord is a throwaway location used purely to force a full memory
// barrier between two mmap'd register writes. Go gives no portable
// "volatile" write or explicit fence primitive for non-atomic memory; a
// CompareAndSwap on an unrelated word is a well-known way to get the CPU
// fence atomic operations imply without touching real state.
var fenceWord atomic.Uint32

// Fence forces every store issued before this call to become visible to the
// hardware before any store issued after it. The LED writer needs this
// between a Set and a Clear: without it, the two writes could be reordered
// and the pins would pass through a state containing bits from neither the
// old nor the new pattern.
func Fence() {
	fenceWord.CompareAndSwap(fenceWord.Load(), fenceWord.Load()+1)
}
