package gpio

// ShadowRegister mirrors the last known state of every managed pin so the
// LED writer only ever drives the pins that actually changed, instead of
// rewriting the full mask every tick.
type ShadowRegister struct {
	writer RegisterWriter
	pins   []int
	state  uint32 // bit N set means pin N was last driven high
	mask   uint32 // bitwise OR of every managed pin, precomputed once
}

// NewShadowRegister creates a shadow register covering the given pins,
// initially assumed to be low.
func NewShadowRegister(writer RegisterWriter, pins []int) *ShadowRegister {
	var mask uint32
	for _, pin := range pins {
		mask |= 1 << uint(pin)
	}
	return &ShadowRegister{
		writer: writer,
		pins:   pins,
		mask:   mask,
	}
}

// Apply drives the pins so that pin PinMap[i] ends up high iff bit (7-i) of
// desired is 1, for i in 0..len(pins)-1. Only pins whose state actually
// changes are written. The write order is always set-then-fence-then-clear,
// even when only one direction has pins to change, so the two mmap stores
// are never collapsed into a data race a compiler or CPU could reorder.
func (s *ShadowRegister) Apply(desired uint8) {
	var setMask, clearMask uint32
	for i, pin := range s.pins {
		bit := (desired >> uint(len(s.pins)-1-i)) & 1
		if bit == 1 {
			setMask |= 1 << uint(pin)
		} else {
			clearMask |= 1 << uint(pin)
		}
	}

	desiredState := (s.state &^ clearMask) | setMask

	bitsToClear := (s.state &^ desiredState) & s.mask
	bitsToSet := (^s.state & desiredState) & s.mask

	s.writer.Set(bitsToSet)
	Fence()
	s.writer.Clear(bitsToClear)

	s.state = desiredState
}

// ClearAll drives every managed pin low, used on shutdown so LEDs never
// stay lit after the process exits.
func (s *ShadowRegister) ClearAll() {
	s.writer.Clear(s.mask)
	s.state = 0
}

// State returns the shadow's current understanding of pin state, exposed
// for tests.
func (s *ShadowRegister) State() uint32 {
	return s.state
}
