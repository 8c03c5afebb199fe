// Package gpio maps the BCM GPIO register window and exposes the narrow
// set-pin/clear-pin operations the LED writer needs.
package gpio

import (
	"fmt"
	"sync/atomic"
	"unsafe"

	"golang.org/x/sys/unix"
)

// BoardGeneration selects the physical base address of the GPIO register
// window. Unlike the reference implementation, which picks this at compile
// time via RPI2/RPI3/RPI4 macros, this is a runtime configuration value: a
// single binary can target whichever board it's deployed on.
type BoardGeneration int

const (
	// BoardBCM2835 covers the original Pi 1 and Pi Zero.
	BoardBCM2835 BoardGeneration = iota
	// BoardBCM2836_7 covers the Pi 2 and Pi 3.
	BoardBCM2836_7
	// BoardBCM2711 covers the Pi 4.
	BoardBCM2711
)

// baseAddress returns the physical address of the GPIO register window for
// the board generation.
func (g BoardGeneration) baseAddress() (int64, error) {
	switch g {
	case BoardBCM2835:
		return 0x20200000, nil
	case BoardBCM2836_7:
		return 0x3F200000, nil
	case BoardBCM2711:
		return 0xFE200000, nil
	default:
		return 0, fmt.Errorf("gpio: unknown board generation %d", g)
	}
}

// String implements fmt.Stringer.
func (g BoardGeneration) String() string {
	switch g {
	case BoardBCM2835:
		return "BCM2835"
	case BoardBCM2836_7:
		return "BCM2836/BCM2837"
	case BoardBCM2711:
		return "BCM2711"
	default:
		return "unknown"
	}
}

// regionLen is the size of the mapped register window, matching GPIO_LEN in
// the reference implementation.
const regionLen = 0xB4

// Word offsets into the mapped region, in units of uint32 (register width).
const (
	gpfsel0Word = 0x00 / 4
	gpset0Word  = 0x1C / 4
	gpclr0Word  = 0x28 / 4
)

// fselFunctionOutput is the 3-bit FSEL field value that configures a pin as
// a digital output.
const fselFunctionOutput = 0b001

// Mapper owns the mmap'd GPIO register window and the low-level fsel/set/
// clear primitives. Callers needing the higher-level diff-and-write pattern
// should use ShadowRegister instead.
type Mapper struct {
	mem  []byte
	regs []uint32
}

// Open mmaps /dev/mem over the register window for the given board
// generation and configures pins as outputs.
func Open(board BoardGeneration, pins []int) (*Mapper, error) {
	base, err := board.baseAddress()
	if err != nil {
		return nil, err
	}

	fd, err := unix.Open("/dev/mem", unix.O_RDWR|unix.O_SYNC, 0)
	if err != nil {
		return nil, fmt.Errorf("gpio: open /dev/mem: %w", err)
	}
	defer unix.Close(fd)

	mem, err := unix.Mmap(fd, base, regionLen, unix.PROT_READ|unix.PROT_WRITE, unix.MAP_SHARED)
	if err != nil {
		return nil, fmt.Errorf("gpio: mmap: %w", err)
	}

	m := &Mapper{
		mem:  mem,
		regs: unsafe.Slice((*uint32)(unsafe.Pointer(&mem[0])), len(mem)/4),
	}

	for _, pin := range pins {
		m.configureOutput(pin)
	}

	return m, nil
}

// configureOutput sets a pin's 3-bit FSEL field to output, leaving the
// other nine pins packed into the same FSEL register untouched.
func (m *Mapper) configureOutput(pin int) {
	word := gpfsel0Word + pin/10
	shift := uint((pin % 10) * 3)

	reg := m.regs[word]
	reg &^= 0b111 << shift
	reg |= fselFunctionOutput << shift
	m.regs[word] = reg
}

// Set drives high every pin named in mask (bit N corresponds to GPIO N).
// Store is atomic so the write can't be reordered past a later Fence call.
func (m *Mapper) Set(mask uint32) {
	atomic.StoreUint32(&m.regs[gpset0Word], mask)
}

// Clear drives low every pin named in mask.
func (m *Mapper) Clear(mask uint32) {
	atomic.StoreUint32(&m.regs[gpclr0Word], mask)
}

// Close unmaps the register window.
func (m *Mapper) Close() error {
	if m.mem == nil {
		return nil
	}
	err := unix.Munmap(m.mem)
	m.mem = nil
	m.regs = nil
	return err
}

// RegisterWriter is the subset of Mapper that ShadowRegister needs,
// satisfied by both Mapper and the in-memory stub used off-target.
type RegisterWriter interface {
	Set(mask uint32)
	Clear(mask uint32)
}
