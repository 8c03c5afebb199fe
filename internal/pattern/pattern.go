// Package pattern parses LED pattern files and exposes them as a sequence
// the LED writer can step through.
package pattern

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"
)

// PinMap gives the physical GPIO pin for each bit of a pattern mask, in
// order from bit 7 (first character of the mask, read MSB-first) down to
// bit 0.
var PinMap = [8]int{22, 5, 6, 26, 23, 24, 25, 16}

// minDurationMs is the shortest a pattern step is ever allowed to run,
// applied before rounding.
const minDurationMs = 70

// roundStepMs is the granularity pattern durations are rounded to, matching
// the LED writer's 10ms tick.
const roundStepMs = 10

// Step is one entry of a pattern file: hold Mask's bits on the GPIO pins in
// PinMap order for Duration.
type Step struct {
	Duration time.Duration
	Mask     uint8
}

// Table is an ordered, fixed sequence of pattern steps loaded from a file.
type Table struct {
	steps []Step
}

// Len returns the number of steps in the table.
func (t *Table) Len() int {
	return len(t.steps)
}

// Step returns the step at index i.
func (t *Table) Step(i int) Step {
	return t.steps[i]
}

// TotalDuration sums the duration of every step.
func (t *Table) TotalDuration() time.Duration {
	var total time.Duration
	for _, s := range t.steps {
		total += s.Duration
	}
	return total
}

// Load reads a pattern file from path.
func Load(path string) (*Table, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("pattern: open %s: %w", path, err)
	}
	defer f.Close()

	table, err := Parse(f)
	if err != nil {
		return nil, fmt.Errorf("pattern: %s: %w", path, err)
	}
	return table, nil
}

// Parse reads pattern lines from r. Each non-blank line is
// "<duration_ms> <mask>", where mask is eight '0'/'1' characters read
// MSB-first, optionally broken up with '.' separators for readability
// (e.g. "1010.1100"). Lines that don't match this shape, including a mask
// with fewer than 8 significant bits, are skipped rather than failing the
// whole load, the same tolerant behavior as the reference loader.
func Parse(r io.Reader) (*Table, error) {
	var steps []Step
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}

		fields := strings.Fields(line)
		if len(fields) < 2 {
			continue
		}

		ms, err := strconv.Atoi(fields[0])
		if err != nil {
			continue
		}

		mask, ok := parseMask(fields[1])
		if !ok {
			continue
		}

		steps = append(steps, Step{
			Duration: roundDuration(ms),
			Mask:     mask,
		})
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read: %w", err)
	}

	return &Table{steps: steps}, nil
}

// parseMask reads an 8-bit mask MSB-first, ignoring '.' separator
// characters. Any other character is treated as a 0 bit, mirroring the
// reference loader's bits[j]=='1' check. ok is false when the string has
// fewer than 8 significant bits, telling the caller to skip the line
// instead of aborting the whole load.
func parseMask(s string) (mask uint8, ok bool) {
	bits := 0
	for _, r := range s {
		if bits == 8 {
			break
		}
		if r == '.' {
			continue
		}
		mask <<= 1
		if r == '1' {
			mask |= 1
		}
		bits++
	}
	return mask, bits == 8
}

// roundDuration applies the 70ms floor and rounds to the nearest 10ms,
// matching the reference loader's (dur+5)/10*10 rounding.
func roundDuration(ms int) time.Duration {
	if ms < minDurationMs {
		ms = minDurationMs
	}
	rounded := ((ms + roundStepMs/2) / roundStepMs) * roundStepMs
	return time.Duration(rounded) * time.Millisecond
}
