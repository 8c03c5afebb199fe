// Package mixer is a placeholder for the reference implementation's ALSA
// mixer volume control. Deliberately out of scope for this module (see
// spec's collaborator list): SetVolume exists so callers have a stable
// contract to build against, not because volume control is implemented.
package mixer

import "fmt"

// SetVolume would set the output mixer's volume to pct percent (0-100).
// It is unimplemented hardware plumbing: callers get a clear error instead
// of a silent no-op that looks like it worked.
func SetVolume(pct int) error {
	if pct < 0 || pct > 100 {
		return fmt.Errorf("mixer: volume %d out of range [0, 100]", pct)
	}
	return fmt.Errorf("mixer: volume control is not implemented on this build")
}
