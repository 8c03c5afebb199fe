//go:build !malgo

package main

import (
	"fmt"

	"github.com/ledsync/ledsync/internal/audiodevice"
)

// newHardwareDevice reports that no hardware audio backend was compiled in.
// Build with -tags malgo to get the real device; without it, --hardware
// falls back to an error rather than silently using the stub.
func newHardwareDevice() (audiodevice.Device, error) {
	return nil, fmt.Errorf("cmd/ledsync: built without malgo audio backend (rebuild with -tags malgo)")
}
