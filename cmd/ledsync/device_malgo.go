//go:build malgo

package main

import "github.com/ledsync/ledsync/internal/audiodevice"

// newHardwareDevice builds the real malgo-backed output device. Only
// compiled in when the malgo build tag is set, since it pulls in malgo's
// cgo-backed audio backend.
func newHardwareDevice() (audiodevice.Device, error) {
	return audiodevice.NewMalgo()
}
