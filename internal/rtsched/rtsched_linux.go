//go:build linux

// Package rtsched applies best-effort SCHED_FIFO real-time priorities to
// the calling goroutine's OS thread, matching the pthread_attr_setschedparam
// priorities the reference implementation assigns to its audio (75) and LED
// (80) threads.
package rtsched

import (
	"fmt"

	"golang.org/x/sys/unix"
)

// Priority names the two real-time tiers the sequencer's periodic writers
// run at. Values mirror the reference implementation's SCHED_FIFO
// priorities.
type Priority int

const (
	PriorityAudio Priority = 75
	PriorityLED   Priority = 80
)

// Apply requests SCHED_FIFO scheduling at the given priority for the
// current OS thread. Callers must have already pinned the calling
// goroutine to its OS thread with runtime.LockOSThread, since Go's
// scheduler may otherwise migrate it. Apply returns nil even on failure
// modes that amount to "not permitted" (e.g. running without CAP_SYS_NICE,
// or on a kernel where SCHED_FIFO isn't available) — real-time scheduling
// is a best-effort optimization the sequencer can run without.
func Apply(p Priority) error {
	err := unix.SchedSetscheduler(0, unix.SCHED_FIFO, &unix.SchedParam{Priority: int32(p)})
	if err != nil {
		if err == unix.EPERM || err == unix.EINVAL {
			return nil
		}
		return fmt.Errorf("rtsched: set scheduler: %w", err)
	}
	return nil
}
