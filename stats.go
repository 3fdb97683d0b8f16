package aecsync

import "aecsync/internal/resync"

// Statistics reports the pipeline's lifetime counters, zeroed by Reset.
// Safe to read concurrently with pipeline operation; it never blocks an
// audio callback since it reads under the same mutexes those callbacks
// already hold briefly.
type Statistics struct {
	ProcessedFrames     uint64
	DroppedMicFrames    uint64
	DroppedRefFrames    uint64
	DroppedOutputFrames uint64
	State               string
}

// resyncStateName renders a resync.State for Statistics.State without
// exposing the internal/resync package in the public API.
func resyncStateName(s resync.State) string {
	return s.String()
}
