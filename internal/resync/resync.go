// Package resync implements the frame-aligned resynchronizer that pairs
// microphone frames with reference (far-end) frames under two independently
// clocked producers.
//
// The reference frame for a given mic frame must reach the echo canceller
// before the mic frame, or the adaptive filter diverges. A plain two-queue
// join can't enforce that ordering without unbounded queueing or ad-hoc
// heuristics, so an 8-state controller tracks the mic queue's approximate
// depth and drives drop decisions from state transitions alone — no
// occupancy counting, no timers.
//
// The state tables below encode the same addMic/addSpeaker occupancy
// tracking a jitter-tolerant echo processor needs to keep the reference
// signal strictly ahead of the microphone signal.
package resync

import (
	"sync"

	"aecsync/internal/frame"
)

// State is one of the resynchronizer's 8 mic-queue occupancy states.
type State int

const (
	S0  State = iota // empty, starved
	S1a              // 1 mic, recovering
	S1b              // 1 mic, draining
	S2               // 2 mic (nominal)
	S3               // 3 mic (full)
	S4a              // 4 mic (high)
	S4b              // 4 mic (high, about to drop)
	S5               // 5 mic (overflow)
)

func (s State) String() string {
	switch s {
	case S0:
		return "S0"
	case S1a:
		return "S1a"
	case S1b:
		return "S1b"
	case S2:
		return "S2"
	case S3:
		return "S3"
	case S4a:
		return "S4a"
	case S4b:
		return "S4b"
	case S5:
		return "S5"
	default:
		return "?"
	}
}

// NominalLag is the target number of mic frames buffered before a
// reference frame arrives to pair with them.
const NominalLag = 2

// micTransition is indexed by the current state and yields the next state on
// push_mic, plus whether the newly-arrived condition requires evicting the
// oldest queued frame (queue overflow).
var micTransition = [8]struct {
	next State
	drop bool
}{
	S0:  {S1a, false},
	S1a: {S2, false},
	S1b: {S2, false},
	S2:  {S3, false},
	S3:  {S4a, false},
	S4a: {S5, false},
	S4b: {S4b, true},
	S5:  {S5, true},
}

// refTransition is indexed by the current state and yields the next state on
// push_ref, plus whether the reference frame must be dropped (queue
// underflow — no mic frame available to pair with it).
var refTransition = [8]struct {
	next State
	drop bool
}{
	S0:  {S0, true},
	S1a: {S1a, true},
	S1b: {S0, false},
	S2:  {S1b, false},
	S3:  {S2, false},
	S4a: {S3, false},
	S4b: {S3, false},
	S5:  {S4b, false},
}

// Chunk is a paired (mic, reference) frame emitted by PushRef, or an Empty
// sentinel meaning no paired work resulted from that call.
type Chunk struct {
	Mic   frame.Frame
	Ref   frame.Frame
	Empty bool
}

// Resynchronizer bridges the two independently clocked producers. Zero value
// is not usable; use New.
type Resynchronizer struct {
	mu    sync.Mutex
	queue []frame.Frame
	state State
}

// New returns a Resynchronizer in its initial state (S0, empty queue).
func New() *Resynchronizer {
	return &Resynchronizer{state: S0}
}

// PushMic enqueues a microphone frame and advances the state machine. It
// reports whether an existing (oldest) queued frame had to be dropped to
// keep the queue bounded — the frame passed in is always kept.
func (r *Resynchronizer) PushMic(f frame.Frame) (dropped bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.queue = append(r.queue, f)
	t := micTransition[r.state]
	r.state = t.next
	if t.drop {
		// Evict the front (oldest), not the frame just enqueued: freshness
		// bias, matching the original's micQueue.front() eviction.
		r.queue = r.queue[1:]
		dropped = true
	}
	return dropped
}

// PushRef presents a reference frame. If the state machine has no buffered
// mic frame to pair with it (S0/S1a), the reference frame is dropped and
// Chunk.Empty is true. Otherwise the oldest queued mic frame is dequeued and
// paired with ref.
func (r *Resynchronizer) PushRef(ref frame.Frame) Chunk {
	r.mu.Lock()
	defer r.mu.Unlock()

	t := refTransition[r.state]
	r.state = t.next
	if t.drop {
		return Chunk{Empty: true}
	}

	mic := r.queue[0]
	r.queue = r.queue[1:]
	return Chunk{Mic: mic, Ref: ref}
}

// Reset clears the mic queue and returns the state machine to S0.
func (r *Resynchronizer) Reset() {
	r.mu.Lock()
	r.queue = nil
	r.state = S0
	r.mu.Unlock()
}

// State returns the current control state (for statistics/debugging only).
func (r *Resynchronizer) State() State {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.state
}

// QueueDepth returns the number of buffered mic frames (for tests and
// statistics; not on the hot path).
func (r *Resynchronizer) QueueDepth() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.queue)
}

// NominalLag returns the target number of mic frames buffered before a
// reference frame arrives, used by the engine to size the AEC filter.
func (r *Resynchronizer) NominalLag() int {
	return NominalLag
}
