// Package jitter implements the receiver's jitter buffer: an ordered,
// sequence-keyed store that compensates for network reordering and
// variable arrival delay ahead of playout.
//
// Unlike a per-sender ring buffer, this buffer tracks exactly one stream
// (one SSRC) — this system never mixes multiple senders — so it is built
// as a single ordered slice rather than a map of rings.
package jitter

import (
	"time"

	"voicestream/internal/rtp"
)

// Result classifies the outcome of an Insert call.
type Result int

const (
	// Inserted means the packet was accepted and no overflow occurred.
	Inserted Result = iota
	// Duplicate means an entry with the same sequence was already buffered.
	Duplicate
	// Late means the packet's sequence lies behind next_sequence and was
	// rejected outright.
	Late
	// Overflowed means the packet was accepted but pushed the buffer past
	// max_packets, so the oldest (smallest forward-distance) entry was
	// dropped to make room.
	Overflowed
)

func (r Result) String() string {
	switch r {
	case Inserted:
		return "Inserted"
	case Duplicate:
		return "Duplicate"
	case Late:
		return "Late"
	case Overflowed:
		return "Overflowed"
	default:
		return "Unknown"
	}
}

// Config bounds a Buffer's priming delay and capacity.
type Config struct {
	// DepthMS is how long to withhold playout after the first packet
	// arrives, unless the early-release packet-count threshold is hit
	// first.
	DepthMS uint32
	// MaxPackets is the hard cap on buffered entries; insertion beyond it
	// drops the oldest entry.
	MaxPackets uint32
}

// entry is one buffered packet together with its arrival time, needed to
// compute buffer_delay on release.
type entry struct {
	packet  rtp.Packet
	arrival time.Time
}

// Buffer is a single-stream jitter buffer. Not safe for concurrent use —
// the receiver loop is its sole owner.
type Buffer struct {
	cfg Config

	entries []entry // sorted by forward distance from nextSequence

	hasNext      bool
	nextSequence uint16

	startTime time.Time
	primed    bool
}

// New constructs an empty, unprimed Buffer with the given configuration.
func New(cfg Config) *Buffer {
	return &Buffer{cfg: cfg}
}

// Insert adds packet, observed at arrival, to the buffer. See Result for
// the possible outcomes.
func (b *Buffer) Insert(packet rtp.Packet, arrival time.Time) Result {
	if !b.hasNext {
		b.hasNext = true
		b.nextSequence = packet.Sequence
		b.startTime = arrival
	}

	if rtp.IsLate(b.nextSequence, packet.Sequence) {
		return Late
	}

	for _, e := range b.entries {
		if e.packet.Sequence == packet.Sequence {
			return Duplicate
		}
	}

	dist := rtp.DistanceForward(b.nextSequence, packet.Sequence)
	pos := len(b.entries)
	for i, e := range b.entries {
		if dist < rtp.DistanceForward(b.nextSequence, e.packet.Sequence) {
			pos = i
			break
		}
	}
	b.entries = append(b.entries, entry{})
	copy(b.entries[pos+1:], b.entries[pos:])
	b.entries[pos] = entry{packet: packet, arrival: arrival}

	if uint32(len(b.entries)) > b.cfg.MaxPackets {
		b.entries = b.entries[1:]
		return Overflowed
	}
	return Inserted
}

// PopReady returns the next packet ready for playout, together with the
// delay it spent in the buffer. ok is false if the buffer is still
// priming, or the next-expected packet has not arrived yet.
func (b *Buffer) PopReady(now time.Time) (packet rtp.Packet, bufferDelay time.Duration, ok bool) {
	if !b.primed {
		if !b.shouldStartPlayout(now) {
			return rtp.Packet{}, 0, false
		}
		b.primed = true
	}

	if len(b.entries) == 0 {
		return rtp.Packet{}, 0, false
	}
	head := b.entries[0]
	if head.packet.Sequence != b.nextSequence {
		return rtp.Packet{}, 0, false
	}

	b.entries = b.entries[1:]
	b.nextSequence++
	return head.packet, now.Sub(head.arrival), true
}

// shouldStartPlayout reports whether priming is complete: either the
// configured depth has elapsed since the first packet, or three packets
// have accumulated (a guard against very small depths or a racy first
// arrival).
func (b *Buffer) shouldStartPlayout(now time.Time) bool {
	if len(b.entries) == 0 {
		return false
	}
	if len(b.entries) >= 3 {
		return true
	}
	return now.Sub(b.startTime) >= time.Duration(b.cfg.DepthMS)*time.Millisecond
}

// Status is a snapshot of the buffer's internal state for observability.
type Status struct {
	BufferedPackets int
	IsPrimed        bool
	HasNextSequence bool
	NextSequence    uint16
}

// Status returns a snapshot of the buffer's current state.
func (b *Buffer) Status() Status {
	return Status{
		BufferedPackets: len(b.entries),
		IsPrimed:        b.primed,
		HasNextSequence: b.hasNext,
		NextSequence:    b.nextSequence,
	}
}

// WasReordered reports whether seq arrived out of order relative to the
// currently expected next sequence.
func (b *Buffer) WasReordered(seq uint16) bool {
	return b.hasNext && seq != b.nextSequence
}
