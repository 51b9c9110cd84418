// Package stats tracks receiver-side packet accounting: loss via sequence
// gaps, reordering, and periodic rate aggregation for logging.
package stats

import (
	"time"

	"voicestream/internal/rtp"
)

// Stats accumulates receiver counters. Not safe for concurrent use — owned
// exclusively by the receiver loop, same as the jitter buffer.
type Stats struct {
	PacketsReceived  uint64
	PacketsLost      uint64
	PacketsReordered uint64
	PacketsLate      uint64

	hasLastSequence bool
	lastSequence    uint16

	startTime   time.Time
	lastLogTime time.Time
	logInterval time.Duration
}

// New returns a Stats with its clocks anchored at now.
func New(now time.Time, logInterval time.Duration) *Stats {
	return &Stats{
		startTime:   now,
		lastLogTime: now,
		logInterval: logInterval,
	}
}

// RecordPacket accounts for one packet accepted into the jitter buffer.
// wasReordered should be the value of Buffer.WasReordered computed before
// insertion. It returns the loss-gap contribution of this call (0 if
// none), so the caller can mirror it into a packets_lost_total metric in
// lockstep.
func (s *Stats) RecordPacket(sequence uint16, wasReordered bool) uint64 {
	s.PacketsReceived++

	if wasReordered {
		s.PacketsReordered++
		return 0
	}

	var gap uint64
	if s.hasLastSequence && sequence != s.lastSequence+1 {
		gap = uint64(rtp.DistanceForward(s.lastSequence+1, sequence))
		s.PacketsLost += gap
	}
	s.hasLastSequence = true
	s.lastSequence = sequence
	return gap
}

// RecordLatePacket accounts for a packet the jitter buffer rejected as
// Late.
func (s *Stats) RecordLatePacket() {
	s.PacketsLate++
}

// LossPercentage returns the fraction of expected packets lost, in
// [0,100]. It is 0 if no packets have been received yet.
func (s *Stats) LossPercentage() float64 {
	total := s.PacketsReceived + s.PacketsLost
	if total == 0 {
		return 0
	}
	return 100 * float64(s.PacketsLost) / float64(total)
}

// ReorderPercentage returns the fraction of received packets that arrived
// out of order, in [0,100].
func (s *Stats) ReorderPercentage() float64 {
	if s.PacketsReceived == 0 {
		return 0
	}
	return 100 * float64(s.PacketsReordered) / float64(s.PacketsReceived)
}

// Runtime returns the elapsed time since Stats was created, as of now.
func (s *Stats) Runtime(now time.Time) time.Duration {
	return now.Sub(s.startTime)
}

// PacketsPerSecond returns the mean packet rate since creation, as of now.
func (s *Stats) PacketsPerSecond(now time.Time) float64 {
	elapsed := s.Runtime(now).Seconds()
	if elapsed <= 0 {
		return 0
	}
	return float64(s.PacketsReceived) / elapsed
}

// ShouldLog reports whether at least logInterval has elapsed since the
// last log emission, and if so updates lastLogTime to now.
func (s *Stats) ShouldLog(now time.Time) bool {
	if s.logInterval <= 0 || now.Sub(s.lastLogTime) < s.logInterval {
		return false
	}
	s.lastLogTime = now
	return true
}
