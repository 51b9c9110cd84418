package stats

import (
	"testing"
	"time"
)

func TestRecordPacketGapAccounting(t *testing.T) {
	now := time.Now()
	s := New(now, time.Minute)

	if gap := s.RecordPacket(0, false); gap != 0 {
		t.Fatalf("gap = %d, want 0", gap)
	}
	if gap := s.RecordPacket(1, false); gap != 0 {
		t.Fatalf("gap = %d, want 0", gap)
	}
	if gap := s.RecordPacket(5, false); gap != 3 {
		t.Fatalf("gap = %d, want 3", gap)
	}
	if s.PacketsLost != 3 {
		t.Fatalf("PacketsLost = %d, want 3", s.PacketsLost)
	}
	if s.PacketsReceived != 3 {
		t.Fatalf("PacketsReceived = %d, want 3", s.PacketsReceived)
	}
}

func TestRecordPacketReorderedDoesNotAdvance(t *testing.T) {
	now := time.Now()
	s := New(now, time.Minute)

	s.RecordPacket(5, false)
	s.RecordPacket(3, true) // reordered — should not move lastSequence
	if s.PacketsReordered != 1 {
		t.Fatalf("PacketsReordered = %d, want 1", s.PacketsReordered)
	}
	// next in-order packet after 5 is 6; no gap expected.
	if gap := s.RecordPacket(6, false); gap != 0 {
		t.Fatalf("gap = %d, want 0", gap)
	}
}

func TestRecordLatePacket(t *testing.T) {
	s := New(time.Now(), time.Minute)
	s.RecordLatePacket()
	s.RecordLatePacket()
	if s.PacketsLate != 2 {
		t.Fatalf("PacketsLate = %d, want 2", s.PacketsLate)
	}
}

func TestPercentages(t *testing.T) {
	s := New(time.Now(), time.Minute)
	s.RecordPacket(0, false)
	s.RecordPacket(1, false)
	s.RecordPacket(5, false) // gap of 3

	if got := s.LossPercentage(); got <= 0 || got >= 100 {
		t.Fatalf("LossPercentage = %v, want in (0,100)", got)
	}
}

func TestShouldLog(t *testing.T) {
	start := time.Now()
	s := New(start, 10*time.Millisecond)

	if s.ShouldLog(start) {
		t.Fatal("should not log immediately")
	}
	if !s.ShouldLog(start.Add(11 * time.Millisecond)) {
		t.Fatal("should log once interval elapsed")
	}
	if s.ShouldLog(start.Add(12 * time.Millisecond)) {
		t.Fatal("should not log again before next interval")
	}
}
