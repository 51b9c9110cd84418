package jitter

import (
	"testing"
	"time"

	"voicestream/internal/rtp"
)

func pkt(seq uint16) rtp.Packet {
	return rtp.Packet{Sequence: seq, Timestamp: uint32(seq) * 320, SSRC: 0x12345678}
}

func TestReorderedRelease(t *testing.T) {
	b := New(Config{DepthMS: 0, MaxPackets: 10})
	now := time.Now()

	b.Insert(pkt(0), now)
	b.Insert(pkt(2), now)
	b.Insert(pkt(1), now)

	var got []uint16
	for i := 0; i < 3; i++ {
		p, _, ok := b.PopReady(now)
		if !ok {
			t.Fatalf("PopReady() #%d not ok", i)
		}
		got = append(got, p.Sequence)
	}
	want := []uint16{0, 1, 2}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("release order = %v, want %v", got, want)
		}
	}
}

func TestDuplicateSuppression(t *testing.T) {
	b := New(Config{DepthMS: 0, MaxPackets: 10})
	now := time.Now()

	if r := b.Insert(pkt(0), now); r != Inserted {
		t.Fatalf("first insert = %v, want Inserted", r)
	}
	if r := b.Insert(pkt(0), now); r != Duplicate {
		t.Fatalf("second insert = %v, want Duplicate", r)
	}
	if r := b.Insert(pkt(1), now); r != Inserted {
		t.Fatalf("insert 1 = %v, want Inserted", r)
	}

	if _, _, ok := b.PopReady(now); !ok {
		t.Fatal("expected packet 0 ready")
	}
	if r := b.Insert(pkt(0), now); r != Late {
		t.Fatalf("re-insert after release = %v, want Late", r)
	}
}

func TestPriming(t *testing.T) {
	b := New(Config{DepthMS: 100, MaxPackets: 10})
	start := time.Now()

	b.Insert(pkt(0), start)
	if _, _, ok := b.PopReady(start); ok {
		t.Fatal("expected no packet before depth elapses")
	}

	if _, _, ok := b.PopReady(start.Add(50 * time.Millisecond)); ok {
		t.Fatal("expected no packet before depth elapses")
	}

	p, _, ok := b.PopReady(start.Add(100 * time.Millisecond))
	if !ok {
		t.Fatal("expected packet once depth has elapsed")
	}
	if p.Sequence != 0 {
		t.Fatalf("got sequence %d, want 0", p.Sequence)
	}
}

func TestEarlyReleaseAtThreePackets(t *testing.T) {
	b := New(Config{DepthMS: 10_000, MaxPackets: 10})
	now := time.Now()

	b.Insert(pkt(0), now)
	b.Insert(pkt(1), now)
	if _, _, ok := b.PopReady(now); ok {
		t.Fatal("expected priming with only 2 packets")
	}
	b.Insert(pkt(2), now)
	if _, _, ok := b.PopReady(now); !ok {
		t.Fatal("expected priming to complete at 3 packets")
	}
}

func TestWraparoundRelease(t *testing.T) {
	b := New(Config{DepthMS: 0, MaxPackets: 10})
	now := time.Now()

	b.Insert(pkt(65534), now)
	b.Insert(pkt(65535), now)
	b.Insert(pkt(0), now)
	b.Insert(pkt(1), now)

	want := []uint16{65534, 65535, 0, 1}
	for _, w := range want {
		p, _, ok := b.PopReady(now)
		if !ok || p.Sequence != w {
			t.Fatalf("PopReady() = %d,%v want %d", p.Sequence, ok, w)
		}
	}
}

func TestOverflowPreservesFreshness(t *testing.T) {
	b := New(Config{DepthMS: 0, MaxPackets: 4})
	now := time.Now()

	var lastResult Result
	for seq := uint16(0); seq < 5; seq++ {
		lastResult = b.Insert(pkt(seq), now)
	}
	if lastResult != Overflowed {
		t.Fatalf("final insert = %v, want Overflowed", lastResult)
	}
	if got := b.Status().BufferedPackets; got != 4 {
		t.Fatalf("buffered = %d, want 4", got)
	}
	// the most recent 4 sequences (1..4) should remain; 0 was dropped.
	for seq := uint16(1); seq <= 4; seq++ {
		p, _, ok := b.PopReady(now)
		if !ok || p.Sequence != seq {
			t.Fatalf("PopReady() = %d,%v want %d", p.Sequence, ok, seq)
		}
	}
}

func TestWasReordered(t *testing.T) {
	b := New(Config{DepthMS: 0, MaxPackets: 10})
	if b.WasReordered(5) {
		t.Fatal("expected false before any insert")
	}
	now := time.Now()
	b.Insert(pkt(0), now)
	if b.WasReordered(0) {
		t.Fatal("expected false for the expected sequence")
	}
	if !b.WasReordered(2) {
		t.Fatal("expected true for a non-expected sequence")
	}
}

func TestLateRejection(t *testing.T) {
	b := New(Config{DepthMS: 0, MaxPackets: 10})
	now := time.Now()
	b.Insert(pkt(100), now)
	if r := b.Insert(pkt(50), now); r != Late {
		t.Fatalf("insert behind next_sequence = %v, want Late", r)
	}
}
