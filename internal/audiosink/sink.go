// Package audiosink drives a PortAudio playback device from a bounded
// single-producer/single-consumer queue, so the receive loop never blocks
// on the audio callback.
package audiosink

import (
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/gordonklaus/portaudio"
)

const (
	channels = 1
	// queueDepth bounds how many frames may be queued ahead of playback;
	// beyond this the producer drops newly arriving frames rather than
	// block.
	queueDepth = 16
)

// paStream abstracts the portion of *portaudio.Stream this package calls,
// so Close()'s stop/wait/close sequencing can be exercised without a real
// audio device.
type paStream interface {
	Start() error
	Stop() error
	Close() error
	Write() error
}

// Sink is a mono PortAudio output device fed by bounded Play calls.
type Sink struct {
	stream    paStream
	frameSize int

	queue   chan []int16
	stopCh  chan struct{}
	wg      sync.WaitGroup
	running atomic.Bool

	dropped    atomic.Uint64
	underflows atomic.Uint64
}

// New opens the default output device at sampleRate and starts the
// playback goroutine. frameSize is the fixed number of mono samples per
// write (SAMPLES_PER_FRAME).
func New(sampleRate, frameSize int) (*Sink, error) {
	writeBuf := make([]float32, frameSize*channels)
	outDev, err := portaudio.DefaultOutputDevice()
	if err != nil {
		return nil, fmt.Errorf("audiosink: default output device: %w", err)
	}

	params := portaudio.StreamParameters{
		Output: portaudio.StreamDeviceParameters{
			Device:   outDev,
			Channels: channels,
			Latency:  outDev.DefaultLowOutputLatency,
		},
		SampleRate:      float64(sampleRate),
		FramesPerBuffer: frameSize,
	}
	stream, err := portaudio.OpenStream(params, writeBuf)
	if err != nil {
		return nil, fmt.Errorf("audiosink: open stream: %w", err)
	}
	if err := stream.Start(); err != nil {
		stream.Close()
		return nil, fmt.Errorf("audiosink: start stream: %w", err)
	}

	return newWithStream(stream, frameSize, writeBuf), nil
}

// newWithStream wires up a Sink around an already-started stream and its
// write buffer. Split out from New so tests can substitute a mock stream.
func newWithStream(stream paStream, frameSize int, writeBuf []float32) *Sink {
	s := &Sink{
		stream:    stream,
		frameSize: frameSize,
		queue:     make(chan []int16, queueDepth),
		stopCh:    make(chan struct{}),
	}
	s.running.Store(true)

	s.wg.Add(1)
	go s.playbackLoop(writeBuf)

	return s
}

// Play enqueues one PCM frame for playback. If the queue is full the
// frame is dropped — the caller must never be made to wait on the
// playback goroutine.
func (s *Sink) Play(samples []int16) {
	select {
	case s.queue <- samples:
	default:
		s.dropped.Add(1)
	}
}

// Dropped returns the number of frames dropped because the queue was
// full.
func (s *Sink) Dropped() uint64 {
	return s.dropped.Load()
}

// Underflows returns the number of writes for which no frame was queued
// and silence was substituted.
func (s *Sink) Underflows() uint64 {
	return s.underflows.Load()
}

func (s *Sink) playbackLoop(buf []float32) {
	defer s.wg.Done()
	for {
		select {
		case <-s.stopCh:
			return
		default:
		}

		select {
		case samples := <-s.queue:
			for i, v := range samples {
				buf[i] = float32(v) / 32768.0
			}
		default:
			s.underflows.Add(1)
			for i := range buf {
				buf[i] = 0
			}
		}

		if err := s.stream.Write(); err != nil {
			if s.running.Load() {
				return
			}
		}
	}
}

// Close stops playback and releases the stream. Sequence matters: the
// stream is stopped first so the blocking Write in playbackLoop returns,
// then the goroutine is waited on before the stream is closed — closing
// while playbackLoop still holds the stream would be a use-after-free.
func (s *Sink) Close() error {
	if !s.running.CompareAndSwap(true, false) {
		return nil
	}
	close(s.stopCh)
	s.stream.Stop()
	s.wg.Wait()
	return s.stream.Close()
}
