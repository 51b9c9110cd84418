// Package receiver implements the receive/buffer/decode loop (C5): the
// single task that turns arriving datagrams into played-out audio.
package receiver

import (
	"context"
	"time"

	"github.com/charmbracelet/log"

	"voicestream/internal/codec"
	"voicestream/internal/jitter"
	"voicestream/internal/metrics"
	"voicestream/internal/netio"
	"voicestream/internal/rtp"
	"voicestream/internal/stats"
)

// Sink is the narrow surface the receiver needs from the audio output —
// just enough to hand off a decoded frame, never the device itself.
type Sink interface {
	Play(samples []int16)
}

// Config bounds the receiver's jitter buffer and anchors its sample rate
// for the transit-time estimator.
type Config struct {
	BufferDepthMS uint32
	MaxPackets    uint32
	SampleRate    int
	LogInterval   time.Duration
}

// Receiver owns the socket, jitter buffer, and stats for one stream. Only
// the Run goroutine touches the buffer and stats; Run's cancellation
// watcher touches the socket only to close it.
type Receiver struct {
	recv    *netio.RecvHandle
	buffer  *jitter.Buffer
	stats   *stats.Stats
	decoder codec.Decoder
	sink    Sink
	metrics *metrics.Registry
	logger  *log.Logger

	sampleRate int

	hasAnchor       bool
	anchorTimestamp uint32
	anchorArrival   time.Time
}

// New constructs a Receiver around an already-bound socket and
// already-configured decoder/sink.
func New(recv *netio.RecvHandle, cfg Config, decoder codec.Decoder, sink Sink, reg *metrics.Registry, logger *log.Logger) *Receiver {
	return &Receiver{
		recv: recv,
		buffer: jitter.New(jitter.Config{
			DepthMS:    cfg.BufferDepthMS,
			MaxPackets: cfg.MaxPackets,
		}),
		stats:      stats.New(time.Now(), cfg.LogInterval),
		decoder:    decoder,
		sink:       sink,
		metrics:    reg,
		logger:     logger,
		sampleRate: cfg.SampleRate,
	}
}

// Run drives the loop until ctx is cancelled, at which point it closes
// the receive socket to unblock the in-flight Recv and returns.
func (r *Receiver) Run(ctx context.Context) error {
	done := make(chan struct{})
	defer close(done)
	go func() {
		select {
		case <-ctx.Done():
			r.recv.Close()
		case <-done:
		}
	}()

	for {
		buf, _, err := r.recv.Recv()
		if err != nil {
			select {
			case <-ctx.Done():
				return nil
			default:
				return err
			}
		}
		r.handleDatagram(buf)
		r.drainReady()
		r.maybeLog()
	}
}

// handleDatagram parses and accounts for one arriving datagram.
func (r *Receiver) handleDatagram(buf []byte) {
	arrival := time.Now()

	packet, err := rtp.Decode(buf)
	if err != nil {
		r.logger.Warn("dropping malformed packet", "err", err)
		return
	}
	// The payload aliases the receive buffer, which the next Recv
	// overwrites; the jitter buffer may hold this packet past that point.
	packet.Payload = append([]byte(nil), packet.Payload...)

	reordered := r.buffer.WasReordered(packet.Sequence)
	r.observeTransit(packet.Timestamp, arrival)

	switch result := r.buffer.Insert(packet, arrival); result {
	case jitter.Late:
		r.stats.RecordLatePacket()
		r.metrics.PacketsLateTotal.Inc()
		return
	case jitter.Duplicate:
		return
	case jitter.Overflowed:
		r.logger.Warn("jitter buffer overflow, dropped oldest entry")
		fallthrough
	case jitter.Inserted:
		r.metrics.PacketsReceivedTotal.Inc()
		r.metrics.BytesReceivedTotal.Add(float64(len(buf)))
		gap := r.stats.RecordPacket(packet.Sequence, reordered)
		if gap > 0 {
			r.metrics.PacketsLostTotal.Add(float64(gap))
		}
		if reordered {
			r.metrics.PacketsReorderedTotal.Inc()
		}
	}

	r.metrics.JitterBufferOccupancy.Set(float64(r.buffer.Status().BufferedPackets))
}

// observeTransit implements the anchored transit-time estimate: the first
// packet sets the baseline, every later one is compared against the
// arrival time its timestamp would predict under zero jitter.
func (r *Receiver) observeTransit(timestamp uint32, arrival time.Time) {
	if !r.hasAnchor {
		r.hasAnchor = true
		r.anchorTimestamp = timestamp
		r.anchorArrival = arrival
		return
	}

	forwardSamples := rtp.TimestampDistanceForward(r.anchorTimestamp, timestamp)
	expected := r.anchorArrival.Add(time.Duration(forwardSamples) * time.Second / time.Duration(r.sampleRate))
	if arrival.Before(expected) {
		return
	}
	r.metrics.NetworkTransitSeconds.Observe(arrival.Sub(expected).Seconds())
}

// drainReady pops every packet the buffer is willing to release and pushes
// it through decode (or concealment) to the sink.
func (r *Receiver) drainReady() {
	for {
		packet, delay, ok := r.buffer.PopReady(time.Now())
		if !ok {
			return
		}
		r.metrics.JitterBufferOccupancy.Set(float64(r.buffer.Status().BufferedPackets))
		r.metrics.JitterBufferDelay.Observe(delay.Seconds())

		pipelineStart := time.Now()
		decodeStart := time.Now()
		samples, err := r.decoder.Decode(packet.Payload)
		if err != nil {
			r.logger.Warn("decode failed, concealing", "sequence", packet.Sequence, "err", err)
			samples, err = r.decoder.Conceal()
			if err != nil {
				r.logger.Warn("concealment failed, dropping frame", "sequence", packet.Sequence, "err", err)
				continue
			}
		}
		r.metrics.DecodeSeconds.Observe(time.Since(decodeStart).Seconds())

		r.sink.Play(samples)
		r.metrics.ReceiverPipelineSeconds.Observe(time.Since(pipelineStart).Seconds())
	}
}

// maybeLog emits a periodic summary line when the configured interval has
// elapsed since the last one.
func (r *Receiver) maybeLog() {
	now := time.Now()
	if !r.stats.ShouldLog(now) {
		return
	}
	r.logger.Info("receiver stats",
		"received", r.stats.PacketsReceived,
		"lost", r.stats.PacketsLost,
		"reordered", r.stats.PacketsReordered,
		"late", r.stats.PacketsLate,
		"loss_pct", r.stats.LossPercentage(),
		"pps", r.stats.PacketsPerSecond(now),
	)
}
