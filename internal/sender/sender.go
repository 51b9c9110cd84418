// Package sender implements the pacer (C6): the per-tick loop that pulls
// fixed-size frames from the audio source, encodes, and transmits them.
package sender

import (
	"context"
	"time"

	"github.com/charmbracelet/log"

	"voicestream/internal/codec"
	"voicestream/internal/metrics"
	"voicestream/internal/netio"
	"voicestream/internal/rtp"
	"voicestream/internal/wavsource"
)

// SamplesPerFrame is the fixed PCM frame size the pacer pulls each tick.
const SamplesPerFrame = wavsource.SamplesPerFrame

// Source is the narrow surface the pacer needs from the audio input. A
// source configured to loop restarts itself internally on EOF; the pacer
// only ever sees ok=false when the stream is genuinely exhausted for
// good (a non-looping source at EOF, or a file shorter than one frame).
type Source interface {
	NextFrame() (frame wavsource.AudioFrame, ok bool)
}

// Config configures one pacer run.
type Config struct {
	SSRC     uint32
	Interval time.Duration
}

// Pacer owns the sequence/timestamp state for one outgoing stream.
type Pacer struct {
	source  Source
	encoder codec.Encoder
	send    *netio.SendHandle
	metrics *metrics.Registry
	logger  *log.Logger

	cfg Config

	sequence     uint16
	timestamp    uint32
	frameCounter uint64
}

// New constructs a Pacer. sequence, timestamp, and ssrc are the initial
// stream state; callers that want a randomized starting point should
// choose it before calling New.
func New(source Source, encoder codec.Encoder, send *netio.SendHandle, reg *metrics.Registry, logger *log.Logger, cfg Config, initialSequence uint16, initialTimestamp uint32) *Pacer {
	return &Pacer{
		source:    source,
		encoder:   encoder,
		send:      send,
		metrics:   reg,
		logger:    logger,
		cfg:       cfg,
		sequence:  initialSequence,
		timestamp: initialTimestamp,
	}
}

// Run drives the pacer until ctx is cancelled or the source is exhausted
// without looping.
func (p *Pacer) Run(ctx context.Context) error {
	ticker := time.NewTicker(p.cfg.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		default:
		}

		if !p.tick() {
			return nil
		}

		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
		}
	}
}

// tick runs one pacer iteration: pull, encode, send, advance. It returns
// false when the source is exhausted and looping is disabled.
func (p *Pacer) tick() bool {
	frame, ok := p.source.NextFrame()
	if !ok {
		return false
	}

	encodeStart := time.Now()
	payload, err := p.encoder.Encode(frame.Samples[:])
	if err != nil {
		p.logger.Error("encode failed, skipping frame", "err", err)
	} else {
		p.metrics.EncodeSeconds.Observe(time.Since(encodeStart).Seconds())

		packet := rtp.Packet{
			Sequence:  p.sequence,
			Timestamp: p.timestamp,
			SSRC:      p.cfg.SSRC,
			Payload:   payload,
		}
		datagram := rtp.Encode(packet)
		if _, err := p.send.Send(datagram); err != nil {
			p.logger.Warn("send failed, continuing", "err", err)
		} else {
			p.metrics.PacketsSentTotal.Inc()
			p.metrics.BytesSentTotal.Add(float64(len(datagram)))
		}
	}

	p.sequence++
	p.timestamp += SamplesPerFrame
	p.frameCounter++
	return true
}
