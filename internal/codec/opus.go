package codec

import (
	"fmt"

	opus "gopkg.in/hraban/opus.v2"
)

// maxPacketBytes is the RFC 6716 maximum Opus packet size.
const maxPacketBytes = 1275

// opusBitrate is the target bitrate for the 16 kHz (wideband) voice
// profile this system streams.
const opusBitrate = 16000

// rawEncoder and rawDecoder narrow *opus.Encoder/*opus.Decoder to the
// methods this package calls, so tests can substitute fakes without
// linking libopus.
type rawEncoder interface {
	Encode(pcm []int16, data []byte) (int, error)
	SetBitrate(bitrate int) error
	SetDTX(dtx bool) error
	SetInBandFEC(fec bool) error
}

type rawDecoder interface {
	Decode(data []byte, pcm []int16) (int, error)
}

// opusEncoder adapts a rawEncoder to the Encoder interface.
type opusEncoder struct {
	enc       rawEncoder
	frameSize int
}

// opusDecoder adapts a rawDecoder to the Decoder interface.
type opusDecoder struct {
	dec       rawDecoder
	frameSize int
	channels  int
}

// New constructs an Opus-backed Encoder/Decoder pair configured for
// voice: VoIP application profile, DTX and in-band FEC enabled. frameSize
// is the fixed PCM sample count per frame (SAMPLES_PER_FRAME).
func New(sampleRate, channels, frameSize int) (Encoder, Decoder, error) {
	enc, err := opus.NewEncoder(sampleRate, channels, opus.AppVoIP)
	if err != nil {
		return nil, nil, fmt.Errorf("codec: new encoder: %w", err)
	}
	if err := enc.SetBitrate(opusBitrate); err != nil {
		return nil, nil, fmt.Errorf("codec: set bitrate: %w", err)
	}
	if err := enc.SetDTX(true); err != nil {
		return nil, nil, fmt.Errorf("codec: set dtx: %w", err)
	}
	if err := enc.SetInBandFEC(true); err != nil {
		return nil, nil, fmt.Errorf("codec: set fec: %w", err)
	}

	dec, err := opus.NewDecoder(sampleRate, channels)
	if err != nil {
		return nil, nil, fmt.Errorf("codec: new decoder: %w", err)
	}

	return &opusEncoder{enc: enc, frameSize: frameSize},
		&opusDecoder{dec: dec, frameSize: frameSize, channels: channels},
		nil
}

// Encode compresses one PCM frame into an Opus payload.
func (e *opusEncoder) Encode(pcm []int16) ([]byte, error) {
	buf := make([]byte, maxPacketBytes)
	n, err := e.enc.Encode(pcm, buf)
	if err != nil {
		return nil, fmt.Errorf("codec: encode: %w", err)
	}
	return buf[:n], nil
}

// Decode expands payload into one PCM frame.
func (d *opusDecoder) Decode(payload []byte) ([]int16, error) {
	pcm := make([]int16, d.frameSize*d.channels)
	n, err := d.dec.Decode(payload, pcm)
	if err != nil {
		return nil, fmt.Errorf("codec: decode: %w", err)
	}
	return pcm[:n*d.channels], nil
}

// Conceal synthesizes a plausible frame for a packet that never arrived,
// using Opus's built-in packet-loss concealment (a nil-payload decode).
func (d *opusDecoder) Conceal() ([]int16, error) {
	pcm := make([]int16, d.frameSize*d.channels)
	n, err := d.dec.Decode(nil, pcm)
	if err != nil {
		return nil, fmt.Errorf("codec: conceal: %w", err)
	}
	return pcm[:n*d.channels], nil
}
