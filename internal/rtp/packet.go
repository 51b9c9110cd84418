// Package rtp implements the fixed 12-byte RTP header profile used to carry
// opaque Opus payloads between the sender and the receiver, plus the
// wraparound-aware sequence arithmetic the rest of the pipeline depends on.
package rtp

import (
	"encoding/binary"
	"errors"
)

// headerSize is the fixed RTP header length for this profile: no padding,
// extension, or CSRC list is ever produced.
const headerSize = 12

// versionByte is byte 0 of every packet this profile emits: V=2, P=0, X=0,
// CC=0.
const versionByte = 0x80

// payloadTypeByte is byte 1: M=0, PT=96 (dynamic).
const payloadTypeByte = 0x60

// ErrTooShort is returned by Decode when the input is shorter than the
// 12-byte header.
var ErrTooShort = errors.New("rtp: packet shorter than header")

// ErrBadVersion is returned by Decode when the version bits of byte 0 are
// not 2.
var ErrBadVersion = errors.New("rtp: unsupported version")

// Packet is one RTP datagram: a 12-byte header plus an opaque payload. The
// payload is the codec's encoded frame; this package never inspects it.
type Packet struct {
	Sequence  uint16
	Timestamp uint32
	SSRC      uint32
	Payload   []byte
}

// Encode serializes p into a new 12+len(payload) byte slice. Byte 0 is
// always 0x80, byte 1 is always 0x60; the M bit and CC/X nibble are fixed
// by this profile and never set from p.
func Encode(p Packet) []byte {
	buf := make([]byte, headerSize+len(p.Payload))
	buf[0] = versionByte
	buf[1] = payloadTypeByte
	binary.BigEndian.PutUint16(buf[2:4], p.Sequence)
	binary.BigEndian.PutUint32(buf[4:8], p.Timestamp)
	binary.BigEndian.PutUint32(buf[8:12], p.SSRC)
	copy(buf[headerSize:], p.Payload)
	return buf
}

// Decode parses buf into a Packet. The payload slice aliases buf — callers
// that retain the packet past the lifetime of buf must copy it.
//
// The marker bit and payload type are not validated (forward
// compatibility); CC and the extension bit are ignored, since this profile
// never sets them and packets bearing CSRCs are out of scope.
func Decode(buf []byte) (Packet, error) {
	if len(buf) < headerSize {
		return Packet{}, ErrTooShort
	}
	if (buf[0]>>6)&0x3 != 2 {
		return Packet{}, ErrBadVersion
	}
	return Packet{
		Sequence:  binary.BigEndian.Uint16(buf[2:4]),
		Timestamp: binary.BigEndian.Uint32(buf[4:8]),
		SSRC:      binary.BigEndian.Uint32(buf[8:12]),
		Payload:   buf[headerSize:],
	}, nil
}
