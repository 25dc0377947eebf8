package protocol

import (
	"encoding/binary"
	"fmt"
	"sync/atomic"
)

// MaxPayloadSize is the largest payload a frame can declare; the length field
// is 16 bits.
const MaxPayloadSize = 0xFFFF

// Frame counter for locally built frames (thread-safe).
var frameCounter uint32

// Request frames captured from the vendor application. Each is a complete
// zero-payload frame; the checksum bytes are a per-request hash the
// controller accepts verbatim and never documents.
var (
	requestLive = []byte{
		0xab, 0xad, 0x1d, 0x3a, 0x11, 0xc2, 0xc9, 0x84, 0x00, 0x00,
		0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00,
	}
	requestOnzenLive = []byte{
		0xab, 0xad, 0x1d, 0x3a, 0x35, 0xa9, 0x2c, 0x14, 0x00, 0x00,
		0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x30, 0x00, 0x00,
	}
)

// InitSequence returns the byte sequence transmitted on every new control
// connection: a live-telemetry request followed by an Onzen-telemetry
// request. No acknowledgement is expected.
func InitSequence() []byte {
	init := make([]byte, 0, len(requestLive)+len(requestOnzenLive))
	init = append(init, requestLive...)
	return append(init, requestOnzenLive...)
}

// BuildFrame constructs a complete wire frame for the given type key.
//
// The checksum field is filled with the preamble bytes; the controller only
// re-asserts framing there and does not validate payload integrity, so any
// peer (including our simulator) is free to do the same.
func BuildFrame(kind TypeKey, counter uint32, payload []byte) ([]byte, error) {
	if len(payload) > MaxPayloadSize {
		return nil, fmt.Errorf("payload too large: %d bytes (max %d)", len(payload), MaxPayloadSize)
	}

	frame := make([]byte, HeaderSize+len(payload))

	copy(frame[:4], Preamble)
	copy(frame[checksumOffset:], Preamble)
	binary.BigEndian.PutUint32(frame[counterOffset:], counter)
	binary.BigEndian.PutUint16(frame[typeOffset:], uint16(kind))
	binary.BigEndian.PutUint16(frame[lengthOffset:], uint16(len(payload)))
	copy(frame[HeaderSize:], payload)

	return frame, nil
}

// NextCounter returns the next sequence counter for a locally built frame.
// Counters correlate requests with responses; they are not guaranteed
// gap-free on the wire.
func NextCounter() uint32 {
	return atomic.AddUint32(&frameCounter, 1)
}
