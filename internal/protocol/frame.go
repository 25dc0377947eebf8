package protocol

import (
	"bytes"
	"encoding/binary"
	"fmt"
)

// Frame header layout (big-endian, fixed 20 bytes):
//
//	[0-3]    preamble      0xAB 0xAD 0x1D 0x3A
//	[4-7]    checksum      4 raw bytes; request/response hash, not a payload CRC
//	[8-11]   counter       Sequence counter (uint32)
//	[12-15]  reserved      Opaque, ignored
//	[16-17]  type          Packet type key (uint16)
//	[18-19]  length        Payload length in bytes, counted from byte 20
const (
	HeaderSize = 20

	checksumOffset = 4
	counterOffset  = 8
	typeOffset     = 16
	lengthOffset   = 18
)

// Preamble is the fixed marker at the start of every frame. The controller
// never validates an independent checksum over the payload; the preamble is
// framing integrity only.
var Preamble = []byte{0xAB, 0xAD, 0x1D, 0x3A}

// Payload is a decoded frame payload. Concrete types come from the codec
// registered for the frame's type key.
type Payload interface {
	String() string
}

// PayloadCodec turns raw payload bytes into a structured value.
type PayloadCodec interface {
	Decode(data []byte) (Payload, error)
}

// CodecFunc adapts a plain function to the PayloadCodec interface.
type CodecFunc func(data []byte) (Payload, error)

// Decode implements PayloadCodec.
func (f CodecFunc) Decode(data []byte) (Payload, error) {
	return f(data)
}

// Frame is one complete protocol message: a 20-byte header plus payload.
// Frames are immutable once decoded.
type Frame struct {
	Kind     TypeKey
	Counter  uint32
	Checksum [4]byte
	Raw      []byte  // payload bytes as received
	Decoded  Payload // structured payload from the registered codec
}

// String returns a debug representation of the frame.
func (f *Frame) String() string {
	return fmt.Sprintf("Frame{type=%s, counter=%d, checksum=%02x%02x%02x%02x, payload=%d bytes}",
		f.Kind, f.Counter, f.Checksum[0], f.Checksum[1], f.Checksum[2], f.Checksum[3], len(f.Raw))
}

// DecodeError describes a framing failure: a buffer that cannot be split into
// frames at the reported offset. It is fatal for the decode call that raised
// it, but callers are expected to treat it as a bad read cycle rather than a
// dead connection.
type DecodeError struct {
	Offset int
	Reason string
}

// Error implements the error interface.
func (e *DecodeError) Error() string {
	return fmt.Sprintf("frame decode error at offset %d: %s", e.Offset, e.Reason)
}

// Decoder splits a byte stream into frames and decodes payloads through the
// codecs registered per type key.
//
// Frames whose type has no registered codec are consumed but dropped, as are
// heartbeats. Neither is an error: callers key their desired-type collections
// on frames that actually surface, and a frame nobody can interpret never
// surfaces.
type Decoder struct {
	codecs map[TypeKey]PayloadCodec
}

// NewDecoder creates a Decoder with no codecs registered.
func NewDecoder() *Decoder {
	return &Decoder{codecs: make(map[TypeKey]PayloadCodec)}
}

// Register installs the payload codec for a type key, replacing any previous
// registration. Not safe for concurrent use with Decode.
func (d *Decoder) Register(kind TypeKey, codec PayloadCodec) {
	d.codecs[kind] = codec
}

// Decode processes data as a concatenation of frames and returns every frame
// produced, in arrival order.
//
// On a framing failure the frames decoded before the failure are returned
// together with a *DecodeError; the remainder of the buffer is undecodable.
// An empty buffer yields no frames and no error.
func (d *Decoder) Decode(data []byte) ([]*Frame, error) {
	var frames []*Frame

	offset := 0
	for offset < len(data) {
		frame, n, err := d.decodeOne(data[offset:], offset)
		if err != nil {
			return frames, err
		}
		if frame != nil {
			frames = append(frames, frame)
		}
		offset += n
	}

	return frames, nil
}

// DecodeOne decodes the first frame in data and returns the undecoded
// remainder. The frame is nil for heartbeats and for types without a
// registered codec; the remainder is still advanced past them.
func (d *Decoder) DecodeOne(data []byte) (*Frame, []byte, error) {
	frame, n, err := d.decodeOne(data, 0)
	if err != nil {
		return nil, nil, err
	}
	return frame, data[n:], nil
}

// decodeOne does the work of DecodeOne; base is the offset of data within the
// original buffer, used only for error reporting.
func (d *Decoder) decodeOne(data []byte, base int) (*Frame, int, error) {
	if len(data) < HeaderSize {
		return nil, 0, &DecodeError{
			Offset: base,
			Reason: fmt.Sprintf("short buffer: expecting at least %d bytes, got %d", HeaderSize, len(data)),
		}
	}

	// The preamble is validated for every frame, heartbeats included.
	if !bytes.Equal(data[:4], Preamble) {
		return nil, 0, &DecodeError{
			Offset: base,
			Reason: fmt.Sprintf("bad preamble: % 02x", data[:4]),
		}
	}

	kind := TypeKey(binary.BigEndian.Uint16(data[typeOffset:]))
	length := int(binary.BigEndian.Uint16(data[lengthOffset:]))

	if HeaderSize+length > len(data) {
		return nil, 0, &DecodeError{
			Offset: base,
			Reason: fmt.Sprintf("payload overruns buffer: declared %d bytes, %d available", length, len(data)-HeaderSize),
		}
	}

	consumed := HeaderSize + length

	if kind == TypeHeartbeat {
		return nil, consumed, nil
	}

	codec, ok := d.codecs[kind]
	if !ok {
		return nil, consumed, nil
	}

	// Copy the payload out of the caller's buffer: frames outlive the read
	// cycle that produced them, and callers reuse read buffers.
	payload := append([]byte(nil), data[HeaderSize:consumed]...)

	decoded, err := codec.Decode(payload)
	if err != nil {
		return nil, 0, &DecodeError{
			Offset: base + HeaderSize,
			Reason: fmt.Sprintf("%s payload: %v", kind, err),
		}
	}

	frame := &Frame{
		Kind:    kind,
		Counter: binary.BigEndian.Uint32(data[counterOffset:]),
		Raw:     payload,
		Decoded: decoded,
	}
	copy(frame.Checksum[:], data[checksumOffset:checksumOffset+4])

	return frame, consumed, nil
}
