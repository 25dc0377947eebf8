// Package protocol implements the Arctic Spa controller binary protocol.
//
// This package handles splitting the TCP byte stream into frames, validating
// framing, and dispatching payloads to per-type codecs. It has no I/O of its
// own; the client package feeds it raw socket reads.
//
// # Frame Format
//
// Every message is a 20-byte big-endian header followed by a variable-length
// payload:
//
//	[0-3]    Preamble: 0xAB 0xAD 0x1D 0x3A
//	[4-7]    Checksum: 4 bytes, a request hash the protocol never validates
//	[8-11]   Sequence counter (uint32)
//	[12-15]  Reserved
//	[16-17]  Packet type key (uint16)
//	[18-19]  Payload length (uint16), counted from byte 20
//
// Frames are concatenated back to back with no separator other than the
// length fields.
//
// # Packet Types
//
// The controller multiplexes several packet kinds over one connection: live
// telemetry, settings, product configuration, technical info, the Onzen
// water-treatment subsystem, load power controller data, and a periodic
// heartbeat. Heartbeats are consumed silently. Type keys outside the known
// set never fail decoding; they are skipped the same way types without a
// registered codec are.
//
// # Usage Example
//
//	dec := protocol.NewDecoder()
//	dec.Register(protocol.TypeLive, codec.Wire())
//
//	frames, err := dec.Decode(buf)
//	if err != nil {
//	    var derr *protocol.DecodeError
//	    if errors.As(err, &derr) {
//	        // bad read cycle; frames holds everything decoded before it
//	    }
//	}
//
// # Error Handling
//
// The package distinguishes:
//   - Framing errors (*DecodeError): short buffer, bad preamble, declared
//     payload running past the buffer. Fatal for that decode call.
//   - Unknown or unregistered packet types: not errors, silently skipped.
//
// # Thread Safety
//
// Decoding is stateless and safe for concurrent use as long as codecs are
// registered before the Decoder is shared. Frame counter generation uses
// atomic operations.
package protocol
