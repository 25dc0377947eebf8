// Package codec decodes frame payloads.
//
// Controller payloads are protobuf-encoded, but the schemas are proprietary
// and ship only inside the vendor application. This package therefore reads
// the protobuf wire format directly (google.golang.org/protobuf/encoding/protowire)
// and exposes payloads as schema-free Messages: ordered fields addressed by
// field number, with varint/fixed/bytes/nested-message values.
//
// The protocol package stays independent of the encoding: it only sees the
// PayloadCodec returned by Wire. Swapping in generated protobuf types later
// means registering a different codec, nothing else.
package codec
