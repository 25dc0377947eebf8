package codec

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"google.golang.org/protobuf/encoding/protowire"

	"github.com/mjhall/arcticspa/internal/protocol"
)

// FieldKind identifies how a field's value was encoded on the wire.
type FieldKind int

const (
	KindVarint FieldKind = iota
	KindFixed32
	KindFixed64
	KindBytes
	KindMessage
)

// Field is one decoded field of a message. Uint holds varint and fixed-width
// values; Bytes holds length-delimited values, with Msg set additionally when
// the bytes parse as a nested message.
type Field struct {
	Num   protowire.Number
	Kind  FieldKind
	Uint  uint64
	Bytes []byte
	Msg   *Message
}

// Message is a schema-free view of a protobuf-encoded payload: the ordered
// field list as it appeared on the wire. The controller's payload schemas are
// proprietary, so fields are addressed by number rather than by name.
type Message struct {
	Fields []Field
}

// Parse decodes data as protobuf wire format.
func Parse(data []byte) (*Message, error) {
	msg := &Message{}

	for len(data) > 0 {
		num, typ, n := protowire.ConsumeTag(data)
		if n < 0 {
			return nil, fmt.Errorf("malformed tag: %w", protowire.ParseError(n))
		}
		data = data[n:]

		field := Field{Num: num}

		switch typ {
		case protowire.VarintType:
			v, n := protowire.ConsumeVarint(data)
			if n < 0 {
				return nil, fmt.Errorf("field %d: malformed varint: %w", num, protowire.ParseError(n))
			}
			field.Kind = KindVarint
			field.Uint = v
			data = data[n:]

		case protowire.Fixed32Type:
			v, n := protowire.ConsumeFixed32(data)
			if n < 0 {
				return nil, fmt.Errorf("field %d: malformed fixed32: %w", num, protowire.ParseError(n))
			}
			field.Kind = KindFixed32
			field.Uint = uint64(v)
			data = data[n:]

		case protowire.Fixed64Type:
			v, n := protowire.ConsumeFixed64(data)
			if n < 0 {
				return nil, fmt.Errorf("field %d: malformed fixed64: %w", num, protowire.ParseError(n))
			}
			field.Kind = KindFixed64
			field.Uint = v
			data = data[n:]

		case protowire.BytesType:
			v, n := protowire.ConsumeBytes(data)
			if n < 0 {
				return nil, fmt.Errorf("field %d: malformed bytes: %w", num, protowire.ParseError(n))
			}
			field.Kind = KindBytes
			field.Bytes = v
			// Nested messages are indistinguishable from bytes without the
			// schema; keep both readings when the bytes parse cleanly.
			if sub, err := Parse(v); err == nil && len(sub.Fields) > 0 {
				field.Kind = KindMessage
				field.Msg = sub
			}
			data = data[n:]

		default:
			return nil, fmt.Errorf("field %d: unsupported wire type %d", num, typ)
		}

		msg.Fields = append(msg.Fields, field)
	}

	return msg, nil
}

// Uint returns the unsigned value of the first occurrence of field num.
func (m *Message) Uint(num protowire.Number) (uint64, bool) {
	for _, f := range m.Fields {
		if f.Num == num && f.Kind != KindBytes && f.Kind != KindMessage {
			return f.Uint, true
		}
	}
	return 0, false
}

// Bool returns the boolean value of the first occurrence of field num.
func (m *Message) Bool(num protowire.Number) (bool, bool) {
	v, ok := m.Uint(num)
	return v != 0, ok
}

// Text returns the first occurrence of field num as a string, if it is a
// length-delimited field holding valid UTF-8.
func (m *Message) Text(num protowire.Number) (string, bool) {
	for _, f := range m.Fields {
		if f.Num == num && (f.Kind == KindBytes || f.Kind == KindMessage) {
			if utf8.Valid(f.Bytes) {
				return string(f.Bytes), true
			}
			return "", false
		}
	}
	return "", false
}

// Sub returns the first occurrence of field num as a nested message.
func (m *Message) Sub(num protowire.Number) (*Message, bool) {
	for _, f := range m.Fields {
		if f.Num == num && f.Msg != nil {
			return f.Msg, true
		}
	}
	return nil, false
}

// String renders the message as a compact field list, fields in wire order.
func (m *Message) String() string {
	var b strings.Builder
	b.WriteByte('{')
	for i, f := range m.Fields {
		if i > 0 {
			b.WriteString(", ")
		}
		fmt.Fprintf(&b, "%d: ", f.Num)
		switch f.Kind {
		case KindMessage:
			b.WriteString(f.Msg.String())
		case KindBytes:
			if utf8.Valid(f.Bytes) && isPrintable(f.Bytes) {
				fmt.Fprintf(&b, "%q", f.Bytes)
			} else {
				fmt.Fprintf(&b, "0x%x", f.Bytes)
			}
		default:
			fmt.Fprintf(&b, "%d", f.Uint)
		}
	}
	b.WriteByte('}')
	return b.String()
}

func isPrintable(data []byte) bool {
	for _, r := range string(data) {
		if r < 32 || r == utf8.RuneError {
			return false
		}
	}
	return true
}

// Wire returns a payload codec that decodes protobuf wire format into a
// schema-free Message.
func Wire() protocol.PayloadCodec {
	return protocol.CodecFunc(func(data []byte) (protocol.Payload, error) {
		return Parse(data)
	})
}

// RegisterDefaults installs the wire codec for every packet type the vendor
// application is known to decode.
func RegisterDefaults(dec *protocol.Decoder) {
	for _, kind := range []protocol.TypeKey{
		protocol.TypeLive,
		protocol.TypeConfig,
		protocol.TypeInfo,
		protocol.TypeOnzenLive,
	} {
		dec.Register(kind, Wire())
	}
}
