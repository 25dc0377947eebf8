package protocol

import (
	"bytes"
	"encoding/binary"
	"testing"
)

func TestBuildFrame(t *testing.T) {
	tests := []struct {
		name    string
		kind    TypeKey
		counter uint32
		payload []byte
		wantErr bool
		verify  func(t *testing.T, frame []byte)
	}{
		{
			name:    "zero payload",
			kind:    TypeLive,
			counter: 1,
			verify: func(t *testing.T, frame []byte) {
				if len(frame) != HeaderSize {
					t.Errorf("frame length = %d, want %d", len(frame), HeaderSize)
				}
				if binary.BigEndian.Uint16(frame[lengthOffset:]) != 0 {
					t.Errorf("length field = %d, want 0", binary.BigEndian.Uint16(frame[lengthOffset:]))
				}
			},
		},
		{
			name:    "payload and counter in header",
			kind:    TypeOnzenLive,
			counter: 0xDEADBEEF,
			payload: []byte{1, 2, 3, 4, 5},
			verify: func(t *testing.T, frame []byte) {
				if !bytes.Equal(frame[:4], Preamble) {
					t.Errorf("preamble = % 02x", frame[:4])
				}
				if got := binary.BigEndian.Uint32(frame[counterOffset:]); got != 0xDEADBEEF {
					t.Errorf("counter field = %#x", got)
				}
				if got := TypeKey(binary.BigEndian.Uint16(frame[typeOffset:])); got != TypeOnzenLive {
					t.Errorf("type field = %v", got)
				}
				if !bytes.Equal(frame[HeaderSize:], []byte{1, 2, 3, 4, 5}) {
					t.Errorf("payload = % 02x", frame[HeaderSize:])
				}
			},
		},
		{
			name:    "oversized payload rejected",
			kind:    TypeLive,
			payload: make([]byte, MaxPayloadSize+1),
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			frame, err := BuildFrame(tt.kind, tt.counter, tt.payload)
			if (err != nil) != tt.wantErr {
				t.Fatalf("BuildFrame() error = %v, wantErr %v", err, tt.wantErr)
			}
			if tt.verify != nil {
				tt.verify(t, frame)
			}
		})
	}
}

func TestBuildFrameRoundTrip(t *testing.T) {
	dec := testDecoder(TypeConfig)

	built := testFrame(t, TypeConfig, 99, []byte("settings blob"))
	frames, err := dec.Decode(built)
	if err != nil {
		t.Fatalf("Decode() error = %v", err)
	}
	if len(frames) != 1 {
		t.Fatalf("got %d frames, want 1", len(frames))
	}
	if frames[0].Kind != TypeConfig || frames[0].Counter != 99 {
		t.Errorf("frame = %v", frames[0])
	}
	if !bytes.Equal(frames[0].Raw, []byte("settings blob")) {
		t.Errorf("payload = %q", frames[0].Raw)
	}
}

func TestInitSequence(t *testing.T) {
	init := InitSequence()

	if len(init) != 2*HeaderSize {
		t.Fatalf("init sequence is %d bytes, want %d", len(init), 2*HeaderSize)
	}

	live := init[:HeaderSize]
	onzen := init[HeaderSize:]

	for i, req := range [][]byte{live, onzen} {
		if !bytes.Equal(req[:4], Preamble) {
			t.Errorf("request %d preamble = % 02x", i, req[:4])
		}
		if got := binary.BigEndian.Uint16(req[lengthOffset:]); got != 0 {
			t.Errorf("request %d declares %d payload bytes, want 0", i, got)
		}
	}

	if got := TypeKey(binary.BigEndian.Uint16(live[typeOffset:])); got != TypeLive {
		t.Errorf("first request type = %v, want %v", got, TypeLive)
	}
	if got := TypeKey(binary.BigEndian.Uint16(onzen[typeOffset:])); got != TypeOnzenLive {
		t.Errorf("second request type = %v, want %v", got, TypeOnzenLive)
	}

	// The request hashes are magic values the controller expects verbatim.
	if !bytes.Equal(live[checksumOffset:checksumOffset+4], []byte{0x11, 0xc2, 0xc9, 0x84}) {
		t.Errorf("live request hash = % 02x", live[checksumOffset:checksumOffset+4])
	}
	if !bytes.Equal(onzen[checksumOffset:checksumOffset+4], []byte{0x35, 0xa9, 0x2c, 0x14}) {
		t.Errorf("onzen request hash = % 02x", onzen[checksumOffset:checksumOffset+4])
	}
}

func TestInitSequenceIsFresh(t *testing.T) {
	a := InitSequence()
	b := InitSequence()

	a[0] = 0x00
	if b[0] != Preamble[0] {
		t.Error("InitSequence() returns shared backing storage")
	}
}

func TestNextCounter(t *testing.T) {
	first := NextCounter()
	second := NextCounter()
	if second != first+1 {
		t.Errorf("counters %d, %d are not sequential", first, second)
	}
}
