package protocol

import "testing"

func TestTypeKeyString(t *testing.T) {
	tests := []struct {
		name string
		kind TypeKey
		want string
	}{
		{"live", TypeLive, "Live"},
		{"heartbeat", TypeHeartbeat, "Heartbeat"},
		{"onzen live", TypeOnzenLive, "OnzenLive"},
		{"lpc preferences", TypeLPCPrefs, "LPCPreferences"},
		{"unknown value", TypeKey(0x0BAD), "Unknown(0x0bad)"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.kind.String(); got != tt.want {
				t.Errorf("String() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestTypeKeyIsKnown(t *testing.T) {
	if !TypeLive.IsKnown() {
		t.Error("TypeLive should be known")
	}
	if !TypeLPCError.IsKnown() {
		t.Error("TypeLPCError should be known")
	}
	if TypeKey(1).IsKnown() {
		t.Error("value 1 is not an assigned packet type")
	}
	if TypeKey(0xFFFF).IsKnown() {
		t.Error("value 0xFFFF is not an assigned packet type")
	}
}

func TestParseTypeKey(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    TypeKey
		wantErr bool
	}{
		{"exact", "Live", TypeLive, false},
		{"lowercase", "onzenlive", TypeOnzenLive, false},
		{"uppercase", "CONFIG", TypeConfig, false},
		{"mixed case", "lpcLights", TypeLPCLights, false},
		{"unknown name", "turbo", 0, true},
		{"empty", "", 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseTypeKey(tt.input)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseTypeKey(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("ParseTypeKey(%q) = %v, want %v", tt.input, got, tt.want)
			}
		})
	}
}
