package protocol

import (
	"fmt"
	"strings"
)

// TypeKey identifies the kind of payload a frame carries.
//
// The set of values is fixed by the controller firmware. Values observed on
// the wire that are not listed here decode to an unrecognized TypeKey rather
// than failing; IsKnown reports whether a value is part of the known set.
type TypeKey uint16

// Packet type keys used by the controller.
const (
	TypeLive          TypeKey = 0   // Live controller telemetry
	TypeSettings      TypeKey = 2   // User settings
	TypeConfig        TypeKey = 3   // Product configuration
	TypePeak          TypeKey = 4   // Peak demand data
	TypeClock         TypeKey = 5   // Controller clock
	TypeInfo          TypeKey = 6   // Technical information
	TypeError         TypeKey = 7   // Error report
	TypeFirmware      TypeKey = 8   // Firmware versions
	TypeHeartbeat     TypeKey = 10  // Keep-alive, carries no payload of interest
	TypeFilters       TypeKey = 13  // Filtration schedule
	TypeOnzenLive     TypeKey = 48  // Live Onzen water-treatment telemetry
	TypeOnzenSettings TypeKey = 50  // Onzen settings
	TypeLPCLive       TypeKey = 112 // Load power controller live data
	TypeLPCInfo       TypeKey = 114
	TypeLPCConfig     TypeKey = 115
	TypeLPCPrefs      TypeKey = 116
	TypeLPCLights     TypeKey = 117
	TypeLPCSchedule   TypeKey = 118
	TypeLPCPeak       TypeKey = 119
	TypeLPCError      TypeKey = 121
)

var typeKeyNames = map[TypeKey]string{
	TypeLive:          "Live",
	TypeSettings:      "Settings",
	TypeConfig:        "Config",
	TypePeak:          "Peak",
	TypeClock:         "Clock",
	TypeInfo:          "Info",
	TypeError:         "Error",
	TypeFirmware:      "Firmware",
	TypeHeartbeat:     "Heartbeat",
	TypeFilters:       "Filters",
	TypeOnzenLive:     "OnzenLive",
	TypeOnzenSettings: "OnzenSettings",
	TypeLPCLive:       "LPCLive",
	TypeLPCInfo:       "LPCInfo",
	TypeLPCConfig:     "LPCConfig",
	TypeLPCPrefs:      "LPCPreferences",
	TypeLPCLights:     "LPCLights",
	TypeLPCSchedule:   "LPCSchedule",
	TypeLPCPeak:       "LPCPeakDevices",
	TypeLPCError:      "LPCError",
}

// IsKnown reports whether k is one of the packet types the controller is
// documented to send.
func (k TypeKey) IsKnown() bool {
	_, ok := typeKeyNames[k]
	return ok
}

// String returns a human-readable name for the type key.
func (k TypeKey) String() string {
	if name, ok := typeKeyNames[k]; ok {
		return name
	}
	return fmt.Sprintf("Unknown(0x%04x)", uint16(k))
}

// ParseTypeKey resolves a type key by name, case-insensitively.
func ParseTypeKey(name string) (TypeKey, error) {
	for kind, kindName := range typeKeyNames {
		if strings.EqualFold(name, kindName) {
			return kind, nil
		}
	}
	return 0, fmt.Errorf("unknown packet type %q", name)
}
