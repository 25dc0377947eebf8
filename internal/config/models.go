package config

import "time"

// Registry represents the entire user configuration file.
// It stores known controllers and application preferences.
type Registry struct {
	Version     int             `yaml:"version"`
	Spas        map[string]*Spa `yaml:"spas,omitempty"` // Keyed by host address
	Preferences *Preferences    `yaml:"preferences,omitempty"`
}

// Spa represents user-defined metadata for a single controller.
// It is keyed by the controller's host address in the Registry.
type Spa struct {
	Nickname string    `yaml:"nickname,omitempty"`  // User-friendly name
	Serial   string    `yaml:"serial,omitempty"`    // Serial from the discovery response, if any
	LastSeen time.Time `yaml:"last_seen,omitempty"` // Last discovery/poll time
}

// Preferences represents application-wide user preferences.
type Preferences struct {
	LocalAddr   string `yaml:"local_addr,omitempty"` // Scanning interface address
	PrefixLen   int    `yaml:"prefix_len"`           // Subnet prefix length for scans
	ScanWait    int    `yaml:"scan_wait"`            // Per-host discovery wait in seconds
	PollTimeout int    `yaml:"poll_timeout"`         // Poll deadline in seconds
}

// NewRegistry creates a new Registry with default values.
func NewRegistry() *Registry {
	return &Registry{
		Version: 1,
		Spas:    make(map[string]*Spa),
		Preferences: &Preferences{
			PrefixLen:   24,
			ScanWait:    1,
			PollTimeout: 5,
		},
	}
}

// GetSpa retrieves controller metadata by host address.
// Returns nil if the controller doesn't exist in the registry.
func (r *Registry) GetSpa(host string) *Spa {
	return r.Spas[host]
}

// EnsureSpa ensures a controller entry exists in the registry.
// Returns the entry (existing or newly created).
func (r *Registry) EnsureSpa(host string) *Spa {
	if r.Spas == nil {
		r.Spas = make(map[string]*Spa)
	}

	if spa, exists := r.Spas[host]; exists {
		return spa
	}

	spa := &Spa{}
	r.Spas[host] = spa
	return spa
}

// UpdateSpaLastSeen updates the last seen timestamp for a controller.
func (r *Registry) UpdateSpaLastSeen(host string) {
	spa := r.EnsureSpa(host)
	spa.LastSeen = time.Now()
}
