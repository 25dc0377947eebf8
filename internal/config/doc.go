// Package config manages the user configuration file.
//
// The registry lives at the platform config dir (e.g.
// ~/.config/arcticspa/config.yaml) and stores two things: controllers seen
// before (keyed by host address, with nickname, serial, and last-seen time)
// and scan/poll preferences the CLI uses as flag defaults. Writes are atomic
// via a temp-file rename.
package config
