package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

// useTempConfigDir points every config-path lookup at a per-test directory.
func useTempConfigDir(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", dir)
	t.Setenv("HOME", dir)
	t.Setenv("LOCALAPPDATA", dir)
	return dir
}

func TestGetConfigDir(t *testing.T) {
	useTempConfigDir(t)

	dir, err := GetConfigDir()
	if err != nil {
		t.Fatalf("GetConfigDir() error = %v", err)
	}
	if filepath.Base(dir) != appName {
		t.Errorf("GetConfigDir() = %s, should end in %q", dir, appName)
	}
}

func TestGetConfigPath(t *testing.T) {
	useTempConfigDir(t)

	path, err := GetConfigPath()
	if err != nil {
		t.Fatalf("GetConfigPath() error = %v", err)
	}
	if filepath.Base(path) != configFile {
		t.Errorf("GetConfigPath() = %s, should end in %q", path, configFile)
	}
}

func TestNewRegistryDefaults(t *testing.T) {
	r := NewRegistry()

	if r.Version != 1 {
		t.Errorf("Version = %d, want 1", r.Version)
	}
	if r.Spas == nil || len(r.Spas) != 0 {
		t.Errorf("Spas = %v, want empty map", r.Spas)
	}
	p := r.Preferences
	if p == nil {
		t.Fatal("Preferences is nil")
	}
	if p.PrefixLen != 24 || p.ScanWait != 1 || p.PollTimeout != 5 {
		t.Errorf("Preferences = %+v, want defaults 24/1/5", p)
	}
}

func TestEnsureSpa(t *testing.T) {
	r := NewRegistry()

	spa := r.EnsureSpa("192.168.1.42")
	if spa == nil {
		t.Fatal("EnsureSpa() returned nil")
	}
	spa.Nickname = "backyard"

	again := r.EnsureSpa("192.168.1.42")
	if again != spa {
		t.Error("EnsureSpa() created a second entry for the same host")
	}
	if r.GetSpa("192.168.1.42").Nickname != "backyard" {
		t.Error("entry lost its nickname")
	}
	if r.GetSpa("192.168.1.99") != nil {
		t.Error("GetSpa() invented an entry")
	}
}

func TestUpdateSpaLastSeen(t *testing.T) {
	r := NewRegistry()

	before := time.Now()
	r.UpdateSpaLastSeen("192.168.1.42")

	spa := r.GetSpa("192.168.1.42")
	if spa == nil {
		t.Fatal("UpdateSpaLastSeen() did not create the entry")
	}
	if spa.LastSeen.Before(before) {
		t.Errorf("LastSeen = %v, before the update at %v", spa.LastSeen, before)
	}
}

func TestSaveAndReload(t *testing.T) {
	useTempConfigDir(t)

	r, err := ReloadRegistry()
	if err != nil {
		t.Fatalf("ReloadRegistry() error = %v", err)
	}

	spa := r.EnsureSpa("192.168.1.42")
	spa.Nickname = "backyard"
	spa.Serial = "100123"
	r.UpdateSpaLastSeen("192.168.1.42")
	r.Preferences.LocalAddr = "192.168.1.10"

	if err := r.Save(); err != nil {
		t.Fatalf("Save() error = %v", err)
	}

	loaded, err := ReloadRegistry()
	if err != nil {
		t.Fatalf("ReloadRegistry() error = %v", err)
	}

	got := loaded.GetSpa("192.168.1.42")
	if got == nil {
		t.Fatal("saved controller missing after reload")
	}
	if got.Nickname != "backyard" || got.Serial != "100123" {
		t.Errorf("spa = %+v", got)
	}
	if got.LastSeen.IsZero() {
		t.Error("LastSeen not persisted")
	}
	if loaded.Preferences.LocalAddr != "192.168.1.10" {
		t.Errorf("LocalAddr = %q", loaded.Preferences.LocalAddr)
	}
}

func TestSavedFileHasHeader(t *testing.T) {
	useTempConfigDir(t)

	r, err := ReloadRegistry()
	if err != nil {
		t.Fatalf("ReloadRegistry() error = %v", err)
	}
	if err := r.Save(); err != nil {
		t.Fatalf("Save() error = %v", err)
	}

	path, err := GetConfigPath()
	if err != nil {
		t.Fatal(err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("failed to read saved config: %v", err)
	}
	if !strings.HasPrefix(string(data), "# Arcticspa Configuration File") {
		t.Errorf("saved file missing header comment:\n%s", data)
	}
}

func TestLoadRejectsUnsupportedVersion(t *testing.T) {
	useTempConfigDir(t)

	dir, err := GetConfigDir()
	if err != nil {
		t.Fatal(err)
	}
	if err := os.MkdirAll(dir, 0700); err != nil {
		t.Fatal(err)
	}
	path := filepath.Join(dir, configFile)
	if err := os.WriteFile(path, []byte("version: 9\n"), 0600); err != nil {
		t.Fatal(err)
	}

	if _, err := ReloadRegistry(); err == nil {
		t.Error("ReloadRegistry() should reject version 9")
	}
}

func TestLoadMissingFileGivesDefaults(t *testing.T) {
	useTempConfigDir(t)

	r, err := ReloadRegistry()
	if err != nil {
		t.Fatalf("ReloadRegistry() error = %v", err)
	}
	if r.Version != 1 || len(r.Spas) != 0 {
		t.Errorf("registry = %+v, want fresh defaults", r)
	}
}
