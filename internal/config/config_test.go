package config

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func setupTestConfig(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	cfgDir := filepath.Join(dir, ".config", "filexfer")
	if err := os.MkdirAll(cfgDir, 0700); err != nil {
		t.Fatal(err)
	}
	t.Setenv("HOME", dir)
	return filepath.Join(cfgDir, "config.json")
}

func intPtr(v int) *int { return &v }

func TestPath(t *testing.T) {
	home, _ := os.UserHomeDir()
	want := filepath.Join(home, ".config", "filexfer", "config.json")
	if got := Path(); got != want {
		t.Errorf("Path() = %q, want %q", got, want)
	}
}

func TestDefault(t *testing.T) {
	cfg := Default()
	if cfg.Host != "localhost" {
		t.Errorf("Host = %q, want localhost", cfg.Host)
	}
	if cfg.Port != 12345 {
		t.Errorf("Port = %d, want 12345", cfg.Port)
	}
	if cfg.RefreshDelay() != DefaultRefreshDelay {
		t.Errorf("RefreshDelay = %v, want %v", cfg.RefreshDelay(), DefaultRefreshDelay)
	}
	if cfg.RequestTimeout() != 0 {
		t.Errorf("RequestTimeout = %v, want 0", cfg.RequestTimeout())
	}
}

func TestLoadNonExistent(t *testing.T) {
	setupTestConfig(t)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Host != DefaultHost || cfg.Port != DefaultPort {
		t.Errorf("Load() = %+v, want defaults", cfg)
	}
}

func TestSaveAndLoad(t *testing.T) {
	setupTestConfig(t)

	cfg := &Config{Host: "files.lan", Port: 8080, RefreshDelayMS: intPtr(50), RequestTimeoutSeconds: 7}
	if err := Save(cfg); err != nil {
		t.Fatalf("Save() error = %v", err)
	}

	loaded, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if loaded.Host != "files.lan" {
		t.Errorf("Host = %q, want %q", loaded.Host, "files.lan")
	}
	if loaded.Port != 8080 {
		t.Errorf("Port = %d, want 8080", loaded.Port)
	}
	if loaded.RefreshDelay() != 50*time.Millisecond {
		t.Errorf("RefreshDelay = %v, want 50ms", loaded.RefreshDelay())
	}
	if loaded.RequestTimeout() != 7*time.Second {
		t.Errorf("RequestTimeout = %v, want 7s", loaded.RequestTimeout())
	}
}

func TestLoadFillsMissingFields(t *testing.T) {
	cfgFile := setupTestConfig(t)
	if err := os.WriteFile(cfgFile, []byte(`{"port": 9000}`), 0600); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load()
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Host != DefaultHost {
		t.Errorf("Host = %q, want default", cfg.Host)
	}
	if cfg.Port != 9000 {
		t.Errorf("Port = %d, want 9000", cfg.Port)
	}
}

func TestLoadInvalidJSON(t *testing.T) {
	cfgFile := setupTestConfig(t)
	if err := os.WriteFile(cfgFile, []byte("{invalid json"), 0600); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() should not return error for invalid JSON, got %v", err)
	}
	if cfg == nil || cfg.Port != DefaultPort {
		t.Errorf("Load() = %+v, want defaults for invalid JSON", cfg)
	}
}

func TestLoadFromUnreadable(t *testing.T) {
	dir := t.TempDir()
	// A directory cannot be read as a file.
	if _, err := LoadFrom(dir); err == nil {
		t.Error("LoadFrom(dir) should fail")
	}
}

func TestSaveCreatesDirectory(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("HOME", dir)

	if err := Save(Default()); err != nil {
		t.Fatalf("Save() error = %v", err)
	}

	p := filepath.Join(dir, ".config", "filexfer", "config.json")
	if _, err := os.Stat(p); os.IsNotExist(err) {
		t.Errorf("expected config file to exist at %s", p)
	}
}

func TestSaveFilePermissions(t *testing.T) {
	setupTestConfig(t)

	if err := Save(Default()); err != nil {
		t.Fatal(err)
	}
	info, err := os.Stat(Path())
	if err != nil {
		t.Fatal(err)
	}
	if perm := info.Mode().Perm(); perm != 0600 {
		t.Errorf("config file perm = %o, want 0600", perm)
	}
}

func TestSaveOmitsUnsetOptionals(t *testing.T) {
	setupTestConfig(t)

	if err := Save(Default()); err != nil {
		t.Fatal(err)
	}
	data, err := os.ReadFile(Path())
	if err != nil {
		t.Fatal(err)
	}
	var raw map[string]any
	if err := json.Unmarshal(data, &raw); err != nil {
		t.Fatalf("saved file is not valid JSON: %v", err)
	}
	s := string(data)
	if strings.Contains(s, "refresh_delay_ms") || strings.Contains(s, "user_agent") {
		t.Errorf("unset optional fields should be omitted, got %s", s)
	}
}

func TestRefreshDelayZeroDisablesDebounce(t *testing.T) {
	cfg := &Config{RefreshDelayMS: intPtr(0)}
	if cfg.RefreshDelay() != 0 {
		t.Errorf("RefreshDelay = %v, want 0", cfg.RefreshDelay())
	}
	cfg.RefreshDelayMS = intPtr(-5)
	if cfg.RefreshDelay() != 0 {
		t.Errorf("negative RefreshDelay = %v, want 0", cfg.RefreshDelay())
	}
}

func TestApplyEnv(t *testing.T) {
	env := map[string]string{EnvHost: "10.1.1.1", EnvPort: "9999"}
	cfg := Default()
	if err := cfg.ApplyEnv(func(k string) string { return env[k] }); err != nil {
		t.Fatal(err)
	}
	if cfg.Host != "10.1.1.1" || cfg.Port != 9999 {
		t.Errorf("ApplyEnv = %+v", cfg)
	}
}

func TestApplyEnvEmptyKeepsValues(t *testing.T) {
	cfg := &Config{Host: "h", Port: 1}
	if err := cfg.ApplyEnv(func(string) string { return "" }); err != nil {
		t.Fatal(err)
	}
	if cfg.Host != "h" || cfg.Port != 1 {
		t.Errorf("ApplyEnv with empty env changed config: %+v", cfg)
	}
}

func TestApplyEnvBadPort(t *testing.T) {
	cfg := Default()
	err := cfg.ApplyEnv(func(k string) string {
		if k == EnvPort {
			return "http"
		}
		return ""
	})
	if err == nil {
		t.Fatal("expected error for non-numeric port")
	}
	if cfg.Port != DefaultPort {
		t.Errorf("Port changed to %d on error", cfg.Port)
	}
}
