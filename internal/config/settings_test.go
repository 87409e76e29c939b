package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func writeConfig(t *testing.T, home, content string) {
	t.Helper()
	dataDir := filepath.Join(home, ".leadboard")
	if err := os.MkdirAll(dataDir, 0o700); err != nil {
		t.Fatalf("MkdirAll: %v", err)
	}
	if err := os.WriteFile(filepath.Join(dataDir, "config.toml"), []byte(content), 0o600); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
}

func TestLoadDefaults(t *testing.T) {
	t.Setenv("HOME", filepath.Join(t.TempDir(), "home"))
	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.ServerAddress() != "127.0.0.1:5000" {
		t.Fatalf("unexpected server address: %q", cfg.ServerAddress())
	}
	if cfg.ServerBaseURL() != "http://127.0.0.1:5000" {
		t.Fatalf("unexpected base url: %q", cfg.ServerBaseURL())
	}
	if cfg.ChannelTransport() != "socketio" || cfg.ReconnectDelay() != 3*time.Second {
		t.Fatalf("unexpected channel defaults: %q %v", cfg.ChannelTransport(), cfg.ReconnectDelay())
	}
	if cfg.RequestTimeout() != 30*time.Second || cfg.LogLevel() != "info" {
		t.Fatalf("unexpected defaults: %v %q", cfg.RequestTimeout(), cfg.LogLevel())
	}
	if !cfg.OSC52Enabled() || cfg.MarkdownStyle() != "dark" {
		t.Fatalf("unexpected ui defaults")
	}
}

func TestLoadFromTOML(t *testing.T) {
	home := filepath.Join(t.TempDir(), "home")
	t.Setenv("HOME", home)
	writeConfig(t, home, `
[server]
address = "https://leads.example.com/"
timeout = "5s"

[channel]
transport = "WebSocket"
reconnect_delay = "off"

[session]
id = " abc "

[download]
dir = "exports"

[ui]
markdown_style = "neon"
osc52 = false
`)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.ServerAddress() != "leads.example.com" || cfg.ServerBaseURL() != "https://leads.example.com" {
		t.Fatalf("unexpected server: %q %q", cfg.ServerAddress(), cfg.ServerBaseURL())
	}
	if cfg.RequestTimeout() != 5*time.Second {
		t.Fatalf("unexpected timeout: %v", cfg.RequestTimeout())
	}
	if cfg.ChannelTransport() != "websocket" || cfg.ReconnectDelay() != 0 {
		t.Fatalf("unexpected channel: %q %v", cfg.ChannelTransport(), cfg.ReconnectDelay())
	}
	if cfg.SessionID() != "abc" {
		t.Fatalf("unexpected session id: %q", cfg.SessionID())
	}
	dir, err := cfg.DownloadDir()
	if err != nil || dir != filepath.Join(home, ".leadboard", "exports") {
		t.Fatalf("unexpected download dir: %q (%v)", dir, err)
	}
	if cfg.MarkdownStyle() != "dark" || cfg.OSC52Enabled() {
		t.Fatalf("unexpected ui settings")
	}
}

func TestLoadRejectsMalformedTOML(t *testing.T) {
	home := filepath.Join(t.TempDir(), "home")
	t.Setenv("HOME", home)
	writeConfig(t, home, "[server\naddress = ")
	if _, err := Load(); err == nil {
		t.Fatalf("expected parse error")
	}
}

func TestResolveSessionID(t *testing.T) {
	home := filepath.Join(t.TempDir(), "home")
	t.Setenv("HOME", home)

	if id, err := ResolveSessionID(" flag-id ", DefaultConfig()); err != nil || id != "flag-id" {
		t.Fatalf("explicit id: %q %v", id, err)
	}
	cfg := DefaultConfig()
	cfg.Session.ID = "cfg-id"
	if id, _ := ResolveSessionID("", cfg); id != "cfg-id" {
		t.Fatalf("config id: %q", id)
	}

	first, err := ResolveSessionID("", DefaultConfig())
	if err != nil || first == "" {
		t.Fatalf("generated id: %q %v", first, err)
	}
	second, err := ResolveSessionID("", DefaultConfig())
	if err != nil || second != first {
		t.Fatalf("expected the generated id to be kept, got %q then %q", first, second)
	}
}
