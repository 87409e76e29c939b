package config

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"time"

	toml "github.com/pelletier/go-toml/v2"
)

const (
	defaultServerAddress  = "127.0.0.1:5000"
	defaultRequestTimeout = 30 * time.Second
	defaultTransport      = "socketio"
	defaultReconnectDelay = 3 * time.Second
	defaultMarkdownStyle  = "dark"
	defaultToastDuration  = 3 * time.Second
)

type Config struct {
	Server   ServerConfig   `toml:"server"`
	Channel  ChannelConfig  `toml:"channel"`
	Session  SessionConfig  `toml:"session"`
	Logging  LoggingConfig  `toml:"logging"`
	Download DownloadConfig `toml:"download"`
	UI       UIConfig       `toml:"ui"`
}

type ServerConfig struct {
	Address string `toml:"address"`
	Timeout string `toml:"timeout"`
}

type ChannelConfig struct {
	Transport      string `toml:"transport"`
	Path           string `toml:"path"`
	ReconnectDelay string `toml:"reconnect_delay"`
}

type SessionConfig struct {
	ID string `toml:"id"`
}

type LoggingConfig struct {
	Level string `toml:"level"`
}

type DownloadConfig struct {
	Dir string `toml:"dir"`
}

type UIConfig struct {
	MarkdownStyle string `toml:"markdown_style"`
	ToastDuration string `toml:"toast_duration"`
	OSC52         *bool  `toml:"osc52"`
}

func DefaultConfig() Config {
	return Config{
		Server: ServerConfig{
			Address: defaultServerAddress,
			Timeout: defaultRequestTimeout.String(),
		},
		Channel: ChannelConfig{
			Transport:      defaultTransport,
			ReconnectDelay: defaultReconnectDelay.String(),
		},
		Logging: LoggingConfig{
			Level: "info",
		},
		UI: UIConfig{
			MarkdownStyle: defaultMarkdownStyle,
			ToastDuration: defaultToastDuration.String(),
		},
	}
}

func Load() (Config, error) {
	path, err := ConfigPath()
	if err != nil {
		return Config{}, err
	}
	return LoadFromPath(path)
}

// LoadFromPath reads path over the defaults. A missing or empty file yields
// the defaults.
func LoadFromPath(path string) (Config, error) {
	cfg := DefaultConfig()
	if err := readTOML(path, &cfg); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c Config) ServerAddress() string {
	addr := strings.TrimSpace(c.Server.Address)
	if addr == "" {
		return defaultServerAddress
	}
	addr = strings.TrimPrefix(addr, "http://")
	addr = strings.TrimPrefix(addr, "https://")
	addr = strings.TrimRight(addr, "/")
	if addr == "" {
		return defaultServerAddress
	}
	return addr
}

// ServerBaseURL keeps an explicit https scheme and defaults to http.
func (c Config) ServerBaseURL() string {
	raw := strings.TrimSpace(c.Server.Address)
	if strings.HasPrefix(raw, "https://") {
		return "https://" + c.ServerAddress()
	}
	return "http://" + c.ServerAddress()
}

func (c Config) RequestTimeout() time.Duration {
	return parseDuration(c.Server.Timeout, defaultRequestTimeout)
}

func (c Config) ChannelTransport() string {
	transport := strings.ToLower(strings.TrimSpace(c.Channel.Transport))
	if transport == "" {
		return defaultTransport
	}
	return transport
}

func (c Config) ChannelPath() string {
	return strings.TrimSpace(c.Channel.Path)
}

// ReconnectDelay is zero when reconnection is disabled with "0" or "off".
func (c Config) ReconnectDelay() time.Duration {
	raw := strings.ToLower(strings.TrimSpace(c.Channel.ReconnectDelay))
	if raw == "0" || raw == "off" {
		return 0
	}
	return parseDuration(raw, defaultReconnectDelay)
}

func (c Config) SessionID() string {
	return strings.TrimSpace(c.Session.ID)
}

func (c Config) LogLevel() string {
	level := strings.TrimSpace(c.Logging.Level)
	if level == "" {
		return "info"
	}
	return level
}

// DownloadDir resolves the directory downloads are saved into. It defaults
// to the working directory.
func (c Config) DownloadDir() (string, error) {
	dir := strings.TrimSpace(c.Download.Dir)
	if dir == "" {
		return os.Getwd()
	}
	return resolveConfigPath(dir)
}

func (c Config) MarkdownStyle() string {
	style := strings.ToLower(strings.TrimSpace(c.UI.MarkdownStyle))
	switch style {
	case "dark", "light", "notty", "ascii", "dracula", "pink", "tokyo-night":
		return style
	default:
		return defaultMarkdownStyle
	}
}

func (c Config) ToastDuration() time.Duration {
	return parseDuration(c.UI.ToastDuration, defaultToastDuration)
}

func (c Config) OSC52Enabled() bool {
	if c.UI.OSC52 == nil {
		return true
	}
	return *c.UI.OSC52
}

func parseDuration(raw string, fallback time.Duration) time.Duration {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return fallback
	}
	d, err := time.ParseDuration(raw)
	if err != nil || d <= 0 {
		return fallback
	}
	return d
}

func readTOML(path string, out any) error {
	path = strings.TrimSpace(path)
	if path == "" {
		return errors.New("path is required")
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return err
	}
	if len(strings.TrimSpace(string(data))) == 0 {
		return nil
	}
	return toml.Unmarshal(data, out)
}

func resolveConfigPath(path string) (string, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		return "", errors.New("path is required")
	}
	if strings.HasPrefix(path, "~/") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", err
		}
		return filepath.Join(home, path[2:]), nil
	}
	if filepath.IsAbs(path) {
		return path, nil
	}
	dataDir, err := DataDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dataDir, path), nil
}
