package main

import (
	"flag"
	"io"

	"leadboard/internal/config"
)

type ConfigCommand struct {
	stdout io.Writer
	stderr io.Writer
}

type configOutput struct {
	ConfigPath string                `json:"config_path" toml:"config_path" yaml:"config_path"`
	Server     effectiveServerConfig `json:"server" toml:"server" yaml:"server"`
	Channel    effectiveChannel      `json:"channel" toml:"channel" yaml:"channel"`
	Logging    effectiveLogging      `json:"logging" toml:"logging" yaml:"logging"`
	Download   effectiveDownload     `json:"download" toml:"download" yaml:"download"`
	UI         effectiveUI           `json:"ui" toml:"ui" yaml:"ui"`
}

type effectiveServerConfig struct {
	Address string `json:"address" toml:"address" yaml:"address"`
	BaseURL string `json:"base_url" toml:"base_url" yaml:"base_url"`
	Timeout string `json:"timeout" toml:"timeout" yaml:"timeout"`
}

type effectiveChannel struct {
	Transport      string `json:"transport" toml:"transport" yaml:"transport"`
	Path           string `json:"path,omitempty" toml:"path,omitempty" yaml:"path,omitempty"`
	ReconnectDelay string `json:"reconnect_delay" toml:"reconnect_delay" yaml:"reconnect_delay"`
}

type effectiveLogging struct {
	Level   string `json:"level" toml:"level" yaml:"level"`
	UILogAt string `json:"ui_log_path,omitempty" toml:"ui_log_path,omitempty" yaml:"ui_log_path,omitempty"`
}

type effectiveDownload struct {
	Dir string `json:"dir" toml:"dir" yaml:"dir"`
}

type effectiveUI struct {
	MarkdownStyle string `json:"markdown_style" toml:"markdown_style" yaml:"markdown_style"`
	ToastDuration string `json:"toast_duration" toml:"toast_duration" yaml:"toast_duration"`
	OSC52         bool   `json:"osc52" toml:"osc52" yaml:"osc52"`
}

func NewConfigCommand(stdout, stderr io.Writer) *ConfigCommand {
	return &ConfigCommand{
		stdout: stdout,
		stderr: stderr,
	}
}

func (c *ConfigCommand) Run(args []string) error {
	fs := flag.NewFlagSet("config", flag.ContinueOnError)
	fs.SetOutput(c.stderr)
	defaults := fs.Bool("default", false, "print default config values")
	format := fs.String("format", formatJSON, "output format: json|toml|yaml")
	if err := fs.Parse(args); err != nil {
		return err
	}
	resolvedFormat, err := resolveFormat(*format, formatJSON, formatTOML, formatYAML)
	if err != nil {
		return err
	}

	cfg := config.DefaultConfig()
	if !*defaults {
		cfg, err = config.Load()
		if err != nil {
			return err
		}
	}
	out, err := buildConfigOutput(cfg)
	if err != nil {
		return err
	}
	return writeStructured(c.stdout, resolvedFormat, out)
}

func buildConfigOutput(cfg config.Config) (configOutput, error) {
	path, err := config.ConfigPath()
	if err != nil {
		return configOutput{}, err
	}
	downloadDir, err := cfg.DownloadDir()
	if err != nil {
		return configOutput{}, err
	}
	logPath, _ := config.UILogPath()
	return configOutput{
		ConfigPath: path,
		Server: effectiveServerConfig{
			Address: cfg.ServerAddress(),
			BaseURL: cfg.ServerBaseURL(),
			Timeout: cfg.RequestTimeout().String(),
		},
		Channel: effectiveChannel{
			Transport:      cfg.ChannelTransport(),
			Path:           cfg.ChannelPath(),
			ReconnectDelay: cfg.ReconnectDelay().String(),
		},
		Logging: effectiveLogging{
			Level:   cfg.LogLevel(),
			UILogAt: logPath,
		},
		Download: effectiveDownload{Dir: downloadDir},
		UI: effectiveUI{
			MarkdownStyle: cfg.MarkdownStyle(),
			ToastDuration: cfg.ToastDuration().String(),
			OSC52:         cfg.OSC52Enabled(),
		},
	}, nil
}
