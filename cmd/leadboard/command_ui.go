package main

import (
	"flag"
	"io"

	"leadboard/internal/config"
	"leadboard/internal/logging"
)

type uiLoggingFactory func() (logging.Logger, io.Closer)

type UICommand struct {
	stderr             io.Writer
	newClient          clientFactory
	configureUILogging uiLoggingFactory
}

func NewUICommand(stderr io.Writer, newClient clientFactory, configureUILogging uiLoggingFactory) *UICommand {
	return &UICommand{
		stderr:             stderr,
		newClient:          newClient,
		configureUILogging: configureUILogging,
	}
}

func (c *UICommand) Run(args []string) error {
	fs := flag.NewFlagSet("ui", flag.ContinueOnError)
	fs.SetOutput(c.stderr)
	if err := fs.Parse(args); err != nil {
		return err
	}

	logger := logging.Nop()
	if c.configureUILogging != nil {
		var closer io.Closer
		logger, closer = c.configureUILogging()
		if closer != nil {
			defer closer.Close()
		}
	}

	client, err := c.newClient()
	if err != nil {
		return err
	}
	return client.RunUI(logger)
}

// configureUILogging sends dashboard logs to a file; the terminal belongs to
// the UI.
func configureUILogging() (logging.Logger, io.Closer) {
	cfg, err := config.Load()
	if err != nil {
		cfg = config.DefaultConfig()
	}
	path, err := config.UILogPath()
	if err != nil {
		return logging.Nop(), nil
	}
	logger, closer, err := logging.OpenFile(path, logging.ParseLevel(cfg.LogLevel()))
	if err != nil {
		return logging.Nop(), nil
	}
	return logger, closer
}
