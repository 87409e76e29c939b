package main

import (
	"context"
	"net/http"
	"os"

	"leadboard/internal/app"
	"leadboard/internal/channel"
	leadclient "leadboard/internal/client"
	"leadboard/internal/config"
	"leadboard/internal/dispatch"
	"leadboard/internal/logging"
	"leadboard/internal/store"
	"leadboard/internal/types"
)

const sessionEnvVar = "LEADBOARD_SESSION_ID"

type clientFactory func() (commandClient, error)

type commandClient interface {
	dispatch.API
	SessionID() string
	DownloadDir() (string, error)
	// Watch delivers push events to handler until ctx ends or the channel
	// stops for good.
	Watch(ctx context.Context, handler func(types.PushEvent)) error
	RunUI(logger logging.Logger) error
}

type leadboardClientAdapter struct {
	*leadclient.Client
	cfg config.Config
}

func newLeadboardClient() (commandClient, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	sessionID, err := config.ResolveSessionID(os.Getenv(sessionEnvVar), cfg)
	if err != nil {
		return nil, err
	}
	client := leadclient.New(cfg.ServerBaseURL(), sessionID,
		leadclient.WithHTTPClient(&http.Client{Timeout: cfg.RequestTimeout()}),
	)
	return &leadboardClientAdapter{Client: client, cfg: cfg}, nil
}

func (c *leadboardClientAdapter) DownloadDir() (string, error) {
	return c.cfg.DownloadDir()
}

func (c *leadboardClientAdapter) dialer() (channel.Dialer, error) {
	return channel.NewDialer(c.cfg.ChannelTransport(), c.BaseURL(), c.cfg.ChannelPath())
}

func (c *leadboardClientAdapter) Watch(ctx context.Context, handler func(types.PushEvent)) error {
	dialer, err := c.dialer()
	if err != nil {
		return err
	}
	manager := channel.NewManager(dialer, channel.WithReconnect(c.cfg.ReconnectDelay()))
	manager.OnAny(handler)
	ch := manager.Connect(ctx, c.SessionID())
	select {
	case <-ctx.Done():
	case <-ch.Done():
	}
	manager.Close()
	return nil
}

func (c *leadboardClientAdapter) RunUI(logger logging.Logger) error {
	dialer, err := c.dialer()
	if err != nil {
		return err
	}
	downloadDir, err := c.cfg.DownloadDir()
	if err != nil {
		return err
	}
	statePath, err := config.AppStatePath()
	if err != nil {
		return err
	}
	return app.Run(app.Options{
		API:            c.Client,
		Dialer:         dialer,
		SessionID:      c.SessionID(),
		DownloadDir:    downloadDir,
		ReconnectDelay: c.cfg.ReconnectDelay(),
		RequestTimeout: c.cfg.RequestTimeout(),
		MarkdownStyle:  c.cfg.MarkdownStyle(),
		ToastDuration:  c.cfg.ToastDuration(),
		OSC52:          c.cfg.OSC52Enabled(),
		Logger:         logger,
		StateStore:     store.NewFileAppStateStore(statePath),
	})
}
