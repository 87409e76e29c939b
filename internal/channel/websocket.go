package channel

import (
	"context"
	"errors"
	"net/http"
	"net/url"
	"strings"

	"golang.org/x/net/websocket"

	"leadboard/internal/client"
)

// WebSocketDialer opens the push channel as a websocket. Each text frame is
// a JSON {"event": name, "data": payload} envelope.
type WebSocketDialer struct {
	BaseURL string
	Path    string
}

func (d *WebSocketDialer) Dial(ctx context.Context, sessionID string) (Conn, error) {
	origin := strings.TrimRight(d.BaseURL, "/")
	endpoint, err := websocketURL(origin, d.Path)
	if err != nil {
		return nil, err
	}
	query := endpoint.Query()
	query.Set("session_id", sessionID)
	endpoint.RawQuery = query.Encode()

	cfg, err := websocket.NewConfig(endpoint.String(), origin)
	if err != nil {
		return nil, err
	}
	cfg.Header = http.Header{}
	cfg.Header.Set(client.SessionHeader, sessionID)
	ws, err := cfg.DialContext(ctx)
	if err != nil {
		return nil, err
	}
	return &wsConn{ws: ws}, nil
}

func websocketURL(base, path string) (*url.URL, error) {
	if strings.TrimSpace(path) == "" {
		path = DefaultWebSocketPath
	}
	u, err := url.Parse(base + path)
	if err != nil {
		return nil, err
	}
	switch u.Scheme {
	case "http":
		u.Scheme = "ws"
	case "https":
		u.Scheme = "wss"
	case "ws", "wss":
	default:
		return nil, errors.New("websocket: unsupported scheme " + u.Scheme)
	}
	return u, nil
}

type wsConn struct {
	ws *websocket.Conn
}

func (c *wsConn) Next() (Frame, error) {
	var env envelope
	if err := websocket.JSON.Receive(c.ws, &env); err != nil {
		return Frame{}, err
	}
	return Frame{Event: env.Event, Data: env.Data}, nil
}

func (c *wsConn) Close() error {
	return c.ws.Close()
}
