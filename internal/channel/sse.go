package channel

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"leadboard/internal/client"
)

const (
	DefaultSSEPath       = "/events"
	DefaultWebSocketPath = "/ws"
)

// SSEDialer opens the push channel as a text/event-stream. Named events use
// the event: field; unnamed frames must carry an {"event","data"} envelope.
type SSEDialer struct {
	BaseURL string
	Path    string
	HTTP    *http.Client
}

func (d *SSEDialer) Dial(ctx context.Context, sessionID string) (Conn, error) {
	path := d.Path
	if strings.TrimSpace(path) == "" {
		path = DefaultSSEPath
	}
	endpoint := strings.TrimRight(d.BaseURL, "/") + path + "?session_id=" + url.QueryEscape(sessionID)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "text/event-stream")
	req.Header.Set(client.SessionHeader, sessionID)

	httpClient := d.HTTP
	if httpClient == nil {
		httpClient = &http.Client{}
	}
	resp, err := httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		defer resp.Body.Close()
		return nil, fmt.Errorf("event stream: unexpected status %s", resp.Status)
	}

	scanner := bufio.NewScanner(resp.Body)
	scanner.Buffer(make([]byte, 0, 64*1024), 8*1024*1024)
	return &sseConn{body: resp.Body, scanner: scanner}, nil
}

type sseConn struct {
	body    io.ReadCloser
	scanner *bufio.Scanner
}

func (c *sseConn) Next() (Frame, error) {
	var event string
	var dataLines []string
	for c.scanner.Scan() {
		line := c.scanner.Text()
		if line == "" {
			if len(dataLines) == 0 {
				event = ""
				continue
			}
			return decodeSSEFrame(event, strings.Join(dataLines, "\n"))
		}
		if strings.HasPrefix(line, ":") {
			continue
		}
		field, value, _ := strings.Cut(line, ":")
		value = strings.TrimPrefix(value, " ")
		switch field {
		case "event":
			event = strings.TrimSpace(value)
		case "data":
			dataLines = append(dataLines, value)
		}
	}
	if err := c.scanner.Err(); err != nil {
		return Frame{}, err
	}
	return Frame{}, io.EOF
}

func (c *sseConn) Close() error {
	return c.body.Close()
}

func decodeSSEFrame(event, payload string) (Frame, error) {
	if event != "" && event != "message" {
		return Frame{Event: event, Data: json.RawMessage(payload)}, nil
	}
	var env envelope
	if err := json.Unmarshal([]byte(payload), &env); err != nil {
		return Frame{}, fmt.Errorf("decode event envelope: %w", err)
	}
	return Frame{Event: env.Event, Data: env.Data}, nil
}

type envelope struct {
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data"`
}
