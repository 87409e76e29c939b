package channel

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"golang.org/x/net/websocket"

	"leadboard/internal/client"
)

const DefaultSocketIOPath = "/socket.io/"

// Engine.IO v4 packet types, the first byte of every text frame.
const (
	eioOpen    = '0'
	eioClose   = '1'
	eioPing    = '2'
	eioPong    = '3'
	eioMessage = '4'
)

// Socket.IO v5 packet types, the byte following an Engine.IO message.
const (
	sioConnect      = '0'
	sioDisconnect   = '1'
	sioEvent        = '2'
	sioConnectError = '4'
)

// SocketIODialer speaks Socket.IO over the Engine.IO websocket transport on
// the default namespace. The session id is sent as the connect auth payload.
type SocketIODialer struct {
	BaseURL string
	Path    string
}

func (d *SocketIODialer) Dial(ctx context.Context, sessionID string) (Conn, error) {
	origin := strings.TrimRight(d.BaseURL, "/")
	path := d.Path
	if strings.TrimSpace(path) == "" {
		path = DefaultSocketIOPath
	}
	endpoint, err := websocketURL(origin, path)
	if err != nil {
		return nil, err
	}
	query := endpoint.Query()
	query.Set("EIO", "4")
	query.Set("transport", "websocket")
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

	stop := context.AfterFunc(ctx, func() { _ = ws.Close() })
	defer stop()
	conn := &socketIOConn{ws: ws}
	if err := conn.handshake(sessionID); err != nil {
		_ = ws.Close()
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}
		return nil, err
	}
	return conn, nil
}

type socketIOConn struct {
	ws        *websocket.Conn
	connected bool
	// Events that arrive before the connect ack are held here.
	pending []Frame
}

func (c *socketIOConn) handshake(sessionID string) error {
	packet, err := c.read()
	if err != nil {
		return err
	}
	if packet == "" || packet[0] != eioOpen {
		return fmt.Errorf("socket.io: expected open packet, got %q", packet)
	}
	auth, err := json.Marshal(map[string]string{"session_id": sessionID})
	if err != nil {
		return err
	}
	if err := c.write(string([]byte{eioMessage, sioConnect}) + string(auth)); err != nil {
		return err
	}
	for !c.connected {
		packet, err := c.read()
		if err != nil {
			return err
		}
		if err := c.process(packet); err != nil {
			return err
		}
	}
	return nil
}

func (c *socketIOConn) Next() (Frame, error) {
	for len(c.pending) == 0 {
		packet, err := c.read()
		if err != nil {
			return Frame{}, err
		}
		if err := c.process(packet); err != nil {
			return Frame{}, err
		}
	}
	frame := c.pending[0]
	c.pending = c.pending[1:]
	return frame, nil
}

func (c *socketIOConn) Close() error {
	return c.ws.Close()
}

func (c *socketIOConn) read() (string, error) {
	var packet string
	if err := websocket.Message.Receive(c.ws, &packet); err != nil {
		return "", err
	}
	return packet, nil
}

func (c *socketIOConn) write(packet string) error {
	return websocket.Message.Send(c.ws, packet)
}

func (c *socketIOConn) process(packet string) error {
	if packet == "" {
		return nil
	}
	switch packet[0] {
	case eioPing:
		return c.write(string(eioPong) + packet[1:])
	case eioClose:
		return io.EOF
	case eioMessage:
		return c.processSocket(packet[1:])
	}
	return nil
}

func (c *socketIOConn) processSocket(packet string) error {
	if packet == "" {
		return nil
	}
	kind, body := packet[0], packet[1:]
	if strings.HasPrefix(body, "/") {
		namespace, rest, _ := strings.Cut(body, ",")
		if namespace != "/" {
			return nil
		}
		body = rest
	}
	switch kind {
	case sioConnect:
		c.connected = true
	case sioConnectError:
		return connectError(body)
	case sioDisconnect:
		return errors.New("socket.io: disconnected by server")
	case sioEvent:
		frame, err := decodeSocketIOEvent(body)
		if err != nil {
			return err
		}
		c.pending = append(c.pending, frame)
	}
	return nil
}

// decodeSocketIOEvent reads `[name, data]`, skipping a leading ack id. An
// event without arguments carries null data.
func decodeSocketIOEvent(body string) (Frame, error) {
	body = strings.TrimLeft(body, "0123456789")
	var args []json.RawMessage
	if err := json.Unmarshal([]byte(body), &args); err != nil {
		return Frame{}, fmt.Errorf("decode socket.io event: %w", err)
	}
	if len(args) == 0 {
		return Frame{}, errors.New("decode socket.io event: missing name")
	}
	var name string
	if err := json.Unmarshal(args[0], &name); err != nil || name == "" {
		return Frame{}, fmt.Errorf("decode socket.io event: bad name %s", args[0])
	}
	data := json.RawMessage("null")
	if len(args) > 1 {
		data = args[1]
	}
	return Frame{Event: name, Data: data}, nil
}

func connectError(body string) error {
	var payload struct {
		Message string `json:"message"`
	}
	if err := json.Unmarshal([]byte(body), &payload); err == nil && payload.Message != "" {
		return fmt.Errorf("socket.io: connect refused: %s", payload.Message)
	}
	return errors.New("socket.io: connect refused")
}
