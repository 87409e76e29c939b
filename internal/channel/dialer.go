package channel

import (
	"fmt"
	"net/http"
	"strings"
)

const (
	TransportSocketIO  = "socketio"
	TransportSSE       = "sse"
	TransportWebSocket = "websocket"
)

// NewDialer builds the dialer for the configured transport name.
func NewDialer(transport, baseURL, path string) (Dialer, error) {
	switch strings.ToLower(strings.TrimSpace(transport)) {
	case "", TransportSocketIO, "socket.io":
		return &SocketIODialer{BaseURL: baseURL, Path: path}, nil
	case TransportSSE:
		return &SSEDialer{BaseURL: baseURL, Path: path, HTTP: &http.Client{}}, nil
	case TransportWebSocket, "ws":
		return &WebSocketDialer{BaseURL: baseURL, Path: path}, nil
	default:
		return nil, fmt.Errorf("unknown channel transport %q", transport)
	}
}
