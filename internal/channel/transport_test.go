package channel

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"golang.org/x/net/websocket"

	"leadboard/internal/client"
	"leadboard/internal/types"
)

func TestSSEDialerParsesNamedEvents(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != DefaultSSEPath || r.URL.Query().Get("session_id") != "s1" || r.Header.Get(client.SessionHeader) != "s1" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		w.Header().Set("Content-Type", "text/event-stream")
		flusher, _ := w.(http.Flusher)
		fmt.Fprint(w, ": keepalive\n\n")
		fmt.Fprint(w, "event: progress_update\ndata: {\"processed\":2,\"total\":4}\n\n")
		fmt.Fprint(w, "data: {\"event\":\"token_update\",\"data\":{\"total_cost\":0.5}}\n\n")
		if flusher != nil {
			flusher.Flush()
		}
		<-r.Context().Done()
	}))
	defer server.Close()

	dialer, err := NewDialer(TransportSSE, server.URL, "")
	if err != nil {
		t.Fatalf("NewDialer: %v", err)
	}
	m := NewManager(dialer)
	rec := newRecorder()
	m.OnAny(rec.handle)
	ch := m.Connect(context.Background(), "s1")
	defer ch.Close()

	events := rec.waitFor(t, 3)
	if events[0].Name != types.EventConnect {
		t.Fatalf("expected connect first, got %v", eventNames(events))
	}
	if events[1].Name != types.EventProgressUpdate || string(events[1].Data) != `{"processed":2,"total":4}` {
		t.Fatalf("unexpected named event: %+v", events[1])
	}
	if events[2].Name != types.EventTokenUpdate || string(events[2].Data) != `{"total_cost":0.5}` {
		t.Fatalf("unexpected envelope event: %+v", events[2])
	}
}

func TestSSEDialerRejectsErrorStatus(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
	}))
	defer server.Close()

	dialer := &SSEDialer{BaseURL: server.URL}
	if _, err := dialer.Dial(context.Background(), "s1"); err == nil {
		t.Fatalf("expected dial error on 403")
	}
}

func TestWebSocketDialerReceivesEnvelopes(t *testing.T) {
	server := httptest.NewServer(websocket.Handler(func(ws *websocket.Conn) {
		if ws.Request().URL.Query().Get("session_id") != "s1" {
			return
		}
		_ = websocket.JSON.Send(ws, map[string]any{
			"event": types.EventCompaniesUpdate,
			"data":  []map[string]any{{"Company Name": "Acme", "Ranking": 9}},
		})
		_, _ = io.Copy(io.Discard, ws)
	}))
	defer server.Close()

	dialer, err := NewDialer(TransportWebSocket, server.URL, "/")
	if err != nil {
		t.Fatalf("NewDialer: %v", err)
	}
	m := NewManager(dialer)
	rec := newRecorder()
	m.On(types.EventCompaniesUpdate, rec.handle)
	ch := m.Connect(context.Background(), "s1")
	defer ch.Close()

	events := rec.waitFor(t, 1)
	records, err := types.DecodeCompanies(events[0].Data)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(records) != 1 || records[0].Name() != "Acme" || records[0].Get(types.ColumnRanking) != "9" {
		t.Fatalf("unexpected records: %#v", records)
	}
}

func TestSocketIODialerHandshakesAndDecodesEvents(t *testing.T) {
	connectPackets := make(chan string, 1)
	pongs := make(chan string, 1)
	server := httptest.NewServer(websocket.Handler(func(ws *websocket.Conn) {
		query := ws.Request().URL.Query()
		if ws.Request().URL.Path != DefaultSocketIOPath || query.Get("EIO") != "4" || query.Get("transport") != "websocket" {
			return
		}
		send := func(packet string) { _ = websocket.Message.Send(ws, packet) }
		recv := func() string {
			var packet string
			_ = websocket.Message.Receive(ws, &packet)
			return packet
		}
		send(`0{"sid":"e1","upgrades":[],"pingInterval":25000,"pingTimeout":20000,"maxPayload":1000000}`)
		connectPackets <- recv()
		send(`42["token_update",{"total_cost":0.25}]`)
		send(`40{"sid":"s-abc"}`)
		send("2")
		pongs <- recv()
		send(`42/admin,["token_update",{"total_cost":9}]`)
		send(`42["progress_update",{"processed":2,"total":4}]`)
		send(`4217["companies_update",[{"Company Name":"Acme"}]]`)
		_, _ = io.Copy(io.Discard, ws)
	}))
	defer server.Close()

	dialer, err := NewDialer(TransportSocketIO, server.URL, "")
	if err != nil {
		t.Fatalf("NewDialer: %v", err)
	}
	m := NewManager(dialer)
	rec := newRecorder()
	m.OnAny(rec.handle)
	ch := m.Connect(context.Background(), "s1")
	defer ch.Close()

	events := rec.waitFor(t, 4)
	want := []string{types.EventConnect, types.EventTokenUpdate, types.EventProgressUpdate, types.EventCompaniesUpdate}
	for i, name := range want {
		if events[i].Name != name {
			t.Fatalf("unexpected event order: %v", eventNames(events))
		}
	}
	if string(events[1].Data) != `{"total_cost":0.25}` {
		t.Fatalf("unexpected token data %s", events[1].Data)
	}
	if string(events[2].Data) != `{"processed":2,"total":4}` {
		t.Fatalf("unexpected progress data %s", events[2].Data)
	}
	if got := <-connectPackets; got != `40{"session_id":"s1"}` {
		t.Fatalf("unexpected connect packet %q", got)
	}
	if got := <-pongs; got != "3" {
		t.Fatalf("expected pong, got %q", got)
	}
}

func TestSocketIODialerReportsConnectError(t *testing.T) {
	server := httptest.NewServer(websocket.Handler(func(ws *websocket.Conn) {
		_ = websocket.Message.Send(ws, `0{"sid":"e1"}`)
		var packet string
		_ = websocket.Message.Receive(ws, &packet)
		_ = websocket.Message.Send(ws, `44{"message":"unauthorized"}`)
		_, _ = io.Copy(io.Discard, ws)
	}))
	defer server.Close()

	dialer := &SocketIODialer{BaseURL: server.URL}
	_, err := dialer.Dial(context.Background(), "s1")
	if err == nil || !strings.Contains(err.Error(), "unauthorized") {
		t.Fatalf("expected connect refusal, got %v", err)
	}
}

func TestDecodeSocketIOEvent(t *testing.T) {
	tests := []struct {
		name    string
		body    string
		event   string
		data    string
		wantErr bool
	}{
		{name: "name and data", body: `["logs_update",{"w1":[]}]`, event: "logs_update", data: `{"w1":[]}`},
		{name: "ack id", body: `12["email_progress",{"sent":1}]`, event: "email_progress", data: `{"sent":1}`},
		{name: "no data", body: `["connect"]`, event: "connect", data: "null"},
		{name: "empty array", body: `[]`, wantErr: true},
		{name: "numeric name", body: `[3,{}]`, wantErr: true},
		{name: "not json", body: `logs_update`, wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			frame, err := decodeSocketIOEvent(tt.body)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("expected error, got %+v", frame)
				}
				return
			}
			if err != nil {
				t.Fatalf("decode: %v", err)
			}
			if frame.Event != tt.event || string(frame.Data) != tt.data {
				t.Fatalf("unexpected frame %q %s", frame.Event, frame.Data)
			}
		})
	}
}

func TestNewDialerRejectsUnknownTransport(t *testing.T) {
	if _, err := NewDialer("carrier-pigeon", "http://x", ""); err == nil {
		t.Fatalf("expected unknown transport error")
	}
}
