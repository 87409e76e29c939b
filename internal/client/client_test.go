package client

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)
	return New(server.URL, "session-1", WithHTTPClient(&http.Client{Timeout: 2 * time.Second}))
}

func TestStatusSendsSessionHeader(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/status" || r.Header.Get(SessionHeader) != "session-1" {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"running":true}`))
	})
	resp, err := c.Status(context.Background())
	if err != nil {
		t.Fatalf("Status: %v", err)
	}
	if !resp.Running {
		t.Fatalf("expected running status")
	}
}

func TestGenerateLeadsUploadsMultipartFile(t *testing.T) {
	var gotName, gotBody string
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/generate-leads" {
			http.NotFound(w, r)
			return
		}
		file, header, err := r.FormFile("inputFile")
		if err != nil {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		defer file.Close()
		data, _ := io.ReadAll(file)
		gotName = header.Filename
		gotBody = string(data)
		// The backend answers with a redirect to its HTML index.
		w.Header().Set("Content-Type", "text/html")
		_, _ = w.Write([]byte("<html></html>"))
	})
	if _, err := c.GenerateLeads(context.Background(), "leads.csv", strings.NewReader("a,b\n1,2\n")); err != nil {
		t.Fatalf("GenerateLeads: %v", err)
	}
	if gotName != "leads.csv" || gotBody != "a,b\n1,2\n" {
		t.Fatalf("unexpected upload: name=%q body=%q", gotName, gotBody)
	}
}

func TestErrorPayloadInSuccessResponseIsServerError(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"error":"agent busy"}`))
	})
	_, err := c.ClearData(context.Background())
	serverErr := AsServerError(err)
	if serverErr == nil {
		t.Fatalf("expected server error, got %v", err)
	}
	if serverErr.Message != "agent busy" || serverErr.StatusCode != http.StatusOK {
		t.Fatalf("unexpected server error: %#v", serverErr)
	}
}

func TestNon2xxIsServerError(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte(`{"error":"boom"}`))
	})
	_, err := c.StopAgent(context.Background())
	serverErr := AsServerError(err)
	if serverErr == nil || serverErr.StatusCode != http.StatusInternalServerError || serverErr.Message != "boom" {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestUnreachableBackendIsTransportError(t *testing.T) {
	server := httptest.NewServer(http.NotFoundHandler())
	url := server.URL
	server.Close()

	c := New(url, "s", WithHTTPClient(&http.Client{Timeout: time.Second}))
	_, err := c.Status(context.Background())
	if !IsTransport(err) {
		t.Fatalf("expected transport error, got %v", err)
	}
}

func TestSendBulkEmailsBodyShapes(t *testing.T) {
	var bodies []map[string]any
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		var body map[string]any
		_ = json.NewDecoder(r.Body).Decode(&body)
		bodies = append(bodies, body)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"message":"started"}`))
	})
	ctx := context.Background()
	if _, err := c.SendBulkEmails(ctx, SendBulkEmailsRequest{Mode: EmailModeSend, SelectedEmails: []string{"a@x.io"}}); err != nil {
		t.Fatalf("send list: %v", err)
	}
	lo, hi := 3, 8
	if _, err := c.SendBulkEmails(ctx, SendBulkEmailsRequest{Mode: EmailModeDraft, RankMin: &lo, RankMax: &hi}); err != nil {
		t.Fatalf("send range: %v", err)
	}
	if len(bodies) != 2 {
		t.Fatalf("expected two requests, got %d", len(bodies))
	}
	if _, ok := bodies[0]["rank_min"]; ok {
		t.Fatalf("list request must not carry a range: %#v", bodies[0])
	}
	if _, ok := bodies[1]["selected_emails"]; ok {
		t.Fatalf("range request must not carry a list: %#v", bodies[1])
	}
	if bodies[1]["rank_min"] != float64(3) || bodies[1]["rank_max"] != float64(8) {
		t.Fatalf("unexpected range body: %#v", bodies[1])
	}
}

func TestSendBulkEmailsRejectsAmbiguousRequest(t *testing.T) {
	c := New("http://127.0.0.1:1", "s")
	lo, hi := 1, 2
	if _, err := c.SendBulkEmails(context.Background(), SendBulkEmailsRequest{Mode: "send", SelectedEmails: []string{"a"}, RankMin: &lo, RankMax: &hi}); err == nil {
		t.Fatalf("expected error when both shapes are present")
	}
	if _, err := c.SendBulkEmails(context.Background(), SendBulkEmailsRequest{Mode: "send"}); err == nil {
		t.Fatalf("expected error when neither shape is present")
	}
}

func TestDownloadFileNotReady(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusAccepted)
		_, _ = w.Write([]byte(`{"error":"still processing"}`))
	})
	_, err := c.DownloadFile(context.Background())
	if !IsNotReady(err) {
		t.Fatalf("expected not ready error, got %v", err)
	}
	if !strings.Contains(err.Error(), "still processing") {
		t.Fatalf("expected message in error, got %v", err)
	}
}

func TestDownloadFileReturnsPayload(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/csv")
		_, _ = w.Write([]byte("Company Name\nAcme\n"))
	})
	download, err := c.DownloadFile(context.Background())
	if err != nil {
		t.Fatalf("DownloadFile: %v", err)
	}
	if download.Filename != DefaultDownloadName || string(download.Data) != "Company Name\nAcme\n" {
		t.Fatalf("unexpected download: %#v", download)
	}
}

func TestGetEmailContent(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		switch r.URL.Query().Get("email") {
		case "a+b@x.io":
			_, _ = w.Write([]byte(`{"found":true,"email":"a+b@x.io","subject":"Hi","body":"Hello"}`))
		default:
			w.WriteHeader(http.StatusNotFound)
			_, _ = w.Write([]byte(`{"error":"not found"}`))
		}
	})
	content, err := c.GetEmailContent(context.Background(), "a+b@x.io")
	if err != nil {
		t.Fatalf("GetEmailContent: %v", err)
	}
	if !content.Found || content.Subject != "Hi" {
		t.Fatalf("unexpected content: %#v", content)
	}
	missing, err := c.GetEmailContent(context.Background(), "nobody@x.io")
	if err != nil {
		t.Fatalf("expected 404 to map to not found, got %v", err)
	}
	if missing.Found {
		t.Fatalf("expected not found content")
	}
}
