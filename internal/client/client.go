package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime"
	"mime/multipart"
	"net/http"
	"net/url"
	"strings"
	"time"

	"leadboard/internal/logging"
)

const (
	DefaultDownloadName = "enriched_companies.csv"
	SessionHeader       = "X-Session-ID"

	defaultTimeout  = 10 * time.Second
	transferTimeout = 2 * time.Minute
	maxErrorBody    = 64 * 1024
)

type Client struct {
	baseURL   string
	sessionID string
	http      *http.Client
	logger    logging.Logger
}

type Option func(*Client)

func WithHTTPClient(httpClient *http.Client) Option {
	return func(c *Client) {
		if httpClient != nil {
			c.http = httpClient
		}
	}
}

func WithLogger(logger logging.Logger) Option {
	return func(c *Client) {
		if logger != nil {
			c.logger = logger
		}
	}
}

func New(baseURL, sessionID string, opts ...Option) *Client {
	c := &Client{
		baseURL:   strings.TrimRight(strings.TrimSpace(baseURL), "/"),
		sessionID: strings.TrimSpace(sessionID),
		http: &http.Client{
			Timeout: defaultTimeout,
		},
		logger: logging.Nop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *Client) BaseURL() string   { return c.baseURL }
func (c *Client) SessionID() string { return c.sessionID }

func (c *Client) Status(ctx context.Context) (*StatusResponse, error) {
	var resp StatusResponse
	if err := c.doJSON(ctx, "status", http.MethodGet, "/status", nil, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// GenerateLeads uploads the input spreadsheet as multipart field inputFile
// and starts a run.
func (c *Client) GenerateLeads(ctx context.Context, filename string, content io.Reader) (*AckResponse, error) {
	const op = "generate leads"
	if content == nil {
		return nil, errors.New("file content is required")
	}
	var body bytes.Buffer
	writer := multipart.NewWriter(&body)
	part, err := writer.CreateFormFile("inputFile", filename)
	if err != nil {
		return nil, err
	}
	if _, err := io.Copy(part, content); err != nil {
		return nil, fmt.Errorf("read %s: %w", filename, err)
	}
	if err := writer.Close(); err != nil {
		return nil, err
	}
	req, err := c.newRequest(ctx, http.MethodPost, "/generate-leads", &body)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())
	var ack AckResponse
	if err := c.send(op, req, c.clientWithTimeout(transferTimeout), &ack); err != nil {
		return nil, err
	}
	return &ack, nil
}

func (c *Client) StopAgent(ctx context.Context) (*AckResponse, error) {
	var ack AckResponse
	if err := c.doJSON(ctx, "stop agent", http.MethodPost, "/stop-agent", nil, &ack); err != nil {
		return nil, err
	}
	return &ack, nil
}

func (c *Client) ClearData(ctx context.Context) (*AckResponse, error) {
	var ack AckResponse
	if err := c.doJSON(ctx, "clear data", http.MethodPost, "/clear-data", nil, &ack); err != nil {
		return nil, err
	}
	return &ack, nil
}

func (c *Client) SendBulkEmails(ctx context.Context, req SendBulkEmailsRequest) (*AckResponse, error) {
	hasList := len(req.SelectedEmails) > 0
	hasRange := req.RankMin != nil && req.RankMax != nil
	if hasList == hasRange {
		return nil, errors.New("send bulk emails needs exactly one of selected emails or a rank range")
	}
	var ack AckResponse
	if err := c.doJSON(ctx, "send bulk emails", http.MethodPost, "/send-bulk-emails", req, &ack); err != nil {
		return nil, err
	}
	return &ack, nil
}

// DownloadFile fetches the enriched CSV. A 202 answer is returned as
// *NotReadyError.
func (c *Client) DownloadFile(ctx context.Context) (*Download, error) {
	const op = "download file"
	req, err := c.newRequest(ctx, http.MethodGet, "/download_file", nil)
	if err != nil {
		return nil, err
	}
	resp, err := c.clientWithTimeout(transferTimeout).Do(req)
	if err != nil {
		return nil, &TransportError{Op: op, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusAccepted {
		var payload errorPayload
		_ = json.NewDecoder(io.LimitReader(resp.Body, maxErrorBody)).Decode(&payload)
		return nil, &NotReadyError{Op: op, Message: payload.Error}
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, decodeServerError(op, resp)
	}
	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &TransportError{Op: op, Err: err}
	}
	return &Download{Filename: DefaultDownloadName, Data: data}, nil
}

func (c *Client) GetEmailContent(ctx context.Context, email string) (*EmailContent, error) {
	email = strings.TrimSpace(email)
	if email == "" {
		return nil, errors.New("email is required")
	}
	path := "/get-email-content?email=" + url.QueryEscape(email)
	var content EmailContent
	if err := c.doJSON(ctx, "get email content", http.MethodGet, path, nil, &content); err != nil {
		if serverErr := AsServerError(err); serverErr != nil && serverErr.StatusCode == http.StatusNotFound {
			return &EmailContent{Found: false, Email: email}, nil
		}
		return nil, err
	}
	return &content, nil
}

func (c *Client) doJSON(ctx context.Context, op, method, path string, body any, out any) error {
	var reader io.Reader
	if body != nil {
		buf, err := json.Marshal(body)
		if err != nil {
			return err
		}
		reader = bytes.NewReader(buf)
	}
	req, err := c.newRequest(ctx, method, path, reader)
	if err != nil {
		return err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	return c.send(op, req, c.http, out)
}

func (c *Client) newRequest(ctx context.Context, method, path string, body io.Reader) (*http.Request, error) {
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")
	if c.sessionID != "" {
		req.Header.Set(SessionHeader, c.sessionID)
	}
	return req, nil
}

func (c *Client) clientWithTimeout(timeout time.Duration) *http.Client {
	if c.http == nil {
		return &http.Client{Timeout: timeout}
	}
	if c.http.Timeout == 0 || c.http.Timeout >= timeout {
		return c.http
	}
	return &http.Client{
		Timeout:       timeout,
		Transport:     c.http.Transport,
		CheckRedirect: c.http.CheckRedirect,
		Jar:           c.http.Jar,
	}
}

// send executes req and decodes a JSON answer into out. A 2xx body carrying
// a non-empty "error" field is reported as *ServerError. Non-JSON 2xx bodies
// (the backend redirects some POSTs to its index page) count as success.
func (c *Client) send(op string, req *http.Request, httpClient *http.Client, out any) error {
	start := time.Now()
	resp, err := httpClient.Do(req)
	if err != nil {
		c.logger.Warn("request failed", logging.F("op", op), logging.F("err", err))
		return &TransportError{Op: op, Err: err}
	}
	defer resp.Body.Close()
	c.logger.Debug("request done",
		logging.F("op", op),
		logging.F("status", resp.StatusCode),
		logging.F("dur", time.Since(start)),
	)

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return decodeServerError(op, resp)
	}
	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return &TransportError{Op: op, Err: err}
	}
	if !isJSONResponse(resp, data) {
		return nil
	}
	var payload errorPayload
	if err := json.Unmarshal(data, &payload); err == nil && strings.TrimSpace(payload.Error) != "" {
		return &ServerError{Op: op, StatusCode: resp.StatusCode, Message: payload.Error}
	}
	if out == nil {
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return &TransportError{Op: op, Err: fmt.Errorf("decode response: %w", err)}
	}
	return nil
}

func isJSONResponse(resp *http.Response, data []byte) bool {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 {
		return false
	}
	mediaType, _, err := mime.ParseMediaType(resp.Header.Get("Content-Type"))
	if err == nil && (mediaType == "application/json" || strings.HasSuffix(mediaType, "+json")) {
		return true
	}
	return trimmed[0] == '{' || trimmed[0] == '['
}

func decodeServerError(op string, resp *http.Response) error {
	var payload errorPayload
	_ = json.NewDecoder(io.LimitReader(resp.Body, maxErrorBody)).Decode(&payload)
	if strings.TrimSpace(payload.Error) != "" {
		return &ServerError{Op: op, StatusCode: resp.StatusCode, Message: payload.Error}
	}
	return &ServerError{Op: op, StatusCode: resp.StatusCode, Message: resp.Status}
}
