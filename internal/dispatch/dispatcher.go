package dispatch

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"mime"
	"os"
	"path/filepath"
	"strings"
	"time"

	"leadboard/internal/client"
	"leadboard/internal/logging"
	"leadboard/internal/state"
)

const (
	RankMin = 1
	RankMax = 10
)

// API is the backend contract the dispatcher drives. *client.Client
// implements it.
type API interface {
	Status(ctx context.Context) (*client.StatusResponse, error)
	GenerateLeads(ctx context.Context, filename string, content io.Reader) (*client.AckResponse, error)
	StopAgent(ctx context.Context) (*client.AckResponse, error)
	ClearData(ctx context.Context) (*client.AckResponse, error)
	SendBulkEmails(ctx context.Context, req client.SendBulkEmailsRequest) (*client.AckResponse, error)
	DownloadFile(ctx context.Context) (*client.Download, error)
	GetEmailContent(ctx context.Context, email string) (*client.EmailContent, error)
}

type RankRange struct {
	Min int
	Max int
}

func (r RankRange) Validate() error {
	if r.Min < RankMin || r.Min > RankMax || r.Max < RankMin || r.Max > RankMax {
		return invalid("send emails", "rank range must be within %d-%d", RankMin, RankMax)
	}
	if r.Min > r.Max {
		return invalid("send emails", "minimum rank cannot be greater than maximum rank")
	}
	return nil
}

// Upload describes the file picked for a run.
type Upload struct {
	Path     string
	Name     string
	Size     int64
	MimeType string
}

// InspectUpload validates path as a run input without reading it.
func InspectUpload(path string) (Upload, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		return Upload{}, invalid("start", "no file selected")
	}
	info, err := os.Stat(path)
	if err != nil {
		return Upload{}, invalid("start", "cannot read %s: %v", path, err)
	}
	if info.IsDir() {
		return Upload{}, invalid("start", "%s is a directory", path)
	}
	mimeType := mime.TypeByExtension(strings.ToLower(filepath.Ext(path)))
	if mimeType == "" {
		mimeType = "application/octet-stream"
	}
	return Upload{Path: path, Name: filepath.Base(path), Size: info.Size(), MimeType: mimeType}, nil
}

// Outcome is what Complete reports back to the caller after reconciling a
// result.
type Outcome struct {
	Action    state.Action
	Notice    Notice
	Err       error
	Email     *client.EmailContent
	SavedPath string
	Stale     bool
}

type Option func(*Dispatcher)

func WithLogger(logger logging.Logger) Option {
	return func(d *Dispatcher) {
		if logger != nil {
			d.logger = logger
		}
	}
}

func WithClock(now func() time.Time) Option {
	return func(d *Dispatcher) {
		if now != nil {
			d.timer = NewTimer(now)
		}
	}
}

// Dispatcher turns user actions into requests and reconciles their results
// with the store. It must only be used from the event loop that owns the
// store.
type Dispatcher struct {
	api      API
	store    *state.Store
	timer    *Timer
	logger   logging.Logger
	inflight map[state.Action]string
}

func New(api API, store *state.Store, opts ...Option) *Dispatcher {
	d := &Dispatcher{
		api:      api,
		store:    store,
		timer:    NewTimer(nil),
		logger:   logging.Nop(),
		inflight: map[state.Action]string{},
	}
	for _, opt := range opts {
		opt(d)
	}
	d.logger = logging.Component(d.logger, "dispatch")
	return d
}

func (d *Dispatcher) Timer() *Timer { return d.timer }

func (d *Dispatcher) Store() *state.Store { return d.store }

func (d *Dispatcher) begin(action state.Action, run func(ctx context.Context) (any, error)) (*Command, error) {
	if d.store.Pending(action) {
		return nil, ErrBusy
	}
	cmd := &Command{ID: logging.NewRequestID(), Action: action, run: run}
	d.inflight[action] = cmd.ID
	d.store.SetPending(action, true)
	d.logger.Debug("command issued", logging.F("action", string(action)), logging.F("id", cmd.ID))
	return cmd, nil
}

// StartRun reads the input file and prepares the run-start upload. Progress,
// cost, selection and sort are reset and the timer starts before the
// request is sent.
func (d *Dispatcher) StartRun(path string) (*Command, error) {
	upload, err := InspectUpload(path)
	if err != nil {
		return nil, err
	}
	if phase := d.store.Phase(); phase != state.PhaseIdle {
		return nil, invalid("start", "agent is already %s", phase)
	}
	if d.store.Pending(state.ActionStart) {
		return nil, ErrBusy
	}
	content, err := os.ReadFile(upload.Path)
	if err != nil {
		return nil, invalid("start", "cannot read %s: %v", upload.Path, err)
	}
	cmd, err := d.begin(state.ActionStart, func(ctx context.Context) (any, error) {
		return d.api.GenerateLeads(ctx, upload.Name, bytes.NewReader(content))
	})
	if err != nil {
		return nil, err
	}
	gen := d.store.BeginRun()
	d.store.SetPhase(state.PhaseStarting)
	d.timer.Start()
	d.logger.Info("run starting", logging.F("file", upload.Name), logging.F("size", upload.Size), logging.F("generation", gen))
	return cmd, nil
}

// StopRun asks the backend to stop. The stop control is disabled until the
// response arrives.
func (d *Dispatcher) StopRun() (*Command, error) {
	switch d.store.Phase() {
	case state.PhaseRunning, state.PhaseStarting:
	case state.PhaseStopping:
		return nil, ErrBusy
	default:
		return nil, invalid("stop", "agent is not running")
	}
	cmd, err := d.begin(state.ActionStop, func(ctx context.Context) (any, error) {
		return d.api.StopAgent(ctx)
	})
	if err != nil {
		return nil, err
	}
	d.store.SetPhase(state.PhaseStopping)
	return cmd, nil
}

// ClearData prepares the destructive clear. Nothing is sent unless the user
// confirmed and the agent is idle.
func (d *Dispatcher) ClearData(confirmed bool) (*Command, error) {
	if !confirmed {
		return nil, ErrCancelled
	}
	if phase := d.store.Phase(); phase != state.PhaseIdle {
		return nil, invalid("clear", "agent is %s; stop it first", phase)
	}
	return d.begin(state.ActionClear, func(ctx context.Context) (any, error) {
		return d.api.ClearData(ctx)
	})
}

// SendBulkEmails targets the selected emails when the selection is not
// empty and the rank range otherwise. Exactly one of the two is sent.
func (d *Dispatcher) SendBulkEmails(mode string, rng *RankRange) (*Command, error) {
	mode, err := normalizeMode(mode)
	if err != nil {
		return nil, err
	}
	req := client.SendBulkEmailsRequest{Mode: mode}
	if selected := d.store.SelectedEmails(); len(selected) > 0 {
		req.SelectedEmails = selected
	} else {
		if rng == nil {
			return nil, invalid("send emails", "select companies or enter a rank range")
		}
		if err := rng.Validate(); err != nil {
			return nil, err
		}
		minRank, maxRank := rng.Min, rng.Max
		req.RankMin = &minRank
		req.RankMax = &maxRank
	}
	cmd, err := d.begin(state.ActionSendEmails, func(ctx context.Context) (any, error) {
		return d.api.SendBulkEmails(ctx, req)
	})
	if err != nil {
		return nil, err
	}
	d.store.ResetEmailSend()
	return cmd, nil
}

func normalizeMode(mode string) (string, error) {
	switch strings.ToLower(strings.TrimSpace(mode)) {
	case "", client.EmailModeSend:
		return client.EmailModeSend, nil
	case client.EmailModeDraft:
		return client.EmailModeDraft, nil
	case client.EmailModeFollowUp, "followup", "follow_up":
		return client.EmailModeFollowUp, nil
	default:
		return "", invalid("send emails", "unknown mode %q", mode)
	}
}

// DownloadArtifact fetches the enriched CSV and saves it into dir. A
// not-ready answer saves nothing.
func (d *Dispatcher) DownloadArtifact(dir string) (*Command, error) {
	dir = strings.TrimSpace(dir)
	if dir == "" {
		dir = "."
	}
	return d.begin(state.ActionDownload, func(ctx context.Context) (any, error) {
		download, err := d.api.DownloadFile(ctx)
		if err != nil {
			return nil, err
		}
		if download == nil {
			return nil, errors.New("download returned no file")
		}
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, err
		}
		path := filepath.Join(dir, download.Filename)
		if err := os.WriteFile(path, download.Data, 0o644); err != nil {
			return nil, err
		}
		return path, nil
	})
}

// ViewSavedContent looks up the saved email for address. An empty address
// returns a nil command and an info notice.
func (d *Dispatcher) ViewSavedContent(email string) (*Command, Notice, error) {
	email = strings.TrimSpace(email)
	if email == "" {
		return nil, Notice{Severity: SeverityInfo, Title: "No email", Message: "Nothing to show for this company."}, nil
	}
	cmd, err := d.begin(state.ActionViewEmail, func(ctx context.Context) (any, error) {
		return d.api.GetEmailContent(ctx, email)
	})
	return cmd, Notice{}, err
}

func (d *Dispatcher) RefreshStatus() (*Command, error) {
	return d.begin(state.ActionStatus, func(ctx context.Context) (any, error) {
		return d.api.Status(ctx)
	})
}

// HandleRunCompleted reacts to the projector's completion event. Calling it
// again is a no-op.
func (d *Dispatcher) HandleRunCompleted() bool {
	if !d.timer.Running() && d.store.Phase() == state.PhaseIdle {
		return false
	}
	d.timer.Stop()
	if d.store.Phase() == state.PhaseRunning {
		d.store.SetPhase(state.PhaseIdle)
	}
	d.logger.Info("run completed", logging.F("elapsed", d.timer.Elapsed()))
	return true
}

// Complete reconciles result with the store. Results of commands that are no
// longer in flight are reported as stale and change nothing.
func (d *Dispatcher) Complete(result Result) Outcome {
	out := Outcome{Action: result.Action, Err: result.Err}
	if id, ok := d.inflight[result.Action]; !ok || id != result.CommandID {
		out.Stale = true
		return out
	}
	delete(d.inflight, result.Action)
	d.store.SetPending(result.Action, false)

	if result.Err != nil {
		d.logger.Warn("command failed", logging.F("action", string(result.Action)), logging.F("err", result.Err))
	}

	switch result.Action {
	case state.ActionStart:
		d.completeStart(result, &out)
	case state.ActionStop:
		d.completeStop(result, &out)
	case state.ActionClear:
		d.completeClear(result, &out)
	case state.ActionSendEmails:
		if result.Err != nil {
			out.Notice = errorNotice("Send failed", result.Err)
			break
		}
		out.Notice = Notice{Severity: SeveritySuccess, Title: "Emails queued", Message: ackMessage(result.Value, "Bulk email send started.")}
	case state.ActionDownload:
		d.completeDownload(result, &out)
	case state.ActionViewEmail:
		d.completeViewEmail(result, &out)
	case state.ActionStatus:
		d.completeStatus(result, &out)
	}
	return out
}

func (d *Dispatcher) completeStart(result Result, out *Outcome) {
	if result.Err != nil {
		d.timer.Stop()
		d.store.SetPhase(state.PhaseIdle)
		out.Notice = errorNotice("Start failed", result.Err)
		return
	}
	if d.store.Phase() == state.PhaseStarting {
		d.store.SetPhase(state.PhaseRunning)
	}
	out.Notice = Notice{Severity: SeveritySuccess, Title: "Agent started", Message: ackMessage(result.Value, "Processing started.")}
}

func (d *Dispatcher) completeStop(result Result, out *Outcome) {
	if result.Err != nil {
		// The run may still be alive server-side; let the user retry.
		if d.store.Phase() == state.PhaseStopping {
			d.store.SetPhase(state.PhaseRunning)
		}
		out.Notice = errorNotice("Stop failed", result.Err)
		return
	}
	d.timer.Stop()
	d.store.SetPhase(state.PhaseIdle)
	out.Notice = Notice{Severity: SeverityInfo, Title: "Agent stopping", Message: ackMessage(result.Value, "Agent stopping...")}
}

func (d *Dispatcher) completeClear(result Result, out *Outcome) {
	if result.Err != nil {
		out.Notice = errorNotice("Clear failed", result.Err)
		return
	}
	gen := d.store.Reset()
	d.timer.Reset()
	d.logger.Info("data cleared", logging.F("generation", gen))
	out.Notice = Notice{Severity: SeveritySuccess, Title: "Cleared", Message: ackMessage(result.Value, "All data has been cleared.")}
}

func (d *Dispatcher) completeDownload(result Result, out *Outcome) {
	if result.Err != nil {
		var notReady *client.NotReadyError
		if errors.As(result.Err, &notReady) {
			msg := notReady.Message
			if msg == "" {
				msg = "The file is not ready yet."
			}
			out.Err = nil
			out.Notice = Notice{Severity: SeverityWarning, Title: "Please wait", Message: msg}
			return
		}
		out.Notice = errorNotice("Download failed", result.Err)
		return
	}
	path, _ := result.Value.(string)
	out.SavedPath = path
	out.Notice = Notice{Severity: SeveritySuccess, Title: "Downloaded", Message: "Saved " + path}
}

func (d *Dispatcher) completeViewEmail(result Result, out *Outcome) {
	if result.Err != nil {
		out.Notice = errorNotice("Email lookup failed", result.Err)
		return
	}
	content, _ := result.Value.(*client.EmailContent)
	if content == nil || !content.Found {
		out.Notice = Notice{Severity: SeverityInfo, Title: "No saved email", Message: "No saved email for this company."}
		return
	}
	out.Email = content
}

func (d *Dispatcher) completeStatus(result Result, out *Outcome) {
	if result.Err != nil {
		out.Notice = errorNotice("Status check failed", result.Err)
		return
	}
	status, _ := result.Value.(*client.StatusResponse)
	if status == nil {
		return
	}
	switch {
	case status.Running && d.store.Phase() == state.PhaseIdle:
		d.store.SetPhase(state.PhaseRunning)
	case !status.Running && d.store.Phase() == state.PhaseRunning:
		d.timer.Stop()
		d.store.SetPhase(state.PhaseIdle)
	}
}

// errorNotice gives transport and server failures the same shape.
func errorNotice(title string, err error) Notice {
	msg := err.Error()
	if serverErr := client.AsServerError(err); serverErr != nil && serverErr.Message != "" {
		msg = serverErr.Message
	} else if client.IsTransport(err) {
		msg = fmt.Sprintf("Cannot reach the server: %v", errors.Unwrap(err))
	}
	return Notice{Severity: SeverityError, Title: title, Message: msg}
}

func ackMessage(value any, fallback string) string {
	if ack, ok := value.(*client.AckResponse); ok && ack != nil && strings.TrimSpace(ack.Message) != "" {
		return ack.Message
	}
	return fallback
}
