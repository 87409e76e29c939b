// Package projector derives the display model from the state store. It holds
// no state of its own: the same store contents always project to the same
// model.
package projector

import (
	"fmt"
	"time"

	"leadboard/internal/state"
	"leadboard/internal/types"
)

const missingValue = "N/A"

// Event is raised by Project for the caller to act on.
type Event int

const (
	// EventRunCompleted is raised while progress is complete and the
	// elapsed timer is still running.
	EventRunCompleted Event = iota + 1
)

// TimerState is the read-only view of the run timer.
type TimerState struct {
	Elapsed time.Duration
	Running bool
}

type Tone int

const (
	ToneInfo Tone = iota
	ToneWarning
	ToneError
	ToneOther
	ToneSuccess
)

type Controls struct {
	StartEnabled     bool
	StopEnabled      bool
	ClearEnabled     bool
	SendEnabled      bool
	DownloadEnabled  bool
	ViewEmailEnabled bool
}

type ConnectionView struct {
	Label string
	Tone  Tone
}

type ProgressView struct {
	Processed int
	Total     int
	Percent   float64
	Text      string
	Complete  bool
}

type LogLineView struct {
	Timestamp string
	Level     string
	Tone      Tone
	Task      string
}

type LogGroupView struct {
	WorkerID string
	Expanded bool
	Lines    []LogLineView
}

type ColumnView struct {
	Name      string
	Axis      state.SortAxis
	Indicator string
}

type RowView struct {
	Index      int
	Email      string
	Cells      []string
	Selected   bool
	Selectable bool
}

type EmailProgressView struct {
	Sent    int
	Total   int
	Percent float64
	Text    string
	Active  bool
}

type EmailStatusView struct {
	Company string
	Message string
	Email   string
	Tone    Tone
	Final   bool
}

type DisplayModel struct {
	Phase               state.RunPhase
	Controls            Controls
	Connection          ConnectionView
	Progress            ProgressView
	Cost                string
	Elapsed             string
	Logs                []LogGroupView
	Columns             []ColumnView
	Rows                []RowView
	SortMode            state.SortMode
	SelectedCount       int
	EmailActionsVisible bool
	EmailProgress       EmailProgressView
	EmailFeed           []EmailStatusView
	Events              []Event
}

// Project builds the display model for s.
func Project(s *state.Store, timer TimerState) DisplayModel {
	progress := s.Progress()
	model := DisplayModel{
		Phase:         s.Phase(),
		Controls:      projectControls(s),
		Connection:    projectConnection(s.Connection()),
		Progress:      projectProgress(progress),
		Cost:          FormatCost(s.Cost()),
		Elapsed:       FormatElapsed(timer.Elapsed),
		Logs:          projectLogs(s.Logs()),
		Columns:       projectColumns(s.SortMode()),
		Rows:          projectRows(s),
		SortMode:      s.SortMode(),
		SelectedCount: s.SelectionCount(),
		EmailProgress: projectEmailProgress(s.EmailProgress()),
		EmailFeed:     projectEmailFeed(s.EmailFeed()),
	}
	model.EmailActionsVisible = progress.Complete()
	if progress.Complete() && timer.Running {
		model.Events = append(model.Events, EventRunCompleted)
	}
	return model
}

func (m DisplayModel) Has(event Event) bool {
	for _, e := range m.Events {
		if e == event {
			return true
		}
	}
	return false
}

func projectControls(s *state.Store) Controls {
	phase := s.Phase()
	hasCompanies := len(s.Companies()) > 0
	return Controls{
		StartEnabled:     phase == state.PhaseIdle && !s.Pending(state.ActionStart) && !s.Pending(state.ActionClear),
		StopEnabled:      (phase == state.PhaseRunning || phase == state.PhaseStarting) && !s.Pending(state.ActionStop),
		ClearEnabled:     phase == state.PhaseIdle && !s.Pending(state.ActionClear) && !s.Pending(state.ActionStart),
		SendEnabled:      hasCompanies && !s.Pending(state.ActionSendEmails),
		DownloadEnabled:  hasCompanies && !s.Pending(state.ActionDownload),
		ViewEmailEnabled: !s.Pending(state.ActionViewEmail),
	}
}

func projectConnection(status state.ConnectionStatus) ConnectionView {
	switch status {
	case state.ConnectionUp:
		return ConnectionView{Label: "Connected", Tone: ToneSuccess}
	case state.ConnectionDown:
		return ConnectionView{Label: "Disconnected", Tone: ToneWarning}
	case state.ConnectionFailed:
		return ConnectionView{Label: "Connection failed", Tone: ToneError}
	default:
		return ConnectionView{Label: "Connecting...", Tone: ToneOther}
	}
}

func projectProgress(p types.ProgressState) ProgressView {
	view := ProgressView{
		Processed: p.Processed,
		Total:     p.Total,
		Percent:   p.Percent(),
		Complete:  p.Complete(),
	}
	view.Text = fmt.Sprintf("%d / %d companies processed", p.Processed, p.Total)
	if view.Complete {
		view.Text += " - Complete!"
	}
	return view
}

func projectLogs(groups []types.LogGroup) []LogGroupView {
	out := make([]LogGroupView, 0, len(groups))
	for i, group := range groups {
		view := LogGroupView{WorkerID: group.WorkerID, Expanded: i == 0}
		for _, entry := range group.Entries {
			level := entry.Severity()
			label := entry.Level
			if label == "" {
				label = string(level)
			}
			view.Lines = append(view.Lines, LogLineView{
				Timestamp: entry.Timestamp,
				Level:     label,
				Tone:      levelTone(level),
				Task:      entry.Task,
			})
		}
		out = append(out, view)
	}
	return out
}

func levelTone(level types.LogLevel) Tone {
	switch level {
	case types.LogLevelInfo:
		return ToneInfo
	case types.LogLevelWarning:
		return ToneWarning
	case types.LogLevelError:
		return ToneError
	default:
		return ToneOther
	}
}

func projectColumns(mode state.SortMode) []ColumnView {
	out := make([]ColumnView, 0, len(types.CompanyColumns))
	for _, name := range types.CompanyColumns {
		col := ColumnView{Name: name}
		switch name {
		case types.ColumnRanking:
			col.Axis = state.SortAxisRanking
		case types.ColumnContactEmail:
			col.Axis = state.SortAxisEmail
		}
		if col.Axis != 0 && mode.Axis() == col.Axis {
			col.Indicator = sortIndicator(mode)
		}
		out = append(out, col)
	}
	return out
}

func sortIndicator(mode state.SortMode) string {
	switch mode {
	case state.SortRankingDesc, state.SortEmailPresentFirst:
		return "▼"
	case state.SortRankingAsc, state.SortEmailMissingFirst:
		return "▲"
	default:
		return ""
	}
}

func projectRows(s *state.Store) []RowView {
	sorted := s.SortedCompanies()
	out := make([]RowView, 0, len(sorted))
	for _, item := range sorted {
		record := item.Record
		email := record.Email()
		cells := make([]string, 0, len(types.CompanyColumns))
		for _, name := range types.CompanyColumns {
			cells = append(cells, record.Get(name))
		}
		out = append(out, RowView{
			Index:      item.Index,
			Email:      email,
			Cells:      cells,
			Selected:   s.IsSelected(email),
			Selectable: email != "",
		})
	}
	return out
}

func projectEmailProgress(p types.EmailSendProgress) EmailProgressView {
	view := EmailProgressView{
		Sent:    p.Sent,
		Total:   p.Total,
		Percent: p.Percent(),
		Active:  p.Total > 0,
	}
	if view.Active {
		view.Text = fmt.Sprintf("%d / %d emails", p.Sent, p.Total)
		if p.Action != "" {
			view.Text = fmt.Sprintf("%d / %d emails %s", p.Sent, p.Total, p.Action)
		}
	}
	return view
}

func projectEmailFeed(feed []types.EmailStatus) []EmailStatusView {
	out := make([]EmailStatusView, 0, len(feed))
	for _, status := range feed {
		view := EmailStatusView{
			Company: status.CompanyName,
			Message: status.Message,
			Email:   status.Email,
			Tone:    ToneError,
			Final:   status.EndOfSend(),
		}
		if status.Success {
			view.Tone = ToneSuccess
		}
		if view.Final {
			view.Company = "Process Complete"
			view.Tone = ToneInfo
		}
		out = append(out, view)
	}
	return out
}

// DetailField is one labelled line of the company detail view.
type DetailField struct {
	Name  string
	Value string
}

type DetailView struct {
	Title  string
	Email  string
	Fields []DetailField
}

// ProjectDetail renders the detail view of the company at base index from the
// store's record. Known columns come first in table order, then any extra
// fields in server order.
func ProjectDetail(s *state.Store, index int) (DetailView, bool) {
	record, ok := s.Company(index)
	if !ok {
		return DetailView{}, false
	}
	view := DetailView{Title: valueOrMissing(record.Name()), Email: record.Email()}
	known := make(map[string]struct{}, len(types.CompanyColumns))
	for _, name := range types.CompanyColumns {
		known[name] = struct{}{}
		view.Fields = append(view.Fields, DetailField{Name: name, Value: valueOrMissing(record.Get(name))})
	}
	for _, field := range record.Fields {
		if _, ok := known[field.Name]; ok {
			continue
		}
		view.Fields = append(view.Fields, DetailField{Name: field.Name, Value: valueOrMissing(field.Value)})
	}
	return view, true
}

func valueOrMissing(value string) string {
	if value == "" {
		return missingValue
	}
	return value
}

func FormatCost(cost float64) string {
	return fmt.Sprintf("$%.2f", cost)
}

// FormatElapsed renders d as MM:SS. Minutes keep growing past an hour.
func FormatElapsed(d time.Duration) string {
	if d < 0 {
		d = 0
	}
	total := int(d / time.Second)
	return fmt.Sprintf("%02d:%02d", total/60, total%60)
}
