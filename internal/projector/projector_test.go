package projector

import (
	"reflect"
	"testing"
	"time"

	"leadboard/internal/state"
	"leadboard/internal/types"
)

func company(name, email, ranking string) types.CompanyRecord {
	return types.NewCompanyRecord(
		types.CompanyField{Name: types.ColumnCompanyName, Value: name},
		types.CompanyField{Name: types.ColumnContactEmail, Value: email},
		types.CompanyField{Name: types.ColumnRanking, Value: ranking},
	)
}

func rowNames(model DisplayModel) []string {
	out := make([]string, 0, len(model.Rows))
	for _, row := range model.Rows {
		out = append(out, row.Cells[0])
	}
	return out
}

func TestProjectIsDeterministic(t *testing.T) {
	store := state.New()
	store.ReplaceCompanies([]types.CompanyRecord{company("Low", "low@x.io", "3"), company("High", "high@x.io", "8")})
	store.ReplaceLogs([]types.LogGroup{{WorkerID: "w1", Entries: []types.LogEntry{{Level: "INFO", Task: "a"}}}})
	store.SetProgress(types.ProgressState{Processed: 1, Total: 2})
	store.ToggleSelection("high@x.io")
	store.AdvanceSort(state.SortAxisRanking)

	timer := TimerState{Elapsed: 42 * time.Second, Running: true}
	first := Project(store, timer)
	second := Project(store, timer)
	if !reflect.DeepEqual(first, second) {
		t.Fatalf("expected identical models")
	}
}

func TestProjectSortAndSelection(t *testing.T) {
	store := state.New()
	store.ReplaceCompanies([]types.CompanyRecord{company("Low", "low@x.io", "3"), company("High", "High@X.io", "8")})
	store.ToggleSelection("high@x.io")

	if got := rowNames(Project(store, TimerState{})); !reflect.DeepEqual(got, []string{"Low", "High"}) {
		t.Fatalf("unexpected base order %v", got)
	}
	store.AdvanceSort(state.SortAxisRanking)
	model := Project(store, TimerState{})
	if got := rowNames(model); !reflect.DeepEqual(got, []string{"High", "Low"}) {
		t.Fatalf("expected [High Low], got %v", got)
	}
	if !model.Rows[0].Selected || model.Rows[1].Selected {
		t.Fatalf("selection must follow the record, not the row position")
	}
	if model.Rows[0].Index != 1 {
		t.Fatalf("expected base index 1, got %d", model.Rows[0].Index)
	}
	if model.SelectedCount != 1 {
		t.Fatalf("expected one selected, got %d", model.SelectedCount)
	}
	for _, col := range model.Columns {
		if col.Name == types.ColumnRanking && col.Indicator == "" {
			t.Fatalf("expected ranking sort indicator")
		}
		if col.Name == types.ColumnContactEmail && col.Indicator != "" {
			t.Fatalf("email column must not show an indicator")
		}
	}
}

func TestProjectProgress(t *testing.T) {
	cases := []struct {
		name     string
		progress types.ProgressState
		percent  float64
		text     string
	}{
		{name: "unknown total", progress: types.ProgressState{}, percent: 0, text: "0 / 0 companies processed"},
		{name: "partial", progress: types.ProgressState{Processed: 1, Total: 4}, percent: 25, text: "1 / 4 companies processed"},
		{name: "overflow clamped", progress: types.ProgressState{Processed: 9, Total: 4}, percent: 100, text: "4 / 4 companies processed - Complete!"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			store := state.New()
			store.SetProgress(tc.progress)
			view := Project(store, TimerState{}).Progress
			if view.Percent != tc.percent || view.Text != tc.text {
				t.Fatalf("got %v %q", view.Percent, view.Text)
			}
		})
	}
}

func TestProjectRaisesCompletionWhileTimerRuns(t *testing.T) {
	for _, n := range []int{1, 7, 250} {
		store := state.New()
		store.SetProgress(types.ProgressState{Processed: n, Total: n})

		model := Project(store, TimerState{Running: true})
		if !model.Progress.Complete || !model.Has(EventRunCompleted) || !model.EmailActionsVisible {
			t.Fatalf("n=%d: expected completion state and event", n)
		}
		if Project(store, TimerState{Running: false}).Has(EventRunCompleted) {
			t.Fatalf("n=%d: completion event must not repeat once the timer stopped", n)
		}
	}
}

func TestProjectControlsFollowPhase(t *testing.T) {
	store := state.New()
	store.ReplaceCompanies([]types.CompanyRecord{company("A", "a@x.io", "1")})

	idle := Project(store, TimerState{}).Controls
	if !idle.StartEnabled || idle.StopEnabled || !idle.ClearEnabled || !idle.SendEnabled {
		t.Fatalf("unexpected idle controls %+v", idle)
	}
	store.SetPhase(state.PhaseRunning)
	running := Project(store, TimerState{}).Controls
	if running.StartEnabled || !running.StopEnabled || running.ClearEnabled {
		t.Fatalf("unexpected running controls %+v", running)
	}
	store.SetPending(state.ActionStop, true)
	store.SetPhase(state.PhaseStopping)
	if Project(store, TimerState{}).Controls.StopEnabled {
		t.Fatalf("stop must be disabled while stopping")
	}
}

func TestProjectLogsAndFeed(t *testing.T) {
	store := state.New()
	store.ReplaceLogs([]types.LogGroup{
		{WorkerID: "w1", Entries: []types.LogEntry{{Level: "ERROR", Task: "boom"}}},
		{WorkerID: "w2", Entries: []types.LogEntry{{Level: "debug", Task: "x"}}},
	})
	store.AppendEmailStatus(types.EmailStatus{CompanyName: "Acme", Success: true, Message: "sent"})
	store.AppendEmailStatus(types.EmailStatus{CompanyName: "System", Success: true, SummaryFile: "summary.csv"})
	model := Project(store, TimerState{})

	if !model.Logs[0].Expanded || model.Logs[1].Expanded {
		t.Fatalf("expected only the first group expanded")
	}
	if model.Logs[0].Lines[0].Tone != ToneError || model.Logs[1].Lines[0].Tone != ToneOther {
		t.Fatalf("unexpected tones %+v", model.Logs)
	}
	if !model.EmailFeed[0].Final || model.EmailFeed[0].Company != "Process Complete" || model.EmailFeed[1].Tone != ToneSuccess {
		t.Fatalf("unexpected feed %+v", model.EmailFeed)
	}
}

func TestProjectDetailFillsMissingValues(t *testing.T) {
	store := state.New()
	record := company("Acme", "ceo@acme.io", "9")
	record.Fields = append(record.Fields, types.CompanyField{Name: "LinkedIn", Value: "acme"})
	store.ReplaceCompanies([]types.CompanyRecord{record})

	view, ok := ProjectDetail(store, 0)
	if !ok || view.Title != "Acme" {
		t.Fatalf("unexpected detail %+v", view)
	}
	byName := map[string]string{}
	for _, field := range view.Fields {
		byName[field.Name] = field.Value
	}
	if byName[types.ColumnWebsite] != "N/A" || byName[types.ColumnRanking] != "9" || byName["LinkedIn"] != "acme" {
		t.Fatalf("unexpected fields %+v", view.Fields)
	}
	if last := view.Fields[len(view.Fields)-1]; last.Name != "LinkedIn" {
		t.Fatalf("extra fields must follow known columns, got %q last", last.Name)
	}
	if _, ok := ProjectDetail(store, 5); ok {
		t.Fatalf("expected missing index to report false")
	}
}

func TestFormatters(t *testing.T) {
	if got := FormatCost(1.234); got != "$1.23" {
		t.Fatalf("FormatCost = %q", got)
	}
	cases := map[time.Duration]string{
		0:                  "00:00",
		-time.Second:       "00:00",
		59 * time.Second:   "00:59",
		61 * time.Second:   "01:01",
		3725 * time.Second: "62:05",
	}
	for in, want := range cases {
		if got := FormatElapsed(in); got != want {
			t.Fatalf("FormatElapsed(%v) = %q, want %q", in, got, want)
		}
	}
}
