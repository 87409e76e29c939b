package state

import (
	"encoding/json"
	"fmt"
	"sort"
	"sync/atomic"

	"leadboard/internal/types"
)

const maxEmailFeed = 500

type RunPhase int

const (
	PhaseIdle RunPhase = iota
	PhaseStarting
	PhaseRunning
	PhaseStopping
)

func (p RunPhase) String() string {
	switch p {
	case PhaseStarting:
		return "starting"
	case PhaseRunning:
		return "running"
	case PhaseStopping:
		return "stopping"
	default:
		return "idle"
	}
}

type ConnectionStatus int

const (
	ConnectionPending ConnectionStatus = iota
	ConnectionUp
	ConnectionDown
	ConnectionFailed
)

// Action names a user command. It is used to track which controls have a
// request in flight.
type Action string

const (
	ActionStart      Action = "start"
	ActionStop       Action = "stop"
	ActionClear      Action = "clear"
	ActionSendEmails Action = "send_emails"
	ActionDownload   Action = "download"
	ActionViewEmail  Action = "view_email"
	ActionStatus     Action = "status"
)

// Store holds the last pushed server snapshots and the client-only view
// state. It is owned by a single event loop; only the generation counter may
// be read from other goroutines.
type Store struct {
	generation atomic.Uint64
	sealed     bool

	logs          []types.LogGroup
	companies     []types.CompanyRecord
	cost          float64
	progress      types.ProgressState
	emailProgress types.EmailSendProgress
	emailFeed     []types.EmailStatus

	selection map[string]struct{}
	sort      SortMode

	phase      RunPhase
	pending    map[Action]bool
	connection ConnectionStatus
}

func New() *Store {
	s := &Store{
		selection: map[string]struct{}{},
		pending:   map[Action]bool{},
	}
	s.generation.Store(1)
	return s
}

// Generation is safe to call from any goroutine.
func (s *Store) Generation() uint64 {
	return s.generation.Load()
}

func (s *Store) Sealed() bool { return s.sealed }

func (s *Store) ReplaceLogs(groups []types.LogGroup) {
	s.logs = types.CloneLogGroups(groups)
}

func (s *Store) ReplaceCompanies(records []types.CompanyRecord) {
	s.companies = types.CloneCompanies(records)
}

// SetCost records the accumulated run cost. Lower values than the current
// one are ignored; it returns whether the value was taken.
func (s *Store) SetCost(total float64) bool {
	if total < s.cost {
		return false
	}
	s.cost = total
	return true
}

func (s *Store) SetProgress(p types.ProgressState) {
	s.progress = p.Normalized()
}

func (s *Store) SetEmailProgress(p types.EmailSendProgress) {
	s.emailProgress = p
}

func (s *Store) AppendEmailStatus(status types.EmailStatus) {
	s.emailFeed = append([]types.EmailStatus{status}, s.emailFeed...)
	if len(s.emailFeed) > maxEmailFeed {
		s.emailFeed = s.emailFeed[:maxEmailFeed]
	}
}

// ResetEmailSend clears the bulk-send progress and status feed.
func (s *Store) ResetEmailSend() {
	s.emailProgress = types.EmailSendProgress{}
	s.emailFeed = nil
}

// ToggleSelection flips membership of email and reports whether it is now
// selected. Emails that normalize to empty are never selectable.
func (s *Store) ToggleSelection(email string) bool {
	key := types.NormalizeEmail(email)
	if key == "" {
		return false
	}
	if _, ok := s.selection[key]; ok {
		delete(s.selection, key)
		return false
	}
	s.selection[key] = struct{}{}
	return true
}

func (s *Store) ClearSelection() {
	s.selection = map[string]struct{}{}
}

func (s *Store) IsSelected(email string) bool {
	key := types.NormalizeEmail(email)
	if key == "" {
		return false
	}
	_, ok := s.selection[key]
	return ok
}

func (s *Store) SelectionCount() int {
	return len(s.selection)
}

// SelectedEmails returns the selection in sorted order.
func (s *Store) SelectedEmails() []string {
	out := make([]string, 0, len(s.selection))
	for email := range s.selection {
		out = append(out, email)
	}
	sort.Strings(out)
	return out
}

// AdvanceSort toggles axis once and returns the new mode. The company list is
// not touched.
func (s *Store) AdvanceSort(axis SortAxis) SortMode {
	s.sort = s.sort.Next(axis)
	return s.sort
}

func (s *Store) SetSortMode(mode SortMode) {
	s.sort = mode
}

func (s *Store) SortMode() SortMode { return s.sort }

func (s *Store) Logs() []types.LogGroup { return s.logs }

// Companies returns the base list in server order.
func (s *Store) Companies() []types.CompanyRecord { return s.companies }

func (s *Store) SortedCompanies() []IndexedCompany {
	return SortCompanies(s.companies, s.sort)
}

func (s *Store) Company(index int) (types.CompanyRecord, bool) {
	if index < 0 || index >= len(s.companies) {
		return types.CompanyRecord{}, false
	}
	return s.companies[index], true
}

func (s *Store) Cost() float64                          { return s.cost }
func (s *Store) Progress() types.ProgressState          { return s.progress }
func (s *Store) EmailProgress() types.EmailSendProgress { return s.emailProgress }
func (s *Store) EmailFeed() []types.EmailStatus         { return s.emailFeed }
func (s *Store) Phase() RunPhase                        { return s.phase }
func (s *Store) SetPhase(phase RunPhase)                { s.phase = phase }
func (s *Store) Connection() ConnectionStatus           { return s.connection }
func (s *Store) SetConnection(status ConnectionStatus)  { s.connection = status }
func (s *Store) Pending(action Action) bool             { return s.pending[action] }
func (s *Store) SetPending(action Action, pending bool) {
	if pending {
		s.pending[action] = true
		return
	}
	delete(s.pending, action)
}

// BeginRun opens a new generation for a fresh run: run data, cost, progress,
// selection and sort are reset and pushes are accepted again.
func (s *Store) BeginRun() uint64 {
	gen := s.generation.Add(1)
	s.sealed = false
	s.logs = nil
	s.companies = nil
	s.cost = 0
	s.progress = types.ProgressState{}
	s.selection = map[string]struct{}{}
	s.sort = SortNone
	return gen
}

// Reset empties every slice of state after a successful clear and seals the
// store so run-data pushes from the superseded run are dropped until the next
// BeginRun.
func (s *Store) Reset() uint64 {
	gen := s.generation.Add(1)
	s.sealed = true
	s.logs = nil
	s.companies = nil
	s.cost = 0
	s.progress = types.ProgressState{}
	s.emailProgress = types.EmailSendProgress{}
	s.emailFeed = nil
	s.selection = map[string]struct{}{}
	s.sort = SortNone
	s.phase = PhaseIdle
	return gen
}

type DropReason string

const (
	DropNone            DropReason = ""
	DropStaleGeneration DropReason = "stale generation"
	DropSealed          DropReason = "sealed after clear"
)

type Applied struct {
	Event       string
	Dropped     DropReason
	EmailStatus *types.EmailStatus
}

// Apply folds a push event into the store. Events stamped with an older
// generation are dropped; after a clear, run-data events are dropped until
// the next run starts. Unstamped events (generation 0) skip the generation
// check.
func (s *Store) Apply(event types.PushEvent) (Applied, error) {
	out := Applied{Event: event.Name}
	switch event.Name {
	case types.EventConnect:
		s.connection = ConnectionUp
		return out, nil
	case types.EventDisconnect:
		s.connection = ConnectionDown
		return out, nil
	case types.EventConnectError:
		s.connection = ConnectionFailed
		return out, nil
	}
	if event.Generation != 0 && event.Generation < s.Generation() {
		out.Dropped = DropStaleGeneration
		return out, nil
	}
	if s.sealed && types.IsRunDataEvent(event.Name) {
		out.Dropped = DropSealed
		return out, nil
	}

	switch event.Name {
	case types.EventLogsUpdate:
		groups, err := types.DecodeLogGroups(event.Data)
		if err != nil {
			return out, fmt.Errorf("decode %s: %w", event.Name, err)
		}
		s.logs = groups
	case types.EventCompaniesUpdate:
		records, err := types.DecodeCompanies(event.Data)
		if err != nil {
			return out, fmt.Errorf("decode %s: %w", event.Name, err)
		}
		s.companies = records
	case types.EventTokenUpdate:
		var update types.TokenUpdate
		if err := json.Unmarshal(event.Data, &update); err != nil {
			return out, fmt.Errorf("decode %s: %w", event.Name, err)
		}
		s.SetCost(update.TotalCost)
	case types.EventProgressUpdate:
		var progress types.ProgressState
		if err := json.Unmarshal(event.Data, &progress); err != nil {
			return out, fmt.Errorf("decode %s: %w", event.Name, err)
		}
		s.SetProgress(progress)
	case types.EventEmailProgress:
		var update types.EmailProgressEvent
		if err := json.Unmarshal(event.Data, &update); err != nil {
			return out, fmt.Errorf("decode %s: %w", event.Name, err)
		}
		if update.Progress != nil {
			s.emailProgress = *update.Progress
		}
		if update.Status != nil {
			status := *update.Status
			s.AppendEmailStatus(status)
			out.EmailStatus = &status
		}
	default:
		return out, fmt.Errorf("unknown event %q", event.Name)
	}
	return out, nil
}
