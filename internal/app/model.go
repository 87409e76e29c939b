package app

import (
	"context"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"leadboard/internal/channel"
	"leadboard/internal/client"
	"leadboard/internal/dispatch"
	"leadboard/internal/logging"
	"leadboard/internal/projector"
	"leadboard/internal/state"
	"leadboard/internal/store"
	"leadboard/internal/types"
)

const (
	tickInterval         = 100 * time.Millisecond
	eventBuffer          = 256
	maxEventsPerTick     = 64
	defaultToastDuration = 3 * time.Second
	defaultTimeout       = 30 * time.Second
	logPanelHeight       = 8
	feedPanelHeight      = 4
	minTableHeight       = 3
)

type uiMode int

const (
	uiModeNormal uiMode = iota
	uiModeConfirm
	uiModePrompt
	uiModeDetail
	uiModeEmail
)

type confirmIntent int

const (
	confirmNone confirmIntent = iota
	confirmStart
	confirmClear
	confirmSend
)

type promptIntent int

const (
	promptNone promptIntent = iota
	promptFile
	promptRankRange
)

// Options wires the dashboard to its backend.
type Options struct {
	API            dispatch.API
	Dialer         channel.Dialer
	SessionID      string
	DownloadDir    string
	ReconnectDelay time.Duration
	RequestTimeout time.Duration
	MarkdownStyle  string
	ToastDuration  time.Duration
	OSC52          bool
	Logger         logging.Logger
	Now            func() time.Time
	// StateStore remembers sort mode, email mode and the last upload
	// between runs. Nil disables it.
	StateStore store.AppStateStore
}

type Model struct {
	store      *state.Store
	dispatcher *dispatch.Dispatcher
	manager    *channel.Manager
	stream     *EventStream
	channel    *channel.Channel
	logger     logging.Logger
	now        func() time.Time

	sessionID      string
	downloadDir    string
	requestTimeout time.Duration
	markdownStyle  string
	osc52          bool
	appState       store.AppStateStore
	lastUpload     string

	mode          uiMode
	confirm       *ConfirmController
	confirmIntent confirmIntent
	prompt        *PromptController
	promptIntent  promptIntent
	upload        dispatch.Upload
	rankRange     *dispatch.RankRange
	emailMode     string

	cursor      int
	tableOffset int
	logExpanded int
	logs        viewport.Model
	detail      projector.DetailView
	detailView  viewport.Model
	email       *client.EmailContent
	loader      spinner.Model

	status        string
	toastText     string
	toastLevel    toastLevel
	toastUntil    time.Time
	toastDuration time.Duration
	width         int
	height        int
}

func NewModel(opts Options) *Model {
	now := opts.Now
	if now == nil {
		now = time.Now
	}
	logger := opts.Logger
	if logger == nil {
		logger = logging.Nop()
	}
	toastDuration := opts.ToastDuration
	if toastDuration <= 0 {
		toastDuration = defaultToastDuration
	}
	timeout := opts.RequestTimeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}

	st := state.New()
	stream := NewEventStream(eventBuffer, maxEventsPerTick)
	manager := channel.NewManager(opts.Dialer,
		channel.WithLogger(logger),
		channel.WithGenerationSource(st.Generation),
		channel.WithReconnect(opts.ReconnectDelay),
		channel.WithNotifier(stream.Notify),
	)
	manager.OnAny(stream.Handle)

	loader := spinner.New()
	loader.Spinner = spinner.Line
	loader.Style = lipgloss.NewStyle()

	m := &Model{
		store:          st,
		dispatcher:     dispatch.New(opts.API, st, dispatch.WithLogger(logger), dispatch.WithClock(now)),
		manager:        manager,
		stream:         stream,
		logger:         logging.Component(logger, "ui"),
		now:            now,
		sessionID:      opts.SessionID,
		downloadDir:    opts.DownloadDir,
		requestTimeout: timeout,
		markdownStyle:  opts.MarkdownStyle,
		osc52:          opts.OSC52,
		confirm:        NewConfirmController(),
		prompt:         NewPromptController(40),
		emailMode:      client.EmailModeSend,
		logExpanded:    -1,
		logs:           viewport.New(40, logPanelHeight),
		detailView:     viewport.New(40, 10),
		loader:         loader,
		toastDuration:  toastDuration,
		appState:       opts.StateStore,
	}
	m.restoreAppState()
	return m
}

func (m *Model) restoreAppState() {
	if m.appState == nil {
		return
	}
	saved, err := m.appState.Load(context.Background())
	if err != nil {
		m.logger.Warn("app state not loaded", logField("err", err))
		return
	}
	if mode, ok := state.ParseSortMode(saved.SortMode); ok {
		m.store.SetSortMode(mode)
	}
	for _, mode := range emailModes {
		if mode == saved.EmailMode {
			m.emailMode = mode
		}
	}
	m.lastUpload = saved.LastUploadPath
}

func (m *Model) saveAppState() {
	if m.appState == nil {
		return
	}
	err := m.appState.Save(context.Background(), &types.AppState{
		SortMode:       m.store.SortMode().String(),
		EmailMode:      m.emailMode,
		LastUploadPath: m.lastUpload,
	})
	if err != nil {
		m.logger.Warn("app state not saved", logField("err", err))
	}
}

// Run opens the dashboard and blocks until the user quits.
func Run(opts Options) error {
	model := NewModel(opts)
	defer model.Close()
	p := tea.NewProgram(model, tea.WithAltScreen(), tea.WithMouseCellMotion())
	_, err := p.Run()
	return err
}

func (m *Model) Init() tea.Cmd {
	m.channel = m.manager.Connect(context.Background(), m.sessionID)
	m.logger.Info("dashboard started", logField("session", m.sessionID))
	return tea.Batch(m.issue(m.dispatcher.RefreshStatus()), tickCmd())
}

// Close stops the push channel.
func (m *Model) Close() {
	m.stream.Close()
	m.manager.Close()
}

func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.resize(msg.Width, msg.Height)
		return m, nil
	case tickMsg:
		m.consumeStream()
		m.reconcileCompletion()
		if m.anyPending() {
			m.loader, _ = m.loader.Update(spinner.TickMsg{Time: time.Time(msg), ID: m.loader.ID()})
		}
		return m, tickCmd()
	case commandResultMsg:
		return m, m.handleResult(msg.result)
	case tea.MouseMsg:
		return m, m.handleMouse(msg)
	case tea.KeyMsg:
		return m, m.handleKey(msg)
	}
	if m.mode == uiModePrompt {
		_, _, cmd := m.prompt.Update(msg)
		return m, cmd
	}
	return m, nil
}

func (m *Model) resize(width, height int) {
	m.width = width
	m.height = height
	m.logs.Width = max(20, width)
	m.logs.Height = logPanelHeight
	m.detailView.Width = max(20, width-4)
	m.detailView.Height = max(3, height-4)
	m.prompt.SetWidth(min(60, max(10, width-8)))
}

// consumeStream applies queued push events to the store in receipt order.
func (m *Model) consumeStream() {
	for _, event := range m.stream.ConsumeTick() {
		applied, err := m.store.Apply(event)
		if err != nil {
			m.logger.Warn("push event rejected", logField("event", event.Name), logField("err", err))
			continue
		}
		if applied.Dropped != state.DropNone {
			m.logger.Debug("push event dropped", logField("event", event.Name), logField("reason", string(applied.Dropped)))
			continue
		}
		if status := applied.EmailStatus; status != nil && status.EndOfSend() {
			m.showInfoToast("Process Complete: " + status.Message)
		}
	}
	for _, notice := range m.stream.ConsumeNotices() {
		m.showTransportNotice(notice.Name, notice.Err)
	}
	m.clampCursor()
	m.refreshLogs()
}

func (m *Model) reconcileCompletion() {
	model := projector.Project(m.store, m.timerState())
	if !model.Has(projector.EventRunCompleted) {
		return
	}
	if m.dispatcher.HandleRunCompleted() {
		m.showInfoToast("Processing complete")
	}
}

func (m *Model) timerState() projector.TimerState {
	timer := m.dispatcher.Timer()
	return projector.TimerState{Elapsed: timer.Elapsed(), Running: timer.Running()}
}

func (m *Model) anyPending() bool {
	for _, action := range []state.Action{
		state.ActionStart, state.ActionStop, state.ActionClear, state.ActionSendEmails,
		state.ActionDownload, state.ActionViewEmail, state.ActionStatus,
	} {
		if m.store.Pending(action) {
			return true
		}
	}
	return false
}

func (m *Model) issue(cmd *dispatch.Command, err error) tea.Cmd {
	if err != nil {
		m.showDispatchError(err)
		return nil
	}
	timeout := m.requestTimeout
	if cmd.Action == state.ActionStart || cmd.Action == state.ActionDownload {
		// Uploads and downloads are bounded by the client's transfer timeout.
		timeout = 0
	}
	return executeCmd(cmd, timeout)
}

func (m *Model) handleResult(result dispatch.Result) tea.Cmd {
	out := m.dispatcher.Complete(result)
	if out.Stale {
		m.logger.Debug("stale result ignored", logField("action", string(result.Action)))
		return nil
	}
	m.showNotice(out.Notice)
	if out.Email != nil {
		m.openEmail(out.Email)
	}
	if out.SavedPath != "" {
		m.status = "saved " + out.SavedPath
	}
	m.clampCursor()
	m.refreshLogs()
	return nil
}

func logField(key string, value any) logging.Field {
	return logging.F(key, value)
}
