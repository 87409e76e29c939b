package channel

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"leadboard/internal/logging"
	"leadboard/internal/types"
)

// Frame is one decoded message from the push transport.
type Frame struct {
	Event string
	Data  json.RawMessage
}

// Conn is an established push connection. Next blocks until the next frame
// arrives or the connection ends.
type Conn interface {
	Next() (Frame, error)
	Close() error
}

type Dialer interface {
	Dial(ctx context.Context, sessionID string) (Conn, error)
}

type Handler func(types.PushEvent)

// Notifier receives transport events (connect, disconnect, connect_error)
// for user-visible notices. It runs off the reader goroutine.
type Notifier func(types.PushEvent)

type Option func(*Manager)

func WithLogger(logger logging.Logger) Option {
	return func(m *Manager) {
		if logger != nil {
			m.logger = logger
		}
	}
}

// WithGenerationSource stamps every event with the value returned by gen at
// the moment the frame was read.
func WithGenerationSource(gen func() uint64) Option {
	return func(m *Manager) {
		m.generation = gen
	}
}

// WithReconnect redials after delay whenever the connection drops or the
// dial fails. Zero disables reconnection.
func WithReconnect(delay time.Duration) Option {
	return func(m *Manager) {
		m.reconnectDelay = delay
	}
}

func WithNotifier(notify Notifier) Option {
	return func(m *Manager) {
		m.notifier = notify
	}
}

type handlerEntry struct {
	id int
	fn Handler
}

// Manager owns the single push channel of the process and fans received
// events out to registered handlers. Handlers live on the manager, so a
// reconnect never registers them twice.
type Manager struct {
	dialer         Dialer
	logger         logging.Logger
	generation     func() uint64
	reconnectDelay time.Duration
	notifier       Notifier
	now            func() time.Time

	mu       sync.Mutex
	handlers map[string][]handlerEntry
	any      []handlerEntry
	nextID   int
	active   *Channel
}

func NewManager(dialer Dialer, opts ...Option) *Manager {
	m := &Manager{
		dialer:   dialer,
		logger:   logging.Nop(),
		now:      time.Now,
		handlers: map[string][]handlerEntry{},
	}
	for _, opt := range opts {
		opt(m)
	}
	m.logger = logging.Component(m.logger, "channel")
	return m
}

// On registers h for event and returns a function removing it.
func (m *Manager) On(event string, h Handler) func() {
	if h == nil {
		return func() {}
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.nextID++
	id := m.nextID
	m.handlers[event] = append(m.handlers[event], handlerEntry{id: id, fn: h})
	return func() {
		m.mu.Lock()
		defer m.mu.Unlock()
		m.handlers[event] = removeHandler(m.handlers[event], id)
	}
}

// OnAny registers h for every event, push and transport alike.
func (m *Manager) OnAny(h Handler) func() {
	if h == nil {
		return func() {}
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.nextID++
	id := m.nextID
	m.any = append(m.any, handlerEntry{id: id, fn: h})
	return func() {
		m.mu.Lock()
		defer m.mu.Unlock()
		m.any = removeHandler(m.any, id)
	}
}

func removeHandler(entries []handlerEntry, id int) []handlerEntry {
	out := entries[:0:0]
	for _, entry := range entries {
		if entry.id != id {
			out = append(out, entry)
		}
	}
	return out
}

// Connect opens the push channel for sessionID. If a channel is already
// active it is returned unchanged. Failures are reported as connect_error
// events, never as a return value.
func (m *Manager) Connect(ctx context.Context, sessionID string) *Channel {
	m.mu.Lock()
	if m.active != nil {
		active := m.active
		m.mu.Unlock()
		return active
	}
	ctx, cancel := context.WithCancel(ctx)
	ch := &Channel{
		sessionID: sessionID,
		cancel:    cancel,
		done:      make(chan struct{}),
	}
	m.active = ch
	m.mu.Unlock()

	go m.run(ctx, ch)
	return ch
}

// Active returns the open channel, or nil.
func (m *Manager) Active() *Channel {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.active
}

// Close shuts the active channel down and waits for its reader to exit.
func (m *Manager) Close() {
	if ch := m.Active(); ch != nil {
		ch.Close()
	}
}

func (m *Manager) run(ctx context.Context, ch *Channel) {
	defer close(ch.done)
	defer m.release(ch)

	for {
		conn, err := m.dialer.Dial(ctx, ch.sessionID)
		if err != nil {
			if ctx.Err() != nil {
				return
			}
			m.logger.Warn("connect failed", logging.F("session", ch.sessionID), logging.F("err", err))
			m.emit(types.PushEvent{Name: types.EventConnectError, Err: err, ReceivedAt: m.now()})
		} else {
			m.logger.Info("connected", logging.F("session", ch.sessionID))
			m.emit(types.PushEvent{Name: types.EventConnect, ReceivedAt: m.now()})
			err = m.pump(ctx, conn)
			m.logger.Info("disconnected", logging.F("session", ch.sessionID), logging.F("err", err))
			m.emit(types.PushEvent{Name: types.EventDisconnect, Err: err, ReceivedAt: m.now()})
			if ctx.Err() != nil {
				return
			}
		}
		if m.reconnectDelay <= 0 {
			return
		}
		timer := time.NewTimer(m.reconnectDelay)
		select {
		case <-ctx.Done():
			timer.Stop()
			return
		case <-timer.C:
		}
	}
}

func (m *Manager) pump(ctx context.Context, conn Conn) error {
	stop := make(chan struct{})
	defer close(stop)
	go func() {
		select {
		case <-ctx.Done():
			_ = conn.Close()
		case <-stop:
		}
	}()
	defer conn.Close()

	for {
		frame, err := conn.Next()
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			return err
		}
		if frame.Event == "" || types.IsTransportEvent(frame.Event) {
			m.logger.Debug("frame ignored", logging.F("event", frame.Event))
			continue
		}
		m.emit(types.PushEvent{
			Name:       frame.Event,
			Data:       frame.Data,
			Generation: m.currentGeneration(),
			ReceivedAt: m.now(),
		})
	}
}

func (m *Manager) currentGeneration() uint64 {
	if m.generation == nil {
		return 0
	}
	return m.generation()
}

// emit invokes handlers synchronously on the reader goroutine so they observe
// events in receipt order.
func (m *Manager) emit(event types.PushEvent) {
	m.mu.Lock()
	named := append([]handlerEntry(nil), m.handlers[event.Name]...)
	all := append([]handlerEntry(nil), m.any...)
	notify := m.notifier
	m.mu.Unlock()

	for _, entry := range named {
		m.invoke(entry.fn, event)
	}
	for _, entry := range all {
		m.invoke(entry.fn, event)
	}
	if notify != nil && types.IsTransportEvent(event.Name) {
		go m.safeNotify(notify, event)
	}
}

func (m *Manager) invoke(fn Handler, event types.PushEvent) {
	defer func() {
		if r := recover(); r != nil {
			m.logger.Error("handler panic", logging.F("event", event.Name), logging.F("panic", r))
		}
	}()
	fn(event)
}

func (m *Manager) safeNotify(notify Notifier, event types.PushEvent) {
	defer func() {
		if r := recover(); r != nil {
			m.logger.Warn("notifier panic", logging.F("event", event.Name), logging.F("panic", r))
		}
	}()
	notify(event)
}

func (m *Manager) release(ch *Channel) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.active == ch {
		m.active = nil
	}
}

type Channel struct {
	sessionID string
	cancel    context.CancelFunc
	done      chan struct{}
}

func (c *Channel) SessionID() string { return c.sessionID }

// Done is closed once the channel has stopped for good.
func (c *Channel) Done() <-chan struct{} { return c.done }

func (c *Channel) Close() {
	if c == nil {
		return
	}
	c.cancel()
	<-c.done
}
