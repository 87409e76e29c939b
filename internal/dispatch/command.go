package dispatch

import (
	"context"

	"leadboard/internal/state"
)

// Command is one outbound request prepared by the dispatcher. Execute is
// safe to run off the event loop; its Result must be handed back to
// Dispatcher.Complete on the loop.
type Command struct {
	ID     string
	Action state.Action
	run    func(ctx context.Context) (any, error)
}

type Result struct {
	CommandID string
	Action    state.Action
	Value     any
	Err       error
}

func (c *Command) Execute(ctx context.Context) Result {
	if ctx == nil {
		ctx = context.Background()
	}
	value, err := c.run(ctx)
	return Result{CommandID: c.ID, Action: c.Action, Value: value, Err: err}
}

type Severity int

const (
	SeverityInfo Severity = iota
	SeveritySuccess
	SeverityWarning
	SeverityError
)

func (s Severity) String() string {
	switch s {
	case SeveritySuccess:
		return "success"
	case SeverityWarning:
		return "warning"
	case SeverityError:
		return "error"
	default:
		return "info"
	}
}

// Notice is a non-blocking user-visible message.
type Notice struct {
	Severity Severity
	Title    string
	Message  string
}

func (n Notice) Empty() bool { return n.Title == "" && n.Message == "" }
