package types

import (
	"encoding/json"
	"time"
)

const (
	EventLogsUpdate      = "logs_update"
	EventCompaniesUpdate = "companies_update"
	EventTokenUpdate     = "token_update"
	EventProgressUpdate  = "progress_update"
	EventEmailProgress   = "email_progress"

	EventConnect      = "connect"
	EventDisconnect   = "disconnect"
	EventConnectError = "connect_error"
)

// PushEvents lists the server push events in the order they are documented.
var PushEvents = []string{
	EventLogsUpdate,
	EventCompaniesUpdate,
	EventTokenUpdate,
	EventProgressUpdate,
	EventEmailProgress,
}

type PushEvent struct {
	Name       string
	Data       json.RawMessage
	Generation uint64
	ReceivedAt time.Time
	Err        error
}

func IsTransportEvent(name string) bool {
	switch name {
	case EventConnect, EventDisconnect, EventConnectError:
		return true
	}
	return false
}

// IsRunDataEvent reports whether the event carries a slice of the current
// run's data (as opposed to bulk-email or transport events).
func IsRunDataEvent(name string) bool {
	switch name {
	case EventLogsUpdate, EventCompaniesUpdate, EventTokenUpdate, EventProgressUpdate:
		return true
	}
	return false
}
