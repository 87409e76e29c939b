package types

import (
	"encoding/json"
	"strings"
)

type LogLevel string

const (
	LogLevelInfo    LogLevel = "INFO"
	LogLevelWarning LogLevel = "WARNING"
	LogLevelError   LogLevel = "ERROR"
	LogLevelOther   LogLevel = "OTHER"
)

type LogEntry struct {
	WorkerID  string `json:"agent,omitempty"`
	Timestamp string `json:"timestamp"`
	Level     string `json:"level"`
	Task      string `json:"task"`
}

func (e LogEntry) Severity() LogLevel {
	switch strings.ToUpper(strings.TrimSpace(e.Level)) {
	case "INFO":
		return LogLevelInfo
	case "WARNING", "WARN":
		return LogLevelWarning
	case "ERROR":
		return LogLevelError
	default:
		return LogLevelOther
	}
}

type LogGroup struct {
	WorkerID string
	Entries  []LogEntry
}

// DecodeLogGroups decodes a logs_update payload (worker id -> entries),
// keeping the workers in the order the server sent them.
func DecodeLogGroups(data []byte) ([]LogGroup, error) {
	groups := []LogGroup{}
	err := walkObject(data, func(worker string, raw json.RawMessage) error {
		var entries []LogEntry
		if err := json.Unmarshal(raw, &entries); err != nil {
			return err
		}
		for i := range entries {
			if strings.TrimSpace(entries[i].WorkerID) == "" {
				entries[i].WorkerID = worker
			}
		}
		groups = append(groups, LogGroup{WorkerID: worker, Entries: entries})
		return nil
	})
	if err != nil {
		return nil, err
	}
	return groups, nil
}

func CloneLogGroups(in []LogGroup) []LogGroup {
	if in == nil {
		return nil
	}
	out := make([]LogGroup, len(in))
	for i, group := range in {
		out[i] = LogGroup{
			WorkerID: group.WorkerID,
			Entries:  append([]LogEntry(nil), group.Entries...),
		}
	}
	return out
}
