package app

import (
	"context"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"leadboard/internal/dispatch"
)

func executeCmd(cmd *dispatch.Command, timeout time.Duration) tea.Cmd {
	if cmd == nil {
		return nil
	}
	return func() tea.Msg {
		ctx := context.Background()
		if timeout > 0 {
			var cancel context.CancelFunc
			ctx, cancel = context.WithTimeout(ctx, timeout)
			defer cancel()
		}
		return commandResultMsg{result: cmd.Execute(ctx)}
	}
}

func tickCmd() tea.Cmd {
	return tea.Tick(tickInterval, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}
