package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	"leadboard/internal/types"
)

type WatchCommand struct {
	stdout    io.Writer
	stderr    io.Writer
	newClient clientFactory
}

func NewWatchCommand(stdout, stderr io.Writer, newClient clientFactory) *WatchCommand {
	return &WatchCommand{
		stdout:    stdout,
		stderr:    stderr,
		newClient: newClient,
	}
}

type watchLine struct {
	Event      string          `json:"event"`
	ReceivedAt time.Time       `json:"received_at"`
	Data       json.RawMessage `json:"data,omitempty"`
	Error      string          `json:"error,omitempty"`
}

func (c *WatchCommand) Run(args []string) error {
	fs := flag.NewFlagSet("watch", flag.ContinueOnError)
	fs.SetOutput(c.stderr)
	var events stringList
	fs.Var(&events, "event", "event name to print (repeatable, comma separated)")
	format := fs.String("format", "text", "output format: text|json")
	count := fs.Int("count", 0, "exit after this many events (0 = until interrupted)")
	timeout := fs.Duration("timeout", 0, "exit after this long (0 = no limit)")
	if err := fs.Parse(args); err != nil {
		return err
	}
	jsonOutput := false
	switch strings.ToLower(strings.TrimSpace(*format)) {
	case "", "text":
	case formatJSON:
		jsonOutput = true
	default:
		return fmt.Errorf("invalid format: must be text or json")
	}

	client, err := c.newClient()
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	if *timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, *timeout)
		defer cancel()
	}
	return watchEvents(ctx, client, eventFilter(events), *count, func(event types.PushEvent) error {
		return c.print(event, jsonOutput)
	})
}

func (c *WatchCommand) print(event types.PushEvent, jsonOutput bool) error {
	if jsonOutput {
		line := watchLine{Event: event.Name, ReceivedAt: event.ReceivedAt, Data: event.Data}
		if event.Err != nil {
			line.Error = event.Err.Error()
		}
		return json.NewEncoder(c.stdout).Encode(line)
	}
	text := string(event.Data)
	if event.Err != nil {
		text = event.Err.Error()
	}
	_, err := fmt.Fprintf(c.stdout, "%s %s %s\n", event.ReceivedAt.Format("15:04:05"), event.Name, text)
	return err
}

func eventFilter(values []string) map[string]struct{} {
	out := map[string]struct{}{}
	for _, raw := range values {
		for _, part := range strings.Split(raw, ",") {
			if name := strings.TrimSpace(part); name != "" {
				out[name] = struct{}{}
			}
		}
	}
	return out
}

// watchEvents feeds matching push events to emit until ctx ends, emit fails,
// or limit events were emitted. The channel reader and the consumer run in
// one errgroup so either side ending stops the other.
func watchEvents(ctx context.Context, client commandClient, filter map[string]struct{}, limit int, emit func(types.PushEvent) error) error {
	g, ctx := errgroup.WithContext(ctx)
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	events := make(chan types.PushEvent, 64)

	g.Go(func() error {
		defer close(events)
		return client.Watch(ctx, func(event types.PushEvent) {
			if len(filter) > 0 {
				if _, ok := filter[event.Name]; !ok {
					return
				}
			}
			select {
			case events <- event:
			case <-ctx.Done():
			}
		})
	})
	g.Go(func() error {
		emitted := 0
		for event := range events {
			if err := emit(event); err != nil {
				cancel()
				return err
			}
			emitted++
			if limit > 0 && emitted >= limit {
				cancel()
				return nil
			}
		}
		return nil
	})
	return g.Wait()
}
