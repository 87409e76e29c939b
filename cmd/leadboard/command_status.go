package main

import (
	"context"
	"flag"
	"fmt"
	"io"
)

type StatusCommand struct {
	stdout    io.Writer
	stderr    io.Writer
	newClient clientFactory
}

func NewStatusCommand(stdout, stderr io.Writer, newClient clientFactory) *StatusCommand {
	return &StatusCommand{
		stdout:    stdout,
		stderr:    stderr,
		newClient: newClient,
	}
}

func (c *StatusCommand) Run(args []string) error {
	fs := flag.NewFlagSet("status", flag.ContinueOnError)
	fs.SetOutput(c.stderr)
	if err := fs.Parse(args); err != nil {
		return err
	}

	client, err := c.newClient()
	if err != nil {
		return err
	}
	status, err := client.Status(context.Background())
	if err != nil {
		return err
	}
	state := "idle"
	if status.Running {
		state = "running"
	}
	fmt.Fprintf(c.stdout, "session %s: %s\n", client.SessionID(), state)
	return nil
}
