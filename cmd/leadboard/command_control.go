package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
)

type StopCommand struct {
	stdout    io.Writer
	stderr    io.Writer
	newClient clientFactory
}

func NewStopCommand(stdout, stderr io.Writer, newClient clientFactory) *StopCommand {
	return &StopCommand{
		stdout:    stdout,
		stderr:    stderr,
		newClient: newClient,
	}
}

func (c *StopCommand) Run(args []string) error {
	fs := flag.NewFlagSet("stop", flag.ContinueOnError)
	fs.SetOutput(c.stderr)
	if err := fs.Parse(args); err != nil {
		return err
	}
	client, err := c.newClient()
	if err != nil {
		return err
	}
	ack, err := client.StopAgent(context.Background())
	if err != nil {
		return err
	}
	fmt.Fprintln(c.stdout, ackText(ack.Message, "Agent stopping"))
	return nil
}

type ClearCommand struct {
	stdout    io.Writer
	stderr    io.Writer
	newClient clientFactory
}

func NewClearCommand(stdout, stderr io.Writer, newClient clientFactory) *ClearCommand {
	return &ClearCommand{
		stdout:    stdout,
		stderr:    stderr,
		newClient: newClient,
	}
}

func (c *ClearCommand) Run(args []string) error {
	fs := flag.NewFlagSet("clear", flag.ContinueOnError)
	fs.SetOutput(c.stderr)
	yes := fs.Bool("yes", false, "confirm clearing all data")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if !*yes {
		return errors.New("clear removes all logs, companies and cost; pass --yes to confirm")
	}
	client, err := c.newClient()
	if err != nil {
		return err
	}
	ack, err := client.ClearData(context.Background())
	if err != nil {
		return err
	}
	fmt.Fprintln(c.stdout, ackText(ack.Message, "All data has been cleared."))
	return nil
}
