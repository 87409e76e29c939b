package main

import (
	"bytes"
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"

	"leadboard/internal/dispatch"
)

type RunCommand struct {
	stdout    io.Writer
	stderr    io.Writer
	newClient clientFactory
}

func NewRunCommand(stdout, stderr io.Writer, newClient clientFactory) *RunCommand {
	return &RunCommand{
		stdout:    stdout,
		stderr:    stderr,
		newClient: newClient,
	}
}

func (c *RunCommand) Run(args []string) error {
	fs := flag.NewFlagSet("run", flag.ContinueOnError)
	fs.SetOutput(c.stderr)
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() < 1 {
		return errors.New("run requires a companies file")
	}
	upload, err := dispatch.InspectUpload(fs.Arg(0))
	if err != nil {
		return err
	}
	content, err := os.ReadFile(upload.Path)
	if err != nil {
		return err
	}

	client, err := c.newClient()
	if err != nil {
		return err
	}
	ack, err := client.GenerateLeads(context.Background(), upload.Name, bytes.NewReader(content))
	if err != nil {
		return err
	}
	fmt.Fprintf(c.stdout, "%s (%s, %d bytes)\n", ackText(ack.Message, "Agent started"), upload.Name, upload.Size)
	return nil
}

func ackText(message, fallback string) string {
	if message == "" {
		return fallback
	}
	return message
}
