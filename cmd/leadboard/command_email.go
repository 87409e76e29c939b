package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
)

type EmailCommand struct {
	stdout    io.Writer
	stderr    io.Writer
	newClient clientFactory
}

func NewEmailCommand(stdout, stderr io.Writer, newClient clientFactory) *EmailCommand {
	return &EmailCommand{
		stdout:    stdout,
		stderr:    stderr,
		newClient: newClient,
	}
}

func (c *EmailCommand) Run(args []string) error {
	fs := flag.NewFlagSet("email", flag.ContinueOnError)
	fs.SetOutput(c.stderr)
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() < 1 {
		return errors.New("email requires an address")
	}

	client, err := c.newClient()
	if err != nil {
		return err
	}
	content, err := client.GetEmailContent(context.Background(), fs.Arg(0))
	if err != nil {
		return err
	}
	if !content.Found {
		fmt.Fprintf(c.stdout, "no saved email for %s\n", fs.Arg(0))
		return nil
	}
	fmt.Fprintf(c.stdout, "To: %s\nSubject: %s\n\n%s\n", content.Email, content.Subject, content.Body)
	return nil
}
