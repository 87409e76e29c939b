package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"strings"

	leadclient "leadboard/internal/client"
	"leadboard/internal/dispatch"
	"leadboard/internal/types"
)

type SendCommand struct {
	stdout    io.Writer
	stderr    io.Writer
	newClient clientFactory
}

func NewSendCommand(stdout, stderr io.Writer, newClient clientFactory) *SendCommand {
	return &SendCommand{
		stdout:    stdout,
		stderr:    stderr,
		newClient: newClient,
	}
}

func (c *SendCommand) Run(args []string) error {
	fs := flag.NewFlagSet("send", flag.ContinueOnError)
	fs.SetOutput(c.stderr)
	mode := fs.String("mode", leadclient.EmailModeSend, "email mode: send|draft|follow-up")
	minRank := fs.Int("min", 0, "lowest ranking to include (1-10)")
	maxRank := fs.Int("max", 0, "highest ranking to include (1-10)")
	var emails stringList
	fs.Var(&emails, "email", "address to include (repeatable, comma separated)")
	if err := fs.Parse(args); err != nil {
		return err
	}

	req, err := buildSendRequest(*mode, emails, *minRank, *maxRank)
	if err != nil {
		return err
	}
	client, err := c.newClient()
	if err != nil {
		return err
	}
	ack, err := client.SendBulkEmails(context.Background(), req)
	if err != nil {
		return err
	}
	fmt.Fprintln(c.stdout, ackText(ack.Message, "Email process started"))
	return nil
}

// buildSendRequest targets the listed addresses when any are given and the
// rank range otherwise.
func buildSendRequest(mode string, emails []string, minRank, maxRank int) (leadclient.SendBulkEmailsRequest, error) {
	req := leadclient.SendBulkEmailsRequest{}
	switch strings.ToLower(strings.TrimSpace(mode)) {
	case "", leadclient.EmailModeSend:
		req.Mode = leadclient.EmailModeSend
	case leadclient.EmailModeDraft:
		req.Mode = leadclient.EmailModeDraft
	case leadclient.EmailModeFollowUp, "followup", "follow_up":
		req.Mode = leadclient.EmailModeFollowUp
	default:
		return req, fmt.Errorf("unknown mode %q", mode)
	}

	seen := map[string]struct{}{}
	for _, raw := range emails {
		for _, part := range strings.Split(raw, ",") {
			email := types.NormalizeEmail(part)
			if email == "" {
				continue
			}
			if _, ok := seen[email]; ok {
				continue
			}
			seen[email] = struct{}{}
			req.SelectedEmails = append(req.SelectedEmails, email)
		}
	}
	if len(req.SelectedEmails) > 0 {
		if minRank != 0 || maxRank != 0 {
			return req, errors.New("use either --email or --min/--max, not both")
		}
		return req, nil
	}
	if minRank == 0 && maxRank == 0 {
		return req, errors.New("send requires --email or a --min/--max rank range")
	}
	if minRank == 0 {
		minRank = dispatch.RankMin
	}
	if maxRank == 0 {
		maxRank = dispatch.RankMax
	}
	rng := dispatch.RankRange{Min: minRank, Max: maxRank}
	if err := rng.Validate(); err != nil {
		return req, err
	}
	req.RankMin = &rng.Min
	req.RankMax = &rng.Max
	return req, nil
}
