package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	leadclient "leadboard/internal/client"
)

type DownloadCommand struct {
	stdout    io.Writer
	stderr    io.Writer
	newClient clientFactory
}

func NewDownloadCommand(stdout, stderr io.Writer, newClient clientFactory) *DownloadCommand {
	return &DownloadCommand{
		stdout:    stdout,
		stderr:    stderr,
		newClient: newClient,
	}
}

func (c *DownloadCommand) Run(args []string) error {
	fs := flag.NewFlagSet("download", flag.ContinueOnError)
	fs.SetOutput(c.stderr)
	dir := fs.String("dir", "", "directory to save into (default from config)")
	output := fs.String("o", "", "file path to write instead of the server's file name")
	if err := fs.Parse(args); err != nil {
		return err
	}

	client, err := c.newClient()
	if err != nil {
		return err
	}
	download, err := client.DownloadFile(context.Background())
	if err != nil {
		if leadclient.IsNotReady(err) {
			fmt.Fprintln(c.stdout, "Please wait: the file is not ready yet.")
			return nil
		}
		return err
	}

	path := strings.TrimSpace(*output)
	if path == "" {
		target := strings.TrimSpace(*dir)
		if target == "" {
			target, err = client.DownloadDir()
			if err != nil {
				return err
			}
		}
		path = filepath.Join(target, download.Filename)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	if err := os.WriteFile(path, download.Data, 0o644); err != nil {
		return err
	}
	fmt.Fprintf(c.stdout, "saved %s (%d bytes)\n", path, len(download.Data))
	return nil
}
