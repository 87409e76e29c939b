package main

import (
	"io"
	"os"
)

type commandRunner interface {
	Run(args []string) error
}

type commandWiring struct {
	stdout             io.Writer
	stderr             io.Writer
	newClient          clientFactory
	configureUILogging uiLoggingFactory
}

func defaultCommandWiring(stdout, stderr io.Writer) commandWiring {
	if stdout == nil {
		stdout = os.Stdout
	}
	if stderr == nil {
		stderr = os.Stderr
	}
	return commandWiring{
		stdout:             stdout,
		stderr:             stderr,
		newClient:          newLeadboardClient,
		configureUILogging: configureUILogging,
	}
}

func buildCommands(wiring commandWiring) map[string]commandRunner {
	return map[string]commandRunner{
		"ui":        NewUICommand(wiring.stderr, wiring.newClient, wiring.configureUILogging),
		"status":    NewStatusCommand(wiring.stdout, wiring.stderr, wiring.newClient),
		"run":       NewRunCommand(wiring.stdout, wiring.stderr, wiring.newClient),
		"stop":      NewStopCommand(wiring.stdout, wiring.stderr, wiring.newClient),
		"clear":     NewClearCommand(wiring.stdout, wiring.stderr, wiring.newClient),
		"send":      NewSendCommand(wiring.stdout, wiring.stderr, wiring.newClient),
		"download":  NewDownloadCommand(wiring.stdout, wiring.stderr, wiring.newClient),
		"email":     NewEmailCommand(wiring.stdout, wiring.stderr, wiring.newClient),
		"watch":     NewWatchCommand(wiring.stdout, wiring.stderr, wiring.newClient),
		"companies": NewCompaniesCommand(wiring.stdout, wiring.stderr, wiring.newClient),
		"config":    NewConfigCommand(wiring.stdout, wiring.stderr),
	}
}
