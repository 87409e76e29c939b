package main

import (
	"fmt"
	"os"
)

const usageText = `leadboard drives the lead generation agent from the terminal.

Usage:
  leadboard <command> [flags]

Commands:
  ui         run the live dashboard
  status     show whether the agent is running
  run        upload a companies file and start the agent
  stop       stop the running agent
  clear      clear all data for the session
  send       send, draft or follow up on emails
  download   save the enriched companies file
  email      show the saved email for an address
  watch      print push events as they arrive
  companies  print the current company list
  config     print configuration (effective or defaults)
  help       show help

Flags:
  -h, --help   show help

Environment:
  LEADBOARD_SESSION_ID   session id to use instead of the stored one

Examples:
  leadboard ui
  leadboard run companies.csv
  leadboard send --mode draft --min 8 --max 10
  leadboard companies --sort ranking-desc --format yaml
  leadboard watch --event progress_update
`

func printUsage() {
	fmt.Fprint(os.Stderr, usageText)
}

func main() {
	args := os.Args[1:]
	if len(args) == 0 {
		printUsage()
		return
	}

	wiring := defaultCommandWiring(os.Stdout, os.Stderr)
	commands := buildCommands(wiring)

	switch args[0] {
	case "-h", "--help", "help":
		printUsage()
		return
	}

	runner, ok := commands[args[0]]
	if !ok {
		fmt.Fprintf(os.Stderr, "unknown command: %s\n\n", args[0])
		printUsage()
		os.Exit(2)
	}
	exitOnErr(args[0], runner.Run(args[1:]), wiring.stderr)
}
