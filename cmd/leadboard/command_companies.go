package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"time"

	"gopkg.in/yaml.v3"

	"leadboard/internal/state"
	"leadboard/internal/types"
)

const defaultSnapshotTimeout = 10 * time.Second

type CompaniesCommand struct {
	stdout    io.Writer
	stderr    io.Writer
	newClient clientFactory
}

func NewCompaniesCommand(stdout, stderr io.Writer, newClient clientFactory) *CompaniesCommand {
	return &CompaniesCommand{
		stdout:    stdout,
		stderr:    stderr,
		newClient: newClient,
	}
}

func (c *CompaniesCommand) Run(args []string) error {
	fs := flag.NewFlagSet("companies", flag.ContinueOnError)
	fs.SetOutput(c.stderr)
	sortFlag := fs.String("sort", "none", "sort: none|ranking-desc|ranking-asc|email-present-first|email-missing-first")
	format := fs.String("format", formatTable, "output format: table|json|yaml")
	timeout := fs.Duration("timeout", defaultSnapshotTimeout, "how long to wait for the company list")
	if err := fs.Parse(args); err != nil {
		return err
	}
	mode, ok := state.ParseSortMode(*sortFlag)
	if !ok {
		return fmt.Errorf("invalid sort %q", *sortFlag)
	}
	resolvedFormat, err := resolveFormat(*format, formatTable, formatJSON, formatYAML)
	if err != nil {
		return err
	}

	client, err := c.newClient()
	if err != nil {
		return err
	}
	records, err := companySnapshot(client, *timeout)
	if err != nil {
		return err
	}

	store := state.New()
	store.ReplaceCompanies(records)
	store.SetSortMode(mode)
	sorted := store.SortedCompanies()
	ordered := make([]types.CompanyRecord, 0, len(sorted))
	for _, item := range sorted {
		ordered = append(ordered, item.Record)
	}

	switch resolvedFormat {
	case formatTable:
		printCompanies(c.stdout, ordered)
		return nil
	case formatYAML:
		return writeStructured(c.stdout, formatYAML, companiesYAML(ordered))
	default:
		return writeStructured(c.stdout, resolvedFormat, ordered)
	}
}

// companySnapshot waits for the first companies_update the server pushes on
// connect.
func companySnapshot(client commandClient, timeout time.Duration) ([]types.CompanyRecord, error) {
	ctx := context.Background()
	if timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}
	var records []types.CompanyRecord
	var decodeErr error
	filter := map[string]struct{}{types.EventCompaniesUpdate: {}}
	err := watchEvents(ctx, client, filter, 1, func(event types.PushEvent) error {
		records, decodeErr = types.DecodeCompanies(event.Data)
		return decodeErr
	})
	if err != nil {
		return nil, err
	}
	if records == nil {
		return nil, errors.New("no company list received from the server")
	}
	return records, nil
}

func printCompanies(out io.Writer, records []types.CompanyRecord) {
	writer := newTabWriter(out)
	fmt.Fprintln(writer, "RANK\tCOMPANY\tCEO\tEMAIL\tWEBSITE")
	for _, record := range records {
		fmt.Fprintf(writer, "%s\t%s\t%s\t%s\t%s\n",
			dash(record.Get(types.ColumnRanking)),
			dash(record.Name()),
			dash(record.Get(types.ColumnContactName)),
			dash(record.RawEmail()),
			dash(record.Get(types.ColumnWebsite)),
		)
	}
	_ = writer.Flush()
}

func dash(value string) string {
	if value == "" {
		return "-"
	}
	return value
}

// companiesYAML keeps each record's field order, which a map would lose.
func companiesYAML(records []types.CompanyRecord) *yaml.Node {
	seq := &yaml.Node{Kind: yaml.SequenceNode}
	for _, record := range records {
		mapping := &yaml.Node{Kind: yaml.MappingNode}
		for _, field := range record.Fields {
			mapping.Content = append(mapping.Content,
				&yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: field.Name},
				&yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: field.Value},
			)
		}
		seq.Content = append(seq.Content, mapping)
	}
	return seq
}
