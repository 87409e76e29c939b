package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"
	"text/tabwriter"

	toml "github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"
)

const (
	formatTable = "table"
	formatJSON  = "json"
	formatTOML  = "toml"
	formatYAML  = "yaml"
)

type stringList []string

func (s *stringList) String() string {
	return strings.Join(*s, ",")
}

func (s *stringList) Set(value string) error {
	*s = append(*s, value)
	return nil
}

func exitOnErr(label string, err error, stderr io.Writer) {
	if err == nil {
		return
	}
	fmt.Fprintf(stderr, "%s error: %v\n", label, err)
	os.Exit(1)
}

func resolveFormat(raw string, allowed ...string) (string, error) {
	format := strings.ToLower(strings.TrimSpace(raw))
	if format == "yml" {
		format = formatYAML
	}
	for _, candidate := range allowed {
		if format == candidate {
			return format, nil
		}
	}
	return "", fmt.Errorf("invalid format: must be %s", strings.Join(allowed, ", "))
}

// writeStructured renders payload as json, toml or yaml.
func writeStructured(out io.Writer, format string, payload any) error {
	switch format {
	case formatJSON:
		encoder := json.NewEncoder(out)
		encoder.SetIndent("", "  ")
		return encoder.Encode(payload)
	case formatTOML:
		data, err := toml.Marshal(payload)
		if err != nil {
			return err
		}
		return writeWithNewline(out, data)
	case formatYAML:
		data, err := yaml.Marshal(payload)
		if err != nil {
			return err
		}
		return writeWithNewline(out, data)
	default:
		return fmt.Errorf("unsupported format %q", format)
	}
}

func writeWithNewline(out io.Writer, data []byte) error {
	if len(data) == 0 || data[len(data)-1] != '\n' {
		data = append(data, '\n')
	}
	_, err := out.Write(data)
	return err
}

func newTabWriter(out io.Writer) *tabwriter.Writer {
	return tabwriter.NewWriter(out, 0, 8, 2, ' ', 0)
}
