package cli

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
	"testing"

	"gopkg.in/yaml.v3"
)

func TestTextFormatter(t *testing.T) {
	formatter := &TextFormatter{}
	buf := &bytes.Buffer{}

	if err := formatter.FormatTo(buf, "3 experiments"); err != nil {
		t.Fatalf("FormatTo() error = %v", err)
	}
	if buf.String() != "3 experiments\n" {
		t.Errorf("FormatTo() = %q", buf.String())
	}
}

func TestJSONFormatter(t *testing.T) {
	tests := []struct {
		name   string
		data   any
		indent bool
	}{
		{name: "string", data: "test"},
		{name: "map with indent", data: map[string]float64{"lr": 0.01}, indent: true},
		{name: "issues", data: []Issue{{Line: 3, Message: "unknown section"}}, indent: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			formatter := &JSONFormatter{Indent: tt.indent}
			output, err := formatter.Format(tt.data)
			if err != nil {
				t.Fatalf("Format() error = %v", err)
			}

			var result any
			if err := json.Unmarshal(output, &result); err != nil {
				t.Errorf("Format() produced invalid JSON: %v", err)
			}
		})
	}
}

func TestYAMLFormatterStream(t *testing.T) {
	formatter := &YAMLFormatter{}
	buf := &bytes.Buffer{}

	for i := range 2 {
		if err := formatter.FormatTo(buf, map[string]int{"index": i}); err != nil {
			t.Fatalf("FormatTo() error = %v", err)
		}
	}

	dec := yaml.NewDecoder(strings.NewReader(buf.String()))
	var docs []map[string]int
	for {
		var doc map[string]int
		if err := dec.Decode(&doc); err != nil {
			break
		}
		docs = append(docs, doc)
	}
	if len(docs) != 2 || docs[1]["index"] != 1 {
		t.Errorf("decoded %v from %q", docs, buf.String())
	}
}

func TestNewFormatter(t *testing.T) {
	tests := []struct {
		format OutputFormat
		want   string
	}{
		{FormatText, "*cli.TextFormatter"},
		{FormatJSON, "*cli.JSONFormatter"},
		{FormatYAML, "*cli.YAMLFormatter"},
		{"unknown", "*cli.TextFormatter"},
	}

	for _, tt := range tests {
		t.Run(string(tt.format), func(t *testing.T) {
			got := fmt.Sprintf("%T", NewFormatter(tt.format))
			if got != tt.want {
				t.Errorf("NewFormatter(%q) type = %v, want %v", tt.format, got, tt.want)
			}
		})
	}
}

func TestParseFormat(t *testing.T) {
	if f, err := ParseFormat("json", FormatText, FormatJSON); err != nil || f != FormatJSON {
		t.Errorf("ParseFormat(json) = %q, %v", f, err)
	}
	_, err := ParseFormat("csv", FormatText, FormatJSON)
	if ExitCode(err) != ExitConfig {
		t.Errorf("ParseFormat(csv) error = %v, want a config error", err)
	}
}
