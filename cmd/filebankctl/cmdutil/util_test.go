package cmdutil

import (
	"bytes"
	"strings"
	"testing"

	"github.com/marmos91/filebank/internal/cli/output"
)

func TestEmptyOr(t *testing.T) {
	if got := EmptyOr("", "-"); got != "-" {
		t.Errorf("EmptyOr(\"\", \"-\") = %q, want \"-\"", got)
	}
	if got := EmptyOr("x", "-"); got != "x" {
		t.Errorf("EmptyOr(\"x\", \"-\") = %q, want \"x\"", got)
	}
}

func TestPrintOutput(t *testing.T) {
	table := output.NewTableData("NAME")
	table.AddRow("alpha")

	tests := []struct {
		name     string
		format   string
		isEmpty  bool
		contains string
	}{
		{name: "table", format: "table", contains: "alpha"},
		{name: "empty table", format: "table", isEmpty: true, contains: "nothing here"},
		{name: "json", format: "json", contains: `"name": "alpha"`},
		{name: "yaml", format: "yaml", contains: "name: alpha"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			Flags.Output = tt.format
			defer func() { Flags.Output = "" }()

			var buf bytes.Buffer
			data := []map[string]string{{"name": "alpha"}}
			if err := PrintOutput(&buf, data, tt.isEmpty, "nothing here", table); err != nil {
				t.Fatalf("PrintOutput() error = %v", err)
			}
			if !strings.Contains(buf.String(), tt.contains) {
				t.Errorf("output %q does not contain %q", buf.String(), tt.contains)
			}
		})
	}
}

func TestPrintOutputInvalidFormat(t *testing.T) {
	Flags.Output = "xml"
	defer func() { Flags.Output = "" }()

	if err := PrintOutput(&bytes.Buffer{}, nil, true, "", nil); err == nil {
		t.Error("expected error for invalid format")
	}
}

func TestGetClientWithFlags(t *testing.T) {
	Flags.ServerURL = "http://localhost:8080"
	Flags.Token = "token"
	defer func() { Flags.ServerURL, Flags.Token = "", "" }()

	client, err := GetClient()
	if err != nil {
		t.Fatalf("GetClient() error = %v", err)
	}
	if client == nil {
		t.Fatal("GetClient() returned nil client")
	}
}

func TestGetClientWithoutContext(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())

	if _, err := GetClient(); err == nil {
		t.Error("expected error without server or context")
	}
}
