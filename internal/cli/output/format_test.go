package output

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseFormat(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    Format
		wantErr bool
	}{
		{name: "table", input: "table", want: FormatTable},
		{name: "empty defaults to table", input: "", want: FormatTable},
		{name: "json", input: "json", want: FormatJSON},
		{name: "JSON uppercase", input: "JSON", want: FormatJSON},
		{name: "yaml", input: "yaml", want: FormatYAML},
		{name: "yml alias", input: "yml", want: FormatYAML},
		{name: "whitespace trimmed", input: "  table  ", want: FormatTable},
		{name: "invalid format", input: "xml", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseFormat(tt.input)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

type item struct {
	Name     string `json:"name"`
	MimeType string `json:"mimetype,omitempty"`
}

func TestPrinterPrint(t *testing.T) {
	data := []item{{Name: "a.txt", MimeType: "text/plain"}, {Name: "docs"}}

	t.Run("json", func(t *testing.T) {
		var buf bytes.Buffer
		require.NoError(t, NewPrinter(&buf, FormatJSON, false).Print(data))
		assert.JSONEq(t, `[{"name":"a.txt","mimetype":"text/plain"},{"name":"docs"}]`, buf.String())
	})

	t.Run("yaml uses json tags", func(t *testing.T) {
		var buf bytes.Buffer
		require.NoError(t, NewPrinter(&buf, FormatYAML, false).Print(data))
		assert.Equal(t, "- mimetype: text/plain\n  name: a.txt\n- name: docs\n", buf.String())
	})

	t.Run("table falls back to json", func(t *testing.T) {
		var buf bytes.Buffer
		require.NoError(t, NewPrinter(&buf, FormatTable, false).Print(data[1]))
		assert.JSONEq(t, `{"name":"docs"}`, buf.String())
	})
}

func TestPrinterSuccess(t *testing.T) {
	var buf bytes.Buffer
	NewPrinter(&buf, FormatTable, false).Success("Deleted %s", "/docs")
	assert.Equal(t, "Deleted /docs\n", buf.String())

	buf.Reset()
	NewPrinter(&buf, FormatJSON, false).Success("Deleted %s", "/docs")
	assert.Empty(t, buf.String())

	buf.Reset()
	NewPrinter(&buf, FormatTable, true).Success("ok")
	assert.Equal(t, "\033[32mok\033[0m\n", buf.String())
}
