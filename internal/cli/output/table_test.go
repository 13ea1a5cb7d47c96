package output

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTableData(t *testing.T) {
	table := NewTableData("Name", "Type")
	assert.Equal(t, []string{"Name", "Type"}, table.Headers())
	assert.Empty(t, table.Rows())

	table.AddRow("docs", "directory")
	table.AddRow("a.txt", "file")

	rows := table.Rows()
	require.Len(t, rows, 2)
	assert.Equal(t, []string{"a.txt", "file"}, rows[1])
}

func TestPrintTable(t *testing.T) {
	table := NewTableData("Name", "Mime type")
	table.AddRow("docs", "")
	table.AddRow("report.pdf", "application/pdf")

	var buf bytes.Buffer
	require.NoError(t, PrintTable(&buf, table))

	lines := strings.Split(strings.TrimRight(buf.String(), "\n"), "\n")
	require.Len(t, lines, 3)
	assert.Contains(t, lines[0], "NAME")
	assert.Contains(t, lines[0], "MIME TYPE")
	assert.Contains(t, lines[2], "application/pdf")
}
