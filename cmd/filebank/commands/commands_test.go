package commands

import (
	"reflect"
	"testing"

	"github.com/marmos91/filebank/pkg/config"
	"github.com/marmos91/filebank/pkg/content"
	"github.com/marmos91/filebank/pkg/vfs"
)

func TestDefaultScopes(t *testing.T) {
	tests := []struct {
		name string
		cfg  config.AuthConfig
		want []string
	}{
		{
			name: "distinct sets",
			cfg:  config.AuthConfig{ReadScope: "r", WriteScope: "w", DeleteScope: "d"},
			want: []string{"r", "w", "d"},
		},
		{
			name: "first scope of each set",
			cfg:  config.AuthConfig{ReadScope: "r, admin", WriteScope: "w,admin", DeleteScope: "admin"},
			want: []string{"r", "w", "admin"},
		},
		{
			name: "shared scope is granted once",
			cfg:  config.AuthConfig{ReadScope: "all", WriteScope: "all", DeleteScope: "all"},
			want: []string{"all"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := defaultScopes(tt.cfg); !reflect.DeepEqual(got, tt.want) {
				t.Errorf("defaultScopes() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestCheckTable(t *testing.T) {
	table := checkTable{report: &vfs.CheckReport{
		Directories: 2,
		Files:       1,
		Missing: []vfs.Anomaly{
			{ID: "d1", Type: content.TypeDirectory, Path: "/docs", RefID: "docs-1"},
		},
	}}

	rows := table.Rows()
	if len(rows) != 1 {
		t.Fatalf("expected 1 row, got %d", len(rows))
	}
	if len(rows[0]) != len(table.Headers()) {
		t.Errorf("row has %d columns, headers have %d", len(rows[0]), len(table.Headers()))
	}
	if rows[0][1] != "/docs" {
		t.Errorf("path column = %q, want /docs", rows[0][1])
	}
}

func TestRootCommandRegistersSubcommands(t *testing.T) {
	want := []string{"start", "init", "migrate", "check", "token", "schema", "config", "version", "completion"}
	for _, name := range want {
		cmd, _, err := GetRootCmd().Find([]string{name})
		if err != nil || cmd.Name() != name {
			t.Errorf("subcommand %q not registered", name)
		}
	}
}
