package commands

import (
	"encoding/json"
	"fmt"

	"github.com/marmos91/filebank/internal/cli/output"
	"github.com/marmos91/filebank/pkg/config"
	"github.com/marmos91/filebank/pkg/content"
	"github.com/marmos91/filebank/pkg/validation"
	"github.com/spf13/cobra"
)

var schemaCmd = &cobra.Command{
	Use:   "schema",
	Short: "Inspect item and metadata schemas",
}

var schemaBuiltinCmd = &cobra.Command{
	Use:       "builtin [directory|file]",
	Short:     "Print the built-in JSON schema of an item type",
	ValidArgs: []string{string(content.TypeDirectory), string(content.TypeFile)},
	Args:      cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
	RunE: func(cmd *cobra.Command, args []string) error {
		s, ok := validation.BuiltinSchemas()[content.ItemType(args[0])]
		if !ok {
			return fmt.Errorf("unknown item type: %s", args[0])
		}
		data, err := json.MarshalIndent(s, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to render schema: %w", err)
		}
		_, _ = fmt.Fprintln(cmd.OutOrStdout(), string(data))
		return nil
	},
}

var schemaListCmd = &cobra.Command{
	Use:   "list",
	Short: "List the named metadata schemas in schemas.dir",
	Long: `List the named metadata schemas loaded from schemas.dir.

Directory schemas live in <dir>/directory/<name>.json and file schemas in
<dir>/file/<name>.json. Every schema is compiled, so this also validates them.`,
	RunE: runSchemaList,
}

func init() {
	schemaCmd.AddCommand(schemaBuiltinCmd)
	schemaCmd.AddCommand(schemaListCmd)
}

type schemaTable struct {
	registry *validation.Registry
}

func (t schemaTable) Headers() []string { return []string{"TYPE", "NAME"} }

func (t schemaTable) Rows() [][]string {
	var rows [][]string
	for _, kind := range []content.ItemType{content.TypeDirectory, content.TypeFile} {
		for _, name := range t.registry.Names(kind) {
			rows = append(rows, []string{string(kind), name})
		}
	}
	return rows
}

func runSchemaList(cmd *cobra.Command, args []string) error {
	cfg, err := config.MustLoad(GetConfigFile())
	if err != nil {
		return err
	}

	registry, err := validation.New(cfg.Schemas.Dir)
	if err != nil {
		return fmt.Errorf("failed to load schemas: %w", err)
	}

	table := schemaTable{registry: registry}
	if len(table.Rows()) == 0 {
		_, _ = fmt.Fprintln(cmd.OutOrStdout(), "No named schemas configured.")
		return nil
	}
	return output.PrintTable(cmd.OutOrStdout(), table)
}
