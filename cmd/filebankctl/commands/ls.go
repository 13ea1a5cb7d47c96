package commands

import (
	"context"
	"os"

	"github.com/marmos91/filebank/cmd/filebankctl/cmdutil"
	"github.com/marmos91/filebank/internal/cli/timeutil"
	"github.com/marmos91/filebank/pkg/apiclient"
	"github.com/spf13/cobra"
)

var lsCmd = &cobra.Command{
	Use:   "ls [path]",
	Short: "List a directory",
	Long: `List the directories and files under path (default: the root).

Directories come first, each group ordered by name.

Examples:
  filebankctl ls
  filebankctl ls /projects/alpha
  filebankctl ls /projects -o json`,
	Args: cobra.MaximumNArgs(1),
	RunE: runLs,
}

// ItemList renders a directory listing.
type ItemList []apiclient.Item

// Headers implements TableRenderer.
func (l ItemList) Headers() []string {
	return []string{"NAME", "TYPE", "MIMETYPE", "UPDATED", "ID"}
}

// Rows implements TableRenderer.
func (l ItemList) Rows() [][]string {
	rows := make([][]string, 0, len(l))
	for _, it := range l {
		name := it.Name
		if it.IsDir() {
			name += "/"
		}
		rows = append(rows, []string{
			name,
			it.Type,
			cmdutil.EmptyOr(it.MimeType, "-"),
			timeutil.FormatTime(it.UpdatedAt),
			it.ID,
		})
	}
	return rows
}

func runLs(cmd *cobra.Command, args []string) error {
	path := "/"
	if len(args) == 1 {
		path = args[0]
	}

	client, err := cmdutil.GetClient()
	if err != nil {
		return err
	}

	items, err := client.List(context.Background(), path)
	if err != nil {
		return err
	}

	list := ItemList(items)
	return cmdutil.PrintOutput(os.Stdout, items, len(items) == 0, "Directory is empty.", list)
}
