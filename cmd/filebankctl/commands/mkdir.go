package commands

import (
	"context"
	"path"

	"github.com/marmos91/filebank/cmd/filebankctl/cmdutil"
	"github.com/marmos91/filebank/pkg/apiclient"
	"github.com/spf13/cobra"
)

var (
	mkdirSchema   string
	mkdirMetadata string
	mkdirSets     []string
)

var mkdirCmd = &cobra.Command{
	Use:   "mkdir <path>",
	Short: "Create a directory",
	Long: `Create a directory. The parent must exist.

Examples:
  filebankctl mkdir /projects
  filebankctl mkdir /projects/alpha --schema project --set owner=alice
  filebankctl mkdir /projects/beta --metadata @beta.json`,
	Args: cobra.ExactArgs(1),
	RunE: runMkdir,
}

func init() {
	mkdirCmd.Flags().StringVar(&mkdirSchema, "schema", "", "Metadata schema name")
	mkdirCmd.Flags().StringVar(&mkdirMetadata, "metadata", "", "Metadata as a JSON object, or @file")
	mkdirCmd.Flags().StringArrayVar(&mkdirSets, "set", nil, "Metadata assignment key=value (repeatable)")
}

func runMkdir(cmd *cobra.Command, args []string) error {
	parent, name := path.Split(path.Clean("/" + args[0]))

	meta, err := parseMetadata(mkdirMetadata, mkdirSets)
	if err != nil {
		return err
	}

	client, err := cmdutil.GetClient()
	if err != nil {
		return err
	}

	item, err := client.Mkdir(context.Background(), parent, &apiclient.MkdirRequest{
		Name:     name,
		Type:     "directory",
		Schema:   mkdirSchema,
		Metadata: meta,
	})
	if err != nil {
		return err
	}

	return cmdutil.PrintResourceWithSuccess(item, "Directory '"+path.Join(parent, name)+"' created")
}
