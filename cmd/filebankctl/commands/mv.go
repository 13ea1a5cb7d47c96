package commands

import (
	"context"

	"github.com/marmos91/filebank/cmd/filebankctl/cmdutil"
	"github.com/spf13/cobra"
)

var mvCmd = &cobra.Command{
	Use:   "mv <path> <target-directory>",
	Short: "Move a file or directory",
	Long: `Move a file or directory into another directory, keeping its name.

Moving a directory moves its whole subtree.

Examples:
  filebankctl mv /inbox/report.pdf /archive
  filebankctl mv /projects/alpha /archive/2025`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		client, err := cmdutil.GetClient()
		if err != nil {
			return err
		}

		item, err := client.Move(context.Background(), args[0], args[1])
		if err != nil {
			return err
		}
		return cmdutil.PrintResourceWithSuccess(item, "Moved '"+args[0]+"' to '"+args[1]+"'")
	},
}
