package commands

import (
	"context"

	"github.com/marmos91/filebank/cmd/filebankctl/cmdutil"
	"github.com/spf13/cobra"
)

var rmForce bool

var rmCmd = &cobra.Command{
	Use:   "rm <path>",
	Short: "Delete a file or directory",
	Long: `Delete a file, or a directory with everything below it.

Examples:
  filebankctl rm /inbox/old.txt
  filebankctl rm /projects/alpha --force`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		client, err := cmdutil.GetClient()
		if err != nil {
			return err
		}

		return cmdutil.RunDeleteWithConfirmation("Item", args[0], rmForce, func() error {
			return client.Delete(context.Background(), args[0])
		})
	},
}

func init() {
	rmCmd.Flags().BoolVarP(&rmForce, "force", "f", false, "Skip confirmation")
}
