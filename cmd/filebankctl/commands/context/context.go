// Package context implements the context management subcommands.
package context

import (
	"github.com/spf13/cobra"
)

// Cmd is the context subcommand.
var Cmd = &cobra.Command{
	Use:     "context",
	Aliases: []string{"ctx"},
	Short:   "Manage server contexts",
	Long: `Manage saved server contexts.

A context pairs a server URL with the bearer token used against it.
'filebankctl login' creates and updates contexts.`,
}

func init() {
	Cmd.AddCommand(listCmd)
	Cmd.AddCommand(currentCmd)
	Cmd.AddCommand(useCmd)
	Cmd.AddCommand(deleteCmd)
}
