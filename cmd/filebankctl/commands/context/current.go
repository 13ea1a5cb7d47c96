package context

import (
	"fmt"
	"os"
	"time"

	"github.com/marmos91/filebank/cmd/filebankctl/cmdutil"
	"github.com/marmos91/filebank/internal/cli/credentials"
	"github.com/marmos91/filebank/internal/cli/output"
	"github.com/marmos91/filebank/internal/cli/timeutil"
	"github.com/spf13/cobra"
)

var currentCmd = &cobra.Command{
	Use:   "current",
	Short: "Show current context",
	Long: `Display information about the current active context.

Examples:
  filebankctl context current
  filebankctl context current -o json`,
	RunE: runContextCurrent,
}

func runContextCurrent(cmd *cobra.Command, args []string) error {
	store, err := credentials.NewStore()
	if err != nil {
		return fmt.Errorf("failed to initialize credential store: %w", err)
	}

	name := store.GetCurrentContextName()
	if name == "" {
		return fmt.Errorf("no current context set\n\n" +
			"Login to a server first:\n" +
			"  filebankctl login --server http://localhost:8080")
	}

	ctx, err := store.GetContext(name)
	if err != nil {
		return fmt.Errorf("failed to get context: %w", err)
	}
	info := newContextInfo(name, name, ctx)

	format, err := cmdutil.GetOutputFormatParsed()
	if err != nil {
		return err
	}

	switch format {
	case output.FormatJSON:
		return output.PrintJSON(os.Stdout, info)
	case output.FormatYAML:
		return output.PrintYAML(os.Stdout, info)
	}

	fmt.Printf("Current context: %s\n", name)
	fmt.Printf("  Server:    %s\n", info.ServerURL)
	fmt.Printf("  Subject:   %s\n", cmdutil.EmptyOr(info.Subject, "-"))
	switch {
	case !info.HasToken:
		fmt.Printf("  Status:    No token\n")
	case info.Expired:
		fmt.Printf("  Status:    Token expired %s\n", timeutil.FormatTime(info.ExpiresAt))
	case info.ExpiresAt.IsZero():
		fmt.Printf("  Status:    Logged in\n")
	default:
		fmt.Printf("  Status:    Logged in (expires in %s)\n", timeutil.FormatRemaining(info.ExpiresAt, time.Now()))
	}
	return nil
}
