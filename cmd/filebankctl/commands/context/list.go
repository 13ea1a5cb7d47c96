package context

import (
	"fmt"
	"os"
	"time"

	"github.com/marmos91/filebank/cmd/filebankctl/cmdutil"
	"github.com/marmos91/filebank/internal/cli/credentials"
	"github.com/marmos91/filebank/internal/cli/timeutil"
	"github.com/spf13/cobra"
)

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List all configured contexts",
	Long: `List all configured server contexts.

The current context is marked with an asterisk (*).

Examples:
  filebankctl context list
  filebankctl context list -o json`,
	RunE: runContextList,
}

// ContextInfo represents context information for output.
type ContextInfo struct {
	Name      string    `json:"name"`
	Current   bool      `json:"current"`
	ServerURL string    `json:"server_url"`
	Subject   string    `json:"subject,omitempty"`
	ExpiresAt time.Time `json:"expires_at,omitzero"`
	HasToken  bool      `json:"has_token"`
	Expired   bool      `json:"expired"`
}

func newContextInfo(name, current string, ctx *credentials.Context) ContextInfo {
	return ContextInfo{
		Name:      name,
		Current:   name == current,
		ServerURL: ctx.ServerURL,
		Subject:   ctx.Subject,
		ExpiresAt: ctx.ExpiresAt,
		HasToken:  ctx.Token != "",
		Expired:   ctx.IsExpired(),
	}
}

// ContextList is a list of contexts for table rendering.
type ContextList []ContextInfo

// Headers implements TableRenderer.
func (cl ContextList) Headers() []string {
	return []string{"", "NAME", "SERVER", "SUBJECT", "EXPIRES"}
}

// Rows implements TableRenderer.
func (cl ContextList) Rows() [][]string {
	now := time.Now()
	rows := make([][]string, 0, len(cl))
	for _, c := range cl {
		current := ""
		if c.Current {
			current = "*"
		}
		expires := "-"
		switch {
		case !c.HasToken:
			expires = "no token"
		case !c.ExpiresAt.IsZero():
			expires = timeutil.FormatRemaining(c.ExpiresAt, now)
		}
		rows = append(rows, []string{current, c.Name, c.ServerURL, cmdutil.EmptyOr(c.Subject, "-"), expires})
	}
	return rows
}

func runContextList(cmd *cobra.Command, args []string) error {
	store, err := credentials.NewStore()
	if err != nil {
		return fmt.Errorf("failed to initialize credential store: %w", err)
	}

	names := store.ListContexts()
	current := store.GetCurrentContextName()

	contexts := make(ContextList, 0, len(names))
	for _, name := range names {
		ctx, err := store.GetContext(name)
		if err != nil {
			continue
		}
		contexts = append(contexts, newContextInfo(name, current, ctx))
	}

	return cmdutil.PrintOutput(os.Stdout, contexts, len(contexts) == 0,
		"No contexts configured. Use 'filebankctl login --server <url>' to create one.", contexts)
}
