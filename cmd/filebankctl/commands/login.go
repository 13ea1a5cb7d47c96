package commands

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"github.com/marmos91/filebank/cmd/filebankctl/cmdutil"
	"github.com/marmos91/filebank/internal/cli/credentials"
	"github.com/marmos91/filebank/internal/cli/prompt"
	"github.com/marmos91/filebank/internal/cli/timeutil"
	"github.com/marmos91/filebank/pkg/apiclient"
	"github.com/spf13/cobra"
)

var (
	loginServer  string
	loginToken   string
	loginContext string
	loginNoAuth  bool
)

var loginCmd = &cobra.Command{
	Use:   "login",
	Short: "Store a server URL and bearer token",
	Long: `Store the server URL and bearer token used by every other command.

Tokens are issued by the server operator with 'filebank token'. The token is
checked against the server by listing the root directory before it is saved.

Examples:
  # First login to a server (prompts for the token)
  filebankctl login --server http://localhost:8080

  # Pass the token directly
  filebankctl login --server http://localhost:8080 --token eyJhbGciOi...

  # Server running without authorization
  filebankctl login --server http://localhost:8080 --no-auth

  # Replace the token of the current context
  filebankctl login`,
	RunE: runLogin,
}

func init() {
	loginCmd.Flags().StringVar(&loginServer, "server", "", "Server URL (required on first login)")
	loginCmd.Flags().StringVar(&loginToken, "token", "", "Bearer token (prompted when omitted)")
	loginCmd.Flags().StringVar(&loginContext, "context", "", "Context name (default: current context or server host)")
	loginCmd.Flags().BoolVar(&loginNoAuth, "no-auth", false, "Do not use a token")
}

func runLogin(cmd *cobra.Command, args []string) error {
	store, err := credentials.NewStore()
	if err != nil {
		return fmt.Errorf("failed to initialize credential store: %w", err)
	}

	serverURL := loginServer
	if serverURL == "" {
		ctx, err := store.GetCurrentContext()
		if err != nil || ctx.ServerURL == "" {
			return fmt.Errorf("no server URL specified and no saved context found\n\n" +
				"Specify server URL:\n" +
				"  filebankctl login --server http://localhost:8080")
		}
		serverURL = ctx.ServerURL
	}

	serverURL, err = normalizeServerURL(serverURL)
	if err != nil {
		return err
	}

	token := loginToken
	if token == "" && !loginNoAuth {
		token, err = prompt.Secret("Token")
		if err != nil {
			return cmdutil.HandleAbort(err)
		}
	}

	credCtx, err := credentials.NewContext(serverURL, token)
	if err != nil {
		return err
	}

	fmt.Printf("Checking access to %s...\n", serverURL)
	client := apiclient.New(serverURL).WithToken(token)
	if _, err := client.List(context.Background(), "/"); err != nil {
		return fmt.Errorf("login failed: %w", err)
	}

	name := loginContext
	if name == "" {
		name = store.GetCurrentContextName()
	}
	if name == "" {
		name = contextNameFor(serverURL)
	}

	if err := store.SetContext(name, credCtx); err != nil {
		return fmt.Errorf("failed to save credentials: %w", err)
	}

	if credCtx.Subject != "" {
		fmt.Printf("Logged in successfully as %s\n", credCtx.Subject)
	} else {
		fmt.Println("Logged in successfully")
	}
	if !credCtx.ExpiresAt.IsZero() {
		fmt.Printf("Token expires: %s\n", timeutil.FormatTime(credCtx.ExpiresAt))
	}
	fmt.Printf("Context: %s\n", name)
	fmt.Printf("Credentials saved to: %s\n", store.ConfigPath())

	return nil
}

// normalizeServerURL defaults the scheme to http and drops a trailing slash.
func normalizeServerURL(raw string) (string, error) {
	if !strings.Contains(raw, "://") {
		raw = "http://" + raw
	}
	u, err := url.Parse(raw)
	if err != nil {
		return "", fmt.Errorf("invalid server URL: %w", err)
	}
	if u.Host == "" {
		return "", fmt.Errorf("invalid server URL: %q has no host", raw)
	}
	return strings.TrimRight(u.String(), "/"), nil
}

// contextNameFor derives a context name from the server host.
func contextNameFor(serverURL string) string {
	u, err := url.Parse(serverURL)
	if err != nil || u.Hostname() == "" {
		return "default"
	}
	return u.Hostname()
}
