// Package cmdutil provides shared utilities for filebankctl commands.
package cmdutil

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/marmos91/filebank/internal/cli/credentials"
	"github.com/marmos91/filebank/internal/cli/output"
	"github.com/marmos91/filebank/internal/cli/prompt"
	"github.com/marmos91/filebank/pkg/apiclient"
)

// Flags stores global flag values accessible by subcommands.
var Flags = &GlobalFlags{}

// GlobalFlags holds the global flag values.
type GlobalFlags struct {
	ServerURL string
	Token     string
	Output    string
	NoColor   bool
}

// GetClient returns an API client for the current context. --server and
// --token override the stored values; with both set no context is needed.
func GetClient() (*apiclient.Client, error) {
	if Flags.ServerURL != "" && Flags.Token != "" {
		return apiclient.New(Flags.ServerURL).WithToken(Flags.Token), nil
	}

	store, err := credentials.NewStore()
	if err != nil {
		return nil, fmt.Errorf("failed to initialize credential store: %w", err)
	}

	url, tok := Flags.ServerURL, Flags.Token
	ctx, err := store.GetCurrentContext()
	switch {
	case err == nil:
		if url == "" {
			url = ctx.ServerURL
		}
		if tok == "" {
			if ctx.IsExpired() {
				return nil, fmt.Errorf("token for context '%s' expired. Run 'filebankctl login' with a new token", store.GetCurrentContextName())
			}
			tok = ctx.Token
		}
	case errors.Is(err, credentials.ErrNoCurrentContext) && url != "":
		// --server alone talks to a server without auth
	default:
		return nil, err
	}

	if url == "" {
		return nil, fmt.Errorf("no server URL configured. Run 'filebankctl login --server <url>' first")
	}
	return apiclient.New(url).WithToken(tok), nil
}

// GetOutputFormatParsed returns the parsed output format.
func GetOutputFormatParsed() (output.Format, error) {
	return output.ParseFormat(Flags.Output)
}

// NewPrinter returns a stdout printer honoring --output and --no-color.
func NewPrinter() (*output.Printer, error) {
	format, err := GetOutputFormatParsed()
	if err != nil {
		return nil, err
	}
	if Flags.NoColor {
		return output.NewPrinter(os.Stdout, format, false), nil
	}
	return output.StdoutPrinter(format), nil
}

// PrintOutput prints data in the selected format. For table format, it
// displays emptyMsg if data is empty, otherwise uses the tableRenderer.
func PrintOutput(w io.Writer, data any, isEmpty bool, emptyMsg string, tableRenderer output.TableRenderer) error {
	format, err := GetOutputFormatParsed()
	if err != nil {
		return err
	}

	switch format {
	case output.FormatJSON:
		return output.PrintJSON(w, data)
	case output.FormatYAML:
		return output.PrintYAML(w, data)
	default:
		if isEmpty {
			_, _ = fmt.Fprintln(w, emptyMsg)
			return nil
		}
		return output.PrintTable(w, tableRenderer)
	}
}

// PrintResourceWithSuccess prints data as JSON or YAML, or msg in table mode.
func PrintResourceWithSuccess(data any, msg string) error {
	printer, err := NewPrinter()
	if err != nil {
		return err
	}
	if printer.Format() == output.FormatTable {
		printer.Success("%s", msg)
		return nil
	}
	return printer.Print(data)
}

// RunDeleteWithConfirmation prompts for confirmation (unless force is true) and runs deleteFn.
func RunDeleteWithConfirmation(resourceType, name string, force bool, deleteFn func() error) error {
	confirmed, err := prompt.ConfirmWithForce(fmt.Sprintf("Delete %s '%s'?", resourceType, name), force)
	if err != nil {
		return HandleAbort(err)
	}
	if !confirmed {
		fmt.Println("Aborted.")
		return nil
	}

	if err := deleteFn(); err != nil {
		return err
	}

	if printer, err := NewPrinter(); err == nil {
		printer.Success("%s '%s' deleted successfully", resourceType, name)
	}
	return nil
}

// EmptyOr returns the value if not empty, otherwise returns the fallback.
func EmptyOr(value, fallback string) string {
	if value == "" {
		return fallback
	}
	return value
}

// HandleAbort turns a Ctrl+C into a quiet "Aborted." and passes other errors through.
func HandleAbort(err error) error {
	if prompt.IsAborted(err) {
		fmt.Println("\nAborted.")
		return nil
	}
	return err
}
