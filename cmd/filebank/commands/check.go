package commands

import (
	"context"
	"errors"
	"fmt"

	"github.com/marmos91/filebank/internal/cli/output"
	"github.com/marmos91/filebank/pkg/config"
	"github.com/marmos91/filebank/pkg/vfs"
	"github.com/spf13/cobra"
)

var checkOutput string

// errInconsistent makes `filebank check` exit non-zero for scripts.
var errInconsistent = errors.New("metadata references missing content")

var checkCmd = &cobra.Command{
	Use:   "check",
	Short: "Verify that every metadata entry has its content",
	Long: `Walk the whole directory tree and confirm that the content backend holds
an object for every directory and file recorded in the metadata store.

Entries left behind by an interrupted move or an out-of-band deletion are
listed. The command exits with an error when any entry is missing.

Examples:
  # Check with default config
  filebank check

  # Machine-readable report
  filebank check --output json`,
	RunE: runCheck,
}

func init() {
	checkCmd.Flags().StringVarP(&checkOutput, "output", "o", "table", "Output format (table|json|yaml)")
}

type checkTable struct {
	report *vfs.CheckReport
}

func (t checkTable) Headers() []string {
	return []string{"TYPE", "PATH", "ID", "REF ID"}
}

func (t checkTable) Rows() [][]string {
	rows := make([][]string, 0, len(t.report.Missing))
	for _, a := range t.report.Missing {
		rows = append(rows, []string{string(a.Type), a.Path, a.ID, a.RefID})
	}
	return rows
}

func runCheck(cmd *cobra.Command, args []string) error {
	format, err := output.ParseFormat(checkOutput)
	if err != nil {
		return err
	}

	cfg, err := config.MustLoad(GetConfigFile())
	if err != nil {
		return err
	}
	if err := InitLogger(cfg); err != nil {
		return err
	}

	ctx := context.Background()
	svc, _, closeStores, err := openService(ctx, cfg)
	if err != nil {
		return err
	}
	defer closeStores()

	report, err := svc.Check(ctx)
	if err != nil {
		return fmt.Errorf("check failed: %w", err)
	}

	printer := output.StdoutPrinter(format)
	if format != output.FormatTable {
		if err := printer.Print(report); err != nil {
			return err
		}
	} else {
		fmt.Printf("Checked %d directories and %d files\n", report.Directories, report.Files)
		if report.Consistent() {
			printer.Success("No missing content")
		} else if err := printer.Print(checkTable{report: report}); err != nil {
			return err
		}
	}

	if !report.Consistent() {
		return fmt.Errorf("%w: %d entries", errInconsistent, len(report.Missing))
	}
	return nil
}
