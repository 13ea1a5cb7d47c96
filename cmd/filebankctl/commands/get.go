package commands

import (
	"context"
	"fmt"
	"io"
	"os"
	"path"
	"path/filepath"

	"github.com/marmos91/filebank/cmd/filebankctl/cmdutil"
	"github.com/spf13/cobra"
)

var getOutputFile string

var getCmd = &cobra.Command{
	Use:   "get <path>",
	Short: "Download a file",
	Long: `Download the content of a file.

Without --file the content is saved under the file's own name in the
current directory. Use --file - to write to stdout.

Examples:
  filebankctl get /projects/alpha/report.pdf
  filebankctl get /notes.txt --file -
  filebankctl get /notes.txt --file /tmp/notes.txt`,
	Args: cobra.ExactArgs(1),
	RunE: runGet,
}

func init() {
	getCmd.Flags().StringVarP(&getOutputFile, "file", "f", "", "Destination file, or - for stdout")
}

func runGet(cmd *cobra.Command, args []string) error {
	src := args[0]

	client, err := cmdutil.GetClient()
	if err != nil {
		return err
	}

	dest := getOutputFile
	if dest == "" {
		dest = path.Base(src)
	}

	if dest == "-" {
		_, err := client.Download(context.Background(), src, os.Stdout)
		return err
	}

	f, err := os.CreateTemp(filepath.Dir(dest), "."+filepath.Base(dest)+".part-*")
	if err != nil {
		return fmt.Errorf("failed to create temporary file: %w", err)
	}
	tmp := f.Name()
	defer func() { _ = os.Remove(tmp) }()

	counter := &countingWriter{w: f}
	contentType, err := client.Download(context.Background(), src, counter)
	if cerr := f.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		return err
	}

	if err := os.Rename(tmp, dest); err != nil {
		return fmt.Errorf("failed to save %s: %w", dest, err)
	}

	if printer, err := cmdutil.NewPrinter(); err == nil {
		printer.Success("Downloaded %s to %s (%d bytes, %s)", src, dest, counter.n, contentType)
	}
	return nil
}

type countingWriter struct {
	w io.Writer
	n int64
}

func (c *countingWriter) Write(p []byte) (int, error) {
	n, err := c.w.Write(p)
	c.n += int64(n)
	return n, err
}
