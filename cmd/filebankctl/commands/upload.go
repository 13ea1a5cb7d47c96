package commands

import (
	"context"
	"fmt"
	"os"
	"path"
	"path/filepath"

	"github.com/marmos91/filebank/cmd/filebankctl/cmdutil"
	"github.com/marmos91/filebank/pkg/apiclient"
	"github.com/spf13/cobra"
)

var (
	uploadName     string
	uploadMimeType string
	uploadSchema   string
	uploadMetadata string
	uploadSets     []string
)

var uploadCmd = &cobra.Command{
	Use:   "upload <local-file> <directory>",
	Short: "Upload a file into a directory",
	Long: `Upload a local file into a directory of the tree.

The server detects the MIME type from the content unless --mimetype is set.

Examples:
  filebankctl upload report.pdf /projects/alpha
  filebankctl upload ./build.log / --name latest.log --mimetype text/plain
  filebankctl upload scan.png /inbox --schema scan --set pages=3`,
	Args: cobra.ExactArgs(2),
	RunE: runUpload,
}

func init() {
	uploadCmd.Flags().StringVar(&uploadName, "name", "", "Name in the tree (default: local file name)")
	uploadCmd.Flags().StringVar(&uploadMimeType, "mimetype", "", "MIME type (default: detected by the server)")
	uploadCmd.Flags().StringVar(&uploadSchema, "schema", "", "Metadata schema name")
	uploadCmd.Flags().StringVar(&uploadMetadata, "metadata", "", "Metadata as a JSON object, or @file")
	uploadCmd.Flags().StringArrayVar(&uploadSets, "set", nil, "Metadata assignment key=value (repeatable)")
}

func runUpload(cmd *cobra.Command, args []string) error {
	local, dir := args[0], args[1]

	meta, err := parseMetadata(uploadMetadata, uploadSets)
	if err != nil {
		return err
	}

	f, err := os.Open(local)
	if err != nil {
		return fmt.Errorf("failed to open %s: %w", local, err)
	}
	defer func() { _ = f.Close() }()

	client, err := cmdutil.GetClient()
	if err != nil {
		return err
	}

	req := &apiclient.UploadRequest{
		Name:     uploadName,
		Filename: filepath.Base(local),
		MimeType: uploadMimeType,
		Schema:   uploadSchema,
		Body:     f,
	}
	if len(meta) > 0 {
		req.Metadata = meta
	}

	item, err := client.Upload(context.Background(), dir, req)
	if err != nil {
		return err
	}

	return cmdutil.PrintResourceWithSuccess(item,
		fmt.Sprintf("Uploaded '%s' (%s)", path.Join("/", dir, item.Name), item.MimeType))
}
