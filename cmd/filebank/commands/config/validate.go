package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/marmos91/filebank/pkg/config"
	"github.com/marmos91/filebank/pkg/validation"
	"github.com/spf13/cobra"
)

var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Validate configuration file",
	Long: `Validate the filebank configuration file.

Checks for syntax errors, missing required fields, and invalid values, then
compiles the named metadata schemas found in schemas.dir.

Examples:
  # Validate default config
  filebank config validate

  # Validate specific config file
  filebank config validate --config /etc/filebank/config.yaml`,
	RunE: runConfigValidate,
}

func runConfigValidate(cmd *cobra.Command, args []string) error {
	configPath, _ := cmd.Flags().GetString("config")

	cfg, err := config.MustLoad(configPath)
	if err != nil {
		return err
	}

	displayPath := configPath
	if displayPath == "" {
		displayPath = config.GetDefaultConfigPath()
	}

	registry, err := validation.New(cfg.Schemas.Dir)
	if err != nil {
		return fmt.Errorf("invalid schemas: %w", err)
	}

	var warnings []string

	if !cfg.Auth.Enabled {
		warnings = append(warnings, "Authorization disabled - every API request is accepted")
	}
	if cfg.Schemas.Required && cfg.Schemas.Dir == "" {
		warnings = append(warnings, "schemas.required is set but schemas.dir is empty - every create will be rejected")
	}
	if cfg.Storage.Type == config.StorageFilesystem &&
		strings.HasPrefix(filepath.Clean(cfg.Storage.Filesystem.RootDir), os.TempDir()) {
		warnings = append(warnings, "Filesystem root is under the temporary directory - content may not survive a reboot")
	}
	if cfg.Database.Type == config.DatabaseSQLite && cfg.Database.SQLite.Path == ":memory:" {
		warnings = append(warnings, "SQLite runs in memory - metadata is lost on restart")
	}

	fmt.Printf("Configuration file: %s\n", displayPath)
	fmt.Println("Validation: OK")

	if len(warnings) > 0 {
		fmt.Println("\nWarnings:")
		for _, w := range warnings {
			fmt.Printf("  - %s\n", w)
		}
	}

	fmt.Printf("\nConfiguration summary:\n")
	fmt.Printf("  Database type:     %s\n", cfg.Database.Type)
	fmt.Printf("  Storage type:      %s\n", cfg.Storage.Type)
	fmt.Printf("  API port:          %d\n", cfg.Server.Port)
	fmt.Printf("  Max upload size:   %s\n", cfg.Server.MaxUploadSize)
	fmt.Printf("  Directory schemas: %d\n", len(registry.Names("directory")))
	fmt.Printf("  File schemas:      %d\n", len(registry.Names("file")))
	fmt.Printf("  Log level:         %s\n", cfg.Logging.Level)

	return nil
}
