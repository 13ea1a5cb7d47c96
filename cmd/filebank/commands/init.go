package commands

import (
	"fmt"

	"github.com/marmos91/filebank/pkg/config"
	"github.com/spf13/cobra"
)

var initForce bool

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Initialize a sample configuration file",
	Long: `Initialize a sample filebank configuration file.

By default, the configuration file is created at $XDG_CONFIG_HOME/filebank/config.yaml.
Use --config to specify a custom path.

Examples:
  # Initialize with default location
  filebank init

  # Initialize with custom path
  filebank init --config /etc/filebank/config.yaml

  # Force overwrite existing config
  filebank init --force`,
	RunE: runInit,
}

func init() {
	initCmd.Flags().BoolVar(&initForce, "force", false, "Force overwrite existing config file")
}

func runInit(cmd *cobra.Command, args []string) error {
	configFile := GetConfigFile()

	var configPath string
	var err error

	if configFile != "" {
		err = config.InitConfigToPath(configFile, initForce)
		configPath = configFile
	} else {
		configPath, err = config.InitConfig(initForce)
	}

	if err != nil {
		return fmt.Errorf("failed to initialize config: %w", err)
	}

	fmt.Printf("Configuration file created at: %s\n", configPath)
	fmt.Println("\nNext steps:")
	fmt.Println("  1. Edit the configuration file to pick a database and a storage backend")
	fmt.Println("  2. Start the server with: filebank start")
	fmt.Printf("  3. Or specify custom config: filebank start --config %s\n", configPath)
	fmt.Println("  4. Issue a client token with: filebank token --subject <name>")
	fmt.Println("\nSecurity note:")
	fmt.Println("  Authorization is enabled with a randomly generated JWT secret.")
	fmt.Println("  For production, keep the secret out of the file and use an environment variable:")
	fmt.Println("    export FILEBANK_AUTH_JWT_SECRET=$(openssl rand -hex 32)")

	return nil
}
