package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/cegaiel/mappacksync/pkg/config"
)

// NewConfigCommand creates the config command
func NewConfigCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Manage configuration",
		Long:  `View or modify mappacksync configuration.`,
	}

	cmd.AddCommand(newConfigShowCommand())
	cmd.AddCommand(newConfigInitCommand())

	return cmd
}

func newConfigShowCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Show current configuration",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}

			fmt.Printf("Remote Host: %s\n", cfg.Remote.Host)
			fmt.Printf("Manifest: %s\n", cfg.ManifestURL())
			fmt.Printf("Legacy Manifest: %s\n", cfg.LegacyManifestURL())
			fmt.Printf("Connect Timeout: %ds\n", cfg.Timeouts.ConnectSeconds)
			fmt.Printf("Manifest Timeout: %ds\n", cfg.Timeouts.ManifestSeconds)
			fmt.Printf("Bandwidth Limit: %d\n", cfg.Transfer.BandwidthLimit)
			fmt.Printf("Log Format: %s\n", cfg.Logging.Format)
			fmt.Printf("Log Level: %s\n", cfg.Logging.Level)

			return nil
		},
	}
}

func newConfigInitCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "init",
		Short: "Create default configuration file",
		RunE: func(cmd *cobra.Command, args []string) error {
			path, err := config.DefaultConfigPath()
			if err != nil {
				return err
			}

			cfg := config.Default()
			if err := config.SaveToFile(cfg, path); err != nil {
				return err
			}

			fmt.Printf("Configuration file created at: %s\n", path)
			return nil
		},
	}
}
