package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/cegaiel/mappacksync/internal/cli"
)

func main() {
	if err := run(); err != nil {
		// A finished run reports its status through the exit code alone;
		// the summary has already been printed.
		var exitErr *cli.ExitError
		if errors.As(err, &exitErr) {
			os.Exit(exitErr.Code)
		}
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	rootCmd := &cobra.Command{
		Use:   "mappacksync",
		Short: "Istaria map pack synchronization utility",
		Long: `mappacksync keeps an Istaria install folder's community map pack in
sync with the published manifest. It downloads missing or changed map
files with SHA-256 verification, removes files no longer listed, cleans
up leftovers from previous tool generations and points the client
preferences at the synced maps.`,
		Version:       cli.Version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	// Add global flags
	cli.AddGlobalFlags(rootCmd)

	// Add commands
	rootCmd.AddCommand(cli.NewSyncCommand())
	rootCmd.AddCommand(cli.NewRemoveCommand())
	rootCmd.AddCommand(cli.NewConfigCommand())
	rootCmd.AddCommand(cli.NewVersionCommand())

	return rootCmd.Execute()
}
