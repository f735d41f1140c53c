package cli

import "github.com/spf13/cobra"

// rootOpts holds the persistent options every subcommand sees. Quiet
// wins over verbose when both are set.
var rootOpts struct {
	configFile string
	verbose    bool
	quiet      bool
}

// AddGlobalFlags wires the persistent flags onto the root command.
func AddGlobalFlags(cmd *cobra.Command) {
	pf := cmd.PersistentFlags()
	pf.StringVar(&rootOpts.configFile, "config", "", "config file (default $HOME/.config/mappacksync/config.yaml)")
	pf.BoolVarP(&rootOpts.verbose, "verbose", "v", false, "print per-file status lines instead of the progress bar")
	pf.BoolVarP(&rootOpts.quiet, "quiet", "q", false, "only report errors")
}
