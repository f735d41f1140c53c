package cli

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/cegaiel/mappacksync/pkg/cancel"
	"github.com/cegaiel/mappacksync/pkg/config"
	"github.com/cegaiel/mappacksync/pkg/download"
	"github.com/cegaiel/mappacksync/pkg/events"
	"github.com/cegaiel/mappacksync/pkg/ratelimit"
	"github.com/cegaiel/mappacksync/pkg/sync"
	"github.com/cegaiel/mappacksync/pkg/transport"
)

// SyncFlags holds sync command flags
type SyncFlags struct {
	Bandwidth string
	Host      string
	// Logging flags
	LogFile   string
	LogFormat string
	LogLevel  string
}

var syncFlags SyncFlags

// addRunFlags registers the flags shared by the sync and remove commands.
func addRunFlags(cmd *cobra.Command) {
	cmd.Flags().StringVarP(&syncFlags.Bandwidth, "bandwidth", "b", "", "bandwidth limit (e.g. \"500K\", \"10M\")")
	cmd.Flags().StringVar(&syncFlags.Host, "host", "", "override the remote host")
	cmd.Flags().StringVar(&syncFlags.LogFile, "log-file", "", "write logs to file (enables logging)")
	cmd.Flags().StringVar(&syncFlags.LogFormat, "log-format", "", "log format: text, json")
	cmd.Flags().StringVar(&syncFlags.LogLevel, "log-level", "", "log level: debug, info, warn, error")
}

// NewSyncCommand creates the sync command
func NewSyncCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "sync <install-folder>",
		Short: "Synchronize the map pack into a game install folder",
		Long: `Download the current map pack manifest and reconcile the install
folder against it: fetch missing or changed files, remove files no longer
listed, clean up leftovers from previous versions and point the client
preferences at the synced maps.

The folder must be an Istaria install directory (it must contain
istaria.exe). Only files under resources_override/mappack are managed.`,
		Args: cobra.ExactArgs(1),
		RunE: runSync,
	}

	addRunFlags(cmd)

	return cmd
}

func runSync(cmd *cobra.Command, args []string) error {
	return runReconcile(cmd, args[0], sync.ModeSync)
}

// runReconcile is shared between the sync and remove commands; the two
// flows differ only in which engine entry point runs.
func runReconcile(cmd *cobra.Command, folder string, mode sync.Mode) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	cfg, err := loadConfig()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	applyRunFlags(cfg)
	if err := cfg.Validate(); err != nil {
		return err
	}

	bandwidth := cfg.Transfer.BandwidthLimit
	if syncFlags.Bandwidth != "" {
		bandwidth, err = parseBandwidth(syncFlags.Bandwidth)
		if err != nil {
			return err
		}
	}

	runCfg, err := sync.Preflight(folder, cfg)
	if err != nil {
		return err
	}

	logger, err := createLogger(&cfg.Logging)
	if err != nil {
		return fmt.Errorf("failed to create logger: %w", err)
	}
	defer logger.Close()

	connect := time.Duration(cfg.Timeouts.ConnectSeconds) * time.Second
	// File transfers get no overall deadline unless configured; only the
	// manifest fetch is bounded end to end.
	fileClient := transport.NewClient(transport.Config{
		ConnectTimeout: connect,
		TotalTimeout:   time.Duration(cfg.Timeouts.FileSeconds) * time.Second,
	})
	manifestClient := transport.NewClient(transport.Config{
		ConnectTimeout: connect,
		TotalTimeout:   time.Duration(cfg.Timeouts.ManifestSeconds) * time.Second,
	})
	dl := download.New(fileClient, manifestClient, ratelimit.NewLimiter(bandwidth))

	tok := cancel.New()
	sink := events.NewChannelSink(256)
	eng := sync.NewEngine(runCfg, dl, sink, logger, tok)

	return runEngine(ctx, eng, tok, sink, mode)
}

// applyRunFlags overrides config values with command-line flags
func applyRunFlags(cfg *config.Config) {
	if syncFlags.Host != "" {
		cfg.Remote.Host = syncFlags.Host
	}
	if syncFlags.LogFile != "" {
		cfg.Logging.Enabled = true
		cfg.Logging.File = syncFlags.LogFile
	}
	if syncFlags.LogFormat != "" {
		cfg.Logging.Format = syncFlags.LogFormat
	}
	if syncFlags.LogLevel != "" {
		cfg.Logging.Level = syncFlags.LogLevel
	}
}
