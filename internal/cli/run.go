package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"

	"github.com/cheggaaa/pb/v3"

	"github.com/cegaiel/mappacksync/pkg/cancel"
	"github.com/cegaiel/mappacksync/pkg/config"
	"github.com/cegaiel/mappacksync/pkg/events"
	"github.com/cegaiel/mappacksync/pkg/logging"
	"github.com/cegaiel/mappacksync/pkg/sync"
)

// loadConfig loads configuration from file or returns defaults
func loadConfig() (*config.Config, error) {
	var cfg *config.Config
	var err error
	if rootOpts.configFile != "" {
		cfg, err = config.LoadFromFile(rootOpts.configFile)
	} else {
		cfg, err = config.LoadDefault()
	}
	if err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// createLogger builds a logger from the logging settings; a disabled or
// file-less configuration yields a null logger.
func createLogger(cfg *config.LoggingConfig) (logging.Logger, error) {
	if !cfg.Enabled || cfg.File == "" {
		return logging.NewNullLogger(), nil
	}

	var format logging.Format
	switch cfg.Format {
	case "json":
		format = logging.FormatJSON
	default:
		format = logging.FormatText
	}

	return logging.NewFileLogger(logging.FileLoggerConfig{
		Path:   cfg.File,
		Format: format,
		Level:  logging.ParseLevel(cfg.Level),
	})
}

// watchInterrupt requests cancellation on the first SIGINT/SIGTERM so
// the engine can stop at the next safe point. A second signal kills the
// process the normal way.
func watchInterrupt(tok *cancel.Token) (stop func()) {
	ch := make(chan os.Signal, 1)
	signal.Notify(ch, os.Interrupt, syscall.SIGTERM)
	go func() {
		if _, ok := <-ch; ok {
			fmt.Fprintln(os.Stderr, "Interrupt received, stopping at a safe point...")
			tok.Request()
			signal.Stop(ch)
		}
	}()
	return func() {
		signal.Stop(ch)
		close(ch)
	}
}

// renderEvents consumes engine events until the sink closes, driving the
// progress bar and log output, and returns the run summary.
func renderEvents(sink *events.ChannelSink) *sync.Summary {
	var bar *pb.ProgressBar
	var summary *sync.Summary

	for ev := range sink.Events() {
		switch ev := ev.(type) {
		case events.LogLine:
			if !rootOpts.quiet {
				if bar != nil {
					bar.Finish()
					bar = nil
				}
				fmt.Println(ev.Text)
			}
		case events.StatusText:
			if rootOpts.verbose && !rootOpts.quiet {
				fmt.Println(ev.Text)
			}
		case events.ProgressInit:
			if !rootOpts.quiet && !rootOpts.verbose && ev.Total > 0 {
				bar = pb.StartNew(ev.Total)
			}
		case events.ProgressSet:
			if bar != nil {
				bar.SetCurrent(int64(ev.N))
			}
		case events.Done:
			if s, ok := ev.Summary.(*sync.Summary); ok {
				summary = s
			}
		}
	}
	if bar != nil {
		bar.Finish()
	}
	return summary
}

// ExitError carries a non-zero process exit code up to main without
// short-circuiting deferred cleanup the way os.Exit would.
type ExitError struct {
	Code int
}

func (e *ExitError) Error() string {
	return fmt.Sprintf("exit status %d", e.Code)
}

// summaryError maps a run summary to the command result: nil for a
// fully successful run, an ExitError otherwise.
func summaryError(summary *sync.Summary) error {
	if code := summary.Status.ExitCode(); code != 0 {
		return &ExitError{Code: code}
	}
	return nil
}

// runEngine wires an engine run: signal handling, event rendering and
// the final exit status.
func runEngine(ctx context.Context, eng *sync.Engine, tok *cancel.Token,
	sink *events.ChannelSink, mode sync.Mode) error {

	stop := watchInterrupt(tok)
	defer stop()

	go func() {
		defer sink.Close()
		if mode == sync.ModeRemove {
			eng.Remove(ctx)
		} else {
			eng.Sync(ctx)
		}
	}()

	summary := renderEvents(sink)
	if summary == nil {
		return fmt.Errorf("engine finished without a summary")
	}

	if !rootOpts.quiet {
		fmt.Println(summary.String())
	}

	return summaryError(summary)
}

// parseBandwidth parses a human bandwidth string like "500K" or "10M"
// into bytes per second. An empty string means unlimited.
func parseBandwidth(s string) (int64, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, nil
	}

	multiplier := int64(1)
	switch {
	case strings.HasSuffix(s, "G"), strings.HasSuffix(s, "g"):
		multiplier = 1 << 30
		s = s[:len(s)-1]
	case strings.HasSuffix(s, "M"), strings.HasSuffix(s, "m"):
		multiplier = 1 << 20
		s = s[:len(s)-1]
	case strings.HasSuffix(s, "K"), strings.HasSuffix(s, "k"):
		multiplier = 1 << 10
		s = s[:len(s)-1]
	}

	n, err := strconv.ParseInt(s, 10, 64)
	if err != nil || n < 0 {
		return 0, fmt.Errorf("invalid bandwidth limit: %q", s)
	}
	return n * multiplier, nil
}
