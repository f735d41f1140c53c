package sync

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/cegaiel/mappacksync/pkg/cancel"
	"github.com/cegaiel/mappacksync/pkg/download"
	"github.com/cegaiel/mappacksync/pkg/events"
	"github.com/cegaiel/mappacksync/pkg/logging"
	"github.com/cegaiel/mappacksync/pkg/manifest"
)

// Engine runs the reconciliation flows against a validated install
// folder. It is single-use per run but safe to reuse sequentially.
type Engine struct {
	cfg  *Config
	dl   *download.Downloader
	sink events.Sink
	log  logging.Logger
	tok  *cancel.Token
}

// NewEngine wires an engine. sink and log may be nil; tok may be nil
// when cancellation is not needed.
func NewEngine(cfg *Config, dl *download.Downloader, sink events.Sink, log logging.Logger, tok *cancel.Token) *Engine {
	if sink == nil {
		sink = events.NullSink{}
	}
	if log == nil {
		log = logging.NewNullLogger()
	}
	return &Engine{cfg: cfg, dl: dl, sink: sink, log: log, tok: tok}
}

func (e *Engine) line(format string, args ...any) {
	e.sink.Publish(events.LogLine{Text: fmt.Sprintf(format, args...)})
}

func (e *Engine) status(format string, args ...any) {
	e.sink.Publish(events.StatusText{Text: fmt.Sprintf(format, args...)})
}

func (e *Engine) separator() {
	e.sink.Publish(events.LogLine{Text: "----------------------------------------"})
}

func (e *Engine) canceled() bool {
	return e.tok.Requested()
}

// Sync runs the full reconciliation flow: fetch and validate the
// manifest, download missing or changed files, delete orphans, prune
// empty directories, clean up legacy files and patch the client prefs.
// A manifest failure aborts before any destructive phase.
func (e *Engine) Sync(ctx context.Context) *Summary {
	start := time.Now()
	sum := &Summary{RunID: uuid.NewString(), Mode: ModeSync}
	e.log.Info("sync run started", logging.Fields{"run_id": sum.RunID, "folder": e.cfg.LocalBase})

	defer func() {
		sum.Duration = time.Since(start)
		e.log.Info("sync run finished", logging.Fields{
			"run_id":     sum.RunID,
			"status":     string(sum.Status),
			"downloaded": sum.Counters.Downloaded,
			"updated":    sum.Counters.Updated,
			"unchanged":  sum.Counters.Unchanged,
			"deleted":    sum.Counters.Deleted,
			"failed":     sum.Counters.Failed,
		})
		e.sink.Publish(events.Done{Summary: sum})
	}()

	md, err := e.fetchManifest(ctx)
	if err != nil {
		if errors.Is(err, cancel.ErrCanceled) {
			sum.Status = StatusCanceled
			e.line("Canceled.")
			return sum
		}
		sum.Status = StatusFailed
		sum.Err = err
		e.line("ERROR: %v", err)
		e.line("Sync aborted; no downloads or deletions were performed.")
		e.log.Error("manifest unavailable, sync aborted", err, nil)
		return sum
	}

	e.updateOrAddFiles(ctx, md, &sum.Counters)
	if e.canceled() {
		sum.Status = StatusCanceled
		e.line("Canceled.")
		return sum
	}

	e.deleteOrphans(md, &sum.Counters)
	if e.canceled() {
		sum.Status = StatusCanceled
		e.line("Canceled.")
		return sum
	}

	e.pruneEmptyDirs(e.cfg.SyncRoot, false, &sum.Counters)
	if e.canceled() {
		sum.Status = StatusCanceled
		e.line("Canceled.")
		return sum
	}

	e.legacyCleanup(ctx)
	if e.canceled() {
		sum.Status = StatusCanceled
		e.line("Canceled.")
		return sum
	}

	e.fixClientPrefs(syncMapPath)

	e.separator()
	if sum.Counters.Failed > 0 {
		sum.Status = StatusPartial
	} else {
		sum.Status = StatusSuccess
	}
	e.line("Sync complete: %d downloaded, %d updated, %d unchanged, %d deleted, %d failed.",
		sum.Counters.Downloaded, sum.Counters.Updated, sum.Counters.Unchanged,
		sum.Counters.Deleted, sum.Counters.Failed)
	return sum
}

// Remove deletes every manifest-listed file from the sync root, prunes
// what is left empty, runs the legacy cleanup and restores the prefs
// map path. Like Sync it refuses to delete anything without a parsed
// and validated manifest.
func (e *Engine) Remove(ctx context.Context) *Summary {
	start := time.Now()
	sum := &Summary{RunID: uuid.NewString(), Mode: ModeRemove}
	e.log.Info("remove run started", logging.Fields{"run_id": sum.RunID, "folder": e.cfg.LocalBase})

	defer func() {
		sum.Duration = time.Since(start)
		e.log.Info("remove run finished", logging.Fields{
			"run_id":  sum.RunID,
			"status":  string(sum.Status),
			"deleted": sum.Counters.Deleted,
			"missing": sum.Counters.Missing,
			"failed":  sum.Counters.Failed,
		})
		e.sink.Publish(events.Done{Summary: sum})
	}()

	md, err := e.fetchManifest(ctx)
	if err != nil {
		if errors.Is(err, cancel.ErrCanceled) {
			sum.Status = StatusCanceled
			e.line("Canceled.")
			return sum
		}
		sum.Status = StatusFailed
		sum.Err = err
		e.line("ERROR: %v", err)
		e.line("Remove aborted; no deletions were performed.")
		e.log.Error("manifest unavailable, remove aborted", err, nil)
		return sum
	}

	e.removeListedFiles(md, &sum.Counters)
	if e.canceled() {
		sum.Status = StatusCanceled
		e.line("Canceled.")
		return sum
	}

	e.pruneEmptyDirs(e.cfg.SyncRoot, true, &sum.Counters)
	if e.canceled() {
		sum.Status = StatusCanceled
		e.line("Canceled.")
		return sum
	}

	e.legacyCleanup(ctx)
	if e.canceled() {
		sum.Status = StatusCanceled
		e.line("Canceled.")
		return sum
	}

	e.fixClientPrefs(vanillaMapPath)

	e.separator()
	if sum.Counters.Failed > 0 {
		sum.Status = StatusPartial
	} else {
		sum.Status = StatusSuccess
	}
	e.line("Remove complete: %d deleted, %d already absent, %d failed.",
		sum.Counters.Deleted, sum.Counters.Missing, sum.Counters.Failed)
	return sum
}

// fetchManifest downloads, parses and validates the manifest. Any error
// here is fatal to the run: no phase that deletes local files may
// execute without a trusted manifest.
func (e *Engine) fetchManifest(ctx context.Context) (*manifest.Data, error) {
	e.status("Downloading manifest...")
	e.line("Downloading manifest from %s", e.cfg.ManifestURL)

	body, err := e.dl.FetchString(ctx, e.cfg.ManifestURL, e.cfg.ManifestMaxBytes, e.tok)
	if err != nil {
		return nil, fmt.Errorf("download manifest: %w", err)
	}

	raw, baseURL, err := manifest.Parse([]byte(body))
	if err != nil {
		return nil, fmt.Errorf("parse manifest: %w", err)
	}

	md, err := manifest.ValidateAndNormalize(raw)
	if err != nil {
		return nil, fmt.Errorf("validate manifest: %w", err)
	}
	md.BaseURL = baseURL

	e.line("Manifest lists %d files.", len(md.Entries))
	e.log.Info("manifest loaded", logging.Fields{"files": len(md.Entries), "base_url": baseURL})
	return md, nil
}

// fileBaseURL is the base for entry downloads: the manifest's own
// base_url when present, the configured remote root otherwise.
func (e *Engine) fileBaseURL(md *manifest.Data) string {
	if md.BaseURL != "" {
		return md.BaseURL
	}
	return e.cfg.FileBaseURL
}
