package sync

import (
	"context"
	"errors"
	"os"

	"github.com/cegaiel/mappacksync/pkg/cancel"
	"github.com/cegaiel/mappacksync/pkg/events"
	"github.com/cegaiel/mappacksync/pkg/hashing"
	"github.com/cegaiel/mappacksync/pkg/logging"
	"github.com/cegaiel/mappacksync/pkg/manifest"
	"github.com/cegaiel/mappacksync/pkg/transport"
)

// updateOrAddFiles walks the sorted manifest entries and downloads every
// file that is missing locally or whose content digest differs. A failed
// entry is counted and skipped; the remaining entries still run.
func (e *Engine) updateOrAddFiles(ctx context.Context, md *manifest.Data, c *Counters) {
	e.separator()
	e.line("Checking for missing or changed files...")
	e.sink.Publish(events.ProgressInit{Total: len(md.Entries)})

	baseURL := e.fileBaseURL(md)
	before := *c

	for i, entry := range md.Entries {
		if e.canceled() {
			e.line("Canceled during file update.")
			return
		}

		e.status("File %d/%d: %s", i+1, len(md.Entries), entry.RelPath)
		dest := e.cfg.DestPath(entry.RelPath)

		if _, err := os.Stat(dest); err == nil {
			local, err := hashing.File(dest)
			if err != nil {
				e.line("FAILED HASH (local): %s: %v", entry.RelPath, err)
				e.log.Error("cannot hash local file", err, logging.Fields{"path": entry.RelPath})
				c.Failed++
				e.sink.Publish(events.ProgressSet{N: i + 1})
				continue
			}
			if hashing.Equal(local, entry.SHA256) {
				c.Unchanged++
				e.sink.Publish(events.ProgressSet{N: i + 1})
				continue
			}
			// Exists but differs; re-download replaces it atomically.
			if err := e.fetchEntry(ctx, baseURL, entry, dest); err != nil {
				if errors.Is(err, cancel.ErrCanceled) {
					e.sink.Publish(events.ProgressSet{N: i + 1})
					continue
				}
				e.line("FAILED DOWNLOAD: %s: %v", entry.RelPath, err)
				e.log.Error("download failed", err, logging.Fields{"path": entry.RelPath})
				c.Failed++
				e.sink.Publish(events.ProgressSet{N: i + 1})
				continue
			}
			c.Updated++
			e.line("UPDATED: %s", entry.RelPath)
			e.sink.Publish(events.ProgressSet{N: i + 1})
			continue
		}

		if err := e.fetchEntry(ctx, baseURL, entry, dest); err != nil {
			if errors.Is(err, cancel.ErrCanceled) {
				e.sink.Publish(events.ProgressSet{N: i + 1})
				continue
			}
			e.line("FAILED DOWNLOAD: %s: %v", entry.RelPath, err)
			e.log.Error("download failed", err, logging.Fields{"path": entry.RelPath})
			c.Failed++
			e.sink.Publish(events.ProgressSet{N: i + 1})
			continue
		}
		c.Downloaded++
		e.line("DOWNLOADED: %s", entry.RelPath)
		e.sink.Publish(events.ProgressSet{N: i + 1})
	}

	if *c == before {
		e.line("No missing or changed files found. All files are up to date.")
	}
}

func (e *Engine) fetchEntry(ctx context.Context, baseURL string, entry manifest.Entry, dest string) error {
	url := transport.JoinURL(baseURL, entry.RemotePath)
	return e.dl.FetchFile(ctx, url, dest, entry.SHA256, e.tok)
}
