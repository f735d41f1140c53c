package sync

import (
	"io/fs"
	"os"
	"path/filepath"

	"github.com/cegaiel/mappacksync/pkg/logging"
	"github.com/cegaiel/mappacksync/pkg/manifest"
	"github.com/cegaiel/mappacksync/pkg/pathutil"
)

// deleteOrphans walks every regular file under the sync root and deletes
// those whose manifest-relative path is not listed. It runs only with a
// validated manifest in hand; files that are listed but hash-mismatched
// are never touched here.
func (e *Engine) deleteOrphans(md *manifest.Data, c *Counters) {
	e.separator()
	e.line("Checking for obsolete files...")

	deletedBefore := c.Deleted

	err := filepath.WalkDir(e.cfg.SyncRoot, func(path string, d fs.DirEntry, err error) error {
		if e.canceled() {
			return filepath.SkipAll
		}
		if err != nil {
			e.line("FAILED SCAN: %s: %v", path, err)
			return nil
		}
		if d.IsDir() || !d.Type().IsRegular() {
			return nil
		}

		rel, err := filepath.Rel(e.cfg.SyncRoot, path)
		if err != nil {
			return nil
		}
		key := pathutil.ManifestRel(filepath.ToSlash(rel))
		if _, wanted := md.RelSet[key]; wanted {
			return nil
		}

		if err := os.Remove(path); err != nil {
			e.line("FAILED DELETE: %s: %v", key, err)
			e.log.Error("cannot delete obsolete file", err, logging.Fields{"path": key})
			c.Failed++
			return nil
		}
		c.Deleted++
		e.line("DELETED: %s", key)
		return nil
	})
	if err != nil && err != filepath.SkipAll {
		e.line("FAILED SCAN: %v", err)
		e.log.Error("orphan scan failed", err, nil)
	}

	if c.Deleted == deletedBefore {
		e.line("No obsolete files found.")
	}
}

// removeListedFiles deletes every manifest-listed file from the sync
// root. Used by the remove flow; absent files count as already removed.
func (e *Engine) removeListedFiles(md *manifest.Data, c *Counters) {
	e.separator()
	e.line("Removing %d files...", len(md.Entries))

	for _, entry := range md.Entries {
		if e.canceled() {
			e.line("Canceled during removal.")
			return
		}
		dest := e.cfg.DestPath(entry.RelPath)
		if _, err := os.Stat(dest); err != nil {
			c.Missing++
			continue
		}
		if err := os.Remove(dest); err != nil {
			e.line("FAILED DELETE: %s: %v", entry.RelPath, err)
			e.log.Error("cannot delete file", err, logging.Fields{"path": entry.RelPath})
			c.Failed++
			continue
		}
		c.Deleted++
		e.line("DELETED: %s", entry.RelPath)
	}
}
