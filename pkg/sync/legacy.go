package sync

import (
	"context"
	"errors"
	"os"
	"path/filepath"

	"github.com/cegaiel/mappacksync/pkg/cancel"
	"github.com/cegaiel/mappacksync/pkg/manifest"
	"github.com/cegaiel/mappacksync/pkg/pathutil"
)

// legacyMapsSubtree is where a prior tool generation installed map
// files, relative to the override root. Pruned after legacy deletions.
const legacyMapsSubtree = "resources/interface/maps"

// legacyCleanup removes files installed by a previous generation of the
// tool, listed by a secondary manifest. Everything here is best effort:
// a missing or malformed legacy manifest is logged as skipped, never
// fatal, because this is a courtesy cleanup for upgraders. Run counters
// stay untouched.
func (e *Engine) legacyCleanup(ctx context.Context) {
	e.separator()
	e.line("Checking for files from previous versions...")

	body, err := e.dl.FetchString(ctx, e.cfg.LegacyManifestURL, e.cfg.ManifestMaxBytes, e.tok)
	if err != nil {
		if errors.Is(err, cancel.ErrCanceled) {
			return
		}
		e.line("(skipped) could not download the previous-version manifest: %v", err)
		return
	}

	paths, err := manifest.ParseLegacyPaths([]byte(body))
	if err != nil {
		e.line("(skipped) could not parse the previous-version manifest: %v", err)
		return
	}
	if len(paths) == 0 {
		e.line("No files from previous versions found.")
		return
	}

	removed := 0
	for _, p := range paths {
		if e.canceled() {
			return
		}
		rel, err := pathutil.NormalizeRel(p)
		if err != nil {
			e.line("(skipped) invalid previous-version path: %v", err)
			continue
		}
		target := filepath.Join(e.cfg.OverrideRoot, filepath.FromSlash(rel))
		if _, err := os.Stat(target); err != nil {
			continue
		}
		if err := os.Remove(target); err != nil {
			e.line("FAILED DELETE (previous version): %s: %v", rel, err)
			continue
		}
		removed++
		e.line("DELETED (previous version): %s", rel)
	}

	if removed == 0 {
		e.line("No files from previous versions found.")
		return
	}

	e.pruneDirsUnder(filepath.Join(e.cfg.OverrideRoot, filepath.FromSlash(legacyMapsSubtree)), true)
}
