package sync

import (
	"io/fs"
	"os"
	"path/filepath"
	"sort"
)

// pruneEmptyDirs removes directories left empty under root, deepest
// first so a chain of empty directories collapses in one pass. When
// includeRoot is set the root itself is removed too if it ends up empty.
func (e *Engine) pruneEmptyDirs(root string, includeRoot bool, c *Counters) {
	e.separator()
	e.line("Removing empty directories...")
	pruned := e.pruneDirsUnder(root, includeRoot)
	c.PrunedDirs += pruned
	if pruned == 0 {
		e.line("No empty directories found.")
	}
}

// pruneDirsUnder does the actual walk and removal without the phase
// banner, so the legacy cleanup can reuse it quietly. Removal failures
// are silent: a non-empty directory is the normal case.
func (e *Engine) pruneDirsUnder(root string, includeRoot bool) int {
	var dirs []string
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil || !d.IsDir() {
			return nil
		}
		if path != root || includeRoot {
			dirs = append(dirs, path)
		}
		return nil
	})
	if err != nil {
		return 0
	}

	// Longest path first guarantees children are attempted before their
	// parents, so a fully empty subtree collapses bottom-up.
	sort.Slice(dirs, func(i, j int) bool { return len(dirs[i]) > len(dirs[j]) })

	pruned := 0
	for _, dir := range dirs {
		if e.canceled() {
			return pruned
		}
		if err := os.Remove(dir); err == nil {
			pruned++
			if rel, relErr := filepath.Rel(e.cfg.LocalBase, dir); relErr == nil {
				e.line("REMOVED EMPTY DIR: %s", filepath.ToSlash(rel))
			}
		}
	}
	return pruned
}
