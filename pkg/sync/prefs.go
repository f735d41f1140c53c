package sync

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/cegaiel/mappacksync/pkg/logging"
)

const (
	prefsRelPath = "prefs/ClientPrefs_Common.def"
	mapPathKey   = "string mapPath"

	// syncMapPath points the client at the synced map tree.
	syncMapPath = "resources_override/mappack/resources/interface/maps"
	// vanillaMapPath restores the stock map location after removal.
	vanillaMapPath = "resources/mappack/resources/interface/maps"
)

// fixClientPrefs rewrites the mapPath line of the client prefs file to
// the given value. Only that single line changes; everything else in the
// file, including line endings, is preserved byte for byte. A missing
// prefs file or key is logged and skipped, never fatal.
func (e *Engine) fixClientPrefs(want string) {
	e.separator()
	e.line("Checking client map path setting...")

	prefsPath := filepath.Join(e.cfg.LocalBase, filepath.FromSlash(prefsRelPath))
	raw, err := os.ReadFile(prefsPath)
	if err != nil {
		e.line("(skipped) could not read %s: %v", prefsRelPath, err)
		return
	}

	updated, current, found := patchMapPath(string(raw), want)
	if !found {
		e.line("(skipped) %s has no %q entry.", prefsRelPath, mapPathKey)
		return
	}
	if current == want {
		e.line("Map path setting is already correct.")
		return
	}

	if err := writeFileAtomic(prefsPath, []byte(updated)); err != nil {
		e.line("FAILED UPDATE: %s: %v", prefsRelPath, err)
		e.log.Error("cannot update client prefs", err, logging.Fields{"path": prefsRelPath})
		return
	}
	e.line("Updated map path setting to %q.", want)
	e.log.Info("client prefs updated", logging.Fields{"from": current, "to": want})
}

// patchMapPath locates the first mapPath line, extracts its quoted value
// and rewrites it to want. Splitting on '\n' keeps any '\r' inside the
// line, so Windows line endings survive the round trip.
func patchMapPath(content, want string) (updated, current string, found bool) {
	lines := strings.Split(content, "\n")
	for i, line := range lines {
		idx := strings.Index(line, mapPathKey)
		if idx < 0 {
			continue
		}
		open := strings.IndexByte(line[idx:], '"')
		if open < 0 {
			continue
		}
		open += idx
		end := strings.IndexByte(line[open+1:], '"')
		if end < 0 {
			continue
		}
		end += open + 1

		current = line[open+1 : end]
		lines[i] = line[:open+1] + want + line[end:]
		return strings.Join(lines, "\n"), current, true
	}
	return "", "", false
}

// writeFileAtomic replaces path via a temp file in the same directory so
// a crash mid-write never leaves a truncated prefs file.
func writeFileAtomic(path string, data []byte) error {
	tmp := fmt.Sprintf("%s.tmp%d", path, os.Getpid())
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return err
	}
	if err := os.Rename(tmp, path); err != nil {
		os.Remove(tmp)
		return err
	}
	return nil
}
