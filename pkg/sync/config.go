package sync

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/cegaiel/mappacksync/pkg/config"
	"github.com/cegaiel/mappacksync/pkg/manifest"
)

const (
	// SentinelExe must exist in the selected folder; it gates every run
	// so the tool never reconciles an arbitrary directory.
	SentinelExe = "istaria.exe"

	overrideDirName = "resources_override"
	mappackDirName  = "mappack"
)

// Config is the immutable per-run configuration, built once by Preflight
// and never mutated afterwards.
type Config struct {
	// ManifestURL is the full URL of the manifest document.
	ManifestURL string
	// LegacyManifestURL is the full URL of the old-generation manifest.
	LegacyManifestURL string
	// FileBaseURL is the base that entry remote paths are joined to when
	// the manifest does not carry its own base_url.
	FileBaseURL string
	// ManifestMaxBytes caps manifest document size.
	ManifestMaxBytes int64

	// LocalBase is the validated install folder.
	LocalBase string
	// OverrideRoot is LocalBase/resources_override.
	OverrideRoot string
	// SyncRoot is the directory subtree this tool exclusively owns:
	// LocalBase/resources_override/mappack.
	SyncRoot string
}

// PreflightError reports why a folder selection was rejected. Preflight
// failures abort before any network or deletion activity.
type PreflightError struct {
	Folder string
	Reason string
}

func (e *PreflightError) Error() string {
	return fmt.Sprintf("preflight failed for %q: %s", e.Folder, e.Reason)
}

// Preflight validates the selected install folder and computes the run
// configuration. The folder must exist, be a directory and contain the
// sentinel executable; the sync root is created if absent.
func Preflight(folder string, remote *config.Config) (*Config, error) {
	if folder == "" {
		return nil, &PreflightError{Folder: folder, Reason: "no folder selected"}
	}

	base, err := filepath.Abs(folder)
	if err != nil {
		return nil, &PreflightError{Folder: folder, Reason: fmt.Sprintf("cannot resolve path: %v", err)}
	}

	info, err := os.Stat(base)
	if err != nil {
		return nil, &PreflightError{Folder: folder, Reason: "folder does not exist"}
	}
	if !info.IsDir() {
		return nil, &PreflightError{Folder: folder, Reason: "not a directory"}
	}

	if _, err := os.Stat(filepath.Join(base, SentinelExe)); err != nil {
		return nil, &PreflightError{Folder: folder, Reason: fmt.Sprintf("folder does not contain %s; choose a valid game install folder", SentinelExe)}
	}

	overrideRoot := filepath.Join(base, overrideDirName)
	if info, err := os.Stat(overrideRoot); err == nil && !info.IsDir() {
		return nil, &PreflightError{Folder: folder, Reason: overrideDirName + " exists but is not a directory"}
	}

	syncRoot := filepath.Join(overrideRoot, mappackDirName)
	if err := os.MkdirAll(syncRoot, 0o755); err != nil {
		return nil, &PreflightError{Folder: folder, Reason: fmt.Sprintf("cannot create sync root: %v", err)}
	}

	return &Config{
		ManifestURL:       remote.ManifestURL(),
		LegacyManifestURL: remote.LegacyManifestURL(),
		FileBaseURL:       remote.FileBaseURL(),
		ManifestMaxBytes:  manifest.MaxSize,
		LocalBase:         base,
		OverrideRoot:      overrideRoot,
		SyncRoot:          syncRoot,
	}, nil
}

// DestPath computes the local destination for a validated manifest
// relative path.
func (c *Config) DestPath(relPath string) string {
	return filepath.Join(c.SyncRoot, filepath.FromSlash(relPath))
}
