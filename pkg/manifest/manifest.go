// Package manifest parses and validates the server-provided JSON document
// that enumerates expected files and their SHA-256 digests. The manifest
// drives destructive deletion as well as downloads, so validation is
// all-or-nothing: a single malformed entry rejects the whole document.
package manifest

import (
	"fmt"
	"sort"

	"github.com/cegaiel/mappacksync/pkg/hashing"
	"github.com/cegaiel/mappacksync/pkg/pathutil"
)

// RawEntry is one element of the manifest's "files" array, exactly as
// parsed. Only validation turns raw entries into usable Entries.
type RawEntry struct {
	Path string
	Hash string
}

// Entry is a validated manifest entry.
type Entry struct {
	// RemotePath is the server-relative path with generic slashes, used
	// to build the download URL.
	RemotePath string
	// RelPath is the validated, local-safe relative path under the sync
	// root. Never empty, never absolute, never contains "..".
	RelPath string
	// SHA256 is the expected digest, 64 hex chars as supplied (compare
	// case-insensitively).
	SHA256 string
}

// Data owns the validated, deduplicated entry list plus the membership
// set used for orphan detection. Rebuilt on every run, never persisted.
type Data struct {
	// BaseURL is the optional "base_url" value from the manifest. Empty
	// when the manifest does not carry one.
	BaseURL string
	// Entries is sorted lexicographically by RelPath for deterministic
	// processing and logs.
	Entries []Entry
	// RelSet answers "is this local file still wanted" in O(1).
	RelSet map[string]struct{}
}

// ValidationError describes why an entry made the manifest unusable.
type ValidationError struct {
	Path   string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid manifest entry %q: %s", e.Path, e.Reason)
}

// ValidateAndNormalize checks every raw entry and produces the sorted,
// deduplicated work list. Any invalid entry fails the whole manifest:
// a partially-usable manifest must never drive deletion.
func ValidateAndNormalize(raw []RawEntry) (*Data, error) {
	data := &Data{
		Entries: make([]Entry, 0, len(raw)),
		RelSet:  make(map[string]struct{}, len(raw)),
	}

	for _, r := range raw {
		if r.Path == "" {
			return nil, &ValidationError{Path: r.Path, Reason: "empty path"}
		}
		if !hashing.ValidHex(r.Hash) {
			return nil, &ValidationError{Path: r.Path, Reason: "digest is not 64 hex characters"}
		}
		rel, err := pathutil.NormalizeRel(r.Path)
		if err != nil {
			return nil, &ValidationError{Path: r.Path, Reason: err.Error()}
		}
		if _, dup := data.RelSet[rel]; dup {
			return nil, &ValidationError{Path: r.Path, Reason: fmt.Sprintf("duplicate path %q after normalization", rel)}
		}
		data.RelSet[rel] = struct{}{}
		data.Entries = append(data.Entries, Entry{
			RemotePath: pathutil.Normalize(r.Path),
			RelPath:    rel,
			SHA256:     r.Hash,
		})
	}

	sort.Slice(data.Entries, func(i, j int) bool {
		return data.Entries[i].RelPath < data.Entries[j].RelPath
	})
	return data, nil
}
