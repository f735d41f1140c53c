// Package pathutil converts arbitrary path strings into safe, canonical
// slash-separated relative paths. Two variants exist: a lenient form for
// paths discovered on the local filesystem, and a strict form for
// untrusted manifest input that rejects anything suspicious instead of
// silently clamping it.
package pathutil

import (
	"fmt"
	"strings"
)

// Redundant root prefixes that manifests may or may not include. They are
// stripped so a manifest can reference files with or without them and
// still address the same location under the sync root.
var rootPrefixes = []string{
	"resources_override/mappack/",
	"resources_override/",
	"mappack/",
}

// PathError describes why a manifest path was rejected.
type PathError struct {
	Path    string
	Message string
}

func (e *PathError) Error() string {
	return fmt.Sprintf("invalid path %q: %s", e.Path, e.Message)
}

// Normalize converts a path to canonical relative form: backslashes become
// slashes, leading slashes are stripped, repeated slashes collapse, and
// "."/".." segments are resolved component-wise. A ".." at the root is
// dropped rather than allowed to escape upward.
//
// This lenient variant is only for paths discovered by local directory
// iteration; manifest input must go through NormalizeRel.
func Normalize(path string) string {
	s := strings.ReplaceAll(path, "\\", "/")
	s = strings.TrimLeft(s, "/")

	var parts []string
	for _, seg := range strings.Split(s, "/") {
		switch seg {
		case "", ".":
			// collapsed slash or current dir, skip
		case "..":
			if len(parts) > 0 {
				parts = parts[:len(parts)-1]
			}
		default:
			parts = append(parts, seg)
		}
	}
	return strings.Join(parts, "/")
}

// ManifestRel converts a locally discovered path, relative to the sync
// root, into the manifest-relative form used for membership tests. It
// applies the lenient normalization plus the same root prefix stripping
// that manifest entries receive, so both sides compare equal.
func ManifestRel(path string) string {
	rel := Normalize(path)
	for _, prefix := range rootPrefixes {
		if strings.HasPrefix(rel, prefix) {
			return Normalize(rel[len(prefix):])
		}
	}
	return rel
}

// NormalizeRel validates and normalizes an untrusted manifest path.
// Unlike Normalize it rejects rather than clamps: NUL bytes, UNC-style
// double-slash prefixes, drive letters or any ':' in a segment, and ".."
// segments that would climb past the root all return an error.
//
// After dot-segment resolution one redundant root prefix is stripped
// (see rootPrefixes) and the result re-normalized, so "mappack/foo.png"
// and "foo.png" both map to "foo.png". The final path must be non-empty
// and free of ".." substrings.
func NormalizeRel(path string) (string, error) {
	if strings.ContainsRune(path, 0) {
		return "", &PathError{Path: path, Message: "contains NUL byte"}
	}
	if strings.HasPrefix(path, "//") || strings.HasPrefix(path, "\\\\") {
		return "", &PathError{Path: path, Message: "UNC-style prefix not allowed"}
	}

	s := strings.ReplaceAll(path, "\\", "/")
	s = strings.TrimLeft(s, "/")

	resolved, err := resolveStrict(path, s)
	if err != nil {
		return "", err
	}

	for _, prefix := range rootPrefixes {
		// Dot-segment resolution dropped any trailing slash, so a path
		// that was exactly a prefix now equals the prefix minus its
		// slash. It strips to empty and fails the check below.
		if resolved == strings.TrimSuffix(prefix, "/") {
			resolved = ""
			break
		}
		if strings.HasPrefix(resolved, prefix) {
			resolved = resolved[len(prefix):]
			// Stripping may expose "./" or "../" again.
			resolved, err = resolveStrict(path, resolved)
			if err != nil {
				return "", err
			}
			break
		}
	}

	if resolved == "" {
		return "", &PathError{Path: path, Message: "normalizes to empty path"}
	}
	// Structural resolution above already removed every dot-dot segment;
	// this re-check guards the invariant independently.
	if strings.Contains(resolved, "..") {
		return "", &PathError{Path: path, Message: "retains '..' after normalization"}
	}
	return resolved, nil
}

// resolveStrict resolves dot segments of an already slash-normalized
// string, rejecting escape attempts and ':' characters. orig is the
// original input, used only for error reporting.
func resolveStrict(orig, s string) (string, error) {
	var parts []string
	for _, seg := range strings.Split(s, "/") {
		switch seg {
		case "", ".":
		case "..":
			if len(parts) == 0 {
				return "", &PathError{Path: orig, Message: "escapes above root"}
			}
			parts = parts[:len(parts)-1]
		default:
			if strings.Contains(seg, ":") {
				return "", &PathError{Path: orig, Message: "segment contains ':'"}
			}
			parts = append(parts, seg)
		}
	}
	return strings.Join(parts, "/"), nil
}
