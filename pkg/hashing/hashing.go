// Package hashing provides streaming SHA-256 digests and the hex
// comparison rules used throughout the synchronizer. Manifests may supply
// mixed-case hex, so comparisons are always case-insensitive ASCII.
package hashing

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"hash"
	"io"
	"os"
)

// HexLength is the length of a lowercase hex SHA-256 digest.
const HexLength = 64

// fileChunkSize is the read buffer used when hashing local files.
const fileChunkSize = 256 * 1024

// New returns a fresh SHA-256 hasher. The downloader feeds it alongside
// its file writes so the digest costs no extra I/O pass.
func New() hash.Hash {
	return sha256.New()
}

// Finish returns the lowercase hex digest of h.
func Finish(h hash.Hash) string {
	return hex.EncodeToString(h.Sum(nil))
}

// File streams the file at path through SHA-256 and returns the lowercase
// hex digest.
func File(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", fmt.Errorf("open for hashing: %w", err)
	}
	defer f.Close()

	h := sha256.New()
	buf := make([]byte, fileChunkSize)
	if _, err := io.CopyBuffer(h, f, buf); err != nil {
		return "", fmt.Errorf("hash %s: %w", path, err)
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}

// Equal compares two hex digests, ignoring ASCII case. Length mismatch is
// never equal.
func Equal(a, b string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := 0; i < len(a); i++ {
		ca, cb := lowerASCII(a[i]), lowerASCII(b[i])
		if ca != cb {
			return false
		}
	}
	return true
}

// ValidHex reports whether s is exactly 64 hex characters.
func ValidHex(s string) bool {
	if len(s) != HexLength {
		return false
	}
	for i := 0; i < len(s); i++ {
		c := s[i]
		switch {
		case c >= '0' && c <= '9':
		case c >= 'a' && c <= 'f':
		case c >= 'A' && c <= 'F':
		default:
			return false
		}
	}
	return true
}

func lowerASCII(c byte) byte {
	if c >= 'A' && c <= 'Z' {
		return c - 'A' + 'a'
	}
	return c
}
