package hashing

import (
	"crypto/sha256"
	"encoding/hex"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestFile(t *testing.T) {
	t.Run("KnownContent", func(t *testing.T) {
		dir := t.TempDir()
		path := filepath.Join(dir, "sample.bin")
		content := []byte("hello mappack")
		if err := os.WriteFile(path, content, 0o644); err != nil {
			t.Fatal(err)
		}

		sum := sha256.Sum256(content)
		want := hex.EncodeToString(sum[:])

		got, err := File(path)
		if err != nil {
			t.Fatalf("File() error = %v", err)
		}
		if got != want {
			t.Errorf("File() = %s, want %s", got, want)
		}
	})

	t.Run("EmptyFile", func(t *testing.T) {
		dir := t.TempDir()
		path := filepath.Join(dir, "empty")
		if err := os.WriteFile(path, nil, 0o644); err != nil {
			t.Fatal(err)
		}
		got, err := File(path)
		if err != nil {
			t.Fatalf("File() error = %v", err)
		}
		// SHA-256 of the empty string.
		const want = "e3b0c44298fc1c149afbf4c8996fb92427ae41e4649b934ca495991b7852b855"
		if got != want {
			t.Errorf("File() = %s, want %s", got, want)
		}
	})

	t.Run("LargerThanChunk", func(t *testing.T) {
		dir := t.TempDir()
		path := filepath.Join(dir, "big")
		content := []byte(strings.Repeat("abcdefgh", 64*1024)) // 512 KiB
		if err := os.WriteFile(path, content, 0o644); err != nil {
			t.Fatal(err)
		}
		sum := sha256.Sum256(content)
		got, err := File(path)
		if err != nil {
			t.Fatalf("File() error = %v", err)
		}
		if got != hex.EncodeToString(sum[:]) {
			t.Error("digest mismatch for multi-chunk file")
		}
	})

	t.Run("MissingFile", func(t *testing.T) {
		if _, err := File(filepath.Join(t.TempDir(), "nope")); err == nil {
			t.Error("File() should fail for missing file")
		}
	})
}

func TestEqual(t *testing.T) {
	tests := []struct {
		name string
		a, b string
		want bool
	}{
		{"Identical", "abc123", "abc123", true},
		{"CaseInsensitive", "ABC123DEF", "abc123def", true},
		{"MixedCase", "AbCdEf", "aBcDeF", true},
		{"Different", "abc123", "abc124", false},
		{"LengthMismatch", "abc", "abcd", false},
		{"BothEmpty", "", "", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Equal(tt.a, tt.b); got != tt.want {
				t.Errorf("Equal(%q, %q) = %v, want %v", tt.a, tt.b, got, tt.want)
			}
		})
	}
}

func TestValidHex(t *testing.T) {
	valid64 := strings.Repeat("a1", 32)
	tests := []struct {
		name string
		in   string
		want bool
	}{
		{"Lowercase", valid64, true},
		{"Uppercase", strings.ToUpper(valid64), true},
		{"TooShort", valid64[:63], false},
		{"TooLong", valid64 + "a", false},
		{"NonHexChar", valid64[:63] + "g", false},
		{"Empty", "", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ValidHex(tt.in); got != tt.want {
				t.Errorf("ValidHex(%q) = %v, want %v", tt.in, got, tt.want)
			}
		})
	}
}
