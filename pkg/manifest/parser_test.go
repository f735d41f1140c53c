package manifest

import (
	"errors"
	"strings"
	"testing"
)

const hexA = "aaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaa"
const hexB = "bbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbb"

func TestParse(t *testing.T) {
	t.Run("MinimalManifest", func(t *testing.T) {
		doc := `{"files":[{"path":"resources/a.png","sha256":"` + hexA + `"}]}`
		raw, baseURL, err := Parse([]byte(doc))
		if err != nil {
			t.Fatalf("Parse() error = %v", err)
		}
		if baseURL != "" {
			t.Errorf("baseURL = %q, want empty", baseURL)
		}
		if len(raw) != 1 || raw[0].Path != "resources/a.png" || raw[0].Hash != hexA {
			t.Errorf("raw = %+v", raw)
		}
	})

	t.Run("HashSynonym", func(t *testing.T) {
		doc := `{"files":[{"path":"a","hash":"` + hexA + `"}]}`
		raw, _, err := Parse([]byte(doc))
		if err != nil {
			t.Fatalf("Parse() error = %v", err)
		}
		if raw[0].Hash != hexA {
			t.Errorf("hash synonym not honored: %+v", raw[0])
		}
	})

	t.Run("BaseURL", func(t *testing.T) {
		doc := `{"base_url":"https://cdn.example.com/pack/","files":[{"path":"a","sha256":"` + hexA + `"}]}`
		_, baseURL, err := Parse([]byte(doc))
		if err != nil {
			t.Fatalf("Parse() error = %v", err)
		}
		if baseURL != "https://cdn.example.com/pack/" {
			t.Errorf("baseURL = %q", baseURL)
		}
	})

	t.Run("UnknownKeysIgnored", func(t *testing.T) {
		doc := `{
			"version": 7,
			"generated": "2025-01-01T00:00:00Z",
			"meta": {"nested": [1, 2, {"deep": null}], "flag": true},
			"files": [
				{"path": "a", "sha256": "` + hexA + `", "size": 1234, "extra": [false]}
			],
			"trailer": -1.5e3
		}`
		raw, _, err := Parse([]byte(doc))
		if err != nil {
			t.Fatalf("Parse() error = %v", err)
		}
		if len(raw) != 1 || raw[0].Path != "a" {
			t.Errorf("raw = %+v", raw)
		}
	})

	t.Run("StringEscapes", func(t *testing.T) {
		doc := `{"files":[{"path":"a\/b\ncé","sha256":"` + hexA + `"}]}`
		raw, _, err := Parse([]byte(doc))
		if err != nil {
			t.Fatalf("Parse() error = %v", err)
		}
		if raw[0].Path != "a/b\ncé" {
			t.Errorf("path = %q", raw[0].Path)
		}
	})

	t.Run("SurrogatePair", func(t *testing.T) {
		// U+1F600 as a surrogate pair.
		doc := `{"files":[{"path":"😀","sha256":"` + hexA + `"}]}`
		raw, _, err := Parse([]byte(doc))
		if err != nil {
			t.Fatalf("Parse() error = %v", err)
		}
		if raw[0].Path != "\U0001F600" {
			t.Errorf("path = %q, want emoji", raw[0].Path)
		}
	})

	t.Run("LoneSurrogateBecomesReplacement", func(t *testing.T) {
		doc := `{"files":[{"path":"x\uD83Dy","sha256":"` + hexA + `"}]}`
		raw, _, err := Parse([]byte(doc))
		if err != nil {
			t.Fatalf("Parse() error = %v", err)
		}
		if raw[0].Path != "x�y" {
			t.Errorf("path = %q, want replacement char", raw[0].Path)
		}
	})

	failures := []struct {
		name string
		doc  string
	}{
		{"EmptyFilesArray", `{"files":[]}`},
		{"MissingFilesKey", `{"base_url":"x"}`},
		{"NotAnObject", `[1,2,3]`},
		{"Truncated", `{"files":[{"path":"a"`},
		{"TrailingGarbage", `{"files":[{"path":"a","sha256":"` + hexA + `"}]} extra`},
		{"BadEscape", `{"files":[{"path":"a\q","sha256":"` + hexA + `"}]}`},
		{"TruncatedUnicodeEscape", `{"files":[{"path":"a\u00","sha256":"` + hexA + `"}]}`},
		{"FilesNotArray", `{"files":{"path":"a"}}`},
		{"EmptyInput", ``},
	}
	for _, tt := range failures {
		t.Run(tt.name, func(t *testing.T) {
			if _, _, err := Parse([]byte(tt.doc)); err == nil {
				t.Errorf("Parse(%q) should fail", tt.doc)
			}
		})
	}

	t.Run("DepthCeiling", func(t *testing.T) {
		deep := strings.Repeat("[", 64) + strings.Repeat("]", 64)
		doc := `{"junk":` + deep + `,"files":[{"path":"a","sha256":"` + hexA + `"}]}`
		_, _, err := Parse([]byte(doc))
		var perr *ParseError
		if !errors.As(err, &perr) {
			t.Fatalf("expected ParseError for deep nesting, got %v", err)
		}
	})

	t.Run("SizeCap", func(t *testing.T) {
		big := make([]byte, MaxSize+1)
		if _, _, err := Parse(big); err == nil {
			t.Error("oversized document should be rejected")
		}
	})
}

func TestParseLegacyPaths(t *testing.T) {
	t.Run("PathsOnly", func(t *testing.T) {
		doc := `{"files":[{"path":"old/a.png","sha256":"` + hexA + `"},{"path":"old/b.png"}]}`
		paths, err := ParseLegacyPaths([]byte(doc))
		if err != nil {
			t.Fatalf("ParseLegacyPaths() error = %v", err)
		}
		if len(paths) != 2 || paths[0] != "old/a.png" || paths[1] != "old/b.png" {
			t.Errorf("paths = %v", paths)
		}
	})

	t.Run("EmptyListAllowed", func(t *testing.T) {
		paths, err := ParseLegacyPaths([]byte(`{"files":[]}`))
		if err != nil {
			t.Fatalf("ParseLegacyPaths() error = %v", err)
		}
		if len(paths) != 0 {
			t.Errorf("paths = %v, want empty", paths)
		}
	})

	t.Run("MalformedStillFails", func(t *testing.T) {
		if _, err := ParseLegacyPaths([]byte(`{"files":`)); err == nil {
			t.Error("malformed legacy manifest should fail")
		}
	})
}
