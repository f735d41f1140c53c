package manifest

import (
	"fmt"
	"unicode/utf16"
	"unicode/utf8"
)

const (
	// MaxSize caps the manifest document; anything larger is rejected
	// before parsing.
	MaxSize = 8 * 1024 * 1024

	// maxDepth bounds nesting while skipping unknown values, so a
	// pathological document cannot blow the stack.
	maxDepth = 32
)

// ParseError reports a malformed or unacceptable manifest document.
type ParseError struct {
	Offset int
	Msg    string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("manifest parse error at offset %d: %s", e.Offset, e.Msg)
}

// Parse reads the manifest JSON and returns the raw file entries plus the
// optional top-level "base_url". Only "files" (array of objects with
// "path" and "sha256"/"hash" strings) and "base_url" are meaningful;
// every other key at any level is skipped for forward compatibility.
//
// A missing or empty "files" array is an error: an empty manifest would
// instruct the engine to delete everything, which is far more likely to
// be a server-side mistake than an intended state.
func Parse(data []byte) ([]RawEntry, string, error) {
	entries, baseURL, err := parseDocument(data, true)
	if err != nil {
		return nil, "", err
	}
	raw := make([]RawEntry, len(entries))
	for i, e := range entries {
		raw[i] = RawEntry{Path: e.path, Hash: e.hash}
	}
	return raw, baseURL, nil
}

// ParseLegacyPaths reads an old-generation manifest and returns only its
// "path" values. Digests are ignored; the legacy manifest is consumed
// solely as a deletion list, and an empty list simply means nothing to
// clean up.
func ParseLegacyPaths(data []byte) ([]string, error) {
	entries, _, err := parseDocument(data, false)
	if err != nil {
		return nil, err
	}
	paths := make([]string, 0, len(entries))
	for _, e := range entries {
		if e.path != "" {
			paths = append(paths, e.path)
		}
	}
	return paths, nil
}

type fileObject struct {
	path string
	hash string
}

type parser struct {
	data []byte
	pos  int
}

func parseDocument(data []byte, requireFiles bool) ([]fileObject, string, error) {
	if len(data) > MaxSize {
		return nil, "", &ParseError{Offset: 0, Msg: fmt.Sprintf("document exceeds %d bytes", MaxSize)}
	}
	p := &parser{data: data}

	p.skipSpace()
	if err := p.expect('{'); err != nil {
		return nil, "", err
	}

	var files []fileObject
	var sawFiles bool
	var baseURL string

	first := true
	for {
		p.skipSpace()
		if p.peek() == '}' {
			p.pos++
			break
		}
		if !first {
			if err := p.expect(','); err != nil {
				return nil, "", err
			}
			p.skipSpace()
		}
		first = false

		key, err := p.parseString()
		if err != nil {
			return nil, "", err
		}
		p.skipSpace()
		if err := p.expect(':'); err != nil {
			return nil, "", err
		}
		p.skipSpace()

		switch key {
		case "files":
			files, err = p.parseFilesArray()
			if err != nil {
				return nil, "", err
			}
			sawFiles = true
		case "base_url":
			baseURL, err = p.parseString()
			if err != nil {
				return nil, "", err
			}
		default:
			if err := p.skipValue(0); err != nil {
				return nil, "", err
			}
		}
	}

	p.skipSpace()
	if p.pos < len(p.data) {
		return nil, "", p.errorf("trailing data after document")
	}

	if requireFiles {
		if !sawFiles {
			return nil, "", p.errorf(`missing "files" array`)
		}
		if len(files) == 0 {
			return nil, "", p.errorf(`"files" array is empty`)
		}
	}
	return files, baseURL, nil
}

func (p *parser) parseFilesArray() ([]fileObject, error) {
	if err := p.expect('['); err != nil {
		return nil, err
	}
	var out []fileObject
	p.skipSpace()
	if p.peek() == ']' {
		p.pos++
		return out, nil
	}
	for {
		p.skipSpace()
		obj, err := p.parseFileObject()
		if err != nil {
			return nil, err
		}
		out = append(out, obj)
		p.skipSpace()
		switch p.peek() {
		case ',':
			p.pos++
		case ']':
			p.pos++
			return out, nil
		default:
			return nil, p.errorf("expected ',' or ']' in files array")
		}
	}
}

func (p *parser) parseFileObject() (fileObject, error) {
	var obj fileObject
	if err := p.expect('{'); err != nil {
		return obj, err
	}
	first := true
	for {
		p.skipSpace()
		if p.peek() == '}' {
			p.pos++
			return obj, nil
		}
		if !first {
			if err := p.expect(','); err != nil {
				return obj, err
			}
			p.skipSpace()
		}
		first = false

		key, err := p.parseString()
		if err != nil {
			return obj, err
		}
		p.skipSpace()
		if err := p.expect(':'); err != nil {
			return obj, err
		}
		p.skipSpace()

		switch key {
		case "path":
			obj.path, err = p.parseString()
		case "sha256", "hash":
			obj.hash, err = p.parseString()
		default:
			err = p.skipValue(0)
		}
		if err != nil {
			return obj, err
		}
	}
}

// skipValue consumes any JSON value without interpreting it, enforcing
// the nesting depth ceiling.
func (p *parser) skipValue(depth int) error {
	if depth > maxDepth {
		return p.errorf("nesting depth exceeds %d", maxDepth)
	}
	p.skipSpace()
	switch c := p.peek(); {
	case c == '"':
		_, err := p.parseString()
		return err
	case c == '{':
		p.pos++
		first := true
		for {
			p.skipSpace()
			if p.peek() == '}' {
				p.pos++
				return nil
			}
			if !first {
				if err := p.expect(','); err != nil {
					return err
				}
				p.skipSpace()
			}
			first = false
			if _, err := p.parseString(); err != nil {
				return err
			}
			p.skipSpace()
			if err := p.expect(':'); err != nil {
				return err
			}
			if err := p.skipValue(depth + 1); err != nil {
				return err
			}
		}
	case c == '[':
		p.pos++
		first := true
		for {
			p.skipSpace()
			if p.peek() == ']' {
				p.pos++
				return nil
			}
			if !first {
				if err := p.expect(','); err != nil {
					return err
				}
			}
			first = false
			if err := p.skipValue(depth + 1); err != nil {
				return err
			}
		}
	case c == 't':
		return p.expectLiteral("true")
	case c == 'f':
		return p.expectLiteral("false")
	case c == 'n':
		return p.expectLiteral("null")
	case c == '-' || (c >= '0' && c <= '9'):
		return p.skipNumber()
	default:
		return p.errorf("unexpected character %q", c)
	}
}

func (p *parser) skipNumber() error {
	start := p.pos
	if p.peek() == '-' {
		p.pos++
	}
	for p.pos < len(p.data) {
		c := p.data[p.pos]
		if (c >= '0' && c <= '9') || c == '.' || c == 'e' || c == 'E' || c == '+' || c == '-' {
			p.pos++
			continue
		}
		break
	}
	if p.pos == start {
		return p.errorf("malformed number")
	}
	return nil
}

// parseString decodes a JSON string including \uXXXX escapes with
// surrogate-pair handling. Unpaired surrogates decode to U+FFFD, the
// same behavior as encoding/json.
func (p *parser) parseString() (string, error) {
	if err := p.expect('"'); err != nil {
		return "", err
	}
	var out []byte
	for {
		if p.pos >= len(p.data) {
			return "", p.errorf("unterminated string")
		}
		c := p.data[p.pos]
		p.pos++
		switch {
		case c == '"':
			return string(out), nil
		case c == '\\':
			decoded, err := p.parseEscape()
			if err != nil {
				return "", err
			}
			out = append(out, decoded...)
		default:
			out = append(out, c)
		}
	}
}

func (p *parser) parseEscape() ([]byte, error) {
	if p.pos >= len(p.data) {
		return nil, p.errorf("unterminated escape")
	}
	c := p.data[p.pos]
	p.pos++
	switch c {
	case '"':
		return []byte{'"'}, nil
	case '\\':
		return []byte{'\\'}, nil
	case '/':
		return []byte{'/'}, nil
	case 'b':
		return []byte{'\b'}, nil
	case 'f':
		return []byte{'\f'}, nil
	case 'n':
		return []byte{'\n'}, nil
	case 'r':
		return []byte{'\r'}, nil
	case 't':
		return []byte{'\t'}, nil
	case 'u':
		r, err := p.parseHex4()
		if err != nil {
			return nil, err
		}
		if utf16.IsSurrogate(r) {
			// Try to combine with a following \uXXXX low surrogate.
			if p.pos+1 < len(p.data) && p.data[p.pos] == '\\' && p.data[p.pos+1] == 'u' {
				save := p.pos
				p.pos += 2
				r2, err := p.parseHex4()
				if err != nil {
					return nil, err
				}
				if combined := utf16.DecodeRune(r, r2); combined != utf8.RuneError {
					r = combined
				} else {
					p.pos = save
					r = utf8.RuneError
				}
			} else {
				r = utf8.RuneError
			}
		}
		buf := make([]byte, utf8.UTFMax)
		n := utf8.EncodeRune(buf, r)
		return buf[:n], nil
	default:
		return nil, p.errorf("invalid escape '\\%c'", c)
	}
}

func (p *parser) parseHex4() (rune, error) {
	if p.pos+4 > len(p.data) {
		return 0, p.errorf("truncated \\u escape")
	}
	var v rune
	for i := 0; i < 4; i++ {
		c := p.data[p.pos+i]
		v <<= 4
		switch {
		case c >= '0' && c <= '9':
			v |= rune(c - '0')
		case c >= 'a' && c <= 'f':
			v |= rune(c-'a') + 10
		case c >= 'A' && c <= 'F':
			v |= rune(c-'A') + 10
		default:
			return 0, p.errorf("invalid hex digit %q in \\u escape", c)
		}
	}
	p.pos += 4
	return v, nil
}

func (p *parser) skipSpace() {
	for p.pos < len(p.data) {
		switch p.data[p.pos] {
		case ' ', '\t', '\r', '\n':
			p.pos++
		default:
			return
		}
	}
}

// peek returns the current byte or 0 at end of input.
func (p *parser) peek() byte {
	if p.pos >= len(p.data) {
		return 0
	}
	return p.data[p.pos]
}

func (p *parser) expect(c byte) error {
	if p.pos >= len(p.data) || p.data[p.pos] != c {
		return p.errorf("expected %q", c)
	}
	p.pos++
	return nil
}

func (p *parser) expectLiteral(lit string) error {
	if p.pos+len(lit) > len(p.data) || string(p.data[p.pos:p.pos+len(lit)]) != lit {
		return p.errorf("expected %q", lit)
	}
	p.pos += len(lit)
	return nil
}

func (p *parser) errorf(format string, args ...interface{}) error {
	return &ParseError{Offset: p.pos, Msg: fmt.Sprintf(format, args...)}
}
