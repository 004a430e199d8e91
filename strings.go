package moscope

import (
	"bytes"
	"fmt"
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"
)

// ExtractStrings recovers printable C strings from a byte buffer: the
// buffer splits on NUL, and every run that is valid UTF-8 and at least
// minLen bytes long is kept. Control characters in kept strings are
// escaped so a report line stays one line.
func ExtractStrings(data []byte, minLen int) []string {
	if minLen < 1 {
		minLen = 1
	}
	var out []string
	for start := 0; start < len(data); {
		var run []byte
		if i := bytes.IndexByte(data[start:], 0); i >= 0 {
			run = data[start : start+i]
			start += i + 1
		} else {
			run = data[start:]
			start = len(data)
		}
		if len(run) >= minLen && utf8.Valid(run) {
			out = append(out, escapeControl(string(run)))
		}
	}
	return out
}

// ExtractFilteredStrings keeps only the runs matching pattern, with no
// minimum length. The pattern applies to the unescaped string.
func ExtractFilteredStrings(data []byte, pattern string) ([]string, error) {
	re, err := regexp.Compile(pattern)
	if err != nil {
		return nil, fmt.Errorf("invalid string filter pattern: %w", err)
	}
	var out []string
	for start := 0; start < len(data); {
		var run []byte
		if i := bytes.IndexByte(data[start:], 0); i >= 0 {
			run = data[start : start+i]
			start += i + 1
		} else {
			run = data[start:]
			start = len(data)
		}
		if len(run) > 0 && utf8.Valid(run) && re.Match(run) {
			out = append(out, escapeControl(string(run)))
		}
	}
	return out, nil
}

func escapeControl(s string) string {
	if !strings.ContainsFunc(s, unicode.IsControl) {
		return s
	}
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		switch r {
		case '\n':
			b.WriteString(`\n`)
		case '\r':
			b.WriteString(`\r`)
		case '\t':
			b.WriteString(`\t`)
		default:
			if unicode.IsControl(r) {
				fmt.Fprintf(&b, `\x%02x`, r)
			} else {
				b.WriteRune(r)
			}
		}
	}
	return b.String()
}
