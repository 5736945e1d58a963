package crawler

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"regexp"
	"strings"
)

// urlPattern matches an http(s) scheme followed by a run of non-whitespace.
// Unicode separators and BOM count as whitespace.
var urlPattern = regexp.MustCompile(`(?i:https?)://[^\s\v\p{Z}\x{FEFF}]+`)

// ExtractLastURL returns the last URL-shaped substring of text.
func ExtractLastURL(text string) (string, bool) {
	matches := urlPattern.FindAllString(text, -1)
	if len(matches) == 0 {
		return "", false
	}
	return matches[len(matches)-1], true
}

// ExtractBrackets scans content once and returns, in order of appearance, the
// last URL of every top-level bracket region that contains one.
//
// A backslash escapes the next character. Nested regions only move the depth
// counter: neither the inner '[' nor the inner ']' is kept in the region text.
// A region still open at end of input is dropped.
func ExtractBrackets(content string) []string {
	results := make([]string, 0)

	var (
		inside  bool
		escaped bool
		depth   int
		buf     strings.Builder
	)
	for _, r := range content {
		switch {
		case escaped:
			if inside {
				buf.WriteRune(r)
			}
			escaped = false
		case r == '\\':
			escaped = true
		case r == '[':
			if inside {
				depth++
				continue
			}
			inside = true
			depth = 1
			buf.Reset()
		case r == ']' && inside:
			depth--
			if depth > 0 {
				continue
			}
			inside = false
			if u, ok := ExtractLastURL(buf.String()); ok {
				results = append(results, u)
			}
		case inside:
			buf.WriteRune(r)
		}
	}
	return results
}

// ParseReader reads r to EOF and extracts bracketed URLs from it.
func ParseReader(r io.Reader) ([]string, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrReadInput, err)
	}
	return ExtractBrackets(string(data)), nil
}

// ParseFile reads the file at path and extracts bracketed URLs from it.
// A read failure returns a nil slice and an error wrapping ErrReadInput; a
// readable file without regions returns an empty slice.
func ParseFile(path string) ([]string, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("%w: resolve %s: %w", ErrReadInput, path, err)
	}
	// #nosec G304 -- the path is the operator-supplied input file.
	data, err := os.ReadFile(abs)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrReadInput, err)
	}
	return ExtractBrackets(string(data)), nil
}
