package core

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"
)

// driveLetterRegex matches a Windows drive prefix such as `C:\` or `d:/`.
var driveLetterRegex = regexp.MustCompile(`^[A-Za-z]:[\\/]`)

// Resolver turns untrusted path strings into absolute paths.
//
// Relative inputs are joined onto the base directory and must stay inside
// it. Absolute inputs are cleaned and returned without a containment check:
// callers that name an absolute path are trusted to mean it.
//
// Resolver never touches the filesystem; a missing file surfaces later as a
// read failure.
type Resolver struct {
	base    string
	prefix  string // base with a trailing separator
	windows bool   // host uses `\` as separator
}

// NewResolver canonicalizes base once and returns a Resolver bound to it.
func NewResolver(base string) (*Resolver, error) {
	if base == "" {
		return nil, fmt.Errorf("resolver: base directory is empty")
	}
	abs, err := filepath.Abs(base)
	if err != nil {
		return nil, fmt.Errorf("resolver: canonicalize base %q: %w", base, err)
	}

	prefix := abs
	if !strings.HasSuffix(prefix, string(os.PathSeparator)) {
		prefix += string(os.PathSeparator)
	}

	return &Resolver{
		base:    abs,
		prefix:  prefix,
		windows: os.PathSeparator == '\\',
	}, nil
}

// Base returns the canonical base directory.
func (r *Resolver) Base() string {
	return r.base
}

// Resolve validates input and returns its canonical absolute form.
//
// Errors wrap ErrInvalidInput for missing or malformed input and
// ErrPathEscape for relative input that leaves the base directory.
func (r *Resolver) Resolve(input string) (string, error) {
	if input == "" {
		return "", invalidInput("resolve", "", "Missing file path.")
	}
	if strings.ContainsRune(input, 0) {
		return "", invalidInput("resolve", "", "File path contains a NUL byte.")
	}

	if !r.windows && driveLetterRegex.MatchString(input) {
		return "", invalidInput("resolve", input, "Windows-style paths are not valid here.")
	}

	if filepath.IsAbs(input) {
		return filepath.Clean(input), nil
	}

	// Join cleans the result, collapsing `.` and `..` segments.
	resolved := filepath.Join(r.base, input)
	if !r.within(resolved) {
		return "", newError(ErrPathEscape, "resolve", input,
			"Path outside allowed base directory.", nil)
	}
	return resolved, nil
}

// within reports whether path equals the base or sits beneath it.
func (r *Resolver) within(path string) bool {
	return path == r.base || strings.HasPrefix(path, r.prefix)
}
