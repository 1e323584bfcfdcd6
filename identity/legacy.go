package identity

import (
	"strings"

	"github.com/pkg/errors"
	"golang.org/x/text/unicode/norm"
)

// legacyProvider implements Provider using the deliberately lossy
// last-path-component scheme (spec.md §4.C), kept only for backward
// compatibility with identities minted before the canonical provider
// existed.
type legacyProvider struct{}

// Legacy is the process's legacy-form provider.
var Legacy Provider = legacyProvider{}

func (legacyProvider) FromLocation(location string) (string, error) {
	return legacyIdentity(location)
}

func (legacyProvider) FromPath(path string) (string, error) {
	return legacyIdentity(path)
}

func legacyIdentity(input string) (string, error) {
	if input == "" {
		return "", errors.New("identity: empty source location")
	}
	s := asciiToLower(norm.NFC.String(input))
	s = trimOneTrailingSeparator(s)

	last := lastPathComponent(s)
	last = strings.TrimSuffix(last, ".git")
	if last == "" {
		return "", errors.Errorf("identity: could not derive legacy identity from %q", input)
	}
	return last, nil
}

// trimOneTrailingSeparator removes exactly one trailing '/' or '\\', if
// present.
func trimOneTrailingSeparator(s string) string {
	if s == "" {
		return s
	}
	last := s[len(s)-1]
	if last == '/' || last == '\\' {
		return s[:len(s)-1]
	}
	return s
}

// lastPathComponent returns the text after the last '/' or '\\' separator.
func lastPathComponent(s string) string {
	idx := strings.LastIndexAny(s, "/\\")
	if idx < 0 {
		return s
	}
	return s[idx+1:]
}
