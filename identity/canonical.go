package identity

import (
	"net/url"
	"strings"

	"github.com/mitchellh/go-homedir"
	"github.com/pkg/errors"
	"golang.org/x/net/idna"
	"golang.org/x/text/unicode/norm"

	"github.com/pkgforge/regcore/internal/surgery"
)

// ErrNonASCIIHost is returned when a source location's host cannot be
// transcoded to an ASCII form. Full IDN transcoding is limited to IDNA
// ToASCII (see SPEC_FULL.md's DOMAIN STACK); hosts that IDNA itself rejects
// are a defined failure, per spec.md §9's open question.
var ErrNonASCIIHost = errors.New("identity: host cannot be represented in ASCII")

// canonicalProvider implements Provider using full URL normalization
// (spec.md §4.B).
type canonicalProvider struct{}

// Canonical is the process's canonical-form provider.
var Canonical Provider = canonicalProvider{}

func (canonicalProvider) FromLocation(location string) (string, error) {
	return canonicalize(location)
}

func (canonicalProvider) FromPath(path string) (string, error) {
	expanded, err := expandHomeDir(path)
	if err != nil {
		return "", err
	}
	return canonicalize(expanded)
}

// canonicalize implements the exact 12-step algorithm from spec.md §4.B.
func canonicalize(input string) (string, error) {
	if input == "" {
		return "", errors.New("identity: empty source location")
	}
	leadingSeparator := len(input) > 0 && surgery.IsSeparator(input[0])

	// Step 1: NFC-normalize, then ASCII-lowercase.
	normalized := norm.NFC.String(input)
	normalized = asciiToLower(normalized)

	buf := surgery.New(normalized)

	// Step 2: Windows path prefix.
	isWindowsPath := buf.NormalizeWindowsPathPrefix()

	// Step 3: scheme.
	scheme, hasScheme := buf.DropScheme()

	// Step 4: userinfo, then tilde expansion.
	user, hadUser := buf.DropUserinfo()
	if hadUser && user != "" {
		expandTilde(buf, user)
	}

	// Step 5: port.
	buf.RemovePort()

	// Step 6: fragment.
	buf.RemoveFragment()

	// Step 7: query.
	buf.RemoveQuery()

	// Step 8: scp-style colon-to-slash rewrite.
	if !hasScheme || scheme == "ssh" {
		rest := buf.String()
		firstSlash := strings.IndexAny(rest, "/\\")
		if firstSlash < 0 {
			firstSlash = len(rest)
		}
		buf.ReplaceFirst(":", "/", firstSlash)
	}

	// Step 9: split on separators, drop empties, percent-decode each segment.
	segments := splitSegments(buf.String())

	// Step 10: strip trailing .git from the last segment.
	if n := len(segments); n > 0 {
		segments[n-1] = strings.TrimSuffix(segments[n-1], ".git")
	}

	// Step 11: join.
	joined := strings.Join(segments, "/")

	// Step 12: leading slash.
	isFileScheme := scheme == "file"
	if isWindowsPath || isFileScheme || leadingSeparator {
		joined = "/" + joined
	}

	host, err := hostOf(joined)
	if err != nil {
		return "", err
	}
	asciiHost, err := transcodeHost(host)
	if err != nil {
		return "", err
	}
	if asciiHost != host {
		joined = strings.Replace(joined, host, asciiHost, 1)
	}

	if err := assertValidHost(joined); err != nil {
		return "", err
	}

	return joined, nil
}

// asciiToLower lower-cases only ASCII letters, leaving the rest of the
// (already NFC-normalized) string untouched.
func asciiToLower(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		if r >= 'A' && r <= 'Z' {
			r += 'a' - 'A'
		}
		b.WriteRune(r)
	}
	return b.String()
}

// expandTilde replaces the first "/~/" in buf with "/~<user>/", modeling the
// scp-style "ssh://mona@example.com/~/LinkedList.git" shorthand for a user's
// home directory on the remote host.
func expandTilde(buf *surgery.Buffer, user string) {
	buf.ReplaceFirst("/~/", "/~"+user+"/", -1)
}

// splitSegments splits on '/' and '\', drops empty segments, and
// percent-decodes each remaining segment (leaving malformed escapes as-is).
func splitSegments(s string) []string {
	raw := strings.FieldsFunc(s, func(r rune) bool {
		return r == '/' || r == '\\'
	})
	segments := make([]string, 0, len(raw))
	for _, seg := range raw {
		if decoded, err := url.PathUnescape(seg); err == nil {
			segments = append(segments, decoded)
		} else {
			segments = append(segments, seg)
		}
	}
	return segments
}

// hostOf returns the substring of a canonical (or in-progress) form up to
// the first '/', skipping one leading '/' if present.
func hostOf(s string) (string, error) {
	rest := strings.TrimPrefix(s, "/")
	if i := strings.IndexByte(rest, '/'); i >= 0 {
		return rest[:i], nil
	}
	return rest, nil
}

// transcodeHost applies IDNA ToASCII when host contains non-ASCII code
// points; ASCII hosts pass through unchanged.
func transcodeHost(host string) (string, error) {
	if isASCII(host) {
		return host, nil
	}
	ascii, err := idna.Lookup.ToASCII(host)
	if err != nil {
		return "", errors.Wrapf(ErrNonASCIIHost, "host %q: %s", host, err)
	}
	return ascii, nil
}

func isASCII(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] > 0x7f {
			return false
		}
	}
	return true
}

// assertValidHost is the postcondition from spec.md §4.B: the host portion
// contains only ASCII letters, digits, '-', '.'.
func assertValidHost(joined string) error {
	host, _ := hostOf(joined)
	for i := 0; i < len(host); i++ {
		c := host[i]
		isLetter := (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
		isDigit := c >= '0' && c <= '9'
		if !isLetter && !isDigit && c != '-' && c != '.' {
			return errors.Errorf("identity: invalid host %q in canonical identity %q", host, joined)
		}
	}
	return nil
}

// expandHomeDir is used by canonical identity construction from a bare local
// path (spec.md §4.B's "absolute path" constructor) to resolve a leading
// "~" against the real user home directory before canonicalization, using
// the same library the teacher's CLI layer used for shell-style paths.
func expandHomeDir(path string) (string, error) {
	if !strings.HasPrefix(path, "~") {
		return path, nil
	}
	expanded, err := homedir.Expand(path)
	if err != nil {
		return "", errors.Wrap(err, "identity: could not expand home directory")
	}
	return expanded, nil
}
