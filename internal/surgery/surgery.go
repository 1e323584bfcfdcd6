// Package surgery implements the string-rewrite primitives shared by the
// identity providers in package identity. Every operation mutates a Buffer's
// held string in place; all but RemoveFragment and RemoveQuery report
// whether they changed anything, mirroring
// the "surgical" removePrefix/removeSuffix/dropScheme style of rewrite used
// throughout the canonicalization algorithm.
package surgery

import (
	"strings"
)

// Buffer is a mutable holder for the string being canonicalized. Callers are
// expected to own a single Buffer per canonicalization and thread it through
// successive rewrites; nothing here is safe for concurrent use.
type Buffer struct {
	s string
}

// New wraps s for surgery.
func New(s string) *Buffer {
	return &Buffer{s: s}
}

// String returns the buffer's current contents.
func (b *Buffer) String() string {
	return b.s
}

// Set overwrites the buffer's contents.
func (b *Buffer) Set(s string) {
	b.s = s
}

// IsSeparator reports whether r is a path separator recognized during
// canonicalization: '/' or '\\', for every input.
func IsSeparator(r byte) bool {
	return r == '/' || r == '\\'
}

// IsASCIIDigit reports whether r is an ASCII decimal digit.
func IsASCIIDigit(r byte) bool {
	return r >= '0' && r <= '9'
}

// IsSchemeChar reports whether r may appear after the first character of a
// URL scheme: letters, digits, '+', '-', '.'.
func IsSchemeChar(r byte) bool {
	return isASCIILetter(r) || IsASCIIDigit(r) || r == '+' || r == '-' || r == '.'
}

func isASCIILetter(r byte) bool {
	return (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z')
}

// firstSeparatorIndex returns the index of the first path separator in s, or
// len(s) if there is none.
func firstSeparatorIndex(s string) int {
	for i := 0; i < len(s); i++ {
		if IsSeparator(s[i]) {
			return i
		}
	}
	return len(s)
}

// RemovePrefix removes p from the front of the buffer if present, reporting
// whether it did so.
func (b *Buffer) RemovePrefix(p string) bool {
	if strings.HasPrefix(b.s, p) {
		b.s = b.s[len(p):]
		return true
	}
	return false
}

// RemoveSuffix removes s from the end of the buffer if present, reporting
// whether it did so.
func (b *Buffer) RemoveSuffix(suffix string) bool {
	if strings.HasSuffix(b.s, suffix) {
		b.s = b.s[:len(b.s)-len(suffix)]
		return true
	}
	return false
}

// DropScheme removes a leading "scheme://" if one is present, per the
// grammar L [+-.L0-9]* "://". It returns the lower-cased scheme name and
// whether one was found. Callers are expected to have already lower-cased
// the buffer.
func (b *Buffer) DropScheme() (scheme string, ok bool) {
	s := b.s
	if len(s) == 0 || !isASCIILetter(s[0]) {
		return "", false
	}
	i := 1
	for i < len(s) && IsSchemeChar(s[i]) {
		i++
	}
	if !strings.HasPrefix(s[i:], "://") {
		return "", false
	}
	scheme = s[:i]
	b.s = s[i+len("://"):]
	return scheme, true
}

// DropUserinfo removes "user[:password]@" from the front of the buffer, but
// only if the '@' occurs strictly before the first path separator. It uses
// the *last* such '@' so that passwords containing '@' are tolerated. It
// returns the user portion (without password) and whether anything was
// removed.
func (b *Buffer) DropUserinfo() (user string, ok bool) {
	s := b.s
	limit := firstSeparatorIndex(s)
	at := strings.LastIndexByte(s[:limit], '@')
	if at < 0 {
		return "", false
	}
	userinfo := s[:at]
	if colon := strings.IndexByte(userinfo, ':'); colon >= 0 {
		user = userinfo[:colon]
	} else {
		user = userinfo
	}
	b.s = s[at+1:]
	return user, true
}

// RemovePort removes ":digits" from the buffer if a ':' appears before the
// first path separator and is immediately followed by ASCII digits that
// terminate at or before that separator.
func (b *Buffer) RemovePort() bool {
	s := b.s
	limit := firstSeparatorIndex(s)
	colon := strings.IndexByte(s[:limit], ':')
	if colon < 0 {
		return false
	}
	j := colon + 1
	for j < limit && IsASCIIDigit(s[j]) {
		j++
	}
	if j == colon+1 || j != limit {
		return false
	}
	b.s = s[:colon] + s[limit:]
	return true
}

// RemoveFragment truncates the buffer at the first '#', if any.
func (b *Buffer) RemoveFragment() {
	if i := strings.IndexByte(b.s, '#'); i >= 0 {
		b.s = b.s[:i]
	}
}

// RemoveQuery truncates the buffer at the first '?', if any.
func (b *Buffer) RemoveQuery() {
	if i := strings.IndexByte(b.s, '?'); i >= 0 {
		b.s = b.s[:i]
	}
}

// ReplaceFirst replaces the first occurrence of needle with with. If before
// is non-negative, the replacement only happens if the occurrence starts
// strictly before that index. It reports whether a replacement was made.
func (b *Buffer) ReplaceFirst(needle, with string, before int) bool {
	i := strings.Index(b.s, needle)
	if i < 0 {
		return false
	}
	if before >= 0 && i >= before {
		return false
	}
	b.s = b.s[:i] + with + b.s[i+len(needle):]
	return true
}

// NormalizeWindowsPathPrefix detects and strips a leading "\\?\" or "\\??\"
// UNC-extended prefix, followed by a drive-letter prefix such as "c:". It
// reports whether a Windows-style path was recognized; the caller is
// responsible for prepending the leading '/' this implies.
func (b *Buffer) NormalizeWindowsPathPrefix() bool {
	s := b.s
	recognized := false
	for _, extended := range []string{`\\?\`, `\\??\`} {
		if strings.HasPrefix(s, extended) {
			s = s[len(extended):]
			recognized = true
			break
		}
	}
	if len(s) >= 2 && isASCIILetter(s[0]) && s[1] == ':' {
		s = s[2:]
		recognized = true
	}
	if recognized {
		b.s = s
	}
	return recognized
}
