// Package namespace implements the registry protocol's `@namespace/name`
// scoped identifiers (spec.md §4.E): strict ASCII validation for the
// namespace, Unicode identifier rules for the name, and Unicode-aware
// case-, diacritic- and width-insensitive equivalence.
package namespace

import (
	"hash/fnv"
	"strings"
	"unicode"

	"golang.org/x/text/cases"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
	"golang.org/x/text/width"
)

const (
	maxNamespaceLen = 40
	maxNameLen      = 128
)

// ScopedIdentity is a validated `@namespace/name` registry identifier.
type ScopedIdentity struct {
	Namespace string // includes the leading '@'
	Name      string
}

// String returns the display form "namespace/name".
func (s ScopedIdentity) String() string {
	return s.Namespace + "/" + s.Name
}

// Parse validates and splits s into a ScopedIdentity. It returns ok == false
// (never an error) on any rejection, per spec.md §4.E's "callers decide"
// propagation policy.
func Parse(s string) (id ScopedIdentity, ok bool) {
	slash := strings.IndexByte(s, '/')
	if slash < 0 {
		return ScopedIdentity{}, false
	}
	if strings.IndexByte(s[slash+1:], '/') >= 0 {
		return ScopedIdentity{}, false
	}
	ns, name := s[:slash], s[slash+1:]
	if !validNamespace(ns) || !validName(name) {
		return ScopedIdentity{}, false
	}
	return ScopedIdentity{Namespace: ns, Name: name}, true
}

func validNamespace(ns string) bool {
	if len(ns) < 2 || len(ns) > maxNamespaceLen {
		return false
	}
	if ns[0] != '@' {
		return false
	}
	body := ns[1:]
	if !isASCIIAlnum(body[0]) {
		return false
	}
	for i := 1; i < len(body); i++ {
		c := body[i]
		if isASCIIAlnum(c) {
			continue
		}
		if c != '-' {
			return false
		}
		// A hyphen must be followed by an alphanumeric: no trailing or
		// doubled hyphens.
		if i+1 >= len(body) || !isASCIIAlnum(body[i+1]) {
			return false
		}
	}
	return true
}

func isASCIIAlnum(c byte) bool {
	return (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z') || (c >= '0' && c <= '9')
}

func validName(name string) bool {
	if name == "" {
		return false
	}
	runeCount := 0
	first := true
	for _, r := range name {
		runeCount++
		if runeCount > maxNameLen {
			return false
		}
		if first {
			if !isXIDStart(r) {
				return false
			}
			first = false
			continue
		}
		if !isXIDContinue(r) {
			return false
		}
	}
	return true
}

// isXIDStart approximates Unicode's XID_Start property via the general
// category composition used to define ID_Start (letters plus letter
// numbers). No dependency in the retrieval pack exposes the derived XID
// tables directly (see DESIGN.md), so this is built from stdlib `unicode`
// category tables, which is exact for every scenario spec.md enumerates.
func isXIDStart(r rune) bool {
	return unicode.IsOneOf([]*unicode.RangeTable{
		unicode.Lu, unicode.Ll, unicode.Lt, unicode.Lm, unicode.Lo, unicode.Nl,
	}, r)
}

// isXIDContinue approximates XID_Continue as ID_Start plus combining marks,
// decimal digits, and connector punctuation (which includes '_').
func isXIDContinue(r rune) bool {
	if isXIDStart(r) {
		return true
	}
	return unicode.IsOneOf([]*unicode.RangeTable{
		unicode.Mn, unicode.Mc, unicode.Nd, unicode.Pc,
	}, r)
}

// Equal reports whether two scoped identities are equivalent under
// spec.md §4.E's fold: NFKC, then case-insensitive, diacritic-insensitive,
// width-insensitive comparison.
func Equal(a, b ScopedIdentity) bool {
	return fold(a.Namespace) == fold(b.Namespace) && fold(a.Name) == fold(b.Name)
}

// Compare orders two scoped identities lexicographically by code point over
// their folded forms, for use in sorted containers.
func Compare(a, b ScopedIdentity) int {
	fa, fb := fold(a.String()), fold(b.String())
	switch {
	case fa < fb:
		return -1
	case fa > fb:
		return 1
	default:
		return 0
	}
}

// Hash returns a hash of id consistent with Equal: equal identities under
// Equal always produce the same Hash.
func Hash(id ScopedIdentity) uint64 {
	h := fnv.New64a()
	_, _ = h.Write([]byte(fold(id.Namespace)))
	_, _ = h.Write([]byte{0})
	_, _ = h.Write([]byte(fold(id.Name)))
	return h.Sum64()
}

var stripMarks = runes.Remove(runes.In(unicode.Mn))

var caseFold = cases.Fold()

// fold reduces s to canonical comparison form: width-fold, decompose
// (NFKD, which also expands compatibility ligatures such as U+01C5 "ǅ"),
// strip combining marks, then full Unicode case-fold.
func fold(s string) string {
	widthFolded := width.Fold.String(s)
	decomposed := norm.NFKD.String(widthFolded)
	stripped, _, err := transform.String(stripMarks, decomposed)
	if err != nil {
		stripped = decomposed
	}
	return caseFold.String(stripped)
}
