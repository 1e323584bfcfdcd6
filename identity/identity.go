// Package identity gives every external package dependency a single, stable
// textual identity, independent of the many syntactic forms its source
// location can take. Two schemes co-exist behind a process-wide switch: the
// canonical scheme (full URL normalization, package-level var Canonical) and
// the legacy scheme (last-path-component only, package-level var Legacy),
// selected via SetProvider.
package identity

// Identity is a single, immutable, value-typed package identity. Equality,
// ordering and hashing are all defined over its canonical textual form;
// serialization is that string verbatim.
type Identity struct {
	text string
}

// New constructs an Identity from a source location (a URL, an scp-style
// address such as "git@host:user/repo.git", or a bare filesystem path),
// using the currently active Provider.
func New(location string) (Identity, error) {
	text, err := ActiveProvider().FromLocation(location)
	if err != nil {
		return Identity{}, err
	}
	return Identity{text: text}, nil
}

// NewFromPath constructs an Identity from an absolute local file path, using
// the currently active Provider.
func NewFromPath(path string) (Identity, error) {
	text, err := ActiveProvider().FromPath(path)
	if err != nil {
		return Identity{}, err
	}
	return Identity{text: text}, nil
}

// String returns the identity's textual form. This is also its
// serialization: MarshalText/UnmarshalText round-trip through it.
func (id Identity) String() string {
	return id.text
}

// Equal reports whether two identities have the same textual form.
func (id Identity) Equal(other Identity) bool {
	return id.text == other.text
}

// Less orders identities by their textual form, for use in sorted
// containers.
func (id Identity) Less(other Identity) bool {
	return id.text < other.text
}

// IsZero reports whether id is the zero Identity (never produced by New or
// NewFromPath on success).
func (id Identity) IsZero() bool {
	return id.text == ""
}

// MarshalText implements encoding.TextMarshaler.
func (id Identity) MarshalText() ([]byte, error) {
	return []byte(id.text), nil
}

// UnmarshalText implements encoding.TextUnmarshaler. It does not
// re-canonicalize: a serialized Identity is trusted to already be in
// canonical or legacy form, matching whichever provider produced it.
func (id *Identity) UnmarshalText(text []byte) error {
	id.text = string(text)
	return nil
}
