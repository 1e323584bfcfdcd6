package identity

import (
	"sync/atomic"

	"github.com/apex/log"
)

// Provider is an identity-construction algorithm. Two providers exist:
// Canonical (spec.md §4.B) and Legacy (spec.md §4.C).
type Provider interface {
	// FromLocation derives a textual identity from a source location string
	// (a URL, an scp-style address, or a bare path).
	FromLocation(location string) (string, error)
	// FromPath derives a textual identity from an absolute local file path.
	FromPath(path string) (string, error)
}

// activeProvider holds the process-wide provider selector described in
// spec.md §3/§5. It is read on every identity construction and is expected
// to be written at most once, during process initialization; already
// constructed Identity values are unaffected by later writes.
var activeProvider atomic.Value // holds providerBox

// providerBox wraps a Provider so atomic.Value always stores a single
// consistent concrete type, regardless of which Provider implementation is
// active (atomic.Value panics if successive Store calls use different
// concrete types).
type providerBox struct {
	p Provider
}

func init() {
	activeProvider.Store(providerBox{Canonical})
}

// SetProvider replaces the process-wide identity provider used by future
// calls to New and NewFromPath. It is intended to be called once, early in
// process startup; mutating it concurrently with identity construction is
// safe (the atomic.Value guarantees a consistent read) but the resulting
// mix of canonical- and legacy-form identities within one run is the
// caller's responsibility to avoid.
func SetProvider(p Provider) {
	activeProvider.Store(providerBox{p})
	log.WithField("provider", providerName(p)).Debug("identity: active provider switched")
}

// providerName gives the two built-in providers a stable, human-readable
// name for logging; any other Provider implementation logs as "custom".
func providerName(p Provider) string {
	switch p.(type) {
	case canonicalProvider:
		return "canonical"
	case legacyProvider:
		return "legacy"
	default:
		return "custom"
	}
}

// ActiveProvider returns the provider that will be used by the next call to
// New or NewFromPath.
func ActiveProvider() Provider {
	return activeProvider.Load().(providerBox).p
}
