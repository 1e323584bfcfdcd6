package registry

import "strings"

// Versioned media types for the registry protocol (spec.md §4.G).
const (
	AcceptReleaseList = "application/vnd.swift.registry.v1+json"
	AcceptManifest    = "application/vnd.swift.registry.v1+swift"
	AcceptArchive     = "application/vnd.swift.registry.v1+zip"

	contentTypeJSON = "application/json"
	contentTypeText = "text/x-swift"
	contentTypeZip  = "application/zip"

	contentVersionHeader = "Content-Version"
	contentVersionValue  = "1"
	digestHeader         = "Digest"
)

// hasContentTypePrefix reports whether the response's Content-Type header
// (ignoring any ";charset=..." parameters) starts with want.
func hasContentTypePrefix(contentType, want string) bool {
	base := contentType
	if i := strings.IndexByte(base, ';'); i >= 0 {
		base = base[:i]
	}
	return strings.HasPrefix(strings.TrimSpace(base), want)
}
