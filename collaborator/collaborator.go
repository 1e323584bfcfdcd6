// Package collaborator declares the external contracts this core depends on
// but does not implement (spec.md §6): loading a manifest's semantics once
// its bytes are on an in-memory file system, and extracting a downloaded
// archive to disk. Both are out of scope for the core itself; callers supply
// concrete implementations.
package collaborator

import (
	"github.com/pkgforge/regcore/executor"
	"github.com/pkgforge/regcore/toolsversion"
	"github.com/pkgforge/regcore/vfs"
)

// Kind distinguishes the flavor of package a manifest describes, a detail
// the manifest loader needs but this core never inspects.
type Kind int

// Recognized package kinds, passed through to the manifest loader verbatim.
const (
	KindRoot Kind = iota
	KindDependency
	KindRemote
)

// Manifest is an opaque handle to whatever the loader collaborator produces.
// The core never inspects its fields; it only ever passes the value back to
// callers.
type Manifest struct {
	Value interface{}
}

// ManifestLoader loads the semantic contents of a manifest already written
// to fs, invoking done exactly once on queue with the result.
type ManifestLoader interface {
	Load(packagePath, baseURL string, toolsVersion toolsversion.Version, kind Kind, fs vfs.FileSystem, queue executor.Queue, done func(Manifest, error))
}

// Archiver extracts the archive at sourcePath into destinationDir,
// invoking done exactly once on queue with the result.
type Archiver interface {
	Extract(sourcePath, destinationDir string, queue executor.Queue, done func(error))
}
