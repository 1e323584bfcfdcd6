// Package toolsversion extracts the semantic "tools version" declared on the
// first line of a manifest file, and selects among version-specific
// manifest variants present in a package directory (spec.md §4.F).
package toolsversion

import (
	"fmt"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"github.com/blang/semver"
	"github.com/pkg/errors"

	"github.com/pkgforge/regcore/vfs"
)

// Version is a semantic tools version with the total order semver already
// provides.
type Version struct {
	semver.Version
}

// DefaultVersion is returned when a manifest's first line is not a
// tools-version comment and does not resemble a misspelled attempt at one:
// the pre-specifier era, documented in spec.md §4.F and §9 as version 3.
var DefaultVersion = Version{semver.Version{Major: 3}}

// fixedManifestVersions enumerates the major tools versions SwiftPM has
// shipped a hard-coded "Package@swift-N.swift" filename for.
var fixedManifestVersions = []int{3, 4, 5, 6}

// MalformedVersionError is returned when a tools-version comment is present
// but its specifier cannot be parsed as a semantic version, or when the
// first line looks like a misspelled attempt at the tools-version comment.
type MalformedVersionError struct {
	Specifier           string
	CurrentToolsVersion Version
}

func (e *MalformedVersionError) Error() string {
	return fmt.Sprintf("malformed tools-version specifier %q (current tools version %s)",
		e.Specifier, e.CurrentToolsVersion.String())
}

var toolsVersionLine = regexp.MustCompile(`(?i)^//\s*swift-tools-version:(.*?)(?:;.*|$)`)

var misspellings = []string{"swift-tool", "tool-version"}

// Parse extracts the tools version declared on the first line of manifest.
func Parse(manifest []byte, current Version) (Version, error) {
	firstLine := firstLineOf(manifest)

	m := toolsVersionLine.FindStringSubmatch(firstLine)
	if m == nil {
		lower := strings.ToLower(firstLine)
		for _, mis := range misspellings {
			if strings.Contains(lower, mis) {
				return Version{}, &MalformedVersionError{Specifier: firstLine, CurrentToolsVersion: current}
			}
		}
		return DefaultVersion, nil
	}

	specifier := strings.TrimSpace(m[1])
	parsed, err := semver.ParseTolerant(specifier)
	if err != nil {
		return Version{}, &MalformedVersionError{Specifier: firstLine, CurrentToolsVersion: current}
	}
	return Version{parsed}, nil
}

func firstLineOf(manifest []byte) string {
	if i := strings.IndexByte(string(manifest), '\n'); i >= 0 {
		return string(manifest[:i])
	}
	return string(manifest)
}

// manifestFileName is a "Package@swift-<M>[.<m>[.<p>]].swift" file paired
// with the version it declares in its name.
type manifestFileName struct {
	name    string
	version semver.Version
}

var versionedManifestName = regexp.MustCompile(`^Package@swift-(\d+)(?:\.(\d+)(?:\.(\d+))?)?\.swift$`)

// SelectManifest picks the manifest file that should be loaded for a
// package directory given the toolchain's current tools version, following
// spec.md §4.F's selection algorithm exactly.
func SelectManifest(fs vfs.FileSystem, dir string, current Version) (string, error) {
	// Hard-coded fixed-version filenames are checked first.
	for _, major := range fixedManifestVersions {
		fixedName := "Package@swift-" + strconv.Itoa(major) + ".swift"
		ok, err := fs.IsFile(joinPath(dir, fixedName))
		if err != nil {
			return "", errors.Wrapf(err, "toolsversion: checking %s", fixedName)
		}
		if ok {
			return fixedName, nil
		}
	}

	entries, err := fs.ReadDir(dir)
	if err != nil {
		return "", errors.Wrapf(err, "toolsversion: listing %s", dir)
	}

	var candidates []manifestFileName
	for _, entry := range entries {
		m := versionedManifestName.FindStringSubmatch(entry)
		if m == nil {
			continue
		}
		v, err := versionFromNameCapture(m)
		if err != nil {
			continue
		}
		if v.GT(current.Version) {
			continue
		}
		candidates = append(candidates, manifestFileName{name: entry, version: v})
	}
	if len(candidates) == 0 {
		return "Package.swift", nil
	}
	sort.Slice(candidates, func(i, j int) bool {
		return candidates[i].version.LT(candidates[j].version)
	})
	best := candidates[len(candidates)-1]

	bestDeclared, err := declaredVersion(fs, joinPath(dir, best.name), current)
	if err != nil {
		return "", err
	}
	regularDeclared, err := declaredVersion(fs, joinPath(dir, "Package.swift"), current)
	if err != nil {
		return "", err
	}
	if bestDeclared.GT(regularDeclared.Version) {
		return best.name, nil
	}
	return "Package.swift", nil
}

func declaredVersion(fs vfs.FileSystem, path string, current Version) (Version, error) {
	data, err := fs.ReadFile(path)
	if err != nil {
		return Version{}, errors.Wrapf(err, "toolsversion: reading %s", path)
	}
	return Parse(data, current)
}

func versionFromNameCapture(m []string) (semver.Version, error) {
	major, err := strconv.ParseUint(m[1], 10, 64)
	if err != nil {
		return semver.Version{}, err
	}
	v := semver.Version{Major: major}
	if m[2] != "" {
		minor, err := strconv.ParseUint(m[2], 10, 64)
		if err != nil {
			return semver.Version{}, err
		}
		v.Minor = minor
	}
	if m[3] != "" {
		patch, err := strconv.ParseUint(m[3], 10, 64)
		if err != nil {
			return semver.Version{}, err
		}
		v.Patch = patch
	}
	return v, nil
}

func joinPath(dir, name string) string {
	if strings.HasSuffix(dir, "/") {
		return dir + name
	}
	return dir + "/" + name
}
