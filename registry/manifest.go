package registry

import (
	"fmt"

	"github.com/pkgforge/regcore/collaborator"
	"github.com/pkgforge/regcore/executor"
	"github.com/pkgforge/regcore/namespace"
	"github.com/pkgforge/regcore/toolsversion"
	"github.com/pkgforge/regcore/vfs"
)

// FetchManifest downloads the manifest for id at version, optionally pinned
// to a specific swift-tools-version via the swiftVersion argument (empty
// selects the registry's default), writes it into fs, and hands it to
// loader for semantic interpretation (spec.md §4.G "Fetch manifest").
func (c *Client) FetchManifest(
	id namespace.ScopedIdentity,
	version, swiftVersion string,
	kind collaborator.Kind,
	current toolsversion.Version,
	fs vfs.FileSystem,
	loader collaborator.ManifestLoader,
	queue executor.Queue,
	done func(collaborator.Manifest, error),
) {
	if queue == nil {
		queue = executor.Inline{}
	}
	queue.Async(func() {
		path, err := c.fetchManifest(id, version, swiftVersion, fs)
		if err != nil {
			done(collaborator.Manifest{}, err)
			return
		}
		if loader == nil {
			done(collaborator.Manifest{}, &InvalidOperationError{Reason: "no manifest loader collaborator configured"})
			return
		}
		loader.Load(path, c.BaseURL.String(), current, kind, fs, queue, done)
	})
}

func (c *Client) fetchManifest(id namespace.ScopedIdentity, version, swiftVersion string, fs vfs.FileSystem) (string, error) {
	segments := []string{version, "Package.swift"}
	u, err := c.pathFor(id, segments...)
	if err != nil {
		return "", err
	}
	if swiftVersion != "" {
		q := u.Query()
		q.Set("swift-version", swiftVersion)
		u.RawQuery = q.Encode()
	}

	req, err := newRequest(u, AcceptManifest)
	if err != nil {
		return "", err
	}
	resp, body, err := c.do(req)
	if err != nil {
		return "", err
	}
	if !hasContentTypePrefix(resp.Header.Get("Content-Type"), contentTypeText) {
		return "", &InvalidResponseError{Reason: "unexpected Content-Type for manifest", StatusCode: resp.StatusCode}
	}

	fileName := "Package.swift"
	if swiftVersion != "" {
		fileName = fmt.Sprintf("Package@swift-%s.swift", swiftVersion)
	}
	path := "/" + id.Name + "/" + fileName
	if err := fs.WriteFile(path, body, 0o644); err != nil {
		return "", &InaccessibleManifestError{Path: path, Reason: err}
	}
	return path, nil
}
