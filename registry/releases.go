package registry

import (
	"encoding/json"
	"sort"

	"github.com/blang/semver"

	"github.com/pkgforge/regcore/executor"
	"github.com/pkgforge/regcore/namespace"
)

// releaseListResponse mirrors the registry's "list releases" JSON envelope:
// a map of version string to release metadata, where an entry carrying a
// "problem" member describes a release that must be excluded rather than
// parsed (spec.md §4.G).
type releaseListResponse struct {
	Releases map[string]json.RawMessage `json:"releases"`
}

type releaseEntry struct {
	Problem json.RawMessage `json:"problem"`
}

// ListReleases fetches the set of published versions for id and delivers
// them, sorted in descending order, to done on queue. Entries whose value
// carries a "problem" member and entries whose key does not parse as a
// semantic version are silently dropped, per spec.md §4.G.
func (c *Client) ListReleases(id namespace.ScopedIdentity, queue executor.Queue, done func([]semver.Version, error)) {
	if queue == nil {
		queue = executor.Inline{}
	}
	queue.Async(func() {
		versions, err := c.listReleases(id)
		done(versions, err)
	})
}

func (c *Client) listReleases(id namespace.ScopedIdentity) ([]semver.Version, error) {
	u, err := c.pathFor(id)
	if err != nil {
		return nil, err
	}
	req, err := newRequest(u, AcceptReleaseList)
	if err != nil {
		return nil, err
	}
	resp, body, err := c.do(req)
	if err != nil {
		return nil, err
	}
	if !hasContentTypePrefix(resp.Header.Get("Content-Type"), contentTypeJSON) {
		return nil, &InvalidResponseError{Reason: "unexpected Content-Type for release list", StatusCode: resp.StatusCode}
	}

	var payload releaseListResponse
	if err := json.Unmarshal(body, &payload); err != nil {
		return nil, &InvalidResponseError{Reason: "malformed release list JSON: " + err.Error(), StatusCode: resp.StatusCode}
	}

	var versions []semver.Version
	for key, raw := range payload.Releases {
		var entry releaseEntry
		if err := json.Unmarshal(raw, &entry); err == nil && len(entry.Problem) > 0 {
			continue
		}
		v, err := semver.Parse(key)
		if err != nil {
			continue
		}
		versions = append(versions, v)
	}
	sort.Slice(versions, func(i, j int) bool {
		return versions[i].GT(versions[j])
	})
	return versions, nil
}
