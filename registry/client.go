// Package registry speaks the versioned HTTP media-type protocol a Swift
// package registry exposes: listing releases, fetching a manifest, and
// downloading and verifying a source archive (spec.md §4.G). It mediates
// between namespace-scoped package identifiers (package namespace) and the
// registry's wire format; it never resolves DNS or clones a repository.
package registry

import (
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/apex/log"
	"github.com/pkg/errors"

	"github.com/pkgforge/regcore/namespace"
)

// DefaultBaseURL is the registry base URL used when a Client is constructed
// without one.
const DefaultBaseURL = "https://packages.swift.org/"

// HTTPDoer is the subset of *http.Client the registry client depends on,
// making it substitutable in tests (net/http/httptest.Server's client
// satisfies it directly, as does any *http.Client).
type HTTPDoer interface {
	Do(req *http.Request) (*http.Response, error)
}

// Client is safe to share across concurrent calls; it holds configuration
// only (spec.md §3 "Lifecycles").
type Client struct {
	BaseURL *url.URL
	HTTP    HTTPDoer
}

// New constructs a Client for baseURL. A nil doer defaults to an
// *http.Client that never follows redirects, per spec.md §4.G/§6.
func New(baseURL string, doer HTTPDoer) (*Client, error) {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	u, err := url.Parse(baseURL)
	if err != nil {
		return nil, &InvalidURLError{BaseURL: baseURL, Cause: err}
	}
	if doer == nil {
		doer = defaultHTTPClient()
	}
	return &Client{BaseURL: u, HTTP: doer}, nil
}

// defaultHTTPClient returns an *http.Client configured to stop at the first
// response instead of following redirects, so a caller-supplied HTTPDoer is
// only necessary when something beyond redirect suppression is needed.
func defaultHTTPClient() *http.Client {
	return &http.Client{
		CheckRedirect: func(req *http.Request, via []*http.Request) error {
			return http.ErrUseLastResponse
		},
	}
}

// pathFor builds the request URL for a namespace-scoped package and
// trailing path segments, e.g. pathFor(id, "1.0.0.zip").
func (c *Client) pathFor(id namespace.ScopedIdentity, segments ...string) (*url.URL, error) {
	if id.Namespace == "" {
		return nil, &InvalidOperationError{Reason: "identifier " + id.Name + " has no namespace"}
	}
	scope := strings.TrimPrefix(id.Namespace, "@")
	parts := append([]string{scope, id.Name}, segments...)
	rel, err := url.Parse(strings.Join(parts, "/"))
	if err != nil {
		return nil, &InvalidURLError{BaseURL: c.BaseURL.String(), Path: strings.Join(parts, "/"), Cause: err}
	}
	return c.BaseURL.ResolveReference(rel), nil
}

// newRequest builds a GET request against u with the given Accept header.
// Redirects are never followed by the default client (see
// defaultHTTPClient); a caller-supplied HTTPDoer is responsible for the same
// behavior if it replaces the default.
func newRequest(u *url.URL, accept string) (*http.Request, error) {
	req, err := http.NewRequest(http.MethodGet, u.String(), nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", accept)
	return req, nil
}

// do sends req and validates the common response envelope: status 200,
// Content-Version: 1, and a non-empty body. It does not check content type;
// callers do that themselves since the acceptable prefix varies by
// operation.
func (c *Client) do(req *http.Request) (*http.Response, []byte, error) {
	log.WithFields(log.Fields{
		"method": req.Method,
		"url":    req.URL.String(),
		"accept": req.Header.Get("Accept"),
	}).Debug("registry: sending request")

	resp, err := c.HTTP.Do(req)
	if err != nil {
		return nil, nil, errors.Wrap(err, "registry: request failed")
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return resp, nil, errors.Wrap(err, "registry: could not read response body")
	}

	if resp.StatusCode != http.StatusOK {
		return resp, body, &InvalidResponseError{Reason: "unexpected status code", StatusCode: resp.StatusCode}
	}
	if resp.Header.Get(contentVersionHeader) != contentVersionValue {
		return resp, body, &InvalidResponseError{Reason: "missing or unexpected Content-Version header", StatusCode: resp.StatusCode}
	}
	if len(body) == 0 {
		return resp, body, &InvalidResponseError{Reason: "empty response body", StatusCode: resp.StatusCode}
	}
	return resp, body, nil
}
