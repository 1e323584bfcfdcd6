// Package registryconfig loads process-wide registry defaults from an
// optional YAML file, in the same versioned-envelope style config/file.v1
// uses for its own configuration file, and exposes the identity-provider
// switch (identity.SetProvider) as a configuration value rather than
// something callers reach into the identity package to set directly.
package registryconfig

import (
	"github.com/apex/log"
	homedir "github.com/mitchellh/go-homedir"
	"github.com/pkg/errors"
	yaml "gopkg.in/yaml.v2"

	"github.com/pkgforge/regcore/identity"
	"github.com/pkgforge/regcore/registry"
)

// ErrWrongVersion is returned by Parse when the file's version field is not
// the one this package understands.
var ErrWrongVersion = errors.New("registryconfig: config file version is not 1")

// File is the on-disk shape of a registry-client configuration file.
type File struct {
	Version int `yaml:"version"`

	// BaseURL overrides registry.DefaultBaseURL when non-empty.
	BaseURL string `yaml:"base_url,omitempty"`

	// LegacyIdentity selects identity.Legacy over the default
	// identity.Canonical when true (spec.md §4.C, §9).
	LegacyIdentity bool `yaml:"legacy_identity,omitempty"`

	// ExpectedChecksum is decoded from the file but not applied anywhere:
	// Apply does not install it, and registry.Client.DownloadArchive checks
	// only the expectedChecksum passed to each call.
	ExpectedChecksum string `yaml:"expected_checksum,omitempty"`
}

// Parse validates and decodes data as a registryconfig File. As in
// config/file.v1, the version field is checked against an untyped decode
// first so a malformed or missing version is distinguishable from a
// malformed document.
func Parse(data []byte) (File, error) {
	var contents map[string]interface{}
	if err := yaml.Unmarshal(data, &contents); err != nil {
		return File{}, errors.Wrap(err, "registryconfig: malformed YAML")
	}
	if v, ok := contents["version"].(int); !ok || v != 1 {
		return File{}, ErrWrongVersion
	}

	var file File
	if err := yaml.Unmarshal(data, &file); err != nil {
		return File{}, errors.Wrap(err, "registryconfig: malformed YAML")
	}
	return file, nil
}

// Apply installs file's settings as process-wide defaults: it sets the
// active identity provider and returns the registry base URL to use
// (file.BaseURL, or registry.DefaultBaseURL when unset).
func Apply(file File) (baseURL string, err error) {
	if file.LegacyIdentity {
		identity.SetProvider(identity.Legacy)
	} else {
		identity.SetProvider(identity.Canonical)
	}

	baseURL = file.BaseURL
	if baseURL == "" {
		baseURL = registry.DefaultBaseURL
	}
	log.WithFields(log.Fields{
		"base_url":        baseURL,
		"legacy_identity": file.LegacyIdentity,
	}).Debug("registryconfig: applied configuration")
	return baseURL, nil
}

// ExpandPath resolves a leading "~" in path against the real user home
// directory, the way the canonical identity provider's FromPath does for
// local paths, so a configuration file path itself can be given as
// "~/.regcore.yml".
func ExpandPath(path string) (string, error) {
	expanded, err := homedir.Expand(path)
	if err != nil {
		return "", errors.Wrap(err, "registryconfig: expanding path")
	}
	return expanded, nil
}
