package registry

import (
	"crypto/sha256"
	"encoding/hex"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/blang/semver"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pkgforge/regcore/checksum"
	"github.com/pkgforge/regcore/collaborator"
	"github.com/pkgforge/regcore/executor"
	"github.com/pkgforge/regcore/namespace"
	"github.com/pkgforge/regcore/toolsversion"
	"github.com/pkgforge/regcore/vfs"
)

func mustIdentity(t *testing.T, s string) namespace.ScopedIdentity {
	t.Helper()
	id, ok := namespace.Parse(s)
	require.True(t, ok, "expected %q to parse", s)
	return id
}

func TestListReleasesFiltersProblemEntriesAndSortsDescending(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/mona/LinkedList", r.URL.Path)
		assert.Equal(t, AcceptReleaseList, r.Header.Get("Accept"))
		w.Header().Set("Content-Version", "1")
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{
			"releases": {
				"1.0.0": {"url": "https://example.com/mona/LinkedList/1.0.0"},
				"1.1.0": {"problem": {"status": 410, "detail": "gone"}},
				"1.2.0": {"url": "https://example.com/mona/LinkedList/1.2.0"}
			}
		}`))
	}))
	defer srv.Close()

	c, err := New(srv.URL, nil)
	require.NoError(t, err)

	var got []semver.Version
	var callErr error
	done := make(chan struct{})
	c.ListReleases(mustIdentity(t, "@mona/LinkedList"), executor.Inline{}, func(versions []semver.Version, err error) {
		got, callErr = versions, err
		close(done)
	})
	<-done

	require.NoError(t, callErr)
	require.Len(t, got, 2)
	assert.Equal(t, "1.2.0", got[0].String())
	assert.Equal(t, "1.0.0", got[1].String())
}

func TestListReleasesRejectsMissingContentVersion(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"releases": {}}`))
	}))
	defer srv.Close()

	c, err := New(srv.URL, nil)
	require.NoError(t, err)

	var callErr error
	done := make(chan struct{})
	c.ListReleases(mustIdentity(t, "@mona/LinkedList"), executor.Inline{}, func(_ []semver.Version, err error) {
		callErr = err
		close(done)
	})
	<-done

	require.Error(t, callErr)
	var invalid *InvalidResponseError
	require.ErrorAs(t, callErr, &invalid)
}

type fakeManifestLoader struct {
	gotPath string
}

func (f *fakeManifestLoader) Load(path, baseURL string, current toolsversion.Version, kind collaborator.Kind, fs vfs.FileSystem, queue executor.Queue, done func(collaborator.Manifest, error)) {
	f.gotPath = path
	data, err := fs.ReadFile(path)
	if err != nil {
		done(collaborator.Manifest{}, err)
		return
	}
	done(collaborator.Manifest{Value: string(data)}, nil)
}

func TestFetchManifestWritesAndLoads(t *testing.T) {
	const source = "// swift-tools-version:5.5\nlet package = Package(name: \"LinkedList\")\n"
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/mona/LinkedList/1.2.0/Package.swift", r.URL.Path)
		assert.Equal(t, AcceptManifest, r.Header.Get("Accept"))
		w.Header().Set("Content-Version", "1")
		w.Header().Set("Content-Type", "text/x-swift")
		w.Write([]byte(source))
	}))
	defer srv.Close()

	c, err := New(srv.URL, nil)
	require.NoError(t, err)

	fs := vfs.NewMemory()
	loader := &fakeManifestLoader{}

	var manifest collaborator.Manifest
	var callErr error
	done := make(chan struct{})
	c.FetchManifest(mustIdentity(t, "@mona/LinkedList"), "1.2.0", "", collaborator.KindDependency, toolsversion.DefaultVersion, fs, loader, executor.Inline{}, func(m collaborator.Manifest, err error) {
		manifest, callErr = m, err
		close(done)
	})
	<-done

	require.NoError(t, callErr)
	assert.Equal(t, source, manifest.Value)
	assert.Equal(t, "/LinkedList/Package.swift", loader.gotPath)
}

type fakeArchiver struct {
	sourcePath, destinationDir string
	err                        error
}

func (f *fakeArchiver) Extract(sourcePath, destinationDir string, queue executor.Queue, done func(error)) {
	f.sourcePath, f.destinationDir = sourcePath, destinationDir
	queue.Async(func() { done(f.err) })
}

func TestDownloadArchiveVerifiesAndExtracts(t *testing.T) {
	body := []byte("PK\x03\x04fake-zip-contents")
	sum := sha256.Sum256(body)
	digest := hex.EncodeToString(sum[:])

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/mona/LinkedList/1.2.0.zip", r.URL.Path)
		assert.Equal(t, AcceptArchive, r.Header.Get("Accept"))
		w.Header().Set("Content-Version", "1")
		w.Header().Set("Content-Type", "application/zip")
		w.Header().Set("Digest", "sha-256="+digest)
		w.Write(body)
	}))
	defer srv.Close()

	c, err := New(srv.URL, nil)
	require.NoError(t, err)

	archiver := &fakeArchiver{}
	q := executor.NewSerial()

	destinationDir := filepath.Join(t.TempDir(), "nested", "dest")

	var callErr error
	done := make(chan struct{})
	c.DownloadArchive(mustIdentity(t, "@mona/LinkedList"), "1.2.0", "", checksum.SHA256, destinationDir, archiver, q, func(err error) {
		callErr = err
		close(done)
	})
	<-done

	require.NoError(t, callErr)
	assert.Equal(t, destinationDir, archiver.destinationDir)
	assert.NotEmpty(t, archiver.sourcePath)

	info, statErr := os.Stat(destinationDir)
	require.NoError(t, statErr, "destination directory must exist before the archiver runs")
	assert.True(t, info.IsDir())
}

func TestDownloadArchiveRejectsChecksumMismatch(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Version", "1")
		w.Header().Set("Content-Type", "application/zip")
		w.Header().Set("Digest", "sha-256=0000000000000000000000000000000000000000000000000000000000000000")
		w.Write([]byte("archive-bytes"))
	}))
	defer srv.Close()

	c, err := New(srv.URL, nil)
	require.NoError(t, err)

	// Simulate a destination directory left behind by a prior partial
	// attempt; a failed download must not let it linger.
	destinationDir := filepath.Join(t.TempDir(), "dest")
	require.NoError(t, os.MkdirAll(destinationDir, 0o755))

	archiver := &fakeArchiver{}
	var callErr error
	done := make(chan struct{})
	c.DownloadArchive(mustIdentity(t, "@mona/LinkedList"), "1.2.0", "", checksum.SHA256, destinationDir, archiver, executor.Inline{}, func(err error) {
		callErr = err
		close(done)
	})
	<-done

	require.Error(t, callErr)
	var mismatch *InvalidChecksumError
	require.ErrorAs(t, callErr, &mismatch)
	assert.Empty(t, archiver.sourcePath, "archiver must not run when checksum verification fails")

	_, statErr := os.Stat(destinationDir)
	assert.True(t, os.IsNotExist(statErr), "destination directory must be removed after a checksum-mismatch failure")
}
