package registry

import (
	"os"
	"strings"

	"github.com/apex/log"
	"github.com/pkg/errors"

	"github.com/pkgforge/regcore/checksum"
	"github.com/pkgforge/regcore/collaborator"
	"github.com/pkgforge/regcore/executor"
	"github.com/pkgforge/regcore/namespace"
)

// DownloadArchive downloads the source archive for id at version, verifies
// it against expectedChecksum (if non-empty) and the server's advertised
// Digest header, extracts it to destinationDir via extractor, and cleans up
// its temporary file on every exit path (spec.md §4.G "Download archive").
// On extraction failure destinationDir is removed so a partial extraction
// never lingers. The extraction step chains through extractor's own
// completion callback rather than blocking the calling goroutine, so this
// composes safely with a queue whose extractor schedules its callback on
// that same queue.
func (c *Client) DownloadArchive(
	id namespace.ScopedIdentity,
	version, expectedChecksum string,
	hash checksum.HashFunc,
	destinationDir string,
	extractor collaborator.Archiver,
	queue executor.Queue,
	done func(error),
) {
	if queue == nil {
		queue = executor.Inline{}
	}
	queue.Async(func() {
		tempPath, err := c.downloadAndVerify(id, version, expectedChecksum, hash)
		if err != nil {
			// A destination directory may already have been created by a
			// prior partial attempt; spec.md §5 requires it not to linger
			// past a failed download.
			os.RemoveAll(destinationDir)
			done(err)
			return
		}
		c.extract(tempPath, destinationDir, extractor, queue, done)
	})
}

// downloadAndVerify fetches and checksum-verifies the archive, leaving it in
// a fresh temporary file whose path it returns. The caller owns removing
// that file.
func (c *Client) downloadAndVerify(id namespace.ScopedIdentity, version, expectedChecksum string, hash checksum.HashFunc) (string, error) {
	u, err := c.pathFor(id, version+".zip")
	if err != nil {
		return "", err
	}
	req, err := newRequest(u, AcceptArchive)
	if err != nil {
		return "", err
	}
	resp, body, err := c.do(req)
	if err != nil {
		return "", err
	}
	if !hasContentTypePrefix(resp.Header.Get("Content-Type"), contentTypeZip) {
		return "", &InvalidResponseError{Reason: "unexpected Content-Type for archive", StatusCode: resp.StatusCode}
	}

	advertised := strings.TrimPrefix(resp.Header.Get(digestHeader), "sha-256=")
	if _, err := checksum.Verify(body, hash, expectedChecksum, advertised); err != nil {
		var mismatch *checksum.MismatchError
		if errors.As(err, &mismatch) {
			log.WithFields(log.Fields{
				"expected": mismatch.Expected,
				"actual":   mismatch.Actual,
			}).Warn("registry: archive checksum mismatch")
			return "", &InvalidChecksumError{Expected: mismatch.Expected, Actual: mismatch.Actual}
		}
		return "", err
	}

	tempFile, err := os.CreateTemp("", "regcore-archive-*.zip")
	if err != nil {
		return "", errors.Wrap(err, "registry: creating temporary archive file")
	}
	tempPath := tempFile.Name()
	if _, err := tempFile.Write(body); err != nil {
		tempFile.Close()
		os.Remove(tempPath)
		return "", errors.Wrap(err, "registry: writing temporary archive file")
	}
	if err := tempFile.Close(); err != nil {
		os.Remove(tempPath)
		return "", errors.Wrap(err, "registry: closing temporary archive file")
	}
	return tempPath, nil
}

// extract hands tempPath to extractor and delivers the final result to
// done, removing tempPath in every case and destinationDir when extraction
// fails.
func (c *Client) extract(tempPath, destinationDir string, extractor collaborator.Archiver, queue executor.Queue, done func(error)) {
	if extractor == nil {
		os.Remove(tempPath)
		done(&InvalidOperationError{Reason: "no archiver collaborator configured"})
		return
	}
	if err := os.MkdirAll(destinationDir, 0o755); err != nil {
		os.Remove(tempPath)
		done(errors.Wrap(err, "registry: creating destination directory"))
		return
	}

	extractor.Extract(tempPath, destinationDir, queue, func(err error) {
		os.Remove(tempPath)
		if err != nil {
			os.RemoveAll(destinationDir)
			done(errors.Wrap(err, "registry: extracting archive"))
			return
		}
		done(nil)
	})
}
