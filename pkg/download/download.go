// Package download fetches URLs with on-the-fly SHA-256 verification.
// File downloads go to a temp file in the destination directory and only
// replace the destination after the digest matches, so the destination is
// always either its previous content or fully verified new content.
package download

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync/atomic"

	"github.com/cegaiel/mappacksync/pkg/cancel"
	"github.com/cegaiel/mappacksync/pkg/hashing"
	"github.com/cegaiel/mappacksync/pkg/ratelimit"
	"github.com/cegaiel/mappacksync/pkg/transport"
)

// chunkSize is the read granularity of the streaming loop; cancellation
// is polled between chunks.
const chunkSize = 64 * 1024

// VerifyError reports a digest mismatch after a completed download. The
// destination file was not touched.
type VerifyError struct {
	URL      string
	Expected string
	Actual   string
}

func (e *VerifyError) Error() string {
	return fmt.Sprintf("download %s: SHA-256 mismatch: expected %s, got %s", e.URL, e.Expected, e.Actual)
}

// SizeError reports a body that exceeded the caller's byte cap.
type SizeError struct {
	URL string
	Max int64
}

func (e *SizeError) Error() string {
	return fmt.Sprintf("download %s: body exceeds %d bytes", e.URL, e.Max)
}

// tempCounter disambiguates temp names within one process; combined with
// the pid it keeps concurrent tool instances from colliding.
var tempCounter atomic.Uint64

// Downloader performs verified downloads. File and manifest requests go
// through separate transport clients: manifests carry an overall
// deadline, while file transfers must be allowed to run as long as bytes
// keep flowing.
type Downloader struct {
	files     *transport.Client
	manifests *transport.Client
	limiter   *ratelimit.Limiter
}

// New creates a Downloader. manifests may be nil to reuse the file
// client; limiter may be nil for unlimited bandwidth.
func New(files, manifests *transport.Client, limiter *ratelimit.Limiter) *Downloader {
	if manifests == nil {
		manifests = files
	}
	return &Downloader{files: files, manifests: manifests, limiter: limiter}
}

// FetchFile downloads url to dest, verifying the body against
// expectedHex while streaming. On any failure, including cancellation and
// digest mismatch, dest is left exactly as it was and no temp file
// remains. On success dest is atomically replaced.
func (d *Downloader) FetchFile(ctx context.Context, url, dest, expectedHex string, tok *cancel.Token) error {
	if err := tok.Err(); err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(dest), 0o755); err != nil {
		return fmt.Errorf("create destination directory: %w", err)
	}

	// Temp file lives next to dest: same filesystem, so the final
	// rename is atomic.
	tmp := fmt.Sprintf("%s.tmp%d.%d", dest, os.Getpid(), tempCounter.Add(1))
	f, err := os.OpenFile(tmp, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}

	cleanup := func() {
		f.Close()
		os.Remove(tmp)
	}

	resp, done, err := d.files.Get(ctx, url)
	if err != nil {
		cleanup()
		return err
	}
	defer done()
	defer resp.Body.Close()

	h := hashing.New()
	body := ratelimit.NewReader(resp.Body, d.limiter)
	if err := streamChunks(body, io.MultiWriter(f, h), tok); err != nil {
		cleanup()
		return err
	}

	if err := f.Close(); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("finish temp file: %w", err)
	}

	actual := hashing.Finish(h)
	if !hashing.Equal(actual, expectedHex) {
		os.Remove(tmp)
		return &VerifyError{URL: url, Expected: expectedHex, Actual: actual}
	}

	if err := os.Rename(tmp, dest); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("replace destination: %w", err)
	}
	return nil
}

// FetchString downloads url into memory, enforcing maxBytes incrementally
// so an oversized body aborts as soon as the cap would be crossed.
func (d *Downloader) FetchString(ctx context.Context, url string, maxBytes int64, tok *cancel.Token) (string, error) {
	if err := tok.Err(); err != nil {
		return "", err
	}

	resp, done, err := d.manifests.Get(ctx, url)
	if err != nil {
		return "", err
	}
	defer done()
	defer resp.Body.Close()

	var buf []byte
	chunk := make([]byte, chunkSize)
	for {
		if err := tok.Err(); err != nil {
			return "", err
		}
		n, readErr := resp.Body.Read(chunk)
		if n > 0 {
			if int64(len(buf)+n) > maxBytes {
				return "", &SizeError{URL: url, Max: maxBytes}
			}
			buf = append(buf, chunk[:n]...)
		}
		if readErr == io.EOF {
			return string(buf), nil
		}
		if readErr != nil {
			return "", fmt.Errorf("read %s: %w", url, readErr)
		}
	}
}

// streamChunks copies r to w in fixed-size chunks, polling tok between
// reads.
func streamChunks(r io.Reader, w io.Writer, tok *cancel.Token) error {
	chunk := make([]byte, chunkSize)
	for {
		if err := tok.Err(); err != nil {
			return err
		}
		n, readErr := r.Read(chunk)
		if n > 0 {
			if _, err := w.Write(chunk[:n]); err != nil {
				return fmt.Errorf("write chunk: %w", err)
			}
		}
		if readErr == io.EOF {
			return nil
		}
		if readErr != nil {
			return fmt.Errorf("read body: %w", readErr)
		}
	}
}
