// Package download streams remote files to disk with progress reporting
// and cooperative cancellation.
package download

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"path"
	"path/filepath"

	fnerrors "github.com/arthur-debert/fnassist/pkg/errors"
	"github.com/arthur-debert/fnassist/pkg/logging"
	"github.com/arthur-debert/fnassist/pkg/types"
)

// DefaultChunkSize matches the size of one read from the response body
const DefaultChunkSize = 8192

// PartSuffix marks a download in progress
const PartSuffix = ".part"

// Downloader fetches URLs to local files
type Downloader struct {
	Client    *http.Client
	ChunkSize int
	UserAgent string
}

// New creates a Downloader. Downloads have no overall timeout; cancel the
// context instead.
func New(chunkSize int, userAgent string) *Downloader {
	if chunkSize <= 0 {
		chunkSize = DefaultChunkSize
	}
	return &Downloader{Client: &http.Client{}, ChunkSize: chunkSize, UserAgent: userAgent}
}

// Result describes a finished download
type Result struct {
	Path  string `json:"path" yaml:"path"`
	Bytes int64  `json:"bytes" yaml:"bytes"`
}

// Download writes src to dest. Data goes to dest+".part" first and is
// renamed into place once complete.
//
// The context is checked once per chunk. When it is cancelled the partial
// file is deleted and a DOWNLOAD_CANCELLED error is returned. Other
// failures also remove the partial file and return a NETWORK error.
func (d *Downloader) Download(ctx context.Context, src, dest string, progress types.ProgressFunc) (*Result, error) {
	logger := logging.GetLogger("download").With().Str("url", src).Str("dest", dest).Logger()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, src, nil)
	if err != nil {
		return nil, fnerrors.Wrap(err, fnerrors.ErrInvalidInput, "invalid download URL")
	}
	if d.UserAgent != "" {
		req.Header.Set("User-Agent", d.UserAgent)
	}

	resp, err := d.client().Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return nil, cancelled(dest)
		}
		return nil, fnerrors.Wrapf(err, fnerrors.ErrNetwork, "failed to fetch %s", src)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fnerrors.Newf(fnerrors.ErrNetwork, "download failed with HTTP %d", resp.StatusCode).
			WithDetail("status", resp.StatusCode)
	}

	if err := os.MkdirAll(filepath.Dir(dest), 0755); err != nil {
		return nil, fnerrors.Wrapf(err, fnerrors.ErrUnexpectedOS, "cannot create %s", filepath.Dir(dest))
	}
	part := dest + PartSuffix
	file, err := os.Create(part)
	if err != nil {
		return nil, fnerrors.Wrapf(err, fnerrors.ErrUnexpectedOS, "cannot create %s", part)
	}

	written, copyErr := d.copyChunks(ctx, file, resp.Body, resp.ContentLength, progress)
	closeErr := file.Close()
	if copyErr == nil {
		copyErr = closeErr
	}
	if copyErr != nil {
		_ = os.Remove(part)
		if ctx.Err() != nil {
			logger.Info().Int64("written", written).Msg("download cancelled, partial file removed")
			return nil, cancelled(dest)
		}
		return nil, fnerrors.Wrapf(copyErr, fnerrors.ErrNetwork, "download of %s failed", src)
	}

	if err := os.Rename(part, dest); err != nil {
		_ = os.Remove(part)
		return nil, fnerrors.Wrapf(err, fnerrors.ErrUnexpectedOS, "cannot move download to %s", dest)
	}
	logger.Info().Int64("bytes", written).Msg("download complete")
	return &Result{Path: dest, Bytes: written}, nil
}

func (d *Downloader) copyChunks(ctx context.Context, w io.Writer, r io.Reader, total int64, progress types.ProgressFunc) (int64, error) {
	size := d.ChunkSize
	if size <= 0 {
		size = DefaultChunkSize
	}
	buf := make([]byte, size)
	var written int64
	for {
		if err := ctx.Err(); err != nil {
			return written, err
		}
		n, err := io.ReadFull(r, buf)
		if n > 0 {
			if _, werr := w.Write(buf[:n]); werr != nil {
				return written, werr
			}
			written += int64(n)
			if progress != nil {
				progress(written, total)
			}
		}
		switch {
		case err == nil:
		case errors.Is(err, io.EOF), errors.Is(err, io.ErrUnexpectedEOF):
			if total > 0 && written != total {
				return written, fmt.Errorf("short body: got %d of %d bytes", written, total)
			}
			return written, nil
		default:
			return written, err
		}
	}
}

func (d *Downloader) client() *http.Client {
	if d.Client == nil {
		return http.DefaultClient
	}
	return d.Client
}

func cancelled(dest string) error {
	return fnerrors.New(fnerrors.ErrDownloadCancelled, "download cancelled").WithDetail("path", dest)
}

// FileNameFromURL returns the last path element of a URL, or fallback
func FileNameFromURL(rawURL, fallback string) string {
	u, err := url.Parse(rawURL)
	if err != nil {
		return fallback
	}
	base := path.Base(u.Path)
	if base == "" || base == "." || base == "/" {
		return fallback
	}
	return base
}
