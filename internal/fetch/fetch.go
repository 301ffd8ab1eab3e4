// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package fetch downloads an article's e-print archive and extracts it
// into a working directory.
package fetch

import (
	"archive/tar"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/klauspost/compress/gzip"
	"github.com/schollz/progressbar/v3"

	"github.com/pdiddy/marxiv/internal/arxiv"
	"github.com/pdiddy/marxiv/internal/httputil"
	"github.com/pdiddy/marxiv/pkg/types"
)

// ErrNotFound reports that arxiv.org has no e-print for the identifier.
var ErrNotFound = errors.New("e-print not found")

// ErrBadArchive reports that the downloaded payload is not a valid
// gzip-compressed source archive.
var ErrBadArchive = errors.New("payload is not a valid source archive")

// Archive downloads the e-print for id and extracts it into destDir,
// preserving the archive's internal relative paths. destDir must exist and
// should be empty; on any error no usable partial extraction is promised
// and the caller discards the directory.
//
// arXiv serves two payload shapes: a gzipped tar bundle, and a gzipped
// single file for articles with one source file. The single-file form is
// written as "<slug>.tex" in destDir so the selector can pick it up.
func Archive(ctx context.Context, client *http.Client, id, destDir string, cfg types.FetchConfig, w io.Writer) error {
	tmpPath, err := download(ctx, client, arxiv.EPrintURL(id), destDir, cfg, w)
	if err != nil {
		return err
	}
	defer os.Remove(tmpPath)

	extracted, err := extractTar(tmpPath, destDir)
	if err == nil && extracted == 0 {
		return fmt.Errorf("%w: archive has no file entries", ErrBadArchive)
	}
	if err == nil {
		return nil
	}
	if !errors.Is(err, errNotTar) {
		return err
	}

	// Gzipped single file, not a tar bundle.
	return extractSingle(tmpPath, filepath.Join(destDir, arxiv.Slug(id)+".tex"))
}

// download fetches url into a temporary file inside destDir and returns
// its path. The temp file keeps the partial download out of the extraction
// tree until it is complete.
func download(ctx context.Context, client *http.Client, url, destDir string, cfg types.FetchConfig, w io.Writer) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return "", fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("User-Agent", cfg.UserAgent)

	resp, err := httputil.DoWithRetry(ctx, client, req, cfg.MaxRetries)
	if err != nil {
		return "", fmt.Errorf("HTTP request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return "", fmt.Errorf("%w: %s", ErrNotFound, url)
	}
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("HTTP %d from %s", resp.StatusCode, url)
	}

	tmpFile, err := os.CreateTemp(destDir, ".eprint-*.tmp")
	if err != nil {
		return "", fmt.Errorf("creating temp file: %w", err)
	}
	tmpPath := tmpFile.Name()

	var dst io.Writer = tmpFile
	if cfg.Progress && resp.ContentLength > 0 {
		bar := progressbar.DefaultBytes(resp.ContentLength, "downloading")
		dst = io.MultiWriter(tmpFile, bar)
	}

	_, copyErr := io.Copy(dst, resp.Body)
	closeErr := tmpFile.Close()
	if copyErr != nil {
		os.Remove(tmpPath)
		return "", fmt.Errorf("writing download: %w", copyErr)
	}
	if closeErr != nil {
		os.Remove(tmpPath)
		return "", fmt.Errorf("closing temp file: %w", closeErr)
	}

	fmt.Fprintf(w, "downloaded: %s\n", url)
	return tmpPath, nil
}

// errNotTar signals that the gzip payload decoded fine but is not a tar
// stream, so the single-file fallback applies.
var errNotTar = errors.New("not a tar stream")

// extractTar unpacks the gzipped tar at archivePath into destDir and
// returns the number of extracted regular files.
func extractTar(archivePath, destDir string) (int, error) {
	f, err := os.Open(archivePath)
	if err != nil {
		return 0, fmt.Errorf("opening archive: %w", err)
	}
	defer f.Close()

	gz, err := gzip.NewReader(f)
	if err != nil {
		return 0, fmt.Errorf("%w: %v", ErrBadArchive, err)
	}
	defer gz.Close()

	tr := tar.NewReader(gz)
	extracted := 0
	for {
		hdr, err := tr.Next()
		if err == io.EOF {
			return extracted, nil
		}
		if err != nil {
			if extracted == 0 {
				return 0, errNotTar
			}
			return 0, fmt.Errorf("%w: reading tar entry: %v", ErrBadArchive, err)
		}

		target, err := safeJoin(destDir, hdr.Name)
		if err != nil {
			return 0, fmt.Errorf("%w: %v", ErrBadArchive, err)
		}

		switch hdr.Typeflag {
		case tar.TypeDir:
			if err := os.MkdirAll(target, 0o755); err != nil {
				return 0, fmt.Errorf("creating directory %s: %w", hdr.Name, err)
			}
		case tar.TypeReg:
			if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
				return 0, fmt.Errorf("creating directory for %s: %w", hdr.Name, err)
			}
			if err := writeEntry(target, tr); err != nil {
				return 0, fmt.Errorf("extracting %s: %w", hdr.Name, err)
			}
			extracted++
		default:
			// Symlinks and special entries are skipped; LaTeX bundles
			// only need regular files.
		}
	}
}

// extractSingle decompresses a gzipped single-file payload to destPath.
func extractSingle(archivePath, destPath string) error {
	f, err := os.Open(archivePath)
	if err != nil {
		return fmt.Errorf("opening archive: %w", err)
	}
	defer f.Close()

	gz, err := gzip.NewReader(f)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrBadArchive, err)
	}
	defer gz.Close()

	return writeEntry(destPath, gz)
}

func writeEntry(path string, r io.Reader) error {
	out, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o644)
	if err != nil {
		return err
	}
	_, copyErr := io.Copy(out, r)
	closeErr := out.Close()
	if copyErr != nil {
		return copyErr
	}
	return closeErr
}

// safeJoin joins name under dest, rejecting absolute paths and entries
// that escape dest via "..".
func safeJoin(dest, name string) (string, error) {
	if filepath.IsAbs(name) {
		return "", fmt.Errorf("absolute path in archive: %s", name)
	}
	target := filepath.Join(dest, name)
	if target != dest && !strings.HasPrefix(target, dest+string(os.PathSeparator)) {
		return "", fmt.Errorf("archive entry escapes extraction directory: %s", name)
	}
	return target, nil
}
