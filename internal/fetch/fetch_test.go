// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package fetch

import (
	"archive/tar"
	"bytes"
	"compress/gzip"
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/pdiddy/marxiv/internal/arxiv"
	"github.com/pdiddy/marxiv/pkg/types"
)

// tarGz builds a gzipped tar archive from name -> content pairs, in the
// given entry order.
func tarGz(t *testing.T, entries []struct{ name, content string }) []byte {
	t.Helper()
	var buf bytes.Buffer
	gz := gzip.NewWriter(&buf)
	tw := tar.NewWriter(gz)
	for _, e := range entries {
		hdr := &tar.Header{
			Name: e.name,
			Mode: 0o644,
			Size: int64(len(e.content)),
		}
		if err := tw.WriteHeader(hdr); err != nil {
			t.Fatal(err)
		}
		if _, err := tw.Write([]byte(e.content)); err != nil {
			t.Fatal(err)
		}
	}
	if err := tw.Close(); err != nil {
		t.Fatal(err)
	}
	if err := gz.Close(); err != nil {
		t.Fatal(err)
	}
	return buf.Bytes()
}

// gzOnly gzips a single payload without a tar wrapper.
func gzOnly(t *testing.T, content string) []byte {
	t.Helper()
	var buf bytes.Buffer
	gz := gzip.NewWriter(&buf)
	if _, err := gz.Write([]byte(content)); err != nil {
		t.Fatal(err)
	}
	if err := gz.Close(); err != nil {
		t.Fatal(err)
	}
	return buf.Bytes()
}

// serveEPrint points arxiv.EPrintBase at a test server returning the given
// status and body for every request.
func serveEPrint(t *testing.T, status int, body []byte) *httptest.Server {
	t.Helper()
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(status)
		w.Write(body)
	}))
	t.Cleanup(ts.Close)

	old := arxiv.EPrintBase
	arxiv.EPrintBase = ts.URL + "/e-print/"
	t.Cleanup(func() { arxiv.EPrintBase = old })
	return ts
}

func testCfg() types.FetchConfig {
	return types.FetchConfig{
		HTTPConfig: types.HTTPConfig{UserAgent: "marxiv-test"},
	}
}

func TestArchive_ExtractsTarBundle(t *testing.T) {
	payload := tarGz(t, []struct{ name, content string }{
		{"main.tex", `\documentclass{article}`},
		{"sections/intro.tex", "Introduction."},
		{"figures/plot.eps", "EPS data"},
	})
	ts := serveEPrint(t, http.StatusOK, payload)
	client := ts.Client()

	dest := t.TempDir()
	var status bytes.Buffer
	if err := Archive(context.Background(), client, "2301.07041", dest, testCfg(), &status); err != nil {
		t.Fatalf("Archive() error: %v", err)
	}

	for _, name := range []string{"main.tex", "sections/intro.tex", "figures/plot.eps"} {
		if _, err := os.Stat(filepath.Join(dest, name)); err != nil {
			t.Errorf("expected extracted file %s: %v", name, err)
		}
	}

	data, err := os.ReadFile(filepath.Join(dest, "main.tex"))
	if err != nil {
		t.Fatal(err)
	}
	if string(data) != `\documentclass{article}` {
		t.Errorf("main.tex content = %q", data)
	}

	// The temp download file must not survive extraction.
	matches, _ := filepath.Glob(filepath.Join(dest, ".eprint-*.tmp"))
	if len(matches) != 0 {
		t.Errorf("temp download files left behind: %v", matches)
	}

	if !strings.Contains(status.String(), "downloaded:") {
		t.Errorf("status output %q missing download message", status.String())
	}
}

func TestArchive_SingleFilePayload(t *testing.T) {
	ts := serveEPrint(t, http.StatusOK, gzOnly(t, `\documentclass{article}\begin{document}x\end{document}`))
	client := ts.Client()

	dest := t.TempDir()
	if err := Archive(context.Background(), client, "2301.07041", dest, testCfg(), &bytes.Buffer{}); err != nil {
		t.Fatalf("Archive() error: %v", err)
	}

	data, err := os.ReadFile(filepath.Join(dest, "2301.07041.tex"))
	if err != nil {
		t.Fatalf("expected single-file fallback: %v", err)
	}
	if !strings.Contains(string(data), `\documentclass`) {
		t.Errorf("fallback content = %q", data)
	}
}

func TestArchive_NotFound(t *testing.T) {
	ts := serveEPrint(t, http.StatusNotFound, []byte("No paper"))
	client := ts.Client()

	err := Archive(context.Background(), client, "9999.99999", t.TempDir(), testCfg(), &bytes.Buffer{})
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("Archive() error = %v, want ErrNotFound", err)
	}
}

func TestArchive_NonArchivePayload(t *testing.T) {
	ts := serveEPrint(t, http.StatusOK, []byte("<html>this is not an archive</html>"))
	client := ts.Client()

	err := Archive(context.Background(), client, "2301.07041", t.TempDir(), testCfg(), &bytes.Buffer{})
	if !errors.Is(err, ErrBadArchive) {
		t.Errorf("Archive() error = %v, want ErrBadArchive", err)
	}
}

func TestArchive_RejectsTraversalEntry(t *testing.T) {
	payload := tarGz(t, []struct{ name, content string }{
		{"../evil.tex", "escape attempt"},
	})
	ts := serveEPrint(t, http.StatusOK, payload)
	client := ts.Client()

	dest := t.TempDir()
	err := Archive(context.Background(), client, "2301.07041", dest, testCfg(), &bytes.Buffer{})
	if !errors.Is(err, ErrBadArchive) {
		t.Errorf("Archive() error = %v, want ErrBadArchive", err)
	}
	if _, statErr := os.Stat(filepath.Join(filepath.Dir(dest), "evil.tex")); statErr == nil {
		t.Error("traversal entry was written outside the extraction directory")
	}
}

func TestArchive_ServerError(t *testing.T) {
	ts := serveEPrint(t, http.StatusInternalServerError, nil)
	client := ts.Client()

	err := Archive(context.Background(), client, "2301.07041", t.TempDir(), testCfg(), &bytes.Buffer{})
	if err == nil {
		t.Error("Archive() succeeded on HTTP 500, want error")
	}
}

func TestSafeJoin(t *testing.T) {
	dest := filepath.Join("/tmp", "work")
	tests := []struct {
		name    string
		entry   string
		wantErr bool
	}{
		{"plain file", "main.tex", false},
		{"nested file", "sections/intro.tex", false},
		{"dot segment resolved", "a/./b.tex", false},
		{"parent escape", "../evil.tex", true},
		{"deep parent escape", "a/../../evil.tex", true},
		{"absolute path", "/etc/passwd", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := safeJoin(dest, tt.entry)
			if (err != nil) != tt.wantErr {
				t.Errorf("safeJoin(%q) error = %v, wantErr %v", tt.entry, err, tt.wantErr)
			}
			if err == nil && !strings.HasPrefix(got, dest) {
				t.Errorf("safeJoin(%q) = %q escapes %q", tt.entry, got, dest)
			}
		})
	}
}

func TestFallbackUsableBySelector(t *testing.T) {
	// A single-file e-print must end up as a .tex candidate named after
	// the identifier, old-style IDs included.
	ts := serveEPrint(t, http.StatusOK, gzOnly(t, "plain tex body"))
	client := ts.Client()

	dest := t.TempDir()
	if err := Archive(context.Background(), client, "math.GT/0309136", dest, testCfg(), &bytes.Buffer{}); err != nil {
		t.Fatalf("Archive() error: %v", err)
	}
	if _, err := os.Stat(filepath.Join(dest, "math.GT-0309136.tex")); err != nil {
		t.Errorf("expected slugged fallback file: %v", err)
	}
}

func TestArchive_EmptyTar(t *testing.T) {
	ts := serveEPrint(t, http.StatusOK, tarGz(t, nil))
	client := ts.Client()

	err := Archive(context.Background(), client, "2301.07041", t.TempDir(), testCfg(), &bytes.Buffer{})
	if !errors.Is(err, ErrBadArchive) {
		t.Errorf("Archive() error = %v, want ErrBadArchive", err)
	}
}
