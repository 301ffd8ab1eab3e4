// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package convert

import (
	"bytes"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/pdiddy/marxiv/pkg/types"
)

// fakeConverter implements Converter for testing. It writes canned output
// or returns an error, depending on configuration.
type fakeConverter struct {
	output string
	err    error

	gotSrc    string
	gotDir    string
	gotFormat string
}

func (f *fakeConverter) Convert(srcPath, workDir, format string, out io.Writer) error {
	f.gotSrc, f.gotDir, f.gotFormat = srcPath, workDir, format
	if f.err != nil {
		return f.err
	}
	_, err := io.WriteString(out, f.output)
	return err
}

func TestDocument_StreamsToStdout(t *testing.T) {
	conv := &fakeConverter{output: "# Title\n\nBody."}
	workDir := t.TempDir()
	var stdout, status bytes.Buffer

	opts := Options{Format: "markdown", Stdout: &stdout}
	paper := types.Paper{ID: "2301.07041"}
	if err := Document(conv, paper, filepath.Join(workDir, "main.tex"), workDir, opts, &status); err != nil {
		t.Fatalf("Document() error: %v", err)
	}

	if stdout.String() != "# Title\n\nBody." {
		t.Errorf("stdout = %q", stdout.String())
	}
	if conv.gotFormat != "markdown" {
		t.Errorf("format = %q", conv.gotFormat)
	}

	// Streaming to stdout must not create any file.
	entries, err := os.ReadDir(workDir)
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 0 {
		t.Errorf("unexpected files created: %v", entries)
	}
}

func TestDocument_WritesOutputFile(t *testing.T) {
	conv := &fakeConverter{output: "# Title\n\nBody."}
	workDir := t.TempDir()
	outPath := filepath.Join(t.TempDir(), "paper.md")
	var status bytes.Buffer

	opts := Options{Format: "gfm", OutputPath: outPath}
	paper := types.Paper{ID: "2301.07041"}
	if err := Document(conv, paper, "main.tex", workDir, opts, &status); err != nil {
		t.Fatalf("Document() error: %v", err)
	}

	data, err := os.ReadFile(outPath)
	if err != nil {
		t.Fatalf("reading output: %v", err)
	}
	if string(data) != "# Title\n\nBody." {
		t.Errorf("output = %q", data)
	}
	if !strings.Contains(status.String(), "converted:") {
		t.Errorf("status output %q missing conversion message", status.String())
	}
}

func TestDocument_FrontmatterOnFileOutput(t *testing.T) {
	conv := &fakeConverter{output: "# Paper\n"}
	outPath := filepath.Join(t.TempDir(), "paper.md")

	paper := types.Paper{
		ID:        "2301.07041",
		Title:     "A Study of Things",
		Authors:   []string{"Alice Smith", "Bob Jones"},
		SourceURL: "https://arxiv.org/e-print/2301.07041",
	}
	opts := Options{Format: "markdown", OutputPath: outPath}
	if err := Document(conv, paper, "main.tex", t.TempDir(), opts, &bytes.Buffer{}); err != nil {
		t.Fatalf("Document() error: %v", err)
	}

	data, err := os.ReadFile(outPath)
	if err != nil {
		t.Fatal(err)
	}
	content := string(data)

	if !strings.HasPrefix(content, "---\n") {
		t.Errorf("output does not start with frontmatter: %q", content[:min(len(content), 40)])
	}
	for _, want := range []string{"arxiv_id: 2301.07041", "title: A Study of Things", "Alice Smith"} {
		if !strings.Contains(content, want) {
			t.Errorf("frontmatter missing %q in:\n%s", want, content)
		}
	}
	if !strings.HasSuffix(content, "# Paper\n") {
		t.Errorf("converted body missing from output:\n%s", content)
	}
}

func TestDocument_NoFrontmatterWithoutMetadata(t *testing.T) {
	conv := &fakeConverter{output: "# Paper\n"}
	outPath := filepath.Join(t.TempDir(), "paper.md")

	paper := types.Paper{ID: "2301.07041"}
	opts := Options{Format: "markdown", OutputPath: outPath}
	if err := Document(conv, paper, "main.tex", t.TempDir(), opts, &bytes.Buffer{}); err != nil {
		t.Fatalf("Document() error: %v", err)
	}

	data, err := os.ReadFile(outPath)
	if err != nil {
		t.Fatal(err)
	}
	if string(data) != "# Paper\n" {
		t.Errorf("output = %q, want bare body", data)
	}
}

func TestDocument_FailureRemovesPartialFile(t *testing.T) {
	conv := &fakeConverter{err: errors.New("pandoc exploded")}
	outPath := filepath.Join(t.TempDir(), "paper.md")

	opts := Options{Format: "markdown", OutputPath: outPath}
	err := Document(conv, types.Paper{ID: "2301.07041"}, "main.tex", t.TempDir(), opts, &bytes.Buffer{})
	if err == nil {
		t.Fatal("Document() succeeded, want error")
	}
	if _, statErr := os.Stat(outPath); !os.IsNotExist(statErr) {
		t.Errorf("partial output file left behind: %v", statErr)
	}
}

func TestExtension(t *testing.T) {
	tests := []struct {
		format string
		want   string
	}{
		{"markdown", "md"},
		{"markdown_mmd", "md"},
		{"gfm", "md"},
		{"commonmark", "md"},
		{"latex", "txt"},
		{"plain", "txt"},
		{"rst", "txt"},
	}
	for _, tt := range tests {
		t.Run(tt.format, func(t *testing.T) {
			if got := Extension(tt.format); got != tt.want {
				t.Errorf("Extension(%q) = %q, want %q", tt.format, got, tt.want)
			}
		})
	}
}
