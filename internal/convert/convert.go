// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package convert turns a selected LaTeX source file into the target text
// format through an external converter.
package convert

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/marxiv/pkg/types"
)

// Converter renders a LaTeX source file into the target format. The
// production implementation shells out to pandoc.
type Converter interface {
	// Convert renders the file at srcPath into format, writing the result
	// to out. workDir is the directory the converter runs in, so relative
	// \input paths inside the source resolve against the extracted archive.
	Convert(srcPath, workDir, format string, out io.Writer) error
}

// Options controls where the converted document goes.
type Options struct {
	// Format is the pandoc output format identifier.
	Format string

	// OutputPath is the destination file. When empty the converted text
	// streams to Stdout and no file is created.
	OutputPath string

	// Stdout receives the converted text when OutputPath is empty.
	Stdout io.Writer
}

// Document converts the selected source file for paper. File output is
// prefixed with YAML frontmatter when article metadata is available; a
// conversion failure removes the partial file. w receives status messages.
func Document(c Converter, paper types.Paper, srcPath, workDir string, opts Options, w io.Writer) error {
	if opts.OutputPath == "" {
		return c.Convert(srcPath, workDir, opts.Format, opts.Stdout)
	}

	out, err := os.Create(opts.OutputPath)
	if err != nil {
		return fmt.Errorf("creating output file: %w", err)
	}

	if paper.Title != "" {
		if err := writeFrontmatter(out, paper); err != nil {
			out.Close()
			os.Remove(opts.OutputPath)
			return err
		}
	}

	convErr := c.Convert(srcPath, workDir, opts.Format, out)
	closeErr := out.Close()
	if convErr != nil {
		os.Remove(opts.OutputPath)
		return convErr
	}
	if closeErr != nil {
		os.Remove(opts.OutputPath)
		return fmt.Errorf("closing output file: %w", closeErr)
	}

	fmt.Fprintf(w, "converted: %s (%s)\n", filepath.Base(srcPath), opts.Format)
	return nil
}

// frontmatter is the YAML block prepended to file output.
type frontmatter struct {
	ID          string   `yaml:"arxiv_id"`
	Title       string   `yaml:"title"`
	Authors     []string `yaml:"authors,omitempty"`
	SourceURL   string   `yaml:"source_url"`
	ConvertedAt string   `yaml:"converted_at"`
}

func writeFrontmatter(out io.Writer, paper types.Paper) error {
	fm := frontmatter{
		ID:          paper.ID,
		Title:       paper.Title,
		Authors:     paper.Authors,
		SourceURL:   paper.SourceURL,
		ConvertedAt: time.Now().UTC().Format(time.RFC3339),
	}
	data, err := yaml.Marshal(fm)
	if err != nil {
		return fmt.Errorf("marshaling frontmatter: %w", err)
	}
	if _, err := fmt.Fprintf(out, "---\n%s---\n\n", data); err != nil {
		return fmt.Errorf("writing frontmatter: %w", err)
	}
	return nil
}

// Extension maps a pandoc format identifier to a short file extension.
// Informational only; the converter writes whatever the format produces.
func Extension(format string) string {
	switch format {
	case "markdown", "markdown_mmd", "gfm", "commonmark":
		return "md"
	default:
		return "txt"
	}
}
