// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package texfind selects the main LaTeX source file from an extracted
// archive. An article's source bundle usually contains many .tex files
// (chapters, appendices, style fragments); the main file is the one that
// declares the document class and assembles the rest.
package texfind

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// candidate is a .tex file found during the scan, with its ranking signals.
type candidate struct {
	path string

	// named reports whether the filename contains "main".
	named bool

	// declares reports whether the content contains \documentclass.
	declares bool

	// includes counts \input and \include occurrences. \includegraphics
	// inflates the count, which only reinforces the assembler signal.
	includes int
}

// signals returns the number of boolean signals the candidate matches.
func (c candidate) signals() int {
	n := 0
	if c.named {
		n++
	}
	if c.declares {
		n++
	}
	return n
}

// Main scans dir recursively for .tex files and returns the best candidate
// for the main source file. ok is false when the directory holds no .tex
// files at all. A candidate that cannot be read aborts the selection.
//
// Ranking: candidates matching more boolean signals (name contains "main",
// content declares a document class) come first; among equals the one with
// more \input/\include directives wins; remaining ties break on
// lexicographic path order so the result does not depend on directory
// enumeration order.
func Main(dir string) (string, bool, error) {
	var candidates []candidate

	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || filepath.Ext(d.Name()) != ".tex" {
			return nil
		}

		data, err := os.ReadFile(path)
		if err != nil {
			return fmt.Errorf("reading candidate %s: %w", path, err)
		}
		content := string(data)

		candidates = append(candidates, candidate{
			path:     path,
			named:    strings.Contains(strings.ToLower(d.Name()), "main"),
			declares: strings.Contains(content, `\documentclass`),
			includes: strings.Count(content, `\input`) + strings.Count(content, `\include`),
		})
		return nil
	})
	if err != nil {
		return "", false, err
	}

	if len(candidates) == 0 {
		return "", false, nil
	}

	sort.Slice(candidates, func(i, j int) bool {
		a, b := candidates[i], candidates[j]
		if a.signals() != b.signals() {
			return a.signals() > b.signals()
		}
		if a.includes != b.includes {
			return a.includes > b.includes
		}
		return a.path < b.path
	})

	return candidates[0].path, true, nil
}
