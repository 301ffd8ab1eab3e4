// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package convert

import (
	"fmt"
	"io"
	"os"
	"os/exec"
	"path/filepath"
)

const binPandoc = "pandoc"

// executor abstracts command execution for testing.
type executor interface {
	LookPath(file string) (string, error)
	RunPiped(name string, args []string, dir string, stdout, stderr io.Writer) error
}

// osExecutor is the production executor backed by os/exec.
type osExecutor struct{}

func (o *osExecutor) LookPath(file string) (string, error) {
	return exec.LookPath(file)
}

func (o *osExecutor) RunPiped(name string, args []string, dir string, stdout, stderr io.Writer) error {
	cmd := exec.Command(name, args...)
	cmd.Dir = dir
	cmd.Stdout = stdout
	cmd.Stderr = stderr
	return cmd.Run()
}

var defaultExec executor = &osExecutor{}

// PandocConverter converts LaTeX sources by invoking the pandoc binary.
type PandocConverter struct {
	bin  string
	exec executor
}

// NewPandocConverter creates a converter for the given pandoc binary
// ("pandoc" when empty). It verifies the binary is resolvable before
// returning, so a missing pandoc fails the run up front rather than after
// the download.
func NewPandocConverter(bin string) (*PandocConverter, error) {
	return newPandocConverter(bin, defaultExec)
}

func newPandocConverter(bin string, exec executor) (*PandocConverter, error) {
	if bin == "" {
		bin = binPandoc
	}
	if _, err := exec.LookPath(bin); err != nil {
		return nil, fmt.Errorf("pandoc binary %q not found on PATH: %w", bin, err)
	}
	return &PandocConverter{bin: bin, exec: exec}, nil
}

// Convert runs pandoc in standalone mode with wrapping disabled, executing
// in workDir so the source's relative includes resolve. A non-zero pandoc
// exit fails the conversion.
func (p *PandocConverter) Convert(srcPath, workDir, format string, out io.Writer) error {
	args := []string{"-s", srcPath, "-t", format, "--wrap=none"}
	if err := p.exec.RunPiped(p.bin, args, workDir, out, os.Stderr); err != nil {
		return fmt.Errorf("pandoc conversion of %s to %s failed: %w", filepath.Base(srcPath), format, err)
	}
	return nil
}
