// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pdiddy/marxiv/internal/arxiv"
	"github.com/pdiddy/marxiv/internal/convert"
	"github.com/pdiddy/marxiv/internal/fetch"
	"github.com/pdiddy/marxiv/internal/history"
	"github.com/pdiddy/marxiv/internal/texfind"
	"github.com/pdiddy/marxiv/pkg/types"
)

const (
	defaultTimeout   = 60 * time.Second
	defaultFormat    = "markdown"
	defaultUserAgent = "marxiv/0.1"
)

func init() {
	rootCmd.Flags().StringP("format", "f", defaultFormat, "pandoc output format")
	rootCmd.Flags().StringP("output", "o", "", "output file (default: stdout)")
	rootCmd.Flags().Duration("timeout", 0, "HTTP request timeout (default 60s)")
	rootCmd.Flags().String("pandoc", "", "pandoc binary to invoke (default: pandoc from PATH)")
	rootCmd.Flags().Bool("no-history", false, "skip recording the fetch in the local history index")
}

// stringSetting returns the flag value, falling back to a viper config key
// and then to def.
func stringSetting(cmd *cobra.Command, flag, key, def string) string {
	if v, _ := cmd.Flags().GetString(flag); v != "" {
		return v
	}
	if v := viper.GetString(key); v != "" {
		return v
	}
	return def
}

func runFetch(cmd *cobra.Command, args []string) error {
	id, ok := arxiv.Classify(args[0])
	if !ok {
		return fmt.Errorf("unrecognized arXiv identifier: %q", args[0])
	}

	format, _ := cmd.Flags().GetString("format")
	outputFile, _ := cmd.Flags().GetString("output")
	noHistory, _ := cmd.Flags().GetBool("no-history")
	pandocBin := stringSetting(cmd, "pandoc", "conversion.pandoc_path", "")

	timeout, _ := cmd.Flags().GetDuration("timeout")
	if timeout == 0 {
		timeout = viper.GetDuration("http.timeout")
	}
	if timeout == 0 {
		timeout = defaultTimeout
	}
	userAgent := viper.GetString("http.user_agent")
	if userAgent == "" {
		userAgent = defaultUserAgent
	}

	fcfg := types.FetchConfig{
		HTTPConfig: types.HTTPConfig{
			Timeout:    timeout,
			UserAgent:  userAgent,
			MaxRetries: viper.GetInt("http.max_retries"),
		},
		Progress: stderrIsTerminal(),
	}

	// Verify pandoc before touching the network.
	converter, err := convert.NewPandocConverter(pandocBin)
	if err != nil {
		return err
	}

	client := &http.Client{Timeout: timeout}
	ctx := cmd.Context()

	workDir, err := os.MkdirTemp("", "marxiv-*")
	if err != nil {
		return fmt.Errorf("creating working directory: %w", err)
	}
	defer os.RemoveAll(workDir)

	if err := fetch.Archive(ctx, client, id, workDir, fcfg, os.Stderr); err != nil {
		return fmt.Errorf("arXiv:%s: %w", id, err)
	}

	mainFile, found, err := texfind.Main(workDir)
	if err != nil {
		return fmt.Errorf("arXiv:%s: scanning source files: %w", id, err)
	}
	if !found {
		return fmt.Errorf("no LaTeX source found for arXiv:%s", id)
	}

	rel, err := filepath.Rel(workDir, mainFile)
	if err != nil {
		rel = filepath.Base(mainFile)
	}

	paper := types.Paper{
		ID:         id,
		SourceURL:  arxiv.EPrintURL(id),
		MainFile:   rel,
		Format:     format,
		OutputFile: outputFile,
		FetchedAt:  time.Now().UTC(),
	}

	if err := arxiv.FetchMetadata(ctx, client, id, &paper, fcfg.HTTPConfig); err != nil {
		fmt.Fprintf(os.Stderr, "warning: arXiv metadata fetch failed: %v\n", err)
	}

	opts := convert.Options{
		Format:     format,
		OutputPath: outputFile,
		Stdout:     os.Stdout,
	}
	if err := convert.Document(converter, paper, mainFile, workDir, opts, os.Stderr); err != nil {
		return fmt.Errorf("arXiv:%s: %w", id, err)
	}

	if outputFile != "" {
		fmt.Fprintf(os.Stderr, "Converted arXiv:%s to '%s'\n", id, outputFile)
	} else {
		fmt.Fprintf(os.Stderr, "Fetched arXiv:%s\n", id)
	}

	if !noHistory {
		recordHistory(paper)
	}
	return nil
}

// stderrIsTerminal reports whether stderr is attached to a terminal, which
// gates the download progress bar.
func stderrIsTerminal() bool {
	fi, err := os.Stderr.Stat()
	if err != nil {
		return false
	}
	return fi.Mode()&os.ModeCharDevice != 0
}

// recordHistory stores the fetch in the local index. Best effort only.
func recordHistory(paper types.Paper) {
	cacheDir := viper.GetString("history.cache_dir")
	if cacheDir == "" {
		var err error
		cacheDir, err = history.DefaultCacheDir()
		if err != nil {
			fmt.Fprintf(os.Stderr, "warning: history disabled: %v\n", err)
			return
		}
	}

	store, err := history.Open(cacheDir)
	if err != nil {
		fmt.Fprintf(os.Stderr, "warning: could not open history index: %v\n", err)
		return
	}
	defer store.Close()

	if err := store.Record(paper); err != nil {
		fmt.Fprintf(os.Stderr, "warning: could not record fetch: %v\n", err)
	}
}
