// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import "time"

// HTTPConfig holds shared HTTP settings used by components that talk to arxiv.org.
type HTTPConfig struct {
	// Timeout is the HTTP request timeout.
	Timeout time.Duration `json:"timeout" yaml:"timeout"`

	// UserAgent is the User-Agent header sent with HTTP requests
	// (e.g. "marxiv/0.1"). arXiv asks automated clients to identify themselves.
	UserAgent string `json:"user_agent" yaml:"user_agent"`

	// MaxRetries is the number of retry attempts on rate-limited responses
	// (default 5).
	MaxRetries int `json:"max_retries" yaml:"max_retries"`
}

// FetchConfig holds settings for the e-print fetch stage.
type FetchConfig struct {
	HTTPConfig `yaml:",inline"`

	// Progress controls whether a byte-progress bar is drawn on stderr
	// during the archive download.
	Progress bool `json:"progress" yaml:"progress"`
}

// ConversionConfig holds settings for the pandoc conversion stage.
type ConversionConfig struct {
	// PandocPath is the pandoc binary to invoke (default "pandoc", resolved
	// via PATH).
	PandocPath string `json:"pandoc_path" yaml:"pandoc_path"`

	// Format is the pandoc output format identifier (default "markdown").
	Format string `json:"format" yaml:"format"`
}

// HistoryConfig holds settings for the local fetch-history index.
type HistoryConfig struct {
	// CacheDir is the base directory for the history index and metadata
	// records (default ~/.cache/marxiv; contains index.db and meta/).
	CacheDir string `json:"cache_dir" yaml:"cache_dir"`

	// Disabled turns off history recording for the run.
	Disabled bool `json:"disabled" yaml:"disabled"`
}
