// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import "time"

// Paper holds metadata and conversion details for a fetched article.
type Paper struct {
	// ID is the normalized arXiv identifier (e.g. "2301.07041").
	ID string `json:"id" yaml:"id"`

	// SourceURL is the e-print URL the archive was downloaded from.
	SourceURL string `json:"source_url" yaml:"source_url"`

	// MainFile is the LaTeX source file selected from the archive,
	// relative to the extraction directory.
	MainFile string `json:"main_file" yaml:"main_file"`

	// Title is the article title, when the arXiv API provided it.
	Title string `json:"title,omitempty" yaml:"title,omitempty"`

	// Authors lists the article authors in source order.
	Authors []string `json:"authors,omitempty" yaml:"authors,omitempty"`

	// Date is the publication date of the article.
	Date time.Time `json:"date,omitempty" yaml:"date,omitempty"`

	// Abstract is the article abstract.
	Abstract string `json:"abstract,omitempty" yaml:"abstract,omitempty"`

	// Format is the pandoc output format the article was converted to.
	Format string `json:"format" yaml:"format"`

	// OutputFile is the path the converted text was written to, or empty
	// when it was streamed to stdout.
	OutputFile string `json:"output_file,omitempty" yaml:"output_file,omitempty"`

	// FetchedAt records when the article was fetched and converted.
	FetchedAt time.Time `json:"fetched_at" yaml:"fetched_at"`
}
