// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pdiddy/marxiv/internal/history"
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "List previously fetched articles",
	Long: `History lists articles recorded in the local fetch index
(~/.cache/marxiv by default), newest first.`,
	RunE: runHistory,
}

func init() {
	historyCmd.Flags().IntP("limit", "n", 20, "maximum number of entries to list")

	rootCmd.AddCommand(historyCmd)
}

func runHistory(cmd *cobra.Command, args []string) error {
	limit, _ := cmd.Flags().GetInt("limit")

	cacheDir := viper.GetString("history.cache_dir")
	if cacheDir == "" {
		var err error
		cacheDir, err = history.DefaultCacheDir()
		if err != nil {
			return err
		}
	}

	store, err := history.Open(cacheDir)
	if err != nil {
		return err
	}
	defer store.Close()

	papers, err := store.List(limit)
	if err != nil {
		return err
	}
	if len(papers) == 0 {
		fmt.Fprintln(os.Stderr, "No fetches recorded.")
		return nil
	}

	tw := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tFETCHED\tFORMAT\tTITLE")
	for _, p := range papers {
		title := p.Title
		if title == "" {
			title = "(no metadata)"
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n",
			p.ID, p.FetchedAt.Format("2006-01-02 15:04"), p.Format, truncate(title, 60))
	}
	return tw.Flush()
}

func truncate(s string, max int) string {
	s = strings.Join(strings.Fields(s), " ")
	if len(s) <= max {
		return s
	}
	return s[:max-3] + "..."
}
