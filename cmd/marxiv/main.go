// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package main is the entry point for the marxiv CLI: fetch an arXiv
// article's LaTeX source and convert it to Markdown (or another pandoc
// format).
package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// version is set at build time via ldflags.
var version = "dev"

// rootCmd runs the fetch-and-convert pipeline for a single identifier.
// Inspection commands (history, version) hang off it as subcommands.
var rootCmd = &cobra.Command{
	Use:   "marxiv [arxiv-id]",
	Short: "Fetch arXiv article source and convert it to Markdown",
	Long: `marxiv downloads the source archive (e-print) for an arXiv article,
picks the main LaTeX file out of the extracted bundle, and converts it with
pandoc. Without -o the converted document streams to stdout; status messages
go to stderr.

Examples:
  marxiv 2301.07041                  Convert to Markdown on stdout
  marxiv 2301.07041 -o paper.md      Write Markdown to paper.md
  marxiv 2301.07041 -f latex         Convert to another pandoc format`,
	Args:          cobra.ExactArgs(1),
	RunE:          runFetch,
	SilenceUsage:  true,
	SilenceErrors: false,
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().String("config", "", "config file (default: ./marxiv.yaml or ~/.config/marxiv/config.yaml)")
}

func initConfig() {
	cfgFile, _ := rootCmd.PersistentFlags().GetString("config")
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.SetConfigName("marxiv")
		viper.SetConfigType("yaml")
		viper.AddConfigPath(".")

		home, err := os.UserHomeDir()
		if err == nil {
			viper.AddConfigPath(filepath.Join(home, ".config", "marxiv"))
		}
	}

	viper.SetEnvPrefix("MARXIV")
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err == nil {
		fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
	}
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
