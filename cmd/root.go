package cmd

import (
	"log/slog"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

func NewRootCmd() *cobra.Command {
	var verbose bool

	cmd := &cobra.Command{
		Use:   "iiif-gallery",
		Short: "Collect IIIF manifests into a gallery and check metadata fallbacks",
		Long: `iiif-gallery reads IIIF Presentation v2 and v3 manifests from any institution
and resolves a uniform set of display fields for every canvas: title, author,
date, collection, attribution and link.

It serves a gallery API for collecting, arranging and exporting canvases as an
IIIF Collection, and crawls published manifests to find metadata labels the
fallback chains do not know about yet.`,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			// Load .env file if present (ignore errors)
			_ = godotenv.Load()

			level := slog.LevelInfo
			if verbose {
				level = slog.LevelDebug
			}
			slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))
		},
	}

	cmd.PersistentFlags().BoolVar(&verbose, "verbose", false, "Verbose logging")

	cmd.AddCommand(newGapCmd())
	cmd.AddCommand(newServeCmd())
	cmd.AddCommand(newResolveCmd())
	cmd.AddCommand(newCollectCmd())

	return cmd
}
