package cmd

import (
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/lehigh-university-libraries/iiif-gallery/internal/gallery"
	"github.com/lehigh-university-libraries/iiif-gallery/internal/manifests"
)

func newCollectCmd() *cobra.Command {
	var name string
	var output string
	var pages []int
	var vocabularyPath string

	cmd := &cobra.Command{
		Use:   "collect <url|file>...",
		Short: "Export manifests as a single IIIF Collection",
		Long: `Loads manifests from URLs or local files into a gallery and writes the
gallery as an IIIF Presentation v3 Collection, the same document the web
interface exports.

With --pages only the listed canvases (1-based) of a single manifest are kept.`,
		Example: `  # Bundle two manifests
  iiif-gallery collect --name "Boston maps" --output boston.json https://a.example/m1 https://b.example/m2

  # Keep plates 2 and 4 of an atlas
  iiif-gallery collect --pages 2,4 atlas.json`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(pages) > 0 && len(args) > 1 {
				return fmt.Errorf("--pages can only be used with a single manifest")
			}

			res, err := newResolver(vocabularyPath, "")
			if err != nil {
				return err
			}

			indices := make([]int, 0, len(pages))
			for _, p := range pages {
				indices = append(indices, p-1)
			}

			// sequential, so the collection follows the argument order
			loader := sourceLoader{client: manifests.NewClient()}
			session := gallery.NewSession(uuid.NewString(), res)
			var items []gallery.Item
			failed := 0
			for _, source := range args {
				m, err := loader.Fetch(cmd.Context(), source)
				if err == nil {
					var added []gallery.Item
					added, err = session.AddPages(m, indices)
					items = append(items, added...)
				}
				if err != nil {
					slog.Error("Failed to collect manifest", "source", source, "err", err)
					failed++
				}
			}
			if len(items) == 0 {
				return fmt.Errorf("no canvases collected (%d of %d sources failed)", failed, len(args))
			}
			slog.Info("Collected canvases", "items", len(items), "manifests", len(session.Manifests()), "failed", failed)

			var w io.Writer = cmd.OutOrStdout()
			if output != "" && output != "-" {
				file, err := os.Create(output)
				if err != nil {
					return fmt.Errorf("failed to create output file: %w", err)
				}
				defer file.Close()
				w = file
			}

			if err := session.Export(name).Encode(w); err != nil {
				return fmt.Errorf("failed to write collection: %w", err)
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&name, "name", "n", "", "Collection name")
	cmd.Flags().StringVarP(&output, "output", "o", "-", "Output file (- for stdout)")
	cmd.Flags().IntSliceVar(&pages, "pages", nil, "Canvas numbers to keep, 1-based (single manifest only)")
	cmd.Flags().StringVar(&vocabularyPath, "vocabulary", "", "Vocabulary YAML (defaults to $GALLERY_VOCABULARY or the built-in vocabulary)")

	return cmd
}
