package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/lehigh-university-libraries/iiif-gallery/internal/iiif"
	"github.com/lehigh-university-libraries/iiif-gallery/internal/manifests"
	"github.com/lehigh-university-libraries/iiif-gallery/internal/resolver"
)

type resolvedCanvas struct {
	Index    int    `json:"index" yaml:"index"`
	CanvasID string `json:"canvas_id" yaml:"canvas_id"`

	resolver.Fields `yaml:",inline"`
}

type resolvedManifest struct {
	Source     string           `json:"source" yaml:"source"`
	ManifestID string           `json:"manifest_id" yaml:"manifest_id"`
	Version    int              `json:"version" yaml:"version"`
	Manifest   resolver.Fields  `json:"manifest" yaml:"manifest"`
	Canvases   []resolvedCanvas `json:"canvases" yaml:"canvases"`
}

func newResolveCmd() *cobra.Command {
	var format string
	var vocabularyPath string
	var languages string

	cmd := &cobra.Command{
		Use:   "resolve <url|file>...",
		Short: "Print the resolved display fields of manifests",
		Long: `Loads each manifest from a URL or local file and prints the display fields
the gallery would show: once for the manifest alone, then for every canvas.`,
		Example: `  # Resolve a remote manifest
  iiif-gallery resolve https://iiif.lib.harvard.edu/manifests/ids:7115721

  # Resolve local files as YAML, preferring German labels
  iiif-gallery resolve --format yaml --lang de a.json b.json`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			res, err := newResolver(vocabularyPath, languages)
			if err != nil {
				return err
			}

			client := manifests.NewClient()
			var out []resolvedManifest
			for _, source := range args {
				m, err := client.Load(cmd.Context(), source)
				if err != nil {
					slog.Error("Unable to load manifest", "source", source, "err", err)
					continue
				}
				out = append(out, resolveManifest(res, source, m))
			}
			if len(out) == 0 {
				return fmt.Errorf("no manifests could be loaded")
			}

			return writeResolved(cmd.OutOrStdout(), out, format)
		},
	}

	cmd.Flags().StringVarP(&format, "format", "f", "text", "Output format (text, json, or yaml)")
	cmd.Flags().StringVar(&vocabularyPath, "vocabulary", "", "Vocabulary YAML (defaults to $GALLERY_VOCABULARY or the built-in vocabulary)")
	cmd.Flags().StringVar(&languages, "lang", "", "Preferred label languages (defaults to $GALLERY_LANGUAGES)")

	return cmd
}

func resolveManifest(res *resolver.Resolver, source string, m *iiif.Manifest) resolvedManifest {
	out := resolvedManifest{
		Source:     source,
		ManifestID: m.ID,
		Version:    int(m.Version()),
		Manifest:   res.Resolve(m, nil),
	}
	for i := range m.Canvases {
		canvas := &m.Canvases[i]
		out.Canvases = append(out.Canvases, resolvedCanvas{
			Index:    i,
			CanvasID: canvas.ID,
			Fields:   res.Resolve(m, canvas),
		})
	}
	return out
}

func writeResolved(w io.Writer, resolved []resolvedManifest, format string) error {
	switch format {
	case "json":
		encoder := json.NewEncoder(w)
		encoder.SetIndent("", "  ")
		encoder.SetEscapeHTML(false)
		return encoder.Encode(resolved)
	case "yaml":
		encoder := yaml.NewEncoder(w)
		encoder.SetIndent(2)
		if err := encoder.Encode(resolved); err != nil {
			return err
		}
		return encoder.Close()
	case "text":
		return writeResolvedText(w, resolved)
	default:
		return fmt.Errorf("unsupported format: %s", format)
	}
}

func writeResolvedText(w io.Writer, resolved []resolvedManifest) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	for _, m := range resolved {
		fmt.Fprintf(tw, "%s (v%d)\n", m.Source, m.Version)
		writeFields(tw, "  ", m.Manifest)
		for _, c := range m.Canvases {
			fmt.Fprintf(tw, "  [%d] %s\n", c.Index+1, c.CanvasID)
			writeFields(tw, "    ", c.Fields)
		}
		fmt.Fprintln(tw)
	}
	return tw.Flush()
}

func writeFields(w io.Writer, indent string, f resolver.Fields) {
	for _, field := range resolver.AllFields {
		fmt.Fprintf(w, "%s%s:\t%s\n", indent, field, f.Get(field))
	}
}
