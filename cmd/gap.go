package cmd

import (
	"io"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/lehigh-university-libraries/iiif-gallery/internal/gap"
	"github.com/lehigh-university-libraries/iiif-gallery/internal/llm"
	"github.com/lehigh-university-libraries/iiif-gallery/internal/manifests"
	"github.com/lehigh-university-libraries/iiif-gallery/internal/resolver"
)

type gapOptions struct {
	urlsPath        string
	vocabularyPath  string
	format          string
	observations    string
	from            string
	writeVocabulary string
	triage          string
	model           string
}

func newGapCmd() *cobra.Command {
	var opts gapOptions

	cmd := &cobra.Command{
		Use:   "gap",
		Short: "Find metadata labels the fallback chains miss",
		Long: `Crawls a list of published IIIF manifests one at a time, extracts every
metadata label from the manifest and its canvases, and reports the labels that
look like a date, author, collection or attribution but are not in any
fallback chain yet.

Fetch failures are reported and never stop the crawl. The command always
exits successfully; problems are logged.`,
		Example: `  # Crawl the built-in survey and print the report
  iiif-gallery gap

  # Crawl your own list, keep the raw observations, and emit JSON
  iiif-gallery gap --urls manifests.txt --observations crawl.parquet --format json

  # Re-report an earlier crawl against an updated vocabulary
  iiif-gallery gap --from crawl.parquet --vocabulary vocabulary.yaml

  # Ask a model to sort the uncategorized labels
  iiif-gallery gap --triage ollama --model llama3.1`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			runGap(cmd, opts)
			return nil
		},
	}

	cmd.Flags().StringVar(&opts.urlsPath, "urls", "", "File with one manifest URL per line (defaults to the built-in survey)")
	cmd.Flags().StringVar(&opts.vocabularyPath, "vocabulary", "", "Vocabulary YAML to check against (defaults to $GALLERY_VOCABULARY or the built-in vocabulary)")
	cmd.Flags().StringVarP(&opts.format, "format", "f", "text", "Report format (text, yaml, or json)")
	cmd.Flags().StringVar(&opts.observations, "observations", "", "Save the raw crawl log (.parquet or .jsonl)")
	cmd.Flags().StringVar(&opts.from, "from", "", "Report from a saved crawl log instead of crawling")
	cmd.Flags().StringVar(&opts.writeVocabulary, "write-vocabulary", "", "Write the vocabulary with the suggested labels added")
	cmd.Flags().StringVar(&opts.triage, "triage", "", "LLM provider to categorize leftover labels (gemini, ollama, or openai)")
	cmd.Flags().StringVar(&opts.model, "model", "", "Model name (defaults to provider's default)")

	return cmd
}

func runGap(cmd *cobra.Command, opts gapOptions) {
	ctx := cmd.Context()

	vocabulary, err := loadVocabulary(opts.vocabularyPath)
	if err != nil {
		slog.Error("Unable to load vocabulary, using the built-in vocabulary", "err", err)
		vocabulary = resolver.DefaultVocabulary()
	}
	rules := gap.DefaultRules()

	var observations []gap.Observation
	if opts.from != "" {
		observations, err = gap.LoadObservations(opts.from)
		if err != nil {
			slog.Error("Unable to load observations", "path", opts.from, "err", err)
			return
		}
	} else {
		urls := gap.DefaultManifestURLs()
		if opts.urlsPath != "" {
			urls, err = gap.LoadURLs(opts.urlsPath)
			if err != nil {
				slog.Error("Unable to load URL list", "path", opts.urlsPath, "err", err)
				return
			}
		}

		crawler := &gap.Crawler{Fetcher: manifests.NewClient(), Rules: rules, Vocabulary: vocabulary}
		observations, err = crawler.Crawl(ctx, urls)
		if err != nil {
			slog.Warn("Crawl interrupted, reporting partial results", "err", err)
		}

		if opts.observations != "" {
			if err := gap.SaveObservations(opts.observations, observations); err != nil {
				slog.Error("Unable to save observations", "path", opts.observations, "err", err)
			}
		}
	}

	report := gap.BuildReport(observations, rules, vocabulary)

	if opts.triage != "" {
		triageReport(cmd, opts, report)
	}

	if err := writeReport(cmd.OutOrStdout(), report, opts.format); err != nil {
		slog.Error("Unable to write report", "err", err)
	}

	if opts.writeVocabulary != "" {
		if err := resolver.SaveVocabulary(opts.writeVocabulary, report.Suggest()); err != nil {
			slog.Error("Unable to write vocabulary", "path", opts.writeVocabulary, "err", err)
			return
		}
		slog.Info("Wrote suggested vocabulary", "path", opts.writeVocabulary)
	}
}

func triageReport(cmd *cobra.Command, opts gapOptions, report *gap.Report) {
	provider, err := llm.New(opts.triage)
	if err != nil {
		slog.Error("Unable to triage labels", "err", err)
		return
	}

	model := opts.model
	if model == "" {
		model = llm.DefaultModel(opts.triage)
	}

	triaged, err := gap.TriageLabels(cmd.Context(), provider, model, report)
	if err != nil {
		slog.Error("Unable to triage labels", "provider", opts.triage, "model", model, "err", err)
		return
	}
	report.Triage = triaged
}

func writeReport(w io.Writer, report *gap.Report, format string) error {
	switch format {
	case "yaml":
		return report.WriteYAML(w)
	case "json":
		return report.WriteJSON(w)
	case "text":
		return report.WriteText(w)
	default:
		slog.Warn("Unsupported report format, writing text", "format", format)
		return report.WriteText(w)
	}
}
