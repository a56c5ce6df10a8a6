package gap

import (
	"context"
	"log/slog"

	"github.com/lehigh-university-libraries/iiif-gallery/internal/iiif"
	"github.com/lehigh-university-libraries/iiif-gallery/internal/resolver"
)

// Fetcher retrieves and parses a manifest.
type Fetcher interface {
	Fetch(ctx context.Context, url string) (*iiif.Manifest, error)
}

// Observation is one row of the crawl log: a label seen in a manifest, a
// manifest without labels (empty Label), or a failed fetch (Error set).
// Position is the index of the URL in the crawled list, so a URL listed twice
// is counted twice.
type Observation struct {
	Position    int      `json:"position" parquet:"position"`
	ManifestURL string   `json:"manifest_url" parquet:"manifest_url"`
	Institution string   `json:"institution,omitempty" parquet:"institution"`
	Label       string   `json:"label,omitempty" parquet:"label"`
	Category    Category `json:"category,omitempty" parquet:"category"`
	Covered     bool     `json:"covered,omitempty" parquet:"covered"`
	Error       string   `json:"error,omitempty" parquet:"error"`
}

// Failed reports whether the observation records a failed fetch.
func (o Observation) Failed() bool {
	return o.Error != ""
}

// Crawler fetches manifests one at a time and records every metadata label
// it finds against the rule table and vocabulary.
type Crawler struct {
	Fetcher    Fetcher
	Rules      Rules
	Vocabulary resolver.Vocabulary
}

// Crawl visits urls in order. A failed fetch is recorded and the crawl moves
// on; only cancellation of ctx stops it early.
func (c *Crawler) Crawl(ctx context.Context, urls []string) ([]Observation, error) {
	slog.Info("Analyzing manifests for missing fallbacks", "count", len(urls))

	var observations []Observation
	for i, url := range urls {
		if err := ctx.Err(); err != nil {
			return observations, err
		}
		slog.Info("Analyzing manifest", "n", i+1, "total", len(urls), "url", url)

		m, err := c.Fetcher.Fetch(ctx, url)
		if err != nil {
			slog.Error("Unable to analyze manifest", "url", url, "err", err)
			observations = append(observations, Observation{Position: i, ManifestURL: url, Error: err.Error()})
			continue
		}

		observations = append(observations, c.observe(m, i, url)...)
	}
	return observations, nil
}

func (c *Crawler) observe(m *iiif.Manifest, position int, url string) []Observation {
	institution := Institution(m, url)
	labels := ExtractLabels(m)
	if len(labels) == 0 {
		return []Observation{{Position: position, ManifestURL: url, Institution: institution}}
	}

	out := make([]Observation, 0, len(labels))
	for _, label := range labels {
		out = append(out, Observation{
			Position:    position,
			ManifestURL: url,
			Institution: institution,
			Label:       label,
			Category:    c.Rules.Classify(label),
			Covered:     c.Vocabulary.Contains(label),
		})
	}
	slog.Debug("Extracted labels", "url", url, "institution", institution, "labels", len(labels))
	return out
}
