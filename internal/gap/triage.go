package gap

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"slices"
	"strings"

	"github.com/lehigh-university-libraries/iiif-gallery/internal/llm"
)

// Triage is a model's guess at the category of an uncategorized label.
type Triage struct {
	Label    string   `json:"label" yaml:"label"`
	Category Category `json:"category" yaml:"category"`
}

const triagePrompt = `You are helping maintain fallback chains for a IIIF viewer.
Each chain reads one display field from manifest metadata: date, author, collection or attribution.
For every metadata label below, answer with the field it most likely holds, or "uncategorized".
Respond with a JSON object mapping each label to its field.

Labels:
%s`

// TriageLabels asks a language model to categorize the report's uncategorized
// labels. Answers outside the known categories are discarded.
func TriageLabels(ctx context.Context, p llm.Provider, model string, r *Report) ([]Triage, error) {
	labels := r.Labels(CategoryUncategorized)
	if len(labels) == 0 {
		return nil, nil
	}

	var list strings.Builder
	for _, label := range labels {
		fmt.Fprintf(&list, "- %s\n", label)
	}

	slog.Info("Triaging uncategorized labels", "count", len(labels), "model", model)
	out, err := p.Complete(ctx, llm.Request{
		Model:       model,
		Temperature: 0.1,
		Prompt:      fmt.Sprintf(triagePrompt, list.String()),
		JSON:        true,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to triage labels: %w", err)
	}

	answers := map[string]string{}
	if err := json.Unmarshal([]byte(llm.ExtractJSON(out)), &answers); err != nil {
		return nil, fmt.Errorf("failed to parse triage response: %w", err)
	}

	var triaged []Triage
	for _, label := range labels {
		category := Category(strings.ToLower(strings.TrimSpace(answers[label])))
		if !slices.Contains(Categories, category) {
			continue
		}
		triaged = append(triaged, Triage{Label: label, Category: category})
	}
	return triaged, nil
}
