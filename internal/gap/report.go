package gap

import (
	"encoding/json"
	"fmt"
	"io"
	"slices"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/lehigh-university-libraries/iiif-gallery/internal/resolver"
)

const ruleWidth = 80

// LabelUse is a missing label and the institutions whose manifests use it.
type LabelUse struct {
	Label        string   `json:"label" yaml:"label"`
	Institutions []string `json:"institutions" yaml:"institutions"`
}

// CategoryLabels groups the missing labels of one category.
type CategoryLabels struct {
	Category Category   `json:"category" yaml:"category"`
	Labels   []LabelUse `json:"labels" yaml:"labels"`
}

// Gap is a categorized label no fallback chain knows.
type Gap struct {
	Label    string   `json:"label" yaml:"label"`
	Category Category `json:"category" yaml:"category"`
}

// ManifestGaps lists the gaps found in one manifest.
type ManifestGaps struct {
	URL         string `json:"url" yaml:"url"`
	Institution string `json:"institution" yaml:"institution"`
	Gaps        []Gap  `json:"gaps" yaml:"gaps"`
}

// Failure is a manifest that could not be analysed.
type Failure struct {
	URL   string `json:"url" yaml:"url"`
	Error string `json:"error" yaml:"error"`
}

// Report summarizes a crawl.
type Report struct {
	Total     int              `json:"total" yaml:"total"`
	Analysed  int              `json:"analysed" yaml:"analysed"`
	Failed    int              `json:"failed" yaml:"failed"`
	WithGaps  int              `json:"with_gaps" yaml:"with_gaps"`
	Coverage  float64          `json:"coverage" yaml:"coverage"`
	Missing   []CategoryLabels `json:"missing" yaml:"missing"`
	Manifests []ManifestGaps   `json:"manifests" yaml:"manifests"`
	Failures  []Failure        `json:"failures" yaml:"failures"`
	Triage    []Triage         `json:"triage,omitempty" yaml:"triage,omitempty"`

	vocabulary resolver.Vocabulary
}

// BuildReport aggregates a crawl log. Categories and coverage are recomputed
// from rules and vocabulary, so an old log can be re-reported against a newer
// vocabulary.
func BuildReport(observations []Observation, rules Rules, vocabulary resolver.Vocabulary) *Report {
	r := &Report{vocabulary: vocabulary}

	// one visit per entry of the crawled list
	type visit struct {
		position int
		url      string
	}
	order := []visit{}
	byVisit := make(map[visit][]Observation)
	for _, o := range observations {
		v := visit{position: o.Position, url: o.ManifestURL}
		if _, ok := byVisit[v]; !ok {
			order = append(order, v)
		}
		byVisit[v] = append(byVisit[v], o)
	}

	missing := make(map[Category]map[string][]string)
	for _, v := range order {
		url := v.url
		rows := byVisit[v]
		if failure, ok := failureOf(rows); ok {
			r.Failures = append(r.Failures, failure)
			continue
		}
		r.Analysed++

		institution := rows[0].Institution
		var gaps []Gap
		for _, o := range rows {
			if o.Label == "" || vocabulary.Contains(o.Label) {
				continue
			}
			category := rules.Classify(o.Label)
			if missing[category] == nil {
				missing[category] = make(map[string][]string)
			}
			if !slices.Contains(missing[category][o.Label], institution) {
				missing[category][o.Label] = append(missing[category][o.Label], institution)
			}
			if category != CategoryUncategorized {
				gaps = append(gaps, Gap{Label: o.Label, Category: category})
			}
		}
		if len(gaps) > 0 {
			r.Manifests = append(r.Manifests, ManifestGaps{URL: url, Institution: institution, Gaps: gaps})
		}
	}

	r.Total = len(order)
	r.Failed = len(r.Failures)
	r.WithGaps = len(r.Manifests)
	r.Coverage = 100
	if r.Total > 0 {
		r.Coverage = (1 - float64(r.WithGaps)/float64(r.Total)) * 100
	}

	for _, category := range append(slices.Clone(Categories), CategoryUncategorized) {
		uses := missing[category]
		if len(uses) == 0 {
			continue
		}
		group := CategoryLabels{Category: category}
		for label, institutions := range uses {
			group.Labels = append(group.Labels, LabelUse{Label: label, Institutions: institutions})
		}
		slices.SortFunc(group.Labels, func(a, b LabelUse) int { return strings.Compare(a.Label, b.Label) })
		r.Missing = append(r.Missing, group)
	}
	return r
}

func failureOf(rows []Observation) (Failure, bool) {
	for _, o := range rows {
		if o.Failed() {
			return Failure{URL: o.ManifestURL, Error: o.Error}, true
		}
	}
	return Failure{}, false
}

// Labels returns the missing labels of a category.
func (r *Report) Labels(category Category) []string {
	for _, group := range r.Missing {
		if group.Category != category {
			continue
		}
		labels := make([]string, 0, len(group.Labels))
		for _, use := range group.Labels {
			labels = append(labels, use.Label)
		}
		return labels
	}
	return nil
}

// HasGaps reports whether any label, categorized or not, is missing.
func (r *Report) HasGaps() bool {
	return len(r.Missing) > 0
}

// added returns the labels the suggestion appends to a category: the
// missing labels the rules placed there, then those triage placed there.
func (r *Report) added(category Category) []string {
	labels := r.Labels(category)
	for _, t := range r.Triage {
		if t.Category == category && !slices.Contains(labels, t.Label) {
			labels = append(labels, t.Label)
		}
	}
	return labels
}

// Suggest returns the vocabulary with every missing categorized label
// appended to its field, including labels placed by triage.
func (r *Report) Suggest() resolver.Vocabulary {
	v := r.vocabulary
	for _, category := range Categories {
		field, _ := category.Field()
		v = v.WithAdded(field, r.added(category)...)
	}
	return v
}

// WriteText writes the human readable report.
func (r *Report) WriteText(w io.Writer) error {
	var b strings.Builder
	rule := strings.Repeat("=", ruleWidth)
	banner := func(title string) {
		fmt.Fprintf(&b, "\n%s\n%s\n%s\n\n", rule, title, rule)
	}

	fmt.Fprintf(&b, "%s\nGAP ANALYSIS REPORT: Missing Fallbacks\n%s\n\n", rule, rule)
	b.WriteString("SUMMARY:\n")
	fmt.Fprintf(&b, "  Total manifests analyzed: %d\n", r.Total)
	fmt.Fprintf(&b, "  Successfully analyzed: %d\n", r.Analysed)
	fmt.Fprintf(&b, "  Fetch failures: %d\n", r.Failed)
	fmt.Fprintf(&b, "  Manifests with gaps: %d\n", r.WithGaps)
	fmt.Fprintf(&b, "  Coverage: %.1f%%\n", r.Coverage)

	for _, group := range r.Missing {
		fmt.Fprintf(&b, "\n### MISSING %s LABELS ###\n\n", strings.ToUpper(string(group.Category)))
		fmt.Fprintf(&b, "Found %d new labels not in current fallbacks:\n\n", len(group.Labels))
		for _, use := range group.Labels {
			fmt.Fprintf(&b, "  %q\n", use.Label)
			fmt.Fprintf(&b, "    Used by: %s\n\n", strings.Join(use.Institutions, ", "))
		}
	}

	if len(r.Manifests) > 0 {
		banner("DETAILED GAP REPORT BY MANIFEST")
		for _, m := range r.Manifests {
			fmt.Fprintf(&b, "Institution: %s\n", m.Institution)
			fmt.Fprintf(&b, "URL: %s\n", m.URL)
			b.WriteString("Missing labels:\n")
			for _, gap := range m.Gaps {
				fmt.Fprintf(&b, "  - %q (category: %s)\n", gap.Label, gap.Category)
			}
			b.WriteString("\n")
		}
	}

	if len(r.Failures) > 0 {
		banner("FETCH FAILURES")
		for _, f := range r.Failures {
			fmt.Fprintf(&b, "  %s\n    %s\n", f.URL, f.Error)
		}
	}

	if len(r.Triage) > 0 {
		banner("LLM TRIAGE OF UNCATEGORIZED LABELS")
		for _, t := range r.Triage {
			fmt.Fprintf(&b, "  %q -> %s\n", t.Label, t.Category)
		}
	}

	if !r.HasGaps() {
		banner("NO GAPS FOUND - Your fallbacks cover all manifests!")
		_, err := io.WriteString(w, b.String())
		return err
	}

	banner("RECOMMENDED VOCABULARY UPDATES")
	if err := r.writeSuggestion(&b); err != nil {
		return err
	}

	_, err := io.WriteString(w, b.String())
	return err
}

// writeSuggestion writes a YAML vocabulary fragment holding only the fields
// that gained labels, with the new terms marked.
func (r *Report) writeSuggestion(w io.Writer) error {
	var doc yaml.Node
	if err := doc.Encode(r.Suggest()); err != nil {
		return fmt.Errorf("failed to build vocabulary suggestion: %w", err)
	}

	fragment := &yaml.Node{Kind: yaml.MappingNode}
	for i := 0; i+1 < len(doc.Content); i += 2 {
		key, terms := doc.Content[i], doc.Content[i+1]
		added := r.added(Category(key.Value))
		if len(added) == 0 {
			continue
		}
		for _, term := range terms.Content {
			if slices.Contains(added, termLabel(term)) {
				term.LineComment = "new"
			}
		}
		fragment.Content = append(fragment.Content, key, terms)
	}

	if len(fragment.Content) > 0 {
		encoder := yaml.NewEncoder(w)
		encoder.SetIndent(2)
		if err := encoder.Encode(fragment); err != nil {
			return fmt.Errorf("failed to write vocabulary suggestion: %w", err)
		}
		if err := encoder.Close(); err != nil {
			return err
		}
	}

	var review []string
	for _, label := range r.Labels(CategoryUncategorized) {
		if !slices.ContainsFunc(r.Triage, func(t Triage) bool { return t.Label == label }) {
			review = append(review, label)
		}
	}
	if len(review) > 0 {
		fmt.Fprintln(w, "# Uncategorized labels (review manually):")
		for _, label := range review {
			fmt.Fprintf(w, "#   - %q\n", label)
		}
	}
	return nil
}

func termLabel(n *yaml.Node) string {
	if n.Kind == yaml.ScalarNode {
		return n.Value
	}
	for i := 0; i+1 < len(n.Content); i += 2 {
		if n.Content[i].Value == "label" {
			return n.Content[i+1].Value
		}
	}
	return ""
}

// WriteYAML writes the structured report as YAML.
func (r *Report) WriteYAML(w io.Writer) error {
	encoder := yaml.NewEncoder(w)
	encoder.SetIndent(2)
	if err := encoder.Encode(r); err != nil {
		return fmt.Errorf("failed to encode report: %w", err)
	}
	return encoder.Close()
}

// WriteJSON writes the structured report as indented JSON.
func (r *Report) WriteJSON(w io.Writer) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	encoder.SetEscapeHTML(false)
	return encoder.Encode(r)
}
