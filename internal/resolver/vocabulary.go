package resolver

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/lehigh-university-libraries/iiif-gallery/internal/iiif"
)

// Term is one label of a field's vocabulary. In YAML a term is either a bare
// label or a mapping with label, last and versions keys.
type Term struct {
	Label    string         `yaml:"label"`
	Last     bool           `yaml:"last,omitempty"`
	Versions []iiif.Version `yaml:"versions,omitempty,flow"`
}

// T returns a plain term.
func T(label string) Term {
	return Term{Label: label}
}

// UnmarshalYAML accepts the scalar and mapping forms.
func (t *Term) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind == yaml.ScalarNode {
		*t = Term{Label: strings.TrimSpace(node.Value)}
		return nil
	}

	type plain Term
	var p plain
	if err := node.Decode(&p); err != nil {
		return err
	}
	p.Label = strings.TrimSpace(p.Label)
	if p.Label == "" {
		return fmt.Errorf("line %d: vocabulary term without a label", node.Line)
	}
	*t = Term(p)
	return nil
}

// MarshalYAML writes a bare label when no options are set.
func (t Term) MarshalYAML() (any, error) {
	if !t.Last && len(t.Versions) == 0 {
		return t.Label, nil
	}
	type plain Term
	return plain(t), nil
}

// Vocabulary holds the metadata labels each field's chain looks up, in
// priority order.
type Vocabulary struct {
	Title       []Term `yaml:"title"`
	Date        []Term `yaml:"date"`
	Author      []Term `yaml:"author"`
	Collection  []Term `yaml:"collection"`
	Attribution []Term `yaml:"attribution"`
	Link        []Term `yaml:"link"`
}

// DefaultVocabulary returns the shipped label vocabulary.
func DefaultVocabulary() Vocabulary {
	return Vocabulary{
		Title: []Term{T("Title")},
		Date: []Term{
			T("Date"), T("Issued"), T("Created"), T("Date made"), T("Published"),
			T("Created Published"), T("Associated date"), T("Publication Date"),
		},
		Author: []Term{
			T("Creator"), T("Contributors"), T("Author"), T("Contributor"), T("Publisher"), T("Artist/Maker"),
		},
		Collection: []Term{
			T("Location"), T("Collection"), T("Relation"), T("Data Source"),
			// also an author label; only trusted as a collection on v3 manifests
			{Label: "Contributor", Versions: []iiif.Version{iiif.V3}},
		},
		Attribution: []Term{T("Repository"), T("Digital Publisher")},
		Link: []Term{
			{Label: "Identifier", Last: true},
			T("Item Url"),
			T("identifier-access"),
		},
	}
}

// Terms returns the vocabulary of one field.
func (v Vocabulary) Terms(f Field) []Term {
	switch f {
	case FieldTitle:
		return v.Title
	case FieldDate:
		return v.Date
	case FieldAuthor:
		return v.Author
	case FieldCollection:
		return v.Collection
	case FieldAttribution:
		return v.Attribution
	case FieldLink:
		return v.Link
	default:
		return nil
	}
}

func (v *Vocabulary) setTerms(f Field, terms []Term) {
	switch f {
	case FieldTitle:
		v.Title = terms
	case FieldDate:
		v.Date = terms
	case FieldAuthor:
		v.Author = terms
	case FieldCollection:
		v.Collection = terms
	case FieldAttribution:
		v.Attribution = terms
	case FieldLink:
		v.Link = terms
	}
}

// Contains reports whether label appears, case-insensitively, in any field.
func (v Vocabulary) Contains(label string) bool {
	for _, f := range AllFields {
		if v.ContainsIn(f, label) {
			return true
		}
	}
	return false
}

// ContainsIn reports whether label appears, case-insensitively, in field f.
func (v Vocabulary) ContainsIn(f Field, label string) bool {
	label = strings.TrimSpace(label)
	for _, term := range v.Terms(f) {
		if strings.EqualFold(term.Label, label) {
			return true
		}
	}
	return false
}

// WithAdded returns a copy of the vocabulary with labels appended to field f.
// Labels already present in f are skipped.
func (v Vocabulary) WithAdded(f Field, labels ...string) Vocabulary {
	out := v.clone()
	terms := out.Terms(f)
	for _, label := range labels {
		label = strings.TrimSpace(label)
		if label == "" || out.ContainsIn(f, label) {
			continue
		}
		terms = append(terms, T(label))
		out.setTerms(f, terms)
	}
	return out
}

func (v Vocabulary) clone() Vocabulary {
	var out Vocabulary
	for _, f := range AllFields {
		out.setTerms(f, append([]Term(nil), v.Terms(f)...))
	}
	return out
}

// DecodeVocabulary reads YAML over the defaults: a field present in the
// document replaces that field's default terms, absent fields keep them.
func DecodeVocabulary(r io.Reader) (Vocabulary, error) {
	v := DefaultVocabulary()
	decoder := yaml.NewDecoder(r)
	decoder.KnownFields(true)
	if err := decoder.Decode(&v); err != nil && err != io.EOF {
		return Vocabulary{}, fmt.Errorf("failed to parse vocabulary: %w", err)
	}
	return v, nil
}

// LoadVocabulary reads a vocabulary file.
func LoadVocabulary(path string) (Vocabulary, error) {
	f, err := os.Open(path)
	if err != nil {
		return Vocabulary{}, fmt.Errorf("failed to open vocabulary: %w", err)
	}
	defer f.Close()

	return DecodeVocabulary(f)
}

// Encode writes the vocabulary as YAML.
func (v Vocabulary) Encode(w io.Writer) error {
	encoder := yaml.NewEncoder(w)
	encoder.SetIndent(2)
	if err := encoder.Encode(v); err != nil {
		return fmt.Errorf("failed to marshal YAML: %w", err)
	}
	return encoder.Close()
}

// SaveVocabulary writes the vocabulary to path, creating parent directories.
func SaveVocabulary(path string, v Vocabulary) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create vocabulary directory: %w", err)
		}
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create vocabulary file: %w", err)
	}
	defer f.Close()

	return v.Encode(f)
}
