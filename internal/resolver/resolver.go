// Package resolver derives the display fields of a gallery item from a
// manifest and one of its canvases by walking ordered fallback chains.
package resolver

import (
	"strings"

	"golang.org/x/text/language"

	"github.com/lehigh-university-libraries/iiif-gallery/internal/iiif"
)

// Fields are the resolved display fields of one canvas. Every field holds a
// value or its sentinel, never "".
type Fields struct {
	Title       string `json:"title" yaml:"title"`
	Author      string `json:"author" yaml:"author"`
	Date        string `json:"date" yaml:"date"`
	Collection  string `json:"collection" yaml:"collection"`
	Attribution string `json:"attribution" yaml:"attribution"`
	Link        string `json:"link" yaml:"link"`
}

// Get returns the value of field f.
func (f Fields) Get(field Field) string {
	switch field {
	case FieldTitle:
		return f.Title
	case FieldAuthor:
		return f.Author
	case FieldDate:
		return f.Date
	case FieldCollection:
		return f.Collection
	case FieldAttribution:
		return f.Attribution
	case FieldLink:
		return f.Link
	default:
		return ""
	}
}

// Resolver evaluates fallback chains. It holds no per-manifest state and is
// safe for concurrent use.
type Resolver struct {
	vocabulary Vocabulary
	chains     Chains
	policy     iiif.Policy
}

// Option configures a Resolver.
type Option func(*Resolver)

// WithVocabulary replaces the default label vocabulary.
func WithVocabulary(v Vocabulary) Option {
	return func(r *Resolver) {
		r.vocabulary = v
	}
}

// WithLanguages sets the preferred languages for language-map values.
func WithLanguages(tags ...language.Tag) Option {
	return func(r *Resolver) {
		r.policy.Languages = tags
	}
}

// New creates a resolver using the default vocabulary unless overridden.
func New(opts ...Option) *Resolver {
	r := &Resolver{vocabulary: DefaultVocabulary()}
	for _, opt := range opts {
		opt(r)
	}
	r.chains = BuildChains(r.vocabulary)
	return r
}

// Vocabulary returns the vocabulary the chains were built from.
func (r *Resolver) Vocabulary() Vocabulary {
	return r.vocabulary
}

// Chains returns the fallback chains.
func (r *Resolver) Chains() Chains {
	return r.chains
}

// Resolve computes every display field for canvas c of manifest m. c may be
// nil, in which case canvas-scoped steps find nothing.
func (r *Resolver) Resolve(m *iiif.Manifest, c *iiif.Canvas) Fields {
	return Fields{
		Title:       r.ResolveField(FieldTitle, m, c),
		Author:      r.ResolveField(FieldAuthor, m, c),
		Date:        r.ResolveField(FieldDate, m, c),
		Collection:  r.ResolveField(FieldCollection, m, c),
		Attribution: r.ResolveField(FieldAttribution, m, c),
		Link:        r.ResolveField(FieldLink, m, c),
	}
}

// ResolveField evaluates one field's chain. Links are normalized.
func (r *Resolver) ResolveField(f Field, m *iiif.Manifest, c *iiif.Canvas) string {
	chain, ok := r.chains[f]
	if !ok {
		return Sentinel(f)
	}

	value := r.evaluate(chain, m, c)
	if f == FieldLink {
		return NormalizeLink(value)
	}
	return value
}

// evaluate returns the first step result, or the sentinel. Later steps are
// never run once one has produced a value.
func (r *Resolver) evaluate(chain Chain, m *iiif.Manifest, c *iiif.Canvas) string {
	if m == nil {
		return chain.Sentinel()
	}

	for _, step := range chain.Steps {
		if !step.AppliesTo(m.Version()) {
			continue
		}
		if value, ok := r.run(step, m, c); ok {
			return value
		}
	}
	return chain.Sentinel()
}

func (r *Resolver) run(step Step, m *iiif.Manifest, c *iiif.Canvas) (string, bool) {
	if step.Source == SourceStructural {
		return r.structural(step.Label, m, c)
	}

	if step.Scope == ScopeCanvas {
		if c == nil {
			return "", false
		}
		return LookupWith(c.Metadata, step.Label, step.Last, r.policy)
	}
	return LookupWith(m.Metadata, step.Label, step.Last, r.policy)
}

func (r *Resolver) structural(name string, m *iiif.Manifest, c *iiif.Canvas) (string, bool) {
	switch name {
	case StructLabel:
		return m.Label.Normalize(r.policy)
	case StructRequiredStatement:
		if m.RequiredStatement == nil {
			return "", false
		}
		return m.RequiredStatement.Value.Normalize(r.policy)
	case StructProvider:
		return m.ProviderLabel.Normalize(r.policy)
	case StructAttribution:
		return m.Attribution.Normalize(r.policy)
	case StructHomepage:
		return nonBlank(m.Homepage)
	case StructRelated:
		return nonBlank(m.Related)
	case StructCanvasID:
		if c == nil {
			return "", false
		}
		return nonBlank(c.ID)
	default:
		return "", false
	}
}

func nonBlank(s string) (string, bool) {
	s = strings.TrimSpace(s)
	return s, s != ""
}
