package resolver

import (
	"slices"

	"github.com/lehigh-university-libraries/iiif-gallery/internal/iiif"
)

// Field is one of the display fields resolved for a gallery item.
type Field string

const (
	FieldTitle       Field = "title"
	FieldAuthor      Field = "author"
	FieldDate        Field = "date"
	FieldCollection  Field = "collection"
	FieldAttribution Field = "attribution"
	FieldLink        Field = "link"
)

// AllFields lists every display field in the order cards show them.
var AllFields = []Field{FieldTitle, FieldAuthor, FieldDate, FieldCollection, FieldAttribution, FieldLink}

// NoLink is the sentinel for an item without any usable link.
const NoLink = "No link available"

// Sentinel returns the marker used when a field's chain finds nothing.
func Sentinel(f Field) string {
	if f == FieldLink {
		return NoLink
	}
	return "No " + string(f) + " returned"
}

// Source says where a step reads its value from.
type Source int

const (
	// SourceMetadata looks up a label in a metadata block.
	SourceMetadata Source = iota
	// SourceStructural reads a named top-level property.
	SourceStructural
)

// Scope selects the metadata block a lookup step searches.
type Scope int

const (
	ScopeCanvas Scope = iota
	ScopeManifest
)

func (s Scope) String() string {
	if s == ScopeCanvas {
		return "canvas"
	}
	return "manifest"
}

// Structural property names readable by a step.
const (
	StructLabel             = "label"
	StructRequiredStatement = "requiredStatement"
	StructProvider          = "provider"
	StructAttribution       = "attribution"
	StructHomepage          = "homepage"
	StructRelated           = "related"
	StructCanvasID          = "canvas-id"
)

// Step is one attempt of a fallback chain.
type Step struct {
	Source Source
	Scope  Scope
	// Label is the metadata label for lookups, or the property name for
	// structural reads.
	Label string
	// Last picks the last matching metadata entry instead of the first.
	Last bool
	// Versions restricts the step to these schema versions; empty means all.
	Versions []iiif.Version
}

// AppliesTo reports whether the step runs for a manifest of version v.
func (s Step) AppliesTo(v iiif.Version) bool {
	return len(s.Versions) == 0 || slices.Contains(s.Versions, v)
}

// Chain is the ordered list of steps for one field.
type Chain struct {
	Field Field
	Steps []Step
}

// Sentinel returns the chain's missing marker.
func (c Chain) Sentinel() string {
	return Sentinel(c.Field)
}

// Chains maps every display field to its chain.
type Chains map[Field]Chain

func structural(name string, versions ...iiif.Version) Step {
	return Step{Source: SourceStructural, Label: name, Versions: versions}
}

func lookups(scope Scope, terms []Term) []Step {
	steps := make([]Step, 0, len(terms))
	for _, term := range terms {
		steps = append(steps, Step{
			Source:   SourceMetadata,
			Scope:    scope,
			Label:    term.Label,
			Last:     term.Last,
			Versions: term.Versions,
		})
	}
	return steps
}

// BuildChains expands a vocabulary into the fallback chains. Canvas metadata
// is always tried before manifest metadata for fields that read both.
func BuildChains(v Vocabulary) Chains {
	chain := func(f Field, groups ...[]Step) Chain {
		c := Chain{Field: f}
		for _, g := range groups {
			c.Steps = append(c.Steps, g...)
		}
		return c
	}

	return Chains{
		FieldTitle: chain(FieldTitle,
			[]Step{structural(StructLabel)},
			lookups(ScopeCanvas, v.Title),
			lookups(ScopeManifest, v.Title),
		),
		FieldDate: chain(FieldDate,
			lookups(ScopeCanvas, v.Date),
			lookups(ScopeManifest, v.Date),
		),
		FieldAuthor: chain(FieldAuthor,
			lookups(ScopeCanvas, v.Author),
			lookups(ScopeManifest, v.Author),
		),
		FieldCollection: chain(FieldCollection,
			lookups(ScopeManifest, v.Collection),
		),
		FieldAttribution: chain(FieldAttribution,
			[]Step{
				structural(StructRequiredStatement, iiif.V3),
				structural(StructProvider, iiif.V3),
				structural(StructAttribution, iiif.V2),
			},
			lookups(ScopeCanvas, v.Attribution),
			lookups(ScopeManifest, v.Attribution),
		),
		FieldLink: chain(FieldLink,
			[]Step{
				structural(StructHomepage, iiif.V3),
				structural(StructRelated, iiif.V2),
			},
			lookups(ScopeManifest, v.Link),
			[]Step{structural(StructCanvasID)},
		),
	}
}
