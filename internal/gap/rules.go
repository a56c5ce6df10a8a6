// Package gap crawls real manifests to find metadata labels the fallback
// chains do not know about yet.
package gap

import (
	"strings"

	"github.com/lehigh-university-libraries/iiif-gallery/internal/resolver"
)

// Category is the display field a label appears to describe.
type Category string

const (
	CategoryDate          Category = "date"
	CategoryAuthor        Category = "author"
	CategoryCollection    Category = "collection"
	CategoryAttribution   Category = "attribution"
	CategoryUncategorized Category = "uncategorized"
)

// Categories lists the categories backed by a fallback chain, in report order.
var Categories = []Category{CategoryDate, CategoryAuthor, CategoryCollection, CategoryAttribution}

// Field returns the display field whose vocabulary the category extends.
func (c Category) Field() (resolver.Field, bool) {
	switch c {
	case CategoryDate:
		return resolver.FieldDate, true
	case CategoryAuthor:
		return resolver.FieldAuthor, true
	case CategoryCollection:
		return resolver.FieldCollection, true
	case CategoryAttribution:
		return resolver.FieldAttribution, true
	default:
		return "", false
	}
}

// Rule assigns a category to labels containing any of its keywords.
type Rule struct {
	Category Category
	Keywords []string
}

// Rules is an ordered rule table; the first matching rule wins.
type Rules []Rule

// DefaultRules returns the keyword table used to sort observed labels.
func DefaultRules() Rules {
	return Rules{
		{Category: CategoryDate, Keywords: []string{"date", "created", "issued", "published", "made"}},
		{Category: CategoryAuthor, Keywords: []string{"creator", "author", "artist", "maker", "contributor", "publisher"}},
		{Category: CategoryCollection, Keywords: []string{"collection", "location", "repository", "source", "relation"}},
		{Category: CategoryAttribution, Keywords: []string{"attribution", "digital publisher", "provider"}},
	}
}

// Classify returns the category of the first rule with a keyword contained,
// case-insensitively, in label.
func (rs Rules) Classify(label string) Category {
	lower := strings.ToLower(label)
	for _, rule := range rs {
		for _, keyword := range rule.Keywords {
			if strings.Contains(lower, strings.ToLower(keyword)) {
				return rule.Category
			}
		}
	}
	return CategoryUncategorized
}
