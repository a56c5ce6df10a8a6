package resolver

import (
	"strings"

	"github.com/lehigh-university-libraries/iiif-gallery/internal/iiif"
)

// Lookup returns the normalized value of the first (or, with useLast, the
// last) metadata entry whose label case-insensitively equals label.
func Lookup(entries []iiif.MetadataEntry, label string, useLast bool) (string, bool) {
	return LookupWith(entries, label, useLast, iiif.Policy{})
}

// LookupWith is Lookup with a language policy applied to labels and values.
// The value is always read from its first element; useLast only chooses
// between repeated entries.
func LookupWith(entries []iiif.MetadataEntry, label string, useLast bool, policy iiif.Policy) (string, bool) {
	target := strings.TrimSpace(label)
	if target == "" {
		return "", false
	}
	policy.Position = iiif.First

	match := -1
	for i, entry := range entries {
		if !labelMatches(entry.Label, target) {
			continue
		}
		match = i
		if !useLast {
			break
		}
	}
	if match < 0 {
		return "", false
	}
	return entries[match].Value.Normalize(policy)
}

// labelMatches reports whether any string of the label equals target.
// A label given in several languages matches on any of them.
func labelMatches(label iiif.Value, target string) bool {
	for _, s := range label.Strings() {
		if strings.EqualFold(strings.TrimSpace(s), target) {
			return true
		}
	}
	return false
}
