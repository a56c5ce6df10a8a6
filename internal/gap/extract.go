package gap

import (
	"github.com/lehigh-university-libraries/iiif-gallery/internal/iiif"
)

// ExtractLabels returns every distinct metadata label of the manifest and all
// of its canvases, in order of first appearance.
func ExtractLabels(m *iiif.Manifest) []string {
	seen := make(map[string]bool)
	var labels []string
	add := func(entries []iiif.MetadataEntry) {
		for _, entry := range entries {
			label, ok := entry.Label.First()
			if !ok || seen[label] {
				continue
			}
			seen[label] = true
			labels = append(labels, label)
		}
	}

	add(m.Metadata)
	for _, canvas := range m.AllCanvases() {
		add(canvas.Metadata)
	}
	return labels
}
