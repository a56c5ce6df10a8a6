// Package gallery holds the collected manifests of a user session and the
// cards derived from them.
package gallery

import (
	"log/slog"
	"net/url"

	"github.com/google/uuid"

	"github.com/lehigh-university-libraries/iiif-gallery/internal/iiif"
	"github.com/lehigh-university-libraries/iiif-gallery/internal/resolver"
)

// GeoreferenceEditor is the editor a manifest is handed to for georeferencing.
const GeoreferenceEditor = "https://editor.allmaps.org/"

const thumbnailSize = 200

// Item is one card: a canvas of a collected manifest with its resolved fields.
type Item struct {
	ID string `json:"id" yaml:"id"`
	// ManifestKey identifies the collected manifest within its session.
	ManifestKey string `json:"manifest_key" yaml:"manifest_key"`
	ManifestID  string `json:"manifest_id" yaml:"manifest_id"`
	CanvasID    string `json:"canvas_id" yaml:"canvas_id"`
	// CanvasIndex is the position of the canvas in the collected manifest.
	CanvasIndex int `json:"canvas_index" yaml:"canvas_index"`

	resolver.Fields `yaml:",inline"`

	Thumbnail       string `json:"thumbnail" yaml:"thumbnail"`
	InfoURL         string `json:"info_url" yaml:"info_url"`
	GeoreferenceURL string `json:"georeference_url" yaml:"georeference_url"`
}

// BuildItems derives a card for every canvas of m that has an image service.
// Canvases without one are logged and skipped.
func BuildItems(r *resolver.Resolver, key string, m *iiif.Manifest) []Item {
	items := make([]Item, 0, len(m.Canvases))
	for i := range m.Canvases {
		canvas := &m.Canvases[i]
		if canvas.ImageService == "" {
			slog.Warn("Skipping canvas without image service", "manifest", m.ID, "canvas", canvas.ID, "index", i)
			continue
		}

		items = append(items, Item{
			ID:              uuid.NewString(),
			ManifestKey:     key,
			ManifestID:      m.ID,
			CanvasID:        canvas.ID,
			CanvasIndex:     i,
			Fields:          r.Resolve(m, canvas),
			Thumbnail:       canvas.Thumbnail(thumbnailSize),
			InfoURL:         canvas.InfoURL(),
			GeoreferenceURL: GeoreferenceURL(m.ID),
		})
	}
	return items
}

// GeoreferenceURL links a manifest into the georeferencing editor.
func GeoreferenceURL(manifestID string) string {
	if manifestID == "" {
		return ""
	}
	return GeoreferenceEditor + "?url=" + url.QueryEscape(manifestID)
}
