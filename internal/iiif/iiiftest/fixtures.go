// Package iiiftest provides manifest fixtures for tests.
package iiiftest

import (
	"encoding/json"
	"fmt"
	"strings"
)

// ManifestV3 is a v3 manifest with canvas-level metadata on its first canvas,
// a multi-language label, and repeated identifiers.
const ManifestV3 = `{
  "@context": "http://iiif.io/api/presentation/3/context.json",
  "id": "https://example.org/iiif/boston/manifest",
  "type": "Manifest",
  "label": {"en": ["Plan of Boston"], "fr": ["Plan de Boston"]},
  "metadata": [
    {"label": {"en": ["Title"]}, "value": {"en": ["A plan of the town of Boston"]}},
    {"label": {"en": ["Date"]}, "value": {"en": ["1800"]}},
    {"label": {"en": ["Creator"]}, "value": {"none": ["Page, Thomas Hyde"]}},
    {"label": {"en": ["Contributor"]}, "value": {"en": ["Harvard Map Collection"]}},
    {"label": {"en": ["Identifier"]}, "value": {"none": ["local:123"]}},
    {"label": {"en": ["Identifier"]}, "value": {"none": ["ark.example.org/ark:/1234/xyz"]}}
  ],
  "requiredStatement": {
    "label": {"en": ["Attribution"]},
    "value": {"en": ["Courtesy of the Example Library"]}
  },
  "provider": [{"id": "https://example.org", "type": "Agent", "label": {"en": ["Example Library"]}}],
  "homepage": [{"id": "https://example.org/items/boston", "type": "Text"}],
  "items": [
    {
      "id": "https://example.org/iiif/boston/canvas/1",
      "type": "Canvas",
      "label": {"none": ["Sheet 1"]},
      "metadata": [{"label": {"en": ["Date"]}, "value": {"en": ["1920"]}}],
      "items": [{"id": "https://example.org/iiif/boston/page/1", "type": "AnnotationPage", "items": [{
        "id": "https://example.org/iiif/boston/anno/1", "type": "Annotation", "motivation": "painting",
        "body": {"id": "https://images.example.org/boston-1/full/max/0/default.jpg", "type": "Image",
          "service": [{"id": "https://images.example.org/boston-1", "type": "ImageService3"}]},
        "target": "https://example.org/iiif/boston/canvas/1"}]}]
    },
    {
      "id": "https://example.org/iiif/boston/canvas/2",
      "type": "Canvas",
      "label": {"none": ["Sheet 2"]},
      "items": [{"id": "https://example.org/iiif/boston/page/2", "type": "AnnotationPage", "items": [{
        "id": "https://example.org/iiif/boston/anno/2", "type": "Annotation", "motivation": "painting",
        "body": {"id": "https://images.example.org/boston-2/full/max/0/default.jpg", "type": "Image",
          "service": [{"@id": "https://images.example.org/boston-2/", "@type": "ImageService2"}]},
        "target": "https://example.org/iiif/boston/canvas/2"}]}]
    },
    {
      "id": "https://example.org/iiif/boston/canvas/3",
      "type": "Canvas",
      "items": []
    }
  ]
}`

// ManifestV2 is a v2 manifest with HTML in its attribution and a related link.
const ManifestV2 = `{
  "@context": "http://iiif.io/api/presentation/2/context.json",
  "@id": "https://example.edu/iiif/atlas/manifest.json",
  "@type": "sc:Manifest",
  "label": "Atlas of the World",
  "attribution": "<span>Provided by <b>Example University</b></span>",
  "related": {"@id": "https://example.edu/catalog/atlas", "format": "text/html"},
  "metadata": [
    {"label": "Publication Date", "value": "1855"},
    {"label": "Author", "value": ["Mitchell, S. Augustus", "Second Author"]},
    {"label": "Location", "value": "Special Collections"},
    {"label": [{"@value": "Publisher", "@language": "en"}], "value": "Cowperthwait"}
  ],
  "sequences": [{
    "@type": "sc:Sequence",
    "canvases": [
      {"@id": "https://example.edu/iiif/atlas/canvas/p1", "@type": "sc:Canvas", "label": "Plate 1",
       "images": [{"resource": {"@id": "https://images.example.edu/atlas-1/full/full/0/default.jpg",
         "service": {"@id": "https://images.example.edu/atlas-1", "profile": "http://iiif.io/api/image/2/level2.json"}}}]},
      {"@id": "https://example.edu/iiif/atlas/canvas/p2", "@type": "sc:Canvas", "label": "Plate 2",
       "metadata": [{"label": "Artist/Maker", "value": "Engraver, J."}],
       "images": [{"resource": {"service": {"@id": "https://images.example.edu/atlas-2"}}}]},
      {"@id": "https://example.edu/iiif/atlas/canvas/p3", "@type": "sc:Canvas", "label": "Plate 3",
       "images": [{"resource": {"service": [{"@id": "https://images.example.edu/atlas-3"}]}}]},
      {"@id": "https://example.edu/iiif/atlas/canvas/p4", "@type": "sc:Canvas", "label": "Plate 4",
       "images": [{"resource": {"service": {"@id": "https://images.example.edu/atlas-4"}}}]},
      {"@id": "https://example.edu/iiif/atlas/canvas/p5", "@type": "sc:Canvas",
       "images": [{"resource": {"service": {"@id": "https://images.example.edu/atlas-5"}}}]}
    ]
  }, {
    "@type": "sc:Sequence",
    "canvases": [
      {"@id": "https://example.edu/iiif/atlas/canvas/alt", "@type": "sc:Canvas",
       "metadata": [{"label": "Date of Survey", "value": "1850"}]}
    ]
  }]
}`

// Entry is a metadata label/value pair for generated manifests.
type Entry struct {
	Label string
	Value string
}

// V3 builds a v3 manifest with the given id, manifest metadata and number of
// canvases. Every canvas has an image service.
func V3(id string, canvases int, metadata ...Entry) string {
	var items []string
	for i := 1; i <= canvases; i++ {
		items = append(items, fmt.Sprintf(`{
      "id": %[1]q, "type": "Canvas", "label": {"none": ["p. %[2]d"]},
      "items": [{"id": "%[1]s/page", "type": "AnnotationPage", "items": [{
        "id": "%[1]s/anno", "type": "Annotation", "motivation": "painting",
        "body": {"id": "%[3]s/full/max/0/default.jpg", "type": "Image",
          "service": [{"id": %[3]q, "type": "ImageService3"}]}, "target": %[1]q}]}]}`,
			fmt.Sprintf("%s/canvas/%d", id, i), i, fmt.Sprintf("%s/image/%d", id, i)))
	}

	return fmt.Sprintf(`{
  "@context": "http://iiif.io/api/presentation/3/context.json",
  "id": %q,
  "type": "Manifest",
  "label": {"en": [%q]},
  "metadata": %s,
  "items": [%s]
}`, id, "Manifest "+id, metadataJSON(metadata, true), strings.Join(items, ","))
}

// V2 builds a v2 manifest with the given id, manifest metadata and number of
// canvases.
func V2(id string, canvases int, metadata ...Entry) string {
	var items []string
	for i := 1; i <= canvases; i++ {
		items = append(items, fmt.Sprintf(`{"@id": "%[1]s/canvas/%[2]d", "@type": "sc:Canvas", "label": "p. %[2]d",
      "images": [{"resource": {"service": {"@id": "%[1]s/image/%[2]d"}}}]}`, id, i))
	}

	return fmt.Sprintf(`{
  "@context": "http://iiif.io/api/presentation/2/context.json",
  "@id": %q,
  "@type": "sc:Manifest",
  "label": %q,
  "metadata": %s,
  "sequences": [{"canvases": [%s]}]
}`, id, "Manifest "+id, metadataJSON(metadata, false), strings.Join(items, ","))
}

func metadataJSON(entries []Entry, localized bool) string {
	out := make([]map[string]any, 0, len(entries))
	for _, e := range entries {
		if localized {
			out = append(out, map[string]any{
				"label": map[string][]string{"en": {e.Label}},
				"value": map[string][]string{"none": {e.Value}},
			})
			continue
		}
		out = append(out, map[string]any{"label": e.Label, "value": e.Value})
	}
	data, _ := json.Marshal(out)
	return string(data)
}
