package iiif

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
)

// DefaultCollectionName is used when an export is not given a name.
const DefaultCollectionName = "My-IIIF-Collection"

// Collection is the v3 Collection document written on export.
type Collection struct {
	Context string              `json:"@context"`
	Type    string              `json:"type"`
	Label   map[string][]string `json:"label"`
	Items   []*Manifest         `json:"items"`
}

// NewCollection wraps the manifests, in order, in a v3 Collection.
func NewCollection(name string, manifests []*Manifest) *Collection {
	name = strings.TrimSpace(name)
	if name == "" {
		name = DefaultCollectionName
	}
	if manifests == nil {
		manifests = []*Manifest{}
	}
	return &Collection{
		Context: ContextV3,
		Type:    "Collection",
		Label:   map[string][]string{"en": {name}},
		Items:   manifests,
	}
}

// Name returns the English label of the collection.
func (c *Collection) Name() string {
	if names := c.Label["en"]; len(names) > 0 {
		return names[0]
	}
	return DefaultCollectionName
}

// Encode writes the collection as indented JSON.
func (c *Collection) Encode(w io.Writer) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	encoder.SetEscapeHTML(false)
	return encoder.Encode(c)
}

// ParseDocument reads an imported file. A Collection (v3 items or v2
// manifests) yields each of its manifests in order; any other document is
// treated as a single manifest.
func ParseDocument(data []byte) ([]*Manifest, error) {
	var doc map[string]json.RawMessage
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidJSON, err)
	}

	docType := firstString(doc, "type", "@type")
	if docType != "Collection" && docType != "sc:Collection" {
		m, err := Parse(data)
		if err != nil {
			return nil, err
		}
		return []*Manifest{m}, nil
	}

	var items []json.RawMessage
	if json.Unmarshal(doc["items"], &items) != nil || len(items) == 0 {
		_ = json.Unmarshal(doc["manifests"], &items)
	}

	manifests := make([]*Manifest, 0, len(items))
	for i, raw := range items {
		m, err := Parse(raw)
		if err != nil {
			return nil, fmt.Errorf("collection item %d: %w", i, err)
		}
		manifests = append(manifests, m)
	}
	return manifests, nil
}
