package iiif

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strings"
)

const (
	ContextV2 = "http://iiif.io/api/presentation/2/context.json"
	ContextV3 = "http://iiif.io/api/presentation/3/context.json"
)

var (
	// ErrInvalidJSON is returned when a document is not a JSON object.
	ErrInvalidJSON = errors.New("invalid IIIF JSON")
	// ErrCanvasIndex is returned when a page selection points past the canvas list.
	ErrCanvasIndex = errors.New("canvas index out of range")
)

// Version is the IIIF Presentation API major version of a manifest.
type Version int

const (
	V2 Version = 2
	V3 Version = 3
)

// MetadataEntry is one label/value pair of a metadata block.
type MetadataEntry struct {
	Label Value `json:"label"`
	Value Value `json:"value"`
}

// Manifest is a read-only view over a fetched manifest document. The raw
// bytes are kept untouched so the manifest can be exported exactly as it was
// received; page selection always produces a new Manifest.
type Manifest struct {
	raw     json.RawMessage
	version Version

	ID                string
	Type              string
	Label             Value
	Metadata          []MetadataEntry
	RequiredStatement *MetadataEntry
	Attribution       Value
	ProviderLabel     Value
	Homepage          string
	Related           string
	Canvases          []Canvas
}

// Parse builds a Manifest from a JSON document. Only a document that is not a
// JSON object is rejected; every other malformed field is ignored.
func Parse(data []byte) (*Manifest, error) {
	var doc map[string]json.RawMessage
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidJSON, err)
	}

	m := &Manifest{
		raw:     append(json.RawMessage(nil), data...),
		version: detectVersion(doc),
	}
	m.ID = firstString(doc, "id", "@id")
	m.Type = firstString(doc, "type", "@type")
	decodeLenient(doc["label"], &m.Label)
	m.Metadata = parseMetadata(doc["metadata"])
	decodeLenient(doc["attribution"], &m.Attribution)

	if raw, ok := doc["requiredStatement"]; ok {
		var entry MetadataEntry
		if json.Unmarshal(raw, &entry) == nil {
			m.RequiredStatement = &entry
		}
	}

	var providers []struct {
		Label Value `json:"label"`
	}
	if json.Unmarshal(doc["provider"], &providers) == nil && len(providers) > 0 {
		m.ProviderLabel = providers[0].Label
	}

	m.Homepage = resourceID(doc["homepage"])
	m.Related = resourceID(doc["related"])

	for _, raw := range canvasList(doc, m.version) {
		m.Canvases = append(m.Canvases, parseCanvas(raw, m.version))
	}

	return m, nil
}

// Version returns the detected schema version.
func (m *Manifest) Version() Version {
	return m.version
}

// Raw returns a copy of the document bytes.
func (m *Manifest) Raw() json.RawMessage {
	return append(json.RawMessage(nil), m.raw...)
}

// MarshalJSON emits the manifest exactly as it was parsed.
func (m *Manifest) MarshalJSON() ([]byte, error) {
	return m.Raw(), nil
}

// Title returns the manifest label, or "Untitled Manifest".
func (m *Manifest) Title() string {
	if s, ok := m.Label.First(); ok {
		return s
	}
	return "Untitled Manifest"
}

// AllCanvases returns canvases from every sequence of a v2 manifest. For v3
// manifests it is the same as Canvases.
func (m *Manifest) AllCanvases() []Canvas {
	if m.version == V3 {
		return m.Canvases
	}

	var doc struct {
		Sequences []struct {
			Canvases []json.RawMessage `json:"canvases"`
		} `json:"sequences"`
	}
	if err := json.Unmarshal(m.raw, &doc); err != nil {
		return m.Canvases
	}

	var out []Canvas
	for _, seq := range doc.Sequences {
		for _, raw := range seq.Canvases {
			out = append(out, parseCanvas(raw, m.version))
		}
	}
	return out
}

// SelectCanvases returns a copy of the manifest trimmed to the given canvas
// indices. Indices are sorted and de-duplicated; the receiver is not modified.
func (m *Manifest) SelectCanvases(indices []int) (*Manifest, error) {
	seen := make(map[int]bool, len(indices))
	var sorted []int
	for _, idx := range indices {
		if seen[idx] {
			continue
		}
		seen[idx] = true
		sorted = append(sorted, idx)
	}
	sort.Ints(sorted)
	return m.ArrangeCanvases(sorted)
}

// ArrangeCanvases returns a copy of the manifest whose canvas list holds the
// given indices in the given order.
func (m *Manifest) ArrangeCanvases(indices []int) (*Manifest, error) {
	selected := make([]json.RawMessage, 0, len(indices))
	for _, idx := range indices {
		if idx < 0 || idx >= len(m.Canvases) {
			return nil, fmt.Errorf("%w: %d (manifest has %d canvases)", ErrCanvasIndex, idx, len(m.Canvases))
		}
		selected = append(selected, m.Canvases[idx].raw)
	}

	var doc map[string]json.RawMessage
	if err := json.Unmarshal(m.raw, &doc); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidJSON, err)
	}

	canvases, err := marshal(selected)
	if err != nil {
		return nil, fmt.Errorf("failed to encode canvases: %w", err)
	}

	if m.version == V3 {
		doc["items"] = canvases
	} else {
		var sequences []map[string]json.RawMessage
		if err := json.Unmarshal(doc["sequences"], &sequences); err != nil || len(sequences) == 0 {
			sequences = []map[string]json.RawMessage{{}}
		}
		if sequences[0] == nil {
			sequences[0] = map[string]json.RawMessage{}
		}
		sequences[0]["canvases"] = canvases
		encoded, err := marshal(sequences)
		if err != nil {
			return nil, fmt.Errorf("failed to encode sequences: %w", err)
		}
		doc["sequences"] = encoded
	}

	data, err := marshal(doc)
	if err != nil {
		return nil, fmt.Errorf("failed to encode manifest: %w", err)
	}
	return Parse(data)
}

// Page describes one canvas for a page picker.
type Page struct {
	Index     int    `json:"index"`
	Label     string `json:"label"`
	Thumbnail string `json:"thumbnail,omitempty"`
}

// Pages lists the canvases with a display label and a 150px thumbnail.
func (m *Manifest) Pages() []Page {
	pages := make([]Page, 0, len(m.Canvases))
	for i, canvas := range m.Canvases {
		label, ok := canvas.Label.First()
		if !ok {
			label = fmt.Sprintf("Page %d", i+1)
		}
		pages = append(pages, Page{
			Index:     i,
			Label:     label,
			Thumbnail: canvas.Thumbnail(150),
		})
	}
	return pages
}

// DetectVersion classifies a raw document as v2 or v3. It never fails: a
// document that cannot be read is reported as v2.
func DetectVersion(data []byte) Version {
	var doc map[string]json.RawMessage
	if err := json.Unmarshal(data, &doc); err != nil {
		return V2
	}
	return detectVersion(doc)
}

func detectVersion(doc map[string]json.RawMessage) Version {
	if ctx, ok := doc["@context"]; ok {
		var s string
		var list []json.RawMessage
		switch {
		case json.Unmarshal(ctx, &s) == nil:
			if strings.Contains(s, "/3/") {
				return V3
			}
			if strings.Contains(s, "/2/") {
				return V2
			}
		case json.Unmarshal(ctx, &list) == nil:
			for _, item := range list {
				var uri string
				if json.Unmarshal(item, &uri) == nil && uri == ContextV3 {
					return V3
				}
			}
		}
	}

	if items, ok := doc["items"]; ok && string(items) != "null" {
		return V3
	}
	return V2
}

func canvasList(doc map[string]json.RawMessage, version Version) []json.RawMessage {
	var canvases []json.RawMessage
	if version == V3 {
		_ = json.Unmarshal(doc["items"], &canvases)
		return canvases
	}

	var sequences []struct {
		Canvases []json.RawMessage `json:"canvases"`
	}
	if json.Unmarshal(doc["sequences"], &sequences) != nil || len(sequences) == 0 {
		return nil
	}
	return sequences[0].Canvases
}

// marshal encodes without HTML escaping so markup in attributions survives
// untouched.
func marshal(v any) ([]byte, error) {
	var buf bytes.Buffer
	encoder := json.NewEncoder(&buf)
	encoder.SetEscapeHTML(false)
	if err := encoder.Encode(v); err != nil {
		return nil, err
	}
	return bytes.TrimSuffix(buf.Bytes(), []byte("\n")), nil
}

func parseMetadata(raw json.RawMessage) []MetadataEntry {
	var items []json.RawMessage
	if json.Unmarshal(raw, &items) != nil {
		return nil
	}

	entries := make([]MetadataEntry, 0, len(items))
	for _, item := range items {
		var entry MetadataEntry
		if json.Unmarshal(item, &entry) != nil {
			continue
		}
		entries = append(entries, entry)
	}
	return entries
}

func decodeLenient(raw json.RawMessage, v *Value) {
	if raw == nil {
		return
	}
	if err := v.UnmarshalJSON(raw); err != nil {
		*v = Value{}
	}
}

func firstString(doc map[string]json.RawMessage, keys ...string) string {
	for _, key := range keys {
		var s string
		if json.Unmarshal(doc[key], &s) == nil && s != "" {
			return s
		}
	}
	return ""
}

// resourceID reads the id of a linked resource that may be a string, an
// object with id/@id, or an array of either.
func resourceID(raw json.RawMessage) string {
	if raw == nil {
		return ""
	}

	var s string
	if json.Unmarshal(raw, &s) == nil {
		return strings.TrimSpace(s)
	}

	var obj map[string]json.RawMessage
	if json.Unmarshal(raw, &obj) == nil {
		return firstString(obj, "id", "@id")
	}

	var list []json.RawMessage
	if json.Unmarshal(raw, &list) == nil {
		for _, item := range list {
			if id := resourceID(item); id != "" {
				return id
			}
		}
	}
	return ""
}
