package iiif_test

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lehigh-university-libraries/iiif-gallery/internal/iiif"
	"github.com/lehigh-university-libraries/iiif-gallery/internal/iiif/iiiftest"
)

func parseAll(t *testing.T, docs ...string) []*iiif.Manifest {
	t.Helper()
	out := make([]*iiif.Manifest, 0, len(docs))
	for _, doc := range docs {
		m, err := iiif.Parse([]byte(doc))
		require.NoError(t, err)
		out = append(out, m)
	}
	return out
}

func TestCollectionEncode(t *testing.T) {
	manifests := parseAll(t, iiiftest.ManifestV2, iiiftest.ManifestV3)

	var buf bytes.Buffer
	require.NoError(t, iiif.NewCollection("Boston maps", manifests).Encode(&buf))

	var doc struct {
		Context string              `json:"@context"`
		Type    string              `json:"type"`
		Label   map[string][]string `json:"label"`
		Items   []json.RawMessage   `json:"items"`
	}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &doc))

	assert.Equal(t, iiif.ContextV3, doc.Context)
	assert.Equal(t, "Collection", doc.Type)
	assert.Equal(t, map[string][]string{"en": {"Boston maps"}}, doc.Label)
	require.Len(t, doc.Items, 2)
	assert.JSONEq(t, iiiftest.ManifestV2, string(doc.Items[0]))
	assert.JSONEq(t, iiiftest.ManifestV3, string(doc.Items[1]))
	assert.Contains(t, buf.String(), "\n  \"type\"", "output is indented")
}

func TestCollectionDefaultName(t *testing.T) {
	c := iiif.NewCollection("  ", nil)
	assert.Equal(t, iiif.DefaultCollectionName, c.Name())

	var buf bytes.Buffer
	require.NoError(t, c.Encode(&buf))
	assert.Contains(t, buf.String(), `"items": []`)
}

func TestParseDocument(t *testing.T) {
	tests := []struct {
		name string
		doc  string
		ids  []string
	}{
		{
			name: "v3 collection",
			doc:  `{"type": "Collection", "items": [` + iiiftest.V3("https://a", 1) + `,` + iiiftest.V2("https://b", 1) + `]}`,
			ids:  []string{"https://a", "https://b"},
		},
		{
			name: "v2 collection",
			doc:  `{"@type": "sc:Collection", "manifests": [` + iiiftest.V2("https://c", 2) + `]}`,
			ids:  []string{"https://c"},
		},
		{
			name: "single v3 manifest is not read as a collection",
			doc:  iiiftest.V3("https://d", 3),
			ids:  []string{"https://d"},
		},
		{
			name: "single v2 manifest",
			doc:  iiiftest.ManifestV2,
			ids:  []string{"https://example.edu/iiif/atlas/manifest.json"},
		},
		{
			name: "empty collection",
			doc:  `{"type": "Collection", "items": []}`,
			ids:  []string{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			manifests, err := iiif.ParseDocument([]byte(tt.doc))
			require.NoError(t, err)

			ids := make([]string, 0, len(manifests))
			for _, m := range manifests {
				ids = append(ids, m.ID)
			}
			assert.Equal(t, tt.ids, ids)
		})
	}
}

func TestParseDocumentErrors(t *testing.T) {
	_, err := iiif.ParseDocument([]byte(`{"type": "Collection"`))
	assert.ErrorIs(t, err, iiif.ErrInvalidJSON)

	_, err = iiif.ParseDocument([]byte(`{"type": "Collection", "items": ["not a manifest"]}`))
	assert.ErrorIs(t, err, iiif.ErrInvalidJSON)
}
