package iiif_test

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lehigh-university-libraries/iiif-gallery/internal/iiif"
	"github.com/lehigh-university-libraries/iiif-gallery/internal/iiif/iiiftest"
)

func TestDetectVersion(t *testing.T) {
	tests := []struct {
		name string
		doc  string
		want iiif.Version
	}{
		{name: "v3 context string", doc: `{"@context": "http://iiif.io/api/presentation/3/context.json"}`, want: iiif.V3},
		{name: "v2 context string", doc: `{"@context": "http://iiif.io/api/presentation/2/context.json", "items": []}`, want: iiif.V2},
		{name: "context list with v3", doc: `{"@context": ["http://www.w3.org/ns/anno.jsonld", "http://iiif.io/api/presentation/3/context.json"]}`, want: iiif.V3},
		{name: "context list without v3", doc: `{"@context": ["http://www.w3.org/ns/anno.jsonld"]}`, want: iiif.V2},
		{name: "no context with items", doc: `{"items": []}`, want: iiif.V3},
		{name: "no context with null items", doc: `{"items": null}`, want: iiif.V2},
		{name: "no context no items", doc: `{"sequences": []}`, want: iiif.V2},
		{name: "unknown context with items", doc: `{"@context": "http://example.org/ctx", "items": []}`, want: iiif.V3},
		{name: "not an object", doc: `[1,2,3]`, want: iiif.V2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := iiif.DetectVersion([]byte(tt.doc)); got != tt.want {
				t.Errorf("Expected version %d, got %d", tt.want, got)
			}
		})
	}
}

func TestParseV3(t *testing.T) {
	m, err := iiif.Parse([]byte(iiiftest.ManifestV3))
	require.NoError(t, err)

	assert.Equal(t, iiif.V3, m.Version())
	assert.Equal(t, "https://example.org/iiif/boston/manifest", m.ID)
	assert.Equal(t, "Plan of Boston", m.Title())
	assert.Len(t, m.Metadata, 6)
	require.NotNil(t, m.RequiredStatement)
	assert.Equal(t, "Courtesy of the Example Library", m.RequiredStatement.Value.String())
	assert.Equal(t, "Example Library", m.ProviderLabel.String())
	assert.Equal(t, "https://example.org/items/boston", m.Homepage)

	require.Len(t, m.Canvases, 3)
	assert.Equal(t, "https://images.example.org/boston-1", m.Canvases[0].ImageService)
	assert.Equal(t, "https://images.example.org/boston-2", m.Canvases[1].ImageService, "trailing slash is trimmed")
	assert.Empty(t, m.Canvases[2].ImageService)
	assert.Equal(t, "https://images.example.org/boston-1/full/!200,200/0/default.jpg", m.Canvases[0].Thumbnail(200))
	assert.Equal(t, "https://images.example.org/boston-1/info.json", m.Canvases[0].InfoURL())
	assert.Empty(t, m.Canvases[2].Thumbnail(200))
	assert.Len(t, m.Canvases[0].Metadata, 1)
}

func TestParseV2(t *testing.T) {
	m, err := iiif.Parse([]byte(iiiftest.ManifestV2))
	require.NoError(t, err)

	assert.Equal(t, iiif.V2, m.Version())
	assert.Equal(t, "https://example.edu/iiif/atlas/manifest.json", m.ID)
	assert.Equal(t, "Atlas of the World", m.Title())
	assert.Equal(t, "https://example.edu/catalog/atlas", m.Related)
	assert.Nil(t, m.RequiredStatement)
	assert.Contains(t, m.Attribution.String(), "Example University")

	require.Len(t, m.Canvases, 5, "only the first sequence is displayed")
	for i, c := range m.Canvases {
		assert.NotEmpty(t, c.ImageService, "canvas %d", i)
	}
	assert.Len(t, m.AllCanvases(), 6, "every sequence is read for analysis")
}

func TestParseRejectsNonObjects(t *testing.T) {
	for _, doc := range []string{`not json`, `[]`, `"manifest"`} {
		_, err := iiif.Parse([]byte(doc))
		assert.ErrorIs(t, err, iiif.ErrInvalidJSON, doc)
	}
}

func TestParseToleratesMalformedFields(t *testing.T) {
	doc := `{"id": "x", "items": [{"id": "c1"}], "metadata": "oops", "label": 12, "provider": {"label": "x"}}`

	m, err := iiif.Parse([]byte(doc))
	require.NoError(t, err)
	assert.Empty(t, m.Metadata)
	assert.Equal(t, "12", m.Title())
	assert.True(t, m.ProviderLabel.IsAbsent())
	require.Len(t, m.Canvases, 1)
	assert.Equal(t, "c1", m.Canvases[0].ID)
}

func TestTitleDefault(t *testing.T) {
	m, err := iiif.Parse([]byte(`{"items": []}`))
	require.NoError(t, err)
	assert.Equal(t, "Untitled Manifest", m.Title())
}

func TestSelectCanvasesLeavesOriginalUntouched(t *testing.T) {
	tests := []struct {
		name string
		doc  string
	}{
		{name: "v2", doc: iiiftest.V2("https://example.org/m2", 5)},
		{name: "v3", doc: iiiftest.V3("https://example.org/m3", 5)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m, err := iiif.Parse([]byte(tt.doc))
			require.NoError(t, err)
			before := m.Raw()

			subset, err := m.SelectCanvases([]int{3, 1, 3})
			require.NoError(t, err)

			require.Len(t, subset.Canvases, 2)
			assert.Equal(t, m.Canvases[1].ID, subset.Canvases[0].ID)
			assert.Equal(t, m.Canvases[3].ID, subset.Canvases[1].ID)
			assert.Equal(t, m.Version(), subset.Version())
			assert.Equal(t, m.ID, subset.ID)

			assert.Len(t, m.Canvases, 5)
			assert.Equal(t, before, m.Raw())
		})
	}
}

func TestSelectCanvasesKeepsCanvasContent(t *testing.T) {
	m, err := iiif.Parse([]byte(iiiftest.ManifestV2))
	require.NoError(t, err)

	subset, err := m.SelectCanvases([]int{1})
	require.NoError(t, err)

	var doc struct {
		Attribution string `json:"attribution"`
		Sequences   []struct {
			Canvases []map[string]any `json:"canvases"`
		} `json:"sequences"`
	}
	require.NoError(t, json.Unmarshal(subset.Raw(), &doc))

	assert.Equal(t, "<span>Provided by <b>Example University</b></span>", doc.Attribution)
	require.Len(t, doc.Sequences, 2, "other sequences are kept")
	require.Len(t, doc.Sequences[0].Canvases, 1)
	assert.Equal(t, "Plate 2", doc.Sequences[0].Canvases[0]["label"])
	assert.NotNil(t, doc.Sequences[0].Canvases[0]["metadata"])
	assert.Contains(t, string(subset.Raw()), `<b>Example University</b>`, "markup is not escaped")
}

func TestSelectCanvasesOutOfRange(t *testing.T) {
	m, err := iiif.Parse([]byte(iiiftest.V3("https://example.org/m", 2)))
	require.NoError(t, err)

	_, err = m.SelectCanvases([]int{0, 2})
	assert.ErrorIs(t, err, iiif.ErrCanvasIndex)

	_, err = m.SelectCanvases([]int{-1})
	assert.ErrorIs(t, err, iiif.ErrCanvasIndex)
}

func TestArrangeCanvasesKeepsGivenOrder(t *testing.T) {
	m, err := iiif.Parse([]byte(iiiftest.V3("https://example.org/m", 3)))
	require.NoError(t, err)

	arranged, err := m.ArrangeCanvases([]int{2, 0})
	require.NoError(t, err)

	require.Len(t, arranged.Canvases, 2)
	assert.Equal(t, "https://example.org/m/canvas/3", arranged.Canvases[0].ID)
	assert.Equal(t, "https://example.org/m/canvas/1", arranged.Canvases[1].ID)
}

func TestPages(t *testing.T) {
	m, err := iiif.Parse([]byte(iiiftest.ManifestV2))
	require.NoError(t, err)

	pages := m.Pages()
	require.Len(t, pages, 5)
	assert.Equal(t, iiif.Page{
		Index:     0,
		Label:     "Plate 1",
		Thumbnail: "https://images.example.edu/atlas-1/full/!150,150/0/default.jpg",
	}, pages[0])
	assert.Equal(t, "Page 5", pages[4].Label)
}

func TestMarshalJSONEmitsRawDocument(t *testing.T) {
	m, err := iiif.Parse([]byte(iiiftest.ManifestV3))
	require.NoError(t, err)

	data, err := json.Marshal(m)
	require.NoError(t, err)
	assert.JSONEq(t, iiiftest.ManifestV3, string(data))
}
