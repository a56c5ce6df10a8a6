package resolver

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lehigh-university-libraries/iiif-gallery/internal/iiif"
)

func TestDefaultVocabulary(t *testing.T) {
	v := DefaultVocabulary()

	assert.True(t, v.ContainsIn(FieldDate, "publication date"))
	assert.True(t, v.ContainsIn(FieldAuthor, "Artist/Maker"))
	assert.True(t, v.ContainsIn(FieldCollection, "Contributor"))
	assert.True(t, v.Contains("digital publisher"))
	assert.False(t, v.Contains("Random Field"))

	require.Len(t, v.Link, 3)
	assert.True(t, v.Link[0].Last)
	assert.Equal(t, []iiif.Version{iiif.V3}, v.Collection[4].Versions)
}

func TestDecodeVocabulary(t *testing.T) {
	doc := `
date:
  - Date
  - label: Date of Survey
author:
  - Creator
link:
  - label: Identifier
    last: true
  - label: Handle
    versions: [2]
`
	v, err := DecodeVocabulary(strings.NewReader(doc))
	require.NoError(t, err)

	assert.Equal(t, []Term{T("Date"), T("Date of Survey")}, v.Date)
	assert.Equal(t, []Term{T("Creator")}, v.Author)
	assert.Equal(t, []Term{
		{Label: "Identifier", Last: true},
		{Label: "Handle", Versions: []iiif.Version{iiif.V2}},
	}, v.Link)

	// fields missing from the document keep their defaults
	assert.Equal(t, DefaultVocabulary().Collection, v.Collection)
	assert.Equal(t, DefaultVocabulary().Title, v.Title)
}

func TestDecodeVocabularyErrors(t *testing.T) {
	tests := []struct {
		name string
		doc  string
	}{
		{name: "unknown field", doc: "dates:\n  - Date\n"},
		{name: "term without label", doc: "date:\n  - last: true\n"},
		{name: "not yaml", doc: "date: [unclosed"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := DecodeVocabulary(strings.NewReader(tt.doc))
			assert.Error(t, err)
		})
	}
}

func TestDecodeEmptyVocabulary(t *testing.T) {
	v, err := DecodeVocabulary(strings.NewReader(""))
	require.NoError(t, err)
	assert.Equal(t, DefaultVocabulary(), v)
}

func TestVocabularyRoundTrip(t *testing.T) {
	original := DefaultVocabulary().WithAdded(FieldAttribution, "Holding Institution")

	path := filepath.Join(t.TempDir(), "nested", "vocabulary.yaml")
	require.NoError(t, SaveVocabulary(path, original))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "- Holding Institution")
	assert.Contains(t, string(data), "versions: [3]")

	loaded, err := LoadVocabulary(path)
	require.NoError(t, err)
	if diff := cmp.Diff(original, loaded); diff != "" {
		t.Errorf("vocabulary mismatch (-want +got):\n%s", diff)
	}
}

func TestLoadVocabularyMissingFile(t *testing.T) {
	_, err := LoadVocabulary(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestWithAddedCopies(t *testing.T) {
	base := DefaultVocabulary()
	added := base.WithAdded(FieldDate, "Date of Survey", "date", " ", "Date of Survey")

	assert.Len(t, base.Date, 8)
	assert.Len(t, added.Date, 9)
	assert.Equal(t, T("Date of Survey"), added.Date[8])
}

func TestBuildChainsFollowVocabulary(t *testing.T) {
	chains := BuildChains(DefaultVocabulary())

	date := chains[FieldDate]
	require.Len(t, date.Steps, 16)
	assert.Equal(t, ScopeCanvas, date.Steps[0].Scope)
	assert.Equal(t, ScopeManifest, date.Steps[8].Scope)
	assert.Equal(t, "Date", date.Steps[8].Label)

	link := chains[FieldLink]
	assert.Equal(t, StructHomepage, link.Steps[0].Label)
	assert.Equal(t, StructCanvasID, link.Steps[len(link.Steps)-1].Label)
	assert.Equal(t, "No link available", link.Sentinel())

	var buf bytes.Buffer
	require.NoError(t, DefaultVocabulary().Encode(&buf))
	assert.True(t, strings.HasPrefix(buf.String(), "title:\n  - Title\n"))
}
