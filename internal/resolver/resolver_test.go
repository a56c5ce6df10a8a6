package resolver

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/text/language"

	"github.com/lehigh-university-libraries/iiif-gallery/internal/iiif"
	"github.com/lehigh-university-libraries/iiif-gallery/internal/iiif/iiiftest"
)

func parse(t *testing.T, doc string) *iiif.Manifest {
	t.Helper()
	m, err := iiif.Parse([]byte(doc))
	require.NoError(t, err)
	return m
}

func entry(label, value string) iiif.MetadataEntry {
	return iiif.MetadataEntry{Label: iiif.Plain(label), Value: iiif.Plain(value)}
}

func TestLookup(t *testing.T) {
	entries := []iiif.MetadataEntry{
		entry("Date", "1800"),
		{Label: iiif.Localized(iiif.LangValues{Lang: "en", Values: []string{"Identifier"}}), Value: iiif.Plain("first")},
		{Label: iiif.List("Identifier"), Value: iiif.List("second", "ignored")},
		entry("Empty", "  "),
	}

	tests := []struct {
		name    string
		label   string
		useLast bool
		want    string
		found   bool
	}{
		{name: "case insensitive", label: "date", want: "1800", found: true},
		{name: "upper case target", label: "DATE", want: "1800", found: true},
		{name: "first match", label: "Identifier", want: "first", found: true},
		{name: "last match", label: "identifier", useLast: true, want: "second", found: true},
		{name: "no match", label: "Creator"},
		{name: "blank value", label: "Empty"},
		{name: "blank target", label: " "},
		{name: "partial label does not match", label: "Dat"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := Lookup(entries, tt.label, tt.useLast)
			if ok != tt.found {
				t.Errorf("Expected found=%v, got %v", tt.found, ok)
			}
			if got != tt.want {
				t.Errorf("Expected %q, got %q", tt.want, got)
			}
		})
	}

	got, ok := Lookup(nil, "Date", false)
	assert.False(t, ok)
	assert.Empty(t, got)
}

func TestResolveV3(t *testing.T) {
	m := parse(t, iiiftest.ManifestV3)
	r := New()

	got := r.Resolve(m, &m.Canvases[0])
	assert.Equal(t, Fields{
		Title:       "Plan of Boston",
		Author:      "Page, Thomas Hyde",
		Date:        "1920",
		Collection:  "Harvard Map Collection",
		Attribution: "Courtesy of the Example Library",
		Link:        "https://example.org/items/boston",
	}, got)

	// no canvas-level date on the second canvas
	assert.Equal(t, "1800", r.Resolve(m, &m.Canvases[1]).Date)
}

func TestResolveV2(t *testing.T) {
	m := parse(t, iiiftest.ManifestV2)
	r := New()

	first := r.Resolve(m, &m.Canvases[0])
	assert.Equal(t, Fields{
		Title:       "Atlas of the World",
		Author:      "Mitchell, S. Augustus",
		Date:        "1855",
		Collection:  "Special Collections",
		Attribution: "<span>Provided by <b>Example University</b></span>",
		Link:        "https://example.edu/catalog/atlas",
	}, first)

	second := r.Resolve(m, &m.Canvases[1])
	assert.Equal(t, "Engraver, J.", second.Author, "canvas metadata overrides manifest metadata")
}

func TestCanvasScopeWins(t *testing.T) {
	m := parse(t, iiiftest.V3("https://example.org/m", 1, iiiftest.Entry{Label: "Date", Value: "1800"}))
	canvas := m.Canvases[0]
	canvas.Metadata = []iiif.MetadataEntry{entry("Date", "1920")}

	assert.Equal(t, "1920", New().ResolveField(FieldDate, m, &canvas))
	assert.Equal(t, "1800", New().ResolveField(FieldDate, m, nil))
}

func TestChainOrderBeatsMetadataOrder(t *testing.T) {
	m := parse(t, iiiftest.V2("https://example.org/m", 1,
		iiiftest.Entry{Label: "Issued", Value: "issued value"},
		iiiftest.Entry{Label: "Date", Value: "date value"},
	))

	assert.Equal(t, "date value", New().ResolveField(FieldDate, m, &m.Canvases[0]))
}

func TestSentinelTotality(t *testing.T) {
	m := parse(t, `{}`)

	for _, c := range []*iiif.Canvas{nil, {}} {
		got := New().Resolve(m, c)
		assert.Equal(t, Fields{
			Title:       "No title returned",
			Author:      "No author returned",
			Date:        "No date returned",
			Collection:  "No collection returned",
			Attribution: "No attribution returned",
			Link:        "No link available",
		}, got)
	}

	assert.Equal(t, "No date returned", New().ResolveField(FieldDate, nil, nil))
}

func TestContributorCollectionIsV3Only(t *testing.T) {
	contributor := iiiftest.Entry{Label: "Contributor", Value: "Map Library"}

	v3 := parse(t, iiiftest.V3("https://example.org/v3", 1, contributor))
	v2 := parse(t, iiiftest.V2("https://example.org/v2", 1, contributor))
	r := New()

	assert.Equal(t, "Map Library", r.ResolveField(FieldCollection, v3, nil))
	assert.Equal(t, "No collection returned", r.ResolveField(FieldCollection, v2, nil))

	// the same label also feeds author on both versions
	assert.Equal(t, "Map Library", r.ResolveField(FieldAuthor, v3, nil))
	assert.Equal(t, "Map Library", r.ResolveField(FieldAuthor, v2, nil))
}

func TestLinkChain(t *testing.T) {
	tests := []struct {
		name string
		doc  string
		want string
	}{
		{
			name: "last identifier",
			doc: iiiftest.V3("https://example.org/m", 1,
				iiiftest.Entry{Label: "Identifier", Value: "local:123"},
				iiiftest.Entry{Label: "Identifier", Value: "ark.example.org/ark:/1234/xyz"},
			),
			want: "https://ark.example.org/ark:/1234/xyz",
		},
		{
			name: "item url",
			doc:  iiiftest.V2("https://example.org/m", 1, iiiftest.Entry{Label: "Item Url", Value: "//example.org/item"}),
			want: "https://example.org/item",
		},
		{
			name: "canvas id",
			doc:  iiiftest.V3("https://example.org/m", 1),
			want: "https://example.org/m/canvas/1",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := parse(t, tt.doc)
			assert.Equal(t, tt.want, New().ResolveField(FieldLink, m, &m.Canvases[0]))
		})
	}
}

func TestStructuralStepsRespectVersion(t *testing.T) {
	// homepage is a v3 property, related a v2 one
	v2 := parse(t, `{"@context": "`+iiif.ContextV2+`", "homepage": [{"id": "https://example.org/home"}],
		"requiredStatement": {"label": "a", "value": "v3 only"}, "attribution": "Library"}`)

	r := New()
	assert.Equal(t, NoLink, r.ResolveField(FieldLink, v2, nil))
	assert.Equal(t, "Library", r.ResolveField(FieldAttribution, v2, nil))
}

func TestProviderFallback(t *testing.T) {
	m := parse(t, `{"@context": "`+iiif.ContextV3+`", "items": [],
		"provider": [{"label": {"en": ["Example Provider"]}}]}`)

	assert.Equal(t, "Example Provider", New().ResolveField(FieldAttribution, m, nil))
}

func TestLanguagePreference(t *testing.T) {
	m := parse(t, iiiftest.ManifestV3)

	assert.Equal(t, "Plan of Boston", New().ResolveField(FieldTitle, m, nil))
	assert.Equal(t, "Plan de Boston", New(WithLanguages(language.French)).ResolveField(FieldTitle, m, nil))
	assert.Equal(t, "Plan of Boston", New(WithLanguages(language.Japanese)).ResolveField(FieldTitle, m, nil))
}

func TestCustomVocabulary(t *testing.T) {
	m := parse(t, iiiftest.V2("https://example.org/m", 1, iiiftest.Entry{Label: "Date of Survey", Value: "1850"}))

	assert.Equal(t, "No date returned", New().ResolveField(FieldDate, m, nil))

	vocab := DefaultVocabulary().WithAdded(FieldDate, "Date of Survey")
	assert.Equal(t, "1850", New(WithVocabulary(vocab)).ResolveField(FieldDate, m, nil))
}

func TestFieldsGet(t *testing.T) {
	f := Fields{Title: "t", Author: "a", Date: "d", Collection: "c", Attribution: "at", Link: "l"}
	var got []string
	for _, field := range AllFields {
		got = append(got, f.Get(field))
	}
	assert.Equal(t, []string{"t", "a", "d", "c", "at", "l"}, got)
}
