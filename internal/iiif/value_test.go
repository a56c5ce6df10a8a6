package iiif

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/text/language"
)

func decodeValue(t *testing.T, raw string) Value {
	t.Helper()
	var v Value
	require.NoError(t, json.Unmarshal([]byte(raw), &v))
	return v
}

func TestValueEncodingsNormalizeAlike(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		kind Kind
	}{
		{name: "plain string", raw: `"  Map of Boston "`, kind: KindPlain},
		{name: "array", raw: `["Map of Boston", "Second"]`, kind: KindList},
		{name: "language map", raw: `{"en": ["Map of Boston", "Second"]}`, kind: KindLocalized},
		{name: "json-ld value object", raw: `{"@value": "Map of Boston", "@language": "en"}`, kind: KindPlain},
		{name: "array of value objects", raw: `[{"@value": "Map of Boston"}, {"@value": "Second"}]`, kind: KindList},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v := decodeValue(t, tt.raw)
			assert.Equal(t, tt.kind, v.Kind())

			got, ok := v.First()
			assert.True(t, ok)
			assert.Equal(t, "Map of Boston", got)
		})
	}
}

func TestValueLastSelection(t *testing.T) {
	tests := []struct {
		name string
		raw  string
	}{
		{name: "array", raw: `["a", "b", "final"]`},
		{name: "language map single language", raw: `{"en": ["a", "b", "final"]}`},
		{name: "language map across languages", raw: `{"en": ["a"], "fr": ["b", "final"]}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := decodeValue(t, tt.raw).Normalize(Policy{Position: Last})
			assert.True(t, ok)
			assert.Equal(t, "final", got)
		})
	}
}

func TestValueLanguageMapKeepsDeclarationOrder(t *testing.T) {
	v := decodeValue(t, `{"none": ["zeta"], "de": ["Karte"], "en": ["Map"]}`)

	assert.Equal(t, []string{"zeta", "Karte", "Map"}, v.Strings())
	assert.Equal(t, "zeta", v.String())
}

func TestValueLanguagePreference(t *testing.T) {
	v := decodeValue(t, `{"de": ["Karte"], "en": ["Map"], "none": ["?"]}`)

	tests := []struct {
		name  string
		prefs []language.Tag
		want  string
	}{
		{name: "no preference takes first declared", prefs: nil, want: "Karte"},
		{name: "exact match", prefs: []language.Tag{language.English}, want: "Map"},
		{name: "regional variant matches base", prefs: []language.Tag{language.BritishEnglish}, want: "Map"},
		{name: "missing language falls back", prefs: []language.Tag{language.Japanese}, want: "Karte"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := v.Normalize(Policy{Languages: tt.prefs})
			assert.True(t, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestValueAbsentAndBlank(t *testing.T) {
	tests := []struct {
		name string
		raw  string
	}{
		{name: "null", raw: `null`},
		{name: "blank string", raw: `"   "`},
		{name: "empty array", raw: `[]`},
		{name: "empty language map", raw: `{}`},
		{name: "language with no values", raw: `{"en": []}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := decodeValue(t, tt.raw).First()
			assert.False(t, ok)
			assert.Empty(t, got)
		})
	}

	var zero Value
	assert.True(t, zero.IsAbsent())
	assert.Empty(t, zero.String())
}

func TestValueScalarLiterals(t *testing.T) {
	assert.Equal(t, "1920", decodeValue(t, `1920`).String())
	assert.Equal(t, "true", decodeValue(t, `true`).String())
	assert.Equal(t, []string{"1", "2"}, decodeValue(t, `[1, 2]`).Strings())
}

func TestValueConstructors(t *testing.T) {
	v := Localized(LangValues{Lang: "en", Values: []string{"one", "two"}})
	last, ok := v.Normalize(Policy{Position: Last})
	assert.True(t, ok)
	assert.Equal(t, "two", last)

	assert.Equal(t, "x", Plain(" x ").String())
	assert.Equal(t, "a", List("a", "b").String())
}
