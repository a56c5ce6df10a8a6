package iiif

import (
	"bytes"
	"encoding/json"
	"strings"

	"golang.org/x/text/language"
)

// Kind identifies which IIIF label/value encoding a Value carries.
type Kind int

const (
	KindAbsent Kind = iota
	KindPlain
	KindList
	KindLocalized
)

// LangValues is one language-map entry. Entries keep the order they were
// declared in the document.
type LangValues struct {
	Lang   string
	Values []string
}

// Value is a IIIF label or metadata value. Manifests in the wild encode these
// as a plain string, an array of strings, or a language map of string arrays;
// Value holds exactly one of those shapes.
type Value struct {
	kind      Kind
	plain     string
	list      []string
	localized []LangValues
}

// Plain returns a Value holding a single string.
func Plain(s string) Value {
	return Value{kind: KindPlain, plain: s}
}

// List returns a Value holding an ordered list of strings.
func List(items ...string) Value {
	return Value{kind: KindList, list: items}
}

// Localized returns a Value holding a language map.
func Localized(entries ...LangValues) Value {
	return Value{kind: KindLocalized, localized: entries}
}

func (v Value) Kind() Kind {
	return v.kind
}

// IsAbsent reports whether the field was missing or null.
func (v Value) IsAbsent() bool {
	return v.kind == KindAbsent
}

// Strings returns every string carried by the value in declaration order.
func (v Value) Strings() []string {
	switch v.kind {
	case KindPlain:
		return []string{v.plain}
	case KindList:
		return append([]string(nil), v.list...)
	case KindLocalized:
		return flatten(v.localized)
	default:
		return nil
	}
}

// Position selects which element of a multi-valued field is used.
type Position int

const (
	First Position = iota
	Last
)

// Policy controls how a Value collapses to one string. The zero Policy picks
// the first element across all languages.
type Policy struct {
	Position  Position
	Languages []language.Tag
}

// Normalize collapses the value to a single trimmed string. The boolean is
// false when the field is absent or the selected element is blank.
func (v Value) Normalize(p Policy) (string, bool) {
	var candidates []string
	switch v.kind {
	case KindPlain:
		return trimmed(v.plain)
	case KindList:
		candidates = v.list
	case KindLocalized:
		candidates = v.localizedCandidates(p.Languages)
	default:
		return "", false
	}

	if len(candidates) == 0 {
		return "", false
	}
	if p.Position == Last {
		return trimmed(candidates[len(candidates)-1])
	}
	return trimmed(candidates[0])
}

// First is Normalize with the zero Policy.
func (v Value) First() (string, bool) {
	return v.Normalize(Policy{})
}

// String returns the first normalized element, or "" when there is none.
func (v Value) String() string {
	s, _ := v.First()
	return s
}

// localizedCandidates picks the values of the best matching language. Without
// preferences, or when nothing matches, every language is flattened in
// declaration order.
func (v Value) localizedCandidates(prefs []language.Tag) []string {
	if len(prefs) == 0 {
		return flatten(v.localized)
	}

	var supported []language.Tag
	var entryIndex []int
	for i, entry := range v.localized {
		if entry.Lang == "none" || entry.Lang == "@none" || len(entry.Values) == 0 {
			continue
		}
		tag, err := language.Parse(entry.Lang)
		if err != nil {
			continue
		}
		supported = append(supported, tag)
		entryIndex = append(entryIndex, i)
	}
	if len(supported) == 0 {
		return flatten(v.localized)
	}

	matcher := language.NewMatcher(supported)
	_, idx, confidence := matcher.Match(prefs...)
	if confidence == language.No || idx < 0 || idx >= len(entryIndex) {
		return flatten(v.localized)
	}
	return v.localized[entryIndex[idx]].Values
}

// UnmarshalJSON accepts every label/value encoding, including JSON-LD value
// objects ({"@value": ..., "@language": ...}) used by some v2 publishers.
// Language maps are read token by token so declaration order survives.
func (v *Value) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		*v = Value{}
		return nil
	}

	switch data[0] {
	case '"':
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*v = Plain(s)
	case '[':
		items, err := flattenJSON(data)
		if err != nil {
			return err
		}
		*v = List(items...)
	case '{':
		return v.unmarshalObject(data)
	default:
		// numbers and booleans show up in the wild
		*v = Plain(string(data))
	}
	return nil
}

func (v *Value) unmarshalObject(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	if _, err := dec.Token(); err != nil {
		return err
	}

	var entries []LangValues
	var literal []string
	hasLiteral := false
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return err
		}
		key, _ := tok.(string)

		var raw json.RawMessage
		if err := dec.Decode(&raw); err != nil {
			return err
		}

		values, err := flattenJSON(raw)
		if err != nil {
			return err
		}
		if key == "@value" {
			literal = values
			hasLiteral = true
			continue
		}
		if strings.HasPrefix(key, "@") {
			continue
		}
		entries = append(entries, LangValues{Lang: key, Values: values})
	}

	if hasLiteral {
		if len(literal) == 0 {
			*v = Value{}
			return nil
		}
		*v = Plain(literal[0])
		return nil
	}
	*v = Localized(entries...)
	return nil
}

// flattenJSON turns a JSON fragment into the strings it carries: strings,
// arrays of strings, JSON-LD value objects and scalar literals.
func flattenJSON(raw json.RawMessage) ([]string, error) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 {
		return nil, nil
	}

	switch raw[0] {
	case '"':
		var s string
		if err := json.Unmarshal(raw, &s); err != nil {
			return nil, err
		}
		return []string{s}, nil
	case '[':
		var items []json.RawMessage
		if err := json.Unmarshal(raw, &items); err != nil {
			return nil, err
		}
		var out []string
		for _, item := range items {
			values, err := flattenJSON(item)
			if err != nil {
				return nil, err
			}
			out = append(out, values...)
		}
		return out, nil
	case '{':
		var obj struct {
			Value json.RawMessage `json:"@value"`
		}
		if err := json.Unmarshal(raw, &obj); err != nil {
			return nil, err
		}
		if obj.Value == nil {
			return nil, nil
		}
		return flattenJSON(obj.Value)
	case 'n':
		return nil, nil
	default:
		return []string{string(raw)}, nil
	}
}

func flatten(entries []LangValues) []string {
	var out []string
	for _, entry := range entries {
		out = append(out, entry.Values...)
	}
	return out
}

func trimmed(s string) (string, bool) {
	s = strings.TrimSpace(s)
	return s, s != ""
}
