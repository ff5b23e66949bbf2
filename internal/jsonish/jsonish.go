// Package jsonish extracts typed fields from JSON-looking text without
// parsing it. Each field is described by a FieldSpec holding a targeted
// pattern; specs are applied independently against one object chunk and are
// allowed to miss. Fallback chains (an image under several alternative keys)
// are expressed by giving several specs the same name in precedence order:
// the first spec that matches wins and later ones are skipped.
package jsonish

import (
	"regexp"
	"strings"

	"bgg-go-crawler/internal/textscan"
)

// FieldMap maps a field name to its normalized value. Keys are absent when
// the field was not found in the chunk; absence is a valid outcome, not an
// error.
type FieldMap map[string]string

// FieldSpec names a field and carries the compiled pattern that recognizes
// one of its representations inside a chunk.
type FieldSpec struct {
	Name string

	re       *regexp.Regexp
	unescape bool
}

func keyAlternation(keys []string) string {
	quoted := make([]string, len(keys))
	for i, k := range keys {
		quoted[i] = regexp.QuoteMeta(k)
	}
	return "(?:" + strings.Join(quoted, "|") + ")"
}

// StringField matches `"key": "value"` where value may contain escape
// sequences. The captured value is unescaped. Several keys act as aliases
// for the same field; the earliest occurrence in the chunk wins.
func StringField(name string, keys ...string) FieldSpec {
	return FieldSpec{
		Name:     name,
		re:       regexp.MustCompile(`(?i)"` + keyAlternation(keys) + `"\s*:\s*"((?:\\.|[^"\\])*)"`),
		unescape: true,
	}
}

// NumberField matches an integer or decimal value, quoted or bare.
func NumberField(name string, keys ...string) FieldSpec {
	return FieldSpec{
		Name: name,
		re:   regexp.MustCompile(`(?i)"` + keyAlternation(keys) + `"\s*:\s*"?(-?\d+(?:\.\d+)?)"?`),
	}
}

// BoolField matches a bare true/false literal.
func BoolField(name string, keys ...string) FieldSpec {
	return FieldSpec{
		Name: name,
		re:   regexp.MustCompile(`(?i)"` + keyAlternation(keys) + `"\s*:\s*(true|false)`),
	}
}

// NestedField matches `"parent": { ... "key": "value" ... }` one level deep,
// e.g. the "original" URL inside an "images" sub-object. The scan does not
// cross into deeper sub-objects.
func NestedField(name, parent, key string) FieldSpec {
	return FieldSpec{
		Name: name,
		re: regexp.MustCompile(
			`(?is)"` + regexp.QuoteMeta(parent) + `"\s*:\s*\{[^{}]*?"` + regexp.QuoteMeta(key) + `"\s*:\s*"(.*?)"`),
		unescape: true,
	}
}

// ExtractFields applies every spec to the chunk and collects the values that
// matched. Specs sharing a name form an ordered fallback chain; once a name
// is present, later specs with that name are skipped. A spec that misses
// contributes nothing.
func ExtractFields(chunk string, specs []FieldSpec) FieldMap {
	fields := make(FieldMap, len(specs))
	for _, spec := range specs {
		if _, done := fields[spec.Name]; done {
			continue
		}
		m := spec.re.FindStringSubmatch(chunk)
		if m == nil {
			continue
		}
		value := m[1]
		if spec.unescape {
			value = textscan.UnescapeJSON(value)
		} else {
			// numeric and boolean literals; lowercases a case-insensitive
			// TRUE/False match, leaves digits alone
			value = strings.ToLower(value)
		}
		fields[spec.Name] = value
	}
	return fields
}

// ExtractAll returns every value of a repeated field in document order,
// normalized the same way ExtractFields would normalize a single match.
func ExtractAll(text string, spec FieldSpec) []string {
	matches := spec.re.FindAllStringSubmatch(text, -1)
	values := make([]string, 0, len(matches))
	for _, m := range matches {
		value := m[1]
		if spec.unescape {
			value = textscan.UnescapeJSON(value)
		} else {
			value = strings.ToLower(value)
		}
		values = append(values, value)
	}
	return values
}

// ParseItems runs the full JSON-ish pipeline on a raw response body: locate
// the array under one of the candidate keys, split it into top-level object
// chunks, extract fields from each. Malformed or array-less input yields an
// empty slice.
func ParseItems(text string, candidateKeys []string, specs []FieldSpec) []FieldMap {
	if text == "" {
		return nil
	}
	arrayText, ok := textscan.LocateArray(text, candidateKeys)
	if !ok {
		return nil
	}
	chunks := textscan.SplitTopLevel(arrayText)
	if len(chunks) == 0 {
		return nil
	}
	items := make([]FieldMap, 0, len(chunks))
	for _, chunk := range chunks {
		items = append(items, ExtractFields(chunk, specs))
	}
	return items
}
