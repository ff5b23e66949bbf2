// Package textscan provides the depth-aware scanning primitives used to pull
// structure out of un-parsed response bodies. BGG's ajax endpoints are not
// guaranteed to be strictly well-formed, so instead of a grammar parser the
// whole pipeline is built on balanced-bracket scanning that treats quoted
// strings as opaque: a brace inside "images/{hash}.png" never changes depth.
//
// All functions here are pure and never fail on malformed input; a truncated
// or inconsistent region simply reports not-found.
package textscan

import (
	"regexp"
	"strconv"
	"strings"
)

// SliceBalanced returns the substring of text spanning one balanced bracket
// region, from the open bracket at start to the close that brings nesting
// depth back to zero, inclusive. Bracket characters inside quoted strings are
// ignored; an escaped quote does not terminate a string.
//
// The second return value is false when text[start] is not the open bracket
// or the region never closes (truncated input).
func SliceBalanced(text string, start int, open, close byte) (string, bool) {
	if start < 0 || start >= len(text) || text[start] != open {
		return "", false
	}

	depth := 0
	inString := false
	escaped := false

	for i := start; i < len(text); i++ {
		ch := text[i]
		if inString {
			switch {
			case escaped:
				escaped = false
			case ch == '\\':
				escaped = true
			case ch == '"':
				inString = false
			}
			continue
		}
		switch ch {
		case '"':
			inString = true
		case open:
			depth++
		case close:
			depth--
			if depth == 0 {
				return text[start : i+1], true
			}
		}
	}
	return "", false
}

// keyArrayPattern matches `"<key>" : [` and is anchored on the opening
// bracket via the match end.
func keyArrayPattern(key string) *regexp.Regexp {
	return regexp.MustCompile(`(?i)"` + regexp.QuoteMeta(key) + `"\s*:\s*\[`)
}

// LocateArray finds the first array held under one of the candidate key
// names and returns its full balanced text, brackets included. Candidates
// are tried in list order and the first key that matches anywhere in text
// wins. If no key matches but the input itself is an array (its first
// non-space byte is '['), that whole array is used as a fallback.
func LocateArray(text string, candidateKeys []string) (string, bool) {
	for _, key := range candidateKeys {
		loc := keyArrayPattern(key).FindStringIndex(text)
		if loc == nil {
			continue
		}
		// the pattern always ends on '['
		if arr, ok := SliceBalanced(text, loc[1]-1, '[', ']'); ok {
			return arr, true
		}
	}

	lead := len(text) - len(strings.TrimLeft(text, " \t\r\n"))
	if lead < len(text) && text[lead] == '[' {
		return SliceBalanced(text, lead, '[', ']')
	}
	return "", false
}

// SplitTopLevel splits array text into its top-level `{...}` chunks. The one
// outer pair of array brackets is stripped, then braces are counted with the
// same string-aware scan as SliceBalanced: a chunk opens when depth goes
// 0 -> 1 and closes when it returns to 0. Separators between chunks are
// irrelevant. Malformed or empty arrays yield no chunks; a chunk left open
// at end of input is discarded.
func SplitTopLevel(arrayText string) []string {
	s := strings.TrimSpace(arrayText)
	s = strings.TrimPrefix(s, "[")
	s = strings.TrimSuffix(s, "]")

	var chunks []string
	depth := 0
	inString := false
	escaped := false
	chunkStart := -1

	for i := 0; i < len(s); i++ {
		ch := s[i]
		if inString {
			switch {
			case escaped:
				escaped = false
			case ch == '\\':
				escaped = true
			case ch == '"':
				inString = false
			}
			continue
		}
		switch ch {
		case '"':
			inString = true
		case '{':
			if depth == 0 {
				chunkStart = i
			}
			depth++
		case '}':
			depth--
			if depth == 0 && chunkStart >= 0 {
				chunks = append(chunks, s[chunkStart:i+1])
				chunkStart = -1
			}
		}
	}
	return chunks
}

var unicodeEscapeRe = regexp.MustCompile(`\\u([0-9a-fA-F]{4})`)

// escapeReplacer resolves the common JSON escape pairs in a single pass, so
// the backslash of an already-resolved pair can never be unescaped twice.
var escapeReplacer = strings.NewReplacer(
	`\"`, `"`,
	`\/`, `/`,
	`\\`, `\`,
	`\b`, "\b",
	`\f`, "\f",
	`\n`, "\n",
	`\r`, "\r",
	`\t`, "\t",
)

// UnescapeJSON converts the textual escapes found in JSON string values into
// their characters: 4-hex-digit unicode escapes first, then the fixed pair
// set (quote, slash, backslash, backspace, form-feed, newline, carriage
// return, tab). Input that carries no escapes is returned unchanged.
func UnescapeJSON(s string) string {
	if s == "" {
		return s
	}
	if strings.Contains(s, `\u`) {
		s = unicodeEscapeRe.ReplaceAllStringFunc(s, func(m string) string {
			code, err := strconv.ParseUint(m[2:], 16, 32)
			if err != nil {
				return m
			}
			return string(rune(code))
		})
	}
	return escapeReplacer.Replace(s)
}
