// Package markup pulls fields out of XML and HTML text with tag+attribute
// patterns, following the same philosophy as the JSON-ish extractor: no
// document model, every pattern applied independently, a miss is a valid
// outcome. Patterns are non-greedy across a tag but never cross tag
// boundaries.
package markup

import (
	"regexp"
	"strings"

	"bgg-go-crawler/internal/textscan"
)

// attrDigits matches `<tag ... value="123">`, quoted with either quote kind,
// self-closing or not.
func attrDigits(tag string) *regexp.Regexp {
	return regexp.MustCompile(`(?i)<` + tag + `\b[^>]*\svalue=['"](\d+)['"][^>]*/?>`)
}

// attrDecimal is attrDigits for decimal-valued stats such as weight. The tag
// name is word-anchored so "average" never swallows "averageweight".
func attrDecimal(tag string) *regexp.Regexp {
	return regexp.MustCompile(`(?i)<` + tag + `\b[^>]*\svalue=['"]([0-9.]+)['"][^>]*/?>`)
}

// typedValue matches `<tag ... type="<typ>" ... value="...">`.
func typedValue(tag, typ string) *regexp.Regexp {
	return regexp.MustCompile(
		`(?is)<` + tag + `\b[^>]*\stype=['"]` + typ + `['"][^>]*\svalue=['"](.*?)['"][^>]*/?>`)
}

var (
	primaryNameRe = typedValue("name", "primary")
	altNameRe     = typedValue("name", "alternate")

	minPlayersRe = attrDigits("minplayers")
	maxPlayersRe = attrDigits("maxplayers")
	minPlayRe    = attrDigits("minplaytime")
	maxPlayRe    = attrDigits("maxplaytime")
	minAgeRe     = attrDigits("minage")

	weightRe  = attrDecimal("averageweight")
	averageRe = attrDecimal("average")

	descriptionXMLRe = regexp.MustCompile(`(?i)<description>([\s\S]*?)</description>`)

	// credit links carry the person/company name in the value attribute,
	// typed by the link's type attribute
	creditLinkRe = regexp.MustCompile(
		`(?i)<link[^>]*\stype=['"](boardgamedesigner|boardgameartist|boardgamepublisher)['"][^>]*\svalue=['"](.*?)['"][^>]*/?>`)
)

// Credit link types, as they appear in the thing XML.
const (
	CreditDesigner  = "boardgamedesigner"
	CreditArtist    = "boardgameartist"
	CreditPublisher = "boardgamepublisher"
)

// Thing holds everything extracted from one thing XML document. Absent
// fields are empty strings or nil slices.
type Thing struct {
	Title      string
	AltNames   []string
	PlayersMin string
	PlayersMax string
	TimeMin    string
	TimeMax    string
	AgePlus    string
	Weight     string
	Rating     string

	Description string

	Designers  []string
	Artists    []string
	Publishers []string
}

func firstGroup(re *regexp.Regexp, text string) string {
	if m := re.FindStringSubmatch(text); m != nil {
		return m[1]
	}
	return ""
}

// ExtractThing scans a thing XML document. Credit lists keep every
// occurrence in document order; de-duplication is the assembler's job.
func ExtractThing(xmlText string) Thing {
	t := Thing{
		Title:      textscan.CleanHTML(firstGroup(primaryNameRe, xmlText)),
		PlayersMin: firstGroup(minPlayersRe, xmlText),
		PlayersMax: firstGroup(maxPlayersRe, xmlText),
		TimeMin:    firstGroup(minPlayRe, xmlText),
		TimeMax:    firstGroup(maxPlayRe, xmlText),
		AgePlus:    firstGroup(minAgeRe, xmlText),
		Weight:     firstGroup(weightRe, xmlText),
		Rating:     firstGroup(averageRe, xmlText),
	}

	for _, m := range altNameRe.FindAllStringSubmatch(xmlText, -1) {
		if name := textscan.CleanHTML(m[1]); name != "" {
			t.AltNames = append(t.AltNames, name)
		}
	}

	if m := descriptionXMLRe.FindStringSubmatch(xmlText); m != nil {
		t.Description = textscan.CleanHTML(m[1])
	}

	for _, m := range creditLinkRe.FindAllStringSubmatch(xmlText, -1) {
		name := textscan.CleanHTML(m[2])
		if name == "" {
			continue
		}
		switch strings.ToLower(m[1]) {
		case CreditDesigner:
			t.Designers = append(t.Designers, name)
		case CreditArtist:
			t.Artists = append(t.Artists, name)
		case CreditPublisher:
			t.Publishers = append(t.Publishers, name)
		}
	}
	return t
}
