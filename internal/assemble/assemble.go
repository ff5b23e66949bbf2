// Package assemble turns extracted field maps into domain records. It owns
// the identity and policy rules: game id resolution, expansion exclusion,
// required-field checks and image precedence. All decisions are pure
// functions of the input fields plus an explicit Policy; the only mutable
// collaborator is the run-scoped DedupSet, which is injected by the caller.
package assemble

import (
	"regexp"
	"strconv"
	"strings"

	"bgg-go-crawler/internal/jsonish"
	"bgg-go-crawler/internal/models"
)

// Field names used in the JSON-ish FieldMaps built by ItemSpecs.
const (
	FieldID      = "id"
	FieldName    = "name"
	FieldYear    = "year"
	FieldHref    = "href"
	FieldURL     = "url"
	FieldSubtype = "subtype"
	FieldType    = "type"
	FieldImage   = "image"
)

// Policy holds the configurable assembly rules. Zero values are not useful;
// start from DefaultPolicy.
type Policy struct {
	// ExpansionMarkers are subtype/type values that mark an item as an
	// expansion (case-insensitive equality).
	ExpansionMarkers []string
	// ExpansionPathSegments mark an item as an expansion when found inside
	// its href or url path.
	ExpansionPathSegments []string
	// RequireYear drops summary records without a year. The upstream data
	// mostly carries one; disabling this keeps real games that lack it.
	RequireYear bool
}

// DefaultPolicy matches upstream BGG conventions.
func DefaultPolicy() Policy {
	return Policy{
		ExpansionMarkers:      []string{"boardgameexpansion"},
		ExpansionPathSegments: []string{"/boardgameexpansion/"},
		RequireYear:           true,
	}
}

// Stats counts records that were considered but not emitted. They are
// diagnostics, never errors.
type Stats struct {
	NoID              int
	NoName            int
	NoYear            int
	ExpansionsSkipped int
	DuplicatesSkipped int
}

// Dropped is the total number of skipped items.
func (s Stats) Dropped() int {
	return s.NoID + s.NoName + s.NoYear + s.ExpansionsSkipped + s.DuplicatesSkipped
}

// ItemSpecs builds the field specs applied to every item chunk of an API
// response. imagePrecedence is an ordered alias list for the image field;
// entries written "parent.key" probe one level into a sub-object, bare
// entries are direct fields. All image aliases share one name so the first
// hit wins.
func ItemSpecs(imagePrecedence []string) []jsonish.FieldSpec {
	specs := []jsonish.FieldSpec{
		jsonish.NumberField(FieldID, "objectid", "id"),
		jsonish.StringField(FieldName, "name"),
		jsonish.StringField(FieldName, "objectname"),
		jsonish.NumberField(FieldYear, "yearpublished"),
		jsonish.NumberField(FieldYear, "year"),
		jsonish.StringField(FieldHref, "href"),
		jsonish.StringField(FieldURL, "url"),
		jsonish.StringField(FieldSubtype, "subtype"),
		jsonish.StringField(FieldType, "type"),
	}
	for _, alias := range imagePrecedence {
		if parent, key, nested := strings.Cut(alias, "."); nested {
			specs = append(specs, jsonish.NestedField(FieldImage, parent, key))
		} else {
			specs = append(specs, jsonish.StringField(FieldImage, alias))
		}
	}
	return specs
}

var gamePathIDRe = regexp.MustCompile(`/boardgame(?:expansion)?/(\d+)`)

// GameID resolves an item's numeric game id: explicit id field first, then
// an id parsed out of the href path, then the url path. No id means no
// record.
func GameID(fields jsonish.FieldMap) (int, bool) {
	if raw := fields[FieldID]; raw != "" {
		if id, err := strconv.Atoi(raw); err == nil && id > 0 {
			return id, true
		}
	}
	for _, key := range []string{FieldHref, FieldURL} {
		m := gamePathIDRe.FindStringSubmatch(fields[key])
		if m == nil {
			continue
		}
		if id, err := strconv.Atoi(m[1]); err == nil && id > 0 {
			return id, true
		}
	}
	return 0, false
}

// IsExpansion reports whether the item is an expansion of a base game,
// either by its subtype/type marker or by an expansion segment in its link
// path.
func IsExpansion(fields jsonish.FieldMap, policy Policy) bool {
	marker := fields[FieldSubtype]
	if marker == "" {
		marker = fields[FieldType]
	}
	for _, m := range policy.ExpansionMarkers {
		if strings.EqualFold(marker, m) {
			return true
		}
	}
	for _, key := range []string{FieldHref, FieldURL} {
		link := strings.ToLower(fields[key])
		for _, seg := range policy.ExpansionPathSegments {
			if seg != "" && strings.Contains(link, seg) {
				return true
			}
		}
	}
	return false
}

// AbsoluteURL resolves a scraped link against the site root:
// protocol-relative links get https, absolute paths get the root prefix,
// anything else passes through.
func AbsoluteURL(siteRoot, link string) string {
	switch {
	case link == "":
		return ""
	case strings.HasPrefix(link, "//"):
		return "https:" + link
	case strings.HasPrefix(link, "/"):
		return strings.TrimSuffix(siteRoot, "/") + link
	default:
		return link
	}
}

// ItemURL picks the canonical page link for an item: href, then url, then a
// path synthesized from the game id.
func ItemURL(fields jsonish.FieldMap, siteRoot string) string {
	if href := fields[FieldHref]; href != "" {
		return AbsoluteURL(siteRoot, href)
	}
	if u := fields[FieldURL]; u != "" {
		return AbsoluteURL(siteRoot, u)
	}
	if id, ok := GameID(fields); ok {
		return AbsoluteURL(siteRoot, "/boardgame/"+strconv.Itoa(id))
	}
	return ""
}

// normalizeYear renders a numeric year value as a bare integer string, so a
// quoted "1995.0" comes out as "1995".
func normalizeYear(raw string) string {
	if raw == "" {
		return ""
	}
	f, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return ""
	}
	return strconv.Itoa(int(f))
}

// Summary assembles one GameSummary from an extracted item. It returns
// ok=false and bumps the matching Stats counter when the item is an
// expansion, has no resolvable id, was already seen this run, or misses a
// required field. The id is claimed only when the record is actually
// emitted, so a dropped record never blocks a later complete one; the claim
// itself is the atomic Add, so concurrent assemblers sharing one DedupSet
// still emit an id at most once. Stats stay caller-owned and unsynchronized.
func Summary(category string, fields jsonish.FieldMap, siteRoot string, policy Policy, seen *DedupSet, stats *Stats) (models.GameSummary, bool) {
	if IsExpansion(fields, policy) {
		stats.ExpansionsSkipped++
		return models.GameSummary{}, false
	}

	id, ok := GameID(fields)
	if !ok {
		stats.NoID++
		return models.GameSummary{}, false
	}
	if seen.Contains(id) {
		stats.DuplicatesSkipped++
		return models.GameSummary{}, false
	}

	name := strings.TrimSpace(fields[FieldName])
	if name == "" {
		stats.NoName++
		return models.GameSummary{}, false
	}
	year := normalizeYear(fields[FieldYear])
	if year == "" && policy.RequireYear {
		stats.NoYear++
		return models.GameSummary{}, false
	}

	if !seen.Add(id) {
		stats.DuplicatesSkipped++
		return models.GameSummary{}, false
	}
	return models.GameSummary{
		Category: category,
		Name:     name,
		Year:     year,
		URL:      ItemURL(fields, siteRoot),
		ImageURL: AbsoluteURL(siteRoot, fields[FieldImage]),
	}, true
}
