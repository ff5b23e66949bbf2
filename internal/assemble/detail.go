package assemble

import (
	"bgg-go-crawler/internal/markup"
	"bgg-go-crawler/internal/models"
)

// uniq drops repeated values preserving first-seen order.
func uniq(values []string) models.PipeList {
	if len(values) == 0 {
		return nil
	}
	seen := make(map[string]struct{}, len(values))
	out := make(models.PipeList, 0, len(values))
	for _, v := range values {
		if v == "" {
			continue
		}
		if _, ok := seen[v]; ok {
			continue
		}
		seen[v] = struct{}{}
		out = append(out, v)
	}
	return out
}

// Detail assembles one GameDetail from a thing XML extraction, the game's
// HTML page and an already-collected gallery list. Fallback order: title
// from the XML primary name then the HTML heading; description from the XML
// block, the HTML description section, then the meta description. The
// primary image falls back to the open-graph image. Credit and name lists
// are de-duplicated preserving first appearance.
func Detail(url, siteRoot string, thing markup.Thing, page markup.Page, gallery []string) models.GameDetail {
	title := thing.Title
	if title == "" {
		title = page.Heading
	}

	description := thing.Description
	if description == "" {
		description = page.DescriptionBlock
	}
	if description == "" {
		description = page.MetaDescription
	}

	ogImage := AbsoluteURL(siteRoot, page.OGImage)
	primary := AbsoluteURL(siteRoot, page.ImageSrc)
	if primary == "" {
		primary = ogImage
	}

	return models.GameDetail{
		URL:            url,
		Title:          title,
		PlayersMin:     thing.PlayersMin,
		PlayersMax:     thing.PlayersMax,
		TimeMin:        thing.TimeMin,
		TimeMax:        thing.TimeMax,
		AgePlus:        thing.AgePlus,
		Weight:         thing.Weight,
		AverageRating:  thing.Rating,
		Description:    description,
		OGImage:        ogImage,
		PrimaryImage:   primary,
		GalleryImages:  uniq(gallery),
		AlternateNames: uniq(thing.AltNames),
		Designers:      uniq(thing.Designers),
		Artists:        uniq(thing.Artists),
		Publishers:     uniq(thing.Publishers),
	}
}
