package catalog

import (
	"context"
	"log/slog"
	"regexp"
	"strconv"
	"strings"

	"bgg-go-crawler/internal/assemble"
	"bgg-go-crawler/internal/jsonish"
	"bgg-go-crawler/internal/markup"
	"bgg-go-crawler/internal/models"
)

var gamePathIDRe = regexp.MustCompile(`/boardgame(?:expansion)?/(\d+)`)

// Details runs the detail pipeline over a list of game page urls: HTML page
// first (images plus title/description fallbacks), then the thing XML, then
// optionally the image gallery. A url whose page cannot be fetched or whose
// game id cannot be recovered is skipped; a failed XML fetch degrades to
// HTML-only values instead of dropping the record.
func (c *Crawler) Details(ctx context.Context, urls []string) []models.GameDetail {
	var out []models.GameDetail
	for i, raw := range urls {
		pageURL := assemble.AbsoluteURL(c.cfg.SiteRoot, strings.TrimSpace(raw))
		if pageURL == "" {
			continue
		}
		slog.Info("detail page", "n", i+1, "total", len(urls), "url", pageURL)

		htmlText, err := c.client.Text(ctx, pageURL)
		if err != nil {
			slog.Warn("detail page fetch failed", "url", pageURL, "err", err)
			continue
		}
		page := markup.ExtractPage(htmlText)

		m := gamePathIDRe.FindStringSubmatch(pageURL)
		if m == nil {
			m = gamePathIDRe.FindStringSubmatch(htmlText)
		}
		if m == nil {
			slog.Warn("no game id in url or page", "url", pageURL)
			continue
		}
		gameID := m[1]

		var thing markup.Thing
		xmlText, err := c.client.Text(ctx, c.client.ThingURL(gameID))
		if err != nil {
			slog.Warn("thing XML fetch failed, keeping HTML-only values", "id", gameID, "err", err)
		} else {
			thing = markup.ExtractThing(xmlText)
		}

		var gallery []string
		if c.cfg.Details.FetchGallery {
			gallery = c.galleryImages(ctx, gameID)
			if len(gallery) == 0 {
				gallery = c.galleryFromHTML(ctx, gameID)
			}
			c.sleepJitter(ctx, c.cfg.Details.GalleryDelayMinMs, c.cfg.Details.GalleryDelayMaxMs)
		}

		out = append(out, assemble.Detail(pageURL, c.cfg.SiteRoot, thing, page, gallery))

		if ctx.Err() != nil {
			break
		}
		c.sleepJitter(ctx, c.cfg.Details.PageDelayMinMs, c.cfg.Details.PageDelayMaxMs)
	}
	return out
}

// gallery image fields in preference order; the page-level urls are plain
// JSON strings, no nesting involved.
var galleryImageSpecs = []jsonish.FieldSpec{
	jsonish.StringField("image", "imageurl_lg"),
	jsonish.StringField("image", "imageurl@2x"),
	jsonish.StringField("image", "imageurl"),
}

var galleryPageSpecs = []jsonish.FieldSpec{
	jsonish.NumberField("per_page", "perPage"),
	jsonish.NumberField("total", "total"),
}

// galleryImages walks the images API page by page, collecting CDN-hosted
// image urls by preference (lg, @2x, standard) until the configured limit.
// Pagination comes from the perPage/total fields of the first page; when
// total is absent the page's own image count caps the walk.
func (c *Crawler) galleryImages(ctx context.Context, gameID string) []string {
	limit := c.cfg.Details.MaxGalleryImages
	if limit <= 0 {
		return nil
	}

	var out []string
	seen := make(map[string]struct{})
	perPage := 24
	total := -1

	for page := 1; len(out) < limit; page++ {
		apiURL := c.client.ImagesURL(gameID, page, perPage,
			c.cfg.Details.GallerySize, c.cfg.Details.GalleryName, c.cfg.Details.GallerySort)
		text, err := c.client.Text(ctx, apiURL)
		if err != nil {
			slog.Debug("gallery API fetch failed", "id", gameID, "page", page, "err", err)
			break
		}

		var pageURLs []string
		for _, spec := range galleryImageSpecs {
			for _, u := range jsonish.ExtractAll(text, spec) {
				u = assemble.AbsoluteURL(c.cfg.SiteRoot, u)
				if !strings.Contains(u, c.cfg.ImageCDNHost) {
					continue
				}
				pageURLs = append(pageURLs, u)
			}
		}
		for _, u := range pageURLs {
			if _, dup := seen[u]; dup {
				continue
			}
			seen[u] = struct{}{}
			out = append(out, u)
			if len(out) >= limit {
				break
			}
		}

		if total < 0 {
			pagination := jsonish.ExtractFields(text, galleryPageSpecs)
			perPage = positiveOr(pagination["per_page"], perPage)
			total = positiveOr(pagination["total"], len(pageURLs))
		}

		maxPage := 1
		if perPage > 0 {
			maxPage = (total + perPage - 1) / perPage
		}
		if page >= maxPage {
			break
		}
		c.sleepJitter(ctx, c.cfg.Details.GalleryDelayMinMs, c.cfg.Details.GalleryDelayMaxMs)
	}
	return out
}

// galleryFromHTML scrapes the gallery page's <img> tags as a fallback when
// the images API yields nothing.
func (c *Crawler) galleryFromHTML(ctx context.Context, gameID string) []string {
	galleryURL := c.cfg.SiteRoot + "/boardgame/" + gameID + "/images"
	text, err := c.client.Text(ctx, galleryURL)
	if err != nil {
		slog.Debug("gallery page fetch failed", "id", gameID, "err", err)
		return nil
	}
	var out []string
	for _, src := range markup.ImageSources(text) {
		if !strings.Contains(src, c.cfg.ImageCDNHost) {
			continue
		}
		out = append(out, assemble.AbsoluteURL(c.cfg.SiteRoot, src))
		if len(out) >= c.cfg.Details.MaxGalleryImages {
			break
		}
	}
	return out
}

func positiveOr(raw string, fallback int) int {
	n, err := strconv.Atoi(raw)
	if err != nil || n <= 0 {
		return fallback
	}
	return n
}
