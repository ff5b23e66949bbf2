// Package catalog orchestrates the crawl: category discovery from the index
// page, per-category API paging through the schema-light extractor, and the
// detail pipeline. It owns the run-scoped dedup set and all pacing between
// requests; the extractor packages it drives stay pure.
package catalog

import (
	"context"
	"log/slog"
	"math/rand"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"bgg-go-crawler/internal/assemble"
	"bgg-go-crawler/internal/config"
	"bgg-go-crawler/internal/fetch"
	"bgg-go-crawler/internal/jsonish"
	"bgg-go-crawler/internal/markup"
	"bgg-go-crawler/internal/models"
	"bgg-go-crawler/internal/textscan"
)

type Crawler struct {
	client *fetch.Client
	cfg    config.Config
	policy assemble.Policy
	specs  []jsonish.FieldSpec
}

func New(client *fetch.Client, cfg config.Config) *Crawler {
	return &Crawler{
		client: client,
		cfg:    cfg,
		policy: assemble.Policy{
			ExpansionMarkers:      cfg.Extract.ExpansionMarkers,
			ExpansionPathSegments: cfg.Extract.ExpansionPathSegments,
			RequireYear:           cfg.Extract.RequireYear,
		},
		specs: assemble.ItemSpecs(cfg.Extract.ImagePrecedence),
	}
}

var categoryPathRe = regexp.MustCompile(`^/boardgamecategory/(\d+)(/|$)`)

// Categories scrapes the category index page into an ordered, deduplicated
// list. Anchors without a numeric category id are skipped. The index page
// is collaborator glue, not extractor input, so a DOM parse is fine here.
func (c *Crawler) Categories(ctx context.Context) ([]models.Category, error) {
	text, err := c.client.Text(ctx, c.cfg.IndexURL)
	if err != nil {
		return nil, err
	}
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(text))
	if err != nil {
		return nil, err
	}

	var cats []models.Category
	seen := make(map[string]struct{})
	doc.Find(`a[href^="/boardgamecategory/"]`).Each(func(_ int, s *goquery.Selection) {
		href, _ := s.Attr("href")
		m := categoryPathRe.FindStringSubmatch(href)
		if m == nil {
			return
		}
		name := textscan.CleanHTML(s.Text())
		if name == "" {
			return
		}
		abs := assemble.AbsoluteURL(c.cfg.SiteRoot, href)
		if _, dup := seen[abs]; dup {
			return
		}
		seen[abs] = struct{}{}

		id, err := strconv.Atoi(m[1])
		if err != nil {
			slog.Warn("skipping category without numeric id", "href", href)
			return
		}
		cats = append(cats, models.Category{ID: id, Name: name, URL: abs})
	})
	return cats, nil
}

// CrawlCategory pages through one category's linked items, assembling
// summary records until the page cap or the per-category target is reached.
// A fetch failure or an empty page ends the category; it is never fatal.
func (c *Crawler) CrawlCategory(ctx context.Context, cat models.Category, seen *assemble.DedupSet, stats *assemble.Stats) []models.GameSummary {
	var rows []models.GameSummary
	upgraded := 0

	for page := 1; page <= c.cfg.Crawl.MaxPagesPerCategory; page++ {
		slog.Info("fetching category page", "category", cat.Name, "page", page)

		text, err := c.client.Text(ctx, c.client.LinkedItemsURL(cat.ID, page, c.cfg.Crawl.ShowCount))
		if err != nil {
			slog.Warn("category page fetch failed", "category", cat.Name, "page", page, "err", err)
			break
		}
		items := jsonish.ParseItems(text, c.cfg.Extract.ArrayKeys, c.specs)
		if len(items) == 0 {
			break
		}

		for _, fields := range items {
			rec, ok := assemble.Summary(cat.Name, fields, c.cfg.SiteRoot, c.policy, seen, stats)
			if !ok {
				continue
			}

			if c.cfg.Crawl.UpgradeImages && upgraded < c.cfg.Crawl.MaxUpgradesPerCat && rec.URL != "" {
				if img := c.upgradeImage(ctx, rec.URL); img != "" {
					rec.ImageURL = img
				}
				upgraded++
				c.sleepJitter(ctx, c.cfg.Crawl.UpgradeDelayMinMs, c.cfg.Crawl.UpgradeDelayMaxMs)
			}

			rows = append(rows, rec)
			if len(rows) >= c.cfg.Crawl.TargetPerCategory {
				return rows
			}
		}

		c.sleepJitter(ctx, c.cfg.Crawl.APIDelayMinMs, c.cfg.Crawl.APIDelayMaxMs)
	}
	return rows
}

// upgradeImage fetches the game's canonical page and returns a
// higher-fidelity image from its open-graph tag, or the image_src link as a
// fallback. Empty means keep the API-picked image.
func (c *Crawler) upgradeImage(ctx context.Context, pageURL string) string {
	text, err := c.client.Text(ctx, pageURL)
	if err != nil {
		slog.Debug("image upgrade fetch failed", "url", pageURL, "err", err)
		return ""
	}
	page := markup.ExtractPage(text)
	if page.OGImage != "" {
		return assemble.AbsoluteURL(c.cfg.SiteRoot, strings.TrimSpace(page.OGImage))
	}
	if page.ImageSrc != "" {
		return assemble.AbsoluteURL(c.cfg.SiteRoot, strings.TrimSpace(page.ImageSrc))
	}
	return ""
}

// Run executes the full category crawl over the configured window and
// returns every assembled summary plus the drop diagnostics.
func (c *Crawler) Run(ctx context.Context) ([]models.GameSummary, assemble.Stats, error) {
	var stats assemble.Stats

	cats, err := c.Categories(ctx)
	if err != nil {
		return nil, stats, err
	}
	slog.Info("categories discovered", "count", len(cats))

	start := c.cfg.Crawl.StartCategory
	end := c.cfg.Crawl.EndCategory
	if start < 0 {
		start = 0
	}
	if end < 0 || end > len(cats) {
		end = len(cats)
	}
	if start > end {
		start = end
	}
	window := cats[start:end]
	slog.Info("category window", "start", start, "end", end, "count", len(window))

	seen := assemble.NewDedupSet()
	var all []models.GameSummary
	for _, cat := range window {
		rows := c.CrawlCategory(ctx, cat, seen, &stats)
		all = append(all, rows...)
		if err := ctx.Err(); err != nil {
			return all, stats, err
		}
	}
	slog.Info("crawl finished",
		"rows", len(all),
		"distinct_ids", seen.Len(),
		"dropped", stats.Dropped(),
		"no_id", stats.NoID,
		"no_year", stats.NoYear,
		"expansions", stats.ExpansionsSkipped,
		"duplicates", stats.DuplicatesSkipped,
	)
	return all, stats, nil
}

// sleepJitter pauses for a random duration in [minMs, maxMs], honoring
// cancellation. Zero bounds disable the pause (tests).
func (c *Crawler) sleepJitter(ctx context.Context, minMs, maxMs int) {
	if maxMs <= 0 {
		return
	}
	if minMs > maxMs {
		minMs = maxMs
	}
	d := time.Duration(minMs+rand.Intn(maxMs-minMs+1)) * time.Millisecond
	select {
	case <-ctx.Done():
	case <-time.After(d):
	}
}
