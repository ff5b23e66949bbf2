// Package config holds the crawl configuration. The extractor packages
// never read files; everything schema-dependent (candidate array keys,
// expansion markers, image alias precedence) reaches them as plain data from
// here, so upstream schema drift is a config edit rather than a code change.
package config

import (
	"errors"
	"fmt"
	"os"

	"github.com/pelletier/go-toml/v2"
)

type Config struct {
	SiteRoot     string `toml:"site_root"`
	IndexURL     string `toml:"index_url"`
	APIBase      string `toml:"api_base"`
	UserAgent    string `toml:"user_agent"`
	ImageCDNHost string `toml:"image_cdn_host"`

	Fetch   Fetch   `toml:"fetch"`
	Crawl   Crawl   `toml:"crawl"`
	Details Details `toml:"details"`
	Extract Extract `toml:"extract"`
}

// Fetch tunes the transport layer.
type Fetch struct {
	TimeoutSeconds    int     `toml:"timeout_seconds"`
	MaxRetries        int     `toml:"max_retries"`
	RequestsPerSecond float64 `toml:"requests_per_second"`
	Burst             int     `toml:"burst"`
}

// Crawl tunes the category crawl. EndCategory is exclusive; -1 means crawl
// to the end of the index.
type Crawl struct {
	StartCategory       int  `toml:"start_category"`
	EndCategory         int  `toml:"end_category"`
	MaxPagesPerCategory int  `toml:"max_pages_per_category"`
	ShowCount           int  `toml:"show_count"`
	TargetPerCategory   int  `toml:"target_per_category"`
	UpgradeImages       bool `toml:"upgrade_images"`
	MaxUpgradesPerCat   int  `toml:"max_upgrades_per_category"`

	// jittered inter-request delays, milliseconds
	APIDelayMinMs     int `toml:"api_delay_min_ms"`
	APIDelayMaxMs     int `toml:"api_delay_max_ms"`
	UpgradeDelayMinMs int `toml:"upgrade_delay_min_ms"`
	UpgradeDelayMaxMs int `toml:"upgrade_delay_max_ms"`
}

// Details tunes the detail pipeline.
type Details struct {
	FetchGallery      bool   `toml:"fetch_gallery"`
	MaxGalleryImages  int    `toml:"max_gallery_images"`
	GallerySize       string `toml:"gallery_size"`
	GallerySort       string `toml:"gallery_sort"`
	GalleryName       string `toml:"gallery_name"`
	PageDelayMinMs    int    `toml:"page_delay_min_ms"`
	PageDelayMaxMs    int    `toml:"page_delay_max_ms"`
	GalleryDelayMinMs int    `toml:"gallery_delay_min_ms"`
	GalleryDelayMaxMs int    `toml:"gallery_delay_max_ms"`
}

// Extract is the data the schema-light extractor is parameterized with.
type Extract struct {
	ArrayKeys             []string `toml:"array_keys"`
	ExpansionMarkers      []string `toml:"expansion_markers"`
	ExpansionPathSegments []string `toml:"expansion_path_segments"`
	ImagePrecedence       []string `toml:"image_precedence"`
	RequireYear           bool     `toml:"require_year"`
}

// Default mirrors the upstream BGG endpoints and conservative pacing.
func Default() Config {
	return Config{
		SiteRoot:     "https://boardgamegeek.com",
		IndexURL:     "https://boardgamegeek.com/browse/boardgamecategory",
		APIBase:      "https://api.geekdo.com",
		UserAgent:    "Mozilla/5.0",
		ImageCDNHost: "cf.geekdo-images.com",
		Fetch: Fetch{
			TimeoutSeconds:    25,
			MaxRetries:        5,
			RequestsPerSecond: 3,
			Burst:             1,
		},
		Crawl: Crawl{
			StartCategory:       0,
			EndCategory:         -1,
			MaxPagesPerCategory: 3,
			ShowCount:           25,
			TargetPerCategory:   50,
			UpgradeImages:       true,
			MaxUpgradesPerCat:   120,
			APIDelayMinMs:       200,
			APIDelayMaxMs:       400,
			UpgradeDelayMinMs:   250,
			UpgradeDelayMaxMs:   500,
		},
		Details: Details{
			FetchGallery:      true,
			MaxGalleryImages:  12,
			GallerySize:       "large",
			GallerySort:       "recent",
			GalleryName:       "game",
			PageDelayMinMs:    250,
			PageDelayMaxMs:    600,
			GalleryDelayMinMs: 350,
			GalleryDelayMaxMs: 800,
		},
		Extract: Extract{
			ArrayKeys:        []string{"items", "linkeditems", "results"},
			ExpansionMarkers: []string{"boardgameexpansion"},
			ExpansionPathSegments: []string{
				"/boardgameexpansion/",
			},
			ImagePrecedence: []string{
				"images.original",
				"imageurl",
				"image",
				"images.large",
				"images.medium",
				"images.small",
			},
			RequireYear: true,
		},
	}
}

// Load returns the defaults overlaid with the TOML file at path. An empty
// path or a missing file yields the plain defaults.
func Load(path string) (Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return cfg, nil
		}
		return cfg, fmt.Errorf("read config: %w", err)
	}
	if err := toml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parse config: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// validate rejects configs the extractor cannot run with. These are
// programmer/operator errors and fail loudly, unlike anything in the
// parsing layer.
func (c Config) validate() error {
	if len(c.Extract.ArrayKeys) == 0 {
		return errors.New("config: extract.array_keys must not be empty")
	}
	if len(c.Extract.ImagePrecedence) == 0 {
		return errors.New("config: extract.image_precedence must not be empty")
	}
	if c.Crawl.ShowCount <= 0 {
		return errors.New("config: crawl.show_count must be positive")
	}
	return nil
}
