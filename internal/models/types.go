package models

import "strings"

// PipeList is a string list rendered as "a | b | c" inside a single CSV
// cell. Order is meaningful (first-seen wins upstream).
type PipeList []string

const pipeSeparator = " | "

func (l PipeList) MarshalCSV() (string, error) {
	return strings.Join(l, pipeSeparator), nil
}

func (l *PipeList) UnmarshalCSV(cell string) error {
	if strings.TrimSpace(cell) == "" {
		*l = nil
		return nil
	}
	parts := strings.Split(cell, pipeSeparator)
	out := make(PipeList, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	*l = out
	return nil
}

// GameSummary is one catalog row produced by the category crawl. A summary
// is only emitted when its game id, name and year were all resolvable.
type GameSummary struct {
	Category string `csv:"category" json:"category"`
	Name     string `csv:"name" json:"name"`
	Year     string `csv:"year" json:"year"`
	URL      string `csv:"url" json:"url"`
	ImageURL string `csv:"image_url" json:"imageUrl"`
}

// GameDetail is one row of the detail pipeline, combining the thing XML, the
// game's HTML page and the image gallery. Numeric fields stay strings: they
// are written to CSV verbatim and an absent stat is an empty cell, not a
// zero.
type GameDetail struct {
	URL            string   `csv:"url" json:"url"`
	Title          string   `csv:"title" json:"title"`
	PlayersMin     string   `csv:"players_min" json:"playersMin"`
	PlayersMax     string   `csv:"players_max" json:"playersMax"`
	TimeMin        string   `csv:"time_min" json:"timeMin"`
	TimeMax        string   `csv:"time_max" json:"timeMax"`
	AgePlus        string   `csv:"age_plus" json:"agePlus"`
	Weight         string   `csv:"weight_5" json:"weight"`
	AverageRating  string   `csv:"average_rating" json:"averageRating"`
	Description    string   `csv:"description" json:"description"`
	OGImage        string   `csv:"og_image" json:"ogImage"`
	PrimaryImage   string   `csv:"primary_image" json:"primaryImage"`
	GalleryImages  PipeList `csv:"gallery_images" json:"galleryImages"`
	AlternateNames PipeList `csv:"alternate_names" json:"alternateNames"`
	Designers      PipeList `csv:"designers" json:"designers"`
	Artists        PipeList `csv:"artists" json:"artists"`
	Publishers     PipeList `csv:"publishers" json:"publishers"`
}

// Category is one entry scraped from the category index page.
type Category struct {
	ID   int
	Name string
	URL  string
}
