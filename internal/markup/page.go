package markup

import (
	"regexp"

	"bgg-go-crawler/internal/textscan"
)

var (
	ogImageRe = regexp.MustCompile(
		`(?i)<meta[^>]+property=["']og:image["'][^>]+content=["']([^"']+)["']`)
	imageSrcLinkRe = regexp.MustCompile(
		`(?i)<link[^>]+rel=["']image_src["'][^>]+href=["']([^"']+)["']`)
	headingRe   = regexp.MustCompile(`(?is)<h1[^>]*>(.*?)</h1>`)
	descBlockRe = regexp.MustCompile(`(?is)<h2[^>]*>\s*Description\s*</h2>(.*?)</section>`)
	metaDescRe  = regexp.MustCompile(
		`(?i)<meta\s+name=["']description["']\s+content=["']([^"']+)["']`)
	imgTagRe = regexp.MustCompile(`(?i)<img[^>]+src=["']([^"']+)["']`)
)

// Page holds the raw pieces extracted from a game's HTML page. The
// assembler decides which piece wins when several could fill the same
// record field.
type Page struct {
	OGImage          string
	ImageSrc         string
	Heading          string
	DescriptionBlock string
	MetaDescription  string
}

// ExtractPage scans a game page for images, the heading title and the two
// description candidates.
func ExtractPage(htmlText string) Page {
	p := Page{
		OGImage:  firstGroup(ogImageRe, htmlText),
		ImageSrc: firstGroup(imageSrcLinkRe, htmlText),
		Heading:  textscan.CleanHTML(firstGroup(headingRe, htmlText)),
	}
	if m := descBlockRe.FindStringSubmatch(htmlText); m != nil {
		p.DescriptionBlock = textscan.CleanHTML(m[1])
	}
	if m := metaDescRe.FindStringSubmatch(htmlText); m != nil {
		p.MetaDescription = textscan.CleanHTML(m[1])
	}
	return p
}

// ImageSources returns every <img src> in document order.
func ImageSources(htmlText string) []string {
	matches := imgTagRe.FindAllStringSubmatch(htmlText, -1)
	srcs := make([]string, 0, len(matches))
	for _, m := range matches {
		srcs = append(srcs, m[1])
	}
	return srcs
}
