// Package fetch is the HTTP transport feeding the extractor. It owns
// everything the parsing layer must never see: retries with exponential
// backoff on rate limiting and upstream hiccups, request pacing, and
// charset normalization of response bodies. Callers get plain UTF-8 text or
// an error; an exhausted retry budget surfaces as an error the orchestrator
// treats as an empty page.
package fetch

import (
	"context"
	"fmt"
	"net/url"
	"strconv"
	"time"
	"unicode/utf8"

	"github.com/go-resty/resty/v2"
	"golang.org/x/net/html/charset"
	"golang.org/x/time/rate"
)

type Options struct {
	UserAgent         string
	Timeout           time.Duration
	MaxRetries        int
	RetryWaitTime     time.Duration
	RequestsPerSecond float64
	Burst             int
	SiteRoot          string
	APIBase           string
}

type Client struct {
	http     *resty.Client
	limiter  *rate.Limiter
	siteRoot string
	apiBase  string
}

// retryable are the status codes worth backing off for; everything else
// either succeeded or will not get better by waiting.
func retryable(status int) bool {
	switch status {
	case 429, 502, 503, 504:
		return true
	}
	return false
}

func New(opts Options) *Client {
	if opts.Burst <= 0 {
		opts.Burst = 1
	}
	if opts.RequestsPerSecond <= 0 {
		opts.RequestsPerSecond = 3
	}
	if opts.RetryWaitTime <= 0 {
		opts.RetryWaitTime = 2 * time.Second
	}

	httpClient := resty.New().
		SetHeader("User-Agent", opts.UserAgent).
		SetTimeout(opts.Timeout).
		SetRetryCount(opts.MaxRetries).
		SetRetryWaitTime(opts.RetryWaitTime).
		SetRetryMaxWaitTime(10 * opts.RetryWaitTime).
		AddRetryCondition(func(r *resty.Response, err error) bool {
			if err != nil {
				return true
			}
			return retryable(r.StatusCode())
		})

	return &Client{
		http:     httpClient,
		limiter:  rate.NewLimiter(rate.Limit(opts.RequestsPerSecond), opts.Burst),
		siteRoot: opts.SiteRoot,
		apiBase:  opts.APIBase,
	}
}

// Text fetches rawURL and returns the response body as UTF-8 text. The
// limiter paces calls across goroutines; retries and backoff happen inside
// the HTTP client.
func (c *Client) Text(ctx context.Context, rawURL string) (string, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return "", err
	}

	res, err := c.http.R().SetContext(ctx).Get(rawURL)
	if err != nil {
		return "", fmt.Errorf("get %s: %w", rawURL, err)
	}
	if res.StatusCode() < 200 || res.StatusCode() >= 300 {
		return "", fmt.Errorf("get %s: http status %d", rawURL, res.StatusCode())
	}
	return decodeUTF8(res.Body(), res.Header().Get("Content-Type"))
}

// decodeUTF8 converts a response body to UTF-8 using the declared or
// sniffed charset, keeping the raw bytes when they are already valid UTF-8
// and the decoder disagrees.
func decodeUTF8(body []byte, contentType string) (string, error) {
	enc, _, _ := charset.DetermineEncoding(body, contentType)
	decoded, err := enc.NewDecoder().Bytes(body)
	if err != nil {
		if utf8.Valid(body) {
			return string(body), nil
		}
		return "", fmt.Errorf("decode body: %w", err)
	}
	return string(decoded), nil
}

// LinkedItemsURL builds the geekitem linkeditems API call listing the games
// linked to a category property.
func (c *Client) LinkedItemsURL(categoryID, page, showCount int) string {
	q := url.Values{}
	q.Set("ajax", "1")
	q.Set("nosession", "1")
	q.Set("objecttype", "property")
	q.Set("objectid", strconv.Itoa(categoryID))
	q.Set("linkdata_index", "boardgame")
	q.Set("pageid", strconv.Itoa(page))
	q.Set("showcount", strconv.Itoa(showCount))
	q.Set("sort", "name")
	q.Set("subtype", "boardgamecategory")
	return c.apiBase + "/api/geekitem/linkeditems?" + q.Encode()
}

// ThingURL builds the XML API call for one game, stats included.
func (c *Client) ThingURL(gameID string) string {
	return c.siteRoot + "/xmlapi2/thing?id=" + url.QueryEscape(gameID) + "&stats=1"
}

// ImagesURL builds one page of the image gallery API.
func (c *Client) ImagesURL(gameID string, page, perPage int, size, gallery, sort string) string {
	q := url.Values{}
	q.Set("ajax", "1")
	q.Set("foritempage", "1")
	q.Set("nosession", "1")
	q.Add("galleries[]", gallery)
	q.Set("objectid", gameID)
	q.Set("objecttype", "thing")
	q.Set("showcount", strconv.Itoa(perPage))
	q.Set("size", size)
	q.Set("sort", sort)
	q.Set("pageid", strconv.Itoa(page))
	return c.apiBase + "/api/images?" + q.Encode()
}
