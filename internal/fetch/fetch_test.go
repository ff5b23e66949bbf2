package fetch

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func testClient(siteRoot string) *Client {
	return New(Options{
		UserAgent:         "test-agent",
		Timeout:           5 * time.Second,
		MaxRetries:        2,
		RetryWaitTime:     10 * time.Millisecond,
		RequestsPerSecond: 1000,
		Burst:             10,
		SiteRoot:          siteRoot,
		APIBase:           siteRoot,
	})
}

func TestTextOK(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "test-agent", r.Header.Get("User-Agent"))
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		_, _ = w.Write([]byte("<html>ok</html>"))
	}))
	defer srv.Close()

	got, err := testClient(srv.URL).Text(context.Background(), srv.URL)
	require.NoError(t, err)
	require.Equal(t, "<html>ok</html>", got)
}

func TestTextRetriesOn429(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) == 1 {
			w.WriteHeader(http.StatusTooManyRequests)
			return
		}
		_, _ = w.Write([]byte("recovered"))
	}))
	defer srv.Close()

	got, err := testClient(srv.URL).Text(context.Background(), srv.URL)
	require.NoError(t, err)
	require.Equal(t, "recovered", got)
	require.Equal(t, int32(2), calls.Load())
}

func TestTextNonRetryableStatus(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		http.NotFound(w, r)
	}))
	defer srv.Close()

	_, err := testClient(srv.URL).Text(context.Background(), srv.URL)
	require.Error(t, err)
	require.Contains(t, err.Error(), "http status 404")
	require.Equal(t, int32(1), calls.Load(), "404 must not be retried")
}

func TestTextContextCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := testClient("http://unused").Text(ctx, "http://unused")
	require.Error(t, err)
}

func TestTextNonUTF8Body(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html; charset=iso-8859-1")
		_, _ = w.Write([]byte{'C', 'a', 'f', 0xe9}) // "Café" in latin-1
	}))
	defer srv.Close()

	got, err := testClient(srv.URL).Text(context.Background(), srv.URL)
	require.NoError(t, err)
	require.Equal(t, "Café", got)
}

func TestLinkedItemsURL(t *testing.T) {
	c := testClient("https://api.example")
	got := c.LinkedItemsURL(1017, 2, 50)

	require.Contains(t, got, "https://api.example/api/geekitem/linkeditems?")
	require.Contains(t, got, "objectid=1017")
	require.Contains(t, got, "pageid=2")
	require.Contains(t, got, "showcount=50")
	require.Contains(t, got, "linkdata_index=boardgame")
	require.Contains(t, got, "subtype=boardgamecategory")
}

func TestThingURL(t *testing.T) {
	c := testClient("https://boardgamegeek.com")
	require.Equal(t,
		"https://boardgamegeek.com/xmlapi2/thing?id=13&stats=1",
		c.ThingURL("13"))
}

func TestImagesURL(t *testing.T) {
	c := testClient("https://api.example")
	got := c.ImagesURL("13", 3, 36, "large", "game", "recent")

	require.Contains(t, got, "https://api.example/api/images?")
	require.Contains(t, got, "objectid=13")
	require.Contains(t, got, "pageid=3")
	require.Contains(t, got, "showcount=36")
	require.Contains(t, got, "size=large")
	require.Contains(t, got, "galleries%5B%5D=game")
	require.Contains(t, got, "sort=recent")
}
