package assemble

import (
	"strconv"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/require"

	"bgg-go-crawler/internal/jsonish"
	"bgg-go-crawler/internal/markup"
	"bgg-go-crawler/internal/models"
)

const siteRoot = "https://boardgamegeek.com"

func TestGameIDResolutionOrder(t *testing.T) {
	id, ok := GameID(jsonish.FieldMap{FieldID: "42", FieldHref: "/boardgame/99/other"})
	require.True(t, ok)
	require.Equal(t, 42, id, "explicit id wins over href")

	id, ok = GameID(jsonish.FieldMap{FieldHref: "/boardgame/99/foo"})
	require.True(t, ok)
	require.Equal(t, 99, id)

	id, ok = GameID(jsonish.FieldMap{FieldURL: "https://boardgamegeek.com/boardgame/7/dice"})
	require.True(t, ok)
	require.Equal(t, 7, id)

	_, ok = GameID(jsonish.FieldMap{FieldName: "anonymous"})
	require.False(t, ok)
}

func TestIsExpansion(t *testing.T) {
	policy := DefaultPolicy()

	require.True(t, IsExpansion(jsonish.FieldMap{FieldSubtype: "boardgameexpansion"}, policy))
	require.True(t, IsExpansion(jsonish.FieldMap{FieldSubtype: "BoardGameExpansion"}, policy))
	require.True(t, IsExpansion(jsonish.FieldMap{FieldType: "boardgameexpansion"}, policy))
	require.True(t, IsExpansion(jsonish.FieldMap{
		FieldHref: "/boardgameexpansion/325/seafarers",
	}, policy))
	require.False(t, IsExpansion(jsonish.FieldMap{FieldSubtype: "boardgame"}, policy))
}

func TestAbsoluteURL(t *testing.T) {
	require.Equal(t, "https://cf.example/x.png", AbsoluteURL(siteRoot, "//cf.example/x.png"))
	require.Equal(t, siteRoot+"/boardgame/13", AbsoluteURL(siteRoot, "/boardgame/13"))
	require.Equal(t, "http://other/x", AbsoluteURL(siteRoot, "http://other/x"))
	require.Equal(t, "", AbsoluteURL(siteRoot, ""))
}

func TestItemURLSynthesized(t *testing.T) {
	got := ItemURL(jsonish.FieldMap{FieldID: "13"}, siteRoot)
	require.Equal(t, siteRoot+"/boardgame/13", got)
}

func TestSummaryHappyPath(t *testing.T) {
	seen := NewDedupSet()
	var stats Stats

	rec, ok := Summary("Strategy", jsonish.FieldMap{
		FieldID:    "13",
		FieldName:  "Catan",
		FieldYear:  "1995.0",
		FieldHref:  "/boardgame/13/catan",
		FieldImage: "//cf.example/orig.png",
	}, siteRoot, DefaultPolicy(), seen, &stats)

	require.True(t, ok)
	require.Equal(t, "Catan", rec.Name)
	require.Equal(t, "1995", rec.Year, "quoted decimal year normalized")
	require.Equal(t, siteRoot+"/boardgame/13/catan", rec.URL)
	require.Equal(t, "https://cf.example/orig.png", rec.ImageURL)
	require.True(t, seen.Contains(13))
	require.Zero(t, stats.Dropped())
}

func TestSummaryDropRules(t *testing.T) {
	seen := NewDedupSet()
	var stats Stats
	policy := DefaultPolicy()

	_, ok := Summary("Cat", jsonish.FieldMap{
		FieldID: "2", FieldName: "Seafarers", FieldYear: "1997",
		FieldSubtype: "boardgameexpansion",
	}, siteRoot, policy, seen, &stats)
	require.False(t, ok, "expansions are excluded regardless of other fields")
	require.Equal(t, 1, stats.ExpansionsSkipped)

	_, ok = Summary("Cat", jsonish.FieldMap{FieldName: "Ghost", FieldYear: "2001"},
		siteRoot, policy, seen, &stats)
	require.False(t, ok)
	require.Equal(t, 1, stats.NoID)

	_, ok = Summary("Cat", jsonish.FieldMap{FieldID: "3", FieldYear: "2001"},
		siteRoot, policy, seen, &stats)
	require.False(t, ok)
	require.Equal(t, 1, stats.NoName)

	_, ok = Summary("Cat", jsonish.FieldMap{FieldID: "4", FieldName: "Undated"},
		siteRoot, policy, seen, &stats)
	require.False(t, ok)
	require.Equal(t, 1, stats.NoYear)

	// a dropped record must not have claimed its id
	require.False(t, seen.Contains(4))
}

func TestSummaryYearPolicyPermissive(t *testing.T) {
	seen := NewDedupSet()
	var stats Stats
	policy := DefaultPolicy()
	policy.RequireYear = false

	rec, ok := Summary("Cat", jsonish.FieldMap{FieldID: "4", FieldName: "Undated"},
		siteRoot, policy, seen, &stats)
	require.True(t, ok)
	require.Empty(t, rec.Year)
}

func TestSummaryDedupAcrossCategories(t *testing.T) {
	seen := NewDedupSet()
	var stats Stats
	fields := jsonish.FieldMap{FieldID: "13", FieldName: "Catan", FieldYear: "1995"}

	_, ok := Summary("Strategy", fields, siteRoot, DefaultPolicy(), seen, &stats)
	require.True(t, ok)
	_, ok = Summary("Negotiation", fields, siteRoot, DefaultPolicy(), seen, &stats)
	require.False(t, ok)
	require.Equal(t, 1, stats.DuplicatesSkipped)
	require.Equal(t, 1, seen.Len())
}

// The three-chunk scenario: one normal game, one expansion, one chunk with
// no usable identity. Exactly one record comes out and two skips are
// counted.
func TestSummaryScenario(t *testing.T) {
	seen := NewDedupSet()
	var stats Stats
	policy := DefaultPolicy()

	chunks := []jsonish.FieldMap{
		{FieldID: "1", FieldName: "Catan", FieldYear: "1995"},
		{FieldID: "2", FieldName: "Seafarers", FieldYear: "1997", FieldSubtype: "boardgameexpansion"},
		{FieldName: "Mystery"},
	}

	var emitted int
	for _, fields := range chunks {
		if _, ok := Summary("Strategy", fields, siteRoot, policy, seen, &stats); ok {
			emitted++
		}
	}
	require.Equal(t, 1, emitted)
	require.Equal(t, 1, stats.ExpansionsSkipped)
	require.Equal(t, 1, stats.NoID)
	require.Equal(t, 2, stats.Dropped())
}

func TestDetailListsDedupedFirstSeenOrder(t *testing.T) {
	thing := markup.Thing{
		Title: "Catan",
		AltNames: []string{
			"Die Siedler von Catan",
			"Les Colons de Catane",
			"Die Siedler von Catan",
		},
		Designers:  []string{"Klaus Teuber", "Klaus Teuber"},
		Publishers: []string{"KOSMOS", "999 Games", "KOSMOS", "999 Games"},
	}
	gallery := []string{"a.png", "b.png", "a.png", ""}

	d := Detail("https://example/boardgame/13", siteRoot, thing, markup.Page{}, gallery)

	require.Equal(t, models.PipeList{
		"Die Siedler von Catan",
		"Les Colons de Catane",
	}, d.AlternateNames)
	require.Equal(t, models.PipeList{"Klaus Teuber"}, d.Designers)
	require.Equal(t, models.PipeList{"KOSMOS", "999 Games"}, d.Publishers)
	require.Equal(t, models.PipeList{"a.png", "b.png"}, d.GalleryImages)
}

func TestDetailFallbackChains(t *testing.T) {
	page := markup.Page{
		Heading:         "Catan (1995)",
		MetaDescription: "Collect and trade.",
		OGImage:         "//cf.example/og.png",
	}
	d := Detail("https://example/boardgame/13", siteRoot, markup.Thing{}, page, nil)

	require.Equal(t, "Catan (1995)", d.Title, "heading fills in for a missing XML title")
	require.Equal(t, "Collect and trade.", d.Description)
	require.Equal(t, "https://cf.example/og.png", d.OGImage)
	require.Equal(t, d.OGImage, d.PrimaryImage, "og image backs up a missing image_src")
}

// Two assemblers racing on the same id through a shared set must emit it
// exactly once; the claim happens on the atomic Add at emission.
func TestSummaryConcurrentAtMostOnce(t *testing.T) {
	seen := NewDedupSet()
	var emitted atomic.Int32
	var wg sync.WaitGroup

	for g := 0; g < 8; g++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			var stats Stats
			for i := 0; i < 50; i++ {
				fields := jsonish.FieldMap{
					FieldID:   strconv.Itoa(i),
					FieldName: "Game",
					FieldYear: "2000",
				}
				if _, ok := Summary("Cat", fields, siteRoot, DefaultPolicy(), seen, &stats); ok {
					emitted.Add(1)
				}
			}
		}()
	}
	wg.Wait()

	require.Equal(t, int32(49), emitted.Load(), "ids 1..49 each once; id 0 never resolves")
	require.Equal(t, 49, seen.Len())
}

func TestDedupSetAddSemantics(t *testing.T) {
	seen := NewDedupSet()
	require.True(t, seen.Add(5))
	require.False(t, seen.Add(5))
	require.Equal(t, 1, seen.Len())
}
