package feed

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testUserAgent = "Mozilla/5.0 (compatible; Blog Reader/1.0)"

type testItem struct {
	title      string
	link       string
	pubDate    string
	desc       string
	content    string
	categories []string
}

func rssDocument(items ...testItem) string {
	var sb strings.Builder
	sb.WriteString(`<?xml version="1.0" encoding="UTF-8"?>
<rss version="2.0" xmlns:content="http://purl.org/rss/1.0/modules/content/">
<channel>
<title><![CDATA[Stories by Test Author on Medium]]></title>
<link>https://medium.com/@author</link>
`)
	for _, it := range items {
		sb.WriteString("<item>\n")
		if it.title != "" {
			fmt.Fprintf(&sb, "<title><![CDATA[%s]]></title>\n", it.title)
		}
		if it.link != "" {
			fmt.Fprintf(&sb, "<link>%s</link>\n", it.link)
		}
		if it.pubDate != "" {
			fmt.Fprintf(&sb, "<pubDate>%s</pubDate>\n", it.pubDate)
		}
		for _, c := range it.categories {
			fmt.Fprintf(&sb, "<category><![CDATA[%s]]></category>\n", c)
		}
		if it.desc != "" {
			fmt.Fprintf(&sb, "<description><![CDATA[%s]]></description>\n", it.desc)
		}
		if it.content != "" {
			fmt.Fprintf(&sb, "<content:encoded><![CDATA[%s]]></content:encoded>\n", it.content)
		}
		sb.WriteString("</item>\n")
	}
	sb.WriteString("</channel>\n</rss>\n")
	return sb.String()
}

func numberedItems(n int) []testItem {
	items := make([]testItem, n)
	for i := range items {
		items[i] = testItem{
			title:   fmt.Sprintf("Post %d", i+1),
			link:    fmt.Sprintf("https://medium.com/@author/post-%d", i+1),
			pubDate: "Mon, 15 Jan 2024 10:00:00 GMT",
			desc:    fmt.Sprintf("<p>Body %d</p>", i+1),
		}
	}
	return items
}

func newTestIngestor(t *testing.T, handler http.HandlerFunc, fallbackOnEmpty bool) *Ingestor {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return New(Config{
		URL:             srv.URL,
		UserAgent:       testUserAgent,
		FallbackOnEmpty: fallbackOnEmpty,
	}, logger)
}

func serveBody(body string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/rss+xml; charset=utf-8")
		_, _ = io.WriteString(w, body)
	}
}

func TestIngestor_LimitsToFivePosts(t *testing.T) {
	ing := newTestIngestor(t, serveBody(rssDocument(numberedItems(8)...)), false)

	posts := ing.LatestPosts(context.Background())

	require.Len(t, posts, MaxPosts)
	for i, p := range posts {
		assert.Equal(t, fmt.Sprintf("Post %d", i+1), p.Title)
	}
}

func TestIngestor_FewerThanFivePosts(t *testing.T) {
	ing := newTestIngestor(t, serveBody(rssDocument(numberedItems(2)...)), false)

	posts := ing.LatestPosts(context.Background())

	assert.Len(t, posts, 2)
}

func TestIngestor_ExtractsFields(t *testing.T) {
	doc := rssDocument(testItem{
		title:      "Understanding Go Channels",
		link:       "https://medium.com/@author/channels-123",
		pubDate:    "Tue, 02 Apr 2024 08:30:00 GMT",
		desc:       "<p>short summary</p>",
		content:    "<h3>Full</h3><p>Full &amp; rich&nbsp;content</p>",
		categories: []string{"golang", "concurrency"},
	})
	ing := newTestIngestor(t, serveBody(doc), false)

	posts, err := ing.FetchPosts(context.Background())
	require.NoError(t, err)
	require.Len(t, posts, 1)

	p := posts[0]
	assert.Equal(t, "Understanding Go Channels", p.Title)
	assert.Equal(t, "https://medium.com/@author/channels-123", p.Link)
	assert.Equal(t, "Tue, 02 Apr 2024 08:30:00 GMT", p.PubDate)
	assert.Equal(t, "FullFull & rich content", p.Description)
	assert.Equal(t, []string{"golang", "concurrency"}, p.Categories)
}

func TestIngestor_DescriptionFallbacks(t *testing.T) {
	doc := rssDocument(
		testItem{title: "Summary only", link: "https://example.com/a", desc: "<p>plain summary</p>"},
		testItem{title: "Nothing", link: "https://example.com/b"},
	)
	ing := newTestIngestor(t, serveBody(doc), false)

	posts, err := ing.FetchPosts(context.Background())
	require.NoError(t, err)
	require.Len(t, posts, 2)

	assert.Equal(t, "plain summary", posts[0].Description)
	assert.Equal(t, "", posts[1].Description)
	assert.NotNil(t, posts[1].Categories)
}

func TestIngestor_TruncatesLongContent(t *testing.T) {
	long := "<p>" + strings.Repeat("a", 320) + " " + strings.Repeat("b", 129) + "</p>"
	doc := rssDocument(testItem{title: "Long", link: "https://example.com/long", content: long})
	ing := newTestIngestor(t, serveBody(doc), false)

	posts, err := ing.FetchPosts(context.Background())
	require.NoError(t, err)
	require.Len(t, posts, 1)

	assert.Equal(t, strings.Repeat("a", 320)+"...", posts[0].Description)
}

func TestIngestor_CapsCategories(t *testing.T) {
	doc := rssDocument(testItem{
		title:      "Tagged",
		link:       "https://example.com/tagged",
		categories: []string{"one", "two", "three", "four", "five"},
	})
	ing := newTestIngestor(t, serveBody(doc), false)

	posts, err := ing.FetchPosts(context.Background())
	require.NoError(t, err)
	require.Len(t, posts, 1)

	assert.Equal(t, []string{"one", "two", "three"}, posts[0].Categories)
}

func TestIngestor_IgnoresDublinCoreFields(t *testing.T) {
	body := `<?xml version="1.0" encoding="UTF-8"?>
<rss version="2.0" xmlns:dc="http://purl.org/dc/elements/1.1/">
<channel>
<title>Test</title>
<item>
<title>Undated</title>
<link>https://medium.com/@author/undated</link>
<dc:date>2024-01-01T00:00:00Z</dc:date>
<category>x</category>
<dc:subject>extra</dc:subject>
<description>Body</description>
</item>
</channel>
</rss>
`
	ing := newTestIngestor(t, serveBody(body), false)

	posts, err := ing.FetchPosts(context.Background())
	require.NoError(t, err)
	require.Len(t, posts, 1)
	assert.Empty(t, posts[0].PubDate)
	assert.Equal(t, []string{"x"}, posts[0].Categories)
}

func TestIngestor_FallbackOnAtomDocument(t *testing.T) {
	body := `<?xml version="1.0" encoding="UTF-8"?>
<feed xmlns="http://www.w3.org/2005/Atom">
<title>Test</title>
<entry><title>Post</title><link href="https://example.com/p"/></entry>
</feed>
`
	ing := newTestIngestor(t, serveBody(body), false)

	_, err := ing.FetchPosts(context.Background())
	require.Error(t, err)
	assert.Equal(t, FallbackPosts(), ing.LatestPosts(context.Background()))
}

func TestIngestor_DropsIncompleteItems(t *testing.T) {
	doc := rssDocument(
		testItem{title: "No link"},
		testItem{link: "https://example.com/no-title"},
		testItem{title: "Complete", link: "https://example.com/complete"},
	)
	ing := newTestIngestor(t, serveBody(doc), false)

	posts, err := ing.FetchPosts(context.Background())
	require.NoError(t, err)

	require.Len(t, posts, 1)
	assert.Equal(t, "Complete", posts[0].Title)
}

func TestIngestor_IncompleteItemsCountTowardsLimit(t *testing.T) {
	items := numberedItems(7)
	items[1].link = ""
	ing := newTestIngestor(t, serveBody(rssDocument(items...)), false)

	posts, err := ing.FetchPosts(context.Background())
	require.NoError(t, err)

	assert.Len(t, posts, 4)
}

func TestIngestor_SendsUserAgent(t *testing.T) {
	var gotUA string
	ing := newTestIngestor(t, func(w http.ResponseWriter, r *http.Request) {
		gotUA = r.Header.Get("User-Agent")
		serveBody(rssDocument(numberedItems(1)...))(w, r)
	}, false)

	_, err := ing.FetchPosts(context.Background())
	require.NoError(t, err)

	assert.Equal(t, testUserAgent, gotUA)
}

func TestIngestor_FallbackOnStatus(t *testing.T) {
	ing := newTestIngestor(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "upstream down", http.StatusServiceUnavailable)
	}, false)

	_, err := ing.FetchPosts(context.Background())
	var statusErr *StatusError
	require.ErrorAs(t, err, &statusErr)
	assert.Equal(t, http.StatusServiceUnavailable, statusErr.Code)

	assert.Equal(t, FallbackPosts(), ing.LatestPosts(context.Background()))
}

func TestIngestor_FallbackOnMalformedDocument(t *testing.T) {
	ing := newTestIngestor(t, serveBody("this is not a feed"), false)

	_, err := ing.FetchPosts(context.Background())
	require.Error(t, err)

	assert.Equal(t, FallbackPosts(), ing.LatestPosts(context.Background()))
}

func TestIngestor_FallbackOnNetworkError(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	ing := New(Config{URL: url, UserAgent: testUserAgent}, slog.New(slog.NewTextHandler(io.Discard, nil)))

	assert.Equal(t, FallbackPosts(), ing.LatestPosts(context.Background()))
}

func TestIngestor_EmptyFeed(t *testing.T) {
	t.Run("returns empty list by default", func(t *testing.T) {
		ing := newTestIngestor(t, serveBody(rssDocument()), false)

		posts := ing.LatestPosts(context.Background())
		assert.NotNil(t, posts)
		assert.Empty(t, posts)
	})

	t.Run("serves fallback when configured", func(t *testing.T) {
		ing := newTestIngestor(t, serveBody(rssDocument()), true)

		assert.Equal(t, FallbackPosts(), ing.LatestPosts(context.Background()))
	})
}

func TestIngestor_Idempotent(t *testing.T) {
	ing := newTestIngestor(t, serveBody(rssDocument(numberedItems(6)...)), false)

	first := ing.LatestPosts(context.Background())
	second := ing.LatestPosts(context.Background())

	assert.Equal(t, first, second)
}
