package feed

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/mmcdole/gofeed/rss"

	"blog_feed/internal/domain"
)

const (
	SourceID = "blog"

	// MaxPosts bounds how many feed items are considered per ingestion.
	MaxPosts = 5
)

// Config holds feed ingestion configuration.
type Config struct {
	URL             string
	UserAgent       string
	FallbackOnEmpty bool

	// Timeout of zero leaves the transport default in place.
	Timeout time.Duration
}

// StatusError reports a non-2xx response from the feed host.
type StatusError struct {
	Code int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("unexpected status: %d", e.Code)
}

// Ingestor reads the blog's RSS feed and reduces it to post summaries.
// It holds no state between calls.
type Ingestor struct {
	httpClient      *http.Client
	url             string
	userAgent       string
	fallbackOnEmpty bool
	logger          *slog.Logger
}

func New(cfg Config, logger *slog.Logger) *Ingestor {
	return &Ingestor{
		httpClient: &http.Client{
			Timeout: cfg.Timeout,
		},
		url:             cfg.URL,
		userAgent:       cfg.UserAgent,
		fallbackOnEmpty: cfg.FallbackOnEmpty,
		logger:          logger.With("source", SourceID),
	}
}

// ID returns the source identifier.
func (i *Ingestor) ID() string {
	return SourceID
}

// Name returns the feed URL.
func (i *Ingestor) Name() string {
	return i.url
}

// LatestPosts never fails: any fetch or parse error is logged and answered
// with FallbackPosts.
func (i *Ingestor) LatestPosts(ctx context.Context) []domain.Post {
	posts, err := i.FetchPosts(ctx)
	if err != nil {
		i.logger.Error("failed to read feed, serving fallback posts",
			"url", i.url,
			"error", err,
		)
		ingestTotal.WithLabelValues(outcomeFallback).Inc()
		return FallbackPosts()
	}

	if len(posts) == 0 {
		if i.fallbackOnEmpty {
			i.logger.Warn("feed has no usable posts, serving fallback posts", "url", i.url)
			ingestTotal.WithLabelValues(outcomeFallback).Inc()
			return FallbackPosts()
		}
		ingestTotal.WithLabelValues(outcomeEmpty).Inc()
		return posts
	}

	ingestTotal.WithLabelValues(outcomeLive).Inc()
	return posts
}

// FetchPosts retrieves and parses the feed, returning up to MaxPosts posts.
// Unlike LatestPosts it reports failures to the caller.
func (i *Ingestor) FetchPosts(ctx context.Context) ([]domain.Post, error) {
	start := time.Now()
	parsed, err := i.doRequest(ctx)
	fetchDuration.Observe(time.Since(start).Seconds())
	if err != nil {
		return nil, err
	}

	posts := i.transform(parsed.Items)
	i.logger.Debug("fetched feed",
		"items", len(parsed.Items),
		"posts", len(posts),
	)
	return posts, nil
}

func (i *Ingestor) doRequest(ctx context.Context) (*rss.Feed, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, i.url, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	req.Header.Set("Accept", "application/rss+xml, application/xml;q=0.9, */*;q=0.8")
	req.Header.Set("User-Agent", i.userAgent)

	resp, err := i.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("execute request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &StatusError{Code: resp.StatusCode}
	}

	// Read RSS elements as written: dc:date and dc:subject must not stand in
	// for pubDate and category.
	var parser rss.Parser
	parsed, err := parser.Parse(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("parse feed: %w", err)
	}

	return parsed, nil
}

func (i *Ingestor) transform(items []*rss.Item) []domain.Post {
	if len(items) > MaxPosts {
		items = items[:MaxPosts]
	}

	posts := make([]domain.Post, 0, len(items))
	for _, item := range items {
		if item == nil {
			continue
		}

		description := item.Content
		if description == "" {
			description = item.Description
		}

		post, err := domain.NewPost(
			item.Title,
			item.Link,
			item.PubDate,
			Truncate(CleanText(description)),
			categoryLabels(item.Categories),
		)
		if err != nil {
			i.logger.Debug("skipping feed item",
				"title", item.Title,
				"link", item.Link,
				"error", err,
			)
			continue
		}

		posts = append(posts, post)
	}

	return posts
}

func categoryLabels(categories []*rss.Category) []string {
	labels := make([]string, 0, len(categories))
	for _, c := range categories {
		if c != nil {
			labels = append(labels, c.Value)
		}
	}
	return labels
}
