package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"blog_feed/internal/domain"
)

// SyncService archives the feed's current posts and announces changes.
type SyncService struct {
	source    Source
	posts     PostStore
	tags      TagStore
	syncState SyncStateStore
	txManager TransactionManager
	publisher Publisher
	logger    *slog.Logger
}

// NewSyncService builds a SyncService. publisher may be nil.
func NewSyncService(
	source Source,
	posts PostStore,
	tags TagStore,
	syncState SyncStateStore,
	txManager TransactionManager,
	publisher Publisher,
	logger *slog.Logger,
) *SyncService {
	return &SyncService{
		source:    source,
		posts:     posts,
		tags:      tags,
		syncState: syncState,
		txManager: txManager,
		publisher: publisher,
		logger:    logger.With("source", source.ID()),
	}
}

func (s *SyncService) Sync(ctx context.Context) (*domain.SyncStats, error) {
	startTime := time.Now()
	s.logger.Info("starting sync", "feed", s.source.Name())

	posts, err := s.source.FetchPosts(ctx)
	if err != nil {
		return nil, fmt.Errorf("fetch posts: %w", err)
	}

	s.logger.Info("fetched posts from feed", "count", len(posts))

	toSync, isNew, err := s.filterForSync(ctx, posts)
	if err != nil {
		return nil, fmt.Errorf("filter for sync: %w", err)
	}

	s.logger.Info("posts to sync", "count", len(toSync))

	stats := &domain.SyncStats{
		SourceID: s.source.ID(),
		Fetched:  len(posts),
		Skipped:  len(posts) - len(toSync),
	}

	for i := range toSync {
		post := &toSync[i]
		created := isNew[post.Link]

		if err := s.savePost(ctx, post); err != nil {
			s.logger.Warn("failed to save post", "link", post.Link, "error", err)
			stats.Errors++
			continue
		}

		if s.publisher != nil {
			if err := s.publisher.Publish(ctx, post, created); err != nil {
				s.logger.Warn("failed to publish post", "link", post.Link, "error", err)
				stats.Errors++
			} else {
				stats.Published++
			}
		}

		if created {
			stats.New++
		} else {
			stats.Updated++
		}
	}

	if err := s.updateSyncState(ctx, posts, stats); err != nil {
		return stats, fmt.Errorf("update sync state: %w", err)
	}

	stats.Duration = time.Since(startTime)

	s.logger.Info("sync completed",
		"new", stats.New,
		"updated", stats.Updated,
		"skipped", stats.Skipped,
		"errors", stats.Errors,
		"published", stats.Published,
		"duration", stats.Duration,
	)

	return stats, nil
}

// filterForSync keeps posts that are unknown or whose content changed.
// The returned map marks the unknown ones.
func (s *SyncService) filterForSync(ctx context.Context, posts []domain.Post) ([]domain.Post, map[string]bool, error) {
	if len(posts) == 0 {
		return nil, nil, nil
	}

	links := make([]string, len(posts))
	for i, p := range posts {
		links[i] = p.Link
	}

	existing, err := s.posts.GetChecksumsByLinks(ctx, links)
	if err != nil {
		return nil, nil, err
	}

	var toSync []domain.Post
	isNew := make(map[string]bool)
	for _, post := range posts {
		checksum, exists := existing[post.Link]

		if !exists {
			toSync = append(toSync, post)
			isNew[post.Link] = true
		} else if checksum != post.Checksum() {
			toSync = append(toSync, post)
		}
	}

	return toSync, isNew, nil
}

func (s *SyncService) savePost(ctx context.Context, post *domain.Post) error {
	return s.txManager.WithTransaction(ctx, func(txCtx context.Context) error {
		postID, err := s.posts.Upsert(txCtx, post)
		if err != nil {
			return fmt.Errorf("upsert post: %w", err)
		}

		var tagIDs []int64
		if len(post.Categories) > 0 {
			tags, err := s.tags.UpsertLabels(txCtx, post.Categories)
			if err != nil {
				return fmt.Errorf("upsert tags: %w", err)
			}

			tagIDs = make([]int64, len(tags))
			for i, tag := range tags {
				tagIDs[i] = tag.ID
			}
		}

		if err := s.tags.LinkToPost(txCtx, postID, tagIDs); err != nil {
			return fmt.Errorf("link tags: %w", err)
		}

		return nil
	})
}

func (s *SyncService) updateSyncState(ctx context.Context, posts []domain.Post, stats *domain.SyncStats) error {
	state, err := s.syncState.Get(ctx, s.source.ID())
	if err != nil {
		return err
	}

	state.SourceID = s.source.ID()
	state.LastSyncedAt = time.Now()
	if len(posts) > 0 {
		state.LastPostLink = posts[0].Link
	}
	state.TotalSynced += int64(stats.Changed())

	return s.syncState.Update(ctx, state)
}
