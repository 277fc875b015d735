package service

//go:generate mockgen -source=interfaces.go -destination=mocks/mocks.go -package=mocks

import (
	"context"

	"blog_feed/internal/domain"
)

type PostStore interface {
	// Upsert writes the post and returns its row ID.
	Upsert(ctx context.Context, post *domain.Post) (int64, error)
	// GetChecksumsByLinks returns the stored checksum for each known link.
	GetChecksumsByLinks(ctx context.Context, links []string) (map[string]string, error)
}

type TagStore interface {
	// UpsertLabels ensures every label exists and returns the tags with IDs, in input order.
	UpsertLabels(ctx context.Context, labels []string) ([]domain.Tag, error)
	LinkToPost(ctx context.Context, postID int64, tagIDs []int64) error
}

type SyncStateStore interface {
	Get(ctx context.Context, sourceID string) (*domain.SyncState, error)
	Update(ctx context.Context, state *domain.SyncState) error
}

type Source interface {
	ID() string
	Name() string
	FetchPosts(ctx context.Context) ([]domain.Post, error)
}

type TransactionManager interface {
	WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error
}

type Publisher interface {
	Publish(ctx context.Context, post *domain.Post, isNew bool) error
	Close() error
}
