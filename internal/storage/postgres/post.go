package postgres

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"blog_feed/internal/domain"
)

type PostStore struct {
	db *sqlx.DB
}

func NewPostStore(db *sqlx.DB) *PostStore {
	return &PostStore{db: db}
}

// Upsert inserts the post or rewrites it when its checksum differs.
func (s *PostStore) Upsert(ctx context.Context, post *domain.Post) (int64, error) {
	exec := GetExecutor(ctx, s.db)

	query := `
		INSERT INTO posts (link, title, pub_date, description, checksum)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (link) DO UPDATE SET
			title = EXCLUDED.title,
			pub_date = EXCLUDED.pub_date,
			description = EXCLUDED.description,
			checksum = EXCLUDED.checksum,
			updated_at = now()
		WHERE posts.checksum <> EXCLUDED.checksum
		RETURNING id`

	var id int64
	err := exec.QueryRowxContext(ctx, query,
		post.Link,
		post.Title,
		post.PubDate,
		post.Description,
		post.Checksum(),
	).Scan(&id)

	if errors.Is(err, sql.ErrNoRows) {
		err = exec.QueryRowxContext(ctx,
			"SELECT id FROM posts WHERE link = $1",
			post.Link,
		).Scan(&id)
	}

	if err != nil {
		return 0, err
	}

	return id, nil
}

func (s *PostStore) GetChecksumsByLinks(ctx context.Context, links []string) (map[string]string, error) {
	if len(links) == 0 {
		return make(map[string]string), nil
	}

	query := `SELECT link, checksum FROM posts WHERE link = ANY($1)`

	rows, err := GetExecutor(ctx, s.db).QueryContext(ctx, query, pq.Array(links))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	result := make(map[string]string)
	for rows.Next() {
		var link, checksum string
		if err := rows.Scan(&link, &checksum); err != nil {
			return nil, err
		}
		result[link] = checksum
	}

	return result, rows.Err()
}

type postRow struct {
	ID          int64     `db:"id"`
	Link        string    `db:"link"`
	Title       string    `db:"title"`
	PubDate     string    `db:"pub_date"`
	Description string    `db:"description"`
	Checksum    string    `db:"checksum"`
	FirstSeenAt time.Time `db:"first_seen_at"`
	UpdatedAt   time.Time `db:"updated_at"`
}

// GetByLink loads an archived post with its tags in source order.
// It returns nil when the link is unknown.
func (s *PostStore) GetByLink(ctx context.Context, link string) (*domain.ArchivedPost, error) {
	exec := GetExecutor(ctx, s.db)

	var row postRow
	err := sqlx.GetContext(ctx, exec, &row, `
		SELECT id, link, title, pub_date, description, checksum, first_seen_at, updated_at
		FROM posts
		WHERE link = $1`, link)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	var labels []string
	err = sqlx.SelectContext(ctx, exec, &labels, `
		SELECT t.label
		FROM tags t
		INNER JOIN post_tags pt ON pt.tag_id = t.id
		WHERE pt.post_id = $1
		ORDER BY pt.position`, row.ID)
	if err != nil {
		return nil, err
	}
	if labels == nil {
		labels = []string{}
	}

	return &domain.ArchivedPost{
		ID: row.ID,
		Post: domain.Post{
			Title:       row.Title,
			Link:        row.Link,
			PubDate:     row.PubDate,
			Description: row.Description,
			Categories:  labels,
		},
		Checksum:    row.Checksum,
		FirstSeenAt: row.FirstSeenAt,
		UpdatedAt:   row.UpdatedAt,
	}, nil
}
