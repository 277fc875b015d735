package postgres

import (
	"context"
	"strconv"
	"strings"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"blog_feed/internal/domain"
)

type TagStore struct {
	db *sqlx.DB
}

func NewTagStore(db *sqlx.DB) *TagStore {
	return &TagStore{db: db}
}

// UpsertLabels returns one tag per input label, in input order.
func (s *TagStore) UpsertLabels(ctx context.Context, labels []string) ([]domain.Tag, error) {
	if len(labels) == 0 {
		return nil, nil
	}

	// A single ON CONFLICT DO UPDATE statement may not touch a row twice.
	unique := make([]string, 0, len(labels))
	seen := make(map[string]struct{}, len(labels))
	for _, l := range labels {
		if _, ok := seen[l]; ok {
			continue
		}
		seen[l] = struct{}{}
		unique = append(unique, l)
	}

	query := `
		INSERT INTO tags (label)
		SELECT unnest($1::text[])
		ON CONFLICT (label) DO UPDATE SET label = EXCLUDED.label
		RETURNING id, label`

	var stored []domain.Tag
	if err := sqlx.SelectContext(ctx, GetExecutor(ctx, s.db), &stored, query, pq.Array(unique)); err != nil {
		return nil, err
	}

	ids := make(map[string]int64, len(stored))
	for _, t := range stored {
		ids[t.Label] = t.ID
	}

	tags := make([]domain.Tag, len(labels))
	for i, l := range labels {
		tags[i] = domain.Tag{ID: ids[l], Label: l}
	}
	return tags, nil
}

// LinkToPost replaces the post's tags; positions follow tagIDs.
func (s *TagStore) LinkToPost(ctx context.Context, postID int64, tagIDs []int64) error {
	exec := GetExecutor(ctx, s.db)

	_, err := exec.ExecContext(ctx,
		"DELETE FROM post_tags WHERE post_id = $1",
		postID,
	)
	if err != nil {
		return err
	}

	if len(tagIDs) == 0 {
		return nil
	}

	var sb strings.Builder
	sb.WriteString("INSERT INTO post_tags (post_id, tag_id, position) VALUES ")
	valueArgs := make([]interface{}, 0, len(tagIDs)+1)
	valueArgs = append(valueArgs, postID)

	for i, tagID := range tagIDs {
		if i > 0 {
			sb.WriteString(", ")
		}
		sb.WriteString("($1, $")
		sb.WriteString(strconv.Itoa(i + 2))
		sb.WriteString(", ")
		sb.WriteString(strconv.Itoa(i))
		sb.WriteString(")")
		valueArgs = append(valueArgs, tagID)
	}
	sb.WriteString(" ON CONFLICT DO NOTHING")

	_, err = exec.ExecContext(ctx, sb.String(), valueArgs...)
	return err
}

func (s *TagStore) GetByPostID(ctx context.Context, postID int64) ([]domain.Tag, error) {
	query := `
		SELECT t.id, t.label
		FROM tags t
		INNER JOIN post_tags pt ON pt.tag_id = t.id
		WHERE pt.post_id = $1
		ORDER BY pt.position`

	var tags []domain.Tag
	err := sqlx.SelectContext(ctx, GetExecutor(ctx, s.db), &tags, query, postID)
	return tags, err
}
