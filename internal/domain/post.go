package domain

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"strings"
	"time"
)

// MaxCategories bounds the labels kept per post.
const MaxCategories = 3

var ErrIncompletePost = errors.New("post requires title and link")

// Post is a single blog entry summary as served to the page.
type Post struct {
	Title       string   `json:"title"`
	Link        string   `json:"link"`
	PubDate     string   `json:"pubDate"`
	Description string   `json:"description"`
	Categories  []string `json:"categories"`
}

// NewPost builds a Post, keeping at most MaxCategories non-empty labels in
// source order. Title and link must both be present.
func NewPost(title, link, pubDate, description string, categories []string) (Post, error) {
	if title == "" || link == "" {
		return Post{}, ErrIncompletePost
	}

	labels := make([]string, 0, MaxCategories)
	for _, c := range categories {
		if c == "" {
			continue
		}
		labels = append(labels, c)
		if len(labels) == MaxCategories {
			break
		}
	}

	return Post{
		Title:       title,
		Link:        link,
		PubDate:     pubDate,
		Description: description,
		Categories:  labels,
	}, nil
}

// Clone returns a copy that shares no memory with p.
func (p Post) Clone() Post {
	c := p
	c.Categories = append(make([]string, 0, len(p.Categories)), p.Categories...)
	return c
}

// Checksum identifies the visible content of a post.
func (p Post) Checksum() string {
	h := sha256.New()
	for _, field := range []string{p.Title, p.Link, p.PubDate, p.Description, strings.Join(p.Categories, "\x1f")} {
		h.Write([]byte(field))
		h.Write([]byte{0})
	}
	return hex.EncodeToString(h.Sum(nil))
}

type Tag struct {
	ID    int64  `db:"id"`
	Label string `db:"label"`
}

// ArchivedPost is a post as stored by the syncer.
type ArchivedPost struct {
	ID          int64
	Post        Post
	Checksum    string
	FirstSeenAt time.Time
	UpdatedAt   time.Time
}
