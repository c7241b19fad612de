// Package community is the shared board where users post about their
// habits. Posts live in the cache store under one key, newest first.
package community

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/brk3/habitkeeper/internal/cache"
	"github.com/dustin/go-humanize"
	"github.com/google/uuid"
)

const (
	postsKey       = "community:posts"
	maxPostLength  = 500
	maxPostsKept   = 200
	defaultPageLen = 50
)

var (
	ErrEmptyPost   = errors.New("post cannot be empty")
	ErrPostTooLong = fmt.Errorf("posts are limited to %d characters", maxPostLength)
	ErrNotFound    = errors.New("post not found")
	ErrNotAuthor   = errors.New("only the author can delete a post")
)

type Post struct {
	ID        string `json:"id"`
	UserID    string `json:"user_id"`
	Author    string `json:"author"`
	Content   string `json:"content"`
	CreatedAt int64  `json:"created_at"`
	Time      string `json:"time,omitempty"`
}

type Board struct {
	cache cache.Store
	now   func() time.Time
}

func New(c cache.Store) *Board {
	return &Board{cache: c, now: time.Now}
}

// Posts returns up to limit posts, newest first. limit <= 0 means the
// default page length.
func (b *Board) Posts(ctx context.Context, limit int) ([]Post, error) {
	var posts []Post
	if _, err := b.cache.Get(ctx, postsKey, &posts); err != nil {
		return nil, fmt.Errorf("loading posts: %w", err)
	}
	if limit <= 0 {
		limit = defaultPageLen
	}
	posts = posts[:min(limit, len(posts))]
	if posts == nil {
		posts = []Post{}
	}
	now := b.now()
	for i := range posts {
		posts[i].Time = humanize.RelTime(time.Unix(posts[i].CreatedAt, 0), now, "ago", "from now")
	}
	return posts, nil
}

// Publish adds a post by userID shown under author. Only the newest
// posts are kept.
func (b *Board) Publish(ctx context.Context, userID, author, content string) (Post, error) {
	content = strings.TrimSpace(content)
	switch {
	case content == "":
		return Post{}, ErrEmptyPost
	case utf8.RuneCountInString(content) > maxPostLength:
		return Post{}, ErrPostTooLong
	}
	p := Post{
		ID:        uuid.NewString(),
		UserID:    userID,
		Author:    author,
		Content:   content,
		CreatedAt: b.now().Unix(),
	}
	_, err := cache.Update(ctx, b.cache, postsKey, func(posts *[]Post, _ bool) error {
		*posts = append([]Post{p}, *posts...)
		*posts = (*posts)[:min(maxPostsKept, len(*posts))]
		return nil
	})
	if err != nil {
		return Post{}, fmt.Errorf("saving post: %w", err)
	}
	return p, nil
}

func (b *Board) Delete(ctx context.Context, userID, postID string) error {
	_, err := cache.Update(ctx, b.cache, postsKey, func(posts *[]Post, _ bool) error {
		for i, p := range *posts {
			if p.ID != postID {
				continue
			}
			if p.UserID != userID {
				return ErrNotAuthor
			}
			*posts = append((*posts)[:i], (*posts)[i+1:]...)
			return nil
		}
		return ErrNotFound
	})
	if err != nil && !errors.Is(err, ErrNotFound) && !errors.Is(err, ErrNotAuthor) {
		return fmt.Errorf("deleting post: %w", err)
	}
	return err
}
