// Package backend is a local stand-in for the public posts demo service:
// the same four endpoints over a pluggable storage, plus a websocket feed of
// every accepted write.
package backend

import (
	"context"
	"errors"
	"fmt"

	"github.com/astromechza/postboard/pkg/posts"
)

var ErrNotFound = errors.New("post not found")

// Storage is the collection behind the HTTP handlers. List returns posts
// ordered by id.
type Storage interface {
	List(ctx context.Context) ([]posts.Post, error)
	Get(ctx context.Context, id int64) (posts.Post, error)
	Create(ctx context.Context, fields posts.Fields) (posts.Post, error)
	Update(ctx context.Context, id int64, fields posts.Fields) (posts.Post, error)
	Delete(ctx context.Context, id int64) error
	Close() error
}

// SeedPosts returns n deterministic sample posts, ten per author.
func SeedPosts(n int) []posts.Fields {
	out := make([]posts.Fields, n)
	for i := range out {
		out[i] = posts.Fields{
			UserID: int64(i/10 + 1),
			Title:  fmt.Sprintf("sample post %d", i+1),
			Body:   fmt.Sprintf("body of sample post %d\nwritten by user %d", i+1, i/10+1),
		}
	}
	return out
}

// Seed fills an empty storage with n sample posts. Non-empty storage is left alone.
func Seed(ctx context.Context, storage Storage, n int) error {
	existing, err := storage.List(ctx)
	if err != nil {
		return fmt.Errorf("failed to list before seeding: %w", err)
	}
	if len(existing) > 0 {
		return nil
	}
	for _, f := range SeedPosts(n) {
		if _, err := storage.Create(ctx, f); err != nil {
			return fmt.Errorf("failed to seed: %w", err)
		}
	}
	return nil
}
