package backend

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"

	_ "github.com/mattn/go-sqlite3"

	"github.com/astromechza/postboard/pkg/posts"
)

type SQLiteStorage struct {
	database *sql.DB
}

// NewSQLiteStorage opens (creating if needed) the database file at path and
// ensures the posts table exists.
func NewSQLiteStorage(ctx context.Context, path string) (*SQLiteStorage, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open sqlite database: %w", err)
	}
	// a ":memory:" database only lives as long as its connection
	db.SetMaxOpenConns(1)
	s := &SQLiteStorage{database: db}
	if err := s.init(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}
	return s, nil
}

func (s *SQLiteStorage) init(ctx context.Context) error {
	if _, err := s.database.ExecContext(ctx,
		`CREATE TABLE IF NOT EXISTS posts (
		id integer not null primary key autoincrement,
		user_id integer not null default 0,
		title text not null,
		body text not null
		)`,
	); err != nil {
		return fmt.Errorf("failed to create posts table: %w", err)
	}
	slog.Info("Ensured posts table exists")
	return nil
}

func (s *SQLiteStorage) List(ctx context.Context) ([]posts.Post, error) {
	res, err := s.database.QueryContext(ctx, `SELECT id, user_id, title, body FROM posts ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("failed to query: %w", err)
	}
	defer func(res *sql.Rows) {
		if err := res.Close(); err != nil {
			slog.Error("failed to close rows", "err", err)
		}
	}(res)
	out := make([]posts.Post, 0)
	for res.Next() {
		var p posts.Post
		if err := res.Scan(&p.ID, &p.UserID, &p.Title, &p.Body); err != nil {
			return nil, fmt.Errorf("failed to scan: %w", err)
		}
		out = append(out, p)
	}
	return out, res.Err()
}

func (s *SQLiteStorage) Get(ctx context.Context, id int64) (posts.Post, error) {
	p := posts.Post{ID: id}
	err := s.database.QueryRowContext(ctx, `SELECT user_id, title, body FROM posts WHERE id = ?`, id).
		Scan(&p.UserID, &p.Title, &p.Body)
	if errors.Is(err, sql.ErrNoRows) {
		return posts.Post{}, ErrNotFound
	} else if err != nil {
		return posts.Post{}, fmt.Errorf("failed to get post %d: %w", id, err)
	}
	return p, nil
}

func (s *SQLiteStorage) Create(ctx context.Context, fields posts.Fields) (posts.Post, error) {
	res, err := s.database.ExecContext(ctx,
		`INSERT INTO posts (user_id, title, body) VALUES (?, ?, ?)`,
		fields.UserID, fields.Title, fields.Body,
	)
	if err != nil {
		return posts.Post{}, fmt.Errorf("failed to insert post: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return posts.Post{}, fmt.Errorf("failed to read inserted id: %w", err)
	}
	return fields.WithID(id), nil
}

func (s *SQLiteStorage) Update(ctx context.Context, id int64, fields posts.Fields) (posts.Post, error) {
	res, err := s.database.ExecContext(ctx,
		`UPDATE posts SET title = ?, body = ? WHERE id = ?`,
		fields.Title, fields.Body, id,
	)
	if err != nil {
		return posts.Post{}, fmt.Errorf("failed to update post %d: %w", id, err)
	}
	if r, _ := res.RowsAffected(); r == 0 {
		return posts.Post{}, ErrNotFound
	}
	return s.Get(ctx, id)
}

func (s *SQLiteStorage) Delete(ctx context.Context, id int64) error {
	res, err := s.database.ExecContext(ctx, `DELETE FROM posts WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete post %d: %w", id, err)
	}
	if r, _ := res.RowsAffected(); r == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *SQLiteStorage) Close() error {
	return s.database.Close()
}
