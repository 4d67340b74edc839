package backend

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/astromechza/postboard/pkg/posts"
)

const postgresSchema = `
CREATE TABLE IF NOT EXISTS posts (
    id BIGSERIAL PRIMARY KEY,
    user_id BIGINT NOT NULL DEFAULT 0,
    title TEXT NOT NULL,
    body TEXT NOT NULL
);
`

type PostgresStorage struct {
	pool *pgxpool.Pool
}

// NewPostgresStorage connects to dsn, checks the connection and creates the
// posts table if it is missing.
func NewPostgresStorage(ctx context.Context, dsn string) (*PostgresStorage, error) {
	cfg, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to parse dsn: %w", err)
	}
	cfg.ConnConfig.DefaultQueryExecMode = pgx.QueryExecModeCacheStatement
	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create connection pool: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}
	if _, err := pool.Exec(ctx, postgresSchema); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to create posts table: %w", err)
	}
	return &PostgresStorage{pool: pool}, nil
}

func (s *PostgresStorage) List(ctx context.Context) ([]posts.Post, error) {
	rows, err := s.pool.Query(ctx, `SELECT id, user_id, title, body FROM posts ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("failed to query: %w", err)
	}
	out, err := pgx.CollectRows(rows, pgx.RowToStructByPos[posts.Post])
	if err != nil {
		return nil, fmt.Errorf("failed to scan: %w", err)
	}
	if out == nil {
		out = []posts.Post{}
	}
	return out, nil
}

func (s *PostgresStorage) Get(ctx context.Context, id int64) (posts.Post, error) {
	var p posts.Post
	err := s.pool.QueryRow(ctx, `SELECT id, user_id, title, body FROM posts WHERE id = $1`, id).
		Scan(&p.ID, &p.UserID, &p.Title, &p.Body)
	if errors.Is(err, pgx.ErrNoRows) {
		return posts.Post{}, ErrNotFound
	} else if err != nil {
		return posts.Post{}, fmt.Errorf("failed to get post %d: %w", id, err)
	}
	return p, nil
}

func (s *PostgresStorage) Create(ctx context.Context, fields posts.Fields) (posts.Post, error) {
	var id int64
	query := `INSERT INTO posts (user_id, title, body) VALUES ($1, $2, $3) RETURNING id`
	if err := s.pool.QueryRow(ctx, query, fields.UserID, fields.Title, fields.Body).Scan(&id); err != nil {
		return posts.Post{}, fmt.Errorf("failed to insert post: %w", err)
	}
	return fields.WithID(id), nil
}

func (s *PostgresStorage) Update(ctx context.Context, id int64, fields posts.Fields) (posts.Post, error) {
	var p posts.Post
	query := `UPDATE posts SET title = $1, body = $2 WHERE id = $3 RETURNING id, user_id, title, body`
	err := s.pool.QueryRow(ctx, query, fields.Title, fields.Body, id).Scan(&p.ID, &p.UserID, &p.Title, &p.Body)
	if errors.Is(err, pgx.ErrNoRows) {
		return posts.Post{}, ErrNotFound
	} else if err != nil {
		return posts.Post{}, fmt.Errorf("failed to update post %d: %w", id, err)
	}
	return p, nil
}

func (s *PostgresStorage) Delete(ctx context.Context, id int64) error {
	tag, err := s.pool.Exec(ctx, `DELETE FROM posts WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete post %d: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *PostgresStorage) Close() error {
	s.pool.Close()
	return nil
}
