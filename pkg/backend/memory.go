package backend

import (
	"context"
	"sync"

	"github.com/astromechza/postboard/pkg/posts"
)

// MemoryStorage keeps posts in a slice ordered by id. Deleted ids are not reused.
type MemoryStorage struct {
	lock   sync.Mutex
	posts  []posts.Post
	lastID int64
}

func NewMemoryStorage() *MemoryStorage {
	return &MemoryStorage{}
}

func (m *MemoryStorage) List(ctx context.Context) ([]posts.Post, error) {
	m.lock.Lock()
	defer m.lock.Unlock()
	return append([]posts.Post{}, m.posts...), nil
}

func (m *MemoryStorage) Get(ctx context.Context, id int64) (posts.Post, error) {
	m.lock.Lock()
	defer m.lock.Unlock()
	if i := m.index(id); i >= 0 {
		return m.posts[i], nil
	}
	return posts.Post{}, ErrNotFound
}

func (m *MemoryStorage) Create(ctx context.Context, fields posts.Fields) (posts.Post, error) {
	m.lock.Lock()
	defer m.lock.Unlock()
	m.lastID++
	p := fields.WithID(m.lastID)
	m.posts = append(m.posts, p)
	return p, nil
}

func (m *MemoryStorage) Update(ctx context.Context, id int64, fields posts.Fields) (posts.Post, error) {
	m.lock.Lock()
	defer m.lock.Unlock()
	i := m.index(id)
	if i < 0 {
		return posts.Post{}, ErrNotFound
	}
	m.posts[i].Title = fields.Title
	m.posts[i].Body = fields.Body
	return m.posts[i], nil
}

func (m *MemoryStorage) Delete(ctx context.Context, id int64) error {
	m.lock.Lock()
	defer m.lock.Unlock()
	i := m.index(id)
	if i < 0 {
		return ErrNotFound
	}
	m.posts = append(m.posts[:i], m.posts[i+1:]...)
	return nil
}

func (m *MemoryStorage) Close() error {
	return nil
}

func (m *MemoryStorage) index(id int64) int {
	for i, p := range m.posts {
		if p.ID == id {
			return i
		}
	}
	return -1
}
