// Package viewstate owns the client's screen state: the last fetched list of
// posts, the two draft fields and the edit mode. Every user intent maps to
// exactly one gateway call, optionally followed by a full reload.
package viewstate

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"github.com/astromechza/postboard/pkg/posts"
)

// Gateway is the remote collection as the store sees it.
type Gateway interface {
	List(ctx context.Context) ([]posts.Post, error)
	Create(ctx context.Context, fields posts.Fields) (posts.Post, error)
	Update(ctx context.Context, id int64, fields posts.Fields) (posts.Post, error)
	Delete(ctx context.Context, id int64) error
}

// Mode says what the draft fields currently mean.
type Mode struct {
	editing bool
	id      int64
}

// Creating is the mode where the drafts describe a new post.
func Creating() Mode {
	return Mode{}
}

// Editing is the mode where the drafts hold new values for post id.
func Editing(id int64) Mode {
	return Mode{editing: true, id: id}
}

func (m Mode) IsEditing() bool {
	return m.editing
}

// EditingID returns the id under edit, if any.
func (m Mode) EditingID() (int64, bool) {
	return m.id, m.editing
}

func (m Mode) String() string {
	if m.editing {
		return fmt.Sprintf("editing #%d", m.id)
	}
	return "creating"
}

// Snapshot is a copy of the store state safe to render from.
type Snapshot struct {
	Posts []posts.Post
	Title string
	Body  string
	Mode  Mode
}

// Store is the single writer of the view state. Network calls are never made
// while holding the lock, so overlapping actions race and the last reload wins.
type Store struct {
	gateway Gateway
	logger  *slog.Logger

	lock  sync.Mutex
	posts []posts.Post
	title string
	body  string
	mode  Mode
}

func New(gateway Gateway, logger *slog.Logger) *Store {
	if logger == nil {
		logger = slog.Default()
	}
	return &Store{gateway: gateway, logger: logger, mode: Creating()}
}

func (s *Store) Snapshot() Snapshot {
	s.lock.Lock()
	defer s.lock.Unlock()
	return Snapshot{
		Posts: append([]posts.Post(nil), s.posts...),
		Title: s.title,
		Body:  s.body,
		Mode:  s.mode,
	}
}

func (s *Store) SetTitle(title string) {
	s.lock.Lock()
	defer s.lock.Unlock()
	s.title = title
}

func (s *Store) SetBody(body string) {
	s.lock.Lock()
	defer s.lock.Unlock()
	s.body = body
}

// Lookup finds a post in the held list.
func (s *Store) Lookup(id int64) (posts.Post, bool) {
	s.lock.Lock()
	defer s.lock.Unlock()
	for _, p := range s.posts {
		if p.ID == id {
			return p, true
		}
	}
	return posts.Post{}, false
}

// LoadAll replaces the held list with the server's collection. On failure
// the list is left as it was.
func (s *Store) LoadAll(ctx context.Context) error {
	list, err := s.gateway.List(ctx)
	if err != nil {
		s.logger.Error("failed to fetch posts", "err", err)
		return err
	}
	s.lock.Lock()
	defer s.lock.Unlock()
	s.posts = list
	s.logger.Debug("loaded posts", "count", len(list))
	return nil
}

// SubmitNew creates a post and prepends the server's copy to the list.
// Blank input is ignored without a call. The edit mode is left untouched.
func (s *Store) SubmitNew(ctx context.Context, title, body string) error {
	if strings.TrimSpace(title) == "" || strings.TrimSpace(body) == "" {
		return nil
	}
	created, err := s.gateway.Create(ctx, posts.Fields{Title: title, Body: body, UserID: posts.DefaultUserID})
	if err != nil {
		s.logger.Error("failed to add post", "err", err)
		return err
	}
	s.lock.Lock()
	defer s.lock.Unlock()
	s.posts = append([]posts.Post{created}, s.posts...)
	s.title = ""
	s.body = ""
	s.logger.Info("added post", "id", created.ID)
	return nil
}

// SubmitDraft submits the current draft fields as a new post.
func (s *Store) SubmitDraft(ctx context.Context) error {
	s.lock.Lock()
	title, body := s.title, s.body
	s.lock.Unlock()
	return s.SubmitNew(ctx, title, body)
}

// BeginEdit replaces any edit in progress with one for p.
func (s *Store) BeginEdit(p posts.Post) {
	s.lock.Lock()
	defer s.lock.Unlock()
	s.mode = Editing(p.ID)
	s.title = p.Title
	s.body = p.Body
}

// SubmitEdit sends the drafts as an update for the post under edit, reloads
// the whole list and returns to Creating. The reload and reset happen even if
// the update fails.
func (s *Store) SubmitEdit(ctx context.Context) error {
	s.lock.Lock()
	id, ok := s.mode.EditingID()
	fields := posts.Fields{Title: s.title, Body: s.body}
	s.lock.Unlock()
	if !ok {
		return nil
	}

	updated, updateErr := s.gateway.Update(ctx, id, fields)
	if updateErr != nil {
		s.logger.Error("failed to update post", "id", id, "err", updateErr)
	} else {
		s.logger.Info("updated post", "id", id, "title", updated.Title)
	}
	loadErr := s.LoadAll(ctx)

	s.lock.Lock()
	defer s.lock.Unlock()
	s.title = ""
	s.body = ""
	s.mode = Creating()
	return errors.Join(updateErr, loadErr)
}

// Remove deletes the post at id and then reloads the list whatever the
// outcome of the delete.
func (s *Store) Remove(ctx context.Context, id int64) error {
	deleteErr := s.gateway.Delete(ctx, id)
	if deleteErr != nil {
		s.logger.Error("failed to delete post", "id", id, "err", deleteErr)
	} else {
		s.logger.Info("deleted post", "id", id)
	}
	return errors.Join(deleteErr, s.LoadAll(ctx))
}
