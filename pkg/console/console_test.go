package console

import (
	"bytes"
	"context"
	"errors"
	"io"
	"log/slog"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/astromechza/postboard/pkg/posts"
	"github.com/astromechza/postboard/pkg/viewstate"
)

// memoryGateway keeps writes, unlike the public demo service.
type memoryGateway struct {
	posts  []posts.Post
	nextID int64
	failed bool
}

func (m *memoryGateway) List(ctx context.Context) ([]posts.Post, error) {
	if m.failed {
		return nil, errors.New("offline")
	}
	return append([]posts.Post(nil), m.posts...), nil
}

func (m *memoryGateway) Create(ctx context.Context, fields posts.Fields) (posts.Post, error) {
	m.nextID++
	p := fields.WithID(m.nextID)
	m.posts = append(m.posts, p)
	return p, nil
}

func (m *memoryGateway) Update(ctx context.Context, id int64, fields posts.Fields) (posts.Post, error) {
	for i, p := range m.posts {
		if p.ID == id {
			m.posts[i].Title = fields.Title
			m.posts[i].Body = fields.Body
			return m.posts[i], nil
		}
	}
	return posts.Post{}, errors.New("not found")
}

func (m *memoryGateway) Delete(ctx context.Context, id int64) error {
	for i, p := range m.posts {
		if p.ID == id {
			m.posts = append(m.posts[:i], m.posts[i+1:]...)
			return nil
		}
	}
	return errors.New("not found")
}

func newStore(t *testing.T, gw *memoryGateway) *viewstate.Store {
	t.Helper()
	s := viewstate.New(gw, slog.New(slog.NewTextHandler(io.Discard, nil)))
	require.NoError(t, s.LoadAll(context.Background()))
	return s
}

func TestRunAddEditDelete(t *testing.T) {
	assert := assert.New(t)
	gw := &memoryGateway{posts: []posts.Post{{ID: 1, UserID: 1, Title: "A", Body: "X"}}, nextID: 1}
	s := newStore(t, gw)
	in := strings.NewReader(strings.Join([]string{
		"title B",
		"body Y",
		"add",
		"edit 1",
		"title A2",
		"update",
		"delete 2",
		"quit",
		"add",
	}, "\n"))
	var out bytes.Buffer
	require.NoError(t, Run(context.Background(), s, in, &out))

	assert.Equal([]posts.Post{{ID: 1, UserID: 1, Title: "A2", Body: "X"}}, gw.posts)
	snap := s.Snapshot()
	assert.Equal([]posts.Post{{ID: 1, UserID: 1, Title: "A2", Body: "X"}}, snap.Posts)
	assert.False(snap.Mode.IsEditing())
	assert.Contains(out.String(), "editing #1")
	assert.Contains(out.String(), "[add] [update]")
}

func TestRunBlankAddDoesNothing(t *testing.T) {
	gw := &memoryGateway{}
	s := newStore(t, gw)
	require.NoError(t, Run(context.Background(), s, strings.NewReader("title   \nbody x\nadd\n"), io.Discard))
	assert.Empty(t, gw.posts)
	assert.Equal(t, "x", s.Snapshot().Body)
}

func TestRunHints(t *testing.T) {
	assert := assert.New(t)
	s := newStore(t, &memoryGateway{})
	var out bytes.Buffer
	require.NoError(t, Run(context.Background(), s, strings.NewReader("update\nedit x\nedit 9\nfrobnicate\nhelp\n"), &out))
	assert.Contains(out.String(), "nothing is being edited")
	assert.Contains(out.String(), "usage: edit <id>")
	assert.Contains(out.String(), "no post #9")
	assert.Contains(out.String(), `unknown command "frobnicate"`)
	assert.Contains(out.String(), "commands:")
}

func TestRunReloadFailureKeepsScreen(t *testing.T) {
	gw := &memoryGateway{posts: []posts.Post{{ID: 1, Title: "A", Body: "X"}}}
	s := newStore(t, gw)
	gw.failed = true
	require.NoError(t, Run(context.Background(), s, strings.NewReader("reload\n"), io.Discard))
	assert.Len(t, s.Snapshot().Posts, 1)
}

func TestRunStopsOnCancel(t *testing.T) {
	s := newStore(t, &memoryGateway{})
	r, w := io.Pipe()
	defer w.Close()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.NoError(t, Run(ctx, s, r, io.Discard))
}

func TestRender(t *testing.T) {
	var out bytes.Buffer
	Render(&out, viewstate.Snapshot{
		Posts: []posts.Post{{ID: 3, Title: "hello", Body: "line one\nline two"}},
		Title: "t",
		Mode:  viewstate.Creating(),
	})
	expected := "== posts (1) | creating ==\n" +
		"title: t\n" +
		"body:  \n" +
		"[add]\n" +
		strings.Repeat("-", 40) + "\n" +
		"#3 hello\n" +
		"   line one\n" +
		"   line two\n" +
		"   [edit 3] [delete 3]\n"
	assert.Equal(t, expected, out.String())
}
