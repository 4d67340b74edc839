package gateway

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/astromechza/postboard/pkg/posts"
)

type recordedRequest struct {
	method string
	path   string
	body   string
}

type recorder struct {
	mu   sync.Mutex
	reqs []recordedRequest
}

func (r *recorder) all() []recordedRequest {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]recordedRequest(nil), r.reqs...)
}

func newTestServer(t *testing.T, status int, response string) (*Client, *recorder) {
	t.Helper()
	rec := new(recorder)
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		raw, _ := io.ReadAll(r.Body)
		rec.mu.Lock()
		rec.reqs = append(rec.reqs, recordedRequest{method: r.Method, path: r.URL.Path, body: string(raw)})
		rec.mu.Unlock()
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_, _ = io.WriteString(w, response)
	}))
	t.Cleanup(ts.Close)
	c, err := New(ts.URL, WithHTTPClient(ts.Client()))
	require.NoError(t, err)
	return c, rec
}

func TestList(t *testing.T) {
	assert := assert.New(t)
	c, rec := newTestServer(t, http.StatusOK, `[{"userId":1,"id":2,"title":"b","body":"y"},{"userId":1,"id":1,"title":"a","body":"x"}]`)
	out, err := c.List(context.Background())
	require.NoError(t, err)
	assert.Equal([]posts.Post{
		{ID: 2, UserID: 1, Title: "b", Body: "y"},
		{ID: 1, UserID: 1, Title: "a", Body: "x"},
	}, out)
	seen := rec.all()
	require.Len(t, seen, 1)
	assert.Equal(http.MethodGet, seen[0].method)
	assert.Equal("/posts", seen[0].path)
	assert.Equal("", seen[0].body)
}

func TestCreate(t *testing.T) {
	assert := assert.New(t)
	c, rec := newTestServer(t, http.StatusCreated, `{"id":101,"title":"B","body":"Y","userId":1}`)
	out, err := c.Create(context.Background(), posts.Fields{Title: "B", Body: "Y", UserID: posts.DefaultUserID})
	require.NoError(t, err)
	assert.Equal(posts.Post{ID: 101, UserID: 1, Title: "B", Body: "Y"}, out)
	seen := rec.all()
	require.Len(t, seen, 1)
	assert.Equal(http.MethodPost, seen[0].method)
	assert.Equal("/posts", seen[0].path)
	assert.JSONEq(`{"title":"B","body":"Y","userId":1}`, seen[0].body)
}

func TestUpdate(t *testing.T) {
	assert := assert.New(t)
	c, rec := newTestServer(t, http.StatusOK, `{"id":1,"title":"A2","body":"X"}`)
	out, err := c.Update(context.Background(), 1, posts.Fields{Title: "A2", Body: "X"})
	require.NoError(t, err)
	assert.Equal(posts.Post{ID: 1, Title: "A2", Body: "X"}, out)
	seen := rec.all()
	require.Len(t, seen, 1)
	assert.Equal(http.MethodPut, seen[0].method)
	assert.Equal("/posts/1", seen[0].path)
	assert.JSONEq(`{"title":"A2","body":"X"}`, seen[0].body)
}

func TestDeleteIgnoresBody(t *testing.T) {
	assert := assert.New(t)
	c, rec := newTestServer(t, http.StatusOK, `{}`)
	assert.NoError(c.Delete(context.Background(), 42))
	seen := rec.all()
	require.Len(t, seen, 1)
	assert.Equal(http.MethodDelete, seen[0].method)
	assert.Equal("/posts/42", seen[0].path)
}

func TestBaseUrlWithPathPrefix(t *testing.T) {
	paths := make(chan string, 1)
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		paths <- r.URL.Path
		_ = json.NewEncoder(w).Encode([]posts.Post{})
	}))
	defer ts.Close()
	c, err := New(ts.URL + "/api/")
	require.NoError(t, err)
	_, err = c.List(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "/api/posts", <-paths)
}

func TestFailuresWrapRemoteCall(t *testing.T) {
	assert := assert.New(t)

	c, _ := newTestServer(t, http.StatusInternalServerError, `{}`)
	_, err := c.List(context.Background())
	assert.ErrorIs(err, ErrRemoteCall)
	assert.ErrorContains(err, "500")

	c, _ = newTestServer(t, http.StatusNotFound, ``)
	assert.ErrorIs(c.Delete(context.Background(), 9), ErrRemoteCall)

	c, _ = newTestServer(t, http.StatusOK, `not json`)
	_, err = c.Create(context.Background(), posts.Fields{Title: "a", Body: "b"})
	assert.ErrorIs(err, ErrRemoteCall)

	ts := httptest.NewServer(http.NotFoundHandler())
	ts.Close()
	c, err = New(ts.URL)
	require.NoError(t, err)
	_, err = c.Update(context.Background(), 1, posts.Fields{Title: "a", Body: "b"})
	assert.ErrorIs(err, ErrRemoteCall)
}

func TestCanceledContext(t *testing.T) {
	c, rec := newTestServer(t, http.StatusOK, `[]`)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := c.List(ctx)
	assert.ErrorIs(t, err, ErrRemoteCall)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Empty(t, rec.all())
}

func TestNewRejectsRelativeUrl(t *testing.T) {
	_, err := New("/posts")
	assert.Error(t, err)
	_, err = New(DefaultBaseURL)
	assert.NoError(t, err)
}
