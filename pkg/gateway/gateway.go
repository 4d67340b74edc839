// Package gateway binds the four post operations to HTTP calls against the
// remote posts collection.
package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"

	"github.com/astromechza/postboard/pkg/posts"
)

// DefaultBaseURL is the public demo service the client talks to unless told otherwise.
const DefaultBaseURL = "https://jsonplaceholder.typicode.com"

// ErrRemoteCall is wrapped by every failure: transport errors, non-2xx
// responses and undecodable bodies alike.
var ErrRemoteCall = errors.New("remote call failed")

type Client struct {
	baseUrl    *url.URL
	httpClient *http.Client
	logger     *slog.Logger
}

type Option func(*Client)

func WithHTTPClient(c *http.Client) Option {
	return func(client *Client) {
		client.httpClient = c
	}
}

func WithLogger(l *slog.Logger) Option {
	return func(client *Client) {
		client.logger = l
	}
}

// New returns a client for the posts collection rooted at baseUrl.
func New(baseUrl string, opts ...Option) (*Client, error) {
	u, err := url.Parse(baseUrl)
	if err != nil {
		return nil, fmt.Errorf("failed to parse base url: %w", err)
	}
	if u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("base url %q must be absolute", baseUrl)
	}
	c := &Client{
		baseUrl:    u,
		httpClient: http.DefaultClient,
		logger:     slog.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

func (c *Client) collectionUrl() string {
	return c.baseUrl.JoinPath("posts").String()
}

func (c *Client) itemUrl(id int64) string {
	return c.baseUrl.JoinPath("posts", strconv.FormatInt(id, 10)).String()
}

// List fetches the whole collection in server order.
func (c *Client) List(ctx context.Context) ([]posts.Post, error) {
	var out []posts.Post
	if err := c.do(ctx, http.MethodGet, c.collectionUrl(), nil, &out); err != nil {
		return nil, fmt.Errorf("failed to list posts: %w", err)
	}
	return out, nil
}

// Create posts fields to the collection and returns the server's representation.
func (c *Client) Create(ctx context.Context, fields posts.Fields) (posts.Post, error) {
	var out posts.Post
	if err := c.do(ctx, http.MethodPost, c.collectionUrl(), fields, &out); err != nil {
		return posts.Post{}, fmt.Errorf("failed to create post: %w", err)
	}
	return out, nil
}

// Update replaces the title and body of the post at id.
func (c *Client) Update(ctx context.Context, id int64, fields posts.Fields) (posts.Post, error) {
	var out posts.Post
	if err := c.do(ctx, http.MethodPut, c.itemUrl(id), fields, &out); err != nil {
		return posts.Post{}, fmt.Errorf("failed to update post %d: %w", id, err)
	}
	return out, nil
}

func (c *Client) Delete(ctx context.Context, id int64) error {
	if err := c.do(ctx, http.MethodDelete, c.itemUrl(id), nil, nil); err != nil {
		return fmt.Errorf("failed to delete post %d: %w", id, err)
	}
	return nil
}

func (c *Client) do(ctx context.Context, method, target string, in interface{}, out interface{}) error {
	var body io.Reader
	if in != nil {
		raw, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("%w: failed to encode body: %w", ErrRemoteCall, err)
		}
		body = bytes.NewReader(raw)
	}
	req, err := http.NewRequestWithContext(ctx, method, target, body)
	if err != nil {
		return fmt.Errorf("%w: failed to build request: %w", ErrRemoteCall, err)
	}
	req.Header.Set("Accept", "application/json")
	if in != nil {
		req.Header.Set("Content-Type", "application/json; charset=UTF-8")
	}

	c.logger.Debug("sending request", "method", method, "url", target)
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrRemoteCall, err)
	}
	defer resp.Body.Close()
	c.logger.Debug("got response", "method", method, "url", target, "status", resp.StatusCode)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		_, _ = io.Copy(io.Discard, resp.Body)
		return fmt.Errorf("%w: unexpected status code: %d", ErrRemoteCall, resp.StatusCode)
	}
	if out == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("%w: failed to decode body: %w", ErrRemoteCall, err)
	}
	return nil
}
