// Package posts holds the post entity shared by the client and the demo backend.
package posts

import "strings"

// DefaultUserID is the author attached to every post created from the client.
const DefaultUserID int64 = 1

// Post is a single entry in the remote collection.
type Post struct {
	ID     int64  `json:"id"`
	UserID int64  `json:"userId,omitempty"`
	Title  string `json:"title"`
	Body   string `json:"body"`
}

// Fields is the writable part of a post. UserID is only sent on create.
type Fields struct {
	Title  string `json:"title"`
	Body   string `json:"body"`
	UserID int64  `json:"userId,omitempty"`
}

// Fields returns the writable part of p.
func (p Post) Fields() Fields {
	return Fields{Title: p.Title, Body: p.Body, UserID: p.UserID}
}

// Blank reports whether either field is empty once whitespace is trimmed.
func (f Fields) Blank() bool {
	return strings.TrimSpace(f.Title) == "" || strings.TrimSpace(f.Body) == ""
}

// WithID builds the post that results from applying f to id.
func (f Fields) WithID(id int64) Post {
	return Post{ID: id, UserID: f.UserID, Title: f.Title, Body: f.Body}
}
