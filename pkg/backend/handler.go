package backend

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/felixge/httpsnoop"
	"github.com/google/uuid"
	"github.com/gorilla/mux"

	"github.com/astromechza/postboard/pkg/posts"
)

const RequestIDHeader = "X-Request-Id"

type server struct {
	storage Storage
	hub     *Hub
	logger  *slog.Logger
}

// NewHandler routes the posts collection to storage and the change feed to hub.
func NewHandler(storage Storage, hub *Hub, logger *slog.Logger) http.Handler {
	if logger == nil {
		logger = slog.Default()
	}
	s := &server{storage: storage, hub: hub, logger: logger}

	r := mux.NewRouter()
	r.Use(requestLog(logger))

	r.Methods(http.MethodGet).Path("/posts").HandlerFunc(s.listPosts)
	r.Methods(http.MethodPost).Path("/posts").HandlerFunc(s.createPost)
	r.Methods(http.MethodGet).Path("/posts/events").Handler(hub)
	r.Methods(http.MethodPut).Path("/posts/{id}").HandlerFunc(s.updatePost)
	r.Methods(http.MethodDelete).Path("/posts/{id}").HandlerFunc(s.deletePost)
	return r
}

// requestLog tags each request with an id and logs it once handled.
func requestLog(logger *slog.Logger) mux.MiddlewareFunc {
	return func(handler http.Handler) http.Handler {
		return http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
			id := request.Header.Get(RequestIDHeader)
			if _, err := uuid.Parse(id); err != nil {
				id = uuid.NewString()
			}
			writer.Header().Set(RequestIDHeader, id)
			m := httpsnoop.CaptureMetrics(handler, writer, request)
			logger.Info("handled", "request_id", id, "method", request.Method, "url", request.URL, "duration", m.Duration, "status", m.Code)
		})
	}
}

func (s *server) listPosts(writer http.ResponseWriter, request *http.Request) {
	list, err := s.storage.List(request.Context())
	if err != nil {
		s.writeError(writer, http.StatusInternalServerError, err)
		return
	}
	s.writeJSON(writer, http.StatusOK, list)
}

func (s *server) createPost(writer http.ResponseWriter, request *http.Request) {
	var fields posts.Fields
	if err := json.NewDecoder(request.Body).Decode(&fields); err != nil {
		s.writeError(writer, http.StatusBadRequest, err)
		return
	}
	p, err := s.storage.Create(request.Context(), fields)
	if err != nil {
		s.writeError(writer, http.StatusInternalServerError, err)
		return
	}
	s.hub.Publish(EventCreated, p)
	s.writeJSON(writer, http.StatusCreated, p)
}

func (s *server) updatePost(writer http.ResponseWriter, request *http.Request) {
	id, ok := s.postID(writer, request)
	if !ok {
		return
	}
	var fields posts.Fields
	if err := json.NewDecoder(request.Body).Decode(&fields); err != nil {
		s.writeError(writer, http.StatusBadRequest, err)
		return
	}
	p, err := s.storage.Update(request.Context(), id, fields)
	if err != nil {
		s.writeStorageError(writer, err)
		return
	}
	s.hub.Publish(EventUpdated, p)
	s.writeJSON(writer, http.StatusOK, p)
}

func (s *server) deletePost(writer http.ResponseWriter, request *http.Request) {
	id, ok := s.postID(writer, request)
	if !ok {
		return
	}
	if err := s.storage.Delete(request.Context(), id); err != nil {
		s.writeStorageError(writer, err)
		return
	}
	s.hub.Publish(EventDeleted, posts.Post{ID: id})
	s.writeJSON(writer, http.StatusOK, struct{}{})
}

func (s *server) postID(writer http.ResponseWriter, request *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(mux.Vars(request)["id"], 10, 64)
	if err != nil || id < 1 {
		s.writeError(writer, http.StatusBadRequest, errors.New("invalid post id"))
		return 0, false
	}
	return id, true
}

func (s *server) writeStorageError(writer http.ResponseWriter, err error) {
	if errors.Is(err, ErrNotFound) {
		s.writeError(writer, http.StatusNotFound, err)
		return
	}
	s.writeError(writer, http.StatusInternalServerError, err)
}

func (s *server) writeError(writer http.ResponseWriter, code int, err error) {
	if code >= http.StatusInternalServerError {
		s.logger.Error("request failed", "status", code, "err", err)
	}
	s.writeJSON(writer, code, map[string]string{"error": err.Error()})
}

func (s *server) writeJSON(writer http.ResponseWriter, code int, v interface{}) {
	writer.Header().Set("Content-Type", "application/json; charset=utf-8")
	writer.WriteHeader(code)
	if err := json.NewEncoder(writer).Encode(v); err != nil {
		s.logger.Error("failed to write out", "err", err)
	}
}
