package backend

import (
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/astromechza/postboard/pkg/posts"
)

type EventKind string

const (
	EventCreated EventKind = "created"
	EventUpdated EventKind = "updated"
	EventDeleted EventKind = "deleted"
)

// Event describes one accepted write. Deleted events only carry the id.
type Event struct {
	Kind EventKind  `json:"kind"`
	Post posts.Post `json:"post"`
	At   time.Time  `json:"at"`
}

// subscriberBuffer is how many events a subscriber may lag behind before
// further events to it are dropped.
const subscriberBuffer = 32

// Hub fans events out to websocket subscribers. Publish never blocks on a
// slow reader.
type Hub struct {
	logger      *slog.Logger
	lock        sync.Mutex
	subscribers map[chan Event]struct{}
}

func NewHub(logger *slog.Logger) *Hub {
	if logger == nil {
		logger = slog.Default()
	}
	return &Hub{logger: logger, subscribers: make(map[chan Event]struct{})}
}

func (h *Hub) Publish(kind EventKind, p posts.Post) {
	e := Event{Kind: kind, Post: p, At: time.Now().UTC()}
	h.lock.Lock()
	defer h.lock.Unlock()
	for ch := range h.subscribers {
		select {
		case ch <- e:
		default:
			h.logger.Warn("dropping event for slow subscriber", "kind", kind, "id", p.ID)
		}
	}
}

// Subscribe registers a new subscriber. The returned func unregisters it and
// closes the channel.
func (h *Hub) Subscribe() (<-chan Event, func()) {
	ch := make(chan Event, subscriberBuffer)
	h.lock.Lock()
	h.subscribers[ch] = struct{}{}
	h.lock.Unlock()
	var once sync.Once
	return ch, func() {
		once.Do(func() {
			h.lock.Lock()
			delete(h.subscribers, ch)
			h.lock.Unlock()
			close(ch)
		})
	}
}

func (h *Hub) Subscribers() int {
	h.lock.Lock()
	defer h.lock.Unlock()
	return len(h.subscribers)
}

// ServeHTTP upgrades the request to a websocket and streams events as JSON
// text messages until either side goes away.
func (h *Hub) ServeHTTP(writer http.ResponseWriter, request *http.Request) {
	upgrader := websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
	}
	conn, err := upgrader.Upgrade(writer, request, nil)
	if err != nil {
		h.logger.Error("failed to upgrade", "err", err)
		return
	}
	defer conn.Close()

	events, unsubscribe := h.Subscribe()
	defer unsubscribe()

	// the read side only exists to notice the peer closing
	closed := make(chan struct{})
	go func() {
		defer close(closed)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	for {
		select {
		case e := <-events:
			if err := conn.WriteJSON(e); err != nil {
				h.logger.Error("failed to write event", "err", err)
				return
			}
		case <-closed:
			return
		case <-request.Context().Done():
			return
		}
	}
}
