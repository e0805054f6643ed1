// Package realtime fans committed vote events out to websocket subscribers.
package realtime

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/coder/websocket"
	"github.com/coder/websocket/wsjson"
	"github.com/google/uuid"

	"quantumvision/internal/logger"
	"quantumvision/internal/metrics"
	"quantumvision/internal/model"
)

// EventTypeVote is emitted after a vote is committed.
const EventTypeVote = "vote"

const writeTimeout = 5 * time.Second

// Event is the JSON frame pushed to subscribers.
type Event struct {
	Type     string         `json:"type"`
	VideoID  uuid.UUID      `json:"video_id"`
	Category model.Category `json:"category"`
	Votes    int            `json:"votes"`
	At       time.Time      `json:"at"`
}

// Hub tracks subscribers. A nil *Hub accepts and discards events.
type Hub struct {
	mu      sync.Mutex
	clients map[chan Event]struct{}
	buffer  int
	origins []string
}

// NewHub creates a hub whose subscribers may lag by at most buffer events.
// Same-origin connections are always accepted; allowedOrigins lists extra
// origin host patterns such as "festival.example.com" or "*.example.com".
func NewHub(buffer int, allowedOrigins ...string) *Hub {
	if buffer <= 0 {
		buffer = 16
	}
	return &Hub{
		clients: make(map[chan Event]struct{}),
		buffer:  buffer,
		origins: allowedOrigins,
	}
}

// Subscribe registers a subscriber. The returned channel is closed when the
// subscriber falls behind or cancel is called.
func (h *Hub) Subscribe() (<-chan Event, func()) {
	ch := make(chan Event, h.buffer)
	h.mu.Lock()
	h.clients[ch] = struct{}{}
	h.mu.Unlock()
	metrics.RealtimeClients.Inc()

	var once sync.Once
	cancel := func() {
		once.Do(func() { h.drop(ch) })
	}
	return ch, cancel
}

func (h *Hub) drop(ch chan Event) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, ok := h.clients[ch]; !ok {
		return
	}
	delete(h.clients, ch)
	close(ch)
	metrics.RealtimeClients.Dec()
}

// Publish delivers ev to every subscriber without blocking. Subscribers whose
// buffer is full are disconnected.
func (h *Hub) Publish(ev Event) {
	if h == nil {
		return
	}
	h.mu.Lock()
	var slow []chan Event
	for ch := range h.clients {
		select {
		case ch <- ev:
		default:
			slow = append(slow, ch)
		}
	}
	h.mu.Unlock()

	for _, ch := range slow {
		h.drop(ch)
		logger.Log.Warn().Msg("realtime subscriber dropped: too slow")
	}
}

// Clients returns the number of live subscribers.
func (h *Hub) Clients() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.clients)
}

// ServeHTTP upgrades the request to a websocket and streams events until the
// peer disconnects or falls behind.
func (h *Hub) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := websocket.Accept(w, r, &websocket.AcceptOptions{
		OriginPatterns: h.origins,
	})
	if err != nil {
		logger.Log.Debug().Err(err).Msg("websocket accept failed")
		return
	}
	defer conn.CloseNow()

	events, cancel := h.Subscribe()
	defer cancel()

	// Clients only listen; reading is delegated so control frames are handled.
	ctx := conn.CloseRead(r.Context())

	for {
		select {
		case <-ctx.Done():
			return
		case ev, ok := <-events:
			if !ok {
				conn.Close(websocket.StatusPolicyViolation, "subscriber too slow")
				return
			}
			if err := write(ctx, conn, ev); err != nil {
				return
			}
		}
	}
}

func write(ctx context.Context, conn *websocket.Conn, ev Event) error {
	ctx, cancel := context.WithTimeout(ctx, writeTimeout)
	defer cancel()
	return wsjson.Write(ctx, conn, ev)
}
