// Package notifications delivers live comment feed updates over websockets,
// fanned out through Redis pub/sub so every server instance sees the same
// snapshots.
package notifications

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strconv"
	"strings"
	"sync"

	"github.com/gofiber/websocket/v2"

	"haven/internal/middleware"
	"haven/internal/observability"
)

const (
	// Max connections per post feed
	maxConnsPerPost = 500
	// Max total connections
	maxTotalConns = 10000
)

// FeedHub maps postID -> connected feed viewers. Viewers are anonymous; a
// connection only carries the post it watches.
type FeedHub struct {
	mu         sync.RWMutex
	conns      map[uint]map[*Client]struct{}
	totalConns int
	shutdown   chan struct{}
	done       chan struct{}
}

// NewFeedHub creates a new FeedHub instance.
func NewFeedHub() *FeedHub {
	return &FeedHub{
		conns:    make(map[uint]map[*Client]struct{}),
		shutdown: make(chan struct{}),
		done:     make(chan struct{}),
	}
}

// Name returns a human-readable identifier for this hub.
func (h *FeedHub) Name() string { return "comment feed hub" }

// Register adds a connection watching the given post. Returns the Client or
// an error when a connection limit is exceeded.
func (h *FeedHub) Register(postID uint, conn *websocket.Conn) (*Client, error) {
	h.mu.Lock()

	if h.totalConns >= maxTotalConns {
		h.mu.Unlock()
		return nil, errors.New("server connection limit reached")
	}

	m, ok := h.conns[postID]
	if !ok {
		m = make(map[*Client]struct{})
		h.conns[postID] = m
	}

	if len(m) >= maxConnsPerPost {
		h.mu.Unlock()
		return nil, errors.New("post feed connection limit reached")
	}

	client := NewClient(h, conn, postID)
	m[client] = struct{}{}
	h.totalConns++
	h.mu.Unlock()

	middleware.ActiveWebSockets.Inc()
	observability.WebSocketFeedConnections.WithLabelValues(postLabel(postID)).Inc()

	return client, nil
}

// UnregisterClient removes a connection from its post's feed.
func (h *FeedHub) UnregisterClient(client *Client) {
	h.mu.Lock()
	removed := false
	if m, ok := h.conns[client.PostID]; ok {
		if _, exists := m[client]; exists {
			delete(m, client)
			h.totalConns--
			removed = true
		}
		if len(m) == 0 {
			delete(h.conns, client.PostID)
		}
	}
	h.mu.Unlock()

	if removed {
		middleware.ActiveWebSockets.Dec()
		observability.WebSocketFeedConnections.WithLabelValues(postLabel(client.PostID)).Dec()
	}
}

// BroadcastPost sends a snapshot payload to every viewer of a post.
func (h *FeedHub) BroadcastPost(postID uint, payload string) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	if clients, ok := h.conns[postID]; ok {
		data := []byte(payload)
		for c := range clients {
			c.TrySend(data)
		}
	}
}

// ViewerCount reports how many connections currently watch a post's feed.
func (h *FeedHub) ViewerCount(postID uint) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.conns[postID])
}

// StartWiring connects the Notifier to this hub: snapshots published to
// comment feed channels are forwarded to the matching post's viewers.
func (h *FeedHub) StartWiring(ctx context.Context, n *Notifier) error {
	return n.StartPatternSubscriber(ctx, func(channel, payload string) {
		if !strings.HasPrefix(channel, feedChannelPrefix) {
			log.Printf("invalid feed channel: %s", channel)
			return
		}
		var postID uint
		if _, err := fmt.Sscanf(channel, feedChannelPrefix+"%d", &postID); err != nil {
			log.Printf("invalid feed channel: %s", channel)
			return
		}
		h.BroadcastPost(postID, payload)
	})
}

// Shutdown gracefully closes all websocket connections.
func (h *FeedHub) Shutdown(_ context.Context) error {
	close(h.shutdown)

	h.mu.Lock()
	for postID, viewers := range h.conns {
		for client := range viewers {
			if client.Conn == nil {
				continue
			}
			if err := client.Conn.WriteMessage(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseGoingAway, "Server shutting down")); err != nil {
				log.Printf("failed to write close message for post %d feed: %v", postID, err)
			}
			if err := client.Conn.Close(); err != nil {
				log.Printf("failed to close websocket for post %d feed: %v", postID, err)
			}
		}
	}
	h.conns = make(map[uint]map[*Client]struct{})
	h.totalConns = 0
	h.mu.Unlock()

	close(h.done)

	return nil
}

func postLabel(postID uint) string {
	return strconv.FormatUint(uint64(postID), 10)
}
