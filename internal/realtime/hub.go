// Package realtime keeps the live websocket clients of each user and pushes
// collection snapshots and reminder alerts to them.
package realtime

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/Dias221467/MemoMe/internal/models"
)

// ErrNotConnected means the user has no live client to receive an alert.
var ErrNotConnected = errors.New("no live client")

const writeTimeout = 10 * time.Second

// Conn is the part of *websocket.Conn the hub writes through.
type Conn interface {
	WriteJSON(v interface{}) error
	SetWriteDeadline(t time.Time) error
	Close() error
}

// Client is one live connection of a user. Writes are serialized.
type Client struct {
	owner      string
	conn       Conn
	mu         sync.Mutex
	permission atomic.Bool
}

func NewClient(owner string, conn Conn) *Client {
	return &Client{owner: owner, conn: conn}
}

func (c *Client) Owner() string {
	return c.owner
}

// Send writes one JSON message to the client.
func (c *Client) Send(v interface{}) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	_ = c.conn.SetWriteDeadline(time.Now().Add(writeTimeout))
	return c.conn.WriteJSON(v)
}

// SetPermission records whether the client may show system notifications.
func (c *Client) SetPermission(granted bool) {
	c.permission.Store(granted)
}

func (c *Client) Permission() bool {
	return c.permission.Load()
}

// Hub indexes live clients by owner email.
type Hub struct {
	mu      sync.RWMutex
	clients map[string]map[*Client]struct{}
}

func NewHub() *Hub {
	return &Hub{clients: make(map[string]map[*Client]struct{})}
}

func (h *Hub) Register(c *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	set, ok := h.clients[c.owner]
	if !ok {
		set = make(map[*Client]struct{})
		h.clients[c.owner] = set
	}
	set[c] = struct{}{}
	logrus.WithField("owner", c.owner).Debug("Live client registered")
}

// Unregister removes c; removing an unknown client is a no-op.
func (h *Hub) Unregister(c *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	set, ok := h.clients[c.owner]
	if !ok {
		return
	}
	delete(set, c)
	if len(set) == 0 {
		delete(h.clients, c.owner)
	}
}

// Connected returns the number of live clients of owner.
func (h *Hub) Connected(owner string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients[owner])
}

func (h *Hub) snapshot(owner string) []*Client {
	h.mu.RLock()
	defer h.mu.RUnlock()
	out := make([]*Client, 0, len(h.clients[owner]))
	for c := range h.clients[owner] {
		out = append(out, c)
	}
	return out
}

// Notify pushes n to every live client of owner. A client that granted
// notification permission gets a system notification, others a toast.
// It fails with ErrNotConnected when no client took the alert.
func (h *Hub) Notify(_ context.Context, owner string, n models.Notification) error {
	clients := h.snapshot(owner)
	if len(clients) == 0 {
		return ErrNotConnected
	}

	delivered := 0
	for _, c := range clients {
		msg := n
		msg.Type = models.NotificationToast
		if c.Permission() {
			msg.Type = models.NotificationSystem
		}
		if err := c.Send(msg); err != nil {
			logrus.WithFields(logrus.Fields{
				"owner": owner,
				"error": err,
			}).Warn("Failed to push notification")
			continue
		}
		delivered++
	}
	if delivered == 0 {
		return fmt.Errorf("%w: all %d pushes failed", ErrNotConnected, len(clients))
	}
	return nil
}
