package realtime

import (
	"encoding/json"
	"net"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/bannerworks/alertbanner/pkg/logger"
	"github.com/bannerworks/alertbanner/pkg/metrics"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 64 << 10 // control frames only; banner clients never push content

	defaultBufferSize = 32
)

// Event names delivered to banner clients.
const (
	EventAlertCreated = "alert.created"
	EventAlertUpdated = "alert.updated"
	EventAlertDeleted = "alert.deleted"
)

// Message represents a JSON payload delivered to subscribed banner clients.
type Message struct {
	Site  string `json:"site"`
	Event string `json:"event"`
	Data  any    `json:"data,omitempty"`
}

type controlMessage struct {
	Action string   `json:"action"`
	Sites  []string `json:"sites"`
}

// Hub fans alert events out to websocket clients grouped by site. Banner
// clients subscribe to the sites whose pages they render.
type Hub struct {
	mu          sync.RWMutex
	subscribers map[string]map[*connection]struct{}
	upgrader    websocket.Upgrader
	log         *zap.Logger
}

// NewHub constructs a realtime hub.
func NewHub() *Hub {
	return &Hub{
		subscribers: make(map[string]map[*connection]struct{}),
		log:         logger.WithModule("realtime"),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  4096,
			WriteBufferSize: 4096,
			CheckOrigin: func(r *http.Request) bool {
				origin := r.Header.Get("Origin")
				if origin == "" {
					return true
				}
				originHost := hostWithoutPort(origin)
				requestHost := hostWithoutPort(r.Host)
				return originHost == requestHost || isLoopback(originHost)
			},
		},
	}
}

// Serve upgrades the HTTP connection to a WebSocket and registers the client
// with the provided initial site subscriptions.
func (h *Hub) Serve(sites []string, w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.log.Warn("upgrade failed", zap.Error(err))
		return
	}

	client := &connection{
		hub:    h,
		socket: conn,
		sites:  make(map[string]struct{}),
		send:   make(chan Message, defaultBufferSize),
	}
	h.subscribe(client, sites)
	metrics.RealtimeSubscribers.Inc()

	go client.writeLoop()
	client.readLoop()
}

// BroadcastSite delivers a message to every client subscribed to the site.
// Clients whose send buffer is full are disconnected instead of blocking the
// broadcast; closing re-acquires the hub lock, so it happens after the
// subscriber map is released.
func (h *Hub) BroadcastSite(site string, message Message) {
	site = normalizeSite(site)
	if site == "" {
		return
	}

	message.Site = site

	var dropped []*connection

	h.mu.RLock()
	for client := range h.subscribers[site] {
		if !client.trySend(message) {
			dropped = append(dropped, client)
		}
	}
	h.mu.RUnlock()

	for _, client := range dropped {
		h.log.Warn("dropping backpressure client", zap.String("site", site))
		client.close()
	}
}

// BroadcastSites delivers the message once per target site.
func (h *Hub) BroadcastSites(sites []string, message Message) {
	for _, site := range sites {
		h.BroadcastSite(site, message)
	}
}

// SubscriberCount reports how many connections listen on the site.
func (h *Hub) SubscriberCount(site string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.subscribers[normalizeSite(site)])
}

func (h *Hub) subscribe(client *connection, sites []string) {
	h.mu.Lock()
	defer h.mu.Unlock()

	for _, site := range uniqueSites(sites) {
		if _, exists := client.sites[site]; exists {
			continue
		}
		if h.subscribers[site] == nil {
			h.subscribers[site] = make(map[*connection]struct{})
		}
		client.sites[site] = struct{}{}
		h.subscribers[site][client] = struct{}{}
	}
}

func (h *Hub) unsubscribe(client *connection, sites []string) {
	h.mu.Lock()
	defer h.mu.Unlock()

	for _, site := range uniqueSites(sites) {
		h.dropLocked(client, site)
		delete(client.sites, site)
	}
}

func (h *Hub) unregister(client *connection) {
	h.mu.Lock()
	defer h.mu.Unlock()

	for site := range client.sites {
		h.dropLocked(client, site)
	}
	client.sites = nil
}

func (h *Hub) dropLocked(client *connection, site string) {
	clients, ok := h.subscribers[site]
	if !ok {
		return
	}
	delete(clients, client)
	if len(clients) == 0 {
		delete(h.subscribers, site)
	}
}

type connection struct {
	hub    *Hub
	socket *websocket.Conn
	sites  map[string]struct{}
	send   chan Message

	mu     sync.Mutex
	closed bool
	once   sync.Once
}

// trySend enqueues without blocking. It reports false when the buffer is full
// or the connection is already closed; the send channel is only closed while
// holding mu, so a send here can never hit a closed channel.
func (c *connection) trySend(message Message) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return false
	}

	select {
	case c.send <- message:
		return true
	default:
		return false
	}
}

func (c *connection) readLoop() {
	defer c.close()

	c.socket.SetReadLimit(maxMessageSize)
	_ = c.socket.SetReadDeadline(time.Now().Add(pongWait))
	c.socket.SetPongHandler(func(string) error {
		_ = c.socket.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		_, payload, err := c.socket.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				c.hub.log.Debug("unexpected close", zap.Error(err))
			}
			break
		}

		if len(payload) == 0 {
			continue
		}

		var ctrl controlMessage
		if err := json.Unmarshal(payload, &ctrl); err != nil {
			c.hub.log.Debug("invalid control payload", zap.Error(err))
			continue
		}

		switch strings.ToLower(strings.TrimSpace(ctrl.Action)) {
		case "subscribe":
			c.hub.subscribe(c, ctrl.Sites)
		case "unsubscribe":
			c.hub.unsubscribe(c, ctrl.Sites)
		case "ping":
			c.trySend(Message{Event: "pong"})
		}
	}
}

func (c *connection) writeLoop() {
	defer c.close()

	ticker := time.NewTicker(pingPeriod)
	defer ticker.Stop()

	for {
		select {
		case message, ok := <-c.send:
			_ = c.socket.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				_ = c.socket.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.socket.WriteJSON(message); err != nil {
				return
			}
		case <-ticker.C:
			_ = c.socket.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.socket.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

func (c *connection) close() {
	c.once.Do(func() {
		c.mu.Lock()
		c.closed = true
		c.mu.Unlock()

		c.hub.unregister(c)
		close(c.send)
		_ = c.socket.Close()
		metrics.RealtimeSubscribers.Dec()
	})
}

func hostWithoutPort(host string) string {
	host = strings.TrimSpace(host)
	host = strings.TrimPrefix(host, "https://")
	host = strings.TrimPrefix(host, "http://")
	if i := strings.IndexByte(host, '/'); i >= 0 {
		host = host[:i]
	}
	if h, _, err := net.SplitHostPort(host); err == nil {
		return h
	}
	return host
}

func isLoopback(host string) bool {
	if ip := net.ParseIP(host); ip != nil {
		return ip.IsLoopback()
	}
	return strings.EqualFold(host, "localhost")
}

func normalizeSite(site string) string {
	return strings.ToLower(strings.TrimSpace(site))
}

func uniqueSites(sites []string) []string {
	seen := make(map[string]struct{}, len(sites))
	var result []string
	for _, site := range sites {
		if site = normalizeSite(site); site != "" {
			if _, exists := seen[site]; !exists {
				seen[site] = struct{}{}
				result = append(result, site)
			}
		}
	}
	return result
}
