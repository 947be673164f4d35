// Package preview pushes draft-change events to live preview clients
// over WebSockets. Each page is a room; every editor surface and
// preview pane for that page joins it and refetches on notification.
package preview

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

// Client is one connected preview socket
type Client struct {
	ID       string
	UserID   string
	Conn     *websocket.Conn
	Send     chan []byte
	hub      *Hub
	pageID   string
	closedMu sync.Mutex
	closed   bool
}

// Event is what the hub pushes to preview clients
type Event struct {
	Type   string `json:"type"`
	PageID string `json:"page_id"`
}

const EventDraftChanged = "draft_changed"

// Hub manages preview connections, one room per page
type Hub struct {
	rooms map[string]map[*Client]bool

	broadcast  chan *roomMessage
	register   chan *Client
	unregister chan *Client

	mu     sync.RWMutex
	logger *zap.Logger
	ctx    context.Context
}

type roomMessage struct {
	pageID  string
	message []byte
	exclude *Client
}

// NewHub creates a preview hub and starts its event loop
func NewHub(ctx context.Context, logger *zap.Logger) *Hub {
	h := &Hub{
		rooms:      make(map[string]map[*Client]bool),
		broadcast:  make(chan *roomMessage, 256),
		register:   make(chan *Client, 64),
		unregister: make(chan *Client, 64),
		logger:     logger,
		ctx:        ctx,
	}

	go h.run()

	return h
}

func (h *Hub) run() {
	ticker := time.NewTicker(30 * time.Second)
	defer ticker.Stop()

	for {
		select {
		case <-h.ctx.Done():
			h.logger.Info("Preview hub shutting down")
			h.closeAllConnections()
			return

		case client := <-h.register:
			h.registerClient(client)

		case client := <-h.unregister:
			h.unregisterClient(client)

		case msg := <-h.broadcast:
			h.broadcastToRoom(msg)

		case <-ticker.C:
			h.mu.RLock()
			roomCount := len(h.rooms)
			clientCount := 0
			for _, clients := range h.rooms {
				clientCount += len(clients)
			}
			h.mu.RUnlock()

			h.logger.Debug("Preview hub stats",
				zap.Int("rooms", roomCount),
				zap.Int("clients", clientCount),
			)
		}
	}
}

// Join registers a client to a page's room
func (h *Hub) Join(client *Client, pageID string) {
	client.hub = h
	client.pageID = pageID
	h.register <- client
}

// Leave unregisters a client
func (h *Hub) Leave(client *Client) {
	h.unregister <- client
}

// NotifyDraftChanged tells every preview of a page to refetch. It
// satisfies the editor's Notifier contract and never blocks.
func (h *Hub) NotifyDraftChanged(pageID string) {
	payload, err := json.Marshal(Event{Type: EventDraftChanged, PageID: pageID})
	if err != nil {
		return
	}
	select {
	case h.broadcast <- &roomMessage{pageID: pageID, message: payload}:
	default:
		h.logger.Warn("Preview broadcast queue full, dropping event",
			zap.String("page_id", pageID))
	}
}

func (h *Hub) registerClient(client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.rooms[client.pageID] == nil {
		h.rooms[client.pageID] = make(map[*Client]bool)
		h.logger.Info("Created preview room",
			zap.String("page_id", client.pageID),
		)
	}

	h.rooms[client.pageID][client] = true

	h.logger.Info("Preview client joined",
		zap.String("client_id", client.ID),
		zap.String("user_id", client.UserID),
		zap.String("page_id", client.pageID),
		zap.Int("room_size", len(h.rooms[client.pageID])),
	)

	go client.writePump()
	go client.readPump()
}

func (h *Hub) unregisterClient(client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if clients, ok := h.rooms[client.pageID]; ok {
		if _, exists := clients[client]; exists {
			delete(clients, client)

			client.closedMu.Lock()
			if !client.closed {
				close(client.Send)
				client.closed = true
			}
			client.closedMu.Unlock()

			if len(clients) == 0 {
				delete(h.rooms, client.pageID)
				h.logger.Info("Removed empty preview room",
					zap.String("page_id", client.pageID),
				)
			}
		}
	}
}

func (h *Hub) broadcastToRoom(msg *roomMessage) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	clients, exists := h.rooms[msg.pageID]
	if !exists {
		return
	}

	for client := range clients {
		if msg.exclude != nil && client == msg.exclude {
			continue
		}

		// Non-blocking send
		select {
		case client.Send <- msg.message:
		default:
			h.logger.Warn("Preview client send buffer full, dropping message",
				zap.String("client_id", client.ID),
			)
		}
	}
}

func (h *Hub) closeAllConnections() {
	h.mu.Lock()
	defer h.mu.Unlock()

	for pageID, clients := range h.rooms {
		for client := range clients {
			client.closedMu.Lock()
			if !client.closed {
				close(client.Send)
				client.closed = true
				client.Conn.Close()
			}
			client.closedMu.Unlock()
		}
		delete(h.rooms, pageID)
	}
}

// RoomSize returns the number of clients previewing a page
func (h *Hub) RoomSize(pageID string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()

	if clients, exists := h.rooms[pageID]; exists {
		return len(clients)
	}
	return 0
}

const (
	// Time allowed to write a message to the peer
	writeWait = 10 * time.Second

	// Time allowed to read the next pong message from the peer
	pongWait = 60 * time.Second

	// Send pings to peer with this period (must be less than pongWait)
	pingPeriod = (pongWait * 9) / 10

	// Maximum message size allowed from peer; previews only listen,
	// so anything beyond a ping-sized frame is suspect
	maxMessageSize = 4 * 1024
)

// readPump drains the connection so close frames and pongs are
// processed. Preview clients have nothing to say; inbound payloads
// are discarded.
func (c *Client) readPump() {
	defer func() {
		c.hub.Leave(c)
		c.Conn.Close()
	}()

	c.Conn.SetReadDeadline(time.Now().Add(pongWait))
	c.Conn.SetReadLimit(maxMessageSize)
	c.Conn.SetPongHandler(func(string) error {
		c.Conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		if _, _, err := c.Conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				c.hub.logger.Error("Preview socket read error",
					zap.String("client_id", c.ID),
					zap.Error(err),
				)
			}
			break
		}
	}
}

// writePump pumps events from the hub to the WebSocket connection
func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.Conn.Close()
	}()

	for {
		select {
		case message, ok := <-c.Send:
			c.Conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				c.Conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}

			if err := c.Conn.WriteMessage(websocket.TextMessage, message); err != nil {
				return
			}

		case <-ticker.C:
			c.Conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.Conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
