package ws

import (
	"log"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

const (
	writeTimeout = 10 * time.Second
	pongTimeout  = 60 * time.Second
	pingInterval = 30 * time.Second

	// Room control messages are tiny; anything bigger is garbage.
	maxMessageSize = 1024
)

// Client is one websocket connection that is a member of a room.
type Client struct {
	UserID string
	RoomID string
	Send   chan []byte
	Conn   *websocket.Conn
}

// Hub fans room broadcasts out to every member connection. All
// membership mutation goes through the Register/Unregister channels;
// broadcast delivery is best-effort per recipient, and a client whose
// send buffer stays full is dropped rather than blocking the room.
type Hub struct {
	Clients    map[string]map[*Client]bool // roomID -> members
	Register   chan *Client
	Unregister chan *Client
	Broadcast  chan BroadcastMessage

	// OnRoomEmpty is invoked (from the hub goroutine) after the last
	// member of a room unregisters. Nil means no notification.
	OnRoomEmpty func(roomID string)

	mu sync.RWMutex
}

type BroadcastMessage struct {
	RoomID string
	Data   []byte
}

func NewHub() *Hub {
	return &Hub{
		Clients:    make(map[string]map[*Client]bool),
		Register:   make(chan *Client),
		Unregister: make(chan *Client),
		Broadcast:  make(chan BroadcastMessage, 256),
	}
}

func (h *Hub) Run() {
	for {
		select {
		case client := <-h.Register:
			h.mu.Lock()
			if h.Clients[client.RoomID] == nil {
				h.Clients[client.RoomID] = make(map[*Client]bool)
			}
			h.Clients[client.RoomID][client] = true
			h.mu.Unlock()
		case client := <-h.Unregister:
			h.mu.Lock()
			empty := false
			if clients, ok := h.Clients[client.RoomID]; ok {
				if _, ok := clients[client]; ok {
					delete(clients, client)
					close(client.Send)
					if len(clients) == 0 {
						delete(h.Clients, client.RoomID)
						empty = true
					}
				}
			}
			h.mu.Unlock()
			if empty && h.OnRoomEmpty != nil {
				h.OnRoomEmpty(client.RoomID)
			}
		case msg := <-h.Broadcast:
			h.mu.Lock()
			for client := range h.Clients[msg.RoomID] {
				select {
				case client.Send <- msg.Data:
				default:
					// Slow or dead member; never hold up the room.
					close(client.Send)
					delete(h.Clients[msg.RoomID], client)
				}
			}
			h.mu.Unlock()
		}
	}
}

// MemberCount reports how many connections are currently in a room.
func (h *Hub) MemberCount(roomID string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.Clients[roomID])
}

// SendTo delivers data to a single client, bypassing room fan-out.
// Used for the join-time state snapshot, which goes to the joining
// connection only.
func (h *Hub) SendTo(client *Client, data []byte) {
	select {
	case client.Send <- data:
	default:
		log.Printf("[WS] Send buffer full for user %s in room %s, dropping message", client.UserID, client.RoomID)
	}
}

// WritePump drains the client's send channel onto the wire and keeps
// the connection alive with pings. Runs as one goroutine per client;
// returns when the send channel closes or a write fails.
func (c *Client) WritePump() {
	ticker := time.NewTicker(pingInterval)
	defer func() {
		ticker.Stop()
		c.Conn.Close()
	}()
	for {
		select {
		case message, ok := <-c.Send:
			c.Conn.SetWriteDeadline(time.Now().Add(writeTimeout))
			if !ok {
				c.Conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.Conn.WriteMessage(websocket.TextMessage, message); err != nil {
				log.Printf("[WS] Write error for user %s in room %s: %v", c.UserID, c.RoomID, err)
				return
			}
		case <-ticker.C:
			c.Conn.SetWriteDeadline(time.Now().Add(writeTimeout))
			if err := c.Conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// ReadPump reads messages off the wire, passing each to handle, until
// the connection dies, then unregisters the client. handle runs on the
// read goroutine, so per-room ordering of one member's events follows
// that member's send order.
func (c *Client) ReadPump(hub *Hub, handle func([]byte)) {
	defer func() {
		hub.Unregister <- c
		c.Conn.Close()
	}()
	c.Conn.SetReadLimit(maxMessageSize)
	c.Conn.SetReadDeadline(time.Now().Add(pongTimeout))
	c.Conn.SetPongHandler(func(string) error {
		c.Conn.SetReadDeadline(time.Now().Add(pongTimeout))
		return nil
	})
	for {
		_, message, err := c.Conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				log.Printf("[WS] Read error for user %s in room %s: %v", c.UserID, c.RoomID, err)
			}
			break
		}
		handle(message)
	}
}
