package ws

import (
	"encoding/json"
	"log"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/playmatatu/marbles/internal/session"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true // CORS is enforced on the HTTP routes
	},
}

// Client is one websocket connection watching a session.
type Client struct {
	hub      *Hub
	conn     *websocket.Conn
	playerID int64
	token    string
	send     chan []byte
}

// Hub fans session events out to every connection watching that session.
type Hub struct {
	sessions   *session.Manager
	rooms      map[string]map[*Client]bool // session token -> clients
	register   chan *Client
	unregister chan *Client
	mu         sync.RWMutex
}

func NewHub(sessions *session.Manager) *Hub {
	return &Hub{
		sessions:   sessions,
		rooms:      make(map[string]map[*Client]bool),
		register:   make(chan *Client),
		unregister: make(chan *Client),
	}
}

// WSMessage is the envelope for every message in either direction.
type WSMessage struct {
	Type string          `json:"type"`
	Data json.RawMessage `json:"data,omitempty"`
}

// Broadcast sends a message to every client in a session's room. Slow
// clients drop messages rather than stall the round.
func (h *Hub) Broadcast(token string, message interface{}) {
	data, err := json.Marshal(message)
	if err != nil {
		log.Printf("[WS] Error marshaling message: %v", err)
		return
	}

	h.mu.RLock()
	defer h.mu.RUnlock()

	for client := range h.rooms[token] {
		select {
		case client.send <- data:
		default:
			log.Printf("[WS] Send buffer full for player %d in session %s, dropping message", client.playerID, token)
		}
	}
}

// RoomSize returns how many connections watch a session.
func (h *Hub) RoomSize(token string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.rooms[token])
}

// PublishShot streams a resolved shot frame by frame, then its outcome. It is
// registered as the session manager's shot listener.
func (h *Hub) PublishShot(report *session.ShotReport) {
	if h.RoomSize(report.Token) == 0 {
		return
	}
	h.Broadcast(report.Token, map[string]interface{}{"type": "shot_started", "shot": report.Shot})
	for _, f := range report.Frames {
		h.Broadcast(report.Token, map[string]interface{}{
			"type":   "frame",
			"tick":   f.Tick,
			"bodies": f.Bodies,
			"events": f.Events,
		})
	}
	h.Broadcast(report.Token, map[string]interface{}{
		"type":        "outcome",
		"outcome":     report.Outcome,
		"state":       report.Snapshot,
		"progress":    report.Progress,
		"thinking_ms": report.ThinkingMS,
	})
}

// Run registers and unregisters clients until stop is closed.
func (h *Hub) Run(stop <-chan struct{}) {
	for {
		select {
		case <-stop:
			return

		case client := <-h.register:
			h.mu.Lock()
			if _, ok := h.rooms[client.token]; !ok {
				h.rooms[client.token] = make(map[*Client]bool)
			}
			h.rooms[client.token][client] = true
			size := len(h.rooms[client.token])
			h.mu.Unlock()
			log.Printf("[WS] Player %d connected to session %s (room_size=%d)", client.playerID, client.token, size)

			if s, err := h.sessions.Get(client.token); err == nil {
				client.sendJSON(map[string]interface{}{"type": "state", "state": s.Snapshot()})
			}

		case client := <-h.unregister:
			h.mu.Lock()
			if room, ok := h.rooms[client.token]; ok && room[client] {
				delete(room, client)
				if len(room) == 0 {
					delete(h.rooms, client.token)
				}
				close(client.send)
				log.Printf("[WS] Player %d disconnected from session %s", client.playerID, client.token)
			}
			h.mu.Unlock()
		}
	}
}

// writePump writes messages to the websocket connection.
func (c *Client) writePump() {
	ticker := time.NewTicker(30 * time.Second)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case message, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(10 * time.Second))
			if !ok {
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, message); err != nil {
				log.Printf("[WS] Write error for player %d: %v", c.playerID, err)
				return
			}

		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(10 * time.Second))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				log.Printf("[WS] Ping error for player %d: %v", c.playerID, err)
				return
			}
		}
	}
}

func (c *Client) sendJSON(v interface{}) {
	data, err := json.Marshal(v)
	if err != nil {
		log.Printf("[WS] Error marshaling message: %v", err)
		return
	}
	select {
	case c.send <- data:
	default:
		log.Printf("[WS] Send buffer full for player %d, dropping message", c.playerID)
	}
}

func (c *Client) sendError(message string) {
	c.sendJSON(map[string]interface{}{"type": "error", "message": message})
}
