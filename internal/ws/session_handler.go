package ws

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/playmatatu/marbles/internal/physics"
	"github.com/playmatatu/marbles/internal/session"
)

// ShootData is the payload of a "shoot" message. A missing direction means
// straight ahead.
type ShootData struct {
	Power     float64       `json:"power"`
	Direction *physics.Vec2 `json:"direction"`
}

// Shot converts the payload into a validated shot.
func (d ShootData) Shot() (physics.Shot, error) {
	dir := physics.NewVec2(0, -1)
	if d.Direction != nil {
		dir = *d.Direction
	}
	return physics.NewShot(d.Power, dir)
}

// HandleWebSocket upgrades an authenticated request to a session stream.
// GET /api/v1/sessions/:token/ws
func HandleWebSocket(hub *Hub) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := c.Param("token")
		playerID := c.GetInt64("player_id")

		if _, err := hub.sessions.GetForPlayer(token, playerID); err != nil {
			status := http.StatusNotFound
			if errors.Is(err, session.ErrNotOwner) {
				status = http.StatusForbidden
			}
			c.JSON(status, gin.H{"error": err.Error()})
			return
		}

		conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
		if err != nil {
			log.Printf("[WS] Upgrade error: %v", err)
			return
		}

		client := &Client{
			hub:      hub,
			conn:     conn,
			playerID: playerID,
			token:    token,
			send:     make(chan []byte, 256),
		}

		hub.register <- client

		go client.writePump()
		go client.readPump()
	}
}

// readPump reads client messages until the connection drops.
func (c *Client) readPump() {
	defer func() {
		c.hub.unregister <- c
		c.conn.Close()
	}()

	c.conn.SetReadLimit(4096)
	c.conn.SetReadDeadline(time.Now().Add(60 * time.Second))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(60 * time.Second))
		return nil
	})

	for {
		_, message, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				log.Printf("[WS] Unexpected close for player %d: %v", c.playerID, err)
			}
			break
		}

		var msg WSMessage
		if err := json.Unmarshal(message, &msg); err != nil {
			c.sendError("Invalid message")
			continue
		}

		c.handleMessage(msg)
	}
}

// handleMessage processes one client message. Shots are streamed back through
// the session manager's shot listener, so every watcher sees them.
func (c *Client) handleMessage(msg WSMessage) {
	ctx := context.Background()
	sessions := c.hub.sessions

	switch msg.Type {
	case "shoot":
		var data ShootData
		if err := json.Unmarshal(msg.Data, &data); err != nil {
			c.sendError("Invalid shot data")
			return
		}
		shot, err := data.Shot()
		if err != nil {
			c.sendError(err.Error())
			return
		}
		if _, err := sessions.Shoot(ctx, c.token, c.playerID, shot); err != nil {
			c.sendError(err.Error())
		}

	case "ai_shot":
		if _, err := sessions.AIShot(ctx, c.token, c.playerID); err != nil {
			c.sendError(err.Error())
		}

	case "reset":
		snap, err := sessions.Reset(ctx, c.token, c.playerID)
		if err != nil {
			c.sendError(err.Error())
			return
		}
		c.hub.Broadcast(c.token, map[string]interface{}{"type": "state", "state": snap})

	case "get_state":
		s, err := sessions.GetForPlayer(c.token, c.playerID)
		if err != nil {
			c.sendError(err.Error())
			return
		}
		c.sendJSON(map[string]interface{}{"type": "state", "state": s.Snapshot()})

	default:
		c.sendError("Unknown message type")
	}
}
