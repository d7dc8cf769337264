package live

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true // allow all origins in dev; restrict in production
	},
}

// WSMessage is the WebSocket message envelope.
type WSMessage struct {
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data,omitempty"`
}

// Client represents a single WebSocket connection watching one hotel.
type Client struct {
	ID      string
	HotelID uuid.UUID
	UserID  uuid.UUID
	hub     *Hub
	conn    *websocket.Conn
	send    chan WSMessage
	logger  *zap.Logger
}

// AccessCheck reports whether a user may view a hotel. The same check the
// HTTP layer runs before serving hotel data.
type AccessCheck func(ctx context.Context, userID, hotelID uuid.UUID) (bool, error)

// ServeWs handles the WebSocket upgrade and runs the client loop. The token
// rides in the query string because browsers cannot set headers on WebSocket
// connects.
func ServeWs(hub *Hub, logger *zap.Logger, jwtValidate func(token string) (userID uuid.UUID, err error), hasAccess AccessCheck) gin.HandlerFunc {
	return func(c *gin.Context) {
		hotelIDStr := c.Query("hotel_id")
		token := c.Query("token")
		if hotelIDStr == "" || token == "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "hotel_id and token required"})
			return
		}
		hotelID, err := uuid.Parse(hotelIDStr)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid hotel_id"})
			return
		}
		userID, err := jwtValidate(token)
		if err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid token"})
			return
		}
		ok, err := hasAccess(c.Request.Context(), userID, hotelID)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "access check failed"})
			return
		}
		if !ok {
			c.JSON(http.StatusForbidden, gin.H{"error": "hotel is not in your accessible set"})
			return
		}

		conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
		if err != nil {
			logger.Warn("websocket upgrade failed", zap.Error(err))
			return
		}

		client := &Client{
			ID:      uuid.New().String(),
			HotelID: hotelID,
			UserID:  userID,
			hub:     hub,
			conn:    conn,
			send:    make(chan WSMessage, 256),
			logger:  logger,
		}
		hub.Register(client)
		go client.writePump()
		client.readPump()
	}
}

func (c *Client) readPump() {
	defer func() {
		c.hub.Unregister(c)
		_ = c.conn.Close()
	}()

	c.conn.SetReadLimit(65536)
	_ = c.conn.SetReadDeadline(time.Now().Add(PongWait * time.Second))
	c.conn.SetPongHandler(func(string) error {
		_ = c.conn.SetReadDeadline(time.Now().Add(PongWait * time.Second))
		return nil
	})

	for {
		var msg WSMessage
		if err := c.conn.ReadJSON(&msg); err != nil {
			break
		}
		_ = c.conn.SetReadDeadline(time.Now().Add(PongWait * time.Second))

		switch msg.Event {
		case "join":
			c.hub.BroadcastToHotelAndPublish(c.HotelID, "viewer_count", map[string]int{
				"count": c.hub.ViewerCount(c.HotelID),
			})
		default:
			// clients only listen; everything else is ignored
		}
	}
}

func (c *Client) writePump() {
	ticker := time.NewTicker(PingInterval * time.Second)
	defer func() {
		ticker.Stop()
		_ = c.conn.Close()
	}()

	for {
		select {
		case msg, ok := <-c.send:
			if !ok {
				_ = c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			_ = c.conn.SetWriteDeadline(time.Now().Add(10 * time.Second))
			if err := c.conn.WriteJSON(msg); err != nil {
				return
			}
		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(10 * time.Second))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
