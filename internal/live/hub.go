package live

import (
	"encoding/json"
	"sync"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

const (
	// PingInterval and PongWait are used for heartbeat.
	PingInterval = 30
	PongWait     = 60
)

// Hub maintains hotel_id -> set of connections and broadcasts dashboard
// refresh events. Uses Redis pub/sub for horizontal scaling: local broadcast
// plus publish to Redis.
type Hub struct {
	// hotelID -> map[clientID]*Client
	rooms    map[uuid.UUID]map[string]*Client
	subs     map[uuid.UUID]func() // cancel Redis subscription per hotel
	mu       sync.RWMutex
	logger   *zap.Logger
	redis    RedisPublisher
	redisSub RedisSubscriber
}

// RedisPublisher is the interface for publishing to Redis (for cross-instance broadcast).
type RedisPublisher interface {
	PublishHotelEvent(hotelID uuid.UUID, event string, payload []byte) error
}

// RedisSubscriber subscribes to hotel channels and invokes handler for incoming events.
type RedisSubscriber interface {
	SubscribeHotel(hotelID uuid.UUID, handler func(event string, payload []byte)) (cancel func(), err error)
}

// NewHub creates a new WebSocket hub.
func NewHub(logger *zap.Logger, redisPub RedisPublisher, redisSub RedisSubscriber) *Hub {
	return &Hub{
		rooms:    make(map[uuid.UUID]map[string]*Client),
		subs:     make(map[uuid.UUID]func()),
		logger:   logger,
		redis:    redisPub,
		redisSub: redisSub,
	}
}

// Register adds a client to a hotel room. Starts the Redis subscription for
// the hotel when the first client joins.
func (h *Hub) Register(c *Client) {
	h.mu.Lock()
	if h.rooms[c.HotelID] == nil {
		h.rooms[c.HotelID] = make(map[string]*Client)
		if h.redisSub != nil {
			cancel, err := h.redisSub.SubscribeHotel(c.HotelID, func(event string, payload []byte) {
				h.BroadcastToHotel(c.HotelID, event, json.RawMessage(payload))
			})
			if err == nil {
				h.subs[c.HotelID] = cancel
			}
		}
	}
	h.rooms[c.HotelID][c.ID] = c
	h.mu.Unlock()
	h.logger.Debug("client joined hotel room", zap.String("client_id", c.ID), zap.String("hotel_id", c.HotelID.String()))
}

// Unregister removes a client from a hotel room. Cancels the Redis
// subscription when the last client leaves.
func (h *Hub) Unregister(c *Client) {
	h.mu.Lock()
	if m, ok := h.rooms[c.HotelID]; ok {
		delete(m, c.ID)
		if len(m) == 0 {
			delete(h.rooms, c.HotelID)
			if cancel, ok := h.subs[c.HotelID]; ok {
				cancel()
				delete(h.subs, c.HotelID)
			}
		}
	}
	h.mu.Unlock()
	h.logger.Debug("client left hotel room", zap.String("client_id", c.ID), zap.String("hotel_id", c.HotelID.String()))
}

// BroadcastToHotel sends a message to all clients viewing a hotel (local only).
func (h *Hub) BroadcastToHotel(hotelID uuid.UUID, event string, payload interface{}) {
	var data []byte
	switch v := payload.(type) {
	case []byte:
		data = v
	case json.RawMessage:
		data = v
	default:
		data, _ = json.Marshal(payload)
	}
	msg := WSMessage{Event: event, Data: data}

	h.mu.RLock()
	clients := h.rooms[hotelID]
	h.mu.RUnlock()

	if clients == nil {
		return
	}
	for _, c := range clients {
		select {
		case c.send <- msg:
		default:
			// buffer full, skip
		}
	}
}

// BroadcastToHotelAndPublish sends to local clients and publishes to Redis
// for other instances.
func (h *Hub) BroadcastToHotelAndPublish(hotelID uuid.UUID, event string, payload interface{}) {
	data, err := json.Marshal(payload)
	if err != nil {
		return
	}
	h.BroadcastToHotel(hotelID, event, payload)
	if h.redis != nil {
		_ = h.redis.PublishHotelEvent(hotelID, event, data)
	}
}

// ViewerCount returns the number of connected clients viewing a hotel.
func (h *Hub) ViewerCount(hotelID uuid.UUID) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.rooms[hotelID])
}
