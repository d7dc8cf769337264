package live

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const (
	channelPrefix  = "hotel:"
	publishTimeout = 5 * time.Second
)

// redisPayload is the message published to Redis for cross-instance broadcast.
// Origin identifies the publishing instance so it can skip its own messages
// on the subscribe side; local clients already received them directly.
type redisPayload struct {
	Event  string          `json:"event"`
	Data   json.RawMessage `json:"data"`
	Origin string          `json:"origin,omitempty"`
	At     int64           `json:"at"`
}

// RedisPubSub implements RedisPublisher and RedisSubscriber over Redis pub/sub.
type RedisPubSub struct {
	client *redis.Client
	logger *zap.Logger
	id     string
}

// NewRedisPubSub creates a Redis pub/sub bridge for hotel dashboard events.
func NewRedisPubSub(client *redis.Client, logger *zap.Logger) *RedisPubSub {
	return &RedisPubSub{client: client, logger: logger, id: uuid.NewString()}
}

// PublishHotelEvent publishes an event to the hotel's Redis channel.
func (r *RedisPubSub) PublishHotelEvent(hotelID uuid.UUID, event string, payload []byte) error {
	channel := channelPrefix + hotelID.String()
	body, err := json.Marshal(redisPayload{Event: event, Data: payload, Origin: r.id, At: time.Now().Unix()})
	if err != nil {
		return err
	}
	ctx, cancel := context.WithTimeout(context.Background(), publishTimeout)
	defer cancel()
	return r.client.Publish(ctx, channel, body).Err()
}

// SubscribeHotel subscribes to a hotel's Redis channel and calls handler for
// each message. Returns a cancel function to stop the subscription.
func (r *RedisPubSub) SubscribeHotel(hotelID uuid.UUID, handler func(event string, payload []byte)) (cancel func(), err error) {
	channel := channelPrefix + hotelID.String()
	ctx, cancelCtx := context.WithCancel(context.Background())
	pubsub := r.client.Subscribe(ctx, channel)
	_, err = pubsub.Receive(ctx)
	if err != nil {
		cancelCtx()
		return nil, fmt.Errorf("subscribe: %w", err)
	}
	ch := pubsub.Channel()
	go func() {
		defer pubsub.Close()
		for {
			select {
			case <-ctx.Done():
				return
			case msg, ok := <-ch:
				if !ok {
					return
				}
				event, data, deliver := r.decode([]byte(msg.Payload))
				if !deliver {
					continue
				}
				handler(event, data)
			}
		}
	}()
	cancel = func() { cancelCtx() }
	return cancel, nil
}

// decode parses a raw pub/sub message. Messages this instance published are
// dropped, otherwise every local client would see each event twice.
func (r *RedisPubSub) decode(raw []byte) (event string, data []byte, deliver bool) {
	var p redisPayload
	if err := json.Unmarshal(raw, &p); err != nil {
		return "", nil, false
	}
	if p.Origin != "" && p.Origin == r.id {
		return "", nil, false
	}
	return p.Event, p.Data, true
}
