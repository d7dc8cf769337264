package analytics

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// Result statuses. A result starts pending, then becomes ready, stale (the
// user's active hotel moved on before the job finished) or failed.
const (
	StatusPending = "pending"
	StatusReady   = "ready"
	StatusStale   = "stale"
	StatusFailed  = "failed"
)

// Result is a stored analysis outcome, addressed by request id.
type Result struct {
	RequestID        uuid.UUID  `json:"request_id"`
	UserID           uuid.UUID  `json:"user_id"`
	HotelID          uuid.UUID  `json:"hotel_id"`
	SelectionVersion int64      `json:"selection_version"`
	Status           string     `json:"status"`
	Insights         string     `json:"insights,omitempty"`
	Error            string     `json:"error,omitempty"`
	CreatedAt        time.Time  `json:"created_at"`
	CompletedAt      *time.Time `json:"completed_at,omitempty"`
}

const resultKeyPrefix = "analysis:result:"

// ResultStore keeps analysis results in Redis with a TTL, the same pattern as
// the selection store. Results are transient; the client polls until the
// status leaves pending.
type ResultStore struct {
	client *redis.Client
	ttl    time.Duration
}

// NewResultStore creates a result store. ttl bounds how long a finished or
// pending result stays fetchable.
func NewResultStore(client *redis.Client, ttl time.Duration) *ResultStore {
	return &ResultStore{client: client, ttl: ttl}
}

// Put writes a result, refreshing its TTL.
func (s *ResultStore) Put(ctx context.Context, r *Result) error {
	raw, err := json.Marshal(r)
	if err != nil {
		return err
	}
	return s.client.Set(ctx, resultKeyPrefix+r.RequestID.String(), raw, s.ttl).Err()
}

// Get returns a result, or nil when it does not exist or has expired.
func (s *ResultStore) Get(ctx context.Context, requestID uuid.UUID) (*Result, error) {
	raw, err := s.client.Get(ctx, resultKeyPrefix+requestID.String()).Result()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	var r Result
	if err := json.Unmarshal([]byte(raw), &r); err != nil {
		return nil, err
	}
	return &r, nil
}
