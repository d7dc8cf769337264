package hotels

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

const (
	selectionKeyPrefix = "selection:"
	versionKeyPrefix   = "selection:ver:"
)

// Selection is a user's active-hotel pointer. Version increases on every
// change (including reset), so work enqueued against an older version can be
// recognized as stale and discarded.
type Selection struct {
	HotelID uuid.UUID `json:"hotel_id"`
	Version int64     `json:"version"`
}

// SelectionStore persists active-hotel selections in Redis so they survive
// page reloads and are shared across server instances.
type SelectionStore struct {
	client *redis.Client
}

// NewSelectionStore creates a selection store.
func NewSelectionStore(client *redis.Client) *SelectionStore {
	return &SelectionStore{client: client}
}

// Get returns the user's selection, or nil when none is stored.
func (s *SelectionStore) Get(ctx context.Context, userID uuid.UUID) (*Selection, error) {
	raw, err := s.client.Get(ctx, selectionKeyPrefix+userID.String()).Result()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get selection: %w", err)
	}
	var sel Selection
	if err := json.Unmarshal([]byte(raw), &sel); err != nil {
		return nil, fmt.Errorf("decode selection: %w", err)
	}
	return &sel, nil
}

// Set stores the selection and bumps the version. Callers must validate the
// hotel against the user's visible set first; the store itself only persists.
func (s *SelectionStore) Set(ctx context.Context, userID, hotelID uuid.UUID) (*Selection, error) {
	version, err := s.client.Incr(ctx, versionKeyPrefix+userID.String()).Result()
	if err != nil {
		return nil, fmt.Errorf("bump selection version: %w", err)
	}
	sel := Selection{HotelID: hotelID, Version: version}
	raw, err := json.Marshal(sel)
	if err != nil {
		return nil, err
	}
	if err := s.client.Set(ctx, selectionKeyPrefix+userID.String(), raw, 0).Err(); err != nil {
		return nil, fmt.Errorf("store selection: %w", err)
	}
	return &sel, nil
}

// Reset drops the selection and bumps the version, invalidating any in-flight
// work tied to the previous selection. Used at sign-out and on lost access.
func (s *SelectionStore) Reset(ctx context.Context, userID uuid.UUID) error {
	if err := s.client.Incr(ctx, versionKeyPrefix+userID.String()).Err(); err != nil {
		return fmt.Errorf("bump selection version: %w", err)
	}
	if err := s.client.Del(ctx, selectionKeyPrefix+userID.String()).Err(); err != nil {
		return fmt.Errorf("delete selection: %w", err)
	}
	return nil
}
