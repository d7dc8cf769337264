package auth

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// SelectionResetter clears a user's active-hotel selection (and bumps its
// version so in-flight work keyed to the old selection is discarded).
type SelectionResetter interface {
	Reset(ctx context.Context, userID uuid.UUID) error
}

// SessionManager implements SessionEnder: it revokes the token and resets the
// active-hotel selection in one call, so sign-out is a single commit point.
type SessionManager struct {
	revoker    *Revoker
	selections SelectionResetter
}

// NewSessionManager creates a session manager.
func NewSessionManager(revoker *Revoker, selections SelectionResetter) *SessionManager {
	return &SessionManager{revoker: revoker, selections: selections}
}

// End revokes the token and resets selection state for the user.
func (m *SessionManager) End(ctx context.Context, userID uuid.UUID, jti string, expiresAt time.Time) error {
	if err := m.revoker.Revoke(ctx, jti, expiresAt); err != nil {
		return fmt.Errorf("revoke token: %w", err)
	}
	if err := m.selections.Reset(ctx, userID); err != nil {
		return fmt.Errorf("reset selection: %w", err)
	}
	return nil
}
