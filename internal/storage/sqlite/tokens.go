package sqlite

import (
	"context"
	"fmt"
	"time"

	"github.com/arkadiusoo/travelmate/internal/models"
)

// RevokeToken records a logged-out token. Revoking twice is a no-op.
func (s *SQLiteStore) RevokeToken(ctx context.Context, token *models.RevokedToken) error {
	_, err := s.db.ExecContext(ctx,
		"INSERT INTO revoked_tokens (token_id, user_id, expires_at) VALUES (?, ?, ?) ON CONFLICT(token_id) DO NOTHING",
		token.TokenID, token.UserID, token.ExpiresAt.UnixMilli(),
	)
	if err != nil {
		return fmt.Errorf("failed to revoke token: %w", err)
	}
	return nil
}

// IsTokenRevoked reports whether the token ID was revoked.
func (s *SQLiteStore) IsTokenRevoked(ctx context.Context, tokenID string) (bool, error) {
	return s.exists(ctx, "SELECT 1 FROM revoked_tokens WHERE token_id = ?", tokenID)
}

// DeleteExpiredRevokedTokens removes revoked tokens whose expiry is before now.
func (s *SQLiteStore) DeleteExpiredRevokedTokens(ctx context.Context, now time.Time) (int64, error) {
	res, err := s.db.ExecContext(ctx, "DELETE FROM revoked_tokens WHERE expires_at < ?", now.UnixMilli())
	if err != nil {
		return 0, fmt.Errorf("failed to delete expired tokens: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to count deleted tokens: %w", err)
	}
	return n, nil
}
