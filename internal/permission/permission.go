// Package permission derives what an actor may do on a trip from their participant record.
// It stores no state of its own.
package permission

import (
	"context"
	"errors"
	"fmt"

	"github.com/arkadiusoo/travelmate/internal/models"
	"github.com/arkadiusoo/travelmate/internal/storage"
)

// ParticipantReader is the subset of the participant store the engine reads.
type ParticipantReader interface {
	FindParticipantByTripAndUser(ctx context.Context, tripID, userID string) (*models.Participant, error)
}

// Engine answers authorization questions for trip actions.
type Engine struct {
	participants ParticipantReader
}

// NewEngine creates an Engine over the given participant store.
func NewEngine(participants ParticipantReader) *Engine {
	return &Engine{participants: participants}
}

// lookup returns the actor's participant record, or nil when they have none.
func (e *Engine) lookup(ctx context.Context, tripID, userID string) (*models.Participant, error) {
	if tripID == "" || userID == "" {
		return nil, nil
	}
	p, err := e.participants.FindParticipantByTripAndUser(ctx, tripID, userID)
	if errors.Is(err, storage.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to look up participant: %w", err)
	}
	return p, nil
}

// GetRole returns the actor's role regardless of invitation status.
// ok is false when the actor has no participant record on the trip.
func (e *Engine) GetRole(ctx context.Context, tripID, userID string) (role models.Role, ok bool, err error) {
	p, err := e.lookup(ctx, tripID, userID)
	if err != nil || p == nil {
		return "", false, err
	}
	return p.Role, true, nil
}

// GetAcceptedRole returns the actor's role only if they accepted the invitation.
func (e *Engine) GetAcceptedRole(ctx context.Context, tripID, userID string) (role models.Role, ok bool, err error) {
	p, err := e.lookup(ctx, tripID, userID)
	if err != nil || p == nil || !p.IsAccepted() {
		return "", false, err
	}
	return p.Role, true, nil
}

// HasRoleOrHigher reports whether the actor's role is at least min.
func (e *Engine) HasRoleOrHigher(ctx context.Context, tripID, userID string, min models.Role) (bool, error) {
	role, ok, err := e.GetRole(ctx, tripID, userID)
	if err != nil || !ok {
		return false, err
	}
	return role.AtLeast(min), nil
}

// HasAcceptedRoleOrHigher is HasRoleOrHigher gated on ACCEPTED status.
func (e *Engine) HasAcceptedRoleOrHigher(ctx context.Context, tripID, userID string, min models.Role) (bool, error) {
	role, ok, err := e.GetAcceptedRole(ctx, tripID, userID)
	if err != nil || !ok {
		return false, err
	}
	return role.AtLeast(min), nil
}

// IsAcceptedParticipant reports whether the actor joined the trip in any role.
func (e *Engine) IsAcceptedParticipant(ctx context.Context, tripID, userID string) (bool, error) {
	_, ok, err := e.GetAcceptedRole(ctx, tripID, userID)
	return ok, err
}
