package permission

import (
	"context"

	"github.com/arkadiusoo/travelmate/internal/models"
)

// Capability names a trip action subject to a minimum role.
type Capability int

const (
	CapEditTrip Capability = iota + 1
	CapManageBudget
	CapAddExpenses
	CapManagePoints
	CapInviteParticipants
	CapManageParticipant
	CapAssignOrganizer
)

// minimumRole is the policy table mapping capabilities to the lowest role holding them.
var minimumRole = map[Capability]models.Role{
	CapEditTrip:           models.RoleOrganizer,
	CapManageBudget:       models.RoleOrganizer,
	CapAddExpenses:        models.RoleMember,
	CapManagePoints:       models.RoleMember,
	CapInviteParticipants: models.RoleMember,
	CapManageParticipant:  models.RoleOrganizer,
	CapAssignOrganizer:    models.RoleOrganizer,
}

// MinimumRole returns the lowest role that holds the capability.
func MinimumRole(c Capability) models.Role {
	return minimumRole[c]
}

// Allows reports whether a role holds the capability.
func Allows(role models.Role, c Capability) bool {
	min, ok := minimumRole[c]
	return ok && role.AtLeast(min)
}

// Can reports whether the actor holds the capability on the trip, regardless of invitation status.
func (e *Engine) Can(ctx context.Context, tripID, userID string, c Capability) (bool, error) {
	return e.HasRoleOrHigher(ctx, tripID, userID, MinimumRole(c))
}

// CanAccepted reports whether the actor holds the capability and has accepted the invitation.
func (e *Engine) CanAccepted(ctx context.Context, tripID, userID string, c Capability) (bool, error) {
	return e.HasAcceptedRoleOrHigher(ctx, tripID, userID, MinimumRole(c))
}

func (e *Engine) CanEditTrip(ctx context.Context, tripID, userID string) (bool, error) {
	return e.Can(ctx, tripID, userID, CapEditTrip)
}

func (e *Engine) CanManageBudget(ctx context.Context, tripID, userID string) (bool, error) {
	return e.Can(ctx, tripID, userID, CapManageBudget)
}

func (e *Engine) CanAddExpenses(ctx context.Context, tripID, userID string) (bool, error) {
	return e.Can(ctx, tripID, userID, CapAddExpenses)
}

func (e *Engine) CanManagePoints(ctx context.Context, tripID, userID string) (bool, error) {
	return e.Can(ctx, tripID, userID, CapManagePoints)
}

func (e *Engine) CanInviteParticipants(ctx context.Context, tripID, userID string) (bool, error) {
	return e.Can(ctx, tripID, userID, CapInviteParticipants)
}

func (e *Engine) CanEditTripAccepted(ctx context.Context, tripID, userID string) (bool, error) {
	return e.CanAccepted(ctx, tripID, userID, CapEditTrip)
}

func (e *Engine) CanManageBudgetAccepted(ctx context.Context, tripID, userID string) (bool, error) {
	return e.CanAccepted(ctx, tripID, userID, CapManageBudget)
}

func (e *Engine) CanAddExpensesAccepted(ctx context.Context, tripID, userID string) (bool, error) {
	return e.CanAccepted(ctx, tripID, userID, CapAddExpenses)
}

func (e *Engine) CanManagePointsAccepted(ctx context.Context, tripID, userID string) (bool, error) {
	return e.CanAccepted(ctx, tripID, userID, CapManagePoints)
}

func (e *Engine) CanInviteParticipantsAccepted(ctx context.Context, tripID, userID string) (bool, error) {
	return e.CanAccepted(ctx, tripID, userID, CapInviteParticipants)
}

// CanManageParticipant reports whether the actor may change or remove the target record.
// Organizers manage anyone; every actor manages their own record.
func (e *Engine) CanManageParticipant(ctx context.Context, target *models.Participant, userID string) (bool, error) {
	if target == nil {
		return false, nil
	}
	if target.UserID != "" && target.UserID == userID {
		return true, nil
	}
	return e.Can(ctx, target.TripID, userID, CapManageParticipant)
}

// CanAssignRole reports whether the actor may grant role to someone.
// Only organizers may grant ORGANIZER; other roles need no extra authority.
func (e *Engine) CanAssignRole(ctx context.Context, tripID, userID string, role models.Role) (bool, error) {
	if role != models.RoleOrganizer {
		return true, nil
	}
	return e.Can(ctx, tripID, userID, CapAssignOrganizer)
}
