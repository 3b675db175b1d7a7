// Package participant implements the trip invitation lifecycle:
// invite → PENDING → ACCEPTED or DECLINED, with declined users re-invitable.
package participant

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/arkadiusoo/travelmate/internal/apperrors"
	"github.com/arkadiusoo/travelmate/internal/models"
	"github.com/arkadiusoo/travelmate/internal/permission"
	"github.com/arkadiusoo/travelmate/internal/storage"
)

var (
	ErrParticipantNotFound = apperrors.NotFound("Participant not found")
	ErrUserNotFound        = apperrors.NotFound("User not found")

	ErrMissingIdentity    = apperrors.Validation("Either userId or email must be provided")
	ErrIdentityMismatch   = apperrors.Validation("UserId and email do not refer to the same user")
	ErrUnregisteredEmail  = apperrors.Validation("No registered user with this email")
	ErrInvalidRole        = apperrors.Validation("Invalid role")
	ErrInvalidResponse    = apperrors.Validation("Invitation can only be ACCEPTED or DECLINED")
	ErrNotPending         = apperrors.Validation("Only pending invitations can be updated")
	ErrAlreadyParticipant = apperrors.Conflict("User is already a participant of this trip")
	ErrAlreadyPending     = apperrors.Conflict("User already has a pending invitation to this trip")
	ErrTripHasOrganizer   = apperrors.Conflict("Trip already has participants")
	ErrCannotAssignRole   = apperrors.Validation("Only organizers can assign the ORGANIZER role")

	ErrCannotInvite       = apperrors.PermissionDenied("You do not have permission to invite participants to this trip")
	ErrCannotManage       = apperrors.PermissionDenied("You do not have permission to manage this participant")
	ErrNotOwnInvitation   = apperrors.PermissionDenied("You can only respond to your own invitations")
	ErrNotTripParticipant = apperrors.PermissionDenied("You are not a participant of this trip")
)

// Service governs the participant lifecycle of trips.
type Service struct {
	participants storage.ParticipantStore
	users        storage.UserDirectory
	perms        *permission.Engine
	now          func() time.Time
}

// NewService creates a Service over the given stores.
func NewService(participants storage.ParticipantStore, users storage.UserDirectory, perms *permission.Engine) *Service {
	return &Service{
		participants: participants,
		users:        users,
		perms:        perms,
		now:          time.Now,
	}
}

// AddInput describes an invitation. At least one of UserID and Email is required;
// when both are given they must resolve to the same user.
type AddInput struct {
	TripID string
	UserID string
	Email  string
	Role   models.Role
}

// View is a participant enriched with the user's current directory details.
type View struct {
	*models.Participant
	Email     string
	FirstName string
	LastName  string
}

// DisplayName joins first and last name, falling back to the email.
func (v View) DisplayName() string {
	name := strings.TrimSpace(v.FirstName + " " + v.LastName)
	if name == "" {
		return v.Email
	}
	return name
}

// AddParticipant invites a user to a trip, or re-invites one who declined.
func (s *Service) AddParticipant(ctx context.Context, in AddInput, actorID string) (*models.Participant, error) {
	ok, err := s.perms.CanInviteParticipants(ctx, in.TripID, actorID)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, ErrCannotInvite
	}

	userID, email, err := s.resolveIdentity(ctx, in.UserID, in.Email)
	if err != nil {
		return nil, err
	}

	role := in.Role
	if role == "" {
		role = models.RoleMember
	}
	if !role.Valid() {
		return nil, ErrInvalidRole
	}
	if role == models.RoleOrganizer {
		isOrganizer, err := s.perms.HasRoleOrHigher(ctx, in.TripID, actorID, models.RoleOrganizer)
		if err != nil {
			return nil, err
		}
		if !isOrganizer {
			return nil, ErrCannotAssignRole
		}
	}

	existing, err := s.participants.FindParticipantByTripAndUser(ctx, in.TripID, userID)
	switch {
	case err == nil:
		return s.reinvite(ctx, existing, email, role)
	case !errors.Is(err, storage.ErrNotFound):
		return nil, fmt.Errorf("failed to look up participant: %w", err)
	}

	p := &models.Participant{
		TripID: in.TripID,
		UserID: userID,
		Email:  email,
		Role:   role,
		Status: models.StatusPending,
	}
	if err := s.participants.CreateParticipant(ctx, p); err != nil {
		if errors.Is(err, storage.ErrConflict) {
			return s.reinviteAfterConflict(ctx, in.TripID, userID, email, role)
		}
		return nil, err
	}

	slog.Info("Participant invited",
		"trip_id", p.TripID,
		"participant_id", p.ID,
		"user_id", p.UserID,
		"role", p.Role,
		"invited_by", actorID,
	)
	return p, nil
}

// reinvite reopens a DECLINED record; accepted and pending records are conflicts.
func (s *Service) reinvite(ctx context.Context, existing *models.Participant, email string, role models.Role) (*models.Participant, error) {
	if err := conflictFor(existing.Status); err != nil {
		return nil, err
	}

	p, err := s.participants.UpdateParticipant(ctx, existing.ID, func(p *models.Participant) error {
		// Status may have moved since the lookup
		if err := conflictFor(p.Status); err != nil {
			return err
		}
		p.Role = role
		p.Status = models.StatusPending
		p.Email = email
		p.JoinedAt = nil
		return nil
	})
	if err != nil {
		return nil, translateNotFound(err, ErrParticipantNotFound)
	}

	slog.Info("Participant re-invited", "trip_id", p.TripID, "participant_id", p.ID, "role", p.Role)
	return p, nil
}

// reinviteAfterConflict handles an invite that lost the insert race to another record
// for the same user.
func (s *Service) reinviteAfterConflict(ctx context.Context, tripID, userID, email string, role models.Role) (*models.Participant, error) {
	existing, err := s.participants.FindParticipantByTripAndUser(ctx, tripID, userID)
	if errors.Is(err, storage.ErrNotFound) {
		return nil, ErrAlreadyPending
	}
	if err != nil {
		return nil, fmt.Errorf("failed to look up participant: %w", err)
	}
	return s.reinvite(ctx, existing, email, role)
}

func conflictFor(status models.InvitationStatus) error {
	switch status {
	case models.StatusAccepted:
		return ErrAlreadyParticipant
	case models.StatusPending:
		return ErrAlreadyPending
	}
	return nil
}

// resolveIdentity fills in whichever of userID and email is missing from the user directory.
func (s *Service) resolveIdentity(ctx context.Context, userID, email string) (string, string, error) {
	userID = strings.TrimSpace(userID)
	email = strings.ToLower(strings.TrimSpace(email))

	switch {
	case userID == "" && email == "":
		return "", "", ErrMissingIdentity

	case userID != "" && email == "":
		found, err := s.users.FindEmailByUserID(ctx, userID)
		if err != nil {
			return "", "", translateNotFound(err, ErrUserNotFound)
		}
		return userID, found, nil

	default:
		registered, err := s.users.IsRegisteredUser(ctx, email)
		if err != nil {
			return "", "", err
		}
		if !registered {
			return "", "", ErrUnregisteredEmail
		}
		found, err := s.users.FindUserIDByEmail(ctx, email)
		if err != nil {
			return "", "", translateNotFound(err, ErrUnregisteredEmail)
		}
		if userID != "" && userID != found {
			return "", "", ErrIdentityMismatch
		}
		return found, email, nil
	}
}

// UpdateParticipantRole changes the role of an existing participant.
func (s *Service) UpdateParticipantRole(ctx context.Context, id string, role models.Role, actorID string) (*models.Participant, error) {
	target, err := s.getParticipant(ctx, id)
	if err != nil {
		return nil, err
	}
	if !role.Valid() {
		return nil, ErrInvalidRole
	}
	if err := s.requireManage(ctx, target, actorID); err != nil {
		return nil, err
	}
	canAssign, err := s.perms.CanAssignRole(ctx, target.TripID, actorID, role)
	if err != nil {
		return nil, err
	}
	if !canAssign {
		return nil, ErrCannotAssignRole
	}

	p, err := s.participants.UpdateParticipant(ctx, id, func(p *models.Participant) error {
		p.Role = role
		return nil
	})
	if err != nil {
		return nil, translateNotFound(err, ErrParticipantNotFound)
	}

	slog.Info("Participant role updated", "participant_id", id, "role", role, "updated_by", actorID)
	return p, nil
}

// RemoveParticipant deletes a participant record.
func (s *Service) RemoveParticipant(ctx context.Context, id, actorID string) error {
	target, err := s.getParticipant(ctx, id)
	if err != nil {
		return err
	}
	return s.remove(ctx, target, actorID)
}

// RemoveParticipantByEmail deletes the participant invited under email on a trip.
func (s *Service) RemoveParticipantByEmail(ctx context.Context, tripID, email, actorID string) error {
	target, err := s.participants.FindParticipantByTripAndEmail(ctx, tripID, email)
	if err != nil {
		return translateNotFound(err, ErrParticipantNotFound)
	}
	return s.remove(ctx, target, actorID)
}

func (s *Service) remove(ctx context.Context, target *models.Participant, actorID string) error {
	if err := s.requireManage(ctx, target, actorID); err != nil {
		return err
	}
	if err := s.participants.DeleteParticipant(ctx, target.ID); err != nil {
		return translateNotFound(err, ErrParticipantNotFound)
	}

	slog.Info("Participant removed", "trip_id", target.TripID, "participant_id", target.ID, "removed_by", actorID)
	return nil
}

// RespondToInvitation accepts or declines a pending invitation on behalf of the invited user.
// The status check and write happen in one store transaction, so of two concurrent
// responses only one succeeds.
func (s *Service) RespondToInvitation(ctx context.Context, id string, status models.InvitationStatus, actorID string) (*models.Participant, error) {
	if status != models.StatusAccepted && status != models.StatusDeclined {
		return nil, ErrInvalidResponse
	}

	p, err := s.participants.UpdateParticipant(ctx, id, func(p *models.Participant) error {
		if p.Status != models.StatusPending {
			return ErrNotPending
		}
		if p.UserID == "" || p.UserID != actorID {
			return ErrNotOwnInvitation
		}
		p.Status = status
		if status == models.StatusAccepted {
			joined := s.now().UTC()
			p.JoinedAt = &joined
		}
		return nil
	})
	if err != nil {
		return nil, translateNotFound(err, ErrParticipantNotFound)
	}

	slog.Info("Invitation answered", "trip_id", p.TripID, "participant_id", p.ID, "status", p.Status)
	return p, nil
}

// GetParticipantsByTrip lists a trip's participants with names and emails read live
// from the user directory. The actor must have joined the trip.
func (s *Service) GetParticipantsByTrip(ctx context.Context, tripID, actorID string) ([]View, error) {
	ok, err := s.perms.IsAcceptedParticipant(ctx, tripID, actorID)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, ErrNotTripParticipant
	}

	participants, err := s.participants.ListParticipantsByTrip(ctx, tripID)
	if err != nil {
		return nil, err
	}
	return s.enrich(ctx, participants)
}

// ListInvitationsForUser returns the pending invitations addressed to the user.
func (s *Service) ListInvitationsForUser(ctx context.Context, userID string) ([]View, error) {
	email, err := s.users.FindEmailByUserID(ctx, userID)
	if err != nil && !errors.Is(err, storage.ErrNotFound) {
		return nil, err
	}

	participants, err := s.participants.ListPendingParticipantsForUser(ctx, userID, email)
	if err != nil {
		return nil, err
	}
	return s.enrich(ctx, participants)
}

// CreateOrganizer records the creator of a new trip as its accepted organizer.
// It only succeeds while the trip has no participants; of concurrent calls on a
// fresh trip exactly one wins.
func (s *Service) CreateOrganizer(ctx context.Context, tripID, userID string) (*models.Participant, error) {
	email, err := s.users.FindEmailByUserID(ctx, userID)
	if err != nil {
		return nil, translateNotFound(err, ErrUserNotFound)
	}

	joined := s.now().UTC()
	p := &models.Participant{
		TripID:   tripID,
		UserID:   userID,
		Email:    email,
		Role:     models.RoleOrganizer,
		Status:   models.StatusAccepted,
		JoinedAt: &joined,
	}
	if err := s.participants.CreateFirstParticipant(ctx, p); err != nil {
		if errors.Is(err, storage.ErrConflict) {
			return nil, apperrors.Wrap(ErrTripHasOrganizer.Kind, ErrTripHasOrganizer.Message, err)
		}
		return nil, err
	}

	slog.Info("Trip organizer registered", "trip_id", tripID, "user_id", userID)
	return p, nil
}

func (s *Service) enrich(ctx context.Context, participants []*models.Participant) ([]View, error) {
	ids := make([]string, 0, len(participants))
	for _, p := range participants {
		if p.UserID != "" {
			ids = append(ids, p.UserID)
		}
	}
	users, err := s.users.GetUsersByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}

	views := make([]View, 0, len(participants))
	for _, p := range participants {
		v := View{Participant: p, Email: p.Email}
		if u, ok := users[p.UserID]; ok {
			v.Email = u.Email
			v.FirstName = u.FirstName
			v.LastName = u.LastName
		}
		views = append(views, v)
	}
	return views, nil
}

func (s *Service) getParticipant(ctx context.Context, id string) (*models.Participant, error) {
	p, err := s.participants.GetParticipant(ctx, id)
	if err != nil {
		return nil, translateNotFound(err, ErrParticipantNotFound)
	}
	return p, nil
}

func (s *Service) requireManage(ctx context.Context, target *models.Participant, actorID string) error {
	ok, err := s.perms.CanManageParticipant(ctx, target, actorID)
	if err != nil {
		return err
	}
	if !ok {
		return ErrCannotManage
	}
	return nil
}

// translateNotFound swaps storage.ErrNotFound for a domain error and passes others through.
func translateNotFound(err error, notFound *apperrors.Error) error {
	if errors.Is(err, storage.ErrNotFound) {
		return apperrors.Wrap(notFound.Kind, notFound.Message, err)
	}
	return err
}
