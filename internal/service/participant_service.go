package service

import (
	"context"
	"log/slog"

	"connectrpc.com/connect"

	"github.com/arkadiusoo/travelmate/internal/apperrors"
	"github.com/arkadiusoo/travelmate/internal/models"
	"github.com/arkadiusoo/travelmate/internal/participant"
	"github.com/arkadiusoo/travelmate/pkg/api"
)

// ParticipantService implements the Connect ParticipantService.
type ParticipantService struct {
	participants *participant.Service
}

var _ api.ParticipantServiceHandler = (*ParticipantService)(nil)

// NewParticipantService creates a ParticipantService backed by the invitation state machine.
func NewParticipantService(participants *participant.Service) *ParticipantService {
	return &ParticipantService{participants: participants}
}

// AddParticipant invites a user to a trip.
func (s *ParticipantService) AddParticipant(ctx context.Context, req *connect.Request[api.AddParticipantRequest]) (*connect.Response[api.AddParticipantResponse], error) {
	actor, err := actorID(ctx)
	if err != nil {
		return nil, err
	}

	slog.Info("AddParticipant request received",
		"trip_id", req.Msg.TripID,
		"user_id", req.Msg.UserID,
		"email", req.Msg.Email,
		"role", req.Msg.Role,
	)

	role, err := parseRole(req.Msg.Role)
	if err != nil {
		return nil, apperrors.ToConnect(err)
	}

	p, err := s.participants.AddParticipant(ctx, participant.AddInput{
		TripID: req.Msg.TripID,
		UserID: req.Msg.UserID,
		Email:  req.Msg.Email,
		Role:   role,
	}, actor)
	if err != nil {
		slog.Warn("AddParticipant failed", "trip_id", req.Msg.TripID, "error", err)
		return nil, apperrors.ToConnect(err)
	}

	return connect.NewResponse(&api.AddParticipantResponse{Participant: toAPIParticipant(p)}), nil
}

// UpdateParticipantRole changes a participant's role.
func (s *ParticipantService) UpdateParticipantRole(ctx context.Context, req *connect.Request[api.UpdateParticipantRoleRequest]) (*connect.Response[api.UpdateParticipantRoleResponse], error) {
	actor, err := actorID(ctx)
	if err != nil {
		return nil, err
	}

	slog.Info("UpdateParticipantRole request received", "participant_id", req.Msg.ParticipantID, "role", req.Msg.Role)

	role, err := models.ParseRole(req.Msg.Role)
	if err != nil {
		return nil, apperrors.ToConnect(participant.ErrInvalidRole)
	}

	p, err := s.participants.UpdateParticipantRole(ctx, req.Msg.ParticipantID, role, actor)
	if err != nil {
		slog.Warn("UpdateParticipantRole failed", "participant_id", req.Msg.ParticipantID, "error", err)
		return nil, apperrors.ToConnect(err)
	}

	return connect.NewResponse(&api.UpdateParticipantRoleResponse{Participant: toAPIParticipant(p)}), nil
}

// RemoveParticipant deletes a participant by id.
func (s *ParticipantService) RemoveParticipant(ctx context.Context, req *connect.Request[api.RemoveParticipantRequest]) (*connect.Response[api.RemoveParticipantResponse], error) {
	actor, err := actorID(ctx)
	if err != nil {
		return nil, err
	}

	slog.Info("RemoveParticipant request received", "participant_id", req.Msg.ParticipantID)

	if err := s.participants.RemoveParticipant(ctx, req.Msg.ParticipantID, actor); err != nil {
		slog.Warn("RemoveParticipant failed", "participant_id", req.Msg.ParticipantID, "error", err)
		return nil, apperrors.ToConnect(err)
	}

	return connect.NewResponse(&api.RemoveParticipantResponse{}), nil
}

// RemoveParticipantByEmail deletes the participant invited under an email.
func (s *ParticipantService) RemoveParticipantByEmail(ctx context.Context, req *connect.Request[api.RemoveParticipantByEmailRequest]) (*connect.Response[api.RemoveParticipantByEmailResponse], error) {
	actor, err := actorID(ctx)
	if err != nil {
		return nil, err
	}

	slog.Info("RemoveParticipantByEmail request received", "trip_id", req.Msg.TripID, "email", req.Msg.Email)

	if err := s.participants.RemoveParticipantByEmail(ctx, req.Msg.TripID, req.Msg.Email, actor); err != nil {
		slog.Warn("RemoveParticipantByEmail failed", "trip_id", req.Msg.TripID, "error", err)
		return nil, apperrors.ToConnect(err)
	}

	return connect.NewResponse(&api.RemoveParticipantByEmailResponse{}), nil
}

// RespondToInvitation accepts or declines the caller's invitation.
func (s *ParticipantService) RespondToInvitation(ctx context.Context, req *connect.Request[api.RespondToInvitationRequest]) (*connect.Response[api.RespondToInvitationResponse], error) {
	actor, err := actorID(ctx)
	if err != nil {
		return nil, err
	}

	slog.Info("RespondToInvitation request received", "participant_id", req.Msg.ParticipantID, "status", req.Msg.Status)

	status, err := models.ParseInvitationStatus(req.Msg.Status)
	if err != nil {
		return nil, apperrors.ToConnect(participant.ErrInvalidResponse)
	}

	p, err := s.participants.RespondToInvitation(ctx, req.Msg.ParticipantID, status, actor)
	if err != nil {
		slog.Warn("RespondToInvitation failed", "participant_id", req.Msg.ParticipantID, "error", err)
		return nil, apperrors.ToConnect(err)
	}

	return connect.NewResponse(&api.RespondToInvitationResponse{Participant: toAPIParticipant(p)}), nil
}

// ListParticipants returns a trip's participants with live user details.
func (s *ParticipantService) ListParticipants(ctx context.Context, req *connect.Request[api.ListParticipantsRequest]) (*connect.Response[api.ListParticipantsResponse], error) {
	actor, err := actorID(ctx)
	if err != nil {
		return nil, err
	}

	views, err := s.participants.GetParticipantsByTrip(ctx, req.Msg.TripID, actor)
	if err != nil {
		slog.Warn("ListParticipants failed", "trip_id", req.Msg.TripID, "error", err)
		return nil, apperrors.ToConnect(err)
	}

	slog.Info("ListParticipants successful", "trip_id", req.Msg.TripID, "count", len(views))
	return connect.NewResponse(&api.ListParticipantsResponse{Participants: toAPIParticipantViews(views)}), nil
}

// ListMyInvitations returns the caller's pending invitations.
func (s *ParticipantService) ListMyInvitations(ctx context.Context, req *connect.Request[api.ListMyInvitationsRequest]) (*connect.Response[api.ListMyInvitationsResponse], error) {
	actor, err := actorID(ctx)
	if err != nil {
		return nil, err
	}

	views, err := s.participants.ListInvitationsForUser(ctx, actor)
	if err != nil {
		slog.Error("ListMyInvitations failed", "user_id", actor, "error", err)
		return nil, apperrors.ToConnect(err)
	}

	slog.Info("ListMyInvitations successful", "user_id", actor, "count", len(views))
	return connect.NewResponse(&api.ListMyInvitationsResponse{Invitations: toAPIParticipantViews(views)}), nil
}

// CreateTripOrganizer records the caller as the first participant of a trip.
func (s *ParticipantService) CreateTripOrganizer(ctx context.Context, req *connect.Request[api.CreateTripOrganizerRequest]) (*connect.Response[api.CreateTripOrganizerResponse], error) {
	actor, err := actorID(ctx)
	if err != nil {
		return nil, err
	}

	if req.Msg.TripID == "" {
		return nil, apperrors.ToConnect(ErrTripIDRequired)
	}

	p, err := s.participants.CreateOrganizer(ctx, req.Msg.TripID, actor)
	if err != nil {
		slog.Warn("CreateTripOrganizer failed", "trip_id", req.Msg.TripID, "error", err)
		return nil, apperrors.ToConnect(err)
	}

	return connect.NewResponse(&api.CreateTripOrganizerResponse{Participant: toAPIParticipant(p)}), nil
}
