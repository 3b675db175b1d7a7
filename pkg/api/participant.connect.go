package api

import (
	"context"
	"net/http"

	"connectrpc.com/connect"
)

const (
	ParticipantServiceAddParticipantProcedure           = "/travelmate.v1.ParticipantService/AddParticipant"
	ParticipantServiceUpdateParticipantRoleProcedure    = "/travelmate.v1.ParticipantService/UpdateParticipantRole"
	ParticipantServiceRemoveParticipantProcedure        = "/travelmate.v1.ParticipantService/RemoveParticipant"
	ParticipantServiceRemoveParticipantByEmailProcedure = "/travelmate.v1.ParticipantService/RemoveParticipantByEmail"
	ParticipantServiceRespondToInvitationProcedure      = "/travelmate.v1.ParticipantService/RespondToInvitation"
	ParticipantServiceListParticipantsProcedure         = "/travelmate.v1.ParticipantService/ListParticipants"
	ParticipantServiceListMyInvitationsProcedure        = "/travelmate.v1.ParticipantService/ListMyInvitations"
	ParticipantServiceCreateTripOrganizerProcedure      = "/travelmate.v1.ParticipantService/CreateTripOrganizer"
)

// ParticipantServiceHandler is implemented by the invitation service.
type ParticipantServiceHandler interface {
	AddParticipant(context.Context, *connect.Request[AddParticipantRequest]) (*connect.Response[AddParticipantResponse], error)
	UpdateParticipantRole(context.Context, *connect.Request[UpdateParticipantRoleRequest]) (*connect.Response[UpdateParticipantRoleResponse], error)
	RemoveParticipant(context.Context, *connect.Request[RemoveParticipantRequest]) (*connect.Response[RemoveParticipantResponse], error)
	RemoveParticipantByEmail(context.Context, *connect.Request[RemoveParticipantByEmailRequest]) (*connect.Response[RemoveParticipantByEmailResponse], error)
	RespondToInvitation(context.Context, *connect.Request[RespondToInvitationRequest]) (*connect.Response[RespondToInvitationResponse], error)
	ListParticipants(context.Context, *connect.Request[ListParticipantsRequest]) (*connect.Response[ListParticipantsResponse], error)
	ListMyInvitations(context.Context, *connect.Request[ListMyInvitationsRequest]) (*connect.Response[ListMyInvitationsResponse], error)
	CreateTripOrganizer(context.Context, *connect.Request[CreateTripOrganizerRequest]) (*connect.Response[CreateTripOrganizerResponse], error)
}

// NewParticipantServiceHandler returns the mount path and handler for svc.
func NewParticipantServiceHandler(svc ParticipantServiceHandler, opts ...connect.HandlerOption) (string, http.Handler) {
	opts = handlerOptions(opts)
	return servicePath(ParticipantServiceName), routeProcedures(map[string]http.Handler{
		ParticipantServiceAddParticipantProcedure:           connect.NewUnaryHandler(ParticipantServiceAddParticipantProcedure, svc.AddParticipant, opts...),
		ParticipantServiceUpdateParticipantRoleProcedure:    connect.NewUnaryHandler(ParticipantServiceUpdateParticipantRoleProcedure, svc.UpdateParticipantRole, opts...),
		ParticipantServiceRemoveParticipantProcedure:        connect.NewUnaryHandler(ParticipantServiceRemoveParticipantProcedure, svc.RemoveParticipant, opts...),
		ParticipantServiceRemoveParticipantByEmailProcedure: connect.NewUnaryHandler(ParticipantServiceRemoveParticipantByEmailProcedure, svc.RemoveParticipantByEmail, opts...),
		ParticipantServiceRespondToInvitationProcedure:      connect.NewUnaryHandler(ParticipantServiceRespondToInvitationProcedure, svc.RespondToInvitation, opts...),
		ParticipantServiceListParticipantsProcedure:         connect.NewUnaryHandler(ParticipantServiceListParticipantsProcedure, svc.ListParticipants, opts...),
		ParticipantServiceListMyInvitationsProcedure:        connect.NewUnaryHandler(ParticipantServiceListMyInvitationsProcedure, svc.ListMyInvitations, opts...),
		ParticipantServiceCreateTripOrganizerProcedure:      connect.NewUnaryHandler(ParticipantServiceCreateTripOrganizerProcedure, svc.CreateTripOrganizer, opts...),
	})
}

// ParticipantServiceClient calls the invitation service.
type ParticipantServiceClient struct {
	addParticipant           *connect.Client[AddParticipantRequest, AddParticipantResponse]
	updateParticipantRole    *connect.Client[UpdateParticipantRoleRequest, UpdateParticipantRoleResponse]
	removeParticipant        *connect.Client[RemoveParticipantRequest, RemoveParticipantResponse]
	removeParticipantByEmail *connect.Client[RemoveParticipantByEmailRequest, RemoveParticipantByEmailResponse]
	respondToInvitation      *connect.Client[RespondToInvitationRequest, RespondToInvitationResponse]
	listParticipants         *connect.Client[ListParticipantsRequest, ListParticipantsResponse]
	listMyInvitations        *connect.Client[ListMyInvitationsRequest, ListMyInvitationsResponse]
	createTripOrganizer      *connect.Client[CreateTripOrganizerRequest, CreateTripOrganizerResponse]
}

func NewParticipantServiceClient(httpClient connect.HTTPClient, baseURL string, opts ...connect.ClientOption) *ParticipantServiceClient {
	opts = clientOptions(opts)
	return &ParticipantServiceClient{
		addParticipant:           connect.NewClient[AddParticipantRequest, AddParticipantResponse](httpClient, procedureURL(baseURL, ParticipantServiceAddParticipantProcedure), opts...),
		updateParticipantRole:    connect.NewClient[UpdateParticipantRoleRequest, UpdateParticipantRoleResponse](httpClient, procedureURL(baseURL, ParticipantServiceUpdateParticipantRoleProcedure), opts...),
		removeParticipant:        connect.NewClient[RemoveParticipantRequest, RemoveParticipantResponse](httpClient, procedureURL(baseURL, ParticipantServiceRemoveParticipantProcedure), opts...),
		removeParticipantByEmail: connect.NewClient[RemoveParticipantByEmailRequest, RemoveParticipantByEmailResponse](httpClient, procedureURL(baseURL, ParticipantServiceRemoveParticipantByEmailProcedure), opts...),
		respondToInvitation:      connect.NewClient[RespondToInvitationRequest, RespondToInvitationResponse](httpClient, procedureURL(baseURL, ParticipantServiceRespondToInvitationProcedure), opts...),
		listParticipants:         connect.NewClient[ListParticipantsRequest, ListParticipantsResponse](httpClient, procedureURL(baseURL, ParticipantServiceListParticipantsProcedure), opts...),
		listMyInvitations:        connect.NewClient[ListMyInvitationsRequest, ListMyInvitationsResponse](httpClient, procedureURL(baseURL, ParticipantServiceListMyInvitationsProcedure), opts...),
		createTripOrganizer:      connect.NewClient[CreateTripOrganizerRequest, CreateTripOrganizerResponse](httpClient, procedureURL(baseURL, ParticipantServiceCreateTripOrganizerProcedure), opts...),
	}
}

func (c *ParticipantServiceClient) AddParticipant(ctx context.Context, req *connect.Request[AddParticipantRequest]) (*connect.Response[AddParticipantResponse], error) {
	return c.addParticipant.CallUnary(ctx, req)
}

func (c *ParticipantServiceClient) UpdateParticipantRole(ctx context.Context, req *connect.Request[UpdateParticipantRoleRequest]) (*connect.Response[UpdateParticipantRoleResponse], error) {
	return c.updateParticipantRole.CallUnary(ctx, req)
}

func (c *ParticipantServiceClient) RemoveParticipant(ctx context.Context, req *connect.Request[RemoveParticipantRequest]) (*connect.Response[RemoveParticipantResponse], error) {
	return c.removeParticipant.CallUnary(ctx, req)
}

func (c *ParticipantServiceClient) RemoveParticipantByEmail(ctx context.Context, req *connect.Request[RemoveParticipantByEmailRequest]) (*connect.Response[RemoveParticipantByEmailResponse], error) {
	return c.removeParticipantByEmail.CallUnary(ctx, req)
}

func (c *ParticipantServiceClient) RespondToInvitation(ctx context.Context, req *connect.Request[RespondToInvitationRequest]) (*connect.Response[RespondToInvitationResponse], error) {
	return c.respondToInvitation.CallUnary(ctx, req)
}

func (c *ParticipantServiceClient) ListParticipants(ctx context.Context, req *connect.Request[ListParticipantsRequest]) (*connect.Response[ListParticipantsResponse], error) {
	return c.listParticipants.CallUnary(ctx, req)
}

func (c *ParticipantServiceClient) ListMyInvitations(ctx context.Context, req *connect.Request[ListMyInvitationsRequest]) (*connect.Response[ListMyInvitationsResponse], error) {
	return c.listMyInvitations.CallUnary(ctx, req)
}

func (c *ParticipantServiceClient) CreateTripOrganizer(ctx context.Context, req *connect.Request[CreateTripOrganizerRequest]) (*connect.Response[CreateTripOrganizerResponse], error) {
	return c.createTripOrganizer.CallUnary(ctx, req)
}
