package cloud

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/rghdrizzle/ockam/pkg/api"
	"github.com/rghdrizzle/ockam/pkg/cloud/share"
)

const invitationsLogPrefix = "cloud:invitations"

// UsersService is the controller service that owns invitations.
const UsersService = "users"

// Invitations is the invitation API of the sharing service.
type Invitations interface {
	CreateInvitation(ctx context.Context, in share.CreateInvitation) api.Reply[share.SentInvitation]
	CreateServiceInvitation(ctx context.Context, in share.CreateServiceInvitation) api.Reply[share.SentInvitation]
	AcceptInvitation(ctx context.Context, invitationID string) api.Reply[share.AcceptedInvitation]
	ShowInvitation(ctx context.Context, invitationID string) api.Reply[share.InvitationWithAccess]
	ListInvitations(ctx context.Context, kind share.InvitationListKind) api.Reply[share.InvitationList]
}

var _ Invitations = (*Controller)(nil)

// CreateInvitation sends POST /v0/invites.
func (c *Controller) CreateInvitation(ctx context.Context, in share.CreateInvitation) api.Reply[share.SentInvitation] {
	slog.Debug(fmt.Sprintf("%s - creating invitation scope=%s target=%s", invitationsLogPrefix, in.Scope, in.TargetID))
	return Ask[share.SentInvitation](ctx, c, UsersService, createInvitationRequest(in))
}

// CreateServiceInvitation sends POST /v0/invites/service.
func (c *Controller) CreateServiceInvitation(ctx context.Context, in share.CreateServiceInvitation) api.Reply[share.SentInvitation] {
	slog.Debug(fmt.Sprintf("%s - creating service invitation project=%s", invitationsLogPrefix, in.ProjectID))
	return Ask[share.SentInvitation](ctx, c, UsersService, createServiceInvitationRequest(in))
}

// AcceptInvitation sends POST /v0/redeem_invite.
func (c *Controller) AcceptInvitation(ctx context.Context, invitationID string) api.Reply[share.AcceptedInvitation] {
	return Ask[share.AcceptedInvitation](ctx, c, UsersService, acceptInvitationRequest(invitationID))
}

// ShowInvitation sends GET /v0/invites/{id}.
func (c *Controller) ShowInvitation(ctx context.Context, invitationID string) api.Reply[share.InvitationWithAccess] {
	slog.Debug(fmt.Sprintf("%s - showing invitation id=%q", invitationsLogPrefix, invitationID))
	return Ask[share.InvitationWithAccess](ctx, c, UsersService, showInvitationRequest(invitationID))
}

// ListInvitations sends GET /v0/invites with the kind selector as body.
func (c *Controller) ListInvitations(ctx context.Context, kind share.InvitationListKind) api.Reply[share.InvitationList] {
	slog.Debug(fmt.Sprintf("%s - listing invitations kind=%s", invitationsLogPrefix, kind))
	return Ask[share.InvitationList](ctx, c, UsersService, listInvitationsRequest(kind))
}

func createInvitationRequest(in share.CreateInvitation) *api.Request {
	return api.Post("/v0/invites").Body(in)
}

func createServiceInvitationRequest(in share.CreateServiceInvitation) *api.Request {
	return api.Post("/v0/invites/service").Body(in)
}

func acceptInvitationRequest(id string) *api.Request {
	return api.Post("/v0/redeem_invite").Body(share.AcceptInvitation{ID: id})
}

// The id is inserted verbatim; callers must pass subject-safe identifiers.
func showInvitationRequest(id string) *api.Request {
	return api.Get(fmt.Sprintf("/v0/invites/%s", id))
}

func listInvitationsRequest(kind share.InvitationListKind) *api.Request {
	return api.Get("/v0/invites").Body(share.ListInvitations{Kind: kind})
}
