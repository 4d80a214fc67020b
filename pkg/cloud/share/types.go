// Package share defines the data model of the sharing service.
package share

import (
	"fmt"
	"strings"
)

// ShareScope is the kind of resource an invitation grants access to.
type ShareScope string

const (
	ScopeProject ShareScope = "project"
	ScopeService ShareScope = "service"
	ScopeSpace   ShareScope = "space"
)

// RoleInShare is the permission level granted by an invitation.
type RoleInShare string

const (
	RoleAdmin   RoleInShare = "admin"
	RoleMember  RoleInShare = "member"
	RoleGuest   RoleInShare = "guest"
	RoleService RoleInShare = "service"
)

// InvitationListKind selects which invitations to enumerate.
type InvitationListKind string

const (
	ListAll      InvitationListKind = "all"
	ListSent     InvitationListKind = "sent"
	ListReceived InvitationListKind = "received"
	ListAccepted InvitationListKind = "accepted"
)

var (
	scopes = map[ShareScope]struct{}{ScopeProject: {}, ScopeService: {}, ScopeSpace: {}}
	roles  = map[RoleInShare]struct{}{RoleAdmin: {}, RoleMember: {}, RoleGuest: {}, RoleService: {}}
	kinds  = map[InvitationListKind]struct{}{ListAll: {}, ListSent: {}, ListReceived: {}, ListAccepted: {}}
)

func (s ShareScope) String() string         { return string(s) }
func (r RoleInShare) String() string        { return string(r) }
func (k InvitationListKind) String() string { return string(k) }

// ParseShareScope parses a case-insensitive scope name.
func ParseShareScope(s string) (ShareScope, error) {
	v := ShareScope(strings.ToLower(strings.TrimSpace(s)))
	if _, ok := scopes[v]; !ok {
		return "", fmt.Errorf("share:types - unknown scope %q", s)
	}
	return v, nil
}

// ParseRoleInShare parses a case-insensitive role name.
func ParseRoleInShare(s string) (RoleInShare, error) {
	v := RoleInShare(strings.ToLower(strings.TrimSpace(s)))
	if _, ok := roles[v]; !ok {
		return "", fmt.Errorf("share:types - unknown role %q", s)
	}
	return v, nil
}

// ParseInvitationListKind parses a case-insensitive list kind.
func ParseInvitationListKind(s string) (InvitationListKind, error) {
	v := InvitationListKind(strings.ToLower(strings.TrimSpace(s)))
	if _, ok := kinds[v]; !ok {
		return "", fmt.Errorf("share:types - unknown invitation list kind %q", s)
	}
	return v, nil
}

// CreateInvitation is the body of POST /v0/invites.
type CreateInvitation struct {
	ExpiresAt      *string     `json:"expires_at,omitempty"`
	GrantRole      RoleInShare `json:"grant_role"`
	RecipientEmail string      `json:"recipient_email"`
	RemainingUses  *int        `json:"remaining_uses,omitempty"`
	Scope          ShareScope  `json:"scope"`
	TargetID       string      `json:"target_id"`
}

// CreateServiceInvitation is the body of POST /v0/invites/service.
type CreateServiceInvitation struct {
	ExpiresAt                *string `json:"expires_at,omitempty"`
	ProjectID                string  `json:"project_id"`
	RecipientEmail           string  `json:"recipient_email"`
	ProjectIdentity          string  `json:"project_identity"`
	ProjectRoute             string  `json:"project_route"`
	ProjectAuthorityIdentity string  `json:"project_authority_identity"`
	ProjectAuthorityRoute    string  `json:"project_authority_route"`
	SharedNodeIdentity       string  `json:"shared_node_identity"`
	SharedNodeRoute          string  `json:"shared_node_route"`
	EnrollmentTicket         string  `json:"enrollment_ticket"`
}

// AcceptInvitation is the body of POST /v0/redeem_invite.
type AcceptInvitation struct {
	ID string `json:"id"`
}

// ListInvitations is the body of GET /v0/invites.
type ListInvitations struct {
	Kind InvitationListKind `json:"kind"`
}

// SentInvitation is an invitation as seen by its sender.
type SentInvitation struct {
	ID             string      `json:"id"`
	ExpiresAt      string      `json:"expires_at"`
	GrantRole      RoleInShare `json:"grant_role"`
	OwnerID        string      `json:"owner_id"`
	RecipientEmail string      `json:"recipient_email"`
	RemainingUses  int         `json:"remaining_uses"`
	Scope          ShareScope  `json:"scope"`
	TargetID       string      `json:"target_id"`
}

// ReceivedInvitation is an invitation as seen by its recipient.
type ReceivedInvitation struct {
	ID         string      `json:"id"`
	ExpiresAt  string      `json:"expires_at"`
	GrantRole  RoleInShare `json:"grant_role"`
	OwnerEmail string      `json:"owner_email"`
	Scope      ShareScope  `json:"scope"`
	TargetID   string      `json:"target_id"`
	Ignored    bool        `json:"ignored"`
}

// AcceptedInvitation is returned after redeeming an invitation.
type AcceptedInvitation struct {
	ID       string     `json:"id"`
	Scope    ShareScope `json:"scope"`
	TargetID string     `json:"target_id"`
}

// ServiceAccessDetails is the connection material bundled with a service invitation.
type ServiceAccessDetails struct {
	ProjectIdentity          string `json:"project_identity"`
	ProjectRoute             string `json:"project_route"`
	ProjectAuthorityIdentity string `json:"project_authority_identity"`
	ProjectAuthorityRoute    string `json:"project_authority_route"`
	SharedNodeIdentity       string `json:"shared_node_identity"`
	SharedNodeRoute          string `json:"shared_node_route"`
	EnrollmentTicket         string `json:"enrollment_ticket"`
}

// InvitationWithAccess is a received invitation plus any service access material.
type InvitationWithAccess struct {
	Invitation           ReceivedInvitation    `json:"invitation"`
	ServiceAccessDetails *ServiceAccessDetails `json:"service_access_details,omitempty"`
}

// InvitationList groups invitations by kind. Absent groups were not requested.
type InvitationList struct {
	Sent     []SentInvitation     `json:"sent,omitempty"`
	Received []ReceivedInvitation `json:"received,omitempty"`
	Accepted []AcceptedInvitation `json:"accepted,omitempty"`
}
