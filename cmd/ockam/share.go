package main

import (
	"fmt"
	"io"
	"log/slog"
	"strconv"

	"github.com/urfave/cli/v2"

	"github.com/rghdrizzle/ockam/pkg/cloud"
	"github.com/rghdrizzle/ockam/pkg/cloud/share"
)

const shareLogPrefix = "ockam:share"

func shareCommand() *cli.Command {
	return &cli.Command{
		Name:  "share",
		Usage: "Create, accept and inspect invitations",
		Subcommands: []*cli.Command{
			shareCreateCommand(),
			shareServiceCommand(),
			shareAcceptCommand(),
			shareShowCommand(),
			shareListCommand(),
		},
	}
}

// invitations resolves the acting identity and connects to the users service.
func invitations(c *cli.Context) (cloud.Invitations, *env, error) {
	e := envFrom(c)
	ident, err := e.resolveIdentity(c.Context, c.String(identityFlagName))
	if err != nil {
		return nil, nil, err
	}
	slog.Debug(fmt.Sprintf("%s - acting as %s (%s)", shareLogPrefix, ident.Name, ident.Identifier))

	ctrl, err := e.controller()
	if err != nil {
		return nil, nil, err
	}
	return ctrl, e, nil
}

func optionalString(c *cli.Context, name string) *string {
	if !c.IsSet(name) {
		return nil
	}
	v := c.String(name)
	return &v
}

func expiresAtFlag() cli.Flag {
	return &cli.StringFlag{
		Name:  "expires-at",
		Usage: "Expiry timestamp (RFC 3339); the service default applies when unset",
	}
}

func shareCreateCommand() *cli.Command {
	return &cli.Command{
		Name:  "create",
		Usage: "Invite someone to a project, service or space",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "scope", Required: true, Usage: "project, service or space"},
			&cli.StringFlag{Name: "target-id", Required: true, Usage: "Identifier of the shared resource"},
			&cli.StringFlag{Name: "grant-role", Value: string(share.RoleGuest), Usage: "admin, member, guest or service"},
			&cli.StringFlag{Name: "recipient-email", Required: true, Usage: "Email address of the invitee"},
			&cli.IntFlag{Name: "remaining-uses", Usage: "Number of times the invitation can be redeemed"},
			expiresAtFlag(),
		},
		Action: func(c *cli.Context) error {
			scope, err := share.ParseShareScope(c.String("scope"))
			if err != nil {
				return usageError(c, "%v", err)
			}
			role, err := share.ParseRoleInShare(c.String("grant-role"))
			if err != nil {
				return usageError(c, "%v", err)
			}
			in := share.CreateInvitation{
				ExpiresAt:      optionalString(c, "expires-at"),
				GrantRole:      role,
				RecipientEmail: c.String("recipient-email"),
				Scope:          scope,
				TargetID:       c.String("target-id"),
			}
			if c.IsSet("remaining-uses") {
				uses := c.Int("remaining-uses")
				in.RemainingUses = &uses
			}

			svc, e, err := invitations(c)
			if err != nil {
				return err
			}
			sent, err := svc.CreateInvitation(c.Context, in).Unwrap()
			if err != nil {
				return err
			}
			return e.renderSent(sent)
		},
	}
}

func shareServiceCommand() *cli.Command {
	return &cli.Command{
		Name:  "service",
		Usage: "Invite someone to a service, bundling the material needed to reach it",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "project-id", Required: true},
			&cli.StringFlag{Name: "recipient-email", Required: true},
			&cli.StringFlag{Name: "project-identity", Required: true},
			&cli.StringFlag{Name: "project-route", Required: true},
			&cli.StringFlag{Name: "project-authority-identity", Required: true},
			&cli.StringFlag{Name: "project-authority-route", Required: true},
			&cli.StringFlag{Name: "shared-node-identity", Required: true},
			&cli.StringFlag{Name: "shared-node-route", Required: true},
			&cli.StringFlag{Name: "enrollment-ticket", Required: true},
			expiresAtFlag(),
		},
		Action: func(c *cli.Context) error {
			in := share.CreateServiceInvitation{
				ExpiresAt:                optionalString(c, "expires-at"),
				ProjectID:                c.String("project-id"),
				RecipientEmail:           c.String("recipient-email"),
				ProjectIdentity:          c.String("project-identity"),
				ProjectRoute:             c.String("project-route"),
				ProjectAuthorityIdentity: c.String("project-authority-identity"),
				ProjectAuthorityRoute:    c.String("project-authority-route"),
				SharedNodeIdentity:       c.String("shared-node-identity"),
				SharedNodeRoute:          c.String("shared-node-route"),
				EnrollmentTicket:         c.String("enrollment-ticket"),
			}

			svc, e, err := invitations(c)
			if err != nil {
				return err
			}
			sent, err := svc.CreateServiceInvitation(c.Context, in).Unwrap()
			if err != nil {
				return err
			}
			return e.renderSent(sent)
		},
	}
}

func shareAcceptCommand() *cli.Command {
	return &cli.Command{
		Name:      "accept",
		Usage:     "Redeem an invitation",
		ArgsUsage: "INVITATION_ID",
		Action: func(c *cli.Context) error {
			if c.NArg() != 1 {
				return usageError(c, "expected exactly one INVITATION_ID")
			}
			svc, e, err := invitations(c)
			if err != nil {
				return err
			}
			accepted, err := svc.AcceptInvitation(c.Context, c.Args().First()).Unwrap()
			if err != nil {
				return err
			}
			return e.render(accepted, func(w io.Writer) {
				e.success("Accepted invitation %s to %s %s", accepted.ID, accepted.Scope, accepted.TargetID)
				if e.quiet {
					fmt.Fprintln(w, accepted.ID)
				}
			})
		},
	}
}

func shareShowCommand() *cli.Command {
	return &cli.Command{
		Name:      "show",
		Usage:     "Show an invitation",
		ArgsUsage: "INVITATION_ID",
		Action: func(c *cli.Context) error {
			if c.NArg() != 1 {
				return usageError(c, "expected exactly one INVITATION_ID")
			}
			svc, e, err := invitations(c)
			if err != nil {
				return err
			}
			inv, err := svc.ShowInvitation(c.Context, c.Args().First()).Unwrap()
			if err != nil {
				return err
			}
			return e.render(inv, func(w io.Writer) {
				r := inv.Invitation
				rows := [][]string{
					{"ID:", r.ID},
					{"Scope:", string(r.Scope)},
					{"Target:", r.TargetID},
					{"Role:", string(r.GrantRole)},
					{"From:", r.OwnerEmail},
					{"Expires:", orDash(r.ExpiresAt)},
					{"Ignored:", strconv.FormatBool(r.Ignored)},
				}
				if d := inv.ServiceAccessDetails; d != nil {
					rows = append(rows,
						[]string{"Project identity:", d.ProjectIdentity},
						[]string{"Project route:", d.ProjectRoute},
						[]string{"Authority identity:", d.ProjectAuthorityIdentity},
						[]string{"Authority route:", d.ProjectAuthorityRoute},
						[]string{"Shared node identity:", d.SharedNodeIdentity},
						[]string{"Shared node route:", d.SharedNodeRoute},
					)
				}
				printKeyValues(w, rows)
			})
		},
	}
}

func shareListCommand() *cli.Command {
	return &cli.Command{
		Name:  "list",
		Usage: "List invitations",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "kind", Value: string(share.ListAll), Usage: "all, sent, received or accepted"},
		},
		Action: func(c *cli.Context) error {
			kind, err := share.ParseInvitationListKind(c.String("kind"))
			if err != nil {
				return usageError(c, "%v", err)
			}
			svc, e, err := invitations(c)
			if err != nil {
				return err
			}
			list, err := svc.ListInvitations(c.Context, kind).Unwrap()
			if err != nil {
				return err
			}
			return e.render(list, func(w io.Writer) { printInvitationList(w, list) })
		},
	}
}

func (e *env) renderSent(sent share.SentInvitation) error {
	return e.render(sent, func(w io.Writer) {
		e.success("Invitation %s sent to %s", sent.ID, sent.RecipientEmail)
		if e.quiet {
			fmt.Fprintln(w, sent.ID)
			return
		}
		printKeyValues(w, [][]string{
			{"Scope:", string(sent.Scope)},
			{"Target:", sent.TargetID},
			{"Role:", string(sent.GrantRole)},
			{"Remaining uses:", strconv.Itoa(sent.RemainingUses)},
			{"Expires:", orDash(sent.ExpiresAt)},
		})
	})
}

func printInvitationList(w io.Writer, list share.InvitationList) {
	if len(list.Sent) == 0 && len(list.Received) == 0 && len(list.Accepted) == 0 {
		fmt.Fprintln(w, "No invitations found.")
		return
	}
	if len(list.Sent) > 0 {
		fmt.Fprintln(w, "Sent")
		rows := make([][]string, 0, len(list.Sent))
		for _, s := range list.Sent {
			rows = append(rows, []string{s.ID, string(s.Scope), s.TargetID, s.RecipientEmail, string(s.GrantRole), strconv.Itoa(s.RemainingUses), orDash(s.ExpiresAt)})
		}
		printTable(w, []string{"ID", "Scope", "Target", "Recipient", "Role", "Uses left", "Expires"}, rows)
	}
	if len(list.Received) > 0 {
		fmt.Fprintln(w, "Received")
		rows := make([][]string, 0, len(list.Received))
		for _, r := range list.Received {
			rows = append(rows, []string{r.ID, string(r.Scope), r.TargetID, r.OwnerEmail, string(r.GrantRole), orDash(r.ExpiresAt)})
		}
		printTable(w, []string{"ID", "Scope", "Target", "From", "Role", "Expires"}, rows)
	}
	if len(list.Accepted) > 0 {
		fmt.Fprintln(w, "Accepted")
		rows := make([][]string, 0, len(list.Accepted))
		for _, a := range list.Accepted {
			rows = append(rows, []string{a.ID, string(a.Scope), a.TargetID})
		}
		printTable(w, []string{"ID", "Scope", "Target"}, rows)
	}
}
