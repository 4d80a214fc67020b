package main

import (
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/urfave/cli/v2"

	"github.com/rghdrizzle/ockam/pkg/identity"
)

func identityCommand() *cli.Command {
	return &cli.Command{
		Name:  "identity",
		Usage: "Manage local identities",
		Subcommands: []*cli.Command{
			identityCreateCommand(),
			identityShowCommand(),
			identityListCommand(),
			identityDefaultCommand(),
			identityDeleteCommand(),
		},
	}
}

func identityCreateCommand() *cli.Command {
	return &cli.Command{
		Name:      "create",
		Usage:     "Create a new identity; the first one becomes the default",
		ArgsUsage: "[NAME]",
		Action: func(c *cli.Context) error {
			if c.NArg() > 1 {
				return usageError(c, "expected at most one NAME")
			}
			name := c.Args().First()
			if name == "" {
				name = randomIdentityName()
			}

			e := envFrom(c)
			store, err := e.openStore(c.Context)
			if err != nil {
				return err
			}
			ident, err := (&identity.Creator{Store: store}).Create(c.Context, name)
			if err != nil {
				return err
			}

			if e.output != outputPlain {
				return printStructured(e.stdout, e.output, ident)
			}
			e.success("Identity %s created: %s", ident.Name, ident.Identifier)
			if ident.IsDefault {
				e.success("Identity %s is the default identity", ident.Name)
			}
			if e.quiet {
				fmt.Fprintln(e.stdout, ident.Identifier)
			}
			return nil
		},
	}
}

func identityShowCommand() *cli.Command {
	return &cli.Command{
		Name:      "show",
		Usage:     "Show an identity (default: --identity)",
		ArgsUsage: "[NAME]",
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:  "full",
				Usage: "Include the public key",
			},
		},
		Action: func(c *cli.Context) error {
			name := c.Args().First()
			if name == "" {
				name = c.String(identityFlagName)
			}
			e := envFrom(c)
			ident, err := e.resolveIdentity(c.Context, name)
			if err != nil {
				return err
			}
			return e.render(ident, func(w io.Writer) {
				if !c.Bool("full") {
					fmt.Fprintln(w, ident.Identifier)
					return
				}
				printKeyValues(w, identityRows(ident))
			})
		},
	}
}

func identityListCommand() *cli.Command {
	return &cli.Command{
		Name:  "list",
		Usage: "List identities",
		Action: func(c *cli.Context) error {
			e := envFrom(c)
			store, err := e.openStore(c.Context)
			if err != nil {
				return err
			}
			idents, err := store.List(c.Context)
			if err != nil {
				return err
			}
			if idents == nil {
				idents = []identity.Identity{}
			}
			return e.render(idents, func(w io.Writer) {
				if len(idents) == 0 {
					if !e.quiet {
						fmt.Fprintln(w, "No identities found. Create one with `ockam identity create`.")
					}
					return
				}
				rows := make([][]string, 0, len(idents))
				for _, ident := range idents {
					rows = append(rows, []string{
						ident.Name,
						ident.Identifier,
						strconv.FormatBool(ident.IsDefault),
						ident.CreatedAt.Format(time.RFC3339),
					})
				}
				printTable(w, []string{"Name", "Identifier", "Default", "Created"}, rows)
			})
		},
	}
}

func identityDefaultCommand() *cli.Command {
	return &cli.Command{
		Name:      "default",
		Usage:     "Print the default identity, or set it when NAME is given",
		ArgsUsage: "[NAME]",
		Action: func(c *cli.Context) error {
			e := envFrom(c)
			store, err := e.openStore(c.Context)
			if err != nil {
				return err
			}

			name := c.Args().First()
			if name == "" {
				def, err := identity.DefaultIdentityName(c.Context, store)
				if err != nil {
					return err
				}
				fmt.Fprintln(e.stdout, def)
				return nil
			}

			if err := store.SetDefault(c.Context, name); err != nil {
				return err
			}
			e.success("Identity %s is now the default identity", name)
			return nil
		},
	}
}

func identityDeleteCommand() *cli.Command {
	return &cli.Command{
		Name:      "delete",
		Usage:     "Delete an identity",
		ArgsUsage: "NAME",
		Action: func(c *cli.Context) error {
			if c.NArg() != 1 {
				return usageError(c, "expected exactly one NAME")
			}
			e := envFrom(c)
			store, err := e.openStore(c.Context)
			if err != nil {
				return err
			}
			name := c.Args().First()
			if err := store.Delete(c.Context, name); err != nil {
				return err
			}
			e.success("Identity %s deleted", name)
			return nil
		},
	}
}

func identityRows(ident *identity.Identity) [][]string {
	return [][]string{
		{"Name:", ident.Name},
		{"Identifier:", ident.Identifier},
		{"Public key:", ident.PublicKey},
		{"Default:", strconv.FormatBool(ident.IsDefault)},
		{"Created:", ident.CreatedAt.Format(time.RFC3339)},
	}
}

func randomIdentityName() string {
	return strings.SplitN(uuid.NewString(), "-", 2)[0]
}
