package main

import (
	"fmt"

	"github.com/urfave/cli/v2"

	"github.com/rghdrizzle/ockam/internal/config"
	"github.com/rghdrizzle/ockam/pkg/db"
	"github.com/rghdrizzle/ockam/pkg/identity"
)

func stateCommand() *cli.Command {
	return &cli.Command{
		Name:  "state",
		Usage: "Maintain the Postgres state database (STATE_DATABASE_URL)",
		Subcommands: []*cli.Command{
			{
				Name:   "ensure-db",
				Usage:  "Create the state database if missing",
				Action: runEnsureDB,
			},
			{
				Name:   "migrate",
				Usage:  "Apply state migrations",
				Action: runMigrate,
			},
			{
				Name:   "status",
				Usage:  "Show whether migrations have been applied",
				Action: runMigrateStatus,
			},
			{
				Name:   "clear",
				Usage:  "Delete all identities; the schema is preserved",
				Action: runClear,
			},
		},
	}
}

func stateDatabaseURL(c *cli.Context) (string, error) {
	e := envFrom(c)
	if e.cfg.StateDatabaseURL == "" {
		return "", fmt.Errorf("%w: STATE_DATABASE_URL or --%s is required", config.ErrInvalid, stateDatabaseURLFlagName)
	}
	return e.cfg.StateDatabaseURL, nil
}

func runEnsureDB(c *cli.Context) error {
	url, err := stateDatabaseURL(c)
	if err != nil {
		return err
	}
	created, err := db.EnsureDatabase(c.Context, url)
	if err != nil {
		return &identity.StateError{Op: "ensure state database", Err: err}
	}
	if created {
		envFrom(c).success("State database created")
	} else {
		envFrom(c).success("State database is ready")
	}
	return nil
}

func runMigrate(c *cli.Context) error {
	e := envFrom(c)
	if _, err := stateDatabaseURL(c); err != nil {
		return err
	}
	if _, err := e.openStore(c.Context); err != nil {
		return err
	}
	e.success("State migrations applied")
	return nil
}

func runMigrateStatus(c *cli.Context) error {
	url, err := stateDatabaseURL(c)
	if err != nil {
		return err
	}
	pool, err := db.NewPool(c.Context, url)
	if err != nil {
		return &identity.StateError{Op: "connect state database", Err: err}
	}
	defer pool.Close()

	applied, err := db.MigrationStatus(c.Context, pool)
	if err != nil {
		return &identity.StateError{Op: "migration status", Err: err}
	}
	if applied {
		fmt.Fprintln(envFrom(c).stdout, "Migration status: applied")
	} else {
		fmt.Fprintln(envFrom(c).stdout, "Migration status: not applied (run 'ockam state migrate')")
	}
	return nil
}

func runClear(c *cli.Context) error {
	url, err := stateDatabaseURL(c)
	if err != nil {
		return err
	}
	pool, err := db.NewPool(c.Context, url)
	if err != nil {
		return &identity.StateError{Op: "connect state database", Err: err}
	}
	defer pool.Close()

	if err := db.ClearIdentities(c.Context, pool); err != nil {
		return &identity.StateError{Op: "clear state", Err: err}
	}
	envFrom(c).success("Identities cleared")
	return nil
}
