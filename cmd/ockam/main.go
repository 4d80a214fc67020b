// Package main is the entrypoint for the ockam CLI.
package main

import (
	"fmt"
	"io"
	"os"

	"github.com/fatih/color"
	"github.com/urfave/cli/v2"

	"github.com/rghdrizzle/ockam/internal/exitcode"
)

const (
	quietFlagName            = "quiet"
	stateDirFlagName         = "state-dir"
	stateDatabaseURLFlagName = "state-database-url"
	logLevelFlagName         = "log-level"
	identityFlagName         = "identity"
	outputFlagName           = "output"
)

func main() {
	app := createApp(os.Stdout, os.Stderr)
	if err := app.Run(os.Args); err != nil {
		color.New(color.FgRed).Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(exitcode.FromError(err))
	}
}

func createApp(stdout, stderr io.Writer) *cli.App {
	app := cli.NewApp()
	app.Name = "ockam"
	app.Usage = "Manage local identities and share access through invitations"
	app.Writer = stdout
	app.ErrWriter = stderr
	app.HideVersion = true
	// Exit codes are chosen by main from the returned error.
	app.ExitErrHandler = func(*cli.Context, error) {}

	app.Flags = []cli.Flag{
		&cli.BoolFlag{
			Name:    quietFlagName,
			Aliases: []string{"q"},
			Usage:   "Only print errors and requested values",
		},
		&cli.StringFlag{
			Name:  stateDirFlagName,
			Usage: "Local state directory (default $OCKAM_STATE_DIR or ~/.ockam)",
		},
		&cli.StringFlag{
			Name:  stateDatabaseURLFlagName,
			Usage: "Keep local state in Postgres instead of the state directory",
		},
		&cli.StringFlag{
			Name:  logLevelFlagName,
			Usage: "Log level: debug, info, warn or error (default $LOG_LEVEL or info)",
		},
		&cli.StringFlag{
			Name:  identityFlagName,
			Value: "default",
			Usage: "Identity to act as",
		},
		&cli.StringFlag{
			Name:  outputFlagName,
			Value: outputPlain,
			Usage: "Output format: plain, json or yaml",
		},
	}

	app.Before = func(c *cli.Context) error {
		e, err := newEnv(c, stdout, stderr)
		if err != nil {
			return err
		}
		c.App.Metadata = map[string]interface{}{envMetadataKey: e}
		return nil
	}
	app.After = func(c *cli.Context) error {
		if e, ok := c.App.Metadata[envMetadataKey].(*env); ok {
			e.close()
		}
		return nil
	}

	app.Commands = []*cli.Command{
		identityCommand(),
		shareCommand(),
		stateCommand(),
	}
	return app
}

func usageError(c *cli.Context, format string, args ...interface{}) error {
	return cli.Exit(fmt.Sprintf("%s: %s", c.Command.FullName(), fmt.Sprintf(format, args...)), exitcode.Usage)
}
