package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/urfave/cli/v2"

	"github.com/rghdrizzle/ockam/internal/config"
	"github.com/rghdrizzle/ockam/internal/exitcode"
	"github.com/rghdrizzle/ockam/pkg/api"
	"github.com/rghdrizzle/ockam/pkg/cloud"
	"github.com/rghdrizzle/ockam/pkg/commsutil"
	"github.com/rghdrizzle/ockam/pkg/db"
	"github.com/rghdrizzle/ockam/pkg/identity"
)

const (
	logPrefix      = "ockam:env"
	envMetadataKey = "env"
)

// env is the per-invocation state shared by commands.
type env struct {
	cfg    *config.Config
	quiet  bool
	output string
	stdout io.Writer
	logger *slog.Logger

	store   identity.Store
	closers []func()
}

func newEnv(c *cli.Context, stdout, stderr io.Writer) (*env, error) {
	cfg, err := config.LoadConfig()
	if err != nil {
		return nil, err
	}
	if v := c.String(stateDirFlagName); v != "" {
		cfg.StateDir = v
	}
	if v := c.String(stateDatabaseURLFlagName); v != "" {
		cfg.StateDatabaseURL = v
	}
	if v := c.String(logLevelFlagName); v != "" {
		cfg.LogLevel = v
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	output, err := parseOutput(c.String(outputFlagName))
	if err != nil {
		return nil, cli.Exit(err.Error(), exitcode.Usage)
	}

	quiet := c.Bool(quietFlagName)
	level := cfg.SlogLevel()
	if quiet {
		level = slog.LevelError
	}
	logger := slog.New(slog.NewTextHandler(stderr, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(logger)

	return &env{cfg: cfg, quiet: quiet, output: output, stdout: stdout, logger: logger}, nil
}

func envFrom(c *cli.Context) *env {
	return c.App.Metadata[envMetadataKey].(*env)
}

func (e *env) close() {
	for i := len(e.closers) - 1; i >= 0; i-- {
		e.closers[i]()
	}
	e.closers = nil
}

// openStore opens local state once per invocation. Failures are *identity.StateError.
func (e *env) openStore(ctx context.Context) (identity.Store, error) {
	if e.store != nil {
		return e.store, nil
	}
	if e.cfg.StateDatabaseURL != "" {
		repo, closeFn, err := db.OpenStore(ctx, e.cfg.StateDatabaseURL, e.cfg.MigrationPath)
		if err != nil {
			return nil, err
		}
		e.closers = append(e.closers, closeFn)
		e.store = repo
		return e.store, nil
	}

	dir, err := e.cfg.ResolveStateDir()
	if err != nil {
		return nil, &identity.StateError{Op: "locate state directory", Err: err}
	}
	fs, err := identity.OpenFileStore(dir)
	if err != nil {
		return nil, err
	}
	slog.Debug(fmt.Sprintf("%s - using state file %s", logPrefix, fs.Path()))
	e.store = fs
	return e.store, nil
}

// resolver wires default-identity provisioning to the quiet create path.
func (e *env) resolver(store identity.Store) *identity.Resolver {
	creator := &identity.Creator{Store: store}
	return &identity.Resolver{
		Store:  store,
		Create: creator.Create,
		Logger: e.logger,
	}
}

// resolveIdentity maps the --identity flag (or an explicit name) to a stored identity.
func (e *env) resolveIdentity(ctx context.Context, name string) (*identity.Identity, error) {
	store, err := e.openStore(ctx)
	if err != nil {
		return nil, err
	}
	resolved, err := e.resolver(store).Resolve(ctx, name)
	if err != nil {
		return nil, err
	}
	return store.Get(ctx, resolved)
}

// controller connects to the controller services. Connection failures are
// transport failures.
func (e *env) controller() (*cloud.Controller, error) {
	nc, err := commsutil.Connect(e.cfg.COMMSURL, e.cfg.COMMSName, &commsutil.ConnectOpts{Timeout: e.cfg.RequestTimeout})
	if err != nil {
		return nil, api.NewTransportFailure(api.CodeTransport, err)
	}
	e.closers = append(e.closers, nc.Close)
	return cloud.NewController(cloud.NewNATSTransport(nc), cloud.Config{
		SubjectPrefix:  e.cfg.SubjectPrefix,
		RequestTimeout: e.cfg.RequestTimeout,
	}), nil
}
