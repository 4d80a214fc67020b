package identity

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
)

const resolverLogPrefix = "identity:resolver"

// CreateFunc creates an identity without going through name resolution. The
// returned identity has IsDefault set when creation also claimed the default.
type CreateFunc func(ctx context.Context, name string) (*Identity, error)

// Resolver turns identity names given on the command line into stored identity
// names, provisioning the default identity the first time it is asked for.
type Resolver struct {
	Store  Store
	Create CreateFunc
	// Logger receives the provisioning notices; nil uses slog.Default().
	Logger *slog.Logger
}

// Resolve returns name unchanged unless it is DefaultName. For DefaultName it
// returns the current default identity's name, creating an identity called
// DefaultName when none exists yet.
//
// Two processes may both observe a missing default. Creation is therefore
// create-or-get: a name collision is not an error, and the default is only
// claimed when still unset.
func (r *Resolver) Resolve(ctx context.Context, name string) (string, error) {
	if name != DefaultName {
		return name, nil
	}

	def, err := r.Store.Default(ctx)
	if err == nil {
		return def.Name, nil
	}
	if !errors.Is(err, ErrNoDefault) {
		return "", &StateError{Op: "load default identity", Err: err}
	}

	created, err := r.Create(ctx, name)
	switch {
	case err == nil:
		if created != nil && created.IsDefault {
			r.logProvisioned(name)
			return name, nil
		}
		// Another identity became the default after the lookup above.
	case errors.Is(err, ErrIdentityExists):
		if _, err := r.Store.SetDefaultIfAbsent(ctx, name); err != nil {
			return "", fmt.Errorf("%s - failed to claim default for %s: %w", resolverLogPrefix, name, err)
		}
	default:
		return "", fmt.Errorf("%s - failed to create default identity: %w", resolverLogPrefix, err)
	}

	def, err = r.Store.Default(ctx)
	if err != nil {
		return "", fmt.Errorf("%s - default identity vanished: %w", resolverLogPrefix, err)
	}
	return def.Name, nil
}

func (r *Resolver) logProvisioned(name string) {
	logger := r.Logger
	if logger == nil {
		logger = slog.Default()
	}
	logger.Info(fmt.Sprintf("%s - No default identity was found.", resolverLogPrefix))
	logger.Info(fmt.Sprintf("%s - Creating default identity %s", resolverLogPrefix, name))
	logger.Info(fmt.Sprintf("%s - Setting identity %s as default for local operations...", resolverLogPrefix, name))
}

// DefaultIdentityName returns the default identity's name, or DefaultName when
// none is set.
func DefaultIdentityName(ctx context.Context, s Store) (string, error) {
	def, err := s.Default(ctx)
	if errors.Is(err, ErrNoDefault) {
		return DefaultName, nil
	}
	if err != nil {
		return "", &StateError{Op: "load default identity", Err: err}
	}
	return def.Name, nil
}
