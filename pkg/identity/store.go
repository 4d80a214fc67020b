package identity

import (
	"context"
	"errors"
)

var (
	// ErrNotFound is returned when no identity has the requested name.
	ErrNotFound = errors.New("identity not found")
	// ErrIdentityExists is returned when creating a name that is already taken.
	ErrIdentityExists = errors.New("identity already exists")
	// ErrNoDefault is returned when no identity is marked as default.
	ErrNoDefault = errors.New("no default identity")
)

// Store persists local identities. Implementations must be safe for concurrent use.
type Store interface {
	Get(ctx context.Context, name string) (*Identity, error)
	List(ctx context.Context) ([]Identity, error)
	// Default returns ErrNoDefault when no identity is marked as default.
	Default(ctx context.Context) (*Identity, error)
	// Create returns ErrIdentityExists when the name is taken.
	Create(ctx context.Context, ident *Identity) error
	SetDefault(ctx context.Context, name string) error
	// SetDefaultIfAbsent marks name as default only when no default exists,
	// reporting whether it did so. The check and the update are atomic.
	SetDefaultIfAbsent(ctx context.Context, name string) (bool, error)
	Delete(ctx context.Context, name string) error
}

// StateError reports that local identity state could not be loaded or initialized.
type StateError struct {
	Op  string
	Err error
}

func (e *StateError) Error() string {
	return "identity state: " + e.Op + ": " + e.Err.Error()
}

func (e *StateError) Unwrap() error { return e.Err }
