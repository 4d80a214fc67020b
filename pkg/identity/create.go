package identity

import (
	"context"
	"fmt"
	"io"
	"log/slog"
)

const createLogPrefix = "identity:create"

// Creator is the create-identity operation. It never consults the resolver,
// so it is safe to call from default-identity auto-provisioning.
type Creator struct {
	Store Store
	// Rand is the key entropy source; nil uses crypto/rand.
	Rand io.Reader
}

// Create generates and stores a new identity. The first identity created while
// no default exists becomes the default.
func (c *Creator) Create(ctx context.Context, name string) (*Identity, error) {
	if name == "" {
		return nil, fmt.Errorf("%s - identity name is required", createLogPrefix)
	}

	ident, err := Generate(name, c.Rand)
	if err != nil {
		return nil, err
	}
	if err := c.Store.Create(ctx, ident); err != nil {
		return nil, fmt.Errorf("%s - %s: %w", createLogPrefix, name, err)
	}

	isDefault, err := c.Store.SetDefaultIfAbsent(ctx, name)
	if err != nil {
		return nil, fmt.Errorf("%s - failed to set default: %w", createLogPrefix, err)
	}
	ident.IsDefault = isDefault

	slog.Debug(fmt.Sprintf("%s - created %s identifier=%s default=%t", createLogPrefix, name, ident.Identifier, isDefault))
	return ident, nil
}
