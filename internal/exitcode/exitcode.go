// Package exitcode maps CLI errors to process exit codes (sysexits.h values).
package exitcode

import (
	"errors"

	"github.com/urfave/cli/v2"

	"github.com/rghdrizzle/ockam/internal/config"
	"github.com/rghdrizzle/ockam/pkg/api"
	"github.com/rghdrizzle/ockam/pkg/identity"
)

const (
	OK          = 0
	Usage       = 64
	DataErr     = 65
	Unavailable = 69
	Software    = 70
	IOErr       = 74
	Config      = 78
)

// FromError returns the exit code for err. A nil error is OK.
func FromError(err error) int {
	if err == nil {
		return OK
	}

	var coder cli.ExitCoder
	if errors.As(err, &coder) {
		return coder.ExitCode()
	}

	var stateErr *identity.StateError
	if errors.As(err, &stateErr) {
		return Config
	}
	if errors.Is(err, config.ErrInvalid) {
		return Config
	}

	var failure *api.Failure
	if errors.As(err, &failure) {
		switch failure.Kind {
		case api.KindTransport:
			return Unavailable
		case api.KindDecode, api.KindServer:
			return DataErr
		}
	}

	if errors.Is(err, identity.ErrNotFound) || errors.Is(err, identity.ErrIdentityExists) {
		return DataErr
	}
	return Software
}
