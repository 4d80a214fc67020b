package exitcode

import (
	"errors"
	"fmt"
	"testing"

	"github.com/urfave/cli/v2"

	"github.com/rghdrizzle/ockam/internal/config"
	"github.com/rghdrizzle/ockam/pkg/api"
	"github.com/rghdrizzle/ockam/pkg/identity"
)

const exitcodeTestPrefix = "exitcode:exitcode_test"

func TestFromError(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"nil", nil, OK},
		{"plain", errors.New("boom"), Software},
		{"state error", &identity.StateError{Op: "load", Err: errors.New("eof")}, Config},
		{"wrapped state error", fmt.Errorf("resolve: %w", &identity.StateError{Op: "load", Err: errors.New("eof")}), Config},
		{"config", fmt.Errorf("x: %w", config.ErrInvalid), Config},
		{"transport", api.NewTransportFailure(api.CodeTimeout, errors.New("slow")), Unavailable},
		{"decode", api.NewDecodeFailure(api.CodeDecode, "bad", nil), DataErr},
		{"server", api.NewServerRejection(&api.ErrorDetail{Code: "NOT_FOUND"}), DataErr},
		{"not found", fmt.Errorf("show: %w", identity.ErrNotFound), DataErr},
		{"exit coder", cli.Exit("usage", Usage), Usage},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := FromError(tt.err); got != tt.want {
				t.Errorf("%s - FromError(%v) = %d, want %d", exitcodeTestPrefix, tt.err, got, tt.want)
			}
		})
	}
}
