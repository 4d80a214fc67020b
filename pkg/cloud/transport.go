package cloud

import (
	"context"
	"errors"
	"fmt"

	comms "github.com/nats-io/nats.go"

	"github.com/rghdrizzle/ockam/pkg/api"
)

const transportLogPrefix = "cloud:transport"

// Transport sends one request to a subject and returns the single reply payload.
// Implementations must honor ctx cancellation and be safe for concurrent use.
type Transport interface {
	Request(ctx context.Context, subject string, data []byte) ([]byte, error)
}

// NATSTransport is a Transport over a NATS connection using request/reply inboxes.
type NATSTransport struct {
	nc *comms.Conn
}

// NewNATSTransport wraps an established NATS connection.
func NewNATSTransport(nc *comms.Conn) *NATSTransport {
	return &NATSTransport{nc: nc}
}

// Request publishes data on subject and waits for the first reply.
func (t *NATSTransport) Request(ctx context.Context, subject string, data []byte) ([]byte, error) {
	if t.nc == nil {
		return nil, fmt.Errorf("%s - no connection", transportLogPrefix)
	}
	msg, err := t.nc.RequestWithContext(ctx, subject, data)
	if err != nil {
		return nil, fmt.Errorf("%s - request to %s failed: %w", transportLogPrefix, subject, err)
	}
	return msg.Data, nil
}

// transportFailure classifies a delivery error.
func transportFailure(err error) *api.Failure {
	switch {
	case errors.Is(err, context.Canceled):
		return api.NewTransportFailure(api.CodeCancelled, err)
	case errors.Is(err, context.DeadlineExceeded), errors.Is(err, comms.ErrTimeout):
		return api.NewTransportFailure(api.CodeTimeout, err)
	case errors.Is(err, comms.ErrNoResponders):
		return api.NewTransportFailure(api.CodeNoResponders, err)
	default:
		return api.NewTransportFailure(api.CodeTransport, err)
	}
}
