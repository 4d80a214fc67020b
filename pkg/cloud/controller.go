// Package cloud is the client side of the remote controller services.
package cloud

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/rghdrizzle/ockam/pkg/api"
	"github.com/rghdrizzle/ockam/pkg/commsutil"
)

const logPrefix = "cloud:controller"

// DefaultRequestTimeout bounds a call whose context carries no deadline.
const DefaultRequestTimeout = 30 * time.Second

// Config holds Controller settings.
type Config struct {
	// SubjectPrefix namespaces the service subjects (default commsutil.DefaultSubjectPrefix).
	SubjectPrefix string
	// RequestTimeout applies when the caller's context has no deadline. Negative disables it.
	RequestTimeout time.Duration
}

// Controller owns the address of the remote controller and dispatches requests to it.
// It holds no mutable state and may be shared across goroutines.
type Controller struct {
	transport     Transport
	subjectPrefix string
	timeout       time.Duration
}

// NewController binds a Controller to a transport.
func NewController(t Transport, cfg Config) *Controller {
	prefix := cfg.SubjectPrefix
	if prefix == "" {
		prefix = commsutil.DefaultSubjectPrefix
	}
	timeout := cfg.RequestTimeout
	if timeout == 0 {
		timeout = DefaultRequestTimeout
	}
	return &Controller{transport: t, subjectPrefix: prefix, timeout: timeout}
}

// Subject returns the subject a service is addressed at.
func (c *Controller) Subject(service string) string {
	return commsutil.BuildServiceSubject(c.subjectPrefix, service)
}

// Ask sends req to service and waits for exactly one reply decoded as T.
// Every failure, including cancellation of ctx, is returned as the Failure arm.
func Ask[T any](ctx context.Context, c *Controller, service string, req *api.Request) api.Reply[T] {
	if c == nil || c.transport == nil {
		return api.Fail[T](api.NewTransportFailure(api.CodeTransport, errors.New("controller has no transport")))
	}
	if req == nil {
		return api.Fail[T](api.NewDecodeFailure(api.CodeEncode, "no request to send", nil))
	}
	if err := ctx.Err(); err != nil {
		return api.Fail[T](transportFailure(err))
	}
	if _, ok := ctx.Deadline(); !ok && c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	id := uuid.NewString()
	data, err := req.Encode(id)
	if err != nil {
		return api.Fail[T](api.NewDecodeFailure(api.CodeEncode, "request could not be encoded", err))
	}

	subject := c.Subject(service)
	slog.Debug(fmt.Sprintf("%s - %s -> %s id=%s", logPrefix, req, subject, id))

	resp, err := c.transport.Request(ctx, subject, data)
	if err != nil {
		slog.Debug(fmt.Sprintf("%s - %s id=%s failed: %v", logPrefix, req, id, err))
		return api.Fail[T](transportFailure(err))
	}
	return api.DecodeReply[T](id, resp)
}
