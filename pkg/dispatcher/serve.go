package dispatcher

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	comms "github.com/nats-io/nats.go"

	"github.com/rghdrizzle/ockam/pkg/api"
)

const serveLogPrefix = "dispatcher:serve"

// DefaultHandlerTimeout bounds a single handler invocation.
const DefaultHandlerTimeout = 25 * time.Second

// Serve subscribes d to subject on nc. Each request runs with a context
// derived from ctx and bounded by timeout (DefaultHandlerTimeout when zero).
// Unsubscribe the returned subscription to stop serving.
func Serve(ctx context.Context, nc *comms.Conn, subject string, d *Dispatcher, timeout time.Duration) (*comms.Subscription, error) {
	if timeout <= 0 {
		timeout = DefaultHandlerTimeout
	}

	sub, err := nc.Subscribe(subject, func(msg *comms.Msg) {
		var req api.RequestEnvelope
		if err := json.Unmarshal(msg.Data, &req); err != nil {
			slog.Error(fmt.Sprintf("%s - failed to decode request: %v", serveLogPrefix, err))
			respond(msg, errorResponse("", &Error{Code: CodeInvalidRequest, Message: "Failed to decode request"}))
			return
		}

		reqCtx, cancel := context.WithTimeout(ctx, timeout)
		defer cancel()
		respond(msg, d.Dispatch(reqCtx, &req))
	})
	if err != nil {
		return nil, fmt.Errorf("%s - failed to subscribe to %s: %w", serveLogPrefix, subject, err)
	}
	if err := nc.Flush(); err != nil {
		sub.Unsubscribe()
		return nil, fmt.Errorf("%s - failed to flush subscription to %s: %w", serveLogPrefix, subject, err)
	}
	slog.Debug(fmt.Sprintf("%s - Subscribed to %s", serveLogPrefix, subject))
	return sub, nil
}

func respond(msg *comms.Msg, resp *api.ResponseEnvelope) {
	data, err := json.Marshal(resp)
	if err != nil {
		slog.Error(fmt.Sprintf("%s - failed to encode response: %v", serveLogPrefix, err))
		return
	}
	if err := msg.Respond(data); err != nil {
		slog.Warn(fmt.Sprintf("%s - failed to respond: %v", serveLogPrefix, err))
	}
}
