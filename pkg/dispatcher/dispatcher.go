// Package dispatcher hosts services that speak the controller request/reply
// protocol: it routes request envelopes by method and path to handlers.
//
// The CLI only talks to controller services. This package serves in-process
// doubles of them, such as the users service, for the client's tests; no
// server binary is built from it.
package dispatcher

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"github.com/rghdrizzle/ockam/pkg/api"
)

const logPrefix = "dispatcher:dispatch"

// Error codes returned by the dispatcher itself.
const (
	CodeInvalidRequest = "INVALID_REQUEST"
	CodeNotFound       = "NOT_FOUND"
	CodeInternal       = "INTERNAL_ERROR"
)

// Request is a routed request. Params holds the values of {name} path segments.
type Request struct {
	Method api.Method
	Path   string
	Params map[string]string
	Body   json.RawMessage
}

// Bind decodes the request body into v.
func (r *Request) Bind(v interface{}) error {
	if len(r.Body) == 0 {
		return &Error{Code: CodeInvalidRequest, Message: "request body is required"}
	}
	if err := json.Unmarshal(r.Body, v); err != nil {
		return &Error{Code: CodeInvalidRequest, Message: fmt.Sprintf("failed to parse body: %v", err)}
	}
	return nil
}

// HandlerFunc answers one request. The result is encoded as the reply's result.
type HandlerFunc func(ctx context.Context, req *Request) (interface{}, error)

// Error is a handler failure reported to the caller as-is.
type Error struct {
	Code      string
	Message   string
	Details   interface{}
	Retryable bool
}

func (e *Error) Error() string { return e.Code + ": " + e.Message }

type route struct {
	method   api.Method
	segments []string
	handler  HandlerFunc
}

// Dispatcher routes request envelopes to handlers. Routes are matched in
// registration order.
type Dispatcher struct {
	mu     sync.RWMutex
	routes []route
}

// NewDispatcher creates an empty Dispatcher.
func NewDispatcher() *Dispatcher {
	return &Dispatcher{}
}

// Handle registers h for method and pattern. A pattern segment written as
// {name} matches any single non-empty segment.
func (d *Dispatcher) Handle(method api.Method, pattern string, h HandlerFunc) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.routes = append(d.routes, route{method: method, segments: splitPath(pattern), handler: h})
}

// Dispatch answers req. It never returns nil.
func (d *Dispatcher) Dispatch(ctx context.Context, req *api.RequestEnvelope) *api.ResponseEnvelope {
	slog.Debug(fmt.Sprintf("%s - %s %s id=%s", logPrefix, req.Method, req.Path, req.ID))

	h, params := d.match(req.Method, req.Path)
	if h == nil {
		return errorResponse(req.ID, &Error{
			Code:    CodeNotFound,
			Message: fmt.Sprintf("no route for %s %s", req.Method, req.Path),
		})
	}

	result, err := h(ctx, &Request{Method: req.Method, Path: req.Path, Params: params, Body: req.Body})
	if err != nil {
		var dErr *Error
		if !errors.As(err, &dErr) {
			dErr = &Error{Code: CodeInternal, Message: err.Error(), Retryable: true}
		}
		return errorResponse(req.ID, dErr)
	}

	data, err := json.Marshal(result)
	if err != nil {
		slog.Error(fmt.Sprintf("%s - failed to encode result for %s: %v", logPrefix, req.Path, err))
		return errorResponse(req.ID, &Error{Code: CodeInternal, Message: "failed to encode result", Retryable: true})
	}
	return &api.ResponseEnvelope{ID: req.ID, Ok: true, Result: data}
}

func (d *Dispatcher) match(method api.Method, path string) (HandlerFunc, map[string]string) {
	segments := splitPath(path)

	d.mu.RLock()
	defer d.mu.RUnlock()
	for _, r := range d.routes {
		if r.method != method || len(r.segments) != len(segments) {
			continue
		}
		params := map[string]string{}
		ok := true
		for i, seg := range r.segments {
			if strings.HasPrefix(seg, "{") && strings.HasSuffix(seg, "}") {
				if segments[i] == "" {
					ok = false
					break
				}
				params[seg[1:len(seg)-1]] = segments[i]
				continue
			}
			if seg != segments[i] {
				ok = false
				break
			}
		}
		if ok {
			return r.handler, params
		}
	}
	return nil, nil
}

func splitPath(p string) []string {
	return strings.Split(strings.TrimPrefix(p, "/"), "/")
}

func errorResponse(id string, e *Error) *api.ResponseEnvelope {
	return &api.ResponseEnvelope{
		ID: id,
		Ok: false,
		Error: &api.ErrorDetail{
			Code:      e.Code,
			Message:   e.Message,
			Details:   e.Details,
			Retryable: e.Retryable,
		},
	}
}
