package api

import (
	"encoding/json"
	"fmt"

	"github.com/rghdrizzle/ockam/pkg/commsutil"
)

const requestLogPrefix = "api:request"

// Method is the verb of a controller request.
type Method string

const (
	MethodGet  Method = "GET"
	MethodPost Method = "POST"
)

// Request is an addressed, method-tagged request with at most one body.
// Builder methods return new values; a built Request is never mutated.
type Request struct {
	method  Method
	path    string
	body    interface{}
	hasBody bool
}

// Get builds a GET request for path.
func Get(path string) *Request {
	return &Request{method: MethodGet, path: path}
}

// Post builds a POST request for path.
func Post(path string) *Request {
	return &Request{method: MethodPost, path: path}
}

// Body returns a copy of r carrying v as its body, replacing any previous body.
func (r *Request) Body(v interface{}) *Request {
	out := *r
	out.body = v
	out.hasBody = true
	return &out
}

// Method returns the request verb.
func (r *Request) Method() Method { return r.method }

// Path returns the request path.
func (r *Request) Path() string { return r.path }

// Payload returns the typed body and whether one is attached.
func (r *Request) Payload() (interface{}, bool) { return r.body, r.hasBody }

// String renders the request as "METHOD path".
func (r *Request) String() string {
	return fmt.Sprintf("%s %s", r.method, r.path)
}

// Encode serializes the request into a RequestEnvelope tagged with id.
func (r *Request) Encode(id string) ([]byte, error) {
	env := RequestEnvelope{ID: id, Method: r.method, Path: r.path}
	if r.hasBody {
		body, err := commsutil.EncodePayload(r.body)
		if err != nil {
			return nil, fmt.Errorf("%s - failed to encode body for %s: %w", requestLogPrefix, r, err)
		}
		env.Body = json.RawMessage(body)
	}
	data, err := commsutil.EncodePayload(env)
	if err != nil {
		return nil, fmt.Errorf("%s - failed to encode envelope for %s: %w", requestLogPrefix, r, err)
	}
	return data, nil
}
