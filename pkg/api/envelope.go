// Package api defines the request/reply protocol spoken with remote controller services.
package api

import "encoding/json"

// RequestEnvelope is the JSON envelope sent to a controller service.
type RequestEnvelope struct {
	ID     string          `json:"id"`
	Method Method          `json:"method"`
	Path   string          `json:"path"`
	Body   json.RawMessage `json:"body,omitempty"`
}

// ResponseEnvelope is the JSON envelope returned by a controller service.
type ResponseEnvelope struct {
	ID     string          `json:"id"`
	Ok     bool            `json:"ok"`
	Result json.RawMessage `json:"result,omitempty"`
	Error  *ErrorDetail    `json:"error,omitempty"`
}

// ErrorDetail holds structured error information reported by the server.
type ErrorDetail struct {
	Code      string      `json:"code"`
	Message   string      `json:"message"`
	Details   interface{} `json:"details,omitempty"`
	Retryable bool        `json:"retryable"`
}
