package api

import (
	"errors"
	"strings"
)

// Kind classifies why a remote call failed.
type Kind int

const (
	// KindTransport means the request was not delivered or no reply arrived.
	KindTransport Kind = iota + 1
	// KindDecode means the reply did not match the expected shape.
	KindDecode
	// KindServer means the server answered with an error status.
	KindServer
)

func (k Kind) String() string {
	switch k {
	case KindTransport:
		return "transport"
	case KindDecode:
		return "decode"
	case KindServer:
		return "server"
	default:
		return "unknown"
	}
}

// Failure codes produced on the client side. Server rejections carry the server's own code.
const (
	CodeTransport        = "TRANSPORT_ERROR"
	CodeTimeout          = "TIMEOUT"
	CodeCancelled        = "CANCELLED"
	CodeNoResponders     = "NO_RESPONDERS"
	CodeEncode           = "ENCODE_ERROR"
	CodeDecode           = "DECODE_ERROR"
	CodeCorrelation      = "CORRELATION_MISMATCH"
	CodeEmptyReply       = "EMPTY_REPLY"
	CodeUnknownRejection = "UNKNOWN_ERROR"
)

// Failure is the failure arm of a Reply.
type Failure struct {
	Kind      Kind
	Code      string
	Message   string
	Details   interface{}
	Retryable bool
	Err       error
}

func (f *Failure) Error() string {
	var b strings.Builder
	b.WriteString(f.Kind.String())
	b.WriteString(": ")
	b.WriteString(f.Code)
	if f.Message != "" {
		b.WriteString(": ")
		b.WriteString(f.Message)
	}
	if f.Err != nil {
		b.WriteString(": ")
		b.WriteString(f.Err.Error())
	}
	return b.String()
}

func (f *Failure) Unwrap() error { return f.Err }

// NewTransportFailure wraps a delivery error.
func NewTransportFailure(code string, err error) *Failure {
	if code == "" {
		code = CodeTransport
	}
	return &Failure{
		Kind:      KindTransport,
		Code:      code,
		Message:   "request was not answered",
		Retryable: code != CodeCancelled,
		Err:       err,
	}
}

// NewDecodeFailure reports a reply that could not be interpreted.
func NewDecodeFailure(code, message string, err error) *Failure {
	if code == "" {
		code = CodeDecode
	}
	return &Failure{Kind: KindDecode, Code: code, Message: message, Err: err}
}

// NewServerRejection converts a server-reported error detail into a Failure.
func NewServerRejection(d *ErrorDetail) *Failure {
	if d == nil {
		return &Failure{Kind: KindServer, Code: CodeUnknownRejection, Message: "server reported failure without detail"}
	}
	code := d.Code
	if code == "" {
		code = CodeUnknownRejection
	}
	return &Failure{
		Kind:      KindServer,
		Code:      code,
		Message:   d.Message,
		Details:   d.Details,
		Retryable: d.Retryable,
	}
}

// IsKind reports whether err wraps a Failure of kind k.
func IsKind(err error, k Kind) bool {
	var f *Failure
	if !errors.As(err, &f) {
		return false
	}
	return f.Kind == k
}
