package api

import (
	"bytes"
	"fmt"

	"github.com/rghdrizzle/ockam/pkg/commsutil"
)

// Reply is the outcome of a remote call: either a value of T or a Failure, never both.
// The zero Reply is a failure.
type Reply[T any] struct {
	value   T
	failure *Failure
	ok      bool
}

// Success wraps a decoded value.
func Success[T any](v T) Reply[T] {
	return Reply[T]{value: v, ok: true}
}

// Fail wraps f. A nil f still yields a failed Reply.
func Fail[T any](f *Failure) Reply[T] {
	if f == nil {
		f = NewDecodeFailure(CodeEmptyReply, "no reply value", nil)
	}
	return Reply[T]{failure: f}
}

// IsSuccess reports whether the call produced a value.
func (r Reply[T]) IsSuccess() bool { return r.ok }

// Value returns the success value and true, or the zero T and false.
func (r Reply[T]) Value() (T, bool) {
	if !r.ok {
		var zero T
		return zero, false
	}
	return r.value, true
}

// Failure returns the failure arm, or nil for a successful reply.
func (r Reply[T]) Failure() *Failure {
	if r.ok {
		return nil
	}
	if r.failure == nil {
		return NewDecodeFailure(CodeEmptyReply, "no reply value", nil)
	}
	return r.failure
}

// Unwrap converts the reply into Go's (value, error) convention.
func (r Reply[T]) Unwrap() (T, error) {
	if r.ok {
		return r.value, nil
	}
	var zero T
	return zero, r.Failure()
}

func (r Reply[T]) String() string {
	if r.ok {
		return fmt.Sprintf("Success(%+v)", r.value)
	}
	return fmt.Sprintf("Failure(%v)", r.Failure())
}

// DecodeReply interprets a ResponseEnvelope answering request id.
// An empty id skips the correlation check.
func DecodeReply[T any](id string, data []byte) Reply[T] {
	var env ResponseEnvelope
	if err := commsutil.DecodePayload(data, &env); err != nil {
		return Fail[T](NewDecodeFailure(CodeDecode, "malformed reply envelope", err))
	}
	if id != "" && env.ID != "" && env.ID != id {
		return Fail[T](NewDecodeFailure(CodeCorrelation,
			fmt.Sprintf("reply id %q does not match request id %q", env.ID, id), nil))
	}
	if !env.Ok {
		return Fail[T](NewServerRejection(env.Error))
	}
	if len(bytes.TrimSpace(env.Result)) == 0 || bytes.Equal(bytes.TrimSpace(env.Result), []byte("null")) {
		return Fail[T](NewDecodeFailure(CodeEmptyReply, "reply carries no result", nil))
	}
	var v T
	if err := commsutil.DecodePayload(env.Result, &v); err != nil {
		return Fail[T](NewDecodeFailure(CodeDecode, fmt.Sprintf("result does not decode as %T", v), err))
	}
	return Success(v)
}
