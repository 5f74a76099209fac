package model

import (
	"net/http"

	"github.com/Laisky/errors/v2"
)

// Kind enumerates the terminal error taxonomy the gateway maps to an HTTP
// status before answering the caller (spec.md §7). Every DispatchError
// carries exactly one Kind.
type Kind string

const (
	// KindMissingCredential means the caller did not present (or presented an
	// invalid) GATEWAY_KEY bearer credential.
	KindMissingCredential Kind = "missing_credential"

	// KindNoAvailableModel means no ModelRecord is eligible for dispatch
	// (status=1 and connect_status=1). A requested model name that matches no
	// eligible record does not cause it; the other eligible records are tried.
	KindNoAvailableModel Kind = "no_available_model"

	// KindUpstreamHTTPError means the last attempted candidate's upstream
	// responded with a non-2xx status that the adapter could not recover
	// from by trying the next candidate.
	KindUpstreamHTTPError Kind = "upstream_http_error"

	// KindEmptyResponse means an upstream returned 2xx but the adapter could
	// not extract a usable StandardResponse/StreamChunk from the body.
	KindEmptyResponse Kind = "empty_response"

	// KindTransportError means the request never reached an upstream, or the
	// connection failed before a status line was read (DNS, dial, TLS,
	// context deadline).
	KindTransportError Kind = "transport_error"

	// KindValidationError means the inbound StandardRequest failed
	// validator-tag validation before any candidate was attempted.
	KindValidationError Kind = "validation_error"

	// KindAllUpstreamsFailed means every candidate in the ordered list was
	// attempted and failed; it wraps the last candidate's error as cause.
	KindAllUpstreamsFailed Kind = "all_upstreams_failed"
)

// statusByKind is the fixed Kind -> HTTP status mapping from spec.md §7.
var statusByKind = map[Kind]int{
	KindMissingCredential:  http.StatusUnauthorized,
	KindNoAvailableModel:   http.StatusNotFound,
	KindUpstreamHTTPError:  http.StatusBadGateway,
	KindEmptyResponse:      http.StatusBadGateway,
	KindTransportError:     http.StatusBadGateway,
	KindValidationError:    http.StatusBadRequest,
	KindAllUpstreamsFailed: http.StatusInternalServerError,
}

// DispatchError is the error type the dispatch engine returns up the call
// stack; adapters return plain errors, which the engine wraps. A controller at the HTTP boundary is the only
// place that should translate it into a response body (spec.md §7).
type DispatchError struct {
	Kind    Kind
	Message string
	cause   error
}

// NewDispatchError builds a DispatchError of the given Kind, wrapping cause
// if non-nil via Laisky/errors so the original stack trace survives.
func NewDispatchError(kind Kind, message string, cause error) *DispatchError {
	if cause != nil {
		cause = errors.Wrap(cause, message)
	}
	return &DispatchError{Kind: kind, Message: message, cause: cause}
}

func (e *DispatchError) Error() string {
	if e.cause != nil {
		return e.Message + ": " + e.cause.Error()
	}
	return e.Message
}

func (e *DispatchError) Unwrap() error { return e.cause }

// StatusCode returns the HTTP status this error's Kind maps to.
func (e *DispatchError) StatusCode() int {
	if code, ok := statusByKind[e.Kind]; ok {
		return code
	}
	return http.StatusInternalServerError
}

// AsDispatchError unwraps err looking for a *DispatchError, the way
// errors.As would, returning ok=false if none is found in the chain.
func AsDispatchError(err error) (*DispatchError, bool) {
	var de *DispatchError
	if errors.As(err, &de) {
		return de, true
	}
	return nil, false
}
