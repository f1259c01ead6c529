package gameerr

import (
	"errors"

	"google.golang.org/genproto/googleapis/rpc/errdetails"
	"google.golang.org/grpc/status"
)

// Domain is the error domain attached to gRPC error details.
const Domain = "github.com/xtding233/progression-engine"

// Error is the domain error type with structured metadata.
type Error struct {
	Code     Code              // Machine-readable error code
	Message  string            // Internal message (for logs)
	Metadata map[string]string // Additional context (item id, cost, ...)
	Cause    error             // Wrapped underlying error
}

// Sentinels for errors.Is matching; comparison is by code.
var (
	ErrInvalidRequest     = New(CodeInvalidRequest, "invalid request")
	ErrInvalidItemState   = New(CodeInvalidItemState, "invalid item state")
	ErrMaxLevelReached    = New(CodeMaxLevelReached, "max enhancement level reached")
	ErrInsufficientFunds  = New(CodeInsufficientFunds, "insufficient credits")
	ErrUnknownStage       = New(CodeUnknownStage, "unknown stage")
	ErrInvalidTurn        = New(CodeInvalidTurn, "not this actor's turn")
	ErrItemEquipped       = New(CodeItemEquipped, "item is equipped")
	ErrSaleLimitExceeded  = New(CodeSaleLimitExceeded, "too many items in one sale")
	ErrInvalidProbability = New(CodeInvalidProbability, "invalid probability; must be 0..1")
	ErrInvalidConfig      = New(CodeInvalidConfig, "invalid config")
)

func (e *Error) Error() string {
	if e.Cause != nil {
		return e.Message + ": " + e.Cause.Error()
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Cause
}

// Is reports whether target matches this error by code.
func (e *Error) Is(target error) bool {
	if t, ok := target.(*Error); ok {
		return e.Code == t.Code
	}
	return false
}

// New creates a simple domain error with a code and message.
func New(code Code, message string) *Error {
	return &Error{Code: code, Message: message}
}

// WithMetadata creates a domain error carrying key/value context.
func WithMetadata(code Code, message string, metadata map[string]string) *Error {
	return &Error{Code: code, Message: message, Metadata: metadata}
}

// Wrap creates a domain error that wraps an underlying cause.
func Wrap(code Code, message string, cause error) *Error {
	return &Error{Code: code, Message: message, Cause: cause}
}

// GRPCStatus lets grpc-go convert domain errors returned from handlers.
func (e *Error) GRPCStatus() *status.Status {
	st := status.New(e.Code.GRPCCode(), e.Error())
	detailed, err := st.WithDetails(&errdetails.ErrorInfo{
		Reason:   string(e.Code),
		Domain:   Domain,
		Metadata: e.Metadata,
	})
	if err != nil {
		return st
	}
	return detailed
}

// CodeOf extracts the code of the first *Error in the chain.
func CodeOf(err error) Code {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return CodeUnknown
}
