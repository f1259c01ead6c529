// Package gameerr provides coded domain errors for the progression engine.
package gameerr

import "google.golang.org/grpc/codes"

// Code is a machine-readable error code.
type Code string

const (
	CodeUnknown Code = "UNKNOWN"

	// Request errors
	CodeInvalidRequest Code = "INVALID_REQUEST"

	// Item / enhancement errors
	CodeInvalidItemState  Code = "INVALID_ITEM_STATE"
	CodeMaxLevelReached   Code = "MAX_LEVEL_REACHED"
	CodeInsufficientFunds Code = "INSUFFICIENT_FUNDS"

	// Stage errors
	CodeUnknownStage Code = "UNKNOWN_STAGE"

	// Battle errors
	CodeInvalidTurn Code = "INVALID_TURN"

	// Sale errors
	CodeItemEquipped      Code = "ITEM_EQUIPPED"
	CodeSaleLimitExceeded Code = "SALE_LIMIT_EXCEEDED"

	// Probability / config errors
	CodeInvalidProbability Code = "INVALID_PROBABILITY"
	CodeInvalidConfig      Code = "INVALID_CONFIG"
)

// GRPCCode maps the domain code to a gRPC status code.
func (c Code) GRPCCode() codes.Code {
	switch c {
	case CodeInvalidRequest, CodeInvalidItemState, CodeInvalidProbability, CodeUnknownStage:
		return codes.InvalidArgument
	case CodeMaxLevelReached, CodeInsufficientFunds, CodeInvalidTurn,
		CodeItemEquipped, CodeSaleLimitExceeded:
		return codes.FailedPrecondition
	case CodeInvalidConfig:
		return codes.Internal
	default:
		return codes.Unknown
	}
}
