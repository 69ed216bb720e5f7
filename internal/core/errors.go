package core

import "errors"

// Error kinds surfaced by the analysis pipeline. Callers classify with
// errors.Is; none of these are retried internally.
var (
	// ErrValidation indicates malformed local input data.
	ErrValidation = errors.New("validation failed")

	// ErrConnection indicates the external tool process could not be
	// started or its transport broke before a response was obtained.
	ErrConnection = errors.New("tool connection failed")

	// ErrUpstreamTimeout indicates the delegated call exceeded the
	// operator-configured deadline.
	ErrUpstreamTimeout = errors.New("upstream deadline exceeded")

	// ErrSchemaViolation indicates the model's final answer could not be
	// coerced into an EmailSecurityDecision.
	ErrSchemaViolation = errors.New("decision schema violation")
)
