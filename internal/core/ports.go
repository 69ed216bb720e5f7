package core

import (
	"context"
	"encoding/json"
)

// AgentBackend runs the delegated reasoning call: it sends the email
// context to a model bound to the discovered toolset and returns the
// model's answer coerced into a validated decision.
type AgentBackend interface {
	// Analyze delegates one request and blocks until the model's final
	// answer resolves or ctx is done.
	Analyze(ctx context.Context, req *EmailAnalysisRequest) (*EmailSecurityDecision, error)
}

// ToolDescriptor describes one remote operation discovered at session
// start. InputSchema is the operation's JSON schema as advertised by
// the tool process.
type ToolDescriptor struct {
	Name        string
	Description string
	InputSchema json.RawMessage
}

// ToolSession is a scoped connection to the external tool process.
// Operations are discovered at connect time; the session must be
// released on every exit path.
type ToolSession interface {
	// Tools lists the operations discovered at connect time, in the
	// order the tool process advertised them.
	Tools() []ToolDescriptor

	// Call dispatches one discovered operation by name. Calls are
	// serialized; the transport has no multiplexing guarantee.
	Call(ctx context.Context, name string, args map[string]any) (string, error)

	// Close releases the session and its subprocess. Idempotent.
	Close() error
}
