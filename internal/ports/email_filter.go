package ports

import (
	"context"

	"github.com/yuri1992/email-trust-agent/internal/core"
)

// EmailFilter defines the interface for a message-ingesting frontend
// that feeds the analysis orchestrator.
type EmailFilter interface {
	// ProcessRequest analyzes one extracted request directly.
	ProcessRequest(ctx context.Context, req *core.EmailAnalysisRequest) (*core.EmailSecurityDecision, error)

	// Start starts the frontend.
	Start() error

	// Stop stops the frontend.
	Stop() error
}
