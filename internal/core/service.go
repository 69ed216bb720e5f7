package core

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"
)

// AnalysisService is the orchestrator: it validates a request, applies
// the operator deadline, delegates reasoning to the configured backend
// and enforces the decision shape on the way back. It holds no state
// across calls and issues one delegated call at a time.
type AnalysisService struct {
	backend        AgentBackend
	logger         *zap.Logger
	timeout        time.Duration
	trustedDomains []string
}

// NewAnalysisService creates a new analysis orchestrator. timeout <= 0
// disables the upstream deadline; production configurations should
// always set one.
func NewAnalysisService(
	backend AgentBackend,
	logger *zap.Logger,
	timeout time.Duration,
	trustedDomains []string,
) *AnalysisService {
	normalized := make([]string, len(trustedDomains))
	for i, domain := range trustedDomains {
		normalized[i] = strings.ToLower(strings.TrimSpace(domain))
	}
	return &AnalysisService{
		backend:        backend,
		logger:         logger,
		timeout:        timeout,
		trustedDomains: normalized,
	}
}

// isTrustedDomain checks if the sender's domain is on the operator's
// trusted list.
func (s *AnalysisService) isTrustedDomain(req *EmailAnalysisRequest) bool {
	domain := req.SenderDomain()
	if domain == "" {
		return false
	}
	for _, trusted := range s.trustedDomains {
		if trusted == domain {
			return true
		}
	}
	return false
}

// Analyze produces a decision for one request. Trusted sender domains
// short-circuit to SAFE without a delegated call. All other requests go
// through the backend; the returned decision is re-validated before it
// is handed out. Errors are never retried here.
func (s *AnalysisService) Analyze(ctx context.Context, req *EmailAnalysisRequest) (*EmailSecurityDecision, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	if s.isTrustedDomain(req) {
		s.logger.Info("Skipping delegated analysis for trusted domain",
			zap.String("sender", req.SenderEmail),
			zap.String("action", "trusted_bypass"))
		return &EmailSecurityDecision{
			Decision:   DecisionSafe,
			RiskLevel:  RiskVeryLow,
			Confidence: 1.0,
			Reasoning:  "Sender domain is on the operator trusted list",
		}, nil
	}

	if s.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}

	started := time.Now()
	decision, err := s.backend.Analyze(ctx, req)
	if err != nil {
		return nil, s.classify(err)
	}

	// The backend already parsed the answer, but shape enforcement is
	// this layer's contract: never trust it by construction.
	if err := decision.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrSchemaViolation, err)
	}

	s.logger.Info("Analysis complete",
		zap.String("sender", req.SenderEmail),
		zap.String("decision", string(decision.Decision)),
		zap.String("risk_level", string(decision.RiskLevel)),
		zap.Float64("confidence", decision.Confidence),
		zap.Duration("elapsed", time.Since(started)))

	return decision, nil
}

// classify maps backend failures onto the error taxonomy. Already
// classified errors pass through untouched.
func (s *AnalysisService) classify(err error) error {
	switch {
	case errors.Is(err, ErrConnection),
		errors.Is(err, ErrUpstreamTimeout),
		errors.Is(err, ErrSchemaViolation),
		errors.Is(err, ErrValidation):
		return err
	case errors.Is(err, context.DeadlineExceeded):
		return fmt.Errorf("%w: %v", ErrUpstreamTimeout, err)
	default:
		return fmt.Errorf("%w: %v", ErrConnection, err)
	}
}
