package core_test

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/yuri1992/email-trust-agent/internal/core"
)

// stubBackend is a deterministic AgentBackend.
type stubBackend struct {
	decision *core.EmailSecurityDecision
	err      error
	calls    int
}

func (b *stubBackend) Analyze(_ context.Context, _ *core.EmailAnalysisRequest) (*core.EmailSecurityDecision, error) {
	b.calls++
	if b.err != nil {
		return nil, b.err
	}
	// Return a copy so callers cannot alias the stub's value.
	d := *b.decision
	return &d, nil
}

// stubSession counts release calls; the tool surface is unused here.
type stubSession struct {
	closeCalls int
}

func (s *stubSession) Tools() []core.ToolDescriptor { return nil }

func (s *stubSession) Call(context.Context, string, map[string]any) (string, error) {
	return "", fmt.Errorf("no tools in stub")
}

func (s *stubSession) Close() error {
	s.closeCalls++
	return nil
}

func newService(backend core.AgentBackend) *core.AnalysisService {
	return core.NewAnalysisService(backend, zap.NewNop(), time.Second, nil)
}

func TestAnalyzeAllPassAuthentication(t *testing.T) {
	// Scenario: sender domain matches message_id_domain and all
	// authentication results pass. With a correctly behaving backend the
	// verdict is SAFE; asserted against a stub, not a live model.
	backend := &stubBackend{decision: validDecision()}
	svc := newService(backend)

	d, err := svc.Analyze(context.Background(), validRequest())
	require.NoError(t, err)
	assert.Equal(t, core.DecisionSafe, d.Decision)
	assert.Equal(t, 1, backend.calls)
}

func TestAnalyzeDomainMismatch(t *testing.T) {
	// The core contract only guarantees decision shape, not content:
	// for a mismatched message_id_domain we assert schema validity and
	// deliberately do not assert a specific verdict.
	backend := &stubBackend{decision: &core.EmailSecurityDecision{
		Decision:   core.DecisionSuspicious,
		RiskLevel:  core.RiskMedium,
		Confidence: 0.7,
		Reasoning:  "Message origin domain does not match the DKIM signing domain.",
	}}
	svc := newService(backend)

	req := validRequest()
	req.MessageIDDomain = "mail-relay.xyz"

	d, err := svc.Analyze(context.Background(), req)
	require.NoError(t, err)
	require.NoError(t, d.Validate())
}

func TestAnalyzeRejectsInvalidRequest(t *testing.T) {
	backend := &stubBackend{decision: validDecision()}
	svc := newService(backend)

	req := validRequest()
	req.SenderIP = ""

	_, err := svc.Analyze(context.Background(), req)
	require.ErrorIs(t, err, core.ErrValidation)
	assert.Zero(t, backend.calls, "invalid requests must not reach the backend")
}

func TestAnalyzeIdempotentAgainstDeterministicBackend(t *testing.T) {
	svc := newService(&stubBackend{decision: validDecision()})

	first, err := svc.Analyze(context.Background(), validRequest())
	require.NoError(t, err)
	second, err := svc.Analyze(context.Background(), validRequest())
	require.NoError(t, err)

	assert.Equal(t, first, second)
}

func TestAnalyzeTrustedDomainBypass(t *testing.T) {
	backend := &stubBackend{decision: validDecision()}
	svc := core.NewAnalysisService(backend, zap.NewNop(), time.Second, []string{"GMAIL.com "})

	d, err := svc.Analyze(context.Background(), validRequest())
	require.NoError(t, err)
	assert.Equal(t, core.DecisionSafe, d.Decision)
	assert.Zero(t, backend.calls, "trusted domains must not trigger a delegated call")
}

func TestAnalyzeMapsDeadlineToUpstreamTimeout(t *testing.T) {
	svc := newService(&stubBackend{err: context.DeadlineExceeded})

	_, err := svc.Analyze(context.Background(), validRequest())
	require.ErrorIs(t, err, core.ErrUpstreamTimeout)
}

func TestAnalyzeClassifiedErrorsPassThrough(t *testing.T) {
	for _, kind := range []error{core.ErrConnection, core.ErrUpstreamTimeout, core.ErrSchemaViolation} {
		svc := newService(&stubBackend{err: fmt.Errorf("%w: simulated", kind)})
		_, err := svc.Analyze(context.Background(), validRequest())
		require.ErrorIs(t, err, kind)
	}
}

func TestAnalyzeRevalidatesBackendDecision(t *testing.T) {
	bad := validDecision()
	bad.Confidence = 1.5
	svc := newService(&stubBackend{decision: bad})

	_, err := svc.Analyze(context.Background(), validRequest())
	require.ErrorIs(t, err, core.ErrSchemaViolation)
}

func TestSessionReleasedExactlyOnceOnFailure(t *testing.T) {
	// The session is a scoped resource owned by the caller: its release
	// must run exactly once on the failure path too.
	session := &stubSession{}
	svc := newService(&stubBackend{err: fmt.Errorf("%w: no response before deadline", core.ErrUpstreamTimeout)})

	err := func() error {
		defer session.Close()
		_, err := svc.Analyze(context.Background(), validRequest())
		return err
	}()

	require.ErrorIs(t, err, core.ErrUpstreamTimeout)
	assert.Equal(t, 1, session.closeCalls)
}
