package filter

import (
	"bufio"
	"bytes"
	"context"
	"fmt"
	"io"
	"net/mail"
	"time"

	"github.com/emersion/go-smtp"
	"go.uber.org/zap"

	"github.com/yuri1992/email-trust-agent/internal/core"
)

// SMTPFilter is an SMTP ingestion frontend: it accepts messages,
// extracts the authentication metadata the orchestrator analyzes, and
// acts on the decision by rejecting at DATA time or annotating and
// relaying upstream.
type SMTPFilter struct {
	service        *core.AnalysisService
	logger         *zap.Logger
	listenAddr     string
	server         *smtp.Server
	blockBlocked   bool
	decisionHeader string
	scoreHeader    string
	reasonHeader   string
	relayEnabled   bool
	relayAddr      string
	relayPort      int
}

// NewSMTPFilter creates a new SMTP ingestion frontend
func NewSMTPFilter(
	service *core.AnalysisService,
	logger *zap.Logger,
	listenAddr string,
	blockBlocked bool,
	decisionHeader string,
	scoreHeader string,
	reasonHeader string,
	relayEnabled bool,
	relayAddr string,
	relayPort int,
) *SMTPFilter {
	return &SMTPFilter{
		service:        service,
		logger:         logger,
		listenAddr:     listenAddr,
		blockBlocked:   blockBlocked,
		decisionHeader: decisionHeader,
		scoreHeader:    scoreHeader,
		reasonHeader:   reasonHeader,
		relayEnabled:   relayEnabled,
		relayAddr:      relayAddr,
		relayPort:      relayPort,
	}
}

// Start starts the SMTP frontend
func (f *SMTPFilter) Start() error {
	f.server = smtp.NewServer(&smtpBackend{filter: f})

	f.server.Addr = f.listenAddr
	f.server.Domain = "localhost"
	f.server.ReadTimeout = 30 * time.Second
	f.server.WriteTimeout = 30 * time.Second
	f.server.MaxMessageBytes = 30 * 1024 * 1024 // 30MB
	f.server.MaxRecipients = 50
	f.server.AllowInsecureAuth = true

	f.logger.Info("SMTP trust filter starting", zap.String("address", f.listenAddr))

	go func() {
		if err := f.server.ListenAndServe(); err != nil {
			if err != smtp.ErrServerClosed {
				f.logger.Error("SMTP server error", zap.Error(err))
			}
		}
	}()

	return nil
}

// Stop stops the SMTP frontend
func (f *SMTPFilter) Stop() error {
	if f.server != nil {
		return f.server.Close()
	}
	return nil
}

// ProcessRequest analyzes one extracted request directly. Used for
// testing and direct API calls.
func (f *SMTPFilter) ProcessRequest(ctx context.Context, req *core.EmailAnalysisRequest) (*core.EmailSecurityDecision, error) {
	return f.service.Analyze(ctx, req)
}

// relay forwards the annotated message to the upstream hop.
func (f *SMTPFilter) relay(sender string, recipients []string, data []byte) error {
	addr := fmt.Sprintf("%s:%d", f.relayAddr, f.relayPort)
	if err := smtp.SendMail(addr, nil, sender, recipients, bytes.NewReader(data)); err != nil {
		return fmt.Errorf("failed to relay to %s: %w", addr, err)
	}
	return nil
}

// annotate prepends the verdict headers to the raw message.
func (f *SMTPFilter) annotate(data []byte, decision *core.EmailSecurityDecision) []byte {
	var buf bytes.Buffer
	fmt.Fprintf(&buf, "%s: %s (risk=%s confidence=%.2f)\r\n",
		f.decisionHeader, decision.Decision, decision.RiskLevel, decision.Confidence)
	if decision.TrustScore != nil {
		fmt.Fprintf(&buf, "%s: %d\r\n", f.scoreHeader, *decision.TrustScore)
	}
	fmt.Fprintf(&buf, "%s: %s\r\n", f.reasonHeader, singleLine(decision.Reasoning))
	buf.Write(data)
	return buf.Bytes()
}

func singleLine(s string) string {
	out := make([]byte, 0, len(s))
	for i := 0; i < len(s); i++ {
		if s[i] == '\r' || s[i] == '\n' {
			out = append(out, ' ')
			continue
		}
		out = append(out, s[i])
	}
	return string(out)
}

// smtpBackend hands each connection its own session.
type smtpBackend struct {
	filter *SMTPFilter
}

func (b *smtpBackend) NewSession(c *smtp.Conn) (smtp.Session, error) {
	return &smtpSession{
		filter:     b.filter,
		remoteAddr: c.Conn().RemoteAddr().String(),
	}, nil
}

// smtpSession collects one message's envelope and body.
type smtpSession struct {
	filter     *SMTPFilter
	remoteAddr string
	from       string
	recipients []string
}

func (s *smtpSession) Mail(from string, _ *smtp.MailOptions) error {
	s.from = from
	return nil
}

func (s *smtpSession) Rcpt(to string, _ *smtp.RcptOptions) error {
	s.recipients = append(s.recipients, to)
	return nil
}

func (s *smtpSession) Data(r io.Reader) error {
	data, err := io.ReadAll(r)
	if err != nil {
		return fmt.Errorf("failed to read message data: %w", err)
	}

	msg, err := mail.ReadMessage(bufio.NewReader(bytes.NewReader(data)))
	if err != nil {
		return &smtp.SMTPError{
			Code:         554,
			EnhancedCode: smtp.EnhancedCode{5, 6, 0},
			Message:      "malformed message",
		}
	}

	req := RequestFromMessage(msg, s.from, s.recipients, s.remoteAddr)

	decision, err := s.filter.service.Analyze(context.Background(), req)
	if err != nil {
		// Analysis faults never bounce mail; the message passes through
		// unannotated and the fault is logged for the operator.
		s.filter.logger.Error("Analysis failed, passing message through",
			zap.String("sender", req.SenderEmail),
			zap.Error(err))
		return s.deliver(data)
	}

	s.filter.logger.Info("Message analyzed",
		zap.String("sender", req.SenderEmail),
		zap.String("decision", string(decision.Decision)),
		zap.String("risk_level", string(decision.RiskLevel)))

	if decision.Decision == core.DecisionBlock && s.filter.blockBlocked {
		return &smtp.SMTPError{
			Code:         550,
			EnhancedCode: smtp.EnhancedCode{5, 7, 1},
			Message:      "message blocked by trust analysis: " + singleLine(decision.Reasoning),
		}
	}

	return s.deliver(s.filter.annotate(data, decision))
}

func (s *smtpSession) deliver(data []byte) error {
	if !s.filter.relayEnabled {
		return nil
	}
	if err := s.filter.relay(s.from, s.recipients, data); err != nil {
		s.filter.logger.Error("Relay failed", zap.Error(err))
		return &smtp.SMTPError{
			Code:         451,
			EnhancedCode: smtp.EnhancedCode{4, 3, 0},
			Message:      "temporary relay failure",
		}
	}
	return nil
}

func (s *smtpSession) Reset() {
	s.from = ""
	s.recipients = nil
}

func (s *smtpSession) Logout() error {
	return nil
}
