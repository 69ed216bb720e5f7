package core

import (
	"encoding/json"
	"fmt"
	"net/mail"
	"net/netip"
	"strings"
)

// Decision is the verdict for an analyzed email.
type Decision string

const (
	DecisionSafe       Decision = "SAFE"
	DecisionSuspicious Decision = "SUSPICIOUS"
	DecisionBlock      Decision = "BLOCK"
)

// Valid reports whether d is one of the recognized verdicts.
func (d Decision) Valid() bool {
	switch d {
	case DecisionSafe, DecisionSuspicious, DecisionBlock:
		return true
	}
	return false
}

// RiskLevel grades the assessed risk of an analyzed email.
type RiskLevel string

const (
	RiskVeryLow  RiskLevel = "very_low"
	RiskLow      RiskLevel = "low"
	RiskMedium   RiskLevel = "medium"
	RiskHigh     RiskLevel = "high"
	RiskVeryHigh RiskLevel = "very_high"
)

// Valid reports whether r is one of the recognized risk levels.
func (r RiskLevel) Valid() bool {
	switch r {
	case RiskVeryLow, RiskLow, RiskMedium, RiskHigh, RiskVeryHigh:
		return true
	}
	return false
}

// EmailAnalysisRequest carries the email metadata submitted for
// analysis. Values are set at construction and never mutated.
type EmailAnalysisRequest struct {
	SenderEmail              string `json:"sender_email"`
	SenderName               string `json:"sender_name,omitempty"`
	SenderIP                 string `json:"sender_ip"`
	RecipientEmail           string `json:"recipient_email"`
	RecipientName            string `json:"recipient_name,omitempty"`
	RecipientIP              string `json:"recipient_ip,omitempty"`
	ARCAuthenticationResults string `json:"arc_authentication_results,omitempty"`
	DKIMSignature            string `json:"dkim_signature,omitempty"`
	MessageIDDomain          string `json:"message_id_domain,omitempty"`
}

// Validate checks the request's required fields and field syntax.
// Failures wrap ErrValidation.
func (r *EmailAnalysisRequest) Validate() error {
	if r.SenderEmail == "" {
		return fmt.Errorf("%w: sender_email is required", ErrValidation)
	}
	if _, err := mail.ParseAddress(r.SenderEmail); err != nil {
		return fmt.Errorf("%w: sender_email %q is not a valid address", ErrValidation, r.SenderEmail)
	}
	if r.SenderIP == "" {
		return fmt.Errorf("%w: sender_ip is required", ErrValidation)
	}
	if _, err := netip.ParseAddr(r.SenderIP); err != nil {
		return fmt.Errorf("%w: sender_ip %q is not an IP literal", ErrValidation, r.SenderIP)
	}
	if r.RecipientEmail == "" {
		return fmt.Errorf("%w: recipient_email is required", ErrValidation)
	}
	if _, err := mail.ParseAddress(r.RecipientEmail); err != nil {
		return fmt.Errorf("%w: recipient_email %q is not a valid address", ErrValidation, r.RecipientEmail)
	}
	if r.RecipientIP != "" {
		if _, err := netip.ParseAddr(r.RecipientIP); err != nil {
			return fmt.Errorf("%w: recipient_ip %q is not an IP literal", ErrValidation, r.RecipientIP)
		}
	}
	return nil
}

// SenderDomain returns the part of the sender address after '@', lower
// cased, or "" when the address has no domain part.
func (r *EmailAnalysisRequest) SenderDomain() string {
	parts := strings.Split(r.SenderEmail, "@")
	if len(parts) != 2 {
		return ""
	}
	return strings.ToLower(parts[1])
}

// EmailSecurityDecision is the structured verdict produced by the
// delegated analysis. Constructed once and never mutated; the shape is
// enforced locally, content correctness belongs to the delegated model.
type EmailSecurityDecision struct {
	Decision             Decision  `json:"decision"`
	RiskLevel            RiskLevel `json:"risk_level"`
	Confidence           float64   `json:"confidence"`
	Reasoning            string    `json:"reasoning"`
	TrustScore           *int      `json:"trust_score,omitempty"`
	RiskFactors          []string  `json:"risk_factors,omitempty"`
	Recommendations      []string  `json:"recommendations,omitempty"`
	AuthenticationStatus string    `json:"authentication_status,omitempty"`
}

// Validate checks the decision's invariants: recognized enum literals
// and confidence within [0,1]. Cross-field coherence (e.g. a SAFE
// verdict carrying a very_high risk level) is deliberately not checked.
// Failures wrap ErrValidation.
func (d *EmailSecurityDecision) Validate() error {
	if !d.Decision.Valid() {
		return fmt.Errorf("%w: decision %q is not one of SAFE, SUSPICIOUS, BLOCK", ErrValidation, d.Decision)
	}
	if !d.RiskLevel.Valid() {
		return fmt.Errorf("%w: risk_level %q is not one of very_low, low, medium, high, very_high", ErrValidation, d.RiskLevel)
	}
	if d.Confidence < 0 || d.Confidence > 1 {
		return fmt.Errorf("%w: confidence %g outside [0,1]", ErrValidation, d.Confidence)
	}
	if d.Reasoning == "" {
		return fmt.Errorf("%w: reasoning must not be empty", ErrValidation)
	}
	return nil
}

// ParseDecision decodes a model's final answer into a validated
// decision. Any decode or invariant failure wraps ErrSchemaViolation;
// free text is never silently accepted.
func ParseDecision(data []byte) (*EmailSecurityDecision, error) {
	var d EmailSecurityDecision
	if err := json.Unmarshal(data, &d); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrSchemaViolation, err)
	}
	if err := d.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrSchemaViolation, err)
	}
	return &d, nil
}
