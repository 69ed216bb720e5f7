// Package prompt assembles the natural-language instruction sent to the
// delegated model. The decision policy is configuration, not logic: the
// orchestrator never branches on its content, and operators may swap it
// wholesale.
package prompt

import (
	"fmt"

	"github.com/yuri1992/email-trust-agent/internal/core"
	"github.com/yuri1992/email-trust-agent/internal/utils"
)

// DefaultPolicy is the decision guidance embedded into the system
// instruction when the operator supplies none.
const DefaultPolicy = `You are an expert email security analyst with access to Trust API tools.

Your job is to:
1. Use the available tools to analyze email security; use the scoring tool with action type "email_security" to analyze sender/recipient data
2. Analyze email authentication (DKIM, SPF, DMARC) and domain reputation
3. Check for email spoofing, phishing attempts, and domain mismatches
4. Make an intelligent decision: SAFE, SUSPICIOUS, or BLOCK
5. Provide clear reasoning for your decision
6. Identify specific security risks
7. Suggest appropriate actions

Decision Guidelines:
- Score 800-1000: SAFE (very_low risk) - Deliver to inbox
- Score 600-799: SAFE (low risk) - Deliver with monitoring
- Score 400-599: SUSPICIOUS (medium risk) - Flag for review or quarantine
- Score 200-399: BLOCK (high risk) - Likely phishing/spam
- Score 0-199: BLOCK (very_high risk) - Block immediately

Critical Email Security Risk Factors:
- Disposable or temporary email domains
- DKIM/SPF/DMARC authentication failures
- Sender domain mismatch with message_id domain
- VPN/Proxy/TOR usage from sender IP
- Brand new email accounts (0 days old)
- Known malicious IP addresses
- Domain reputation issues
- Suspicious sender/recipient patterns

Email Authentication Analysis:
- Check arc-authentication-results for DKIM, SPF, DMARC status
- Verify dkim-signature domain matches sender domain
- Cross-reference message_id_domain with sender domain
- Look for authentication bypass attempts

Always explain your security reasoning clearly and provide actionable recommendations.`

// OutputContract states the required final-answer shape. It is appended
// to every system instruction regardless of policy so that the calling
// layer can enforce the schema.
const OutputContract = `Your final answer must be a single JSON object and nothing else, with exactly these fields:
- "decision": string, one of "SAFE", "SUSPICIOUS", "BLOCK"
- "risk_level": string, one of "very_low", "low", "medium", "high", "very_high"
- "confidence": number between 0 and 1
- "reasoning": string, detailed reasoning for the decision
- "trust_score": integer between 0 and 1000, or null if no score was obtained
- "risk_factors": array of strings (may be empty)
- "recommendations": array of strings (may be empty)
- "authentication_status": string summarizing DKIM/SPF/DMARC status, or null`

// maxFieldSize bounds a single header value inside the instruction.
const maxFieldSize = 1024

// Builder renders requests into delegated-call instructions.
type Builder struct {
	policy string
	tp     *utils.TextProcessor
}

// NewBuilder creates a Builder. An empty policy selects DefaultPolicy.
func NewBuilder(policy string, tp *utils.TextProcessor) *Builder {
	if policy == "" {
		policy = DefaultPolicy
	}
	return &Builder{policy: policy, tp: tp}
}

// System returns the system instruction: operator policy plus the
// output contract.
func (b *Builder) System() string {
	return b.policy + "\n\n" + OutputContract
}

// Instruction renders one request into the analysis instruction. Header
// values are flattened and bounded before embedding.
func (b *Builder) Instruction(req *core.EmailAnalysisRequest) string {
	return fmt.Sprintf(`Analyze this email for security threats:

SENDER:
- Email: %s
- Name: %s
- IP Address: %s

RECIPIENT:
- Email: %s
- Name: %s
- IP Address: %s

EMAIL AUTHENTICATION METADATA:
- ARC Authentication Results: %s
- DKIM Signature: %s
- Message ID Domain: %s

Use the available tools with action type "email_security" to analyze sender and recipient trust data.
Check for email spoofing, phishing attempts, domain mismatches, and authentication issues.
Provide a comprehensive security assessment.`,
		b.field(req.SenderEmail),
		b.field(req.SenderName),
		b.field(req.SenderIP),
		b.field(req.RecipientEmail),
		b.field(req.RecipientName),
		b.field(req.RecipientIP),
		b.field(req.ARCAuthenticationResults),
		b.field(req.DKIMSignature),
		b.field(req.MessageIDDomain))
}

func (b *Builder) field(value string) string {
	if value == "" {
		return "N/A"
	}
	return b.tp.SanitizeHeader(value, maxFieldSize)
}
