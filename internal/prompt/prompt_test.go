package prompt_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"

	"github.com/yuri1992/email-trust-agent/internal/core"
	"github.com/yuri1992/email-trust-agent/internal/prompt"
	"github.com/yuri1992/email-trust-agent/internal/utils"
)

func newBuilder(policy string) *prompt.Builder {
	return prompt.NewBuilder(policy, utils.NewTextProcessor(zap.NewNop()))
}

func TestSystemUsesDefaultPolicy(t *testing.T) {
	system := newBuilder("").System()

	assert.Contains(t, system, "email security analyst")
	assert.Contains(t, system, prompt.OutputContract)
}

func TestSystemUsesOperatorPolicy(t *testing.T) {
	system := newBuilder("Always be strict.").System()

	assert.Contains(t, system, "Always be strict.")
	assert.NotContains(t, system, "Decision Guidelines")
	// The output contract is appended regardless of policy.
	assert.Contains(t, system, prompt.OutputContract)
}

func TestInstructionRendersFields(t *testing.T) {
	req := &core.EmailAnalysisRequest{
		SenderEmail:              "yuri1992@gmail.com",
		SenderName:               "Yuri Ritvin",
		SenderIP:                 "8.8.8.8",
		RecipientEmail:           "moshee@pipl.com",
		ARCAuthenticationResults: "mx.google.com; dkim=pass; spf=pass; dmarc=pass",
		MessageIDDomain:          "gmail.com",
	}

	instruction := newBuilder("").Instruction(req)

	assert.Contains(t, instruction, "Email: yuri1992@gmail.com")
	assert.Contains(t, instruction, "Name: Yuri Ritvin")
	assert.Contains(t, instruction, "IP Address: 8.8.8.8")
	assert.Contains(t, instruction, "dkim=pass")
	assert.Contains(t, instruction, "Message ID Domain: gmail.com")
	// Absent optional fields render as N/A rather than empty slots.
	assert.Contains(t, instruction, "DKIM Signature: N/A")
}

func TestInstructionFlattensHeaderValues(t *testing.T) {
	req := &core.EmailAnalysisRequest{
		SenderEmail:    "a@example.com",
		SenderIP:       "8.8.8.8",
		RecipientEmail: "b@example.com",
		DKIMSignature:  "v=1; a=rsa-sha256;\r\n d=example.com;\r\n s=selector;",
	}

	instruction := newBuilder("").Instruction(req)

	assert.Contains(t, instruction, "DKIM Signature: v=1; a=rsa-sha256; d=example.com; s=selector;")
}

func TestInstructionBoundsLongHeaders(t *testing.T) {
	req := &core.EmailAnalysisRequest{
		SenderEmail:    "a@example.com",
		SenderIP:       "8.8.8.8",
		RecipientEmail: "b@example.com",
		DKIMSignature:  strings.Repeat("b=", 4096),
	}

	instruction := newBuilder("").Instruction(req)

	assert.Contains(t, instruction, "[truncated]")
	assert.Less(t, len(instruction), 8192)
}
