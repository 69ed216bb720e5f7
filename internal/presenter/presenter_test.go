package presenter_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/yuri1992/email-trust-agent/internal/core"
	"github.com/yuri1992/email-trust-agent/internal/presenter"
)

func sampleRequest() *core.EmailAnalysisRequest {
	return &core.EmailAnalysisRequest{
		SenderEmail:    "yuri1992@gmail.com",
		SenderName:     "Yuri Ritvin",
		SenderIP:       "8.8.8.8",
		RecipientEmail: "moshee@pipl.com",
		RecipientName:  "Moshe Elkayam",
		RecipientIP:    "1.1.1.1",
	}
}

func TestRenderAllFields(t *testing.T) {
	score := 950
	d := &core.EmailSecurityDecision{
		Decision:             core.DecisionSafe,
		RiskLevel:            core.RiskVeryLow,
		Confidence:           0.95,
		Reasoning:            "All authentication checks pass.",
		TrustScore:           &score,
		RiskFactors:          []string{"none identified"},
		Recommendations:      []string{"Deliver to inbox", "No further action"},
		AuthenticationStatus: "DKIM: pass, SPF: pass, DMARC: pass",
	}

	var buf strings.Builder
	presenter.Render(&buf, sampleRequest(), d)
	out := buf.String()

	assert.Contains(t, out, "yuri1992@gmail.com (Yuri Ritvin)")
	assert.Contains(t, out, "Sender IP:    8.8.8.8")
	assert.Contains(t, out, "moshee@pipl.com (Moshe Elkayam)")
	assert.Contains(t, out, "Recipient IP: 1.1.1.1")
	assert.Contains(t, out, "Authentication: DKIM: pass, SPF: pass, DMARC: pass")
	assert.Contains(t, out, "Trust Score:    950/1000")
	assert.Contains(t, out, "Decision:   SAFE")
	assert.Contains(t, out, "Risk Level: VERY_LOW")
	assert.Contains(t, out, "Confidence: 95%")
	assert.Contains(t, out, "All authentication checks pass.")
	assert.Contains(t, out, "1. none identified")
	assert.Contains(t, out, "2. No further action")
}

func TestRenderOmitsAbsentOptionalFields(t *testing.T) {
	d := &core.EmailSecurityDecision{
		Decision:   core.DecisionSuspicious,
		RiskLevel:  core.RiskMedium,
		Confidence: 0.6,
		Reasoning:  "Sparse signals.",
	}

	req := sampleRequest()
	req.SenderName = ""
	req.RecipientName = ""
	req.RecipientIP = ""

	var buf strings.Builder
	presenter.Render(&buf, req, d)
	out := buf.String()

	assert.Contains(t, out, "Decision:   SUSPICIOUS")
	assert.NotContains(t, out, "Recipient IP:")
	assert.NotContains(t, out, "Authentication:")
	assert.NotContains(t, out, "Trust Score:")
	assert.NotContains(t, out, "Risk Factors")
	assert.NotContains(t, out, "Recommendations")
	// Empty lists must render no numbered items.
	assert.NotContains(t, out, "   1. ")
	assert.NotContains(t, out, "(Yuri Ritvin)")
}
