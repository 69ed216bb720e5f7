package core_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yuri1992/email-trust-agent/internal/core"
)

func validRequest() *core.EmailAnalysisRequest {
	return &core.EmailAnalysisRequest{
		SenderEmail:              "yuri1992@gmail.com",
		SenderName:               "Yuri Ritvin",
		SenderIP:                 "8.8.8.8",
		RecipientEmail:           "moshee@pipl.com",
		RecipientName:            "Moshe Elkayam",
		RecipientIP:              "1.1.1.1",
		ARCAuthenticationResults: "mx.google.com; dkim=pass; spf=pass; dmarc=pass",
		DKIMSignature:            "v=1; a=rsa-sha256; d=gmail.com; s=google;",
		MessageIDDomain:          "gmail.com",
	}
}

func TestRequestValidate(t *testing.T) {
	cases := []struct {
		name    string
		mutate  func(*core.EmailAnalysisRequest)
		wantErr bool
	}{
		{name: "valid", mutate: func(r *core.EmailAnalysisRequest) {}},
		{name: "optional fields absent", mutate: func(r *core.EmailAnalysisRequest) {
			r.SenderName = ""
			r.RecipientName = ""
			r.RecipientIP = ""
			r.ARCAuthenticationResults = ""
			r.DKIMSignature = ""
			r.MessageIDDomain = ""
		}},
		{name: "missing sender email", mutate: func(r *core.EmailAnalysisRequest) { r.SenderEmail = "" }, wantErr: true},
		{name: "bad sender email", mutate: func(r *core.EmailAnalysisRequest) { r.SenderEmail = "not-an-address" }, wantErr: true},
		{name: "missing sender ip", mutate: func(r *core.EmailAnalysisRequest) { r.SenderIP = "" }, wantErr: true},
		{name: "bad sender ip", mutate: func(r *core.EmailAnalysisRequest) { r.SenderIP = "gmail.com" }, wantErr: true},
		{name: "missing recipient email", mutate: func(r *core.EmailAnalysisRequest) { r.RecipientEmail = "" }, wantErr: true},
		{name: "bad recipient ip", mutate: func(r *core.EmailAnalysisRequest) { r.RecipientIP = "1.2.3" }, wantErr: true},
		{name: "ipv6 sender ip", mutate: func(r *core.EmailAnalysisRequest) { r.SenderIP = "2001:db8::1" }},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := validRequest()
			tc.mutate(req)
			err := req.Validate()
			if tc.wantErr {
				require.ErrorIs(t, err, core.ErrValidation)
				return
			}
			require.NoError(t, err)
		})
	}
}

func TestSenderDomain(t *testing.T) {
	req := validRequest()
	assert.Equal(t, "gmail.com", req.SenderDomain())

	req.SenderEmail = "Yuri@GMAIL.COM"
	assert.Equal(t, "gmail.com", req.SenderDomain())

	req.SenderEmail = "no-domain"
	assert.Equal(t, "", req.SenderDomain())
}

func validDecision() *core.EmailSecurityDecision {
	score := 950
	return &core.EmailSecurityDecision{
		Decision:             core.DecisionSafe,
		RiskLevel:            core.RiskVeryLow,
		Confidence:           0.95,
		Reasoning:            "All authentication checks pass and the sender domain matches the message origin.",
		TrustScore:           &score,
		RiskFactors:          []string{},
		Recommendations:      []string{"Deliver to inbox"},
		AuthenticationStatus: "DKIM: pass, SPF: pass, DMARC: pass",
	}
}

func TestDecisionValidate(t *testing.T) {
	cases := []struct {
		name    string
		mutate  func(*core.EmailSecurityDecision)
		wantErr bool
	}{
		{name: "valid", mutate: func(d *core.EmailSecurityDecision) {}},
		{name: "optional fields absent", mutate: func(d *core.EmailSecurityDecision) {
			d.TrustScore = nil
			d.RiskFactors = nil
			d.Recommendations = nil
			d.AuthenticationStatus = ""
		}},
		{name: "unknown decision", mutate: func(d *core.EmailSecurityDecision) { d.Decision = "MAYBE" }, wantErr: true},
		{name: "lowercase decision", mutate: func(d *core.EmailSecurityDecision) { d.Decision = "safe" }, wantErr: true},
		{name: "unknown risk level", mutate: func(d *core.EmailSecurityDecision) { d.RiskLevel = "extreme" }, wantErr: true},
		{name: "confidence above one", mutate: func(d *core.EmailSecurityDecision) { d.Confidence = 1.5 }, wantErr: true},
		{name: "confidence below zero", mutate: func(d *core.EmailSecurityDecision) { d.Confidence = -0.1 }, wantErr: true},
		{name: "confidence boundaries", mutate: func(d *core.EmailSecurityDecision) { d.Confidence = 1.0 }},
		{name: "empty reasoning", mutate: func(d *core.EmailSecurityDecision) { d.Reasoning = "" }, wantErr: true},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			d := validDecision()
			tc.mutate(d)
			err := d.Validate()
			if tc.wantErr {
				require.ErrorIs(t, err, core.ErrValidation)
				return
			}
			require.NoError(t, err)
		})
	}
}

func TestRiskLevels(t *testing.T) {
	for _, level := range []core.RiskLevel{
		core.RiskVeryLow, core.RiskLow, core.RiskMedium, core.RiskHigh, core.RiskVeryHigh,
	} {
		assert.True(t, level.Valid(), "level %q", level)
	}
	assert.False(t, core.RiskLevel("severe").Valid())
	assert.False(t, core.RiskLevel("VERY_LOW").Valid())
}

func TestParseDecision(t *testing.T) {
	t.Run("valid answer", func(t *testing.T) {
		d, err := core.ParseDecision([]byte(`{
			"decision": "BLOCK",
			"risk_level": "very_high",
			"confidence": 0.98,
			"reasoning": "Authentication failed and the message origin does not match the sender domain.",
			"trust_score": 120,
			"risk_factors": ["dmarc failure", "domain mismatch"],
			"recommendations": ["Block immediately"],
			"authentication_status": "DKIM: fail, SPF: fail, DMARC: fail"
		}`))
		require.NoError(t, err)
		assert.Equal(t, core.DecisionBlock, d.Decision)
		assert.Equal(t, core.RiskVeryHigh, d.RiskLevel)
		require.NotNil(t, d.TrustScore)
		assert.Equal(t, 120, *d.TrustScore)
	})

	t.Run("free text rejected", func(t *testing.T) {
		_, err := core.ParseDecision([]byte("the email looks fine to me"))
		require.ErrorIs(t, err, core.ErrSchemaViolation)
	})

	t.Run("invalid enum rejected", func(t *testing.T) {
		_, err := core.ParseDecision([]byte(`{"decision":"MAYBE","risk_level":"low","confidence":0.5,"reasoning":"unsure"}`))
		require.ErrorIs(t, err, core.ErrSchemaViolation)
	})

	t.Run("non numeric trust score rejected", func(t *testing.T) {
		_, err := core.ParseDecision([]byte(`{"decision":"SAFE","risk_level":"low","confidence":0.5,"reasoning":"ok","trust_score":"high"}`))
		require.ErrorIs(t, err, core.ErrSchemaViolation)
	})
}
