// Package presenter renders decisions for human consumption. Rendering
// never fails on a well-formed decision: absent optional fields are
// omitted rather than printed empty.
package presenter

import (
	"fmt"
	"io"
	"strings"

	"github.com/yuri1992/email-trust-agent/internal/core"
)

const rule = "======================================================================"

// Render writes the originating request and every populated decision
// field to w in a stable plain-text layout.
func Render(w io.Writer, req *core.EmailAnalysisRequest, d *core.EmailSecurityDecision) {
	fmt.Fprintln(w, rule)
	fmt.Fprintln(w, "EMAIL SECURITY ANALYSIS")
	fmt.Fprintln(w, rule)

	fmt.Fprintf(w, "Sender:       %s%s\n", req.SenderEmail, displayName(req.SenderName))
	fmt.Fprintf(w, "Sender IP:    %s\n", req.SenderIP)
	fmt.Fprintf(w, "Recipient:    %s%s\n", req.RecipientEmail, displayName(req.RecipientName))
	if req.RecipientIP != "" {
		fmt.Fprintf(w, "Recipient IP: %s\n", req.RecipientIP)
	}

	if d.AuthenticationStatus != "" {
		fmt.Fprintf(w, "\nAuthentication: %s\n", d.AuthenticationStatus)
	}
	if d.TrustScore != nil {
		fmt.Fprintf(w, "Trust Score:    %d/1000\n", *d.TrustScore)
	}

	fmt.Fprintf(w, "\nDecision:   %s\n", d.Decision)
	fmt.Fprintf(w, "Risk Level: %s\n", strings.ToUpper(string(d.RiskLevel)))
	fmt.Fprintf(w, "Confidence: %.0f%%\n", d.Confidence*100)

	fmt.Fprintln(w, "\nReasoning:")
	fmt.Fprintf(w, "   %s\n", d.Reasoning)

	if len(d.RiskFactors) > 0 {
		fmt.Fprintf(w, "\nRisk Factors (%d):\n", len(d.RiskFactors))
		for i, factor := range d.RiskFactors {
			fmt.Fprintf(w, "   %d. %s\n", i+1, factor)
		}
	}

	if len(d.Recommendations) > 0 {
		fmt.Fprintln(w, "\nRecommendations:")
		for i, rec := range d.Recommendations {
			fmt.Fprintf(w, "   %d. %s\n", i+1, rec)
		}
	}

	fmt.Fprintln(w, rule)
}

func displayName(name string) string {
	if name == "" {
		return ""
	}
	return " (" + name + ")"
}
