package filter

import (
	"net"
	"net/mail"
	"strings"

	"github.com/yuri1992/email-trust-agent/internal/core"
)

// RequestFromMessage maps a received message onto an analysis request:
// envelope identities, the connecting client IP, and the
// authentication-relevant headers the analysis policy reasons about.
func RequestFromMessage(msg *mail.Message, envelopeFrom string, envelopeTo []string, remoteAddr string) *core.EmailAnalysisRequest {
	senderEmail, senderName := splitAddress(msg.Header.Get("From"))
	if senderEmail == "" {
		senderEmail = envelopeFrom
	}

	recipientEmail, recipientName := splitAddress(msg.Header.Get("To"))
	if recipientEmail == "" && len(envelopeTo) > 0 {
		recipientEmail = envelopeTo[0]
	}

	return &core.EmailAnalysisRequest{
		SenderEmail:              senderEmail,
		SenderName:               senderName,
		SenderIP:                 hostOf(remoteAddr),
		RecipientEmail:           recipientEmail,
		RecipientName:            recipientName,
		ARCAuthenticationResults: msg.Header.Get("ARC-Authentication-Results"),
		DKIMSignature:            msg.Header.Get("DKIM-Signature"),
		MessageIDDomain:          DomainFromMessageID(msg.Header.Get("Message-ID")),
	}
}

// DomainFromMessageID extracts the domain part of a Message-ID header
// value such as "<abc123@mail.example.com>".
func DomainFromMessageID(messageID string) string {
	messageID = strings.TrimSpace(messageID)
	messageID = strings.TrimPrefix(messageID, "<")
	messageID = strings.TrimSuffix(messageID, ">")

	at := strings.LastIndexByte(messageID, '@')
	if at < 0 || at == len(messageID)-1 {
		return ""
	}
	return strings.ToLower(messageID[at+1:])
}

// splitAddress parses an address header value into its address and
// display-name parts. Unparseable values come back as the raw string
// with no name.
func splitAddress(value string) (email, name string) {
	if value == "" {
		return "", ""
	}
	addr, err := mail.ParseAddress(value)
	if err != nil {
		return strings.TrimSpace(value), ""
	}
	return addr.Address, addr.Name
}

// hostOf strips the port from a remote address when present.
func hostOf(remoteAddr string) string {
	if host, _, err := net.SplitHostPort(remoteAddr); err == nil {
		return host
	}
	return remoteAddr
}
