package filter

import (
	"net/mail"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const rawMessage = "From: \"Yuri Ritvin\" <yuri1992@gmail.com>\r\n" +
	"To: Moshe Elkayam <moshee@pipl.com>\r\n" +
	"Subject: Quarterly report\r\n" +
	"Message-ID: <abc123@mail.GMAIL.com>\r\n" +
	"ARC-Authentication-Results: i=1; mx.google.com; dkim=pass; spf=pass; dmarc=pass\r\n" +
	"DKIM-Signature: v=1; a=rsa-sha256; d=gmail.com; s=google;\r\n" +
	"\r\n" +
	"Hello.\r\n"

func TestRequestFromMessage(t *testing.T) {
	msg, err := mail.ReadMessage(strings.NewReader(rawMessage))
	require.NoError(t, err)

	req := RequestFromMessage(msg, "bounce@gmail.com", []string{"moshee@pipl.com"}, "8.8.8.8:52341")

	assert.Equal(t, "yuri1992@gmail.com", req.SenderEmail)
	assert.Equal(t, "Yuri Ritvin", req.SenderName)
	assert.Equal(t, "8.8.8.8", req.SenderIP)
	assert.Equal(t, "moshee@pipl.com", req.RecipientEmail)
	assert.Equal(t, "Moshe Elkayam", req.RecipientName)
	assert.Equal(t, "gmail.com", req.MessageIDDomain)
	assert.Contains(t, req.ARCAuthenticationResults, "dkim=pass")
	assert.Contains(t, req.DKIMSignature, "d=gmail.com")

	require.NoError(t, req.Validate())
}

func TestRequestFromMessageFallsBackToEnvelope(t *testing.T) {
	msg, err := mail.ReadMessage(strings.NewReader("Subject: no addresses\r\n\r\nbody\r\n"))
	require.NoError(t, err)

	req := RequestFromMessage(msg, "sender@example.com", []string{"rcpt@example.com"}, "192.0.2.10:25")

	assert.Equal(t, "sender@example.com", req.SenderEmail)
	assert.Equal(t, "rcpt@example.com", req.RecipientEmail)
	assert.Equal(t, "192.0.2.10", req.SenderIP)
	assert.Empty(t, req.MessageIDDomain)
}

func TestDomainFromMessageID(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"<abc123@mail.example.com>", "mail.example.com"},
		{"abc123@example.com", "example.com"},
		{"<ABC@EXAMPLE.COM>", "example.com"},
		{"<no-at-sign>", ""},
		{"<trailing@>", ""},
		{"", ""},
	}

	for _, tc := range cases {
		assert.Equal(t, tc.want, DomainFromMessageID(tc.in), "input %q", tc.in)
	}
}

func TestHostOf(t *testing.T) {
	assert.Equal(t, "8.8.8.8", hostOf("8.8.8.8:52341"))
	assert.Equal(t, "2001:db8::1", hostOf("[2001:db8::1]:25"))
	assert.Equal(t, "8.8.8.8", hostOf("8.8.8.8"))
}
