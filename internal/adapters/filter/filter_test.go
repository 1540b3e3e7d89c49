package filter

import (
	"context"
	"errors"
	"net"
	"strings"
	"sync"
	"testing"

	"github.com/emersion/go-smtp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/mikey/scam-guard/internal/config"
	"github.com/mikey/scam-guard/internal/core"
)

const scamMessage = "From: Alerts <alerts@suspicious.net>\r\n" +
	"To: user@example.com\r\n" +
	"Subject: URGENT: account suspended\r\n" +
	"Content-Type: text/plain\r\n" +
	"\r\n" +
	"Please verify your bank account now.\r\n"

const benignMessage = "From: Friend <friend@example.com>\r\n" +
	"To: user@example.com\r\n" +
	"Subject: Lunch\r\n" +
	"\r\n" +
	"See you at noon.\r\n"

func testConfig() config.SMTPConfig {
	return config.SMTPConfig{
		ListenAddress:   "127.0.0.1:0",
		Domain:          "localhost",
		MaxMessageBytes: 1 << 20,
		SubjectPrefix:   "[SCAM?] ",
		Headers: config.SMTPHeaders{
			Risk:     "X-Scam-Risk",
			Score:    "X-Scam-Score",
			Warnings: "X-Scam-Warnings",
		},
	}
}

func newTestFilter(cfg config.SMTPConfig) *SMTPFilter {
	svc := core.NewAnalysisService(nil, nil, nil, nil, core.DefaultServiceConfig, zap.NewNop())
	return NewSMTPFilter(svc, cfg, zap.NewNop())
}

type failingAnalyzer struct{}

func (failingAnalyzer) AnalyzeEmail(context.Context, string, core.EmailInput) (*core.AnalysisResult, error) {
	return nil, errors.New("boom\nsecond line")
}

func TestFilter_HighRiskAddsHeadersAndPrefix(t *testing.T) {
	f := newTestFilter(testConfig())

	out, result, err := f.Filter(context.Background(), "alerts@suspicious.net", []byte(scamMessage))
	require.NoError(t, err)
	require.NotNil(t, result)

	text := string(out)
	assert.True(t, strings.HasPrefix(text, "X-Scam-Risk: HIGH\r\n"))
	assert.Contains(t, text, "X-Scam-Score: 85\r\n")
	assert.Contains(t, text, "X-Scam-Warnings: Suspicious sender address; Urgent or threatening subject line")
	assert.Contains(t, text, "Subject: [SCAM?] URGENT: account suspended\r\n")
	assert.Equal(t, 1, strings.Count(text, "Subject:"))
	assert.True(t, strings.HasSuffix(text, "\r\n\r\nPlease verify your bank account now.\r\n"))
}

func TestFilter_LowRiskKeepsSubject(t *testing.T) {
	f := newTestFilter(testConfig())

	out, result, err := f.Filter(context.Background(), "", []byte(benignMessage))
	require.NoError(t, err)
	assert.Equal(t, "LOW", string(result.RiskTier))

	text := string(out)
	assert.Contains(t, text, "X-Scam-Risk: LOW\r\n")
	assert.Contains(t, text, "X-Scam-Score: 0\r\n")
	assert.Contains(t, text, "Subject: Lunch\r\n")
	assert.NotContains(t, text, "[SCAM?]")
}

func TestFilter_BlockHigh(t *testing.T) {
	cfg := testConfig()
	cfg.BlockHigh = true
	f := newTestFilter(cfg)

	out, result, err := f.Filter(context.Background(), "alerts@suspicious.net", []byte(scamMessage))
	assert.ErrorIs(t, err, ErrRejected)
	assert.Nil(t, out)
	require.NotNil(t, result)
	assert.Equal(t, 85, result.RiskScore)

	_, _, err = f.Filter(context.Background(), "", []byte(benignMessage))
	assert.NoError(t, err)
}

func TestFilter_AnalysisErrorPassesThrough(t *testing.T) {
	f := NewSMTPFilter(failingAnalyzer{}, testConfig(), zap.NewNop())

	out, result, err := f.Filter(context.Background(), "", []byte(scamMessage))
	require.NoError(t, err)
	assert.Nil(t, result)

	text := string(out)
	assert.True(t, strings.HasPrefix(text, "X-Scam-Analysis-Error: boom second line\r\n"))
	assert.NotContains(t, text, "X-Scam-Risk")
	assert.Contains(t, text, "Subject: URGENT: account suspended\r\n")
}

func TestFilter_InvalidMessage(t *testing.T) {
	f := newTestFilter(testConfig())
	_, _, err := f.Filter(context.Background(), "", []byte("not a header line without colon\r\n\r\nbody"))
	assert.Error(t, err)
}

func TestParseMessage_Multipart(t *testing.T) {
	raw := "From: =?utf-8?q?Bank?= <no-reply@bank.example>\r\n" +
		"Subject: =?utf-8?q?Caf=C3=A9_offer?=\r\n" +
		"Content-Type: multipart/mixed; boundary=outer\r\n" +
		"\r\n" +
		"--outer\r\n" +
		"Content-Type: multipart/alternative; boundary=inner\r\n" +
		"\r\n" +
		"--inner\r\n" +
		"Content-Type: text/plain; charset=utf-8\r\n" +
		"Content-Transfer-Encoding: quoted-printable\r\n" +
		"\r\n" +
		"Claim your tax refund=21\r\n" +
		"--inner\r\n" +
		"Content-Type: text/html\r\n" +
		"\r\n" +
		"<p>ignored</p>\r\n" +
		"--inner--\r\n" +
		"--outer\r\n" +
		"Content-Type: text/plain\r\n" +
		"Content-Transfer-Encoding: base64\r\n" +
		"\r\n" +
		"Q2xpY2sgaGVy\r\n" +
		"ZQ==\r\n" +
		"--outer--\r\n"

	msg, err := ParseMessage([]byte(raw))
	require.NoError(t, err)
	assert.Equal(t, "no-reply@bank.example", msg.From)
	assert.Equal(t, "Café offer", msg.Subject)
	assert.Contains(t, msg.Body, "Claim your tax refund!")
	assert.Contains(t, msg.Body, "Click here")
	assert.NotContains(t, msg.Body, "ignored")
}

func TestParseMessage_NoTextParts(t *testing.T) {
	raw := "Subject: pic\r\n" +
		"Content-Type: multipart/mixed; boundary=b\r\n" +
		"\r\n" +
		"--b\r\n" +
		"Content-Type: image/png\r\n" +
		"\r\n" +
		"xxxx\r\n" +
		"--b--\r\n"

	msg, err := ParseMessage([]byte(raw))
	require.NoError(t, err)
	assert.Equal(t, noTextPlaceholder, msg.Body)
}

const htmlOnlyScam = "From: Support <support@example.com>\r\n" +
	"To: user@example.com\r\n" +
	"Subject: Account notice\r\n" +
	"Content-Type: multipart/alternative; boundary=alt\r\n" +
	"\r\n" +
	"--alt\r\n" +
	"Content-Type: text/html; charset=utf-8\r\n" +
	"Content-Transfer-Encoding: quoted-printable\r\n" +
	"\r\n" +
	"<html><head><style>p { color: red; }</style></head><body>\r\n" +
	"<p>Your account suspended. Verify your bank account now at\r\n" +
	"<a href=3D\"http://bit.ly/x\">this link</a></p>\r\n" +
	"<script>var hidden =3D 1;</script></body></html>\r\n" +
	"--alt--\r\n"

func TestParseMessage_HTMLOnly(t *testing.T) {
	msg, err := ParseMessage([]byte(htmlOnlyScam))
	require.NoError(t, err)

	assert.Contains(t, msg.Body, "Your account suspended. Verify your bank account now at")
	assert.Contains(t, msg.Body, "http://bit.ly/x")
	assert.Contains(t, msg.Body, "this link")
	assert.NotContains(t, msg.Body, "<p>")
	assert.NotContains(t, msg.Body, "color")
	assert.NotContains(t, msg.Body, "hidden")
	assert.NotEqual(t, noTextPlaceholder, msg.Body)
}

func TestParseMessage_PlainPreferredOverHTML(t *testing.T) {
	raw := "Subject: hi\r\n" +
		"Content-Type: multipart/alternative; boundary=b\r\n" +
		"\r\n" +
		"--b\r\n" +
		"Content-Type: text/html\r\n" +
		"\r\n" +
		"<p>html version</p>\r\n" +
		"--b\r\n" +
		"Content-Type: text/plain\r\n" +
		"\r\n" +
		"plain version\r\n" +
		"--b--\r\n"

	msg, err := ParseMessage([]byte(raw))
	require.NoError(t, err)
	assert.Equal(t, "plain version\n", msg.Body)
}

func TestParseMessage_SinglePartHTML(t *testing.T) {
	raw := "Subject: hi\r\n" +
		"Content-Type: text/html; charset=utf-8\r\n" +
		"\r\n" +
		"<div>Claim your <b>tax refund</b></div>\r\n"

	msg, err := ParseMessage([]byte(raw))
	require.NoError(t, err)
	assert.Equal(t, "Claim your\ntax refund", msg.Body)
}

func TestFilter_HTMLOnlyScamIsScored(t *testing.T) {
	f := newTestFilter(testConfig())

	out, result, err := f.Filter(context.Background(), "support@example.com", []byte(htmlOnlyScam))
	require.NoError(t, err)
	require.NotNil(t, result)

	assert.Equal(t, "HIGH", string(result.RiskTier))
	assert.Equal(t, 60, result.RiskScore)
	assert.True(t, strings.HasPrefix(string(out), "X-Scam-Risk: HIGH\r\n"))
}

func TestRewriteHeader_FoldedSubject(t *testing.T) {
	header := []byte("From: a@b.c\r\nSubject: first\r\n second\r\nTo: d@e.f\r\n")
	out := string(rewriteHeader(header, "[SCAM?] first second"))

	assert.Equal(t, "From: a@b.c\r\nTo: d@e.f\r\nSubject: [SCAM?] first second\r\n", out)
	assert.Equal(t, string(header), string(rewriteHeader(header, "")))
}

type capturedMail struct {
	sender     string
	recipients []string
	data       string
}

func TestSMTPFilter_EndToEnd(t *testing.T) {
	cfg := testConfig()
	cfg.BlockHigh = true
	f := newTestFilter(cfg)

	var (
		mu        sync.Mutex
		delivered []capturedMail
	)
	f.relay = func(sender string, recipients []string, data []byte) error {
		mu.Lock()
		defer mu.Unlock()
		delivered = append(delivered, capturedMail{sender: sender, recipients: recipients, data: string(data)})
		return nil
	}

	require.NoError(t, f.Start())
	t.Cleanup(func() { _ = f.Stop() })
	addr := f.Addr().String()

	err := sendRaw(addr, "friend@example.com", "user@example.com", benignMessage)
	require.NoError(t, err)

	err = sendRaw(addr, "alerts@suspicious.net", "user@example.com", scamMessage)
	var smtpErr *smtp.SMTPError
	require.True(t, errors.As(err, &smtpErr), "expected SMTP error, got %v", err)
	assert.Equal(t, 550, smtpErr.Code)

	mu.Lock()
	defer mu.Unlock()
	require.Len(t, delivered, 1)
	assert.Equal(t, "friend@example.com", delivered[0].sender)
	assert.Equal(t, []string{"user@example.com"}, delivered[0].recipients)
	assert.Contains(t, delivered[0].data, "X-Scam-Risk: LOW")
}

func sendRaw(addr, from, to, message string) error {
	conn, err := net.Dial("tcp", addr)
	if err != nil {
		return err
	}
	c := smtp.NewClient(conn)
	defer c.Close()

	if err := c.Hello("localhost"); err != nil {
		return err
	}
	if err := c.Mail(from, nil); err != nil {
		return err
	}
	if err := c.Rcpt(to, nil); err != nil {
		return err
	}
	wc, err := c.Data()
	if err != nil {
		return err
	}
	if _, err := wc.Write([]byte(message)); err != nil {
		return err
	}
	if err := wc.Close(); err != nil {
		return err
	}
	return c.Quit()
}

func TestSMTPFilter_StopBeforeStart(t *testing.T) {
	f := newTestFilter(testConfig())
	assert.NoError(t, f.Stop())
	assert.Nil(t, f.Addr())
}
