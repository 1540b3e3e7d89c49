// Package filter is the SMTP content filter that stamps scam-risk headers on
// passing mail and relays it to the next hop.
package filter

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"os"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/emersion/go-smtp"
	"go.uber.org/zap"

	"github.com/mikey/scam-guard/internal/config"
	"github.com/mikey/scam-guard/internal/core"
	"github.com/mikey/scam-guard/internal/heuristics"
)

const (
	noSubject        = "(no subject)"
	analysisTimeout  = 10 * time.Second
	analysisErrorKey = "X-Scam-Analysis-Error"
)

// ErrRejected is the SMTP reply sent for HIGH risk mail when blocking is on.
var ErrRejected = &smtp.SMTPError{
	Code:         550,
	EnhancedCode: smtp.EnhancedCode{5, 7, 1},
	Message:      "Rejected as likely scam",
}

// EmailAnalyzer scores an email.
type EmailAnalyzer interface {
	AnalyzeEmail(ctx context.Context, userID string, in core.EmailInput) (*core.AnalysisResult, error)
}

// relayFunc delivers a filtered message.
type relayFunc func(sender string, recipients []string, data []byte) error

// SMTPFilter is an SMTP content filter. It accepts mail, analyzes it, adds
// headers and relays it.
type SMTPFilter struct {
	analyzer EmailAnalyzer
	cfg      config.SMTPConfig
	logger   *zap.Logger
	relay    relayFunc

	mu       sync.Mutex
	server   *smtp.Server
	listener net.Listener
}

func NewSMTPFilter(analyzer EmailAnalyzer, cfg config.SMTPConfig, logger *zap.Logger) *SMTPFilter {
	f := &SMTPFilter{
		analyzer: analyzer,
		cfg:      cfg,
		logger:   logger,
	}
	f.relay = f.sendToRelay
	return f
}

// Start listens on the configured address and serves in the background.
func (f *SMTPFilter) Start() error {
	ln, err := net.Listen("tcp", f.cfg.ListenAddress)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", f.cfg.ListenAddress, err)
	}

	server := smtp.NewServer(&smtpBackend{filter: f})
	server.Addr = f.cfg.ListenAddress
	server.Domain = f.cfg.Domain
	server.ReadTimeout = 30 * time.Second
	server.WriteTimeout = 30 * time.Second
	server.MaxMessageBytes = f.cfg.MaxMessageBytes
	server.MaxRecipients = 50

	f.mu.Lock()
	f.server = server
	f.listener = ln
	f.mu.Unlock()

	f.logger.Info("SMTP intake starting",
		zap.String("address", ln.Addr().String()),
		zap.String("relay", f.cfg.RelayAddress),
		zap.Bool("block_high", f.cfg.BlockHigh))

	go func() {
		if err := server.Serve(ln); err != nil && !errors.Is(err, smtp.ErrServerClosed) {
			f.logger.Error("SMTP server error", zap.Error(err))
		}
	}()
	return nil
}

// Addr is the bound address once started.
func (f *SMTPFilter) Addr() net.Addr {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.listener == nil {
		return nil
	}
	return f.listener.Addr()
}

func (f *SMTPFilter) Stop() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.server == nil {
		return nil
	}
	return f.server.Close()
}

// Filter analyzes a raw message and returns it with the scam headers added.
// HIGH risk mail returns ErrRejected when blocking is enabled. An analysis
// failure is not fatal; the message passes with an error header.
func (f *SMTPFilter) Filter(ctx context.Context, sender string, raw []byte) ([]byte, *core.AnalysisResult, error) {
	msg, err := ParseMessage(raw)
	if err != nil {
		return nil, nil, err
	}

	if sender == "" {
		sender = msg.From
	}
	subject := msg.Subject
	if strings.TrimSpace(subject) == "" {
		subject = noSubject
	}

	ctx, cancel := context.WithTimeout(ctx, analysisTimeout)
	defer cancel()

	result, analysisErr := f.analyzer.AnalyzeEmail(ctx, "", core.EmailInput{
		Sender:  sender,
		Subject: subject,
		Body:    msg.Body,
	})
	if analysisErr != nil {
		f.logger.Warn("Failed to analyze email",
			zap.String("sender", sender),
			zap.Error(analysisErr))
	}

	if analysisErr == nil && result.RiskTier == heuristics.RiskHigh && f.cfg.BlockHigh {
		f.logger.Info("Rejecting high risk email",
			zap.String("sender", sender),
			zap.Int("risk_score", result.RiskScore),
			zap.Strings("warnings", result.Reasons))
		return nil, result, ErrRejected
	}

	var out bytes.Buffer
	if analysisErr != nil {
		fmt.Fprintf(&out, "%s: %s\r\n", analysisErrorKey, sanitizeHeaderValue(analysisErr.Error()))
	} else {
		fmt.Fprintf(&out, "%s: %s\r\n", f.cfg.Headers.Risk, result.RiskTier)
		fmt.Fprintf(&out, "%s: %s\r\n", f.cfg.Headers.Score, strconv.Itoa(result.DisplayScore()))
		fmt.Fprintf(&out, "%s: %s\r\n", f.cfg.Headers.Warnings, sanitizeHeaderValue(strings.Join(result.Reasons, "; ")))
	}

	newSubject := ""
	if analysisErr == nil && result.RiskTier == heuristics.RiskHigh &&
		f.cfg.SubjectPrefix != "" && !strings.HasPrefix(msg.Subject, f.cfg.SubjectPrefix) {
		newSubject = f.cfg.SubjectPrefix + msg.Subject
	}
	out.Write(rewriteHeader(raw[:msg.headerEnd], newSubject))
	out.WriteString("\r\n")
	out.Write(raw[msg.bodyStart:])

	return out.Bytes(), result, nil
}

// sendToRelay hands the filtered message to the next hop.
func (f *SMTPFilter) sendToRelay(sender string, recipients []string, data []byte) error {
	if f.cfg.RelayAddress == "" {
		f.logger.Warn("No relay address configured, dropping filtered message", zap.String("sender", sender))
		return nil
	}

	hostname, err := os.Hostname()
	if err != nil {
		hostname = "localhost"
	}

	conn, err := net.DialTimeout("tcp", f.cfg.RelayAddress, 10*time.Second)
	if err != nil {
		return fmt.Errorf("failed to connect to relay: %w", err)
	}
	if err := conn.SetDeadline(time.Now().Add(30 * time.Second)); err != nil {
		conn.Close()
		return fmt.Errorf("failed to set connection deadline: %w", err)
	}

	c := smtp.NewClient(conn)
	defer c.Close()

	if err := c.Hello(hostname); err != nil {
		return fmt.Errorf("EHLO failed: %w", err)
	}
	if err := c.Mail(sender, nil); err != nil {
		return fmt.Errorf("MAIL FROM failed: %w", err)
	}

	accepted := 0
	for _, rcpt := range recipients {
		if err := c.Rcpt(rcpt, nil); err != nil {
			f.logger.Warn("RCPT TO failed for recipient",
				zap.String("recipient", rcpt),
				zap.Error(err))
			continue
		}
		accepted++
	}
	if accepted == 0 {
		return errors.New("all recipients were rejected")
	}

	wc, err := c.Data()
	if err != nil {
		return fmt.Errorf("DATA command failed: %w", err)
	}
	if _, err := wc.Write(data); err != nil {
		wc.Close()
		return fmt.Errorf("failed to send email data: %w", err)
	}
	if err := wc.Close(); err != nil {
		return fmt.Errorf("failed to close data writer: %w", err)
	}

	if err := c.Quit(); err != nil {
		// Already delivered.
		f.logger.Warn("QUIT command failed", zap.Error(err))
	}
	return nil
}

func sanitizeHeaderValue(v string) string {
	return strings.NewReplacer("\r", " ", "\n", " ").Replace(v)
}

type smtpBackend struct {
	filter *SMTPFilter
}

func (b *smtpBackend) NewSession(_ *smtp.Conn) (smtp.Session, error) {
	return &smtpSession{filter: b.filter}, nil
}

type smtpSession struct {
	filter     *SMTPFilter
	sender     string
	recipients []string
}

func (s *smtpSession) Reset() {
	s.sender = ""
	s.recipients = nil
}

func (s *smtpSession) Mail(from string, _ *smtp.MailOptions) error {
	s.sender = from
	return nil
}

func (s *smtpSession) Rcpt(to string, _ *smtp.RcptOptions) error {
	s.recipients = append(s.recipients, to)
	return nil
}

func (s *smtpSession) Data(r io.Reader) error {
	logger := s.filter.logger

	raw, err := io.ReadAll(r)
	if err != nil {
		logger.Error("Failed to read message data", zap.Error(err))
		return err
	}

	filtered, result, err := s.filter.Filter(context.Background(), s.sender, raw)
	if err != nil {
		if !errors.Is(err, ErrRejected) {
			logger.Error("Failed to filter message", zap.String("sender", s.sender), zap.Error(err))
		}
		return err
	}

	if err := s.filter.relay(s.sender, s.recipients, filtered); err != nil {
		logger.Error("Failed to relay message",
			zap.String("sender", s.sender),
			zap.Error(err))
		return err
	}

	fields := []zap.Field{zap.String("sender", s.sender), zap.Int("recipients", len(s.recipients))}
	if result != nil {
		fields = append(fields,
			zap.String("risk_level", string(result.RiskTier)),
			zap.Int("risk_score", result.RiskScore))
	}
	logger.Info("Processed email", fields...)
	return nil
}

func (s *smtpSession) Logout() error {
	return nil
}
