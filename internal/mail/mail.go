// Package mail delivers transactional HTML email.
package mail

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"mime"
	"net/http"
	"net/smtp"
	"strconv"
	"strings"
	"time"
)

//go:generate mockgen -source=mail.go -destination=mailer_mock.go -package=mail

var ErrNoRecipient = errors.New("mail: no recipient")

type Message struct {
	// FromName overrides the display name of the configured sender.
	FromName string
	To       []string
	Subject  string
	HTML     string
	ReplyTo  string
}

type Mailer interface {
	Send(ctx context.Context, msg Message) error
}

// Config selects the transport: Resend when an API key is set, SMTP when a
// host is set, otherwise messages are only logged.
type Config struct {
	From         string
	ResendAPIKey string
	SMTPHost     string
	SMTPPort     int
	SMTPUser     string
	SMTPPassword string
}

func New(cfg Config) Mailer {
	switch {
	case cfg.ResendAPIKey != "":
		return NewResend(cfg.From, cfg.ResendAPIKey)
	case cfg.SMTPHost != "":
		return &SMTP{from: cfg.From, host: cfg.SMTPHost, port: cfg.SMTPPort, user: cfg.SMTPUser, password: cfg.SMTPPassword}
	default:
		return Log{}
	}
}

const resendEndpoint = "https://api.resend.com/emails"

// Resend sends through the Resend HTTP API.
type Resend struct {
	from     string
	apiKey   string
	endpoint string
	client   *http.Client
}

func NewResend(from, apiKey string) *Resend {
	return &Resend{
		from:     from,
		apiKey:   apiKey,
		endpoint: resendEndpoint,
		client:   &http.Client{Timeout: 30 * time.Second},
	}
}

// WithEndpoint points the client at another API base, for tests.
func (r *Resend) WithEndpoint(endpoint string) *Resend {
	r.endpoint = endpoint
	return r
}

type resendRequest struct {
	From    string   `json:"from"`
	To      []string `json:"to"`
	Subject string   `json:"subject"`
	HTML    string   `json:"html"`
	ReplyTo string   `json:"reply_to,omitempty"`
}

func (r *Resend) Send(ctx context.Context, msg Message) error {
	if len(msg.To) == 0 {
		return ErrNoRecipient
	}

	body, err := json.Marshal(resendRequest{
		From:    sender(r.from, msg.FromName),
		To:      msg.To,
		Subject: msg.Subject,
		HTML:    msg.HTML,
		ReplyTo: msg.ReplyTo,
	})
	if err != nil {
		return fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, r.endpoint, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+r.apiKey)

	resp, err := r.client.Do(req)
	if err != nil {
		return fmt.Errorf("send email: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		detail, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return fmt.Errorf("resend API error: status %d: %s", resp.StatusCode, strings.TrimSpace(string(detail)))
	}

	return nil
}

// SMTP sends through a plain SMTP relay with optional PLAIN auth.
type SMTP struct {
	from     string
	host     string
	port     int
	user     string
	password string
}

func (s *SMTP) Send(_ context.Context, msg Message) error {
	if len(msg.To) == 0 {
		return ErrNoRecipient
	}

	addr := s.host + ":" + strconv.Itoa(s.port)

	var auth smtp.Auth
	if s.user != "" {
		auth = smtp.PlainAuth("", s.user, s.password, s.host)
	}

	if err := smtp.SendMail(addr, auth, envelopeFrom(s.from), msg.To, s.render(msg)); err != nil {
		return fmt.Errorf("smtp send: %w", err)
	}

	return nil
}

func (s *SMTP) render(msg Message) []byte {
	var b strings.Builder

	b.WriteString("From: " + sender(s.from, mime.QEncoding.Encode("utf-8", msg.FromName)) + "\r\n")
	b.WriteString("To: " + strings.Join(msg.To, ", ") + "\r\n")

	if msg.ReplyTo != "" {
		b.WriteString("Reply-To: " + msg.ReplyTo + "\r\n")
	}

	b.WriteString("Subject: " + mime.QEncoding.Encode("utf-8", msg.Subject) + "\r\n")
	b.WriteString("MIME-Version: 1.0\r\n")
	b.WriteString("Content-Type: text/html; charset=\"UTF-8\"\r\n")
	b.WriteString("\r\n")
	b.WriteString(msg.HTML)

	return []byte(b.String())
}

func sender(from, name string) string {
	if name == "" {
		return from
	}

	return name + " <" + envelopeFrom(from) + ">"
}

// envelopeFrom extracts the bare address from "Name <addr>".
func envelopeFrom(from string) string {
	if i := strings.LastIndex(from, "<"); i >= 0 {
		return strings.TrimSuffix(from[i+1:], ">")
	}

	return from
}

// Log drops messages after logging them. Used when no transport is configured.
type Log struct{}

func (Log) Send(_ context.Context, msg Message) error {
	if len(msg.To) == 0 {
		return ErrNoRecipient
	}

	slog.Info("email not sent: no transport configured", "to", msg.To, "subject", msg.Subject)

	return nil
}
