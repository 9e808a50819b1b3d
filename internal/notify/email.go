// Package notify delivers reminders outside the page: transactional email
// through Resend and desktop notifications.
package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	log "log/slog"

	"voxassist/internal/metrics"
)

const (
	DefaultEndpoint = "https://api.resend.com/emails"
	DefaultSender   = "Voice Assistant <onboarding@resend.dev>"
)

// EmailError is returned for every failed send. Details carries the API
// response body when there was one.
type EmailError struct {
	Status  int
	Details string
	Err     error
}

func (e *EmailError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("send email: %v", e.Err)
	}
	return fmt.Sprintf("send email: status %d: %s", e.Status, e.Details)
}

func (e *EmailError) Unwrap() error { return e.Err }

type MailerConfig struct {
	Token    string
	Sender   string
	Endpoint string
	Client   *http.Client
	Timeout  time.Duration
}

type Mailer struct {
	client   *http.Client
	endpoint string
	token    string
	sender   string
	timeout  time.Duration
}

type emailRequest struct {
	From    string   `json:"from"`
	To      []string `json:"to"`
	Subject string   `json:"subject"`
	Text    string   `json:"text"`
}

func NewMailer(cfg MailerConfig) *Mailer {
	m := &Mailer{
		client:   cfg.Client,
		endpoint: cfg.Endpoint,
		token:    cfg.Token,
		sender:   cfg.Sender,
		timeout:  cfg.Timeout,
	}
	if m.client == nil {
		m.client = http.DefaultClient
	}
	if m.endpoint == "" {
		m.endpoint = DefaultEndpoint
	}
	if m.sender == "" {
		m.sender = DefaultSender
	}
	if m.timeout <= 0 {
		m.timeout = 15 * time.Second
	}
	return m
}

// Send makes a single POST to the email API. 200 and 202 are success.
func (m *Mailer) Send(ctx context.Context, subject, body, recipient string) error {
	err := m.send(ctx, subject, body, recipient)
	if err != nil {
		metrics.Emails.WithLabelValues("failed").Inc()
		log.Error("Failed to send email", "to", recipient, "subject", subject, "err", err)
		return err
	}
	metrics.Emails.WithLabelValues("sent").Inc()
	log.Info("Email sent", "to", recipient, "subject", subject)
	return nil
}

func (m *Mailer) send(ctx context.Context, subject, body, recipient string) error {
	payload, err := json.Marshal(emailRequest{
		From:    m.sender,
		To:      []string{recipient},
		Subject: subject,
		Text:    body,
	})
	if err != nil {
		return &EmailError{Err: err}
	}

	ctx, cancel := context.WithTimeout(ctx, m.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, m.endpoint, bytes.NewReader(payload))
	if err != nil {
		return &EmailError{Err: err}
	}
	req.Header.Set("Authorization", "Bearer "+m.token)
	req.Header.Set("Content-Type", "application/json")

	resp, err := m.client.Do(req)
	if err != nil {
		return &EmailError{Err: err}
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK, http.StatusAccepted:
		io.Copy(io.Discard, resp.Body)
		return nil
	}

	details, _ := io.ReadAll(io.LimitReader(resp.Body, 64<<10))
	return &EmailError{
		Status:  resp.StatusCode,
		Details: strings.TrimSpace(string(details)),
	}
}
