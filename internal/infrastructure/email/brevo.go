package email

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/DanielPopoola/racing-academy-payments/internal/application"
	"github.com/DanielPopoola/racing-academy-payments/internal/config"
)

var ErrUnknownTemplate = errors.New("unknown email template")

// Error is a non-2xx answer from the email API.
type Error struct {
	StatusCode int
	Body       string
}

func (e *Error) Error() string {
	return fmt.Sprintf("email api returned status %d: %s", e.StatusCode, e.Body)
}

func (e *Error) IsRetryable() bool {
	return e.StatusCode == http.StatusTooManyRequests || e.StatusCode >= 500
}

type contact struct {
	Email string `json:"email"`
	Name  string `json:"name,omitempty"`
}

type brevoPayload struct {
	Sender     contact        `json:"sender"`
	To         []contact      `json:"to"`
	TemplateID int64          `json:"templateId"`
	Params     map[string]any `json:"params,omitempty"`
}

// BrevoMailer sends transactional template emails through Brevo's
// /v3/smtp/email endpoint.
type BrevoMailer struct {
	baseURL    string
	apiKey     string
	sender     contact
	templates  map[string]int64
	httpClient *http.Client
}

var _ application.Mailer = (*BrevoMailer)(nil)

func NewBrevoMailer(cfg config.EmailConfig) *BrevoMailer {
	return &BrevoMailer{
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		apiKey:  cfg.APIKey,
		sender:  contact{Email: cfg.SenderEmail, Name: cfg.SenderName},
		templates: map[string]int64{
			application.TemplatePaymentConfirmation:    cfg.PaymentConfirmationTemplateID,
			application.TemplatePaymentFailed:          cfg.PaymentFailedTemplateID,
			application.TemplateEnrollmentConfirmation: cfg.EnrollmentConfirmationTemplateID,
			application.TemplateReminder:               cfg.ReminderTemplateID,
		},
		httpClient: &http.Client{
			Timeout: cfg.Timeout,
		},
	}
}

func (m *BrevoMailer) SendTemplateEmail(ctx context.Context, to, templateKey string, data map[string]any) error {
	if to == "" || !strings.Contains(to, "@") {
		return fmt.Errorf("invalid recipient email: %q", to)
	}
	templateID, ok := m.templates[templateKey]
	if !ok || templateID == 0 {
		return fmt.Errorf("%w: %s", ErrUnknownTemplate, templateKey)
	}

	body, err := json.Marshal(brevoPayload{
		Sender:     m.sender,
		To:         []contact{{Email: to}},
		TemplateID: templateID,
		Params:     data,
	})
	if err != nil {
		return fmt.Errorf("failed to marshal payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, m.baseURL+"/v3/smtp/email", bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("accept", "application/json")
	req.Header.Set("api-key", m.apiKey)
	req.Header.Set("content-type", "application/json")

	resp, err := m.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()

	respBody, _ := io.ReadAll(io.LimitReader(resp.Body, 4<<10))
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return &Error{StatusCode: resp.StatusCode, Body: string(respBody)}
	}
	return nil
}
