package email_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/DanielPopoola/racing-academy-payments/internal/application"
	"github.com/DanielPopoola/racing-academy-payments/internal/config"
	"github.com/DanielPopoola/racing-academy-payments/internal/infrastructure/email"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newMailer(url string) *email.BrevoMailer {
	return email.NewBrevoMailer(config.EmailConfig{
		BaseURL:                          url,
		APIKey:                           "xkeysib-test",
		SenderEmail:                      "school@academy.test",
		SenderName:                       "Racing Academy",
		Timeout:                          2 * time.Second,
		PaymentConfirmationTemplateID:    11,
		PaymentFailedTemplateID:          12,
		EnrollmentConfirmationTemplateID: 13,
		ReminderTemplateID:               14,
	})
}

func TestSendTemplateEmail_PostsTemplate(t *testing.T) {
	var (
		gotPath   string
		gotAPIKey string
		gotBody   map[string]any
	)
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotAPIKey = r.Header.Get("api-key")
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotBody))
		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write([]byte(`{"messageId":"<1@smtp>"}`))
	}))
	defer server.Close()

	err := newMailer(server.URL).SendTemplateEmail(context.Background(), "parent@example.com",
		application.TemplatePaymentConfirmation, map[string]any{"transaction_id": "T100"})

	require.NoError(t, err)
	assert.Equal(t, "/v3/smtp/email", gotPath)
	assert.Equal(t, "xkeysib-test", gotAPIKey)
	assert.Equal(t, float64(11), gotBody["templateId"])
	assert.Equal(t, "T100", gotBody["params"].(map[string]any)["transaction_id"])
	to := gotBody["to"].([]any)
	require.Len(t, to, 1)
	assert.Equal(t, "parent@example.com", to[0].(map[string]any)["email"])
}

func TestSendTemplateEmail_ServerErrorIsRetryable(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer server.Close()

	err := newMailer(server.URL).SendTemplateEmail(context.Background(), "parent@example.com", application.TemplateReminder, nil)

	require.Error(t, err)
	var apiErr *email.Error
	require.ErrorAs(t, err, &apiErr)
	assert.True(t, apiErr.IsRetryable())
}

func TestSendTemplateEmail_BadRequestIsNotRetryable(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"code":"invalid_parameter"}`))
	}))
	defer server.Close()

	err := newMailer(server.URL).SendTemplateEmail(context.Background(), "parent@example.com", application.TemplateReminder, nil)

	var apiErr *email.Error
	require.ErrorAs(t, err, &apiErr)
	assert.False(t, apiErr.IsRetryable())
	assert.Contains(t, apiErr.Body, "invalid_parameter")
}

func TestSendTemplateEmail_UnknownTemplate(t *testing.T) {
	err := newMailer("http://unused.invalid").SendTemplateEmail(context.Background(), "parent@example.com", "newsletter", nil)

	assert.ErrorIs(t, err, email.ErrUnknownTemplate)
}
