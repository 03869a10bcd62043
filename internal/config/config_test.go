package config_test

import (
	"testing"
	"time"

	"github.com/DanielPopoola/racing-academy-payments/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setRequiredEnv(t *testing.T) {
	t.Helper()
	env := map[string]string{
		"ACADEMY_PRIMARY__ENV":                               "test",
		"ACADEMY_SERVER__PORT":                               "8080",
		"ACADEMY_SERVER__READ_TIMEOUT":                       "15s",
		"ACADEMY_SERVER__WRITE_TIMEOUT":                      "15s",
		"ACADEMY_SERVER__IDLE_TIMEOUT":                       "60s",
		"ACADEMY_DATABASE__HOST":                             "localhost",
		"ACADEMY_DATABASE__PORT":                             "5432",
		"ACADEMY_DATABASE__USER":                             "academy",
		"ACADEMY_DATABASE__PASSWORD":                         "secret",
		"ACADEMY_DATABASE__NAME":                             "academy",
		"ACADEMY_DATABASE__SSL_MODE":                         "disable",
		"ACADEMY_DATABASE__MAX_OPEN_CONNS":                   "10",
		"ACADEMY_DATABASE__MAX_IDLE_CONNS":                   "2",
		"ACADEMY_DATABASE__CONN_MAX_LIFETIME":                "1h",
		"ACADEMY_DATABASE__CONN_MAX_IDLE_TIME":               "30m",
		"ACADEMY_REDIS__ADDR":                                "localhost:6379",
		"ACADEMY_REDIS__TOKEN_TTL":                           "720h",
		"ACADEMY_GATEWAY__BASE_URL":                          "https://secure.gateway.test/api/transact.php",
		"ACADEMY_GATEWAY__API_KEY":                           "key",
		"ACADEMY_GATEWAY__USERNAME":                          "user",
		"ACADEMY_GATEWAY__PASSWORD":                          "pass",
		"ACADEMY_GATEWAY__CONN_TIMEOUT":                      "20s",
		"ACADEMY_EMAIL__BASE_URL":                            "https://api.brevo.com",
		"ACADEMY_EMAIL__API_KEY":                             "email-key",
		"ACADEMY_EMAIL__SENDER_EMAIL":                        "school@academy.test",
		"ACADEMY_EMAIL__SENDER_NAME":                         "Racing Academy",
		"ACADEMY_EMAIL__TIMEOUT":                             "10s",
		"ACADEMY_EMAIL__PAYMENT_CONFIRMATION_TEMPLATE_ID":    "1",
		"ACADEMY_EMAIL__PAYMENT_FAILED_TEMPLATE_ID":          "2",
		"ACADEMY_EMAIL__ENROLLMENT_CONFIRMATION_TEMPLATE_ID": "3",
		"ACADEMY_EMAIL__REMINDER_TEMPLATE_ID":                "4",
		"ACADEMY_NOTIFIER__WORKERS":                          "2",
		"ACADEMY_NOTIFIER__QUEUE_SIZE":                       "64",
		"ACADEMY_NOTIFIER__MAX_ATTEMPTS":                     "3",
		"ACADEMY_NOTIFIER__BASE_DELAY":                       "1s",
		"ACADEMY_PAYMENTS__CURRENCY":                         "USD",
		"ACADEMY_PAYMENTS__AUTO_CONFIRM":                     "true",
		"ACADEMY_PAYMENTS__TOKENIZE_CARDS":                   "true",
		"ACADEMY_PAYMENTS__CLAIM_TTL":                        "2m",
		"ACADEMY_PAYMENTS__FINALIZE_TIMEOUT":                 "10s",
		"ACADEMY_AUTH__JWT_SECRET":                           "0123456789abcdef0123",
		"ACADEMY_AUTH__ADMIN_ROLE":                           "admin",
		"ACADEMY_WORKER__INTERVAL":                           "1m",
		"ACADEMY_WORKER__BATCH_SIZE":                         "50",
		"ACADEMY_WORKER__REMINDER_CRON":                      "0 8 * * *",
		"ACADEMY_WORKER__REMINDER_WINDOW":                    "48h",
	}
	for k, v := range env {
		t.Setenv(k, v)
	}
}

func TestLoadConfig(t *testing.T) {
	t.Run("loads nested settings from the environment", func(t *testing.T) {
		setRequiredEnv(t)

		cfg, err := config.LoadConfig()

		require.NoError(t, err)
		assert.Equal(t, "8080", cfg.Server.Port)
		assert.Equal(t, 15*time.Second, cfg.Server.ReadTimeout)
		assert.Equal(t, "key", cfg.Gateway.APIKey)
		assert.Equal(t, int64(3), cfg.Email.EnrollmentConfirmationTemplateID)
		assert.True(t, cfg.Payments.AutoConfirm)
		assert.Equal(t, 48*time.Hour, cfg.Worker.ReminderWindow)
		assert.Equal(t, 10*time.Second, cfg.Payments.FinalizeTimeout)
		assert.Equal(t, 50*time.Second, cfg.MaxClaimHold())
	})

	t.Run("fails when claims can go stale during a gateway call", func(t *testing.T) {
		setRequiredEnv(t)
		t.Setenv("ACADEMY_PAYMENTS__CLAIM_TTL", "15s")

		_, err := config.LoadConfig()

		require.Error(t, err)
		assert.Contains(t, err.Error(), "payments.claim_ttl")
	})

	t.Run("claim ttl must cover tokenize, charge and finalize", func(t *testing.T) {
		setRequiredEnv(t)
		t.Setenv("ACADEMY_PAYMENTS__CLAIM_TTL", "50s")

		_, err := config.LoadConfig()
		require.Error(t, err)

		t.Setenv("ACADEMY_PAYMENTS__TOKENIZE_CARDS", "false")

		cfg, err := config.LoadConfig()
		require.NoError(t, err)
		assert.Equal(t, 30*time.Second, cfg.MaxClaimHold())
	})

	t.Run("fails when a gateway credential is missing", func(t *testing.T) {
		setRequiredEnv(t)
		t.Setenv("ACADEMY_GATEWAY__PASSWORD", "")

		_, err := config.LoadConfig()

		require.Error(t, err)
		assert.Contains(t, err.Error(), "Password")
	})

	t.Run("fails when the email api key is missing", func(t *testing.T) {
		setRequiredEnv(t)
		t.Setenv("ACADEMY_EMAIL__API_KEY", "")

		_, err := config.LoadConfig()

		require.Error(t, err)
		assert.Contains(t, err.Error(), "APIKey")
	})
}

func TestDatabaseConfig_ConnString(t *testing.T) {
	cfg := config.DatabaseConfig{
		Host: "db", Port: 5432, User: "u", Password: "p", Name: "academy", SSLMode: "disable",
	}

	assert.Equal(t, "postgres://u:p@db:5432/academy?sslmode=disable", cfg.ConnString())
}
