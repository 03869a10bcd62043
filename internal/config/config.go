package config

import (
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/go-playground/validator"
	_ "github.com/joho/godotenv/autoload"
	"github.com/knadh/koanf"
	"github.com/knadh/koanf/providers/env"
)

const envPrefix = "ACADEMY_"

type Config struct {
	Primary  Primary        `koanf:"primary"`
	Server   ServerConfig   `koanf:"server"`
	Database DatabaseConfig `koanf:"database"`
	Redis    RedisConfig    `koanf:"redis"`
	Gateway  GatewayConfig  `koanf:"gateway"`
	Email    EmailConfig    `koanf:"email"`
	Notifier NotifierConfig `koanf:"notifier"`
	Payments PaymentsConfig `koanf:"payments"`
	Auth     AuthConfig     `koanf:"auth"`
	Logger   LoggerConfig   `koanf:"logger"`
	Worker   WorkerConfig   `koanf:"worker"`
}

type Primary struct {
	Env string `koanf:"env" validate:"required"`
}

type ServerConfig struct {
	Port         string        `koanf:"port" validate:"required"`
	ReadTimeout  time.Duration `koanf:"read_timeout" validate:"required"`
	WriteTimeout time.Duration `koanf:"write_timeout" validate:"required"`
	IdleTimeout  time.Duration `koanf:"idle_timeout" validate:"required"`
}

type DatabaseConfig struct {
	Host            string        `koanf:"host" validate:"required"`
	Port            int           `koanf:"port" validate:"required"`
	User            string        `koanf:"user" validate:"required"`
	Password        string        `koanf:"password" validate:"required"`
	Name            string        `koanf:"name" validate:"required"`
	SSLMode         string        `koanf:"ssl_mode" validate:"required"`
	MaxOpenConns    int           `koanf:"max_open_conns" validate:"required"`
	MaxIdleConns    int           `koanf:"max_idle_conns" validate:"required"`
	ConnMaxLifetime time.Duration `koanf:"conn_max_lifetime" validate:"required"`
	ConnMaxIdleTime time.Duration `koanf:"conn_max_idle_time" validate:"required"`
}

type RedisConfig struct {
	Addr     string        `koanf:"addr" validate:"required"`
	Password string        `koanf:"password"`
	DB       int           `koanf:"db"`
	TokenTTL time.Duration `koanf:"token_ttl" validate:"required"`
}

// GatewayConfig holds the card processor endpoint and credentials. Every
// credential is mandatory: a missing one must stop the process at startup.
type GatewayConfig struct {
	BaseURL     string        `koanf:"base_url" validate:"required,url"`
	APIKey      string        `koanf:"api_key" validate:"required"`
	Username    string        `koanf:"username" validate:"required"`
	Password    string        `koanf:"password" validate:"required"`
	ConnTimeout time.Duration `koanf:"conn_timeout" validate:"required"`
}

type EmailConfig struct {
	BaseURL     string        `koanf:"base_url" validate:"required,url"`
	APIKey      string        `koanf:"api_key" validate:"required"`
	SenderEmail string        `koanf:"sender_email" validate:"required,email"`
	SenderName  string        `koanf:"sender_name" validate:"required"`
	Timeout     time.Duration `koanf:"timeout" validate:"required"`

	PaymentConfirmationTemplateID    int64 `koanf:"payment_confirmation_template_id" validate:"required"`
	PaymentFailedTemplateID          int64 `koanf:"payment_failed_template_id" validate:"required"`
	EnrollmentConfirmationTemplateID int64 `koanf:"enrollment_confirmation_template_id" validate:"required"`
	ReminderTemplateID               int64 `koanf:"reminder_template_id" validate:"required"`
}

type NotifierConfig struct {
	Workers     int           `koanf:"workers" validate:"required,min=1"`
	QueueSize   int           `koanf:"queue_size" validate:"required,min=1"`
	MaxAttempts int           `koanf:"max_attempts" validate:"required,min=1"`
	BaseDelay   time.Duration `koanf:"base_delay" validate:"required"`
}

type PaymentsConfig struct {
	Currency          string        `koanf:"currency" validate:"required,len=3"`
	AutoConfirm       bool          `koanf:"auto_confirm"`
	TokenizeCards     bool          `koanf:"tokenize_cards"`
	ClaimTTL          time.Duration `koanf:"claim_ttl" validate:"required"`
	FinalizeTimeout   time.Duration `koanf:"finalize_timeout" validate:"required"`
	ChargeDescription string        `koanf:"charge_description"`
}

type AuthConfig struct {
	JWTSecret string `koanf:"jwt_secret" validate:"required,min=16"`
	AdminRole string `koanf:"admin_role" validate:"required"`
}

type LoggerConfig struct {
	Level string `koanf:"level"`
}

type WorkerConfig struct {
	Interval       time.Duration `koanf:"interval" validate:"required"`
	BatchSize      int           `koanf:"batch_size" validate:"required"`
	ReminderCron   string        `koanf:"reminder_cron" validate:"required"`
	ReminderWindow time.Duration `koanf:"reminder_window" validate:"required"`
}

// NewLogger builds the process-wide JSON logger at the configured level.
func (c LoggerConfig) NewLogger() *slog.Logger {
	var level slog.Level
	if err := level.UnmarshalText([]byte(c.Level)); err != nil {
		level = slog.LevelInfo
	}

	return slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: level,
	}))
}

func LoadConfig() (*Config, error) {
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: slog.LevelError,
	}))
	k := koanf.New(".")

	err := k.Load(env.Provider(envPrefix, ".", func(s string) string {
		return strings.ReplaceAll(
			strings.ToLower(strings.TrimPrefix(s, envPrefix)),
			"__",
			".",
		)
	}), nil)
	if err != nil {
		logger.Error("failed to load environment variables", "error", err)
		return nil, err
	}

	mainConfig := &Config{}

	err = k.Unmarshal("", mainConfig)
	if err != nil {
		logger.Error("could not unmarshal main config", "error", err)
		return nil, err
	}

	if err := Validate(mainConfig); err != nil {
		logger.Error("config validation failed", "error", err)
		return nil, err
	}

	return mainConfig, nil
}

// Validate checks every required setting and that a claim cannot go stale
// while its attempt is still talking to the gateway or recording the result.
func Validate(cfg *Config) error {
	if err := validator.New().Struct(cfg); err != nil {
		return err
	}
	if hold := cfg.MaxClaimHold(); cfg.Payments.ClaimTTL <= hold {
		return fmt.Errorf("payments.claim_ttl %s must exceed %s (gateway.conn_timeout per call plus payments.finalize_timeout)",
			cfg.Payments.ClaimTTL, hold)
	}
	return nil
}

// MaxClaimHold is the longest one attempt can own an enrollment: a tokenize
// call when cards are vaulted, the charge, then the finalize writes.
func (c *Config) MaxClaimHold() time.Duration {
	calls := time.Duration(1)
	if c.Payments.TokenizeCards {
		calls = 2
	}
	return calls*c.Gateway.ConnTimeout + c.Payments.FinalizeTimeout
}
