package config

import (
	"fmt"
	"time"

	"github.com/kelseyhightower/envconfig"
)

// Config is populated from the environment. Only MONGO_URI is mandatory; the
// optional integrations (Redis, storage cleanup, SendGrid, reCAPTCHA) switch
// off when their settings are absent.
type Config struct {
	ServerAddress string `envconfig:"SERVER_ADDRESS" default:":8080"`

	MongoURI string `envconfig:"MONGO_URI" required:"true"`
	MongoDB  string `envconfig:"MONGO_DB" default:"trove"`

	RedisAddr      string        `envconfig:"REDIS_ADDR"`
	StrikeCacheTTL time.Duration `envconfig:"STRIKE_CACHE_TTL" default:"5m"`

	JWTSecret     string        `envconfig:"JWT_SECRET" default:"your-secret-key-change-in-production"`
	JWTExpiration time.Duration `envconfig:"JWT_EXPIRATION" default:"24h"`

	FirebaseProjectID       string `envconfig:"FIREBASE_PROJECT_ID"`
	FirebaseCredentialsJSON string `envconfig:"FIREBASE_CREDENTIALS_JSON"`

	StorageBucket   string `envconfig:"STORAGE_BUCKET"`
	RecaptchaSecret string `envconfig:"RECAPTCHA_SECRET"`

	SendGridAPIKey       string `envconfig:"SENDGRID_API_KEY"`
	ModerationFromEmail  string `envconfig:"MODERATION_FROM_EMAIL"`
	ModerationAlertEmail string `envconfig:"MODERATION_ALERT_EMAIL"`

	DefaultSuspensionDays int `envconfig:"DEFAULT_SUSPENSION_DAYS" default:"7"`
	ReportRetentionDays   int `envconfig:"REPORT_RETENTION_DAYS" default:"90"`

	ReconcileSchedule string `envconfig:"RECONCILE_SCHEDULE" default:"@every 5m"`
	PurgeSchedule     string `envconfig:"PURGE_SCHEDULE" default:"@daily"`
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	return &cfg, nil
}
