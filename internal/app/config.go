package app

import (
	"errors"
	"fmt"
	"strings"
	"time"

	mapstructure "github.com/go-viper/mapstructure/v2"
	"github.com/spf13/viper"

	"github.com/bannerworks/alertbanner/pkg/validator"
)

// Config represents the runtime configuration for the alert banner backend.
type Config struct {
	Server      ServerConfig      `mapstructure:"server"`
	Database    DatabaseConfig    `mapstructure:"database"`
	Monitoring  MonitoringConfig  `mapstructure:"monitoring"`
	Features    FeatureConfig     `mapstructure:"features"`
	Auth        AuthConfig        `mapstructure:"auth"`
	Email       EmailConfig       `mapstructure:"email"`
	Maintenance MaintenanceConfig `mapstructure:"maintenance"`
}

// ServerConfig configures the HTTP server.
type ServerConfig struct {
	Port     int    `mapstructure:"port" validate:"gte=1,lte=65535"`
	LogLevel string `mapstructure:"log_level"`
}

// DatabaseConfig describes connection options for the supported databases.
type DatabaseConfig struct {
	Driver   string       `mapstructure:"driver"`
	Path     string       `mapstructure:"path"`
	DSN      string       `mapstructure:"dsn"`
	Postgres DBAuthConfig `mapstructure:"postgres"`
	MySQL    DBAuthConfig `mapstructure:"mysql"`
}

// DBAuthConfig represents host based database parameters.
type DBAuthConfig struct {
	Enabled  bool   `mapstructure:"enabled"`
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	Database string `mapstructure:"database"`
	Username string `mapstructure:"username"`
	Password string `mapstructure:"password"`
}

// MonitoringConfig enables health checks and metrics.
type MonitoringConfig struct {
	Prometheus PrometheusConfig `mapstructure:"prometheus"`
	Health     HealthConfig     `mapstructure:"health_check"`
}

// PrometheusConfig toggles metrics endpoints.
type PrometheusConfig struct {
	Enabled  bool   `mapstructure:"enabled"`
	Endpoint string `mapstructure:"endpoint"`
}

// HealthConfig toggles health endpoints.
type HealthConfig struct {
	Enabled bool `mapstructure:"enabled"`
}

// FeatureConfig toggles optional platform features.
type FeatureConfig struct {
	TranslationWorkflow TranslationWorkflowConfig `mapstructure:"translation_workflow"`
	Notifications       NotificationConfig        `mapstructure:"notifications"`
	Realtime            RealtimeConfig            `mapstructure:"realtime"`
}

// TranslationWorkflowConfig controls the per-variant translation workflow.
type TranslationWorkflowConfig struct {
	Enabled         bool   `mapstructure:"enabled"`
	DefaultLanguage string `mapstructure:"default_language"`
}

// NotificationConfig toggles outbound notifications for published alerts.
type NotificationConfig struct {
	Enabled    bool     `mapstructure:"enabled"`
	Recipients []string `mapstructure:"recipients"`
}

// RealtimeConfig toggles the websocket stream for banner clients.
type RealtimeConfig struct {
	Enabled bool `mapstructure:"enabled"`
}

// AuthConfig captures all authentication-related settings.
type AuthConfig struct {
	JWT JWTSettings `mapstructure:"jwt"`
}

// JWTSettings configures editor bearer tokens.
type JWTSettings struct {
	Secret string        `mapstructure:"secret"`
	Issuer string        `mapstructure:"issuer"`
	TTL    time.Duration `mapstructure:"token_ttl"`
}

// EmailConfig captures outbound email settings.
type EmailConfig struct {
	SMTP SMTPConfig `mapstructure:"smtp"`
}

// SMTPConfig defines SMTP dialer settings for sending email.
type SMTPConfig struct {
	Enabled  bool          `mapstructure:"enabled"`
	Host     string        `mapstructure:"host"`
	Port     int           `mapstructure:"port" validate:"gte=0,lte=65535"`
	Username string        `mapstructure:"username"`
	Password string        `mapstructure:"password"`
	From     string        `mapstructure:"from" validate:"omitempty,email"`
	UseTLS   bool          `mapstructure:"use_tls"`
	Timeout  time.Duration `mapstructure:"timeout"`
}

// MaintenanceConfig controls the background janitor.
type MaintenanceConfig struct {
	Enabled            bool   `mapstructure:"enabled"`
	ArchiveSchedule    string `mapstructure:"archive_schedule"`
	DraftSchedule      string `mapstructure:"draft_schedule"`
	DraftRetentionDays int    `mapstructure:"draft_retention_days" validate:"gte=0"`
}

// LoadConfig initialises application configuration using Viper with sensible defaults.
func LoadConfig(paths ...string) (*Config, error) {
	v := viper.NewWithOptions(viper.ExperimentalBindStruct())
	v.SetConfigName("config")
	v.SetConfigType("yaml")

	v.AddConfigPath("./config")
	for _, path := range paths {
		v.AddConfigPath(path)
	}

	setDefaults(v)

	v.SetEnvPrefix("BANNER")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var cfgErr viper.ConfigFileNotFoundError
		if !errors.As(err, &cfgErr) {
			return nil, fmt.Errorf("config: read file: %w", err)
		}
	}

	var config Config
	if err := v.Unmarshal(&config, decodeHook()); err != nil {
		return nil, fmt.Errorf("config: unmarshal: %w", err)
	}

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("config: validate: %w", err)
	}

	return &config, nil
}

// Validate checks structural constraints on the loaded configuration.
func (c *Config) Validate() error {
	return validator.ValidateStruct(c)
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", 8000)
	v.SetDefault("server.log_level", "info")

	v.SetDefault("database.driver", "sqlite")
	v.SetDefault("database.path", "./data/alertbanner.sqlite")

	v.SetDefault("monitoring.prometheus.enabled", true)
	v.SetDefault("monitoring.prometheus.endpoint", "/metrics")
	v.SetDefault("monitoring.health_check.enabled", true)

	v.SetDefault("features.translation_workflow.enabled", false)
	v.SetDefault("features.translation_workflow.default_language", "en-us")
	v.SetDefault("features.notifications.enabled", true)
	v.SetDefault("features.realtime.enabled", true)

	v.SetDefault("auth.jwt.issuer", "alertbanner")
	v.SetDefault("auth.jwt.token_ttl", "8h")

	v.SetDefault("email.smtp.enabled", false)
	v.SetDefault("email.smtp.host", "")
	v.SetDefault("email.smtp.port", 587)
	v.SetDefault("email.smtp.use_tls", true)
	v.SetDefault("email.smtp.timeout", "10s")

	v.SetDefault("maintenance.enabled", true)
	v.SetDefault("maintenance.archive_schedule", "@hourly")
	v.SetDefault("maintenance.draft_schedule", "@daily")
	v.SetDefault("maintenance.draft_retention_days", 90)
}

func decodeHook() viper.DecoderConfigOption {
	return func(dc *mapstructure.DecoderConfig) {
		dc.TagName = "mapstructure"
		dc.DecodeHook = mapstructure.ComposeDecodeHookFunc(
			mapstructure.StringToTimeDurationHookFunc(),
			mapstructure.StringToSliceHookFunc(","),
		)
	}
}
