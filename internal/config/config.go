package config

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// Config represents the application configuration
type Config struct {
	Server    ServerConfig    `yaml:"server"`
	Database  DatabaseConfig  `yaml:"database"`
	JWT       JWTConfig       `yaml:"jwt"`
	Admin     AdminConfig     `yaml:"admin"`
	QA        QAConfig        `yaml:"qa"`
	Email     EmailConfig     `yaml:"email"`
	Broadcast BroadcastConfig `yaml:"broadcast"`
	Scheduler SchedulerConfig `yaml:"scheduler"`
	Log       LogConfig       `yaml:"log"`
}

// ServerConfig contains HTTP server settings
type ServerConfig struct {
	Host string `yaml:"host"`
	Port int    `yaml:"port"`
}

// DatabaseConfig contains PostgreSQL connection settings
type DatabaseConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	Database string `yaml:"database"`
	SSLMode  string `yaml:"ssl_mode"`
}

// JWTConfig contains JWT token settings
type JWTConfig struct {
	Secret            string `yaml:"secret"`
	AccessTokenExpiry int    `yaml:"access_token_expiry_hours"`
}

// AdminConfig contains the single manager account
type AdminConfig struct {
	Username string `yaml:"username"`
	Password string `yaml:"password"`
}

// QAConfig contains the shared QA return password
type QAConfig struct {
	ReturnPassword string `yaml:"return_password"`
}

// EmailConfig contains SendGrid settings for test-mode notices
type EmailConfig struct {
	Enabled        bool     `yaml:"enabled"`
	SendGridAPIKey string   `yaml:"sendgrid_api_key"`
	From           string   `yaml:"from"`
	Recipients     []string `yaml:"recipients"`
}

// BroadcastConfig contains status-stream settings
type BroadcastConfig struct {
	HeartbeatSeconds int `yaml:"heartbeat_seconds"`
	SubscriberBuffer int `yaml:"subscriber_buffer"`
}

// SchedulerConfig contains cron schedule settings
type SchedulerConfig struct {
	SyncTestWindow    string `yaml:"sync_test_window"`
	AuditStaleRentals string `yaml:"audit_stale_rentals"`
	StaleRentalDays   int    `yaml:"stale_rental_days"`
}

// LogConfig contains logging settings
type LogConfig struct {
	Level  string `yaml:"level"`  // "debug", "info", "warn", "error"
	Format string `yaml:"format"` // "json" or "text"
}

// Load reads configuration from a YAML file
func Load(configPath string) (*Config, error) {
	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	cfg.overrideWithEnv()

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &cfg, nil
}

// overrideWithEnv overrides config values with environment variables
func (c *Config) overrideWithEnv() {
	// Database
	if val := os.Getenv("DB_HOST"); val != "" {
		c.Database.Host = val
	}
	if val := os.Getenv("DB_PORT"); val != "" {
		fmt.Sscanf(val, "%d", &c.Database.Port)
	}
	if val := os.Getenv("DB_USER"); val != "" {
		c.Database.User = val
	}
	if val := os.Getenv("DB_PASSWORD"); val != "" {
		c.Database.Password = val
	}
	if val := os.Getenv("DB_NAME"); val != "" {
		c.Database.Database = val
	}
	if val := os.Getenv("DB_SSL_MODE"); val != "" {
		c.Database.SSLMode = val
	}

	// Server
	if val := os.Getenv("SERVER_HOST"); val != "" {
		c.Server.Host = val
	}
	if val := os.Getenv("SERVER_PORT"); val != "" {
		fmt.Sscanf(val, "%d", &c.Server.Port)
	}

	// Auth
	if val := os.Getenv("JWT_SECRET"); val != "" {
		c.JWT.Secret = val
	}
	if val := os.Getenv("ADMIN_USERNAME"); val != "" {
		c.Admin.Username = val
	}
	if val := os.Getenv("ADMIN_PASSWORD"); val != "" {
		c.Admin.Password = val
	}
	if val := os.Getenv("QA_PASSWORD"); val != "" {
		c.QA.ReturnPassword = val
	}

	// Email
	if val := os.Getenv("SENDGRID_API_KEY"); val != "" {
		c.Email.SendGridAPIKey = val
	}
	if val := os.Getenv("EMAIL_FROM"); val != "" {
		c.Email.From = val
	}
	if val := os.Getenv("EMAIL_RECIPIENTS"); val != "" {
		c.Email.Recipients = strings.Split(val, ",")
	}

	// Log
	if val := os.Getenv("LOG_LEVEL"); val != "" {
		c.Log.Level = val
	}
	if val := os.Getenv("LOG_FORMAT"); val != "" {
		c.Log.Format = val
	}
}

// Validate checks if the configuration is valid and fills in defaults
func (c *Config) Validate() error {
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid server port: %d", c.Server.Port)
	}

	if c.Database.Host == "" {
		return fmt.Errorf("database host is required")
	}
	if c.Database.User == "" {
		return fmt.Errorf("database user is required")
	}
	if c.Database.Database == "" {
		return fmt.Errorf("database name is required")
	}
	if c.Database.SSLMode == "" {
		c.Database.SSLMode = "disable"
	}

	if c.JWT.Secret == "" {
		return fmt.Errorf("JWT secret is required")
	}
	if len(c.JWT.Secret) < 32 {
		return fmt.Errorf("JWT secret must be at least 32 characters")
	}
	if c.JWT.AccessTokenExpiry == 0 {
		c.JWT.AccessTokenExpiry = 24
	}

	if c.Admin.Username == "" {
		return fmt.Errorf("admin username is required")
	}
	if c.Admin.Password == "" {
		return fmt.Errorf("admin password is required")
	}
	if c.QA.ReturnPassword == "" {
		return fmt.Errorf("QA return password is required")
	}

	if c.Email.Enabled {
		if c.Email.SendGridAPIKey == "" {
			return fmt.Errorf("sendgrid api key is required when email is enabled")
		}
		if c.Email.From == "" {
			return fmt.Errorf("email from address is required when email is enabled")
		}
		if len(c.Email.Recipients) == 0 {
			return fmt.Errorf("at least one email recipient is required when email is enabled")
		}
	}

	// Broadcast defaults
	if c.Broadcast.HeartbeatSeconds == 0 {
		c.Broadcast.HeartbeatSeconds = 30
	}
	if c.Broadcast.SubscriberBuffer == 0 {
		c.Broadcast.SubscriberBuffer = 16
	}

	// Scheduler defaults
	if c.Scheduler.SyncTestWindow == "" {
		c.Scheduler.SyncTestWindow = "0 * * * * *" // every minute
	}
	if c.Scheduler.AuditStaleRentals == "" {
		c.Scheduler.AuditStaleRentals = "0 0 6 * * *" // 6 AM UTC
	}
	if c.Scheduler.StaleRentalDays == 0 {
		c.Scheduler.StaleRentalDays = 14
	}

	// Log defaults
	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
	if c.Log.Format == "" {
		c.Log.Format = "text"
	}

	return nil
}

// GetDatabaseConnectionString returns a PostgreSQL connection string
func (c *Config) GetDatabaseConnectionString() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=%s",
		c.Database.User,
		c.Database.Password,
		c.Database.Host,
		c.Database.Port,
		c.Database.Database,
		c.Database.SSLMode,
	)
}

// GetServerAddress returns the HTTP server address
func (c *Config) GetServerAddress() string {
	return fmt.Sprintf("%s:%d", c.Server.Host, c.Server.Port)
}
