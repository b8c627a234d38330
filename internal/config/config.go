// Package config provides configuration loading for the ACE API.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds all configuration for the application.
type Config struct {
	Server       ServerConfig       `mapstructure:"server"`
	Store        StoreConfig        `mapstructure:"store"`
	Database     DatabaseConfig     `mapstructure:"database"`
	Redis        RedisConfig        `mapstructure:"redis"`
	Auth         AuthConfig         `mapstructure:"auth"`
	LLM          LLMConfig          `mapstructure:"llm"`
	Vault        VaultConfig        `mapstructure:"vault"`
	Risk         RiskConfig         `mapstructure:"risk"`
	Chat         ChatConfig         `mapstructure:"chat"`
	Intelligence IntelligenceConfig `mapstructure:"intelligence"`
	CORS         CORSConfig         `mapstructure:"cors"`
}

// ServerConfig holds HTTP server configuration.
type ServerConfig struct {
	Port         int           `mapstructure:"port"`
	Host         string        `mapstructure:"host"`
	ReadTimeout  time.Duration `mapstructure:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
	Environment  string        `mapstructure:"environment"` // dev, staging, prod
}

// StoreConfig selects the persistence backends.
type StoreConfig struct {
	Backend        string `mapstructure:"backend"`         // memory, postgres
	SessionBackend string `mapstructure:"session_backend"` // store, redis
}

// DatabaseConfig holds PostgreSQL configuration.
type DatabaseConfig struct {
	Host            string        `mapstructure:"host"`
	Port            int           `mapstructure:"port"`
	User            string        `mapstructure:"user"`
	Password        string        `mapstructure:"password"`
	Database        string        `mapstructure:"database"`
	SSLMode         string        `mapstructure:"ssl_mode"`
	MaxOpenConns    int           `mapstructure:"max_open_conns"`
	MaxIdleConns    int           `mapstructure:"max_idle_conns"`
	ConnMaxLifetime time.Duration `mapstructure:"conn_max_lifetime"`
}

// DSN returns the PostgreSQL connection string.
func (c DatabaseConfig) DSN() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.Database, c.SSLMode,
	)
}

// URL returns the PostgreSQL URL form used by migrations.
func (c DatabaseConfig) URL() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=%s",
		c.User, c.Password, c.Host, c.Port, c.Database, c.SSLMode,
	)
}

// RedisConfig holds Redis configuration.
type RedisConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

// Addr returns the Redis address string.
func (c RedisConfig) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// AuthConfig holds session and identity-exchange configuration.
type AuthConfig struct {
	SessionExpiry          time.Duration `mapstructure:"session_expiry"`
	SessionCleanupInterval time.Duration `mapstructure:"session_cleanup_interval"`
	CookieName             string        `mapstructure:"cookie_name"`
	AdminEmails            []string      `mapstructure:"admin_emails"`
	ExchangeURL            string        `mapstructure:"exchange_url"`
	ExchangeClientID       string        `mapstructure:"exchange_client_id"`
	ExchangeClientSecret   string        `mapstructure:"exchange_client_secret"`
	ExchangeTokenURL       string        `mapstructure:"exchange_token_url"`
	ExchangeTimeout        time.Duration `mapstructure:"exchange_timeout"`
}

// LLMConfig selects and configures the model provider.
type LLMConfig struct {
	Provider string        `mapstructure:"provider"` // openai, gemini
	APIKey   string        `mapstructure:"api_key"`
	Model    string        `mapstructure:"model"`
	BaseURL  string        `mapstructure:"base_url"`
	Timeout  time.Duration `mapstructure:"timeout"`
}

// VaultConfig locates the policy vault file.
type VaultConfig struct {
	Path string `mapstructure:"path"`
}

// RiskConfig optionally overrides the embedded risk rules.
type RiskConfig struct {
	RulesFile string `mapstructure:"rules_file"`
}

// ChatConfig holds chat pipeline switches.
type ChatConfig struct {
	RequireProfile bool `mapstructure:"require_profile"`
	HistoryWindow  int  `mapstructure:"history_window"`
}

// IntelligenceConfig drives the dashboard insight.
type IntelligenceConfig struct {
	WithdrawalDeadline string   `mapstructure:"withdrawal_deadline"` // YYYY-MM-DD
	DefaultTerm        string   `mapstructure:"default_term"`
	RuleOrder          []string `mapstructure:"rule_order"`
}

// CORSConfig lists allowed browser origins.
type CORSConfig struct {
	AllowedOrigins []string `mapstructure:"allowed_origins"`
}

// Load reads configuration from files and environment variables.
func Load() (*Config, error) {
	v := viper.New()

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("./config")
	v.AddConfigPath("/etc/ace")

	v.SetEnvPrefix("ACE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	// Secrets have no default, so AutomaticEnv alone does not see them on Unmarshal.
	v.BindEnv("llm.api_key", "ACE_LLM_API_KEY", "OPENAI_API_KEY")
	v.BindEnv("auth.exchange_client_id", "ACE_AUTH_EXCHANGE_CLIENT_ID")
	v.BindEnv("auth.exchange_client_secret", "ACE_AUTH_EXCHANGE_CLIENT_SECRET")
	v.BindEnv("auth.exchange_token_url", "ACE_AUTH_EXCHANGE_TOKEN_URL")
	v.BindEnv("risk.rules_file", "ACE_RISK_RULES_FILE")

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		// Config file not found is OK, we use defaults and env vars
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// Validate rejects combinations the server cannot start with.
func (c *Config) Validate() error {
	switch c.Store.Backend {
	case "memory", "postgres":
	default:
		return fmt.Errorf("store.backend must be memory or postgres, got %q", c.Store.Backend)
	}
	switch c.Store.SessionBackend {
	case "store", "redis":
	default:
		return fmt.Errorf("store.session_backend must be store or redis, got %q", c.Store.SessionBackend)
	}
	switch c.LLM.Provider {
	case "openai", "gemini":
	default:
		return fmt.Errorf("llm.provider must be openai or gemini, got %q", c.LLM.Provider)
	}
	if c.LLM.Timeout <= 0 {
		return fmt.Errorf("llm.timeout must be positive")
	}
	if _, err := time.Parse(time.DateOnly, c.Intelligence.WithdrawalDeadline); err != nil {
		return fmt.Errorf("intelligence.withdrawal_deadline: %w", err)
	}
	return nil
}

// setDefaults configures default values for all settings.
func setDefaults(v *viper.Viper) {
	// Server defaults
	v.SetDefault("server.port", 8001)
	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.read_timeout", "30s")
	v.SetDefault("server.write_timeout", "120s")
	v.SetDefault("server.environment", "dev")

	// Store defaults
	v.SetDefault("store.backend", "memory")
	v.SetDefault("store.session_backend", "store")

	// Database defaults
	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.port", 5432)
	v.SetDefault("database.user", "ace")
	v.SetDefault("database.password", "ace")
	v.SetDefault("database.database", "ace")
	v.SetDefault("database.ssl_mode", "disable")
	v.SetDefault("database.max_open_conns", 25)
	v.SetDefault("database.max_idle_conns", 5)
	v.SetDefault("database.conn_max_lifetime", "5m")

	// Redis defaults
	v.SetDefault("redis.host", "localhost")
	v.SetDefault("redis.port", 6379)
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.db", 0)

	// Auth defaults
	v.SetDefault("auth.session_expiry", "168h") // 7 days
	v.SetDefault("auth.session_cleanup_interval", "1h")
	v.SetDefault("auth.cookie_name", "session_token")
	v.SetDefault("auth.admin_emails", []string{})
	v.SetDefault("auth.exchange_url", "https://demobackend.emergentagent.com/auth/v1/env/oauth/session-data")
	v.SetDefault("auth.exchange_timeout", "10s")

	// LLM defaults
	v.SetDefault("llm.provider", "openai")
	v.SetDefault("llm.model", "gpt-4o-mini")
	v.SetDefault("llm.base_url", "")
	v.SetDefault("llm.timeout", "90s")

	// Vault, risk, chat
	v.SetDefault("vault.path", "ace_vault.json")
	v.SetDefault("chat.require_profile", true)
	v.SetDefault("chat.history_window", 10)

	// Intelligence defaults
	v.SetDefault("intelligence.withdrawal_deadline", "2026-04-03")
	v.SetDefault("intelligence.default_term", "Spring 2026")
	v.SetDefault("intelligence.rule_order", []string{"international", "withdrawal_deadline", "junior_planning"})

	v.SetDefault("cors.allowed_origins", []string{"http://localhost:*"})
}
