// Package config loads the application configuration.
//
// Values are layered with koanf, lowest priority first:
//
//  1. built-in defaults (defaultConfig)
//  2. an optional YAML file (the --config flag or CONFIG_PATH)
//  3. environment variables, after a .env file has been loaded by main
//
// Loading never stops at the first problem. Validate collects every missing or
// out-of-range value and reports them together, so a misconfigured deployment
// can be fixed in one go.
package config

import (
	"fmt"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"
)

// ConfigPathEnvVar names the variable that may point at a YAML config file.
const ConfigPathEnvVar = "CONFIG_PATH"

// Pool size bounds for the application connection pool.
const (
	MinPoolSize = 5
	MaxPoolSize = 100
)

// DatabaseConfig describes the PostgreSQL connection and its pool.
type DatabaseConfig struct {
	Host           string `koanf:"host"`
	Port           int    `koanf:"port"`
	User           string `koanf:"user"`
	Password       string `koanf:"password"`
	Name           string `koanf:"name"`
	SSLMode        string `koanf:"sslmode"`
	PoolSize       int    `koanf:"pool_size"`
	MigrateOnStart bool   `koanf:"migrate_on_start"`
}

// URL builds a postgres:// connection string usable by both pgx and golang-migrate.
func (c DatabaseConfig) URL() string {
	u := url.URL{
		Scheme: "postgres",
		User:   url.UserPassword(c.User, c.Password),
		Host:   fmt.Sprintf("%s:%d", c.Host, c.Port),
		Path:   "/" + c.Name,
	}
	q := u.Query()
	if c.SSLMode != "" {
		q.Set("sslmode", c.SSLMode)
	}
	u.RawQuery = q.Encode()
	return u.String()
}

// AuthConfig holds authentication-related configuration.
type AuthConfig struct {
	JWTSecret            string        `koanf:"jwt_secret"`
	AccessTokenDuration  time.Duration `koanf:"access_token_duration"`
	RefreshTokenDuration time.Duration `koanf:"refresh_token_duration"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Port              string        `koanf:"port"`
	ReadTimeout       time.Duration `koanf:"read_timeout"`
	WriteTimeout      time.Duration `koanf:"write_timeout"`
	IdleTimeout       time.Duration `koanf:"idle_timeout"`
	RequestTimeout    time.Duration `koanf:"request_timeout"`
	ShutdownTimeout   time.Duration `koanf:"shutdown_timeout"`
	CORSOrigins       []string      `koanf:"cors_origins"`
	RateLimitRequests int           `koanf:"rate_limit_requests"`
	RateLimitWindow   time.Duration `koanf:"rate_limit_window"`
}

// LoggingConfig configures the zerolog output.
type LoggingConfig struct {
	Level  string `koanf:"level"`
	Format string `koanf:"format"`
}

// AppConfig is the top-level configuration structure for the application.
type AppConfig struct {
	Database DatabaseConfig `koanf:"database"`
	Auth     AuthConfig     `koanf:"auth"`
	Server   ServerConfig   `koanf:"server"`
	Logging  LoggingConfig  `koanf:"logging"`
}

func defaultConfig() *AppConfig {
	return &AppConfig{
		Database: DatabaseConfig{
			Host:     "localhost",
			Port:     5432,
			SSLMode:  "disable",
			PoolSize: 10,
		},
		Auth: AuthConfig{
			AccessTokenDuration:  15 * time.Minute,
			RefreshTokenDuration: 168 * time.Hour, // 7 days
		},
		Server: ServerConfig{
			Port:              "8080",
			ReadTimeout:       15 * time.Second,
			WriteTimeout:      30 * time.Second,
			IdleTimeout:       60 * time.Second,
			RequestTimeout:    20 * time.Second,
			ShutdownTimeout:   10 * time.Second,
			CORSOrigins:       []string{"*"},
			RateLimitRequests: 20,
			RateLimitWindow:   time.Minute,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
		},
	}
}

// envMappings maps the supported environment variables (lower-cased) to koanf paths.
// Anything not listed here is ignored.
var envMappings = map[string]string{
	"db_host":             "database.host",
	"db_port":             "database.port",
	"db_user":             "database.user",
	"db_password":         "database.password",
	"db_name":             "database.name",
	"db_sslmode":          "database.sslmode",
	"db_app_pool_size":    "database.pool_size",
	"db_migrate_on_start": "database.migrate_on_start",

	"jwt_secret":                 "auth.jwt_secret",
	"jwt_access_token_duration":  "auth.access_token_duration",
	"jwt_refresh_token_duration": "auth.refresh_token_duration",

	"port":                "server.port",
	"http_read_timeout":   "server.read_timeout",
	"http_write_timeout":  "server.write_timeout",
	"http_idle_timeout":   "server.idle_timeout",
	"request_timeout":     "server.request_timeout",
	"shutdown_timeout":    "server.shutdown_timeout",
	"cors_origins":        "server.cors_origins",
	"rate_limit_requests": "server.rate_limit_requests",
	"rate_limit_window":   "server.rate_limit_window",

	"log_level":  "logging.level",
	"log_format": "logging.format",
}

// envTransformFunc returns the koanf path for a known variable, or "" to skip it.
func envTransformFunc(key string) string {
	return envMappings[strings.ToLower(key)]
}

var sliceConfigPaths = []string{"server.cors_origins"}

// processSliceFields splits comma-separated env values into string slices.
func processSliceFields(k *koanf.Koanf) error {
	for _, path := range sliceConfigPaths {
		strVal, ok := k.Get(path).(string)
		if !ok {
			continue
		}
		parts := strings.Split(strVal, ",")
		trimmed := make([]string, 0, len(parts))
		for _, p := range parts {
			if p = strings.TrimSpace(p); p != "" {
				trimmed = append(trimmed, p)
			}
		}
		if err := k.Set(path, trimmed); err != nil {
			return fmt.Errorf("failed to set %s: %w", path, err)
		}
	}
	return nil
}

// LoadConfig builds an AppConfig from defaults, the YAML file at path (or
// CONFIG_PATH when path is empty) and the environment, then validates it.
func LoadConfig(path string) (*AppConfig, error) {
	k := koanf.New(".")

	if err := k.Load(structs.Provider(defaultConfig(), "koanf"), nil); err != nil {
		return nil, fmt.Errorf("failed to load defaults: %w", err)
	}

	if path == "" {
		path = os.Getenv(ConfigPathEnvVar)
	}
	if path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("failed to load config file %s: %w", path, err)
		}
	}

	if err := k.Load(env.Provider("", ".", envTransformFunc), nil); err != nil {
		return nil, fmt.Errorf("failed to load environment variables: %w", err)
	}
	if err := processSliceFields(k); err != nil {
		return nil, fmt.Errorf("failed to process slice fields: %w", err)
	}

	cfg := &AppConfig{}
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal configuration: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks required values and bounds, reporting every problem at once.
func (c *AppConfig) Validate() error {
	var errors []string

	required := map[string]string{
		"DB_USER":     c.Database.User,
		"DB_PASSWORD": c.Database.Password,
		"DB_NAME":     c.Database.Name,
		"JWT_SECRET":  c.Auth.JWTSecret,
	}
	for _, name := range []string{"DB_USER", "DB_PASSWORD", "DB_NAME", "JWT_SECRET"} {
		if required[name] == "" {
			errors = append(errors, fmt.Sprintf("missing required setting: %s", name))
		}
	}

	if c.Database.Port <= 0 || c.Database.Port > 65535 {
		errors = append(errors, fmt.Sprintf("invalid DB_PORT: %d", c.Database.Port))
	}
	if c.Database.PoolSize < MinPoolSize || c.Database.PoolSize > MaxPoolSize {
		errors = append(errors, fmt.Sprintf("DB_APP_POOL_SIZE (%d) must be between %d and %d",
			c.Database.PoolSize, MinPoolSize, MaxPoolSize))
	}

	if c.Auth.AccessTokenDuration <= 0 {
		errors = append(errors, "JWT_ACCESS_TOKEN_DURATION must be positive")
	}
	if c.Auth.RefreshTokenDuration <= c.Auth.AccessTokenDuration {
		errors = append(errors, "JWT_REFRESH_TOKEN_DURATION must be longer than JWT_ACCESS_TOKEN_DURATION")
	}

	if _, err := strconv.Atoi(c.Server.Port); err != nil {
		errors = append(errors, fmt.Sprintf("invalid PORT: expected integer, got '%s'", c.Server.Port))
	}
	if c.Server.RateLimitRequests <= 0 || c.Server.RateLimitWindow <= 0 {
		errors = append(errors, "RATE_LIMIT_REQUESTS and RATE_LIMIT_WINDOW must be positive")
	}

	if len(errors) > 0 {
		return fmt.Errorf("configuration errors:\n- %s", strings.Join(errors, "\n- "))
	}
	return nil
}
