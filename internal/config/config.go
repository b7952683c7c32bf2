// Package config provides application configuration management with support for environment variables, command-line flags, and .env files.
package config

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/adrg/xdg"
	"github.com/joho/godotenv"
)

// AppName names the data directory and the desktop notifications.
const AppName = "pausememo"

// Storage backends.
const (
	BackendBadger = "badger"
	BackendSQLite = "sqlite"
)

// Config holds the application configuration.
type Config struct {
	App       AppConfig
	Logger    LoggerConfig
	Storage   StorageConfig
	Server    ServerConfig
	Reminders ReminderConfig
	History   HistoryConfig
}

// AppConfig holds application-level configuration.
type AppConfig struct {
	Environment string
	// Timezone is the IANA zone summaries use for day and week boundaries.
	// Empty means the host's local zone.
	Timezone string
	Location *time.Location
}

// LoggerConfig holds logging configuration.
type LoggerConfig struct {
	Level  string
	Format string // json, pretty, or empty for auto
}

// StorageConfig selects and locates the key-value backend.
type StorageConfig struct {
	DataPath  string
	Backend   string
	KeyPrefix string
}

// BadgerPath is the badger directory under the data path.
func (s StorageConfig) BadgerPath() string {
	return filepath.Join(s.DataPath, "db")
}

// SQLitePath is the SQLite file under the data path.
func (s StorageConfig) SQLitePath() string {
	return filepath.Join(s.DataPath, AppName+".db")
}

// ServerConfig holds server configuration.
type ServerConfig struct {
	Port         string        // Server port (default: 8080)
	ReadTimeout  time.Duration // HTTP read timeout (default: 15s)
	WriteTimeout time.Duration // HTTP write timeout (default: 0, the event stream stays open)
	IdleTimeout  time.Duration // HTTP idle timeout (default: 60s)
	CORSOrigins  []string
	RateLimit    int // requests per minute per client; 0 disables
	RateBurst    int
}

// ReminderConfig controls how due reminders reach the user.
type ReminderConfig struct {
	// Desktop delivers through the freedesktop notification service in
	// addition to the event stream.
	Desktop              bool
	DefaultSnoozeMinutes int
}

// HistoryConfig holds history listing defaults.
type HistoryConfig struct {
	DefaultLimit int
}

// LoadConfig loads configuration from the process arguments. See Load.
func LoadConfig() (*Config, error) {
	return Load(os.Args[1:])
}

// Load builds the configuration with precedence:
// 1. Command-line flags (highest priority).
// 2. Environment variables.
// 3. .env file.
// 4. Default values (lowest priority).
func Load(args []string) (*Config, error) {
	fset := flag.NewFlagSet(AppName, flag.ContinueOnError)
	fset.SetOutput(io.Discard)

	env := fset.String("env", "", "Environment (development, staging, production)")
	logLevel := fset.String("log-level", "", "Log level (debug, info, warn, error)")
	logFormat := fset.String("log-format", "", "Log format (json, pretty)")
	timezone := fset.String("timezone", "", "IANA timezone for summaries")

	dataPath := fset.String("data-path", "", "Directory holding the database")
	backend := fset.String("storage-backend", "", "Storage backend (badger, sqlite)")
	keyPrefix := fset.String("key-prefix", "", "Namespace for every stored key")

	serverPort := fset.String("port", "", "Server port (default: 8080)")
	readTimeout := fset.String("read-timeout", "", "HTTP read timeout (default: 15s)")
	writeTimeout := fset.String("write-timeout", "", "HTTP write timeout (default: 0)")
	idleTimeout := fset.String("idle-timeout", "", "HTTP idle timeout (default: 60s)")
	corsOrigins := fset.String("cors-origins", "", "Comma-separated allowed CORS origins")
	rateLimit := fset.String("rate-limit", "", "Requests per minute per client, 0 disables (default: 120)")
	rateBurst := fset.String("rate-burst", "", "Rate limit burst (default: 30)")

	notifyDesktop := fset.String("notify-desktop", "", "Show reminders as desktop notifications")
	snoozeMinutes := fset.String("default-snooze-minutes", "", "Snooze length when none is given (default: 5)")
	historyLimit := fset.String("history-limit", "", "Default history page size (default: 50)")

	envFile := fset.String("env-file", ".env", "Path to .env file")

	if err := fset.Parse(args); err != nil {
		return nil, fmt.Errorf("parse flags: %w", err)
	}

	if err := loadEnvFile(*envFile); err != nil {
		return nil, err
	}

	cfg := &Config{
		App: AppConfig{
			Environment: getConfigValue(*env, "ENV", "development"),
			Timezone:    getConfigValue(*timezone, "TIMEZONE", ""),
		},
		Logger: LoggerConfig{
			Level:  getConfigValue(*logLevel, "LOG_LEVEL", "info"),
			Format: getConfigValue(*logFormat, "LOG_FORMAT", ""),
		},
		Storage: StorageConfig{
			DataPath:  getConfigValue(*dataPath, "DATA_PATH", ""),
			Backend:   strings.ToLower(getConfigValue(*backend, "STORAGE_BACKEND", BackendBadger)),
			KeyPrefix: getConfigValue(*keyPrefix, "KEY_PREFIX", "pm"),
		},
		Server: ServerConfig{
			Port:        getConfigValue(*serverPort, "SERVER_PORT", "8080"),
			CORSOrigins: splitList(getConfigValue(*corsOrigins, "CORS_ORIGINS", "")),
		},
		Reminders: ReminderConfig{
			Desktop: getBoolConfigValue(*notifyDesktop, "NOTIFY_DESKTOP", false),
		},
	}

	var err error
	ints := []struct {
		dst  *int
		flag string
		env  string
		def  int
	}{
		{&cfg.Server.RateLimit, *rateLimit, "RATE_LIMIT", 120},
		{&cfg.Server.RateBurst, *rateBurst, "RATE_LIMIT_BURST", 30},
		{&cfg.Reminders.DefaultSnoozeMinutes, *snoozeMinutes, "DEFAULT_SNOOZE_MINUTES", 5},
		{&cfg.History.DefaultLimit, *historyLimit, "HISTORY_LIMIT", 50},
	}
	for _, v := range ints {
		if *v.dst, err = getIntConfigValue(v.flag, v.env, v.def); err != nil {
			return nil, err
		}
	}

	durations := []struct {
		dst  *time.Duration
		flag string
		env  string
		def  string
	}{
		{&cfg.Server.ReadTimeout, *readTimeout, "SERVER_READ_TIMEOUT", "15s"},
		{&cfg.Server.WriteTimeout, *writeTimeout, "SERVER_WRITE_TIMEOUT", "0s"},
		{&cfg.Server.IdleTimeout, *idleTimeout, "SERVER_IDLE_TIMEOUT", "60s"},
	}
	for _, d := range durations {
		if *d.dst, err = getDurationConfigValue(d.flag, d.env, d.def); err != nil {
			return nil, err
		}
	}

	if err := cfg.expandDataPath(); err != nil {
		return nil, fmt.Errorf("invalid data path: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return cfg, nil
}

// Validate checks that all config values are present and in range. It also
// resolves App.Location from App.Timezone.
func (c *Config) Validate() error {
	validEnvs := map[string]bool{
		"development": true,
		"staging":     true,
		"production":  true,
	}
	if !validEnvs[c.App.Environment] {
		return fmt.Errorf("invalid environment: %q (must be development, staging, or production)", c.App.Environment)
	}

	validLevels := map[string]bool{
		"debug": true,
		"info":  true,
		"warn":  true,
		"error": true,
	}
	if !validLevels[strings.ToLower(c.Logger.Level)] {
		return fmt.Errorf("invalid log level: %s (must be debug, info, warn, or error)", c.Logger.Level)
	}
	switch c.Logger.Format {
	case "", "json", "pretty":
	default:
		return fmt.Errorf("invalid log format: %s (must be json or pretty)", c.Logger.Format)
	}

	if c.Storage.DataPath == "" {
		return errors.New("data path cannot be empty after expansion")
	}
	if c.Storage.Backend != BackendBadger && c.Storage.Backend != BackendSQLite {
		return fmt.Errorf("invalid storage backend: %s (must be badger or sqlite)", c.Storage.Backend)
	}
	if c.Storage.KeyPrefix == "" || strings.Contains(c.Storage.KeyPrefix, ":") {
		return fmt.Errorf("invalid key prefix: %q (must be non-empty without ':')", c.Storage.KeyPrefix)
	}

	port, err := strconv.Atoi(c.Server.Port)
	if err != nil || port < 1 || port > 65535 {
		return fmt.Errorf("invalid port: %s", c.Server.Port)
	}
	if c.Server.RateLimit < 0 || c.Server.RateBurst < 0 {
		return errors.New("rate limit and burst cannot be negative")
	}
	if c.Server.RateLimit > 0 && c.Server.RateBurst == 0 {
		return errors.New("rate limit burst must be positive when rate limiting is enabled")
	}

	if c.Reminders.DefaultSnoozeMinutes < 1 || c.Reminders.DefaultSnoozeMinutes > 1440 {
		return fmt.Errorf("invalid default snooze: %d minutes (must be 1-1440)", c.Reminders.DefaultSnoozeMinutes)
	}
	if c.History.DefaultLimit < 1 || c.History.DefaultLimit > 500 {
		return fmt.Errorf("invalid history limit: %d (must be 1-500)", c.History.DefaultLimit)
	}

	if c.App.Timezone == "" {
		c.App.Location = time.Local
	} else {
		loc, err := time.LoadLocation(c.App.Timezone)
		if err != nil {
			return fmt.Errorf("invalid timezone %q: %w", c.App.Timezone, err)
		}
		c.App.Location = loc
	}

	return nil
}

// expandPath expands ~ and makes the path absolute.
// If path is empty and defaultPath is provided, uses the default.
func expandPath(path, defaultPath string) (string, error) {
	if path == "" {
		return defaultPath, nil
	}

	if strings.HasPrefix(path, "~/") {
		homeDir, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("failed to get home directory: %w", err)
		}
		path = filepath.Join(homeDir, path[2:])
	}

	if !filepath.IsAbs(path) {
		absPath, err := filepath.Abs(path)
		if err != nil {
			return "", fmt.Errorf("failed to get absolute path: %w", err)
		}
		path = absPath
	}

	return filepath.Clean(path), nil
}

// expandDataPath defaults the data path to $XDG_DATA_HOME/pausememo.
func (c *Config) expandDataPath() error {
	expanded, err := expandPath(c.Storage.DataPath, filepath.Join(xdg.DataHome, AppName))
	if err != nil {
		return err
	}
	c.Storage.DataPath = expanded
	return nil
}

// getConfigValue returns the first non-empty value from flag, env var, or default.
func getConfigValue(flagValue, envKey, defaultValue string) string {
	if flagValue != "" {
		return flagValue
	}
	if envValue := os.Getenv(envKey); envValue != "" {
		return envValue
	}
	return defaultValue
}

// getBoolConfigValue returns a bool from flag, env var, or default.
// Accepts: "true", "1", "yes" (case-insensitive) as true; anything else is false.
func getBoolConfigValue(flagValue, envKey string, defaultValue bool) bool {
	strValue := getConfigValue(flagValue, envKey, "")
	if strValue == "" {
		return defaultValue
	}
	strValue = strings.ToLower(strValue)
	return strValue == "true" || strValue == "1" || strValue == "yes"
}

// getIntConfigValue returns an int from flag, env var, or default.
func getIntConfigValue(flagValue, envKey string, defaultValue int) (int, error) {
	strValue := getConfigValue(flagValue, envKey, "")
	if strValue == "" {
		return defaultValue, nil
	}
	n, err := strconv.Atoi(strings.TrimSpace(strValue))
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q: %w", envKey, strValue, err)
	}
	return n, nil
}

func getDurationConfigValue(flagValue, envKey, defaultValue string) (time.Duration, error) {
	strValue := getConfigValue(flagValue, envKey, defaultValue)
	d, err := time.ParseDuration(strValue)
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q: %w", envKey, strValue, err)
	}
	return d, nil
}

func splitList(s string) []string {
	var out []string
	for part := range strings.SplitSeq(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

// loadEnvFile loads variables from a .env file without overriding the
// environment. A missing file is not an error.
func loadEnvFile(path string) error {
	if path == "" {
		return nil
	}
	if err := godotenv.Load(path); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("load env file %s: %w", path, err)
	}
	return nil
}
