// Package config loads cuescan configuration from command-line flags,
// environment variables and .env files.
package config

import (
	"bufio"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/listenupapp/cuescan/internal/sidecar"
	"github.com/listenupapp/cuescan/internal/validation"
)

// Config holds the application configuration.
type Config struct {
	App     AppConfig
	Logger  LoggerConfig
	Library LibraryConfig
	Catalog CatalogConfig
	Scan    ScanConfig
	Server  ServerConfig
	Watch   WatchConfig
}

// AppConfig holds application-level configuration.
type AppConfig struct {
	Environment string `env:"ENV" validate:"required,oneof=development staging production"`
}

// LoggerConfig holds logging configuration.
type LoggerConfig struct {
	Level string `env:"LOG_LEVEL" validate:"oneof=debug info warn error"`
}

// LibraryConfig holds the music library location.
type LibraryConfig struct {
	// Path may be empty for one-off scans driven from the command line.
	Path string `env:"LIBRARY_PATH"`
}

// CatalogConfig holds catalog storage configuration.
type CatalogConfig struct {
	Path string `env:"CATALOG_PATH" validate:"required"`
}

// ScanConfig holds scanner configuration.
type ScanConfig struct {
	// Workers is the analysis pool size; 0 means one per CPU.
	Workers int `env:"SCAN_WORKERS" validate:"gte=0,lte=256"`
	// Charset is the fallback encoding for sidecar cuesheets that are not
	// valid UTF-8. Empty means Windows-1252.
	Charset string `env:"CUE_CHARSET"`
	// Timeout bounds a full library scan; 0 disables it.
	Timeout time.Duration `env:"SCAN_TIMEOUT" validate:"gte=0"`
	// FFprobePath overrides the ffprobe binary used for containers the
	// native readers cannot open.
	FFprobePath string `env:"FFPROBE_PATH"`
}

// ServerConfig holds server configuration.
type ServerConfig struct {
	Port         string        `env:"SERVER_PORT" validate:"required,numeric"`
	ReadTimeout  time.Duration `env:"SERVER_READ_TIMEOUT" validate:"gt=0"`
	WriteTimeout time.Duration `env:"SERVER_WRITE_TIMEOUT" validate:"gt=0"`
	IdleTimeout  time.Duration `env:"SERVER_IDLE_TIMEOUT" validate:"gt=0"`
}

// WatchConfig holds library watcher configuration.
type WatchConfig struct {
	Enabled     bool          `env:"WATCH_ENABLED"`
	SettleDelay time.Duration `env:"WATCH_SETTLE_DELAY" validate:"gt=0"`
}

// LoadConfig loads configuration from the process arguments.
func LoadConfig() (*Config, error) {
	return Load(os.Args[1:])
}

// Load loads configuration with precedence:
// 1. Command-line flags (highest priority).
// 2. Environment variables.
// 3. .env file.
// 4. Default values (lowest priority).
func Load(args []string) (*Config, error) {
	fs := flag.NewFlagSet("cuescan", flag.ContinueOnError)

	env := fs.String("env", "", "Environment (development, staging, production)")
	logLevel := fs.String("log-level", "", "Log level (debug, info, warn, error)")
	libraryPath := fs.String("library-path", "", "Path to the music library")
	catalogPath := fs.String("catalog-path", "", "Path to the catalog database")
	envFile := fs.String("env-file", ".env", "Path to .env file")

	scanWorkers := fs.String("workers", "", "Analysis workers (default: one per CPU)")
	cueCharset := fs.String("cue-charset", "", "Fallback charset for sidecar cuesheets (default: windows-1252)")
	scanTimeout := fs.String("scan-timeout", "", "Timeout for a full library scan (default: none)")
	ffprobePath := fs.String("ffprobe-path", "", "Path to ffprobe binary (default: ffprobe on PATH)")

	serverPort := fs.String("port", "", "Server port (default: 8080)")
	readTimeout := fs.String("read-timeout", "", "HTTP read timeout (default: 15s)")
	writeTimeout := fs.String("write-timeout", "", "HTTP write timeout (default: 15s)")
	idleTimeout := fs.String("idle-timeout", "", "HTTP idle timeout (default: 60s)")

	watchEnabled := fs.String("watch", "", "Watch the library for changes (default: true)")
	settleDelay := fs.String("settle-delay", "", "Quiet period before a changed file is rescanned (default: 2s)")

	if err := fs.Parse(args); err != nil {
		return nil, err
	}

	// Load .env file if it exists (silently ignore if not found).
	_ = loadEnvFile(*envFile)

	cfg := &Config{
		App: AppConfig{
			Environment: getConfigValue(*env, "ENV", "development"),
		},
		Logger: LoggerConfig{
			Level: strings.ToLower(getConfigValue(*logLevel, "LOG_LEVEL", "info")),
		},
		Library: LibraryConfig{
			Path: getConfigValue(*libraryPath, "LIBRARY_PATH", ""),
		},
		Catalog: CatalogConfig{
			Path: getConfigValue(*catalogPath, "CATALOG_PATH", ""),
		},
		Scan: ScanConfig{
			Charset:     getConfigValue(*cueCharset, "CUE_CHARSET", ""),
			FFprobePath: getConfigValue(*ffprobePath, "FFPROBE_PATH", ""),
		},
		Server: ServerConfig{
			Port: getConfigValue(*serverPort, "SERVER_PORT", "8080"),
		},
		Watch: WatchConfig{
			Enabled: getBoolConfigValue(*watchEnabled, "WATCH_ENABLED", true),
		},
	}

	var err error
	if cfg.Scan.Workers, err = getIntConfigValue(*scanWorkers, "SCAN_WORKERS", 0); err != nil {
		return nil, err
	}

	durations := []struct {
		dst   *time.Duration
		flag  string
		key   string
		value string
	}{
		{&cfg.Scan.Timeout, *scanTimeout, "SCAN_TIMEOUT", "0s"},
		{&cfg.Server.ReadTimeout, *readTimeout, "SERVER_READ_TIMEOUT", "15s"},
		{&cfg.Server.WriteTimeout, *writeTimeout, "SERVER_WRITE_TIMEOUT", "15s"},
		{&cfg.Server.IdleTimeout, *idleTimeout, "SERVER_IDLE_TIMEOUT", "60s"},
		{&cfg.Watch.SettleDelay, *settleDelay, "WATCH_SETTLE_DELAY", "2s"},
	}
	for _, d := range durations {
		if *d.dst, err = getDurationConfigValue(d.flag, d.key, d.value); err != nil {
			return nil, err
		}
	}

	if err := cfg.expandPaths(); err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return cfg, nil
}

// Validate checks that all required config values are present and valid.
func (c *Config) Validate() error {
	if err := validation.New().Validate(c); err != nil {
		return err
	}
	if _, err := sidecar.LookupCharset(c.Scan.Charset); err != nil {
		return fmt.Errorf("CUE_CHARSET: %w", err)
	}
	return nil
}

// expandPaths makes the library and catalog paths absolute. The catalog
// defaults to ~/.cuescan/catalog.db.
func (c *Config) expandPaths() error {
	library, err := expandPath(c.Library.Path, "")
	if err != nil {
		return fmt.Errorf("invalid library path: %w", err)
	}
	c.Library.Path = library

	defaultCatalog := ""
	if home, err := os.UserHomeDir(); err == nil {
		defaultCatalog = filepath.Join(home, ".cuescan", "catalog.db")
	}
	catalog, err := expandPath(c.Catalog.Path, defaultCatalog)
	if err != nil {
		return fmt.Errorf("invalid catalog path: %w", err)
	}
	c.Catalog.Path = catalog
	return nil
}

// expandPath expands ~ and makes the path absolute.
// If path is empty, defaultPath is returned as is.
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
	var result int
	if _, err := fmt.Sscanf(strValue, "%d", &result); err != nil {
		return 0, fmt.Errorf("invalid %s %q: %w", envKey, strValue, err)
	}
	return result, nil
}

// getDurationConfigValue returns a duration from flag, env var, or default.
func getDurationConfigValue(flagValue, envKey, defaultValue string) (time.Duration, error) {
	strValue := getConfigValue(flagValue, envKey, defaultValue)
	d, err := time.ParseDuration(strValue)
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q: %w", envKey, strValue, err)
	}
	return d, nil
}

// loadEnvFile loads environment variables from a .env file.
// Format: KEY=value (one per line, # for comments).
func loadEnvFile(path string) error {
	file, err := os.Open(path) //#nosec G304 -- Config file path from user input is expected
	if err != nil {
		return err
	}
	defer file.Close()

	scanner := bufio.NewScanner(file)
	lineNum := 0

	for scanner.Scan() {
		lineNum++
		line := strings.TrimSpace(scanner.Text())

		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		key, value, ok := strings.Cut(line, "=")
		if !ok {
			return fmt.Errorf("invalid format at line %d: %s", lineNum, line)
		}

		key = strings.TrimSpace(key)
		value = strings.Trim(strings.TrimSpace(value), `"'`)

		// Variables already in the environment win over the file.
		if os.Getenv(key) == "" {
			if err := os.Setenv(key, value); err != nil {
				return fmt.Errorf("failed to set env var %s: %w", key, err)
			}
		}
	}

	return scanner.Err()
}
