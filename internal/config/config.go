package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Done scopes for the "done:" marker.
const (
	DoneScopeAll  = "all"  // search every list (original behaviour)
	DoneScopeList = "list" // search only the primary list
)

// Config holds application configuration.
type Config struct {
	// BotToken is the Telegram Bot API token. Usually supplied via BOT_TOKEN.
	BotToken string `json:"bot_token,omitempty"`

	// WebBind is the interface the HTTP server listens on.
	WebBind string `json:"web_bind,omitempty"`

	// WebPort is the HTTP port. 0 disables the web server in serve mode.
	WebPort int `json:"web_port,omitempty"`

	// DBMaxOpenConns limits the maximum number of open database connections.
	// If set to 1, all database access is serialized (reduces "database is locked" errors).
	// 0 means use sql.DB default (unlimited).
	DBMaxOpenConns int `json:"db_max_open_conns,omitempty"`

	// DBMaxIdleConns limits the maximum number of idle database connections.
	DBMaxIdleConns int `json:"db_max_idle_conns,omitempty"`

	// SessionCapacity bounds the number of remembered per-user categories.
	SessionCapacity int `json:"session_capacity,omitempty"`

	// SessionTTL is how long an idle session category survives, as a Go
	// duration string ("12h", "30m").
	SessionTTL string `json:"session_ttl,omitempty"`

	// LogLevel is one of debug, info, warn, error.
	LogLevel string `json:"log_level,omitempty"`

	// LogFormat is "json" (production encoder) or "console".
	LogFormat string `json:"log_format,omitempty"`

	// DoneScope controls which lists "done:" searches: "all" or "list".
	DoneScope string `json:"done_scope,omitempty"`

	// DisabledTools is a list of MCP tool names to exclude from registration.
	DisabledTools []string `json:"disabled_tools,omitempty"`
}

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	return &Config{
		WebBind:         "127.0.0.1",
		WebPort:         8080,
		SessionCapacity: 1024,
		SessionTTL:      "12h",
		LogLevel:        "info",
		LogFormat:       "json",
		DoneScope:       DoneScopeAll,
	}
}

// SessionTTLDuration parses SessionTTL, falling back to 12h when unset or invalid.
func (c *Config) SessionTTLDuration() time.Duration {
	d, err := time.ParseDuration(c.SessionTTL)
	if err != nil || d <= 0 {
		return 12 * time.Hour
	}
	return d
}

// Validate checks values that have a closed set of options.
func (c *Config) Validate() error {
	switch c.DoneScope {
	case DoneScopeAll, DoneScopeList:
	default:
		return fmt.Errorf("done_scope must be one of: all, list (got %q)", c.DoneScope)
	}
	switch c.LogFormat {
	case "json", "console":
	default:
		return fmt.Errorf("log_format must be one of: json, console (got %q)", c.LogFormat)
	}
	if c.WebPort < 0 || c.WebPort > 65535 {
		return fmt.Errorf("web_port out of range: %d", c.WebPort)
	}
	return nil
}

// Load loads configuration from baseDir/config.json, then applies
// environment overrides (including those from baseDir/.env or ./.env).
// Returns default config if the file doesn't exist.
// The baseDir parameter allows tests to use t.TempDir() instead of ~/.boodschappen.
func Load(baseDir string) (*Config, error) {
	cfg, err := loadFile(filepath.Join(baseDir, "config.json"))
	if err != nil {
		return nil, err
	}
	LoadEnvFiles(baseDir)
	ApplyEnv(cfg)
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// LoadEnvFiles loads .env files from the working directory and baseDir.
// Variables already present in the environment are not overwritten.
// Missing files are ignored.
func LoadEnvFiles(baseDir string) {
	for _, p := range []string{".env", filepath.Join(baseDir, ".env")} {
		if _, err := os.Stat(p); err == nil {
			_ = godotenv.Load(p)
		}
	}
}

// ApplyEnv overrides config values from environment variables.
func ApplyEnv(cfg *Config) {
	if v := strings.TrimSpace(os.Getenv("BOT_TOKEN")); v != "" {
		cfg.BotToken = v
	}
	if v := strings.TrimSpace(os.Getenv("BOODSCHAPPEN_WEB_BIND")); v != "" {
		cfg.WebBind = v
	}
	if v := strings.TrimSpace(os.Getenv("BOODSCHAPPEN_WEB_PORT")); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			cfg.WebPort = port
		}
	}
	if v := strings.TrimSpace(os.Getenv("BOODSCHAPPEN_LOG_LEVEL")); v != "" {
		cfg.LogLevel = v
	}
	if v := strings.TrimSpace(os.Getenv("BOODSCHAPPEN_LOG_FORMAT")); v != "" {
		cfg.LogFormat = v
	}
	if v := strings.TrimSpace(os.Getenv("BOODSCHAPPEN_DONE_SCOPE")); v != "" {
		cfg.DoneScope = v
	}
}

// loadFileRaw loads configuration from a specific file path.
// Returns zero-valued config if the file doesn't exist (not defaults).
func loadFileRaw(configPath string) (*Config, error) {
	data, err := os.ReadFile(configPath)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return &Config{}, nil
		}
		return nil, err
	}

	cfg := &Config{}
	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, err
	}

	return cfg, nil
}

// loadFile loads configuration from a specific file path.
// Returns default config if the file doesn't exist.
func loadFile(configPath string) (*Config, error) {
	cfg, err := loadFileRaw(configPath)
	if err != nil {
		return nil, err
	}
	return Merge(DefaultConfig(), cfg), nil
}

// Merge combines base and overlay configs.
// Overlay values take precedence for scalars; arrays are merged and deduplicated.
func Merge(base, overlay *Config) *Config {
	result := &Config{
		BotToken:        pickString(overlay.BotToken, base.BotToken),
		WebBind:         pickString(overlay.WebBind, base.WebBind),
		WebPort:         pickInt(overlay.WebPort, base.WebPort),
		DBMaxOpenConns:  pickInt(overlay.DBMaxOpenConns, base.DBMaxOpenConns),
		DBMaxIdleConns:  pickInt(overlay.DBMaxIdleConns, base.DBMaxIdleConns),
		SessionCapacity: pickInt(overlay.SessionCapacity, base.SessionCapacity),
		SessionTTL:      pickString(overlay.SessionTTL, base.SessionTTL),
		LogLevel:        pickString(overlay.LogLevel, base.LogLevel),
		LogFormat:       pickString(overlay.LogFormat, base.LogFormat),
		DoneScope:       pickString(overlay.DoneScope, base.DoneScope),
	}

	result.DisabledTools = mergeStringSlice(base.DisabledTools, overlay.DisabledTools)

	return result
}

func pickString(overlay, base string) string {
	if strings.TrimSpace(overlay) != "" {
		return overlay
	}
	return base
}

func pickInt(overlay, base int) int {
	if overlay != 0 {
		return overlay
	}
	return base
}

// mergeStringSlice combines two slices, trims whitespace, and removes duplicates.
func mergeStringSlice(a, b []string) []string {
	seen := make(map[string]bool)
	result := make([]string, 0, len(a)+len(b))

	for _, s := range append(append([]string{}, a...), b...) {
		s = strings.TrimSpace(s)
		if s != "" && !seen[s] {
			seen[s] = true
			result = append(result, s)
		}
	}

	if len(result) == 0 {
		return nil
	}
	return result
}
