// Package config provides configuration loading and defaults for the cms-blog server.
package config

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"os"
	"strconv"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Environment variable names recognised by ApplyEnvOverrides.
const (
	EnvEndpointURL  = "CMS_ENDPOINT_URL"
	EnvPreviewToken = "CMS_PREVIEW_TOKEN"
	EnvTimeout      = "CMS_TIMEOUT_SECONDS"
	EnvAuthToken    = "CMS_BLOG_AUTH_TOKEN"
)

// ImageFilter holds host patterns for cover images served to callers.
type ImageFilter struct {
	Allowlist []string `yaml:"allowlist"`
	Denylist  []string `yaml:"denylist"`
}

// ContentConfig controls how post content is shaped before it is returned.
type ContentConfig struct {
	Images ImageFilter `yaml:"images"`
	// DefaultNavID is used by blog_home when the caller omits nav_id.
	DefaultNavID string `yaml:"default_nav_id"`
}

// AuditConfig controls audit logging behaviour.
type AuditConfig struct {
	Enabled bool   `yaml:"enabled"`
	LogPath string `yaml:"log_path"`
}

// ServerConfig holds network and authentication settings.
type ServerConfig struct {
	Port      int    `yaml:"port"`
	AuthToken string `yaml:"auth_token"`
}

// CMSConfig holds connection details for the headless CMS GraphQL endpoint.
type CMSConfig struct {
	EndpointURL  string `yaml:"endpoint_url"`
	PreviewToken string `yaml:"preview_token"`
	// Timeout is the HTTP request timeout in seconds. Zero leaves the
	// transport default in place.
	Timeout int `yaml:"timeout"`
}

// Config is the top-level configuration structure for the cms-blog server.
type Config struct {
	Server  ServerConfig  `yaml:"server"`
	CMS     CMSConfig     `yaml:"cms"`
	Content ContentConfig `yaml:"content"`
	Audit   AuditConfig   `yaml:"audit"`
}

// LoadConfig reads and parses a YAML configuration file from the given path.
// On error, nil is returned for the config pointer.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	return cfg, nil
}

// DefaultConfig returns a new Config populated with sensible default values.
// Each call returns a distinct instance.
func DefaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Port: 8080,
		},
		Content: ContentConfig{
			Images: ImageFilter{
				Allowlist: []string{"*.graphassets.com"},
			},
		},
		Audit: AuditConfig{
			Enabled: false,
			LogPath: "audit.log",
		},
	}
}

// LoadDotEnv loads KEY=value pairs from the given files (".env" when none are
// given) into the process environment. Variables already set are never
// overwritten. A missing file is not an error.
func LoadDotEnv(files ...string) error {
	if len(files) == 0 {
		files = []string{".env"}
	}
	var present []string
	for _, f := range files {
		if _, err := os.Stat(f); err == nil {
			present = append(present, f)
		}
	}
	if len(present) == 0 {
		return nil
	}
	if err := godotenv.Load(present...); err != nil {
		return fmt.Errorf("load dotenv: %w", err)
	}
	return nil
}

// ApplyEnvOverrides updates cfg in place with values from environment variables.
// Recognized variables:
//   - CMS_ENDPOINT_URL overrides cfg.CMS.EndpointURL
//   - CMS_PREVIEW_TOKEN overrides cfg.CMS.PreviewToken
//   - CMS_TIMEOUT_SECONDS overrides cfg.CMS.Timeout (ignored unless a non-negative integer)
//   - CMS_BLOG_AUTH_TOKEN overrides cfg.Server.AuthToken
func ApplyEnvOverrides(cfg *Config) {
	if url := os.Getenv(EnvEndpointURL); url != "" {
		cfg.CMS.EndpointURL = url
	}
	if token := os.Getenv(EnvPreviewToken); token != "" {
		cfg.CMS.PreviewToken = token
	}
	if raw := os.Getenv(EnvTimeout); raw != "" {
		if n, err := strconv.Atoi(raw); err == nil && n >= 0 {
			cfg.CMS.Timeout = n
		}
	}
	if token := os.Getenv(EnvAuthToken); token != "" {
		cfg.Server.AuthToken = token
	}
}

// EnsureAuthToken generates a random auth token and sets it on cfg if
// cfg.Server.AuthToken is empty. It returns the token (existing or generated)
// and any error encountered during generation.
func EnsureAuthToken(cfg *Config) (string, error) {
	if cfg.Server.AuthToken != "" {
		return cfg.Server.AuthToken, nil
	}
	token, err := GenerateRandomToken()
	if err != nil {
		return "", fmt.Errorf("generate auth token: %w", err)
	}
	cfg.Server.AuthToken = token
	return token, nil
}

// GenerateRandomToken returns a 32-character hex-encoded cryptographically
// random token string.
func GenerateRandomToken() (string, error) {
	b := make([]byte, 16)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("rand.Read: %w", err)
	}
	return hex.EncodeToString(b), nil
}
