package config

import (
	"encoding/hex"
	"os"
	"path/filepath"
	"sync"
	"testing"
)

// clearEnv registers cleanup for every variable ApplyEnvOverrides reads and
// then removes them so os.Getenv returns "".
func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{EnvEndpointURL, EnvPreviewToken, EnvTimeout, EnvAuthToken} {
		t.Setenv(key, "")
		os.Unsetenv(key)
	}
}

// ---------------------------------------------------------------------------
// ApplyEnvOverrides
// ---------------------------------------------------------------------------

func Test_ApplyEnvOverrides_Cases(t *testing.T) {
	tests := []struct {
		name    string
		env     map[string]string
		initial CMSConfig
		want    CMSConfig
	}{
		{
			name:    "endpoint env set on empty config",
			env:     map[string]string{EnvEndpointURL: "https://example.test/graphql"},
			initial: CMSConfig{},
			want:    CMSConfig{EndpointURL: "https://example.test/graphql"},
		},
		{
			name:    "endpoint env overrides file value",
			env:     map[string]string{EnvEndpointURL: "https://new.test/graphql"},
			initial: CMSConfig{EndpointURL: "https://old.test/graphql"},
			want:    CMSConfig{EndpointURL: "https://new.test/graphql"},
		},
		{
			name:    "empty env does not override existing endpoint",
			env:     map[string]string{EnvEndpointURL: ""},
			initial: CMSConfig{EndpointURL: "https://keep.test/graphql"},
			want:    CMSConfig{EndpointURL: "https://keep.test/graphql"},
		},
		{
			name:    "preview token env is applied",
			env:     map[string]string{EnvPreviewToken: "secret"},
			initial: CMSConfig{EndpointURL: "https://example.test/graphql"},
			want:    CMSConfig{EndpointURL: "https://example.test/graphql", PreviewToken: "secret"},
		},
		{
			name:    "timeout env is parsed",
			env:     map[string]string{EnvTimeout: "12"},
			initial: CMSConfig{Timeout: 30},
			want:    CMSConfig{Timeout: 12},
		},
		{
			name:    "zero timeout env clears timeout",
			env:     map[string]string{EnvTimeout: "0"},
			initial: CMSConfig{Timeout: 30},
			want:    CMSConfig{Timeout: 0},
		},
		{
			name:    "non-numeric timeout env is ignored",
			env:     map[string]string{EnvTimeout: "soon"},
			initial: CMSConfig{Timeout: 30},
			want:    CMSConfig{Timeout: 30},
		},
		{
			name:    "negative timeout env is ignored",
			env:     map[string]string{EnvTimeout: "-4"},
			initial: CMSConfig{Timeout: 30},
			want:    CMSConfig{Timeout: 30},
		},
		{
			name:    "no env leaves config untouched",
			env:     nil,
			initial: CMSConfig{EndpointURL: "https://a.test", PreviewToken: "p", Timeout: 5},
			want:    CMSConfig{EndpointURL: "https://a.test", PreviewToken: "p", Timeout: 5},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			clearEnv(t)
			for k, v := range tt.env {
				t.Setenv(k, v)
			}

			cfg := &Config{CMS: tt.initial}
			ApplyEnvOverrides(cfg)

			if cfg.CMS != tt.want {
				t.Errorf("CMS = %+v, want %+v", cfg.CMS, tt.want)
			}
		})
	}
}

func Test_ApplyEnvOverrides_AuthToken(t *testing.T) {
	clearEnv(t)
	t.Setenv(EnvAuthToken, "server-token")

	cfg := &Config{Server: ServerConfig{Port: 9090, AuthToken: "old"}}
	ApplyEnvOverrides(cfg)

	if cfg.Server.AuthToken != "server-token" {
		t.Errorf("AuthToken = %q, want %q", cfg.Server.AuthToken, "server-token")
	}
	if cfg.Server.Port != 9090 {
		t.Errorf("Port = %d, want 9090 (unchanged)", cfg.Server.Port)
	}
}

// ---------------------------------------------------------------------------
// LoadDotEnv
// ---------------------------------------------------------------------------

func Test_LoadDotEnv_Cases(t *testing.T) {
	t.Run("missing file is not an error", func(t *testing.T) {
		if err := LoadDotEnv(filepath.Join(t.TempDir(), ".env")); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	})

	t.Run("file values populate unset variables", func(t *testing.T) {
		clearEnv(t)
		path := writeTempFile(t, ".env", "CMS_ENDPOINT_URL=https://dotenv.test/graphql\nCMS_PREVIEW_TOKEN=from-file\n")

		if err := LoadDotEnv(path); err != nil {
			t.Fatalf("LoadDotEnv: %v", err)
		}
		// godotenv writes straight into the process environment; undo that.
		t.Cleanup(func() {
			os.Unsetenv(EnvEndpointURL)
			os.Unsetenv(EnvPreviewToken)
		})

		if got := os.Getenv(EnvEndpointURL); got != "https://dotenv.test/graphql" {
			t.Errorf("%s = %q, want %q", EnvEndpointURL, got, "https://dotenv.test/graphql")
		}
		if got := os.Getenv(EnvPreviewToken); got != "from-file" {
			t.Errorf("%s = %q, want %q", EnvPreviewToken, got, "from-file")
		}
	})

	t.Run("real environment wins over file", func(t *testing.T) {
		clearEnv(t)
		t.Setenv(EnvEndpointURL, "https://real.test/graphql")
		path := writeTempFile(t, ".env", "CMS_ENDPOINT_URL=https://dotenv.test/graphql\n")

		if err := LoadDotEnv(path); err != nil {
			t.Fatalf("LoadDotEnv: %v", err)
		}
		if got := os.Getenv(EnvEndpointURL); got != "https://real.test/graphql" {
			t.Errorf("%s = %q, want the real environment value", EnvEndpointURL, got)
		}
	})
}

// ---------------------------------------------------------------------------
// EnsureAuthToken
// ---------------------------------------------------------------------------

func Test_EnsureAuthToken_Cases(t *testing.T) {
	t.Run("token already set returns existing token unchanged", func(t *testing.T) {
		cfg := &Config{Server: ServerConfig{AuthToken: "pre-set"}}

		token, err := EnsureAuthToken(cfg)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if token != "pre-set" {
			t.Errorf("returned token = %q, want %q", token, "pre-set")
		}
	})

	t.Run("empty token generates and sets new token", func(t *testing.T) {
		cfg := &Config{}

		token, err := EnsureAuthToken(cfg)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(token) != 32 {
			t.Errorf("len(token) = %d, want 32", len(token))
		}
		if cfg.Server.AuthToken != token {
			t.Errorf("cfg.Server.AuthToken = %q, want %q (returned token)", cfg.Server.AuthToken, token)
		}
	})
}

// ---------------------------------------------------------------------------
// GenerateRandomToken
// ---------------------------------------------------------------------------

func Test_GenerateRandomToken_Cases(t *testing.T) {
	t.Run("output is valid hex encoding 16 bytes", func(t *testing.T) {
		token, err := GenerateRandomToken()
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		decoded, err := hex.DecodeString(token)
		if err != nil {
			t.Fatalf("token %q is not valid hex: %v", token, err)
		}
		if len(decoded) != 16 {
			t.Errorf("decoded byte length = %d, want 16", len(decoded))
		}
	})

	t.Run("concurrent calls all succeed with unique tokens", func(t *testing.T) {
		const goroutines = 50

		var (
			wg     sync.WaitGroup
			mu     sync.Mutex
			tokens = make(map[string]struct{}, goroutines)
		)

		wg.Add(goroutines)
		for i := 0; i < goroutines; i++ {
			go func() {
				defer wg.Done()
				token, err := GenerateRandomToken()
				if err != nil {
					t.Errorf("GenerateRandomToken: %v", err)
					return
				}
				mu.Lock()
				tokens[token] = struct{}{}
				mu.Unlock()
			}()
		}
		wg.Wait()

		if len(tokens) != goroutines {
			t.Errorf("expected %d unique tokens, got %d (collisions detected)", goroutines, len(tokens))
		}
	})
}
