package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestRequireEnv(t *testing.T) {
	tests := []struct {
		name      string
		key       string
		value     string
		shouldSet bool
		wantPanic bool
	}{
		{
			name:      "variable set",
			key:       "TEST_VAR",
			value:     "test_value",
			shouldSet: true,
			wantPanic: false,
		},
		{
			name:      "variable not set",
			key:       "TEST_VAR_MISSING",
			shouldSet: false,
			wantPanic: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.shouldSet {
				if err := os.Setenv(tt.key, tt.value); err != nil {
					t.Fatalf("failed to set env var: %v", err)
				}
				defer func() {
					if err := os.Unsetenv(tt.key); err != nil {
						t.Errorf("failed to unset env var: %v", err)
					}
				}()
			}

			if tt.wantPanic {
				defer func() {
					if r := recover(); r == nil {
						t.Errorf("requireEnv() should have panicked")
					}
				}()
			}

			result := requireEnv(tt.key)
			if !tt.wantPanic && result != tt.value {
				t.Errorf("requireEnv() = %v, want %v", result, tt.value)
			}
		})
	}
}

func TestMustDuration(t *testing.T) {
	tests := []struct {
		name     string
		key      string
		value    string
		def      time.Duration
		expected time.Duration
	}{
		{
			name:     "valid duration",
			key:      "TEST_DURATION",
			value:    "5s",
			def:      1 * time.Second,
			expected: 5 * time.Second,
		},
		{
			name:     "invalid duration uses default",
			key:      "TEST_DURATION_INVALID",
			value:    "invalid",
			def:      10 * time.Second,
			expected: 10 * time.Second,
		},
		{
			name:     "missing variable uses default",
			key:      "TEST_DURATION_MISSING",
			value:    "",
			def:      15 * time.Second,
			expected: 15 * time.Second,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.value != "" {
				if err := os.Setenv(tt.key, tt.value); err != nil {
					t.Fatalf("failed to set env var: %v", err)
				}
				defer func() {
					if err := os.Unsetenv(tt.key); err != nil {
						t.Errorf("failed to unset env var: %v", err)
					}
				}()
			}

			result := mustDuration(tt.key, tt.def)
			if result != tt.expected {
				t.Errorf("mustDuration() = %v, want %v", result, tt.expected)
			}
		})
	}
}

func TestMustBool(t *testing.T) {
	tests := []struct {
		name     string
		key      string
		value    string
		def      bool
		expected bool
	}{
		{
			name:     "true value",
			key:      "TEST_BOOL",
			value:    "true",
			def:      false,
			expected: true,
		},
		{
			name:     "false value",
			key:      "TEST_BOOL_FALSE",
			value:    "false",
			def:      true,
			expected: false,
		},
		{
			name:     "invalid value uses default",
			key:      "TEST_BOOL_INVALID",
			value:    "invalid",
			def:      true,
			expected: true,
		},
		{
			name:     "missing variable uses default",
			key:      "TEST_BOOL_MISSING",
			value:    "",
			def:      false,
			expected: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.value != "" {
				if err := os.Setenv(tt.key, tt.value); err != nil {
					t.Fatalf("failed to set env var: %v", err)
				}
				defer func() {
					if err := os.Unsetenv(tt.key); err != nil {
						t.Errorf("failed to unset env var: %v", err)
					}
				}()
			}

			result := mustBool(tt.key, tt.def)
			if result != tt.expected {
				t.Errorf("mustBool() = %v, want %v", result, tt.expected)
			}
		})
	}
}

func TestSplitAndTrim(t *testing.T) {
	tests := []struct {
		name     string
		value    string
		expected []string
	}{
		{name: "empty", value: "", expected: nil},
		{name: "single", value: "http://localhost:3000", expected: []string{"http://localhost:3000"}},
		{name: "spaces and quotes", value: ` "a.example" , 'b.example',,`, expected: []string{"a.example", "b.example"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := splitAndTrim(tt.value)
			if strings.Join(result, "|") != strings.Join(tt.expected, "|") {
				t.Errorf("splitAndTrim() = %v, want %v", result, tt.expected)
			}
		})
	}
}

func TestValidate(t *testing.T) {
	valid := func() Config {
		return Config{
			Store:           StoreRedis,
			RedisAddr:       "localhost:6379",
			RedisPassword:   "secret",
			SQLitePath:      "./data/icebreaker.db",
			RateLimitBurst:  30,
			RateLimitPerMin: 120,
		}
	}

	tests := []struct {
		name    string
		mutate  func(c *Config)
		wantErr bool
	}{
		{name: "redis ok", mutate: func(c *Config) {}},
		{name: "redis without addr", mutate: func(c *Config) { c.RedisAddr = "" }, wantErr: true},
		{name: "redis password required", mutate: func(c *Config) { c.RedisPasswordRequired = true; c.RedisPassword = "" }, wantErr: true},
		{name: "redis password optional", mutate: func(c *Config) { c.RedisPassword = "" }},
		{name: "sqlite ok", mutate: func(c *Config) { c.Store = StoreSQLite; c.RedisAddr = "" }},
		{name: "sqlite without path", mutate: func(c *Config) { c.Store = StoreSQLite; c.SQLitePath = "" }, wantErr: true},
		{name: "memory ok", mutate: func(c *Config) { c.Store = StoreMemory; c.RedisAddr = "" }},
		{name: "unknown store", mutate: func(c *Config) { c.Store = "mongo" }, wantErr: true},
		{name: "zero burst", mutate: func(c *Config) { c.RateLimitBurst = 0 }, wantErr: true},
		{name: "seed without interval", mutate: func(c *Config) { c.SeedFile = "seed.yaml" }, wantErr: true},
		{name: "seed with interval", mutate: func(c *Config) { c.SeedFile = "seed.yaml"; c.SeedReloadInterval = time.Hour }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := valid()
			tt.mutate(&c)
			err := c.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestRedacted(t *testing.T) {
	c := &Config{JWTSecret: "jwt", RedisUser: "default", RedisPassword: "pw", GeminiAPIKey: "key"}
	r := c.Redacted()

	for name, v := range map[string]string{"JWTSecret": r.JWTSecret, "RedisUser": r.RedisUser, "RedisPassword": r.RedisPassword, "GeminiAPIKey": r.GeminiAPIKey} {
		if v != "***REDACTED***" {
			t.Errorf("%s = %q, want redacted", name, v)
		}
	}
	if c.JWTSecret != "jwt" {
		t.Error("Redacted() modified the original config")
	}
}

func TestLoad(t *testing.T) {
	t.Setenv("ICEBREAKER_JWT_SECRET", "test-secret")
	t.Setenv("ICEBREAKER_STORE", "Memory")
	t.Setenv("ICEBREAKER_ALLOWED_ORIGINS", "http://a.test, http://b.test")
	t.Setenv("ICEBREAKER_REQUEST_TIMEOUT", "3s")

	cfg := Load()

	if cfg.Store != StoreMemory {
		t.Errorf("Store = %q, want %q", cfg.Store, StoreMemory)
	}
	if cfg.RequestTimeout != 3*time.Second {
		t.Errorf("RequestTimeout = %v", cfg.RequestTimeout)
	}
	if len(cfg.AllowedOrigins) != 2 || cfg.AllowedOrigins[1] != "http://b.test" {
		t.Errorf("AllowedOrigins = %v", cfg.AllowedOrigins)
	}
	if cfg.JWTIssuer != "icebreaker" || cfg.JWTTTL != 24*time.Hour {
		t.Errorf("JWT defaults = %q %v", cfg.JWTIssuer, cfg.JWTTTL)
	}
	if cfg.GeminiModel != "gemini-2.0-flash" || cfg.GeminiAPIKey != "" {
		t.Errorf("Gemini defaults = %q %q", cfg.GeminiModel, cfg.GeminiAPIKey)
	}
}

func TestLoadPanicsWithoutSecret(t *testing.T) {
	t.Setenv("ICEBREAKER_JWT_SECRET", "")
	t.Setenv("ICEBREAKER_STORE", StoreMemory)

	defer func() {
		if r := recover(); r == nil {
			t.Error("Load() should have panicked without ICEBREAKER_JWT_SECRET")
		}
	}()
	Load()
}

func TestLoadDotenv(t *testing.T) {
	dir := t.TempDir()
	local := filepath.Join(dir, ".env.local")
	base := filepath.Join(dir, ".env")
	if err := os.WriteFile(local, []byte("ICEBREAKER_DOTENV_A=local\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(base, []byte("ICEBREAKER_DOTENV_A=base\nICEBREAKER_DOTENV_B=base\nICEBREAKER_DOTENV_C=base\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	t.Setenv("ICEBREAKER_DOTENV_C", "env")
	for _, k := range []string{"ICEBREAKER_DOTENV_A", "ICEBREAKER_DOTENV_B"} {
		t.Setenv(k, "")
		if err := os.Unsetenv(k); err != nil {
			t.Fatal(err)
		}
	}

	loadDotenv(local, base, filepath.Join(dir, "missing.env"))

	expected := map[string]string{
		"ICEBREAKER_DOTENV_A": "local",
		"ICEBREAKER_DOTENV_B": "base",
		"ICEBREAKER_DOTENV_C": "env",
	}
	for k, want := range expected {
		if got := os.Getenv(k); got != want {
			t.Errorf("%s = %q, want %q", k, got, want)
		}
	}
}
