package config

import (
	"reflect"
	"testing"
	"time"

	env "github.com/caarlos0/env/v11"
)

func TestParseServices(t *testing.T) {
	tests := []struct {
		name        string
		input       string
		expected    map[ServiceMode]bool
		expectError bool
	}{
		{
			name:  "single service - http",
			input: "http",
			expected: map[ServiceMode]bool{
				ServiceModeHTTP: true,
			},
			expectError: false,
		},
		{
			name:  "single service - pruner",
			input: "pruner",
			expected: map[ServiceMode]bool{
				ServiceModePruner: true,
			},
			expectError: false,
		},
		{
			name:  "all services",
			input: "http,pruner",
			expected: map[ServiceMode]bool{
				ServiceModeHTTP:   true,
				ServiceModePruner: true,
			},
			expectError: false,
		},
		{
			name:  "services with spaces",
			input: " http , pruner ",
			expected: map[ServiceMode]bool{
				ServiceModeHTTP:   true,
				ServiceModePruner: true,
			},
			expectError: false,
		},
		{
			name:  "duplicate services",
			input: "http,http,pruner",
			expected: map[ServiceMode]bool{
				ServiceModeHTTP:   true,
				ServiceModePruner: true,
			},
			expectError: false,
		},
		{
			name:        "empty string",
			input:       "",
			expected:    nil,
			expectError: true,
		},
		{
			name:        "only spaces and commas",
			input:       " , , ",
			expected:    nil,
			expectError: true,
		},
		{
			name:        "invalid service name",
			input:       "http,invalid-service",
			expected:    nil,
			expectError: true,
		},
		{
			name:        "mixed valid and invalid",
			input:       "http,pruner,invalid",
			expected:    nil,
			expectError: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := ParseServices(tt.input)

			if tt.expectError {
				if err == nil {
					t.Errorf("expected error but got none")
				}
				return
			}

			if err != nil {
				t.Errorf("unexpected error: %v", err)
				return
			}

			if len(result) != len(tt.expected) {
				t.Errorf("expected %d services, got %d", len(tt.expected), len(result))
				return
			}

			for service, expected := range tt.expected {
				if result[service] != expected {
					t.Errorf("expected service %s to be %v, got %v", service, expected, result[service])
				}
			}
		})
	}
}

func TestConfig_ServiceEnabledMethods(t *testing.T) {
	tests := []struct {
		name           string
		services       string
		expectedHTTP   bool
		expectedPruner bool
	}{
		{
			name:           "default - http only",
			services:       "http",
			expectedHTTP:   true,
			expectedPruner: false,
		},
		{
			name:           "pruner only",
			services:       "pruner",
			expectedHTTP:   false,
			expectedPruner: true,
		},
		{
			name:           "both services",
			services:       "http,pruner",
			expectedHTTP:   true,
			expectedPruner: true,
		},
		{
			name:           "invalid configuration disables everything",
			services:       "invalid",
			expectedHTTP:   false,
			expectedPruner: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := AppConfig{Services: tt.services}

			if got := cfg.IsHTTPServerEnabled(); got != tt.expectedHTTP {
				t.Errorf("IsHTTPServerEnabled() = %v, expected %v", got, tt.expectedHTTP)
			}
			if got := cfg.IsPrunerEnabled(); got != tt.expectedPruner {
				t.Errorf("IsPrunerEnabled() = %v, expected %v", got, tt.expectedPruner)
			}
		})
	}
}

func TestAppConfig_ParseAuthEnv(t *testing.T) {
	t.Setenv("AUTH_MODE", "oidc")
	t.Setenv("AUTH_SESSION_DURATION", "12h")
	t.Setenv("SSO_CLIENT_ID", "studyzone-client")
	t.Setenv("SSO_CLIENT_SECRET", "super-secret")
	t.Setenv("SSO_DISCOVERY_URL", "https://login.university.edu/.well-known/openid-configuration")
	t.Setenv("SSO_SCOPE", "openid profile email")
	t.Setenv("SSO_ADMIN_GROUP", "lms-admins")
	t.Setenv("BOOTSTRAP_ADMIN_EMAIL", "root@studyzone.com")
	t.Setenv("BOOTSTRAP_ADMIN_PASSWORD", "hunter2")

	var cfg AppConfig
	if err := env.Parse(&cfg); err != nil {
		t.Fatalf("parse config: %v", err)
	}

	expected := AuthConfig{
		Mode:            AuthModeOIDC,
		SessionDuration: 12 * time.Hour,
		SSO: SSOConfig{
			ClientID:     "studyzone-client",
			ClientSecret: "super-secret",
			Scope:        "openid profile email",
			DiscoveryURL: "https://login.university.edu/.well-known/openid-configuration",
			AdminGroup:   "lms-admins",
		},
		DevAuth: DevAuthConfig{
			UserID:   "dev-user",
			Email:    "dev@studyzone.com",
			FullName: "Dev User",
			Role:     "admin",
		},
		BootstrapAdmin: BootstrapAdminConfig{
			Email:    "root@studyzone.com",
			Password: "hunter2",
			FullName: "StudyZone Admin",
		},
	}

	if !reflect.DeepEqual(cfg.Auth, expected) {
		t.Fatalf("unexpected auth configuration:\nexpected: %#v\ngot:      %#v", expected, cfg.Auth)
	}
}

func TestAuthMode_UnmarshalText(t *testing.T) {
	tests := []struct {
		input       string
		expected    AuthMode
		expectError bool
	}{
		{input: "password", expected: AuthModePassword},
		{input: "oidc", expected: AuthModeOIDC},
		{input: "mock", expected: AuthModeMock},
		{input: "OIDC", expected: AuthModeOIDC},
		{input: "ldap", expectError: true},
		{input: "", expectError: true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			var mode AuthMode
			err := mode.UnmarshalText([]byte(tt.input))

			if tt.expectError {
				if err == nil {
					t.Errorf("expected error but got none")
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if mode != tt.expected {
				t.Errorf("expected mode %q, got %q", tt.expected, mode)
			}
		})
	}
}

func TestAuthConfig_SSOEnabled(t *testing.T) {
	tests := []struct {
		name     string
		cfg      AuthConfig
		expected bool
	}{
		{
			name: "password mode with discovery URL",
			cfg: AuthConfig{
				Mode: AuthModePassword,
				SSO:  SSOConfig{DiscoveryURL: "https://login.university.edu"},
			},
			expected: true,
		},
		{
			name:     "password mode without discovery URL",
			cfg:      AuthConfig{Mode: AuthModePassword},
			expected: false,
		},
		{
			name: "mock mode ignores discovery URL",
			cfg: AuthConfig{
				Mode: AuthModeMock,
				SSO:  SSOConfig{DiscoveryURL: "https://login.university.edu"},
			},
			expected: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.cfg.SSOEnabled(); got != tt.expected {
				t.Errorf("SSOEnabled() = %v, expected %v", got, tt.expected)
			}
		})
	}
}

func TestAppConfig_SanitizeDefaults(t *testing.T) {
	var cfg AppConfig
	if err := env.Parse(&cfg); err != nil {
		t.Fatalf("parse config: %v", err)
	}
	cfg.Sanitize()

	if cfg.Auth.SessionDuration != 8*time.Hour {
		t.Errorf("expected default session duration 8h, got %v", cfg.Auth.SessionDuration)
	}
	if cfg.AI.ContextWindow != 10 {
		t.Errorf("expected default context window 10, got %d", cfg.AI.ContextWindow)
	}
	if cfg.AI.Retention != 90*24*time.Hour {
		t.Errorf("expected default retention 90d, got %v", cfg.AI.Retention)
	}
	if cfg.Storage.MaxUploadSize != 50<<20 {
		t.Errorf("expected default max upload size 50MiB, got %d", cfg.Storage.MaxUploadSize)
	}
	if cfg.Storage.DownloadTokenTTL != 5*time.Minute {
		t.Errorf("expected default download token TTL 5m, got %v", cfg.Storage.DownloadTokenTTL)
	}
}

func TestAIConfig_SanitizeClamps(t *testing.T) {
	cfg := AIConfig{
		CompletionURL:     "  https://llm.example.com/v1/chat/completions  ",
		ContextWindow:     -1,
		RequestsPerMinute: 0,
	}
	cfg.Sanitize()

	if cfg.CompletionURL != "https://llm.example.com/v1/chat/completions" {
		t.Errorf("expected trimmed completion URL, got %q", cfg.CompletionURL)
	}
	if cfg.ContextWindow != 10 {
		t.Errorf("expected context window clamped to 10, got %d", cfg.ContextWindow)
	}
	if cfg.RequestsPerMinute != 10 {
		t.Errorf("expected requests per minute clamped to 10, got %d", cfg.RequestsPerMinute)
	}
	if !cfg.IsEnabled() {
		t.Error("expected assistant enabled when completion URL is set")
	}
}

func TestObservabilityMetricsConfig_Sanitize(t *testing.T) {
	cfg := ObservabilityMetricsConfig{Enabled: true, StatsdAddress: "   "}
	cfg.Sanitize()

	if cfg.Enabled {
		t.Error("expected metrics disabled when statsd address is blank")
	}
	if cfg.IsEnabled() {
		t.Error("expected IsEnabled to be false after sanitisation")
	}
}
