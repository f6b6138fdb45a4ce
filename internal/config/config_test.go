package config

import (
	"testing"
	"time"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{
		"PORT", "ENVIRONMENT", "BACKEND_BASE_URL", "JWKS_URL", "CORS_ORIGINS",
		"DEFAULT_PROVIDER", "DEFAULT_MODEL", "CACHE_DIR", "POLL_INTERVAL",
		"LOG_DIR", "DEBUG",
	} {
		t.Setenv(key, "")
	}
}

func TestLoadDefaults(t *testing.T) {
	clearEnv(t)
	cfg := Load()

	if cfg.Port != "8090" {
		t.Errorf("expected default port 8090, got %q", cfg.Port)
	}
	if cfg.JWKSURL != "http://localhost:8080/api/v1/auth/.well-known/jwks.json" {
		t.Errorf("JWKS URL not derived from backend URL: %q", cfg.JWKSURL)
	}
	if cfg.PollInterval != 3*time.Second {
		t.Errorf("expected 3s poll interval, got %v", cfg.PollInterval)
	}
	if cfg.LogDir != "" {
		t.Errorf("expected stdout-only logging by default, got LogDir %q", cfg.LogDir)
	}
	if !cfg.Debug {
		t.Error("debug must default on in dev")
	}
}

func TestLoadDebugFlag(t *testing.T) {
	tests := []struct {
		name  string
		env   string
		debug string
		want  bool
	}{
		{name: "prod defaults off", env: "prod", want: false},
		{name: "dev defaults on", env: "dev", want: true},
		{name: "prod explicit override", env: "prod", debug: "true", want: true},
		{name: "dev explicit override", env: "dev", debug: "false", want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			clearEnv(t)
			t.Setenv("ENVIRONMENT", tt.env)
			t.Setenv("DEBUG", tt.debug)
			if got := Load().Debug; got != tt.want {
				t.Errorf("Debug = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestLoadPollIntervalForms(t *testing.T) {
	clearEnv(t)

	t.Setenv("POLL_INTERVAL", "1500ms")
	if got := Load().PollInterval; got != 1500*time.Millisecond {
		t.Errorf("duration form: got %v", got)
	}

	t.Setenv("POLL_INTERVAL", "10")
	if got := Load().PollInterval; got != 10*time.Second {
		t.Errorf("bare-seconds form: got %v", got)
	}

	t.Setenv("POLL_INTERVAL", "bogus")
	if got := Load().PollInterval; got != 3*time.Second {
		t.Errorf("unparseable value must fall back to default, got %v", got)
	}
}

func TestLoadLogDir(t *testing.T) {
	clearEnv(t)
	t.Setenv("LOG_DIR", "/var/log/draftdeck")
	if got := Load().LogDir; got != "/var/log/draftdeck" {
		t.Errorf("LogDir = %q", got)
	}
}
