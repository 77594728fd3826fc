package core

import (
	"testing"
	"time"
)

func TestConfigValidate(t *testing.T) {
	cfg := DefaultConfig()
	if err := cfg.Validate(); err == nil {
		t.Fatalf("expected error without base_url")
	}

	cfg.BaseURL = "https://blogs.example.com/blogs/v1.0"
	if err := cfg.Validate(); err != nil {
		t.Fatalf("expected valid config, got %v", err)
	}

	cfg.BaseURL = "/relative"
	if err := cfg.Validate(); err == nil {
		t.Fatalf("expected error for relative base_url")
	}

	cfg = DefaultConfig()
	cfg.BaseURL = "http://x.test"
	cfg.RequestTimeoutMS = -1
	if err := cfg.Validate(); err == nil {
		t.Fatalf("expected error for negative timeout")
	}
}

func TestConfigRequestTimeoutFallsBackToDefault(t *testing.T) {
	cfg := Config{}
	if got := cfg.RequestTimeout(); got != 30*time.Second {
		t.Fatalf("expected 30s default, got %v", got)
	}
	cfg.RequestTimeoutMS = 1500
	if got := cfg.RequestTimeout(); got != 1500*time.Millisecond {
		t.Fatalf("expected 1.5s, got %v", got)
	}
}

func TestResolveConfigLayersRuntimeOverLoaded(t *testing.T) {
	provider := NewCfgxConfigProvider(staticRawConfigLoader{Values: map[string]any{
		"base_url":           "http://loaded.test",
		"request_timeout_ms": 5000,
	}})

	resolved, err := ResolveConfig(provider, nil, Config{BaseURL: "http://runtime.test"})
	if err != nil {
		t.Fatalf("resolve config: %v", err)
	}
	if resolved.BaseURL != "http://runtime.test" {
		t.Fatalf("expected runtime layer to win, got %q", resolved.BaseURL)
	}
	if resolved.RequestTimeoutMS != 5000 {
		t.Fatalf("expected loaded timeout retained, got %d", resolved.RequestTimeoutMS)
	}
	if resolved.SignInPath != defaultSignInPath {
		t.Fatalf("expected default sign-in path, got %q", resolved.SignInPath)
	}
	if resolved.CredentialSlot != defaultCredentialSlot {
		t.Fatalf("expected default slot, got %q", resolved.CredentialSlot)
	}
}

func TestResolveConfigRejectsMissingBaseURL(t *testing.T) {
	if _, err := ResolveConfig(nil, nil, Config{}); err == nil {
		t.Fatalf("expected validation failure without base_url")
	}
}
