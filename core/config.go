package core

import (
	"fmt"
	"net/url"
	"strings"
	"time"
)

const (
	defaultSignInPath           = "/login"
	defaultRequestTimeoutMS     = 30_000
	defaultMaxResponseBodyBytes = 10 << 20 // 10 MiB
	defaultCredentialSlot       = "default"
)

type Config struct {
	// BaseURL is the root of the blog platform API, e.g.
	// "https://blogs.example.com/blogs/v1.0".
	BaseURL string `koanf:"base_url" mapstructure:"base_url"`

	// SignInPath is where the route guard sends anonymous visitors.
	SignInPath string `koanf:"sign_in_path" mapstructure:"sign_in_path"`

	RequestTimeoutMS     int   `koanf:"request_timeout_ms" mapstructure:"request_timeout_ms"`
	MaxResponseBodyBytes int64 `koanf:"max_response_body_bytes" mapstructure:"max_response_body_bytes"`

	// CredentialSlot names the persisted credential slot so several clients
	// can share one store without clobbering each other.
	CredentialSlot string `koanf:"credential_slot" mapstructure:"credential_slot"`
}

func DefaultConfig() Config {
	return Config{
		SignInPath:           defaultSignInPath,
		RequestTimeoutMS:     defaultRequestTimeoutMS,
		MaxResponseBodyBytes: defaultMaxResponseBodyBytes,
		CredentialSlot:       defaultCredentialSlot,
	}
}

func (c Config) Validate() error {
	trimmed := strings.TrimSpace(c.BaseURL)
	if trimmed == "" {
		return fmt.Errorf("core: base_url is required")
	}
	parsed, err := url.Parse(trimmed)
	if err != nil {
		return fmt.Errorf("core: base_url is invalid: %w", err)
	}
	if parsed.Scheme == "" || parsed.Host == "" {
		return fmt.Errorf("core: base_url must be absolute, got %q", trimmed)
	}
	if strings.TrimSpace(c.SignInPath) == "" {
		return fmt.Errorf("core: sign_in_path is required")
	}
	if c.RequestTimeoutMS < 0 {
		return fmt.Errorf("core: request_timeout_ms must not be negative")
	}
	if c.MaxResponseBodyBytes < 0 {
		return fmt.Errorf("core: max_response_body_bytes must not be negative")
	}
	if strings.TrimSpace(c.CredentialSlot) == "" {
		return fmt.Errorf("core: credential_slot is required")
	}
	return nil
}

func (c Config) RequestTimeout() time.Duration {
	if c.RequestTimeoutMS <= 0 {
		return defaultRequestTimeoutMS * time.Millisecond
	}
	return time.Duration(c.RequestTimeoutMS) * time.Millisecond
}
