package config

import (
	"strings"
	"testing"
	"time"
)

func validConfig() *Config {
	return &Config{
		Server: ServerConfig{BaseURL: "http://localhost:8080/api", Timeout: 10 * time.Second},
		UI:     UIConfig{PageSize: 10, DateFormat: "Jan 2 15:04:05", Theme: "dark"},
		Polling: PollingConfig{
			Feed:      5 * time.Second,
			Severity:  5 * time.Second,
			Offenders: 10 * time.Second,
		},
		Log: LogConfig{Level: "info"},
	}
}

func TestValidate_AcceptsDefaults(t *testing.T) {
	if err := Validate(validConfig()); err != nil {
		t.Fatalf("default-shaped config should validate: %v", err)
	}
}

func TestValidate_RejectsBadBaseURL(t *testing.T) {
	for _, bad := range []string{"", "localhost:8080", "ftp://example.com"} {
		cfg := validConfig()
		cfg.Server.BaseURL = bad
		if err := Validate(cfg); err == nil {
			t.Errorf("base_url %q should be rejected", bad)
		}
	}
}

func TestValidate_RejectsNonPositiveValues(t *testing.T) {
	cfg := validConfig()
	cfg.UI.PageSize = 0
	if err := Validate(cfg); err == nil || !strings.Contains(err.Error(), "page_size") {
		t.Errorf("zero page size should be rejected, got %v", err)
	}

	cfg = validConfig()
	cfg.Polling.Feed = 0
	if err := Validate(cfg); err == nil {
		t.Error("zero poll interval should be rejected")
	}

	cfg = validConfig()
	cfg.Server.Timeout = -time.Second
	if err := Validate(cfg); err == nil {
		t.Error("negative timeout should be rejected")
	}
}
