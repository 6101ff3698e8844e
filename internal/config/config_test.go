package config

import (
	"testing"
	"time"
)

func TestLoadDefaultsInDev(t *testing.T) {
	t.Setenv("APP_ENV", "dev")
	t.Setenv("JWT_SECRET", "")
	t.Setenv("STORE_DRIVER", "memory")
	t.Setenv("REQUEST_TIMEOUT_MS", "1500")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if cfg.JWTSecret != devSecret {
		t.Fatalf("expected dev secret fallback, got %q", cfg.JWTSecret)
	}
	if cfg.RequestTimeout != 1500*time.Millisecond {
		t.Fatalf("got timeout %v", cfg.RequestTimeout)
	}
	if cfg.Port != 3000 {
		t.Fatalf("got port %d, want 3000", cfg.Port)
	}
}

func TestLoadRequiresSecretOutsideDev(t *testing.T) {
	t.Setenv("APP_ENV", "prod")
	t.Setenv("JWT_SECRET", "")
	t.Setenv("STORE_DRIVER", "postgres")

	if _, err := Load(); err == nil {
		t.Fatalf("expected error when JWT_SECRET is missing in prod")
	}
}

func TestLoadRejectsUnknownDriver(t *testing.T) {
	t.Setenv("APP_ENV", "dev")
	t.Setenv("STORE_DRIVER", "cassandra")

	if _, err := Load(); err == nil {
		t.Fatalf("expected error for unknown driver")
	}
}

func TestSplitList(t *testing.T) {
	got := splitList(" http://a.test , ,http://b.test")
	if len(got) != 2 || got[0] != "http://a.test" || got[1] != "http://b.test" {
		t.Fatalf("unexpected list: %#v", got)
	}
	if splitList("") != nil {
		t.Fatalf("expected nil for empty input")
	}
}

func TestGetEnvFloatFallsBackOnGarbage(t *testing.T) {
	t.Setenv("OTEL_SAMPLE_RATIO", "0.25")
	if got := getEnvFloat("OTEL_SAMPLE_RATIO", 1); got != 0.25 {
		t.Fatalf("got %v, want 0.25", got)
	}

	t.Setenv("OTEL_SAMPLE_RATIO", "quarter")
	if got := getEnvFloat("OTEL_SAMPLE_RATIO", 1); got != 1 {
		t.Fatalf("got %v, want fallback 1", got)
	}
}

func TestLoadTrustedProxies(t *testing.T) {
	t.Setenv("APP_ENV", "dev")
	t.Setenv("STORE_DRIVER", "memory")

	t.Setenv("TRUSTED_PROXIES", "10.0.0.0/8, 192.168.1.7")
	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if len(cfg.TrustedProxies) != 2 || cfg.TrustedProxies[1] != "192.168.1.7" {
		t.Fatalf("got proxies %v", cfg.TrustedProxies)
	}

	t.Setenv("TRUSTED_PROXIES", "not-an-ip")
	if _, err := Load(); err == nil {
		t.Fatalf("expected an error for a malformed proxy entry")
	}

	t.Setenv("TRUSTED_PROXIES", "")
	cfg, err = Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.TrustedProxies != nil {
		t.Fatalf("empty TRUSTED_PROXIES should trust nothing, got %v", cfg.TrustedProxies)
	}
}
