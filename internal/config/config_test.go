package config

import (
	"log/slog"
	"testing"
	"time"
)

func TestLoadConfigDefaults(t *testing.T) {
	t.Setenv("DB_DRIVER", "sqlite")
	t.Setenv("AUTH_PROVIDER", "casdoor")
	t.Setenv("GEMINI_TEST_TIMEOUT", "")

	cfg, err := LoadConfig()
	if err != nil {
		t.Fatalf("LoadConfig() error = %v", err)
	}
	if cfg.Database.Driver != DriverSQLite {
		t.Fatalf("driver = %q, want sqlite", cfg.Database.Driver)
	}
	if cfg.Gemini.TestTimeout != 30*time.Second {
		t.Fatalf("test timeout = %v, want 30s", cfg.Gemini.TestTimeout)
	}
	if cfg.Gemini.AskTimeout != 90*time.Second {
		t.Fatalf("ask timeout = %v, want 90s", cfg.Gemini.AskTimeout)
	}
}

func TestLoadConfigRejectsBadValues(t *testing.T) {
	tests := []struct {
		name string
		env  map[string]string
	}{
		{name: "unknown driver", env: map[string]string{"DB_DRIVER": "mysql", "AUTH_PROVIDER": "casdoor"}},
		{name: "unknown provider", env: map[string]string{"DB_DRIVER": "sqlite", "AUTH_PROVIDER": "ldap"}},
		{name: "local without secret", env: map[string]string{"DB_DRIVER": "sqlite", "AUTH_PROVIDER": "local", "JWT_SECRET": ""}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for k, v := range tt.env {
				t.Setenv(k, v)
			}
			if _, err := LoadConfig(); err == nil {
				t.Fatalf("LoadConfig() expected error")
			}
		})
	}
}

func TestHelpers(t *testing.T) {
	t.Setenv("X_DURATION", "45")
	if got := getDuration("X_DURATION", time.Second); got != 45*time.Second {
		t.Fatalf("getDuration bare int = %v", got)
	}
	t.Setenv("X_DURATION", "2m")
	if got := getDuration("X_DURATION", time.Second); got != 2*time.Minute {
		t.Fatalf("getDuration = %v", got)
	}
	if got := splitList(" a, ,b "); len(got) != 2 || got[0] != "a" || got[1] != "b" {
		t.Fatalf("splitList = %v", got)
	}
	if parseLogLevel("WARN") != slog.LevelWarn {
		t.Fatalf("parseLogLevel WARN")
	}
}
