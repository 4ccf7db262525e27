package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
)

func TestLoadConfig_Defaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")
	if err := os.WriteFile(path, []byte(`{"DBConfig": {"Driver": "sqlite"}}`), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if cfg.AppConfig.Port != 8080 {
		t.Errorf("expected default port 8080, got %d", cfg.AppConfig.Port)
	}
	if cfg.DBConfig.Driver != "sqlite" {
		t.Errorf("expected driver sqlite, got %q", cfg.DBConfig.Driver)
	}
	if cfg.AIConfig.Model != "gpt-4o-mini" {
		t.Errorf("expected default model, got %q", cfg.AIConfig.Model)
	}
	if cfg.SecurityConfig.SessionTTL != 168*time.Hour {
		t.Errorf("expected 168h session ttl, got %v", cfg.SecurityConfig.SessionTTL)
	}
	if cfg.IRCConfig.Enabled() {
		t.Error("irc relay should be disabled without host")
	}
}

func TestSplitChannels(t *testing.T) {
	tests := []struct {
		in   string
		want []string
	}{
		{"", nil},
		{"#oncall", []string{"#oncall"}},
		{"#oncall, #crisis ,", []string{"#oncall", "#crisis"}},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			if diff := cmp.Diff(tt.want, splitChannels(tt.in)); diff != "" {
				t.Errorf("splitChannels(%q) mismatch (-want +got):\n%s", tt.in, diff)
			}
		})
	}
}

func TestDBConfig_URLs(t *testing.T) {
	c := DBConfig{Host: "db", User: "u", Password: "p", DataBase: "heavenly", Port: 5432, SSLMode: "disable"}

	if got, want := c.DSN(), "host=db user=u password=p dbname=heavenly port=5432 sslmode=disable"; got != want {
		t.Errorf("DSN() = %q, want %q", got, want)
	}
	if got, want := c.MigrationURL(), "pgx5://u:p@db:5432/heavenly?sslmode=disable"; got != want {
		t.Errorf("MigrationURL() = %q, want %q", got, want)
	}
}
