package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/spf13/pflag"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv(SecretEnv, "")
	t.Setenv("CRAWLER_HASH_SECRET", "")

	cfg, err := Load("", nil)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Crawler.Delay != time.Second {
		t.Fatalf("expected 1s delay, got %v", cfg.Crawler.Delay)
	}
	if cfg.Crawler.RequestTimeout != 15*time.Second {
		t.Fatalf("expected 15s timeout, got %v", cfg.Crawler.RequestTimeout)
	}
	if cfg.Crawler.RespectRobots {
		t.Fatal("expected robots to be ignored by default")
	}
	if cfg.Input.StdinMode != StdinModeExtract {
		t.Fatalf("expected extract stdin mode, got %q", cfg.Input.StdinMode)
	}
	if cfg.Hash.Secret != "" || len(cfg.SecretKey()) != 0 {
		t.Fatalf("expected empty secret, got %q", cfg.Hash.Secret)
	}
	if cfg.Crawler.UserAgent == "" {
		t.Fatal("expected default user agent")
	}
}

func TestLoadWithFileOverrides(t *testing.T) {
	t.Setenv(SecretEnv, "")
	t.Setenv("CRAWLER_HASH_SECRET", "")

	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	configYAML := `
crawler:
  user_agent: real-agent
  delay: 3s
  request_timeout: 45s
  respect_robots: true
  max_body_bytes: 1024
hash:
  secret: file-secret
input:
  stdin_mode: URL
logging:
  development: true
  level: debug
metrics:
  textfile: /tmp/bracket.prom
`
	if err := os.WriteFile(path, []byte(configYAML), 0o600); err != nil {
		t.Fatalf("failed to write config: %v", err)
	}

	cfg, err := Load(path, nil)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Crawler.UserAgent != "real-agent" || !cfg.Crawler.RespectRobots {
		t.Fatalf("expected crawler overrides to apply: %+v", cfg.Crawler)
	}
	if cfg.Crawler.Delay != 3*time.Second || cfg.Crawler.RequestTimeout != 45*time.Second {
		t.Fatalf("expected duration overrides, got %+v", cfg.Crawler)
	}
	if cfg.Crawler.MaxBodyBytes != 1024 {
		t.Fatalf("expected max body 1024, got %d", cfg.Crawler.MaxBodyBytes)
	}
	if string(cfg.SecretKey()) != "file-secret" {
		t.Fatalf("expected file secret, got %q", cfg.Hash.Secret)
	}
	if cfg.Input.StdinMode != StdinModeURL {
		t.Fatalf("expected normalized url mode, got %q", cfg.Input.StdinMode)
	}
	if !cfg.Logging.Development || cfg.Logging.Level != "debug" {
		t.Fatalf("expected logging overrides, got %+v", cfg.Logging)
	}
	if cfg.Metrics.Textfile != "/tmp/bracket.prom" {
		t.Fatalf("expected metrics textfile, got %q", cfg.Metrics.Textfile)
	}
}

func TestLoadSecretFromEnvironment(t *testing.T) {
	t.Setenv("CRAWLER_HASH_SECRET", "")
	t.Setenv(SecretEnv, "test-secret")

	cfg, err := Load("", nil)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Hash.Secret != "test-secret" {
		t.Fatalf("expected secret from %s, got %q", SecretEnv, cfg.Hash.Secret)
	}
}

func TestLoadPrefixedSecretWins(t *testing.T) {
	t.Setenv("CRAWLER_HASH_SECRET", "prefixed")
	t.Setenv(SecretEnv, "legacy")

	cfg, err := Load("", nil)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Hash.Secret != "prefixed" {
		t.Fatalf("expected prefixed secret, got %q", cfg.Hash.Secret)
	}
}

func TestLoadEnvOverride(t *testing.T) {
	t.Setenv("CRAWLER_CRAWLER_DELAY", "250ms")

	cfg, err := Load("", nil)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Crawler.Delay != 250*time.Millisecond {
		t.Fatalf("expected env delay, got %v", cfg.Crawler.Delay)
	}
}

func TestLoadFlagsOverrideFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	if err := os.WriteFile(path, []byte("crawler:\n  delay: 5s\n  user_agent: from-file\n"), 0o600); err != nil {
		t.Fatalf("failed to write config: %v", err)
	}

	fs := pflag.NewFlagSet("test", pflag.ContinueOnError)
	RegisterFlags(fs)
	if err := fs.Parse([]string{"--delay=0s", "--stdin-mode=url", "--timeout=2s"}); err != nil {
		t.Fatalf("parse flags: %v", err)
	}

	cfg, err := Load(path, fs)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Crawler.Delay != 0 {
		t.Fatalf("expected flag delay 0, got %v", cfg.Crawler.Delay)
	}
	if cfg.Crawler.RequestTimeout != 2*time.Second {
		t.Fatalf("expected flag timeout 2s, got %v", cfg.Crawler.RequestTimeout)
	}
	if cfg.Input.StdinMode != StdinModeURL {
		t.Fatalf("expected flag stdin mode, got %q", cfg.Input.StdinMode)
	}
	if cfg.Crawler.UserAgent != "from-file" {
		t.Fatalf("expected unchanged flag to defer to file, got %q", cfg.Crawler.UserAgent)
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "nope.yaml"), nil); err == nil {
		t.Fatal("expected missing config file to fail")
	}
}

func TestConfigValidateErrors(t *testing.T) {
	t.Parallel()

	base := Config{
		Crawler: CrawlerConfig{UserAgent: "ua", Delay: time.Second, RequestTimeout: time.Second},
		Input:   InputConfig{StdinMode: StdinModeExtract},
	}
	if err := base.Validate(); err != nil {
		t.Fatalf("expected base config to be valid, got %v", err)
	}

	tests := []struct {
		name string
		cfg  Config
		want string
	}{
		{
			name: "missing user agent",
			cfg: func() Config {
				c := base
				c.Crawler.UserAgent = " "
				return c
			}(),
			want: "crawler.user_agent",
		},
		{
			name: "negative delay",
			cfg: func() Config {
				c := base
				c.Crawler.Delay = -time.Second
				return c
			}(),
			want: "crawler.delay",
		},
		{
			name: "zero timeout",
			cfg: func() Config {
				c := base
				c.Crawler.RequestTimeout = 0
				return c
			}(),
			want: "crawler.request_timeout",
		},
		{
			name: "negative body limit",
			cfg: func() Config {
				c := base
				c.Crawler.MaxBodyBytes = -1
				return c
			}(),
			want: "crawler.max_body_bytes",
		},
		{
			name: "unknown stdin mode",
			cfg: func() Config {
				c := base
				c.Input.StdinMode = "lines"
				return c
			}(),
			want: "input.stdin_mode",
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			err := tt.cfg.Validate()
			if err == nil || !strings.Contains(err.Error(), tt.want) {
				t.Fatalf("expected error containing %q, got %v", tt.want, err)
			}
		})
	}
}
