// Package config loads and validates crawler configuration via Viper.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// Stdin handling modes.
const (
	// StdinModeExtract runs standard input through the bracket extractor.
	StdinModeExtract = "extract"
	// StdinModeURL treats each non-blank line of standard input as a URL.
	StdinModeURL = "url"
)

// SecretEnv is the legacy environment variable holding the hash key.
const SecretEnv = "IM_SECRET"

// Config captures all configuration knobs loaded via Viper.
type Config struct {
	Crawler CrawlerConfig `mapstructure:"crawler"`
	Hash    HashConfig    `mapstructure:"hash"`
	Input   InputConfig   `mapstructure:"input"`
	Logging LoggingConfig `mapstructure:"logging"`
	Metrics MetricsConfig `mapstructure:"metrics"`
}

// CrawlerConfig governs fetch behavior.
type CrawlerConfig struct {
	UserAgent      string        `mapstructure:"user_agent"`
	Delay          time.Duration `mapstructure:"delay"`
	RequestTimeout time.Duration `mapstructure:"request_timeout"`
	RespectRobots  bool          `mapstructure:"respect_robots"`
	MaxBodyBytes   int           `mapstructure:"max_body_bytes"`
}

// HashConfig holds the email digest key.
type HashConfig struct {
	Secret string `mapstructure:"secret"`
}

// InputConfig controls how standard input is interpreted.
type InputConfig struct {
	StdinMode string `mapstructure:"stdin_mode"`
}

// LoggingConfig toggles zap development features.
type LoggingConfig struct {
	Development bool   `mapstructure:"development"`
	Level       string `mapstructure:"level"`
}

// MetricsConfig points at an optional Prometheus textfile.
type MetricsConfig struct {
	Textfile string `mapstructure:"textfile"`
}

// flagKeys maps CLI flag names to config keys.
var flagKeys = map[string]string{
	"delay":            "crawler.delay",
	"timeout":          "crawler.request_timeout",
	"user-agent":       "crawler.user_agent",
	"respect-robots":   "crawler.respect_robots",
	"stdin-mode":       "input.stdin_mode",
	"dev":              "logging.development",
	"log-level":        "logging.level",
	"metrics-textfile": "metrics.textfile",
}

// RegisterFlags defines the CLI flags understood by Load.
func RegisterFlags(fs *pflag.FlagSet) {
	fs.Duration("delay", time.Second, "pause between consecutive fetches")
	fs.Duration("timeout", 15*time.Second, "per-request timeout")
	fs.String("user-agent", defaultUserAgent, "User-Agent header sent with each request")
	fs.Bool("respect-robots", false, "honor robots.txt before fetching")
	fs.String("stdin-mode", StdinModeExtract, "how to read standard input: extract or url")
	fs.Bool("dev", false, "human-readable development logging")
	fs.String("log-level", "", "minimum log level (debug, info, warn, error)")
	fs.String("metrics-textfile", "", "write Prometheus metrics to this file when the run ends")
}

const defaultUserAgent = "bracket-crawler/1.0 (+https://github.com/JakeFAU/bracket-crawler)"

// Load builds a Config from disk, environment, and any flags registered with RegisterFlags.
func Load(path string, flags *pflag.FlagSet) (Config, error) {
	v := viper.New()
	v.SetEnvPrefix("CRAWLER")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	if err := v.BindEnv("hash.secret", "CRAWLER_HASH_SECRET", SecretEnv); err != nil {
		return Config{}, fmt.Errorf("bind secret env: %w", err)
	}

	setDefaults(v)

	if flags != nil {
		for name, key := range flagKeys {
			flag := flags.Lookup(name)
			if flag == nil {
				continue
			}
			if err := v.BindPFlag(key, flag); err != nil {
				return Config{}, fmt.Errorf("bind flag %s: %w", name, err)
			}
		}
	}

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("read config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("unmarshal config: %w", err)
	}
	cfg.Input.StdinMode = strings.ToLower(strings.TrimSpace(cfg.Input.StdinMode))

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}

	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("crawler.user_agent", defaultUserAgent)
	v.SetDefault("crawler.delay", "1s")
	v.SetDefault("crawler.request_timeout", "15s")
	v.SetDefault("crawler.respect_robots", false)
	v.SetDefault("crawler.max_body_bytes", 10*1024*1024)
	v.SetDefault("hash.secret", "")
	v.SetDefault("input.stdin_mode", StdinModeExtract)
	v.SetDefault("logging.development", false)
	v.SetDefault("logging.level", "")
	v.SetDefault("metrics.textfile", "")
}

// Validate enforces required values and reasonable limits.
func (c Config) Validate() error {
	if strings.TrimSpace(c.Crawler.UserAgent) == "" {
		return fmt.Errorf("crawler.user_agent must be set")
	}
	if c.Crawler.Delay < 0 {
		return fmt.Errorf("crawler.delay must be >= 0")
	}
	if c.Crawler.RequestTimeout <= 0 {
		return fmt.Errorf("crawler.request_timeout must be > 0")
	}
	if c.Crawler.MaxBodyBytes < 0 {
		return fmt.Errorf("crawler.max_body_bytes must be >= 0")
	}
	switch c.Input.StdinMode {
	case StdinModeExtract, StdinModeURL:
	default:
		return fmt.Errorf("input.stdin_mode must be %q or %q, got %q", StdinModeExtract, StdinModeURL, c.Input.StdinMode)
	}
	return nil
}

// SecretKey returns the hash key bytes; empty when no secret is configured.
func (c Config) SecretKey() []byte {
	return []byte(c.Hash.Secret)
}
