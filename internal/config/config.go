package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config holds all application configuration.
type Config struct {
	Tickers []string `yaml:"tickers"`
	Signal  struct {
		ShortWindow int `yaml:"short_window"`
		LongWindow  int `yaml:"long_window"`
		HistoryDays int `yaml:"history_days"`
	} `yaml:"signal"`
	Schedule struct {
		DailyCron string `yaml:"daily_cron"`
	} `yaml:"schedule"`
	Database struct {
		SQLitePath string `yaml:"sqlite_path"`
	} `yaml:"database"`
	Notifications struct {
		EventsLogPath  string `yaml:"events_log_path"`
		WebhookURL     string `yaml:"webhook_url"`
		WebhooksFile   string `yaml:"webhooks_file"`
		DesktopEnabled bool   `yaml:"desktop_enabled"`
		Email          struct {
			Enabled   bool   `yaml:"enabled"`
			Sender    string `yaml:"sender"`
			Password  string `yaml:"password"`
			Recipient string `yaml:"recipient"`
			SMTPHost  string `yaml:"smtp_host"`
			SMTPPort  int    `yaml:"smtp_port"`
		} `yaml:"email"`
	} `yaml:"notifications"`
	API struct {
		ListenAddr string `yaml:"listen_addr"`
	} `yaml:"api"`
	Proxy string `yaml:"proxy"`
}

// Load reads config from a YAML file, then applies .env and environment
// variable overrides, then fills defaults.
func Load(path string) (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{}

	data, err := os.ReadFile(path)
	if err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("read config: %w", err)
	}
	if len(data) > 0 {
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config: %w", err)
		}
	}

	// Environment variable overrides
	if v := os.Getenv("CROSSWATCH_TICKERS"); v != "" {
		cfg.Tickers = nil
		for _, t := range strings.Split(v, ",") {
			if t = strings.TrimSpace(t); t != "" {
				cfg.Tickers = append(cfg.Tickers, strings.ToUpper(t))
			}
		}
	}
	if v := os.Getenv("CROSSWATCH_WEBHOOK_URL"); v != "" {
		cfg.Notifications.WebhookURL = v
	}
	if v := os.Getenv("CROSSWATCH_EMAIL_ENABLED"); v != "" {
		cfg.Notifications.Email.Enabled = strings.EqualFold(v, "true")
	}
	if v := os.Getenv("CROSSWATCH_EMAIL_SENDER"); v != "" {
		cfg.Notifications.Email.Sender = v
	}
	if v := os.Getenv("CROSSWATCH_EMAIL_PASSWORD"); v != "" {
		cfg.Notifications.Email.Password = v
	}
	if v := os.Getenv("CROSSWATCH_EMAIL_RECIPIENT"); v != "" {
		cfg.Notifications.Email.Recipient = v
	}
	if v := os.Getenv("SQLITE_PATH"); v != "" {
		cfg.Database.SQLitePath = v
	}
	if v := os.Getenv("CRON_DAILY"); v != "" {
		cfg.Schedule.DailyCron = v
	}
	if v := os.Getenv("API_ADDR"); v != "" {
		cfg.API.ListenAddr = v
	}
	if v := os.Getenv("HTTPS_PROXY"); v != "" {
		cfg.Proxy = v
	}
	if v := os.Getenv("SHORT_WINDOW"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.Signal.ShortWindow = n
		}
	}
	if v := os.Getenv("LONG_WINDOW"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.Signal.LongWindow = n
		}
	}

	// Defaults. Tickers get none: naming them is the operator's job and
	// Validate rejects an empty list.
	if cfg.Signal.ShortWindow == 0 {
		cfg.Signal.ShortWindow = 5
	}
	if cfg.Signal.LongWindow == 0 {
		cfg.Signal.LongWindow = 30
	}
	if cfg.Signal.HistoryDays == 0 {
		cfg.Signal.HistoryDays = 365
	}
	if cfg.Schedule.DailyCron == "" {
		// 17:30 Mon-Fri, after US market close
		cfg.Schedule.DailyCron = "0 30 17 * * 1-5"
	}
	if cfg.Database.SQLitePath == "" {
		cfg.Database.SQLitePath = "data/crosswatch.db"
	}
	if cfg.Notifications.EventsLogPath == "" {
		cfg.Notifications.EventsLogPath = "logs/crossover_events.log"
	}
	if cfg.Notifications.WebhooksFile == "" {
		cfg.Notifications.WebhooksFile = "data/webhooks.json"
	}
	if cfg.Notifications.Email.SMTPHost == "" {
		cfg.Notifications.Email.SMTPHost = "smtp.gmail.com"
	}
	if cfg.Notifications.Email.SMTPPort == 0 {
		cfg.Notifications.Email.SMTPPort = 587
	}
	if cfg.API.ListenAddr == "" {
		cfg.API.ListenAddr = ":8080"
	}

	return cfg, nil
}

// Validate checks invariants that must hold before anything starts.
// A short window that is not strictly smaller than the long window is a
// fatal misconfiguration, not a per-call error.
func (c *Config) Validate() error {
	if len(c.Tickers) == 0 {
		return fmt.Errorf("tickers must not be empty")
	}
	for _, t := range c.Tickers {
		if strings.TrimSpace(t) == "" {
			return fmt.Errorf("tickers must not contain blank entries")
		}
	}
	if c.Signal.ShortWindow < 1 || c.Signal.LongWindow < 1 {
		return fmt.Errorf("signal windows must be >= 1 (short=%d long=%d)", c.Signal.ShortWindow, c.Signal.LongWindow)
	}
	if c.Signal.ShortWindow >= c.Signal.LongWindow {
		return fmt.Errorf("signal.short_window (%d) must be smaller than signal.long_window (%d)",
			c.Signal.ShortWindow, c.Signal.LongWindow)
	}
	if c.Signal.HistoryDays < c.Signal.LongWindow {
		return fmt.Errorf("signal.history_days (%d) must cover at least the long window (%d)",
			c.Signal.HistoryDays, c.Signal.LongWindow)
	}
	return nil
}
