package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/robfig/cron/v3"
	"gopkg.in/yaml.v3"

	"github.com/jaymes17/catalyst-chart/internal/model"
)

// Config holds all application configuration.
type Config struct {
	Telegram struct {
		BotToken string `yaml:"bot_token"`
		ChatID   string `yaml:"chat_id"`
	} `yaml:"telegram"`
	Chart struct {
		DefaultRange string  `yaml:"default_range"`
		Width        float64 `yaml:"width"`
		Height       float64 `yaml:"height"`
	} `yaml:"chart"`
	News struct {
		Disabled bool          `yaml:"disabled"`
		Timeout  time.Duration `yaml:"timeout"`
		Rate     float64       `yaml:"rate"`
		Burst    int           `yaml:"burst"`
	} `yaml:"news"`
	Cache struct {
		ChartTTL time.Duration `yaml:"chart_ttl"`
		NewsTTL  time.Duration `yaml:"news_ttl"`
	} `yaml:"cache"`
	Schedule struct {
		DigestCron string `yaml:"digest_cron"`
		PruneCron  string `yaml:"prune_cron"`
	} `yaml:"schedule"`
	Watchlist struct {
		StateFile string   `yaml:"state_file"`
		Symbols   []string `yaml:"symbols"`
	} `yaml:"watchlist"`
	Database struct {
		SQLitePath string `yaml:"sqlite_path"`
	} `yaml:"database"`
	Server struct {
		Addr string `yaml:"addr"`
	} `yaml:"server"`
	Proxy string `yaml:"proxy"`
}

// Load reads config from a YAML file, then applies .env and environment variable overrides.
func Load(path string) (*Config, error) {
	LoadDotenv()
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

	cfg.applyEnv()
	cfg.applyDefaults()
	return cfg, nil
}

func (c *Config) applyEnv() {
	if v := os.Getenv("TELEGRAM_BOT_TOKEN"); v != "" {
		c.Telegram.BotToken = v
	}
	if v := os.Getenv("TELEGRAM_CHAT_ID"); v != "" {
		c.Telegram.ChatID = v
	}
	if v := os.Getenv("HTTPS_PROXY"); v != "" {
		c.Proxy = v
	}
	if v := os.Getenv("SQLITE_PATH"); v != "" {
		c.Database.SQLitePath = v
	}
	if v := os.Getenv("HTTP_ADDR"); v != "" {
		c.Server.Addr = v
	}
	if v := os.Getenv("DEFAULT_RANGE"); v != "" {
		c.Chart.DefaultRange = v
	}
	if v := os.Getenv("CRON_DIGEST"); v != "" {
		c.Schedule.DigestCron = v
	}
	if v := os.Getenv("WATCHLIST"); v != "" {
		c.Watchlist.Symbols = nil
		for _, s := range strings.Split(v, ",") {
			if s = strings.TrimSpace(s); s != "" {
				c.Watchlist.Symbols = append(c.Watchlist.Symbols, s)
			}
		}
	}
}

func (c *Config) applyDefaults() {
	if c.Chart.DefaultRange == "" {
		c.Chart.DefaultRange = string(model.Range5Y)
	}
	if c.Chart.Width == 0 {
		c.Chart.Width = 1200
	}
	if c.Chart.Height == 0 {
		c.Chart.Height = 700
	}
	if c.News.Timeout == 0 {
		c.News.Timeout = 10 * time.Second
	}
	if c.News.Rate == 0 {
		c.News.Rate = 2
	}
	if c.News.Burst == 0 {
		c.News.Burst = 2
	}
	if c.Cache.ChartTTL == 0 {
		c.Cache.ChartTTL = time.Hour
	}
	if c.Cache.NewsTTL == 0 {
		c.Cache.NewsTTL = 24 * time.Hour
	}
	if c.Schedule.DigestCron == "" {
		c.Schedule.DigestCron = "0 0 8 * * 1-5"
	}
	if c.Schedule.PruneCron == "" {
		c.Schedule.PruneCron = "0 30 3 * * *"
	}
	if c.Watchlist.StateFile == "" {
		c.Watchlist.StateFile = "data/watchlist.json"
	}
	if c.Database.SQLitePath == "" {
		c.Database.SQLitePath = "data/catalyst_chart.db"
	}
}

// Range returns the parsed default chart range.
func (c *Config) Range() model.Range {
	r, err := model.ParseRange(c.Chart.DefaultRange)
	if err != nil {
		return model.Range5Y
	}
	return r
}

// MaxCacheAge is the age past which cached responses are pruned.
func (c *Config) MaxCacheAge() time.Duration {
	return max(c.Cache.ChartTTL, c.Cache.NewsTTL)
}

// TelegramEnabled reports whether the Telegram bot is configured.
func (c *Config) TelegramEnabled() bool {
	return c.Telegram.BotToken != ""
}

// Validate checks that all required fields are set.
func (c *Config) Validate() error {
	if !c.TelegramEnabled() && c.Server.Addr == "" {
		return errors.New("either telegram.bot_token or server.addr is required")
	}
	if c.TelegramEnabled() && c.Telegram.ChatID == "" {
		return errors.New("telegram.chat_id is required when telegram.bot_token is set")
	}
	if _, err := model.ParseRange(c.Chart.DefaultRange); err != nil {
		return fmt.Errorf("chart.default_range: %w", err)
	}
	if c.Chart.Width < 100 || c.Chart.Height < 100 {
		return errors.New("chart.width and chart.height must be at least 100")
	}
	if c.News.Rate < 0 || c.News.Burst < 0 {
		return errors.New("news.rate and news.burst must not be negative")
	}
	parser := cron.NewParser(cron.Second | cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow | cron.Descriptor)
	if _, err := parser.Parse(c.Schedule.DigestCron); err != nil {
		return fmt.Errorf("schedule.digest_cron: %w", err)
	}
	if _, err := parser.Parse(c.Schedule.PruneCron); err != nil {
		return fmt.Errorf("schedule.prune_cron: %w", err)
	}
	return nil
}
