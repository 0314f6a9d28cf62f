package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"LiquiMind/internal/model"

	"github.com/robfig/cron/v3"
	"gopkg.in/yaml.v3"
)

// ActivityEntry is one activity evaluated for every wallet per cycle.
type ActivityEntry struct {
	Name  string `yaml:"name"`
	Count uint64 `yaml:"count"`
}

// Activity returns the normalised activity name.
func (e ActivityEntry) Activity() model.Activity {
	return model.ParseActivity(e.Name)
}

// Config holds all application configuration.
type Config struct {
	Chain struct {
		RPCURL   string        `yaml:"rpc_url"`
		APIToken string        `yaml:"api_token"`
		Signer   string        `yaml:"signer"`
		Wallets  []string      `yaml:"wallets"`
		Timeout  time.Duration `yaml:"timeout"`
	} `yaml:"chain"`
	Encryption struct {
		Key string `yaml:"key"`
	} `yaml:"encryption"`
	Generator struct {
		Provider    string        `yaml:"provider"` // chat, gemini or template
		BaseURL     string        `yaml:"base_url"`
		APIKey      string        `yaml:"api_key"`
		Model       string        `yaml:"model"`
		Temperature float64       `yaml:"temperature"`
		MaxTokens   int           `yaml:"max_tokens"`
		Timeout     time.Duration `yaml:"timeout"`
	} `yaml:"generator"`
	Storage struct {
		Backend string `yaml:"backend"` // ipfs, minio or memory
		IPFSAPI string `yaml:"ipfs_api"`
		Minio   struct {
			Endpoint  string `yaml:"endpoint"`
			AccessKey string `yaml:"access_key"`
			SecretKey string `yaml:"secret_key"`
			Bucket    string `yaml:"bucket"`
			Region    string `yaml:"region"`
			Secure    bool   `yaml:"secure"`
		} `yaml:"minio"`
		Timeout time.Duration `yaml:"timeout"`
	} `yaml:"storage"`
	Courses struct {
		BaseURL     string        `yaml:"base_url"`
		APIKey      string        `yaml:"api_key"`
		Timeout     time.Duration `yaml:"timeout"`
		MinInterval time.Duration `yaml:"min_interval"`
		Cache       struct {
			Backend       string        `yaml:"backend"` // file or redis
			File          string        `yaml:"file"`
			RedisAddr     string        `yaml:"redis_addr"`
			RedisPassword string        `yaml:"redis_password"`
			RedisDB       int           `yaml:"redis_db"`
			RedisKey      string        `yaml:"redis_key"`
			TTL           time.Duration `yaml:"ttl"`
			Grace         time.Duration `yaml:"grace"`
		} `yaml:"cache"`
	} `yaml:"courses"`
	Activity struct {
		Schedule     string        `yaml:"schedule"`
		RunOnStart   *bool         `yaml:"run_on_start"`
		DedupeWindow time.Duration `yaml:"dedupe_window"`
		// Activities overrides the per-cycle evaluation order. Empty keeps the built-in list.
		Activities []ActivityEntry `yaml:"activities"`
	} `yaml:"activity"`
	Retrain struct {
		Schedule       string        `yaml:"schedule"`
		CheckpointPath string        `yaml:"checkpoint_path"`
		TradeLimit     int           `yaml:"trade_limit"`
		LearningRate   float64       `yaml:"learning_rate"`
		Epochs         int           `yaml:"epochs"`
		Timeout        time.Duration `yaml:"timeout"`
	} `yaml:"retrain"`
	Telegram struct {
		BotToken   string `yaml:"bot_token"`
		ChatID     string `yaml:"chat_id"`
		DigestCron string `yaml:"digest_cron"`
	} `yaml:"telegram"`
	Database struct {
		SQLitePath string `yaml:"sqlite_path"`
	} `yaml:"database"`
	Proxy string `yaml:"proxy"`
}

// Load reads config from a YAML file, then applies environment variable overrides.
func Load(path string) (*Config, error) {
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

	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}
	cfg.applyDefaults()
	return cfg, nil
}

func (c *Config) applyEnv() error {
	strs := []struct {
		env string
		dst *string
	}{
		{"SUPRA_RPC", &c.Chain.RPCURL},
		{"CHAIN_API_TOKEN", &c.Chain.APIToken},
		{"SIGNER_ADDRESS", &c.Chain.Signer},
		{"ENCRYPTION_KEY", &c.Encryption.Key},
		{"GENERATOR_PROVIDER", &c.Generator.Provider},
		{"GENERATOR_API_KEY", &c.Generator.APIKey},
		{"CHAINGPT_API_KEY", &c.Courses.APIKey},
		{"STORAGE_BACKEND", &c.Storage.Backend},
		{"IPFS_API", &c.Storage.IPFSAPI},
		{"MINIO_ENDPOINT", &c.Storage.Minio.Endpoint},
		{"MINIO_ACCESS_KEY", &c.Storage.Minio.AccessKey},
		{"MINIO_SECRET_KEY", &c.Storage.Minio.SecretKey},
		{"MINIO_BUCKET", &c.Storage.Minio.Bucket},
		{"REDIS_ADDR", &c.Courses.Cache.RedisAddr},
		{"REDIS_PASSWORD", &c.Courses.Cache.RedisPassword},
		{"TELEGRAM_BOT_TOKEN", &c.Telegram.BotToken},
		{"TELEGRAM_CHAT_ID", &c.Telegram.ChatID},
		{"SQLITE_PATH", &c.Database.SQLitePath},
		{"HTTPS_PROXY", &c.Proxy},
		{"ACTIVITY_SCHEDULE", &c.Activity.Schedule},
		{"RETRAIN_SCHEDULE", &c.Retrain.Schedule},
	}
	for _, s := range strs {
		if v := os.Getenv(s.env); v != "" {
			*s.dst = v
		}
	}

	if v := os.Getenv("WALLETS"); v != "" {
		c.Chain.Wallets = splitList(v)
	}
	if v := os.Getenv("RUN_ON_START"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("RUN_ON_START: %w", err)
		}
		c.Activity.RunOnStart = &b
	}
	if v := os.Getenv("MINIO_SECURE"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("MINIO_SECURE: %w", err)
		}
		c.Storage.Minio.Secure = b
	}
	if v := os.Getenv("DEDUPE_WINDOW"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("DEDUPE_WINDOW: %w", err)
		}
		c.Activity.DedupeWindow = d
	}
	if v := os.Getenv("REDIS_DB"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("REDIS_DB: %w", err)
		}
		c.Courses.Cache.RedisDB = n
	}
	return nil
}

func (c *Config) applyDefaults() {
	if c.Chain.Timeout == 0 {
		c.Chain.Timeout = 15 * time.Second
	}
	if len(c.Chain.Wallets) == 0 && c.Chain.Signer != "" {
		c.Chain.Wallets = []string{c.Chain.Signer}
	}

	if c.Generator.Provider == "" {
		c.Generator.Provider = "chat"
	}
	if c.Generator.BaseURL == "" {
		c.Generator.BaseURL = "https://api.deepseek.com"
	}
	if c.Generator.Model == "" {
		switch c.Generator.Provider {
		case "gemini":
			c.Generator.Model = "gemini-1.5-flash"
		default:
			c.Generator.Model = "deepseek-chat"
		}
	}
	if c.Generator.Temperature == 0 {
		c.Generator.Temperature = 0.7
	}
	if c.Generator.MaxTokens == 0 {
		c.Generator.MaxTokens = 512
	}
	if c.Generator.Timeout == 0 {
		c.Generator.Timeout = 60 * time.Second
	}

	if c.Storage.Backend == "" {
		c.Storage.Backend = "ipfs"
	}
	if c.Storage.IPFSAPI == "" {
		c.Storage.IPFSAPI = "http://127.0.0.1:5001"
	}
	if c.Storage.Minio.Bucket == "" {
		c.Storage.Minio.Bucket = "liquimind-metadata"
	}
	if c.Storage.Timeout == 0 {
		c.Storage.Timeout = 30 * time.Second
	}

	if c.Courses.BaseURL == "" {
		c.Courses.BaseURL = "https://api.chaingpt.org"
	}
	if c.Courses.Timeout == 0 {
		c.Courses.Timeout = 30 * time.Second
	}
	if c.Courses.MinInterval == 0 {
		c.Courses.MinInterval = time.Second
	}
	if c.Courses.Cache.Backend == "" {
		c.Courses.Cache.Backend = "file"
	}
	if c.Courses.Cache.File == "" {
		c.Courses.Cache.File = "data/courses_cache.json"
	}
	if c.Courses.Cache.RedisKey == "" {
		c.Courses.Cache.RedisKey = "liquimind:courses"
	}
	if c.Courses.Cache.TTL == 0 {
		c.Courses.Cache.TTL = time.Hour
	}

	if c.Activity.Schedule == "" {
		c.Activity.Schedule = "@every 60s"
	}
	if c.Activity.RunOnStart == nil {
		on := true
		c.Activity.RunOnStart = &on
	}

	if c.Retrain.Schedule == "" {
		c.Retrain.Schedule = "@every 720h"
	}
	if c.Retrain.CheckpointPath == "" {
		c.Retrain.CheckpointPath = "data/trading_policy.json"
	}
	if c.Retrain.TradeLimit == 0 {
		c.Retrain.TradeLimit = 1000
	}
	if c.Retrain.LearningRate == 0 {
		c.Retrain.LearningRate = 0.05
	}
	if c.Retrain.Epochs == 0 {
		c.Retrain.Epochs = 1
	}
	if c.Retrain.Timeout == 0 {
		c.Retrain.Timeout = 15 * time.Second
	}

	if c.Telegram.DigestCron == "" {
		c.Telegram.DigestCron = "0 0 9 * * *"
	}
	if c.Database.SQLitePath == "" {
		c.Database.SQLitePath = "data/liquimind.db"
	}
}

// Validate checks that all required fields are set.
func (c *Config) Validate() error {
	if c.Chain.RPCURL == "" {
		return fmt.Errorf("chain.rpc_url is required")
	}
	if c.Chain.Signer == "" {
		return fmt.Errorf("chain.signer is required")
	}
	if c.Encryption.Key == "" {
		return fmt.Errorf("encryption.key is required")
	}
	switch c.Generator.Provider {
	case "chat", "gemini":
		if c.Generator.APIKey == "" {
			return fmt.Errorf("generator.api_key is required for provider %q", c.Generator.Provider)
		}
	case "template":
	default:
		return fmt.Errorf("generator.provider %q is not one of chat, gemini, template", c.Generator.Provider)
	}
	switch c.Storage.Backend {
	case "ipfs", "memory":
	case "minio":
		if c.Storage.Minio.Endpoint == "" || c.Storage.Minio.AccessKey == "" || c.Storage.Minio.SecretKey == "" {
			return fmt.Errorf("storage.minio endpoint, access_key and secret_key are required")
		}
	default:
		return fmt.Errorf("storage.backend %q is not one of ipfs, minio, memory", c.Storage.Backend)
	}
	switch c.Courses.Cache.Backend {
	case "file":
	case "redis":
		if c.Courses.Cache.RedisAddr == "" {
			return fmt.Errorf("courses.cache.redis_addr is required for the redis backend")
		}
	default:
		return fmt.Errorf("courses.cache.backend %q is not one of file, redis", c.Courses.Cache.Backend)
	}
	if c.Courses.Cache.TTL <= 0 || c.Courses.Cache.Grace < 0 {
		return fmt.Errorf("courses.cache ttl must be positive and grace non-negative")
	}
	if c.Activity.DedupeWindow < 0 {
		return fmt.Errorf("activity.dedupe_window must not be negative")
	}
	seen := make(map[model.Activity]bool, len(c.Activity.Activities))
	for i, e := range c.Activity.Activities {
		a := e.Activity()
		if a == model.ActivityCustom {
			return fmt.Errorf("activity.activities[%d]: unknown activity %q", i, e.Name)
		}
		if e.Count == 0 {
			return fmt.Errorf("activity.activities[%d]: count must be positive", i)
		}
		if seen[a] {
			return fmt.Errorf("activity.activities[%d]: duplicate activity %q", i, a)
		}
		seen[a] = true
	}
	if c.Retrain.TradeLimit <= 0 {
		return fmt.Errorf("retrain.trade_limit must be positive")
	}
	if _, err := ParseSchedule(c.Activity.Schedule); err != nil {
		return fmt.Errorf("activity.schedule: %w", err)
	}
	if _, err := ParseSchedule(c.Retrain.Schedule); err != nil {
		return fmt.Errorf("retrain.schedule: %w", err)
	}
	if (c.Telegram.BotToken == "") != (c.Telegram.ChatID == "") {
		return fmt.Errorf("telegram.bot_token and telegram.chat_id must be set together")
	}
	return nil
}

// TelegramEnabled reports whether operator notifications are configured.
func (c *Config) TelegramEnabled() bool {
	return c.Telegram.BotToken != "" && c.Telegram.ChatID != ""
}

var scheduleParser = cron.NewParser(
	cron.SecondOptional | cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow | cron.Descriptor,
)

// ParseSchedule accepts a cron expression (optional seconds field) or a
// descriptor such as "@every 60s" or "@daily".
func ParseSchedule(spec string) (cron.Schedule, error) {
	return scheduleParser.Parse(spec)
}

func splitList(v string) []string {
	var out []string
	for _, p := range strings.Split(v, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
