// Package config loads runtime settings from the environment, reading a
// .env file first when one is present.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

type Config struct {
	DiscordToken      string   `env:"DISCORD_TOKEN,required,notEmpty"`
	DeveloperID       string   `env:"DEVELOPER_ID"`
	GuildBlacklist    []string `env:"DISCORD_GUILD_BLACKLIST" envSeparator:","`
	InitSlashCommands bool     `env:"INIT_SLASH_COMMANDS" envDefault:"true"`

	StoragePath     string `env:"STORAGE_PATH" envDefault:"data/datastore.json"`
	CommandCacheDir string `env:"COMMAND_CACHE_DIR" envDefault:"data/commands"`

	ThreadPoolSize int           `env:"THREAD_POOL_SIZE" envDefault:"5"`
	QueueSize      int           `env:"QUEUE_SIZE" envDefault:"100"`
	ShutdownGrace  time.Duration `env:"SHUTDOWN_GRACE" envDefault:"10s"`
	HandlerTimeout time.Duration `env:"HANDLER_TIMEOUT" envDefault:"2m"`

	FeatureModeration bool `env:"FEATURE_MODERATION" envDefault:"true"`

	MetricsAddr string `env:"METRICS_ADDR" envDefault:":9464"`

	Log LogConfig
}

// LogConfig drives internal/logging.
type LogConfig struct {
	Level      string `env:"LOG_LEVEL" envDefault:"info"`
	File       string `env:"LOG_FILE"`
	MaxSizeMB  int    `env:"LOG_MAX_SIZE_MB" envDefault:"50"`
	MaxBackups int    `env:"LOG_MAX_BACKUPS" envDefault:"3"`
	MaxAgeDays int    `env:"LOG_MAX_AGE_DAYS" envDefault:"28"`
}

// Load reads .env (if any) and parses the environment.
func Load(files ...string) (*Config, error) {
	if err := godotenv.Load(files...); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("read env file: %w", err)
	}
	cfg, err := env.ParseAs[Config]()
	if err != nil {
		return nil, err
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) validate() error {
	if c.ThreadPoolSize < 1 {
		return fmt.Errorf("THREAD_POOL_SIZE must be at least 1, got %d", c.ThreadPoolSize)
	}
	if c.QueueSize < 1 {
		return fmt.Errorf("QUEUE_SIZE must be at least 1, got %d", c.QueueSize)
	}
	if c.ShutdownGrace <= 0 {
		return fmt.Errorf("SHUTDOWN_GRACE must be positive, got %s", c.ShutdownGrace)
	}
	return nil
}

// Blacklisted reports whether guildID is on the guild blacklist.
func (c *Config) Blacklisted(guildID string) bool {
	for _, id := range c.GuildBlacklist {
		if id == guildID {
			return true
		}
	}
	return false
}
