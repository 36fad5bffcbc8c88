// Package config loads the agent configuration from file and environment.
package config

import (
	"strings"
	"time"

	"github.com/rotisserie/eris"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Config holds the full application configuration. Read once at startup.
type Config struct {
	OpenAI   OpenAIConfig   `yaml:"openai" mapstructure:"openai"`
	Apify    ApifyConfig    `yaml:"apify" mapstructure:"apify"`
	Registry RegistryConfig `yaml:"registry" mapstructure:"registry"`
	Scraper  ScraperConfig  `yaml:"scraper" mapstructure:"scraper"`
	Server   ServerConfig   `yaml:"server" mapstructure:"server"`
	Log      LogConfig      `yaml:"log" mapstructure:"log"`
}

// OpenAIConfig holds the inference credentials and model names.
type OpenAIConfig struct {
	Key            string `yaml:"key" mapstructure:"key"`
	VisionModel    string `yaml:"vision_model" mapstructure:"vision_model"`
	PrefilterModel string `yaml:"prefilter_model" mapstructure:"prefilter_model"`
}

// ApifyConfig holds the post source credentials.
type ApifyConfig struct {
	Token string `yaml:"token" mapstructure:"token"`
}

// RegistryConfig holds the TrustCheck backend settings.
type RegistryConfig struct {
	BaseURL  string `yaml:"base_url" mapstructure:"base_url"`
	BotToken string `yaml:"bot_token" mapstructure:"bot_token"`
}

// ScraperConfig configures the polling loop.
type ScraperConfig struct {
	GroupURL        string `yaml:"group_url" mapstructure:"group_url"`
	MaxPostsPerRun  int    `yaml:"max_posts_per_run" mapstructure:"max_posts_per_run"`
	DaysBack        int    `yaml:"days_back" mapstructure:"days_back"`
	IntervalHours   int    `yaml:"interval_hours" mapstructure:"interval_hours"`
	CooldownMinutes int    `yaml:"cooldown_minutes" mapstructure:"cooldown_minutes"`
	PostPaceSeconds int    `yaml:"post_pace_seconds" mapstructure:"post_pace_seconds"`
}

// Interval returns the sleep between batches.
func (c ScraperConfig) Interval() time.Duration {
	return time.Duration(c.IntervalHours) * time.Hour
}

// Cooldown returns the sleep after a failed batch.
func (c ScraperConfig) Cooldown() time.Duration {
	return time.Duration(c.CooldownMinutes) * time.Minute
}

// PostPace returns the minimum gap between posts.
func (c ScraperConfig) PostPace() time.Duration {
	return time.Duration(c.PostPaceSeconds) * time.Second
}

// ServerConfig configures the HTTP trigger surface.
type ServerConfig struct {
	Port        string `yaml:"port" mapstructure:"port"`
	BearerToken string `yaml:"bearer_token" mapstructure:"bearer_token"`
}

// LogConfig configures logging.
type LogConfig struct {
	Level  string `yaml:"level" mapstructure:"level"`
	Format string `yaml:"format" mapstructure:"format"`
}

// Load reads configuration from file and environment.
func Load() (*Config, error) {
	v := viper.New()

	// Config file
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")

	// Environment
	v.SetEnvPrefix("TRUSTCHECK")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// The credentials keep their conventional unprefixed env names too.
	_ = v.BindEnv("openai.key", "TRUSTCHECK_OPENAI_KEY", "OPENAI_API_KEY")
	_ = v.BindEnv("openai.vision_model", "TRUSTCHECK_OPENAI_VISION_MODEL", "OPENAI_MODEL")
	_ = v.BindEnv("apify.token", "TRUSTCHECK_APIFY_TOKEN", "APIFY_API_KEY")
	_ = v.BindEnv("registry.base_url", "TRUSTCHECK_REGISTRY_BASE_URL", "TRUSTCHECK_API_URL")
	_ = v.BindEnv("registry.bot_token", "TRUSTCHECK_REGISTRY_BOT_TOKEN", "TRUSTCHECK_BOT_TOKEN")
	_ = v.BindEnv("scraper.group_url", "TRUSTCHECK_SCRAPER_GROUP_URL", "FACEBOOK_GROUP_URL")

	// Defaults
	v.SetDefault("openai.vision_model", "gpt-4o")
	v.SetDefault("openai.prefilter_model", "gpt-4o-mini")
	v.SetDefault("registry.base_url", "http://localhost:3001")
	v.SetDefault("scraper.group_url", "https://www.facebook.com/groups/oszustwa")
	v.SetDefault("scraper.max_posts_per_run", 50)
	v.SetDefault("scraper.days_back", 2)
	v.SetDefault("scraper.interval_hours", 2)
	v.SetDefault("scraper.cooldown_minutes", 5)
	v.SetDefault("scraper.post_pace_seconds", 3)
	v.SetDefault("server.port", "8080")
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")

	// Read config file (optional)
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, eris.Wrap(err, "config: read file")
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, eris.Wrap(err, "config: unmarshal")
	}

	return &cfg, nil
}

// Validate checks the required credentials. Called once before the loop
// starts; a failure here is fatal.
func (c *Config) Validate() error {
	if c.OpenAI.Key == "" {
		return eris.New("config: OPENAI_API_KEY is not set")
	}
	if c.Apify.Token == "" {
		return eris.New("config: APIFY_API_KEY is not set")
	}
	if c.Registry.BotToken == "" {
		return eris.New("config: TRUSTCHECK_BOT_TOKEN is not set")
	}
	return nil
}

// InitLogger initializes the global zap logger.
func InitLogger(cfg LogConfig) error {
	var zapCfg zap.Config
	if cfg.Format == "console" {
		zapCfg = zap.NewDevelopmentConfig()
	} else {
		zapCfg = zap.NewProductionConfig()
	}

	level, err := zapcore.ParseLevel(cfg.Level)
	if err != nil {
		return eris.Wrap(err, "config: parse log level")
	}
	zapCfg.Level.SetLevel(level)

	logger, err := zapCfg.Build()
	if err != nil {
		return eris.Wrap(err, "config: build logger")
	}
	zap.ReplaceGlobals(logger)

	return nil
}
