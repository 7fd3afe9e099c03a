package conf

import (
	"fmt"
	"time"

	"github.com/spf13/viper"

	"github.com/hareeshbabu82ns/devhub-search/internal/pkg/database"
	"github.com/hareeshbabu82ns/devhub-search/internal/pkg/logger"
	"github.com/hareeshbabu82ns/devhub-search/internal/pkg/redis"
)

type Config struct {
	Server   ServerConfig
	Database database.Config
	Redis    redis.Config
	Log      logger.Config
	Auth     AuthConfig
	Search   SearchConfig
}

type ServerConfig struct {
	Host string `mapstructure:"host"`
	Port int    `mapstructure:"port"`
}

func (c *ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

type AuthConfig struct {
	JWTSecret string        `mapstructure:"jwt_secret"`
	JWTIssuer string        `mapstructure:"jwt_issuer"`
	TokenTTL  time.Duration `mapstructure:"token_ttl"`
}

// SearchConfig tunes the interactive search pipeline
type SearchConfig struct {
	DebounceWindow time.Duration `mapstructure:"debounce_window"`
	CacheTTL       time.Duration `mapstructure:"cache_ttl"`
	MaxRetries     int           `mapstructure:"max_retries"`
	RetryBackoff   time.Duration `mapstructure:"retry_backoff"`
	DefaultLimit   int           `mapstructure:"default_limit"`
	SessionTTL     time.Duration `mapstructure:"session_ttl"`
}

func LoadConfig(path string) (*Config, error) {
	viper.SetConfigFile(path)
	viper.AutomaticEnv()

	setDefaults()

	if err := viper.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	var config Config
	if err := viper.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	return &config, nil
}

func setDefaults() {
	viper.SetDefault("server.host", "0.0.0.0")
	viper.SetDefault("server.port", 8080)

	viper.SetDefault("log.level", "info")
	viper.SetDefault("log.format", "json")
	viper.SetDefault("log.output", "console")

	viper.SetDefault("search.debounce_window", 300*time.Millisecond)
	viper.SetDefault("search.cache_ttl", time.Minute)
	viper.SetDefault("search.max_retries", 2)
	viper.SetDefault("search.retry_backoff", 200*time.Millisecond)
	viper.SetDefault("search.default_limit", 20)
	viper.SetDefault("search.session_ttl", 10*time.Minute)
}
