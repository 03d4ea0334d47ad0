package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	petname "github.com/dustinkirkland/golang-petname"
	"github.com/spf13/viper"
)

var ErrInvalidConfig = errors.New("invalid config")

type Config struct {
	Network     NetworkConfig     `mapstructure:"network"`
	Spectator   SpectatorConfig   `mapstructure:"spectator"`
	Player      PlayerConfig      `mapstructure:"player"`
	Development DevelopmentConfig `mapstructure:"development"`
}

// NetworkConfig covers the peer-to-peer move link.
type NetworkConfig struct {
	Host           string        `mapstructure:"host"`
	Port           int           `mapstructure:"port"`
	ConnectTimeout time.Duration `mapstructure:"connect_timeout"`
	QueueSize      int           `mapstructure:"queue_size"`
}

// SpectatorConfig covers the optional read-only HTTP/websocket server.
type SpectatorConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Host    string `mapstructure:"host"`
	Port    int    `mapstructure:"port"`
}

type PlayerConfig struct {
	Name string `mapstructure:"name"`
}

type DevelopmentConfig struct {
	Debug    bool   `mapstructure:"debug"`
	LogLevel string `mapstructure:"log_level"`
}

// Load reads config.yaml from the working directory or ./config, then
// overlays LANCHESS_* environment variables. A missing file is not an error.
func Load() (*Config, error) {
	return LoadFrom(".", "./config")
}

// LoadFrom is Load with explicit search paths.
func LoadFrom(paths ...string) (*Config, error) {
	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	for _, p := range paths {
		v.AddConfigPath(p)
	}

	// Enable environment variables
	v.SetEnvPrefix("LANCHESS")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
		// Config file not found, use defaults and environment
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if cfg.Player.Name == "" {
		cfg.Player.Name = petname.Generate(2, "-")
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("network.host", "localhost")
	v.SetDefault("network.port", 5000)
	v.SetDefault("network.connect_timeout", 5*time.Second)
	v.SetDefault("network.queue_size", 10)
	v.SetDefault("spectator.enabled", false)
	v.SetDefault("spectator.host", "localhost")
	v.SetDefault("spectator.port", 8090)
	v.SetDefault("player.name", "")
	v.SetDefault("development.debug", false)
	v.SetDefault("development.log_level", "info")
}

// Validate checks ranges the rest of the program relies on.
func (c *Config) Validate() error {
	if c.Network.Port < 1024 || c.Network.Port > 65535 {
		return fmt.Errorf("%w: network.port %d outside 1024-65535", ErrInvalidConfig, c.Network.Port)
	}
	if c.Spectator.Enabled && (c.Spectator.Port < 1 || c.Spectator.Port > 65535) {
		return fmt.Errorf("%w: spectator.port %d", ErrInvalidConfig, c.Spectator.Port)
	}
	if c.Network.ConnectTimeout <= 0 {
		return fmt.Errorf("%w: network.connect_timeout must be positive", ErrInvalidConfig)
	}
	if c.Network.QueueSize < 1 {
		return fmt.Errorf("%w: network.queue_size must be at least 1", ErrInvalidConfig)
	}
	return nil
}
