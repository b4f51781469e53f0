package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/mitchellh/go-homedir"
	"github.com/spf13/viper"
)

// Config holds application configuration.
type Config struct {
	Remote  RemoteConfig  `mapstructure:"remote"`
	Preview PreviewConfig `mapstructure:"preview"`
	Log     LogConfig     `mapstructure:"log"`
	UI      UIConfig      `mapstructure:"ui"`
}

// RemoteConfig points at the query service.
type RemoteConfig struct {
	BaseURL string `mapstructure:"base_url"`
}

// PreviewConfig controls evidence previews.
type PreviewConfig struct {
	Placeholder string        `mapstructure:"placeholder"`
	CacheTTL    time.Duration `mapstructure:"cache_ttl"`
}

// LogConfig holds the debug log settings.
type LogConfig struct {
	Path    string `mapstructure:"path"`
	Verbose bool   `mapstructure:"verbose"`
}

// UIConfig holds presentation settings.
type UIConfig struct {
	Theme string `mapstructure:"theme"`
}

const (
	ThemeAuto  = "auto"
	ThemeDark  = "dark"
	ThemeLight = "light"
)

// New returns a viper instance with defaults, config file lookup and env
// overrides wired. Flags may be bound on it before calling Load.
func New() *viper.Viper {
	// .env is optional, the same way the shell environment is
	_ = godotenv.Load()

	v := viper.New()

	v.SetDefault("remote.base_url", "http://localhost:5000")
	v.SetDefault("preview.placeholder", "/fallback-preview.png")
	v.SetDefault("preview.cache_ttl", "10m")
	v.SetDefault("log.path", "~/.docchat/docchat.log")
	v.SetDefault("log.verbose", false)
	v.SetDefault("ui.theme", ThemeAuto)

	v.SetConfigType("toml")
	if cfgPath := os.Getenv("DOCCHAT_CONFIG"); cfgPath != "" {
		v.SetConfigFile(cfgPath)
	} else {
		if dir, err := homedir.Expand("~/.docchat"); err == nil {
			v.AddConfigPath(dir)
		}
		v.SetConfigName("config")
	}

	v.SetEnvPrefix("DOCCHAT")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	return v
}

// Load reads the config file (if present) and unmarshals the merged settings.
func Load(v *viper.Viper) (Config, error) {
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return Config{}, fmt.Errorf("read config: %w", err)
		}
	}

	var c Config
	if err := v.Unmarshal(&c); err != nil {
		return Config{}, fmt.Errorf("unmarshal config: %w", err)
	}

	logPath, err := homedir.Expand(c.Log.Path)
	if err != nil {
		return Config{}, fmt.Errorf("expand log path: %w", err)
	}
	c.Log.Path = logPath

	c.Remote.BaseURL = strings.TrimRight(strings.TrimSpace(c.Remote.BaseURL), "/")
	if c.Remote.BaseURL == "" {
		return Config{}, fmt.Errorf("remote.base_url must not be empty")
	}

	switch c.UI.Theme {
	case ThemeAuto, ThemeDark, ThemeLight:
	default:
		return Config{}, fmt.Errorf("ui.theme must be one of auto, dark, light: got %q", c.UI.Theme)
	}

	return c, nil
}
