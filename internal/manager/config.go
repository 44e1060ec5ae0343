package manager

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/hoppxi/sysset/internal/subscribe"
	"github.com/hoppxi/sysset/pkg/provider"
	"github.com/joho/godotenv"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

// EnvPrefix prefixes environment overrides, e.g. SYSSET_PLATFORM.
const EnvPrefix = "SYSSET"

// Config is the typed form of sysset.yaml.
type Config struct {
	Platform         string            `mapstructure:"platform" yaml:"platform"`
	AppStore         *bool             `mapstructure:"-" yaml:"app_store,omitempty"`
	Backlight        string            `mapstructure:"backlight" yaml:"backlight,omitempty"`
	Output           string            `mapstructure:"output" yaml:"output,omitempty"`
	SettingsCommand  map[string]string `mapstructure:"settings_command" yaml:"settings_command,omitempty"`
	ConfirmToggles   bool              `mapstructure:"confirm_toggles" yaml:"confirm_toggles"`
	LocationInterval time.Duration     `mapstructure:"location_interval" yaml:"location_interval,omitempty"`
	HTTPAddr         string            `mapstructure:"http_addr" yaml:"http_addr,omitempty"`
}

// Provider converts c to the provider configuration.
func (c Config) Provider() provider.Config {
	pc := provider.DefaultConfig()
	pc.Platform = c.Platform
	pc.Backlight = c.Backlight
	pc.Output = c.Output
	pc.ConfirmToggles = c.ConfirmToggles
	if c.LocationInterval > 0 {
		pc.LocationInterval = c.LocationInterval
	}
	for panel, cmd := range c.SettingsCommand {
		pc.SettingsCommand[panel] = cmd
	}
	return pc
}

// DefaultConfig is what setup writes when nothing else is asked for.
func DefaultConfig() Config {
	pc := provider.DefaultConfig()
	return Config{
		Platform:         pc.Platform,
		SettingsCommand:  pc.SettingsCommand,
		ConfirmToggles:   pc.ConfirmToggles,
		LocationInterval: pc.LocationInterval,
	}
}

// DefaultConfigPath returns $XDG_CONFIG_HOME/sysset/sysset.yaml.
func DefaultConfigPath() (string, error) {
	configDir, err := os.UserConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(configDir, "sysset", "sysset.yaml"), nil
}

type ConfigManager struct {
	mu   sync.Mutex
	path string
	v    *viper.Viper
}

// NewConfigManager manages the config file at path. An empty path means
// DefaultConfigPath.
func NewConfigManager(path string) *ConfigManager {
	return &ConfigManager{path: path}
}

// Path returns the config file path.
func (c *ConfigManager) Path() (string, error) {
	if c.path != "" {
		return c.path, nil
	}
	return DefaultConfigPath()
}

// Load reads the config file, a .env file next to it and SYSSET_*
// environment overrides. A missing config file is not an error.
func (c *ConfigManager) Load() (Config, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	path, err := c.Path()
	if err != nil {
		return Config{}, err
	}

	if err := loadDotEnv(filepath.Join(filepath.Dir(path), ".env")); err != nil {
		return Config{}, fmt.Errorf("failed to load .env: %w", err)
	}

	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("yaml")
	v.SetEnvPrefix(EnvPrefix)
	v.AutomaticEnv()

	def := DefaultConfig()
	v.SetDefault("platform", def.Platform)
	v.SetDefault("backlight", "")
	v.SetDefault("output", "")
	v.SetDefault("settings_command", def.SettingsCommand)
	v.SetDefault("confirm_toggles", def.ConfirmToggles)
	v.SetDefault("location_interval", def.LocationInterval)
	v.SetDefault("http_addr", "")
	// No default: an unset app_store must stay distinguishable.
	_ = v.BindEnv("app_store")

	if err := v.ReadInConfig(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return Config{}, fmt.Errorf("failed to read config: %w", err)
	}

	c.v = v
	return decode(v)
}

func decode(v *viper.Viper) (Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("failed to decode config: %w", err)
	}
	if v.IsSet("app_store") {
		appStore := v.GetBool("app_store")
		cfg.AppStore = &appStore
	}
	return cfg, nil
}

// Watch calls onChange with the reloaded config whenever the file is
// written, until stop is closed. Load must have been called.
func (c *ConfigManager) Watch(stop <-chan struct{}, onChange func(Config)) error {
	c.mu.Lock()
	v := c.v
	c.mu.Unlock()
	if v == nil {
		return errors.New("config not loaded")
	}

	events := subscribe.ConfigEvents(v, stop)
	go func() {
		for {
			select {
			case <-stop:
				return
			case <-events:
				c.mu.Lock()
				cfg, err := decode(v)
				c.mu.Unlock()
				if err != nil {
					continue
				}
				onChange(cfg)
			}
		}
	}()
	return nil
}

// Save writes cfg as YAML to the config path, creating the directory.
func (c *ConfigManager) Save(cfg Config) error {
	path, err := c.Path()
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}

// loadDotEnv loads environment variables from path. Missing files are ignored.
func loadDotEnv(path string) error {
	err := godotenv.Load(path)
	if errors.Is(err, os.ErrNotExist) {
		return nil
	}
	return err
}
