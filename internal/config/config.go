package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"claimlog/internal/claims"
)

// EnvPrefix prefixes every environment variable read by Load.
const EnvPrefix = "CLAIMLOG"

// Engine kinds.
const (
	EngineReader = "reader"
	EngineSWIPL  = "swipl"
)

// Config holds all claimlog configuration.
type Config struct {
	// UpdateView is the directive used when neither the caller nor the claim
	// picks one. Empty defers to the compiler default.
	UpdateView string `yaml:"update_view" mapstructure:"update_view"`

	Engine  EngineConfig  `yaml:"engine" mapstructure:"engine"`
	Batch   BatchConfig   `yaml:"batch" mapstructure:"batch"`
	Watch   WatchConfig   `yaml:"watch" mapstructure:"watch"`
	Logging LoggingConfig `yaml:"logging" mapstructure:"logging"`

	// Source is the config file that was read, if any.
	Source string `yaml:"-" mapstructure:"-"`
}

// EngineConfig selects the syntax checker.
type EngineConfig struct {
	Kind      string `yaml:"kind" mapstructure:"kind"`             // reader, swipl
	SWIPLPath string `yaml:"swipl_path" mapstructure:"swipl_path"` // binary name or path
	Timeout   string `yaml:"timeout" mapstructure:"timeout"`       // per statement, swipl only
}

// BatchConfig configures multi-file extraction.
type BatchConfig struct {
	Concurrency int `yaml:"concurrency" mapstructure:"concurrency"`
}

// WatchConfig configures directory watching.
type WatchConfig struct {
	Debounce string `yaml:"debounce" mapstructure:"debounce"`
}

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	return &Config{
		UpdateView: string(claims.DefaultUpdateView),
		Engine: EngineConfig{
			Kind:      EngineReader,
			SWIPLPath: "swipl",
			Timeout:   "5s",
		},
		Batch: BatchConfig{
			Concurrency: 4,
		},
		Watch: WatchConfig{
			Debounce: "200ms",
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "console",
		},
	}
}

// DefaultPath returns $HOME/.claimlog/config.yaml.
func DefaultPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("find home directory: %w", err)
	}
	return filepath.Join(home, ".claimlog", "config.yaml"), nil
}

// Load reads configuration from path, or from $HOME/.claimlog/config.yaml when
// path is empty, then applies CLAIMLOG_* environment variables. A missing
// default file is not an error; a missing explicit file is.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	v := viper.New()
	setDefaults(v, cfg)

	if path != "" {
		v.SetConfigFile(path)
	} else if home, err := os.UserHomeDir(); err == nil {
		v.AddConfigPath(filepath.Join(home, ".claimlog"))
		v.SetConfigName("config")
		v.SetConfigType("yaml")
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if path != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
	}

	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	cfg.Source = v.ConfigFileUsed()

	cfg.applyEnvOverrides()

	return cfg, nil
}

func setDefaults(v *viper.Viper, cfg *Config) {
	v.SetDefault("update_view", cfg.UpdateView)
	v.SetDefault("engine.kind", cfg.Engine.Kind)
	v.SetDefault("engine.swipl_path", cfg.Engine.SWIPLPath)
	v.SetDefault("engine.timeout", cfg.Engine.Timeout)
	v.SetDefault("batch.concurrency", cfg.Batch.Concurrency)
	v.SetDefault("watch.debounce", cfg.Watch.Debounce)
	v.SetDefault("logging.level", cfg.Logging.Level)
	v.SetDefault("logging.format", cfg.Logging.Format)
}

// applyEnvOverrides applies environment variables that sit outside the
// CLAIMLOG_ namespace.
func (c *Config) applyEnvOverrides() {
	if os.Getenv("CLAIMLOG_DEBUG") != "" {
		c.Logging.Level = "debug"
	}
	if path := os.Getenv("SWIPL"); path != "" {
		c.Engine.SWIPLPath = path
	}
}

// Save writes the configuration as YAML.
func (c *Config) Save(path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}

	return nil
}

// GetTimeout returns the engine timeout as a duration.
func (c EngineConfig) GetTimeout() time.Duration {
	d, err := time.ParseDuration(c.Timeout)
	if err != nil || d <= 0 {
		return 5 * time.Second
	}
	return d
}

// GetDebounce returns the watch debounce as a duration.
func (c WatchConfig) GetDebounce() time.Duration {
	d, err := time.ParseDuration(c.Debounce)
	if err != nil || d <= 0 {
		return 200 * time.Millisecond
	}
	return d
}

// DefaultUpdateView returns the configured directive.
func (c *Config) DefaultUpdateView() claims.UpdateView {
	v, _ := claims.ParseUpdateView(c.UpdateView)
	return v
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	if _, ok := claims.ParseUpdateView(c.UpdateView); !ok {
		return fmt.Errorf("invalid update_view: %s (valid: %v)", c.UpdateView, claims.UpdateViews())
	}

	switch c.Engine.Kind {
	case EngineReader:
	case EngineSWIPL:
		if c.Engine.SWIPLPath == "" {
			return fmt.Errorf("engine.swipl_path is required for the swipl engine")
		}
	default:
		return fmt.Errorf("invalid engine.kind: %s (valid: [%s %s])", c.Engine.Kind, EngineReader, EngineSWIPL)
	}
	if _, err := time.ParseDuration(c.Engine.Timeout); err != nil {
		return fmt.Errorf("invalid engine.timeout: %w", err)
	}

	if c.Batch.Concurrency < 1 {
		return fmt.Errorf("batch.concurrency must be at least 1, got %d", c.Batch.Concurrency)
	}
	if _, err := time.ParseDuration(c.Watch.Debounce); err != nil {
		return fmt.Errorf("invalid watch.debounce: %w", err)
	}

	return c.Logging.Validate()
}
