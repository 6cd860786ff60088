package flowconfig

import (
	"fmt"
	"os"
	"runtime"

	"github.com/goccy/go-yaml"
	"github.com/spf13/viper"
)

// EngineConfig holds the engine's own settings, as distinct from the
// free-form configuration mapping forwarded to task functions.
type EngineConfig struct {
	RootDir        string `mapstructure:"root_dir"`
	MaxParallelism int    `mapstructure:"max_parallelism"`
	LogFormat      string `mapstructure:"log_format"`
	Debug          bool   `mapstructure:"debug"`
}

// DefaultEngineConfig returns the settings used when no config file is
// present: a temp-rooted workflow directory and one worker per CPU.
func DefaultEngineConfig() EngineConfig {
	return EngineConfig{
		RootDir:        os.TempDir(),
		MaxParallelism: runtime.NumCPU(),
		LogFormat:      "text",
	}
}

// Load reads engine settings from path (if non-empty, via viper, with
// FLOWCORE_-prefixed environment variable overrides) and the task
// configuration mapping from the file's "config" section (decoded
// directly with goccy/go-yaml, since that section is an arbitrary,
// caller-defined map rather than a fixed struct).
func Load(path string) (EngineConfig, map[string]any, error) {
	cfg := DefaultEngineConfig()
	taskConfig := make(map[string]any)

	if path == "" {
		return cfg, taskConfig, nil
	}

	v := viper.New()
	v.SetConfigFile(path)
	v.SetEnvPrefix("FLOWCORE")
	v.AutomaticEnv()
	v.SetDefault("root_dir", cfg.RootDir)
	v.SetDefault("max_parallelism", cfg.MaxParallelism)
	v.SetDefault("log_format", cfg.LogFormat)
	v.SetDefault("debug", cfg.Debug)

	if err := v.ReadInConfig(); err != nil {
		return cfg, taskConfig, fmt.Errorf("flowconfig: read %s: %w", path, err)
	}
	if err := v.Unmarshal(&cfg); err != nil {
		return cfg, taskConfig, fmt.Errorf("flowconfig: unmarshal %s: %w", path, err)
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		return cfg, taskConfig, fmt.Errorf("flowconfig: read %s: %w", path, err)
	}
	var doc struct {
		Config map[string]any `yaml:"config"`
	}
	if err := yaml.Unmarshal(raw, &doc); err != nil {
		return cfg, taskConfig, fmt.Errorf("flowconfig: parse task config section of %s: %w", path, err)
	}
	if doc.Config != nil {
		taskConfig = doc.Config
	}

	return cfg, taskConfig, nil
}
