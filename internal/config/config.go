// Package config loads the settings of the synckit command.
//
// Values come, in increasing priority, from built-in defaults, an optional
// YAML file, SYNCKIT_* environment variables and command line flags bound
// by the caller.
package config

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

// EnvPrefix is prepended to every environment override, e.g.
// SYNCKIT_STRESS_THREADS.
const EnvPrefix = "SYNCKIT"

// Config represents the complete synckit configuration
type Config struct {
	Stress StressConfig `mapstructure:"stress"`
	Log    LogConfig    `mapstructure:"log"`
}

// StressConfig controls the stress harness
type StressConfig struct {
	// Threads is the number of concurrent workers per scenario
	Threads int `mapstructure:"threads"`
	// Iterations is the number of operations each worker performs
	Iterations int `mapstructure:"iterations"`
	// Scenarios selects which scenarios run; empty means all of them
	Scenarios []string `mapstructure:"scenarios"`
	// Parallel runs the selected scenarios concurrently instead of one by one
	Parallel bool `mapstructure:"parallel"`
}

// LogConfig controls logging
type LogConfig struct {
	// Level is the minimum level: debug, info, warn, error
	Level string `mapstructure:"level"`
	// Timestamps prefixes every line with the time
	Timestamps bool `mapstructure:"timestamps"`
}

// Default returns a Config with default values
func Default() *Config {
	return &Config{
		Stress: StressConfig{
			Threads:    8,
			Iterations: 100_000,
			Scenarios:  nil,
			Parallel:   false,
		},
		Log: LogConfig{
			Level:      "info",
			Timestamps: true,
		},
	}
}

// New returns a viper instance with defaults and environment overrides
// registered.
func New() *viper.Viper {
	v := viper.New()
	SetDefaults(v)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	return v
}

// SetDefaults registers the default value of every key on v
func SetDefaults(v *viper.Viper) {
	defaults := Default()

	v.SetDefault("stress.threads", defaults.Stress.Threads)
	v.SetDefault("stress.iterations", defaults.Stress.Iterations)
	v.SetDefault("stress.scenarios", defaults.Stress.Scenarios)
	v.SetDefault("stress.parallel", defaults.Stress.Parallel)

	v.SetDefault("log.level", defaults.Log.Level)
	v.SetDefault("log.timestamps", defaults.Log.Timestamps)
}

// Load reads file (if not empty) into v, decodes the result into a Config
// and validates it.
func Load(v *viper.Viper, file string) (*Config, error) {
	if file != "" {
		v.SetConfigFile(file)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("reading config file %s: %w", file, err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("decoding config: %w", err)
	}

	if errs := cfg.Validate(); len(errs) > 0 {
		return nil, ValidationErrors(errs)
	}

	return &cfg, nil
}
