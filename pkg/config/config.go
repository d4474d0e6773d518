// Package config provides configuration loading and validation for the
// kgtree CLI and query server.
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Sentinel validation errors.
var (
	ErrInvalidPort          = errors.New("invalid server port")
	ErrInvalidMaxPasses     = errors.New("max interpolation passes must be positive")
	ErrInvalidCacheKind     = errors.New("path cache kind must be \"unbounded\" or \"lru\"")
	ErrInvalidCacheSize     = errors.New("path cache size must be positive")
	ErrInvalidMaxDistance   = errors.New("move max distance must be within [0,1]")
	ErrInvalidDefaultFormat = errors.New("default format must be a known format name")
)

// Config holds all configuration for kgtree.
type Config struct {
	Server  ServerConfig  `mapstructure:"server"`
	Opath   OpathConfig   `mapstructure:"opath"`
	Diff    DiffConfig    `mapstructure:"diff"`
	Logging LoggingConfig `mapstructure:"logging"`
}

// ServerConfig holds query-server-specific configuration.
type ServerConfig struct {
	Host         string        `mapstructure:"host"`
	ReadTimeout  time.Duration `mapstructure:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
	IdleTimeout  time.Duration `mapstructure:"idle_timeout"`
	Port         int           `mapstructure:"port"`
	Enabled      bool          `mapstructure:"enabled"`
}

// OpathConfig holds expression-engine configuration.
type OpathConfig struct {
	// MaxInterpolationPasses bounds the resolver's fixed-point loop; hitting
	// it reports a cyclic interpolation.
	MaxInterpolationPasses int `mapstructure:"max_interpolation_passes"`

	// PathCacheKind selects the node-path cache: "unbounded" or "lru".
	PathCacheKind string `mapstructure:"path_cache_kind"`

	// PathCacheSize is the LRU capacity; ignored for the unbounded cache.
	PathCacheSize int `mapstructure:"path_cache_size"`

	// DefaultFormat is the format assumed for input without a recognizable
	// extension.
	DefaultFormat string `mapstructure:"default_format"`
}

// DiffConfig holds structural-diff configuration.
type DiffConfig struct {
	// DetectMove enables reclassifying matching Added/Removed pairs as
	// Moved.
	DetectMove bool `mapstructure:"detect_move"`

	// MinCount forces maximal distance for subtrees at or below this node
	// count, so trivially small fragments never count as moves. Zero
	// disables the threshold.
	MinCount uint32 `mapstructure:"min_count"`

	// MaxDistance bounds how dissimilar two subtrees may be and still pair
	// up as a move.
	MaxDistance float64 `mapstructure:"max_distance"`

	// Kinds restricts which change kinds are reported, in mark or word form
	// ("+-*~", "all", "added,removed", ...).
	Kinds string `mapstructure:"kinds"`
}

// LoggingConfig holds logging-specific configuration.
type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
	Output string `mapstructure:"output"`
}

// LoadConfig loads configuration from file and environment variables.
func LoadConfig(configPath string) (*Config, error) {
	viperCfg := viper.New()

	// Set defaults.
	setDefaults(viperCfg)

	// Read config file.
	if configPath != "" {
		viperCfg.SetConfigFile(configPath)
	} else {
		viperCfg.SetConfigName("config")
		viperCfg.SetConfigType("yaml")
		viperCfg.AddConfigPath(".")
		viperCfg.AddConfigPath("./config")
		viperCfg.AddConfigPath("/etc/kgtree")
	}

	// Read environment variables.
	viperCfg.SetEnvPrefix("KGTREE")
	viperCfg.AutomaticEnv()
	viperCfg.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	readErr := viperCfg.ReadInConfig()
	if readErr != nil {
		var notFoundErr viper.ConfigFileNotFoundError
		if !errors.As(readErr, &notFoundErr) {
			return nil, fmt.Errorf("failed to read config file: %w", readErr)
		}
	}

	var config Config

	unmarshalErr := viperCfg.Unmarshal(&config)
	if unmarshalErr != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", unmarshalErr)
	}

	validateErr := validateConfig(&config)
	if validateErr != nil {
		return nil, fmt.Errorf("invalid configuration: %w", validateErr)
	}

	return &config, nil
}

// setDefaults sets default configuration values.
func setDefaults(viperCfg *viper.Viper) {
	// Server defaults.
	viperCfg.SetDefault("server.enabled", false)
	viperCfg.SetDefault("server.port", DefaultServerPort)
	viperCfg.SetDefault("server.host", DefaultServerHost)
	viperCfg.SetDefault("server.read_timeout", "30s")
	viperCfg.SetDefault("server.write_timeout", "30s")
	viperCfg.SetDefault("server.idle_timeout", "60s")

	// Opath defaults.
	viperCfg.SetDefault("opath.max_interpolation_passes", DefaultMaxInterpolationPasses)
	viperCfg.SetDefault("opath.path_cache_kind", DefaultPathCacheKind)
	viperCfg.SetDefault("opath.path_cache_size", DefaultPathCacheSize)
	viperCfg.SetDefault("opath.default_format", DefaultFormatName)

	// Diff defaults.
	viperCfg.SetDefault("diff.detect_move", DefaultDetectMove)
	viperCfg.SetDefault("diff.min_count", DefaultMinCount)
	viperCfg.SetDefault("diff.max_distance", DefaultMaxDistance)
	viperCfg.SetDefault("diff.kinds", DefaultKinds)

	// Logging defaults.
	viperCfg.SetDefault("logging.level", "info")
	viperCfg.SetDefault("logging.format", "json")
	viperCfg.SetDefault("logging.output", "stdout")
}

// validateConfig validates the configuration.
func validateConfig(config *Config) error {
	if config.Server.Port <= 0 || config.Server.Port > maxPort {
		return fmt.Errorf("%w: %d", ErrInvalidPort, config.Server.Port)
	}

	if config.Opath.MaxInterpolationPasses <= 0 {
		return fmt.Errorf("%w: %d", ErrInvalidMaxPasses, config.Opath.MaxInterpolationPasses)
	}

	switch config.Opath.PathCacheKind {
	case "unbounded", "lru":
	default:
		return fmt.Errorf("%w: %q", ErrInvalidCacheKind, config.Opath.PathCacheKind)
	}

	if config.Opath.PathCacheSize <= 0 {
		return fmt.Errorf("%w: %d", ErrInvalidCacheSize, config.Opath.PathCacheSize)
	}

	switch strings.ToLower(config.Opath.DefaultFormat) {
	case "json", "yaml", "yml", "toml":
	default:
		return fmt.Errorf("%w: %q", ErrInvalidDefaultFormat, config.Opath.DefaultFormat)
	}

	if config.Diff.MaxDistance < 0 || config.Diff.MaxDistance > 1 {
		return fmt.Errorf("%w: %g", ErrInvalidMaxDistance, config.Diff.MaxDistance)
	}

	return nil
}
