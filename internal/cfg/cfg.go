package cfg

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"energy-predictor/internal/common"

	"github.com/rs/zerolog"
	"gopkg.in/yaml.v3"
)

type Settings struct {
	HTTPPort         int
	MetricsPort      int
	ModelsDir        string
	DefaultModel     string
	DataPath         string
	LogLevel         string
	LogFormat        string
	PredictTimeout   time.Duration
	HistoryLimit     int
	InitSampleModels bool
	PreloadModels    bool
}

type ConfigFile struct {
	Server struct {
		HTTPPort       int    `yaml:"httpPort"`
		MetricsPort    int    `yaml:"metricsPort"`
		PredictTimeout string `yaml:"predictTimeout"`
	} `yaml:"server"`

	Models struct {
		Dir         string `yaml:"dir"`
		Default     string `yaml:"default"`
		InitSamples bool   `yaml:"initSamples"`
		Preload     bool   `yaml:"preload"`
	} `yaml:"models"`

	Storage struct {
		DataPath     string `yaml:"dataPath"`
		HistoryLimit int    `yaml:"historyLimit"`
	} `yaml:"storage"`

	Logging struct {
		Level  string `yaml:"level"`
		Format string `yaml:"format"`
	} `yaml:"logging"`
}

func Load() (Settings, error) {
	// Try to load from YAML file first
	if configPath := os.Getenv(common.EnvConfigFile); configPath != "" {
		return loadFromYAML(configPath)
	}

	// Fallback to environment variables
	return loadFromEnv()
}

func loadFromYAML(path string) (Settings, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Settings{}, fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	var config ConfigFile
	if err := yaml.Unmarshal(data, &config); err != nil {
		return Settings{}, fmt.Errorf("failed to parse config file: %w", err)
	}

	timeout, err := time.ParseDuration(config.Server.PredictTimeout)
	if err != nil {
		timeout = common.DefaultPredictTimeout
	}

	settings := Settings{
		HTTPPort:         getIntFromEnvOrConfig(common.EnvHTTPPort, config.Server.HTTPPort, common.DefaultHTTPPort),
		MetricsPort:      getIntFromEnvOrConfig(common.EnvMetricsPort, config.Server.MetricsPort, common.DefaultMetricsPort),
		ModelsDir:        getEnvOrDefault(common.EnvModelsDir, orDefault(config.Models.Dir, common.DefaultModelsDir)),
		DefaultModel:     getEnvOrDefault(common.EnvDefaultModel, orDefault(config.Models.Default, common.DefaultModel)),
		DataPath:         getEnvOrDefault(common.EnvDataPath, config.Storage.DataPath),
		LogLevel:         getEnvOrDefault(common.EnvLogLevel, orDefault(config.Logging.Level, common.DefaultLogLevel)),
		LogFormat:        getEnvOrDefault(common.EnvLogFormat, orDefault(config.Logging.Format, common.DefaultLogFormat)),
		PredictTimeout:   getDurationOrDefault(common.EnvPredictTimeout, timeout),
		HistoryLimit:     getIntFromEnvOrConfig(common.EnvHistoryLimit, config.Storage.HistoryLimit, common.DefaultHistoryLimit),
		InitSampleModels: getBoolFromEnvOrConfig(common.EnvInitSampleModels, config.Models.InitSamples),
		PreloadModels:    getBoolFromEnvOrConfig(common.EnvPreloadModels, config.Models.Preload),
	}

	if err := validateSettings(&settings); err != nil {
		return Settings{}, fmt.Errorf("configuration validation failed: %w", err)
	}

	return settings, nil
}

func loadFromEnv() (Settings, error) {
	settings := Settings{
		HTTPPort:         getIntOrDefault(common.EnvHTTPPort, common.DefaultHTTPPort),
		MetricsPort:      getIntOrDefault(common.EnvMetricsPort, common.DefaultMetricsPort),
		ModelsDir:        getEnvOrDefault(common.EnvModelsDir, common.DefaultModelsDir),
		DefaultModel:     getEnvOrDefault(common.EnvDefaultModel, common.DefaultModel),
		DataPath:         os.Getenv(common.EnvDataPath), // optional
		LogLevel:         getEnvOrDefault(common.EnvLogLevel, common.DefaultLogLevel),
		LogFormat:        getEnvOrDefault(common.EnvLogFormat, common.DefaultLogFormat),
		PredictTimeout:   getDurationOrDefault(common.EnvPredictTimeout, common.DefaultPredictTimeout),
		HistoryLimit:     getIntOrDefault(common.EnvHistoryLimit, common.DefaultHistoryLimit),
		InitSampleModels: getBoolOrDefault(common.EnvInitSampleModels, false),
		PreloadModels:    getBoolOrDefault(common.EnvPreloadModels, false),
	}

	if err := validateSettings(&settings); err != nil {
		return Settings{}, fmt.Errorf("configuration validation failed: %w", err)
	}

	return settings, nil
}

// ZerologLevel returns the parsed log level, defaulting to info.
func (s Settings) ZerologLevel() zerolog.Level {
	level, err := zerolog.ParseLevel(strings.ToLower(s.LogLevel))
	if err != nil || level == zerolog.NoLevel {
		return zerolog.InfoLevel
	}
	return level
}

func orDefault(v, def string) string {
	if v == "" {
		return def
	}
	return v
}

func getEnvOrDefault(key, defaultValue string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return defaultValue
}

func getDurationOrDefault(key string, defaultValue time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return defaultValue
}

func getIntOrDefault(key string, defaultValue int) int {
	if v := os.Getenv(key); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return defaultValue
}

func getBoolOrDefault(key string, defaultValue bool) bool {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return defaultValue
}

func getIntFromEnvOrConfig(key string, configValue, defaultValue int) int {
	if env := os.Getenv(key); env != "" {
		if val, err := strconv.Atoi(env); err == nil {
			return val
		}
	}
	if configValue != 0 {
		return configValue
	}
	return defaultValue
}

func getBoolFromEnvOrConfig(key string, configValue bool) bool {
	if env := os.Getenv(key); env != "" {
		if val, err := strconv.ParseBool(env); err == nil {
			return val
		}
	}
	return configValue
}

// validateSettings performs validation of configuration values
func validateSettings(settings *Settings) error {
	if settings.HTTPPort < 1024 || settings.HTTPPort > 65535 {
		return fmt.Errorf("HTTP port must be between 1024 and 65535, got %d", settings.HTTPPort)
	}
	// 0 shares the HTTP port
	if settings.MetricsPort != 0 && (settings.MetricsPort < 1024 || settings.MetricsPort > 65535) {
		return fmt.Errorf("metrics port must be 0 or between 1024 and 65535, got %d", settings.MetricsPort)
	}
	if settings.MetricsPort != 0 && settings.MetricsPort == settings.HTTPPort {
		return fmt.Errorf("metrics port %d collides with HTTP port; use 0 to share it", settings.MetricsPort)
	}

	if settings.ModelsDir == "" {
		return fmt.Errorf("models directory cannot be empty")
	}
	if settings.DefaultModel == "" {
		return fmt.Errorf("default model cannot be empty")
	}

	if settings.PredictTimeout < time.Millisecond || settings.PredictTimeout > time.Minute {
		return fmt.Errorf("predict timeout must be between 1ms and 1m, got %v", settings.PredictTimeout)
	}
	if settings.HistoryLimit < 1 || settings.HistoryLimit > 10000 {
		return fmt.Errorf("history limit must be between 1 and 10000, got %d", settings.HistoryLimit)
	}

	switch strings.ToLower(settings.LogFormat) {
	case "json", "console":
	default:
		return fmt.Errorf("log format must be json or console, got %q", settings.LogFormat)
	}
	if _, err := zerolog.ParseLevel(strings.ToLower(settings.LogLevel)); err != nil {
		return fmt.Errorf("invalid log level %q: %w", settings.LogLevel, err)
	}

	return nil
}
