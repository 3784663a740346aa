package cfg

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/rs/zerolog"
)

func TestLoadFromEnv(t *testing.T) {
	tests := []struct {
		name     string
		envVars  map[string]string
		wantErr  bool
		validate func(t *testing.T, settings Settings)
	}{
		{
			name:    "defaults",
			envVars: map[string]string{},
			wantErr: false,
			validate: func(t *testing.T, settings Settings) {
				if settings.HTTPPort != 8501 {
					t.Errorf("expected default HTTPPort 8501, got %d", settings.HTTPPort)
				}
				if settings.MetricsPort != 0 {
					t.Errorf("expected default MetricsPort 0, got %d", settings.MetricsPort)
				}
				if settings.ModelsDir != "models" {
					t.Errorf("expected default ModelsDir 'models', got %s", settings.ModelsDir)
				}
				if settings.DefaultModel != "Random Forest" {
					t.Errorf("expected default model 'Random Forest', got %s", settings.DefaultModel)
				}
				if settings.DataPath != "" {
					t.Errorf("expected empty DataPath, got %s", settings.DataPath)
				}
				if settings.PredictTimeout != 5*time.Second {
					t.Errorf("expected default PredictTimeout 5s, got %v", settings.PredictTimeout)
				}
				if settings.HistoryLimit != 50 {
					t.Errorf("expected default HistoryLimit 50, got %d", settings.HistoryLimit)
				}
				if settings.InitSampleModels {
					t.Error("expected InitSampleModels to be false")
				}
			},
		},
		{
			name: "custom settings",
			envVars: map[string]string{
				"HTTP_PORT":          "9000",
				"METRICS_PORT":       "9090",
				"MODELS_DIR":         "/srv/models",
				"DEFAULT_MODEL":      "Linear Regression",
				"DATA_PATH":          "/srv/data",
				"LOG_LEVEL":          "debug",
				"LOG_FORMAT":         "console",
				"PREDICT_TIMEOUT":    "250ms",
				"HISTORY_LIMIT":      "20",
				"INIT_SAMPLE_MODELS": "true",
				"PRELOAD_MODELS":     "1",
			},
			wantErr: false,
			validate: func(t *testing.T, settings Settings) {
				if settings.HTTPPort != 9000 {
					t.Errorf("expected HTTPPort 9000, got %d", settings.HTTPPort)
				}
				if settings.MetricsPort != 9090 {
					t.Errorf("expected MetricsPort 9090, got %d", settings.MetricsPort)
				}
				if settings.ModelsDir != "/srv/models" {
					t.Errorf("expected ModelsDir '/srv/models', got %s", settings.ModelsDir)
				}
				if settings.DefaultModel != "Linear Regression" {
					t.Errorf("expected DefaultModel 'Linear Regression', got %s", settings.DefaultModel)
				}
				if settings.DataPath != "/srv/data" {
					t.Errorf("expected DataPath '/srv/data', got %s", settings.DataPath)
				}
				if settings.PredictTimeout != 250*time.Millisecond {
					t.Errorf("expected PredictTimeout 250ms, got %v", settings.PredictTimeout)
				}
				if settings.HistoryLimit != 20 {
					t.Errorf("expected HistoryLimit 20, got %d", settings.HistoryLimit)
				}
				if !settings.InitSampleModels {
					t.Error("expected InitSampleModels to be true")
				}
				if !settings.PreloadModels {
					t.Error("expected PreloadModels to be true")
				}
				if settings.ZerologLevel() != zerolog.DebugLevel {
					t.Errorf("expected debug level, got %v", settings.ZerologLevel())
				}
			},
		},
		{
			name: "unparsable values fall back to defaults",
			envVars: map[string]string{
				"HTTP_PORT":       "not-a-port",
				"PREDICT_TIMEOUT": "soon",
			},
			wantErr: false,
			validate: func(t *testing.T, settings Settings) {
				if settings.HTTPPort != 8501 {
					t.Errorf("expected fallback HTTPPort 8501, got %d", settings.HTTPPort)
				}
				if settings.PredictTimeout != 5*time.Second {
					t.Errorf("expected fallback PredictTimeout 5s, got %v", settings.PredictTimeout)
				}
			},
		},
		{
			name: "invalid port",
			envVars: map[string]string{
				"HTTP_PORT": "80",
			},
			wantErr: true,
		},
		{
			name: "invalid log format",
			envVars: map[string]string{
				"LOG_FORMAT": "xml",
			},
			wantErr: true,
		},
		{
			name: "metrics port collides with http port",
			envVars: map[string]string{
				"HTTP_PORT":    "9000",
				"METRICS_PORT": "9000",
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			clearTestEnv(t)
			for key, value := range tt.envVars {
				t.Setenv(key, value)
			}

			settings, err := loadFromEnv()
			if (err != nil) != tt.wantErr {
				t.Errorf("loadFromEnv() error = %v, wantErr %v", err, tt.wantErr)
				return
			}

			if !tt.wantErr && tt.validate != nil {
				tt.validate(t, settings)
			}
		})
	}
}

func TestLoadFromYAML(t *testing.T) {
	tests := []struct {
		name         string
		yamlContent  string
		envOverrides map[string]string
		wantErr      bool
		validate     func(t *testing.T, settings Settings)
	}{
		{
			name: "valid YAML config",
			yamlContent: `
server:
  httpPort: 8600
  metricsPort: 9100
  predictTimeout: "2s"

models:
  dir: "/opt/models"
  default: "Decision Tree"
  initSamples: true

storage:
  dataPath: "/opt/data"
  historyLimit: 25

logging:
  level: "warn"
  format: "console"
`,
			wantErr: false,
			validate: func(t *testing.T, settings Settings) {
				if settings.HTTPPort != 8600 {
					t.Errorf("expected HTTPPort 8600, got %d", settings.HTTPPort)
				}
				if settings.MetricsPort != 9100 {
					t.Errorf("expected MetricsPort 9100, got %d", settings.MetricsPort)
				}
				if settings.PredictTimeout != 2*time.Second {
					t.Errorf("expected PredictTimeout 2s, got %v", settings.PredictTimeout)
				}
				if settings.ModelsDir != "/opt/models" {
					t.Errorf("expected ModelsDir '/opt/models', got %s", settings.ModelsDir)
				}
				if settings.DefaultModel != "Decision Tree" {
					t.Errorf("expected DefaultModel 'Decision Tree', got %s", settings.DefaultModel)
				}
				if !settings.InitSampleModels {
					t.Error("expected InitSampleModels to be true")
				}
				if settings.DataPath != "/opt/data" {
					t.Errorf("expected DataPath '/opt/data', got %s", settings.DataPath)
				}
				if settings.HistoryLimit != 25 {
					t.Errorf("expected HistoryLimit 25, got %d", settings.HistoryLimit)
				}
				if settings.ZerologLevel() != zerolog.WarnLevel {
					t.Errorf("expected warn level, got %v", settings.ZerologLevel())
				}
			},
		},
		{
			name: "environment overrides YAML",
			yamlContent: `
server:
  httpPort: 8600
models:
  default: "Decision Tree"
`,
			envOverrides: map[string]string{
				"HTTP_PORT":     "8700",
				"DEFAULT_MODEL": "Linear Regression",
			},
			wantErr: false,
			validate: func(t *testing.T, settings Settings) {
				if settings.HTTPPort != 8700 {
					t.Errorf("expected env HTTPPort 8700, got %d", settings.HTTPPort)
				}
				if settings.DefaultModel != "Linear Regression" {
					t.Errorf("expected env DefaultModel, got %s", settings.DefaultModel)
				}
			},
		},
		{
			name:        "empty sections use defaults",
			yamlContent: "logging:\n  level: info\n",
			wantErr:     false,
			validate: func(t *testing.T, settings Settings) {
				if settings.HTTPPort != 8501 {
					t.Errorf("expected default HTTPPort 8501, got %d", settings.HTTPPort)
				}
				if settings.ModelsDir != "models" {
					t.Errorf("expected default ModelsDir, got %s", settings.ModelsDir)
				}
				if settings.PredictTimeout != 5*time.Second {
					t.Errorf("expected default PredictTimeout 5s, got %v", settings.PredictTimeout)
				}
			},
		},
		{
			name:        "invalid YAML",
			yamlContent: "server: [unterminated",
			wantErr:     true,
		},
		{
			name: "invalid history limit",
			yamlContent: `
storage:
  historyLimit: -5
`,
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			clearTestEnv(t)
			for key, value := range tt.envOverrides {
				t.Setenv(key, value)
			}

			configPath := filepath.Join(t.TempDir(), "config.yaml")
			if err := os.WriteFile(configPath, []byte(tt.yamlContent), 0o644); err != nil {
				t.Fatalf("failed to write config file: %v", err)
			}

			settings, err := loadFromYAML(configPath)
			if (err != nil) != tt.wantErr {
				t.Errorf("loadFromYAML() error = %v, wantErr %v", err, tt.wantErr)
				return
			}

			if !tt.wantErr && tt.validate != nil {
				tt.validate(t, settings)
			}
		})
	}
}

func TestLoad(t *testing.T) {
	t.Run("load from env when no config file", func(t *testing.T) {
		clearTestEnv(t)
		t.Setenv("HTTP_PORT", "8888")

		settings, err := Load()
		if err != nil {
			t.Fatalf("Load() error = %v", err)
		}
		if settings.HTTPPort != 8888 {
			t.Errorf("expected HTTPPort 8888, got %d", settings.HTTPPort)
		}
	})

	t.Run("load from YAML when config file specified", func(t *testing.T) {
		clearTestEnv(t)
		configPath := filepath.Join(t.TempDir(), "config.yaml")
		if err := os.WriteFile(configPath, []byte("models:\n  dir: yaml-models\n"), 0o644); err != nil {
			t.Fatalf("failed to write config file: %v", err)
		}
		t.Setenv("CONFIG_FILE", configPath)

		settings, err := Load()
		if err != nil {
			t.Fatalf("Load() error = %v", err)
		}
		if settings.ModelsDir != "yaml-models" {
			t.Errorf("expected ModelsDir 'yaml-models', got %s", settings.ModelsDir)
		}
	})

	t.Run("missing config file", func(t *testing.T) {
		clearTestEnv(t)
		t.Setenv("CONFIG_FILE", filepath.Join(t.TempDir(), "missing.yaml"))

		if _, err := Load(); err == nil {
			t.Error("expected error for missing config file")
		}
	})
}

func TestZerologLevel(t *testing.T) {
	tests := []struct {
		level string
		want  zerolog.Level
	}{
		{"debug", zerolog.DebugLevel},
		{"INFO", zerolog.InfoLevel},
		{"error", zerolog.ErrorLevel},
		{"", zerolog.InfoLevel},
		{"bogus", zerolog.InfoLevel},
	}

	for _, tt := range tests {
		s := Settings{LogLevel: tt.level}
		if got := s.ZerologLevel(); got != tt.want {
			t.Errorf("ZerologLevel(%q) = %v, want %v", tt.level, got, tt.want)
		}
	}
}

// clearTestEnv clears potentially conflicting environment variables
func clearTestEnv(t *testing.T) {
	envVars := []string{
		"CONFIG_FILE", "HTTP_PORT", "METRICS_PORT", "MODELS_DIR", "DEFAULT_MODEL",
		"DATA_PATH", "LOG_LEVEL", "LOG_FORMAT", "PREDICT_TIMEOUT", "HISTORY_LIMIT",
		"INIT_SAMPLE_MODELS", "PRELOAD_MODELS",
	}

	for _, env := range envVars {
		if val := os.Getenv(env); val != "" {
			t.Setenv(env, "")
		}
	}
}
