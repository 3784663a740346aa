package cfg

import (
	"strings"
	"testing"
	"time"
)

// createValidSettings creates a valid Settings struct for testing
func createValidSettings() *Settings {
	return &Settings{
		HTTPPort:       8501,
		MetricsPort:    0,
		ModelsDir:      "models",
		DefaultModel:   "Random Forest",
		LogLevel:       "info",
		LogFormat:      "json",
		PredictTimeout: 5 * time.Second,
		HistoryLimit:   50,
	}
}

func TestValidateSettings_ValidConfig(t *testing.T) {
	settings := createValidSettings()

	err := validateSettings(settings)
	if err != nil {
		t.Errorf("Expected valid config to pass, got error: %v", err)
	}
}

func TestValidateSettings_Invalid(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(s *Settings)
		wantMsg string
	}{
		{
			name:    "http port too low",
			mutate:  func(s *Settings) { s.HTTPPort = 80 },
			wantMsg: "HTTP port must be between",
		},
		{
			name:    "http port too high",
			mutate:  func(s *Settings) { s.HTTPPort = 70000 },
			wantMsg: "HTTP port must be between",
		},
		{
			name:    "metrics port out of range",
			mutate:  func(s *Settings) { s.MetricsPort = 22 },
			wantMsg: "metrics port must be 0 or between",
		},
		{
			name:    "metrics port collides",
			mutate:  func(s *Settings) { s.MetricsPort = s.HTTPPort },
			wantMsg: "collides with HTTP port",
		},
		{
			name:    "empty models dir",
			mutate:  func(s *Settings) { s.ModelsDir = "" },
			wantMsg: "models directory cannot be empty",
		},
		{
			name:    "empty default model",
			mutate:  func(s *Settings) { s.DefaultModel = "" },
			wantMsg: "default model cannot be empty",
		},
		{
			name:    "timeout too short",
			mutate:  func(s *Settings) { s.PredictTimeout = time.Microsecond },
			wantMsg: "predict timeout must be between",
		},
		{
			name:    "timeout too long",
			mutate:  func(s *Settings) { s.PredictTimeout = 2 * time.Minute },
			wantMsg: "predict timeout must be between",
		},
		{
			name:    "history limit zero",
			mutate:  func(s *Settings) { s.HistoryLimit = 0 },
			wantMsg: "history limit must be between",
		},
		{
			name:    "unknown log format",
			mutate:  func(s *Settings) { s.LogFormat = "logfmt" },
			wantMsg: "log format must be json or console",
		},
		{
			name:    "unknown log level",
			mutate:  func(s *Settings) { s.LogLevel = "loud" },
			wantMsg: "invalid log level",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			settings := createValidSettings()
			tt.mutate(settings)

			err := validateSettings(settings)
			if err == nil {
				t.Fatalf("Expected error containing %q", tt.wantMsg)
			}
			if !strings.Contains(err.Error(), tt.wantMsg) {
				t.Errorf("Expected error containing %q, got: %v", tt.wantMsg, err)
			}
		})
	}
}

func TestValidateSettings_SeparateMetricsPort(t *testing.T) {
	settings := createValidSettings()
	settings.MetricsPort = 9090

	if err := validateSettings(settings); err != nil {
		t.Errorf("Expected separate metrics port to pass, got error: %v", err)
	}
}
