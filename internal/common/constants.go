package common

import "time"

// Model display names, in the order the form lists them
const (
	ModelRandomForest     = "Random Forest"
	ModelDecisionTree     = "Decision Tree"
	ModelLinearRegression = "Linear Regression"
)

// CatalogFileName is the model catalog inside the models directory.
const CatalogFileName = "model_catalog.json"

// Environment variable keys
const (
	EnvConfigFile       = "CONFIG_FILE"
	EnvHTTPPort         = "HTTP_PORT"
	EnvMetricsPort      = "METRICS_PORT"
	EnvModelsDir        = "MODELS_DIR"
	EnvDefaultModel     = "DEFAULT_MODEL"
	EnvDataPath         = "DATA_PATH"
	EnvLogLevel         = "LOG_LEVEL"
	EnvLogFormat        = "LOG_FORMAT"
	EnvPredictTimeout   = "PREDICT_TIMEOUT"
	EnvHistoryLimit     = "HISTORY_LIMIT"
	EnvInitSampleModels = "INIT_SAMPLE_MODELS"
	EnvPreloadModels    = "PRELOAD_MODELS"
)

// Configuration defaults
const (
	DefaultHTTPPort       = 8501
	DefaultMetricsPort    = 0 // serve /metrics on the HTTP port
	DefaultModelsDir      = "models"
	DefaultModel          = ModelRandomForest
	DefaultLogLevel       = "info"
	DefaultLogFormat      = "json"
	DefaultHistoryLimit   = 50
	DefaultPredictTimeout = 5 * time.Second
)
