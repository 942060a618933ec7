package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/go-playground/validator/v10"
	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v2"
)

// Config represents the complete application configuration
type Config struct {
	Input     InputConfig     `yaml:"input" envconfig:"INPUT"`
	Output    OutputConfig    `yaml:"output" envconfig:"OUTPUT"`
	Pipeline  PipelineConfig  `yaml:"pipeline" envconfig:"PIPELINE"`
	Cleaning  CleaningConfig  `yaml:"cleaning" envconfig:"CLEANING"`
	Transform TransformConfig `yaml:"transform" envconfig:"TRANSFORM"`
	Logging   LoggingConfig   `yaml:"logging" envconfig:"LOGGING"`
	Telemetry TelemetryConfig `yaml:"telemetry" envconfig:"TELEMETRY"`
}

// InputConfig describes where input files come from and how to read them
type InputConfig struct {
	Dir       string   `yaml:"dir" envconfig:"DIR" validate:"required"`
	Patterns  []string `yaml:"patterns" envconfig:"PATTERNS" validate:"min=1"`
	Delimiter string   `yaml:"delimiter" envconfig:"DELIMITER" validate:"max=1"`
	Sheet     string   `yaml:"sheet" envconfig:"SHEET"`
}

// OutputConfig describes where processed tables and reports are written
type OutputConfig struct {
	Dir        string `yaml:"dir" envconfig:"DIR" validate:"required"`
	ReportsDir string `yaml:"reports_dir" envconfig:"REPORTS_DIR" validate:"required"`
}

// PipelineConfig selects which stages run and how files fan out
type PipelineConfig struct {
	Validate  bool   `yaml:"validate" envconfig:"VALIDATE"`
	Clean     bool   `yaml:"clean" envconfig:"CLEAN"`
	Transform bool   `yaml:"transform" envconfig:"TRANSFORM"`
	RulesFile string `yaml:"rules_file" envconfig:"RULES_FILE"`
	Workers   int    `yaml:"workers" envconfig:"WORKERS" validate:"min=1"`
}

// CleaningConfig carries the cleaning stage settings. The CLI materializes
// the engine's own config struct from it; deep validation of method names
// against table contents stays with the engine.
type CleaningConfig struct {
	RemoveDuplicates    bool     `yaml:"remove_duplicates" envconfig:"REMOVE_DUPLICATES"`
	DuplicateSubset     []string `yaml:"duplicate_subset" envconfig:"DUPLICATE_SUBSET"`
	KeepLast            bool     `yaml:"keep_last" envconfig:"KEEP_LAST"`
	NullStrategy        string   `yaml:"null_strategy" envconfig:"NULL_STRATEGY" validate:"omitempty,oneof=DROP FILL_ZERO FILL_MEAN FILL_MEDIAN FILL_MODE FILL_FORWARD FILL_BACKWARD FILL_INTERPOLATE"`
	NullColumnThreshold float64  `yaml:"null_column_threshold" envconfig:"NULL_COLUMN_THRESHOLD" validate:"min=0,max=1"`
	RequiredColumns     []string `yaml:"required_columns" envconfig:"REQUIRED_COLUMNS"`
	OutlierMethod       string   `yaml:"outlier_method" envconfig:"OUTLIER_METHOD" validate:"omitempty,oneof=zscore iqr"`
	ZScoreThreshold     float64  `yaml:"zscore_threshold" envconfig:"ZSCORE_THRESHOLD" validate:"min=0"`
	IQRFactor           float64  `yaml:"iqr_factor" envconfig:"IQR_FACTOR" validate:"min=0"`
	RemoveOutliers      bool     `yaml:"remove_outliers" envconfig:"REMOVE_OUTLIERS"`
	NormalizeText       bool     `yaml:"normalize_text" envconfig:"NORMALIZE_TEXT"`
	LowercaseText       bool     `yaml:"lowercase_text" envconfig:"LOWERCASE_TEXT"`
	MinRetentionRate    float64  `yaml:"min_retention_rate" envconfig:"MIN_RETENTION_RATE" validate:"min=0,max=1"`
}

// TransformConfig carries the transformation stage settings
type TransformConfig struct {
	ScalingMethod       string   `yaml:"scaling_method" envconfig:"SCALING_METHOD" validate:"omitempty,oneof=NONE MINMAX STANDARD ROBUST MAXABS LOG SQRT"`
	ScaleColumns        []string `yaml:"scale_columns" envconfig:"SCALE_COLUMNS"`
	EncodingMethod      string   `yaml:"encoding_method" envconfig:"ENCODING_METHOD" validate:"omitempty,oneof=NONE LABEL ONEHOT ORDINAL FREQUENCY TARGET"`
	EncodeColumns       []string `yaml:"encode_columns" envconfig:"ENCODE_COLUMNS"`
	MaxCategories       int      `yaml:"max_categories" envconfig:"MAX_CATEGORIES" validate:"min=0"`
	ExtractDateFeatures bool     `yaml:"extract_date_features" envconfig:"EXTRACT_DATE_FEATURES"`
	DateColumns         []string `yaml:"date_columns" envconfig:"DATE_COLUMNS"`
	DateFeatures        []string `yaml:"date_features" envconfig:"DATE_FEATURES"`
	TargetColumn        string   `yaml:"target_column" envconfig:"TARGET_COLUMN"`
	InfinityPolicy      string   `yaml:"infinity_policy" envconfig:"INFINITY_POLICY" validate:"omitempty,oneof=NULL CLAMP"`
	InfinityClampValue  float64  `yaml:"infinity_clamp_value" envconfig:"INFINITY_CLAMP_VALUE"`
}

// LoggingConfig contains logging configuration
type LoggingConfig struct {
	Level    string `yaml:"level" envconfig:"LEVEL" validate:"omitempty,oneof=debug info warn warning error"`
	Format   string `yaml:"format" envconfig:"FORMAT" validate:"omitempty,oneof=json text"`
	Output   string `yaml:"output" envconfig:"OUTPUT" validate:"omitempty,oneof=stdout file both"`
	FilePath string `yaml:"file_path" envconfig:"FILE_PATH"`
}

// TelemetryConfig contains OpenTelemetry configuration
type TelemetryConfig struct {
	EnableTracing  bool    `yaml:"enable_tracing" envconfig:"ENABLE_TRACING"`
	EnableMetrics  bool    `yaml:"enable_metrics" envconfig:"ENABLE_METRICS"`
	TraceExporter  string  `yaml:"trace_exporter" envconfig:"TRACE_EXPORTER" validate:"omitempty,oneof=stdout none"`
	MetricExporter string  `yaml:"metric_exporter" envconfig:"METRIC_EXPORTER" validate:"omitempty,oneof=prometheus none"`
	SampleRatio    float64 `yaml:"sample_ratio" envconfig:"SAMPLE_RATIO" validate:"min=0,max=1"`
	MetricsPort    int     `yaml:"metrics_port" envconfig:"METRICS_PORT" validate:"min=0,max=65535"`
	Environment    string  `yaml:"environment" envconfig:"ENVIRONMENT"`
}

var configValidate = validator.New()

// Load builds the configuration from defaults, an optional YAML file, and
// environment variables, in rising precedence. An empty configFile searches
// the standard locations; a missing explicit file is an error.
func Load(configFile string) (*Config, error) {
	cfg := Default()

	if configFile == "" {
		configFile = findConfigFile()
	} else if _, err := os.Stat(configFile); err != nil {
		return nil, fmt.Errorf("config file %s: %w", configFile, err)
	}
	if configFile != "" {
		if err := loadFromFile(configFile, cfg); err != nil {
			return nil, fmt.Errorf("load config from %s: %w", configFile, err)
		}
	}

	if err := envconfig.Process(EnvPrefix, cfg); err != nil {
		return nil, fmt.Errorf("load config from env: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}
	return cfg, nil
}

// loadFromFile overlays YAML settings onto cfg. Keys absent from the file
// keep their current values.
func loadFromFile(filePath string, cfg *Config) error {
	data, err := os.ReadFile(filePath)
	if err != nil {
		return err
	}
	return yaml.Unmarshal(data, cfg)
}

// Validate checks structural constraints via struct tags plus the few
// cross-field rules tags cannot express.
func (c *Config) Validate() error {
	if err := configValidate.Struct(c); err != nil {
		return err
	}
	if c.Logging.Output != "stdout" && c.Logging.FilePath == "" {
		return fmt.Errorf("logging output %q requires a file path", c.Logging.Output)
	}
	if c.Transform.InfinityPolicy == "CLAMP" && c.Transform.InfinityClampValue == 0 {
		return fmt.Errorf("infinity policy CLAMP requires a non-zero clamp value")
	}
	return nil
}

// EnsureDirectories creates the output, report, and log directories so the
// first run on a fresh checkout does not fail on the first write.
func (c *Config) EnsureDirectories() error {
	dirs := []string{c.Output.Dir, c.Output.ReportsDir}
	if c.Logging.Output != "stdout" && c.Logging.FilePath != "" {
		dirs = append(dirs, filepath.Dir(c.Logging.FilePath))
	}
	for _, dir := range dirs {
		if dir == "" {
			continue
		}
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create directory %s: %w", dir, err)
		}
	}
	return nil
}

// findConfigFile returns the first config file present in the standard
// locations, or empty when none exists.
func findConfigFile() string {
	locations := []string{
		"tableprep.yaml",
		"config.yaml",
		"configs/config.yaml",
	}
	for _, location := range locations {
		if _, err := os.Stat(location); err == nil {
			return location
		}
	}
	return ""
}

// Default returns the default configuration
func Default() *Config {
	return &Config{
		Input: InputConfig{
			Dir:       DefaultInputDir,
			Patterns:  []string{DefaultCSVPattern, DefaultExcelPattern},
			Delimiter: ",",
		},
		Output: OutputConfig{
			Dir:        DefaultOutputDir,
			ReportsDir: DefaultReportsDir,
		},
		Pipeline: PipelineConfig{
			Validate:  true,
			Clean:     true,
			Transform: true,
			Workers:   DefaultWorkers,
		},
		Cleaning: CleaningConfig{
			RemoveDuplicates:    true,
			NullStrategy:        "DROP",
			NullColumnThreshold: 0.5,
			OutlierMethod:       "zscore",
			ZScoreThreshold:     3.0,
			IQRFactor:           1.5,
			NormalizeText:       true,
			MinRetentionRate:    0.70,
		},
		Transform: TransformConfig{
			ScalingMethod:       "MINMAX",
			EncodingMethod:      "LABEL",
			MaxCategories:       20,
			ExtractDateFeatures: true,
			InfinityPolicy:      "NULL",
		},
		Logging: LoggingConfig{
			Level:    DefaultLogLevel,
			Format:   DefaultLogFormat,
			Output:   "both",
			FilePath: DefaultLogFilePath,
		},
		Telemetry: TelemetryConfig{
			EnableTracing:  false,
			EnableMetrics:  false,
			TraceExporter:  "stdout",
			MetricExporter: "prometheus",
			SampleRatio:    1.0,
			MetricsPort:    DefaultMetricsPort,
			Environment:    "development",
		},
	}
}
