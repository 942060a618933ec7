package config

import "time"

// Application constants shared across the pipeline and the CLI
const (
	// Application Info
	AppName    = "tableprep"
	AppVersion = "1.0.0"

	// Environment variable namespace (TABLEPREP_INPUT_DIR, ...)
	EnvPrefix = "TABLEPREP"

	// File Discovery
	DefaultCSVPattern   = "*.csv"
	DefaultExcelPattern = "*.xlsx"

	// File Paths (relative to the working directory)
	DefaultInputDir   = "data/input"
	DefaultOutputDir  = "data/output"
	DefaultReportsDir = "data/reports"
	DefaultLogsDir    = "logs"

	// Output Naming
	CleanedSuffix         = "_cleaned.csv"
	TransformedSuffix     = "_transformed.csv"
	RunReportSuffix       = "_run.json"
	TransformParamsSuffix = "_params.json"

	// Pipeline Defaults
	DefaultWorkers    = 4
	DefaultRunTimeout = 30 * time.Minute

	// Log Settings
	DefaultLogLevel    = "info"
	DefaultLogFormat   = "json"
	DefaultLogFilePath = DefaultLogsDir + "/tableprep.log"

	// Telemetry
	DefaultMetricsPort = 9090
	MetricsEndpoint    = "/metrics"
)
