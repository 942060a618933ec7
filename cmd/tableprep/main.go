package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"sync/atomic"
	"syscall"
	"time"

	"go.opentelemetry.io/otel"
	"golang.org/x/sync/errgroup"

	"tableprep/internal/cleaning"
	"tableprep/internal/config"
	"tableprep/internal/dataset"
	"tableprep/internal/exporter"
	"tableprep/internal/infrastructure"
	"tableprep/internal/ingest"
	"tableprep/internal/pipeline"
	"tableprep/internal/transform"
	"tableprep/internal/validation"
)

const systemMetricsInterval = 30 * time.Second

// cliFlags holds the command-line overrides. Flags beat environment
// variables, which beat the YAML file, which beats the defaults.
type cliFlags struct {
	configFile  string
	inputDir    string
	outputDir   string
	rulesFile   string
	target      string
	workers     int
	noValidate  bool
	noClean     bool
	noTransform bool
}

func main() {
	var fl cliFlags
	flag.StringVar(&fl.configFile, "config", "", "path to YAML config file (searches standard locations when empty)")
	flag.StringVar(&fl.inputDir, "in", "", "input directory override")
	flag.StringVar(&fl.outputDir, "out", "", "output directory override")
	flag.StringVar(&fl.rulesFile, "rules", "", "validation rules JSON file override")
	flag.StringVar(&fl.target, "target", "", "target column override")
	flag.IntVar(&fl.workers, "workers", 0, "concurrent file workers override")
	flag.BoolVar(&fl.noValidate, "no-validate", false, "skip the validation stage")
	flag.BoolVar(&fl.noClean, "no-clean", false, "skip the cleaning stage")
	flag.BoolVar(&fl.noTransform, "no-transform", false, "skip the transformation stage")
	showVersion := flag.Bool("version", false, "print version and exit")
	flag.Parse()

	if *showVersion {
		fmt.Printf("%s %s\n", config.AppName, config.AppVersion)
		return
	}

	cfg, err := config.Load(fl.configFile)
	if err != nil {
		slog.Error("Failed to load configuration", "error", err)
		os.Exit(1)
	}
	applyOverrides(cfg, fl)

	if err := cfg.EnsureDirectories(); err != nil {
		slog.Error("Failed to create required directories", "error", err)
		os.Exit(1)
	}

	logger, err := infrastructure.InitializeLogger(cfg.Logging)
	if err != nil {
		slog.Warn("Failed to initialize logger, using default", "error", err)
		logger = slog.Default()
	}
	defer infrastructure.CloseLogFile()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	ctx, cancel := context.WithTimeout(ctx, config.DefaultRunTimeout)
	defer cancel()

	providers, err := infrastructure.InitializeOTel(cfg.Telemetry, logger)
	if err != nil {
		logger.Warn("continuing without telemetry", slog.String("error", err.Error()))
		providers = nil
	}

	var metricsServer *http.Server
	var collector *infrastructure.SystemMetricsCollector
	if providers != nil {
		metricsServer = providers.StartMetricsServer(cfg.Telemetry.MetricsPort)
		if cfg.Telemetry.EnableMetrics {
			collector, err = infrastructure.NewSystemMetricsCollector(otel.Meter(infrastructure.MeterName), systemMetricsInterval)
			if err != nil {
				logger.Warn("system metrics collector unavailable", slog.String("error", err.Error()))
			} else {
				go collector.Start(ctx)
			}
		}
	}

	var rules []validation.Rule
	if cfg.Pipeline.RulesFile != "" {
		rules, err = validation.LoadRules(cfg.Pipeline.RulesFile)
		if err != nil {
			logger.Error("failed to load validation rules",
				slog.String("file", cfg.Pipeline.RulesFile),
				slog.String("error", err.Error()))
			os.Exit(1)
		}
		logger.Info("validation rules loaded",
			slog.String("file", cfg.Pipeline.RulesFile),
			slog.Int("rules", len(rules)))
	}

	fv := validation.NewFileValidator(logger)
	if err := fv.ValidateInputDirectory(cfg.Input.Dir, cfg.Input.Patterns...); err != nil {
		logger.Error("input directory check failed", slog.String("error", err.Error()))
		os.Exit(1)
	}
	if err := fv.ValidateOutputDirectory(cfg.Output.Dir); err != nil {
		logger.Error("output directory check failed", slog.String("error", err.Error()))
		os.Exit(1)
	}

	files, err := fv.DiscoverFiles(cfg.Input.Dir, cfg.Input.Patterns...)
	if err != nil {
		logger.Error("input discovery failed", slog.String("error", err.Error()))
		os.Exit(1)
	}

	logger.InfoContext(ctx, "starting batch run",
		slog.String("input_dir", cfg.Input.Dir),
		slog.String("output_dir", cfg.Output.Dir),
		slog.Int("files", len(files)),
		slog.Int("workers", cfg.Pipeline.Workers))
	fmt.Printf("Found %d input files\n", len(files))

	if len(files) == 0 {
		shutdownTelemetry(providers, metricsServer, collector, logger)
		return
	}

	proc := &processor{
		logger:       logger,
		runner:       pipeline.NewRunner(logger),
		files:        fv,
		cfg:          cfg,
		runCfg:       buildRunConfig(cfg, rules),
		tableWriter:  exporter.NewCSVWriter(cfg.Output.Dir, logger),
		reportWriter: exporter.NewCSVWriter(cfg.Output.ReportsDir, logger),
	}

	outcomes := make([]fileOutcome, len(files))
	var done atomic.Int64

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(cfg.Pipeline.Workers)
	for i, path := range files {
		i, path := i, path
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				outcomes[i] = fileOutcome{Path: path, Err: err}
				return err
			}
			outcomes[i] = proc.processFile(gctx, path)
			n := done.Add(1)
			if outcomes[i].Err != nil {
				fmt.Printf("Failed %d of %d: %s\n", n, len(files), filepath.Base(path))
			} else {
				fmt.Printf("Processed %d of %d: %s\n", n, len(files), filepath.Base(path))
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		logger.WarnContext(ctx, "batch interrupted", slog.String("error", err.Error()))
	}

	failed := 0
	for _, outcome := range outcomes {
		if outcome.Err != nil {
			failed++
			logger.Error("file processing failed",
				slog.String("file", outcome.Path),
				slog.String("error", outcome.Err.Error()))
		}
	}
	logger.InfoContext(ctx, "batch run complete",
		slog.Int("files", len(files)),
		slog.Int("failed", failed))
	fmt.Printf("Processing complete: %d files, %d failed\n", len(files), failed)

	shutdownTelemetry(providers, metricsServer, collector, logger)

	if failed == len(files) {
		os.Exit(1)
	}
}

// applyOverrides lays the command-line flags over the loaded configuration.
// Zero values mean "not set" and leave the configuration alone.
func applyOverrides(cfg *config.Config, fl cliFlags) {
	if fl.inputDir != "" {
		cfg.Input.Dir = fl.inputDir
	}
	if fl.outputDir != "" {
		cfg.Output.Dir = fl.outputDir
	}
	if fl.rulesFile != "" {
		cfg.Pipeline.RulesFile = fl.rulesFile
	}
	if fl.target != "" {
		cfg.Transform.TargetColumn = fl.target
	}
	if fl.workers > 0 {
		cfg.Pipeline.Workers = fl.workers
	}
	if fl.noValidate {
		cfg.Pipeline.Validate = false
	}
	if fl.noClean {
		cfg.Pipeline.Clean = false
	}
	if fl.noTransform {
		cfg.Pipeline.Transform = false
	}
}

// buildRunConfig materializes the engines' configuration structs from the
// application configuration.
func buildRunConfig(cfg *config.Config, rules []validation.Rule) pipeline.RunConfig {
	return pipeline.RunConfig{
		ValidationEnabled: cfg.Pipeline.Validate,
		CleaningEnabled:   cfg.Pipeline.Clean,
		TransformEnabled:  cfg.Pipeline.Transform,
		Rules:             rules,
		Cleaning: cleaning.Config{
			RemoveDuplicates:    cfg.Cleaning.RemoveDuplicates,
			DuplicateSubset:     cfg.Cleaning.DuplicateSubset,
			KeepLast:            cfg.Cleaning.KeepLast,
			NullStrategy:        cleaning.NullStrategy(cfg.Cleaning.NullStrategy),
			NullColumnThreshold: cfg.Cleaning.NullColumnThreshold,
			RequiredColumns:     cfg.Cleaning.RequiredColumns,
			OutlierMethod:       cleaning.OutlierMethod(cfg.Cleaning.OutlierMethod),
			ZScoreThreshold:     cfg.Cleaning.ZScoreThreshold,
			IQRFactor:           cfg.Cleaning.IQRFactor,
			RemoveOutliers:      cfg.Cleaning.RemoveOutliers,
			NormalizeText:       cfg.Cleaning.NormalizeText,
			LowercaseText:       cfg.Cleaning.LowercaseText,
			MinRetentionRate:    cfg.Cleaning.MinRetentionRate,
		},
		Transform: transform.Config{
			ScalingMethod:       transform.ScalingMethod(cfg.Transform.ScalingMethod),
			ScaleColumns:        cfg.Transform.ScaleColumns,
			EncodingMethod:      transform.EncodingMethod(cfg.Transform.EncodingMethod),
			EncodeColumns:       cfg.Transform.EncodeColumns,
			MaxCategories:       cfg.Transform.MaxCategories,
			ExtractDateFeatures: cfg.Transform.ExtractDateFeatures,
			DateColumns:         cfg.Transform.DateColumns,
			DateFeatures:        cfg.Transform.DateFeatures,
			InfinityPolicy:      transform.InfinityPolicy(cfg.Transform.InfinityPolicy),
			InfinityClampValue:  cfg.Transform.InfinityClampValue,
		},
		TargetColumn: cfg.Transform.TargetColumn,
	}
}

// fileOutcome records one file's terminal state for the end-of-run summary.
type fileOutcome struct {
	Path     string
	RunID    string
	RowsIn   int
	RowsOut  int
	Warnings int
	Err      error
}

// runDocument is the JSON document written per input file: the ingest
// profile of the source plus the consolidated pipeline run report.
type runDocument struct {
	Ingest *ingest.Report      `json:"ingest,omitempty"`
	Run    *pipeline.RunReport `json:"run"`
}

// processor bundles the collaborators shared by all file workers. It is
// safe for concurrent use: the runner is stateless across runs and each
// worker takes its own copy of the run configuration.
type processor struct {
	logger       *slog.Logger
	runner       *pipeline.Runner
	files        *validation.FileValidator
	cfg          *config.Config
	runCfg       pipeline.RunConfig
	tableWriter  *exporter.CSVWriter
	reportWriter *exporter.CSVWriter
}

// processFile runs one input file through the pipeline and writes its
// outputs. Failures are returned in the outcome, never raised, so one bad
// file does not stop the batch.
func (p *processor) processFile(ctx context.Context, path string) fileOutcome {
	outcome := fileOutcome{Path: path}

	if err := p.files.ValidateTabularFile(path); err != nil {
		outcome.Err = err
		return outcome
	}

	tbl, profile, err := p.readTable(path)
	if err != nil {
		outcome.Err = err
		return outcome
	}
	p.logger.DebugContext(ctx, "file loaded",
		slog.String("file", filepath.Base(path)),
		slog.String("format", profile.Format),
		slog.Int("rows", profile.RowCount),
		slog.Int("columns", profile.ColumnCount))

	fileCfg := p.runCfg
	fileCfg.Source = filepath.Base(path)

	out, report, err := p.runner.Run(ctx, tbl, fileCfg)
	if err != nil {
		outcome.Err = fmt.Errorf("process %s: %w", filepath.Base(path), err)
		return outcome
	}

	if err := p.writeOutputs(path, out, profile, report); err != nil {
		outcome.Err = err
		return outcome
	}

	outcome.RunID = report.RunID
	outcome.RowsIn = report.RowsIn
	outcome.RowsOut = report.RowsOut
	outcome.Warnings = len(report.Warnings)
	return outcome
}

// readTable loads one input file with the configured delimiter and sheet.
func (p *processor) readTable(path string) (*dataset.Table, *ingest.Report, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".csv":
		var opts ingest.CSVOptions
		if r := []rune(p.cfg.Input.Delimiter); len(r) > 0 {
			opts.Delimiter = r[0]
		}
		return ingest.ReadCSV(path, opts)
	case ".xlsx", ".xlsm":
		return ingest.ReadExcel(path, p.cfg.Input.Sheet)
	default:
		return nil, nil, fmt.Errorf("unsupported file type %q", filepath.Ext(path))
	}
}

// writeOutputs persists the processed table and the run's reports. The table
// file name reflects the deepest stage that ran; validate-only runs write
// reports but no table copy.
func (p *processor) writeOutputs(path string, out *dataset.Table, profile *ingest.Report, report *pipeline.RunReport) error {
	stem := outputStem(path)

	switch {
	case p.runCfg.TransformEnabled:
		if err := p.tableWriter.WriteTable(stem+config.TransformedSuffix, out); err != nil {
			return err
		}
	case p.runCfg.CleaningEnabled:
		if err := p.tableWriter.WriteTable(stem+config.CleanedSuffix, out); err != nil {
			return err
		}
	}

	doc := runDocument{Ingest: profile, Run: report}
	if err := p.reportWriter.WriteJSON(stem+config.RunReportSuffix, doc); err != nil {
		return err
	}
	if report.Transform != nil {
		if err := p.reportWriter.WriteJSON(stem+config.TransformParamsSuffix, report.Transform); err != nil {
			return err
		}
	}
	return nil
}

// outputStem strips the directory and extension from an input path.
func outputStem(path string) string {
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}

// shutdownTelemetry flushes and stops the telemetry stack in reverse start
// order.
func shutdownTelemetry(providers *infrastructure.OTelProviders, srv *http.Server, collector *infrastructure.SystemMetricsCollector, logger *slog.Logger) {
	if collector != nil {
		collector.Stop()
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if srv != nil {
		if err := srv.Shutdown(ctx); err != nil {
			logger.Warn("metrics listener shutdown failed", slog.String("error", err.Error()))
		}
	}
	if providers != nil {
		if err := providers.Shutdown(ctx); err != nil {
			logger.Warn("telemetry shutdown failed", slog.String("error", err.Error()))
		}
	}
}
