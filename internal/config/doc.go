// Package config provides centralized configuration for the tableprep CLI.
// It loads settings from multiple sources, validates them, and hands typed
// sections to the packages that consume them.
//
// # Configuration Sources
//
// Configuration is resolved in rising precedence:
//
//	1. Built-in defaults (Default)
//	2. Optional YAML file (tableprep.yaml, config.yaml, configs/config.yaml)
//	3. Environment variables (highest priority)
//
// Command-line flags override all three; the CLI applies them after Load.
//
// # Environment Variables
//
// All environment variables follow the pattern TABLEPREP_* for namespacing:
//
//	TABLEPREP_INPUT_DIR=data/input
//	TABLEPREP_PIPELINE_WORKERS=8
//	TABLEPREP_CLEANING_NULL_STRATEGY=FILL_MEAN
//	TABLEPREP_LOGGING_LEVEL=debug
//
// # Validation
//
// Load validates the merged configuration with go-playground/validator
// struct tags plus a few cross-field checks. Engine-level settings
// (cleaning, transform) are range-checked here and validated in depth by
// the engines themselves when a run starts.
//
// # Usage
//
// Load configuration at application startup:
//
//	cfg, err := config.Load(*configFlag)
//	if err != nil {
//	    log.Fatal(err)
//	}
package config
