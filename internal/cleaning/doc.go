// Package cleaning implements the dataset cleaning engine: text
// normalization, duplicate removal, high-null column dropping, configurable
// null handling, statistical outlier detection, and a minimum-retention
// check.
//
// Stages always run in that fixed order when enabled. The engine returns the
// cleaned table together with a Report accounting for every row and value it
// touched; data problems become report warnings, never errors.
package cleaning
