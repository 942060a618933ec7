package cleaning

import (
	"fmt"
)

// NullStrategy selects how null cells are resolved.
type NullStrategy string

const (
	NullDrop            NullStrategy = "DROP"
	NullFillZero        NullStrategy = "FILL_ZERO"
	NullFillMean        NullStrategy = "FILL_MEAN"
	NullFillMedian      NullStrategy = "FILL_MEDIAN"
	NullFillMode        NullStrategy = "FILL_MODE"
	NullFillForward     NullStrategy = "FILL_FORWARD"
	NullFillBackward    NullStrategy = "FILL_BACKWARD"
	NullFillInterpolate NullStrategy = "FILL_INTERPOLATE"
)

// OutlierMethod selects the outlier detector.
type OutlierMethod string

const (
	OutlierZScore OutlierMethod = "zscore"
	OutlierIQR    OutlierMethod = "iqr"
)

// Config is the full cleaning configuration. It is immutable once a cleaning
// run starts. The zero value is usable: NewEngine repairs empty method names
// and zero thresholds from DefaultConfig.
type Config struct {
	RemoveDuplicates    bool          `json:"remove_duplicates"`
	DuplicateSubset     []string      `json:"duplicate_subset,omitempty"`
	KeepLast            bool          `json:"keep_last"`
	NullStrategy        NullStrategy  `json:"null_strategy"`
	NullColumnThreshold float64       `json:"null_column_threshold"`
	RequiredColumns     []string      `json:"required_columns,omitempty"`
	OutlierMethod       OutlierMethod `json:"outlier_method"`
	ZScoreThreshold     float64       `json:"zscore_threshold"`
	IQRFactor           float64       `json:"iqr_factor"`
	RemoveOutliers      bool          `json:"remove_outliers"`
	NormalizeText       bool          `json:"normalize_text"`
	LowercaseText       bool          `json:"lowercase_text"`
	MinRetentionRate    float64       `json:"min_retention_rate"`
}

// DefaultConfig returns the standard cleaning configuration: dedupe across
// all columns keeping the first occurrence, drop columns over 50% null, drop
// rows with remaining nulls, detect (but keep) Z-score outliers at 3.0, and
// warn below 70% retention.
func DefaultConfig() Config {
	return Config{
		RemoveDuplicates:    true,
		NullStrategy:        NullDrop,
		NullColumnThreshold: 0.5,
		OutlierMethod:       OutlierZScore,
		ZScoreThreshold:     3.0,
		IQRFactor:           1.5,
		RemoveOutliers:      false,
		NormalizeText:       true,
		MinRetentionRate:    0.70,
	}
}

// withDefaults fills fields whose zero value is never a valid setting.
// Boolean toggles are left alone: false is a choice.
func (c Config) withDefaults() Config {
	def := DefaultConfig()
	if c.NullStrategy == "" {
		c.NullStrategy = def.NullStrategy
	}
	if c.OutlierMethod == "" {
		c.OutlierMethod = def.OutlierMethod
	}
	if c.ZScoreThreshold == 0 {
		c.ZScoreThreshold = def.ZScoreThreshold
	}
	if c.IQRFactor == 0 {
		c.IQRFactor = def.IQRFactor
	}
	if c.NullColumnThreshold == 0 {
		c.NullColumnThreshold = def.NullColumnThreshold
	}
	if c.MinRetentionRate == 0 {
		c.MinRetentionRate = def.MinRetentionRate
	}
	return c
}

// Validate checks the configuration for contradictory or out-of-range
// settings.
func (c Config) Validate() error {
	switch c.NullStrategy {
	case NullDrop, NullFillZero, NullFillMean, NullFillMedian, NullFillMode,
		NullFillForward, NullFillBackward, NullFillInterpolate:
	default:
		return &ValidationError{Field: "null_strategy", Message: "unknown strategy", Value: c.NullStrategy}
	}
	switch c.OutlierMethod {
	case OutlierZScore, OutlierIQR:
	default:
		return &ValidationError{Field: "outlier_method", Message: "unknown method", Value: c.OutlierMethod}
	}
	if c.NullColumnThreshold < 0 || c.NullColumnThreshold > 1 {
		return &ValidationError{Field: "null_column_threshold", Message: "must be within [0, 1]", Value: c.NullColumnThreshold}
	}
	if c.MinRetentionRate < 0 || c.MinRetentionRate > 1 {
		return &ValidationError{Field: "min_retention_rate", Message: "must be within [0, 1]", Value: c.MinRetentionRate}
	}
	if c.ZScoreThreshold <= 0 {
		return &ValidationError{Field: "zscore_threshold", Message: "must be positive", Value: c.ZScoreThreshold}
	}
	if c.IQRFactor <= 0 {
		return &ValidationError{Field: "iqr_factor", Message: "must be positive", Value: c.IQRFactor}
	}
	return nil
}

// ValidationError describes one invalid configuration field.
type ValidationError struct {
	Field   string
	Message string
	Value   interface{}
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s (got %v)", e.Field, e.Message, e.Value)
}
