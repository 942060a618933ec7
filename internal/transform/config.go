package transform

import (
	"fmt"
)

// ScalingMethod selects how numeric columns are rescaled.
type ScalingMethod string

const (
	ScaleNone     ScalingMethod = "NONE"
	ScaleMinMax   ScalingMethod = "MINMAX"
	ScaleStandard ScalingMethod = "STANDARD"
	ScaleRobust   ScalingMethod = "ROBUST"
	ScaleMaxAbs   ScalingMethod = "MAXABS"
	ScaleLog      ScalingMethod = "LOG"
	ScaleSqrt     ScalingMethod = "SQRT"
)

// EncodingMethod selects how categorical columns become numeric features.
type EncodingMethod string

const (
	EncodeNone      EncodingMethod = "NONE"
	EncodeLabel     EncodingMethod = "LABEL"
	EncodeOneHot    EncodingMethod = "ONEHOT"
	EncodeOrdinal   EncodingMethod = "ORDINAL"
	EncodeFrequency EncodingMethod = "FREQUENCY"
	EncodeTarget    EncodingMethod = "TARGET"
)

// InfinityPolicy selects the replacement written over ±Inf cells.
type InfinityPolicy string

const (
	InfinityToNull InfinityPolicy = "NULL"
	InfinityClamp  InfinityPolicy = "CLAMP"
)

// Calendar features derivable from a date column. Numeric features become
// int64 columns, the is_* features become boolean columns.
const (
	FeatureYear         = "year"
	FeatureMonth        = "month"
	FeatureDay          = "day"
	FeatureDayOfWeek    = "day_of_week"
	FeatureQuarter      = "quarter"
	FeatureWeekOfYear   = "week_of_year"
	FeatureHour         = "hour"
	FeatureIsWeekend    = "is_weekend"
	FeatureIsMonthStart = "is_month_start"
	FeatureIsMonthEnd   = "is_month_end"
)

// DefaultDateFeatures returns the features extracted when the caller does
// not name any.
func DefaultDateFeatures() []string {
	return []string{FeatureYear, FeatureMonth, FeatureDay, FeatureDayOfWeek, FeatureQuarter}
}

func knownFeature(name string) bool {
	switch name {
	case FeatureYear, FeatureMonth, FeatureDay, FeatureDayOfWeek, FeatureQuarter,
		FeatureWeekOfYear, FeatureHour, FeatureIsWeekend, FeatureIsMonthStart, FeatureIsMonthEnd:
		return true
	}
	return false
}

// Config is the full transformation configuration. Empty column lists mean
// "choose automatically": every date-like column for features, every
// string column for encoding, every numeric column for scaling.
type Config struct {
	ScalingMethod       ScalingMethod  `json:"scaling_method"`
	ScaleColumns        []string       `json:"scale_columns,omitempty"`
	EncodingMethod      EncodingMethod `json:"encoding_method"`
	EncodeColumns       []string       `json:"encode_columns,omitempty"`
	MaxCategories       int            `json:"max_categories"`
	ExtractDateFeatures bool           `json:"extract_date_features"`
	DateColumns         []string       `json:"date_columns,omitempty"`
	DateFeatures        []string       `json:"date_features,omitempty"`
	InfinityPolicy      InfinityPolicy `json:"infinity_policy"`
	InfinityClampValue  float64        `json:"infinity_clamp_value,omitempty"`
}

// DefaultConfig returns the standard transformation configuration: min-max
// scaling of every numeric column, label encoding of every categorical
// column, calendar features from every date column, infinities to null.
func DefaultConfig() Config {
	return Config{
		ScalingMethod:       ScaleMinMax,
		EncodingMethod:      EncodeLabel,
		MaxCategories:       20,
		ExtractDateFeatures: true,
		DateFeatures:        DefaultDateFeatures(),
		InfinityPolicy:      InfinityToNull,
	}
}

// withDefaults fills fields whose zero value is never a valid setting.
func (c Config) withDefaults() Config {
	if c.ScalingMethod == "" {
		c.ScalingMethod = ScaleMinMax
	}
	if c.EncodingMethod == "" {
		c.EncodingMethod = EncodeLabel
	}
	if c.InfinityPolicy == "" {
		c.InfinityPolicy = InfinityToNull
	}
	if c.MaxCategories == 0 {
		c.MaxCategories = 20
	}
	if len(c.DateFeatures) == 0 {
		c.DateFeatures = DefaultDateFeatures()
	}
	return c
}

// Validate checks for unknown method and feature names.
func (c Config) Validate() error {
	switch c.ScalingMethod {
	case ScaleNone, ScaleMinMax, ScaleStandard, ScaleRobust, ScaleMaxAbs, ScaleLog, ScaleSqrt:
	default:
		return fmt.Errorf("transform config: unknown scaling method %q", c.ScalingMethod)
	}
	switch c.EncodingMethod {
	case EncodeNone, EncodeLabel, EncodeOneHot, EncodeOrdinal, EncodeFrequency, EncodeTarget:
	default:
		return fmt.Errorf("transform config: unknown encoding method %q", c.EncodingMethod)
	}
	switch c.InfinityPolicy {
	case InfinityToNull, InfinityClamp:
	default:
		return fmt.Errorf("transform config: unknown infinity policy %q", c.InfinityPolicy)
	}
	if c.MaxCategories < 1 {
		return fmt.Errorf("transform config: max categories must be at least 1, got %d", c.MaxCategories)
	}
	for _, feature := range c.DateFeatures {
		if !knownFeature(feature) {
			return fmt.Errorf("transform config: unknown date feature %q", feature)
		}
	}
	return nil
}
