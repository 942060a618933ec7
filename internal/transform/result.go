package transform

import (
	"time"
)

// ScaleParams captures the statistics used to scale one column. Only the
// fields that the method needs are meaningful; the rest stay zero. The
// struct is the complete state required to invert the scaling.
type ScaleParams struct {
	Method ScalingMethod `json:"method"`
	Min    float64       `json:"min"`
	Max    float64       `json:"max"`
	Mean   float64       `json:"mean"`
	Std    float64       `json:"std"`
	Median float64       `json:"median"`
	IQR    float64       `json:"iqr"`
	MaxAbs float64       `json:"max_abs"`
}

// EncodeParams captures a learned category encoding for one column. Keys
// are the category values in their text form.
type EncodeParams struct {
	Method      EncodingMethod     `json:"method"`
	Mapping     map[string]int64   `json:"mapping,omitempty"`
	Categories  []string           `json:"categories,omitempty"`
	Frequencies map[string]float64 `json:"frequencies,omitempty"`
	TargetMeans map[string]float64 `json:"target_means,omitempty"`
}

// Result records everything a fit pass learned and did. It is the replay
// contract: Transform applied with a Result reproduces the fitted
// transformation on new data, and InverseTransformColumn reverses a
// column's scaling from its captured parameters. All fields marshal to
// JSON without loss.
type Result struct {
	ScaleParams      map[string]ScaleParams  `json:"scale_params"`
	EncodeParams     map[string]EncodeParams `json:"encode_params"`
	DateColumns      []string                `json:"date_columns,omitempty"`
	DateFeatures     []string                `json:"date_features,omitempty"`
	InfinityReplaced map[string]int          `json:"infinity_replaced,omitempty"`
	ColumnsAdded     []string                `json:"columns_added,omitempty"`
	ColumnsDropped   []string                `json:"columns_dropped,omitempty"`
	Warnings         []string                `json:"warnings,omitempty"`
	Duration         time.Duration           `json:"duration"`
}

// NewResult returns an empty result with its maps allocated.
func NewResult() *Result {
	return &Result{
		ScaleParams:      make(map[string]ScaleParams),
		EncodeParams:     make(map[string]EncodeParams),
		InfinityReplaced: make(map[string]int),
	}
}
