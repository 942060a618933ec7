package pipeline

import (
	"time"

	"tableprep/internal/cleaning"
	"tableprep/internal/transform"
	"tableprep/internal/validation"
)

// RunReport is the consolidated outcome of one pipeline run. Stage reports
// are embedded as produced by their engines; a disabled or unreached stage
// leaves its report nil.
type RunReport struct {
	RunID             string             `json:"run_id"`
	Source            string             `json:"source,omitempty"`
	ValidationEnabled bool               `json:"validation_enabled"`
	CleaningEnabled   bool               `json:"cleaning_enabled"`
	TransformEnabled  bool               `json:"transform_enabled"`
	RowsIn            int                `json:"rows_in"`
	RowsOut           int                `json:"rows_out"`
	Validation        *validation.Result `json:"validation,omitempty"`
	Cleaning          *cleaning.Report   `json:"cleaning,omitempty"`
	Transform         *transform.Result  `json:"transform,omitempty"`
	Warnings          []string           `json:"warnings,omitempty"`
	Duration          time.Duration      `json:"duration"`
}
