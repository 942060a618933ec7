package cleaning

import "time"

// Report accounts for everything one cleaning run changed. It is read-only
// after Clean returns. All fields serialize to JSON primitives.
type Report struct {
	RowsBefore                int            `json:"rows_before"`
	RowsAfter                 int            `json:"rows_after"`
	ColumnsBefore             int            `json:"columns_before"`
	ColumnsAfter              int            `json:"columns_after"`
	DuplicatesFound           int            `json:"duplicates_found"`
	DuplicatesRemoved         int            `json:"duplicates_removed"`
	NullsFound                int            `json:"nulls_found"`
	NullsHandled              int            `json:"nulls_handled"`
	DroppedColumns            []string       `json:"dropped_columns,omitempty"`
	OutliersByColumn          map[string]int `json:"outliers_by_column,omitempty"`
	OutlierRowsRemoved        int            `json:"outlier_rows_removed"`
	RetentionRate             float64        `json:"retention_rate"`
	MeetsRetentionRequirement bool           `json:"meets_retention_requirement"`
	Warnings                  []string       `json:"warnings,omitempty"`
	Errors                    []string       `json:"errors,omitempty"`
	Duration                  time.Duration  `json:"duration"`
}
