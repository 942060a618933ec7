package exporter

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

// WriteJSON writes any report as indented JSON. Every pipeline report
// (validation, cleaning, transform, ingest, run) marshals losslessly, so
// this is the one export path they all share.
func (w *CSVWriter) WriteJSON(filePath string, v any) error {
	fullPath := w.resolvePath(filePath)

	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal %s: %w", filepath.Base(fullPath), err)
	}
	if err := os.MkdirAll(filepath.Dir(fullPath), 0o755); err != nil {
		return fmt.Errorf("create directory: %w", err)
	}
	if err := os.WriteFile(fullPath, data, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", filepath.Base(fullPath), err)
	}
	return nil
}
