package validation

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// tabularExtensions are the file types the ingest layer can load.
var tabularExtensions = map[string]bool{
	".csv":  true,
	".xlsx": true,
	".xlsm": true,
}

// FileValidator runs the filesystem preflight checks shared by the
// command-line entrypoints: input directories exist, output directories are
// writable, and candidate files are loadable tabular formats.
type FileValidator struct {
	logger *slog.Logger
}

// NewFileValidator creates a file validator. A nil logger falls back to
// slog.Default.
func NewFileValidator(logger *slog.Logger) *FileValidator {
	if logger == nil {
		logger = slog.Default()
	}
	return &FileValidator{logger: logger}
}

// ValidateInputDirectory checks that dir exists and is a directory. When
// patterns are given it also logs how many files match; zero matches is not
// an error, there is simply nothing to process.
func (v *FileValidator) ValidateInputDirectory(dir string, patterns ...string) error {
	info, err := os.Stat(dir)
	if os.IsNotExist(err) {
		return fmt.Errorf("input directory %s does not exist", dir)
	}
	if err != nil {
		return fmt.Errorf("stat input directory %s: %w", dir, err)
	}
	if !info.IsDir() {
		return fmt.Errorf("%s is not a directory", dir)
	}

	for _, pattern := range patterns {
		matches, err := filepath.Glob(filepath.Join(dir, pattern))
		if err != nil {
			return fmt.Errorf("bad file pattern %q: %w", pattern, err)
		}
		if len(matches) == 0 {
			v.logger.Warn("no files match pattern",
				slog.String("directory", dir),
				slog.String("pattern", pattern))
			continue
		}
		v.logger.Debug("input pattern matched",
			slog.String("directory", dir),
			slog.String("pattern", pattern),
			slog.Int("files_found", len(matches)))
	}
	return nil
}

// DiscoverFiles globs every pattern under dir and returns the union of
// matching regular files sorted by name. Spreadsheet lock files ("~$" prefix)
// are skipped. Patterns that match nothing contribute nothing.
func (v *FileValidator) DiscoverFiles(dir string, patterns ...string) ([]string, error) {
	seen := make(map[string]bool)
	var files []string
	for _, pattern := range patterns {
		matches, err := filepath.Glob(filepath.Join(dir, pattern))
		if err != nil {
			return nil, fmt.Errorf("bad file pattern %q: %w", pattern, err)
		}
		for _, match := range matches {
			if seen[match] {
				continue
			}
			seen[match] = true
			if strings.HasPrefix(filepath.Base(match), "~$") {
				continue
			}
			info, err := os.Stat(match)
			if err != nil || info.IsDir() {
				continue
			}
			files = append(files, match)
		}
	}
	sort.Strings(files)

	v.logger.Debug("input files discovered",
		slog.String("directory", dir),
		slog.Int("count", len(files)))
	return files, nil
}

// ValidateOutputDirectory ensures dir exists, creating it when needed, and
// probes that it is writable.
func (v *FileValidator) ValidateOutputDirectory(dir string) error {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("create output directory %s: %w", dir, err)
	}

	probe := filepath.Join(dir, ".write_test")
	file, err := os.Create(probe)
	if err != nil {
		return fmt.Errorf("output directory %s is not writable: %w", dir, err)
	}
	file.Close()
	os.Remove(probe)
	return nil
}

// ValidateFile checks that path names an existing, readable regular file.
func (v *FileValidator) ValidateFile(path string) error {
	info, err := os.Stat(path)
	if os.IsNotExist(err) {
		return fmt.Errorf("file %s does not exist", path)
	}
	if err != nil {
		return fmt.Errorf("stat file %s: %w", path, err)
	}
	if info.IsDir() {
		return fmt.Errorf("%s is a directory, not a file", path)
	}

	file, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("file %s is not readable: %w", path, err)
	}
	file.Close()

	v.logger.Debug("file validated",
		slog.String("file", path),
		slog.Int64("size", info.Size()))
	return nil
}

// ValidateTabularFile checks that path is a readable file in a format the
// ingest layer supports. Spreadsheet lock files are rejected.
func (v *FileValidator) ValidateTabularFile(path string) error {
	if err := v.ValidateFile(path); err != nil {
		return err
	}

	ext := strings.ToLower(filepath.Ext(path))
	if !tabularExtensions[ext] {
		return fmt.Errorf("file %s is not a supported tabular format (extension %q)", path, ext)
	}
	if strings.HasPrefix(filepath.Base(path), "~$") {
		return fmt.Errorf("file %s is a spreadsheet lock file", path)
	}
	return nil
}
