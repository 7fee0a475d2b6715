package runner

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"sort"

	"github.com/yaklabco/volblock/pkg/langdetect"
)

// ErrNoDatabase is returned when files must be selected from a missing
// compilation database.
var ErrNoDatabase = errors.New("no compilation database")

// Discover returns the sources a run processes as a sorted, de-duplicated
// list of absolute paths. Explicit files are taken as given, without the
// C-source filter; database files are filtered by langdetect.
func Discover(ctx context.Context, opts Options) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("discovery cancelled: %w", err)
	}

	workDir, err := resolveWorkDir(opts.WorkingDir)
	if err != nil {
		return nil, fmt.Errorf("resolve working directory: %w", err)
	}

	files := make([]string, 0, len(opts.Files))
	for _, path := range opts.Files {
		if !filepath.IsAbs(path) {
			path = filepath.Join(workDir, path)
		}
		files = append(files, filepath.Clean(path))
	}

	if len(opts.Files) == 0 || opts.All {
		if opts.DB == nil {
			return nil, ErrNoDatabase
		}
		files = append(files, langdetect.SelectCFiles(opts.DB.Files(), opts.Extensions...)...)
	}

	sort.Strings(files)
	return slices.Compact(files), nil
}

// resolveWorkDir resolves the working directory, defaulting to os.Getwd().
func resolveWorkDir(workDir string) (string, error) {
	if workDir == "" {
		wd, err := os.Getwd()
		if err != nil {
			return "", fmt.Errorf("get working directory: %w", err)
		}
		return wd, nil
	}
	absPath, err := filepath.Abs(workDir)
	if err != nil {
		return "", fmt.Errorf("resolve absolute path: %w", err)
	}
	return absPath, nil
}
