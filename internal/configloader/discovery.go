package configloader

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"slices"
)

// ConfigPaths holds the config file found at each level. An empty field means
// no file exists there.
type ConfigPaths struct {
	System   string
	User     string
	Project  string
	Explicit string
}

// projectConfigFiles are tried in order in each directory of the upward search.
//
//nolint:gochecknoglobals // Read-only lookup table.
var projectConfigFiles = []string{
	".volblock.yml",
	".volblock.yaml",
	"volblock.yml",
	"volblock.yaml",
}

// searchStops end the upward search when present as a directory.
//
//nolint:gochecknoglobals // Read-only lookup table.
var searchStops = []string{".git", ".hg", ".svn"}

// DiscoverPaths locates the system, user and project config files for a run
// started in workDir.
func DiscoverPaths(ctx context.Context, workDir string) (*ConfigPaths, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("context cancelled: %w", err)
	}

	project, err := FindProjectConfig(ctx, workDir)
	if err != nil {
		return nil, err
	}

	paths := &ConfigPaths{Project: project}
	if dir := systemConfigDir(); dir != "" {
		paths.System = firstFile(dir, "config.yaml", "config.yml")
	}
	if dir := userConfigDir(); dir != "" {
		paths.User = firstFile(dir, "config.yaml", "config.yml")
	}
	return paths, nil
}

// systemConfigDir is /etc/volblock, or %ProgramData%\volblock on Windows.
func systemConfigDir() string {
	if runtime.GOOS != "windows" {
		return "/etc/volblock"
	}
	root := os.Getenv("ProgramData")
	if root == "" {
		root = `C:\ProgramData`
	}
	return filepath.Join(root, "volblock")
}

// userConfigDir is $XDG_CONFIG_HOME/volblock, falling back to ~/.config.
func userConfigDir() string {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, "volblock")
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".config", "volblock")
}

// firstFile returns the first of names that is a regular file in dir.
func firstFile(dir string, names ...string) string {
	for _, name := range names {
		path := filepath.Join(dir, name)
		if info, err := os.Stat(path); err == nil && info.Mode().IsRegular() {
			return path
		}
	}
	return ""
}

// FindProjectConfig walks from startDir towards the root and returns the
// first project config file it sees. The walk ends without a result at a
// repository root, the home directory or the filesystem root.
func FindProjectConfig(ctx context.Context, startDir string) (string, error) {
	if startDir == "" {
		wd, err := os.Getwd()
		if err != nil {
			return "", fmt.Errorf("get working directory: %w", err)
		}
		startDir = wd
	}
	dir, err := filepath.Abs(startDir)
	if err != nil {
		return "", fmt.Errorf("resolve absolute path: %w", err)
	}
	home, _ := os.UserHomeDir()

	for {
		if err := ctx.Err(); err != nil {
			return "", fmt.Errorf("context cancelled: %w", err)
		}
		if path := firstFile(dir, projectConfigFiles...); path != "" {
			return path, nil
		}
		parent := filepath.Dir(dir)
		if parent == dir || dir == home || stopsSearch(dir) {
			return "", nil
		}
		dir = parent
	}
}

func stopsSearch(dir string) bool {
	return slices.ContainsFunc(searchStops, func(name string) bool {
		info, err := os.Stat(filepath.Join(dir, name))
		return err == nil && info.IsDir()
	})
}
