// Package config defines the configuration of a volblock run.
// These types are plain data; loading and layering live in internal/configloader.
package config

import (
	"github.com/yaklabco/volblock/pkg/marker"
	"github.com/yaklabco/volblock/pkg/optnone"
	"github.com/yaklabco/volblock/pkg/parser/treesitter"
)

// DefaultExtensions are the file extensions treated as C sources when
// selecting from a compilation database.
func DefaultExtensions() []string {
	return []string{".c"}
}

// Config is the root configuration structure for volblock.
type Config struct {
	// Marker is the sentinel type name that tags a marker block.
	Marker string `yaml:"marker"`

	// Directive is the text the optnone pass inserts before a function.
	Directive string `yaml:"directive"`

	// Backups keeps a sidecar copy of each file before its first rewrite.
	Backups bool `yaml:"backups"`

	// DryRun prints diffs instead of writing files.
	DryRun bool `yaml:"dry_run"`

	// Jobs bounds the number of concurrent parses (0 means auto).
	Jobs int `yaml:"jobs"`

	// MaxFileSize is the largest source or header, in bytes, the front end reads.
	MaxFileSize int64 `yaml:"max_file_size"`

	// Extensions are extra extensions selected as C sources.
	Extensions []string `yaml:"extensions"`

	// CLI-level options (not persisted to config files).

	// All processes every C source in the database in addition to the
	// files named on the command line.
	All bool `yaml:"-"`
}

// NewConfig returns a Config with sensible defaults.
func NewConfig() *Config {
	return &Config{
		Marker:      marker.DefaultSentinel,
		Directive:   optnone.DefaultDirective,
		Jobs:        0, // 0 means use runtime.NumCPU
		MaxFileSize: treesitter.DefaultMaxFileSize,
		Extensions:  DefaultExtensions(),
	}
}
