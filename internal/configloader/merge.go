package configloader

import (
	"slices"

	"github.com/yaklabco/volblock/pkg/config"
)

// merge combines two configurations, with override taking precedence over base.
// The merge follows these rules:
//   - Scalar values: override overwrites base if override is non-zero
//   - Booleans: only true overrides, so a layer cannot unset a lower one
//   - Slices: override replaces base entirely if override is non-nil
func merge(base, override *config.Config) *config.Config {
	if base == nil {
		return override
	}
	if override == nil {
		return base
	}

	result := *base.Clone()

	if override.Marker != "" {
		result.Marker = override.Marker
	}
	if override.Directive != "" {
		result.Directive = override.Directive
	}
	if override.Jobs != 0 {
		result.Jobs = override.Jobs
	}
	if override.MaxFileSize != 0 {
		result.MaxFileSize = override.MaxFileSize
	}

	if override.Backups {
		result.Backups = true
	}
	if override.DryRun {
		result.DryRun = true
	}
	if override.All {
		result.All = true
	}

	if override.Extensions != nil {
		result.Extensions = slices.Clone(override.Extensions)
	}

	return &result
}

// MergeAll merges multiple configurations in order, with later configs taking precedence.
func MergeAll(configs ...*config.Config) *config.Config {
	if len(configs) == 0 {
		return nil
	}

	result := configs[0]
	for i := 1; i < len(configs); i++ {
		result = merge(result, configs[i])
	}
	return result
}
