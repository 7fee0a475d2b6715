package configloader

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/yaklabco/volblock/pkg/config"
)

const envVarPrefix = "VOLBLOCK_"

// envVar binds VOLBLOCK_<Suffix> to the config field named Field.
type envVar struct {
	Suffix string
	Field  string
	Help   string
	set    func(cfg *config.Config, value string) error
}

func stringSetter(dst func(*config.Config) *string) func(*config.Config, string) error {
	return func(cfg *config.Config, value string) error {
		*dst(cfg) = value
		return nil
	}
}

func boolSetter(dst func(*config.Config) *bool) func(*config.Config, string) error {
	return func(cfg *config.Config, value string) error {
		b, err := strconv.ParseBool(value)
		if err != nil {
			return fmt.Errorf("want true or false, got %q", value)
		}
		*dst(cfg) = b
		return nil
	}
}

func intSetter(dst func(*config.Config, int64)) func(*config.Config, string) error {
	return func(cfg *config.Config, value string) error {
		n, err := strconv.ParseInt(strings.TrimSpace(value), 10, 64)
		if err != nil {
			return fmt.Errorf("want an integer, got %q", value)
		}
		dst(cfg, n)
		return nil
	}
}

// envVars is sorted by Suffix.
//
//nolint:gochecknoglobals // Read-only lookup table.
var envVars = []envVar{
	{"BACKUPS", "backups", "Keep .volblock.bak copies: true or false",
		boolSetter(func(c *config.Config) *bool { return &c.Backups })},
	{"DIRECTIVE", "directive", "Text inserted before functions by optnone",
		stringSetter(func(c *config.Config) *string { return &c.Directive })},
	{"DRY_RUN", "dry_run", "Print diffs instead of writing: true or false",
		boolSetter(func(c *config.Config) *bool { return &c.DryRun })},
	{"EXTENSIONS", "extensions", "Comma-separated extra C source extensions",
		func(c *config.Config, value string) error {
			c.Extensions = splitList(value)
			return nil
		}},
	{"JOBS", "jobs", "Number of concurrent parses (0 = auto)",
		intSetter(func(c *config.Config, n int64) { c.Jobs = int(n) })},
	{"MARKER", "marker", "Sentinel type name of marker blocks",
		stringSetter(func(c *config.Config) *string { return &c.Marker })},
	{"MAX_FILE_SIZE", "max_file_size", "Largest file read by the front end, in bytes",
		intSetter(func(c *config.Config, n int64) { c.MaxFileSize = n })},
}

// LoadFromEnv overrides cfg with every non-empty VOLBLOCK_* variable.
func LoadFromEnv(cfg *config.Config) error {
	if cfg == nil {
		return nil
	}
	for _, v := range envVars {
		name := envVarPrefix + v.Suffix
		value := os.Getenv(name)
		if value == "" {
			continue
		}
		if err := v.set(cfg, value); err != nil {
			return fmt.Errorf("%s: %w", name, err)
		}
	}
	return nil
}

// splitList splits a comma-separated value, dropping blank elements.
func splitList(value string) []string {
	var out []string
	for part := range strings.SplitSeq(value, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

// GetEnvVarName returns the variable that sets field, or "" if none does.
func GetEnvVarName(field string) string {
	for _, v := range envVars {
		if v.Field == field {
			return envVarPrefix + v.Suffix
		}
	}
	return ""
}

// ListEnvVars returns the supported variables in name order, each paired with
// its description.
func ListEnvVars() [][2]string {
	vars := make([][2]string, len(envVars))
	for i, v := range envVars {
		vars[i] = [2]string{envVarPrefix + v.Suffix, v.Help}
	}
	return vars
}
