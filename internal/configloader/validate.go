package configloader

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/yaklabco/volblock/pkg/config"
)

// ValidationError is one finding against a config field. Error renders it as
// "file: field: message", leaving out whichever parts are unknown.
type ValidationError struct {
	Field    string
	Value    any
	Message  string
	FilePath string
}

func (e *ValidationError) Error() string {
	parts := make([]string, 0, 3)
	for _, part := range []string{e.FilePath, e.Field} {
		if part != "" {
			parts = append(parts, part)
		}
	}
	return strings.Join(append(parts, e.Message), ": ")
}

// ValidationResult holds the errors that stop a load and the warnings that
// are only reported.
type ValidationResult struct {
	Errors   []ValidationError
	Warnings []ValidationError
}

// Valid reports whether there are no errors.
func (r *ValidationResult) Valid() bool {
	return len(r.Errors) == 0
}

func (r *ValidationResult) fail(field string, value any, format string, args ...any) {
	r.Errors = append(r.Errors, ValidationError{Field: field, Value: value, Message: fmt.Sprintf(format, args...)})
}

func (r *ValidationResult) warn(field string, value any, format string, args ...any) {
	r.Warnings = append(r.Warnings, ValidationError{Field: field, Value: value, Message: fmt.Sprintf(format, args...)})
}

var identifier = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

// Validate checks the values a config sets. Zero values mean unset and are
// not checked.
func Validate(cfg *config.Config) *ValidationResult {
	result := &ValidationResult{}
	if cfg == nil {
		return result
	}

	if cfg.Marker != "" && !identifier.MatchString(cfg.Marker) {
		result.fail("marker", cfg.Marker, "invalid marker %q; must be a C identifier", cfg.Marker)
	}

	switch directive := cfg.Directive; {
	case directive == "":
	case strings.TrimSpace(directive) == "":
		result.fail("directive", directive, "directive must not be blank")
	case !strings.HasSuffix(directive, " ") && !strings.HasSuffix(directive, "\n"):
		result.warn("directive", directive, "directive does not end in whitespace; it will be glued to the declaration")
	}

	if cfg.Jobs < 0 {
		result.fail("jobs", cfg.Jobs, "jobs must be >= 0 (0 means auto)")
	}
	if cfg.MaxFileSize < 0 {
		result.fail("max_file_size", cfg.MaxFileSize, "max_file_size must be > 0")
	}
	for i, ext := range cfg.Extensions {
		if !strings.HasPrefix(ext, ".") || strings.ContainsAny(ext, `/\`) {
			result.fail(fmt.Sprintf("extensions[%d]", i), ext, "invalid extension %q; must start with a dot", ext)
		}
	}
	return result
}

// ValidateWithFile is Validate with every finding attributed to filePath.
func ValidateWithFile(cfg *config.Config, filePath string) *ValidationResult {
	result := Validate(cfg)
	for _, findings := range [][]ValidationError{result.Errors, result.Warnings} {
		for i := range findings {
			findings[i].FilePath = filePath
		}
	}
	return result
}
