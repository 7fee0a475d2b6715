package treesitter

import (
	"os"
	"path/filepath"
	"strings"
)

// SearchPath holds the include directories of one compile command.
type SearchPath struct {
	// Quote dirs (-iquote) are searched for "..." includes only.
	Quote []string

	// Bracket dirs (-I) are searched for both include forms.
	Bracket []string
}

// resolve locates the header named by an #include directive. Quoted names are
// looked up next to the including file first. System headers are never
// found because only the command's own directories are searched.
func (sp SearchPath) resolve(name string, angled bool, includingDir string) (string, bool) {
	if name == "" {
		return "", false
	}
	if filepath.IsAbs(name) {
		return name, isRegularFile(name)
	}

	var dirs []string
	if !angled {
		dirs = append(dirs, includingDir)
		dirs = append(dirs, sp.Quote...)
	}
	dirs = append(dirs, sp.Bracket...)

	for _, dir := range dirs {
		candidate := filepath.Join(dir, name)
		if isRegularFile(candidate) {
			return candidate, true
		}
	}
	return "", false
}

// includeTarget splits the path operand of an #include directive.
func includeTarget(operand string) (string, bool, bool) {
	operand = strings.TrimSpace(operand)
	if len(operand) < 2 {
		return "", false, false
	}
	switch {
	case operand[0] == '"' && operand[len(operand)-1] == '"':
		return operand[1 : len(operand)-1], false, true
	case operand[0] == '<' && operand[len(operand)-1] == '>':
		return operand[1 : len(operand)-1], true, true
	default:
		// Computed includes are not expanded.
		return "", false, false
	}
}

func isRegularFile(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.Mode().IsRegular()
}

// Canonical returns path made absolute with symlinks resolved. If the file
// cannot be resolved the absolute, cleaned path is returned.
func Canonical(path string) string {
	abs, err := filepath.Abs(path)
	if err != nil {
		abs = filepath.Clean(path)
	}
	if resolved, err := filepath.EvalSymlinks(abs); err == nil {
		return resolved
	}
	return abs
}
