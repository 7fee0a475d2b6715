// Package langdetect selects the C translation units among a list of paths.
// It uses go-enry's extension table, so only names that unambiguously denote
// C sources are kept; headers (.h is shared with C++ and Objective-C) are not
// translation units and drop out.
package langdetect

import (
	"path/filepath"
	"slices"
	"sort"
	"strings"

	"github.com/go-enry/go-enry/v2"
)

const langC = "c"

// Language returns the lowercase language go-enry assigns to path by its
// extension, or "" when the extension is unknown or ambiguous.
func Language(path string) string {
	lang, safe := enry.GetLanguageByExtension(path)
	if !safe || lang == "" {
		return ""
	}
	return strings.ToLower(lang)
}

// IsC reports whether path names a C source file.
func IsC(path string) bool {
	return Language(path) == langC
}

// SelectCFiles returns the C sources among paths, sorted and without
// duplicates. A path whose extension is listed in extra is kept as well;
// extensions are compared case-sensitively, like the compiler driver does.
func SelectCFiles(paths []string, extra ...string) []string {
	var result []string
	for _, path := range paths {
		if IsC(path) || slices.Contains(extra, filepath.Ext(path)) {
			result = append(result, path)
		}
	}
	sort.Strings(result)
	return slices.Compact(result)
}
