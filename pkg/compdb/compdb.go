// Package compdb reads clang compilation databases (compile_commands.json)
// and extracts the preprocessor settings the front end needs.
package compdb

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/google/shlex"
)

// FileName is the database file looked up in a build directory.
const FileName = "compile_commands.json"

// ErrLoad is the category of every database loading failure.
var ErrLoad = errors.New("failed to load compilation database")

// LoadError describes why the database in Dir could not be used.
type LoadError struct {
	Dir string
	Err error
}

func (e *LoadError) Error() string {
	return fmt.Sprintf("%s from %s: %v", ErrLoad, e.Dir, e.Err)
}

func (e *LoadError) Unwrap() []error {
	return []error{ErrLoad, e.Err}
}

// Entry is one compile command.
type Entry struct {
	Directory string   `json:"directory"`
	File      string   `json:"file"`
	Arguments []string `json:"arguments,omitempty"`
	Command   string   `json:"command,omitempty"`
	Output    string   `json:"output,omitempty"`

	path string
}

// Path returns the absolute, cleaned path of the entry's source file.
func (e *Entry) Path() string {
	return e.path
}

// IncludeDirs holds the header search directories of an entry.
type IncludeDirs struct {
	// Quote lists -iquote directories, searched for #include "..." only.
	Quote []string

	// Bracket lists -I directories, searched for both include forms.
	Bracket []string

	// System lists -isystem directories. System headers are not parsed.
	System []string
}

// IncludeDirs extracts the search directories from the entry's arguments.
// Relative directories are resolved against the entry's directory.
func (e *Entry) IncludeDirs() IncludeDirs {
	var dirs IncludeDirs
	e.eachOption(func(flag, value string) {
		value = e.resolve(value)
		switch flag {
		case "-I":
			dirs.Bracket = append(dirs.Bracket, value)
		case "-iquote":
			dirs.Quote = append(dirs.Quote, value)
		case "-isystem":
			dirs.System = append(dirs.System, value)
		}
	}, "-I", "-iquote", "-isystem")
	return dirs
}

// Defines returns the -D macros of the entry; a macro without a value is
// defined as "1". A later -U removes an earlier definition.
func (e *Entry) Defines() map[string]string {
	defines := make(map[string]string)
	e.eachOption(func(flag, value string) {
		name, body, found := strings.Cut(value, "=")
		switch {
		case flag == "-U":
			delete(defines, name)
		case found:
			defines[name] = body
		default:
			defines[name] = "1"
		}
	}, "-D", "-U")
	return defines
}

// eachOption calls fn for every occurrence of one of flags, written either
// joined ("-Idir") or separate ("-I dir").
func (e *Entry) eachOption(fn func(flag, value string), flags ...string) {
	args := e.Arguments
	for i := 0; i < len(args); i++ {
		arg := args[i]
		for _, flag := range flags {
			if !strings.HasPrefix(arg, flag) {
				continue
			}
			value := arg[len(flag):]
			if value == "" {
				if i+1 >= len(args) {
					break
				}
				i++
				value = args[i]
			}
			fn(flag, value)
			break
		}
	}
}

func (e *Entry) resolve(path string) string {
	if filepath.IsAbs(path) {
		return filepath.Clean(path)
	}
	return filepath.Join(e.Directory, path)
}

// DB is a loaded compilation database.
type DB struct {
	// Dir is the build directory the database was read from.
	Dir string

	entries []*Entry
	byPath  map[string]*Entry
}

// LoadFromDirectory reads FileName from dir.
func LoadFromDirectory(dir string) (*DB, error) {
	data, err := os.ReadFile(filepath.Join(dir, FileName))
	if err != nil {
		return nil, &LoadError{Dir: dir, Err: err}
	}
	return Parse(dir, data)
}

// Parse decodes a database read from dir. A relative dir is made absolute so
// every entry path is absolute.
func Parse(dir string, data []byte) (*DB, error) {
	if abs, err := filepath.Abs(dir); err == nil {
		dir = abs
	}

	var entries []*Entry
	if err := json.Unmarshal(data, &entries); err != nil {
		return nil, &LoadError{Dir: dir, Err: err}
	}

	db := &DB{Dir: dir, byPath: make(map[string]*Entry, len(entries))}
	for i, entry := range entries {
		if entry == nil || entry.File == "" {
			return nil, &LoadError{Dir: dir, Err: fmt.Errorf("entry %d has no file", i)}
		}
		if entry.Directory == "" {
			entry.Directory = dir
		}
		if !filepath.IsAbs(entry.Directory) {
			entry.Directory = filepath.Join(dir, entry.Directory)
		}
		if len(entry.Arguments) == 0 && entry.Command != "" {
			args, err := shlex.Split(entry.Command)
			if err != nil {
				return nil, &LoadError{Dir: dir, Err: fmt.Errorf("entry %d: split command: %w", i, err)}
			}
			entry.Arguments = args
		}
		entry.path = entry.resolve(entry.File)

		// The first command for a file wins, as with clang tooling.
		if _, dup := db.byPath[entry.path]; !dup {
			db.byPath[entry.path] = entry
			db.entries = append(db.entries, entry)
		}
	}
	return db, nil
}

// Lookup returns the entry compiling path. A relative path is tried against
// the working directory and then against each entry's directory.
func (db *DB) Lookup(path string) (*Entry, bool) {
	if filepath.IsAbs(path) {
		entry, ok := db.byPath[filepath.Clean(path)]
		return entry, ok
	}
	if abs, err := filepath.Abs(path); err == nil {
		if entry, ok := db.byPath[abs]; ok {
			return entry, true
		}
	}
	for _, entry := range db.entries {
		if entry.resolve(path) == entry.path {
			return entry, true
		}
	}
	return nil, false
}

// Files returns the sorted absolute paths of every source in the database.
func (db *DB) Files() []string {
	files := make([]string, 0, len(db.byPath))
	for path := range db.byPath {
		files = append(files, path)
	}
	sort.Strings(files)
	return files
}

// Len returns the number of distinct source files.
func (db *DB) Len() int {
	return len(db.entries)
}
