// Package runner drives a transformation pass over the translation units of
// a compilation database and writes the accumulated edits back.
package runner

import (
	"io"

	"github.com/charmbracelet/log"

	"github.com/yaklabco/volblock/internal/logging"
	"github.com/yaklabco/volblock/pkg/compdb"
)

// Options controls a run.
type Options struct {
	// DB is the compilation database supplying compile commands.
	DB *compdb.DB

	// Files are the user-specified sources. If empty, or if All is set, every
	// C source in DB is processed.
	Files []string

	// All selects every C source in DB in addition to Files.
	All bool

	// WorkingDir is the base directory used to resolve relative Files.
	// If empty, the current process working directory is used.
	WorkingDir string

	// Extensions are extra file extensions treated as C sources when
	// selecting from DB.
	Extensions []string

	// Jobs bounds the number of concurrent parses.
	// 0 or negative means "auto" (runtime.NumCPU()).
	Jobs int

	// Out receives each file name as its pass begins. Nil discards them.
	Out io.Writer

	// Logger receives parse warnings and failures. Nil discards them.
	Logger *log.Logger
}

func (o Options) out() io.Writer {
	if o.Out == nil {
		return io.Discard
	}
	return o.Out
}

func (o Options) logger() *log.Logger {
	if o.Logger == nil {
		return logging.Discard()
	}
	return o.Logger
}
