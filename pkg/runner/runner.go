package runner

import (
	"context"
	"errors"
	"fmt"
	"runtime"

	"golang.org/x/sync/errgroup"

	"github.com/yaklabco/volblock/internal/logging"
	"github.com/yaklabco/volblock/pkg/cast"
	"github.com/yaklabco/volblock/pkg/compdb"
	"github.com/yaklabco/volblock/pkg/fsutil"
	"github.com/yaklabco/volblock/pkg/parser/treesitter"
)

// ErrNoCompileCommand is recorded for a source the database does not list.
var ErrNoCompileCommand = errors.New("compile command not found")

// Parser produces translation units. *treesitter.Parser implements it.
type Parser interface {
	ParseUnit(
		ctx context.Context,
		path string,
		search treesitter.SearchPath,
		defines map[string]string,
	) (*cast.Unit, error)
}

// Runner parses the selected sources and runs a Pass over each unit.
type Runner struct {
	Parser Parser
	Pass   Pass
}

// New creates a Runner.
func New(parser Parser, pass Pass) *Runner {
	return &Runner{Parser: parser, Pass: pass}
}

type parsed struct {
	unit *cast.Unit
	err  error
}

// Run parses the sources selected by opts concurrently, then runs the pass
// over the units one at a time in sorted path order. A source that fails to
// parse is recorded in its FileOutcome and the run continues.
func (r *Runner) Run(ctx context.Context, opts Options) (*Result, error) {
	files, err := Discover(ctx, opts)
	if err != nil {
		return nil, err
	}

	result := &Result{
		Files:     make([]FileOutcome, 0, len(files)),
		Snapshots: make(map[string]fsutil.Digest),
	}
	result.Stats.FilesDiscovered = len(files)
	if len(files) == 0 {
		return result, nil
	}

	units, err := r.parseAll(ctx, opts, files)
	if err != nil {
		return result, err
	}

	logger := opts.logger()
	for i, path := range files {
		if err := ctx.Err(); err != nil {
			return result, fmt.Errorf("run cancelled: %w", err)
		}

		fmt.Fprintln(opts.out(), path)

		outcome := FileOutcome{Path: path}
		if units[i].err != nil {
			outcome.Error = units[i].err
			logger.Error("failed to parse", logging.FieldFile, path, logging.FieldError, units[i].err)
			result.accumulate(outcome)
			continue
		}

		unit := units[i].unit
		for _, warning := range unit.Errors {
			logger.Warn(warning, logging.FieldFile, path)
		}
		for _, f := range unit.Files {
			if _, seen := result.Snapshots[f.Canonical]; !seen {
				result.Snapshots[f.Canonical] = fsutil.Hash(f.Content)
			}
		}

		outcome.Warnings = unit.Errors
		outcome.Counts = r.Pass.Process(unit)
		logger.Debug("processed unit",
			logging.FieldFile, path,
			logging.FieldEditsTotal, outcome.Counts.Edits,
			logging.FieldConflicts, outcome.Counts.Conflicts)
		result.accumulate(outcome)
	}

	return result, nil
}

// parseAll parses files with at most opts.Jobs parses in flight. Per-file
// failures are returned in the slice; only cancellation fails the call.
func (r *Runner) parseAll(ctx context.Context, opts Options, files []string) ([]parsed, error) {
	jobs := opts.Jobs
	if jobs <= 0 {
		jobs = runtime.NumCPU()
	}

	units := make([]parsed, len(files))
	group, groupCtx := errgroup.WithContext(ctx)
	group.SetLimit(jobs)

	for i, path := range files {
		group.Go(func() error {
			if err := groupCtx.Err(); err != nil {
				return err
			}
			units[i].unit, units[i].err = r.parseOne(groupCtx, opts.DB, path)
			return nil
		})
	}

	if err := group.Wait(); err != nil {
		return nil, fmt.Errorf("run cancelled: %w", err)
	}
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("run cancelled: %w", err)
	}
	return units, nil
}

func (r *Runner) parseOne(ctx context.Context, db *compdb.DB, path string) (*cast.Unit, error) {
	var (
		search  treesitter.SearchPath
		defines map[string]string
	)
	if db != nil {
		entry, ok := db.Lookup(path)
		if !ok {
			return nil, fmt.Errorf("%w: %s", ErrNoCompileCommand, path)
		}
		dirs := entry.IncludeDirs()
		search = treesitter.SearchPath{Quote: dirs.Quote, Bracket: dirs.Bracket}
		defines = entry.Defines()
	}
	return r.Parser.ParseUnit(ctx, path, search, defines)
}
