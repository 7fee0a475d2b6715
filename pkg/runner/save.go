package runner

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/charmbracelet/log"

	"github.com/yaklabco/volblock/internal/logging"
	"github.com/yaklabco/volblock/pkg/fix"
	"github.com/yaklabco/volblock/pkg/fsutil"
	"github.com/yaklabco/volblock/pkg/session"
)

// ErrSave is wrapped by the error Save returns when any file fails.
var ErrSave = errors.New("failed to save rewritten files")

// SaveOptions controls write-back.
type SaveOptions struct {
	// DryRun prints unified diffs to Out instead of writing files.
	DryRun bool

	// Backups keeps a sidecar copy of each file before its first rewrite.
	Backups bool

	// Snapshots are the digests of the content the edits were computed
	// against (Result.Snapshots). A file whose content no longer matches is
	// not written.
	Snapshots map[string]fsutil.Digest

	// Out receives the diffs of a dry run. Nil discards them.
	Out io.Writer

	// Logger receives per-file results. Nil discards them.
	Logger *log.Logger
}

// SaveOutcome is what happened to one edited file.
type SaveOutcome struct {
	Path    string
	Edits   int
	Written bool
	Backup  bool
	Diff    *fix.Diff
	Error   error
}

// Save applies each file's accumulated edits in a single pass and writes the
// result atomically. Every file is attempted; the returned error wraps
// ErrSave and joins the per-file failures.
func Save(ctx context.Context, sess *session.Session, opts SaveOptions) ([]SaveOutcome, error) {
	logger := opts.Logger
	if logger == nil {
		logger = logging.Discard()
	}

	files := sess.Edits.Files()
	outcomes := make([]SaveOutcome, 0, len(files))
	var (
		errs  []error
		diffs []*fix.Diff
	)

	for _, path := range files {
		outcome := saveFile(ctx, path, sess.Edits.Edits(path), opts)
		if outcome.Error != nil {
			logger.Error("failed to save", logging.FieldFile, path, logging.FieldError, outcome.Error)
			errs = append(errs, outcome.Error)
		} else {
			logger.Debug("saved",
				logging.FieldFile, path,
				logging.FieldEditsTotal, outcome.Edits,
				logging.FieldDryRun, opts.DryRun)
		}
		if outcome.Diff != nil {
			diffs = append(diffs, outcome.Diff)
		}
		outcomes = append(outcomes, outcome)
	}

	if opts.DryRun && len(diffs) > 0 && opts.Out != nil {
		text, err := fix.Unified(diffs)
		if err != nil {
			errs = append(errs, fmt.Errorf("render diff: %w", err))
		} else if _, err := opts.Out.Write(text); err != nil {
			errs = append(errs, fmt.Errorf("write diff: %w", err))
		}
	}

	if len(errs) > 0 {
		return outcomes, fmt.Errorf("%w: %w", ErrSave, errors.Join(errs...))
	}
	return outcomes, nil
}

func saveFile(ctx context.Context, path string, edits []fix.TextEdit, opts SaveOptions) SaveOutcome {
	outcome := SaveOutcome{Path: path, Edits: len(edits)}

	content, info, err := fsutil.ReadFile(ctx, path)
	if err != nil {
		outcome.Error = err
		return outcome
	}
	if want, ok := opts.Snapshots[path]; ok {
		if err := fsutil.Verify(info, want); err != nil {
			outcome.Error = err
			return outcome
		}
	}

	rewritten, err := fix.Apply(content, edits)
	if err != nil {
		outcome.Error = fmt.Errorf("apply edits to %s: %w", path, err)
		return outcome
	}

	if opts.DryRun {
		outcome.Diff = fix.GenerateDiff(path, content, edits)
		return outcome
	}

	if opts.Backups {
		outcome.Backup, err = fsutil.CreateBackup(ctx, path)
		if err != nil {
			outcome.Error = err
			return outcome
		}
	}

	if err := fsutil.Replace(ctx, info, rewritten); err != nil {
		outcome.Error = fmt.Errorf("write %s: %w", path, err)
		return outcome
	}
	outcome.Written = true
	return outcome
}
