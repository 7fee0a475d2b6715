package runner

import "github.com/yaklabco/volblock/pkg/fsutil"

// FileOutcome is what happened to one selected source.
type FileOutcome struct {
	// Path is the source path that was processed.
	Path string

	// Counts summarizes the pass over the file's unit.
	Counts Counts

	// Warnings are non-fatal front end problems.
	Warnings []string

	// Error is set if the file could not be parsed.
	Error error
}

// Stats captures aggregate information about a run.
type Stats struct {
	// FilesDiscovered is the number of sources selected.
	FilesDiscovered int

	// FilesProcessed is the number of units the pass ran over.
	FilesProcessed int

	// FilesErrored is the number of sources that could not be parsed.
	FilesErrored int

	// Totals sums the per-file counts.
	Totals Counts
}

// Result is the overall runner result.
type Result struct {
	// Files contains the outcome for each selected source, in sorted order.
	Files []FileOutcome

	// Stats contains aggregate statistics for the run.
	Stats Stats

	// Snapshots maps every canonical path read by the front end to the
	// digest of the content its edits were computed against.
	Snapshots map[string]fsutil.Digest
}

// HasFailures reports whether any source failed to parse.
func (r *Result) HasFailures() bool {
	if r == nil {
		return false
	}
	return r.Stats.FilesErrored > 0
}

func (r *Result) accumulate(outcome FileOutcome) {
	r.Files = append(r.Files, outcome)
	if outcome.Error != nil {
		r.Stats.FilesErrored++
		return
	}
	r.Stats.FilesProcessed++
	r.Stats.Totals.Add(outcome.Counts)
}
