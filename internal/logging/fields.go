package logging

// Field name constants for structured logging.
// Using constants prevents typos and enables IDE autocomplete.
const (
	// Common fields.
	FieldError      = "error"
	FieldFile       = "file"
	FieldFiles      = "files"
	FieldWorkingDir = "working_dir"
	FieldBuildDir   = "build_dir"

	// Source location fields.
	FieldOffset   = "offset"
	FieldRange    = "range"
	FieldSpelling = "spelling"
	FieldName     = "name"

	// Configuration fields.
	FieldMarker    = "marker"
	FieldDirective = "directive"
	FieldDryRun    = "dry_run"
	FieldBackups   = "backups"
	FieldJobs      = "jobs"
	FieldConfig    = "config"

	// Statistics fields.
	FieldFilesDiscovered = "files_discovered"
	FieldFilesProcessed  = "files_processed"
	FieldFilesModified   = "files_modified"
	FieldEditsTotal      = "edits_total"
	FieldConflicts       = "conflicts"

	// Stack limit fields.
	FieldStackCur = "stack_cur"
	FieldStackMax = "stack_max"

	// Version fields.
	FieldVersion = "version"
	FieldCommit  = "commit"
	FieldBuilt   = "built"
)
