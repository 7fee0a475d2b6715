package runner_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/yaklabco/volblock/pkg/compdb"
	"github.com/yaklabco/volblock/pkg/fsutil"
	"github.com/yaklabco/volblock/pkg/optnone"
	"github.com/yaklabco/volblock/pkg/parser/treesitter"
	"github.com/yaklabco/volblock/pkg/rewrite"
	"github.com/yaklabco/volblock/pkg/runner"
	"github.com/yaklabco/volblock/pkg/session"
)

const markerHeader = "typedef int ___VOLATILE_BLOCK_MARKER;\n"

const sourceA = `#include <marker.h>
void a(int x) {
  if ((___VOLATILE_BLOCK_MARKER) 1) {
    x = 1;
  }
}
`

const sourceB = `#include "marker.h"
int b(void) {
  int y = 0;
  if ((___VOLATILE_BLOCK_MARKER) 1) {
    y = y + 1;
  }
  return y;
}
`

// project lays out a build directory with a compilation database listing
// a.c and b.c, which find marker.h through -I.
func project(t *testing.T) (string, *compdb.DB) {
	t.Helper()

	dir := t.TempDir()
	include := filepath.Join(dir, "include")
	write(t, filepath.Join(include, "marker.h"), markerHeader)
	write(t, filepath.Join(dir, "a.c"), sourceA)
	write(t, filepath.Join(dir, "b.c"), sourceB)
	write(t, filepath.Join(dir, "notes.h"), "")

	var entries []compdb.Entry
	for _, name := range []string{"b.c", "a.c", "notes.h"} {
		entries = append(entries, compdb.Entry{
			Directory: dir,
			File:      name,
			Arguments: []string{"cc", "-Iinclude", "-c", name},
		})
	}
	data, err := json.Marshal(entries)
	if err != nil {
		t.Fatalf("marshal database: %v", err)
	}
	write(t, filepath.Join(dir, compdb.FileName), string(data))

	db, err := compdb.LoadFromDirectory(dir)
	if err != nil {
		t.Fatalf("LoadFromDirectory() error = %v", err)
	}
	return dir, db
}

func write(t *testing.T, path, content string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("setup: %v", err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("setup: %v", err)
	}
}

func read(t *testing.T, path string) string {
	t.Helper()
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read %s: %v", path, err)
	}
	return string(data)
}

func volatilize(sess *session.Session) *runner.Runner {
	return runner.New(
		treesitter.New(treesitter.Options{}),
		runner.Volatilize(rewrite.New(sess, rewrite.Options{})),
	)
}

func TestDiscover(t *testing.T) {
	t.Parallel()

	dir, db := project(t)
	ctx := context.Background()

	t.Run("database sources", func(t *testing.T) {
		t.Parallel()

		files, err := runner.Discover(ctx, runner.Options{DB: db})
		if err != nil {
			t.Fatalf("Discover() error = %v", err)
		}
		want := []string{filepath.Join(dir, "a.c"), filepath.Join(dir, "b.c")}
		if strings.Join(files, ",") != strings.Join(want, ",") {
			t.Errorf("Discover() = %v, want %v", files, want)
		}
	})

	t.Run("explicit files", func(t *testing.T) {
		t.Parallel()

		files, err := runner.Discover(ctx, runner.Options{
			DB:         db,
			Files:      []string{"b.c", filepath.Join(dir, "b.c"), "notes.h"},
			WorkingDir: dir,
		})
		if err != nil {
			t.Fatalf("Discover() error = %v", err)
		}
		want := []string{filepath.Join(dir, "b.c"), filepath.Join(dir, "notes.h")}
		if strings.Join(files, ",") != strings.Join(want, ",") {
			t.Errorf("Discover() = %v, want %v", files, want)
		}
	})

	t.Run("all adds database sources", func(t *testing.T) {
		t.Parallel()

		files, err := runner.Discover(ctx, runner.Options{
			DB:         db,
			Files:      []string{"a.c"},
			All:        true,
			WorkingDir: dir,
		})
		if err != nil {
			t.Fatalf("Discover() error = %v", err)
		}
		if len(files) != 2 {
			t.Errorf("Discover() = %v, want a.c and b.c once each", files)
		}
	})

	t.Run("no database", func(t *testing.T) {
		t.Parallel()

		if _, err := runner.Discover(ctx, runner.Options{}); !errors.Is(err, runner.ErrNoDatabase) {
			t.Errorf("Discover() error = %v, want ErrNoDatabase", err)
		}
	})
}

func TestRunner_Run_Volatilize(t *testing.T) {
	t.Parallel()

	dir, db := project(t)
	sess := session.New()

	var out bytes.Buffer
	result, err := volatilize(sess).Run(context.Background(), runner.Options{DB: db, Out: &out})
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	wantOut := filepath.Join(dir, "a.c") + "\n" + filepath.Join(dir, "b.c") + "\n"
	if out.String() != wantOut {
		t.Errorf("printed %q, want %q", out.String(), wantOut)
	}
	if result.Stats.FilesProcessed != 2 || result.HasFailures() {
		t.Errorf("Stats = %+v, want 2 processed and no failures", result.Stats)
	}
	if result.Stats.Totals.Regions != 2 || result.Stats.Totals.Edits != 3 {
		t.Errorf("Totals = %+v, want 2 regions and 3 edits", result.Stats.Totals)
	}
	if len(result.Snapshots) != 3 {
		t.Errorf("len(Snapshots) = %d, want both sources and the header", len(result.Snapshots))
	}

	outcomes, err := runner.Save(context.Background(), sess, runner.SaveOptions{Snapshots: result.Snapshots})
	if err != nil {
		t.Fatalf("Save() error = %v", err)
	}
	if len(outcomes) != 2 {
		t.Fatalf("len(outcomes) = %d, want 2", len(outcomes))
	}

	if got := read(t, filepath.Join(dir, "a.c")); !strings.Contains(got, "(* (int  volatile *) (&x)) = 1;") {
		t.Errorf("a.c not rewritten:\n%s", got)
	}
	if got := read(t, filepath.Join(dir, "b.c")); !strings.Contains(got,
		"(* (int  volatile *) (&y)) = (* (int  volatile *) (&y)) + 1;") {
		t.Errorf("b.c not rewritten:\n%s", got)
	}
	if got := read(t, filepath.Join(dir, "include", "marker.h")); got != markerHeader {
		t.Errorf("header changed: %q", got)
	}
}

func TestRunner_Run_MissingCompileCommand(t *testing.T) {
	t.Parallel()

	dir, db := project(t)
	write(t, filepath.Join(dir, "extra.c"), "int z;\n")

	result, err := volatilize(session.New()).Run(context.Background(), runner.Options{
		DB:         db,
		Files:      []string{"extra.c", "a.c"},
		WorkingDir: dir,
	})
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if !result.HasFailures() || result.Stats.FilesProcessed != 1 {
		t.Fatalf("Stats = %+v, want one failure and one processed file", result.Stats)
	}
	if !errors.Is(result.Files[1].Error, runner.ErrNoCompileCommand) {
		t.Errorf("extra.c error = %v, want ErrNoCompileCommand", result.Files[1].Error)
	}
}

func TestRunner_Run_SerialVsParallelConsistency(t *testing.T) {
	t.Parallel()

	_, db := project(t)

	edits := func(jobs int) map[string]int {
		sess := session.New()
		if _, err := volatilize(sess).Run(context.Background(), runner.Options{DB: db, Jobs: jobs}); err != nil {
			t.Fatalf("Run(jobs=%d) error = %v", jobs, err)
		}
		counts := make(map[string]int)
		for _, file := range sess.Edits.Files() {
			counts[file] = len(sess.Edits.Edits(file))
		}
		return counts
	}

	serial, parallel := edits(1), edits(8)
	if len(serial) != len(parallel) {
		t.Fatalf("serial %v != parallel %v", serial, parallel)
	}
	for file, n := range serial {
		if parallel[file] != n {
			t.Errorf("%s: serial %d edits, parallel %d", file, n, parallel[file])
		}
	}
}

func TestRunner_Run_ContextCancellation(t *testing.T) {
	t.Parallel()

	_, db := project(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := volatilize(session.New()).Run(ctx, runner.Options{DB: db}); !errors.Is(err, context.Canceled) {
		t.Errorf("Run() error = %v, want context.Canceled", err)
	}
}

func TestRunner_Run_OptnoneSharedHeader(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	header := filepath.Join(dir, "sync.h")
	write(t, header, markerHeader+"static inline void sync(void) {\n  if ((___VOLATILE_BLOCK_MARKER) 1) { }\n}\n")
	write(t, filepath.Join(dir, "a.c"), "#include \"sync.h\"\n")
	write(t, filepath.Join(dir, "b.c"), "#include \"sync.h\"\n")

	sess := session.New()
	var printed bytes.Buffer
	r := runner.New(
		treesitter.New(treesitter.Options{}),
		runner.Optnone(optnone.New(sess, optnone.Options{Out: &printed})),
	)

	result, err := r.Run(context.Background(), runner.Options{
		Files:      []string{"a.c", "b.c"},
		WorkingDir: dir,
	})
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if result.Stats.Totals.Edits != 1 {
		t.Errorf("Totals.Edits = %d, want 1", result.Stats.Totals.Edits)
	}
	if strings.Count(printed.String(), "sync@") != 1 {
		t.Errorf("printed %q, want one insertion", printed.String())
	}

	if _, err := runner.Save(context.Background(), sess, runner.SaveOptions{Backups: true}); err != nil {
		t.Fatalf("Save() error = %v", err)
	}
	if got := read(t, header); !strings.Contains(got, "__attribute__((optnone)) static inline void sync(void)") {
		t.Errorf("header not annotated:\n%s", got)
	}
	if got := read(t, fsutil.BackupPath(treesitter.Canonical(header))); !strings.HasPrefix(got, markerHeader) {
		t.Errorf("backup = %q, want the original header", got)
	}
}

func TestSave_DryRun(t *testing.T) {
	t.Parallel()

	dir, db := project(t)
	sess := session.New()
	result, err := volatilize(sess).Run(context.Background(), runner.Options{DB: db})
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	var diff bytes.Buffer
	outcomes, err := runner.Save(context.Background(), sess, runner.SaveOptions{
		DryRun:    true,
		Snapshots: result.Snapshots,
		Out:       &diff,
	})
	if err != nil {
		t.Fatalf("Save() error = %v", err)
	}

	for _, outcome := range outcomes {
		if outcome.Written || outcome.Diff == nil {
			t.Errorf("%s: Written = %v, Diff = %v; want a diff only", outcome.Path, outcome.Written, outcome.Diff)
		}
	}
	if got := read(t, filepath.Join(dir, "a.c")); got != sourceA {
		t.Errorf("dry run modified a.c:\n%s", got)
	}
	text := diff.String()
	if !strings.Contains(text, "+    (* (int  volatile *) (&x)) = 1;") || !strings.Contains(text, "-    x = 1;") {
		t.Errorf("unexpected diff:\n%s", text)
	}
}

func TestSave_RefusesModifiedFile(t *testing.T) {
	t.Parallel()

	dir, db := project(t)
	sess := session.New()
	result, err := volatilize(sess).Run(context.Background(), runner.Options{DB: db})
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	changed := "// edited meanwhile\n" + sourceA
	write(t, filepath.Join(dir, "a.c"), changed)

	outcomes, err := runner.Save(context.Background(), sess, runner.SaveOptions{Snapshots: result.Snapshots})
	if !errors.Is(err, runner.ErrSave) || !errors.Is(err, fsutil.ErrModified) {
		t.Fatalf("Save() error = %v, want ErrSave wrapping ErrModified", err)
	}
	if got := read(t, filepath.Join(dir, "a.c")); got != changed {
		t.Errorf("a.c overwritten despite the external change")
	}

	written := 0
	for _, outcome := range outcomes {
		if outcome.Written {
			written++
		}
	}
	if written != 1 {
		t.Errorf("%d files written, want b.c to be saved anyway", written)
	}
}
