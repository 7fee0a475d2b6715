package rewrite_test

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/charmbracelet/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yaklabco/volblock/pkg/cast"
	"github.com/yaklabco/volblock/pkg/fix"
	"github.com/yaklabco/volblock/pkg/parser/treesitter"
	"github.com/yaklabco/volblock/pkg/rewrite"
	"github.com/yaklabco/volblock/pkg/session"
	"github.com/yaklabco/volblock/pkg/typedesc"
)

const prelude = "typedef int ___VOLATILE_BLOCK_MARKER;\n"

func parseUnit(t *testing.T, src string) *cast.Unit {
	t.Helper()
	unit, err := treesitter.New(treesitter.Options{}).
		ParseSource(context.Background(), "/virtual/test.c", []byte(src), treesitter.SearchPath{}, nil)
	require.NoError(t, err)
	return unit
}

// run rewrites src and returns the rewritten main file.
func run(t *testing.T, src string) (string, rewrite.Stats) {
	t.Helper()
	unit := parseUnit(t, src)
	sess := session.New()
	stats := rewrite.New(sess, rewrite.Options{}).Process(unit)

	out, err := fix.Apply(unit.Main.Content, sess.Edits.Edits(unit.Main.Canonical))
	require.NoError(t, err)
	return string(out), stats
}

func TestReplacement(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		ident    string
		spelling string
		want     string
	}{
		{"scalar int", "x", "int", "(* (int  volatile *) (&x))"},
		{"char array", "buf", "char [4]", "((char volatile *) buf)"},
		{"volatile pointer", "p", "char * volatile", "(* (char * volatile *) (&p))"},
		{"pointer", "p", "const char *", "(* (const char *  volatile *) (&p))"},
		{"two dimensions", "m", "int [2][3]", "((int* volatile *) m)"},
		{"array of pointers", "argv", "char *[4]", "((char * volatile *) argv)"},
		{"volatile scalar", "v", "volatile int", "(* (volatile int *) (&v))"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got, err := rewrite.Replacement(tt.ident, tt.spelling)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestReplacement_Unsupported(t *testing.T) {
	t.Parallel()

	_, err := rewrite.Replacement("fp", "int (*)(int)")
	require.ErrorIs(t, err, typedesc.ErrUnsupported)
}

func TestProcess_Scalar(t *testing.T) {
	t.Parallel()

	out, stats := run(t, prelude+`void f(void) {
  int x = 0;
  if ((___VOLATILE_BLOCK_MARKER) 1) {
    x = x + 1;
  }
  x = 3;
}
`)
	assert.Contains(t, out, "(* (int  volatile *) (&x)) = (* (int  volatile *) (&x)) + 1;")
	assert.Contains(t, out, "  x = 3;", "references outside the block are untouched")
	assert.Contains(t, out, "int x = 0;")
	assert.Equal(t, 1, stats.Regions)
	assert.Equal(t, 2, stats.Rewritten)
}

func TestProcess_Array(t *testing.T) {
	t.Parallel()

	out, stats := run(t, prelude+`void f(void) {
  char buf[4];
  if ((___VOLATILE_BLOCK_MARKER) 1) {
    buf[0] = 1;
  }
}
`)
	assert.Contains(t, out, "((char volatile *) buf)[0] = 1;")
	assert.Equal(t, 1, stats.Rewritten)
}

func TestProcess_VolatilePointerNotDuplicated(t *testing.T) {
	t.Parallel()

	out, _ := run(t, prelude+`void f(char c) {
  char * volatile p;
  if ((___VOLATILE_BLOCK_MARKER) 1) {
    p = &c;
  }
}
`)
	assert.Contains(t, out, "(* (char * volatile *) (&p)) = &(* (char  volatile *) (&c));")
	assert.Equal(t, 1, strings.Count(out, "char * volatile *"))
}

func TestProcess_SkipsNonVariablesAndUnevaluated(t *testing.T) {
	t.Parallel()

	src := prelude + `enum { LIMIT = 4 };
int helper(int);
void f(void) {
  char buf[4];
  int n;
  if ((___VOLATILE_BLOCK_MARKER) 1) {
    n = helper(LIMIT) + sizeof buf + sizeof(n);
  }
}
`
	out, stats := run(t, src)

	assert.Contains(t, out, "(* (int  volatile *) (&n)) = helper(LIMIT) + sizeof buf + sizeof(n);")
	assert.Equal(t, 1, stats.Rewritten)
	assert.Equal(t, 2, stats.NonVariable)
}

func TestProcess_EnumConstantShadowsVariable(t *testing.T) {
	t.Parallel()

	out, stats := run(t, prelude+`int state;
void f(void) {
  enum { state = 1 };
  int x;
  if ((___VOLATILE_BLOCK_MARKER) 1) {
    x = state;
  }
}
`)
	assert.Contains(t, out, "(* (int  volatile *) (&x)) = state;")
	assert.Equal(t, 1, stats.Rewritten)
	assert.Equal(t, 1, stats.NonVariable)
}

func TestProcess_ArraySizeInBlock(t *testing.T) {
	t.Parallel()

	out, stats := run(t, prelude+`void f(int n) {
  if ((___VOLATILE_BLOCK_MARKER) 1) {
    int vla[n];
  }
  int outside[n];
}
`)
	assert.Contains(t, out, "int vla[(* (int  volatile *) (&n))];")
	assert.Contains(t, out, "int outside[n];")
	assert.Equal(t, 1, stats.Rewritten)
}

func TestProcess_ConditionAndElseUntouched(t *testing.T) {
	t.Parallel()

	src := prelude + `void f(int x) {
  if ((___VOLATILE_BLOCK_MARKER) x) {
    x = 1;
  } else {
    x = 2;
  }
}
`
	out, stats := run(t, src)
	assert.Contains(t, out, "if ((___VOLATILE_BLOCK_MARKER) x)")
	assert.Contains(t, out, "(* (int  volatile *) (&x)) = 1;")
	assert.Contains(t, out, "    x = 2;")
	assert.Equal(t, 1, stats.Rewritten)
}

func TestProcess_MarkerInElse(t *testing.T) {
	t.Parallel()

	src := prelude + `void f(int x) {
  if (x) {
    x = 1;
  } else if ((___VOLATILE_BLOCK_MARKER) 1) {
    x = 2;
  }
}
`
	out, stats := run(t, src)
	assert.Contains(t, out, "    x = 1;")
	assert.Contains(t, out, "(* (int  volatile *) (&x)) = 2;")
	assert.Equal(t, 1, stats.Regions)
}

func TestProcess_NestedMarkerRewrittenOnce(t *testing.T) {
	t.Parallel()

	src := prelude + `void f(int x) {
  if ((___VOLATILE_BLOCK_MARKER) 1) {
    if ((___VOLATILE_BLOCK_MARKER) 1) {
      x = 1;
    }
  }
}
`
	out, stats := run(t, src)
	assert.Equal(t, 1, strings.Count(out, "(&x)"))
	assert.Equal(t, 1, stats.Regions)
	assert.Zero(t, stats.Conflicts)
}

func TestProcess_Unsupported(t *testing.T) {
	t.Parallel()

	var logs bytes.Buffer
	unit := parseUnit(t, prelude+`void f(int v) {
  int (*fp)(int);
  if ((___VOLATILE_BLOCK_MARKER) 1) {
    v = fp(v);
  }
}
`)
	sess := session.New()
	stats := rewrite.New(sess, rewrite.Options{Logger: log.New(&logs)}).Process(unit)

	assert.Equal(t, 1, stats.Unsupported)
	assert.Equal(t, 2, stats.Rewritten)
	assert.Contains(t, logs.String(), "unsupported type spelling")
	assert.Contains(t, logs.String(), "int (*)(int)")
}

func TestProcess_ConflictsAreLoggedAndSkipped(t *testing.T) {
	t.Parallel()

	var logs bytes.Buffer
	unit := parseUnit(t, prelude+`void f(int x) {
  if ((___VOLATILE_BLOCK_MARKER) 1) {
    x = 1;
  }
}
`)
	sess := session.New()
	rw := rewrite.New(sess, rewrite.Options{Logger: log.New(&logs)})

	first := rw.Process(unit)
	second := rw.Process(unit)

	assert.Equal(t, 1, first.Rewritten)
	assert.Zero(t, second.Rewritten)
	assert.Equal(t, 1, second.Conflicts)
	assert.Equal(t, 1, sess.Edits.Len())
	assert.Contains(t, logs.String(), "failed to insert a replacement")
}

func TestProcess_OnlyMainFileIsEdited(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	header := filepath.Join(dir, "inline.h")
	require.NoError(t, os.WriteFile(header, []byte(prelude+`int counter;
static inline void bump(void) {
  if ((___VOLATILE_BLOCK_MARKER) 1) {
    counter = counter + 1;
  }
}
`), 0o644))
	main := filepath.Join(dir, "main.c")
	require.NoError(t, os.WriteFile(main, []byte(`#include "inline.h"
void f(void) {
  if ((___VOLATILE_BLOCK_MARKER) 1) {
    counter = 0;
  }
}
`), 0o644))

	unit, err := treesitter.New(treesitter.Options{}).
		ParseUnit(context.Background(), main, treesitter.SearchPath{}, nil)
	require.NoError(t, err)

	sess := session.New()
	stats := rewrite.New(sess, rewrite.Options{}).Process(unit)

	assert.Equal(t, 2, stats.Regions)
	assert.Equal(t, 2, stats.OutsideMain)
	assert.Equal(t, 1, stats.Rewritten)
	assert.Equal(t, []string{unit.Main.Canonical}, sess.Edits.Files())
}

func TestStats_Add(t *testing.T) {
	t.Parallel()

	s := rewrite.Stats{Regions: 1, Rewritten: 2}
	s.Add(rewrite.Stats{Regions: 1, Conflicts: 3, Unsupported: 1, NonVariable: 4, OutsideMain: 5})
	assert.Equal(t, rewrite.Stats{Regions: 2, Rewritten: 2, Conflicts: 3, Unsupported: 1, NonVariable: 4, OutsideMain: 5}, s)
}
