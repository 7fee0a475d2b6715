package optnone_test

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yaklabco/volblock/pkg/cast"
	"github.com/yaklabco/volblock/pkg/fix"
	"github.com/yaklabco/volblock/pkg/optnone"
	"github.com/yaklabco/volblock/pkg/parser/treesitter"
	"github.com/yaklabco/volblock/pkg/session"
)

const prelude = "typedef int ___VOLATILE_BLOCK_MARKER;\n"

func parseUnit(t *testing.T, src string) *cast.Unit {
	t.Helper()
	unit, err := treesitter.New(treesitter.Options{}).
		ParseSource(context.Background(), "/virtual/test.c", []byte(src), treesitter.SearchPath{}, nil)
	require.NoError(t, err)
	return unit
}

// run suppresses optimization in src and returns the rewritten main file,
// the insertions, and what was printed.
func run(t *testing.T, src string, opts optnone.Options) (string, []optnone.Insertion, string) {
	t.Helper()
	unit := parseUnit(t, src)
	sess := session.New()

	var out bytes.Buffer
	opts.Out = &out
	insertions := optnone.New(sess, opts).Process(unit)

	rewritten, err := fix.Apply(unit.Main.Content, sess.Edits.Edits(unit.Main.Canonical))
	require.NoError(t, err)
	return string(rewritten), insertions, out.String()
}

func TestProcess_InsertsDirective(t *testing.T) {
	t.Parallel()

	src := prelude + `static int f(int x) {
  if ((___VOLATILE_BLOCK_MARKER) 1) {
    x = 1;
  }
  return x;
}
int g(void) { return 0; }
`
	got, insertions, printed := run(t, src, optnone.Options{})

	assert.Contains(t, got, "\n__attribute__((optnone)) static int f(int x) {")
	assert.Contains(t, got, "\nint g(void)", "functions without a marker are untouched")

	require.Len(t, insertions, 1)
	assert.Equal(t, "f", insertions[0].Name)
	assert.Equal(t, cast.Location{File: "/virtual/test.c", Offset: len(prelude)}, insertions[0].Location)
	assert.Equal(t, "f@/virtual/test.c:"+strconv.Itoa(len(prelude))+"\n", printed)
}

func TestProcess_TwoMarkersOneDirective(t *testing.T) {
	t.Parallel()

	src := prelude + `void f(int x) {
  if ((___VOLATILE_BLOCK_MARKER) 1) {
    x = 1;
  }
  if ((___VOLATILE_BLOCK_MARKER) 1) {
    x = 2;
  }
}
`
	got, insertions, _ := run(t, src, optnone.Options{})
	assert.Len(t, insertions, 1)
	assert.Equal(t, 1, strings.Count(got, "optnone"))
}

func TestProcess_NestedMarkerRequests(t *testing.T) {
	t.Parallel()

	src := prelude + `void f(int x) {
  while (x) {
    if (x > 2) {
      if ((___VOLATILE_BLOCK_MARKER) 1) {
        x = 1;
      }
    }
  }
}
`
	_, insertions, _ := run(t, src, optnone.Options{})
	require.Len(t, insertions, 1)
	assert.Equal(t, "f", insertions[0].Name)
}

func TestProcess_AlreadyDisabled(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		src  string
		opts optnone.Options
	}{
		{
			name: "attribute on definition",
			src:  "__attribute__((optnone)) void f(void) {\n",
		},
		{
			name: "reserved spelling",
			src:  "__attribute__((__optnone__)) void f(void) {\n",
		},
		{
			name: "standard attribute",
			src:  "[[clang::optnone]] void f(void) {\n",
		},
		{
			name: "attribute on prototype",
			src:  "void f(void) __attribute__((optnone));\nvoid f(void) {\n",
		},
		{
			name: "custom directive",
			src:  "__attribute__((optimize(\"O0\"))) void f(void) {\n",
			opts: optnone.Options{Directive: `__attribute__((optimize("O0"))) `},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			src := prelude + tt.src + "  if ((___VOLATILE_BLOCK_MARKER) 1) { }\n}\n"
			got, insertions, printed := run(t, src, tt.opts)
			assert.Empty(t, insertions)
			assert.Empty(t, printed)
			assert.Equal(t, src, got)
		})
	}
}

func TestProcess_CustomOptions(t *testing.T) {
	t.Parallel()

	src := `typedef int KEEP;
void f(void) {
  if ((KEEP) 1) { }
}
`
	got, insertions, _ := run(t, src, optnone.Options{
		Marker:    "KEEP",
		Directive: `__attribute__((optimize("O0"))) `,
	})
	require.Len(t, insertions, 1)
	assert.Contains(t, got, "\n__attribute__((optimize(\"O0\"))) void f(void) {")
}

func TestProcess_RepeatedRunsAreIdempotent(t *testing.T) {
	t.Parallel()

	unit := parseUnit(t, prelude+`void f(void) {
  if ((___VOLATILE_BLOCK_MARKER) 1) { }
}
`)
	sess := session.New()
	s := optnone.New(sess, optnone.Options{Out: &bytes.Buffer{}})

	assert.Len(t, s.Process(unit), 1)
	assert.Empty(t, s.Process(unit))
	assert.Equal(t, 1, sess.Edits.Len())
	assert.Equal(t, 1, sess.Inserted.Len())
}

func TestProcess_SharedHeaderInsertedOnce(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	header := filepath.Join(dir, "shared.h")
	require.NoError(t, os.WriteFile(header, []byte(prelude+`static inline void sync(void) {
  if ((___VOLATILE_BLOCK_MARKER) 1) { }
}
`), 0o644))

	var units []*cast.Unit
	for _, name := range []string{"a.c", "b.c"} {
		path := filepath.Join(dir, name)
		require.NoError(t, os.WriteFile(path, []byte("#include \"shared.h\"\nint main(void) { return 0; }\n"), 0o644))

		unit, err := treesitter.New(treesitter.Options{}).
			ParseUnit(context.Background(), path, treesitter.SearchPath{}, nil)
		require.NoError(t, err)
		units = append(units, unit)
	}

	sess := session.New()
	var out bytes.Buffer
	s := optnone.New(sess, optnone.Options{Out: &out})

	var insertions []optnone.Insertion
	for _, unit := range units {
		insertions = append(insertions, s.Process(unit)...)
	}

	canonical := treesitter.Canonical(header)

	require.Len(t, insertions, 1)
	assert.Equal(t, "sync", insertions[0].Name)
	assert.Equal(t, canonical, insertions[0].Location.File)
	assert.Equal(t, []string{canonical}, sess.Edits.Files())
	assert.Equal(t, 1, strings.Count(out.String(), "sync@"))
}

func TestInsertion_String(t *testing.T) {
	t.Parallel()

	ins := optnone.Insertion{Name: "f", Location: cast.Location{File: "/src/a.c", Offset: 42}}
	assert.Equal(t, "f@/src/a.c:42", ins.String())
}
