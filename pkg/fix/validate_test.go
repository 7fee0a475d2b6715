package fix_test

import (
	"errors"
	"strings"
	"testing"

	"github.com/yaklabco/volblock/pkg/fix"
)

func TestValidateEdits(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		edits      []fix.TextEdit
		contentLen int
		errMsg     string
	}{
		{name: "empty edits", contentLen: 10},
		{
			name:       "valid edits",
			edits:      []fix.TextEdit{{StartOffset: 0, EndOffset: 5}, {StartOffset: 5, EndOffset: 10}},
			contentLen: 10,
		},
		{
			name:       "insertion at end",
			edits:      []fix.TextEdit{{StartOffset: 10, EndOffset: 10, NewText: "x"}},
			contentLen: 10,
		},
		{
			name:       "negative start offset",
			edits:      []fix.TextEdit{{StartOffset: -1, EndOffset: 5}},
			contentLen: 10,
			errMsg:     "start offset is negative",
		},
		{
			name:       "end before start",
			edits:      []fix.TextEdit{{StartOffset: 5, EndOffset: 3}},
			contentLen: 10,
			errMsg:     "end offset is before start offset",
		},
		{
			name:       "end exceeds content length",
			edits:      []fix.TextEdit{{StartOffset: 5, EndOffset: 15}},
			contentLen: 10,
			errMsg:     "exceeds content length",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			err := fix.ValidateEdits(tt.edits, tt.contentLen)
			if tt.errMsg == "" {
				if err != nil {
					t.Errorf("unexpected error: %v", err)
				}
				return
			}
			if err == nil {
				t.Fatal("expected error, got nil")
			}
			if !strings.Contains(err.Error(), tt.errMsg) {
				t.Errorf("error %q does not contain %q", err, tt.errMsg)
			}
		})
	}
}

func TestSortEdits(t *testing.T) {
	t.Parallel()

	edits := []fix.TextEdit{
		{StartOffset: 8, EndOffset: 9},
		{StartOffset: 2, EndOffset: 5},
		{StartOffset: 2, EndOffset: 2},
		{StartOffset: 0, EndOffset: 1},
	}
	fix.SortEdits(edits)

	want := []fix.TextEdit{
		{StartOffset: 0, EndOffset: 1},
		{StartOffset: 2, EndOffset: 2},
		{StartOffset: 2, EndOffset: 5},
		{StartOffset: 8, EndOffset: 9},
	}
	for i := range want {
		if edits[i] != want[i] {
			t.Errorf("edits[%d] = %+v, want %+v", i, edits[i], want[i])
		}
	}
}

func TestTextEdit_Overlaps(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		a, b fix.TextEdit
		want bool
	}{
		{"shared byte", fix.TextEdit{StartOffset: 0, EndOffset: 3}, fix.TextEdit{StartOffset: 2, EndOffset: 4}, true},
		{"nested", fix.TextEdit{StartOffset: 0, EndOffset: 10}, fix.TextEdit{StartOffset: 2, EndOffset: 4}, true},
		{"adjacent", fix.TextEdit{StartOffset: 0, EndOffset: 3}, fix.TextEdit{StartOffset: 3, EndOffset: 4}, false},
		{"insertion inside", fix.TextEdit{StartOffset: 0, EndOffset: 3}, fix.TextEdit{StartOffset: 1, EndOffset: 1}, true},
		{"insertion at start", fix.TextEdit{StartOffset: 2, EndOffset: 5}, fix.TextEdit{StartOffset: 2, EndOffset: 2}, false},
		{"insertion at end", fix.TextEdit{StartOffset: 2, EndOffset: 5}, fix.TextEdit{StartOffset: 5, EndOffset: 5}, false},
		{"insertions at same offset", fix.TextEdit{StartOffset: 4, EndOffset: 4}, fix.TextEdit{StartOffset: 4, EndOffset: 4}, true},
		{"insertions apart", fix.TextEdit{StartOffset: 4, EndOffset: 4}, fix.TextEdit{StartOffset: 5, EndOffset: 5}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			if got := tt.a.Overlaps(tt.b); got != tt.want {
				t.Errorf("a.Overlaps(b) = %v, want %v", got, tt.want)
			}
			if got := tt.b.Overlaps(tt.a); got != tt.want {
				t.Errorf("b.Overlaps(a) = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestPrepareEdits(t *testing.T) {
	t.Parallel()

	t.Run("returns sorted copy", func(t *testing.T) {
		t.Parallel()

		in := []fix.TextEdit{{StartOffset: 4, EndOffset: 5}, {StartOffset: 0, EndOffset: 1}}
		got, err := fix.PrepareEdits(in, 10)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if got[0].StartOffset != 0 || got[1].StartOffset != 4 {
			t.Errorf("PrepareEdits() = %+v, want sorted", got)
		}
		if in[0].StartOffset != 4 {
			t.Error("PrepareEdits modified its input")
		}
	})

	t.Run("reports conflict", func(t *testing.T) {
		t.Parallel()

		_, err := fix.PrepareEdits([]fix.TextEdit{
			{StartOffset: 3, EndOffset: 3, NewText: "a"},
			{StartOffset: 3, EndOffset: 3, NewText: "b"},
		}, 10)

		var cerr *fix.ConflictError
		if !errors.As(err, &cerr) {
			t.Fatalf("expected ConflictError, got %v", err)
		}
		if !errors.Is(err, fix.ErrConflict) {
			t.Error("expected errors.Is(err, ErrConflict)")
		}
	})
}
