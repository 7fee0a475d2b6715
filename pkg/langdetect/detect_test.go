package langdetect_test

import (
	"slices"
	"testing"

	"github.com/yaklabco/volblock/pkg/langdetect"
)

func TestLanguage(t *testing.T) {
	t.Parallel()

	tests := []struct {
		path string
		want string
	}{
		{"main.c", "c"},
		{"/src/dir.d/util.c", "c"},
		{"main.go", "go"},
		{"widget.cpp", "c++"},
		{"shared.h", ""},
		{"README", ""},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			t.Parallel()

			if got := langdetect.Language(tt.path); got != tt.want {
				t.Errorf("Language(%q) = %q, want %q", tt.path, got, tt.want)
			}
		})
	}
}

func TestSelectCFiles(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		paths []string
		extra []string
		want  []string
	}{
		{
			name:  "keeps c sources sorted",
			paths: []string{"b.c", "a.h", "a.c", "x.cc"},
			want:  []string{"a.c", "b.c"},
		},
		{
			name:  "removes duplicates",
			paths: []string{"a.c", "b.c", "a.c"},
			want:  []string{"a.c", "b.c"},
		},
		{
			name:  "extra extensions",
			paths: []string{"gen.inc", "a.c", "b.h"},
			extra: []string{".inc"},
			want:  []string{"a.c", "gen.inc"},
		},
		{
			name:  "nothing selected",
			paths: []string{"a.h", "Makefile"},
			want:  nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got := langdetect.SelectCFiles(tt.paths, tt.extra...)
			if !slices.Equal(got, tt.want) {
				t.Errorf("SelectCFiles() = %v, want %v", got, tt.want)
			}
		})
	}
}
