package cast

import "sort"

// SourceRange represents a byte range in the source content.
type SourceRange struct {
	// StartOffset is the byte index where the range begins (inclusive).
	StartOffset int

	// EndOffset is the byte index where the range ends (exclusive).
	EndOffset int
}

// Len returns the length of the range in bytes.
func (r SourceRange) Len() int {
	return r.EndOffset - r.StartOffset
}

// IsEmpty returns true if the range has zero length.
func (r SourceRange) IsEmpty() bool {
	return r.StartOffset == r.EndOffset
}

// Location is a resolved (file, byte offset) pair.
type Location struct {
	// File is the canonical path of the file.
	File string

	// Offset is the byte offset within File.
	Offset int
}

// SourceFile is one file read while building a translation unit.
type SourceFile struct {
	// Path is the path as given or as resolved from an #include.
	Path string

	// Canonical is the absolute path with symlinks resolved.
	Canonical string

	// Content is the full file bytes.
	Content []byte

	lineStarts []int
}

// NewSourceFile creates a SourceFile and indexes its lines.
func NewSourceFile(path, canonical string, content []byte) *SourceFile {
	starts := []int{0}
	for i, c := range content {
		if c == '\n' {
			starts = append(starts, i+1)
		}
	}
	return &SourceFile{
		Path:       path,
		Canonical:  canonical,
		Content:    content,
		lineStarts: starts,
	}
}

// Text returns the bytes of r as a string. Out-of-range spans are clamped.
func (f *SourceFile) Text(r SourceRange) string {
	start := max(0, min(r.StartOffset, len(f.Content)))
	end := max(start, min(r.EndOffset, len(f.Content)))
	return string(f.Content[start:end])
}

// Position converts a byte offset to 1-based line and column numbers.
// Column counts bytes, not runes. Returns (0, 0) if the offset is out of range.
func (f *SourceFile) Position(offset int) (int, int) {
	if offset < 0 || offset > len(f.Content) {
		return 0, 0
	}
	line := sort.Search(len(f.lineStarts), func(i int) bool {
		return f.lineStarts[i] > offset
	})
	return line, offset - f.lineStarts[line-1] + 1
}
