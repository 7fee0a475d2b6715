// Package fix provides text edit types, the per-run edit ledger, and the
// single-pass application of edits to file content.
package fix

// TextEdit represents a single text replacement in a file.
type TextEdit struct {
	// StartOffset is the byte index where the edit begins (inclusive).
	StartOffset int

	// EndOffset is the byte index where the edit ends (exclusive).
	EndOffset int

	// NewText is the replacement text.
	NewText string
}

// Len returns the number of original bytes the edit replaces.
func (e TextEdit) Len() int {
	return e.EndOffset - e.StartOffset
}

// IsInsertion reports whether the edit replaces no bytes.
func (e TextEdit) IsInsertion() bool {
	return e.StartOffset == e.EndOffset
}

// Overlaps reports whether applying both edits would be ambiguous: the spans
// share a byte, an insertion falls strictly inside a replacement, or both
// are insertions at the same offset.
func (e TextEdit) Overlaps(other TextEdit) bool {
	if e.IsInsertion() && other.IsInsertion() {
		return e.StartOffset == other.StartOffset
	}
	return e.StartOffset < other.EndOffset && other.StartOffset < e.EndOffset
}
