package fix

import (
	"cmp"
	"errors"
	"fmt"
	"slices"
)

// ErrConflict is matched by every *ConflictError.
var ErrConflict = errors.New("conflicting edits")

// ValidationError describes an invalid edit.
type ValidationError struct {
	File    string
	Edit    TextEdit
	Message string
}

func (e *ValidationError) Error() string {
	if e.File == "" {
		return fmt.Sprintf("invalid edit [%d:%d]: %s", e.Edit.StartOffset, e.Edit.EndOffset, e.Message)
	}
	return fmt.Sprintf("%s: invalid edit [%d:%d]: %s", e.File, e.Edit.StartOffset, e.Edit.EndOffset, e.Message)
}

// ConflictError describes an edit that overlaps one already recorded.
type ConflictError struct {
	File     string
	Existing TextEdit
	Edit     TextEdit
}

func (e *ConflictError) Error() string {
	msg := fmt.Sprintf("overlapping edits: [%d:%d] and [%d:%d]",
		e.Existing.StartOffset, e.Existing.EndOffset,
		e.Edit.StartOffset, e.Edit.EndOffset)
	if e.File != "" {
		msg = e.File + ": " + msg
	}
	return msg
}

// Is makes errors.Is(err, ErrConflict) hold for conflict errors.
func (e *ConflictError) Is(target error) bool {
	return target == ErrConflict
}

// ValidateEdits returns a *ValidationError for the first edit whose range is
// negative, reversed, or past contentLen.
func ValidateEdits(edits []TextEdit, contentLen int) error {
	for _, edit := range edits {
		var msg string
		switch {
		case edit.StartOffset < 0:
			msg = "start offset is negative"
		case edit.EndOffset < edit.StartOffset:
			msg = "end offset is before start offset"
		case edit.EndOffset > contentLen:
			msg = fmt.Sprintf("end offset %d exceeds content length %d", edit.EndOffset, contentLen)
		default:
			continue
		}
		return &ValidationError{Edit: edit, Message: msg}
	}
	return nil
}

// SortEdits orders edits by range. An insertion sorts before a replacement
// that starts at the same offset; equal ranges keep their order.
func SortEdits(edits []TextEdit) {
	slices.SortStableFunc(edits, func(a, b TextEdit) int {
		return cmp.Or(
			cmp.Compare(a.StartOffset, b.StartOffset),
			cmp.Compare(a.EndOffset, b.EndOffset),
		)
	})
}

// DetectConflicts returns a *ConflictError for the first pair of neighbours
// in sorted edits that overlap.
func DetectConflicts(edits []TextEdit) error {
	for i := 1; i < len(edits); i++ {
		if edits[i-1].Overlaps(edits[i]) {
			return &ConflictError{Existing: edits[i-1], Edit: edits[i]}
		}
	}
	return nil
}

// PrepareEdits validates edits and returns a sorted, conflict-free copy.
// The input slice is not modified.
func PrepareEdits(edits []TextEdit, contentLen int) ([]TextEdit, error) {
	if len(edits) == 0 {
		return edits, nil
	}
	if err := ValidateEdits(edits, contentLen); err != nil {
		return nil, err
	}
	sorted := slices.Clone(edits)
	SortEdits(sorted)
	if err := DetectConflicts(sorted); err != nil {
		return nil, err
	}
	return sorted, nil
}
