package fix

import (
	"sort"
	"sync"
)

// Ledger accumulates pending edits for every file touched during a run.
// It is safe for concurrent use.
type Ledger struct {
	mu    sync.Mutex
	files map[string][]TextEdit
	count int
}

// NewLedger creates an empty ledger.
func NewLedger() *Ledger {
	return &Ledger{files: make(map[string][]TextEdit)}
}

// Add records a replacement of length bytes at offset in file with text.
// A length of zero is an insertion. Add fails with a *ValidationError for a
// negative offset or length, and with a *ConflictError when the edit overlaps
// one already recorded for the file; the ledger is unchanged on failure.
func (l *Ledger) Add(file string, offset, length int, text string) error {
	edit := TextEdit{StartOffset: offset, EndOffset: offset + length, NewText: text}
	if length < 0 {
		return &ValidationError{File: file, Edit: edit, Message: "length is negative"}
	}
	if offset < 0 {
		return &ValidationError{File: file, Edit: edit, Message: "start offset is negative"}
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	if l.files == nil {
		l.files = make(map[string][]TextEdit)
	}
	for _, existing := range l.files[file] {
		if existing.Overlaps(edit) {
			return &ConflictError{File: file, Existing: existing, Edit: edit}
		}
	}
	l.files[file] = append(l.files[file], edit)
	l.count++
	return nil
}

// Files returns the files with pending edits in sorted order.
func (l *Ledger) Files() []string {
	l.mu.Lock()
	defer l.mu.Unlock()

	files := make([]string, 0, len(l.files))
	for file := range l.files {
		files = append(files, file)
	}
	sort.Strings(files)
	return files
}

// Edits returns a sorted copy of the edits recorded for file.
func (l *Ledger) Edits(file string) []TextEdit {
	l.mu.Lock()
	defer l.mu.Unlock()

	edits := make([]TextEdit, len(l.files[file]))
	copy(edits, l.files[file])
	SortEdits(edits)
	return edits
}

// Len returns the total number of recorded edits.
func (l *Ledger) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.count
}
