package fix

import (
	"sort"
	"strings"

	godiff "github.com/sourcegraph/go-diff/diff"
)

// Diff is a unified diff of the edits recorded for one file.
type Diff struct {
	// Path is the file path for the diff header.
	Path string

	// Hunks contains the diff hunks.
	Hunks []DiffHunk

	// Additions is the number of lines added.
	Additions int

	// Deletions is the number of lines deleted.
	Deletions int
}

// DiffHunk represents a single hunk in a unified diff.
type DiffHunk struct {
	// OriginalStart is the 1-based line number where the hunk starts in the original.
	OriginalStart int

	// OriginalCount is the number of lines from the original in this hunk.
	OriginalCount int

	// ModifiedStart is the 1-based line number where the hunk starts in the modified.
	ModifiedStart int

	// ModifiedCount is the number of lines from the modified in this hunk.
	ModifiedCount int

	// Lines contains the diff lines in this hunk.
	Lines []DiffLine
}

// DiffLine represents a single line in a diff hunk.
type DiffLine struct {
	// Kind indicates whether this is a context, add, or remove line.
	Kind DiffLineKind

	// Content is the line content (without the diff prefix).
	Content string
}

// DiffLineKind indicates the type of diff line.
type DiffLineKind int

const (
	// DiffLineContext is an unchanged context line.
	DiffLineContext DiffLineKind = iota

	// DiffLineAdd is a line added in the modified version.
	DiffLineAdd

	// DiffLineRemove is a line removed from the original version.
	DiffLineRemove
)

// contextLines is the number of context lines to show around changes.
const contextLines = 3

// lineIndex maps byte offsets of a buffer to 0-based line numbers.
type lineIndex struct {
	content []byte
	starts  []int
}

func newLineIndex(content []byte) lineIndex {
	starts := []int{0}
	for i, c := range content {
		if c == '\n' && i+1 < len(content) {
			starts = append(starts, i+1)
		}
	}
	return lineIndex{content: content, starts: starts}
}

func (li lineIndex) count() int {
	return len(li.starts)
}

func (li lineIndex) lineOf(offset int) int {
	line := sort.Search(len(li.starts), func(i int) bool {
		return li.starts[i] > offset
	}) - 1
	return max(0, min(line, len(li.starts)-1))
}

// end returns the offset just past line, including its newline.
func (li lineIndex) end(line int) int {
	if line+1 < len(li.starts) {
		return li.starts[line+1]
	}
	return len(li.content)
}

func (li lineIndex) line(line int) string {
	return strings.TrimSuffix(string(li.content[li.starts[line]:li.end(line)]), "\n")
}

// changeBlock is a run of original lines rewritten by one or more edits.
type changeBlock struct {
	first, last int
	removed     []string
	added       []string
}

// GenerateDiff renders the effect of edits on original as a unified diff.
// Edits must be prepared with PrepareEdits. Returns nil if nothing changes.
func GenerateDiff(path string, original []byte, edits []TextEdit) *Diff {
	if len(edits) == 0 {
		return nil
	}

	idx := newLineIndex(original)
	blocks := collectBlocks(idx, edits)
	if len(blocks) == 0 {
		return nil
	}

	diff := &Diff{Path: path}
	for _, group := range groupBlocks(blocks) {
		diff.Hunks = append(diff.Hunks, buildHunk(idx, group))
	}

	delta := 0
	for i := range diff.Hunks {
		hunk := &diff.Hunks[i]
		hunk.ModifiedStart = hunk.OriginalStart + delta
		for _, line := range hunk.Lines {
			switch line.Kind {
			case DiffLineAdd:
				diff.Additions++
			case DiffLineRemove:
				diff.Deletions++
			}
		}
		delta += hunk.ModifiedCount - hunk.OriginalCount
	}
	return diff
}

// collectBlocks merges edits that touch the same lines and renders each run.
func collectBlocks(idx lineIndex, edits []TextEdit) []changeBlock {
	var blocks []changeBlock
	var pending []TextEdit
	first, last := -1, -1

	flush := func() {
		if len(pending) == 0 {
			return
		}
		start, end := idx.starts[first], idx.end(last)
		shifted := make([]TextEdit, len(pending))
		for i, e := range pending {
			shifted[i] = TextEdit{StartOffset: e.StartOffset - start, EndOffset: e.EndOffset - start, NewText: e.NewText}
		}
		before := string(idx.content[start:end])
		after := string(ApplyEdits(idx.content[start:end], shifted))
		if before != after {
			blocks = append(blocks, changeBlock{
				first:   first,
				last:    last,
				removed: splitLines(before),
				added:   splitLines(after),
			})
		}
		pending = pending[:0]
	}

	for _, e := range edits {
		lo := idx.lineOf(e.StartOffset)
		hi := lo
		if e.EndOffset > e.StartOffset {
			hi = idx.lineOf(e.EndOffset - 1)
		}
		if len(pending) > 0 && lo > last {
			flush()
		}
		if len(pending) == 0 {
			first, last = lo, hi
		} else {
			last = max(last, hi)
		}
		pending = append(pending, e)
	}
	flush()
	return blocks
}

// groupBlocks gathers blocks whose context windows touch into one hunk.
func groupBlocks(blocks []changeBlock) [][]changeBlock {
	var groups [][]changeBlock
	current := []changeBlock{blocks[0]}
	for _, b := range blocks[1:] {
		prev := current[len(current)-1]
		if b.first-prev.last-1 <= 2*contextLines {
			current = append(current, b)
			continue
		}
		groups = append(groups, current)
		current = []changeBlock{b}
	}
	return append(groups, current)
}

func buildHunk(idx lineIndex, group []changeBlock) DiffHunk {
	start := max(0, group[0].first-contextLines)
	end := min(idx.count()-1, group[len(group)-1].last+contextLines)

	hunk := DiffHunk{OriginalStart: start + 1}
	context := func(from, to int) {
		for i := from; i <= to; i++ {
			hunk.Lines = append(hunk.Lines, DiffLine{Kind: DiffLineContext, Content: idx.line(i)})
			hunk.OriginalCount++
			hunk.ModifiedCount++
		}
	}

	cursor := start
	for _, b := range group {
		context(cursor, b.first-1)
		for _, l := range b.removed {
			hunk.Lines = append(hunk.Lines, DiffLine{Kind: DiffLineRemove, Content: l})
			hunk.OriginalCount++
		}
		for _, l := range b.added {
			hunk.Lines = append(hunk.Lines, DiffLine{Kind: DiffLineAdd, Content: l})
			hunk.ModifiedCount++
		}
		cursor = b.last + 1
	}
	context(cursor, end)
	return hunk
}

func splitLines(text string) []string {
	if text == "" {
		return nil
	}
	return strings.Split(strings.TrimSuffix(text, "\n"), "\n")
}

// HasChanges returns true if the diff contains any changes.
func (d *Diff) HasChanges() bool {
	return d != nil && len(d.Hunks) > 0
}

// FileDiff converts d to the go-diff representation.
func (d *Diff) FileDiff() *godiff.FileDiff {
	if d == nil {
		return nil
	}
	fd := &godiff.FileDiff{
		OrigName: "a/" + d.Path,
		NewName:  "b/" + d.Path,
		Extended: []string{"diff --git a/" + d.Path + " b/" + d.Path},
	}
	for _, h := range d.Hunks {
		var body strings.Builder
		for _, line := range h.Lines {
			switch line.Kind {
			case DiffLineAdd:
				body.WriteByte('+')
			case DiffLineRemove:
				body.WriteByte('-')
			default:
				body.WriteByte(' ')
			}
			body.WriteString(line.Content)
			body.WriteByte('\n')
		}
		fd.Hunks = append(fd.Hunks, &godiff.Hunk{
			OrigStartLine: int32(h.OriginalStart),
			OrigLines:     int32(h.OriginalCount),
			NewStartLine:  int32(h.ModifiedStart),
			NewLines:      int32(h.ModifiedCount),
			Body:          []byte(body.String()),
		})
	}
	return fd
}

// String returns the diff in unified format.
func (d *Diff) String() string {
	if !d.HasChanges() {
		return ""
	}
	out, err := godiff.PrintFileDiff(d.FileDiff())
	if err != nil {
		return ""
	}
	return string(out)
}

// Unified renders several diffs as one multi-file unified diff.
func Unified(diffs []*Diff) ([]byte, error) {
	fds := make([]*godiff.FileDiff, 0, len(diffs))
	for _, d := range diffs {
		if d.HasChanges() {
			fds = append(fds, d.FileDiff())
		}
	}
	if len(fds) == 0 {
		return nil, nil
	}
	return godiff.PrintMultiFileDiff(fds)
}
