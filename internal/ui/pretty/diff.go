package pretty

import "strings"

// RenderDiff colorizes unified diff text line by line.
func (s *Styles) RenderDiff(text string) string {
	if text == "" {
		return ""
	}
	lines := strings.Split(strings.TrimSuffix(text, "\n"), "\n")
	var builder strings.Builder
	for _, line := range lines {
		builder.WriteString(s.diffLine(line))
		builder.WriteByte('\n')
	}
	return builder.String()
}

func (s *Styles) diffLine(line string) string {
	switch {
	case strings.HasPrefix(line, "diff "):
		return s.DiffHeader.Render(line)
	case strings.HasPrefix(line, "@@"):
		return s.DiffHunk.Render(line)
	case strings.HasPrefix(line, "+"):
		return s.DiffAdd.Render(line)
	case strings.HasPrefix(line, "-"):
		return s.DiffRemove.Render(line)
	default:
		return s.DiffContext.Render(line)
	}
}
