package diag

import "strings"

// Snippet renders a human-readable context for a byte offset into text: the
// line containing the offset followed by a caret marker under the position.
// It returns "" when the offset does not fall inside the text; callers
// tolerate the absence silently and emit no context lines.
func Snippet(text string, pos int) string {
	if pos < 0 || pos > len(text) {
		return ""
	}
	start := strings.LastIndexByte(text[:pos], '\n') + 1
	end := strings.IndexByte(text[pos:], '\n')
	if end < 0 {
		end = len(text)
	} else {
		end += pos
	}
	line := text[start:end]
	if line == "" && pos == len(text) {
		line = "<end of input>"
		return line
	}
	var b strings.Builder
	b.WriteString(line)
	b.WriteByte('\n')
	for i := start; i < pos; i++ {
		if text[i] == '\t' {
			b.WriteByte('\t')
		} else {
			b.WriteByte(' ')
		}
	}
	b.WriteByte('^')
	return b.String()
}
