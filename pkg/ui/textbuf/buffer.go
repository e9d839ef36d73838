// Package textbuf provides a rope-backed text buffer and a wrapping
// viewport view over it.
//
// All positions are rune (char) indices. Out-of-range positions are
// clamped or ignored; no operation returns an error.
package textbuf

import "strings"

// Buffer is an editable rope of runes. The zero value is an empty buffer.
type Buffer struct {
	root *node
}

// New creates an empty buffer.
func New() *Buffer {
	return &Buffer{}
}

// NewFromString creates a buffer holding s.
func NewFromString(s string) *Buffer {
	return &Buffer{root: build([]rune(s))}
}

// Clone returns an independent copy. Nodes are shared, never mutated.
func (b *Buffer) Clone() *Buffer {
	return &Buffer{root: b.root}
}

// Len returns the number of runes.
func (b *Buffer) Len() int {
	if b.root == nil {
		return 0
	}
	return b.root.length
}

// IsEmpty reports whether the buffer holds no text.
func (b *Buffer) IsEmpty() bool { return b.Len() == 0 }

// Insert inserts text before pos. Positions past the end are ignored.
func (b *Buffer) Insert(pos int, text string) {
	if pos < 0 || pos > b.Len() || text == "" {
		return
	}
	left, right := split(b.root, pos)
	b.root = concat(concat(left, build([]rune(text))), right)
}

// Delete removes [start, end), clamped to the buffer.
func (b *Buffer) Delete(start, end int) {
	start, end = b.clampRange(start, end)
	if start == end {
		return
	}
	left, rest := split(b.root, start)
	_, right := split(rest, end-start)
	b.root = concat(left, right)
}

// Replace deletes [start, end) and inserts text at start.
func (b *Buffer) Replace(start, end int, text string) {
	start, end = b.clampRange(start, end)
	b.Delete(start, end)
	b.Insert(start, text)
}

// Slice returns the text in [start, end), clamped.
func (b *Buffer) Slice(start, end int) string {
	start, end = b.clampRange(start, end)
	if start == end {
		return ""
	}
	_, rest := split(b.root, start)
	mid, _ := split(rest, end-start)
	return string(mid.runes())
}

// CharAt returns the rune at pos.
func (b *Buffer) CharAt(pos int) (rune, bool) {
	if pos < 0 || pos >= b.Len() {
		return 0, false
	}
	return b.root.at(pos), true
}

func (b *Buffer) String() string {
	var sb strings.Builder
	sb.Grow(b.Len())
	b.root.each(func(chunk []rune) {
		for _, r := range chunk {
			sb.WriteRune(r)
		}
	})
	return sb.String()
}

// LineCount returns the number of lines. An empty buffer has one line and a
// trailing newline starts an empty last line.
func (b *Buffer) LineCount() int {
	if b.root == nil {
		return 1
	}
	return b.root.newlines + 1
}

// Line returns line i including its trailing newline.
func (b *Buffer) Line(i int) (string, bool) {
	if i < 0 || i >= b.LineCount() {
		return "", false
	}
	return b.Slice(b.LineToChar(i), b.LineToChar(i+1)), true
}

// LineToChar returns the index of the first rune of line. Lines past the
// end map to Len.
func (b *Buffer) LineToChar(line int) int {
	switch {
	case line <= 0:
		return 0
	case line >= b.LineCount():
		return b.Len()
	}
	return b.root.afterNewline(line)
}

// CharToLine returns the line containing pos, clamped to the buffer.
func (b *Buffer) CharToLine(pos int) int {
	pos = b.clamp(pos)
	if b.root == nil {
		return 0
	}
	return b.root.newlinesBefore(pos)
}

// LineEndChar returns the index just before line's newline, or Len for the
// last line and lines past the end.
func (b *Buffer) LineEndChar(line int) int {
	count := b.LineCount()
	if line < 0 {
		line = 0
	}
	if line >= count-1 {
		return b.Len()
	}
	return b.LineToChar(line+1) - 1
}

// LineLen returns the length of line without its newline.
func (b *Buffer) LineLen(line int) int {
	if line < 0 || line >= b.LineCount() {
		return 0
	}
	return b.LineEndChar(line) - b.LineToChar(line)
}

// LineColToChar converts a line and column to a char index, clamping col
// to the line.
func (b *Buffer) LineColToChar(line, col int) int {
	if line >= b.LineCount() {
		return b.Len()
	}
	line = max(line, 0)
	col = min(max(col, 0), b.LineLen(line))
	return b.LineToChar(line) + col
}

// CharToLineCol converts a char index to line and column.
func (b *Buffer) CharToLineCol(pos int) (line, col int) {
	pos = b.clamp(pos)
	line = b.CharToLine(pos)
	return line, pos - b.LineToChar(line)
}

func (b *Buffer) clamp(pos int) int {
	return min(max(pos, 0), b.Len())
}

func (b *Buffer) clampRange(start, end int) (int, int) {
	end = b.clamp(end)
	start = min(b.clamp(start), end)
	return start, end
}
