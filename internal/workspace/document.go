package workspace

import (
	"sort"
	"strings"
	"unicode"
	"unicode/utf8"
)

// Document is an immutable text buffer with offset/position conversion.
// Lines are split on '\n'; a trailing '\r' is not part of the line text.
type Document struct {
	path       string
	text       string
	lineStarts []int
}

// NewDocument builds a document for text identified by path.
func NewDocument(path, text string) *Document {
	starts := []int{0}
	for i := 0; i < len(text); i++ {
		if text[i] == '\n' {
			starts = append(starts, i+1)
		}
	}
	return &Document{path: path, text: text, lineStarts: starts}
}

// Path returns the file handle the document was loaded from.
func (d *Document) Path() string { return d.path }

// Text returns the full document text.
func (d *Document) Text() string { return d.text }

// LineCount returns the number of lines, counting a trailing empty line.
func (d *Document) LineCount() int { return len(d.lineStarts) }

// LineAt returns the text of line i without its terminator.
// Out-of-range lines return "".
func (d *Document) LineAt(i int) string {
	if i < 0 || i >= len(d.lineStarts) {
		return ""
	}
	start := d.lineStarts[i]
	end := len(d.text)
	if i+1 < len(d.lineStarts) {
		end = d.lineStarts[i+1] - 1
	}
	return strings.TrimSuffix(d.text[start:end], "\r")
}

// Lines returns every line of the document.
func (d *Document) Lines() []string {
	lines := make([]string, len(d.lineStarts))
	for i := range lines {
		lines[i] = d.LineAt(i)
	}
	return lines
}

// PositionAt converts a byte offset into a line/character position.
// Characters are byte columns within the line.
func (d *Document) PositionAt(offset int) Position {
	if offset < 0 {
		offset = 0
	}
	if offset > len(d.text) {
		offset = len(d.text)
	}
	line := sort.Search(len(d.lineStarts), func(i int) bool {
		return d.lineStarts[i] > offset
	}) - 1
	return Position{Line: line, Character: offset - d.lineStarts[line]}
}

// OffsetAt converts a position back into a byte offset, clamped to the document.
func (d *Document) OffsetAt(p Position) int {
	if p.Line < 0 {
		return 0
	}
	if p.Line >= len(d.lineStarts) {
		return len(d.text)
	}
	line := d.LineAt(p.Line)
	ch := p.Character
	if ch < 0 {
		ch = 0
	}
	if ch > len(line) {
		ch = len(line)
	}
	return d.lineStarts[p.Line] + ch
}

// FullLineRange returns the range spanning the whole of line i.
func (d *Document) FullLineRange(i int) Range {
	return LineRange(i, len(d.LineAt(i)))
}

// WordRangeAt returns the identifier range around p. ok is false when p does
// not touch an identifier character.
func (d *Document) WordRangeAt(p Position) (Range, bool) {
	if p.Line < 0 || p.Line >= len(d.lineStarts) {
		return Range{}, false
	}
	line := d.LineAt(p.Line)
	if p.Character < 0 || p.Character > len(line) {
		return Range{}, false
	}

	start := p.Character
	for start > 0 {
		r, size := utf8.DecodeLastRuneInString(line[:start])
		if !isWordRune(r) {
			break
		}
		start -= size
	}
	end := p.Character
	for end < len(line) {
		r, size := utf8.DecodeRuneInString(line[end:])
		if !isWordRune(r) {
			break
		}
		end += size
	}
	if start == end {
		return Range{}, false
	}
	return Range{
		Start: Position{Line: p.Line, Character: start},
		End:   Position{Line: p.Line, Character: end},
	}, true
}

// WordRangeOrLine returns the word range at p, falling back to the full line.
func (d *Document) WordRangeOrLine(p Position) Range {
	if r, ok := d.WordRangeAt(p); ok {
		return r
	}
	return d.FullLineRange(p.Line)
}

func isWordRune(r rune) bool {
	return r == '_' || unicode.IsLetter(r) || unicode.IsDigit(r)
}
