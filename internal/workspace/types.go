package workspace

import "fmt"

// Position is a zero-based line/character offset inside a document.
type Position struct {
	Line      int `json:"line"`
	Character int `json:"character"`
}

// Range is a half-open span between two positions.
type Range struct {
	Start Position `json:"start"`
	End   Position `json:"end"`
}

// LineRange returns a range covering line from column 0 to length.
func LineRange(line, length int) Range {
	return Range{
		Start: Position{Line: line, Character: 0},
		End:   Position{Line: line, Character: length},
	}
}

// Contains reports whether p lies inside r (end inclusive, like editor ranges).
func (r Range) Contains(p Position) bool {
	if p.Line < r.Start.Line || p.Line > r.End.Line {
		return false
	}
	if p.Line == r.Start.Line && p.Character < r.Start.Character {
		return false
	}
	if p.Line == r.End.Line && p.Character > r.End.Character {
		return false
	}
	return true
}

// Location is the uniform navigation result: a file plus a single-line range.
type Location struct {
	Path  string `json:"path"`
	Range Range  `json:"range"`
}

// Line returns the zero-based line the location starts on.
func (l Location) Line() int {
	return l.Range.Start.Line
}

func (l Location) String() string {
	return fmt.Sprintf("%s:%d:%d", l.Path, l.Range.Start.Line+1, l.Range.Start.Character+1)
}
