// Package goparse finds function and method declarations in Go source
// without building an AST. Only declaration lines matter; bodies are ignored.
package goparse

import (
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/mvp-joe/protolink/internal/workspace"
)

// Matches:
//
//	func (recv Type) Name(
//	func (recv *Type) Name(
//	func Name(
var declRe = regexp.MustCompile(`^func\s+(?:\((\w+)\s+(\*?\w+)\)\s+)?(\w+)\s*\(`)

// Method is one declaration line.
type Method struct {
	Name         string
	ReceiverName string
	// ReceiverType has any pointer marker stripped. Empty for plain functions.
	ReceiverType string
	// Signature is the whole trimmed declaration line.
	Signature string
	Line      int
	Range     workspace.Range
}

// HasReceiver reports whether the declaration is a method.
func (m Method) HasReceiver() bool {
	return m.ReceiverType != ""
}

// Exported reports whether the name starts with an upper-case letter.
func (m Method) Exported() bool {
	r, _ := utf8.DecodeRuneInString(m.Name)
	return unicode.IsUpper(r)
}

// ParseText parses Go source that has no backing file.
func ParseText(text string) []Method {
	return Parse(workspace.NewDocument("", text))
}

// Parse returns every declaration line in doc, in source order.
func Parse(doc *workspace.Document) []Method {
	var methods []Method

	for i, line := range doc.Lines() {
		trimmed := strings.TrimSpace(line)
		m := declRe.FindStringSubmatch(trimmed)
		if m == nil {
			continue
		}
		name := m[3]

		// Locate the name after the receiver clause so a receiver type that
		// contains the name does not shift the range.
		col := 0
		if base := strings.Index(line, trimmed); base >= 0 {
			nameStart := len(m[0]) - len(name)
			if idx := strings.LastIndex(m[0], name); idx >= 0 {
				nameStart = idx
			}
			col = base + nameStart
		}

		methods = append(methods, Method{
			Name:         name,
			ReceiverName: m[1],
			ReceiverType: strings.TrimPrefix(m[2], "*"),
			Signature:    trimmed,
			Line:         i,
			Range:        doc.WordRangeOrLine(workspace.Position{Line: i, Character: col}),
		})
	}

	return methods
}

// MethodAt returns the declaration whose range contains pos.
func MethodAt(methods []Method, pos workspace.Position) (Method, bool) {
	for _, m := range methods {
		if m.Range.Contains(pos) {
			return m, true
		}
	}
	return Method{}, false
}

// MethodOnLine returns the declaration on line.
func MethodOnLine(methods []Method, line int) (Method, bool) {
	for _, m := range methods {
		if m.Line == line {
			return m, true
		}
	}
	return Method{}, false
}
