// Package lens produces the inline annotations rendered above RPC
// declarations in proto files and above RPC implementations in Go files.
package lens

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"

	"github.com/mvp-joe/protolink/internal/goparse"
	"github.com/mvp-joe/protolink/internal/protoparse"
	"github.com/mvp-joe/protolink/internal/workspace"
)

// Action identifiers carried by annotations.
const (
	ActionJumpToImplementation = "protolink.jumpToImplementation"
	ActionJumpToDefinition     = "protolink.jumpToDefinition"
)

// Annotation is one actionable label anchored to the start of a line.
//
// Arguments are positional. For ActionJumpToImplementation they are
// (service, method, inputType, outputType, definitionPath); for
// ActionJumpToDefinition they are (method, receiverType, implementationPath).
type Annotation struct {
	Line      int             `json:"line"`
	Range     workspace.Range `json:"range"`
	Title     string          `json:"title"`
	Action    string          `json:"action"`
	Arguments []any           `json:"arguments"`
	Tooltip   string          `json:"tooltip"`
}

// Provider returns the annotations for a document.
type Provider interface {
	Provide(ctx context.Context, doc *workspace.Document) []Annotation
}

func anchor(line int) workspace.Range {
	p := workspace.Position{Line: line}
	return workspace.Range{Start: p, End: p}
}

// ProtoProvider annotates every parsed RPC with a jump to its implementation.
type ProtoProvider struct {
	logger *slog.Logger
}

// NewProtoProvider creates a proto annotation provider.
func NewProtoProvider(logger *slog.Logger) *ProtoProvider {
	if logger == nil {
		logger = slog.Default()
	}
	return &ProtoProvider{logger: logger}
}

// Provide implements Provider.
func (p *ProtoProvider) Provide(ctx context.Context, doc *workspace.Document) []Annotation {
	var out []Annotation
	for _, svc := range protoparse.Parse(doc) {
		for _, m := range svc.Methods {
			out = append(out, Annotation{
				Line:      m.Line,
				Range:     anchor(m.Line),
				Title:     "→ Jump to implementation",
				Action:    ActionJumpToImplementation,
				Arguments: []any{m.Service, m.Name, m.InputType, m.OutputType, doc.Path()},
				Tooltip:   fmt.Sprintf("Jump to %s.%s implementation", m.Service, m.Name),
			})
		}
	}
	p.logger.Debug("created annotations", "path", doc.Path(), "count", len(out))
	return out
}

// GoProvider annotates Go methods that look like RPC implementations with a
// jump to their proto definition.
type GoProvider struct {
	logger *slog.Logger
}

// NewGoProvider creates a Go annotation provider.
func NewGoProvider(logger *slog.Logger) *GoProvider {
	if logger == nil {
		logger = slog.Default()
	}
	return &GoProvider{logger: logger}
}

// IsRPCMethod reports whether m looks like a generated-service method: it has
// a receiver, is exported, and its signature mentions context.Context or a
// pb package type.
func IsRPCMethod(m goparse.Method) bool {
	if !m.HasReceiver() || !m.Exported() {
		return false
	}
	return strings.Contains(m.Signature, "context.Context") || strings.Contains(m.Signature, "pb.")
}

// Provide implements Provider.
func (p *GoProvider) Provide(ctx context.Context, doc *workspace.Document) []Annotation {
	var out []Annotation
	for _, m := range goparse.Parse(doc) {
		if !IsRPCMethod(m) {
			continue
		}
		out = append(out, Annotation{
			Line:      m.Line,
			Range:     anchor(m.Line),
			Title:     "← Jump to proto",
			Action:    ActionJumpToDefinition,
			Arguments: []any{m.Name, m.ReceiverType, doc.Path()},
			Tooltip:   fmt.Sprintf("Jump to %s proto definition", m.Name),
		})
	}
	p.logger.Debug("created annotations", "path", doc.Path(), "count", len(out))
	return out
}

// ForPath picks the provider for a file by extension.
func ForPath(path string, logger *slog.Logger) (Provider, bool) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".proto":
		return NewProtoProvider(logger), true
	case ".go":
		return NewGoProvider(logger), true
	default:
		return nil, false
	}
}

// At returns the annotation on line, if any.
func At(annotations []Annotation, line int) (Annotation, bool) {
	for _, a := range annotations {
		if a.Line == line {
			return a, true
		}
	}
	return Annotation{}, false
}
