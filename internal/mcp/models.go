package mcp

import (
	"github.com/mvp-joe/protolink/internal/jump"
	"github.com/mvp-joe/protolink/internal/lens"
	"github.com/mvp-joe/protolink/internal/workspace"
)

// outcomeMultiple replaces jump.OutcomeCancelled when the jump stopped at a
// selection list that nobody could answer.
const outcomeMultiple jump.Outcome = "multiple"

// ImplementationsRequest selects an RPC either by name or by its position in
// a proto file.
type ImplementationsRequest struct {
	Service    string `json:"service"`
	Method     string `json:"method"`
	InputType  string `json:"input_type"`
	OutputType string `json:"output_type"`
	Language   string `json:"language"`
	File       string `json:"file"`
	Line       int    `json:"line"`
}

// DefinitionsRequest selects a Go method either by name or by its position
// in a Go file.
type DefinitionsRequest struct {
	Method       string `json:"method"`
	ReceiverType string `json:"receiver_type"`
	File         string `json:"file"`
	Line         int    `json:"line"`
}

// AnnotationsRequest names a proto or Go file.
type AnnotationsRequest struct {
	File string `json:"file"`
}

// LocationView is a location with a workspace-relative file and 1-based
// line and column.
type LocationView struct {
	File   string `json:"file"`
	Path   string `json:"path"`
	Line   int    `json:"line"`
	Column int    `json:"column"`
}

// JumpResponse is the JSON result of the jump tools.
type JumpResponse struct {
	ID      string         `json:"id"`
	Outcome jump.Outcome   `json:"outcome"`
	Results []LocationView `json:"results"`
	Total   int            `json:"total"`
	Message string         `json:"message,omitempty"`
	Notices []notice       `json:"notices,omitempty"`
}

// AnnotationView is an annotation with a 1-based line.
type AnnotationView struct {
	Line      int    `json:"line"`
	Title     string `json:"title"`
	Action    string `json:"action"`
	Arguments []any  `json:"arguments"`
	Tooltip   string `json:"tooltip"`
}

// AnnotationsResponse is the JSON result of the annotations tool.
type AnnotationsResponse struct {
	File        string           `json:"file"`
	Annotations []AnnotationView `json:"annotations"`
	Total       int              `json:"total"`
}

type relativizer interface {
	RelativePath(path string) string
}

func newLocationView(files relativizer, loc workspace.Location) LocationView {
	return LocationView{
		File:   files.RelativePath(loc.Path),
		Path:   loc.Path,
		Line:   loc.Range.Start.Line + 1,
		Column: loc.Range.Start.Character + 1,
	}
}

func newJumpResponse(files relativizer, res jump.Result, nav *collector) *JumpResponse {
	resp := &JumpResponse{
		ID:      res.ID,
		Outcome: res.Outcome,
		Results: make([]LocationView, 0, len(res.Locations)),
		Total:   len(res.Locations),
		Message: res.Message,
		Notices: nav.notices,
	}
	if res.Outcome == jump.OutcomeCancelled && nav.prompted {
		resp.Outcome = outcomeMultiple
	}
	for _, loc := range res.Locations {
		resp.Results = append(resp.Results, newLocationView(files, loc))
	}
	return resp
}

func newAnnotationsResponse(files relativizer, path string, annotations []lens.Annotation) *AnnotationsResponse {
	resp := &AnnotationsResponse{
		File:        files.RelativePath(path),
		Annotations: make([]AnnotationView, 0, len(annotations)),
		Total:       len(annotations),
	}
	for _, a := range annotations {
		resp.Annotations = append(resp.Annotations, AnnotationView{
			Line:      a.Line + 1,
			Title:     a.Title,
			Action:    a.Action,
			Arguments: a.Arguments,
			Tooltip:   a.Tooltip,
		})
	}
	return resp
}
