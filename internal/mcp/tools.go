package mcp

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"github.com/mvp-joe/protolink/internal/jump"
	"github.com/mvp-joe/protolink/internal/session"
)

type toolHandler = func(context.Context, mcp.CallToolRequest) (*mcp.CallToolResult, error)

// AddImplementationsTool registers the protolink_implementations tool.
func AddImplementationsTool(s *server.MCPServer, sess *session.Session) {
	tool := mcp.NewTool(
		"protolink_implementations",
		mcp.WithDescription("Find the Go implementations of a gRPC method declared in a .proto file. Identify the RPC either by service and method name or by a file and line inside a proto file. Returns every matching method declaration."),
		mcp.WithString("service",
			mcp.Description("Proto service name (e.g., 'UserService'). Required unless file and line are given.")),
		mcp.WithString("method",
			mcp.Description("RPC method name (e.g., 'GetUser'). Required unless file and line are given.")),
		mcp.WithString("input_type",
			mcp.Description("RPC request message type, improves matching")),
		mcp.WithString("output_type",
			mcp.Description("RPC response message type, improves matching")),
		mcp.WithString("language",
			mcp.Description("Implementation language (default: go)")),
		mcp.WithString("file",
			mcp.Description("Proto file path, absolute or relative to the workspace root")),
		mcp.WithNumber("line",
			mcp.Description("1-based line of the rpc declaration in file")),
		mcp.WithReadOnlyHintAnnotation(true),
	)

	s.AddTool(tool, createImplementationsHandler(sess))
}

func createImplementationsHandler(sess *session.Session) toolHandler {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		var req ImplementationsRequest
		if err := bindArguments(request, &req); err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("invalid arguments: %v", err)), nil
		}

		var args jump.ImplementationArgs
		if req.File != "" {
			if req.Line <= 0 {
				return mcp.NewToolResultError("line must be a positive 1-based line number"), nil
			}
			at, err := sess.ImplementationAt(ctx, req.File, req.Line-1)
			if err != nil {
				return mcp.NewToolResultError(err.Error()), nil
			}
			args = at
		} else {
			if req.Service == "" || req.Method == "" {
				return mcp.NewToolResultError("service and method parameters are required when file is not given"), nil
			}
			args = jump.ImplementationArgs{
				Service:    req.Service,
				Method:     req.Method,
				InputType:  req.InputType,
				OutputType: req.OutputType,
			}
		}
		if req.Language != "" {
			args.Language = req.Language
		}

		nav := &collector{}
		res := sess.Actions(nav).JumpToImplementation(ctx, args)
		return marshalToolResponse(newJumpResponse(sess.Files, res, nav))
	}
}

// AddDefinitionsTool registers the protolink_definitions tool.
func AddDefinitionsTool(s *server.MCPServer, sess *session.Session) {
	tool := mcp.NewTool(
		"protolink_definitions",
		mcp.WithDescription("Find the .proto rpc declarations that a Go method implements. Identify the method either by name or by a file and line inside a Go file."),
		mcp.WithString("method",
			mcp.Description("Go method name (e.g., 'GetUser'). Required unless file and line are given.")),
		mcp.WithString("receiver_type",
			mcp.Description("Receiver type of the method (e.g., 'userServer'), used to rank service names")),
		mcp.WithString("file",
			mcp.Description("Go file path, absolute or relative to the workspace root")),
		mcp.WithNumber("line",
			mcp.Description("1-based line of the method declaration in file")),
		mcp.WithReadOnlyHintAnnotation(true),
	)

	s.AddTool(tool, createDefinitionsHandler(sess))
}

func createDefinitionsHandler(sess *session.Session) toolHandler {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		var req DefinitionsRequest
		if err := bindArguments(request, &req); err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("invalid arguments: %v", err)), nil
		}

		var args jump.DefinitionArgs
		if req.File != "" {
			if req.Line <= 0 {
				return mcp.NewToolResultError("line must be a positive 1-based line number"), nil
			}
			at, err := sess.DefinitionAt(ctx, req.File, req.Line-1)
			if err != nil {
				return mcp.NewToolResultError(err.Error()), nil
			}
			args = at
		} else {
			if req.Method == "" {
				return mcp.NewToolResultError("method parameter is required when file is not given"), nil
			}
			args = jump.DefinitionArgs{Method: req.Method, ReceiverType: req.ReceiverType}
		}

		nav := &collector{}
		res := sess.Actions(nav).JumpToDefinition(ctx, args)
		return marshalToolResponse(newJumpResponse(sess.Files, res, nav))
	}
}

// AddAnnotationsTool registers the protolink_annotations tool.
func AddAnnotationsTool(s *server.MCPServer, sess *session.Session) {
	tool := mcp.NewTool(
		"protolink_annotations",
		mcp.WithDescription("List the navigation annotations of a .proto or .go file: one per rpc declaration in proto files and one per exported gRPC-style method in Go files."),
		mcp.WithString("file",
			mcp.Required(),
			mcp.Description("File path, absolute or relative to the workspace root")),
		mcp.WithReadOnlyHintAnnotation(true),
	)

	s.AddTool(tool, createAnnotationsHandler(sess))
}

func createAnnotationsHandler(sess *session.Session) toolHandler {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		var req AnnotationsRequest
		if err := bindArguments(request, &req); err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("invalid arguments: %v", err)), nil
		}
		if req.File == "" {
			return mcp.NewToolResultError("file parameter is required"), nil
		}

		annotations, err := sess.Annotations(ctx, req.File)
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		return marshalToolResponse(newAnnotationsResponse(sess.Files, sess.Path(req.File), annotations))
	}
}

// marshalToolResponse marshals a response object to JSON and returns it as an MCP tool result.
func marshalToolResponse(response any) (*mcp.CallToolResult, error) {
	jsonData, err := json.Marshal(response)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal response: %w", err)
	}
	return mcp.NewToolResultText(string(jsonData)), nil
}
