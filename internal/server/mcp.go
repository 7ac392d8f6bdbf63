package server

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
	mcpserver "github.com/mark3labs/mcp-go/server"

	"github.com/scheddy/scheddy/internal/tools"
)

// NewMCPServer exposes the calendar tool registry and the natural language
// command pipeline over the Model Context Protocol, so MCP clients can use
// the assistant alongside its individual tools.
func NewMCPServer(sc *ServerContext, version string) *mcpserver.MCPServer {
	mcpSrv := mcpserver.NewMCPServer("scheddy", version,
		mcpserver.WithToolCapabilities(true),
	)

	registerRegistryTools(mcpSrv, sc)
	registerCommandTool(mcpSrv, sc)

	return mcpSrv
}

// registerRegistryTools mirrors every registry tool onto the MCP server.
// Arguments pass through untouched; the dispatcher performs all coercion
// and validation.
func registerRegistryTools(mcpSrv *mcpserver.MCPServer, sc *ServerContext) {
	for _, tool := range sc.Registry().List() {
		opts := []mcp.ToolOption{
			mcp.WithDescription(tool.Description),
		}
		for _, param := range tool.Parameters {
			opts = append(opts, paramOption(param))
		}

		toolName := tool.Name
		mcpSrv.AddTool(mcp.NewTool(toolName, opts...), func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			resp := sc.Dispatcher().Dispatch(ctx, tools.Request{
				ID:        request.Params.Name,
				Tool:      toolName,
				Arguments: request.GetArguments(),
			})
			if !resp.Success {
				return mcp.NewToolResultError(resp.Error), nil
			}

			payload, err := json.MarshalIndent(resp.Result, "", "  ")
			if err != nil {
				return mcp.NewToolResultError(fmt.Sprintf("failed to encode result: %v", err)), nil
			}
			return mcp.NewToolResultText(string(payload)), nil
		})
	}
}

// registerCommandTool exposes the full pipeline as a single tool that takes
// free-form text.
func registerCommandTool(mcpSrv *mcpserver.MCPServer, sc *ServerContext) {
	commandTool := mcp.NewTool("assistant_command",
		mcp.WithDescription("Process a natural language calendar command, e.g. 'Schedule lunch with Sam tomorrow at noon'"),
		mcp.WithString("command",
			mcp.Required(),
			mcp.Description("The natural language command to process"),
		),
		mcp.WithString("event_id",
			mcp.Description("Event id the command refers to, when known"),
		),
	)

	mcpSrv.AddTool(commandTool, func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		args := request.GetArguments()
		command, _ := args["command"].(string)

		reqContext := make(map[string]string)
		if id, ok := args["event_id"].(string); ok && id != "" {
			reqContext["event_id"] = id
		}

		result := sc.Orchestrator().Process(ctx, command, reqContext)
		if !result.Success {
			return mcp.NewToolResultError(result.Message), nil
		}

		payload, err := json.MarshalIndent(result, "", "  ")
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("failed to encode result: %v", err)), nil
		}
		return mcp.NewToolResultText(string(payload)), nil
	})
}

func paramOption(param tools.Param) mcp.ToolOption {
	var propOpts []mcp.PropertyOption
	if param.Description != "" {
		propOpts = append(propOpts, mcp.Description(param.Description))
	}
	if param.Required {
		propOpts = append(propOpts, mcp.Required())
	}

	switch param.Type {
	case "number", "integer":
		return mcp.WithNumber(param.Name, propOpts...)
	case "boolean":
		return mcp.WithBoolean(param.Name, propOpts...)
	default:
		return mcp.WithString(param.Name, propOpts...)
	}
}
