// Package tools implements the example tools this server exposes through
// tools/list and tools/call, each pairing a protocol.Tool description with
// a Handler that decodes its own arguments from the raw JSON tools/call
// hands it.
package tools

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/richard-senior/mcp/pkg/protocol"
)

// Handler executes one tool invocation. args is the raw "arguments" object
// from CallToolParams; a nil args means the call supplied none.
type Handler func(ctx context.Context, args json.RawMessage) (*protocol.CallToolResult, *protocol.ProtocolError)

// Registration pairs a tool's description with its handler and whether it
// may run as a tracked task (spec's tasks/* augmentation) instead of
// blocking tools/call until it finishes.
type Registration struct {
	Tool     protocol.Tool
	Handler  Handler
	Taskable bool
}

// Default returns every built-in tool this server ships, ready to hand to
// server.Server.RegisterTool.
func Default() []Registration {
	return []Registration{
		{Tool: CalculatorTool(), Handler: HandleCalculator},
		{Tool: DateTimeTool(), Handler: HandleDateTime},
		{Tool: GoogleSearchTool(), Handler: HandleGoogleSearch},
		{Tool: HTMLToMarkdownTool(), Handler: HandleHTMLToMarkdown},
		{Tool: WikipediaImageTool(), Handler: HandleWikipediaImage},
		{Tool: RenderPageTool(), Handler: HandleRenderPage},
		{Tool: BatchFetchTool(), Handler: HandleBatchFetch, Taskable: true},
	}
}

func objectSchema(properties map[string]any, required []string) json.RawMessage {
	schema := map[string]any{"type": "object", "properties": properties}
	if len(required) > 0 {
		schema["required"] = required
	}
	b, err := json.Marshal(schema)
	if err != nil {
		panic(fmt.Sprintf("tools: failed to marshal static schema: %v", err))
	}
	return b
}

func textResult(format string, args ...any) *protocol.CallToolResult {
	return &protocol.CallToolResult{
		Content: []protocol.ContentBlock{&protocol.TextContent{Text: fmt.Sprintf(format, args...)}},
	}
}

// jsonResult renders v both as structured content and as a human-readable
// text block, since not every client surfaces structuredContent.
func jsonResult(v any) (*protocol.CallToolResult, *protocol.ProtocolError) {
	structured, err := json.Marshal(v)
	if err != nil {
		return nil, protocol.NewProtocolError(protocol.ErrInternal, "failed to encode tool result: "+err.Error())
	}
	pretty, _ := json.MarshalIndent(v, "", "  ")
	return &protocol.CallToolResult{
		Content:           []protocol.ContentBlock{&protocol.TextContent{Text: string(pretty)}},
		StructuredContent: structured,
	}, nil
}

func errResult(format string, args ...any) *protocol.CallToolResult {
	return &protocol.CallToolResult{
		IsError: true,
		Content: []protocol.ContentBlock{&protocol.TextContent{Text: fmt.Sprintf(format, args...)}},
	}
}

func decodeArgs(args json.RawMessage, v any) error {
	if len(args) == 0 {
		return nil
	}
	return json.Unmarshal(args, v)
}
