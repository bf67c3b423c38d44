package tools

import (
	"context"
	"encoding/json"
	"time"

	"github.com/richard-senior/mcp/pkg/protocol"
)

func DateTimeTool() protocol.Tool {
	return protocol.Tool{
		Name:        "get_datetime",
		Description: "Returns the current date and time",
		InputSchema: objectSchema(map[string]any{
			"format": map[string]any{
				"type":        "string",
				"description": "Go reference-time layout, e.g. 2006-01-02T15:04:05Z07:00. Defaults to RFC3339.",
			},
		}, nil),
		Annotations: &protocol.ToolAnnotations{ReadOnlyHint: true},
	}
}

type dateTimeArgs struct {
	Format string `json:"format"`
}

func HandleDateTime(ctx context.Context, args json.RawMessage) (*protocol.CallToolResult, *protocol.ProtocolError) {
	var a dateTimeArgs
	if err := decodeArgs(args, &a); err != nil {
		return nil, protocol.NewProtocolError(protocol.ErrInvalidParams, "invalid arguments: "+err.Error())
	}
	layout := a.Format
	if layout == "" {
		layout = time.RFC3339
	}
	r, perr := jsonResult(map[string]any{"datetime": time.Now().Format(layout)})
	return r, perr
}
