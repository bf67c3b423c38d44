package tools

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	htmltomarkdown "github.com/JohannesKaufmann/html-to-markdown/v2"
	"github.com/richard-senior/mcp/internal/logger"
	"github.com/richard-senior/mcp/pkg/protocol"
	"github.com/richard-senior/mcp/pkg/transport"
)

// BatchFetchTool fetches several URLs and converts each to markdown. It is
// registered Taskable (see Registration) since a large URL list can take
// long enough that a caller would rather poll tasks/get than hold a
// tools/call connection open.
func BatchFetchTool() protocol.Tool {
	return protocol.Tool{
		Name:        "batch_fetch",
		Description: "Fetches a list of URLs and converts each to markdown, tolerating individual failures.",
		InputSchema: objectSchema(map[string]any{
			"urls": map[string]any{
				"type":        "array",
				"items":       map[string]any{"type": "string"},
				"description": "The URLs to fetch",
			},
		}, []string{"urls"}),
		Annotations: &protocol.ToolAnnotations{ReadOnlyHint: true, OpenWorldHint: true},
	}
}

type batchFetchArgs struct {
	URLs []string `json:"urls"`
}

type batchFetchOutcome struct {
	URL      string `json:"url"`
	Markdown string `json:"markdown,omitempty"`
	Error    string `json:"error,omitempty"`
}

func HandleBatchFetch(ctx context.Context, args json.RawMessage) (*protocol.CallToolResult, *protocol.ProtocolError) {
	var a batchFetchArgs
	if err := decodeArgs(args, &a); err != nil {
		return nil, protocol.NewProtocolError(protocol.ErrInvalidParams, "invalid arguments: "+err.Error())
	}
	if len(a.URLs) == 0 {
		return errResult("urls must contain at least one entry"), nil
	}

	client, err := transport.GetCustomHTTPClient()
	if err != nil {
		return nil, protocol.NewProtocolError(protocol.ErrInternal, err.Error())
	}

	outcomes := make([]batchFetchOutcome, 0, len(a.URLs))
	for _, u := range a.URLs {
		if ctx.Err() != nil {
			break
		}
		outcomes = append(outcomes, fetchOne(ctx, client, u))
	}

	r, perr := jsonResult(map[string]any{"results": outcomes})
	return r, perr
}

func fetchOne(ctx context.Context, client *http.Client, u string) batchFetchOutcome {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return batchFetchOutcome{URL: u, Error: err.Error()}
	}

	resp, err := client.Do(req)
	if err != nil {
		return batchFetchOutcome{URL: u, Error: err.Error()}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return batchFetchOutcome{URL: u, Error: fmt.Sprintf("failed to read response: %v", err)}
	}

	markdown, err := htmltomarkdown.ConvertString(string(body))
	if err != nil {
		return batchFetchOutcome{URL: u, Error: fmt.Sprintf("failed to convert to markdown: %v", err)}
	}

	logger.Debug("batch_fetch converted", u)
	return batchFetchOutcome{URL: u, Markdown: markdown}
}
