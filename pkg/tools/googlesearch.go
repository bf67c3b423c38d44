package tools

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"

	"github.com/richard-senior/mcp/internal/logger"
	"github.com/richard-senior/mcp/pkg/protocol"
	"github.com/richard-senior/mcp/pkg/transport"
)

// SearchResult is a single organic result from googleSearch.
type SearchResult struct {
	Title       string `json:"title"`
	URL         string `json:"url"`
	Description string `json:"description,omitempty"`
}

func GoogleSearchTool() protocol.Tool {
	return protocol.Tool{
		Name:        "google_search",
		Description: "Performs a Google search for the given text and returns the top 'num' results",
		InputSchema: objectSchema(map[string]any{
			"query": map[string]any{"type": "string", "description": "The search string to enter into Google search"},
			"num":   map[string]any{"type": "integer", "description": "The number of results to return (1-10, default 5)"},
		}, []string{"query"}),
		Annotations: &protocol.ToolAnnotations{ReadOnlyHint: true, OpenWorldHint: true},
	}
}

type googleSearchArgs struct {
	Query string `json:"query"`
	Num   int    `json:"num"`
}

func HandleGoogleSearch(ctx context.Context, args json.RawMessage) (*protocol.CallToolResult, *protocol.ProtocolError) {
	var a googleSearchArgs
	if err := decodeArgs(args, &a); err != nil {
		return nil, protocol.NewProtocolError(protocol.ErrInvalidParams, "invalid arguments: "+err.Error())
	}
	if a.Query == "" {
		return errResult("query is required"), nil
	}
	if a.Num <= 0 || a.Num > 10 {
		a.Num = 5
	}

	results, err := SearchGoogle(a.Query, a.Num, false)
	if err != nil {
		return errResult("search failed: %v", err), nil
	}

	r, perr := jsonResult(map[string]any{"results": results, "query": a.Query, "count": len(results)})
	return r, perr
}

// SearchGoogle queries the Google Custom Search API. imagesOnly restricts
// the search to image results, used by HandleWikipediaImage's fallback path
// when Wikipedia itself has nothing for the query.
func SearchGoogle(query string, numResults int, imagesOnly bool) ([]SearchResult, error) {
	const searchKey = "YOUR_API_KEY"
	const searchEngineID = "YOUR_SEARCH_ENGINE_ID"

	if numResults <= 0 {
		numResults = 5
	}

	params := url.Values{}
	params.Add("q", query)
	params.Add("key", searchKey)
	params.Add("cx", searchEngineID)
	params.Add("num", fmt.Sprintf("%d", numResults))
	if imagesOnly {
		params.Add("searchType", "image")
	}
	searchURL := fmt.Sprintf("https://www.googleapis.com/customsearch/v1?%s", params.Encode())

	client, err := transport.GetCustomHTTPClient()
	if err != nil {
		return nil, fmt.Errorf("failed to create HTTP client: %w", err)
	}

	req, err := http.NewRequest(http.MethodGet, searchURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	logger.Info("performing Google Custom Search", query)
	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to search API: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("search API returned status %d: %s", resp.StatusCode, string(body))
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read search response: %w", err)
	}

	var searchResponse struct {
		Items []struct {
			Title   string `json:"title"`
			Link    string `json:"link"`
			Snippet string `json:"snippet"`
		} `json:"items"`
	}
	if err := json.Unmarshal(body, &searchResponse); err != nil {
		return nil, fmt.Errorf("failed to parse API response: %w", err)
	}

	results := make([]SearchResult, 0, len(searchResponse.Items))
	for _, item := range searchResponse.Items {
		results = append(results, SearchResult{Title: item.Title, URL: item.Link, Description: item.Snippet})
	}
	return results, nil
}
