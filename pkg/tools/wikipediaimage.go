package tools

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/richard-senior/mcp/internal/logger"
	"github.com/richard-senior/mcp/pkg/protocol"
	"github.com/richard-senior/mcp/pkg/transport"
)

func WikipediaImageTool() protocol.Tool {
	return protocol.Tool{
		Name: "get_image",
		Description: "" +
			"Finds an image matching the given query on Wikipedia (falling back to a Google image search) " +
			"and downloads it to the given location at the given width. Use this when the user asks for an " +
			"image of something.",
		InputSchema: objectSchema(map[string]any{
			"query":    map[string]any{"type": "string", "description": "The search string to look up"},
			"location": map[string]any{"type": "string", "description": "Output file path; defaults to a name derived from the query"},
			"size":     map[string]any{"type": "integer", "description": "Image width in pixels, default 500"},
		}, []string{"query"}),
		Annotations: &protocol.ToolAnnotations{OpenWorldHint: true},
	}
}

type wikipediaImageArgs struct {
	Query    string `json:"query"`
	Location string `json:"location"`
	Size     int    `json:"size"`
}

func HandleWikipediaImage(ctx context.Context, args json.RawMessage) (*protocol.CallToolResult, *protocol.ProtocolError) {
	var a wikipediaImageArgs
	if err := decodeArgs(args, &a); err != nil {
		return nil, protocol.NewProtocolError(protocol.ErrInvalidParams, "invalid arguments: "+err.Error())
	}
	if a.Query == "" {
		return errResult("query is required"), nil
	}
	if a.Size <= 0 {
		a.Size = 500
	}

	path, err := SaveWikipediaImage(a.Query, a.Size, a.Location)
	if err != nil {
		return errResult("%v", err), nil
	}
	r, perr := jsonResult(map[string]any{"location": path})
	return r, perr
}

// WikipediaImageSearch tries a handful of casing/spacing variations of
// query against Wikipedia's pageimages API, falling back to a Google image
// search if none of them resolve to a thumbnail.
func WikipediaImageSearch(query string, imageSize int) ([]byte, string, error) {
	if imageSize <= 0 {
		imageSize = 500
	}
	query = strings.TrimSpace(query)

	variations := []string{
		query,
		strings.ToLower(query),
		strings.ReplaceAll(query, " ", "_"),
		strings.ReplaceAll(query, " ", "-"),
		strings.ReplaceAll(strings.ToLower(query), " ", "_"),
		strings.ReplaceAll(strings.ToLower(query), " ", "-"),
	}
	seen := make(map[string]bool)
	unique := variations[:0]
	for _, v := range variations {
		if !seen[v] {
			seen[v] = true
			unique = append(unique, v)
		}
	}

	for _, term := range unique {
		data, contentType, err := tryWikipediaImageSearch(term, imageSize)
		if err == nil {
			return data, contentType, nil
		}
		logger.Debug("wikipedia image search failed for variation", term)
	}

	logger.Info("wikipedia returned nothing, falling back to google image search", query)
	results, err := SearchGoogle(query, 1, true)
	if err != nil || len(results) == 0 {
		return nil, "", fmt.Errorf("no image found for query %q: %w", query, err)
	}
	for _, r := range results {
		if r.URL == "" {
			continue
		}
		data, contentType, err := transport.GetImage(r.URL)
		if err == nil {
			return data, contentType, nil
		}
	}
	return nil, "", fmt.Errorf("no image found for any variation of query: %s", query)
}

func tryWikipediaImageSearch(query string, imageSize int) ([]byte, string, error) {
	params := url.Values{}
	params.Add("action", "query")
	params.Add("titles", query)
	params.Add("prop", "pageimages")
	params.Add("format", "json")
	params.Add("pithumbsize", fmt.Sprintf("%d", imageSize))
	searchURL := fmt.Sprintf("https://en.wikipedia.org/w/api.php?%s", params.Encode())

	client, err := transport.GetCustomHTTPClient()
	if err != nil {
		return nil, "", fmt.Errorf("failed to create HTTP client: %w", err)
	}
	req, err := http.NewRequest(http.MethodGet, searchURL, nil)
	if err != nil {
		return nil, "", fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("User-Agent", "Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/123.0.0.0 Safari/537.36")

	resp, err := client.Do(req)
	if err != nil {
		return nil, "", fmt.Errorf("failed to connect to wikipedia API: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return nil, "", fmt.Errorf("wikipedia API returned status %d: %s", resp.StatusCode, string(body))
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, "", fmt.Errorf("failed to read wikipedia API response: %w", err)
	}

	var apiResponse struct {
		Query struct {
			Pages map[string]struct {
				Thumbnail struct {
					Source string `json:"source"`
				} `json:"thumbnail"`
			} `json:"pages"`
		} `json:"query"`
	}
	if err := json.Unmarshal(body, &apiResponse); err != nil {
		return nil, "", fmt.Errorf("failed to parse wikipedia API response: %w", err)
	}

	var imageURL string
	for _, page := range apiResponse.Query.Pages {
		if page.Thumbnail.Source != "" {
			imageURL = page.Thumbnail.Source
			break
		}
	}
	if imageURL == "" {
		return nil, "", fmt.Errorf("no image found for query: %s", query)
	}

	return transport.GetImage(imageURL)
}

// SaveWikipediaImage resolves an image for query and writes it to
// outputPath (or a name derived from query), returning the final path.
func SaveWikipediaImage(query string, imageSize int, outputPath string) (string, error) {
	query = strings.TrimSpace(query)
	if outputPath == "" {
		sanitized := regexp.MustCompile(`[^a-zA-Z0-9_-]`).ReplaceAllString(strings.ReplaceAll(query, " ", "_"), "")
		outputPath = sanitized + ".jpg"
	} else {
		outputPath = strings.TrimSpace(outputPath)
	}

	imageData, contentType, err := WikipediaImageSearch(query, imageSize)
	if err != nil {
		return "", fmt.Errorf("failed to get image: %w", err)
	}

	extension := "jpg"
	switch {
	case strings.Contains(contentType, "png"):
		extension = "png"
	case strings.Contains(contentType, "gif"):
		extension = "gif"
	case strings.Contains(contentType, "webp"):
		extension = "webp"
	case strings.Contains(contentType, "svg"):
		extension = "svg"
	}

	if !strings.Contains(filepath.Base(outputPath), ".") {
		outputPath += "." + extension
	} else {
		outputPath = strings.TrimSuffix(outputPath, filepath.Ext(outputPath)) + "." + extension
	}

	if dir := filepath.Dir(outputPath); dir != "." && dir != "/" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return "", fmt.Errorf("failed to create directory: %w", err)
		}
	}
	if err := os.WriteFile(outputPath, imageData, 0644); err != nil {
		return "", fmt.Errorf("failed to write image to disk: %w", err)
	}

	logger.Info("image saved to", outputPath)
	return outputPath, nil
}
