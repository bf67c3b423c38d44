package tools

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	htmltomarkdown "github.com/JohannesKaufmann/html-to-markdown/v2"
	"github.com/JohannesKaufmann/html-to-markdown/v2/converter"
	"github.com/PuerkitoBio/goquery"
	"github.com/richard-senior/mcp/internal/logger"
	"github.com/richard-senior/mcp/pkg/protocol"
	"github.com/richard-senior/mcp/pkg/transport"
)

func HTMLToMarkdownTool() protocol.Tool {
	return protocol.Tool{
		Name: "html_2_markdown",
		Description: "" +
			"Fetches a URL and converts its HTML content to Markdown for consumption by LLM clients. " +
			"Use this when more detail is needed on a google_search result, or when the user asks for a " +
			"precis or summary of the content of a web page.",
		InputSchema: objectSchema(map[string]any{
			"url": map[string]any{"type": "string", "description": "The URL of the HTML page to convert, e.g. https://www.example.com/"},
		}, []string{"url"}),
		Annotations: &protocol.ToolAnnotations{ReadOnlyHint: true, OpenWorldHint: true},
	}
}

type htmlToMarkdownArgs struct {
	URL string `json:"url"`
}

func HandleHTMLToMarkdown(ctx context.Context, args json.RawMessage) (*protocol.CallToolResult, *protocol.ProtocolError) {
	var a htmlToMarkdownArgs
	if err := decodeArgs(args, &a); err != nil {
		return nil, protocol.NewProtocolError(protocol.ErrInvalidParams, "invalid arguments: "+err.Error())
	}
	if a.URL == "" {
		return errResult("url is required"), nil
	}

	client, err := transport.GetCustomHTTPClient()
	if err != nil {
		return nil, protocol.NewProtocolError(protocol.ErrInternal, err.Error())
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, a.URL, nil)
	if err != nil {
		return errResult("invalid url: %v", err), nil
	}
	req.Header.Set("User-Agent", "Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/123.0.0.0 Safari/537.36")

	logger.Info("fetching HTML from", a.URL)
	resp, err := client.Do(req)
	if err != nil {
		return errResult("request failed: %v", err), nil
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return errResult("failed to read response: %v", err), nil
	}

	domain, err := extractDomain(a.URL)
	if err != nil {
		logger.Warn("failed to extract domain from url", err)
		domain = "unknown"
	}

	markdown, err := htmltomarkdown.ConvertString(string(body), converter.WithDomain(domain))
	if err != nil {
		return errResult("failed to convert HTML to markdown: %v", err), nil
	}

	const maxLength = 10000
	if len(markdown) > maxLength {
		markdown = markdown[:maxLength] + "\n\n... (content truncated due to size)"
	}

	r, perr := jsonResult(map[string]any{
		"markdown": markdown,
		"url":      a.URL,
		"title":    extractTitle(body),
		"domain":   domain,
	})
	return r, perr
}

// extractTitle uses goquery's DOM traversal rather than a brittle string
// search, so malformed or deeply nested markup (stray <title> inside an
// SVG, duplicate tags) doesn't confuse it.
func extractTitle(html []byte) string {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(string(html)))
	if err != nil {
		return "No title found"
	}
	title := strings.TrimSpace(doc.Find("title").First().Text())
	if title == "" {
		return "No title found"
	}
	return title
}

func extractDomain(urlString string) (string, error) {
	if !strings.HasPrefix(urlString, "http://") && !strings.HasPrefix(urlString, "https://") {
		urlString = "https://" + urlString
	}
	parsed, err := url.Parse(urlString)
	if err != nil {
		return "", fmt.Errorf("failed to parse URL: %w", err)
	}
	if strings.HasPrefix(urlString, "http://") {
		return "http://" + parsed.Hostname(), nil
	}
	return "https://" + parsed.Hostname(), nil
}
